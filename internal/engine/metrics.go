package engine

import "fmt"

// MetricKey identifies one reportable metric. The set is closed: every key
// routes through metricTable, so adding a key without a table entry is caught
// by ParseMetricKey and the structural test, not at lookup time.
type MetricKey string

const (
	MetricRevenue         MetricKey = "revenue"
	MetricEmailsSent      MetricKey = "emails_sent"
	MetricTotalOrders     MetricKey = "total_orders"
	MetricAvgOrderValue   MetricKey = "avg_order_value"
	MetricRevenuePerEmail MetricKey = "revenue_per_email"
	MetricOpenRate        MetricKey = "open_rate"
	MetricClickRate       MetricKey = "click_rate"
	MetricClickToOpenRate MetricKey = "click_to_open_rate"
	MetricConversionRate  MetricKey = "conversion_rate"
	MetricUnsubscribeRate MetricKey = "unsubscribe_rate"
	MetricSpamRate        MetricKey = "spam_rate"
	MetricBounceRate      MetricKey = "bounce_rate"
)

// MetricKind classifies how a metric value should be rendered.
type MetricKind string

const (
	KindCurrency MetricKind = "currency"
	KindCount    MetricKind = "count"
	KindPercent  MetricKind = "percent"
)

type metricSpec struct {
	kind MetricKind
	// negativeSense marks metrics where a decrease is the good outcome
	// (unsubscribe, spam, bounce rates).
	negativeSense bool
	value         func(AggregateTotals, DerivedMetrics) float64
}

var metricTable = map[MetricKey]metricSpec{
	MetricRevenue: {kind: KindCurrency, value: func(t AggregateTotals, _ DerivedMetrics) float64 {
		return t.Revenue
	}},
	MetricEmailsSent: {kind: KindCount, value: func(t AggregateTotals, _ DerivedMetrics) float64 {
		return float64(t.EmailsSent)
	}},
	MetricTotalOrders: {kind: KindCount, value: func(t AggregateTotals, _ DerivedMetrics) float64 {
		return float64(t.TotalOrders)
	}},
	MetricAvgOrderValue: {kind: KindCurrency, value: func(_ AggregateTotals, d DerivedMetrics) float64 {
		return d.AvgOrderValue
	}},
	MetricRevenuePerEmail: {kind: KindCurrency, value: func(_ AggregateTotals, d DerivedMetrics) float64 {
		return d.RevenuePerEmail
	}},
	MetricOpenRate: {kind: KindPercent, value: func(_ AggregateTotals, d DerivedMetrics) float64 {
		return d.OpenRate
	}},
	MetricClickRate: {kind: KindPercent, value: func(_ AggregateTotals, d DerivedMetrics) float64 {
		return d.ClickRate
	}},
	MetricClickToOpenRate: {kind: KindPercent, value: func(_ AggregateTotals, d DerivedMetrics) float64 {
		return d.ClickToOpenRate
	}},
	MetricConversionRate: {kind: KindPercent, value: func(_ AggregateTotals, d DerivedMetrics) float64 {
		return d.ConversionRate
	}},
	MetricUnsubscribeRate: {kind: KindPercent, negativeSense: true, value: func(_ AggregateTotals, d DerivedMetrics) float64 {
		return d.UnsubscribeRate
	}},
	MetricSpamRate: {kind: KindPercent, negativeSense: true, value: func(_ AggregateTotals, d DerivedMetrics) float64 {
		return d.SpamRate
	}},
	MetricBounceRate: {kind: KindPercent, negativeSense: true, value: func(_ AggregateTotals, d DerivedMetrics) float64 {
		return d.BounceRate
	}},
}

// AllMetricKeys returns every known metric key. Order is not stable.
func AllMetricKeys() []MetricKey {
	keys := make([]MetricKey, 0, len(metricTable))
	for k := range metricTable {
		keys = append(keys, k)
	}
	return keys
}

// ParseMetricKey validates a caller-supplied metric name.
func ParseMetricKey(s string) (MetricKey, error) {
	k := MetricKey(s)
	if _, ok := metricTable[k]; !ok {
		return "", fmt.Errorf("unknown metric key %q", s)
	}
	return k, nil
}

// Valid reports whether the key is part of the closed metric set.
func (k MetricKey) Valid() bool {
	_, ok := metricTable[k]
	return ok
}

// Kind returns how the metric renders (currency, count, percent).
func (k MetricKey) Kind() MetricKind {
	return metricTable[k].kind
}

// NegativeSense reports whether a decrease in this metric is the good
// outcome. Unknown keys report false.
func (k MetricKey) NegativeSense() bool {
	return metricTable[k].negativeSense
}

// Value extracts this metric from an aggregate/derived pair. Unknown keys
// return 0 rather than panicking; ParseMetricKey is the validation point.
func (k MetricKey) Value(t AggregateTotals, d DerivedMetrics) float64 {
	entry, ok := metricTable[k]
	if !ok {
		return 0
	}
	return entry.value(t, d)
}
