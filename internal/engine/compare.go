package engine

import "time"

// Period is one side of a period-over-period comparison.
type Period struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// Comparison reports a metric against the equal-length trailing window
// immediately preceding the current one.
type Comparison struct {
	Metric         MetricKey `json:"metric"`
	CurrentValue   float64   `json:"current_value"`
	PreviousValue  float64   `json:"previous_value"`
	ChangePercent  float64   `json:"change_percent"`
	IsPositive     bool      `json:"is_positive"`
	CurrentPeriod  Period    `json:"current_period"`
	PreviousPeriod Period    `json:"previous_period"`
	Comparable     bool      `json:"comparable"`
}

// ComparePreset compares a metric over a trailing preset window against the
// immediately preceding window of equal length. The reference date comes
// from the records visible under scope; the aggregation itself runs over
// the full unfiltered record set on both sides, so the two windows are
// always measured on identical populations.
//
// "all" disables comparison: there is no well-defined previous period, so
// the result is neutral zero-change with Comparable=false.
func (d *Dataset) ComparePreset(key MetricKey, scope Scope, preset string) (Comparison, error) {
	if preset == "all" {
		r, err := d.ResolveRange(scope, preset)
		if err != nil {
			return Comparison{}, err
		}
		cur := d.metricOver(key, r.From, r.To)
		return Comparison{
			Metric:        key,
			CurrentValue:  cur,
			CurrentPeriod: Period{From: r.From, To: r.To},
		}, nil
	}

	r, err := d.ResolveRange(scope, preset)
	if err != nil {
		return Comparison{}, err
	}
	return d.compareWindow(key, r), nil
}

// CompareCustom compares a metric over an explicit from/to window.
func (d *Dataset) CompareCustom(key MetricKey, fromStr, toStr string) (Comparison, error) {
	r, err := ParseCustomRange(fromStr, toStr)
	if err != nil {
		return Comparison{}, err
	}
	return d.compareWindow(key, r), nil
}

func (d *Dataset) compareWindow(key MetricKey, r DateRange) Comparison {
	currentStart, currentEnd := r.From, r.To
	days := r.Days

	previousEnd := EndOfDay(currentStart.AddDate(0, 0, -1))
	var previousStart time.Time
	if days == 1 {
		// A single-day window compares to the single immediately preceding
		// day, not a reinterpreted multi-day window.
		previousStart = StartOfDay(previousEnd)
	} else {
		previousStart = StartOfDay(previousEnd.AddDate(0, 0, -(days - 1)))
	}

	current := d.metricOver(key, currentStart, currentEnd)
	previous := d.metricOver(key, previousStart, previousEnd)

	var change float64
	switch {
	case previous != 0:
		change = (current - previous) / previous * 100
	case current > 0:
		change = 100
	default:
		change = 0
	}

	isPositive := change > 0
	if key.NegativeSense() {
		isPositive = change < 0
	}

	return Comparison{
		Metric:         key,
		CurrentValue:   current,
		PreviousValue:  previous,
		ChangePercent:  change,
		IsPositive:     isPositive,
		CurrentPeriod:  Period{From: currentStart, To: currentEnd},
		PreviousPeriod: Period{From: previousStart, To: previousEnd},
		Comparable:     true,
	}
}

func (d *Dataset) metricOver(key MetricKey, from, to time.Time) float64 {
	totals, derived := AggregateAndDerive(RecordsInRange(d.AllRecords(), from, to))
	return key.Value(totals, derived)
}
