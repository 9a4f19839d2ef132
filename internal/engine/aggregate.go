package engine

// Aggregate sums every counter across the given records. An empty input
// yields an all-zero AggregateTotals, never an error.
func Aggregate(records []SendRecord) AggregateTotals {
	var t AggregateTotals
	for _, r := range records {
		t.Revenue += r.Revenue
		t.EmailsSent += r.EmailsSent
		t.TotalOrders += r.TotalOrders
		t.UniqueOpens += r.UniqueOpens
		t.UniqueClicks += r.UniqueClicks
		t.Unsubscribes += r.Unsubscribes
		t.SpamComplaints += r.SpamComplaints
		t.Bounces += r.Bounces
	}
	return t
}

// Derive computes every ratio metric from raw totals. The universal rule:
// a zero denominator yields 0, never NaN or Inf.
func Derive(t AggregateTotals) DerivedMetrics {
	return DerivedMetrics{
		AvgOrderValue:   safeDiv(t.Revenue, float64(t.TotalOrders)),
		RevenuePerEmail: safeDiv(t.Revenue, float64(t.EmailsSent)),
		OpenRate:        safePct(float64(t.UniqueOpens), float64(t.EmailsSent)),
		ClickRate:       safePct(float64(t.UniqueClicks), float64(t.EmailsSent)),
		ClickToOpenRate: safePct(float64(t.UniqueClicks), float64(t.UniqueOpens)),
		ConversionRate:  safePct(float64(t.TotalOrders), float64(t.UniqueClicks)),
		UnsubscribeRate: safePct(float64(t.Unsubscribes), float64(t.EmailsSent)),
		SpamRate:        safePct(float64(t.SpamComplaints), float64(t.EmailsSent)),
		BounceRate:      safePct(float64(t.Bounces), float64(t.EmailsSent)),
	}
}

// AggregateAndDerive is the common path: totals plus derived in one call.
func AggregateAndDerive(records []SendRecord) (AggregateTotals, DerivedMetrics) {
	t := Aggregate(records)
	return t, Derive(t)
}

func safeDiv(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}

func safePct(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den * 100
}
