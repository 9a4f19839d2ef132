package engine

import (
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
)

func TestAggregateEmpty(t *testing.T) {
	totals := Aggregate(nil)
	assert.Equal(t, AggregateTotals{}, totals)

	derived := Derive(totals)
	assert.Equal(t, DerivedMetrics{}, derived)
}

func TestAggregateSums(t *testing.T) {
	records := []SendRecord{
		{Revenue: 100, EmailsSent: 1000, UniqueOpens: 200, UniqueClicks: 50, TotalOrders: 10, Unsubscribes: 5, SpamComplaints: 1, Bounces: 20},
		{Revenue: 50.5, EmailsSent: 500, UniqueOpens: 100, UniqueClicks: 25, TotalOrders: 5, Unsubscribes: 2, SpamComplaints: 0, Bounces: 10},
	}
	totals := Aggregate(records)

	assert.Equal(t, 150.5, totals.Revenue)
	assert.Equal(t, int64(1500), totals.EmailsSent)
	assert.Equal(t, int64(300), totals.UniqueOpens)
	assert.Equal(t, int64(75), totals.UniqueClicks)
	assert.Equal(t, int64(15), totals.TotalOrders)
	assert.Equal(t, int64(7), totals.Unsubscribes)
	assert.Equal(t, int64(1), totals.SpamComplaints)
	assert.Equal(t, int64(30), totals.Bounces)
}

func TestDeriveRates(t *testing.T) {
	totals := AggregateTotals{
		Revenue:        1000,
		EmailsSent:     10000,
		TotalOrders:    40,
		UniqueOpens:    2500,
		UniqueClicks:   500,
		Unsubscribes:   50,
		SpamComplaints: 10,
		Bounces:        200,
	}
	d := Derive(totals)

	assert.InDelta(t, 25.0, d.AvgOrderValue, 1e-9)   // 1000/40
	assert.InDelta(t, 0.1, d.RevenuePerEmail, 1e-9)  // 1000/10000
	assert.InDelta(t, 25.0, d.OpenRate, 1e-9)        // 2500/10000
	assert.InDelta(t, 5.0, d.ClickRate, 1e-9)        // 500/10000
	assert.InDelta(t, 20.0, d.ClickToOpenRate, 1e-9) // 500/2500
	assert.InDelta(t, 8.0, d.ConversionRate, 1e-9)   // 40/500
	assert.InDelta(t, 0.5, d.UnsubscribeRate, 1e-9)  // 50/10000
	assert.InDelta(t, 0.1, d.SpamRate, 1e-9)         // 10/10000
	assert.InDelta(t, 2.0, d.BounceRate, 1e-9)       // 200/10000
}

func TestDeriveZeroDenominators(t *testing.T) {
	// Revenue with no orders and no sends: every ratio must be 0, not NaN.
	d := Derive(AggregateTotals{Revenue: 500})
	assert.Zero(t, d.AvgOrderValue)
	assert.Zero(t, d.RevenuePerEmail)
	assert.Zero(t, d.OpenRate)
	assert.Zero(t, d.ClickToOpenRate)
	assert.Zero(t, d.ConversionRate)
}

// Derived metrics must be finite for any non-negative counter combination,
// including every zero-denominator case.
func TestDeriveAlwaysFinite(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 500

	properties := gopter.NewProperties(parameters)
	properties.Property("no NaN or Inf in derived metrics", prop.ForAll(
		func(revenue float64, sent, orders, opens, clicks, unsubs, spam, bounces int64) bool {
			d := Derive(AggregateTotals{
				Revenue:        revenue,
				EmailsSent:     sent,
				TotalOrders:    orders,
				UniqueOpens:    opens,
				UniqueClicks:   clicks,
				Unsubscribes:   unsubs,
				SpamComplaints: spam,
				Bounces:        bounces,
			})
			for _, v := range []float64{
				d.AvgOrderValue, d.RevenuePerEmail, d.OpenRate, d.ClickRate,
				d.ClickToOpenRate, d.ConversionRate, d.UnsubscribeRate,
				d.SpamRate, d.BounceRate,
			} {
				if math.IsNaN(v) || math.IsInf(v, 0) {
					return false
				}
			}
			return true
		},
		gen.Float64Range(0, 1e12),
		gen.Int64Range(0, 1e9),
		gen.Int64Range(0, 1e9),
		gen.Int64Range(0, 1e9),
		gen.Int64Range(0, 1e9),
		gen.Int64Range(0, 1e9),
		gen.Int64Range(0, 1e9),
		gen.Int64Range(0, 1e9),
	))
	properties.TestingRun(t)
}
