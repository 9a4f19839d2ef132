package audience

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pkom79/email-metrics-cloud-sub001/internal/engine"
)

func buyer(email string, clv float64) engine.Subscriber {
	return engine.Subscriber{Email: email, TotalClv: clv, IsBuyer: true}
}

func TestAnalyzeHighValue(t *testing.T) {
	subs := []engine.Subscriber{
		buyer("a@example.com", 100),
		buyer("b@example.com", 200),
		buyer("c@example.com", 300),
		buyer("d@example.com", 600),
		// Non-buyers contribute nothing even with CLV-like values.
		{Email: "e@example.com", TotalClv: 1000, IsBuyer: false},
	}

	summary := AnalyzeHighValue(subs)

	assert.Equal(t, 4, summary.BuyerCount)
	assert.Equal(t, 1200.0, summary.TotalBuyerRevenue)
	assert.Equal(t, 300.0, summary.AvgOrderValue) // mean CLV per buyer

	assert.Len(t, summary.Tiers, 3)

	// Thresholds at 2x/3x/6x the AOV; tiers are cumulative.
	twoX := summary.Tiers[0]
	assert.Equal(t, 600.0, twoX.Threshold)
	assert.Equal(t, 1, twoX.Count)
	assert.Equal(t, 600.0, twoX.Revenue)
	assert.InDelta(t, 50.0, twoX.RevenueShare, 1e-9)

	threeX := summary.Tiers[1]
	assert.Equal(t, 900.0, threeX.Threshold)
	assert.Equal(t, 0, threeX.Count)

	sixX := summary.Tiers[2]
	assert.Equal(t, 1800.0, sixX.Threshold)
	assert.Equal(t, 0, sixX.Count)
}

func TestAnalyzeHighValueCumulative(t *testing.T) {
	// One whale clears every threshold and counts in every tier.
	subs := []engine.Subscriber{buyer("whale@example.com", 10000)}
	for i := 0; i < 10; i++ {
		subs = append(subs, buyer(emailN(i), 10))
	}
	// AOV = 10100/11 ~= 918; 6x ~= 5509, still below the whale's CLV.
	summary := AnalyzeHighValue(subs)
	for _, tier := range summary.Tiers {
		assert.Equal(t, 1, tier.Count, "tier %s", tier.Label)
		assert.Equal(t, 10000.0, tier.Revenue, "tier %s", tier.Label)
	}
}

func TestAnalyzeHighValueEmpty(t *testing.T) {
	summary := AnalyzeHighValue(nil)
	assert.Zero(t, summary.BuyerCount)
	assert.Zero(t, summary.AvgOrderValue)
	assert.Len(t, summary.Tiers, 3)
	for _, tier := range summary.Tiers {
		assert.Zero(t, tier.Count)
		assert.Zero(t, tier.RevenueShare)
	}
}
