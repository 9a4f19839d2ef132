package audience

import (
	"github.com/pkom79/email-metrics-cloud-sub001/internal/engine"
)

// HighValueTier counts the buyers whose lifetime value clears one CLV
// threshold. Buckets are cumulative: a subscriber counts toward every
// threshold it meets.
type HighValueTier struct {
	Label        string  `json:"label"`
	Multiplier   float64 `json:"multiplier"`
	Threshold    float64 `json:"threshold"`
	Count        int     `json:"count"`
	Revenue      float64 `json:"revenue"`
	RevenueShare float64 `json:"revenue_share"` // percent of total buyer revenue
}

// HighValueSummary describes the concentration of revenue among the
// highest-value buyers.
type HighValueSummary struct {
	BuyerCount        int             `json:"buyer_count"`
	TotalBuyerRevenue float64         `json:"total_buyer_revenue"`
	AvgOrderValue     float64         `json:"avg_order_value"`
	Tiers             []HighValueTier `json:"tiers"`
}

var highValueMultipliers = []struct {
	label      string
	multiplier float64
}{
	{"2x AOV", 2},
	{"3x AOV", 3},
	{"6x AOV", 6},
}

// AnalyzeHighValue buckets buyer subscribers by CLV thresholds at 2x, 3x,
// and 6x the buyers' average order value. Profiles carry no per-order
// counts, so the buyers' AOV is approximated as mean CLV per buyer. Each
// tier's revenue share is relative to total buyer revenue.
func AnalyzeHighValue(subscribers []engine.Subscriber) HighValueSummary {
	var summary HighValueSummary
	buyers := make([]engine.Subscriber, 0, len(subscribers))
	for _, sub := range subscribers {
		if !sub.IsBuyer {
			continue
		}
		buyers = append(buyers, sub)
		summary.TotalBuyerRevenue += sub.TotalClv
	}
	summary.BuyerCount = len(buyers)
	if summary.BuyerCount > 0 {
		summary.AvgOrderValue = summary.TotalBuyerRevenue / float64(summary.BuyerCount)
	}

	summary.Tiers = make([]HighValueTier, 0, len(highValueMultipliers))
	for _, m := range highValueMultipliers {
		tier := HighValueTier{
			Label:      m.label,
			Multiplier: m.multiplier,
			Threshold:  summary.AvgOrderValue * m.multiplier,
		}
		for _, b := range buyers {
			if summary.AvgOrderValue > 0 && b.TotalClv >= tier.Threshold {
				tier.Count++
				tier.Revenue += b.TotalClv
			}
		}
		if summary.TotalBuyerRevenue > 0 {
			tier.RevenueShare = tier.Revenue / summary.TotalBuyerRevenue * 100
		}
		summary.Tiers = append(summary.Tiers, tier)
	}
	return summary
}
