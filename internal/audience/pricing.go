package audience

import "fmt"

// PricingTier is one step of the list-size pricing ladder. Tiers are
// inclusive on both bounds, ordered, non-overlapping, and together cover
// 0 through 250,000 contacts. Above the top tier pricing is custom and no
// price can be computed.
type PricingTier struct {
	MinCount     int     `json:"min_count"`
	MaxCount     int     `json:"max_count"`
	MonthlyPrice float64 `json:"monthly_price"`
}

// DefaultPricingTiers is the stepped subscription price table used for
// cost-savings estimates.
var DefaultPricingTiers = []PricingTier{
	{0, 250, 0},
	{251, 500, 20},
	{501, 1000, 30},
	{1001, 1500, 45},
	{1501, 2500, 60},
	{2501, 3000, 70},
	{3001, 3500, 80},
	{3501, 5000, 100},
	{5001, 5500, 110},
	{5501, 6000, 130},
	{6001, 6500, 140},
	{6501, 10000, 150},
	{10001, 10500, 175},
	{10501, 11000, 200},
	{11001, 11500, 225},
	{11501, 12000, 250},
	{12001, 12500, 275},
	{12501, 13000, 300},
	{13001, 13500, 325},
	{13501, 15000, 350},
	{15001, 20000, 375},
	{20001, 25000, 400},
	{25001, 30000, 425},
	{30001, 35000, 460},
	{35001, 40000, 475},
	{40001, 45000, 545},
	{45001, 50000, 570},
	{50001, 55000, 600},
	{55001, 60000, 640},
	{60001, 65000, 690},
	{65001, 70000, 720},
	{70001, 75000, 745},
	{75001, 80000, 790},
	{80001, 85000, 875},
	{85001, 90000, 900},
	{90001, 95000, 950},
	{95001, 100000, 1000},
	{100001, 110000, 1075},
	{110001, 120000, 1150},
	{120001, 130000, 1255},
	{130001, 140000, 1350},
	{140001, 150000, 1440},
	{150001, 200000, 1700},
	{200001, 250000, 2070},
}

// PriceFor looks up the monthly price for a contact count. The second
// return is false when the count exceeds the top tier (custom pricing) or
// is negative; that state is distinct from a $0 price.
func PriceFor(tiers []PricingTier, count int) (float64, bool) {
	if count < 0 {
		return 0, false
	}
	for _, t := range tiers {
		if count >= t.MinCount && count <= t.MaxCount {
			return t.MonthlyPrice, true
		}
	}
	return 0, false
}

// ValidateTiers checks that a tier table is ordered, non-overlapping, and
// contiguous from zero. Used at config load when a deployment overrides
// the default table.
func ValidateTiers(tiers []PricingTier) error {
	if len(tiers) == 0 {
		return fmt.Errorf("pricing table is empty")
	}
	if tiers[0].MinCount != 0 {
		return fmt.Errorf("pricing table must start at 0, starts at %d", tiers[0].MinCount)
	}
	for i, t := range tiers {
		if t.MaxCount < t.MinCount {
			return fmt.Errorf("tier %d has max %d below min %d", i, t.MaxCount, t.MinCount)
		}
		if t.MonthlyPrice < 0 {
			return fmt.Errorf("tier %d has negative price", i)
		}
		if i > 0 && t.MinCount != tiers[i-1].MaxCount+1 {
			return fmt.Errorf("tier %d starts at %d, expected %d", i, t.MinCount, tiers[i-1].MaxCount+1)
		}
	}
	return nil
}
