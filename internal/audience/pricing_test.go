package audience

import "testing"

func TestPriceFor(t *testing.T) {
	tests := []struct {
		count  int
		want   float64
		wantOK bool
	}{
		{0, 0, true},
		{250, 0, true}, // free tier boundary
		{251, 20, true},
		{500, 20, true},
		{501, 30, true},
		{10000, 150, true},
		{250000, 2070, true},  // top tier boundary
		{250001, 0, false},    // custom pricing, no computable price
		{1000000, 0, false},
		{-1, 0, false},
	}
	for _, tc := range tests {
		got, ok := PriceFor(DefaultPricingTiers, tc.count)
		if ok != tc.wantOK || got != tc.want {
			t.Errorf("PriceFor(%d) = %v, %v; want %v, %v", tc.count, got, ok, tc.want, tc.wantOK)
		}
	}
}

// The free tier at 250 and the first paid tier at 251 must stay distinct:
// one is a real $0 price, the other is "not calculable".
func TestFreeTierIsNotCustomPricing(t *testing.T) {
	price, ok := PriceFor(DefaultPricingTiers, 100)
	if !ok || price != 0 {
		t.Errorf("PriceFor(100) = %v, %v; want 0, true", price, ok)
	}
	_, ok = PriceFor(DefaultPricingTiers, 300000)
	if ok {
		t.Error("PriceFor above the table must report not-calculable")
	}
}

func TestValidateDefaultTiers(t *testing.T) {
	if err := ValidateTiers(DefaultPricingTiers); err != nil {
		t.Errorf("default tier table invalid: %v", err)
	}
}

func TestValidateTiersRejectsGaps(t *testing.T) {
	bad := []PricingTier{
		{0, 250, 0},
		{300, 500, 20}, // gap 251-299
	}
	if err := ValidateTiers(bad); err == nil {
		t.Error("gapped table accepted")
	}

	if err := ValidateTiers(nil); err == nil {
		t.Error("empty table accepted")
	}

	notFromZero := []PricingTier{{100, 200, 10}}
	if err := ValidateTiers(notFromZero); err == nil {
		t.Error("table not starting at 0 accepted")
	}
}
