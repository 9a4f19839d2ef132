// Package stats provides the significance test used to flag whether an
// observed rate gap between two cohorts or periods is likely noise.
package stats

import "math"

// Proportion is one sample: successes out of a total.
type Proportion struct {
	Success int64 `json:"success"`
	Total   int64 `json:"total"`
}

// TestResult holds a z statistic and its two-tailed p-value.
type TestResult struct {
	Z float64 `json:"z"`
	P float64 `json:"p"`
}

// TwoProportionZTest runs a pooled two-sample z-test for the difference of
// two proportions and returns a two-tailed p-value. Significance depends on
// both effect size and sample size: a small gap can be significant at large
// N while a large gap at small N is not.
//
// Degenerate inputs (either total zero, or a pooled proportion of exactly
// 0 or 1) report z=0, p=1 rather than raising.
func TwoProportionZTest(a, b Proportion) TestResult {
	if a.Total <= 0 || b.Total <= 0 {
		return TestResult{Z: 0, P: 1}
	}

	p1 := float64(a.Success) / float64(a.Total)
	p2 := float64(b.Success) / float64(b.Total)
	pooled := float64(a.Success+b.Success) / float64(a.Total+b.Total)

	se := math.Sqrt(pooled * (1 - pooled) * (1/float64(a.Total) + 1/float64(b.Total)))
	if se == 0 {
		return TestResult{Z: 0, P: 1}
	}

	z := (p1 - p2) / se
	return TestResult{Z: z, P: twoTailedP(z)}
}

// Significant reports whether the result clears the given alpha
// (e.g. 0.05).
func (r TestResult) Significant(alpha float64) bool {
	return r.P < alpha
}

// twoTailedP converts a z statistic into a two-tailed p-value via the
// standard normal CDF.
func twoTailedP(z float64) float64 {
	p := 2 * (1 - normalCDF(math.Abs(z)))
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

func normalCDF(x float64) float64 {
	return 0.5 * (1 + math.Erf(x/math.Sqrt2))
}
