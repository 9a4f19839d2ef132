// Package audience classifies subscriber profiles into engagement segments
// and estimates the subscription cost carried by disengaged contacts.
package audience

import (
	"strings"
	"time"

	"github.com/pkom79/email-metrics-cloud-sub001/internal/engine"
)

// Dead-weight policy windows. A deployment can tune these through config;
// the defaults match the product's cleanup guidance.
const (
	DefaultStaleProfileDays = 30
	DefaultDormantDays      = 90
)

// SegmentPolicy holds the day windows for the two dead-weight segments.
type SegmentPolicy struct {
	StaleProfileDays int `json:"stale_profile_days" yaml:"stale_profile_days"`
	DormantDays      int `json:"dormant_days" yaml:"dormant_days"`
}

// DefaultSegmentPolicy returns the standard windows.
func DefaultSegmentPolicy() SegmentPolicy {
	return SegmentPolicy{
		StaleProfileDays: DefaultStaleProfileDays,
		DormantDays:      DefaultDormantDays,
	}
}

// DeadWeightSummary is the result of a dead-weight analysis. The savings
// pointers are nil when either list size falls outside the pricing table
// (custom pricing): "not calculable" is a distinct state from $0 savings
// and callers must render it differently.
type DeadWeightSummary struct {
	AnchorDate       time.Time `json:"anchor_date"`
	TotalSubscribers int       `json:"total_subscribers"`
	NeverActiveCount int       `json:"never_active_count"`
	DormantCount     int       `json:"dormant_count"`
	DeadWeightCount  int       `json:"dead_weight_count"`
	ProjectedCount   int       `json:"projected_count"`
	CurrentPrice     *float64  `json:"current_price,omitempty"`
	ProjectedPrice   *float64  `json:"projected_price,omitempty"`
	MonthlySavings   *float64  `json:"monthly_savings,omitempty"`
	AnnualSavings    *float64  `json:"annual_savings,omitempty"`
}

// Calculable reports whether the savings estimate resolved.
func (s DeadWeightSummary) Calculable() bool {
	return s.MonthlySavings != nil
}

// AnalyzeDeadWeight classifies subscribers into the two dead-weight
// segments, unions them by case-insensitive email, and prices the list
// before and after removal.
//
// Segment 1 (never active, stale): no first-active value was ever present,
// no last-active instant, and the profile is at least StaleProfileDays old
// at the anchor. A missing profile-created date counts as age zero, so it
// never qualifies on age alone.
//
// Segment 2 (long dormant): profile at least DormantDays old, and both the
// last open and last click are at least DormantDays before the anchor. A
// missing last open/click is treated as infinitely old.
func AnalyzeDeadWeight(subscribers []engine.Subscriber, anchor time.Time, policy SegmentPolicy, tiers []PricingTier) DeadWeightSummary {
	summary := DeadWeightSummary{
		AnchorDate:       anchor,
		TotalSubscribers: len(subscribers),
	}

	dead := make(map[string]struct{})
	for _, sub := range subscribers {
		email := strings.ToLower(strings.TrimSpace(sub.Email))
		if email == "" {
			continue
		}
		s1 := isNeverActive(sub, anchor, policy)
		s2 := isDormant(sub, anchor, policy)
		if s1 {
			summary.NeverActiveCount++
		}
		if s2 {
			summary.DormantCount++
		}
		if s1 || s2 {
			dead[email] = struct{}{}
		}
	}

	summary.DeadWeightCount = len(dead)
	summary.ProjectedCount = summary.TotalSubscribers - summary.DeadWeightCount
	if summary.ProjectedCount < 0 {
		summary.ProjectedCount = 0
	}

	current, curOK := PriceFor(tiers, summary.TotalSubscribers)
	projected, projOK := PriceFor(tiers, summary.ProjectedCount)
	if curOK {
		summary.CurrentPrice = &current
	}
	if projOK {
		summary.ProjectedPrice = &projected
	}
	if curOK && projOK {
		monthly := current - projected
		annual := monthly * 12
		summary.MonthlySavings = &monthly
		summary.AnnualSavings = &annual
	}

	return summary
}

func isNeverActive(sub engine.Subscriber, anchor time.Time, policy SegmentPolicy) bool {
	if sub.FirstActive.Raw || sub.LastActive.Valid {
		return false
	}
	return ageDays(sub.ProfileCreated, anchor) >= float64(policy.StaleProfileDays)
}

func isDormant(sub engine.Subscriber, anchor time.Time, policy SegmentPolicy) bool {
	window := float64(policy.DormantDays)
	if ageDays(sub.ProfileCreated, anchor) < window {
		return false
	}
	return daysSince(sub.LastOpen, anchor) >= window && daysSince(sub.LastClick, anchor) >= window
}

// ageDays measures profile age at the anchor. Missing dates count as age
// zero so the age clause alone can never qualify them.
func ageDays(t engine.OptionalTime, anchor time.Time) float64 {
	if !t.Valid {
		return 0
	}
	return anchor.Sub(t.Time).Hours() / 24
}

// daysSince measures recency at the anchor. Missing dates are infinitely
// old and always satisfy a recency clause.
func daysSince(t engine.OptionalTime, anchor time.Time) float64 {
	if !t.Valid {
		return inf
	}
	return anchor.Sub(t.Time).Hours() / 24
}

const inf = 1e18
