package audience

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/pkom79/email-metrics-cloud-sub001/internal/engine"
)

var anchor = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

func optTime(t time.Time) engine.OptionalTime {
	return engine.OptionalTime{Time: t, Valid: true, Raw: true}
}

func daysAgo(n int) engine.OptionalTime {
	return optTime(anchor.AddDate(0, 0, -n))
}

func missing() engine.OptionalTime {
	return engine.OptionalTime{}
}

func TestNeverActiveSegment(t *testing.T) {
	policy := DefaultSegmentPolicy()

	// Created 31 days before the anchor with no activity: in the segment.
	in := engine.Subscriber{Email: "a@example.com", ProfileCreated: daysAgo(31)}
	assert.True(t, isNeverActive(in, anchor, policy))

	// Created 29 days before the anchor: too young.
	young := engine.Subscriber{Email: "b@example.com", ProfileCreated: daysAgo(29)}
	assert.False(t, isNeverActive(young, anchor, policy))

	// Any first-active value, even an unparseable one, disqualifies.
	active := engine.Subscriber{
		Email:          "c@example.com",
		ProfileCreated: daysAgo(100),
		FirstActive:    engine.OptionalTime{Raw: true},
	}
	assert.False(t, isNeverActive(active, anchor, policy))

	// A last-active instant disqualifies too.
	lastActive := engine.Subscriber{
		Email:          "d@example.com",
		ProfileCreated: daysAgo(100),
		LastActive:     daysAgo(10),
	}
	assert.False(t, isNeverActive(lastActive, anchor, policy))

	// Missing created date counts as age zero: never stale on age alone.
	noCreated := engine.Subscriber{Email: "e@example.com"}
	assert.False(t, isNeverActive(noCreated, anchor, policy))
}

func TestDormantSegment(t *testing.T) {
	policy := DefaultSegmentPolicy()

	// Old profile, both engagement dates past the window: dormant.
	dormant := engine.Subscriber{
		Email:          "a@example.com",
		ProfileCreated: daysAgo(200),
		LastOpen:       daysAgo(100),
		LastClick:      daysAgo(95),
	}
	assert.True(t, isDormant(dormant, anchor, policy))

	// A recent click rescues the profile even with a stale open.
	clicked := engine.Subscriber{
		Email:          "b@example.com",
		ProfileCreated: daysAgo(200),
		LastOpen:       daysAgo(100),
		LastClick:      daysAgo(10),
	}
	assert.False(t, isDormant(clicked, anchor, policy))

	// Missing engagement dates are infinitely old.
	silent := engine.Subscriber{
		Email:          "c@example.com",
		ProfileCreated: daysAgo(200),
		LastOpen:       missing(),
		LastClick:      missing(),
	}
	assert.True(t, isDormant(silent, anchor, policy))

	// Profile younger than the window can never be dormant.
	young := engine.Subscriber{
		Email:          "d@example.com",
		ProfileCreated: daysAgo(30),
		LastOpen:       missing(),
		LastClick:      missing(),
	}
	assert.False(t, isDormant(young, anchor, policy))
}

func TestAnalyzeDeadWeightUnion(t *testing.T) {
	subs := []engine.Subscriber{
		// In both segments; must count once in the union.
		{Email: "Both@Example.com", ProfileCreated: daysAgo(200), LastOpen: missing(), LastClick: missing()},
		// Duplicate of the same address with different casing.
		{Email: "both@example.com", ProfileCreated: daysAgo(200), LastOpen: missing(), LastClick: missing()},
		// Only dormant.
		{Email: "dormant@example.com", ProfileCreated: daysAgo(200), FirstActive: daysAgo(150), LastOpen: daysAgo(120), LastClick: daysAgo(120)},
		// Healthy.
		{Email: "fresh@example.com", ProfileCreated: daysAgo(200), FirstActive: daysAgo(150), LastOpen: daysAgo(5), LastClick: daysAgo(5)},
		// No email: ignored entirely.
		{ProfileCreated: daysAgo(300)},
	}

	summary := AnalyzeDeadWeight(subs, anchor, DefaultSegmentPolicy(), DefaultPricingTiers)

	assert.Equal(t, 5, summary.TotalSubscribers)
	assert.Equal(t, 2, summary.DeadWeightCount, "case-insensitive union dedupes")
	assert.Equal(t, 3, summary.ProjectedCount)
	assert.Equal(t, anchor, summary.AnchorDate)
}

func TestAnalyzeDeadWeightSavings(t *testing.T) {
	// 300 subscribers, 60 dead: crossing from the $20 tier to the free tier.
	subs := make([]engine.Subscriber, 0, 300)
	for i := 0; i < 240; i++ {
		subs = append(subs, engine.Subscriber{
			Email:          emailN(i),
			ProfileCreated: daysAgo(200),
			FirstActive:    daysAgo(150),
			LastOpen:       daysAgo(5),
			LastClick:      daysAgo(5),
		})
	}
	for i := 240; i < 300; i++ {
		subs = append(subs, engine.Subscriber{
			Email:          emailN(i),
			ProfileCreated: daysAgo(200),
		})
	}

	summary := AnalyzeDeadWeight(subs, anchor, DefaultSegmentPolicy(), DefaultPricingTiers)

	assert.Equal(t, 60, summary.DeadWeightCount)
	assert.Equal(t, 240, summary.ProjectedCount)
	assert.True(t, summary.Calculable())
	assert.Equal(t, 20.0, *summary.CurrentPrice)
	assert.Equal(t, 0.0, *summary.ProjectedPrice)
	assert.Equal(t, 20.0, *summary.MonthlySavings)
	assert.Equal(t, 240.0, *summary.AnnualSavings)
}

func TestAnalyzeDeadWeightNotCalculable(t *testing.T) {
	// A list above the pricing table: savings are nil, not zero. One dead
	// profile brings the projected count back inside the table.
	subs := []engine.Subscriber{{Email: emailN(0), ProfileCreated: daysAgo(200)}}
	for i := 1; i < 250001; i++ {
		subs = append(subs, engine.Subscriber{
			Email:          emailN(i),
			ProfileCreated: daysAgo(200),
			FirstActive:    daysAgo(150),
			LastOpen:       daysAgo(5),
			LastClick:      daysAgo(5),
		})
	}

	summary := AnalyzeDeadWeight(subs, anchor, DefaultSegmentPolicy(), DefaultPricingTiers)

	assert.False(t, summary.Calculable())
	assert.Nil(t, summary.CurrentPrice)
	assert.Nil(t, summary.MonthlySavings)
	assert.Nil(t, summary.AnnualSavings)
	// The projected side still fits the table.
	assert.NotNil(t, summary.ProjectedPrice)
}

func emailN(i int) string {
	return fmt.Sprintf("sub%d@example.com", i)
}
