package engine

import (
	"fmt"
	"sort"
	"time"
)

// DayOfWeekStat aggregates the sends that landed on one weekday.
type DayOfWeekStat struct {
	Day           string  `json:"day"`
	Weekday       int     `json:"weekday"` // 0=Sunday ... 6=Saturday
	Value         float64 `json:"value"`
	CampaignCount int     `json:"campaign_count"`
}

// HourOfDayStat aggregates the sends that went out during one clock hour.
type HourOfDayStat struct {
	Hour              int     `json:"hour"`
	HourLabel         string  `json:"hour_label"`
	Value             float64 `json:"value"`
	CampaignCount     int     `json:"campaign_count"`
	PercentageOfTotal float64 `json:"percentage_of_total"`
}

// ByDayOfWeek aggregates a metric per weekday in fixed Sunday-Saturday
// order. All seven days appear; days with no sends report value 0.
func ByDayOfWeek(records []SendRecord, key MetricKey) []DayOfWeekStat {
	var grouped [7][]SendRecord
	for _, r := range records {
		wd := int(r.SentAt.UTC().Weekday())
		grouped[wd] = append(grouped[wd], r)
	}

	stats := make([]DayOfWeekStat, 7)
	for wd := 0; wd < 7; wd++ {
		totals, derived := AggregateAndDerive(grouped[wd])
		stats[wd] = DayOfWeekStat{
			Day:           time.Weekday(wd).String(),
			Weekday:       wd,
			Value:         key.Value(totals, derived),
			CampaignCount: len(grouped[wd]),
		}
	}
	return stats
}

// ByHourOfDay aggregates a metric per send hour. Unlike the weekday
// breakdown this is sparse: only hours with at least one send appear,
// sorted by value descending (hour ascending on ties). PercentageOfTotal
// is the hour's share of all sends across the included hours.
func ByHourOfDay(records []SendRecord, key MetricKey) []HourOfDayStat {
	grouped := make(map[int][]SendRecord)
	for _, r := range records {
		h := r.SentAt.UTC().Hour()
		grouped[h] = append(grouped[h], r)
	}

	total := 0
	for _, g := range grouped {
		total += len(g)
	}

	stats := make([]HourOfDayStat, 0, len(grouped))
	for h, g := range grouped {
		totals, derived := AggregateAndDerive(g)
		stats = append(stats, HourOfDayStat{
			Hour:              h,
			HourLabel:         hourLabel(h),
			Value:             key.Value(totals, derived),
			CampaignCount:     len(g),
			PercentageOfTotal: safePct(float64(len(g)), float64(total)),
		})
	}

	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Value != stats[j].Value {
			return stats[i].Value > stats[j].Value
		}
		return stats[i].Hour < stats[j].Hour
	})
	return stats
}

// hourLabel renders a 0-23 hour as a 12-hour clock label ("12 AM", "5 PM").
func hourLabel(h int) string {
	suffix := "AM"
	display := h
	switch {
	case h == 0:
		display = 12
	case h == 12:
		suffix = "PM"
	case h > 12:
		display = h - 12
		suffix = "PM"
	}
	return fmt.Sprintf("%d %s", display, suffix)
}
