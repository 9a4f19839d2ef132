package engine

import "time"

// Granularity is the bucket width of a time series.
type Granularity string

const (
	GranularityDaily   Granularity = "daily"
	GranularityWeekly  Granularity = "weekly"
	GranularityMonthly Granularity = "monthly"
)

// ParseGranularity validates a caller-supplied granularity override.
func ParseGranularity(s string) (Granularity, bool) {
	switch Granularity(s) {
	case GranularityDaily, GranularityWeekly, GranularityMonthly:
		return Granularity(s), true
	}
	return "", false
}

// PickGranularity selects a bucket width for a span. The thresholds are a
// policy choice, monotonic by construction: daily up to 60 days, weekly up
// to 180, monthly beyond.
func PickGranularity(spanDays int) Granularity {
	switch {
	case spanDays <= 60:
		return GranularityDaily
	case spanDays <= 180:
		return GranularityWeekly
	default:
		return GranularityMonthly
	}
}

// BuildSeries partitions [rangeStart, rangeEnd] (inclusive, full-day
// bounds) into contiguous buckets aligned to the granularity, aggregates
// each bucket independently, and emits one point per bucket in ascending
// order. Buckets with zero records still appear with all-zero totals.
//
// Daily buckets are calendar days, weekly buckets are 7-day windows
// anchored to the range start, and monthly buckets are calendar months.
func BuildSeries(records []SendRecord, key MetricKey, rangeStart, rangeEnd time.Time, g Granularity) []TimeSeriesPoint {
	start := StartOfDay(rangeStart)
	end := EndOfDay(rangeEnd)
	if end.Before(start) {
		return nil
	}

	starts := bucketStarts(start, end, g)
	grouped := make([][]SendRecord, len(starts))
	for _, r := range records {
		if r.SentAt.Before(start) || r.SentAt.After(end) {
			continue
		}
		idx := bucketIndex(r.SentAt, start, g)
		if idx >= 0 && idx < len(grouped) {
			grouped[idx] = append(grouped[idx], r)
		}
	}

	points := make([]TimeSeriesPoint, len(starts))
	for i, bucketStart := range starts {
		totals, derived := AggregateAndDerive(grouped[i])
		points[i] = TimeSeriesPoint{
			BucketStart: bucketStart,
			Totals:      totals,
			Value:       key.Value(totals, derived),
		}
	}
	return points
}

func bucketStarts(start, end time.Time, g Granularity) []time.Time {
	var starts []time.Time
	switch g {
	case GranularityWeekly:
		for cur := start; !cur.After(end); cur = cur.AddDate(0, 0, 7) {
			starts = append(starts, cur)
		}
	case GranularityMonthly:
		cur := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC)
		for ; !cur.After(end); cur = cur.AddDate(0, 1, 0) {
			starts = append(starts, cur)
		}
	default:
		for cur := start; !cur.After(end); cur = cur.AddDate(0, 0, 1) {
			starts = append(starts, cur)
		}
	}
	return starts
}

func bucketIndex(sentAt, start time.Time, g Granularity) int {
	switch g {
	case GranularityWeekly:
		return int(StartOfDay(sentAt).Sub(start).Hours() / 24 / 7)
	case GranularityMonthly:
		return (sentAt.Year()-start.Year())*12 + int(sentAt.Month()) - int(start.Month())
	default:
		return int(StartOfDay(sentAt).Sub(start).Hours() / 24)
	}
}
