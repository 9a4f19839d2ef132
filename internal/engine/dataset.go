package engine

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ChannelFilter selects which send records a query sees.
type ChannelFilter string

const (
	FilterAll       ChannelFilter = "all"
	FilterCampaigns ChannelFilter = "campaigns"
	FilterFlows     ChannelFilter = "flows"
)

// Scope narrows a query to a channel and, for flows, optionally one flow name.
type Scope struct {
	Channel  ChannelFilter `json:"channel"`
	FlowName string        `json:"flow_name,omitempty"`
}

// ScopeAll is the unfiltered scope.
var ScopeAll = Scope{Channel: FilterAll}

// Dataset is one analysis session: immutable snapshots of the ingested
// campaign sends, flow sends, and subscriber profiles. It is constructed
// once per session and passed into every engine call; there is no implicit
// global store. All methods are read-only and safe to call repeatedly.
type Dataset struct {
	campaigns   []SendRecord
	flows       []SendRecord
	subscribers []Subscriber
	loadedAt    time.Time
}

// NewDataset copies the given collections into a new session context.
// The copies guarantee the engine's read-only snapshot semantics even if
// the caller later mutates its own slices.
func NewDataset(campaigns, flows []SendRecord, subscribers []Subscriber) *Dataset {
	d := &Dataset{
		campaigns:   make([]SendRecord, len(campaigns)),
		flows:       make([]SendRecord, len(flows)),
		subscribers: make([]Subscriber, len(subscribers)),
		loadedAt:    time.Now().UTC(),
	}
	copy(d.campaigns, campaigns)
	copy(d.flows, flows)
	copy(d.subscribers, subscribers)
	return d
}

// LoadedAt reports when the session was constructed.
func (d *Dataset) LoadedAt() time.Time { return d.loadedAt }

// Campaigns returns the campaign sends.
func (d *Dataset) Campaigns() []SendRecord { return d.campaigns }

// Flows returns the flow sends.
func (d *Dataset) Flows() []SendRecord { return d.flows }

// Subscribers returns the audience profiles.
func (d *Dataset) Subscribers() []Subscriber { return d.subscribers }

// Records returns the send records visible under the given scope.
func (d *Dataset) Records(scope Scope) []SendRecord {
	switch scope.Channel {
	case FilterCampaigns:
		return d.campaigns
	case FilterFlows:
		if scope.FlowName == "" {
			return d.flows
		}
		out := make([]SendRecord, 0, len(d.flows))
		for _, r := range d.flows {
			if strings.EqualFold(r.FlowName, scope.FlowName) {
				out = append(out, r)
			}
		}
		return out
	default:
		all := make([]SendRecord, 0, len(d.campaigns)+len(d.flows))
		all = append(all, d.campaigns...)
		all = append(all, d.flows...)
		return all
	}
}

// AllRecords returns every send record regardless of scope.
func (d *Dataset) AllRecords() []SendRecord {
	return d.Records(ScopeAll)
}

// ReferenceDate is the anchor for trailing windows: the latest sent
// timestamp among the records visible under scope, or now when the scope
// is empty.
func (d *Dataset) ReferenceDate(scope Scope) time.Time {
	records := d.Records(scope)
	if len(records) == 0 {
		return time.Now().UTC()
	}
	max := records[0].SentAt
	for _, r := range records[1:] {
		if r.SentAt.After(max) {
			max = r.SentAt
		}
	}
	return max
}

// DateRange is a resolved inclusive query window. AllTime ranges cover the
// whole dataset and disable period comparison.
type DateRange struct {
	From    time.Time `json:"from"`
	To      time.Time `json:"to"`
	Days    int       `json:"days"`
	AllTime bool      `json:"all_time"`
}

// ResolveRange turns a preset name ("30d", "90d", ..., "all") into a
// concrete window anchored to the scope's reference date.
func (d *Dataset) ResolveRange(scope Scope, preset string) (DateRange, error) {
	if preset == "all" {
		records := d.Records(scope)
		if len(records) == 0 {
			now := time.Now().UTC()
			return DateRange{From: StartOfDay(now), To: EndOfDay(now), Days: 1, AllTime: true}, nil
		}
		min, max := records[0].SentAt, records[0].SentAt
		for _, r := range records[1:] {
			if r.SentAt.Before(min) {
				min = r.SentAt
			}
			if r.SentAt.After(max) {
				max = r.SentAt
			}
		}
		from, to := StartOfDay(min), EndOfDay(max)
		return DateRange{From: from, To: to, Days: daySpan(from, to), AllTime: true}, nil
	}

	days, err := presetDays(preset)
	if err != nil {
		return DateRange{}, err
	}
	to := EndOfDay(d.ReferenceDate(scope))
	from := StartOfDay(to.AddDate(0, 0, -(days - 1)))
	return DateRange{From: from, To: to, Days: days}, nil
}

// ParseCustomRange resolves an explicit from/to pair in YYYY-MM-DD form.
// Bounds are taken literally and expanded to full days.
func ParseCustomRange(fromStr, toStr string) (DateRange, error) {
	from, err := time.ParseInLocation("2006-01-02", fromStr, time.UTC)
	if err != nil {
		return DateRange{}, fmt.Errorf("invalid from date %q: %w", fromStr, err)
	}
	to, err := time.ParseInLocation("2006-01-02", toStr, time.UTC)
	if err != nil {
		return DateRange{}, fmt.Errorf("invalid to date %q: %w", toStr, err)
	}
	if to.Before(from) {
		return DateRange{}, fmt.Errorf("range end %s precedes start %s", toStr, fromStr)
	}
	f, t := StartOfDay(from), EndOfDay(to)
	return DateRange{From: f, To: t, Days: daySpan(f, t)}, nil
}

// RecordsInRange filters records to those sent within [from, to].
func RecordsInRange(records []SendRecord, from, to time.Time) []SendRecord {
	out := make([]SendRecord, 0, len(records))
	for _, r := range records {
		if r.SentAt.Before(from) || r.SentAt.After(to) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// presetDays maps named presets to trailing day counts.
func presetDays(preset string) (int, error) {
	if !strings.HasSuffix(preset, "d") {
		return 0, fmt.Errorf("unknown range preset %q", preset)
	}
	n, err := strconv.Atoi(strings.TrimSuffix(preset, "d"))
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("unknown range preset %q", preset)
	}
	switch n {
	case 7, 14, 30, 60, 90, 120, 180, 365:
		return n, nil
	}
	return 0, fmt.Errorf("unknown range preset %q", preset)
}

// StartOfDay truncates an instant to midnight UTC.
func StartOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// EndOfDay returns the last representable instant of the UTC day.
func EndOfDay(t time.Time) time.Time {
	return StartOfDay(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

// daySpan counts the inclusive whole days between two instants that are
// already aligned to day bounds.
func daySpan(from, to time.Time) int {
	return int(StartOfDay(to).Sub(StartOfDay(from)).Hours()/24) + 1
}
