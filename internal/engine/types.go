package engine

import (
	"strings"
	"time"
)

// Channel discriminates the two kinds of send events.
type Channel string

const (
	ChannelCampaign Channel = "campaign"
	ChannelFlow     Channel = "flow"
)

// OptionalTime is a timestamp that may be absent or unparseable.
// Raw records whether the source carried any value at all, so callers can
// distinguish "field absent" from "value present but not a parseable date".
type OptionalTime struct {
	Time  time.Time `json:"time,omitempty"`
	Valid bool      `json:"valid"`
	Raw   bool      `json:"raw"`
}

// OptionalTimeFrom builds an OptionalTime from a raw source string, routing
// it through NormalizeDate.
func OptionalTimeFrom(raw string) OptionalTime {
	t, ok := NormalizeDate(raw)
	return OptionalTime{Time: t, Valid: ok, Raw: strings.TrimSpace(raw) != ""}
}

// SendRecord is one outbound email event (campaign blast or flow step)
// with its engagement and revenue counters. Records are immutable after
// ingestion; the engine never modifies them.
type SendRecord struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	SentAt         time.Time `json:"sent_at"`
	Channel        Channel   `json:"channel"`
	FlowName       string    `json:"flow_name,omitempty"` // flows only
	Status         string    `json:"status,omitempty"`    // flows only: "live", "draft"
	EmailsSent     int64     `json:"emails_sent"`
	UniqueOpens    int64     `json:"unique_opens"`
	UniqueClicks   int64     `json:"unique_clicks"`
	TotalOrders    int64     `json:"total_orders"`
	Revenue        float64   `json:"revenue"`
	Unsubscribes   int64     `json:"unsubscribes"`
	SpamComplaints int64     `json:"spam_complaints"`
	Bounces        int64     `json:"bounces"`
}

// Subscriber is one audience profile. Email is the identity key; all
// joins between segments dedupe on the lowercased email.
type Subscriber struct {
	Email          string       `json:"email"`
	ProfileCreated OptionalTime `json:"profile_created"`
	FirstActive    OptionalTime `json:"first_active"`
	LastActive     OptionalTime `json:"last_active"`
	LastOpen       OptionalTime `json:"last_open"`
	LastClick      OptionalTime `json:"last_click"`
	TotalClv       float64      `json:"total_clv"`
	HistoricClv    *float64     `json:"historic_clv,omitempty"`
	IsBuyer        bool         `json:"is_buyer"`
}

// AggregateTotals is the raw counter sum over a set of send records.
type AggregateTotals struct {
	Revenue        float64 `json:"revenue"`
	EmailsSent     int64   `json:"emails_sent"`
	TotalOrders    int64   `json:"total_orders"`
	UniqueOpens    int64   `json:"unique_opens"`
	UniqueClicks   int64   `json:"unique_clicks"`
	Unsubscribes   int64   `json:"unsubscribes"`
	SpamComplaints int64   `json:"spam_complaints"`
	Bounces        int64   `json:"bounces"`
}

// DerivedMetrics holds the ratios computed from AggregateTotals. Every
// rate is on a 0-100 scale; AvgOrderValue and RevenuePerEmail are currency.
type DerivedMetrics struct {
	AvgOrderValue   float64 `json:"avg_order_value"`
	RevenuePerEmail float64 `json:"revenue_per_email"`
	OpenRate        float64 `json:"open_rate"`
	ClickRate       float64 `json:"click_rate"`
	ClickToOpenRate float64 `json:"click_to_open_rate"`
	ConversionRate  float64 `json:"conversion_rate"`
	UnsubscribeRate float64 `json:"unsubscribe_rate"`
	SpamRate        float64 `json:"spam_rate"`
	BounceRate      float64 `json:"bounce_rate"`
}

// TimeSeriesPoint is one bucket of a metric series. Totals carries the
// full aggregate for the bucket; Value is the requested metric.
type TimeSeriesPoint struct {
	BucketStart time.Time       `json:"bucket_start"`
	Totals      AggregateTotals `json:"totals"`
	Value       float64         `json:"value"`
}
