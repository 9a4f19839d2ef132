package ingest

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkom79/email-metrics-cloud-sub001/internal/engine"
)

func TestReadCampaigns(t *testing.T) {
	csv := `Campaign Name,Send Time,Total Recipients,Unique Opens,Unique Clicks,Total Placed Order,Placed Order Value,Unsubscribes,Spam Complaints,Bounces
Spring Sale,2024-03-01 09:00:00,10000,2500,500,40,"$1,234.56",12,1,90
Flash Deal,3/15/2024 5:00 PM,5000,1000,200,10,500,5,0,45
`
	records, stats, err := ReadCampaigns(strings.NewReader(csv))
	require.NoError(t, err)

	assert.Equal(t, 2, stats.RowsRead)
	assert.Equal(t, 2, stats.Imported)
	assert.Zero(t, stats.MissingDate)
	require.Len(t, records, 2)

	first := records[0]
	assert.Equal(t, engine.ChannelCampaign, first.Channel)
	assert.Equal(t, "Spring Sale", first.Name)
	assert.Equal(t, time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC), first.SentAt)
	assert.Equal(t, int64(10000), first.EmailsSent)
	assert.Equal(t, int64(2500), first.UniqueOpens)
	assert.Equal(t, int64(500), first.UniqueClicks)
	assert.Equal(t, int64(40), first.TotalOrders)
	assert.InDelta(t, 1234.56, first.Revenue, 1e-9)
	assert.Equal(t, int64(12), first.Unsubscribes)
	assert.Equal(t, int64(1), first.SpamComplaints)
	assert.Equal(t, int64(90), first.Bounces)

	// US-format PM time stays naive UTC.
	assert.Equal(t, time.Date(2024, 3, 15, 17, 0, 0, 0, time.UTC), records[1].SentAt)

	// Synthesized IDs when the export carries none.
	assert.NotEmpty(t, first.ID)
	assert.NotEqual(t, records[0].ID, records[1].ID)
}

func TestReadCampaignsSkipsBadDates(t *testing.T) {
	csv := `Campaign Name,Send Time,Total Recipients
Good,2024-03-01,100
Bad,not a date,200
AlsoBad,,300
`
	records, stats, err := ReadCampaigns(strings.NewReader(csv))
	require.NoError(t, err)

	assert.Len(t, records, 1)
	assert.Equal(t, 3, stats.RowsRead)
	assert.Equal(t, 1, stats.Imported)
	assert.Equal(t, 2, stats.MissingDate)
}

func TestReadCampaignsNoDateColumn(t *testing.T) {
	csv := `Campaign Name,Total Recipients
Orphan,100
`
	_, _, err := ReadCampaigns(strings.NewReader(csv))
	assert.Error(t, err)
}

func TestReadFlows(t *testing.T) {
	csv := `Flow Name,Send Time,Delivered,Unique Opens,Revenue,Flow Status
welcome_series,2024-03-01 09:00:00,1000,300,250,live
abandoned-cart,2024-03-02 10:00:00,500,200,400,draft
`
	records, stats, err := ReadFlows(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, 2, stats.Imported)

	assert.Equal(t, engine.ChannelFlow, records[0].Channel)
	assert.Equal(t, "welcome_series", records[0].FlowName)
	// Machine names become display names.
	assert.Equal(t, "Welcome Series", records[0].Name)
	assert.Equal(t, "Abandoned Cart", records[1].Name)
	assert.Equal(t, "live", records[0].Status)
	assert.Equal(t, "draft", records[1].Status)
}

func TestReadSubscribers(t *testing.T) {
	csv := `Email,Profile Created On,First Active,Last Active,Last Open,Last Click,Total Customer Lifetime Value,Historic Customer Lifetime Value
Jane.Doe@Example.com,2023-01-15,2023-02-01,2024-03-01,2024-02-20,2024-01-10,350.25,120
quiet@example.com,2023-06-01,,,,,0,
`
	subs, stats, err := ReadSubscribers(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, subs, 2)
	assert.Equal(t, 2, stats.Imported)

	jane := subs[0]
	assert.Equal(t, "jane.doe@example.com", jane.Email, "emails normalize to lowercase")
	assert.True(t, jane.ProfileCreated.Valid)
	assert.True(t, jane.LastOpen.Valid)
	assert.InDelta(t, 350.25, jane.TotalClv, 1e-9)
	require.NotNil(t, jane.HistoricClv)
	assert.InDelta(t, 120.0, *jane.HistoricClv, 1e-9)
	// No buyer column: revenue implies buyer.
	assert.True(t, jane.IsBuyer)

	quiet := subs[1]
	assert.False(t, quiet.FirstActive.Raw, "empty cell leaves Raw false")
	assert.False(t, quiet.LastOpen.Valid)
	assert.Nil(t, quiet.HistoricClv)
	assert.False(t, quiet.IsBuyer)
}

func TestReadSubscribersBuyerColumn(t *testing.T) {
	csv := `Email,Is Buyer,Total CLV
no-revenue-buyer@example.com,true,0
revenue-nonbuyer@example.com,false,500
`
	subs, _, err := ReadSubscribers(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, subs, 2)

	// An explicit buyer flag wins over the revenue fallback.
	assert.True(t, subs[0].IsBuyer)
	assert.False(t, subs[1].IsBuyer)
}

func TestReadSubscribersRequiresEmail(t *testing.T) {
	csv := `Total CLV,Last Open
100,2024-01-01
`
	_, _, err := ReadSubscribers(strings.NewReader(csv))
	assert.Error(t, err)

	// Rows missing an email are skipped, not fatal.
	csv = `Email,Total CLV
,100
ok@example.com,50
`
	subs, stats, err := ReadSubscribers(strings.NewReader(csv))
	require.NoError(t, err)
	assert.Len(t, subs, 1)
	assert.Equal(t, 1, stats.SkippedRows)
}

func TestMapColumns(t *testing.T) {
	header := []string{"\ufeffCampaign Name", " Send Time ", "UNIQUE OPENS", "Unknown Column"}
	m := MapColumns(header)

	assert.Equal(t, 0, m.Index(FieldName), "BOM stripped")
	assert.Equal(t, 1, m.Index(FieldSentAt), "whitespace trimmed")
	assert.Equal(t, 2, m.Index(FieldUniqueOpens), "case-insensitive")
	assert.Equal(t, -1, m.Index(FieldRevenue))
}

func TestMapColumnsFirstMatchWins(t *testing.T) {
	m := MapColumns([]string{"Send Time", "Send Date"})
	assert.Equal(t, 0, m.Index(FieldSentAt))
}

func TestParseHelpers(t *testing.T) {
	assert.Equal(t, int64(1234), parseCount("1,234"))
	assert.Equal(t, int64(123), parseCount("123.0"))
	assert.Equal(t, int64(0), parseCount("-5"), "negative counts clamp to zero")
	assert.Equal(t, int64(0), parseCount(""))

	assert.InDelta(t, 1234.56, parseMoney("$1,234.56"), 1e-9)
	assert.InDelta(t, 0.0, parseMoney("-10"), 1e-9, "negative revenue clamps to zero")
	assert.InDelta(t, 0.0, parseMoney("n/a"), 1e-9)

	assert.True(t, parseBool("TRUE"))
	assert.True(t, parseBool("1"))
	assert.True(t, parseBool("yes"))
	assert.False(t, parseBool("no"))
	assert.False(t, parseBool(""))
}
