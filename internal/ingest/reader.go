package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/pkom79/email-metrics-cloud-sub001/internal/engine"
)

// ImportStats reports what happened during one CSV import. Bad rows are
// skipped and counted, never fatal: a single mangled row must not sink a
// 200k-row export.
type ImportStats struct {
	RowsRead    int `json:"rows_read"`
	Imported    int `json:"imported"`
	SkippedRows int `json:"skipped_rows"`
	MissingDate int `json:"missing_date"`
}

var titleCaser = cases.Title(language.English)

func newCSVReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1
	return cr
}

// ReadCampaigns parses a campaign export into send records. Requires a
// mappable send-time column; rows whose date fails every normalization
// strategy are counted in MissingDate and excluded (they could never be
// placed in a date-bounded query anyway).
func ReadCampaigns(r io.Reader) ([]engine.SendRecord, ImportStats, error) {
	return readSends(r, engine.ChannelCampaign)
}

// ReadFlows parses a flow-message export into send records.
func ReadFlows(r io.Reader) ([]engine.SendRecord, ImportStats, error) {
	return readSends(r, engine.ChannelFlow)
}

func readSends(r io.Reader, channel engine.Channel) ([]engine.SendRecord, ImportStats, error) {
	cr := newCSVReader(r)
	var stats ImportStats

	header, err := cr.Read()
	if err != nil {
		return nil, stats, fmt.Errorf("read header: %w", err)
	}
	mapping := MapColumns(header)
	if mapping.Index(FieldSentAt) < 0 {
		return nil, stats, fmt.Errorf("no send-time column in header %v", header)
	}

	var records []engine.SendRecord
	rowNum := 0
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			stats.SkippedRows++
			continue
		}
		rowNum++
		stats.RowsRead++

		rec, ok := sendFromRow(row, mapping, channel, rowNum)
		if !ok {
			stats.MissingDate++
			continue
		}
		records = append(records, rec)
		stats.Imported++
	}
	return records, stats, nil
}

func sendFromRow(row []string, m *ColumnMapping, channel engine.Channel, rowNum int) (engine.SendRecord, bool) {
	rec := engine.SendRecord{Channel: channel}
	for i, raw := range row {
		val := strings.TrimSpace(raw)
		if val == "" {
			continue
		}
		field, mapped := m.FieldMap[i]
		if !mapped {
			continue
		}
		switch field {
		case FieldID:
			rec.ID = val
		case FieldName:
			rec.Name = val
		case FieldSentAt:
			if t, ok := engine.NormalizeDate(val); ok {
				rec.SentAt = t
			}
		case FieldFlowName:
			rec.FlowName = val
		case FieldStatus:
			rec.Status = strings.ToLower(val)
		case FieldEmailsSent:
			rec.EmailsSent = parseCount(val)
		case FieldUniqueOpens:
			rec.UniqueOpens = parseCount(val)
		case FieldUniqueClicks:
			rec.UniqueClicks = parseCount(val)
		case FieldTotalOrders:
			rec.TotalOrders = parseCount(val)
		case FieldRevenue:
			rec.Revenue = parseMoney(val)
		case FieldUnsubscribes:
			rec.Unsubscribes = parseCount(val)
		case FieldSpamComplaints:
			rec.SpamComplaints = parseCount(val)
		case FieldBounces:
			rec.Bounces = parseCount(val)
		}
	}

	if rec.SentAt.IsZero() {
		return engine.SendRecord{}, false
	}
	if rec.ID == "" {
		rec.ID = fmt.Sprintf("%s-%d", channel, rowNum)
	}
	if rec.Name == "" && rec.FlowName != "" {
		// Flow exports often carry machine names like "welcome_series".
		rec.Name = titleCaser.String(strings.ReplaceAll(strings.ReplaceAll(rec.FlowName, "_", " "), "-", " "))
	}
	return rec, true
}

// ReadSubscribers parses an audience export. Requires an email column;
// rows without an email are skipped. Date fields keep their raw-presence
// flag so segmentation can tell "absent" from "unparseable".
func ReadSubscribers(r io.Reader) ([]engine.Subscriber, ImportStats, error) {
	cr := newCSVReader(r)
	var stats ImportStats

	header, err := cr.Read()
	if err != nil {
		return nil, stats, fmt.Errorf("read header: %w", err)
	}
	mapping := MapColumns(header)
	if mapping.Index(FieldEmail) < 0 {
		return nil, stats, fmt.Errorf("no email column in header %v", header)
	}

	var subs []engine.Subscriber
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			stats.SkippedRows++
			continue
		}
		stats.RowsRead++

		sub, ok := subscriberFromRow(row, mapping)
		if !ok {
			stats.SkippedRows++
			continue
		}
		subs = append(subs, sub)
		stats.Imported++
	}
	return subs, stats, nil
}

func subscriberFromRow(row []string, m *ColumnMapping) (engine.Subscriber, bool) {
	var sub engine.Subscriber
	sawBuyerColumn := false
	for i, raw := range row {
		val := strings.TrimSpace(raw)
		field, mapped := m.FieldMap[i]
		if !mapped {
			continue
		}
		switch field {
		case FieldEmail:
			sub.Email = strings.ToLower(strings.Trim(val, "\"'<>"))
		case FieldProfileCreated:
			sub.ProfileCreated = engine.OptionalTimeFrom(val)
		case FieldFirstActive:
			sub.FirstActive = engine.OptionalTimeFrom(val)
		case FieldLastActive:
			sub.LastActive = engine.OptionalTimeFrom(val)
		case FieldLastOpen:
			sub.LastOpen = engine.OptionalTimeFrom(val)
		case FieldLastClick:
			sub.LastClick = engine.OptionalTimeFrom(val)
		case FieldTotalClv:
			sub.TotalClv = parseMoney(val)
		case FieldHistoricClv:
			if val != "" {
				v := parseMoney(val)
				sub.HistoricClv = &v
			}
		case FieldIsBuyer:
			if val != "" {
				sawBuyerColumn = true
				sub.IsBuyer = parseBool(val)
			}
		}
	}
	if sub.Email == "" {
		return engine.Subscriber{}, false
	}
	if !sawBuyerColumn {
		// Exports without a buyer flag: anyone with attributed revenue is
		// a buyer.
		sub.IsBuyer = sub.TotalClv > 0 || (sub.HistoricClv != nil && *sub.HistoricClv > 0)
	}
	return sub, true
}

// parseCount reads a lenient integer: thousands separators, surrounding
// whitespace, and float-formatted counts ("123.0") all accepted.
func parseCount(raw string) int64 {
	s := strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	if s == "" {
		return 0
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		if n < 0 {
			return 0
		}
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f > 0 {
		return int64(f)
	}
	return 0
}

// parseMoney reads a lenient currency amount: "$1,234.56" -> 1234.56.
// Negative amounts clamp to zero per the record invariants.
func parseMoney(raw string) float64 {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 0 {
		return 0
	}
	return f
}

func parseBool(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "1", "yes", "y", "t":
		return true
	}
	return false
}
