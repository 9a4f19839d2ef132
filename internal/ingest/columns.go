// Package ingest turns exported CSV files into engine records. It is the
// collaborator the engine expects upstream of it: header alias mapping,
// lenient value parsing, and date normalization. Upload mechanics and
// column-mapping UI live outside this repository; everything here works
// from an io.Reader.
package ingest

import "strings"

// Field is a canonical column name shared by all export sources.
type Field string

const (
	// Send-record fields
	FieldID             Field = "id"
	FieldName           Field = "name"
	FieldSentAt         Field = "sent_at"
	FieldFlowName       Field = "flow_name"
	FieldStatus         Field = "status"
	FieldEmailsSent     Field = "emails_sent"
	FieldUniqueOpens    Field = "unique_opens"
	FieldUniqueClicks   Field = "unique_clicks"
	FieldTotalOrders    Field = "total_orders"
	FieldRevenue        Field = "revenue"
	FieldUnsubscribes   Field = "unsubscribes"
	FieldSpamComplaints Field = "spam_complaints"
	FieldBounces        Field = "bounces"

	// Subscriber fields
	FieldEmail          Field = "email"
	FieldProfileCreated Field = "profile_created"
	FieldFirstActive    Field = "first_active"
	FieldLastActive     Field = "last_active"
	FieldLastOpen       Field = "last_open"
	FieldLastClick      Field = "last_click"
	FieldTotalClv       Field = "total_clv"
	FieldHistoricClv    Field = "historic_clv"
	FieldIsBuyer        Field = "is_buyer"
)

// columnAliases maps normalized header names to canonical fields. Multiple
// vendor spellings of the same column all land on one field.
var columnAliases = map[string]Field{
	// Identity / naming
	"id":                FieldID,
	"campaign id":       FieldID,
	"message id":        FieldID,
	"campaign name":     FieldName,
	"subject":           FieldName,
	"subject line":      FieldName,
	"message name":      FieldName,
	"flow message name": FieldName,
	"name":              FieldName,

	// Timing
	"send time": FieldSentAt,
	"sent at":   FieldSentAt,
	"send date": FieldSentAt,
	"day":       FieldSentAt,
	"sent":      FieldSentAt,
	"send_time": FieldSentAt,

	// Flow metadata
	"flow name":   FieldFlowName,
	"flow":        FieldFlowName,
	"flow_name":   FieldFlowName,
	"status":      FieldStatus,
	"flow status": FieldStatus,

	// Volume counters
	"total recipients": FieldEmailsSent,
	"recipients":       FieldEmailsSent,
	"delivered":        FieldEmailsSent,
	"emails sent":      FieldEmailsSent,
	"sends":            FieldEmailsSent,

	"unique opens": FieldUniqueOpens,
	"opens":        FieldUniqueOpens,
	"opened":       FieldUniqueOpens,

	"unique clicks": FieldUniqueClicks,
	"clicks":        FieldUniqueClicks,
	"clicked":       FieldUniqueClicks,

	"total placed order": FieldTotalOrders,
	"placed order":       FieldTotalOrders,
	"orders":             FieldTotalOrders,
	"total orders":       FieldTotalOrders,
	"conversions":        FieldTotalOrders,

	"revenue":            FieldRevenue,
	"total revenue":      FieldRevenue,
	"placed order value": FieldRevenue,
	"conversion value":   FieldRevenue,

	"unsubscribes":    FieldUnsubscribes,
	"unsubscribed":    FieldUnsubscribes,
	"unsubs":          FieldUnsubscribes,
	"spam complaints": FieldSpamComplaints,
	"spam":            FieldSpamComplaints,
	"complaints":      FieldSpamComplaints,
	"bounces":         FieldBounces,
	"bounced":         FieldBounces,

	// Subscriber profile
	"email":         FieldEmail,
	"email address": FieldEmail,
	"e-mail":        FieldEmail,

	"profile created on": FieldProfileCreated,
	"profile created":    FieldProfileCreated,
	"created":            FieldProfileCreated,
	"date added":         FieldProfileCreated,

	"first active":  FieldFirstActive,
	"first_active":  FieldFirstActive,
	"last active":   FieldLastActive,
	"last_active":   FieldLastActive,
	"last open":     FieldLastOpen,
	"last opened":   FieldLastOpen,
	"last click":    FieldLastClick,
	"last clicked":  FieldLastClick,

	"total customer lifetime value":    FieldTotalClv,
	"total clv":                        FieldTotalClv,
	"predicted clv":                    FieldTotalClv,
	"historic customer lifetime value": FieldHistoricClv,
	"historic clv":                     FieldHistoricClv,

	"is buyer": FieldIsBuyer,
	"buyer":    FieldIsBuyer,
	"is_buyer": FieldIsBuyer,
}

// ColumnMapping resolves CSV column indices to canonical fields.
type ColumnMapping struct {
	FieldMap map[int]Field
	RawNames []string
}

// MapColumns resolves a header row. Unknown headers are simply not mapped;
// the readers decide which fields are required for their record kind.
func MapColumns(header []string) *ColumnMapping {
	m := &ColumnMapping{
		FieldMap: make(map[int]Field, len(header)),
		RawNames: header,
	}
	for i, h := range header {
		normalized := strings.ToLower(strings.TrimSpace(h))
		normalized = strings.Trim(normalized, "\"'")
		normalized = strings.TrimPrefix(normalized, "\ufeff")
		if field, ok := columnAliases[normalized]; ok {
			// First matching column wins when an export repeats a header.
			if !m.has(field) {
				m.FieldMap[i] = field
			}
		}
	}
	return m
}

func (m *ColumnMapping) has(f Field) bool {
	for _, v := range m.FieldMap {
		if v == f {
			return true
		}
	}
	return false
}

// Index returns the column index of a field, or -1 when unmapped.
func (m *ColumnMapping) Index(f Field) int {
	for i, v := range m.FieldMap {
		if v == f {
			return i
		}
	}
	return -1
}
