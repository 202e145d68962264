// Package ledger models the persisted invoice worksheet as an ordered
// table of string cells and matches extracted booking records against
// its rows. Column lookup is fuzzy because the sheet's literal headers
// drift over time ("Booking Code" vs "Booking ID" vs "Code").
package ledger

import "strings"

// Logical column names of the invoice worksheet, in their persisted
// order.
const (
	ColProcessingDate  = "Processing Date"
	ColEmailFrom       = "Email From"
	ColEmailSubject    = "Email Subject"
	ColAssignedTo      = "Assigned To"
	ColHotelName       = "Hotel Name"
	ColGuestName       = "Guest Name"
	ColBookingCode     = "Booking Code"
	ColBillNumber      = "Bill Number"
	ColBillDate        = "Bill Date"
	ColRoomNumber      = "Room Number"
	ColNumberOfGuests  = "Number of Guests"
	ColCheckInDate     = "Check-in Date"
	ColCheckOutDate    = "Check-out Date"
	ColTotalAmount     = "Total Amount"
	ColGSTNumber       = "GST Number"
	ColPDFFilename     = "PDF Filename"
	ColDriveFileID     = "Drive File ID"
	ColUrgencyLevel    = "Urgency Level"
	ColInvoiceReceived = "Invoice Received"
)

// Columns is the full worksheet header row.
var Columns = []string{
	ColProcessingDate, ColEmailFrom, ColEmailSubject, ColAssignedTo,
	ColHotelName, ColGuestName, ColBookingCode, ColBillNumber,
	ColBillDate, ColRoomNumber, ColNumberOfGuests, ColCheckInDate,
	ColCheckOutDate, ColTotalAmount, ColGSTNumber, ColPDFFilename,
	ColDriveFileID, ColUrgencyLevel, ColInvoiceReceived,
}

// columnVariations groups header spellings that mean the same column.
// A logical name belonging to a group matches any header in the group.
var columnVariations = [][]string{
	{"booking code", "booking id", "booking number", "booking ref", "reservation id", "confirmation number"},
	{"guest name", "customer name", "guest"},
	{"hotel name", "property name", "hotel", "property"},
	{"check-in date", "check in", "checkin", "arrival date"},
	{"check-out date", "check out", "checkout", "departure date"},
	{"number of guests", "guests", "pax"},
	{"invoice received", "received", "invoice status"},
	{"assigned to", "assigned", "owner"},
	{"total amount", "amount"},
	{"paid on", "paid", "payment date", "date paid"},
}

// Table is an ordered list of named columns with rows of string cells.
type Table struct {
	Headers []string
	Rows    [][]string
}

// NewTable creates an empty table with the given headers.
func NewTable(headers []string) *Table {
	return &Table{Headers: append([]string(nil), headers...)}
}

// AppendRow adds a row, padding or truncating it to the header width.
func (t *Table) AppendRow(row []string) {
	adjusted := make([]string, len(t.Headers))
	copy(adjusted, row)
	t.Rows = append(t.Rows, adjusted)
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// ColumnIndex resolves a logical column name to a header position using
// case-insensitive equality, then substring containment either way, then
// the known keyword variations. Returns -1 when nothing matches.
func (t *Table) ColumnIndex(logical string) int {
	want := canonical(logical)
	if want == "" {
		return -1
	}

	for i, h := range t.Headers {
		if canonical(h) == want {
			return i
		}
	}
	for i, h := range t.Headers {
		have := canonical(h)
		if have == "" {
			continue
		}
		if strings.Contains(have, want) || strings.Contains(want, have) {
			return i
		}
	}
	for _, group := range columnVariations {
		if !containsVariation(group, want) {
			continue
		}
		for i, h := range t.Headers {
			have := canonical(h)
			for _, v := range group {
				if have == v || strings.Contains(have, v) {
					return i
				}
			}
		}
	}
	return -1
}

// Get returns the cell at (row, logical column), or "" when either does
// not resolve.
func (t *Table) Get(row int, logical string) string {
	col := t.ColumnIndex(logical)
	if col < 0 || row < 0 || row >= len(t.Rows) || col >= len(t.Rows[row]) {
		return ""
	}
	return t.Rows[row][col]
}

// Set writes the cell at (row, logical column); reports whether the
// column resolved and the row exists.
func (t *Table) Set(row int, logical, value string) bool {
	col := t.ColumnIndex(logical)
	if col < 0 || row < 0 || row >= len(t.Rows) {
		return false
	}
	for col >= len(t.Rows[row]) {
		t.Rows[row] = append(t.Rows[row], "")
	}
	t.Rows[row][col] = value
	return true
}

func canonical(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(strings.TrimSpace(s))), " ")
}

func containsVariation(group []string, want string) bool {
	for _, v := range group {
		if v == want || strings.Contains(want, v) || strings.Contains(v, want) {
			return true
		}
	}
	return false
}
