// Package booking extracts booking records from inbound email messages
// and invoice fields from their PDF attachments. Extraction runs a
// precedence cascade: structured HTML tables, then a language-model
// oracle, then regex and keyword-proximity fallbacks over the raw text.
package booking

// Source identifies which cascade stage produced the booking code.
type Source string

const (
	SourceNone            Source = ""
	SourceTable           Source = "table"
	SourceOracle          Source = "oracle"
	SourceRegexFallback   Source = "regex-fallback"
	SourceHeuristicWindow Source = "heuristic-window"
)

// Record holds the booking fields extracted from one message. Absent
// fields stay empty; an all-empty record is a valid outcome, not an
// error.
type Record struct {
	BookingCode  string
	GuestName    string
	ClientName   string
	PropertyName string
	CheckInDate  string
	CheckOutDate string
	GuestCount   string
	TotalAmount  string
	Source       Source
}

// UnprocessedHotelName marks a PDF attachment whose extraction failed.
// Invoices carrying it are excluded from upload and row creation.
const UnprocessedHotelName = "PDF couldn't be processed"

// PDFInvoice holds the invoice fields extracted from one PDF attachment.
type PDFInvoice struct {
	Filename     string
	HotelName    string
	GuestName    string
	BillNumber   string
	BillDate     string
	CheckInDate  string
	CheckOutDate string
	RoomNumber   string
	GuestCount   string
	TotalAmount  string
	GSTNumber    string
	PANNumber    string
}

// Processed reports whether extraction succeeded for this attachment.
func (p *PDFInvoice) Processed() bool {
	return p.HotelName != UnprocessedHotelName
}
