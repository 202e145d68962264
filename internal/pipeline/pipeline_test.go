package pipeline

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"inboxledger/internal/booking"
	"inboxledger/internal/ledger"
	"inboxledger/internal/mail"
	"inboxledger/internal/vendor"
)

type fakeMail struct {
	messages []*mail.RawMessage
	read     []string
}

func (f *fakeMail) ListUnread(ctx context.Context, since time.Time) ([]*mail.RawMessage, error) {
	return f.messages, nil
}

func (f *fakeMail) MarkRead(ctx context.Context, messageID string) error {
	f.read = append(f.read, messageID)
	return nil
}

type fakeBlobs struct {
	uploads []string
}

func (f *fakeBlobs) EnsureFolder(ctx context.Context, name string) (string, error) {
	return "folder-" + name, nil
}

func (f *fakeBlobs) Upload(ctx context.Context, data []byte, filename, folderID string) (string, error) {
	f.uploads = append(f.uploads, folderID+"/"+filename)
	return fmt.Sprintf("file-%d", len(f.uploads)), nil
}

type fakeTables struct {
	sheets map[string]*ledger.Table
	writes []string
}

func (f *fakeTables) Read(ctx context.Context, worksheet string) (*ledger.Table, error) {
	t, ok := f.sheets[worksheet]
	if !ok {
		return nil, fmt.Errorf("worksheet %q not found", worksheet)
	}
	return t, nil
}

func (f *fakeTables) Write(ctx context.Context, worksheet string, table *ledger.Table) error {
	f.sheets[worksheet] = table
	f.writes = append(f.writes, worksheet)
	return nil
}

func testNow() time.Time {
	return time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)
}

func testResolver() *vendor.Resolver {
	ref := vendor.NewReference()
	ref.Add("Lotus Residency", "SANDHYA")
	return vendor.NewResolver(ref, nil)
}

func testOptions() Options {
	return Options{
		LedgerWorksheet: "Invoice Data",
		MasterWorksheet: "Master Bookings",
		DaysToSearch:    7,
		Now:             testNow,
	}
}

func masterTable(code string) *ledger.Table {
	t := ledger.NewTable([]string{
		"Booking Code", "Guest Name", "Hotel Name",
		"Check-in Date", "Check-out Date", "Invoice Received",
	})
	t.AppendRow([]string{code, "Asha Rao", "Lotus Residency", "12/05/2025", "14/05/2025", ""})
	return t
}

func TestRunAppendsRowAndReconciles(t *testing.T) {
	msg := &mail.RawMessage{
		ID:      "msg-1",
		From:    "Lotus Residency <billing@lotus.example>",
		Subject: "Invoice for your upcoming stay",
		HTMLBody: `<html><body><table>
			<tr><th>Booking Code</th><th>Guest Name</th><th>Hotel Name</th><th>Check-In Date</th><th>Check-Out Date</th></tr>
			<tr><td>1234567</td><td>Asha Rao</td><td>Lotus Residency</td><td>12/05/2025</td><td>14/05/2025</td></tr>
		</table></body></html>`,
	}
	src := &fakeMail{messages: []*mail.RawMessage{msg}}
	tables := &fakeTables{sheets: map[string]*ledger.Table{
		"Invoice Data":    ledger.NewTable(ledger.Columns),
		"Master Bookings": masterTable("1234567.0"),
	}}

	p := New(src, &fakeBlobs{}, tables, nil, booking.NewExtractor(nil, nil, nil), testResolver(), testOptions())
	stats, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if stats.MessagesScanned != 1 || stats.InvoicesDetected != 1 {
		t.Errorf("scanned = %d, detected = %d, want 1 and 1", stats.MessagesScanned, stats.InvoicesDetected)
	}
	if stats.RowsAppended != 1 {
		t.Fatalf("RowsAppended = %d, want 1", stats.RowsAppended)
	}

	lt := tables.sheets["Invoice Data"]
	if lt.Len() != 1 {
		t.Fatalf("ledger rows = %d, want 1", lt.Len())
	}
	checks := map[string]string{
		ledger.ColProcessingDate: "2026-03-10 09:30:00",
		ledger.ColEmailFrom:      "billing@lotus.example",
		ledger.ColAssignedTo:     "SANDHYA",
		ledger.ColHotelName:      "Lotus Residency",
		ledger.ColGuestName:      "Asha Rao",
		ledger.ColBookingCode:    "1234567",
		ledger.ColCheckInDate:    "2025-05-12",
		ledger.ColCheckOutDate:   "2025-05-14",
	}
	for col, want := range checks {
		if got := lt.Get(0, col); got != want {
			t.Errorf("%s = %q, want %q", col, got, want)
		}
	}

	if stats.Match.Updated != 1 {
		t.Errorf("Match.Updated = %d, want 1", stats.Match.Updated)
	}
	master := tables.sheets["Master Bookings"]
	if got := master.Get(0, ledger.ColInvoiceReceived); got != ledger.ReceivedMark {
		t.Errorf("master Invoice Received = %q, want %q", got, ledger.ReceivedMark)
	}

	if len(src.read) != 1 || src.read[0] != "msg-1" {
		t.Errorf("marked read = %v, want [msg-1]", src.read)
	}
}

func TestRunLeavesNonInvoiceUnread(t *testing.T) {
	msg := &mail.RawMessage{
		ID:        "msg-2",
		From:      "colleague@example.com",
		Subject:   "Team lunch next week",
		PlainBody: "See you all on Friday.",
	}
	src := &fakeMail{messages: []*mail.RawMessage{msg}}
	tables := &fakeTables{sheets: map[string]*ledger.Table{
		"Invoice Data":    ledger.NewTable(ledger.Columns),
		"Master Bookings": masterTable("1234567"),
	}}

	p := New(src, &fakeBlobs{}, tables, nil, booking.NewExtractor(nil, nil, nil), testResolver(), testOptions())
	stats, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if stats.InvoicesDetected != 0 || stats.RowsAppended != 0 {
		t.Errorf("detected = %d, appended = %d, want 0 and 0", stats.InvoicesDetected, stats.RowsAppended)
	}
	if len(src.read) != 0 {
		t.Errorf("marked read = %v, want none", src.read)
	}
	if len(tables.writes) != 0 {
		t.Errorf("writes = %v, want none", tables.writes)
	}
}

func TestRunSkipsUnprocessedAttachment(t *testing.T) {
	msg := &mail.RawMessage{
		ID:        "msg-3",
		From:      "reservations@example.com",
		Subject:   "Invoice attached",
		PlainBody: "Your booking reference 9876543 is confirmed.",
		Attachments: []mail.Attachment{
			{Filename: "scan.pdf", MimeType: "application/pdf", Data: []byte("not a pdf")},
		},
	}
	src := &fakeMail{messages: []*mail.RawMessage{msg}}
	blobs := &fakeBlobs{}
	tables := &fakeTables{sheets: map[string]*ledger.Table{
		"Invoice Data":    ledger.NewTable(ledger.Columns),
		"Master Bookings": masterTable("9876543"),
	}}

	p := New(src, blobs, tables, nil, booking.NewExtractor(nil, nil, nil), testResolver(), testOptions())
	stats, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(blobs.uploads) != 0 {
		t.Errorf("uploads = %v, want none for unprocessed PDF", blobs.uploads)
	}
	if stats.RowsAppended != 1 {
		t.Fatalf("RowsAppended = %d, want 1 record-only row", stats.RowsAppended)
	}
	lt := tables.sheets["Invoice Data"]
	if got := lt.Get(0, ledger.ColBookingCode); got != "9876543" {
		t.Errorf("Booking Code = %q, want 9876543", got)
	}
	if got := lt.Get(0, ledger.ColPDFFilename); got != "" {
		t.Errorf("PDF Filename = %q, want empty", got)
	}
	if got := lt.Get(0, ledger.ColHotelName); got == booking.UnprocessedHotelName {
		t.Errorf("sentinel hotel name leaked into ledger row")
	}
}

func TestReconcile(t *testing.T) {
	lt := ledger.NewTable(ledger.Columns)
	lt.AppendRow([]string{"", "", "", "", "", "", "7654321"})
	tables := &fakeTables{sheets: map[string]*ledger.Table{
		"Invoice Data":    lt,
		"Master Bookings": masterTable("7654321"),
	}}

	p := New(&fakeMail{}, nil, tables, nil, booking.NewExtractor(nil, nil, nil), testResolver(), testOptions())
	stats, err := p.Reconcile(context.Background())
	if err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}
	if stats.Updated != 1 {
		t.Errorf("Updated = %d, want 1", stats.Updated)
	}
	if got := tables.sheets["Master Bookings"].Get(0, ledger.ColInvoiceReceived); got != ledger.ReceivedMark {
		t.Errorf("master Invoice Received = %q, want %q", got, ledger.ReceivedMark)
	}
}

func TestFormatRowDate(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"12/05/2025", "2025-05-12"},
		{"3/7/25", "2025-07-03"},
		{"2025-05-12", "2025-05-12"},
		{"Not Found", "Not Found"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := formatRowDate(tt.in); got != tt.want {
			t.Errorf("formatRowDate(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTruncateSubject(t *testing.T) {
	long := strings.Repeat("a", 60)
	if got := truncateSubject(long); got != strings.Repeat("a", 50)+"..." {
		t.Errorf("long subject not truncated: %q", got)
	}
	if got := truncateSubject("short"); got != "short" {
		t.Errorf("short subject changed: %q", got)
	}
}

func TestGuessVendorName(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"Your stay at Sunrise Resort was great", "Sunrise Resort"},
		{"Invoice from the Grand Palace team", "Grand Palace"},
		{"quarterly numbers look fine", vendor.UnknownVendor},
	}
	for _, tt := range tests {
		if got := guessVendorName(tt.text); got != tt.want {
			t.Errorf("guessVendorName(%q) = %q, want %q", tt.text, got, tt.want)
		}
	}
}
