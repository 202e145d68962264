package ledger

import (
	"testing"

	"inboxledger/internal/booking"
)

func ledgerTable(rows ...[]string) *Table {
	t := NewTable(Columns)
	for _, r := range rows {
		t.AppendRow(r)
	}
	return t
}

func row(code, guest, hotel, checkIn, checkOut, received string) []string {
	r := make([]string, len(Columns))
	r[6] = code      // Booking Code
	r[5] = guest     // Guest Name
	r[4] = hotel     // Hotel Name
	r[11] = checkIn  // Check-in Date
	r[12] = checkOut // Check-out Date
	r[18] = received // Invoice Received
	return r
}

func TestMatchPrimaryKeyWithNumericArtifact(t *testing.T) {
	table := ledgerTable(row("1234567", "Asha Rao", "Lotus Residency", "12/05/2025", "14/05/2025", ""))
	m := NewMatcher()

	records := []booking.Record{{BookingCode: "1234567.0"}}

	stats := m.Match(records, table)
	if stats.Updated != 1 {
		t.Fatalf("updated = %d, want 1", stats.Updated)
	}
	if got := table.Get(0, ColInvoiceReceived); got != ReceivedMark {
		t.Errorf("invoice received = %q, want %q", got, ReceivedMark)
	}

	// second run is a counted no-op
	stats = m.Match(records, table)
	if stats.Updated != 0 {
		t.Errorf("second run updated = %d, want 0", stats.Updated)
	}
	if stats.AlreadyMarked != 1 {
		t.Errorf("second run already_marked = %d, want 1", stats.AlreadyMarked)
	}
}

func TestMatchCompositeFallback(t *testing.T) {
	table := ledgerTable(row("", "John Smith", "Palm Grove", "12/05/2025", "14/05/2025", ""))
	m := NewMatcher()

	stats := m.Match([]booking.Record{{
		GuestName:    "john smith",
		PropertyName: "Palm Grove Beach Resort",
		CheckInDate:  "12-05-2025",
		CheckOutDate: "14-05-2025",
	}}, table)
	if stats.Updated != 1 {
		t.Fatalf("updated = %d, want 1 via composite key", stats.Updated)
	}
}

func TestMatchCompositeRequiresAllFour(t *testing.T) {
	table := ledgerTable(row("", "John Smith", "Palm Grove", "12/05/2025", "14/05/2025", ""))
	m := NewMatcher()

	// identical guest and dates but a different property: no match
	stats := m.Match([]booking.Record{{
		GuestName:    "john smith",
		PropertyName: "Lotus Residency",
		CheckInDate:  "12/05/2025",
		CheckOutDate: "14/05/2025",
	}}, table)
	if stats.Updated != 0 {
		t.Errorf("updated = %d, want 0 when property differs", stats.Updated)
	}
	if stats.Unmatched != 1 {
		t.Errorf("unmatched = %d, want 1", stats.Unmatched)
	}
}

func TestMatchCompositeSkippedWhenFieldMissing(t *testing.T) {
	table := ledgerTable(row("", "John Smith", "Palm Grove", "12/05/2025", "14/05/2025", ""))
	m := NewMatcher()

	stats := m.Match([]booking.Record{{
		GuestName:    "john smith",
		CheckInDate:  "12/05/2025",
		CheckOutDate: "14/05/2025",
	}}, table)
	if stats.Updated != 0 || stats.Unmatched != 1 {
		t.Errorf("stats = %+v, want zero effect without all four composite fields", stats)
	}
}

func TestMatchPrimaryKeyBeatsComposite(t *testing.T) {
	table := ledgerTable(
		row("7654321", "Asha Rao", "Lotus Residency", "12/05/2025", "14/05/2025", ""),
		row("1234567", "Someone Else", "Elsewhere", "01/01/2025", "02/01/2025", ""),
	)
	m := NewMatcher()

	stats := m.Match([]booking.Record{{
		BookingCode:  "1234567",
		GuestName:    "Asha Rao",
		PropertyName: "Lotus Residency",
		CheckInDate:  "12/05/2025",
		CheckOutDate: "14/05/2025",
	}}, table)
	if stats.Updated != 1 {
		t.Fatalf("updated = %d, want 1", stats.Updated)
	}
	if got := table.Get(1, ColInvoiceReceived); got != ReceivedMark {
		t.Errorf("code-matched row not updated, got %q", got)
	}
	if got := table.Get(0, ColInvoiceReceived); got != "" {
		t.Errorf("composite-only row updated, got %q", got)
	}
}

func TestColumnIndexFuzzy(t *testing.T) {
	table := NewTable([]string{"Booking ID", "Name of Guest", "Hotel", "Paid on", "Invoice Status"})

	cases := []struct {
		logical string
		want    int
	}{
		{ColBookingCode, 0},
		{"booking id", 0},
		{ColGuestName, 1},
		{ColHotelName, 2},
		{"Payment Date", 3},
		{ColInvoiceReceived, 4},
		{"No Such Column", -1},
	}
	for _, c := range cases {
		if got := table.ColumnIndex(c.logical); got != c.want {
			t.Errorf("ColumnIndex(%q) = %d, want %d", c.logical, got, c.want)
		}
	}
}
