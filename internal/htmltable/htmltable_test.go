package htmltable

import (
	"testing"

	"inboxledger/internal/normalize"
)

func TestExtractHeaderTable(t *testing.T) {
	doc := `
<html><body>
<table>
  <tr><th>Booking Code</th><th>Guest Name</th><th>Check-In Date</th><th>Check-Out Date</th><th>Hotel Name</th></tr>
  <tr><td>1234567</td><td>Asha Rao</td><td>12/05/2025</td><td>14/05/2025</td><td>Lotus Residency</td></tr>
  <tr><td>7654321</td><td>Vikram Shah</td><td>01/06/2025</td><td>03/06/2025</td><td>Palm Grove</td></tr>
</table>
</body></html>`

	records := Extract(doc)
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	first := records[0]
	if first[normalize.FieldBookingCode] != "1234567" {
		t.Errorf("booking code = %q, want 1234567", first[normalize.FieldBookingCode])
	}
	if first[normalize.FieldGuestName] != "Asha Rao" {
		t.Errorf("guest name = %q, want Asha Rao", first[normalize.FieldGuestName])
	}
	if first[normalize.FieldPropertyName] != "Lotus Residency" {
		t.Errorf("property = %q, want Lotus Residency", first[normalize.FieldPropertyName])
	}
	if records[1][normalize.FieldBookingCode] != "7654321" {
		t.Errorf("second booking code = %q, want 7654321", records[1][normalize.FieldBookingCode])
	}
}

func TestExtractKeyValueTable(t *testing.T) {
	doc := `
<table>
  <tr><td>Booking Code</td><td>9876543</td></tr>
  <tr><td>Guest Name</td><td>Meera Pillai</td></tr>
  <tr><td>Check-in</td><td>02/07/2025</td></tr>
  <tr><td>Notes</td><td>late arrival</td></tr>
</table>`

	records := Extract(doc)
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	rec := records[0]
	if rec[normalize.FieldBookingCode] != "9876543" {
		t.Errorf("booking code = %q, want 9876543", rec[normalize.FieldBookingCode])
	}
	if rec[normalize.FieldGuestName] != "Meera Pillai" {
		t.Errorf("guest name = %q, want Meera Pillai", rec[normalize.FieldGuestName])
	}
	if rec[normalize.FieldCheckInDate] != "02/07/2025" {
		t.Errorf("check-in = %q, want 02/07/2025", rec[normalize.FieldCheckInDate])
	}
	if _, ok := rec["notes"]; ok {
		t.Error("unexpected field for unresolved header")
	}
}

func TestExtractIgnoresLayoutTables(t *testing.T) {
	doc := `
<table><tr><td>Dear customer,</td></tr><tr><td>thank you for your booking.</td></tr></table>
<table>
  <tr><td>Reservation ID</td><td>1112223</td></tr>
</table>`

	records := Extract(doc)
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	if records[0][normalize.FieldBookingCode] != "1112223" {
		t.Errorf("booking code = %q, want 1112223", records[0][normalize.FieldBookingCode])
	}
}

func TestExtractEmptyAndGarbage(t *testing.T) {
	if got := Extract(""); len(got) != 0 {
		t.Errorf("empty document: got %d records, want 0", len(got))
	}
	if got := Extract("just some plain text, no markup"); len(got) != 0 {
		t.Errorf("plain text: got %d records, want 0", len(got))
	}
	if got := Extract("<table><tr></tr></table>"); len(got) != 0 {
		t.Errorf("empty table: got %d records, want 0", len(got))
	}
}
