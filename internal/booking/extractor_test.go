package booking

import (
	"context"
	"errors"
	"testing"
)

// stubOracle returns a canned response, or an error, and records calls.
type stubOracle struct {
	response string
	err      error
	calls    int
}

func (s *stubOracle) Complete(_ context.Context, _ string) (string, error) {
	s.calls++
	return s.response, s.err
}

func TestExtractFromTable(t *testing.T) {
	oracle := &stubOracle{response: "BOOKING CODE: 9999999"}
	e := NewExtractor(oracle, nil, nil)

	in := Input{
		Subject:   "Booking Confirmation",
		PlainBody: "See details below.",
		HTMLBody: `<table>
			<tr><th>Booking Code</th><th>Guest Name</th><th>Check-In Date</th><th>Check-Out Date</th></tr>
			<tr><td>1234567</td><td>Asha Rao</td><td>12/05/2025</td><td>14/05/2025</td></tr>
		</table>`,
	}

	rec := e.Extract(context.Background(), in)
	if rec.BookingCode != "1234567" {
		t.Errorf("booking code = %q, want 1234567", rec.BookingCode)
	}
	if rec.Source != SourceTable {
		t.Errorf("source = %q, want %q", rec.Source, SourceTable)
	}
	if rec.GuestName != "Asha Rao" {
		t.Errorf("guest name = %q, want Asha Rao", rec.GuestName)
	}
	if rec.CheckInDate != "12/05/2025" || rec.CheckOutDate != "14/05/2025" {
		t.Errorf("dates = %q / %q", rec.CheckInDate, rec.CheckOutDate)
	}
	if oracle.calls != 0 {
		t.Errorf("oracle called %d times, want 0 when table has a valid code", oracle.calls)
	}
}

func TestExtractWithOracle(t *testing.T) {
	oracle := &stubOracle{response: `BOOKING CODE: 2233445
GUEST NAME: Meera Pillai
CLIENT NAME:
CHECK-IN DATE: 02/07/2025
CHECK-OUT DATE: 04/07/2025`}
	e := NewExtractor(oracle, nil, nil)

	rec := e.Extract(context.Background(), Input{
		Subject:   "Your stay",
		PlainBody: "Dear guest, your reservation is confirmed.",
	})
	if rec.BookingCode != "2233445" {
		t.Errorf("booking code = %q, want 2233445", rec.BookingCode)
	}
	if rec.Source != SourceOracle {
		t.Errorf("source = %q, want %q", rec.Source, SourceOracle)
	}
	if rec.GuestName != "Meera Pillai" {
		t.Errorf("guest name = %q, want Meera Pillai", rec.GuestName)
	}
	if rec.ClientName != "" {
		t.Errorf("client name = %q, want empty", rec.ClientName)
	}
}

func TestExtractOracleMultiBooking(t *testing.T) {
	oracle := &stubOracle{response: `BOOKING 1:
BOOKING CODE: not found
GUEST NAME: First Guest

BOOKING 2:
BOOKING CODE: 7654321
GUEST NAME: Second Guest`}
	e := NewExtractor(oracle, nil, nil)

	rec := e.Extract(context.Background(), Input{Subject: "Two bookings", PlainBody: "details"})
	if rec.BookingCode != "7654321" {
		t.Errorf("booking code = %q, want 7654321", rec.BookingCode)
	}
	// fields are first-writer-wins across blocks
	if rec.GuestName != "First Guest" {
		t.Errorf("guest name = %q, want First Guest", rec.GuestName)
	}
}

func TestExtractOracleFailureFallsThrough(t *testing.T) {
	oracle := &stubOracle{err: errors.New("rate limited")}
	e := NewExtractor(oracle, nil, nil)

	rec := e.Extract(context.Background(), Input{
		Subject:   "Booking update",
		PlainBody: "Your booking is confirmed. Reference: BK-9876543. Thank you.",
	})
	if rec.BookingCode != "9876543" {
		t.Errorf("booking code = %q, want 9876543", rec.BookingCode)
	}
	if rec.Source != SourceRegexFallback {
		t.Errorf("source = %q, want %q", rec.Source, SourceRegexFallback)
	}
	if oracle.calls != 1 {
		t.Errorf("oracle calls = %d, want 1", oracle.calls)
	}
}

func TestExtractHeuristicWindow(t *testing.T) {
	e := NewExtractor(nil, nil, nil)

	rec := e.Extract(context.Background(), Input{
		Subject:   "Payment pending",
		PlainBody: "Please settle the amount for your confirmation at the earliest. ID 5556667 applies.",
	})
	if rec.BookingCode != "5556667" {
		t.Errorf("booking code = %q, want 5556667", rec.BookingCode)
	}
	if rec.Source != SourceHeuristicWindow {
		t.Errorf("source = %q, want %q", rec.Source, SourceHeuristicWindow)
	}
}

func TestExtractNothingFound(t *testing.T) {
	e := NewExtractor(nil, nil, nil)

	rec := e.Extract(context.Background(), Input{
		Subject:   "Newsletter",
		PlainBody: "Nothing to see here.",
	})
	if rec.BookingCode != "" || rec.Source != SourceNone {
		t.Errorf("got (%q, %q), want empty record", rec.BookingCode, rec.Source)
	}
}

func TestPhoneNumbersDoNotMatch(t *testing.T) {
	e := NewExtractor(nil, nil, nil)

	rec := e.Extract(context.Background(), Input{
		Subject:   "Booking question",
		PlainBody: "Call our booking desk at 9876543210 for help.",
	})
	if rec.BookingCode != "" {
		t.Errorf("booking code = %q, want empty for 10-digit phone number", rec.BookingCode)
	}
}
