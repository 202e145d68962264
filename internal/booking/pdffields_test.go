package booking

import (
	"context"
	"errors"
	"testing"
)

type stubPDFText struct {
	text string
	err  error
}

func (s *stubPDFText) ExtractText(_ context.Context, _ []byte) (string, error) {
	return s.text, s.err
}

func TestParsePDFResponse(t *testing.T) {
	response := `HOTEL: Lotus Residency
GUEST: Asha Rao
BILL NO: LR-2025-0042
BILL DATE: 14/05/2025
CHECK-IN: 12/05/2025
CHECK-OUT: 14/05/2025
ROOM: 204
GUESTS: 2
AMOUNT: 8450.00
GST: 29ABCDE1234F1Z5
PAN:`

	inv := ParsePDFResponse(response)
	if inv.HotelName != "Lotus Residency" {
		t.Errorf("hotel = %q, want Lotus Residency", inv.HotelName)
	}
	if inv.BillNumber != "LR-2025-0042" {
		t.Errorf("bill number = %q, want LR-2025-0042", inv.BillNumber)
	}
	if inv.RoomNumber != "204" || inv.GuestCount != "2" {
		t.Errorf("room/guests = %q/%q", inv.RoomNumber, inv.GuestCount)
	}
	if inv.TotalAmount != "8450.00" {
		t.Errorf("amount = %q, want 8450.00", inv.TotalAmount)
	}
	if inv.GSTNumber != "29ABCDE1234F1Z5" {
		t.Errorf("gst = %q", inv.GSTNumber)
	}
	if inv.PANNumber != "" {
		t.Errorf("pan = %q, want empty", inv.PANNumber)
	}
	if !inv.Processed() {
		t.Error("invoice should count as processed")
	}
}

func TestExtractPDFInvoiceOracleFailure(t *testing.T) {
	e := NewExtractor(&stubOracle{err: errors.New("timeout")}, &stubPDFText{text: "some invoice text"}, nil)

	inv := e.ExtractPDFInvoice(context.Background(), "bill.pdf", []byte("%PDF-1.4"))
	if inv.Processed() {
		t.Error("failed extraction must be marked unprocessed")
	}
	if inv.Filename != "bill.pdf" {
		t.Errorf("filename = %q, want bill.pdf", inv.Filename)
	}
	if inv.HotelName != UnprocessedHotelName {
		t.Errorf("hotel = %q, want sentinel", inv.HotelName)
	}
}

func TestExtractPDFInvoiceTextFailure(t *testing.T) {
	e := NewExtractor(&stubOracle{response: "unused"}, &stubPDFText{err: errors.New("no text layer")}, nil)

	inv := e.ExtractPDFInvoice(context.Background(), "scan.pdf", []byte("%PDF-1.4"))
	if inv.Processed() {
		t.Error("failed text extraction must be marked unprocessed")
	}
}

type stubStructured struct {
	inv *PDFInvoice
	err error
}

func (s *stubStructured) ExtractInvoice(_ context.Context, _ []byte) (*PDFInvoice, error) {
	return s.inv, s.err
}

func TestExtractPDFInvoiceStructuredFirst(t *testing.T) {
	oracle := &stubOracle{response: "HOTEL: Wrong Hotel"}
	structured := &stubStructured{inv: &PDFInvoice{HotelName: "Palm Grove", BillNumber: "PG-7"}}
	e := NewExtractor(oracle, &stubPDFText{text: "text"}, structured)

	inv := e.ExtractPDFInvoice(context.Background(), "inv.pdf", []byte("%PDF-1.4"))
	if inv.HotelName != "Palm Grove" {
		t.Errorf("hotel = %q, want Palm Grove", inv.HotelName)
	}
	if oracle.calls != 0 {
		t.Errorf("oracle calls = %d, want 0 when structured extraction succeeds", oracle.calls)
	}
}

func TestExtractPDFInvoiceStructuredFallsBack(t *testing.T) {
	structured := &stubStructured{err: errors.New("processor not found")}
	oracle := &stubOracle{response: "HOTEL: Palm Grove\nAMOUNT: 120.00"}
	e := NewExtractor(oracle, &stubPDFText{text: "text"}, structured)

	inv := e.ExtractPDFInvoice(context.Background(), "inv.pdf", []byte("%PDF-1.4"))
	if inv.HotelName != "Palm Grove" || inv.TotalAmount != "120.00" {
		t.Errorf("got %+v, want oracle-extracted fields", inv)
	}
}
