package booking

import (
	"context"
	"strings"

	"inboxledger/internal/oracle"
)

// ExtractPDFInvoice extracts invoice fields from one PDF attachment.
// The structured extractor runs first when configured; otherwise the
// text layer is read and handed to the oracle. Any failure yields a
// sentinel invoice (hotel name marks it unprocessed) rather than an
// error: a bad attachment never fails the message.
func (e *Extractor) ExtractPDFInvoice(ctx context.Context, filename string, data []byte) *PDFInvoice {
	log := e.log.With().Str("filename", filename).Logger()

	if e.structured != nil {
		inv, err := e.structured.ExtractInvoice(ctx, data)
		if err == nil && inv != nil && inv.HotelName != "" {
			inv.Filename = filename
			log.Debug().Str("hotel", inv.HotelName).Msg("PDF fields extracted by document processor")
			return inv
		}
		if err != nil {
			log.Warn().Err(err).Msg("Document processor failed, falling back to oracle")
		}
	}

	unprocessed := &PDFInvoice{Filename: filename, HotelName: UnprocessedHotelName}

	if e.pdfText == nil || e.oracle == nil {
		log.Warn().Msg("No PDF extraction path configured, marking attachment unprocessed")
		return unprocessed
	}

	text, err := e.pdfText.ExtractText(ctx, data)
	if err != nil {
		log.Warn().Err(err).Msg("PDF text extraction failed, marking attachment unprocessed")
		return unprocessed
	}

	response, err := e.oracle.Complete(ctx, oracle.PDFPrompt(text))
	if err != nil || strings.TrimSpace(response) == "" {
		log.Warn().Err(err).Msg("Oracle PDF extraction failed, marking attachment unprocessed")
		return unprocessed
	}

	inv := ParsePDFResponse(response)
	inv.Filename = filename
	if inv.HotelName == "" && inv.BillNumber == "" && inv.TotalAmount == "" {
		log.Warn().Msg("Oracle PDF response carried no usable fields")
		return unprocessed
	}
	return inv
}

// ParsePDFResponse parses the oracle's labeled-line invoice response
// (HOTEL:, GUEST:, BILL NO:, ...). Unknown lines are ignored.
func ParsePDFResponse(response string) *PDFInvoice {
	inv := &PDFInvoice{}
	for _, line := range strings.Split(response, "\n") {
		label, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		value = cleanOracleValue(value)
		if value == "" {
			continue
		}

		switch strings.ToUpper(strings.TrimSpace(label)) {
		case "HOTEL":
			inv.HotelName = value
		case "GUEST":
			inv.GuestName = value
		case "BILL NO", "BILL NUMBER":
			inv.BillNumber = value
		case "BILL DATE":
			inv.BillDate = value
		case "CHECK-IN", "CHECK IN", "CHECKIN":
			inv.CheckInDate = value
		case "CHECK-OUT", "CHECK OUT", "CHECKOUT":
			inv.CheckOutDate = value
		case "ROOM":
			inv.RoomNumber = value
		case "GUESTS":
			inv.GuestCount = value
		case "AMOUNT":
			inv.TotalAmount = value
		case "GST":
			inv.GSTNumber = value
		case "PAN":
			inv.PANNumber = value
		}
	}
	return inv
}
