package oracle

import "fmt"

// maxPromptText caps how much message or PDF text is embedded in a
// prompt so large bodies stay under the model's token limit.
const maxPromptText = 20000

const systemPrompt = `You are a precise data extraction system. You return only the requested labeled fields, never explanations. You never return a field label or a table header row as a value.`

const emailPromptFormat = `Analyze the ENTIRE email below (including the subject line) and extract booking information.

Rules:
- Booking data is usually in an HTML table: row 1 is the header row (column labels), rows 2+ are data. Extract from data rows only, never from the header row.
- If there is no table, look for labeled fields ("Booking Code:", "Guest Name:", ...) and extract the value next to or below the label, never the label itself.
- The subject line may contain the booking code. Check it.
- Booking code labels vary: "Booking Code", "Booking ID", "Booking Reference", "Confirmation Number", "Reservation ID", "Ref No". The booking code is the highest-priority field.
- Extract dates in whatever format the email uses.
- Leave a field empty when it is not present. Never invent values.

EMAIL CONTENT:
%s

OUTPUT FORMAT (exactly these labels, one per line):
BOOKING CODE: <value or empty>
GUEST NAME: <value or empty>
CLIENT NAME: <value if different from guest name, or empty>
CHECK-IN DATE: <value or empty>
CHECK-OUT DATE: <value or empty>

If the email contains multiple bookings, output each as its own block:
BOOKING 1:
BOOKING CODE: <value>
GUEST NAME: <value>
CHECK-IN DATE: <value>
CHECK-OUT DATE: <value>

BOOKING 2:
...`

const pdfPromptFormat = `Analyze the following invoice text extracted from a PDF and return the structured fields.

If a field is not found, leave it empty. Extract dates in their original format.

INVOICE TEXT:
%s

OUTPUT FORMAT (exactly these labels, one per line):
HOTEL: <hotel or property name>
GUEST: <guest or customer name>
BILL NO: <bill or invoice number>
BILL DATE: <bill or invoice date>
CHECK-IN: <check-in or arrival date>
CHECK-OUT: <check-out or departure date>
ROOM: <room number>
GUESTS: <number of guests or pax>
AMOUNT: <total amount or grand total>
GST: <GST number if available>
PAN: <PAN number if available>`

// EmailPrompt builds the booking extraction prompt for one message. The
// caller passes the already-assembled corpus (subject plus preferred
// body).
func EmailPrompt(corpus string) string {
	return fmt.Sprintf(emailPromptFormat, clip(corpus))
}

// PDFPrompt builds the invoice extraction prompt for one attachment's
// text.
func PDFPrompt(text string) string {
	return fmt.Sprintf(pdfPromptFormat, clip(text))
}

func clip(s string) string {
	if len(s) > maxPromptText {
		return s[:maxPromptText]
	}
	return s
}
