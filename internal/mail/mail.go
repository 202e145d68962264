// Package mail defines the inbound message model and the MailSource
// contract, plus the invoice-detection heuristics applied before a
// message enters the processing pipeline.
package mail

import (
	"context"
	"strings"
	"time"
)

// Attachment is one downloaded message attachment.
type Attachment struct {
	Filename string
	MimeType string
	Data     []byte
}

// RawMessage is a fully fetched inbox message.
type RawMessage struct {
	ID          string
	From        string
	Subject     string
	Date        time.Time
	PlainBody   string
	HTMLBody    string
	Attachments []Attachment
}

// PDFAttachments returns only the PDF attachments.
func (m *RawMessage) PDFAttachments() []Attachment {
	var pdfs []Attachment
	for _, a := range m.Attachments {
		if strings.EqualFold(a.MimeType, "application/pdf") ||
			strings.HasSuffix(strings.ToLower(a.Filename), ".pdf") {
			pdfs = append(pdfs, a)
		}
	}
	return pdfs
}

// MailSource lists unread messages and marks them read. Connection or
// login failure surfaces as an error to the orchestrator; it is not
// retried here.
type MailSource interface {
	ListUnread(ctx context.Context, since time.Time) ([]*RawMessage, error)
	MarkRead(ctx context.Context, messageID string) error
}

// SenderAddress reduces a From header to the bare address:
// "Lotus Residency <billing@lotus.example>" -> "billing@lotus.example".
func SenderAddress(from string) string {
	if start := strings.LastIndex(from, "<"); start >= 0 {
		if end := strings.Index(from[start:], ">"); end > 0 {
			return strings.TrimSpace(from[start+1 : start+end])
		}
	}
	return strings.TrimSpace(from)
}
