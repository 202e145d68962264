// Package docai extracts invoice fields from PDF attachments with a
// Google Document AI invoice processor. It is an optional fast path in
// front of the oracle: when no processor is configured the caller simply
// skips it.
package docai

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	documentai "cloud.google.com/go/documentai/apiv1"
	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"

	"inboxledger/internal/booking"
	"inboxledger/internal/logger"
)

// MaxDocumentSizeBytes is the Document AI limit for inline requests (20MB).
const MaxDocumentSizeBytes = 20 * 1024 * 1024

var (
	// ErrInvalidConfiguration is returned when required processor settings are missing.
	ErrInvalidConfiguration = errors.New("invalid Document AI configuration")

	// ErrInvalidPDF is returned when the attachment is not a valid PDF document.
	ErrInvalidPDF = errors.New("invalid or corrupted PDF document")

	// ErrDocumentTooLarge is returned when the PDF exceeds the inline size limit.
	ErrDocumentTooLarge = errors.New("document exceeds the maximum size (20MB)")

	// ErrProcessingFailed is returned when Document AI could not process the document.
	ErrProcessingFailed = errors.New("document processing failed")
)

// Config holds the processor coordinates.
type Config struct {
	ProjectID   string
	Location    string // "us", "eu", ...
	ProcessorID string
	Timeout     time.Duration
}

// Extractor implements booking.PDFFieldExtractor using Document AI.
type Extractor struct {
	client *documentai.DocumentProcessorClient
	config Config
	log    zerolog.Logger
}

// New creates an extractor from the environment. Requires
// GOOGLE_CLOUD_PROJECT and DOCUMENT_AI_PROCESSOR_ID; location defaults
// to "us". Credentials come from GOOGLE_CREDENTIALS or
// GOOGLE_APPLICATION_CREDENTIALS.
func New(ctx context.Context) (*Extractor, error) {
	const op = "New"

	config := Config{
		ProjectID:   os.Getenv("GOOGLE_CLOUD_PROJECT"),
		Location:    os.Getenv("GOOGLE_CLOUD_LOCATION"),
		ProcessorID: os.Getenv("DOCUMENT_AI_PROCESSOR_ID"),
		Timeout:     60 * time.Second,
	}
	if config.ProjectID == "" {
		return nil, fmt.Errorf("%s: %w: GOOGLE_CLOUD_PROJECT is required", op, ErrInvalidConfiguration)
	}
	if config.ProcessorID == "" {
		return nil, fmt.Errorf("%s: %w: DOCUMENT_AI_PROCESSOR_ID is required", op, ErrInvalidConfiguration)
	}
	if config.Location == "" {
		config.Location = "us"
	}

	var clientOptions []option.ClientOption
	if config.Location != "us" {
		endpoint := fmt.Sprintf("%s-documentai.googleapis.com:443", config.Location)
		clientOptions = append(clientOptions, option.WithEndpoint(endpoint))
	}
	if credJSON := os.Getenv("GOOGLE_CREDENTIALS"); credJSON != "" {
		clientOptions = append(clientOptions, option.WithCredentialsJSON([]byte(credJSON)))
	} else if credFile := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); credFile != "" {
		clientOptions = append(clientOptions, option.WithCredentialsFile(credFile))
	}

	client, err := documentai.NewDocumentProcessorClient(ctx, clientOptions...)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to create Document AI client for location %s: %w", op, config.Location, err)
	}

	return NewWithDeps(client, config), nil
}

// NewWithDeps creates an extractor with an explicit client and config.
func NewWithDeps(client *documentai.DocumentProcessorClient, config Config) *Extractor {
	return &Extractor{
		client: client,
		config: config,
		log:    logger.WithComponent("docai"),
	}
}

// ExtractInvoice runs the configured invoice processor over the PDF and
// maps its entities onto invoice fields.
func (e *Extractor) ExtractInvoice(ctx context.Context, data []byte) (*booking.PDFInvoice, error) {
	const op = "ExtractInvoice"

	if len(data) > MaxDocumentSizeBytes {
		return nil, fmt.Errorf("%s: %w: %d bytes", op, ErrDocumentTooLarge, len(data))
	}
	if len(data) < 4 || string(data[:4]) != "%PDF" {
		return nil, fmt.Errorf("%s: %w: missing PDF header", op, ErrInvalidPDF)
	}

	processCtx, cancel := context.WithTimeout(ctx, e.config.Timeout)
	defer cancel()

	req := &documentaipb.ProcessRequest{
		Name: e.processorName(),
		Source: &documentaipb.ProcessRequest_RawDocument{
			RawDocument: &documentaipb.RawDocument{
				Content:  data,
				MimeType: "application/pdf",
			},
		},
	}

	resp, err := e.client.ProcessDocument(processCtx, req)
	if err != nil {
		return nil, e.processingError(op, err)
	}
	if resp.Document == nil {
		return nil, fmt.Errorf("%s: %w: no document in response", op, ErrProcessingFailed)
	}

	return e.mapEntities(resp.Document), nil
}

func (e *Extractor) processorName() string {
	return fmt.Sprintf("projects/%s/locations/%s/processors/%s",
		e.config.ProjectID, e.config.Location, e.config.ProcessorID)
}

func (e *Extractor) processingError(op string, err error) error {
	errStr := err.Error()
	switch {
	case strings.Contains(errStr, "NOT_FOUND"):
		return fmt.Errorf("%s: %w: processor not found: %s", op, ErrInvalidConfiguration, e.config.ProcessorID)
	case strings.Contains(errStr, "INVALID_ARGUMENT"):
		return fmt.Errorf("%s: %w: document format not supported", op, ErrInvalidPDF)
	default:
		return fmt.Errorf("%s: %w: %v", op, ErrProcessingFailed, err)
	}
}

func (e *Extractor) mapEntities(doc *documentaipb.Document) *booking.PDFInvoice {
	inv := &booking.PDFInvoice{}

	for _, entity := range doc.Entities {
		value := strings.TrimSpace(entity.MentionText)
		if value == "" {
			continue
		}

		e.log.Debug().
			Str("entity_type", entity.Type).
			Str("value", value).
			Float32("confidence", entity.Confidence).
			Msg("Processing Document AI entity")

		switch entity.Type {
		case "supplier_name", "vendor_name", "remit_to_name":
			if inv.HotelName == "" {
				inv.HotelName = value
			}
		case "receiver_name", "customer_name", "buyer_name", "ship_to_name":
			if inv.GuestName == "" {
				inv.GuestName = value
			}
		case "invoice_id", "invoice_number":
			inv.BillNumber = value
		case "invoice_date":
			inv.BillDate = value
		case "total_amount":
			inv.TotalAmount = value
		case "supplier_tax_id":
			inv.GSTNumber = value
		}
	}
	return inv
}

// Close releases the underlying API client.
func (e *Extractor) Close() error {
	return e.client.Close()
}
