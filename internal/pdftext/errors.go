package pdftext

import (
	"errors"
	"fmt"
)

// Common PDF text extraction errors
var (
	// ErrInvalidPDF is returned when the attachment data is not a valid PDF document.
	ErrInvalidPDF = errors.New("invalid or corrupted PDF document")

	// ErrNoText is returned when neither embedded text nor OCR produced readable text.
	ErrNoText = errors.New("document contains no readable text")

	// ErrPDFTooLarge is returned when the PDF exceeds the Vision API's
	// 20MB limit for synchronous processing.
	ErrPDFTooLarge = errors.New("PDF file size exceeds the maximum limit (20MB)")

	// ErrTooManyPages is returned when the PDF has too many pages for
	// synchronous OCR (Vision API supports up to 5).
	ErrTooManyPages = errors.New("PDF has too many pages (maximum 5 pages for synchronous processing)")

	// ErrMissingCredentials is returned when neither GOOGLE_APPLICATION_CREDENTIALS
	// nor GOOGLE_CREDENTIALS environment variables are configured.
	ErrMissingCredentials = errors.New("missing Google Cloud credentials: set GOOGLE_APPLICATION_CREDENTIALS or GOOGLE_CREDENTIALS environment variable")

	// ErrOCRFailed is returned when the Vision API fails to process the document.
	ErrOCRFailed = errors.New("OCR processing failed")
)

// PDFError wraps errors with context about which extraction step failed.
type PDFError struct {
	// Op is the operation that failed (e.g., "ExtractText", "ocrPDF").
	Op string

	// Err is the underlying error.
	Err error

	// Details provides additional context about the failure.
	Details string
}

func (e *PDFError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("pdftext: %s failed: %s: %v", e.Op, e.Details, e.Err)
	}
	return fmt.Sprintf("pdftext: %s failed: %v", e.Op, e.Err)
}

func (e *PDFError) Unwrap() error {
	return e.Err
}

func (e *PDFError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// WrapError wraps an error as a PDFError if it isn't already one.
func WrapError(op string, err error, details string) error {
	if err == nil {
		return nil
	}
	var pdfErr *PDFError
	if errors.As(err, &pdfErr) {
		return err
	}
	return &PDFError{Op: op, Err: err, Details: details}
}
