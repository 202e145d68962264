// Package pdftext turns PDF attachments into plain text. Digitally
// produced invoices carry an embedded text layer that is read directly;
// scanned invoices have none, so the package falls back to Google Cloud
// Vision OCR when a client is available.
package pdftext

import (
	"bytes"
	"context"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/rs/zerolog"

	"inboxledger/internal/logger"
)

// minEmbeddedTextLen is the threshold below which an embedded text layer
// is considered useless (scanned PDFs often carry a few stray glyphs).
const minEmbeddedTextLen = 50

// Extractor extracts plain text from PDF bytes.
type Extractor interface {
	ExtractText(ctx context.Context, data []byte) (string, error)
}

// Service implements Extractor with an optional OCR fallback.
type Service struct {
	ocr OCRClient
	log zerolog.Logger
}

// NewService creates an extractor, wiring the Vision OCR fallback when
// Google credentials are present. Missing credentials only disable the
// fallback; embedded-text extraction still works.
func NewService(ctx context.Context) *Service {
	log := logger.WithComponent("pdftext")

	ocr, err := NewVisionOCR(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Vision OCR unavailable, scanned PDFs will not be readable")
		ocr = nil
	}
	return NewServiceWithDeps(ocr)
}

// NewServiceWithDeps creates an extractor with an explicit OCR client
// (nil disables the fallback).
func NewServiceWithDeps(ocr OCRClient) *Service {
	return &Service{
		ocr: ocr,
		log: logger.WithComponent("pdftext"),
	}
}

// ExtractText returns the document's text, preferring the embedded text
// layer and falling back to OCR for scanned documents.
func (s *Service) ExtractText(ctx context.Context, data []byte) (string, error) {
	const op = "ExtractText"

	if len(data) < 4 || string(data[:4]) != "%PDF" {
		return "", WrapError(op, ErrInvalidPDF, "missing PDF header")
	}

	text, err := embeddedText(data)
	if err != nil {
		s.log.Debug().Err(err).Msg("Embedded text extraction failed")
	}
	if len(strings.TrimSpace(text)) >= minEmbeddedTextLen {
		s.log.Debug().Int("text_length", len(text)).Msg("Extracted embedded text layer")
		return text, nil
	}

	if s.ocr == nil {
		if err != nil {
			return "", WrapError(op, err, "no embedded text and OCR is not configured")
		}
		return "", WrapError(op, ErrNoText, "no embedded text and OCR is not configured")
	}

	s.log.Debug().Msg("No usable embedded text, falling back to OCR")
	ocrText, err := s.ocr.Recognize(ctx, data)
	if err != nil {
		return "", WrapError(op, err, "OCR fallback failed")
	}
	if strings.TrimSpace(ocrText) == "" {
		return "", WrapError(op, ErrNoText, "OCR returned no text")
	}
	return ocrText, nil
}

func embeddedText(data []byte) (string, error) {
	const op = "embeddedText"

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", WrapError(op, ErrInvalidPDF, err.Error())
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", WrapError(op, err, "reading text layer")
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(plain); err != nil {
		return "", WrapError(op, err, "reading text layer")
	}
	return buf.String(), nil
}
