package booking

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"inboxledger/internal/htmltable"
	"inboxledger/internal/logger"
	"inboxledger/internal/normalize"
	"inboxledger/internal/oracle"
	"inboxledger/internal/pdftext"
)

// Input carries the message parts the extractor works on.
type Input struct {
	Subject        string
	PlainBody      string
	HTMLBody       string
	AttachmentText string
}

// PDFFieldExtractor extracts invoice fields from PDF bytes via a
// structured document service (Document AI). Optional; the oracle path
// is the fallback.
type PDFFieldExtractor interface {
	ExtractInvoice(ctx context.Context, data []byte) (*PDFInvoice, error)
}

// Extractor runs the booking extraction cascade. Any collaborator may be
// nil; each nil collaborator just disables its stage.
type Extractor struct {
	oracle     oracle.TextOracle
	pdfText    pdftext.Extractor
	structured PDFFieldExtractor
	log        zerolog.Logger
}

// NewExtractor creates an extractor with the given collaborators.
func NewExtractor(textOracle oracle.TextOracle, pdfText pdftext.Extractor, structured PDFFieldExtractor) *Extractor {
	return &Extractor{
		oracle:     textOracle,
		pdfText:    pdfText,
		structured: structured,
		log:        logger.WithComponent("booking-extractor"),
	}
}

// Extract produces one record for the message. Later stages only run
// while no stage has produced a valid booking code; non-code fields are
// filled by whichever stage first supplies them and never overwritten.
func (e *Extractor) Extract(ctx context.Context, in Input) Record {
	var rec Record

	e.extractFromTables(in, &rec)
	if rec.BookingCode != "" {
		return rec
	}

	e.extractWithOracle(ctx, in, &rec)
	if rec.BookingCode != "" {
		return rec
	}

	e.extractFromCorpus(in, &rec)
	return rec
}

// extractFromTables runs the HTML table stage. All table records
// contribute fields; the first record with a valid code supplies the
// code.
func (e *Extractor) extractFromTables(in Input, rec *Record) {
	records := htmltable.Extract(in.HTMLBody)
	if len(records) == 0 {
		return
	}

	for _, tr := range records {
		if rec.BookingCode == "" {
			if code := tr[normalize.FieldBookingCode]; normalize.IsValidBookingCode(code) {
				rec.BookingCode = code
				rec.Source = SourceTable
			}
		}
		setIfEmpty(&rec.GuestName, tr[normalize.FieldGuestName])
		setIfEmpty(&rec.ClientName, tr[normalize.FieldClientName])
		setIfEmpty(&rec.PropertyName, tr[normalize.FieldPropertyName])
		setIfEmpty(&rec.CheckInDate, tr[normalize.FieldCheckInDate])
		setIfEmpty(&rec.CheckOutDate, tr[normalize.FieldCheckOutDate])
		setIfEmpty(&rec.GuestCount, tr[normalize.FieldGuestCount])
		setIfEmpty(&rec.TotalAmount, tr[normalize.FieldTotalAmount])
	}

	if rec.BookingCode != "" {
		e.log.Debug().Str("booking_code", rec.BookingCode).Msg("Booking code found in table")
	}
}

// extractWithOracle submits the message to the language model and scans
// its labeled response. Every oracle failure is swallowed; the cascade
// continues as if the stage found nothing.
func (e *Extractor) extractWithOracle(ctx context.Context, in Input, rec *Record) {
	if e.oracle == nil {
		return
	}

	body := in.HTMLBody
	if strings.TrimSpace(body) == "" {
		body = in.PlainBody
	}
	corpus := "SUBJECT: " + in.Subject + "\n\n" + body
	response, err := e.oracle.Complete(ctx, oracle.EmailPrompt(corpus))
	if err != nil {
		e.log.Warn().Err(err).Msg("Oracle extraction failed, continuing with fallbacks")
		return
	}
	if strings.TrimSpace(response) == "" {
		e.log.Debug().Msg("Oracle returned empty response")
		return
	}

	// Multi-booking responses come back as "BOOKING 1:" blocks; the
	// first block with a valid code wins, all blocks contribute fields.
	for _, block := range splitBookingBlocks(response) {
		e.parseOracleBlock(block, rec)
	}
	if rec.BookingCode != "" {
		rec.Source = SourceOracle
		e.log.Debug().Str("booking_code", rec.BookingCode).Msg("Booking code found by oracle")
	}
}

func (e *Extractor) parseOracleBlock(block string, rec *Record) {
	if rec.BookingCode == "" {
		for _, pat := range oracleCodePatterns {
			m := pat.FindStringSubmatch(block)
			if m == nil {
				continue
			}
			code := normalize.Value(normalize.FieldBookingCode, cleanOracleValue(m[1]))
			if normalize.IsValidBookingCode(code) {
				rec.BookingCode = code
				break
			}
		}
	}

	fields := map[string]*string{
		"guest_name":     &rec.GuestName,
		"client_name":    &rec.ClientName,
		"check_in_date":  &rec.CheckInDate,
		"check_out_date": &rec.CheckOutDate,
	}
	for name, target := range fields {
		if *target != "" {
			continue
		}
		if m := oracleFieldPatterns[name].FindStringSubmatch(block); m != nil {
			setIfEmpty(target, cleanOracleValue(m[1]))
		}
	}
}

// extractFromCorpus is the last stage: label-anchored patterns over the
// whole message text, then a keyword-proximity scan for a 7-digit run.
func (e *Extractor) extractFromCorpus(in Input, rec *Record) {
	corpus := strings.Join([]string{
		in.Subject,
		in.PlainBody,
		htmlTagStrip.ReplaceAllString(in.HTMLBody, " "),
		in.AttachmentText,
	}, "\n")

	for _, pat := range fallbackCodePatterns {
		for _, m := range pat.FindAllStringSubmatch(corpus, -1) {
			code := normalize.Value(normalize.FieldBookingCode, m[1])
			if normalize.IsValidBookingCode(code) {
				rec.BookingCode = code
				rec.Source = SourceRegexFallback
				e.log.Debug().Str("booking_code", code).Msg("Booking code found by fallback pattern")
				return
			}
		}
	}

	for _, loc := range windowKeywords.FindAllStringIndex(corpus, -1) {
		start := loc[0] - windowRadius
		if start < 0 {
			start = 0
		}
		end := loc[1] + windowRadius
		if end > len(corpus) {
			end = len(corpus)
		}
		if m := sevenDigitRun.FindStringSubmatch(corpus[start:end]); m != nil {
			if normalize.IsValidBookingCode(m[1]) {
				rec.BookingCode = m[1]
				rec.Source = SourceHeuristicWindow
				e.log.Debug().Str("booking_code", m[1]).Msg("Booking code found near keyword")
				return
			}
		}
	}
}

func splitBookingBlocks(response string) []string {
	blocks := bookingBlockSplit.Split(response, -1)
	var out []string
	for _, b := range blocks {
		if strings.TrimSpace(b) != "" {
			out = append(out, b)
		}
	}
	if len(out) == 0 {
		return []string{response}
	}
	return out
}

// cleanOracleValue rejects label echoes and placeholder answers the
// model sometimes returns instead of leaving a field empty.
func cleanOracleValue(v string) string {
	v = strings.TrimSpace(v)
	v = strings.Trim(v, "\"'`*")
	if strings.ContainsAny(v, "<>") {
		return ""
	}
	switch strings.ToLower(v) {
	case "", "n/a", "na", "none", "null", "empty", "not found", "unknown", "-":
		return ""
	}
	return v
}

func setIfEmpty(target *string, value string) {
	if *target == "" && strings.TrimSpace(value) != "" {
		*target = strings.TrimSpace(value)
	}
}
