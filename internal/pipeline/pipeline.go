// Package pipeline sequences one processing run: list unread mail,
// detect invoices, extract booking data, assign an owner, upload PDFs,
// append ledger rows and reconcile against the master booking sheet.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"inboxledger/internal/booking"
	"inboxledger/internal/drive"
	"inboxledger/internal/ledger"
	"inboxledger/internal/logger"
	"inboxledger/internal/mail"
	"inboxledger/internal/pdftext"
	"inboxledger/internal/sheets"
	"inboxledger/internal/vendor"
)

// Options carries the run settings the pipeline needs from config.
type Options struct {
	LedgerWorksheet string
	MasterWorksheet string
	DaysToSearch    int

	// Now is injectable for tests; defaults to time.Now.
	Now func() time.Time
}

// RunStats aggregates one full processing run.
type RunStats struct {
	MessagesScanned  int
	InvoicesDetected int
	RowsAppended     int
	Uploads          map[string]int // owner -> uploaded PDF count
	Match            ledger.MatchStats
}

// Pipeline wires the collaborators for a processing run. The blob store
// and PDF text extractor may be nil; a nil blob store disables uploads.
type Pipeline struct {
	mail      mail.MailSource
	blobs     drive.BlobStore
	tables    sheets.TableStore
	pdfText   pdftext.Extractor
	extractor *booking.Extractor
	resolver  *vendor.Resolver
	matcher   *ledger.Matcher
	opts      Options
	log       zerolog.Logger
}

func New(mailSource mail.MailSource, blobs drive.BlobStore, tables sheets.TableStore, pdfText pdftext.Extractor, extractor *booking.Extractor, resolver *vendor.Resolver, opts Options) *Pipeline {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.DaysToSearch <= 0 {
		opts.DaysToSearch = 7
	}
	return &Pipeline{
		mail:      mailSource,
		blobs:     blobs,
		tables:    tables,
		pdfText:   pdfText,
		extractor: extractor,
		resolver:  resolver,
		matcher:   ledger.NewMatcher(),
		opts:      opts,
		log:       logger.WithComponent("pipeline"),
	}
}

// Run executes one batch: messages are processed strictly one at a time,
// each fully extracted before the next starts. Mailbox or ledger access
// failures abort the run; everything narrower is logged and skipped.
func (p *Pipeline) Run(ctx context.Context) (*RunStats, error) {
	const op = "Run"

	stats := &RunStats{Uploads: make(map[string]int)}
	since := p.opts.Now().AddDate(0, 0, -p.opts.DaysToSearch)

	p.log.Info().Time("since", since).Msg("Listing unread messages")
	messages, err := p.mail.ListUnread(ctx, since)
	if err != nil {
		return stats, fmt.Errorf("%s: failed to list unread messages: %w", op, err)
	}

	table, err := p.tables.Read(ctx, p.opts.LedgerWorksheet)
	if err != nil {
		return stats, fmt.Errorf("%s: failed to read ledger worksheet: %w", op, err)
	}

	var records []booking.Record
	for i, msg := range messages {
		stats.MessagesScanned++
		p.log.Info().
			Int("message", i+1).
			Int("total", len(messages)).
			Str("subject", msg.Subject).
			Msg("Processing message")
		p.processMessage(ctx, msg, table, stats, &records)
	}

	if stats.RowsAppended > 0 {
		if err := p.tables.Write(ctx, p.opts.LedgerWorksheet, table); err != nil {
			return stats, fmt.Errorf("%s: failed to write ledger worksheet: %w", op, err)
		}
	}

	if len(records) > 0 && p.opts.MasterWorksheet != "" {
		matchStats, err := p.reconcileRecords(ctx, records)
		if err != nil {
			return stats, fmt.Errorf("%s: reconciliation failed: %w", op, err)
		}
		stats.Match = matchStats
	}

	p.logSummary(stats)
	return stats, nil
}

// Reconcile runs a matching-only pass: ledger rows are reread as
// records and matched against the master booking sheet.
func (p *Pipeline) Reconcile(ctx context.Context) (ledger.MatchStats, error) {
	const op = "Reconcile"

	table, err := p.tables.Read(ctx, p.opts.LedgerWorksheet)
	if err != nil {
		return ledger.MatchStats{}, fmt.Errorf("%s: failed to read ledger worksheet: %w", op, err)
	}

	records := recordsFromLedger(table)
	if len(records) == 0 {
		p.log.Info().Msg("Ledger holds no records to reconcile")
		return ledger.MatchStats{}, nil
	}

	stats, err := p.reconcileRecords(ctx, records)
	if err != nil {
		return stats, fmt.Errorf("%s: %w", op, err)
	}
	return stats, nil
}

// processMessage handles a single message. A panic while processing one
// message is contained so the rest of the batch continues.
func (p *Pipeline) processMessage(ctx context.Context, msg *mail.RawMessage, table *ledger.Table, stats *RunStats, records *[]booking.Record) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Error().
				Str("message_id", msg.ID).
				Interface("panic", r).
				Msg("Message processing panicked, continuing with next message")
		}
	}()

	if !mail.IsInvoiceEmail(msg.Subject, msg.PlainBody) {
		p.log.Debug().Str("subject", msg.Subject).Msg("Not an invoice email, leaving unread")
		return
	}
	stats.InvoicesDetected++

	rec := p.extractor.Extract(ctx, booking.Input{
		Subject:        msg.Subject,
		PlainBody:      msg.PlainBody,
		HTMLBody:       msg.HTMLBody,
		AttachmentText: p.attachmentText(ctx, msg),
	})

	type pdfResult struct {
		inv  *booking.PDFInvoice
		data []byte
	}
	var invoices []pdfResult
	for _, att := range msg.PDFAttachments() {
		inv := p.extractor.ExtractPDFInvoice(ctx, att.Filename, att.Data)
		invoices = append(invoices, pdfResult{inv: inv, data: att.Data})
	}

	searchText := msg.Subject + " " + msg.From + " " + msg.PlainBody

	vendorName := rec.PropertyName
	for _, res := range invoices {
		if res.inv.Processed() && res.inv.HotelName != "" {
			vendorName = res.inv.HotelName
			break
		}
	}
	if vendorName == "" {
		vendorName = guessVendorName(searchText)
	}
	owner := p.resolver.Resolve(vendorName)

	urgency := mail.UrgencyLevel(msg.Subject + " " + msg.PlainBody)
	if amounts := mail.ExtractAmounts(msg.Subject + " " + msg.PlainBody); len(amounts) > 0 {
		p.log.Info().Floats64("amounts", amounts).Msg("Amounts found in message")
	}

	p.log.Info().
		Str("vendor", vendorName).
		Str("assigned_to", owner).
		Str("urgency", urgency).
		Str("booking_code", rec.BookingCode).
		Msg("Invoice detected")

	now := p.opts.Now()
	appended := 0
	for _, res := range invoices {
		if !res.inv.Processed() {
			p.log.Warn().Str("filename", res.inv.Filename).Msg("Skipping unprocessed PDF attachment")
			continue
		}
		fileID := p.uploadPDF(ctx, res.inv.Filename, res.data, owner, now, stats)
		table.AppendRow(p.buildRow(now, msg, owner, urgency, &rec, res.inv, fileID))
		appended++
	}
	if appended == 0 && hasRecordFields(&rec) {
		table.AppendRow(p.buildRow(now, msg, owner, urgency, &rec, nil, ""))
		appended++
	}
	stats.RowsAppended += appended
	*records = append(*records, rec)

	if err := p.mail.MarkRead(ctx, msg.ID); err != nil {
		p.log.Warn().Err(err).Str("message_id", msg.ID).Msg("Failed to mark message read")
	}
}

// attachmentText extracts the text layer of every PDF attachment for
// the fallback extraction corpus. Extraction failures contribute
// nothing.
func (p *Pipeline) attachmentText(ctx context.Context, msg *mail.RawMessage) string {
	if p.pdfText == nil {
		return ""
	}
	var out string
	for _, att := range msg.PDFAttachments() {
		text, err := p.pdfText.ExtractText(ctx, att.Data)
		if err != nil {
			p.log.Debug().Err(err).Str("filename", att.Filename).Msg("No text layer for attachment")
			continue
		}
		out += text + "\n"
	}
	return out
}

// uploadPDF pushes one attachment into the owner's folder. Any failure
// is logged and yields an empty file ID; other attachments still
// upload.
func (p *Pipeline) uploadPDF(ctx context.Context, filename string, data []byte, owner string, now time.Time, stats *RunStats) string {
	if p.blobs == nil {
		return ""
	}

	folderID, err := p.blobs.EnsureFolder(ctx, owner)
	if err != nil {
		p.log.Warn().Err(err).Str("owner", owner).Msg("Failed to ensure owner folder")
		return ""
	}

	fileID, err := p.blobs.Upload(ctx, data, drive.SafeFilename(filename, now), folderID)
	if err != nil {
		p.log.Warn().Err(err).Str("filename", filename).Msg("Failed to upload PDF")
		return ""
	}

	stats.Uploads[owner]++
	p.log.Info().Str("filename", filename).Str("owner", owner).Msg("Uploaded PDF")
	return fileID
}

func (p *Pipeline) reconcileRecords(ctx context.Context, records []booking.Record) (ledger.MatchStats, error) {
	master, err := p.tables.Read(ctx, p.opts.MasterWorksheet)
	if err != nil {
		return ledger.MatchStats{}, fmt.Errorf("failed to read master worksheet: %w", err)
	}

	stats := p.matcher.Match(records, master)
	if stats.Updated > 0 {
		if err := p.tables.Write(ctx, p.opts.MasterWorksheet, master); err != nil {
			return stats, fmt.Errorf("failed to write master worksheet: %w", err)
		}
	}
	return stats, nil
}

// buildRow renders one ledger row in worksheet column order. PDF fields
// win over message-level fields because the invoice document is the
// better source.
func (p *Pipeline) buildRow(now time.Time, msg *mail.RawMessage, owner, urgency string, rec *booking.Record, inv *booking.PDFInvoice, fileID string) []string {
	if inv == nil {
		inv = &booking.PDFInvoice{}
	}

	pdfFilename := ""
	if inv.Filename != "" {
		pdfFilename = drive.SafeFilename(inv.Filename, now)
	}

	return []string{
		now.Format("2006-01-02 15:04:05"),
		mail.SenderAddress(msg.From),
		truncateSubject(msg.Subject),
		owner,
		firstNonEmpty(inv.HotelName, rec.PropertyName),
		firstNonEmpty(inv.GuestName, rec.GuestName),
		rec.BookingCode,
		inv.BillNumber,
		formatRowDate(inv.BillDate),
		inv.RoomNumber,
		firstNonEmpty(inv.GuestCount, rec.GuestCount),
		formatRowDate(firstNonEmpty(inv.CheckInDate, rec.CheckInDate)),
		formatRowDate(firstNonEmpty(inv.CheckOutDate, rec.CheckOutDate)),
		firstNonEmpty(inv.TotalAmount, rec.TotalAmount),
		inv.GSTNumber,
		pdfFilename,
		fileID,
		urgency,
		"",
	}
}

func (p *Pipeline) logSummary(stats *RunStats) {
	p.log.Info().
		Int("messages_scanned", stats.MessagesScanned).
		Int("invoices_detected", stats.InvoicesDetected).
		Int("rows_appended", stats.RowsAppended).
		Interface("uploads_by_owner", stats.Uploads).
		Int("rows_updated", stats.Match.Updated).
		Int("rows_already_marked", stats.Match.AlreadyMarked).
		Int("records_unmatched", stats.Match.Unmatched).
		Msg("Run complete")
}

// recordsFromLedger rebuilds booking records from persisted ledger rows
// for a matching-only pass.
func recordsFromLedger(table *ledger.Table) []booking.Record {
	var records []booking.Record
	for i := 0; i < table.Len(); i++ {
		rec := booking.Record{
			BookingCode:  table.Get(i, ledger.ColBookingCode),
			GuestName:    table.Get(i, ledger.ColGuestName),
			PropertyName: table.Get(i, ledger.ColHotelName),
			CheckInDate:  table.Get(i, ledger.ColCheckInDate),
			CheckOutDate: table.Get(i, ledger.ColCheckOutDate),
		}
		if hasRecordFields(&rec) {
			records = append(records, rec)
		}
	}
	return records
}

func hasRecordFields(rec *booking.Record) bool {
	return rec.BookingCode != "" || rec.GuestName != "" || rec.PropertyName != "" ||
		rec.CheckInDate != "" || rec.CheckOutDate != ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
