package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"inboxledger/internal/booking"
	"inboxledger/internal/config"
	"inboxledger/internal/docai"
	"inboxledger/internal/drive"
	"inboxledger/internal/logger"
	"inboxledger/internal/mail"
	"inboxledger/internal/oracle"
	"inboxledger/internal/pdftext"
	"inboxledger/internal/pipeline"
	"inboxledger/internal/sheets"
	"inboxledger/internal/vendor"
)

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Process unread invoice emails",
	Long: `Process scans unread Gmail messages from the last N days, extracts
booking data from invoice emails and their PDF attachments, uploads the
PDFs to the assigned owner's Drive folder, appends a ledger row per
invoice and reconciles the extracted records against the master booking
sheet.

Required environment variables:
  GOOGLE_SHEET_URL - Google Sheets URL holding the ledger worksheets
  OPENAI_API_KEY   - OpenAI key for oracle extraction (optional, stage skipped without it)

Gmail OAuth credentials (client_secret.json) are read from the config
directory; the first run opens a browser consent flow.`,
	Example: `  # Process the last 7 days of unread mail
  inboxledger process

  # Look further back and skip the reconciliation pass
  inboxledger process --days 30 --skip-reconcile`,
	RunE: runProcess,
}

func init() {
	rootCmd.AddCommand(processCmd)

	processCmd.Flags().Int("days", 0, "Days of unread mail to scan (default: DAYS_TO_SEARCH)")
	processCmd.Flags().Bool("skip-reconcile", false, "Skip the master sheet reconciliation pass")
	processCmd.Flags().Bool("no-upload", false, "Skip Drive uploads even when enabled in config")
}

func runProcess(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("process")
	ctx := context.Background()

	days, _ := cmd.Flags().GetInt("days")
	skipReconcile, _ := cmd.Flags().GetBool("skip-reconcile")
	noUpload, _ := cmd.Flags().GetBool("no-upload")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if days <= 0 {
		days = cfg.DaysToSearch
	}

	log.Info().
		Int("days", days).
		Str("ledger_worksheet", cfg.LedgerWorksheet).
		Msg("Starting invoice processing run")

	tables, err := sheets.NewService(ctx, cfg.GoogleSheetURL)
	if err != nil {
		return fmt.Errorf("failed to initialize Google Sheets service: %w", err)
	}

	mailSource, err := mail.NewGmailSource(ctx, cfg.GmailConfigDir)
	if err != nil {
		return fmt.Errorf("failed to initialize Gmail source: %w", err)
	}

	resolver, err := buildResolver(ctx, tables, cfg.VendorWorksheet)
	if err != nil {
		return err
	}

	extractor, pdfText := buildExtractor(ctx, cfg)
	blobs := buildBlobStore(ctx, cfg, noUpload)

	opts := pipeline.Options{
		LedgerWorksheet: cfg.LedgerWorksheet,
		MasterWorksheet: cfg.MasterWorksheet,
		DaysToSearch:    days,
	}
	if skipReconcile {
		opts.MasterWorksheet = ""
	}

	p := pipeline.New(mailSource, blobs, tables, pdfText, extractor, resolver, opts)
	stats, err := p.Run(ctx)
	if err != nil {
		return fmt.Errorf("processing run failed: %w", err)
	}

	fmt.Printf("Messages scanned:  %d\n", stats.MessagesScanned)
	fmt.Printf("Invoices detected: %d\n", stats.InvoicesDetected)
	fmt.Printf("Rows appended:     %d\n", stats.RowsAppended)
	for owner, count := range stats.Uploads {
		fmt.Printf("Uploads for %s: %d\n", owner, count)
	}
	if !skipReconcile {
		fmt.Printf("Rows marked received: %d (already marked: %d, unmatched: %d)\n",
			stats.Match.Updated, stats.Match.AlreadyMarked, stats.Match.Unmatched)
	}
	return nil
}

// buildResolver loads the vendor reference worksheet. A missing or
// empty worksheet downgrades to an empty reference (everything lands in
// UNASSIGNED) instead of failing the run.
func buildResolver(ctx context.Context, tables *sheets.Service, worksheet string) (*vendor.Resolver, error) {
	log := logger.WithComponent("process")

	ref, err := tables.LoadVendorReference(ctx, worksheet)
	if err != nil {
		log.Warn().Err(err).Str("worksheet", worksheet).Msg("Vendor reference unavailable, all invoices will be UNASSIGNED")
		ref = vendor.NewReference()
	} else {
		log.Info().Int("vendors", ref.Len()).Msg("Vendor reference loaded")
	}
	return vendor.NewResolver(ref, nil), nil
}

// buildExtractor assembles the booking extractor with whichever
// extraction collaborators the environment supports. Missing
// credentials disable a stage, never the run.
func buildExtractor(ctx context.Context, cfg *config.Config) (*booking.Extractor, pdftext.Extractor) {
	log := logger.WithComponent("process")

	var textOracle oracle.TextOracle
	if cfg.OracleEnabled && cfg.OpenAIAPIKey != "" {
		o, err := oracle.NewOpenAIOracle()
		if err != nil {
			log.Warn().Err(err).Msg("Oracle unavailable, extraction falls back to patterns")
		} else {
			textOracle = o
		}
	} else {
		log.Info().Msg("Oracle extraction disabled")
	}

	pdfText := pdftext.NewService(ctx)

	var structured booking.PDFFieldExtractor
	if cfg.DocumentAIProcessorID != "" {
		d, err := docai.New(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("Document AI unavailable, PDF extraction uses the oracle only")
		} else {
			structured = d
		}
	}

	return booking.NewExtractor(textOracle, pdfText, structured), pdfText
}

// buildBlobStore returns the Drive store, or nil when uploads are
// disabled or Drive credentials are missing.
func buildBlobStore(ctx context.Context, cfg *config.Config, noUpload bool) drive.BlobStore {
	log := logger.WithComponent("process")

	if noUpload || !cfg.DriveUploadEnabled {
		log.Info().Msg("Drive upload disabled")
		return nil
	}
	store, err := drive.NewDriveStore(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Drive unavailable, PDFs will not be uploaded")
		return nil
	}
	return store
}
