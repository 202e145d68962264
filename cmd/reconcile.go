package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"inboxledger/internal/booking"
	"inboxledger/internal/config"
	"inboxledger/internal/logger"
	"inboxledger/internal/pipeline"
	"inboxledger/internal/sheets"
	"inboxledger/internal/vendor"
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Mark master sheet rows received for existing ledger rows",
	Long: `Reconcile reads the invoice ledger worksheet, rebuilds the booking
records from its rows and marks the matching rows of the master booking
worksheet as received. Matching uses the booking code as primary key and
falls back to guest name, property and stay dates.

Required environment variables:
  GOOGLE_SHEET_URL - Google Sheets URL holding the ledger worksheets`,
	Example: `  # Reconcile the ledger against the master sheet
  inboxledger reconcile`,
	RunE: runReconcile,
}

func init() {
	rootCmd.AddCommand(reconcileCmd)
}

func runReconcile(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("reconcile")
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log.Info().
		Str("ledger_worksheet", cfg.LedgerWorksheet).
		Str("master_worksheet", cfg.MasterWorksheet).
		Msg("Starting reconciliation pass")

	tables, err := sheets.NewService(ctx, cfg.GoogleSheetURL)
	if err != nil {
		return fmt.Errorf("failed to initialize Google Sheets service: %w", err)
	}

	opts := pipeline.Options{
		LedgerWorksheet: cfg.LedgerWorksheet,
		MasterWorksheet: cfg.MasterWorksheet,
	}
	p := pipeline.New(nil, nil, tables, nil, booking.NewExtractor(nil, nil, nil), vendor.NewResolver(vendor.NewReference(), nil), opts)

	stats, err := p.Reconcile(ctx)
	if err != nil {
		return fmt.Errorf("reconciliation failed: %w", err)
	}

	fmt.Printf("Rows marked received: %d\n", stats.Updated)
	fmt.Printf("Already marked:       %d\n", stats.AlreadyMarked)
	fmt.Printf("Unmatched records:    %d\n", stats.Unmatched)
	return nil
}
