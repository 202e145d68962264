package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"inboxledger/internal/logger"
)

var version = "1.0.0"

var rootCmd = &cobra.Command{
	Use:   "inboxledger",
	Short: "Invoice inbox processor",
	Long: `inboxledger scans a Gmail inbox for invoice emails, extracts booking
data from message bodies and PDF attachments, assigns each invoice to a
staff owner by fuzzy vendor matching, uploads the PDFs to Google Drive
and appends a row per invoice to a shared Google Sheet. A reconciliation
pass marks the corresponding master booking sheet rows as received.`,
	Version: version,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("inboxledger - invoice inbox processor")
		fmt.Println("Use --help to see available commands and options.")
	},
}

func Execute() {
	log := logger.WithComponent("cmd")

	if err := rootCmd.Execute(); err != nil {
		log.Error().
			Err(err).
			Msg("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().BoolP("version", "v", false, "Print version information")
}
