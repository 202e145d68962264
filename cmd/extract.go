package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"inboxledger/internal/booking"
	"inboxledger/internal/docai"
	"inboxledger/internal/logger"
	"inboxledger/internal/oracle"
	"inboxledger/internal/pdftext"
)

var extractCmd = &cobra.Command{
	Use:   "extract [pdf-file]",
	Short: "Extract invoice fields from a single PDF",
	Long: `Extract runs the PDF extraction path against one local file and
prints the fields it finds: the text layer is read (OCR when the PDF has
none), the oracle parses it into labeled invoice fields, and Document AI
is tried first when a processor is configured. Useful for checking what
a problem attachment would yield before a full run.`,
	Example: `  # Extract fields from a local invoice
  inboxledger extract invoice.pdf

  # Print the raw text layer instead of parsed fields
  inboxledger extract invoice.pdf --text`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().Bool("text", false, "Print the extracted text layer and exit")
}

func runExtract(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("extract")
	ctx := context.Background()

	pdfPath := args[0]
	textOnly, _ := cmd.Flags().GetBool("text")

	data, err := os.ReadFile(pdfPath)
	if err != nil {
		return fmt.Errorf("failed to read PDF file: %w", err)
	}

	log.Info().
		Str("file", filepath.Base(pdfPath)).
		Int("size_bytes", len(data)).
		Msg("Extracting invoice fields")

	if textOnly {
		text, err := pdftext.NewService(ctx).ExtractText(ctx, data)
		if err != nil {
			return fmt.Errorf("text extraction failed: %w", err)
		}
		fmt.Println(text)
		return nil
	}

	var textOracle oracle.TextOracle
	if os.Getenv("OPENAI_API_KEY") != "" {
		o, err := oracle.NewOpenAIOracle()
		if err != nil {
			log.Warn().Err(err).Msg("Oracle unavailable")
		} else {
			textOracle = o
		}
	}

	var structured booking.PDFFieldExtractor
	if os.Getenv("DOCUMENT_AI_PROCESSOR_ID") != "" {
		d, err := docai.New(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("Document AI unavailable")
		} else {
			structured = d
		}
	}

	extractor := booking.NewExtractor(textOracle, pdftext.NewService(ctx), structured)
	inv := extractor.ExtractPDFInvoice(ctx, filepath.Base(pdfPath), data)
	if !inv.Processed() {
		return fmt.Errorf("PDF could not be processed")
	}

	fmt.Printf("Hotel:       %s\n", inv.HotelName)
	fmt.Printf("Guest:       %s\n", inv.GuestName)
	fmt.Printf("Bill number: %s\n", inv.BillNumber)
	fmt.Printf("Bill date:   %s\n", inv.BillDate)
	fmt.Printf("Check-in:    %s\n", inv.CheckInDate)
	fmt.Printf("Check-out:   %s\n", inv.CheckOutDate)
	fmt.Printf("Room:        %s\n", inv.RoomNumber)
	fmt.Printf("Guests:      %s\n", inv.GuestCount)
	fmt.Printf("Amount:      %s\n", inv.TotalAmount)
	fmt.Printf("GST:         %s\n", inv.GSTNumber)
	return nil
}
