package mail

import (
	"regexp"
	"strconv"
	"strings"
)

// invoiceKeywords flag a message as invoice-related when any of them
// appears in the subject or body.
var invoiceKeywords = []string{
	"invoice", "bill", "receipt", "payment", "booking", "reservation",
	"confirmation", "voucher", "ticket", "statement", "charge",
	"hotel", "accommodation", "travel", "booking id", "reservation id",
	"pending", "required", "urgent", "bills",
}

// urgencyLevels are checked in order; the first level with a keyword hit
// wins, so "high priority" classifies as URGENT via "priority".
var urgencyLevels = []struct {
	level    string
	keywords []string
}{
	{"URGENT", []string{"urgent", "asap", "immediately", "rush", "priority"}},
	{"HIGH", []string{"high priority", "important", "critical"}},
	{"NORMAL", []string{"normal", "standard", "regular"}},
}

// IsInvoiceEmail reports whether the subject/body look invoice-related.
func IsInvoiceEmail(subject, body string) bool {
	text := strings.ToLower(subject + " " + body)
	for _, kw := range invoiceKeywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// UrgencyLevel classifies the message text; defaults to NORMAL.
func UrgencyLevel(text string) string {
	lower := strings.ToLower(text)
	for _, u := range urgencyLevels {
		for _, kw := range u.keywords {
			if strings.Contains(lower, kw) {
				return u.level
			}
		}
	}
	return "NORMAL"
}

var amountPatterns = []*regexp.Regexp{
	// currency symbol before or after the number
	regexp.MustCompile(`[\$₹€£]\s*(\d{1,3}(?:,\d{3})*(?:\.\d{2})?)`),
	regexp.MustCompile(`(\d{1,3}(?:,\d{3})*(?:\.\d{2})?)\s*[\$₹€£]`),
	// Indian rupee spellings
	regexp.MustCompile(`(?i)Rs\.?\s*(\d{1,3}(?:,\d{3})*(?:\.\d{2})?)`),
	regexp.MustCompile(`(?i)INR\s*(\d{1,3}(?:,\d{3})*(?:\.\d{2})?)`),
	// bare numbers that could be amounts
	regexp.MustCompile(`(?:^|[^\d.,])(\d{1,3}(?:,\d{3})*(?:\.\d{2})?)(?:[^\d]|$)`),
}

// ExtractAmounts collects candidate monetary amounts from text,
// deduplicated, dropping values below 1.0 (page numbers, counts).
func ExtractAmounts(text string) []float64 {
	seen := make(map[float64]bool)
	var amounts []float64
	for _, pat := range amountPatterns {
		for _, m := range pat.FindAllStringSubmatch(text, -1) {
			clean := strings.ReplaceAll(m[1], ",", "")
			amount, err := strconv.ParseFloat(clean, 64)
			if err != nil || amount < 1.0 {
				continue
			}
			if !seen[amount] {
				seen[amount] = true
				amounts = append(amounts, amount)
			}
		}
	}
	return amounts
}
