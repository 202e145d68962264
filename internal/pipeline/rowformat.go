package pipeline

import (
	"regexp"
	"strings"

	"inboxledger/internal/vendor"
)

const maxSubjectLen = 50

// truncateSubject caps the persisted subject so one long subject does
// not blow up the worksheet column.
func truncateSubject(subject string) string {
	if len(subject) <= maxSubjectLen {
		return subject
	}
	return subject[:maxSubjectLen] + "..."
}

// formatRowDate rewrites DD/MM/YY and DD/MM/YYYY dates as YYYY-MM-DD
// for the worksheet. Anything else passes through unchanged.
func formatRowDate(value string) string {
	parts := strings.Split(value, "/")
	if len(parts) != 3 {
		return value
	}
	day, month, year := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]), strings.TrimSpace(parts[2])
	if len(year) == 2 {
		year = "20" + year
	}
	if len(day) == 0 || len(day) > 2 || len(month) == 0 || len(month) > 2 || len(year) != 4 {
		return value
	}
	return year + "-" + pad2(month) + "-" + pad2(day)
}

func pad2(s string) string {
	if len(s) == 1 {
		return "0" + s
	}
	return s
}

// hotelIndicators are generic property words; the word immediately
// before one of them is taken as the property name when nothing better
// was extracted.
var hotelIndicators = []string{
	"hotel", "resort", "inn", "chalet", "executive", "apartments",
	"suites", "palace", "tower", "plaza", "central", "grand",
	"premier", "luxury", "boutique", "international", "airport",
	"city", "garden", "park", "view", "heights", "manor", "villa",
	"house", "lodge", "court", "square", "mall", "center", "centre",
	"complex", "building", "towers",
}

var hotelIndicatorPatterns = buildIndicatorPatterns()

func buildIndicatorPatterns() []*regexp.Regexp {
	patterns := make([]*regexp.Regexp, 0, len(hotelIndicators))
	for _, ind := range hotelIndicators {
		patterns = append(patterns, regexp.MustCompile(`(\w+)\s+`+ind+`\b`))
	}
	return patterns
}

// guessVendorName scans the message text for a property indicator word
// and returns the word before it as a title-cased vendor guess. Returns
// the unknown-vendor sentinel when nothing matches.
func guessVendorName(text string) string {
	lower := strings.ToLower(text)
	for i, pat := range hotelIndicatorPatterns {
		if m := pat.FindStringSubmatch(lower); m != nil {
			return titleWord(m[1]) + " " + titleWord(hotelIndicators[i])
		}
	}
	return vendor.UnknownVendor
}

func titleWord(w string) string {
	if w == "" {
		return w
	}
	return strings.ToUpper(w[:1]) + w[1:]
}
