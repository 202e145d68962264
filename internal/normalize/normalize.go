// Package normalize canonicalizes the header labels and raw field values
// that booking emails and spreadsheets disagree on: arbitrary column
// captions are mapped onto a fixed field enumeration, and values are
// cleaned into comparable form. Everything here is pure string work so the
// extraction and matching layers can share one vocabulary.
package normalize

import (
	"regexp"
	"strings"
)

// Field identifies one of the canonical booking fields.
type Field string

const (
	FieldBookingCode  Field = "booking_code"
	FieldGuestName    Field = "guest_name"
	FieldClientName   Field = "client_name"
	FieldPropertyName Field = "property_name"
	FieldCheckInDate  Field = "check_in_date"
	FieldCheckOutDate Field = "check_out_date"
	FieldGuestCount   Field = "guest_count"
	FieldTotalAmount  Field = "total_amount"
)

// headerRule maps a header whose collapsed word set contains at least one
// word from every group onto a canonical field. Rules are evaluated in
// order; the first match wins.
type headerRule struct {
	field  Field
	groups [][]string
}

var headerRules = []headerRule{
	{FieldBookingCode, [][]string{
		{"booking", "reservation", "confirmation"},
		{"code", "id", "number", "no", "ref", "reference"},
	}},
	{FieldGuestName, [][]string{{"guest"}, {"name"}}},
	{FieldGuestName, [][]string{{"customer"}, {"name"}}},
	{FieldClientName, [][]string{{"client"}, {"name"}}},
	{FieldCheckInDate, [][]string{
		{"check", "checkin"},
		{"in", "checkin", "arrival", "from", "start"},
	}},
	{FieldCheckOutDate, [][]string{
		{"check", "checkout"},
		{"out", "checkout", "departure", "to", "end"},
	}},
	{FieldCheckInDate, [][]string{{"arrival"}}},
	{FieldCheckOutDate, [][]string{{"departure"}}},
	{FieldPropertyName, [][]string{{"hotel", "property", "resort", "villa"}}},
	{FieldGuestCount, [][]string{{"guests", "pax", "persons"}}},
	{FieldTotalAmount, [][]string{{"amount", "total"}}},
}

var (
	nonAlnumRe     = regexp.MustCompile(`[^a-z0-9]+`)
	sevenDigitsRe  = regexp.MustCompile(`\d{7}`)
	digitsRe       = regexp.MustCompile(`\d+`)
	trailingZeroRe = regexp.MustCompile(`\.0+$`)
	dateSepRe      = regexp.MustCompile(`[/.\s]+`)
)

// Header maps an arbitrary column or label caption to a canonical field.
// The caption is lower-cased, punctuation-stripped and split into words
// before the keyword rules run. Returns false when no rule matches.
func Header(text string) (Field, bool) {
	words := strings.Fields(nonAlnumRe.ReplaceAllString(strings.ToLower(text), " "))
	if len(words) == 0 {
		return "", false
	}
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}

	for _, rule := range headerRules {
		matched := true
		for _, group := range rule.groups {
			any := false
			for _, kw := range group {
				if set[kw] {
					any = true
					break
				}
			}
			if !any {
				matched = false
				break
			}
		}
		if matched {
			return rule.field, true
		}
	}
	return "", false
}

// Value cleans a raw extracted value: enclosing quotes and backticks,
// leading dashes/punctuation, trailing punctuation, and internal
// whitespace runs are removed. Booking codes additionally drop all
// whitespace, and if a 7-digit run appears anywhere in what remains,
// just that run is returned.
func Value(field Field, text string) string {
	v := strings.TrimSpace(text)
	// Trim to a fixpoint: a closing backtick followed by punctuation
	// ("`Name`:") needs a second round once the punctuation is gone.
	for {
		prev := v
		v = strings.Trim(v, "\"'`")
		v = strings.TrimLeft(v, "-–—:;,. \t")
		v = strings.TrimRight(v, ":;,. \t")
		if v == prev {
			break
		}
	}
	v = strings.Join(strings.Fields(v), " ")

	if field == FieldBookingCode {
		v = strings.Join(strings.Fields(v), "")
		if run := sevenDigitsRe.FindString(v); run != "" {
			return run
		}
	}
	return v
}

// IsValidBookingCode reports whether stripping every non-digit character
// from text leaves exactly 7 digits.
func IsValidBookingCode(text string) bool {
	var n int
	for _, r := range text {
		if r >= '0' && r <= '9' {
			n++
			if n > 7 {
				return false
			}
		}
	}
	return n == 7
}

// ComparisonKey derives the canonical form of a value used for equality
// checks. Booking codes lose internal separators and a trailing .0 run
// left behind by spreadsheet numeric coercion. Date fields have more than
// one defensible rendering; use DateCandidates for those.
func ComparisonKey(field Field, value string) string {
	v := strings.ToLower(strings.TrimSpace(value))
	if field == FieldBookingCode {
		v = trailingZeroRe.ReplaceAllString(v, "")
		v = strings.NewReplacer(" ", "", "-", "", "_", "", "/", "", ".", "").Replace(v)
	}
	return v
}

// DateCandidates returns the comparison renderings of a date string:
// separators collapsed to "-", and the raw lower-cased string. Equality
// checks must try every pairing of one side's candidates against the
// other's.
func DateCandidates(value string) [2]string {
	raw := strings.ToLower(strings.TrimSpace(value))
	dashed := strings.Trim(dateSepRe.ReplaceAllString(raw, "-"), "-")
	return [2]string{dashed, raw}
}

// DatesEqual compares two date strings across every candidate pairing,
// then falls back to digit-run containment so "12/05/2025" still matches
// "12-05-25" style drift in either direction.
func DatesEqual(a, b string) bool {
	if strings.TrimSpace(a) == "" || strings.TrimSpace(b) == "" {
		return false
	}
	ca, cb := DateCandidates(a), DateCandidates(b)
	for _, x := range ca {
		for _, y := range cb {
			if x != "" && x == y {
				return true
			}
		}
	}
	da, db := DigitsOnly(a), DigitsOnly(b)
	if da == "" || db == "" {
		return false
	}
	return strings.Contains(da, db) || strings.Contains(db, da)
}

// DigitsOnly concatenates every digit run in s.
func DigitsOnly(s string) string {
	return strings.Join(digitsRe.FindAllString(s, -1), "")
}
