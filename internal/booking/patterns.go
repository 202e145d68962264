package booking

import "regexp"

// Pattern order matters everywhere in this file: the first pattern whose
// captured value passes the booking-code validity check wins.

// oracleCodePatterns scan the oracle's labeled free-text response.
var oracleCodePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)BOOKING[ \t]*CODE[ \t]*[:#\-]?[ \t]*([A-Za-z0-9\-/]+)`),
	regexp.MustCompile(`(?i)BOOKING[ \t]*ID[ \t]*[:#\-]?[ \t]*([A-Za-z0-9\-/]+)`),
	regexp.MustCompile(`(?i)BOOKING[ \t]*REFERENCE[ \t]*[:#\-]?[ \t]*([A-Za-z0-9\-/]+)`),
	regexp.MustCompile(`(?i)CONFIRMATION[ \t]*(?:NUMBER|NO|CODE)[ \t]*[:#\-]?[ \t]*([A-Za-z0-9\-/]+)`),
	regexp.MustCompile(`(?i)\bBOOKING[ \t]*[:#][ \t]*([A-Za-z0-9\-/]+)`),
	regexp.MustCompile(`(?i)\bREF[ \t]*[:#][ \t]*([A-Za-z0-9\-/]+)`),
	regexp.MustCompile(`(?i)\bBOOKING\b.{0,40}?(?:^|\D)(\d{7})(?:\D|$)`),
}

// fallbackCodePatterns run over the raw message corpus when both the
// table and the oracle came up empty.
var fallbackCodePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bBOOKING\s*(?:CODE|ID|NUMBER|NO|REFERENCE|REF)?\s*[:#\-]?\s*([A-Za-z0-9][A-Za-z0-9\-]{3,18})`),
	regexp.MustCompile(`(?i)\bCONFIRMATION\s*(?:NUMBER|NO|CODE)?\s*[:#\-]?\s*([A-Za-z0-9][A-Za-z0-9\-]{3,18})`),
	regexp.MustCompile(`(?i)\bRESERVATION\s*(?:ID|NO|NUMBER|CODE)?\s*[:#\-]?\s*([A-Za-z0-9][A-Za-z0-9\-]{3,18})`),
	regexp.MustCompile(`(?i)\bREFERENCE\s*(?:NO|NUMBER)?\s*[:#\-]?\s*([A-Za-z0-9][A-Za-z0-9\-]{3,18})`),
	regexp.MustCompile(`(?i)\bCONF\s*[:#\-]?\s*([A-Za-z0-9][A-Za-z0-9\-]{3,18})`),
	regexp.MustCompile(`(?i)\bBOOKING\b.{0,40}?(?:^|\D)(\d{7})(?:\D|$)`),
}

// windowKeywords drive the last-resort proximity scan: a 7-digit run
// within windowRadius characters of any of these words.
var windowKeywords = regexp.MustCompile(`(?i)\b(?:booking|reference|confirmation|reservation|ref|conf)\b`)

const windowRadius = 120

// sevenDigitRun matches a digit run of exactly 7 (not part of a longer
// run, so phone numbers don't bleed in).
var sevenDigitRun = regexp.MustCompile(`(?:^|\D)(\d{7})(?:\D|$)`)

// oracleFieldPatterns pull the non-code fields out of the oracle's
// labeled response.
var oracleFieldPatterns = map[string]*regexp.Regexp{
	"guest_name":     regexp.MustCompile(`(?i)GUEST[ \t]*NAME[ \t]*:[ \t]*(.+)`),
	"client_name":    regexp.MustCompile(`(?i)CLIENT[ \t]*NAME[ \t]*:[ \t]*(.+)`),
	"check_in_date":  regexp.MustCompile(`(?i)CHECK[ \t\-]?IN[ \t]*DATE[ \t]*:[ \t]*(.+)`),
	"check_out_date": regexp.MustCompile(`(?i)CHECK[ \t\-]?OUT[ \t]*DATE[ \t]*:[ \t]*(.+)`),
}

// bookingBlockSplit separates "BOOKING 1:" / "BOOKING 2:" multi-booking
// oracle responses into blocks.
var bookingBlockSplit = regexp.MustCompile(`(?im)^\s*BOOKING\s+\d+\s*:\s*$`)

// htmlTagStrip removes markup when the HTML body is folded into the
// plain-text corpus for the fallback stages.
var htmlTagStrip = regexp.MustCompile(`(?s)<[^>]*>`)
