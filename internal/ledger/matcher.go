package ledger

import (
	"strings"

	"github.com/rs/zerolog"

	"inboxledger/internal/booking"
	"inboxledger/internal/logger"
	"inboxledger/internal/normalize"
)

// ReceivedMark is the value written into the Invoice Received column.
const ReceivedMark = "Received"

// MatchStats aggregates one matching pass.
type MatchStats struct {
	Updated       int // rows newly marked received
	AlreadyMarked int // matched rows that were already marked
	Unmatched     int // records that matched no row
	Errors        int // records whose evaluation panicked
}

// Matcher marks ledger rows as received for extracted booking records.
type Matcher struct {
	log zerolog.Logger
}

func NewMatcher() *Matcher {
	return &Matcher{log: logger.WithComponent("ledger-matcher")}
}

// Match finds the ledger row(s) for each record and marks them received.
// A failure on one record never stops the others.
func (m *Matcher) Match(records []booking.Record, table *Table) MatchStats {
	var stats MatchStats
	for i := range records {
		m.matchOne(&records[i], table, &stats)
	}
	m.log.Info().
		Int("records", len(records)).
		Int("updated", stats.Updated).
		Int("already_marked", stats.AlreadyMarked).
		Int("unmatched", stats.Unmatched).
		Int("errors", stats.Errors).
		Msg("Matching pass complete")
	return stats
}

func (m *Matcher) matchOne(rec *booking.Record, table *Table, stats *MatchStats) {
	defer func() {
		if r := recover(); r != nil {
			stats.Errors++
			m.log.Warn().Interface("panic", r).Str("booking_code", rec.BookingCode).
				Msg("Record matching failed, continuing with next record")
		}
	}()

	rows := m.findRows(rec, table)
	if len(rows) == 0 {
		stats.Unmatched++
		m.log.Debug().
			Str("booking_code", rec.BookingCode).
			Str("guest_name", rec.GuestName).
			Msg("No ledger row matched record")
		return
	}

	for _, row := range rows {
		current := strings.TrimSpace(table.Get(row, ColInvoiceReceived))
		if strings.EqualFold(current, ReceivedMark) {
			stats.AlreadyMarked++
			continue
		}
		table.Set(row, ColInvoiceReceived, ReceivedMark)
		stats.Updated++
		m.log.Debug().Int("row", row).Str("booking_code", rec.BookingCode).Msg("Marked row received")
	}
}

// findRows applies the primary booking-code key first; the composite
// fallback only runs when the code produced no rows.
func (m *Matcher) findRows(rec *booking.Record, table *Table) []int {
	var rows []int

	// Normalize before validating: spreadsheet numeric coercion turns
	// codes into "1234567.0", which only passes the 7-digit check once
	// the comparison key has stripped the suffix.
	want := normalize.ComparisonKey(normalize.FieldBookingCode, rec.BookingCode)
	if normalize.IsValidBookingCode(want) {
		for i := 0; i < table.Len(); i++ {
			have := normalize.ComparisonKey(normalize.FieldBookingCode, table.Get(i, ColBookingCode))
			if have != "" && have == want {
				rows = append(rows, i)
			}
		}
		if len(rows) > 0 {
			return rows
		}
	}

	if rec.GuestName == "" || rec.PropertyName == "" || rec.CheckInDate == "" || rec.CheckOutDate == "" {
		return rows
	}
	for i := 0; i < table.Len(); i++ {
		if namesMatch(rec.GuestName, table.Get(i, ColGuestName)) &&
			normalize.DatesEqual(rec.CheckInDate, table.Get(i, ColCheckInDate)) &&
			normalize.DatesEqual(rec.CheckOutDate, table.Get(i, ColCheckOutDate)) &&
			namesMatch(rec.PropertyName, table.Get(i, ColHotelName)) {
			rows = append(rows, i)
		}
	}
	return rows
}

// namesMatch: case-insensitive equality or substring containment in
// either direction.
func namesMatch(a, b string) bool {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == "" || b == "" {
		return false
	}
	return a == b || strings.Contains(a, b) || strings.Contains(b, a)
}
