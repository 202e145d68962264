// Package htmltable pulls booking field records out of HTML email bodies.
// Booking mails from aggregators usually carry the interesting fields in a
// table, but the markup is whatever the sender's template engine produced,
// so parsing is tolerant: a table that cannot be understood contributes
// nothing instead of failing the message.
package htmltable

import (
	"strings"

	"golang.org/x/net/html"

	"inboxledger/internal/logger"
	"inboxledger/internal/normalize"
)

// Record maps canonical fields to the cell text found for them in one
// table row (or one key/value table).
type Record map[normalize.Field]string

// keeperFields: a row-record is only worth keeping when at least one of
// these carries a non-empty value.
var keeperFields = []normalize.Field{
	normalize.FieldBookingCode,
	normalize.FieldGuestName,
	normalize.FieldClientName,
	normalize.FieldCheckInDate,
	normalize.FieldCheckOutDate,
}

// Extract parses the document and returns one record per booking-bearing
// table row. An empty or unparsable document yields an empty slice; a
// malformed table never aborts extraction of its siblings.
func Extract(doc string) []Record {
	if strings.TrimSpace(doc) == "" {
		return nil
	}
	root, err := html.Parse(strings.NewReader(doc))
	if err != nil {
		log := logger.WithComponent("htmltable")
		log.Debug().Err(err).Msg("HTML body did not parse, skipping table extraction")
		return nil
	}

	var records []Record
	for _, table := range findTables(root) {
		records = append(records, extractTable(table)...)
	}
	return records
}

func extractTable(table *html.Node) (records []Record) {
	log := logger.WithComponent("htmltable")
	defer func() {
		if r := recover(); r != nil {
			log.Warn().Interface("panic", r).Msg("table extraction failed, skipping table")
			records = nil
		}
	}()

	rows := tableRows(table)
	if len(rows) == 0 {
		return nil
	}

	// A table whose rows are all label/value pairs describes a single
	// booking; without this check row 0 would be misread as a header row.
	if isKeyValueShape(rows) {
		if rec := keyValueRecord(rows); keep(rec) {
			return []Record{rec}
		}
		return nil
	}

	// Row 0 as headers, remaining rows as records.
	headers := make([]normalize.Field, len(rows[0]))
	resolved := false
	for i, cell := range rows[0] {
		if f, ok := normalize.Header(cell); ok {
			headers[i] = f
			resolved = true
		}
	}

	if resolved && len(rows) >= 2 {
		for _, row := range rows[1:] {
			rec := Record{}
			for i, cell := range row {
				if i >= len(headers) || headers[i] == "" {
					continue
				}
				if _, seen := rec[headers[i]]; seen {
					continue
				}
				if v := normalize.Value(headers[i], cell); v != "" {
					rec[headers[i]] = v
				}
			}
			if keep(rec) {
				records = append(records, rec)
			}
		}
		return records
	}

	// Headers did not resolve (or there is nothing below them): treat each
	// 2-cell row as a label/value pair instead.
	if rec := keyValueRecord(rows); keep(rec) {
		records = append(records, rec)
	}
	return records
}

// isKeyValueShape reports whether every row has exactly two cells, at
// least one first-column cell resolves to a field, and the top-right
// cell does not look like a header (which would indicate a two-column
// header table instead).
func isKeyValueShape(rows [][]string) bool {
	for _, row := range rows {
		if len(row) != 2 {
			return false
		}
	}
	if _, ok := normalize.Header(rows[0][1]); ok {
		return false
	}
	for _, row := range rows {
		if _, ok := normalize.Header(row[0]); ok {
			return true
		}
	}
	return false
}

func keyValueRecord(rows [][]string) Record {
	rec := Record{}
	for _, row := range rows {
		if len(row) != 2 {
			continue
		}
		f, ok := normalize.Header(row[0])
		if !ok {
			continue
		}
		if _, seen := rec[f]; seen {
			continue
		}
		if v := normalize.Value(f, row[1]); v != "" {
			rec[f] = v
		}
	}
	return rec
}

func keep(rec Record) bool {
	for _, f := range keeperFields {
		if rec[f] != "" {
			return true
		}
	}
	return false
}

// findTables walks the tree collecting every <table>, including tables
// nested inside other tables (common in email layout markup).
func findTables(n *html.Node) []*html.Node {
	var tables []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "table" {
			tables = append(tables, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return tables
}

// tableRows returns the trimmed cell texts of each <tr> that belongs to
// this table directly (not to a nested table). Empty cells are kept so
// column positions stay aligned with the header row; rows with no
// non-empty cell are dropped.
func tableRows(table *html.Node) [][]string {
	var rows [][]string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			switch c.Data {
			case "table":
				continue
			case "tr":
				if cells := rowCells(c); cells != nil {
					rows = append(rows, cells)
				}
			default:
				walk(c)
			}
		}
	}
	walk(table)
	return rows
}

func rowCells(tr *html.Node) []string {
	var cells []string
	nonEmpty := false
	for c := tr.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		if c.Data != "td" && c.Data != "th" {
			continue
		}
		text := strings.Join(strings.Fields(nodeText(c)), " ")
		cells = append(cells, text)
		if text != "" {
			nonEmpty = true
		}
	}
	if !nonEmpty {
		return nil
	}
	return cells
}

func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteString(" ")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}
