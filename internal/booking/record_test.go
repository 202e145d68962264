package booking

import "testing"

func TestSourceTags(t *testing.T) {
	tags := map[Source]string{
		SourceTable:           "table",
		SourceOracle:          "oracle",
		SourceRegexFallback:   "regex-fallback",
		SourceHeuristicWindow: "heuristic-window",
	}
	for src, want := range tags {
		if string(src) != want {
			t.Errorf("source tag = %q, want %q", src, want)
		}
	}
}

func TestPDFInvoiceProcessed(t *testing.T) {
	ok := &PDFInvoice{Filename: "a.pdf", HotelName: "Lotus Residency"}
	if !ok.Processed() {
		t.Error("invoice with hotel name reported unprocessed")
	}
	bad := &PDFInvoice{Filename: "b.pdf", HotelName: UnprocessedHotelName}
	if bad.Processed() {
		t.Error("sentinel invoice reported processed")
	}
}
