package sheets

import "testing"

func TestExtractSpreadsheetID(t *testing.T) {
	id, err := extractSpreadsheetID("https://docs.google.com/spreadsheets/d/1AbC-dEf_123/edit#gid=0")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "1AbC-dEf_123" {
		t.Errorf("id = %q, want 1AbC-dEf_123", id)
	}

	if _, err := extractSpreadsheetID("https://example.com/not-a-sheet"); err == nil {
		t.Error("expected error for non-sheet URL")
	}
}
