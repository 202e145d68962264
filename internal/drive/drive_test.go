package drive

import (
	"testing"
	"time"
)

func TestSafeFilename(t *testing.T) {
	now := time.Date(2025, 5, 31, 10, 0, 0, 0, time.UTC)

	cases := []struct{ in, want string }{
		{"bill #42.pdf", "20250531_bill_42.pdf"},
		{"invoice.pdf", "20250531_invoice.pdf"},
		{"report (final).pdf", "20250531_report_final.pdf"},
		{"a  b.pdf", "20250531_a_b.pdf"},
	}
	for _, c := range cases {
		if got := SafeFilename(c.in, now); got != c.want {
			t.Errorf("SafeFilename(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
