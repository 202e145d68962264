package normalize

import "testing"

func TestHeader(t *testing.T) {
	cases := []struct {
		in    string
		want  Field
		match bool
	}{
		{"Booking Code", FieldBookingCode, true},
		{"Reservation ID", FieldBookingCode, true},
		{"Confirmation Number", FieldBookingCode, true},
		{"Booking Ref.", FieldBookingCode, true},
		{"Guest Name", FieldGuestName, true},
		{"Customer Name", FieldGuestName, true},
		{"Client Name", FieldClientName, true},
		{"Check-In Date", FieldCheckInDate, true},
		{"Check in", FieldCheckInDate, true},
		{"Arrival Date", FieldCheckInDate, true},
		{"Check-Out Date", FieldCheckOutDate, true},
		{"Departure", FieldCheckOutDate, true},
		{"Hotel Name", FieldPropertyName, true},
		{"Property", FieldPropertyName, true},
		{"No. of Guests", FieldGuestCount, true},
		{"Pax", FieldGuestCount, true},
		{"Total Amount", FieldTotalAmount, true},
		{"Amount (INR)", FieldTotalAmount, true},
		{"Remarks", "", false},
		{"", "", false},
	}
	for _, c := range cases {
		got, ok := Header(c.in)
		if ok != c.match || got != c.want {
			t.Errorf("Header(%q) = (%q, %v), want (%q, %v)", c.in, got, ok, c.want, c.match)
		}
	}
}

func TestValue(t *testing.T) {
	cases := []struct {
		field Field
		in    string
		want  string
	}{
		{FieldGuestName, `  "Asha Rao"  `, "Asha Rao"},
		{FieldGuestName, "- Asha   Rao,", "Asha Rao"},
		{FieldPropertyName, "`Grand Sapphire Resort`:", "Grand Sapphire Resort"},
		{FieldBookingCode, "code: 123 4567", "1234567"},
		{FieldBookingCode, "BK-1234567/X", "1234567"},
		{FieldBookingCode, "N/A", "N/A"},
	}
	for _, c := range cases {
		if got := Value(c.field, c.in); got != c.want {
			t.Errorf("Value(%q, %q) = %q, want %q", c.field, c.in, got, c.want)
		}
	}
}

func TestIsValidBookingCode(t *testing.T) {
	valid := []string{"1234567", " 123-4567 ", "code 1234567"}
	for _, s := range valid {
		if !IsValidBookingCode(s) {
			t.Errorf("IsValidBookingCode(%q) = false, want true", s)
		}
	}
	invalid := []string{"", "123456", "12345678", "abc", "1234567 8901234"}
	for _, s := range invalid {
		if IsValidBookingCode(s) {
			t.Errorf("IsValidBookingCode(%q) = true, want false", s)
		}
	}
}

func TestComparisonKeyBookingCode(t *testing.T) {
	cases := []struct{ in, want string }{
		{"1234567", "1234567"},
		{"1234567.0", "1234567"},
		{"1234567.00", "1234567"},
		{"123-4567", "1234567"},
		{" 123 4567 ", "1234567"},
	}
	for _, c := range cases {
		got := ComparisonKey(FieldBookingCode, c.in)
		if got != c.want {
			t.Errorf("ComparisonKey(booking_code, %q) = %q, want %q", c.in, got, c.want)
		}
		// applying the normalization twice must not change the result
		if again := ComparisonKey(FieldBookingCode, got); again != got {
			t.Errorf("ComparisonKey not idempotent: %q -> %q -> %q", c.in, got, again)
		}
	}
}

func TestDatesEqual(t *testing.T) {
	cases := []struct {
		a, b string
		want bool
	}{
		{"12/05/2025", "12-05-2025", true},
		{"12.05.2025", "12 05 2025", true},
		{"2025-05-12", "2025-05-12", true},
		{"12/05/2025", "12/05/2025 (Mon)", true}, // digit containment
		{"12/05/2025", "13-05-2025", false},
		{"", "12-05-2025", false},
		{"12/05/2025", "", false},
	}
	for _, c := range cases {
		if got := DatesEqual(c.a, c.b); got != c.want {
			t.Errorf("DatesEqual(%q, %q) = %v, want %v", c.a, c.b, got, c.want)
		}
	}
}
