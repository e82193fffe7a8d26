package aggregate

import (
	"testing"
	"time"
)

func TestParseMoney(t *testing.T) {
	cases := []struct {
		name  string
		input any
		want  int64
	}{
		{"formatted rupiah", "Rp 2.500.000", 2500000},
		{"plain digit string", "1000000", 1000000},
		{"empty string", "", 0},
		{"nil", nil, 0},
		{"garbage string", "gratis", 0},
		{"number passthrough", float64(750000), 750000},
		{"int passthrough", 1500, 1500},
		{"bool is not money", true, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ParseMoney(tc.input); got != tc.want {
				t.Fatalf("ParseMoney(%v) = %d, want %d", tc.input, got, tc.want)
			}
		})
	}
}

// Negative numeric input passes through unchanged; only string-derived values
// are non-negative by construction. The asymmetry is deliberate.
func TestParseMoneyNegativeAsymmetry(t *testing.T) {
	if got := ParseMoney(float64(-5)); got != -5 {
		t.Fatalf("numeric -5 should pass through, got %d", got)
	}
	if got := ParseMoney("-5"); got != 5 {
		t.Fatalf("string \"-5\" keeps digits only, got %d", got)
	}
}

func TestParseTimestamp(t *testing.T) {
	ts, ok := ParseTimestamp("2024-03-15")
	if !ok {
		t.Fatalf("expected date-only layout to parse")
	}
	if ts.Year() != 2024 || ts.Month() != time.March || ts.Day() != 15 {
		t.Fatalf("unexpected parse result %v", ts)
	}

	if _, ok := ParseTimestamp("2024-06-01T10:30:00Z"); !ok {
		t.Fatalf("expected RFC3339 to parse")
	}
	if _, ok := ParseTimestamp("2024-06-01 10:30:00"); !ok {
		t.Fatalf("expected space-separated layout to parse")
	}
	if _, ok := ParseTimestamp(""); ok {
		t.Fatalf("empty input must not parse")
	}
	if _, ok := ParseTimestamp("bukan tanggal"); ok {
		t.Fatalf("garbage input must not parse")
	}
}
