package dashboard

import "testing"

func TestFormatRupiah(t *testing.T) {
	cases := []struct {
		amount int64
		want   string
	}{
		{0, "Rp 0"},
		{950, "Rp 950"},
		{1500000, "Rp 1.500.000"},
		{2147483647, "Rp 2.147.483.647"},
	}
	for _, tc := range cases {
		if got := FormatRupiah(tc.amount); got != tc.want {
			t.Fatalf("FormatRupiah(%d) = %q, want %q", tc.amount, got, tc.want)
		}
	}
}
