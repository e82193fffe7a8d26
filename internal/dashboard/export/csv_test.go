package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"github.com/impalahub/impalahub/internal/aggregate"
)

func revenueSummary(t *testing.T) aggregate.Summary {
	t.Helper()
	payload, err := json.Marshal([]map[string]any{
		{"createdAt": "2024-01-10", "price": 500000},
		{"createdAt": "2024-02-05", "price": 250000},
		{"createdAt": "2024-02-20", "price": "Rp 250.000"},
	})
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	summary, err := aggregate.Aggregate(payload, "2024", aggregate.MetricRevenue, 3)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	return summary
}

func TestWriteMonthlyCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteMonthlyCSV(&buf, revenueSummary(t)); err != nil {
		t.Fatalf("WriteMonthlyCSV: %v", err)
	}
	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if len(rows) != 13 {
		t.Fatalf("got %d rows, want header plus 12 months", len(rows))
	}
	if rows[0][0] != "Month" || rows[0][7] != "Growth" {
		t.Fatalf("unexpected header: %v", rows[0])
	}
	// February carries the cumulative revenue of Jan plus Feb.
	if rows[2][6] != "Rp 1.000.000" {
		t.Fatalf("feb cumulative = %q", rows[2][6])
	}
	if rows[2][7] != "0%" {
		t.Fatalf("feb growth = %q", rows[2][7])
	}
}

func TestWriteQuarterlyCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteQuarterlyCSV(&buf, revenueSummary(t)); err != nil {
		t.Fatalf("WriteQuarterlyCSV: %v", err)
	}
	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if len(rows) != 5 {
		t.Fatalf("got %d rows, want header plus 4 quarters", len(rows))
	}
	if rows[1][0] != "Q1" || rows[4][0] != "Q4" {
		t.Fatalf("quarter labels = %v / %v", rows[1], rows[4])
	}
	if rows[1][1] != "1000000" {
		t.Fatalf("q1 total = %q", rows[1][1])
	}
}

func TestWriteSummaryCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSummaryCSV(&buf, revenueSummary(t)); err != nil {
		t.Fatalf("WriteSummaryCSV: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Metric,Value", "Year,2024", "Series,revenue", "Average Monthly Revenue"} {
		if !strings.Contains(out, want) {
			t.Fatalf("summary csv missing %q:\n%s", want, out)
		}
	}
}
