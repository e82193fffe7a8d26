package aggregate

import (
	"encoding/json"
	"testing"
)

func TestExtractRecordsPassthrough(t *testing.T) {
	list := []Record{{CreatedAt: "2024-01-01"}}
	got := ExtractRecords(list)
	if len(got) != 1 || got[0].CreatedAt != "2024-01-01" {
		t.Fatalf("passthrough failed: %+v", got)
	}
}

func TestExtractRecordsJSONShapes(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want int
	}{
		{"bare list", `[{"createdAt":"2024-01-01"},{"createdAt":"2024-02-01"}]`, 2},
		{"data envelope", `{"data":[{"createdAt":"2024-01-01"}]}`, 1},
		{"records envelope", `{"records":[{"createdAt":"2024-01-01"}]}`, 1},
		{"items envelope", `{"items":[{"createdAt":"2024-01-01"}]}`, 1},
		{"results envelope", `{"results":[]}`, 0},
		{"rows envelope", `{"rows":[{"createdAt":"2024-01-01"}]}`, 1},
		{"unknown field", `{"payload":[{"createdAt":"2024-01-01"}]}`, 0},
		{"scalar", `42`, 0},
		{"empty", ``, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ExtractRecords(json.RawMessage(tc.raw))
			if len(got) != tc.want {
				t.Fatalf("got %d records, want %d", len(got), tc.want)
			}
		})
	}
}

func TestExtractRecordsDecodedEnvelope(t *testing.T) {
	envelope := map[string]any{
		"data": []any{
			map[string]any{"createdAt": "2024-05-01", "price": "Rp 1.000.000"},
			map[string]any{"created_at": "2024-06-01"},
			"not an object",
		},
	}
	got := ExtractRecords(envelope)
	if len(got) != 2 {
		t.Fatalf("got %d records, want 2", len(got))
	}
	if got[0].CreatedAt != "2024-05-01" || ParseMoney(got[0].Price) != 1000000 {
		t.Fatalf("unexpected first record %+v", got[0])
	}
	if got[1].CreatedAt != "2024-06-01" {
		t.Fatalf("snake_case createdAt not accepted: %+v", got[1])
	}
}

func TestExtractRecordsNoListAnywhere(t *testing.T) {
	if got := ExtractRecords(map[string]any{"total": 10}); got != nil {
		t.Fatalf("expected nil for listless envelope, got %+v", got)
	}
	if got := ExtractRecords(3.14); got != nil {
		t.Fatalf("expected nil for scalar input, got %+v", got)
	}
}
