package aggregate

import "encoding/json"

// Record is the flat input shape the bucketing functions consume. Price is
// kept loosely typed because upstream serialises it as a number, a numeric
// string or a currency-formatted string depending on the entity.
type Record struct {
	CreatedAt string `json:"createdAt"`
	Price     any    `json:"price,omitempty"`
}

// envelopeFields is the finite set of list-bearing field names accepted when
// the raw input arrives wrapped in an object instead of a bare array.
var envelopeFields = []string{"data", "records", "items", "results", "rows"}

// ExtractRecords unwraps raw aggregation input into a flat record list. The
// accepted shapes, tried in order: a []Record passthrough, raw JSON bytes, a
// bare list, or an envelope object carrying one of the known list fields.
// Unrecognised input yields an empty list, never an error; downstream the
// empty list produces the all-zero summary.
func ExtractRecords(raw any) []Record {
	switch v := raw.(type) {
	case nil:
		return nil
	case []Record:
		return v
	case json.RawMessage:
		return extractJSON([]byte(v))
	case []byte:
		return extractJSON(v)
	case []any:
		return recordsFromList(v)
	case map[string]any:
		return recordsFromEnvelope(v)
	default:
		return nil
	}
}

func extractJSON(data []byte) []Record {
	if len(data) == 0 {
		return nil
	}
	var list []Record
	if err := json.Unmarshal(data, &list); err == nil {
		return list
	}
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil
	}
	for _, field := range envelopeFields {
		payload, ok := envelope[field]
		if !ok {
			continue
		}
		var nested []Record
		if err := json.Unmarshal(payload, &nested); err == nil {
			return nested
		}
	}
	return nil
}

func recordsFromEnvelope(envelope map[string]any) []Record {
	for _, field := range envelopeFields {
		if list, ok := envelope[field].([]any); ok {
			return recordsFromList(list)
		}
	}
	return nil
}

func recordsFromList(list []any) []Record {
	records := make([]Record, 0, len(list))
	for _, item := range list {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		rec := Record{Price: obj["price"]}
		if created, ok := obj["createdAt"].(string); ok {
			rec.CreatedAt = created
		} else if created, ok := obj["created_at"].(string); ok {
			rec.CreatedAt = created
		}
		records = append(records, rec)
	}
	return records
}
