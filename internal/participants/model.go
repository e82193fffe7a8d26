// Package participants proxies the Impala participant registry.
package participants

import "github.com/impalahub/impalahub/internal/aggregate"

// Participant is an Impala program beneficiary.
type Participant struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Gender      string `json:"gender,omitempty"`
	Institution string `json:"institution,omitempty"`
	Batch       string `json:"batch,omitempty"`
	Status      string `json:"status,omitempty"`
	CreatedAt   string `json:"createdAt,omitempty"`
}

// Records converts a participant list for the aggregation pipeline.
func Records(list []Participant) []aggregate.Record {
	records := make([]aggregate.Record, 0, len(list))
	for _, p := range list {
		records = append(records, aggregate.Record{CreatedAt: p.CreatedAt})
	}
	return records
}
