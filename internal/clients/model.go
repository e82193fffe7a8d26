// Package clients exposes the coworking client roster: listing with filters
// and pagination proxied from upstream, plus the stat-card counters.
package clients

import "github.com/impalahub/impalahub/internal/aggregate"

// Client is a coworking client as upstream serialises it. Only CreatedAt
// participates in aggregation; the rest is carried through for the tables.
type Client struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email,omitempty"`
	Phone        string `json:"phone,omitempty"`
	BusinessType string `json:"businessType,omitempty"`
	Status       string `json:"status,omitempty"`
	Address      string `json:"address,omitempty"`
	CreatedAt    string `json:"createdAt,omitempty"`
}

// AggregateRecord projects the client onto the aggregation input shape.
func (c Client) AggregateRecord() aggregate.Record {
	return aggregate.Record{CreatedAt: c.CreatedAt}
}

// Records converts a client list for the aggregation pipeline.
func Records(list []Client) []aggregate.Record {
	records := make([]aggregate.Record, 0, len(list))
	for _, c := range list {
		records = append(records, c.AggregateRecord())
	}
	return records
}
