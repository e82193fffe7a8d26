// Package programs proxies the revenue-bearing program catalogue.
package programs

import "github.com/impalahub/impalahub/internal/aggregate"

// Program is a community program as upstream serialises it. Price arrives as
// a number, a numeric string or a currency string like "Rp 1.000.000"
// depending on the importer that created the row, so it stays loosely typed
// until aggregation.
type Program struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Category  string `json:"category,omitempty"`
	Status    string `json:"status,omitempty"`
	Price     any    `json:"price,omitempty"`
	StartDate string `json:"startDate,omitempty"`
	CreatedAt string `json:"createdAt,omitempty"`
}

// PriceAmount normalises the price field to Rupiah.
func (p Program) PriceAmount() int64 {
	return aggregate.ParseMoney(p.Price)
}

// Records converts a program list for the aggregation pipeline, price
// included.
func Records(list []Program) []aggregate.Record {
	records := make([]aggregate.Record, 0, len(list))
	for _, p := range list {
		records = append(records, aggregate.Record{CreatedAt: p.CreatedAt, Price: p.Price})
	}
	return records
}
