package aggregate

import (
	"math"
	"strconv"
	"time"
)

const monthsPerYear = 12

// MonthBucket is one of twelve aggregation slots for a single requested year.
// The Total* fields carry running cumulative values and are monotonically
// non-decreasing across increasing MonthIndex.
type MonthBucket struct {
	Month      string `json:"month"`
	MonthIndex int    `json:"monthIndex"`
	Quarter    string `json:"quarter"`

	NewClients      int   `json:"newClients"`
	NewPrograms     int   `json:"newPrograms"`
	NewParticipants int   `json:"newParticipants"`
	Revenue         int64 `json:"revenue"`
	ProgramsCount   int   `json:"programsCount"`

	TotalClients      int   `json:"totalClients"`
	TotalPrograms     int   `json:"totalPrograms"`
	TotalParticipants int   `json:"totalParticipants"`
	TotalRevenue      int64 `json:"totalRevenue"`

	Growth      float64 `json:"growth"`
	GrowthLabel string  `json:"growthLabel"`
}

// newValue returns the month's new-count for the active metric.
func (b MonthBucket) newValue(metric Metric) float64 {
	switch metric {
	case MetricClients:
		return float64(b.NewClients)
	case MetricPrograms:
		return float64(b.NewPrograms)
	case MetricParticipants:
		return float64(b.NewParticipants)
	case MetricRevenue:
		return float64(b.Revenue)
	}
	return 0
}

// quarterOf maps a zero-based month index onto its fixed quarter tag.
func quarterOf(monthIndex int) string {
	switch {
	case monthIndex < 3:
		return "q1"
	case monthIndex < 6:
		return "q2"
	case monthIndex < 9:
		return "q3"
	default:
		return "q4"
	}
}

func emptyMonths() []MonthBucket {
	months := make([]MonthBucket, monthsPerYear)
	for i := range months {
		months[i] = MonthBucket{
			Month:       time.Month(i + 1).String()[:3],
			MonthIndex:  i,
			Quarter:     quarterOf(i),
			GrowthLabel: formatGrowth(0),
		}
	}
	return months
}

// BuildMonthlyBuckets distributes records into twelve calendar buckets for the
// requested year. Records whose createdAt is missing, unparseable or outside
// the year are excluded rather than treated as errors; a record with a price
// but no valid date gets no credit at all. The only failure mode is an
// unknown metric.
func BuildMonthlyBuckets(records []Record, year string, metric Metric) ([]MonthBucket, error) {
	if !metric.Valid() {
		return nil, ErrUnknownMetric{Metric: metric}
	}
	months := emptyMonths()

	targetYear, err := strconv.Atoi(year)
	if err != nil || len(year) != 4 {
		// An unusable year filter matches nothing; charts still render zeros.
		targetYear = -1
	}

	for _, rec := range records {
		ts, ok := ParseTimestamp(rec.CreatedAt)
		if !ok || ts.Year() != targetYear {
			continue
		}
		bucket := &months[int(ts.Month())-1]
		switch metric {
		case MetricClients:
			bucket.NewClients++
		case MetricParticipants:
			bucket.NewParticipants++
		case MetricPrograms:
			bucket.NewPrograms++
			if hasPrice(rec.Price) {
				bucket.Revenue += ParseMoney(rec.Price)
				bucket.ProgramsCount++
			}
		case MetricRevenue:
			bucket.Revenue += ParseMoney(rec.Price)
			bucket.ProgramsCount++
		}
	}

	accumulate(months, metric)
	return months, nil
}

// accumulate performs the strictly sequential second pass: running cumulative
// totals plus month-over-month growth against the previous month's new-value.
func accumulate(months []MonthBucket, metric Metric) {
	var clients, programs, participants int
	var revenue int64
	previous := 0.0
	for i := range months {
		clients += months[i].NewClients
		programs += months[i].NewPrograms
		participants += months[i].NewParticipants
		revenue += months[i].Revenue
		months[i].TotalClients = clients
		months[i].TotalPrograms = programs
		months[i].TotalParticipants = participants
		months[i].TotalRevenue = revenue

		current := months[i].newValue(metric)
		months[i].Growth = growthRate(previous, current)
		months[i].GrowthLabel = formatGrowth(months[i].Growth)
		previous = current
	}
}

// hasPrice reports whether the record carries a usable price. Absent, empty
// and zero values do not count as revenue attribution.
func hasPrice(price any) bool {
	switch v := price.(type) {
	case nil:
		return false
	case string:
		return v != ""
	default:
		return ParseMoney(price) != 0
	}
}

// growthRate computes percent growth versus the previous value. Growth from a
// zero baseline with positive current value is the fixed +100 sentinel the
// charts depend on; zero to zero is flat.
func growthRate(previous, current float64) float64 {
	if previous == 0 {
		if current > 0 {
			return 100
		}
		return 0
	}
	return (current - previous) / previous * 100
}

// formatGrowth renders a growth rate to one decimal place with an explicit
// sign for positive values, e.g. "+100%", "0%", "-12.5%".
func formatGrowth(rate float64) string {
	rounded := math.Round(rate*10) / 10
	if rounded == 0 {
		return "0%"
	}
	label := strconv.FormatFloat(rounded, 'f', -1, 64) + "%"
	if rounded > 0 {
		return "+" + label
	}
	return label
}
