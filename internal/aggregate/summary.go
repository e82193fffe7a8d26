package aggregate

// Summary aggregates one metric over a full year for the dashboard cards and
// charts. Total is the externally supplied absolute record count across all
// time and filters; it is independent of the year filter.
type Summary struct {
	Metric               Metric        `json:"metric"`
	Year                 string        `json:"year"`
	Total                int           `json:"total"`
	ThisYearTotal        float64       `json:"thisYearTotal"`
	CumulativeTotal      float64       `json:"cumulativeTotal"`
	Average              float64       `json:"average"`
	Growth               string        `json:"growth"`
	MonthlyAverageGrowth string        `json:"monthlyAverageGrowth"`
	QuarterlyData        QuarterSet    `json:"quarterlyData"`
	MonthlyData          []MonthBucket `json:"monthlyData"`
}

// BuildSummary assembles the year summary from twelve monthly buckets. A nil
// or short bucket list yields the all-zero summary with four zeroed quarter
// placeholders instead of failing. Average is only defined for the revenue
// metric (total revenue over months with nonzero revenue). Year-over-year
// growth compares January's new-value against December's and stays "0%"
// unless December exceeds a nonzero January.
func BuildSummary(months []MonthBucket, metric Metric, absoluteTotal int) Summary {
	summary := Summary{
		Metric:               metric,
		Total:                absoluteTotal,
		Growth:               "0%",
		MonthlyAverageGrowth: formatSigned(0),
		QuarterlyData:        zeroQuarterSet(),
		MonthlyData:          emptyMonths(),
	}
	if len(months) != monthsPerYear {
		return summary
	}

	var growthSum float64
	for _, month := range months {
		summary.ThisYearTotal += month.newValue(metric)
		growthSum += month.Growth
	}
	last := months[monthsPerYear-1]
	switch metric {
	case MetricClients:
		summary.CumulativeTotal = float64(last.TotalClients)
	case MetricPrograms:
		summary.CumulativeTotal = float64(last.TotalPrograms)
	case MetricParticipants:
		summary.CumulativeTotal = float64(last.TotalParticipants)
	case MetricRevenue:
		summary.CumulativeTotal = float64(last.TotalRevenue)
	}

	if metric == MetricRevenue {
		monthsWithRevenue := 0
		for _, month := range months {
			if month.Revenue > 0 {
				monthsWithRevenue++
			}
		}
		if monthsWithRevenue > 0 {
			summary.Average = float64(last.TotalRevenue) / float64(monthsWithRevenue)
		}
	}

	first := months[0].newValue(metric)
	final := last.newValue(metric)
	if first > 0 && final > first {
		summary.Growth = formatGrowth((final - first) / first * 100)
	}

	summary.MonthlyAverageGrowth = formatSigned(growthSum / monthsPerYear)
	summary.QuarterlyData = BuildQuarterlyBuckets(months, metric)
	summary.MonthlyData = months
	return summary
}

// Aggregate is the engine entry point: unwrap the raw input, bucket it by
// month, and assemble the quarterly roll-up and year summary. It is pure and
// deterministic; the only error is an unknown metric literal.
func Aggregate(raw any, year string, metric Metric, absoluteTotal int) (Summary, error) {
	records := ExtractRecords(raw)
	months, err := BuildMonthlyBuckets(records, year, metric)
	if err != nil {
		return Summary{}, err
	}
	summary := BuildSummary(months, metric, absoluteTotal)
	summary.Year = year
	return summary, nil
}

// formatSigned renders a rate with a mandatory sign, "+0%" included.
func formatSigned(rate float64) string {
	label := formatGrowth(rate)
	if label[0] != '+' && label[0] != '-' {
		return "+" + label
	}
	return label
}
