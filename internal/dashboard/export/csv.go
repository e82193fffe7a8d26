// Package export serialises dashboard summaries for download. Only textual
// CSV is produced here; binary spreadsheet formats are out of scope.
package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/impalahub/impalahub/internal/aggregate"
	"github.com/impalahub/impalahub/internal/dashboard"
)

// WriteMonthlyCSV emits the twelve monthly buckets of a summary.
func WriteMonthlyCSV(w io.Writer, summary aggregate.Summary) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	header := []string{"Month", "Quarter", "New Clients", "New Programs", "New Participants", "Revenue", "Cumulative", "Growth"}
	if err := writer.Write(header); err != nil {
		return err
	}
	for _, month := range summary.MonthlyData {
		record := []string{
			month.Month,
			month.Quarter,
			strconv.Itoa(month.NewClients),
			strconv.Itoa(month.NewPrograms),
			strconv.Itoa(month.NewParticipants),
			dashboard.FormatRupiah(month.Revenue),
			cumulativeFor(month, summary.Metric),
			month.GrowthLabel,
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteQuarterlyCSV emits the quarterly roll-up of a summary.
func WriteQuarterlyCSV(w io.Writer, summary aggregate.Summary) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write([]string{"Quarter", "Total", "Average", "Growth"}); err != nil {
		return err
	}
	quarters := []aggregate.QuarterBucket{
		summary.QuarterlyData.Q1,
		summary.QuarterlyData.Q2,
		summary.QuarterlyData.Q3,
		summary.QuarterlyData.Q4,
	}
	for _, quarter := range quarters {
		record := []string{
			quarter.Quarter,
			formatFloat(quarter.Total),
			formatFloat(quarter.Average),
			quarter.GrowthLabel,
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteSummaryCSV prints the year totals as metric/value rows.
func WriteSummaryCSV(w io.Writer, summary aggregate.Summary) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write([]string{"Metric", "Value"}); err != nil {
		return err
	}
	records := [][]string{
		{"Year", summary.Year},
		{"Series", string(summary.Metric)},
		{"Absolute Total", strconv.Itoa(summary.Total)},
		{"This Year Total", formatFloat(summary.ThisYearTotal)},
		{"Cumulative Total", formatFloat(summary.CumulativeTotal)},
		{"Growth", summary.Growth},
		{"Monthly Average Growth", summary.MonthlyAverageGrowth},
	}
	if summary.Metric == aggregate.MetricRevenue {
		records = append(records, []string{"Average Monthly Revenue", dashboard.FormatRupiah(int64(summary.Average))})
	}
	for _, record := range records {
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func cumulativeFor(month aggregate.MonthBucket, metric aggregate.Metric) string {
	switch metric {
	case aggregate.MetricPrograms:
		return strconv.Itoa(month.TotalPrograms)
	case aggregate.MetricParticipants:
		return strconv.Itoa(month.TotalParticipants)
	case aggregate.MetricRevenue:
		return dashboard.FormatRupiah(month.TotalRevenue)
	default:
		return strconv.Itoa(month.TotalClients)
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
