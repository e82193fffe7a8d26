package aggregate

import "testing"

func TestBuildMonthlyBucketsEmptyInput(t *testing.T) {
	months, err := BuildMonthlyBuckets(nil, "2024", MetricClients)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(months) != 12 {
		t.Fatalf("expected 12 buckets, got %d", len(months))
	}
	for i, month := range months {
		if month.NewClients != 0 || month.TotalClients != 0 || month.Growth != 0 {
			t.Fatalf("bucket %d not zero: %+v", i, month)
		}
		if month.Quarter != quarterOf(i) {
			t.Fatalf("bucket %d quarter %s, want %s", i, month.Quarter, quarterOf(i))
		}
	}
}

func TestBuildMonthlyBucketsSingleClient(t *testing.T) {
	months, err := BuildMonthlyBuckets([]Record{{CreatedAt: "2024-03-15"}}, "2024", MetricClients)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	mar := months[2]
	if mar.Month != "Mar" || mar.NewClients != 1 {
		t.Fatalf("expected one new client in Mar, got %+v", mar)
	}
	if mar.GrowthLabel != "+100%" {
		t.Fatalf("expected +100%% sentinel, got %s", mar.GrowthLabel)
	}
	// Cumulative total carries forward through December.
	for i := 3; i < 12; i++ {
		if months[i].TotalClients != 1 {
			t.Fatalf("month %d cumulative %d, want 1", i, months[i].TotalClients)
		}
		if months[i].NewClients != 0 {
			t.Fatalf("month %d should have no new clients", i)
		}
	}
	// April drops back to zero activity after March's single record.
	if months[3].Growth != -100 {
		t.Fatalf("expected -100 growth in Apr, got %v", months[3].Growth)
	}
}

func TestBuildMonthlyBucketsYearExclusion(t *testing.T) {
	records := []Record{
		{CreatedAt: "2023-05-01"},
		{CreatedAt: "not a date"},
		{CreatedAt: ""},
	}
	months, err := BuildMonthlyBuckets(records, "2024", MetricClients)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, month := range months {
		if month.NewClients != 0 || month.TotalClients != 0 {
			t.Fatalf("month %d should be empty, got %+v", i, month)
		}
	}
}

func TestBuildMonthlyBucketsPriceWithoutDate(t *testing.T) {
	// A price without a valid date earns no partial credit.
	records := []Record{{CreatedAt: "kapan-kapan", Price: "Rp 5.000.000"}}
	months, err := BuildMonthlyBuckets(records, "2024", MetricRevenue)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, month := range months {
		if month.Revenue != 0 || month.ProgramsCount != 0 {
			t.Fatalf("month %d should carry no revenue, got %+v", i, month)
		}
	}
}

func TestBuildMonthlyBucketsProgramsRouting(t *testing.T) {
	records := []Record{
		{CreatedAt: "2024-06-01", Price: "Rp 1.000.000"},
		{CreatedAt: "2024-07-01", Price: float64(2000000)},
		{CreatedAt: "2024-07-15"}, // no price: counted, no revenue attribution
	}
	months, err := BuildMonthlyBuckets(records, "2024", MetricPrograms)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	jun, jul := months[5], months[6]
	if jun.NewPrograms != 1 || jun.Revenue != 1000000 || jun.ProgramsCount != 1 {
		t.Fatalf("unexpected June bucket %+v", jun)
	}
	if jul.NewPrograms != 2 || jul.Revenue != 2000000 || jul.ProgramsCount != 1 {
		t.Fatalf("unexpected July bucket %+v", jul)
	}
	if months[11].TotalRevenue != 3000000 {
		t.Fatalf("expected cumulative revenue 3000000, got %d", months[11].TotalRevenue)
	}
}

func TestBuildMonthlyBucketsMonotonicCumulative(t *testing.T) {
	records := []Record{
		{CreatedAt: "2024-01-10"},
		{CreatedAt: "2024-01-20"},
		{CreatedAt: "2024-04-05"},
		{CreatedAt: "2024-09-01"},
		{CreatedAt: "2024-12-31"},
	}
	months, err := BuildMonthlyBuckets(records, "2024", MetricParticipants)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 1; i < 12; i++ {
		if months[i].TotalParticipants < months[i-1].TotalParticipants {
			t.Fatalf("cumulative regressed at month %d", i)
		}
	}
	if months[11].TotalParticipants != len(records) {
		t.Fatalf("cumulative %d, want %d", months[11].TotalParticipants, len(records))
	}
}

func TestBuildMonthlyBucketsUnknownMetric(t *testing.T) {
	if _, err := BuildMonthlyBuckets(nil, "2024", Metric("staff")); err == nil {
		t.Fatalf("expected unknown metric error")
	}
}

func TestBuildMonthlyBucketsGrowthBetweenMonths(t *testing.T) {
	records := []Record{
		{CreatedAt: "2024-01-05"},
		{CreatedAt: "2024-02-05"},
		{CreatedAt: "2024-02-06"},
		{CreatedAt: "2024-02-07"},
	}
	months, err := BuildMonthlyBuckets(records, "2024", MetricClients)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 1 -> 3 is +200% against the previous month's new-value, not cumulative.
	if months[1].Growth != 200 {
		t.Fatalf("expected 200 growth in Feb, got %v", months[1].Growth)
	}
	if months[1].GrowthLabel != "+200%" {
		t.Fatalf("unexpected label %s", months[1].GrowthLabel)
	}
}
