package aggregate

const monthsPerQuarter = 3

// QuarterBucket rolls three MonthBuckets into one fiscal quarter.
type QuarterBucket struct {
	Quarter     string        `json:"quarter"`
	Total       float64       `json:"total"`
	Average     float64       `json:"average"`
	Growth      float64       `json:"growth"`
	GrowthLabel string        `json:"growthLabel"`
	Months      []string      `json:"months"`
	MonthData   []MonthBucket `json:"monthData"`
}

// QuarterSet holds the four quarters of one aggregation year.
type QuarterSet struct {
	Q1 QuarterBucket `json:"q1"`
	Q2 QuarterBucket `json:"q2"`
	Q3 QuarterBucket `json:"q3"`
	Q4 QuarterBucket `json:"q4"`
}

// BuildQuarterlyBuckets folds the already-computed monthly buckets into four
// quarters. Totals sum the metric's new-value (not the cumulative fields),
// the average is total over three months uniformly, and growth compares
// against the previous quarter's total with the same zero-baseline sentinel
// as monthly growth; q1 grows from an implicit zero. No date parsing happens
// here.
func BuildQuarterlyBuckets(months []MonthBucket, metric Metric) QuarterSet {
	if len(months) != monthsPerYear {
		months = emptyMonths()
	}
	quarters := make([]QuarterBucket, 4)
	previous := 0.0
	for q := 0; q < 4; q++ {
		slice := months[q*monthsPerQuarter : (q+1)*monthsPerQuarter]
		bucket := QuarterBucket{
			Quarter:   quarterOf(q * monthsPerQuarter),
			Months:    make([]string, 0, monthsPerQuarter),
			MonthData: make([]MonthBucket, monthsPerQuarter),
		}
		copy(bucket.MonthData, slice)
		for _, month := range slice {
			bucket.Total += month.newValue(metric)
			bucket.Months = append(bucket.Months, month.Month)
		}
		bucket.Average = bucket.Total / monthsPerQuarter
		bucket.Growth = growthRate(previous, bucket.Total)
		bucket.GrowthLabel = formatGrowth(bucket.Growth)
		previous = bucket.Total
		quarters[q] = bucket
	}
	return QuarterSet{Q1: quarters[0], Q2: quarters[1], Q3: quarters[2], Q4: quarters[3]}
}

func zeroQuarterSet() QuarterSet {
	return BuildQuarterlyBuckets(emptyMonths(), MetricClients)
}
