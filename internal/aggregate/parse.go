package aggregate

import (
	"strconv"
	"strings"
	"time"
)

// timestampLayouts lists the accepted createdAt formats, most specific first.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTimestamp attempts to parse a record timestamp. It reports ok=false on
// empty or unparseable input; callers exclude such records instead of failing.
func ParseTimestamp(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseMoney normalises a price field to an integer amount of Rupiah.
// Numeric input passes through unchanged (negatives included); string input is
// reduced to its digits and parsed base-10, so "Rp 1.000.000", "1000000" and
// 1000000 all yield the same value. Anything else is 0.
func ParseMoney(value any) int64 {
	switch v := value.(type) {
	case nil:
		return 0
	case int:
		return int64(v)
	case int32:
		return int64(v)
	case int64:
		return v
	case float32:
		return int64(v)
	case float64:
		return int64(v)
	case string:
		return parseMoneyString(v)
	default:
		return 0
	}
}

func parseMoneyString(s string) int64 {
	var digits strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	if digits.Len() == 0 {
		return 0
	}
	n, err := strconv.ParseInt(digits.String(), 10, 64)
	if err != nil {
		return 0
	}
	return n
}
