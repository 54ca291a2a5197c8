package attendance

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var numberPattern = regexp.MustCompile(`[-+]?\d*\.\d+|\d+`)

// ParseNumber extracts the first number embedded in a cell such as "1.5天"
// and returns zero when there is none.
func ParseNumber(s string) decimal.Decimal {
	match := numberPattern.FindString(strings.TrimSpace(s))
	if match == "" {
		return decimal.Zero
	}
	sign := ""
	if match[0] == '-' || match[0] == '+' {
		sign, match = match[:1], match[1:]
	}
	if strings.HasPrefix(match, ".") {
		match = "0" + match
	}
	d, err := decimal.NewFromString(sign + match)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// ParseOptionalNumber is ParseNumber that also reports whether a number was found
func ParseOptionalNumber(s string) (decimal.Decimal, bool) {
	if !numberPattern.MatchString(s) {
		return decimal.Zero, false
	}
	return ParseNumber(s), true
}

// NormalizeName strips every space so names match across sheets
func NormalizeName(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, " ", ""))
}

// DayKey is the day-of-month key used in Employee.Days
func DayKey(d time.Time) string {
	return strconv.Itoa(d.Day())
}

// NormalizeDayKey turns header text like "5", "05" or "5.0" into "5".
// ok is false for headers that are not a day of month.
func NormalizeDayKey(header string) (string, bool) {
	h := strings.TrimSpace(header)
	if h == "" {
		return "", false
	}
	f, err := strconv.ParseFloat(h, 64)
	if err != nil || f != float64(int(f)) {
		return "", false
	}
	n := int(f)
	if n < 1 || n > 31 {
		return "", false
	}
	return strconv.Itoa(n), true
}

// lookupDay finds the status for d, tolerating zero-padded keys
func lookupDay(days map[string]DayStatus, d time.Time) (DayStatus, bool) {
	if s, ok := days[DayKey(d)]; ok {
		return s, true
	}
	if s, ok := days[d.Format("02")]; ok {
		return s, true
	}
	return DayStatus{}, false
}
