package attendance

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

var isoDatePattern = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)

// Period is an inclusive range of calendar days
type Period struct {
	Start time.Time
	End   time.Time
}

// NewPeriod parses two ISO dates into a Period
func NewPeriod(start, end string) (Period, error) {
	s, err := time.Parse(dateLayout, strings.TrimSpace(start))
	if err != nil {
		return Period{}, fmt.Errorf("%w: start %q: %v", ErrInvalidPeriod, start, err)
	}
	e, err := time.Parse(dateLayout, strings.TrimSpace(end))
	if err != nil {
		return Period{}, fmt.Errorf("%w: end %q: %v", ErrInvalidPeriod, end, err)
	}
	if e.Before(s) {
		return Period{}, fmt.Errorf("%w: end %s before start %s", ErrInvalidPeriod, end, start)
	}
	return Period{Start: s, End: e}, nil
}

// PeriodFromText takes the first two ISO dates found in text, as in the
// export's title cell "统计日期：2025-11-26 至 2025-12-25".
func PeriodFromText(text string) (Period, bool) {
	found := isoDatePattern.FindAllString(text, -1)
	if len(found) < 2 {
		return Period{}, false
	}
	p, err := NewPeriod(found[0], found[1])
	if err != nil {
		return Period{}, false
	}
	return p, true
}

// Dates returns every day of the period in order
func (p Period) Dates() []time.Time {
	var dates []time.Time
	for d := p.Start; !d.After(p.End); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d)
	}
	return dates
}

// MonthLabel is the two-digit month of the start date, used in output names
func (p Period) MonthLabel() string {
	return p.Start.Format("01")
}

func (p Period) String() string {
	return p.Start.Format(dateLayout) + " ~ " + p.End.Format(dateLayout)
}

// IsWeekend reports Saturday or Sunday
func IsWeekend(d time.Time) bool {
	wd := d.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// OnDate reports whether a raw punch date refers to d. Full dates are
// compared exactly; yearless dates fall back to an MM-DD suffix match.
func OnDate(raw string, d time.Time) bool {
	if parsed, ok := parseDate(raw); ok {
		return parsed.Equal(d)
	}
	head := strings.TrimSpace(raw)
	if i := strings.IndexAny(head, " \t"); i >= 0 {
		head = head[:i]
	}
	head = strings.ReplaceAll(head, "/", "-")
	return head != "" && strings.HasSuffix(head, d.Format("01-02"))
}

func parseDate(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if i := strings.IndexAny(s, " \tT"); i >= 0 {
		s = s[:i]
	}
	for _, layout := range []string{dateLayout, "2006/01/02", "2006/1/2", "2006-1-2", "06-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
