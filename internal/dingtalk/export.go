package dingtalk

import (
	"fmt"
	"strings"

	"github.com/garyjia/attendance-sheet/internal/attendance"
)

// SkipReason explains why a roster name has no Employee in the export
type SkipReason string

const (
	SkipNotInSource  SkipReason = "NOT_IN_SOURCE"
	SkipNoSummaryRow SkipReason = "NO_SUMMARY_ROW"
	SkipNoDailyRow   SkipReason = "NO_DAILY_ROW"
)

// row is one data row keyed by normalized column title
type row struct {
	header header
	cells  []string
}

func (r row) get(title string) string {
	return r.header.get(r.cells, title)
}

// Export is the parsed content of one DingTalk export, indexed by
// normalized employee name
type Export struct {
	Period         attendance.Period
	PeriodDetected bool

	stats      map[string]row
	daily      map[string]row
	punches    map[string][]attendance.PunchRecord
	order      []string
	punchCount int
}

func newExport() *Export {
	return &Export{
		stats:   make(map[string]row),
		daily:   make(map[string]row),
		punches: make(map[string][]attendance.PunchRecord),
	}
}

// Names returns every employee named in the summary sheet, in sheet order
func (e *Export) Names() []string {
	out := make([]string, len(e.order))
	copy(out, e.order)
	return out
}

// Employee assembles the engine input for a roster name. The lookup uses the
// normalized name; the first matching row of each table wins.
func (e *Export) Employee(name string) (attendance.Employee, SkipReason, bool) {
	key := attendance.NormalizeName(name)
	stats, hasStats := e.stats[key]
	daily, hasDaily := e.daily[key]

	switch {
	case !hasStats && !hasDaily:
		return attendance.Employee{}, SkipNotInSource, false
	case !hasStats:
		return attendance.Employee{}, SkipNoSummaryRow, false
	case !hasDaily:
		return attendance.Employee{}, SkipNoDailyRow, false
	}

	emp := attendance.Employee{
		Name:       key,
		Department: stats.get(colDepartment),
		Days:       make(map[string]attendance.DayStatus),
		Punches:    e.punches[key],
		Overtime: attendance.Overtime{
			Workday: attendance.ParseNumber(daily.get(colWorkdayOvertime)),
			RestDay: attendance.ParseNumber(daily.get(colRestDayOvertime)),
			Holiday: attendance.ParseNumber(daily.get(colHolidayOvertime)),
		},
		CompLeave:        attendance.ParseNumber(daily.get(colCompLeave)),
		PersonalLeave:    attendance.ParseNumber(daily.get(colPersonalLeave)),
		SickLeave:        attendance.ParseNumber(daily.get(colSickLeave)),
		TardyCount:       attendance.ParseNumber(stats.get(colTardyCount)),
		TardyAbsentCount: attendance.ParseNumber(stats.get(colTardyAbsentCount)),
		AbsenceDays:      attendance.ParseNumber(stats.get(colAbsenceDays)),
		AttendanceDays:   stats.get(colAttendanceDays),
	}
	if emp.AttendanceDays == "" {
		emp.AttendanceDays = "0"
	}

	for title, i := range daily.header {
		day, ok := attendance.NormalizeDayKey(title)
		if !ok {
			continue
		}
		if text := strings.TrimSpace(cell(daily.cells, i)); text != "" {
			emp.Days[day] = attendance.DayStatus{Text: text}
		}
	}

	return emp, "", true
}

// loadSummary indexes the stats table (header on the first header row) and
// the daily table (header on the second header row) of the summary sheet
func (e *Export) loadSummary(rows [][]string) error {
	if len(rows) <= dailyHeaderRow {
		return fmt.Errorf("%w: summary sheet has %d rows, headers expected on rows %d and %d",
			ErrMissingHeader, len(rows), statsHeaderRow+1, dailyHeaderRow+1)
	}

	statsHeader := newHeader(rows[statsHeaderRow])
	dailyHeader := newHeader(rows[dailyHeaderRow])

	// the daily table has no 姓名 title of its own; its first column holds the name
	statsName := statsHeader.nameColumn()
	dailyName := defaultNameColumn

	for _, cells := range rows[statsHeaderRow+1:] {
		name := attendance.NormalizeName(cell(cells, statsName))
		if name == "" || name == colName {
			continue
		}
		if _, seen := e.stats[name]; !seen {
			e.stats[name] = row{header: statsHeader, cells: cells}
			e.order = append(e.order, name)
		}
	}

	for _, cells := range rows[dailyHeaderRow+1:] {
		name := attendance.NormalizeName(cell(cells, dailyName))
		if name == "" || name == colName {
			continue
		}
		if _, seen := e.daily[name]; !seen {
			e.daily[name] = row{header: dailyHeader, cells: cells}
		}
	}

	return nil
}

// loadRecords groups raw punches by normalized name
func (e *Export) loadRecords(rows [][]string) error {
	if len(rows) <= recordsHeaderRow {
		return fmt.Errorf("%w: records sheet has no header on row %d", ErrMissingHeader, recordsHeaderRow+1)
	}

	h := newHeader(rows[recordsHeaderRow])
	if _, ok := h[colPunchDate]; !ok {
		return fmt.Errorf("%w: column %s", ErrMissingHeader, colPunchDate)
	}
	nameCol := h.nameColumn()

	for _, cells := range rows[recordsHeaderRow+1:] {
		name := attendance.NormalizeName(cell(cells, nameCol))
		if name == "" {
			continue
		}
		e.punches[name] = append(e.punches[name], attendance.PunchRecord{
			Date:    h.get(cells, colPunchDate),
			Address: h.get(cells, colPunchAddress),
			Remark:  h.get(cells, colPunchRemark),
			Result:  h.get(cells, colPunchResult),
		})
		e.punchCount++
	}

	return nil
}
