package sheet

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/garyjia/attendance-sheet/internal/attendance"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// Statistic column titles searched in the template header
const (
	ColAttendance  = "出勤日"
	ColProvinceIn  = "省内"
	ColProvinceOut = "省外"
	ColOvertime    = "加班"
	ColSickLeave   = "病假"
	ColLeave       = "请假"
	ColCompLeave   = "调休"
	ColTardy       = "迟到"
	ColAbsent      = "旷工"
	ColSiteDays    = "工地天数"
	ColBalance     = "存班"
)

var statTitles = []string{
	ColAttendance, ColProvinceIn, ColProvinceOut, ColOvertime, ColSickLeave,
	ColLeave, ColCompLeave, ColTardy, ColAbsent, ColSiteDays, ColBalance,
}

// header rows of the template (1-based)
var statHeaderRows = []int{2, 3}

const (
	dayNumberRow = 3
	weekdayRow   = 4
)

var weekdayNames = map[int]string{0: "日", 1: "一", 2: "二", 3: "三", 4: "四", 5: "五", 6: "六"}

// Layout describes where things live in the template sheet
type Layout struct {
	Sheet              string
	NameColumn         int
	DataStartRow       int
	FallbackDateColumn int
	HeaderScanColumns  int
}

// RosterEntry is one named row of the template
type RosterEntry struct {
	Row  int
	Name string
	// OldBalance is the 存班 value before clearing, nil when the template has no 存班 column
	OldBalance *decimal.Decimal
}

// Template is an opened attendance template
type Template struct {
	f         *excelize.File
	layout    Layout
	stats     map[string]int
	dateStart int
	dates     int
	merged    map[string]bool
	logger    *zap.Logger
}

// Open loads the template workbook and locates its statistic columns
func Open(path string, layout Layout, logger *zap.Logger) (*Template, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open template: %w", err)
	}

	t, err := newTemplate(f, layout, logger)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return t, nil
}

func newTemplate(f *excelize.File, layout Layout, logger *zap.Logger) (*Template, error) {
	if idx, err := f.GetSheetIndex(layout.Sheet); err != nil || idx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrSheetNotFound, layout.Sheet)
	}

	t := &Template{
		f:      f,
		layout: layout,
		stats:  make(map[string]int),
		logger: logger,
	}

	if err := t.loadMergedCells(); err != nil {
		return nil, err
	}
	if err := t.locateColumns(); err != nil {
		return nil, err
	}

	logger.Info("Template opened",
		zap.String("sheet", layout.Sheet),
		zap.Int("stat_columns", len(t.stats)),
		zap.Int("date_start_column", t.dateStart))

	return t, nil
}

// Close releases the workbook
func (t *Template) Close() error {
	return t.f.Close()
}

// StatColumn returns the 1-based column of a statistic title
func (t *Template) StatColumn(title string) (int, bool) {
	col, ok := t.stats[title]
	return col, ok
}

// DateStartColumn is the first calendar column
func (t *Template) DateStartColumn() int {
	return t.dateStart
}

func (t *Template) locateColumns() error {
	for _, r := range statHeaderRows {
		for col := 1; col <= t.layout.HeaderScanColumns; col++ {
			val, err := t.value(col, r)
			if err != nil {
				return err
			}
			if !containsTitle(val) {
				continue
			}
			t.stats[val] = col
			if val == ColBalance {
				t.dateStart = col + 1
			}
		}
	}
	if t.dateStart == 0 {
		t.dateStart = t.layout.FallbackDateColumn
	}
	return nil
}

func (t *Template) loadMergedCells() error {
	t.merged = make(map[string]bool)
	ranges, err := t.f.GetMergeCells(t.layout.Sheet)
	if err != nil {
		return fmt.Errorf("failed to read merged cells: %w", err)
	}
	for _, mc := range ranges {
		c1, r1, err := excelize.CellNameToCoordinates(mc.GetStartAxis())
		if err != nil {
			return fmt.Errorf("failed to parse merged range: %w", err)
		}
		c2, r2, err := excelize.CellNameToCoordinates(mc.GetEndAxis())
		if err != nil {
			return fmt.Errorf("failed to parse merged range: %w", err)
		}
		for r := r1; r <= r2; r++ {
			for c := c1; c <= c2; c++ {
				if r == r1 && c == c1 {
					continue
				}
				name, _ := excelize.CoordinatesToCellName(c, r)
				t.merged[name] = true
			}
		}
	}
	return nil
}

// Roster lists the named rows from the data start row down, capturing each
// row's previous 存班 value
func (t *Template) Roster() ([]RosterEntry, error) {
	maxRow, _, err := t.extent()
	if err != nil {
		return nil, err
	}

	balanceCol, hasBalance := t.stats[ColBalance]

	var roster []RosterEntry
	for r := t.layout.DataStartRow; r <= maxRow; r++ {
		raw, err := t.value(t.layout.NameColumn, r)
		if err != nil {
			return nil, err
		}
		name := attendance.NormalizeName(raw)
		if name == "" {
			continue
		}

		entry := RosterEntry{Row: r, Name: name}
		if hasBalance {
			val, err := t.value(balanceCol, r)
			if err != nil {
				return nil, err
			}
			old := attendance.ParseNumber(val)
			entry.OldBalance = &old
		}
		roster = append(roster, entry)
	}

	return roster, nil
}

// Clear blanks the statistic cells and every cell from the first date
// column to the right edge for each roster row
func (t *Template) Clear(roster []RosterEntry) error {
	_, maxCol, err := t.extent()
	if err != nil {
		return err
	}

	for _, entry := range roster {
		for _, col := range t.stats {
			if err := t.write(col, entry.Row, nil); err != nil {
				return err
			}
		}
		for col := t.dateStart; col <= maxCol; col++ {
			if err := t.write(col, entry.Row, nil); err != nil {
				return err
			}
		}
	}
	return nil
}

// DrawCalendar writes the day number and weekday of each date of the period
// into the header, centered
func (t *Template) DrawCalendar(period attendance.Period) error {
	dates := period.Dates()
	for i, d := range dates {
		col := t.dateStart + i
		if err := t.writeCentered(col, dayNumberRow, d.Day()); err != nil {
			return err
		}
		if err := t.writeCentered(col, weekdayRow, weekdayNames[int(d.Weekday())]); err != nil {
			return err
		}
	}
	t.dates = len(dates)
	return nil
}

// WriteSummary fills one roster row. Days must be in period order.
func (t *Template) WriteSummary(row int, s attendance.Summary) error {
	if t.dates == 0 {
		return ErrCalendarNotDrawn
	}

	for i, day := range s.Days {
		if i >= t.dates {
			break
		}
		if err := t.write(t.dateStart+i, row, day.Symbol); err != nil {
			return err
		}
	}

	b := s.Balance
	cells := []struct {
		title string
		value interface{}
	}{
		{ColBalance, nonZero(b.NewBalance)},
		{ColCompLeave, positive(b.CompLeaveConsumed)},
		{ColLeave, positive(b.PersonalLeave)},
		{ColSickLeave, positive(s.SickLeave)},
		{ColOvertime, positive(s.OvertimeTotal)},
		{ColTardy, positive(s.Tardy)},
		{ColAbsent, positive(s.AbsenceDays)},
		{ColAttendance, rawNumber(s.AttendanceDays)},
		{ColProvinceIn, s.ProvinceInDays},
		{ColProvinceOut, s.ProvinceOutDays},
		{ColSiteDays, siteDays(s.SiteDays)},
	}

	for _, c := range cells {
		col, ok := t.stats[c.title]
		if !ok {
			continue
		}
		if err := t.write(col, row, c.value); err != nil {
			return err
		}
	}
	return nil
}

// SaveAs writes the workbook to path
func (t *Template) SaveAs(path string) error {
	if err := t.f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save output workbook: %w", err)
	}
	t.logger.Info("Output workbook saved", zap.String("path", path))
	return nil
}

// value reads a cell as text. Non-anchor cells of merged ranges read as empty.
func (t *Template) value(col, row int) (string, error) {
	name, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return "", err
	}
	if t.merged[name] {
		return "", nil
	}
	val, err := t.f.GetCellValue(t.layout.Sheet, name)
	if err != nil {
		return "", fmt.Errorf("failed to read cell %s: %w", name, err)
	}
	return strings.TrimSpace(val), nil
}

// write sets a cell value; nil blanks it. Non-anchor cells of merged ranges
// are left alone.
func (t *Template) write(col, row int, value interface{}) error {
	name, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	if t.merged[name] {
		return nil
	}
	if err := t.f.SetCellValue(t.layout.Sheet, name, value); err != nil {
		return fmt.Errorf("failed to write cell %s: %w", name, err)
	}
	return nil
}

// writeCentered writes value and centers it, keeping the cell's font,
// border and fill
func (t *Template) writeCentered(col, row int, value interface{}) error {
	name, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	if t.merged[name] {
		return nil
	}
	if err := t.write(col, row, value); err != nil {
		return err
	}

	styleID, err := t.f.GetCellStyle(t.layout.Sheet, name)
	if err != nil {
		return fmt.Errorf("failed to read style of %s: %w", name, err)
	}
	style, err := t.f.GetStyle(styleID)
	if err != nil {
		return fmt.Errorf("failed to read style %d: %w", styleID, err)
	}
	style.Alignment = &excelize.Alignment{Horizontal: "center", Vertical: "center"}

	centered, err := t.f.NewStyle(style)
	if err != nil {
		return fmt.Errorf("failed to create style: %w", err)
	}
	return t.f.SetCellStyle(t.layout.Sheet, name, name, centered)
}

// extent returns the last used row and column of the sheet
func (t *Template) extent() (int, int, error) {
	rows, err := t.f.GetRows(t.layout.Sheet)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to read template rows: %w", err)
	}
	maxCol := 0
	for _, r := range rows {
		if len(r) > maxCol {
			maxCol = len(r)
		}
	}
	return len(rows), maxCol, nil
}

func containsTitle(val string) bool {
	for _, title := range statTitles {
		if val == title {
			return true
		}
	}
	return false
}

func nonZero(d decimal.Decimal) interface{} {
	if d.IsZero() {
		return nil
	}
	return d.InexactFloat64()
}

func positive(d decimal.Decimal) interface{} {
	if !d.IsPositive() {
		return nil
	}
	return d.InexactFloat64()
}

// rawNumber writes numeric text as a number and anything else verbatim
func rawNumber(s string) interface{} {
	if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
		return f
	}
	return s
}

func siteDays(n *int) interface{} {
	if n == nil {
		return nil
	}
	return *n
}
