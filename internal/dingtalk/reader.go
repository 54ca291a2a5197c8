package dingtalk

import (
	"fmt"
	"strings"

	"github.com/garyjia/attendance-sheet/internal/attendance"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// Layout of the DingTalk monthly export
const (
	metaRow           = 0 // title cell carrying the statistics period
	statsHeaderRow    = 2 // first header row: single-level columns and group titles
	dailyHeaderRow    = 3 // second header row: day numbers and grouped sub-columns
	recordsHeaderRow  = 2
	defaultNameColumn = 0
)

// Column titles used by the export
const (
	colName             = "姓名"
	colDepartment       = "部门"
	colTardyCount       = "迟到次数"
	colTardyAbsentCount = "旷工迟到次数"
	colAbsenceDays      = "旷工天数"
	colAttendanceDays   = "出勤天数"
	colCompLeave        = "调休(天)"
	colPersonalLeave    = "事假(天)"
	colSickLeave        = "病假(天)"
	colWorkdayOvertime  = "工作日加班"
	colRestDayOvertime  = "休息日加班"
	colHolidayOvertime  = "节假日加班"
	colPunchDate        = "考勤日期"
	colPunchAddress     = "打卡地址"
	colPunchRemark      = "打卡备注"
	colPunchResult      = "打卡结果"
)

// Config names the sheets of the export and the fallback period
type Config struct {
	SummarySheet  string
	RecordsSheet  string
	DefaultPeriod attendance.Period
}

// Reader parses a DingTalk export workbook
type Reader struct {
	cfg    Config
	logger *zap.Logger
}

// NewReader creates a new export reader
func NewReader(cfg Config, logger *zap.Logger) *Reader {
	return &Reader{
		cfg:    cfg,
		logger: logger,
	}
}

// Read opens the export at path and parses both sheets
func (r *Reader) Read(path string) (*Export, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open source export: %w", err)
	}
	defer f.Close()

	return r.Parse(f)
}

// Parse reads an already opened export workbook
func (r *Reader) Parse(f *excelize.File) (*Export, error) {
	summary, err := sheetRows(f, r.cfg.SummarySheet)
	if err != nil {
		return nil, err
	}
	records, err := sheetRows(f, r.cfg.RecordsSheet)
	if err != nil {
		return nil, err
	}

	export := newExport()

	export.Period, export.PeriodDetected = r.detectPeriod(summary)
	if !export.PeriodDetected {
		r.logger.Warn("Could not find the statistics period in the export, using default",
			zap.String("sheet", r.cfg.SummarySheet),
			zap.String("period", export.Period.String()))
	}

	if err := export.loadSummary(summary); err != nil {
		return nil, err
	}
	if err := export.loadRecords(records); err != nil {
		return nil, err
	}

	r.logger.Info("Source export parsed",
		zap.String("period", export.Period.String()),
		zap.Int("summary_rows", len(export.stats)),
		zap.Int("daily_rows", len(export.daily)),
		zap.Int("punch_records", export.punchCount))

	return export, nil
}

func (r *Reader) detectPeriod(rows [][]string) (attendance.Period, bool) {
	if len(rows) > metaRow && len(rows[metaRow]) > 0 {
		if p, ok := attendance.PeriodFromText(rows[metaRow][0]); ok {
			return p, true
		}
	}
	return r.cfg.DefaultPeriod, false
}

func sheetRows(f *excelize.File, sheet string) ([][]string, error) {
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrSheetNotFound, sheet)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	return rows, nil
}

// header maps column titles to indexes; the first occurrence wins
type header map[string]int

func newHeader(row []string) header {
	h := make(header, len(row))
	for i, cell := range row {
		title := normalizeTitle(cell)
		if title == "" {
			continue
		}
		if _, exists := h[title]; !exists {
			h[title] = i
		}
	}
	return h
}

// nameColumn is the 姓名 column, or the first column when the title is absent
func (h header) nameColumn() int {
	if i, ok := h[colName]; ok {
		return i
	}
	return defaultNameColumn
}

func (h header) get(row []string, title string) string {
	i, ok := h[title]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

func normalizeTitle(s string) string {
	s = strings.TrimSpace(s)
	s = strings.NewReplacer("\n", "", "\r", "", " ", "", "（", "(", "）", ")").Replace(s)
	return s
}
