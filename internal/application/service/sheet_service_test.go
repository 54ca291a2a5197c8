package service

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/garyjia/attendance-sheet/internal/application/port"
	"github.com/garyjia/attendance-sheet/internal/attendance"
	"github.com/garyjia/attendance-sheet/internal/dingtalk"
	"github.com/garyjia/attendance-sheet/internal/models"
	"github.com/garyjia/attendance-sheet/internal/sheet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const (
	summarySheet  = "月度汇总"
	recordsSheet  = "原始记录"
	templateSheet = "当月考勤"
	outputPrefix  = "结果-本月考勤_"
)

type mockRunRepo struct {
	created  []*models.Run
	finished []models.Run
}

func (m *mockRunRepo) Create(ctx context.Context, run *models.Run) error {
	m.created = append(m.created, run)
	return nil
}

func (m *mockRunRepo) Finish(ctx context.Context, run *models.Run) error {
	m.finished = append(m.finished, *run)
	return nil
}

func (m *mockRunRepo) GetByID(ctx context.Context, id string) (*models.Run, error) {
	return nil, nil
}

func (m *mockRunRepo) List(ctx context.Context, limit int) ([]*models.Run, error) {
	return nil, nil
}

type mockNotifier struct {
	notified []string
}

func (m *mockNotifier) NotifyRun(ctx context.Context, run *models.Run) error {
	m.notified = append(m.notified, run.Status)
	return nil
}

type mockSummarizer struct {
	summarizeFunc func(ctx context.Context, period attendance.Period, employees []attendance.Employee) (*attendance.BatchResult, error)
}

func (m *mockSummarizer) Summarize(ctx context.Context, period attendance.Period, employees []attendance.Employee) (*attendance.BatchResult, error) {
	return m.summarizeFunc(ctx, period, employees)
}

func writeWorkbook(t *testing.T, path string, sheets map[string][][]interface{}) {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	first := true
	for name, rows := range sheets {
		if first {
			require.NoError(t, f.SetSheetName("Sheet1", name))
			first = false
		} else {
			_, err := f.NewSheet(name)
			require.NoError(t, err)
		}
		for i, r := range rows {
			cell, err := excelize.CoordinatesToCellName(1, i+1)
			require.NoError(t, err)
			values := r
			require.NoError(t, f.SetSheetRow(name, cell, &values))
		}
	}
	require.NoError(t, f.SaveAs(path))
}

func writeExport(t *testing.T, dir string) string {
	t.Helper()
	return writeExportTitled(t, dir, "export.xlsx", "月度汇总 统计日期：2025-12-01 至 2025-12-03")
}

func writeExportTitled(t *testing.T, dir, name, title string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	writeWorkbook(t, path, map[string][][]interface{}{
		summarySheet: {
			{title},
			{},
			{"姓名", "部门", "出勤天数", "迟到次数", "旷工迟到次数", "旷工天数", "请假", nil, nil, "加班", nil, nil, "考勤结果"},
			{nil, nil, nil, nil, nil, nil, "调休(天)", "事假(天)", "病假(天)", "工作日加班", "休息日加班", "节假日加班", "1", "2", "3"},
			{"张三", "运维部", 3, 0, 0, 0, 1, 0, 0, 0.5, 0, 0, "正常", "调休1天", "正常"},
			{"王五", "财务部", 3},
		},
		recordsSheet: {
			{"原始记录"},
			{},
			{"姓名", "考勤日期", "打卡结果", "打卡地址", "打卡备注"},
			{"张三", "2025-12-01 星期一", "正常", "山东省威海市环翠区", ""},
		},
	})
	return path
}

func writeTemplate(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "template.xlsx")
	header := []interface{}{"序号", "姓名", "出勤日", "省内", "省外", "加班", "病假", "请假", "调休", "迟到", "旷工", "工地天数", "存班"}
	writeWorkbook(t, path, map[string][][]interface{}{
		templateSheet: {
			{"考勤表"},
			header,
			{},
			{},
			{1, "张 三", nil, nil, nil, nil, nil, nil, nil, nil, nil, nil, "2"},
			{2, "李四", nil, nil, nil, nil, nil, nil, nil, nil, nil, nil, "1"},
			{3, "王五"},
		},
	})
	return path
}

func newTestService(t *testing.T, runs port.RunRepository, notifier port.RunNotifier, templatePath, outputDir string) SheetService {
	t.Helper()
	return newTestServiceWith(t, newTestEngine(t), runs, notifier, templatePath, outputDir)
}

func newTestEngine(t *testing.T) *attendance.Engine {
	t.Helper()
	engine, err := attendance.NewEngine(attendance.DefaultRules(), zap.NewNop())
	require.NoError(t, err)
	return engine
}

func newTestServiceWith(t *testing.T, engine Summarizer, runs port.RunRepository, notifier port.RunNotifier, templatePath, outputDir string) SheetService {
	t.Helper()
	def, err := attendance.NewPeriod("2025-11-26", "2025-12-25")
	require.NoError(t, err)

	reader := dingtalk.NewReader(dingtalk.Config{
		SummarySheet:  summarySheet,
		RecordsSheet:  recordsSheet,
		DefaultPeriod: def,
	}, zap.NewNop())

	cfg := Config{
		TemplatePath: templatePath,
		OutputDir:    outputDir,
		OutputPrefix: outputPrefix,
		Layout: sheet.Layout{
			Sheet:              templateSheet,
			NameColumn:         2,
			DataStartRow:       4,
			FallbackDateColumn: 14,
			HeaderScanColumns:  49,
		},
	}

	return NewSheetService(cfg, reader, engine, runs, notifier, zap.NewNop())
}

func TestSheetService_Generate(t *testing.T) {
	dir := t.TempDir()
	runs := &mockRunRepo{}
	notifier := &mockNotifier{}
	svc := newTestService(t, runs, notifier, writeTemplate(t, dir), filepath.Join(dir, "out"))

	result, err := svc.Generate(context.Background(), Request{SourcePath: writeExport(t, dir)})
	require.NoError(t, err)

	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, filepath.Join(dir, "out", "结果-本月考勤_12月.xlsx"), result.OutputPath)
	assert.Equal(t, "2025-12-01 ~ 2025-12-03", result.Period)
	assert.Equal(t, 2, result.Processed)
	assert.Equal(t, []models.RunSkipped{{Employee: "李四", Reason: models.SkipReasonNotInSource}}, result.Skipped)
	assert.Empty(t, result.Failures)

	f, err := excelize.OpenFile(result.OutputPath)
	require.NoError(t, err)
	defer f.Close()

	tests := []struct {
		cell     string
		expected string
	}{
		{"N3", "1"},
		{"N4", "一"},
		{"P4", "三"},
		{"N5", "威海"},
		{"O5", "调休"},
		{"P5", "√"},
		{"C5", "3"},   // 出勤日
		{"D5", "1"},   // 省内
		{"E5", "0"},   // 省外
		{"F5", "0.5"}, // 加班
		{"I5", "1"},   // 调休
		{"L5", "1"},   // 工地天数
		{"M5", "1.5"}, // 存班 2 + 0.5 - 1
		{"M6", ""},    // skipped rows are cleared too
		{"N7", "√"},
		{"L7", ""},
		{"M7", ""},
	}
	for _, tt := range tests {
		v, err := f.GetCellValue(templateSheet, tt.cell)
		require.NoError(t, err)
		assert.Equal(t, tt.expected, v, tt.cell)
	}

	require.Len(t, runs.created, 1)
	require.Len(t, runs.finished, 1)
	finished := runs.finished[0]
	assert.Equal(t, result.RunID, finished.ID)
	assert.Equal(t, models.RunStatusCompleted, finished.Status)
	assert.Equal(t, "2025-12-01", finished.PeriodStart)
	assert.Equal(t, "2025-12-03", finished.PeriodEnd)
	assert.Equal(t, 2, finished.Processed)
	assert.Equal(t, 1, finished.Skipped)
	assert.Equal(t, []string{models.RunStatusCompleted}, notifier.notified)
}

func TestSheetService_GenerateFailures(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing source path", func(t *testing.T) {
		svc := newTestService(t, &mockRunRepo{}, &mockNotifier{}, writeTemplate(t, dir), dir)
		_, err := svc.Generate(context.Background(), Request{})
		assert.ErrorIs(t, err, ErrNoSource)
	})

	t.Run("unreadable source is recorded as failed run", func(t *testing.T) {
		runs := &mockRunRepo{}
		notifier := &mockNotifier{}
		svc := newTestService(t, runs, notifier, writeTemplate(t, dir), dir)

		result, err := svc.Generate(context.Background(), Request{
			RunID:      "run-fixed",
			SourcePath: filepath.Join(dir, "missing.xlsx"),
		})
		require.Error(t, err)
		assert.Nil(t, result)

		require.Len(t, runs.finished, 1)
		assert.Equal(t, "run-fixed", runs.finished[0].ID)
		assert.Equal(t, models.RunStatusFailed, runs.finished[0].Status)
		assert.NotEmpty(t, runs.finished[0].ErrorMessage)
		assert.Equal(t, []string{models.RunStatusFailed}, notifier.notified)
	})

	t.Run("template without the monthly sheet", func(t *testing.T) {
		badTemplate := filepath.Join(dir, "bad.xlsx")
		writeWorkbook(t, badTemplate, map[string][][]interface{}{"上月考勤": {{"姓名"}}})
		svc := newTestService(t, nil, nil, badTemplate, dir)

		_, err := svc.Generate(context.Background(), Request{SourcePath: writeExport(t, dir)})
		assert.ErrorIs(t, err, sheet.ErrSheetNotFound)
	})
}

func TestSheetService_DuplicateNamesKeepTheirRows(t *testing.T) {
	dir := t.TempDir()
	templatePath := filepath.Join(dir, "template.xlsx")
	header := []interface{}{"序号", "姓名", "出勤日", "省内", "省外", "加班", "病假", "请假", "调休", "迟到", "旷工", "工地天数", "存班"}
	writeWorkbook(t, templatePath, map[string][][]interface{}{
		templateSheet: {
			{"考勤表"},
			header,
			{},
			{},
			{1, "张三"},
			{2, "张三"},
			{3, "王五"},
		},
	})

	// the second 张三 fails after the first one succeeded
	engine := newTestEngine(t)
	summarizer := &mockSummarizer{
		summarizeFunc: func(ctx context.Context, period attendance.Period, employees []attendance.Employee) (*attendance.BatchResult, error) {
			require.Len(t, employees, 3)
			batch, err := engine.Summarize(ctx, period, employees)
			if err != nil {
				return nil, err
			}
			kept := batch.Summaries[:0]
			for _, s := range batch.Summaries {
				if s.Index == 1 {
					batch.Failures = append(batch.Failures, attendance.Failure{Index: 1, Name: s.Name, Err: errors.New("boom")})
					continue
				}
				kept = append(kept, s)
			}
			batch.Summaries = kept
			return batch, nil
		},
	}
	svc := newTestServiceWith(t, summarizer, nil, nil, templatePath, filepath.Join(dir, "out"))

	result, err := svc.Generate(context.Background(), Request{SourcePath: writeExport(t, dir)})
	require.NoError(t, err)
	assert.Equal(t, []models.RunFailure{{Employee: "张三", Message: "boom"}}, result.Failures)

	f, err := excelize.OpenFile(result.OutputPath)
	require.NoError(t, err)
	defer f.Close()

	tests := []struct {
		cell     string
		expected string
	}{
		{"C5", "3"}, // first 张三 written to its own row
		{"N5", "威海"},
		{"C6", ""}, // failed duplicate stays blank
		{"N6", ""},
		{"C7", "3"}, // 王五
		{"N7", "√"},
	}
	for _, tt := range tests {
		v, err := f.GetCellValue(templateSheet, tt.cell)
		require.NoError(t, err)
		assert.Equal(t, tt.expected, v, tt.cell)
	}
}

func TestSheetService_UndetectedPeriodNamesOutputXX(t *testing.T) {
	dir := t.TempDir()
	svc := newTestService(t, nil, nil, writeTemplate(t, dir), filepath.Join(dir, "out"))

	source := writeExportTitled(t, dir, "untitled.xlsx", "月度汇总")
	result, err := svc.Generate(context.Background(), Request{SourcePath: source})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "out", "结果-本月考勤_XX月.xlsx"), result.OutputPath)
	assert.Equal(t, "2025-11-26 ~ 2025-12-25", result.Period)
	assert.FileExists(t, result.OutputPath)
}

func TestOutputFileName(t *testing.T) {
	p, err := attendance.NewPeriod("2025-11-26", "2025-12-25")
	require.NoError(t, err)

	tests := []struct {
		name     string
		detected bool
		expected string
	}{
		{name: "detected period", detected: true, expected: "结果-本月考勤_11月.xlsx"},
		{name: "default period", detected: false, expected: "结果-本月考勤_XX月.xlsx"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, OutputFileName(outputPrefix, p, tt.detected))
		})
	}
}
