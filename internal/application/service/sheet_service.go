package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/garyjia/attendance-sheet/internal/application/port"
	"github.com/garyjia/attendance-sheet/internal/attendance"
	"github.com/garyjia/attendance-sheet/internal/dingtalk"
	"github.com/garyjia/attendance-sheet/internal/models"
	"github.com/garyjia/attendance-sheet/internal/sheet"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrNoSource is returned when a request names no source export
var ErrNoSource = errors.New("source export path is required")

// Request is one sheet generation. Empty template and output fields fall
// back to the configured defaults.
type Request struct {
	RunID        string
	SourcePath   string
	TemplatePath string
	OutputDir    string
}

// Result is the outcome of a generation
type Result struct {
	RunID      string              `json:"run_id"`
	OutputPath string              `json:"output_path"`
	Period     string              `json:"period"`
	Processed  int                 `json:"processed"`
	Skipped    []models.RunSkipped `json:"skipped"`
	Failures   []models.RunFailure `json:"failures"`
}

// Summarizer turns matched employees into finished rows. Summary.Index and
// Failure.Index point back into employees.
type Summarizer interface {
	Summarize(ctx context.Context, period attendance.Period, employees []attendance.Employee) (*attendance.BatchResult, error)
}

// SheetService fills the monthly attendance template from a DingTalk export
type SheetService interface {
	Generate(ctx context.Context, req Request) (*Result, error)
}

// Config holds the defaults and template layout for the sheet service
type Config struct {
	TemplatePath string
	OutputDir    string
	OutputPrefix string
	Layout       sheet.Layout
}

type sheetServiceImpl struct {
	cfg      Config
	reader   *dingtalk.Reader
	engine   Summarizer
	runs     port.RunRepository
	notifier port.RunNotifier
	logger   *zap.Logger

	// template and output files are shared between runs
	mu sync.Mutex
}

// NewSheetService creates a new SheetService. runs and notifier may be nil.
func NewSheetService(
	cfg Config,
	reader *dingtalk.Reader,
	engine Summarizer,
	runs port.RunRepository,
	notifier port.RunNotifier,
	logger *zap.Logger,
) SheetService {
	return &sheetServiceImpl{
		cfg:      cfg,
		reader:   reader,
		engine:   engine,
		runs:     runs,
		notifier: notifier,
		logger:   logger,
	}
}

// unknownMonth labels the output when the export carries no period
const unknownMonth = "XX"

// OutputFileName is the generated workbook name for a period. An undetected
// period never borrows the default range's month.
func OutputFileName(prefix string, period attendance.Period, detected bool) string {
	month := unknownMonth
	if detected {
		month = period.MonthLabel()
	}
	return prefix + month + "月.xlsx"
}

// Generate reads the export, fills the template and saves the result
func (s *sheetServiceImpl) Generate(ctx context.Context, req Request) (*Result, error) {
	if req.SourcePath == "" {
		return nil, ErrNoSource
	}
	if req.TemplatePath == "" {
		req.TemplatePath = s.cfg.TemplatePath
	}
	if req.OutputDir == "" {
		req.OutputDir = s.cfg.OutputDir
	}
	if req.RunID == "" {
		req.RunID = uuid.NewString()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	run := &models.Run{
		ID:           req.RunID,
		SourceFile:   req.SourcePath,
		TemplateFile: req.TemplatePath,
	}
	s.recordStart(ctx, run)

	logger := s.logger.With(zap.String("run_id", run.ID))
	logger.Info("Generating attendance sheet",
		zap.String("source", req.SourcePath),
		zap.String("template", req.TemplatePath))

	result, err := s.generate(ctx, req, run, logger)
	if err != nil {
		run.Status = models.RunStatusFailed
		run.ErrorMessage = err.Error()
		logger.Error("Attendance sheet generation failed", zap.Error(err))
	} else {
		run.Status = models.RunStatusCompleted
	}

	s.recordFinish(ctx, run, logger)
	return result, err
}

func (s *sheetServiceImpl) generate(ctx context.Context, req Request, run *models.Run, logger *zap.Logger) (*Result, error) {
	export, err := s.reader.Read(req.SourcePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read source export: %w", err)
	}
	run.PeriodStart = export.Period.Start.Format("2006-01-02")
	run.PeriodEnd = export.Period.End.Format("2006-01-02")

	tpl, err := sheet.Open(req.TemplatePath, s.cfg.Layout, logger)
	if err != nil {
		return nil, err
	}
	defer tpl.Close()

	roster, err := tpl.Roster()
	if err != nil {
		return nil, fmt.Errorf("failed to read template roster: %w", err)
	}
	if err := tpl.Clear(roster); err != nil {
		return nil, fmt.Errorf("failed to clear template: %w", err)
	}
	if err := tpl.DrawCalendar(export.Period); err != nil {
		return nil, fmt.Errorf("failed to draw calendar header: %w", err)
	}

	employees, rows := s.join(roster, export, run, logger)

	batch, err := s.engine.Summarize(ctx, export.Period, employees)
	if err != nil {
		return nil, err
	}
	for _, f := range batch.Failures {
		run.Failures = append(run.Failures, models.RunFailure{Employee: f.Name, Message: f.Err.Error()})
	}

	for _, summary := range batch.Summaries {
		row := rows[summary.Index]
		if err := tpl.WriteSummary(row, summary); err != nil {
			logger.Error("Failed to write employee row",
				zap.String("employee", summary.Name),
				zap.Int("row", row),
				zap.Error(err))
			run.Failures = append(run.Failures, models.RunFailure{Employee: summary.Name, Message: err.Error()})
		}
	}

	if err := os.MkdirAll(req.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	outputPath := filepath.Join(req.OutputDir, OutputFileName(s.cfg.OutputPrefix, export.Period, export.PeriodDetected))
	if err := tpl.SaveAs(outputPath); err != nil {
		return nil, err
	}

	run.OutputFile = outputPath
	run.Processed = len(employees)
	run.Skipped = len(run.SkippedNames)
	run.Failed = len(run.Failures)

	logger.Info("Attendance sheet generated",
		zap.String("output", outputPath),
		zap.String("period", export.Period.String()),
		zap.Int("processed", run.Processed),
		zap.Int("skipped", run.Skipped),
		zap.Int("failed", run.Failed))

	return &Result{
		RunID:      run.ID,
		OutputPath: outputPath,
		Period:     export.Period.String(),
		Processed:  run.Processed,
		Skipped:    run.SkippedNames,
		Failures:   run.Failures,
	}, nil
}

// join matches roster names against the export. Unmatched names are
// recorded as skipped. rows[i] is the template row of employees[i], so
// repeated names each keep their own row.
func (s *sheetServiceImpl) join(roster []sheet.RosterEntry, export *dingtalk.Export, run *models.Run, logger *zap.Logger) ([]attendance.Employee, []int) {
	employees := make([]attendance.Employee, 0, len(roster))
	rows := make([]int, 0, len(roster))

	for _, entry := range roster {
		emp, reason, ok := export.Employee(entry.Name)
		if !ok {
			logger.Debug("Employee not found in source export",
				zap.String("employee", entry.Name),
				zap.String("reason", string(reason)))
			run.SkippedNames = append(run.SkippedNames, models.RunSkipped{Employee: entry.Name, Reason: string(reason)})
			continue
		}
		emp.OldBalance = entry.OldBalance
		employees = append(employees, emp)
		rows = append(rows, entry.Row)
	}
	return employees, rows
}

func (s *sheetServiceImpl) recordStart(ctx context.Context, run *models.Run) {
	if s.runs == nil {
		return
	}
	if err := s.runs.Create(ctx, run); err != nil {
		s.logger.Warn("Failed to record run start", zap.String("run_id", run.ID), zap.Error(err))
	}
}

// recordFinish stores and announces the outcome. Neither step can fail the run.
func (s *sheetServiceImpl) recordFinish(ctx context.Context, run *models.Run, logger *zap.Logger) {
	// the run is recorded even when the caller's context was cancelled
	ctx = context.WithoutCancel(ctx)

	if s.runs != nil {
		if err := s.runs.Finish(ctx, run); err != nil {
			logger.Warn("Failed to record run outcome", zap.Error(err))
		}
	}
	if s.notifier != nil {
		if err := s.notifier.NotifyRun(ctx, run); err != nil {
			logger.Warn("Failed to send run notification", zap.Error(err))
		}
	}
}
