package attendance

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Engine drives the resolver, classifier and balance reconciliation for a
// whole period
type Engine struct {
	rules      Rules
	classifier *Classifier
	logger     *zap.Logger
}

// NewEngine creates an engine for an immutable rule set
func NewEngine(rules Rules, logger *zap.Logger) (*Engine, error) {
	if err := rules.Validate(); err != nil {
		return nil, err
	}
	return &Engine{
		rules:      rules,
		classifier: NewClassifier(rules, NewLocationResolver(rules)),
		logger:     logger,
	}, nil
}

// Summarize processes every employee independently. A failing employee is
// logged and reported in Failures; it never contributes a partial row.
func (e *Engine) Summarize(ctx context.Context, period Period, employees []Employee) (*BatchResult, error) {
	result := &BatchResult{
		Summaries: make([]Summary, 0, len(employees)),
	}

	for i, emp := range employees {
		if err := ctx.Err(); err != nil {
			return result, fmt.Errorf("summarize interrupted: %w", err)
		}

		summary, err := e.summarizeSafely(period, emp)
		if err != nil {
			e.logger.Error("Failed to summarize employee",
				zap.String("employee", emp.Name),
				zap.String("department", emp.Department),
				zap.Error(err))
			result.Failures = append(result.Failures, Failure{Index: i, Name: emp.Name, Err: err})
			continue
		}
		summary.Index = i
		result.Summaries = append(result.Summaries, summary)
	}

	e.logger.Info("Attendance summarized",
		zap.String("period", period.String()),
		zap.Int("employees", len(employees)),
		zap.Int("summarized", len(result.Summaries)),
		zap.Int("failed", len(result.Failures)))

	return result, nil
}

func (e *Engine) summarizeSafely(period Period, emp Employee) (summary Summary, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic while summarizing: %v", p)
		}
	}()
	return e.SummarizeEmployee(period, emp)
}

// SummarizeEmployee classifies every day of the period for one employee and
// reconciles the banked leave
func (e *Engine) SummarizeEmployee(period Period, emp Employee) (Summary, error) {
	if emp.Name == "" {
		return Summary{}, ErrEmptyName
	}

	dates := period.Dates()
	summary := Summary{
		Name:           emp.Name,
		Department:     emp.Department,
		Days:           make([]DayResult, 0, len(dates)),
		SickLeave:      emp.SickLeave,
		OvertimeTotal:  emp.Overtime.Total(),
		Tardy:          emp.TardyCount.Add(emp.TardyAbsentCount),
		AbsenceDays:    emp.AbsenceDays,
		AttendanceDays: emp.AttendanceDays,
	}

	for _, date := range dates {
		status, hasStatus := lookupDay(emp.Days, date)
		in := DayInput{
			Date:       date,
			Status:     status,
			HasStatus:  hasStatus,
			Punches:    punchesOn(emp.Punches, date),
			Department: emp.Department,
		}

		res, rule := e.classifier.classify(in)
		e.logger.Debug("Day classified",
			zap.String("employee", emp.Name),
			zap.String("date", date.Format(dateLayout)),
			zap.String("rule", rule),
			zap.String("symbol", res.Symbol),
			zap.String("category", string(res.Category)))

		summary.Days = append(summary.Days, DayResult{Date: date, DisplayResult: res})
		switch res.Category {
		case CategoryProvinceIn:
			summary.ProvinceInDays++
		case CategoryProvinceOut:
			summary.ProvinceOutDays++
		}
	}

	old := decimal.Zero
	if emp.OldBalance != nil {
		old = *emp.OldBalance
	}
	summary.Balance = ReconcileBankedLeave(old, summary.OvertimeTotal, emp.CompLeave, emp.PersonalLeave)

	if e.rules.TracksSiteDays(emp.Department) {
		site := summary.ProvinceInDays + summary.ProvinceOutDays
		summary.SiteDays = &site
	}

	return summary, nil
}

func punchesOn(punches []PunchRecord, date time.Time) []PunchRecord {
	var out []PunchRecord
	for _, p := range punches {
		if OnDate(p.Date, date) {
			out = append(out, p)
		}
	}
	return out
}
