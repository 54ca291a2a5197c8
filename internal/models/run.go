package models

import "time"

// Run is one generation of an attendance sheet recorded in the run log
type Run struct {
	ID           string     `json:"id"`
	SourceFile   string     `json:"source_file"`
	TemplateFile string     `json:"template_file"`
	OutputFile   string     `json:"output_file"`
	PeriodStart  string     `json:"period_start"`
	PeriodEnd    string     `json:"period_end"`
	Processed    int        `json:"processed"`
	Skipped      int        `json:"skipped"`
	Failed       int        `json:"failed"`
	Status       string     `json:"status"` // RUNNING, COMPLETED, FAILED
	ErrorMessage string     `json:"error_message,omitempty"`
	StartedAt    time.Time  `json:"started_at"`
	FinishedAt   *time.Time `json:"finished_at,omitempty"`

	Failures     []RunFailure `json:"failures,omitempty"`
	SkippedNames []RunSkipped `json:"skipped_names,omitempty"`
}

// RunFailure is an employee whose row could not be produced
type RunFailure struct {
	Employee string `json:"employee"`
	Message  string `json:"message"`
}

// RunSkipped is an employee left out because a source table lacked them
type RunSkipped struct {
	Employee string `json:"employee"`
	Reason   string `json:"reason"`
}

// Run status constants
const (
	RunStatusRunning   = "RUNNING"
	RunStatusCompleted = "COMPLETED"
	RunStatusFailed    = "FAILED"
)

// Skip reasons
const (
	SkipReasonNotInSource  = "NOT_IN_SOURCE"
	SkipReasonNoSummaryRow = "NO_SUMMARY_ROW"
	SkipReasonNoDailyRow   = "NO_DAILY_ROW"
)
