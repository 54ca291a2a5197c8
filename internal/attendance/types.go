package attendance

import (
	"time"

	"github.com/shopspring/decimal"
)

// Category is the accounting bucket a single employee-day counts toward
type Category string

const (
	CategoryCompany     Category = "company"
	CategoryProvinceIn  Category = "province_in"
	CategoryProvinceOut Category = "province_out"
	CategoryRest        Category = "rest"
	CategoryLeave       Category = "leave"
	CategoryCompLeave   Category = "comp_leave"
	CategoryAbsent      Category = "absent"
	CategoryCompanyOT   Category = "company_ot"
)

// HalfDaySession says which half of the day a half-day leave covers
type HalfDaySession string

const (
	SessionUnknown   HalfDaySession = ""
	SessionMorning   HalfDaySession = "morning"
	SessionAfternoon HalfDaySession = "afternoon"
)

// DayStatus is the raw status cell for one employee-day.
// Session is optional. When set, a leave or comp-leave day is a half day in
// that session; when empty, half days and their session come from the text.
type DayStatus struct {
	Text    string
	Session HalfDaySession
}

// PunchRecord is one raw clock event
type PunchRecord struct {
	Date    string // raw date text as exported, e.g. "2025-12-01 星期一"
	Address string
	Remark  string
	Result  string
}

// Overtime holds the three overtime figures of the period
type Overtime struct {
	Workday decimal.Decimal
	RestDay decimal.Decimal
	Holiday decimal.Decimal
}

// Total returns the sum of all overtime figures
func (o Overtime) Total() decimal.Decimal {
	return o.Workday.Add(o.RestDay).Add(o.Holiday)
}

// Employee is one matched employee with everything the engine needs
type Employee struct {
	Name       string
	Department string

	// Days is keyed by day-of-month text ("1".."31")
	Days    map[string]DayStatus
	Punches []PunchRecord

	Overtime      Overtime
	CompLeave     decimal.Decimal
	PersonalLeave decimal.Decimal
	SickLeave     decimal.Decimal

	TardyCount       decimal.Decimal
	TardyAbsentCount decimal.Decimal
	AbsenceDays      decimal.Decimal

	// AttendanceDays is passed through as exported
	AttendanceDays string

	// OldBalance is the banked leave read from the previous sheet, nil when absent
	OldBalance *decimal.Decimal
}

// DisplayResult is the classification of one employee-day
type DisplayResult struct {
	Symbol   string
	Category Category
}

// DayResult is a DisplayResult bound to its date
type DayResult struct {
	Date time.Time
	DisplayResult
}

// Summary is the finished row for one employee
type Summary struct {
	// Index is the employee's position in the Summarize input
	Index      int
	Name       string
	Department string
	Days       []DayResult

	Balance BankedLeave

	SickLeave      decimal.Decimal
	OvertimeTotal  decimal.Decimal
	Tardy          decimal.Decimal
	AbsenceDays    decimal.Decimal
	AttendanceDays string

	ProvinceInDays  int
	ProvinceOutDays int

	// SiteDays is nil when the department is not tracked for on-site days
	SiteDays *int
}

// Failure records one employee that could not be processed
type Failure struct {
	Index int
	Name  string
	Err   error
}

// BatchResult is the outcome of summarizing a set of employees
type BatchResult struct {
	Summaries []Summary
	Failures  []Failure
}
