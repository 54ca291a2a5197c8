package attendance

import (
	"regexp"
	"strconv"
	"strings"
)

var clockPattern = regexp.MustCompile(`(\d{2}):\d{2}`)

type dayContext struct {
	in      DayInput
	status  string
	loc     Location
	weekend bool
}

// statusRule is one entry of the precedence table
type statusRule struct {
	name   string
	match  func(c dayContext) bool
	result func(c dayContext) DisplayResult
}

// Classifier turns a day's status and location into a display symbol
type Classifier struct {
	rules    Rules
	resolver *LocationResolver
	table    []statusRule
}

// NewClassifier builds the precedence table. The order of entries is the
// order in which the office resolves conflicting markers.
func NewClassifier(rules Rules, resolver *LocationResolver) *Classifier {
	c := &Classifier{rules: rules, resolver: resolver}
	kw, sym := rules.Keywords, rules.Symbols

	c.table = []statusRule{
		{name: "holiday", match: c.has(kw.Holiday), result: fixed(sym.Holiday, CategoryRest)},
		{name: "rest", match: c.has(kw.Rest), result: fixed(sym.Rest, CategoryRest)},
		{name: "leave", match: c.has(kw.Leave), result: c.halfDayOr(sym.Leave, sym.Leave, CategoryLeave)},
		{name: "personal_leave", match: c.has(kw.PersonalLeave), result: fixed(sym.Leave, CategoryLeave)},
		{name: "sick_leave", match: c.has(kw.SickLeave), result: fixed(sym.SickLeave, CategoryLeave)},
		{name: "annual_leave", match: c.has(kw.AnnualLeave), result: fixed(sym.AnnualLeave, CategoryLeave)},
		{name: "comp_leave", match: c.has(kw.CompLeave), result: c.halfDayOr(sym.CompLeaveHalf, sym.CompLeave, CategoryCompLeave)},
		{
			name: "absent",
			match: func(d dayContext) bool {
				return c.has(kw.Absent)(d) && !c.has(kw.TardyAbsent)(d)
			},
			result: fixed(sym.Absent, CategoryAbsent),
		},
		{
			name:  "tardy",
			match: c.has(kw.Tardy),
			result: func(d dayContext) DisplayResult {
				return DisplayResult{Symbol: sym.Tardy, Category: d.loc.Category}
			},
		},
		{
			name: "weekend_overtime",
			match: func(d dayContext) bool {
				return d.weekend && d.loc.Base == sym.Present && d.loc.Category != CategoryRest
			},
			result: fixed(sym.Overtime, CategoryCompanyOT),
		},
		{
			name: "unrecorded_weekend",
			match: func(d dayContext) bool {
				return d.weekend && len(d.in.Punches) == 0 && !strings.Contains(d.status, kw.Normal)
			},
			result: fixed(sym.Rest, CategoryRest),
		},
	}
	return c
}

// Classify resolves the day's location and applies the precedence table
func (c *Classifier) Classify(in DayInput) DisplayResult {
	result, _ := c.classify(in)
	return result
}

// classify also returns the name of the rule that fired, for debug logging
func (c *Classifier) classify(in DayInput) (DisplayResult, string) {
	d := dayContext{
		in:      in,
		status:  c.statusText(in),
		loc:     c.resolver.Resolve(in),
		weekend: IsWeekend(in.Date),
	}
	for _, rule := range c.table {
		if rule.match(d) {
			return rule.result(d), rule.name
		}
	}
	return DisplayResult{Symbol: d.loc.Base, Category: d.loc.Category}, "ordinary"
}

func (c *Classifier) statusText(in DayInput) string {
	if !in.HasStatus || strings.TrimSpace(in.Status.Text) == "" {
		return c.rules.Keywords.Normal
	}
	return in.Status.Text
}

func (c *Classifier) has(keyword string) func(dayContext) bool {
	return func(d dayContext) bool {
		return keyword != "" && strings.Contains(d.status, keyword)
	}
}

// halfDayOr splits a half-day record into "mark/base" or "base/mark";
// a full day gets the full symbol and category. An explicit session marks
// the record as a half day on its own.
func (c *Classifier) halfDayOr(half, full string, cat Category) func(dayContext) DisplayResult {
	return func(d dayContext) DisplayResult {
		if d.in.Status.Session == SessionUnknown && !containsAny(d.status, c.rules.Keywords.HalfDay) {
			return DisplayResult{Symbol: full, Category: cat}
		}
		if c.session(d) == SessionMorning {
			return DisplayResult{Symbol: half + "/" + d.loc.Base, Category: d.loc.Category}
		}
		return DisplayResult{Symbol: d.loc.Base + "/" + half, Category: d.loc.Category}
	}
}

// session prefers the explicit field, then the first HH:MM in the text.
// Without either the leave is taken as the afternoon half.
func (c *Classifier) session(d dayContext) HalfDaySession {
	if d.in.Status.Session != SessionUnknown {
		return d.in.Status.Session
	}
	m := clockPattern.FindStringSubmatch(d.status)
	if m == nil {
		return SessionAfternoon
	}
	hour, err := strconv.Atoi(m[1])
	if err == nil && hour < 12 {
		return SessionMorning
	}
	return SessionAfternoon
}

func fixed(symbol string, cat Category) func(dayContext) DisplayResult {
	return func(dayContext) DisplayResult {
		return DisplayResult{Symbol: symbol, Category: cat}
	}
}
