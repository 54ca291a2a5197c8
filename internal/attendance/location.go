package attendance

import (
	"regexp"
	"strings"
	"time"
)

// cityPattern captures a Han city name directly followed by 市
var cityPattern = regexp.MustCompile(`([\x{4e00}-\x{9fa5}]{2,})市`)

// DayInput is everything known about one employee-day before classification
type DayInput struct {
	Date       time.Time
	Status     DayStatus
	HasStatus  bool
	Punches    []PunchRecord
	Department string
}

// Location is the resolver's verdict for one employee-day
type Location struct {
	Tags      []string
	FieldWork bool
	Base      string
	Category  Category
}

// punchStep resolves a tag from one punch. search is address+remark.
type punchStep struct {
	name    string
	resolve func(search, address string, fieldWork bool) (string, bool)
}

// categoryStep derives (base, category) from the resolved tags
type categoryStep struct {
	name  string
	match func(in DayInput, tags []string, fieldWork bool) bool
	apply func(tags []string) (string, Category)
}

// LocationResolver maps punch text to canonical location tags
type LocationResolver struct {
	rules      Rules
	steps      []punchStep
	categories []categoryStep
}

// NewLocationResolver builds the ordered resolution chain from rules
func NewLocationResolver(rules Rules) *LocationResolver {
	r := &LocationResolver{rules: rules}
	r.steps = []punchStep{
		{name: "project", resolve: func(search, _ string, _ bool) (string, bool) {
			return firstMapping(rules.ProjectMappings, search)
		}},
		{name: "city_abbreviation", resolve: func(search, _ string, _ bool) (string, bool) {
			return firstMapping(rules.CityAbbreviations, search)
		}},
		{name: "supplementary_city", resolve: func(search, _ string, _ bool) (string, bool) {
			for _, city := range rules.SupplementaryCities {
				if city != "" && strings.Contains(search, city) {
					return city, true
				}
			}
			return "", false
		}},
		{name: "address_city", resolve: func(_, address string, fieldWork bool) (string, bool) {
			if !fieldWork {
				return "", false
			}
			return r.extractCity(address)
		}},
	}
	r.categories = []categoryStep{
		{
			name: "province_out",
			match: func(_ DayInput, tags []string, _ bool) bool {
				return anyTag(tags, rules.IsProvinceOut)
			},
			apply: r.tagged(CategoryProvinceOut),
		},
		{
			name: "province_in",
			match: func(_ DayInput, tags []string, _ bool) bool {
				return anyTag(tags, rules.IsProvinceIn)
			},
			apply: r.tagged(CategoryProvinceIn),
		},
		{
			name: "field_work",
			match: func(_ DayInput, _ []string, fieldWork bool) bool {
				return fieldWork
			},
			apply: r.tagged(CategoryProvinceIn),
		},
		{
			name: "offsite_department",
			match: func(in DayInput, tags []string, _ bool) bool {
				kw := rules.OffsiteDepartment.Keyword
				return len(tags) == 0 && kw != "" && strings.Contains(in.Department, kw)
			},
			apply: func(_ []string) (string, Category) {
				return rules.OffsiteDepartment.Symbol, CategoryProvinceOut
			},
		},
		{
			name: "weekend_without_punches",
			match: func(in DayInput, _ []string, _ bool) bool {
				return len(in.Punches) == 0 && IsWeekend(in.Date)
			},
			apply: func(_ []string) (string, Category) {
				return rules.Symbols.Rest, CategoryRest
			},
		},
	}
	return r
}

// Resolve returns the tags, field-work flag and derived base symbol for a day
func (r *LocationResolver) Resolve(in DayInput) Location {
	fieldWork := r.fieldWork(in)

	var tags []string
	for _, p := range in.Punches {
		tag, ok := r.resolvePunch(p, fieldWork)
		if !ok || containsExact(tags, tag) {
			continue
		}
		tags = append(tags, tag)
	}

	for _, step := range r.categories {
		if step.match(in, tags, fieldWork) {
			base, cat := step.apply(tags)
			return Location{Tags: tags, FieldWork: fieldWork, Base: base, Category: cat}
		}
	}
	return Location{Tags: tags, FieldWork: fieldWork, Base: r.tagBase(tags), Category: CategoryCompany}
}

func (r *LocationResolver) resolvePunch(p PunchRecord, fieldWork bool) (string, bool) {
	search := p.Address + p.Remark
	for _, step := range r.steps {
		if tag, ok := step.resolve(search, p.Address, fieldWork); ok {
			return tag, true
		}
	}
	return "", false
}

func (r *LocationResolver) fieldWork(in DayInput) bool {
	kw := r.rules.Keywords.FieldWork
	if kw == "" {
		return false
	}
	if strings.Contains(in.Status.Text, kw) {
		return true
	}
	for _, p := range in.Punches {
		if strings.Contains(p.Result, kw) {
			return true
		}
	}
	return false
}

func (r *LocationResolver) extractCity(address string) (string, bool) {
	if m := cityPattern.FindStringSubmatch(address); m != nil {
		return m[1], true
	}
	for _, city := range r.rules.Municipalities {
		if city != "" && strings.Contains(address, city) {
			return city, true
		}
	}
	return "", false
}

func (r *LocationResolver) tagged(cat Category) func([]string) (string, Category) {
	return func(tags []string) (string, Category) {
		return r.tagBase(tags), cat
	}
}

func (r *LocationResolver) tagBase(tags []string) string {
	if len(tags) == 0 {
		return r.rules.Symbols.Present
	}
	return strings.Join(tags, "/")
}

func firstMapping(table []KeywordMapping, search string) (string, bool) {
	for _, m := range table {
		if m.Keyword != "" && strings.Contains(search, m.Keyword) {
			return m.Symbol, true
		}
	}
	return "", false
}

func anyTag(tags []string, pred func(string) bool) bool {
	for _, t := range tags {
		if pred(t) {
			return true
		}
	}
	return false
}
