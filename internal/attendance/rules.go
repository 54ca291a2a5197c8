package attendance

import (
	"fmt"
	"strings"
)

// KeywordMapping maps a keyword found in punch text to a location tag
type KeywordMapping struct {
	Keyword string `mapstructure:"keyword" json:"keyword"`
	Symbol  string `mapstructure:"symbol" json:"symbol"`
}

// OffsiteDepartment marks a department whose staff work off-site by default
type OffsiteDepartment struct {
	Keyword string `mapstructure:"keyword" json:"keyword"`
	Symbol  string `mapstructure:"symbol" json:"symbol"`
}

// Symbols is the display alphabet written into the sheet
type Symbols struct {
	Present       string `mapstructure:"present"`
	Rest          string `mapstructure:"rest"`
	Holiday       string `mapstructure:"holiday"`
	Leave         string `mapstructure:"leave"`
	SickLeave     string `mapstructure:"sick_leave"`
	AnnualLeave   string `mapstructure:"annual_leave"`
	CompLeave     string `mapstructure:"comp_leave"`
	CompLeaveHalf string `mapstructure:"comp_leave_half"`
	Absent        string `mapstructure:"absent"`
	Tardy         string `mapstructure:"tardy"`
	Overtime      string `mapstructure:"overtime"`
}

// Keywords are the status markers matched by containment
type Keywords struct {
	Holiday       string   `mapstructure:"holiday"`
	Rest          string   `mapstructure:"rest"`
	Leave         string   `mapstructure:"leave"`
	PersonalLeave string   `mapstructure:"personal_leave"`
	SickLeave     string   `mapstructure:"sick_leave"`
	AnnualLeave   string   `mapstructure:"annual_leave"`
	CompLeave     string   `mapstructure:"comp_leave"`
	Absent        string   `mapstructure:"absent"`
	TardyAbsent   string   `mapstructure:"tardy_absent"`
	Tardy         string   `mapstructure:"tardy"`
	Normal        string   `mapstructure:"normal"`
	FieldWork     string   `mapstructure:"field_work"`
	HalfDay       []string `mapstructure:"half_day"`
}

// Rules is the immutable keyword configuration consulted by the resolver and
// the classifier. Tables are ordered; the first match wins.
type Rules struct {
	ProjectMappings     []KeywordMapping  `mapstructure:"project_mappings"`
	CityAbbreviations   []KeywordMapping  `mapstructure:"city_abbreviations"`
	SupplementaryCities []string          `mapstructure:"supplementary_cities"`
	Municipalities      []string          `mapstructure:"municipalities"`
	ProvinceIn          []string          `mapstructure:"province_in"`
	ProvinceOut         []string          `mapstructure:"province_out"`
	OffsiteDepartment   OffsiteDepartment `mapstructure:"offsite_department"`
	SiteDaysDepartments []string          `mapstructure:"site_days_departments"`
	Symbols             Symbols           `mapstructure:"symbols"`
	Keywords            Keywords          `mapstructure:"keywords"`
}

// DefaultRules returns the rule set used by the attendance office
func DefaultRules() Rules {
	return Rules{
		ProjectMappings: []KeywordMapping{
			{Keyword: "黄河国际会展中心", Symbol: "会展"},
			{Keyword: "济宁大安机场", Symbol: "大安机场"},
			{Keyword: "济宁文化中心", Symbol: "文化中心"},
			{Keyword: "美年大健康", Symbol: "南京"},
			{Keyword: "邵寨", Symbol: "邵寨"},
		},
		CityAbbreviations: []KeywordMapping{
			{Keyword: "梁宝寺", Symbol: "梁"},
			{Keyword: "郓", Symbol: "郓"},
			{Keyword: "郓城", Symbol: "郓"},
			{Keyword: "白庄", Symbol: "白"},
			{Keyword: "曲阜", Symbol: "曲"},
			{Keyword: "尼山", Symbol: "曲"},
			{Keyword: "北京", Symbol: "京"},
			{Keyword: "博兴", Symbol: "博"},
			{Keyword: "聊城", Symbol: "聊"},
			{Keyword: "内蒙", Symbol: "蒙"},
			{Keyword: "枣庄", Symbol: "枣"},
			{Keyword: "新驿", Symbol: "新"},
			{Keyword: "贵州", Symbol: "贵"},
		},
		SupplementaryCities: []string{"威海", "门源", "龙口", "方城", "兖州", "济宁"},
		Municipalities:      []string{"北京", "上海", "天津", "重庆"},
		ProvinceIn: []string{
			"济南", "威海", "济宁", "曲阜", "兖州", "龙口", "烟台", "青岛", "淄博", "emc", "公司", "本部",
			"会展", "大安机场", "文化中心",
			"济", "白", "曲", "郓", "枣", "新", "梁", "博", "聊",
		},
		ProvinceOut: []string{
			"北京", "门源", "邵寨", "方城", "上海", "深圳", "河南", "甘肃", "南京",
			"京", "蒙", "贵",
		},
		OffsiteDepartment:   OffsiteDepartment{Keyword: "邵寨", Symbol: "邵寨"},
		SiteDaysDepartments: []string{"运维", "工程技术"},
		Symbols: Symbols{
			Present:       "√",
			Rest:          "○",
			Holiday:       "※",
			Leave:         "假",
			SickLeave:     "病假",
			AnnualLeave:   "年",
			CompLeave:     "调休",
			CompLeaveHalf: "调",
			Absent:        "×",
			Tardy:         "迟",
			Overtime:      "+",
		},
		Keywords: Keywords{
			Holiday:       "节假日",
			Rest:          "休息",
			Leave:         "请假",
			PersonalLeave: "事假",
			SickLeave:     "病假",
			AnnualLeave:   "年假",
			CompLeave:     "调休",
			Absent:        "旷工",
			TardyAbsent:   "旷工迟到",
			Tardy:         "迟到",
			Normal:        "正常",
			FieldWork:     "外勤",
			HalfDay:       []string{"0.5", "半天"},
		},
	}
}

// Validate reports rule sets that would make every day ambiguous
func (r Rules) Validate() error {
	if r.Symbols.Present == "" || r.Symbols.Rest == "" {
		return fmt.Errorf("%w: present and rest symbols are required", ErrInvalidRules)
	}
	if r.Keywords.Normal == "" {
		return fmt.Errorf("%w: normal keyword is required", ErrInvalidRules)
	}
	for i, m := range append(append([]KeywordMapping{}, r.ProjectMappings...), r.CityAbbreviations...) {
		if m.Keyword == "" || m.Symbol == "" {
			return fmt.Errorf("%w: mapping %d has an empty keyword or symbol", ErrInvalidRules, i)
		}
	}
	return nil
}

// IsProvinceOut reports whether tag is listed as outside the region
func (r Rules) IsProvinceOut(tag string) bool {
	return containsExact(r.ProvinceOut, tag)
}

// IsProvinceIn reports whether tag is listed as inside the region
func (r Rules) IsProvinceIn(tag string) bool {
	return containsExact(r.ProvinceIn, tag)
}

// TracksSiteDays reports whether the department gets an on-site day total
func (r Rules) TracksSiteDays(department string) bool {
	return containsAny(department, r.SiteDaysDepartments)
}

func containsExact(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if k != "" && strings.Contains(s, k) {
			return true
		}
	}
	return false
}
