package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/garyjia/attendance-sheet/internal/attendance"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig     `mapstructure:"server"`
	Database DatabaseConfig   `mapstructure:"database"`
	Lark     LarkConfig       `mapstructure:"lark"`
	Source   SourceConfig     `mapstructure:"source"`
	Template TemplateConfig   `mapstructure:"template"`
	Output   OutputConfig     `mapstructure:"output"`
	Rules    attendance.Rules `mapstructure:"rules"`
	Logger   LoggerConfig     `mapstructure:"logger"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	MaxUploadMB  int64         `mapstructure:"max_upload_mb"`
	UploadDir    string        `mapstructure:"upload_dir"`
}

// DatabaseConfig holds the run log database configuration
type DatabaseConfig struct {
	Path            string        `mapstructure:"path"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// LarkConfig holds the optional run notification target
type LarkConfig struct {
	AppID        string        `mapstructure:"app_id"`
	AppSecret    string        `mapstructure:"app_secret"`
	ChatID       string        `mapstructure:"chat_id"`
	AttachOutput bool          `mapstructure:"attach_output"`
	APITimeout   time.Duration `mapstructure:"api_timeout"`
}

// Enabled reports whether run notifications should be sent
func (c LarkConfig) Enabled() bool {
	return c.AppID != "" && c.AppSecret != "" && c.ChatID != ""
}

// SourceConfig describes the DingTalk monthly export
type SourceConfig struct {
	SummarySheet string `mapstructure:"summary_sheet"`
	RecordsSheet string `mapstructure:"records_sheet"`
	DefaultStart string `mapstructure:"default_start"`
	DefaultEnd   string `mapstructure:"default_end"`
}

// TemplateConfig describes the attendance sheet template
type TemplateConfig struct {
	Path              string `mapstructure:"path"`
	Sheet             string `mapstructure:"sheet"`
	NameColumn        int    `mapstructure:"name_column"`
	DataStartRow      int    `mapstructure:"data_start_row"`
	FallbackDateCol   int    `mapstructure:"fallback_date_column"`
	HeaderScanColumns int    `mapstructure:"header_scan_columns"`
}

// OutputConfig controls where filled sheets are written
type OutputConfig struct {
	Dir    string `mapstructure:"dir"`
	Prefix string `mapstructure:"prefix"`
}

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	OutputPath string `mapstructure:"output_path"`
	Format     string `mapstructure:"format"`
}

// Load loads configuration from file and environment variables.
// An empty configPath uses defaults and environment only.
func Load(configPath string) (*Config, error) {
	return LoadWith(viper.New(), configPath)
}

// LoadWith loads configuration into v, which may already carry bound flags
func LoadWith(v *viper.Viper, configPath string) (*Config, error) {
	v.SetEnvPrefix("ATTENDANCE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set defaults
	setDefaults(v)

	// Read config file
	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Override with environment variables
	bindEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 60*time.Second)
	v.SetDefault("server.write_timeout", 120*time.Second)
	v.SetDefault("server.max_upload_mb", 20)
	v.SetDefault("server.upload_dir", "uploads")

	// Database defaults
	v.SetDefault("database.path", "data/attendance.db")
	v.SetDefault("database.max_open_conns", 1)
	v.SetDefault("database.max_idle_conns", 1)
	v.SetDefault("database.conn_max_lifetime", 5*time.Minute)

	// Lark defaults
	v.SetDefault("lark.api_timeout", 30*time.Second)

	// Source defaults
	v.SetDefault("source.summary_sheet", "月度汇总")
	v.SetDefault("source.records_sheet", "原始记录")
	v.SetDefault("source.default_start", "2025-11-26")
	v.SetDefault("source.default_end", "2025-12-25")

	// Template defaults
	v.SetDefault("template.path", "模板-考勤.xlsx")
	v.SetDefault("template.sheet", "当月考勤")
	v.SetDefault("template.name_column", 2)
	v.SetDefault("template.data_start_row", 4)
	v.SetDefault("template.fallback_date_column", 14)
	v.SetDefault("template.header_scan_columns", 49)

	// Output defaults
	v.SetDefault("output.dir", ".")
	v.SetDefault("output.prefix", "结果-本月考勤_")

	// Rule defaults; each table is replaced as a whole when configured
	setRuleDefaults(v, attendance.DefaultRules())

	// Logger defaults
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.output_path", "stdout")
	v.SetDefault("logger.format", "console")
}

func setRuleDefaults(v *viper.Viper, r attendance.Rules) {
	v.SetDefault("rules.project_mappings", mappingDefaults(r.ProjectMappings))
	v.SetDefault("rules.city_abbreviations", mappingDefaults(r.CityAbbreviations))
	v.SetDefault("rules.supplementary_cities", r.SupplementaryCities)
	v.SetDefault("rules.municipalities", r.Municipalities)
	v.SetDefault("rules.province_in", r.ProvinceIn)
	v.SetDefault("rules.province_out", r.ProvinceOut)
	v.SetDefault("rules.offsite_department.keyword", r.OffsiteDepartment.Keyword)
	v.SetDefault("rules.offsite_department.symbol", r.OffsiteDepartment.Symbol)
	v.SetDefault("rules.site_days_departments", r.SiteDaysDepartments)

	s := r.Symbols
	v.SetDefault("rules.symbols.present", s.Present)
	v.SetDefault("rules.symbols.rest", s.Rest)
	v.SetDefault("rules.symbols.holiday", s.Holiday)
	v.SetDefault("rules.symbols.leave", s.Leave)
	v.SetDefault("rules.symbols.sick_leave", s.SickLeave)
	v.SetDefault("rules.symbols.annual_leave", s.AnnualLeave)
	v.SetDefault("rules.symbols.comp_leave", s.CompLeave)
	v.SetDefault("rules.symbols.comp_leave_half", s.CompLeaveHalf)
	v.SetDefault("rules.symbols.absent", s.Absent)
	v.SetDefault("rules.symbols.tardy", s.Tardy)
	v.SetDefault("rules.symbols.overtime", s.Overtime)

	k := r.Keywords
	v.SetDefault("rules.keywords.holiday", k.Holiday)
	v.SetDefault("rules.keywords.rest", k.Rest)
	v.SetDefault("rules.keywords.leave", k.Leave)
	v.SetDefault("rules.keywords.personal_leave", k.PersonalLeave)
	v.SetDefault("rules.keywords.sick_leave", k.SickLeave)
	v.SetDefault("rules.keywords.annual_leave", k.AnnualLeave)
	v.SetDefault("rules.keywords.comp_leave", k.CompLeave)
	v.SetDefault("rules.keywords.absent", k.Absent)
	v.SetDefault("rules.keywords.tardy_absent", k.TardyAbsent)
	v.SetDefault("rules.keywords.tardy", k.Tardy)
	v.SetDefault("rules.keywords.normal", k.Normal)
	v.SetDefault("rules.keywords.field_work", k.FieldWork)
	v.SetDefault("rules.keywords.half_day", k.HalfDay)
}

// mappingDefaults renders mappings the way they appear after YAML decoding
func mappingDefaults(mappings []attendance.KeywordMapping) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(mappings))
	for _, m := range mappings {
		out = append(out, map[string]interface{}{"keyword": m.Keyword, "symbol": m.Symbol})
	}
	return out
}

// bindEnvVars binds environment variables to configuration
func bindEnvVars(v *viper.Viper) {
	// Credentials and paths commonly set per machine
	_ = v.BindEnv("lark.app_id", "LARK_APP_ID")
	_ = v.BindEnv("lark.app_secret", "LARK_APP_SECRET")
	_ = v.BindEnv("lark.chat_id", "LARK_CHAT_ID")
	_ = v.BindEnv("template.path", "ATTENDANCE_TEMPLATE_PATH")
	_ = v.BindEnv("output.dir", "ATTENDANCE_OUTPUT_DIR")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Template.Sheet == "" {
		return fmt.Errorf("template.sheet is required")
	}
	if c.Template.NameColumn < 1 {
		return fmt.Errorf("template.name_column must be at least 1")
	}
	if c.Template.DataStartRow < 1 {
		return fmt.Errorf("template.data_start_row must be at least 1")
	}
	if c.Source.SummarySheet == "" || c.Source.RecordsSheet == "" {
		return fmt.Errorf("source.summary_sheet and source.records_sheet are required")
	}
	if _, err := attendance.NewPeriod(c.Source.DefaultStart, c.Source.DefaultEnd); err != nil {
		return fmt.Errorf("source default period: %w", err)
	}
	if err := c.Rules.Validate(); err != nil {
		return err
	}
	if (c.Lark.AppID == "") != (c.Lark.AppSecret == "") {
		return fmt.Errorf("lark.app_id and lark.app_secret must be set together")
	}
	return nil
}
