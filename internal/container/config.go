package container

import (
	"fmt"
	"path/filepath"

	"github.com/garyjia/attendance-sheet/internal/application/service"
	"github.com/garyjia/attendance-sheet/internal/attendance"
	"github.com/garyjia/attendance-sheet/internal/config"
	"github.com/garyjia/attendance-sheet/internal/dingtalk"
	"github.com/garyjia/attendance-sheet/internal/lark"
	"github.com/garyjia/attendance-sheet/internal/sheet"
	"github.com/garyjia/attendance-sheet/pkg/database"
)

// ReaderConfig maps the source section onto the export reader
func ReaderConfig(cfg *config.Config) (dingtalk.Config, error) {
	def, err := attendance.NewPeriod(cfg.Source.DefaultStart, cfg.Source.DefaultEnd)
	if err != nil {
		return dingtalk.Config{}, fmt.Errorf("invalid default period: %w", err)
	}
	return dingtalk.Config{
		SummarySheet:  cfg.Source.SummarySheet,
		RecordsSheet:  cfg.Source.RecordsSheet,
		DefaultPeriod: def,
	}, nil
}

// SheetLayout maps the template section onto the template layout
func SheetLayout(cfg *config.Config) sheet.Layout {
	return sheet.Layout{
		Sheet:              cfg.Template.Sheet,
		NameColumn:         cfg.Template.NameColumn,
		DataStartRow:       cfg.Template.DataStartRow,
		FallbackDateColumn: cfg.Template.FallbackDateCol,
		HeaderScanColumns:  cfg.Template.HeaderScanColumns,
	}
}

// ServiceConfig maps template and output settings onto the sheet service
func ServiceConfig(cfg *config.Config) service.Config {
	return service.Config{
		TemplatePath: cfg.Template.Path,
		OutputDir:    cfg.Output.Dir,
		OutputPrefix: cfg.Output.Prefix,
		Layout:       SheetLayout(cfg),
	}
}

// DatabaseConfig maps the database section onto the sqlite wrapper
func DatabaseConfig(cfg *config.Config) database.Config {
	return database.Config{
		Path:            cfg.Database.Path,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}
}

// LarkConfig maps the lark section onto the SDK client
func LarkConfig(cfg *config.Config) lark.Config {
	return lark.Config{
		AppID:      cfg.Lark.AppID,
		AppSecret:  cfg.Lark.AppSecret,
		APITimeout: cfg.Lark.APITimeout,
	}
}

// UploadDir is where the HTTP server stores uploaded exports
func UploadDir(cfg *config.Config) string {
	return filepath.Clean(cfg.Server.UploadDir)
}

// OutputDir is the root of generated sheets
func OutputDir(cfg *config.Config) string {
	return filepath.Clean(cfg.Output.Dir)
}
