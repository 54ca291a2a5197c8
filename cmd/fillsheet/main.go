package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	"github.com/garyjia/attendance-sheet/internal/application/service"
	"github.com/garyjia/attendance-sheet/internal/config"
	"github.com/garyjia/attendance-sheet/internal/container"
	"github.com/garyjia/attendance-sheet/pkg/utils"
)

func main() {
	os.Exit(run())
}

func run() int {
	flags := pflag.NewFlagSet("fillsheet", pflag.ContinueOnError)
	configPath := flags.String("config", "", "path to the YAML configuration file (optional)")
	source := flags.String("source", "", "DingTalk monthly export (.xlsx)")
	flags.String("template", "", "attendance template (overrides template.path)")
	flags.String("output-dir", "", "output directory (overrides output.dir)")
	if err := flags.Parse(os.Args[1:]); err != nil {
		return 2
	}
	if *source == "" && flags.NArg() > 0 {
		*source = flags.Arg(0)
	}
	if *source == "" {
		fmt.Fprintln(os.Stderr, "usage: fillsheet --source <export.xlsx> [--template <template.xlsx>] [--output-dir <dir>] [--config <config.yaml>]")
		return 2
	}
	if err := utils.ValidateWorkbookName(*source); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid source: %v\n", err)
		return 2
	}

	_ = gotenv.Load()

	v := viper.New()
	for key, name := range map[string]string{"template.path": "template", "output.dir": "output-dir"} {
		if f := flags.Lookup(name); f.Changed {
			_ = v.BindPFlag(key, f)
		}
	}

	cfg, err := config.LoadWith(v, *configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		return 1
	}

	// stdout carries the JSON result
	logPath := cfg.Logger.OutputPath
	if logPath == "" || logPath == "stdout" {
		logPath = "stderr"
	}
	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: logPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		return 1
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c, err := container.NewContainer(cfg, logger)
	if err != nil {
		logger.Error("Failed to create container", zap.Error(err))
		return 1
	}
	if err := c.Start(ctx); err != nil {
		logger.Error("Failed to start container", zap.Error(err))
		return 1
	}
	defer c.Close()

	result, err := c.SheetService().Generate(ctx, service.Request{SourcePath: *source})
	if err != nil {
		logger.Error("Failed to generate attendance sheet", zap.Error(err))
		return 1
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		logger.Error("Failed to print result", zap.Error(err))
		return 1
	}
	return 0
}
