package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	"github.com/garyjia/attendance-sheet/internal/config"
	"github.com/garyjia/attendance-sheet/internal/container"
	httpserver "github.com/garyjia/attendance-sheet/internal/interfaces/http"
	"github.com/garyjia/attendance-sheet/pkg/utils"
)

func main() {
	configPath := pflag.String("config", "configs/config.yaml", "path to the YAML configuration file")
	pflag.Int("port", 0, "HTTP port (overrides server.port)")
	pflag.Parse()

	// .env is optional
	_ = gotenv.Load()

	v := viper.New()
	if f := pflag.Lookup("port"); f != nil && f.Changed {
		_ = v.BindPFlag("server.port", f)
	}

	cfg, err := config.LoadWith(v, *configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting attendance sheet server",
		zap.String("version", "1.0.0"),
		zap.Int("port", cfg.Server.Port),
		zap.String("template", cfg.Template.Path))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c, err := container.NewContainer(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to create container", zap.Error(err))
	}
	if err := c.Start(ctx); err != nil {
		logger.Fatal("Failed to start container", zap.Error(err))
	}
	defer c.Close()

	stores := c.Storage()
	server := httpserver.NewServer(httpserver.ServerConfig{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		MaxUploadMB:  cfg.Server.MaxUploadMB,
	}, httpserver.Dependencies{
		Sheets:        c.SheetService(),
		Runs:          c.Runs(),
		Uploads:       stores.Uploads,
		UploadFolders: stores.UploadFolders,
		Outputs:       stores.Outputs,
		OutputFolders: stores.OutputFolders,
		Health: func(ctx context.Context) (bool, interface{}) {
			h := c.Health(ctx)
			return h.Overall, h.Components
		},
	}, logger)

	// Start blocks until the signal context is cancelled, then shuts down
	if err := server.Start(ctx); err != nil {
		logger.Error("Server stopped with error", zap.Error(err))
		return
	}

	logger.Info("Server exited successfully")
}
