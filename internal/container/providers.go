// Package container wires configuration into components and owns their
// lifecycle.
package container

import (
	"context"
	"fmt"

	"github.com/garyjia/attendance-sheet/internal/application/port"
	"github.com/garyjia/attendance-sheet/internal/application/service"
	"github.com/garyjia/attendance-sheet/internal/attendance"
	"github.com/garyjia/attendance-sheet/internal/config"
	"github.com/garyjia/attendance-sheet/internal/dingtalk"
	"github.com/garyjia/attendance-sheet/internal/lark"
	"github.com/garyjia/attendance-sheet/internal/notification"
	"github.com/garyjia/attendance-sheet/internal/repository"
	"github.com/garyjia/attendance-sheet/internal/storage"
	"github.com/garyjia/attendance-sheet/pkg/database"
	"go.uber.org/zap"
)

// StorageBundle holds the upload and output stores
type StorageBundle struct {
	Uploads       *storage.LocalFileStorage
	UploadFolders *storage.FolderManager
	Outputs       *storage.LocalFileStorage
	OutputFolders *storage.FolderManager
}

// ProvideDatabase opens the run log database and applies pending migrations
func ProvideDatabase(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*database.DB, error) {
	db, err := database.New(DatabaseConfig(cfg), logger)
	if err != nil {
		return nil, err
	}

	if err := database.NewMigrator(db, logger).RunMigrations(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return db, nil
}

// ProvideNotifier returns a Lark notifier, or a no-op one when Lark is not configured
func ProvideNotifier(cfg *config.Config, logger *zap.Logger) port.RunNotifier {
	if !cfg.Lark.Enabled() {
		logger.Info("Lark notifications disabled")
		return notification.NopNotifier{}
	}

	client := lark.NewClient(LarkConfig(cfg), logger)
	messages := lark.NewMessageAPI(client, logger)
	return notification.NewRunNotifier(messages, cfg.Lark.ChatID, cfg.Lark.AttachOutput, logger)
}

// ProvideStorage creates the stores below the upload and output roots
func ProvideStorage(cfg *config.Config, logger *zap.Logger) *StorageBundle {
	uploads, outputs := UploadDir(cfg), OutputDir(cfg)
	return &StorageBundle{
		Uploads:       storage.NewLocalFileStorage(uploads, logger),
		UploadFolders: storage.NewFolderManager(uploads, logger),
		Outputs:       storage.NewLocalFileStorage(outputs, logger),
		OutputFolders: storage.NewFolderManager(outputs, logger),
	}
}

// ProvideSheetService builds the engine, reader and sheet service
func ProvideSheetService(
	cfg *config.Config,
	runs port.RunRepository,
	notifier port.RunNotifier,
	logger *zap.Logger,
) (service.SheetService, error) {
	engine, err := attendance.NewEngine(cfg.Rules, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create attendance engine: %w", err)
	}

	readerCfg, err := ReaderConfig(cfg)
	if err != nil {
		return nil, err
	}
	reader := dingtalk.NewReader(readerCfg, logger)

	return service.NewSheetService(ServiceConfig(cfg), reader, engine, runs, notifier, logger), nil
}

// ProvideRunRepository creates the run log repository over db
func ProvideRunRepository(db *database.DB, logger *zap.Logger) *repository.RunRepository {
	return repository.NewRunRepository(db.DB, logger)
}
