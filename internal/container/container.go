package container

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/garyjia/attendance-sheet/internal/application/port"
	"github.com/garyjia/attendance-sheet/internal/application/service"
	"github.com/garyjia/attendance-sheet/internal/config"
	"github.com/garyjia/attendance-sheet/pkg/database"
	"go.uber.org/zap"
)

// Container manages all application dependencies and lifecycle.
// Components are initialized in dependency order and torn down in reverse.
type Container struct {
	config *config.Config
	logger *zap.Logger

	db       *database.DB
	runs     port.RunRepository
	notifier port.RunNotifier
	storage  *StorageBundle
	sheets   service.SheetService

	mu     sync.RWMutex
	ready  atomic.Bool
	closed atomic.Bool
}

// HealthStatus represents the health of all components
type HealthStatus struct {
	Overall    bool                       `json:"overall"`
	Components map[string]ComponentHealth `json:"components"`
}

// ComponentHealth represents health of a single component
type ComponentHealth struct {
	Healthy bool   `json:"healthy"`
	Message string `json:"message,omitempty"`
}

// NewContainer creates a new container from configuration.
// It does not initialize components; call Start for that.
func NewContainer(cfg *config.Config, logger *zap.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Container{
		config: cfg,
		logger: logger,
	}, nil
}

// Start initializes all components:
// 1. Database, migrations and the run log repository
// 2. Notifier
// 3. Storage
// 4. Sheet service
func (c *Container) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Load() {
		return fmt.Errorf("container has been closed")
	}
	if c.ready.Load() {
		return fmt.Errorf("container already started")
	}

	c.logger.Info("Starting container initialization")

	db, err := ProvideDatabase(ctx, c.config, c.logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	c.db = db
	c.runs = ProvideRunRepository(db, c.logger)
	c.logger.Info("Database initialized")

	c.notifier = ProvideNotifier(c.config, c.logger)
	c.storage = ProvideStorage(c.config, c.logger)

	sheets, err := ProvideSheetService(c.config, c.runs, c.notifier, c.logger)
	if err != nil {
		_ = c.db.Close()
		c.db = nil
		return fmt.Errorf("failed to initialize sheet service: %w", err)
	}
	c.sheets = sheets
	c.logger.Info("Sheet service initialized")

	c.ready.Store(true)
	c.logger.Info("Container started successfully")
	return nil
}

// Close shuts down all components in reverse order
func (c *Container) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Load() {
		return fmt.Errorf("container already closed")
	}
	c.logger.Info("Closing container")

	var closeErr error
	if c.db != nil {
		if err := c.db.Close(); err != nil {
			c.logger.Error("Failed to close database", zap.Error(err))
			closeErr = fmt.Errorf("close database: %w", err)
		}
	}

	c.closed.Store(true)
	c.ready.Store(false)
	return closeErr
}

// Ready returns true when all components are initialized
func (c *Container) Ready() bool {
	return c.ready.Load()
}

// SheetService returns the sheet service
func (c *Container) SheetService() service.SheetService {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sheets
}

// Runs returns the run log repository
func (c *Container) Runs() port.RunRepository {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.runs
}

// Storage returns the upload and output stores
func (c *Container) Storage() *StorageBundle {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.storage
}

// Health returns health status of all components
func (c *Container) Health(ctx context.Context) *HealthStatus {
	c.mu.RLock()
	defer c.mu.RUnlock()

	status := &HealthStatus{
		Overall:    true,
		Components: make(map[string]ComponentHealth),
	}

	switch {
	case c.db == nil:
		status.Components["database"] = ComponentHealth{Message: "not initialized"}
		status.Overall = false
	default:
		if err := c.db.PingContext(ctx); err != nil {
			status.Components["database"] = ComponentHealth{Message: fmt.Sprintf("ping failed: %v", err)}
			status.Overall = false
		} else {
			status.Components["database"] = ComponentHealth{Healthy: true}
		}
	}

	if c.sheets == nil {
		status.Components["sheet_service"] = ComponentHealth{Message: "not initialized"}
		status.Overall = false
	} else {
		status.Components["sheet_service"] = ComponentHealth{Healthy: true}
	}

	status.Components["notifier"] = ComponentHealth{
		Healthy: true,
		Message: notifierMode(c.config),
	}

	return status
}

func notifierMode(cfg *config.Config) string {
	if cfg.Lark.Enabled() {
		return "lark"
	}
	return "disabled"
}
