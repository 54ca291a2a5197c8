package container

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/garyjia/attendance-sheet/internal/config"
	"github.com/garyjia/attendance-sheet/internal/notification"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	v := viper.New()
	v.Set("database.path", filepath.Join(dir, "data", "runs.db"))
	v.Set("output.dir", filepath.Join(dir, "out"))
	v.Set("server.upload_dir", filepath.Join(dir, "uploads"))
	cfg, err := config.LoadWith(v, "")
	require.NoError(t, err)
	return cfg
}

func TestContainer_Lifecycle(t *testing.T) {
	cfg := testConfig(t)
	c, err := NewContainer(cfg, zap.NewNop())
	require.NoError(t, err)
	assert.False(t, c.Ready())

	ctx := context.Background()
	require.NoError(t, c.Start(ctx))
	assert.True(t, c.Ready())
	assert.Error(t, c.Start(ctx), "second start")

	assert.NotNil(t, c.SheetService())
	assert.NotNil(t, c.Runs())
	require.NotNil(t, c.Storage())

	health := c.Health(ctx)
	assert.True(t, health.Overall)
	assert.Equal(t, "disabled", health.Components["notifier"].Message)

	// the run log is migrated and usable
	runs, err := c.Runs().List(ctx, 5)
	require.NoError(t, err)
	assert.Empty(t, runs)

	require.NoError(t, c.Close())
	assert.False(t, c.Ready())
	assert.Error(t, c.Close())
	assert.Error(t, c.Start(ctx))
}

func TestNewContainer_Validation(t *testing.T) {
	_, err := NewContainer(nil, zap.NewNop())
	assert.Error(t, err)

	_, err = NewContainer(testConfig(t), nil)
	assert.Error(t, err)

	cfg := testConfig(t)
	cfg.Template.Sheet = ""
	_, err = NewContainer(cfg, zap.NewNop())
	assert.Error(t, err)
}

func TestProvideNotifier(t *testing.T) {
	cfg := testConfig(t)
	assert.IsType(t, notification.NopNotifier{}, ProvideNotifier(cfg, zap.NewNop()))

	cfg.Lark.AppID = "cli_x"
	cfg.Lark.AppSecret = "secret"
	cfg.Lark.ChatID = "oc_x"
	assert.IsType(t, &notification.RunNotifier{}, ProvideNotifier(cfg, zap.NewNop()))
}

func TestConfigMapping(t *testing.T) {
	cfg := testConfig(t)

	layout := SheetLayout(cfg)
	assert.Equal(t, "当月考勤", layout.Sheet)
	assert.Equal(t, 2, layout.NameColumn)
	assert.Equal(t, 4, layout.DataStartRow)
	assert.Equal(t, 14, layout.FallbackDateColumn)
	assert.Equal(t, 49, layout.HeaderScanColumns)

	reader, err := ReaderConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, "2025-11-26 ~ 2025-12-25", reader.DefaultPeriod.String())

	svc := ServiceConfig(cfg)
	assert.Equal(t, "结果-本月考勤_", svc.OutputPrefix)
	assert.Equal(t, cfg.Output.Dir, svc.OutputDir)
}
