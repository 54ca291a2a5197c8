package notification

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/garyjia/attendance-sheet/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockSender records sent messages
type MockSender struct {
	chatID  string
	text    string
	files   []string
	err     error
	fileErr error
}

func (m *MockSender) SendText(ctx context.Context, chatID, text string) (string, error) {
	m.chatID = chatID
	m.text = text
	if m.err != nil {
		return "", m.err
	}
	return "om_1", nil
}

func (m *MockSender) SendFile(ctx context.Context, chatID, path string) (string, error) {
	if m.fileErr != nil {
		return "", m.fileErr
	}
	m.files = append(m.files, path)
	return "om_2", nil
}

func completedRun() *models.Run {
	return &models.Run{
		ID:          "run-1",
		OutputFile:  "/data/output/结果-本月考勤_11月.xlsx",
		PeriodStart: "2025-11-26",
		PeriodEnd:   "2025-12-25",
		Processed:   12,
		Skipped:     2,
		Failed:      1,
		Status:      models.RunStatusCompleted,
		Failures:    []models.RunFailure{{Employee: "张三", Message: "boom"}},
	}
}

func TestFormatRun(t *testing.T) {
	tests := []struct {
		name     string
		run      *models.Run
		expected string
	}{
		{
			name: "completed run",
			run:  completedRun(),
			expected: "考勤表已生成\n" +
				"统计周期: 2025-11-26 ~ 2025-12-25\n" +
				"输出文件: 结果-本月考勤_11月.xlsx\n" +
				"处理人数: 12, 跳过: 2, 失败: 1\n" +
				"- 张三: boom",
		},
		{
			name: "failed run",
			run: &models.Run{
				Status:       models.RunStatusFailed,
				ErrorMessage: "sheet not found in template: 当月考勤",
			},
			expected: "考勤表生成失败\n" +
				"处理人数: 0, 跳过: 0, 失败: 0\n" +
				"错误: sheet not found in template: 当月考勤",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatRun(tt.run))
		})
	}
}

func TestFormatRun_TruncatesFailures(t *testing.T) {
	run := completedRun()
	run.Failures = nil
	for i := 0; i < 8; i++ {
		run.Failures = append(run.Failures, models.RunFailure{Employee: fmt.Sprintf("员工%d", i), Message: "x"})
	}

	text := FormatRun(run)
	assert.Contains(t, text, "- 员工4: x")
	assert.NotContains(t, text, "员工5")
	assert.Contains(t, text, "另有 3 人失败")
}

func TestRunNotifier_NotifyRun(t *testing.T) {
	sender := &MockSender{}
	n := NewRunNotifier(sender, "oc_chat", false, zap.NewNop())

	require.NoError(t, n.NotifyRun(context.Background(), completedRun()))
	assert.Equal(t, "oc_chat", sender.chatID)
	assert.Contains(t, sender.text, "处理人数: 12")
	assert.Empty(t, sender.files)

	sender.err = errors.New("network down")
	err := n.NotifyRun(context.Background(), completedRun())
	assert.ErrorIs(t, err, sender.err)
}

func TestRunNotifier_AttachOutput(t *testing.T) {
	tests := []struct {
		name      string
		run       *models.Run
		wantFiles []string
	}{
		{
			name:      "completed run attaches the sheet",
			run:       completedRun(),
			wantFiles: []string{"/data/output/结果-本月考勤_11月.xlsx"},
		},
		{
			name: "failed run sends text only",
			run:  &models.Run{ID: "run-2", Status: models.RunStatusFailed, ErrorMessage: "boom"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sender := &MockSender{}
			n := NewRunNotifier(sender, "oc_chat", true, zap.NewNop())

			require.NoError(t, n.NotifyRun(context.Background(), tt.run))
			assert.Equal(t, tt.wantFiles, sender.files)
		})
	}
}

func TestRunNotifier_AttachOutputError(t *testing.T) {
	sender := &MockSender{fileErr: errors.New("upload rejected")}
	n := NewRunNotifier(sender, "oc_chat", true, zap.NewNop())

	err := n.NotifyRun(context.Background(), completedRun())
	assert.ErrorIs(t, err, sender.fileErr)
	assert.Contains(t, sender.text, "考勤表已生成")
}

func TestNopNotifier(t *testing.T) {
	var n Notifier = NopNotifier{}
	assert.NoError(t, n.NotifyRun(context.Background(), completedRun()))
}
