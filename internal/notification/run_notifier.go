package notification

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/garyjia/attendance-sheet/internal/models"
	"go.uber.org/zap"
)

// maxListedFailures bounds how many failed employees are named in a message
const maxListedFailures = 5

// Notifier announces finished runs
type Notifier interface {
	NotifyRun(ctx context.Context, run *models.Run) error
}

// Sender posts messages to a chat
type Sender interface {
	SendText(ctx context.Context, chatID, text string) (string, error)
	SendFile(ctx context.Context, chatID, path string) (string, error)
}

// RunNotifier posts run summaries to a Lark group chat
type RunNotifier struct {
	sender       Sender
	chatID       string
	attachOutput bool
	logger       *zap.Logger
}

// NewRunNotifier creates a notifier posting to chatID. With attachOutput the
// filled sheet of a completed run follows the summary as a file message.
func NewRunNotifier(sender Sender, chatID string, attachOutput bool, logger *zap.Logger) *RunNotifier {
	return &RunNotifier{
		sender:       sender,
		chatID:       chatID,
		attachOutput: attachOutput,
		logger:       logger,
	}
}

// NotifyRun sends the summary of a finished run
func (n *RunNotifier) NotifyRun(ctx context.Context, run *models.Run) error {
	messageID, err := n.sender.SendText(ctx, n.chatID, FormatRun(run))
	if err != nil {
		return fmt.Errorf("failed to notify run %s: %w", run.ID, err)
	}

	n.logger.Info("Run notification sent",
		zap.String("run_id", run.ID),
		zap.String("message_id", messageID))

	if !n.attachOutput || run.Status != models.RunStatusCompleted || run.OutputFile == "" {
		return nil
	}

	fileMessageID, err := n.sender.SendFile(ctx, n.chatID, run.OutputFile)
	if err != nil {
		return fmt.Errorf("failed to attach output of run %s: %w", run.ID, err)
	}

	n.logger.Info("Run output attached",
		zap.String("run_id", run.ID),
		zap.String("message_id", fileMessageID))
	return nil
}

// NopNotifier is used when no chat is configured
type NopNotifier struct{}

// NotifyRun does nothing
func (NopNotifier) NotifyRun(context.Context, *models.Run) error { return nil }

// FormatRun renders the chat message for a run
func FormatRun(run *models.Run) string {
	var b strings.Builder

	switch run.Status {
	case models.RunStatusFailed:
		b.WriteString("考勤表生成失败\n")
	default:
		b.WriteString("考勤表已生成\n")
	}

	if run.PeriodStart != "" {
		fmt.Fprintf(&b, "统计周期: %s ~ %s\n", run.PeriodStart, run.PeriodEnd)
	}
	if run.OutputFile != "" {
		fmt.Fprintf(&b, "输出文件: %s\n", filepath.Base(run.OutputFile))
	}
	fmt.Fprintf(&b, "处理人数: %d, 跳过: %d, 失败: %d", run.Processed, run.Skipped, run.Failed)

	if run.ErrorMessage != "" {
		fmt.Fprintf(&b, "\n错误: %s", run.ErrorMessage)
	}

	for i, f := range run.Failures {
		if i == maxListedFailures {
			fmt.Fprintf(&b, "\n... 另有 %d 人失败", len(run.Failures)-maxListedFailures)
			break
		}
		fmt.Fprintf(&b, "\n- %s: %s", f.Employee, f.Message)
	}

	return b.String()
}
