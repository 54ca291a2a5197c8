package port

import (
	"context"

	"github.com/garyjia/attendance-sheet/internal/models"
)

// RunNotifier announces finished runs, e.g. to a Lark chat
type RunNotifier interface {
	NotifyRun(ctx context.Context, run *models.Run) error
}
