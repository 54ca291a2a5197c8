package port

import (
	"context"

	"github.com/garyjia/attendance-sheet/internal/models"
)

// RunRepository defines persistence operations for the run log
type RunRepository interface {
	Create(ctx context.Context, run *models.Run) error
	Finish(ctx context.Context, run *models.Run) error
	GetByID(ctx context.Context, id string) (*models.Run, error)
	List(ctx context.Context, limit int) ([]*models.Run, error)
}
