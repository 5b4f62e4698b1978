package repository

import (
	"context"

	"github.com/vfaivre/thumbdesk/internal/domain/model"
)

// TimeEntryRepository provides access to per-order time tracking.
type TimeEntryRepository interface {
	Create(ctx context.Context, orderID int64, minutes int, note string) (*model.TimeEntry, error)
	ListByOrder(ctx context.Context, orderID int64) ([]model.TimeEntry, error)
}
