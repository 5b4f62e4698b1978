package usecase

import (
	"context"

	domainErrors "github.com/vfaivre/thumbdesk/internal/domain/errors"
	"github.com/vfaivre/thumbdesk/internal/domain/model"
	"github.com/vfaivre/thumbdesk/internal/domain/repository"
)

// TimeEntryUseCase tracks minutes worked per order.
type TimeEntryUseCase struct {
	entries repository.TimeEntryRepository
	orders  repository.OrderRepository
}

// NewTimeEntryUseCase constructs TimeEntryUseCase.
func NewTimeEntryUseCase(entries repository.TimeEntryRepository, orders repository.OrderRepository) *TimeEntryUseCase {
	return &TimeEntryUseCase{entries: entries, orders: orders}
}

// Track records a time entry against an existing order.
func (u *TimeEntryUseCase) Track(ctx context.Context, orderID int64, minutes int, note string) (*model.TimeEntry, error) {
	if minutes <= 0 {
		return nil, domainErrors.ErrInvalidTimeEntry
	}
	if _, err := u.orders.GetByID(ctx, orderID); err != nil {
		return nil, err
	}
	return u.entries.Create(ctx, orderID, minutes, note)
}

// ListByOrder returns recorded entries for an order.
func (u *TimeEntryUseCase) ListByOrder(ctx context.Context, orderID int64) ([]model.TimeEntry, error) {
	return u.entries.ListByOrder(ctx, orderID)
}
