package repository

import (
	"context"
	"time"

	"github.com/vfaivre/thumbdesk/internal/domain/model"
)

// OrderRepository describes persistence operations with orders.
type OrderRepository interface {
	Create(ctx context.Context, order *model.Order) (*model.Order, error)
	GetByID(ctx context.Context, id int64) (*model.Order, error)
	ListByClient(ctx context.Context, clientID int64) ([]model.Order, error)
	ListAll(ctx context.Context) ([]model.Order, error)
	ListBillableUnpaid(ctx context.Context, clientID int64) ([]model.Order, error)
	UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus, updatedAt time.Time) error
	// MarkPaid flips paid, in a single guarded flush, on every listed order
	// that still belongs to the client, is unpaid, and is billable. Returns
	// the number of rows actually updated.
	MarkPaid(ctx context.Context, clientID int64, orderIDs []int64) (int, error)
}
