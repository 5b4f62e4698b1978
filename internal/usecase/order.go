package usecase

import (
	"context"
	"strings"
	"time"

	domainErrors "github.com/vfaivre/thumbdesk/internal/domain/errors"
	"github.com/vfaivre/thumbdesk/internal/domain/model"
	"github.com/vfaivre/thumbdesk/internal/domain/repository"
)

// OrderUseCase encapsulates order creation and workflow transitions.
type OrderUseCase struct {
	orders   repository.OrderRepository
	workflow model.OrderWorkflow
	now      func() time.Time
}

// NewOrderUseCase constructs OrderUseCase.
func NewOrderUseCase(orders repository.OrderRepository) *OrderUseCase {
	return &OrderUseCase{orders: orders, now: time.Now}
}

// Create registers a new order for the client in status CREATED.
func (u *OrderUseCase) Create(ctx context.Context, clientID int64, title, brief string, priceCents int64, dueAt *time.Time) (*model.Order, error) {
	title = strings.TrimSpace(title)
	if title == "" || priceCents <= 0 {
		return nil, domainErrors.ErrInvalidOrder
	}
	order := model.NewOrder(clientID, title, brief, priceCents, dueAt, u.now())
	return u.orders.Create(ctx, order)
}

// GetByID fetches a single order.
func (u *OrderUseCase) GetByID(ctx context.Context, id int64) (*model.Order, error) {
	return u.orders.GetByID(ctx, id)
}

// ListByClient returns the client's orders sorted by update time.
func (u *OrderUseCase) ListByClient(ctx context.Context, clientID int64) ([]model.Order, error) {
	return u.orders.ListByClient(ctx, clientID)
}

// ListAll returns every order for the admin view.
func (u *OrderUseCase) ListAll(ctx context.Context) ([]model.Order, error) {
	return u.orders.ListAll(ctx)
}

// ListBillableUnpaid returns the client's orders eligible for payment.
func (u *OrderUseCase) ListBillableUnpaid(ctx context.Context, clientID int64) ([]model.Order, error) {
	return u.orders.ListBillableUnpaid(ctx, clientID)
}

// Transition names accepted by Apply.
const (
	TransitionAccept          = "accept"
	TransitionRefuse          = "refuse"
	TransitionCancel          = "cancel"
	TransitionStart           = "start"
	TransitionDeliver         = "deliver"
	TransitionRequestRevision = "revision"
	TransitionFinish          = "finish"
)

// Apply executes the named workflow transition on the order and persists the
// new status. An illegal transition returns ErrInvalidTransition and leaves
// the stored order untouched.
func (u *OrderUseCase) Apply(ctx context.Context, orderID int64, transition string) (*model.Order, error) {
	order, err := u.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	now := u.now()
	switch transition {
	case TransitionAccept:
		err = u.workflow.Accept(order, now)
	case TransitionRefuse:
		err = u.workflow.Refuse(order, now)
	case TransitionCancel:
		err = u.workflow.Cancel(order, now)
	case TransitionStart:
		err = u.workflow.Start(order, now)
	case TransitionDeliver:
		err = u.workflow.Deliver(order, now)
	case TransitionRequestRevision:
		err = u.workflow.RequestRevision(order, now)
	case TransitionFinish:
		err = u.workflow.Finish(order, now)
	default:
		return nil, domainErrors.ErrInvalidTransition
	}
	if err != nil {
		return nil, err
	}

	if err := u.orders.UpdateStatus(ctx, order.ID, order.Status(), order.UpdatedAt); err != nil {
		return nil, err
	}
	return order, nil
}
