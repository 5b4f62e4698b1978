package handlers

import (
	"context"
	"time"

	"github.com/vfaivre/thumbdesk/internal/app"
	"github.com/vfaivre/thumbdesk/internal/domain/model"
)

// AuthFacade describes authentication capabilities required by handlers.
type AuthFacade interface {
	Register(ctx context.Context, email, password, clientName string) (string, error)
	Authenticate(ctx context.Context, email, password string) (string, error)
	ParseToken(token string) (int64, error)
	UserByID(ctx context.Context, id int64) (*model.User, error)
}

// OrderFacade encapsulates order operations exposed via HTTP.
type OrderFacade interface {
	CreateOrder(ctx context.Context, clientID int64, title, brief string, priceCents int64, dueAt *time.Time) (*model.Order, error)
	OrderByID(ctx context.Context, id int64) (*model.Order, error)
	Orders(ctx context.Context, clientID int64) ([]model.Order, error)
	AllOrders(ctx context.Context) ([]model.Order, error)
	ApplyTransition(ctx context.Context, orderID int64, transition string) (*model.Order, error)
	TrackTime(ctx context.Context, orderID int64, minutes int, note string) (*model.TimeEntry, error)
	TimeEntries(ctx context.Context, orderID int64) ([]model.TimeEntry, error)
}

// PaymentFacade provides checkout and settlement operations.
type PaymentFacade interface {
	BillableOrders(ctx context.Context, clientID int64) ([]model.Order, error)
	StartCheckout(ctx context.Context, userID, clientID int64, orderIDs []int64) (*app.Checkout, error)
	CompleteReturn(ctx context.Context, userID, clientID int64, providerOrderID string) (int, error)
	HandleWebhookOrder(ctx context.Context, providerOrderID string) (int, error)
	Payments(ctx context.Context, clientID int64) ([]model.Payment, error)
}

// StudioFacade aggregates the full set of operations used across handlers.
type StudioFacade interface {
	AuthFacade
	OrderFacade
	PaymentFacade
}
