package app

import (
	"context"
	"errors"
	"time"

	"github.com/vfaivre/thumbdesk/internal/adapter/paypal"
	domainErrors "github.com/vfaivre/thumbdesk/internal/domain/errors"
	"github.com/vfaivre/thumbdesk/internal/domain/model"
	"github.com/vfaivre/thumbdesk/internal/usecase"
)

// PaymentProvider is the external checkout provider the facade talks to.
type PaymentProvider interface {
	CreateOrder(ctx context.Context, amountCents int64, currency string, orderIDs []int64) (*paypal.CheckoutSession, error)
	CaptureOrder(ctx context.Context, providerOrderID string) (*model.PaymentConfirmation, error)
	GetOrder(ctx context.Context, providerOrderID string) (*model.PaymentConfirmation, error)
}

// Checkout describes a started provider checkout session together with the
// local orders it covers.
type Checkout struct {
	ProviderOrderID string
	ApproveURL      string
	AmountCents     int64
	Currency        string
	OrderIDs        []int64
}

// StudioFacade aggregates the use cases behind a single application surface
// consumed by HTTP handlers and the background reconciler.
type StudioFacade struct {
	auth     *usecase.AuthUseCase
	orders   *usecase.OrderUseCase
	payments *usecase.PaymentUseCase
	tracking *usecase.TimeEntryUseCase
	provider PaymentProvider
	currency string
}

// NewStudioFacade constructs StudioFacade.
func NewStudioFacade(
	auth *usecase.AuthUseCase,
	orders *usecase.OrderUseCase,
	payments *usecase.PaymentUseCase,
	tracking *usecase.TimeEntryUseCase,
	provider PaymentProvider,
	currency string,
) *StudioFacade {
	return &StudioFacade{
		auth:     auth,
		orders:   orders,
		payments: payments,
		tracking: tracking,
		provider: provider,
		currency: currency,
	}
}

func (f *StudioFacade) Register(ctx context.Context, email, password, clientName string) (string, error) {
	_, token, err := f.auth.Register(ctx, email, password, clientName)
	return token, err
}

func (f *StudioFacade) Authenticate(ctx context.Context, email, password string) (string, error) {
	_, token, err := f.auth.Authenticate(ctx, email, password)
	return token, err
}

func (f *StudioFacade) ParseToken(token string) (int64, error) {
	return f.auth.ParseToken(token)
}

func (f *StudioFacade) UserByID(ctx context.Context, id int64) (*model.User, error) {
	return f.auth.GetByID(ctx, id)
}

func (f *StudioFacade) CreateOrder(ctx context.Context, clientID int64, title, brief string, priceCents int64, dueAt *time.Time) (*model.Order, error) {
	return f.orders.Create(ctx, clientID, title, brief, priceCents, dueAt)
}

func (f *StudioFacade) OrderByID(ctx context.Context, id int64) (*model.Order, error) {
	return f.orders.GetByID(ctx, id)
}

func (f *StudioFacade) Orders(ctx context.Context, clientID int64) ([]model.Order, error) {
	return f.orders.ListByClient(ctx, clientID)
}

func (f *StudioFacade) AllOrders(ctx context.Context) ([]model.Order, error) {
	return f.orders.ListAll(ctx)
}

func (f *StudioFacade) ApplyTransition(ctx context.Context, orderID int64, transition string) (*model.Order, error) {
	return f.orders.Apply(ctx, orderID, transition)
}

func (f *StudioFacade) TrackTime(ctx context.Context, orderID int64, minutes int, note string) (*model.TimeEntry, error) {
	return f.tracking.Track(ctx, orderID, minutes, note)
}

func (f *StudioFacade) TimeEntries(ctx context.Context, orderID int64) ([]model.TimeEntry, error) {
	return f.tracking.ListByOrder(ctx, orderID)
}

func (f *StudioFacade) BillableOrders(ctx context.Context, clientID int64) ([]model.Order, error) {
	return f.orders.ListBillableUnpaid(ctx, clientID)
}

// StartCheckout validates the selection, opens a provider checkout session,
// and records it locally so later confirmations can be matched back.
func (f *StudioFacade) StartCheckout(ctx context.Context, userID, clientID int64, orderIDs []int64) (*Checkout, error) {
	eligible, total, err := f.payments.PrepareCheckout(ctx, clientID, orderIDs)
	if err != nil {
		return nil, err
	}

	session, err := f.provider.CreateOrder(ctx, total, f.currency, eligible)
	if err != nil {
		return nil, err
	}

	if _, err := f.payments.RecordCheckout(ctx, userID, clientID, session.ProviderOrderID, total, f.currency, eligible); err != nil {
		return nil, err
	}

	return &Checkout{
		ProviderOrderID: session.ProviderOrderID,
		ApproveURL:      session.ApproveURL,
		AmountCents:     total,
		Currency:        f.currency,
		OrderIDs:        eligible,
	}, nil
}

// CompleteReturn captures the approved provider order the buyer was
// redirected back with and settles it.
func (f *StudioFacade) CompleteReturn(ctx context.Context, userID, clientID int64, providerOrderID string) (int, error) {
	conf, err := f.provider.CaptureOrder(ctx, providerOrderID)
	if err != nil {
		if errors.Is(err, paypal.ErrOrderNotFound) {
			return 0, domainErrors.ErrNotFound
		}
		return 0, err
	}
	return f.payments.Settle(ctx, userID, clientID, *conf)
}

// HandleWebhookOrder re-reads the referenced provider order and settles it.
// The webhook body itself is untrusted; only the provider query is.
func (f *StudioFacade) HandleWebhookOrder(ctx context.Context, providerOrderID string) (int, error) {
	conf, err := f.provider.GetOrder(ctx, providerOrderID)
	if err != nil {
		if errors.Is(err, paypal.ErrOrderNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return f.payments.SettleKnown(ctx, *conf)
}

func (f *StudioFacade) Payments(ctx context.Context, clientID int64) ([]model.Payment, error) {
	return f.payments.History(ctx, clientID)
}

func (f *StudioFacade) PendingPayments(ctx context.Context, olderThan time.Duration, limit int) ([]model.Payment, error) {
	return f.payments.PendingPayments(ctx, olderThan, limit)
}

// ReconcilePayment brings one stale pending payment up to date with the
// provider. Approved but uncaptured orders are captured first; everything
// else is settled from the provider's current view.
func (f *StudioFacade) ReconcilePayment(ctx context.Context, payment model.Payment) (int, error) {
	conf, err := f.provider.GetOrder(ctx, payment.ProviderOrderID)
	if err != nil {
		if errors.Is(err, paypal.ErrOrderNotFound) {
			return 0, nil
		}
		return 0, err
	}

	if conf.Status == "APPROVED" {
		captured, err := f.provider.CaptureOrder(ctx, payment.ProviderOrderID)
		if err != nil {
			return 0, err
		}
		conf = captured
	}

	return f.payments.Settle(ctx, payment.UserID, payment.ClientID, *conf)
}
