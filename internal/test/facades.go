package test

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vfaivre/thumbdesk/internal/adapter/paypal"
	"github.com/vfaivre/thumbdesk/internal/app"
	"github.com/vfaivre/thumbdesk/internal/domain/model"
)

// AuthFacadeStub simulates authentication facade interactions.
type AuthFacadeStub struct {
	RegisterFn     func(context.Context, string, string, string) (string, error)
	AuthenticateFn func(context.Context, string, string) (string, error)
	ParseFn        func(string) (int64, error)
	UserFn         func(context.Context, int64) (*model.User, error)
	Role           string
}

// Register returns token for successful registration scenarios.
func (s AuthFacadeStub) Register(ctx context.Context, email, password, clientName string) (string, error) {
	if s.RegisterFn != nil {
		return s.RegisterFn(ctx, email, password, clientName)
	}
	return "token", nil
}

// Authenticate returns token for successful authentication scenarios.
func (s AuthFacadeStub) Authenticate(ctx context.Context, email, password string) (string, error) {
	if s.AuthenticateFn != nil {
		return s.AuthenticateFn(ctx, email, password)
	}
	return "token", nil
}

// ParseToken returns stored identifier for authenticated user.
func (s AuthFacadeStub) ParseToken(token string) (int64, error) {
	if s.ParseFn != nil {
		return s.ParseFn(token)
	}
	return 1, nil
}

// UserByID returns a user whose role defaults to client.
func (s AuthFacadeStub) UserByID(ctx context.Context, id int64) (*model.User, error) {
	if s.UserFn != nil {
		return s.UserFn(ctx, id)
	}
	role := s.Role
	if role == "" {
		role = model.RoleClient
	}
	clientID := id
	return &model.User{ID: id, Role: role, ClientID: &clientID}, nil
}

// OrderFacadeStub provides controllable behaviour for order endpoints.
type OrderFacadeStub struct {
	CreateFn      func(context.Context, int64, string, string, int64, *time.Time) (*model.Order, error)
	GetFn         func(context.Context, int64) (*model.Order, error)
	OrdersFn      func(context.Context, int64) ([]model.Order, error)
	AllOrdersFn   func(context.Context) ([]model.Order, error)
	TransitionFn  func(context.Context, int64, string) (*model.Order, error)
	TrackFn       func(context.Context, int64, int, string) (*model.TimeEntry, error)
	TimeEntriesFn func(context.Context, int64) ([]model.TimeEntry, error)
}

// CreateOrder delegates to override or returns a fresh order.
func (s OrderFacadeStub) CreateOrder(ctx context.Context, clientID int64, title, brief string, priceCents int64, dueAt *time.Time) (*model.Order, error) {
	if s.CreateFn != nil {
		return s.CreateFn(ctx, clientID, title, brief, priceCents, dueAt)
	}
	return MakeOrder(1, clientID, model.OrderStatusCreated, false, priceCents), nil
}

// OrderByID delegates to override or returns a default order.
func (s OrderFacadeStub) OrderByID(ctx context.Context, id int64) (*model.Order, error) {
	if s.GetFn != nil {
		return s.GetFn(ctx, id)
	}
	return MakeOrder(id, 1, model.OrderStatusCreated, false, 1000), nil
}

// Orders returns predefined orders for given client.
func (s OrderFacadeStub) Orders(ctx context.Context, clientID int64) ([]model.Order, error) {
	if s.OrdersFn != nil {
		return s.OrdersFn(ctx, clientID)
	}
	return []model.Order{*MakeOrder(1, clientID, model.OrderStatusCreated, false, 1000)}, nil
}

// AllOrders returns predefined orders for admin listings.
func (s OrderFacadeStub) AllOrders(ctx context.Context) ([]model.Order, error) {
	if s.AllOrdersFn != nil {
		return s.AllOrdersFn(ctx)
	}
	return []model.Order{*MakeOrder(1, 1, model.OrderStatusCreated, false, 1000)}, nil
}

// ApplyTransition delegates to override or echoes a transitioned order.
func (s OrderFacadeStub) ApplyTransition(ctx context.Context, orderID int64, transition string) (*model.Order, error) {
	if s.TransitionFn != nil {
		return s.TransitionFn(ctx, orderID, transition)
	}
	return MakeOrder(orderID, 1, model.OrderStatusAccepted, false, 1000), nil
}

// TrackTime delegates to override or records nothing.
func (s OrderFacadeStub) TrackTime(ctx context.Context, orderID int64, minutes int, note string) (*model.TimeEntry, error) {
	if s.TrackFn != nil {
		return s.TrackFn(ctx, orderID, minutes, note)
	}
	return &model.TimeEntry{ID: 1, OrderID: orderID, Minutes: minutes, Note: note}, nil
}

// TimeEntries returns predefined entries.
func (s OrderFacadeStub) TimeEntries(ctx context.Context, orderID int64) ([]model.TimeEntry, error) {
	if s.TimeEntriesFn != nil {
		return s.TimeEntriesFn(ctx, orderID)
	}
	return []model.TimeEntry{{ID: 1, OrderID: orderID, Minutes: 30}}, nil
}

// PaymentFacadeStub simulates checkout and settlement operations.
type PaymentFacadeStub struct {
	BillableFn func(context.Context, int64) ([]model.Order, error)
	CheckoutFn func(context.Context, int64, int64, []int64) (*app.Checkout, error)
	ReturnFn   func(context.Context, int64, int64, string) (int, error)
	WebhookFn  func(context.Context, string) (int, error)
	PaymentsFn func(context.Context, int64) ([]model.Payment, error)
}

// BillableOrders returns predefined billable orders.
func (s PaymentFacadeStub) BillableOrders(ctx context.Context, clientID int64) ([]model.Order, error) {
	if s.BillableFn != nil {
		return s.BillableFn(ctx, clientID)
	}
	return []model.Order{*MakeOrder(1, clientID, model.OrderStatusDelivered, false, 1500)}, nil
}

// StartCheckout delegates to override or returns a canned session.
func (s PaymentFacadeStub) StartCheckout(ctx context.Context, userID, clientID int64, orderIDs []int64) (*app.Checkout, error) {
	if s.CheckoutFn != nil {
		return s.CheckoutFn(ctx, userID, clientID, orderIDs)
	}
	return &app.Checkout{
		ProviderOrderID: "PP-1",
		ApproveURL:      "https://provider.example/approve/PP-1",
		AmountCents:     1500,
		Currency:        "EUR",
		OrderIDs:        orderIDs,
	}, nil
}

// CompleteReturn delegates to override or reports one settled order.
func (s PaymentFacadeStub) CompleteReturn(ctx context.Context, userID, clientID int64, providerOrderID string) (int, error) {
	if s.ReturnFn != nil {
		return s.ReturnFn(ctx, userID, clientID, providerOrderID)
	}
	return 1, nil
}

// HandleWebhookOrder delegates to override or reports a no-op.
func (s PaymentFacadeStub) HandleWebhookOrder(ctx context.Context, providerOrderID string) (int, error) {
	if s.WebhookFn != nil {
		return s.WebhookFn(ctx, providerOrderID)
	}
	return 0, nil
}

// Payments returns predefined history.
func (s PaymentFacadeStub) Payments(ctx context.Context, clientID int64) ([]model.Payment, error) {
	if s.PaymentsFn != nil {
		return s.PaymentsFn(ctx, clientID)
	}
	return []model.Payment{{ID: 1, ClientID: clientID, Method: "paypal", ProviderOrderID: "PP-1", Status: model.PaymentStatusCompleted, AmountCents: 1500, Currency: "EUR"}}, nil
}

// StudioFacadeStub aggregates facade dependencies for HTTP layer tests.
type StudioFacadeStub struct {
	AuthFacadeStub
	OrderFacadeStub
	PaymentFacadeStub
}

// ReconcileCall stores information about ReconcilePayment invocations.
type ReconcileCall struct {
	ProviderOrderID string
}

// WorkerFacadeStub mimics reconciler interactions with the application facade.
type WorkerFacadeStub struct {
	Batches     [][]model.Payment
	PendingFn   func(context.Context, time.Duration, int) ([]model.Payment, error)
	ReconcileFn func(context.Context, model.Payment) (int, error)
	Reconciled  []ReconcileCall

	mu               sync.Mutex
	pendingCallCount int32
}

// Lock exposes internal mutex for external synchronization.
func (s *WorkerFacadeStub) Lock() { s.mu.Lock() }

// Unlock releases previously acquired lock.
func (s *WorkerFacadeStub) Unlock() { s.mu.Unlock() }

// PendingPayments returns batches from the configured queue.
func (s *WorkerFacadeStub) PendingPayments(ctx context.Context, olderThan time.Duration, limit int) ([]model.Payment, error) {
	if s.PendingFn != nil {
		return s.PendingFn(ctx, olderThan, limit)
	}
	call := atomic.AddInt32(&s.pendingCallCount, 1)
	if int(call) <= len(s.Batches) {
		return s.Batches[call-1], nil
	}
	time.Sleep(10 * time.Millisecond)
	return nil, nil
}

// ReconcilePayment records reconcile requests.
func (s *WorkerFacadeStub) ReconcilePayment(ctx context.Context, payment model.Payment) (int, error) {
	if s.ReconcileFn != nil {
		return s.ReconcileFn(ctx, payment)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Reconciled = append(s.Reconciled, ReconcileCall{ProviderOrderID: payment.ProviderOrderID})
	return 1, nil
}

// ProviderStub simulates the external payment provider.
type ProviderStub struct {
	CreateFn  func(context.Context, int64, string, []int64) (*paypal.CheckoutSession, error)
	CaptureFn func(context.Context, string) (*model.PaymentConfirmation, error)
	GetFn     func(context.Context, string) (*model.PaymentConfirmation, error)
}

// CreateOrder returns a configured or canned checkout session.
func (s ProviderStub) CreateOrder(ctx context.Context, amountCents int64, currency string, orderIDs []int64) (*paypal.CheckoutSession, error) {
	if s.CreateFn != nil {
		return s.CreateFn(ctx, amountCents, currency, orderIDs)
	}
	return &paypal.CheckoutSession{ProviderOrderID: "PP-1", ApproveURL: "https://provider.example/approve/PP-1"}, nil
}

// CaptureOrder returns a configured or completed confirmation.
func (s ProviderStub) CaptureOrder(ctx context.Context, providerOrderID string) (*model.PaymentConfirmation, error) {
	if s.CaptureFn != nil {
		return s.CaptureFn(ctx, providerOrderID)
	}
	return &model.PaymentConfirmation{ProviderOrderID: providerOrderID, Status: "COMPLETED"}, nil
}

// GetOrder returns a configured or completed confirmation.
func (s ProviderStub) GetOrder(ctx context.Context, providerOrderID string) (*model.PaymentConfirmation, error) {
	if s.GetFn != nil {
		return s.GetFn(ctx, providerOrderID)
	}
	return &model.PaymentConfirmation{ProviderOrderID: providerOrderID, Status: "COMPLETED"}, nil
}
