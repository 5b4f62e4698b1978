package test

import (
	"context"
	"time"

	domainErrors "github.com/vfaivre/thumbdesk/internal/domain/errors"
	"github.com/vfaivre/thumbdesk/internal/domain/model"
)

// MakeOrder builds a stored-looking order for tests.
func MakeOrder(id, clientID int64, status model.OrderStatus, paid bool, priceCents int64) *model.Order {
	now := time.Unix(1700000000, 0).UTC()
	return model.RestoreOrder(id, clientID, "thumbnail", "", priceCents, status, paid, nil, now, now)
}

// UserRepositoryStub stores users in-memory for tests.
type UserRepositoryStub struct {
	Users map[string]*model.User
	ByID  map[int64]*model.User
	Next  int64
	Err   error
}

// NewUserRepositoryStub constructs stub repository with initialized maps.
func NewUserRepositoryStub() *UserRepositoryStub {
	return &UserRepositoryStub{
		Users: make(map[string]*model.User),
		ByID:  make(map[int64]*model.User),
		Next:  1,
	}
}

// Create registers user unless already exists or stub has explicit error.
func (s *UserRepositoryStub) Create(ctx context.Context, email, passwordHash, role string, clientID *int64) (*model.User, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if s.Users == nil {
		s.Users = make(map[string]*model.User)
	}
	if s.ByID == nil {
		s.ByID = make(map[int64]*model.User)
	}
	if _, exists := s.Users[email]; exists {
		return nil, domainErrors.ErrAlreadyExists
	}
	if s.Next == 0 {
		s.Next = 1
	}
	user := &model.User{ID: s.Next, Email: email, PasswordHash: passwordHash, Role: role, ClientID: clientID}
	s.Next++
	s.Users[email] = user
	s.ByID[user.ID] = user
	return user, nil
}

// GetByEmail fetches user by email or returns not found.
func (s *UserRepositoryStub) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if user, ok := s.Users[email]; ok {
		return user, nil
	}
	return nil, domainErrors.ErrNotFound
}

// GetByID fetches user by identifier or returns not found.
func (s *UserRepositoryStub) GetByID(ctx context.Context, id int64) (*model.User, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if user, ok := s.ByID[id]; ok {
		return user, nil
	}
	return nil, domainErrors.ErrNotFound
}

// ClientRepositoryStub stores clients in-memory for tests.
type ClientRepositoryStub struct {
	Clients map[int64]*model.Client
	Next    int64
	Err     error
}

// NewClientRepositoryStub constructs stub repository.
func NewClientRepositoryStub() *ClientRepositoryStub {
	return &ClientRepositoryStub{Clients: make(map[int64]*model.Client), Next: 1}
}

// Create registers a client account.
func (s *ClientRepositoryStub) Create(ctx context.Context, name string) (*model.Client, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if s.Clients == nil {
		s.Clients = make(map[int64]*model.Client)
	}
	if s.Next == 0 {
		s.Next = 1
	}
	client := &model.Client{ID: s.Next, Name: name}
	s.Next++
	s.Clients[client.ID] = client
	return client, nil
}

// GetByID fetches a client or returns not found.
func (s *ClientRepositoryStub) GetByID(ctx context.Context, id int64) (*model.Client, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if client, ok := s.Clients[id]; ok {
		return client, nil
	}
	return nil, domainErrors.ErrNotFound
}

// MarkPaidCall stores information about MarkPaid invocations.
type MarkPaidCall struct {
	ClientID int64
	OrderIDs []int64
}

// StatusUpdateCall stores information about UpdateStatus invocations.
type StatusUpdateCall struct {
	OrderID   int64
	Status    model.OrderStatus
	UpdatedAt time.Time
}

// OrderRepositoryStub allows tests to customize behaviour.
type OrderRepositoryStub struct {
	CreateFn             func(context.Context, *model.Order) (*model.Order, error)
	GetByIDFn            func(context.Context, int64) (*model.Order, error)
	ListByClientFn       func(context.Context, int64) ([]model.Order, error)
	ListAllFn            func(context.Context) ([]model.Order, error)
	ListBillableUnpaidFn func(context.Context, int64) ([]model.Order, error)
	UpdateStatusFn       func(context.Context, int64, model.OrderStatus, time.Time) error
	MarkPaidFn           func(context.Context, int64, []int64) (int, error)

	ByID          map[int64]*model.Order
	Orders        []model.Order
	StatusUpdates []StatusUpdateCall
	MarkPaidCalls []MarkPaidCall
	Next          int64
}

// Put registers an order under its id for GetByID lookups.
func (s *OrderRepositoryStub) Put(order *model.Order) {
	if s.ByID == nil {
		s.ByID = make(map[int64]*model.Order)
	}
	s.ByID[order.ID] = order
}

// Create returns configured response or echoes the order with a new id.
func (s *OrderRepositoryStub) Create(ctx context.Context, order *model.Order) (*model.Order, error) {
	if s.CreateFn != nil {
		return s.CreateFn(ctx, order)
	}
	if s.Next == 0 {
		s.Next = 1
	}
	order.ID = s.Next
	s.Next++
	s.Put(order)
	return order, nil
}

// GetByID returns the registered order or not found.
func (s *OrderRepositoryStub) GetByID(ctx context.Context, id int64) (*model.Order, error) {
	if s.GetByIDFn != nil {
		return s.GetByIDFn(ctx, id)
	}
	if order, ok := s.ByID[id]; ok {
		return order, nil
	}
	return nil, domainErrors.ErrNotFound
}

// ListByClient returns orders from configured slice.
func (s *OrderRepositoryStub) ListByClient(ctx context.Context, clientID int64) ([]model.Order, error) {
	if s.ListByClientFn != nil {
		return s.ListByClientFn(ctx, clientID)
	}
	return s.Orders, nil
}

// ListAll returns orders from configured slice.
func (s *OrderRepositoryStub) ListAll(ctx context.Context) ([]model.Order, error) {
	if s.ListAllFn != nil {
		return s.ListAllFn(ctx)
	}
	return s.Orders, nil
}

// ListBillableUnpaid returns orders from configured slice.
func (s *OrderRepositoryStub) ListBillableUnpaid(ctx context.Context, clientID int64) ([]model.Order, error) {
	if s.ListBillableUnpaidFn != nil {
		return s.ListBillableUnpaidFn(ctx, clientID)
	}
	return s.Orders, nil
}

// UpdateStatus records update invocations.
func (s *OrderRepositoryStub) UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus, updatedAt time.Time) error {
	if s.UpdateStatusFn != nil {
		return s.UpdateStatusFn(ctx, orderID, status, updatedAt)
	}
	s.StatusUpdates = append(s.StatusUpdates, StatusUpdateCall{OrderID: orderID, Status: status, UpdatedAt: updatedAt})
	return nil
}

// MarkPaid records flush invocations and reports every order as updated.
func (s *OrderRepositoryStub) MarkPaid(ctx context.Context, clientID int64, orderIDs []int64) (int, error) {
	if s.MarkPaidFn != nil {
		return s.MarkPaidFn(ctx, clientID, orderIDs)
	}
	s.MarkPaidCalls = append(s.MarkPaidCalls, MarkPaidCall{ClientID: clientID, OrderIDs: orderIDs})
	return len(orderIDs), nil
}

// PaymentRepositoryStub stores payments keyed by provider order id.
type PaymentRepositoryStub struct {
	CreateFn             func(context.Context, *model.Payment) (*model.Payment, error)
	GetByProviderFn      func(context.Context, string) (*model.Payment, error)
	RecordConfirmationFn func(context.Context, int64, string, string, string) error
	ListByClientFn       func(context.Context, int64) ([]model.Payment, error)
	ListPendingFn        func(context.Context, time.Time, int) ([]model.Payment, error)

	ByProvider    map[string]*model.Payment
	Confirmations []ConfirmationCall
	Next          int64
}

// ConfirmationCall stores information about RecordConfirmation invocations.
type ConfirmationCall struct {
	PaymentID  int64
	Status     string
	CaptureID  string
	RawPayload string
}

// NewPaymentRepositoryStub constructs the stub with initialized storage.
func NewPaymentRepositoryStub() *PaymentRepositoryStub {
	return &PaymentRepositoryStub{ByProvider: make(map[string]*model.Payment), Next: 1}
}

// Create stores the payment unless the provider order id is taken.
func (s *PaymentRepositoryStub) Create(ctx context.Context, payment *model.Payment) (*model.Payment, error) {
	if s.CreateFn != nil {
		return s.CreateFn(ctx, payment)
	}
	if s.ByProvider == nil {
		s.ByProvider = make(map[string]*model.Payment)
	}
	if _, exists := s.ByProvider[payment.ProviderOrderID]; exists {
		return nil, domainErrors.ErrAlreadyExists
	}
	if s.Next == 0 {
		s.Next = 1
	}
	payment.ID = s.Next
	s.Next++
	s.ByProvider[payment.ProviderOrderID] = payment
	return payment, nil
}

// GetByProviderOrderID returns the stored payment or not found.
func (s *PaymentRepositoryStub) GetByProviderOrderID(ctx context.Context, providerOrderID string) (*model.Payment, error) {
	if s.GetByProviderFn != nil {
		return s.GetByProviderFn(ctx, providerOrderID)
	}
	if payment, ok := s.ByProvider[providerOrderID]; ok {
		return payment, nil
	}
	return nil, domainErrors.ErrNotFound
}

// RecordConfirmation records the invocation and updates the stored payment.
func (s *PaymentRepositoryStub) RecordConfirmation(ctx context.Context, paymentID int64, status, captureID, rawPayload string) error {
	if s.RecordConfirmationFn != nil {
		return s.RecordConfirmationFn(ctx, paymentID, status, captureID, rawPayload)
	}
	s.Confirmations = append(s.Confirmations, ConfirmationCall{PaymentID: paymentID, Status: status, CaptureID: captureID, RawPayload: rawPayload})
	for _, payment := range s.ByProvider {
		if payment.ID == paymentID {
			payment.Status = status
			if captureID != "" {
				payment.ProviderCaptureID = captureID
			}
			payment.RawPayload = rawPayload
		}
	}
	return nil
}

// ListByClient returns stored payments for the client.
func (s *PaymentRepositoryStub) ListByClient(ctx context.Context, clientID int64) ([]model.Payment, error) {
	if s.ListByClientFn != nil {
		return s.ListByClientFn(ctx, clientID)
	}
	var result []model.Payment
	for _, payment := range s.ByProvider {
		if payment.ClientID == clientID {
			result = append(result, *payment)
		}
	}
	return result, nil
}

// ListPending returns stored payments that are not yet completed.
func (s *PaymentRepositoryStub) ListPending(ctx context.Context, before time.Time, limit int) ([]model.Payment, error) {
	if s.ListPendingFn != nil {
		return s.ListPendingFn(ctx, before, limit)
	}
	var result []model.Payment
	for _, payment := range s.ByProvider {
		if payment.Status != model.PaymentStatusCompleted && payment.CreatedAt.Before(before) {
			result = append(result, *payment)
		}
		if len(result) >= limit {
			break
		}
	}
	return result, nil
}

// TimeEntryRepositoryStub records tracked time in-memory.
type TimeEntryRepositoryStub struct {
	CreateFn func(context.Context, int64, int, string) (*model.TimeEntry, error)
	ListFn   func(context.Context, int64) ([]model.TimeEntry, error)
	Entries  []model.TimeEntry
	Next     int64
}

// Create stores a time entry.
func (s *TimeEntryRepositoryStub) Create(ctx context.Context, orderID int64, minutes int, note string) (*model.TimeEntry, error) {
	if s.CreateFn != nil {
		return s.CreateFn(ctx, orderID, minutes, note)
	}
	if s.Next == 0 {
		s.Next = 1
	}
	entry := model.TimeEntry{ID: s.Next, OrderID: orderID, Minutes: minutes, Note: note}
	s.Next++
	s.Entries = append(s.Entries, entry)
	return &entry, nil
}

// ListByOrder returns entries for the order.
func (s *TimeEntryRepositoryStub) ListByOrder(ctx context.Context, orderID int64) ([]model.TimeEntry, error) {
	if s.ListFn != nil {
		return s.ListFn(ctx, orderID)
	}
	var result []model.TimeEntry
	for _, entry := range s.Entries {
		if entry.OrderID == orderID {
			result = append(result, entry)
		}
	}
	return result, nil
}
