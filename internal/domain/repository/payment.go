package repository

import (
	"context"
	"time"

	"github.com/vfaivre/thumbdesk/internal/domain/model"
)

// PaymentRepository describes persistence operations with payments.
type PaymentRepository interface {
	Create(ctx context.Context, payment *model.Payment) (*model.Payment, error)
	GetByProviderOrderID(ctx context.Context, providerOrderID string) (*model.Payment, error)
	// RecordConfirmation updates status, capture id, and raw payload on the
	// existing payment row; it never creates a second row for the same
	// provider order id.
	RecordConfirmation(ctx context.Context, paymentID int64, status, captureID, rawPayload string) error
	ListByClient(ctx context.Context, clientID int64) ([]model.Payment, error)
	// ListPending returns payments that have not reached COMPLETED and were
	// created before the cutoff, oldest first, for the reconciler.
	ListPending(ctx context.Context, before time.Time, limit int) ([]model.Payment, error)
}
