package usecase

import (
	"context"
	"errors"
	"time"

	domainErrors "github.com/vfaivre/thumbdesk/internal/domain/errors"
	"github.com/vfaivre/thumbdesk/internal/domain/model"
	"github.com/vfaivre/thumbdesk/internal/domain/repository"
)

// PaymentUseCase owns checkout preparation and payment settlement.
//
// Settlement is fed by independent entry points (the synchronous return
// redirect, the asynchronous webhook, the background reconciler) and must
// produce the same end state no matter how many times or in which order
// confirmations arrive.
type PaymentUseCase struct {
	orders   repository.OrderRepository
	payments repository.PaymentRepository
	now      func() time.Time
}

// NewPaymentUseCase constructs PaymentUseCase.
func NewPaymentUseCase(orders repository.OrderRepository, payments repository.PaymentRepository) *PaymentUseCase {
	return &PaymentUseCase{orders: orders, payments: payments, now: time.Now}
}

// PrepareCheckout re-validates the selected orders server-side and returns
// the eligible ids with their summed price. Selection state may be stale, so
// ineligible orders are dropped rather than failing the whole checkout.
func (u *PaymentUseCase) PrepareCheckout(ctx context.Context, clientID int64, orderIDs []int64) ([]int64, int64, error) {
	var (
		eligible []int64
		total    int64
	)
	for _, id := range orderIDs {
		order, err := u.orders.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, domainErrors.ErrNotFound) {
				continue
			}
			return nil, 0, err
		}
		if order.ClientID != clientID || order.Paid() || !order.Billable() {
			continue
		}
		eligible = append(eligible, order.ID)
		total += order.PriceCents
	}
	if len(eligible) == 0 {
		return nil, 0, domainErrors.ErrNotBillable
	}
	return eligible, total, nil
}

// RecordCheckout stores the Payment row for a freshly created provider
// checkout session.
func (u *PaymentUseCase) RecordCheckout(ctx context.Context, userID, clientID int64, providerOrderID string, amountCents int64, currency string, orderIDs []int64) (*model.Payment, error) {
	payment := &model.Payment{
		UserID:          userID,
		ClientID:        clientID,
		Method:          "paypal",
		ProviderOrderID: providerOrderID,
		Status:          model.PaymentStatusCreated,
		AmountCents:     amountCents,
		Currency:        currency,
		OrderIDs:        orderIDs,
		CreatedAt:       u.now(),
	}
	return u.payments.Create(ctx, payment)
}

// History returns the client's payments, newest first.
func (u *PaymentUseCase) History(ctx context.Context, clientID int64) ([]model.Payment, error) {
	return u.payments.ListByClient(ctx, clientID)
}

// PendingPayments returns payments awaiting confirmation for the reconciler.
func (u *PaymentUseCase) PendingPayments(ctx context.Context, olderThan time.Duration, limit int) ([]model.Payment, error) {
	return u.payments.ListPending(ctx, u.now().Add(-olderThan), limit)
}

// Settle reconciles one provider confirmation against local state and
// returns how many orders were newly marked paid.
//
// The algorithm is a pure function of (existing payment state, confirmation)
// and is safe to apply from any entry point, any number of times:
//
//  1. Upsert the Payment by provider order id; repeats update in place.
//  2. Record the capture id and raw payload.
//  3. Only a COMPLETED confirmation touches orders, and each order is
//     re-guarded at this moment: same client, still unpaid, still billable.
//     Orders failing the guard are skipped silently; that skip is the
//     idempotence mechanism, not an error.
//  4. Eligible orders are flushed in a single guarded UPDATE; nothing is
//     written when no order qualifies.
//
// A captured amount that disagrees with the amount recorded at checkout
// blocks settlement and surfaces ErrAmountMismatch after the confirmation
// itself has been recorded for audit.
func (u *PaymentUseCase) Settle(ctx context.Context, userID, clientID int64, conf model.PaymentConfirmation) (int, error) {
	payment, err := u.payments.GetByProviderOrderID(ctx, conf.ProviderOrderID)
	switch {
	case errors.Is(err, domainErrors.ErrNotFound):
		payment, err = u.payments.Create(ctx, &model.Payment{
			UserID:            userID,
			ClientID:          clientID,
			Method:            "paypal",
			ProviderOrderID:   conf.ProviderOrderID,
			ProviderCaptureID: conf.ProviderCaptureID,
			Status:            conf.Status,
			AmountCents:       conf.AmountCents,
			Currency:          conf.Currency,
			OrderIDs:          conf.OrderIDs,
			RawPayload:        conf.RawPayload,
			CreatedAt:         u.now(),
		})
		if errors.Is(err, domainErrors.ErrAlreadyExists) {
			// Lost the creation race against the other delivery path;
			// fall through to the update branch.
			payment, err = u.payments.GetByProviderOrderID(ctx, conf.ProviderOrderID)
		}
		if err != nil {
			return 0, err
		}
	case err != nil:
		return 0, err
	default:
		if err := u.payments.RecordConfirmation(ctx, payment.ID, conf.Status, conf.ProviderCaptureID, conf.RawPayload); err != nil {
			return 0, err
		}
	}

	if !conf.Completed() {
		return 0, nil
	}

	if conf.AmountCents > 0 && conf.AmountCents != payment.AmountCents {
		return 0, domainErrors.ErrAmountMismatch
	}

	now := u.now()
	var eligible []int64
	for _, id := range payment.OrderIDs {
		order, err := u.orders.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, domainErrors.ErrNotFound) {
				continue
			}
			return 0, err
		}
		if order.ClientID != payment.ClientID {
			continue
		}
		if !order.MarkPaid(now) {
			continue
		}
		eligible = append(eligible, order.ID)
	}
	if len(eligible) == 0 {
		return 0, nil
	}

	return u.orders.MarkPaid(ctx, payment.ClientID, eligible)
}

// SettleKnown applies a confirmation for a payment that must already exist
// locally, attributing it to the payment's own user and client. Confirmations
// referencing no known payment are dropped; asynchronous deliveries can
// outrun the checkout record and will be retried by the reconciler.
func (u *PaymentUseCase) SettleKnown(ctx context.Context, conf model.PaymentConfirmation) (int, error) {
	payment, err := u.payments.GetByProviderOrderID(ctx, conf.ProviderOrderID)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return u.Settle(ctx, payment.UserID, payment.ClientID, conf)
}
