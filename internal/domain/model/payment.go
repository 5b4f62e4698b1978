package model

import (
	"strconv"
	"strings"
	"time"
)

// Payment statuses as reported by the provider. Settlement only ever reacts
// to COMPLETED; everything else is recorded verbatim for audit.
const (
	PaymentStatusCreated   = "CREATED"
	PaymentStatusCompleted = "COMPLETED"
)

// Payment records one PayPal checkout session and the orders it covers.
// ProviderOrderID is unique per session and serves as the idempotence key
// for settlement. The order-id list is fixed at creation time.
type Payment struct {
	ID                int64
	UserID            int64
	ClientID          int64
	Method            string
	ProviderOrderID   string
	ProviderCaptureID string
	Status            string
	AmountCents       int64
	Currency          string
	OrderIDs          []int64
	RawPayload        string
	CreatedAt         time.Time
}

// PaymentConfirmation is the normalized shape of a provider confirmation
// event, whether it arrived via the return redirect, the webhook, or the
// reconciler.
type PaymentConfirmation struct {
	ProviderOrderID   string
	ProviderCaptureID string
	Status            string
	AmountCents       int64
	Currency          string
	OrderIDs          []int64
	RawPayload        string
}

// Completed reports whether the confirmation status normalizes to COMPLETED.
func (c PaymentConfirmation) Completed() bool {
	return strings.ToUpper(strings.TrimSpace(c.Status)) == PaymentStatusCompleted
}

// JoinOrderIDs serializes an order-id list into the CSV form stored on the
// payment row and carried in the provider's custom field.
func JoinOrderIDs(ids []int64) string {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, strconv.FormatInt(id, 10))
	}
	return strings.Join(parts, ",")
}

// SplitOrderIDs parses the CSV order-id list. Empty and malformed entries
// are dropped rather than failing the whole list.
func SplitOrderIDs(csv string) []int64 {
	var ids []int64
	for _, part := range strings.Split(csv, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil || id <= 0 {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}
