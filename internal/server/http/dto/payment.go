package dto

import "time"

// CheckoutRequest lists the orders the client wants to pay for.
type CheckoutRequest struct {
	OrderIDs []int64 `json:"order_ids"`
}

// CheckoutResponse describes a started provider checkout session.
type CheckoutResponse struct {
	ProviderOrderID string  `json:"provider_order_id"`
	ApproveURL      string  `json:"approve_url"`
	AmountCents     int64   `json:"amount_cents"`
	Currency        string  `json:"currency"`
	OrderIDs        []int64 `json:"order_ids"`
}

// SettleResponse reports how many orders a confirmation marked paid.
type SettleResponse struct {
	OrdersPaid int `json:"orders_paid"`
}

// PaymentResponse describes one payment history entry.
type PaymentResponse struct {
	ID              int64     `json:"id"`
	Method          string    `json:"method"`
	ProviderOrderID string    `json:"provider_order_id"`
	Status          string    `json:"status"`
	AmountCents     int64     `json:"amount_cents"`
	Currency        string    `json:"currency"`
	OrderIDs        []int64   `json:"order_ids"`
	CreatedAt       time.Time `json:"created_at"`
}

// WebhookEvent is the subset of a provider webhook notification the server
// reads. Only the order reference matters; the authoritative state is always
// re-read from the provider.
type WebhookEvent struct {
	EventType string          `json:"event_type"`
	Resource  WebhookResource `json:"resource"`
}

// WebhookResource carries the provider order reference in the two places the
// provider puts it, depending on event type.
type WebhookResource struct {
	ID                string `json:"id"`
	Status            string `json:"status"`
	SupplementaryData struct {
		RelatedIDs struct {
			OrderID string `json:"order_id"`
		} `json:"related_ids"`
	} `json:"supplementary_data"`
}

// ProviderOrderID resolves the checkout order reference from the event.
func (e WebhookEvent) ProviderOrderID() string {
	if id := e.Resource.SupplementaryData.RelatedIDs.OrderID; id != "" {
		return id
	}
	return e.Resource.ID
}
