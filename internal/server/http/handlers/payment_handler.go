package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/vfaivre/thumbdesk/internal/domain/errors"
	"github.com/vfaivre/thumbdesk/internal/server/http/dto"
)

// PaymentHandler manages checkout and settlement endpoints.
type PaymentHandler struct {
	facade PaymentFacade
}

// NewPaymentHandler constructs PaymentHandler.
func NewPaymentHandler(facade PaymentFacade) *PaymentHandler {
	return &PaymentHandler{facade: facade}
}

// BillableOrders handles GET /api/payments/orders.
func (h *PaymentHandler) BillableOrders(c *gin.Context) {
	orders, err := h.facade.BillableOrders(c.Request.Context(), CurrentClientID(c))
	if err != nil {
		c.Status(http.StatusInternalServerError)
		return
	}
	if len(orders) == 0 {
		c.Status(http.StatusNoContent)
		return
	}

	c.JSON(http.StatusOK, toOrderResponses(orders))
}

// Checkout handles POST /api/payments/checkout.
func (h *PaymentHandler) Checkout(c *gin.Context) {
	clientID := CurrentClientID(c)
	if clientID == 0 {
		c.Status(http.StatusForbidden)
		return
	}

	var req dto.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.OrderIDs) == 0 {
		c.Status(http.StatusBadRequest)
		return
	}

	checkout, err := h.facade.StartCheckout(c.Request.Context(), CurrentUserID(c), clientID, req.OrderIDs)
	if err != nil {
		switch {
		case errors.Is(err, domainErrors.ErrNotBillable):
			c.Status(http.StatusUnprocessableEntity)
		default:
			c.Status(http.StatusInternalServerError)
		}
		return
	}

	c.JSON(http.StatusCreated, dto.CheckoutResponse{
		ProviderOrderID: checkout.ProviderOrderID,
		ApproveURL:      checkout.ApproveURL,
		AmountCents:     checkout.AmountCents,
		Currency:        checkout.Currency,
		OrderIDs:        checkout.OrderIDs,
	})
}

// Return handles GET /api/payments/return. The provider redirects the buyer
// here with the checkout order reference in the token query parameter.
func (h *PaymentHandler) Return(c *gin.Context) {
	providerOrderID := strings.TrimSpace(c.Query("token"))
	if providerOrderID == "" {
		c.Status(http.StatusBadRequest)
		return
	}

	paid, err := h.facade.CompleteReturn(c.Request.Context(), CurrentUserID(c), CurrentClientID(c), providerOrderID)
	if err != nil {
		switch {
		case errors.Is(err, domainErrors.ErrNotFound):
			c.Status(http.StatusNotFound)
		case errors.Is(err, domainErrors.ErrAmountMismatch):
			c.Status(http.StatusConflict)
		default:
			c.Status(http.StatusInternalServerError)
		}
		return
	}

	c.JSON(http.StatusOK, dto.SettleResponse{OrdersPaid: paid})
}

// Webhook handles POST /api/payments/webhook. The provider retries on
// non-2xx, so every processed notification answers 200; settlement itself is
// idempotent and amount conflicts are left for the reconciler to surface.
func (h *PaymentHandler) Webhook(c *gin.Context) {
	var event dto.WebhookEvent
	if err := c.ShouldBindJSON(&event); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	providerOrderID := event.ProviderOrderID()
	if providerOrderID == "" {
		c.Status(http.StatusOK)
		return
	}

	if _, err := h.facade.HandleWebhookOrder(c.Request.Context(), providerOrderID); err != nil {
		if !errors.Is(err, domainErrors.ErrAmountMismatch) {
			c.Status(http.StatusInternalServerError)
			return
		}
	}

	c.Status(http.StatusOK)
}

// History handles GET /api/payments.
func (h *PaymentHandler) History(c *gin.Context) {
	payments, err := h.facade.Payments(c.Request.Context(), CurrentClientID(c))
	if err != nil {
		c.Status(http.StatusInternalServerError)
		return
	}
	if len(payments) == 0 {
		c.Status(http.StatusNoContent)
		return
	}

	response := make([]dto.PaymentResponse, 0, len(payments))
	for _, p := range payments {
		response = append(response, toPaymentResponse(p))
	}
	c.JSON(http.StatusOK, response)
}
