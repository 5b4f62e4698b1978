package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/vfaivre/thumbdesk/internal/domain/model"
	"github.com/vfaivre/thumbdesk/internal/server/http/dto"
	"github.com/vfaivre/thumbdesk/internal/server/http/middleware"
)

// CurrentUserID extracts authenticated user identifier from context.
func CurrentUserID(c *gin.Context) int64 {
	val, ok := c.Get(middleware.UserIDContextKey)
	if !ok {
		return 0
	}
	id, _ := val.(int64)
	return id
}

// CurrentClientID extracts the user's client account id from context. Zero
// means the user has no client account (staff users).
func CurrentClientID(c *gin.Context) int64 {
	val, ok := c.Get(middleware.ClientIDContextKey)
	if !ok {
		return 0
	}
	id, _ := val.(int64)
	return id
}

// IsAdmin reports whether the authenticated user has the admin role.
func IsAdmin(c *gin.Context) bool {
	val, _ := c.Get(middleware.RoleContextKey)
	return val == model.RoleAdmin
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func toOrderResponse(order model.Order) dto.OrderResponse {
	return dto.OrderResponse{
		ID:         order.ID,
		ClientID:   order.ClientID,
		Title:      order.Title,
		Brief:      order.Brief,
		PriceCents: order.PriceCents,
		Status:     string(order.Status()),
		Paid:       order.Paid(),
		DueAt:      order.DueAt,
		CreatedAt:  order.CreatedAt,
		UpdatedAt:  order.UpdatedAt,
	}
}

func toOrderResponses(orders []model.Order) []dto.OrderResponse {
	response := make([]dto.OrderResponse, 0, len(orders))
	for _, o := range orders {
		response = append(response, toOrderResponse(o))
	}
	return response
}

func toPaymentResponse(p model.Payment) dto.PaymentResponse {
	return dto.PaymentResponse{
		ID:              p.ID,
		Method:          p.Method,
		ProviderOrderID: p.ProviderOrderID,
		Status:          p.Status,
		AmountCents:     p.AmountCents,
		Currency:        p.Currency,
		OrderIDs:        p.OrderIDs,
		CreatedAt:       p.CreatedAt,
	}
}

func toTimeEntryResponse(e model.TimeEntry) dto.TimeEntryResponse {
	return dto.TimeEntryResponse{
		ID:        e.ID,
		OrderID:   e.OrderID,
		Minutes:   e.Minutes,
		Note:      e.Note,
		CreatedAt: e.CreatedAt,
	}
}
