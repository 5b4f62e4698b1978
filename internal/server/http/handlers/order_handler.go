package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/vfaivre/thumbdesk/internal/domain/errors"
	"github.com/vfaivre/thumbdesk/internal/domain/model"
	"github.com/vfaivre/thumbdesk/internal/server/http/dto"
	"github.com/vfaivre/thumbdesk/internal/usecase"
)

// OrderHandler manages order-related endpoints.
type OrderHandler struct {
	facade OrderFacade
}

// NewOrderHandler constructs OrderHandler.
func NewOrderHandler(facade OrderFacade) *OrderHandler {
	return &OrderHandler{facade: facade}
}

// Create handles POST /api/orders.
func (h *OrderHandler) Create(c *gin.Context) {
	clientID := CurrentClientID(c)
	if clientID == 0 {
		c.Status(http.StatusForbidden)
		return
	}

	var req dto.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	order, err := h.facade.CreateOrder(c.Request.Context(), clientID, req.Title, req.Brief, req.PriceCents, req.DueAt)
	if err != nil {
		switch {
		case errors.Is(err, domainErrors.ErrInvalidOrder):
			c.Status(http.StatusUnprocessableEntity)
		default:
			c.Status(http.StatusInternalServerError)
		}
		return
	}

	c.JSON(http.StatusCreated, toOrderResponse(*order))
}

// List handles GET /api/orders. Admins see every order, clients their own.
func (h *OrderHandler) List(c *gin.Context) {
	var (
		orders []model.Order
		err    error
	)
	if IsAdmin(c) {
		orders, err = h.facade.AllOrders(c.Request.Context())
	} else {
		orders, err = h.facade.Orders(c.Request.Context(), CurrentClientID(c))
	}
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

// Get handles GET /api/orders/:id.
func (h *OrderHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		c.Status(http.StatusBadRequest)
		return
	}

	order, err := h.facade.OrderByID(c.Request.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, domainErrors.ErrNotFound):
			c.Status(http.StatusNotFound)
		default:
			c.Status(http.StatusInternalServerError)
		}
		return
	}

	if !IsAdmin(c) && order.ClientID != CurrentClientID(c) {
		c.Status(http.StatusNotFound)
		return
	}

	c.JSON(http.StatusOK, toOrderResponse(*order))
}

// Transition returns a handler executing the named workflow transition,
// mounted per route. Client-side transitions additionally verify ownership.
func (h *OrderHandler) Transition(name string) gin.HandlerFunc {
	clientOwned := name == usecase.TransitionCancel || name == usecase.TransitionRequestRevision

	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			c.Status(http.StatusBadRequest)
			return
		}

		if clientOwned && !IsAdmin(c) {
			order, err := h.facade.OrderByID(c.Request.Context(), id)
			if err != nil {
				if errors.Is(err, domainErrors.ErrNotFound) {
					c.Status(http.StatusNotFound)
					return
				}
				c.Status(http.StatusInternalServerError)
				return
			}
			if order.ClientID != CurrentClientID(c) {
				c.Status(http.StatusNotFound)
				return
			}
		}

		order, err := h.facade.ApplyTransition(c.Request.Context(), id, name)
		if err != nil {
			switch {
			case errors.Is(err, domainErrors.ErrNotFound):
				c.Status(http.StatusNotFound)
			case errors.Is(err, domainErrors.ErrInvalidTransition):
				c.Status(http.StatusConflict)
			default:
				c.Status(http.StatusInternalServerError)
			}
			return
		}

		c.JSON(http.StatusOK, toOrderResponse(*order))
	}
}

// TrackTime handles POST /api/orders/:id/time.
func (h *OrderHandler) TrackTime(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		c.Status(http.StatusBadRequest)
		return
	}

	var req dto.TrackTimeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	entry, err := h.facade.TrackTime(c.Request.Context(), id, req.Minutes, req.Note)
	if err != nil {
		switch {
		case errors.Is(err, domainErrors.ErrNotFound):
			c.Status(http.StatusNotFound)
		case errors.Is(err, domainErrors.ErrInvalidTimeEntry):
			c.Status(http.StatusUnprocessableEntity)
		default:
			c.Status(http.StatusInternalServerError)
		}
		return
	}

	c.JSON(http.StatusCreated, toTimeEntryResponse(*entry))
}

// TimeEntries handles GET /api/orders/:id/time.
func (h *OrderHandler) TimeEntries(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		c.Status(http.StatusBadRequest)
		return
	}

	order, err := h.facade.OrderByID(c.Request.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, domainErrors.ErrNotFound):
			c.Status(http.StatusNotFound)
		default:
			c.Status(http.StatusInternalServerError)
		}
		return
	}
	if !IsAdmin(c) && order.ClientID != CurrentClientID(c) {
		c.Status(http.StatusNotFound)
		return
	}

	entries, err := h.facade.TimeEntries(c.Request.Context(), id)
	if err != nil {
		c.Status(http.StatusInternalServerError)
		return
	}
	if len(entries) == 0 {
		c.Status(http.StatusNoContent)
		return
	}

	response := make([]dto.TimeEntryResponse, 0, len(entries))
	for _, e := range entries {
		response = append(response, toTimeEntryResponse(e))
	}
	c.JSON(http.StatusOK, response)
}
