package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vfaivre/thumbdesk/internal/app"
	domainErrors "github.com/vfaivre/thumbdesk/internal/domain/errors"
	"github.com/vfaivre/thumbdesk/internal/domain/model"
	"github.com/vfaivre/thumbdesk/internal/server/http/dto"
	"github.com/vfaivre/thumbdesk/internal/server/http/router"
	"github.com/vfaivre/thumbdesk/internal/test"
)

func newEngine(facade *test.StudioFacadeStub) *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	return router.Setup(facade, logger)
}

func doJSON(t *testing.T, engine *gin.Engine, method, path string, body any, authed bool) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(encoded)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if authed {
		req.Header.Set("Authorization", "Bearer token")
	}
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func TestRegisterEndpoint(t *testing.T) {
	facade := &test.StudioFacadeStub{}
	engine := newEngine(facade)

	rec := doJSON(t, engine, http.MethodPost, "/api/auth/register", dto.RegisterRequest{
		Email: "a@b.c", Password: "secret", ClientName: "Acme",
	}, false)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	if got := rec.Header().Get("Authorization"); !strings.HasPrefix(got, "Bearer ") {
		t.Fatalf("expected auth header, got %q", got)
	}

	facade.AuthFacadeStub.RegisterFn = func(context.Context, string, string, string) (string, error) {
		return "", domainErrors.ErrAlreadyExists
	}
	rec = doJSON(t, engine, http.MethodPost, "/api/auth/register", dto.RegisterRequest{
		Email: "a@b.c", Password: "secret", ClientName: "Acme",
	}, false)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected conflict, got %d", rec.Code)
	}

	rec = doJSON(t, engine, http.MethodPost, "/api/auth/register", nil, false)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected bad request, got %d", rec.Code)
	}
}

func TestLoginEndpoint(t *testing.T) {
	facade := &test.StudioFacadeStub{}
	engine := newEngine(facade)

	rec := doJSON(t, engine, http.MethodPost, "/api/auth/login", dto.LoginRequest{Email: "a@b.c", Password: "secret"}, false)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}

	facade.AuthFacadeStub.AuthenticateFn = func(context.Context, string, string) (string, error) {
		return "", domainErrors.ErrInvalidCredentials
	}
	rec = doJSON(t, engine, http.MethodPost, "/api/auth/login", dto.LoginRequest{Email: "a@b.c", Password: "bad"}, false)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected unauthorized, got %d", rec.Code)
	}
}

func TestOrdersRequireAuth(t *testing.T) {
	engine := newEngine(&test.StudioFacadeStub{})

	rec := doJSON(t, engine, http.MethodGet, "/api/orders", nil, false)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected unauthorized, got %d", rec.Code)
	}
}

func TestCreateOrderEndpoint(t *testing.T) {
	facade := &test.StudioFacadeStub{}
	engine := newEngine(facade)

	rec := doJSON(t, engine, http.MethodPost, "/api/orders", dto.CreateOrderRequest{
		Title: "channel art", PriceCents: 2500,
	}, true)
	if rec.Code != http.StatusCreated {
		t.Fatalf("unexpected status: %d body=%s", rec.Code, rec.Body.String())
	}

	var resp dto.OrderResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != string(model.OrderStatusCreated) {
		t.Fatalf("unexpected status: %s", resp.Status)
	}

	facade.OrderFacadeStub.CreateFn = func(context.Context, int64, string, string, int64, *time.Time) (*model.Order, error) {
		return nil, domainErrors.ErrInvalidOrder
	}
	rec = doJSON(t, engine, http.MethodPost, "/api/orders", dto.CreateOrderRequest{Title: " "}, true)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected unprocessable for invalid order, got %d", rec.Code)
	}
}

func TestTransitionEndpointsAdminGated(t *testing.T) {
	client := &test.StudioFacadeStub{}
	engine := newEngine(client)

	// client role may not run staff transitions
	rec := doJSON(t, engine, http.MethodPost, "/api/orders/1/accept", nil, true)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected forbidden for client, got %d", rec.Code)
	}

	admin := &test.StudioFacadeStub{}
	admin.AuthFacadeStub.Role = model.RoleAdmin
	engine = newEngine(admin)

	rec = doJSON(t, engine, http.MethodPost, "/api/orders/1/accept", nil, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected ok for admin, got %d", rec.Code)
	}

	admin.OrderFacadeStub.TransitionFn = func(ctx context.Context, orderID int64, transition string) (*model.Order, error) {
		return nil, domainErrors.ErrInvalidTransition
	}
	rec = doJSON(t, engine, http.MethodPost, "/api/orders/1/deliver", nil, true)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected conflict for illegal transition, got %d", rec.Code)
	}
}

func TestClientTransitionOwnership(t *testing.T) {
	facade := &test.StudioFacadeStub{}
	// authenticated user 1 gets client id 1; order belongs to client 2
	facade.OrderFacadeStub.GetFn = func(ctx context.Context, id int64) (*model.Order, error) {
		return test.MakeOrder(id, 2, model.OrderStatusCreated, false, 1000), nil
	}
	engine := newEngine(facade)

	rec := doJSON(t, engine, http.MethodPost, "/api/orders/7/cancel", nil, true)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected not found for foreign order, got %d", rec.Code)
	}
}

func TestCheckoutEndpoint(t *testing.T) {
	facade := &test.StudioFacadeStub{}
	engine := newEngine(facade)

	rec := doJSON(t, engine, http.MethodPost, "/api/payments/checkout", dto.CheckoutRequest{OrderIDs: []int64{1, 2}}, true)
	if rec.Code != http.StatusCreated {
		t.Fatalf("unexpected status: %d body=%s", rec.Code, rec.Body.String())
	}
	var resp dto.CheckoutResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.ProviderOrderID == "" || resp.ApproveURL == "" {
		t.Fatalf("unexpected response: %+v", resp)
	}

	rec = doJSON(t, engine, http.MethodPost, "/api/payments/checkout", dto.CheckoutRequest{}, true)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected bad request for empty selection, got %d", rec.Code)
	}

	facade.PaymentFacadeStub.CheckoutFn = func(context.Context, int64, int64, []int64) (*app.Checkout, error) {
		return nil, domainErrors.ErrNotBillable
	}
	rec = doJSON(t, engine, http.MethodPost, "/api/payments/checkout", dto.CheckoutRequest{OrderIDs: []int64{9}}, true)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected unprocessable for unbillable selection, got %d", rec.Code)
	}
}

func TestReturnEndpoint(t *testing.T) {
	facade := &test.StudioFacadeStub{}
	var gotProviderOrder string
	facade.PaymentFacadeStub.ReturnFn = func(ctx context.Context, userID, clientID int64, providerOrderID string) (int, error) {
		gotProviderOrder = providerOrderID
		return 2, nil
	}
	engine := newEngine(facade)

	rec := doJSON(t, engine, http.MethodGet, "/api/payments/return?token=PP-9", nil, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	if gotProviderOrder != "PP-9" {
		t.Fatalf("unexpected provider order: %q", gotProviderOrder)
	}
	var resp dto.SettleResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.OrdersPaid != 2 {
		t.Fatalf("unexpected orders paid: %d", resp.OrdersPaid)
	}

	rec = doJSON(t, engine, http.MethodGet, "/api/payments/return", nil, true)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected bad request without token, got %d", rec.Code)
	}

	facade.PaymentFacadeStub.ReturnFn = func(context.Context, int64, int64, string) (int, error) {
		return 0, domainErrors.ErrAmountMismatch
	}
	rec = doJSON(t, engine, http.MethodGet, "/api/payments/return?token=PP-9", nil, true)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected conflict on amount mismatch, got %d", rec.Code)
	}
}

func TestWebhookEndpoint(t *testing.T) {
	facade := &test.StudioFacadeStub{}
	var gotProviderOrder string
	facade.PaymentFacadeStub.WebhookFn = func(ctx context.Context, providerOrderID string) (int, error) {
		gotProviderOrder = providerOrderID
		return 1, nil
	}
	engine := newEngine(facade)

	// order-approved events carry the id directly
	rec := doJSON(t, engine, http.MethodPost, "/api/payments/webhook", map[string]any{
		"event_type": "CHECKOUT.ORDER.APPROVED",
		"resource":   map[string]any{"id": "PP-9", "status": "APPROVED"},
	}, false)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	if gotProviderOrder != "PP-9" {
		t.Fatalf("unexpected provider order: %q", gotProviderOrder)
	}

	// capture events reference the order through related ids
	rec = doJSON(t, engine, http.MethodPost, "/api/payments/webhook", map[string]any{
		"event_type": "PAYMENT.CAPTURE.COMPLETED",
		"resource": map[string]any{
			"id": "CAP-1",
			"supplementary_data": map[string]any{
				"related_ids": map[string]any{"order_id": "PP-10"},
			},
		},
	}, false)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	if gotProviderOrder != "PP-10" {
		t.Fatalf("unexpected provider order: %q", gotProviderOrder)
	}

	// amount mismatch is swallowed so the provider stops retrying
	facade.PaymentFacadeStub.WebhookFn = func(context.Context, string) (int, error) {
		return 0, domainErrors.ErrAmountMismatch
	}
	rec = doJSON(t, engine, http.MethodPost, "/api/payments/webhook", map[string]any{
		"resource": map[string]any{"id": "PP-9"},
	}, false)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 on amount mismatch, got %d", rec.Code)
	}

	rec = doJSON(t, engine, http.MethodPost, "/api/payments/webhook", nil, false)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected bad request for malformed body, got %d", rec.Code)
	}
}

func TestPaymentHistoryEndpoint(t *testing.T) {
	facade := &test.StudioFacadeStub{}
	engine := newEngine(facade)

	rec := doJSON(t, engine, http.MethodGet, "/api/payments", nil, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	var resp []dto.PaymentResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp) != 1 || resp[0].ProviderOrderID != "PP-1" {
		t.Fatalf("unexpected history: %+v", resp)
	}

	facade.PaymentFacadeStub.PaymentsFn = func(context.Context, int64) ([]model.Payment, error) {
		return nil, nil
	}
	rec = doJSON(t, engine, http.MethodGet, "/api/payments", nil, true)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected no content, got %d", rec.Code)
	}
}

func TestBillableOrdersEndpoint(t *testing.T) {
	facade := &test.StudioFacadeStub{}
	engine := newEngine(facade)

	rec := doJSON(t, engine, http.MethodGet, "/api/payments/orders", nil, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	var resp []dto.OrderResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp) != 1 || resp[0].Status != string(model.OrderStatusDelivered) {
		t.Fatalf("unexpected billable orders: %+v", resp)
	}
}
