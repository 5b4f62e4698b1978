package paypal

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func newTestServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *HTTPClient) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewHTTPClient(server.URL, "client-id", "secret", testLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return server, client
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Fatalf("encode response: %v", err)
	}
}

func TestNewHTTPClient(t *testing.T) {
	if _, err := NewHTTPClient("://bad", "id", "secret", testLogger()); err == nil {
		t.Fatal("expected error for malformed url")
	}
	if _, err := NewHTTPClient("/relative", "id", "secret", testLogger()); err == nil {
		t.Fatal("expected error for relative url")
	}
}

func TestCreateOrder(t *testing.T) {
	var sawAuth, sawCreate bool
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/oauth2/token":
			user, pass, ok := r.BasicAuth()
			if !ok || user != "client-id" || pass != "secret" {
				t.Fatalf("unexpected credentials: %s:%s", user, pass)
			}
			sawAuth = true
			writeJSON(t, w, map[string]any{"access_token": "tok", "expires_in": 3600})
		case "/v2/checkout/orders":
			if got := r.Header.Get("Authorization"); got != "Bearer tok" {
				t.Fatalf("unexpected auth header: %q", got)
			}
			var req orderRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Fatalf("decode request: %v", err)
			}
			if req.Intent != "CAPTURE" || len(req.PurchaseUnits) != 1 {
				t.Fatalf("unexpected request: %+v", req)
			}
			unit := req.PurchaseUnits[0]
			if unit.CustomID != "1,2" || unit.Amount.Value != "30.00" {
				t.Fatalf("unexpected purchase unit: %+v", unit)
			}
			sawCreate = true
			writeJSON(t, w, map[string]any{
				"id":     "PP-9",
				"status": "CREATED",
				"links": []map[string]string{
					{"rel": "self", "href": "https://provider.example/self"},
					{"rel": "approve", "href": "https://provider.example/approve/PP-9"},
				},
			})
		default:
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
	})

	session, err := client.CreateOrder(context.Background(), 3000, "EUR", []int64{1, 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if session.ProviderOrderID != "PP-9" || session.ApproveURL != "https://provider.example/approve/PP-9" {
		t.Fatalf("unexpected session: %+v", session)
	}
	if !sawAuth || !sawCreate {
		t.Fatal("expected token and create calls")
	}
}

func TestCaptureOrder(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/oauth2/token":
			writeJSON(t, w, map[string]any{"access_token": "tok", "expires_in": 3600})
		case "/v2/checkout/orders/PP-9/capture":
			writeJSON(t, w, map[string]any{
				"id":     "PP-9",
				"status": "COMPLETED",
				"purchase_units": []map[string]any{{
					"custom_id": "1,2",
					"amount":    map[string]string{"currency_code": "EUR", "value": "30.00"},
					"payments": map[string]any{
						"captures": []map[string]any{{
							"id":     "CAP-1",
							"status": "COMPLETED",
							"amount": map[string]string{"currency_code": "EUR", "value": "30.00"},
						}},
					},
				}},
			})
		default:
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
	})

	conf, err := client.CaptureOrder(context.Background(), "PP-9")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if conf.ProviderOrderID != "PP-9" || conf.ProviderCaptureID != "CAP-1" {
		t.Fatalf("unexpected confirmation: %+v", conf)
	}
	if !conf.Completed() {
		t.Fatalf("expected completed confirmation: %+v", conf)
	}
	if conf.AmountCents != 3000 || conf.Currency != "EUR" {
		t.Fatalf("unexpected amount: %+v", conf)
	}
	if len(conf.OrderIDs) != 2 || conf.OrderIDs[0] != 1 || conf.OrderIDs[1] != 2 {
		t.Fatalf("unexpected order ids: %+v", conf.OrderIDs)
	}
	if conf.RawPayload == "" {
		t.Fatal("expected raw payload recorded")
	}
}

func TestGetOrderNotFound(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/oauth2/token" {
			writeJSON(t, w, map[string]any{"access_token": "tok", "expires_in": 3600})
			return
		}
		w.WriteHeader(http.StatusNotFound)
	})

	if _, err := client.GetOrder(context.Background(), "PP-missing"); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
}

func TestTokenReuse(t *testing.T) {
	tokenCalls := 0
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/oauth2/token":
			tokenCalls++
			writeJSON(t, w, map[string]any{"access_token": "tok", "expires_in": 3600})
		default:
			writeJSON(t, w, map[string]any{"id": "PP-9", "status": "CREATED"})
		}
	})

	for i := 0; i < 3; i++ {
		if _, err := client.GetOrder(context.Background(), "PP-9"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if tokenCalls != 1 {
		t.Fatalf("expected a single token request, got %d", tokenCalls)
	}
}

func TestTokenFailure(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	if _, err := client.GetOrder(context.Background(), "PP-9"); err == nil {
		t.Fatal("expected error")
	}
}

func TestAPIError(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/oauth2/token" {
			writeJSON(t, w, map[string]any{"access_token": "tok", "expires_in": 3600})
			return
		}
		http.Error(w, `{"name":"UNPROCESSABLE_ENTITY"}`, http.StatusUnprocessableEntity)
	})

	if _, err := client.CaptureOrder(context.Background(), "PP-9"); err == nil {
		t.Fatal("expected error")
	}
}

func TestParseAmountCents(t *testing.T) {
	cases := []struct {
		in   string
		want int64
	}{
		{"12.34", 1234},
		{"12.3", 1230},
		{"12", 1200},
		{"0.05", 5},
		{" 7.00 ", 700},
		{"12.345", 1234},
		{"", 0},
		{"abc", 0},
	}
	for _, tc := range cases {
		if got := ParseAmountCents(tc.in); got != tc.want {
			t.Fatalf("ParseAmountCents(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestFormatAmount(t *testing.T) {
	cases := []struct {
		in   int64
		want string
	}{
		{1234, "12.34"},
		{1200, "12.00"},
		{5, "0.05"},
		{0, "0.00"},
	}
	for _, tc := range cases {
		if got := FormatAmount(tc.in); got != tc.want {
			t.Fatalf("FormatAmount(%d) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
