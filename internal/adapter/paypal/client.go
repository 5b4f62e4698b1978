package paypal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/vfaivre/thumbdesk/internal/domain/model"
)

// ErrOrderNotFound indicates PayPal doesn't know the checkout order.
var ErrOrderNotFound = errors.New("paypal order not found")

// CheckoutSession is a freshly created provider checkout order.
type CheckoutSession struct {
	ProviderOrderID string
	ApproveURL      string
}

// Client exposes the PayPal operations the application needs.
type Client interface {
	CreateOrder(ctx context.Context, amountCents int64, currency string, orderIDs []int64) (*CheckoutSession, error)
	CaptureOrder(ctx context.Context, providerOrderID string) (*model.PaymentConfirmation, error)
	GetOrder(ctx context.Context, providerOrderID string) (*model.PaymentConfirmation, error)
}

// HTTPClient implements Client against the PayPal REST v2 checkout API.
type HTTPClient struct {
	baseURL    *url.URL
	clientID   string
	secret     string
	httpClient *http.Client
	logger     *slog.Logger

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

// NewHTTPClient creates a PayPal client with default timeout.
func NewHTTPClient(baseURL, clientID, secret string, logger *slog.Logger) (*HTTPClient, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse paypal url: %w", err)
	}
	if !parsed.IsAbs() {
		return nil, fmt.Errorf("paypal url must be absolute")
	}
	return &HTTPClient{
		baseURL:  parsed,
		clientID: clientID,
		secret:   secret,
		logger:   logger,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}, nil
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

type amountPayload struct {
	CurrencyCode string `json:"currency_code"`
	Value        string `json:"value"`
}

type purchaseUnit struct {
	CustomID string        `json:"custom_id,omitempty"`
	Amount   amountPayload `json:"amount"`
}

type orderRequest struct {
	Intent        string         `json:"intent"`
	PurchaseUnits []purchaseUnit `json:"purchase_units"`
}

type orderResponse struct {
	ID            string `json:"id"`
	Status        string `json:"status"`
	PurchaseUnits []struct {
		CustomID string        `json:"custom_id"`
		Amount   amountPayload `json:"amount"`
		Payments struct {
			Captures []struct {
				ID     string        `json:"id"`
				Status string        `json:"status"`
				Amount amountPayload `json:"amount"`
			} `json:"captures"`
		} `json:"payments"`
	} `json:"purchase_units"`
	Links []struct {
		Href string `json:"href"`
		Rel  string `json:"rel"`
	} `json:"links"`
}

// CreateOrder opens a checkout session covering the given local orders. The
// order-id list rides along in the purchase unit's custom field so that
// confirmations carry it back.
func (c *HTTPClient) CreateOrder(ctx context.Context, amountCents int64, currency string, orderIDs []int64) (*CheckoutSession, error) {
	body := orderRequest{
		Intent: "CAPTURE",
		PurchaseUnits: []purchaseUnit{{
			CustomID: model.JoinOrderIDs(orderIDs),
			Amount:   amountPayload{CurrencyCode: currency, Value: FormatAmount(amountCents)},
		}},
	}

	var resp orderResponse
	if err := c.do(ctx, http.MethodPost, "/v2/checkout/orders", body, &resp); err != nil {
		return nil, err
	}

	session := &CheckoutSession{ProviderOrderID: resp.ID}
	for _, link := range resp.Links {
		if link.Rel == "approve" {
			session.ApproveURL = link.Href
		}
	}
	return session, nil
}

// CaptureOrder captures an approved checkout order and returns the
// confirmation in normalized form.
func (c *HTTPClient) CaptureOrder(ctx context.Context, providerOrderID string) (*model.PaymentConfirmation, error) {
	path := fmt.Sprintf("/v2/checkout/orders/%s/capture", url.PathEscape(providerOrderID))
	var resp orderResponse
	if err := c.do(ctx, http.MethodPost, path, struct{}{}, &resp); err != nil {
		return nil, err
	}
	return c.toConfirmation(providerOrderID, resp)
}

// GetOrder fetches the current provider-side state of a checkout order.
func (c *HTTPClient) GetOrder(ctx context.Context, providerOrderID string) (*model.PaymentConfirmation, error) {
	path := fmt.Sprintf("/v2/checkout/orders/%s", url.PathEscape(providerOrderID))
	var resp orderResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return c.toConfirmation(providerOrderID, resp)
}

func (c *HTTPClient) toConfirmation(providerOrderID string, resp orderResponse) (*model.PaymentConfirmation, error) {
	raw, err := json.Marshal(resp)
	if err != nil {
		return nil, err
	}

	conf := &model.PaymentConfirmation{
		ProviderOrderID: providerOrderID,
		Status:          resp.Status,
		RawPayload:      string(raw),
	}
	if resp.ID != "" {
		conf.ProviderOrderID = resp.ID
	}
	if len(resp.PurchaseUnits) > 0 {
		unit := resp.PurchaseUnits[0]
		conf.OrderIDs = model.SplitOrderIDs(unit.CustomID)
		conf.Currency = unit.Amount.CurrencyCode
		conf.AmountCents = ParseAmountCents(unit.Amount.Value)
		if len(unit.Payments.Captures) > 0 {
			capture := unit.Payments.Captures[0]
			conf.ProviderCaptureID = capture.ID
			if capture.Amount.Value != "" {
				conf.Currency = capture.Amount.CurrencyCode
				conf.AmountCents = ParseAmountCents(capture.Amount.Value)
			}
		}
	}
	return conf, nil
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body, out any) error {
	token, err := c.token(ctx)
	if err != nil {
		return err
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(encoded)
	}

	endpoint := *c.baseURL
	endpoint.Path = strings.TrimSuffix(endpoint.Path, "/") + path

	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrOrderNotFound
	case resp.StatusCode >= http.StatusBadRequest:
		payload, _ := io.ReadAll(resp.Body)
		c.logger.Error("paypal request failed",
			slog.String("path", path),
			slog.Int("status", resp.StatusCode),
			slog.String("body", string(payload)),
		)
		return fmt.Errorf("paypal error: %s", resp.Status)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *HTTPClient) token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && time.Now().Before(c.tokenExpiry) {
		return c.accessToken, nil
	}

	endpoint := *c.baseURL
	endpoint.Path = strings.TrimSuffix(endpoint.Path, "/") + "/v1/oauth2/token"

	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(c.clientID, c.secret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(resp.Body)
		c.logger.Error("paypal token request failed", slog.Int("status", resp.StatusCode), slog.String("body", string(payload)))
		return "", fmt.Errorf("paypal auth error: %s", resp.Status)
	}

	var data tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return "", err
	}

	c.accessToken = data.AccessToken
	// Renew a minute early to avoid using a token mid-expiry.
	c.tokenExpiry = time.Now().Add(time.Duration(data.ExpiresIn)*time.Second - time.Minute)
	return c.accessToken, nil
}

// ParseAmountCents converts a provider decimal amount string ("12.34") to
// minor currency units. Malformed values yield 0, which settlement treats as
// "no amount reported".
func ParseAmountCents(value string) int64 {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	whole, frac, _ := strings.Cut(value, ".")
	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0
	}
	var cents int64
	if frac != "" {
		if len(frac) > 2 {
			frac = frac[:2]
		}
		for len(frac) < 2 {
			frac += "0"
		}
		cents, err = strconv.ParseInt(frac, 10, 64)
		if err != nil {
			return 0
		}
	}
	return units*100 + cents
}

// FormatAmount renders minor currency units as the provider's decimal string.
func FormatAmount(cents int64) string {
	return fmt.Sprintf("%d.%02d", cents/100, cents%100)
}
