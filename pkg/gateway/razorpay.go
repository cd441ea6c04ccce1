// Package gateway talks to the payment gateway's Orders API.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"labor-market/pkg/utils"
)

var ErrNotConfigured = errors.New("payment gateway not configured")

// APIError is a non-2xx answer from the gateway.
type APIError struct {
	StatusCode  int
	Code        string
	Description string
}

func (e *APIError) Error() string {
	if e.Description == "" {
		return fmt.Sprintf("gateway returned %d", e.StatusCode)
	}
	return fmt.Sprintf("gateway returned %d: %s (%s)", e.StatusCode, e.Description, e.Code)
}

// Notes is the gateway's free-form key/value bag. The API encodes an empty
// bag as [] rather than {}.
type Notes map[string]string

func (n *Notes) UnmarshalJSON(b []byte) error {
	trimmed := bytes.TrimSpace(b)
	if bytes.Equal(trimmed, []byte("[]")) || bytes.Equal(trimmed, []byte("null")) {
		*n = Notes{}
		return nil
	}

	var m map[string]any
	if err := json.Unmarshal(trimmed, &m); err != nil {
		return err
	}

	out := make(Notes, len(m))
	for k, v := range m {
		switch val := v.(type) {
		case string:
			out[k] = val
		default:
			out[k] = fmt.Sprint(val)
		}
	}
	*n = out
	return nil
}

type Order struct {
	ID         string `json:"id"`
	Amount     int64  `json:"amount"`
	AmountPaid int64  `json:"amount_paid"`
	AmountDue  int64  `json:"amount_due"`
	Currency   string `json:"currency"`
	Receipt    string `json:"receipt"`
	Status     string `json:"status"`
	Notes      Notes  `json:"notes"`
	CreatedAt  int64  `json:"created_at"`
}

type CreateOrderRequest struct {
	Amount      int64 // minor units
	Currency    string
	Receipt     string
	AutoCapture bool
	Notes       map[string]string
}

type createOrderPayload struct {
	Amount         int64             `json:"amount"`
	Currency       string            `json:"currency"`
	Receipt        string            `json:"receipt"`
	PaymentCapture int               `json:"payment_capture"`
	Notes          map[string]string `json:"notes,omitempty"`
}

type listOrdersResponse struct {
	Count int     `json:"count"`
	Items []Order `json:"items"`
}

type errorResponse struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

// Client is safe for concurrent use; build one per process.
type Client struct {
	keyID     string
	keySecret string
	baseURL   string
	http      *http.Client
}

func NewClient(cfg utils.GatewayConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	return &Client{
		keyID:     cfg.KeyID,
		keySecret: cfg.KeySecret,
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		http:      &http.Client{Timeout: timeout},
	}
}

func (c *Client) CreateOrder(ctx context.Context, req CreateOrderRequest) (*Order, error) {
	if req.Amount <= 0 {
		return nil, fmt.Errorf("order amount must be positive, got %d", req.Amount)
	}

	payload := createOrderPayload{
		Amount:   req.Amount,
		Currency: req.Currency,
		Receipt:  req.Receipt,
		Notes:    req.Notes,
	}
	if req.AutoCapture {
		payload.PaymentCapture = 1
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode order request: %w", err)
	}

	var order Order
	if err := c.do(ctx, http.MethodPost, "/orders", bytes.NewReader(body), &order); err != nil {
		return nil, fmt.Errorf("create order %s: %w", req.Receipt, err)
	}
	return &order, nil
}

// ListOrders pages through orders created in [from, to].
func (c *Client) ListOrders(ctx context.Context, from, to time.Time) ([]Order, error) {
	const pageSize = 100

	var orders []Order
	for skip := 0; ; skip += pageSize {
		q := url.Values{}
		q.Set("from", strconv.FormatInt(from.Unix(), 10))
		q.Set("to", strconv.FormatInt(to.Unix(), 10))
		q.Set("count", strconv.Itoa(pageSize))
		q.Set("skip", strconv.Itoa(skip))

		var page listOrdersResponse
		if err := c.do(ctx, http.MethodGet, "/orders?"+q.Encode(), nil, &page); err != nil {
			return nil, fmt.Errorf("list orders: %w", err)
		}

		orders = append(orders, page.Items...)
		if len(page.Items) < pageSize {
			return orders, nil
		}
	}
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, out any) error {
	if c.keyID == "" || c.keySecret == "" {
		return ErrNotConfigured
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.SetBasicAuth(c.keyID, c.keySecret)

	res, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: res.StatusCode}
		var er errorResponse
		if json.Unmarshal(raw, &er) == nil {
			apiErr.Code = er.Error.Code
			apiErr.Description = er.Error.Description
		}
		return apiErr
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
