package gateway

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"labor-market/pkg/utils"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

// ErrCardDeclined wraps card errors the payer can act on, as opposed to
// gateway or credential failures.
var ErrCardDeclined = errors.New("card declined")

type ChargeRequest struct {
	Amount          int64 // minor units
	PaymentMethodID string
	Metadata        map[string]string
}

type Charge struct {
	ID       string
	Status   string
	Amount   int64
	Currency string
}

func (c *Charge) Succeeded() bool {
	return c.Status == string(stripe.PaymentIntentStatusSucceeded)
}

// CardClient confirms card payments in a single call through Stripe
// PaymentIntents.
type CardClient struct {
	api       *client.API
	currency  string
	returnURL string
}

func NewCardClient(cfg utils.CardConfig) *CardClient {
	return newCardClient(cfg, nil)
}

func newCardClient(cfg utils.CardConfig, backends *stripe.Backends) *CardClient {
	c := &CardClient{
		currency:  strings.ToLower(cfg.Currency),
		returnURL: cfg.ReturnURL,
	}
	if cfg.SecretKey != "" {
		c.api = client.New(cfg.SecretKey, backends)
	}
	return c
}

func (c *CardClient) Charge(ctx context.Context, req ChargeRequest) (*Charge, error) {
	if c.api == nil {
		return nil, ErrNotConfigured
	}
	if req.Amount <= 0 {
		return nil, fmt.Errorf("charge amount must be positive, got %d", req.Amount)
	}

	params := &stripe.PaymentIntentParams{
		Amount:        stripe.Int64(req.Amount),
		Currency:      stripe.String(c.currency),
		PaymentMethod: stripe.String(req.PaymentMethodID),
		Confirm:       stripe.Bool(true),
	}
	if c.returnURL != "" {
		params.ReturnURL = stripe.String(c.returnURL)
	}
	params.Context = ctx
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}

	pi, err := c.api.PaymentIntents.New(params)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) && stripeErr.Type == stripe.ErrorTypeCard {
			return nil, fmt.Errorf("%w: %s", ErrCardDeclined, stripeErr.Msg)
		}
		return nil, fmt.Errorf("confirm payment intent: %w", err)
	}

	return &Charge{
		ID:       pi.ID,
		Status:   string(pi.Status),
		Amount:   pi.Amount,
		Currency: string(pi.Currency),
	}, nil
}
