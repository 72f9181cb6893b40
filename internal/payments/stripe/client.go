// Package stripe provides the Stripe implementation of the payment
// processor client.
package stripe

import (
	"context"
	"errors"
	"fmt"
	"strings"

	stripe "github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

// Config contains Stripe client configuration.
type Config struct {
	Enabled   bool
	SecretKey string
}

// Client creates payment intents against the Stripe API.
type Client struct {
	enabled bool
	api     *client.API
}

// NewClient creates a Stripe client. A disabled client rejects intent
// creation instead of calling out with an empty key.
func NewClient(cfg Config) (*Client, error) {
	if cfg.Enabled && cfg.SecretKey == "" {
		return nil, errors.New("stripe secret key is required when stripe is enabled")
	}

	api := &client.API{}
	api.Init(cfg.SecretKey, nil)

	return &Client{enabled: cfg.Enabled, api: api}, nil
}

// CreateIntent creates a payment intent and returns its client secret and
// id. The secret is returned to the caller only, never logged or stored.
func (c *Client) CreateIntent(ctx context.Context, amountMinorUnits int64, currencyCode, idempotencyKey string) (string, string, error) {
	if !c.enabled {
		return "", "", errors.New("payments are disabled")
	}

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amountMinorUnits),
		Currency: stripe.String(strings.ToLower(currencyCode)),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	params.SetIdempotencyKey(idempotencyKey)

	intent, err := c.api.PaymentIntents.New(params)
	if err != nil {
		return "", "", fmt.Errorf("stripe create intent: %w", err)
	}

	return intent.ClientSecret, intent.ID, nil
}
