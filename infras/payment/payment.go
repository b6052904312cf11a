package payment

//go:generate go run go.uber.org/mock/mockgen -source=./payment.go -destination=./mocks/payment_mock.go -package=mocks

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"lodge/config"
	"lodge/infras/otel"
	"lodge/shared/constant"
	"lodge/shared/failure"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
)

const (
	otelScopeName = "payment"

	defaultTimeoutSeconds   = 10
	defaultBreakerThreshold = 5
)

// CheckoutRequest is the payload sent to the checkout provider. Amount is the
// total charge in the configured currency, service fee included.
type CheckoutRequest struct {
	Amount      float64 `json:"amount"`
	Currency    string  `json:"currency"`
	Description string  `json:"description"`
	CustomerRef string  `json:"customer_ref"`
	SuccessURL  string  `json:"success_url"`
	CancelURL   string  `json:"cancel_url"`

	Metadata map[string]string `json:"metadata"`
}

// CheckoutSession is the provider's answer: where to send the guest.
type CheckoutSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// Client talks to the external checkout provider.
type Client interface {
	CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (CheckoutSession, error)
	VerifySignature(payload []byte, signature string) error
}

type clientImpl struct {
	config  *config.Config
	otel    otel.Otel
	rest    *resty.Client
	breaker *gobreaker.CircuitBreaker
}

func New(cfg *config.Config, otel otel.Otel) Client {
	timeout := cfg.External.Payment.TimeoutSeconds
	if timeout <= 0 {
		timeout = defaultTimeoutSeconds
	}

	threshold := cfg.External.Payment.BreakerThreshold
	if threshold == 0 {
		threshold = defaultBreakerThreshold
	}

	rest := resty.New().
		SetBaseURL(cfg.External.Payment.BaseURL).
		SetTimeout(time.Duration(timeout) * time.Second).
		SetAuthToken(cfg.External.Payment.SecretKey)

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name: "checkout-provider",
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("Circuit breaker state changed.")
		},
	})

	return &clientImpl{
		config:  cfg,
		otel:    otel,
		rest:    rest,
		breaker: breaker,
	}
}

func (c *clientImpl) CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (res CheckoutSession, err error) {
	ctx, scope := c.otel.NewScope(ctx, constant.OtelExternalScopeName, otelScopeName+".CreateCheckoutSession")
	defer scope.End()
	defer scope.TraceIfError(err)

	result, err := c.breaker.Execute(func() (interface{}, error) {
		var session CheckoutSession

		resp, err := c.rest.R().
			SetContext(ctx).
			SetBody(req).
			SetResult(&session).
			Post("/v1/checkout/sessions")
		if err != nil {
			return nil, fmt.Errorf("checkout provider request failed: %w", err)
		}

		if resp.IsError() {
			return nil, fmt.Errorf("checkout provider returned %s", resp.Status())
		}

		return session, nil
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to create checkout session")

		return res, failure.Upstream("payment provider unavailable") // nolint:wrapcheck
	}

	res, _ = result.(CheckoutSession)

	return res, nil
}

// VerifySignature checks the HMAC-SHA256 signature the provider puts on every
// confirmation callback. Confirmations without a valid signature are never
// trusted, redirect query parameters included.
func (c *clientImpl) VerifySignature(payload []byte, signature string) error {
	if signature == constant.Empty {
		return failure.Unauthorized("missing webhook signature") // nolint:wrapcheck
	}

	mac := hmac.New(sha256.New, []byte(c.config.External.Payment.WebhookSecret))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return failure.Unauthorized("invalid webhook signature") // nolint:wrapcheck
	}

	return nil
}

// Sign computes the signature the provider would attach to the payload. Used
// by tests and local tooling to forge valid callbacks.
func Sign(secret string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)

	return hex.EncodeToString(mac.Sum(nil))
}
