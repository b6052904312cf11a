package payment_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"lodge/config"
	"lodge/infras/otel/mocks"
	"lodge/infras/payment"
)

func newClient(secret string) payment.Client {
	cfg := &config.Config{}
	cfg.External.Payment.WebhookSecret = secret

	return payment.New(cfg, mocks.NewOtel())
}

func TestVerifySignature(t *testing.T) {
	client := newClient("webhook-secret")
	payload := []byte(`{"session_id":"sess-1","property_id":"prop-1"}`)

	t.Run("accepts a correctly signed payload", func(t *testing.T) {
		signature := payment.Sign("webhook-secret", payload)

		assert.NoError(t, client.VerifySignature(payload, signature))
	})

	t.Run("rejects a missing signature", func(t *testing.T) {
		assert.Error(t, client.VerifySignature(payload, ""))
	})

	t.Run("rejects a signature made with the wrong secret", func(t *testing.T) {
		signature := payment.Sign("other-secret", payload)

		assert.Error(t, client.VerifySignature(payload, signature))
	})

	t.Run("rejects a signature over different bytes", func(t *testing.T) {
		signature := payment.Sign("webhook-secret", payload)
		tampered := []byte(`{"session_id":"sess-1","property_id":"prop-2"}`)

		assert.Error(t, client.VerifySignature(tampered, signature))
	})

	t.Run("rejects garbage signatures", func(t *testing.T) {
		assert.Error(t, client.VerifySignature(payload, "deadbeef"))
	})
}

func TestSign_Deterministic(t *testing.T) {
	payload := []byte("payload")

	assert.Equal(t, payment.Sign("secret", payload), payment.Sign("secret", payload))
	assert.NotEqual(t, payment.Sign("secret", payload), payment.Sign("another", payload))
}
