package payment

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
)

type MockIntentFinder struct {
	mock.Mock
}

func (m *MockIntentFinder) FindByReference(ctx context.Context, reference string) (*stripe.PaymentIntent, error) {
	args := m.Called(ctx, reference)
	pi, _ := args.Get(0).(*stripe.PaymentIntent)
	return pi, args.Error(1)
}

func TestStripe_Verify(t *testing.T) {
	finder := new(MockIntentFinder)
	s := &Stripe{intents: finder}

	finder.On("FindByReference", mock.Anything, "GHA_1").Return(&stripe.PaymentIntent{
		ID:       "pi_1",
		Status:   stripe.PaymentIntentStatusSucceeded,
		Amount:   50000,
		Currency: stripe.Currency("ngn"),
	}, nil)

	v, err := s.Verify(context.Background(), "GHA_1")

	require.NoError(t, err)
	assert.Equal(t, &Verification{Reference: "GHA_1", Status: StatusSuccess, Amount: 50000, Currency: "NGN"}, v)
}

func TestStripe_Verify_NotFound(t *testing.T) {
	finder := new(MockIntentFinder)
	s := &Stripe{intents: finder}
	finder.On("FindByReference", mock.Anything, "GHA_X").Return(nil, ErrNotFound)

	_, err := s.Verify(context.Background(), "GHA_X")

	assert.True(t, errors.Is(err, ErrNotFound))
}

func stripeEvent(eventType, status string) []byte {
	return []byte(`{"id":"evt_1","object":"event","api_version":"` + stripe.APIVersion + `","type":"` + eventType + `",` +
		`"data":{"object":{"id":"pi_1","object":"payment_intent","status":"` + status + `","amount":75000,"currency":"ngn","metadata":{"reference":"GHA_7"}}}}`)
}

func TestStripe_ParseWebhook(t *testing.T) {
	s := &Stripe{webhookSecret: "whsec_test"}
	payload := stripeEvent("payment_intent.succeeded", "succeeded")
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{Payload: payload, Secret: "whsec_test"})

	event, err := s.ParseWebhook(payload, signed.Header)

	require.NoError(t, err)
	assert.Equal(t, &WebhookEvent{Type: "payment_intent.succeeded", Reference: "GHA_7", Status: StatusSuccess, Amount: 75000}, event)
}

func TestStripe_ParseWebhook_Failed(t *testing.T) {
	s := &Stripe{webhookSecret: "whsec_test"}
	payload := stripeEvent("payment_intent.payment_failed", "requires_payment_method")
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{Payload: payload, Secret: "whsec_test"})

	event, err := s.ParseWebhook(payload, signed.Header)

	require.NoError(t, err)
	assert.Equal(t, StatusFailed, event.Status)
	assert.Equal(t, "GHA_7", event.Reference)
}

func TestStripe_ParseWebhook_BadSignature(t *testing.T) {
	s := &Stripe{webhookSecret: "whsec_test"}
	payload := stripeEvent("payment_intent.succeeded", "succeeded")
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{Payload: payload, Secret: "whsec_other"})

	_, err := s.ParseWebhook(payload, signed.Header)

	assert.ErrorIs(t, err, ErrInvalidSignature)
}
