package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
)

// referenceKey is the PaymentIntent metadata key carrying the booking
// reference.
const referenceKey = "reference"

type intentFinder interface {
	FindByReference(ctx context.Context, reference string) (*stripe.PaymentIntent, error)
}

type stripeSearch struct {
	client *stripe.Client
}

func (s stripeSearch) FindByReference(ctx context.Context, reference string) (*stripe.PaymentIntent, error) {
	params := &stripe.PaymentIntentSearchParams{}
	params.Query = fmt.Sprintf("metadata['%s']:'%s'", referenceKey, strings.ReplaceAll(reference, "'", ""))

	var found *stripe.PaymentIntent
	for pi, err := range s.client.V1PaymentIntents.Search(ctx, params) {
		if err != nil {
			return nil, err
		}
		// a succeeded intent wins over retries that failed
		if found == nil || pi.Status == stripe.PaymentIntentStatusSucceeded {
			found = pi
		}
	}
	if found == nil {
		return nil, ErrNotFound
	}
	return found, nil
}

type Stripe struct {
	intents       intentFinder
	webhookSecret string
}

func NewStripe(secretKey, webhookSecret string) *Stripe {
	return &Stripe{
		intents:       stripeSearch{client: stripe.NewClient(secretKey)},
		webhookSecret: webhookSecret,
	}
}

func (s *Stripe) Name() string { return "stripe" }

func (s *Stripe) SignatureHeader() string { return "Stripe-Signature" }

func (s *Stripe) Verify(ctx context.Context, reference string) (*Verification, error) {
	pi, err := s.intents.FindByReference(ctx, reference)
	if err != nil {
		return nil, fmt.Errorf("stripe verify: %w", err)
	}
	return &Verification{
		Reference: reference,
		Status:    intentStatus(pi.Status),
		Amount:    pi.Amount,
		Currency:  strings.ToUpper(string(pi.Currency)),
	}, nil
}

func (s *Stripe) ParseWebhook(payload []byte, signature string) (*WebhookEvent, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signature, s.webhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	out := &WebhookEvent{Type: string(event.Type)}
	switch event.Type {
	case "payment_intent.succeeded", "payment_intent.payment_failed":
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
			return nil, fmt.Errorf("stripe webhook: decode payment intent: %w", err)
		}
		out.Reference = pi.Metadata[referenceKey]
		out.Amount = pi.Amount
		out.Status = intentStatus(pi.Status)
		if event.Type == "payment_intent.payment_failed" {
			out.Status = StatusFailed
		}
	}
	return out, nil
}

func intentStatus(s stripe.PaymentIntentStatus) Status {
	switch s {
	case stripe.PaymentIntentStatusSucceeded:
		return StatusSuccess
	case stripe.PaymentIntentStatusCanceled:
		return StatusFailed
	}
	return StatusPending
}

var _ Gateway = (*Stripe)(nil)
