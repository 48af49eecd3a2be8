package payment

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Domenick1991/shortlet/config"
)

type Status string

const (
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
	StatusPending Status = "pending"
)

var (
	ErrInvalidSignature = errors.New("invalid webhook signature")
	ErrNotFound         = errors.New("transaction not found")
)

// Verification is the gateway's view of a transaction. Amount is in minor
// units.
type Verification struct {
	Reference string
	Status    Status
	Amount    int64
	Currency  string
}

// WebhookEvent is a verified, decoded webhook. Status is empty for events
// that carry no payment outcome.
type WebhookEvent struct {
	Type      string
	Reference string
	Status    Status
	Amount    int64
}

type Gateway interface {
	Name() string
	SignatureHeader() string
	Verify(ctx context.Context, reference string) (*Verification, error)
	ParseWebhook(payload []byte, signature string) (*WebhookEvent, error)
}

func NewGateway(cfg config.PaymentConfig) (Gateway, error) {
	switch cfg.Provider {
	case "paystack":
		return NewPaystack(cfg.PaystackSecretKey, cfg.PaystackBaseURL, &http.Client{Timeout: 15 * time.Second}), nil
	case "stripe":
		return NewStripe(cfg.StripeSecretKey, cfg.StripeWebhookSecret), nil
	}
	return nil, fmt.Errorf("unknown payment provider %q", cfg.Provider)
}
