package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"
)

const defaultPaystackBaseURL = "https://api.paystack.co"

type Paystack struct {
	secretKey string
	baseURL   string
	client    *http.Client
}

func NewPaystack(secretKey, baseURL string, client *http.Client) *Paystack {
	if baseURL == "" {
		baseURL = defaultPaystackBaseURL
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &Paystack{secretKey: secretKey, baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

func (p *Paystack) Name() string { return "paystack" }

func (p *Paystack) SignatureHeader() string { return "x-paystack-signature" }

func (p *Paystack) Verify(ctx context.Context, reference string) (*Verification, error) {
	endpoint := p.baseURL + "/transaction/verify/" + url.PathEscape(reference)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+p.secretKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("paystack verify: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("paystack verify: read body: %w", err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode != http.StatusOK || !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("paystack verify: unexpected response %d: %s", resp.StatusCode, gjson.GetBytes(body, "message").String())
	}
	if !gjson.GetBytes(body, "status").Bool() {
		return nil, fmt.Errorf("paystack verify: %s", gjson.GetBytes(body, "message").String())
	}

	data := gjson.GetBytes(body, "data")
	return &Verification{
		Reference: data.Get("reference").String(),
		Status:    paystackStatus(data.Get("status").String()),
		Amount:    data.Get("amount").Int(),
		Currency:  data.Get("currency").String(),
	}, nil
}

// ParseWebhook checks the HMAC-SHA512 of the raw body against the signature
// header before looking at the payload.
func (p *Paystack) ParseWebhook(payload []byte, signature string) (*WebhookEvent, error) {
	mac := hmac.New(sha512.New, []byte(p.secretKey))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))
	if signature == "" || !hmac.Equal([]byte(expected), []byte(strings.ToLower(signature))) {
		return nil, ErrInvalidSignature
	}
	if !gjson.ValidBytes(payload) {
		return nil, fmt.Errorf("paystack webhook: malformed payload")
	}

	event := &WebhookEvent{
		Type:      gjson.GetBytes(payload, "event").String(),
		Reference: gjson.GetBytes(payload, "data.reference").String(),
		Amount:    gjson.GetBytes(payload, "data.amount").Int(),
	}
	if event.Type == "charge.success" {
		event.Status = StatusSuccess
	}
	return event, nil
}

func paystackStatus(s string) Status {
	switch s {
	case "success":
		return StatusSuccess
	case "failed", "abandoned", "reversed":
		return StatusFailed
	}
	return StatusPending
}

var _ Gateway = (*Paystack)(nil)
