package email

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/Domenick1991/shortlet/config"
	"github.com/Domenick1991/shortlet/internal/kafka"
	"github.com/wneessen/go-mail"
)

type dialer interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

// Sender mails booking notifications to the admin recipients.
type Sender struct {
	client     dialer
	from       string
	recipients []string
}

func NewSender(cfg config.SMTPConfig) (*Sender, error) {
	port := cfg.Port
	if port == 0 {
		port = 587
	}
	c, err := mail.NewClient(cfg.Host,
		mail.WithPort(port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(cfg.Username),
		mail.WithPassword(cfg.Password),
	)
	if err != nil {
		return nil, fmt.Errorf("init smtp client: %w", err)
	}
	return &Sender{client: c, from: cfg.From, recipients: cfg.Recipients}, nil
}

// Send handles one booking event. Events that need no email are ignored.
func (s *Sender) Send(ctx context.Context, event kafka.BookingEvent) error {
	subject, ok := subjectFor(event)
	if !ok {
		return nil
	}
	if len(s.recipients) == 0 {
		log.Printf("[email] no recipients configured, dropping %s for %s", event.Type, event.Reference)
		return nil
	}

	msg, err := s.buildMessage(subject, body(event))
	if err != nil {
		return err
	}
	if err := s.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send %s email for %s: %w", event.Type, event.Reference, err)
	}
	log.Printf("[email] sent %s for %s to %d recipients", event.Type, event.Reference, len(s.recipients))
	return nil
}

func (s *Sender) buildMessage(subject, text string) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(s.from); err != nil {
		return nil, fmt.Errorf("set from address: %w", err)
	}
	if err := msg.To(s.recipients...); err != nil {
		return nil, fmt.Errorf("set to address: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, text)
	return msg, nil
}

func subjectFor(event kafka.BookingEvent) (string, bool) {
	title := event.PropertyTitle
	if title == "" {
		title = event.PropertyID
	}
	switch event.Type {
	case kafka.EventBookingCompleted:
		return fmt.Sprintf("New Booking: %s - Ref: %s", title, event.Reference), true
	case kafka.EventBookingConflict:
		return fmt.Sprintf("Refund needed: %s - Ref: %s", title, event.Reference), true
	case kafka.EventAvailabilitySyncFailed:
		return fmt.Sprintf("Calendar sync failed: %s - Ref: %s", title, event.Reference), true
	}
	return "", false
}

func body(event kafka.BookingEvent) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Reference: %s\n", event.Reference)
	if event.PropertyTitle != "" {
		fmt.Fprintf(&b, "Property: %s\n", event.PropertyTitle)
	}
	fmt.Fprintf(&b, "Guest: %s <%s>\n", event.Name, event.Email)
	if event.Phone != "" {
		fmt.Fprintf(&b, "Phone: %s\n", event.Phone)
	}
	fmt.Fprintf(&b, "Check-in: %s\n", event.CheckIn.Format("Mon, 02 Jan 2006"))
	fmt.Fprintf(&b, "Check-out: %s\n", event.CheckOut.Format("Mon, 02 Jan 2006"))
	fmt.Fprintf(&b, "Guests: %d\n", event.Guests)
	fmt.Fprintf(&b, "Amount: %s\n", formatAmount(event.Amount, event.Currency))
	fmt.Fprintf(&b, "Status: %s\n", event.Status)
	if event.Error != "" {
		fmt.Fprintf(&b, "Error: %s\n", event.Error)
	}
	return b.String()
}

// formatAmount renders minor units, e.g. 1250050 -> "NGN 12500.50".
func formatAmount(minor int64, currency string) string {
	if currency == "" {
		currency = "NGN"
	}
	return fmt.Sprintf("%s %d.%02d", currency, minor/100, minor%100)
}
