package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/segmentio/kafka-go"
)

const (
	defaultAttempts = 3
	defaultBackoff  = 500 * time.Millisecond
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Producer struct {
	brokers  []string
	writer   messageWriter
	attempts int
	backoff  time.Duration
}

type ProducerOption func(*Producer)

// WithAttempts sets how many times a write is tried before Publish gives up.
func WithAttempts(n int) ProducerOption {
	return func(p *Producer) {
		if n > 0 {
			p.attempts = n
		}
	}
}

func WithBackoff(d time.Duration) ProducerOption {
	return func(p *Producer) {
		p.backoff = d
	}
}

func NewProducer(brokers []string, opts ...ProducerOption) *Producer {
	p := &Producer{
		brokers: brokers,
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Balancer:     &kafka.Hash{},
			BatchTimeout: 50 * time.Millisecond,
			RequiredAcks: kafka.RequireOne,
		},
		attempts: defaultAttempts,
		backoff:  defaultBackoff,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Publish writes payload as JSON keyed by key, so every event of one booking
// lands on the same partition in order. Failed writes are retried with a
// linear backoff until the attempts run out or ctx is done.
func (p *Producer) Publish(ctx context.Context, topic, key string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", topic, err)
	}
	msg := kafka.Message{Topic: topic, Key: []byte(key), Value: data, Time: time.Now()}

	attempts := max(p.attempts, 1)
	var lastErr error
	for i := range attempts {
		if lastErr = p.writer.WriteMessages(ctx, msg); lastErr == nil {
			log.Printf("[kafka] published topic=%s key=%s", topic, key)
			return nil
		}
		log.Printf("[kafka] publish topic=%s key=%s attempt %d: %v", topic, key, i+1, lastErr)

		if i < attempts-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(i+1) * p.backoff):
			}
		}
	}
	return fmt.Errorf("publish to %s after %d attempts: %w", topic, attempts, lastErr)
}

func (p *Producer) Close() error {
	if p.writer != nil {
		return p.writer.Close()
	}
	return nil
}

// CheckConnection dials the first broker and reads its partitions.
func (p *Producer) CheckConnection(ctx context.Context) error {
	if len(p.brokers) == 0 {
		return fmt.Errorf("no kafka brokers configured")
	}
	conn, err := kafka.DialContext(ctx, "tcp", p.brokers[0])
	if err != nil {
		return fmt.Errorf("dial kafka %s: %w", p.brokers[0], err)
	}
	defer conn.Close()

	if _, err := conn.ReadPartitions(); err != nil {
		return fmt.Errorf("read partitions: %w", err)
	}
	return nil
}
