package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/richxcame/scamwatch/pkg/logger"
	"go.uber.org/zap"
)

// Event is the envelope published on the bus
type Event struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Source    string          `json:"source"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// Handler processes a single event
type Handler func(ctx context.Context, event *Event) error

// Publisher is the publishing side of the bus
type Publisher interface {
	Publish(ctx context.Context, subject, eventType string, data interface{}) error
}

// Subscriber is the consuming half of Bus
type Subscriber interface {
	Subscribe(ctx context.Context, subject, queue string, handler Handler) error
}

// Bus is a thin NATS wrapper that publishes and consumes Event envelopes
type Bus struct {
	conn   *nats.Conn
	source string
}

// Connect dials NATS and returns a bus that stamps events with source
func Connect(url, source string) (*Bus, error) {
	conn, err := nats.Connect(url,
		nats.Name(source),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("eventbus: disconnected", zap.Error(err))
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info("eventbus: reconnected", zap.String("url", c.ConnectedUrl()))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}
	return &Bus{conn: conn, source: source}, nil
}

// NewEvent builds an event envelope around data
func NewEvent(source, eventType string, data interface{}) (*Event, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", eventType, err)
	}
	return &Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		Source:    source,
		Timestamp: time.Now().UTC(),
		Data:      payload,
	}, nil
}

// Publish sends an event on subject
func (b *Bus) Publish(ctx context.Context, subject, eventType string, data interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	event, err := NewEvent(b.source, eventType, data)
	if err != nil {
		return err
	}
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	if err := b.conn.Publish(subject, body); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}
	return nil
}

// Subscribe registers handler for subject within a queue group.
// Handler errors are logged; the message is not redelivered.
func (b *Bus) Subscribe(ctx context.Context, subject, queue string, handler Handler) error {
	_, err := b.conn.QueueSubscribe(subject, queue, func(msg *nats.Msg) {
		var event Event
		if err := json.Unmarshal(msg.Data, &event); err != nil {
			logger.Warn("eventbus: dropping malformed event", zap.String("subject", msg.Subject), zap.Error(err))
			return
		}
		if err := handler(ctx, &event); err != nil {
			logger.Error("eventbus: handler failed",
				zap.String("subject", msg.Subject),
				zap.String("type", event.Type),
				zap.Error(err),
			)
		}
	})
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", subject, err)
	}
	return nil
}

// Conn exposes the underlying connection for health checks
func (b *Bus) Conn() *nats.Conn {
	return b.conn
}

// Close drains the connection
func (b *Bus) Close() {
	if b.conn == nil {
		return
	}
	if err := b.conn.Drain(); err != nil {
		b.conn.Close()
	}
}
