// Package service holds outbound integrations used by the HTTP handlers.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/gym-booking/internal/metrics"
	"github.com/iliyamo/gym-booking/internal/queue"
)

// EventPublisher is what handlers need to announce a committed booking
// change.  Failures are reported but never undo the write.
type EventPublisher interface {
	PublishBooking(ctx context.Context, ev queue.BookingEvent) error
}

// BookingPublisher publishes booking events to RabbitMQ over one lazily
// opened connection, redialling after the broker drops it.
type BookingPublisher struct {
	url string
	log *logrus.Logger

	mu   sync.Mutex
	conn *amqp.Connection
}

func NewBookingPublisher(url string, log *logrus.Logger) *BookingPublisher {
	return &BookingPublisher{url: url, log: log}
}

// PublishBooking declares the durable queue and publishes ev as a
// persistent JSON message routed through the default exchange.
func (p *BookingPublisher) PublishBooking(ctx context.Context, ev queue.BookingEvent) error {
	err := p.publish(ctx, ev)
	metrics.RecordEventPublished(err == nil)
	if err != nil {
		p.log.WithError(err).WithFields(logrus.Fields{
			"type":       ev.Type,
			"booking_id": ev.BookingID,
		}).Warn("rabbitmq: publish booking event failed")
	}
	return err
}

func (p *BookingPublisher) publish(ctx context.Context, ev queue.BookingEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	conn, err := p.connection()
	if err != nil {
		return err
	}
	ch, err := conn.Channel()
	if err != nil {
		p.drop(conn)
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(queue.BookingQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	return ch.PublishWithContext(ctx, "", queue.BookingQueue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Type:         ev.Type,
		Body:         body,
	})
}

func (p *BookingPublisher) connection() (*amqp.Connection, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.conn != nil && !p.conn.IsClosed() {
		return p.conn, nil
	}
	conn, err := amqp.Dial(p.url)
	if err != nil {
		return nil, fmt.Errorf("dial broker: %w", err)
	}
	p.conn = conn
	return conn, nil
}

func (p *BookingPublisher) drop(conn *amqp.Connection) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.conn == conn {
		_ = conn.Close()
		p.conn = nil
	}
}

// Close releases the broker connection, if any.
func (p *BookingPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.conn == nil {
		return nil
	}
	err := p.conn.Close()
	p.conn = nil
	return err
}

// NopPublisher discards events.  It is used when EVENTS_ENABLED is false.
type NopPublisher struct{}

func (NopPublisher) PublishBooking(context.Context, queue.BookingEvent) error { return nil }
