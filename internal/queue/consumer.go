package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/cenkalti/backoff/v4"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/gym-booking/internal/metrics"
)

// Consumer reads booking events from BookingQueue and appends one line per
// event to a log file.
type Consumer struct {
	url     string
	logPath string
	log     *logrus.Logger
}

func NewConsumer(url, logPath string, log *logrus.Logger) *Consumer {
	return &Consumer{url: url, logPath: logPath, log: log}
}

// Run dials the broker and consumes until ctx is cancelled, reconnecting
// with exponential backoff whenever the connection or channel drops.
func (c *Consumer) Run(ctx context.Context) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = time.Second
	bo.MaxInterval = 30 * time.Second
	bo.MaxElapsedTime = 0

	for {
		conn, err := amqp.Dial(c.url)
		if err != nil {
			wait := bo.NextBackOff()
			c.log.WithError(err).WithField("retry_in", wait).Warn("booking consumer: dial failed")
			if !sleep(ctx, wait) {
				return ctx.Err()
			}
			continue
		}
		bo.Reset()

		err = c.consume(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.log.WithError(err).Warn("booking consumer: consume loop ended, reconnecting")
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func (c *Consumer) consume(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		c.log.WithError(err).Warn("booking consumer: set QoS failed")
	}
	if _, err := ch.QueueDeclare(BookingQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.Consume(BookingQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	c.log.WithField("queue", BookingQueue).Info("booking consumer: listening")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := c.handle(d.Body); err != nil {
				c.log.WithError(err).Error("booking consumer: handle message failed")
				metrics.RecordEventConsumed(false)
				_ = d.Nack(false, false) // no requeue, avoids a poison-message loop
				continue
			}
			metrics.RecordEventConsumed(true)
			_ = d.Ack(false)
		}
	}
}

func (c *Consumer) handle(body []byte) error {
	var ev BookingEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if ev.Type == "" || ev.BookingID == 0 {
		return errors.New("event without type or booking id")
	}

	if err := os.MkdirAll(filepath.Dir(c.logPath), 0o755); err != nil {
		return fmt.Errorf("mkdir log dir: %w", err)
	}
	f, err := os.OpenFile(c.logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(formatLine(ev)); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}

func formatLine(ev BookingEvent) string {
	return fmt.Sprintf("[%s] %s | booking_id=%d | member_id=%d | trainer_id=%d | activity_id=%d | slot=\"%s\"\n",
		ev.OccurredAt, ev.Type, ev.BookingID, ev.MemberID, ev.TrainerID, ev.ActivityID, ev.DateTime)
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
