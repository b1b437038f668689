package event

import (
	"context"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

type TicketPurchasedHandler func(ctx context.Context, ev TicketPurchased) error

// Consumer reads ticket.purchased messages and hands them to a handler.
// Messages that fail to decode or handle are rejected without requeue.
type Consumer struct {
	url     string
	queue   string
	handler TicketPurchasedHandler
	log     *zap.Logger
}

func NewConsumer(url, queue string, handler TicketPurchasedHandler, log *zap.Logger) *Consumer {
	if queue == "" {
		queue = TicketPurchasedQueue
	}
	return &Consumer{
		url:     url,
		queue:   queue,
		handler: handler,
		log:     log.With(zap.String("component", "consumer")),
	}
}

// Run consumes until ctx is cancelled, reconnecting with backoff
func (c *Consumer) Run(ctx context.Context) {
	backoff := time.Second
	for {
		err := c.consume(ctx)
		if ctx.Err() != nil {
			c.log.Info("Consumer stopped")
			return
		}

		c.log.Warn("Consumer disconnected, retrying",
			zap.Error(err),
			zap.Duration("backoff", backoff),
		)

		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
		if backoff < 30*time.Second {
			backoff *= 2
		}
	}
}

func (c *Consumer) consume(ctx context.Context) error {
	conn, err := amqp.Dial(c.url)
	if err != nil {
		return fmt.Errorf("dial broker: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		c.log.Warn("Set QoS failed", zap.Error(err))
	}

	if _, err := ch.QueueDeclare(c.queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue %s: %w", c.queue, err)
	}

	deliveries, err := ch.ConsumeWithContext(ctx, c.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume %s: %w", c.queue, err)
	}

	c.log.Info("Consumer started", zap.String("queue", c.queue))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			c.handle(ctx, d)
		}
	}
}

func (c *Consumer) handle(ctx context.Context, d amqp.Delivery) {
	ev, err := DecodeTicketPurchased(d.Body)
	if err == nil {
		err = c.handler(ctx, ev)
	}

	if err != nil {
		c.log.Error("Handle message failed",
			zap.Error(err),
			zap.String("message_id", d.MessageId),
		)
		_ = d.Nack(false, false)
		return
	}
	_ = d.Ack(false)
}

// LogTicketPurchased is the default handler: an audit line per sold ticket
func LogTicketPurchased(log *zap.Logger) TicketPurchasedHandler {
	return func(_ context.Context, ev TicketPurchased) error {
		log.Info("Ticket purchased",
			zap.String("ticket_id", ev.TicketID.String()),
			zap.String("session_id", ev.SessionID.String()),
			zap.String("user_id", ev.UserID.String()),
			zap.String("sold_by", ev.SoldBy.String()),
			zap.String("seat", ev.Seat),
			zap.Time("purchased_at", ev.PurchasedAt),
		)
		return nil
	}
}
