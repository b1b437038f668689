package event

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// redialBackoff is how long publishes fail fast after a failed reconnect.
const redialBackoff = 5 * time.Second

var ErrBrokerUnavailable = errors.New("broker unavailable")

// AMQPPublisher publishes persistent JSON messages to a durable queue on the
// default exchange. The connection is reopened lazily after a failure; the
// reconnect is bounded by the publishing context.
type AMQPPublisher struct {
	url   string
	queue string
	log   *zap.Logger
	dial  func(ctx context.Context, url string) (*amqp.Connection, error)
	now   func() time.Time

	mu       sync.Mutex
	conn     *amqp.Connection
	ch       *amqp.Channel
	nextDial time.Time
}

func NewAMQPPublisher(ctx context.Context, url, queue string, log *zap.Logger) (*AMQPPublisher, error) {
	if queue == "" {
		queue = TicketPurchasedQueue
	}
	p := &AMQPPublisher{
		url:   url,
		queue: queue,
		log:   log.With(zap.String("component", "publisher")),
		dial:  dialContext,
		now:   time.Now,
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.connectLocked(ctx); err != nil {
		return nil, err
	}
	return p, nil
}

// dialContext dials the broker with the TCP connect and the AMQP handshake
// both bounded by ctx.
func dialContext(ctx context.Context, url string) (*amqp.Connection, error) {
	return amqp.DialConfig(url, amqp.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Dial: func(network, addr string) (net.Conn, error) {
			var d net.Dialer
			conn, err := d.DialContext(ctx, network, addr)
			if err != nil {
				return nil, err
			}
			if deadline, ok := ctx.Deadline(); ok {
				// cleared by the client once the handshake completes
				if err := conn.SetDeadline(deadline); err != nil {
					_ = conn.Close()
					return nil, err
				}
			}
			return conn, nil
		},
	})
}

func (p *AMQPPublisher) connectLocked(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("dial broker: %w", err)
	}
	if p.now().Before(p.nextDial) {
		return ErrBrokerUnavailable
	}

	conn, err := p.dial(ctx, p.url)
	if err != nil {
		p.nextDial = p.now().Add(redialBackoff)
		return fmt.Errorf("dial broker: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("open channel: %w", err)
	}

	if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return fmt.Errorf("declare queue %s: %w", p.queue, err)
	}

	p.conn = conn
	p.ch = ch
	return nil
}

func (p *AMQPPublisher) PublishTicketPurchased(ctx context.Context, ev TicketPurchased) error {
	body, err := ev.Encode()
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ch == nil || p.ch.IsClosed() {
		p.closeLocked()
		if err := p.connectLocked(ctx); err != nil {
			return err
		}
	}

	err = p.ch.PublishWithContext(ctx, "", p.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		MessageId:    ev.TicketID.String(),
		Body:         body,
	})
	if err != nil {
		p.closeLocked()
		return fmt.Errorf("publish to %s: %w", p.queue, err)
	}

	p.log.Debug("Event published",
		zap.String("queue", p.queue),
		zap.String("ticket_id", ev.TicketID.String()),
	)
	return nil
}

func (p *AMQPPublisher) closeLocked() {
	if p.ch != nil {
		_ = p.ch.Close()
		p.ch = nil
	}
	if p.conn != nil {
		_ = p.conn.Close()
		p.conn = nil
	}
}

func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closeLocked()
	return nil
}
