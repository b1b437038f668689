package event

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

type fakeAcker struct {
	acked, nacked, requeued bool
}

func (a *fakeAcker) Ack(tag uint64, multiple bool) error { a.acked = true; return nil }
func (a *fakeAcker) Nack(tag uint64, multiple, requeue bool) error {
	a.nacked = true
	a.requeued = requeue
	return nil
}
func (a *fakeAcker) Reject(tag uint64, requeue bool) error { a.nacked = true; return nil }

func sampleEvent() TicketPurchased {
	return TicketPurchased{
		TicketID:    uuid.New(),
		SessionID:   uuid.New(),
		UserID:      uuid.New(),
		SoldBy:      uuid.New(),
		Seat:        "B4",
		PurchasedAt: time.Date(2026, 3, 1, 18, 30, 0, 0, time.UTC),
	}
}

func TestDecodeTicketPurchased(t *testing.T) {
	ev := sampleEvent()
	body, err := ev.Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	got, err := DecodeTicketPurchased(body)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.TicketID != ev.TicketID || got.SessionID != ev.SessionID || got.UserID != ev.UserID ||
		got.SoldBy != ev.SoldBy || got.Seat != ev.Seat || !got.PurchasedAt.Equal(ev.PurchasedAt) {
		t.Fatalf("decoded %+v, want %+v", got, ev)
	}

	if _, err := DecodeTicketPurchased([]byte(`{"seat":"A1"}`)); err == nil {
		t.Fatalf("expected error for missing ticket_id")
	}
	if _, err := DecodeTicketPurchased([]byte(`not json`)); err == nil {
		t.Fatalf("expected error for malformed body")
	}
}

func TestConsumerHandle(t *testing.T) {
	ev := sampleEvent()
	body, _ := ev.Encode()

	t.Run("ack on success", func(t *testing.T) {
		var seen TicketPurchased
		c := NewConsumer("", "", func(_ context.Context, got TicketPurchased) error {
			seen = got
			return nil
		}, zap.NewNop())

		acker := &fakeAcker{}
		c.handle(context.Background(), amqp.Delivery{Acknowledger: acker, Body: body})

		if !acker.acked || acker.nacked {
			t.Fatalf("expected ack, got %+v", acker)
		}
		if seen.TicketID != ev.TicketID {
			t.Fatalf("handler got %+v", seen)
		}
	})

	t.Run("nack without requeue on handler error", func(t *testing.T) {
		c := NewConsumer("", "", func(context.Context, TicketPurchased) error {
			return errors.New("downstream unavailable")
		}, zap.NewNop())

		acker := &fakeAcker{}
		c.handle(context.Background(), amqp.Delivery{Acknowledger: acker, Body: body})

		if acker.acked || !acker.nacked || acker.requeued {
			t.Fatalf("expected nack without requeue, got %+v", acker)
		}
	})

	t.Run("nack on malformed body", func(t *testing.T) {
		called := false
		c := NewConsumer("", "", func(context.Context, TicketPurchased) error {
			called = true
			return nil
		}, zap.NewNop())

		acker := &fakeAcker{}
		c.handle(context.Background(), amqp.Delivery{Acknowledger: acker, Body: []byte("{")})

		if called {
			t.Fatalf("handler must not run for malformed messages")
		}
		if !acker.nacked {
			t.Fatalf("expected nack")
		}
	})
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = NopPublisher{}
	if err := p.PublishTicketPurchased(context.Background(), sampleEvent()); err != nil {
		t.Fatalf("nop publish: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("nop close: %v", err)
	}
}

func TestAMQPPublisher_ReconnectBoundedByContext(t *testing.T) {
	var dials atomic.Int32
	p := &AMQPPublisher{
		queue: TicketPurchasedQueue,
		log:   zap.NewNop(),
		now:   time.Now,
		dial: func(ctx context.Context, url string) (*amqp.Connection, error) {
			dials.Add(1)
			<-ctx.Done()
			return nil, ctx.Err()
		},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	start := time.Now()
	err := p.PublishTicketPurchased(ctx, sampleEvent())
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("reconnect ignored the deadline, took %s", elapsed)
	}

	err = p.PublishTicketPurchased(context.Background(), sampleEvent())
	if !errors.Is(err, ErrBrokerUnavailable) {
		t.Fatalf("expected ErrBrokerUnavailable during backoff, got %v", err)
	}

	p.nextDial = time.Time{}
	cancelled, cancelNow := context.WithCancel(context.Background())
	cancelNow()
	err = p.PublishTicketPurchased(cancelled, sampleEvent())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context canceled, got %v", err)
	}

	if n := dials.Load(); n != 1 {
		t.Fatalf("expected exactly one dial, got %d", n)
	}
}
