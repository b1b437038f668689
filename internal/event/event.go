// Package event carries domain events over RabbitMQ.
package event

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const TicketPurchasedQueue = "ticket.purchased"

// TicketPurchased is published after a ticket is committed. Consumers get
// enough to log or notify without reading the database.
type TicketPurchased struct {
	TicketID    uuid.UUID `json:"ticket_id"`
	SessionID   uuid.UUID `json:"session_id"`
	UserID      uuid.UUID `json:"user_id"`
	SoldBy      uuid.UUID `json:"sold_by"`
	Seat        string    `json:"seat"`
	PurchasedAt time.Time `json:"purchased_at"`
}

func (e TicketPurchased) Encode() ([]byte, error) {
	return json.Marshal(e)
}

func DecodeTicketPurchased(body []byte) (TicketPurchased, error) {
	var ev TicketPurchased
	if err := json.Unmarshal(body, &ev); err != nil {
		return TicketPurchased{}, fmt.Errorf("decode ticket purchased: %w", err)
	}
	if ev.TicketID == uuid.Nil {
		return TicketPurchased{}, fmt.Errorf("decode ticket purchased: missing ticket_id")
	}
	return ev, nil
}

type Publisher interface {
	PublishTicketPurchased(ctx context.Context, ev TicketPurchased) error
	Close() error
}

// NopPublisher is used when the broker is disabled
type NopPublisher struct{}

func (NopPublisher) PublishTicketPurchased(context.Context, TicketPurchased) error { return nil }
func (NopPublisher) Close() error                                                   { return nil }
