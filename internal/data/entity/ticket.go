package entity

import (
	"time"

	"github.com/google/uuid"
)

// Ticket is one sold seat. It is never updated after the insert.
type Ticket struct {
	ID           uuid.UUID `db:"id"`
	SessionID    uuid.UUID `db:"session_id"`
	UserID       uuid.UUID `db:"user_id"`
	SeatNumber   string    `db:"seat_number"`
	PurchaseTime time.Time `db:"purchase_time"`
}

// TicketDetail is a ticket joined with what is printed on it
type TicketDetail struct {
	Ticket
	MovieTitle string    `db:"movie_title"`
	HallName   string    `db:"hall_name"`
	StartTime  time.Time `db:"start_time"`
	Price      float64   `db:"price"`
}
