package entity

import (
	"time"

	"github.com/google/uuid"
)

// Session is a single screening of a movie in a hall
type Session struct {
	BaseNoDelete
	MovieID   uuid.UUID `db:"movie_id"`
	HallID    uuid.UUID `db:"hall_id"`
	StartTime time.Time `db:"start_time"`
	Price     float64   `db:"price"`
}
