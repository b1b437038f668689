package response

import (
	"time"

	"cinema-ticketing/internal/booking"
	"cinema-ticketing/internal/data/entity"
)

type SessionResponse struct {
	ID        string    `json:"id"`
	MovieID   string    `json:"movie_id"`
	HallID    string    `json:"hall_id"`
	StartTime time.Time `json:"start_time"`
	Price     float64   `json:"price"`
}

type AvailabilityResponse struct {
	SessionID string `json:"session_id"`
	Capacity  int    `json:"capacity"`
	Sold      int    `json:"sold"`
	Remaining int    `json:"remaining"`
}

func SessionToResponse(session *entity.Session) SessionResponse {
	return SessionResponse{
		ID:        session.ID.String(),
		MovieID:   session.MovieID.String(),
		HallID:    session.HallID.String(),
		StartTime: session.StartTime,
		Price:     session.Price,
	}
}

func AvailabilityToResponse(a booking.Availability) AvailabilityResponse {
	return AvailabilityResponse{
		SessionID: a.SessionID.String(),
		Capacity:  a.Capacity,
		Sold:      a.Sold,
		Remaining: a.Remaining,
	}
}
