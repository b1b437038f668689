package request

import "time"

type SessionRequest struct {
	MovieID   string    `json:"movie_id" validate:"required,uuid"`
	HallID    string    `json:"hall_id" validate:"required,uuid"`
	StartTime time.Time `json:"start_time" validate:"required"`
	Price     float64   `json:"price" validate:"required,gt=0"`
}

type SessionUpdateRequest struct {
	MovieID   *string    `json:"movie_id,omitempty" validate:"omitempty,uuid"`
	HallID    *string    `json:"hall_id,omitempty" validate:"omitempty,uuid"`
	StartTime *time.Time `json:"start_time,omitempty"`
	Price     *float64   `json:"price,omitempty" validate:"omitempty,gt=0"`
}
