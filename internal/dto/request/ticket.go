package request

type PurchaseTicketRequest struct {
	SessionID  string `json:"session_id" validate:"required,uuid"`
	// SeatNumber is kept verbatim; max counts surrounding spaces, matching VARCHAR(10).
	SeatNumber string `json:"seat_number" validate:"required,notblank,max=10"`
	// UserID lets cashiers and admins sell on behalf of a customer
	UserID string `json:"user_id,omitempty" validate:"omitempty,uuid"`
}
