package response

import (
	"time"

	"cinema-ticketing/internal/data/entity"
)

type TicketResponse struct {
	ID           string    `json:"id"`
	SessionID    string    `json:"session_id"`
	UserID       string    `json:"user_id"`
	SeatNumber   string    `json:"seat_number"`
	PurchaseTime time.Time `json:"purchase_time"`
}

type TicketDetailResponse struct {
	TicketResponse
	MovieTitle string    `json:"movie_title"`
	HallName   string    `json:"hall_name"`
	StartTime  time.Time `json:"start_time"`
	Price      float64   `json:"price"`
}

func TicketToResponse(ticket *entity.Ticket) TicketResponse {
	return TicketResponse{
		ID:           ticket.ID.String(),
		SessionID:    ticket.SessionID.String(),
		UserID:       ticket.UserID.String(),
		SeatNumber:   ticket.SeatNumber,
		PurchaseTime: ticket.PurchaseTime,
	}
}

func TicketDetailToResponse(detail *entity.TicketDetail) TicketDetailResponse {
	return TicketDetailResponse{
		TicketResponse: TicketToResponse(&detail.Ticket),
		MovieTitle:     detail.MovieTitle,
		HallName:       detail.HallName,
		StartTime:      detail.StartTime,
		Price:          detail.Price,
	}
}
