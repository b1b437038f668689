package response

import "cinema-ticketing/internal/data/entity"

type HallResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Capacity int    `json:"capacity"`
}

func HallToResponse(hall *entity.Hall) HallResponse {
	return HallResponse{
		ID:       hall.ID.String(),
		Name:     hall.Name,
		Capacity: hall.Capacity,
	}
}
