package response

import (
	"time"

	"cinema-ticketing/internal/data/entity"
)

type MovieResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Genre       string    `json:"genre"`
	Duration    int       `json:"duration"`
	Rating      float64   `json:"rating"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func MovieToResponse(movie *entity.Movie) MovieResponse {
	return MovieResponse{
		ID:          movie.ID.String(),
		Title:       movie.Title,
		Genre:       movie.Genre,
		Duration:    movie.Duration,
		Rating:      movie.Rating,
		Description: movie.Description,
		CreatedAt:   movie.CreatedAt,
	}
}
