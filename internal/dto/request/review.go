package request

type CreateReviewRequest struct {
	MovieID string `json:"movie_id" validate:"required,uuid"`
	Rating  int    `json:"rating" validate:"required,min=1,max=10"`
	Comment string `json:"comment" validate:"max=1000"`
}
