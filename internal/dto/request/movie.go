package request

type MovieRequest struct {
	Title       string  `json:"title" validate:"required,notblank,max=255"`
	Genre       string  `json:"genre" validate:"required,notblank,max=100"`
	Duration    int     `json:"duration" validate:"required,gt=0,max=999"`
	Rating      float64 `json:"rating" validate:"gte=0,lte=10"`
	Description string  `json:"description" validate:"max=2000"`
}

type MovieUpdateRequest struct {
	Title       *string  `json:"title,omitempty" validate:"omitempty,notblank,max=255"`
	Genre       *string  `json:"genre,omitempty" validate:"omitempty,notblank,max=100"`
	Duration    *int     `json:"duration,omitempty" validate:"omitempty,gt=0,max=999"`
	Rating      *float64 `json:"rating,omitempty" validate:"omitempty,gte=0,lte=10"`
	Description *string  `json:"description,omitempty" validate:"omitempty,max=2000"`
}

type MovieListRequest struct {
	PaginatedRequest
	Genre     string   `validate:"max=100"`
	MinRating *float64 `validate:"omitempty,gte=0,lte=10"`
}
