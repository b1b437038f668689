package request

type HallRequest struct {
	Name     string `json:"name" validate:"required,notblank,max=100"`
	Capacity int    `json:"capacity" validate:"required,gte=1,max=10000"`
}
