package entity

type Hall struct {
	BaseNoDelete
	Name     string `db:"name"`
	Capacity int    `db:"capacity"`
}
