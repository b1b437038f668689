package entity

import (
	"github.com/google/uuid"
)

type Review struct {
	BaseSimple
	UserID  uuid.UUID `db:"user_id"`
	MovieID uuid.UUID `db:"movie_id"`
	Rating  int       `db:"rating"` // 1-10
	Comment string    `db:"comment"`

	Username string `db:"-"`
}
