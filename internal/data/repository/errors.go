package repository

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrDuplicate wraps unique violations (SQLSTATE 23505)
	ErrDuplicate = errors.New("duplicate record")
	// ErrMissingReference wraps foreign key violations (SQLSTATE 23503)
	ErrMissingReference = errors.New("referenced record does not exist")
	// ErrCapacityReached is returned by the strict ticket insert when the hall is full
	ErrCapacityReached = errors.New("capacity reached")
)

// ConstraintError keeps the violated constraint name next to the classified error
type ConstraintError struct {
	Kind       error
	Constraint string
	Err        error
}

func (e *ConstraintError) Error() string {
	return fmt.Sprintf("%s (%s): %v", e.Kind, e.Constraint, e.Err)
}

func (e *ConstraintError) Is(target error) bool {
	return target == e.Kind
}

func (e *ConstraintError) Unwrap() error {
	return e.Err
}

// classifyPgError maps integrity violations onto the package sentinels. Anything
// else is returned unchanged.
func classifyPgError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case "23505":
		return &ConstraintError{Kind: ErrDuplicate, Constraint: pgErr.ConstraintName, Err: err}
	case "23503":
		return &ConstraintError{Kind: ErrMissingReference, Constraint: pgErr.ConstraintName, Err: err}
	}
	return err
}

// ConstraintName returns the violated constraint, or "" when err is not a classified violation
func ConstraintName(err error) string {
	var ce *ConstraintError
	if errors.As(err, &ce) {
		return ce.Constraint
	}
	return ""
}
