package booking

import (
	"errors"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrHallNotFound    = errors.New("hall not found")
	ErrSessionFull     = errors.New("session is sold out")
	ErrSeatTaken       = errors.New("seat already taken")
	ErrInvalidSeat     = errors.New("seat designator is empty")
	ErrStorageFailure  = errors.New("storage failure")
)

// storageError keeps the underlying cause reachable with errors.Is/As while
// still matching ErrStorageFailure.
type storageError struct {
	op  string
	err error
}

func (e *storageError) Error() string {
	return "booking: " + e.op + ": " + e.err.Error()
}

func (e *storageError) Is(target error) bool {
	return target == ErrStorageFailure
}

func (e *storageError) Unwrap() error {
	return e.err
}

func storageFailure(op string, err error) error {
	return &storageError{op: op, err: err}
}

// Code returns the machine-readable rejection code for err, or "" when err is
// not a booking error.
func Code(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrSessionNotFound):
		return "SESSION_NOT_FOUND"
	case errors.Is(err, ErrHallNotFound):
		return "HALL_NOT_FOUND"
	case errors.Is(err, ErrSessionFull):
		return "SESSION_FULL"
	case errors.Is(err, ErrSeatTaken):
		return "SEAT_TAKEN"
	case errors.Is(err, ErrInvalidSeat):
		return "INVALID_SEAT"
	case errors.Is(err, ErrStorageFailure):
		return "STORAGE_FAILURE"
	}
	return ""
}
