package stor

import (
	"errors"

	"gorm.io/gorm"
)

var (
	// ErrStageMismatch is returned when a row is no longer in the stage a write
	// expected it to be in.
	ErrStageMismatch = errors.New("stage mismatch")

	// ErrInvalidTransition is returned for a stage change that is not an edge of
	// the state machine.
	ErrInvalidTransition = errors.New("invalid stage transition")

	// ErrNoStore is returned by reads when the pipeline runs without a database.
	ErrNoStore = errors.New("no database connection")
)

func IsRecordNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

func isRetryable(err error) bool {
	switch {
	case errors.Is(err, ErrStageMismatch),
		errors.Is(err, ErrInvalidTransition),
		errors.Is(err, gorm.ErrRecordNotFound):
		return false
	default:
		return true
	}
}
