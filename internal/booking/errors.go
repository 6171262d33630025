package booking

import (
	"errors"
	"fmt"
)

var (
	ErrSlotConflict            = errors.New("slot is already taken")
	ErrStaleDialogueState      = errors.New("pending reservation is incomplete")
	ErrMissingRescheduleTarget = errors.New("reschedule target no longer qualifies")
	ErrStorageUnavailable      = errors.New("storage unavailable")
	ErrBookingNotFound         = errors.New("booking not found")
	ErrHourNotOffered          = errors.New("hour is not offered on this date")
	ErrDateOutOfRange          = errors.New("date is outside the booking horizon")
	ErrUnknownCategory         = errors.New("unknown category")
)

func storageError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStorageUnavailable, err)
}
