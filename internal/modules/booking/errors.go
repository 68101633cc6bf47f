package booking

import "errors"

var (
	ErrValidation        = errors.New("validation error")
	ErrNotFound          = errors.New("reservation not found")
	ErrStudioNotFound    = errors.New("studio not found or inactive")
	ErrSlotConflict      = errors.New("slot already booked")
	ErrPhoneMismatch     = errors.New("phone does not match reservation owner")
	ErrAlreadyCancelled  = errors.New("reservation already cancelled")
	ErrInvalidTransition = errors.New("invalid status transition")
)
