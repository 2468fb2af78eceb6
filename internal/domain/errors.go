package domain

import "errors"

var (
	ErrValidation       = errors.New("validation failed")
	ErrCapacityExceeded = errors.New("capacity exceeded")
	ErrPersistence      = errors.New("booking could not be saved")
	ErrDataUnavailable  = errors.New("no flights available")

	ErrWrongStep        = errors.New("operation not allowed at current step")
	ErrAlreadyConfirmed = errors.New("booking already confirmed")
	ErrNotConfirmed     = errors.New("booking is not confirmed")
	ErrSessionNotFound  = errors.New("session not found")
	ErrSessionBusy      = errors.New("session is busy")
	ErrBookingNotFound  = errors.New("booking not found")
	ErrDuplicateCode    = errors.New("confirmation code already exists")
)
