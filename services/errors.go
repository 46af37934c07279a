package services

import "errors"

// Lifecycle errors returned synchronously to callers. Handlers translate
// them into distinct responses; they are never retried automatically.
var (
	ErrAlreadyBooked     = errors.New("member already has a confirmed booking for this training")
	ErrTrainingFull      = errors.New("training has no available spots")
	ErrTrainingCancelled = errors.New("training is cancelled")
	ErrTrainingNotFound  = errors.New("training not found")
	ErrBookingNotFound   = errors.New("booking not found")
	ErrInvalidTransition = errors.New("invalid booking status transition")
)
