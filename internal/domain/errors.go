package domain

import (
	"errors"
	"fmt"
)

var (
	ErrRecordNotFound             = errors.New("record not found")
	ErrEditConflict               = errors.New("edit conflict")
	ErrUpstreamUnavailable        = errors.New("room inventory service is unavailable")
	ErrMissingAPIKey              = errors.New("inventory api key is not configured")
	ErrNoRoomsFound               = errors.New("no rooms available for the selected dates")
	ErrSessionUnavailable         = errors.New("booking session is unavailable")
	ErrNoBooking                  = errors.New("there is no booking bound to the current session")
	ErrRoomCodeUnresolved         = errors.New("room code could not be resolved")
	ErrNoRoomsToReserve           = errors.New("no rooms could be resolved for the reservation")
	ErrReservationCreateFailed    = errors.New("reservation creation failed")
	ErrReservationAlreadyAttached = errors.New("order already has a reservation")
	ErrSynthesisInProgress        = errors.New("reservation for this order is already being created")
	ErrBookingEngineNotConfigured = errors.New("booking engine is not configured")
)

// UpstreamError carries the HTTP status of a failed inventory call.
type UpstreamError struct {
	Endpoint   string
	StatusCode int
	Body       string
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", ErrUpstreamUnavailable, e.Endpoint, e.Err)
	}

	return fmt.Sprintf("%s: %s returned status %d", ErrUpstreamUnavailable, e.Endpoint, e.StatusCode)
}

func (e *UpstreamError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrUpstreamUnavailable, e.Err}
	}

	return []error{ErrUpstreamUnavailable}
}
