package domain

import "fmt"

type GuardErrorKind string

const (
	GuardRoomNoLongerAvailable   GuardErrorKind = "room_no_longer_available"
	GuardAvailabilityCheckFailed GuardErrorKind = "availability_check_failed"
)

// GuardError is one reason why payment for a pending order is blocked.
type GuardError struct {
	Kind     GuardErrorKind
	RoomCode string
	Checkin  string
	Checkout string
	Message  string
}

func RoomNoLongerAvailable(code, checkin, checkout string) GuardError {
	return GuardError{
		Kind:     GuardRoomNoLongerAvailable,
		RoomCode: code,
		Checkin:  checkin,
		Checkout: checkout,
		Message: fmt.Sprintf(
			"The selected room (%s) is no longer available for your dates. Please update your booking.", code),
	}
}

func AvailabilityCheckFailed(checkin, checkout string) GuardError {
	return GuardError{
		Kind:     GuardAvailabilityCheckFailed,
		Checkin:  checkin,
		Checkout: checkout,
		Message:  "Could not verify availability. Please try again.",
	}
}
