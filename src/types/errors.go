package types

import "fmt"

// Stable machine-readable error codes. A staff client decides from the code
// whether to show alternates, block the action, or no-op silently.
const (
	CodeInvalidInput               = "INVALID_INPUT"
	CodeInvalidTransition          = "INVALID_TRANSITION"
	CodeHotelMismatch              = "HOTEL_MISMATCH"
	CodeRoomTypeMismatch           = "ROOM_TYPE_MISMATCH"
	CodeBookingStatusNotAssignable = "BOOKING_STATUS_NOT_ASSIGNABLE"
	CodeBookingAlreadyCheckedIn    = "BOOKING_ALREADY_CHECKED_IN"
	CodeRoomNotAssignable          = "ROOM_NOT_ASSIGNABLE"
	CodeRoomOverlapConflict        = "ROOM_OVERLAP_CONFLICT"
	CodeNoEligibleBooking          = "NO_ELIGIBLE_BOOKING"
	CodeInvalidRoomStatus          = "INVALID_ROOM_STATUS"
	CodeAlreadyCheckedIn           = "ALREADY_CHECKED_IN"
	CodeAlreadyCheckedOut          = "ALREADY_CHECKED_OUT"
	CodeNoAssignedRoom             = "NO_ASSIGNED_ROOM"
	CodeNotFound                   = "NOT_FOUND"
)

// ServiceError is returned by every core operation that rejects a request.
// Conflict errors additionally carry the conflicting booking ids and a
// suggestion list so callers can offer alternates instead of a bare 400.
type ServiceError struct {
	Code                  string        `json:"code"`
	Message               string        `json:"message"`
	ConflictingBookingIDs []uint        `json:"conflicting_booking_ids,omitempty"`
	Suggestions           []RoomSummary `json:"suggestions,omitempty"`
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewServiceError(code string, format string, args ...any) *ServiceError {
	return &ServiceError{Code: code, Message: fmt.Sprintf(format, args...)}
}

func NewConflictError(conflicting []uint, suggestions []RoomSummary) *ServiceError {
	return &ServiceError{
		Code:                  CodeRoomOverlapConflict,
		Message:               fmt.Sprintf("room is held by %d overlapping booking(s)", len(conflicting)),
		ConflictingBookingIDs: conflicting,
		Suggestions:           suggestions,
	}
}

// AsServiceError returns err as a *ServiceError, or nil when it is some
// other failure (database errors roll the transaction back untouched).
func AsServiceError(err error) *ServiceError {
	if se, ok := err.(*ServiceError); ok {
		return se
	}
	return nil
}
