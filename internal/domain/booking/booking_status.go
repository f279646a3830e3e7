package booking

import "fmt"

// Status represents the current state of a booking in its lifecycle.
type Status string

const (
	StatusPending       Status = "pending"
	StatusConfirmed     Status = "confirmed"
	StatusCheckedIn     Status = "checked_in"
	StatusAutoCheckedIn Status = "auto_checked_in"
	StatusCheckedOut    Status = "checked_out"
	StatusCompleted     Status = "completed"
	StatusCancelled     Status = "cancelled"
	StatusNoShow        Status = "no_show"
	StatusReleased      Status = "released"

	// Complimentary overlays. Lifecycle-wise they behave like confirmed:
	// the guest still arrives, checks in, and checks out.
	StatusPartialComplimentary Status = "partial_complimentary"
	StatusFullyComplimentary   Status = "fully_complimentary"
)

// validTransitions defines the state machine for booking status transitions.
var validTransitions = map[Status][]Status{
	StatusPending:              {StatusConfirmed, StatusCheckedIn, StatusCancelled, StatusPartialComplimentary, StatusFullyComplimentary},
	StatusConfirmed:            {StatusCheckedIn, StatusAutoCheckedIn, StatusCancelled, StatusNoShow, StatusPartialComplimentary, StatusFullyComplimentary},
	StatusPartialComplimentary: {StatusCheckedIn, StatusAutoCheckedIn, StatusCancelled, StatusNoShow},
	StatusFullyComplimentary:   {StatusCheckedIn, StatusAutoCheckedIn, StatusCancelled, StatusNoShow},
	StatusCheckedIn:            {StatusCheckedOut, StatusReleased, StatusCancelled},
	StatusAutoCheckedIn:        {StatusCheckedOut, StatusReleased, StatusCancelled},
	StatusCheckedOut:           {StatusCompleted},
	StatusCompleted:            {},
	StatusCancelled:            {},
	StatusNoShow:               {},
	StatusReleased:             {},
}

// IsValid returns true if the status is a recognized booking status.
func (s Status) IsValid() bool {
	_, exists := validTransitions[s]
	return exists
}

// CanTransitionTo returns true if a transition from this status to the target is allowed.
func (s Status) CanTransitionTo(target Status) bool {
	allowed, exists := validTransitions[s]
	if !exists {
		return false
	}
	for _, t := range allowed {
		if t == target {
			return true
		}
	}
	return false
}

// IsTerminal returns true if no further transitions are possible from this status.
func (s Status) IsTerminal() bool {
	allowed, exists := validTransitions[s]
	if !exists {
		return true
	}
	return len(allowed) == 0
}

// IsOccupying returns true if a booking in this status has a guest physically
// in the room.
func (s Status) IsOccupying() bool {
	return s == StatusCheckedIn || s == StatusAutoCheckedIn
}

// BlocksRoom returns true if a booking in this status claims its room for its
// date range. These are the statuses the double-booking check considers.
func (s Status) BlocksRoom() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCheckedIn, StatusAutoCheckedIn,
		StatusPartialComplimentary, StatusFullyComplimentary:
		return true
	default:
		return false
	}
}

// CanBeCancelled returns true if the booking can be cancelled from this status.
func (s Status) CanBeCancelled() bool {
	return s.CanTransitionTo(StatusCancelled)
}

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}

// ParseStatus converts a string to a Status, returning an error if invalid.
func ParseStatus(s string) (Status, error) {
	status := Status(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid booking status: %s", s)
	}
	return status, nil
}

// BlockingStatuses returns the statuses that claim a room for the booking's
// date range, as strings for repository queries.
func BlockingStatuses() []string {
	return []string{
		string(StatusPending),
		string(StatusConfirmed),
		string(StatusCheckedIn),
		string(StatusAutoCheckedIn),
		string(StatusPartialComplimentary),
		string(StatusFullyComplimentary),
	}
}

// OccupyingStatuses returns the statuses meaning a guest is physically in the
// room, as strings for repository queries.
func OccupyingStatuses() []string {
	return []string{string(StatusCheckedIn), string(StatusAutoCheckedIn)}
}
