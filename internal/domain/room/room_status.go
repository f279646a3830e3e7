package room

import "fmt"

// ExplicitStatus is the persisted status flag on a room. It is a cache and an
// override: consumers never read it directly, they read the effective status
// computed by Resolve, which lets bookings take precedence.
type ExplicitStatus string

const (
	StatusAvailable   ExplicitStatus = "available"
	StatusOccupied    ExplicitStatus = "occupied"
	StatusReserved    ExplicitStatus = "reserved"
	StatusCleaning    ExplicitStatus = "cleaning"
	StatusMaintenance ExplicitStatus = "maintenance"
	StatusDirty       ExplicitStatus = "dirty"
	StatusOutOfOrder  ExplicitStatus = "out_of_order"
)

var explicitStatuses = map[ExplicitStatus]bool{
	StatusAvailable:   true,
	StatusOccupied:    true,
	StatusReserved:    true,
	StatusCleaning:    true,
	StatusMaintenance: true,
	StatusDirty:       true,
	StatusOutOfOrder:  true,
}

// IsValid returns true if the status is a recognized room status.
func (s ExplicitStatus) IsValid() bool {
	return explicitStatuses[s]
}

// RequiresWindow returns true if setting this status needs a start and end
// timestamp.
func (s ExplicitStatus) RequiresWindow() bool {
	return s == StatusMaintenance || s == StatusCleaning
}

// TakesRoomOutOfService reports whether this explicit status overrides even a
// pending reservation: a room under repair must not present as reserved.
func (s ExplicitStatus) TakesRoomOutOfService() bool {
	return s == StatusMaintenance || s == StatusOutOfOrder
}

// String returns the string representation of the status.
func (s ExplicitStatus) String() string {
	return string(s)
}

// ParseExplicitStatus converts a string to an ExplicitStatus, returning an
// error if invalid.
func ParseExplicitStatus(s string) (ExplicitStatus, error) {
	status := ExplicitStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid room status: %s", s)
	}
	return status, nil
}
