package types

import (
	"time"

	"github.com/google/uuid"
)

// NewGroupID generates a UUIDv7 rule group identifier.
// Time-ordered IDs ensure sequential inserts cluster in B-tree pages.
// Panics on clock regression (uuid.Must); acceptable for ID generation.
func NewGroupID() GroupID {
	return GroupID(uuid.Must(uuid.NewV7()).String())
}

// NewRuleID generates a UUIDv7 rule identifier.
// Panics on clock regression (uuid.Must); acceptable for ID generation.
func NewRuleID() RuleID {
	return RuleID(uuid.Must(uuid.NewV7()).String())
}

// ParseGroupID validates and converts a string to GroupID.
// Rejects malformed UUIDs to prevent invalid IDs from entering the system.
func ParseGroupID(s string) (GroupID, error) {
	_, err := uuid.Parse(s)
	if err != nil {
		return "", err
	}
	return GroupID(s), nil
}

// ParseRuleID validates and converts a string to RuleID.
// Rejects malformed UUIDs to prevent invalid IDs from entering the system.
func ParseRuleID(s string) (RuleID, error) {
	_, err := uuid.Parse(s)
	if err != nil {
		return "", err
	}
	return RuleID(s), nil
}

// GroupIDTime extracts the timestamp embedded in a UUIDv7 ID.
// Enables time-based listing without a database lookup.
// Returns zero time for invalid UUIDs; caller should check IsZero().
func GroupIDTime(id GroupID) time.Time {
	u, err := uuid.Parse(string(id))
	if err != nil {
		return time.Time{}
	}
	sec, nsec := u.Time().UnixTime()
	return time.Unix(sec, nsec)
}
