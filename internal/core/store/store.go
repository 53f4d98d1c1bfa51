// Package store persists rule groups and their member rules.
package store

import "github.com/parcelforge/ratekeeper/internal/types"

// GroupStore manages rule group persistence and retrieval.
// Rule order within a group is preserved across round trips.
type GroupStore interface {
	// Create stores a new group. Missing group and rule IDs are assigned.
	Create(group *types.RuleGroup) error

	// Get retrieves a group by ID, including its rules in stored order.
	Get(id types.GroupID) (*types.RuleGroup, error)

	// List returns all groups with their rules.
	List() ([]*types.RuleGroup, error)

	// Update replaces an existing group and its rules.
	Update(group *types.RuleGroup) error

	// Delete removes a group and its rules.
	Delete(id types.GroupID) error
}
