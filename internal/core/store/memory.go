package store

import (
	"sort"
	"sync"

	"github.com/parcelforge/ratekeeper/internal/types"
)

// MemoryStore implements GroupStore using an in-memory map.
// Thread-safe with RWMutex. Used in tests and for ephemeral deployments.
type MemoryStore struct {
	mu     sync.RWMutex
	groups map[types.GroupID]*types.RuleGroup
}

// NewMemoryStore creates an empty in-memory group store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		groups: make(map[types.GroupID]*types.RuleGroup),
	}
}

// Create stores a new group. Missing group and rule IDs are assigned.
func (s *MemoryStore) Create(group *types.RuleGroup) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if group.GroupID == "" {
		group.GroupID = types.NewGroupID()
	}
	if _, exists := s.groups[group.GroupID]; exists {
		return types.ErrGroupExists
	}
	assignRuleIDs(group)

	s.groups[group.GroupID] = copyGroup(group)
	return nil
}

// Get retrieves a group by ID.
func (s *MemoryStore) Get(id types.GroupID) (*types.RuleGroup, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	group, exists := s.groups[id]
	if !exists {
		return nil, types.ErrGroupNotFound
	}
	return copyGroup(group), nil
}

// List returns all groups ordered by group ID.
func (s *MemoryStore) List() ([]*types.RuleGroup, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	groups := make([]*types.RuleGroup, 0, len(s.groups))
	for _, group := range s.groups {
		groups = append(groups, copyGroup(group))
	}
	sort.Slice(groups, func(i, j int) bool {
		return groups[i].GroupID < groups[j].GroupID
	})
	return groups, nil
}

// Update replaces an existing group and its rules.
func (s *MemoryStore) Update(group *types.RuleGroup) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.groups[group.GroupID]; !exists {
		return types.ErrGroupNotFound
	}
	assignRuleIDs(group)

	s.groups[group.GroupID] = copyGroup(group)
	return nil
}

// Delete removes a group.
func (s *MemoryStore) Delete(id types.GroupID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.groups[id]; !exists {
		return types.ErrGroupNotFound
	}
	delete(s.groups, id)
	return nil
}

func assignRuleIDs(group *types.RuleGroup) {
	for i := range group.Rules {
		if group.Rules[i].RuleID == "" {
			group.Rules[i].RuleID = types.NewRuleID()
		}
	}
}

// copyGroup guards callers against aliasing the stored rule slice.
func copyGroup(group *types.RuleGroup) *types.RuleGroup {
	clone := *group
	clone.Rules = make([]types.Rule, len(group.Rules))
	copy(clone.Rules, group.Rules)
	return &clone
}
