package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/parcelforge/ratekeeper/internal/core/db"
	"github.com/parcelforge/ratekeeper/internal/types"
)

// SQLStore implements GroupStore on top of named queries loaded by db.LoadQueries.
// Group and rule writes share a transaction so a group is never visible with a
// partial rule list.
type SQLStore struct {
	queries *db.Queries
}

// NewSQLStore creates a GroupStore backed by the given query set.
func NewSQLStore(queries *db.Queries) *SQLStore {
	return &SQLStore{queries: queries}
}

type groupRow struct {
	GroupID       string `db:"group_id"`
	Name          string `db:"name"`
	LogicOperator string `db:"logic_operator"`
}

type ruleRow struct {
	RuleID           string `db:"rule_id"`
	Field            string `db:"field"`
	Operator         string `db:"operator"`
	Value            string `db:"value"`
	AdjustmentAmount string `db:"adjustment_amount"`
}

// Create stores a new group and its rules. Missing IDs are assigned.
func (s *SQLStore) Create(group *types.RuleGroup) error {
	if group.GroupID == "" {
		group.GroupID = types.NewGroupID()
	}

	var existing groupRow
	err := s.queries.Get("get-rule-group", &existing, string(group.GroupID))
	if err == nil {
		return types.ErrGroupExists
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("failed to check for existing group: %w", err)
	}

	now := time.Now().UTC()

	tx, err := s.queries.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if _, err := s.queries.ExecTx(tx, "insert-rule-group",
		string(group.GroupID), group.Name, string(group.LogicOperator), now, now); err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to insert group: %w", err)
	}

	if err := s.insertRules(tx, group, now); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit()
}

// Get retrieves a group with its rules in stored order.
func (s *SQLStore) Get(id types.GroupID) (*types.RuleGroup, error) {
	var row groupRow
	err := s.queries.Get("get-rule-group", &row, string(id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, types.ErrGroupNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load group: %w", err)
	}

	group := &types.RuleGroup{
		GroupID:       types.GroupID(row.GroupID),
		Name:          row.Name,
		LogicOperator: types.LogicOperator(row.LogicOperator),
	}

	if err := s.loadRules(group); err != nil {
		return nil, err
	}
	return group, nil
}

// List returns all groups with their rules.
func (s *SQLStore) List() ([]*types.RuleGroup, error) {
	var rows []groupRow
	if err := s.queries.Select("list-rule-groups", &rows); err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}

	groups := make([]*types.RuleGroup, 0, len(rows))
	for _, row := range rows {
		group := &types.RuleGroup{
			GroupID:       types.GroupID(row.GroupID),
			Name:          row.Name,
			LogicOperator: types.LogicOperator(row.LogicOperator),
		}
		if err := s.loadRules(group); err != nil {
			return nil, err
		}
		groups = append(groups, group)
	}
	return groups, nil
}

// Update replaces an existing group and its rules.
func (s *SQLStore) Update(group *types.RuleGroup) error {
	now := time.Now().UTC()

	tx, err := s.queries.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	result, err := s.queries.ExecTx(tx, "update-rule-group",
		group.Name, string(group.LogicOperator), now, string(group.GroupID))
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to update group: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		tx.Rollback()
		return types.ErrGroupNotFound
	}

	// Rules are replaced wholesale; the group document is the unit of editing.
	if _, err := s.queries.ExecTx(tx, "delete-rules-for-group", string(group.GroupID)); err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to clear rules: %w", err)
	}

	if err := s.insertRules(tx, group, now); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit()
}

// Delete removes a group and its rules.
func (s *SQLStore) Delete(id types.GroupID) error {
	tx, err := s.queries.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if _, err := s.queries.ExecTx(tx, "delete-rules-for-group", string(id)); err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to delete rules: %w", err)
	}

	result, err := s.queries.ExecTx(tx, "delete-rule-group", string(id))
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to delete group: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		tx.Rollback()
		return types.ErrGroupNotFound
	}

	return tx.Commit()
}

func (s *SQLStore) insertRules(tx *sqlx.Tx, group *types.RuleGroup, now time.Time) error {
	for i := range group.Rules {
		rule := &group.Rules[i]
		if rule.RuleID == "" {
			rule.RuleID = types.NewRuleID()
		}
		if _, err := s.queries.ExecTx(tx, "insert-billing-rule",
			string(rule.RuleID), string(group.GroupID), i,
			rule.Field, string(rule.Operator), rule.Value, rule.AdjustmentAmount, now); err != nil {
			return fmt.Errorf("failed to insert rule %d: %w", i, err)
		}
	}
	return nil
}

func (s *SQLStore) loadRules(group *types.RuleGroup) error {
	var rows []ruleRow
	if err := s.queries.Select("list-rules-for-group", &rows, string(group.GroupID)); err != nil {
		return fmt.Errorf("failed to load rules for group %s: %w", group.GroupID, err)
	}

	group.Rules = make([]types.Rule, 0, len(rows))
	for _, row := range rows {
		group.Rules = append(group.Rules, types.Rule{
			RuleID:           types.RuleID(row.RuleID),
			Field:            row.Field,
			Operator:         types.Operator(row.Operator),
			Value:            row.Value,
			AdjustmentAmount: row.AdjustmentAmount,
		})
	}
	return nil
}
