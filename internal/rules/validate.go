// internal/rules/validate.go
package rules

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/parcelforge/ratekeeper/internal/types"
)

/*
 * Authoring-time rule validation.
 *
 * ValidateRule checks a candidate rule in order:
 *   1. Required fields (field, operator, value). The string "0" is a
 *      present value; only the empty string counts as missing. Any miss
 *      returns immediately with one REQUIRED error per missing item and no
 *      further checks.
 *   2. Field/operator legality against the catalog.
 *   3. Value-format checks by the field's declared type. These run even
 *      when the operator is illegal; they are skipped only when the field
 *      itself is unknown (no type to validate against).
 *   4. Adjustment amount must parse as a number when present.
 *
 * Errors block rule creation; warnings (single-token IN lists, single-SKU
 * only_contains) are advisory and never affect validity.
 */

// ValidateRule checks required-ness, field/operator legality, value format,
// and adjustment amount. Never returns an error; all findings are structured.
func ValidateRule(rule types.Rule) types.ValidationResult {
	var errs, warns []types.ValidationIssue

	if rule.Field == "" {
		errs = append(errs, types.ValidationIssue{
			Field:   "field",
			Message: "field is required",
			Code:    types.CodeRequired,
		})
	}
	if rule.Operator == "" {
		errs = append(errs, types.ValidationIssue{
			Field:   "operator",
			Message: "operator is required",
			Code:    types.CodeRequired,
		})
	}
	if rule.Value == "" {
		errs = append(errs, types.ValidationIssue{
			Field:   "value",
			Message: "value is required",
			Code:    types.CodeRequired,
		})
	}
	if len(errs) > 0 {
		// Short-circuit: type-specific checks need all three present.
		return types.ValidationResult{IsValid: false, Errors: errs, Warnings: warns}
	}

	ft, err := TypeOf(rule.Field)
	if err != nil {
		errs = append(errs, types.ValidationIssue{
			Field:   "field",
			Message: fmt.Sprintf("unknown field: %s", rule.Field),
			Code:    types.CodeInvalidField,
		})
	} else {
		if !IsLegalOperator(ft, rule.Operator) {
			errs = append(errs, types.ValidationIssue{
				Field:   "operator",
				Message: fmt.Sprintf("operator %s is not valid for %s field %s", rule.Operator, ft, rule.Field),
				Code:    types.CodeInvalidOperator,
			})
		}
		valueErrs, valueWarns := validateValue(rule.Value, ft, rule.Operator)
		errs = append(errs, valueErrs...)
		warns = append(warns, valueWarns...)
	}

	if rule.AdjustmentAmount != "" {
		if _, err := strconv.ParseFloat(strings.TrimSpace(rule.AdjustmentAmount), 64); err != nil {
			errs = append(errs, types.ValidationIssue{
				Field:   "adjustment_amount",
				Message: fmt.Sprintf("adjustment amount %q is not a number", rule.AdjustmentAmount),
				Code:    types.CodeInvalidAdjustment,
			})
		}
	}

	return types.ValidationResult{IsValid: len(errs) == 0, Errors: errs, Warnings: warns}
}

// validateValue applies type-specific format checks to a rule value.
func validateValue(value string, ft types.FieldType, op types.Operator) (errs, warns []types.ValidationIssue) {
	switch ft {
	case types.FieldTypeNumber:
		if op == types.OpIn || op == types.OpNotIn {
			// Position is 1-based over the raw split so the author can
			// locate the bad segment; empty segments are skipped.
			for i, seg := range strings.Split(value, ";") {
				seg = strings.TrimSpace(seg)
				if seg == "" {
					continue
				}
				if _, err := strconv.ParseFloat(seg, 64); err != nil {
					errs = append(errs, types.ValidationIssue{
						Field:   "value",
						Message: fmt.Sprintf("list item %d (%q) is not a number", i+1, seg),
						Code:    types.CodeInvalidNumberInList,
					})
				}
			}
		} else {
			if _, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err != nil {
				errs = append(errs, types.ValidationIssue{
					Field:   "value",
					Message: fmt.Sprintf("value %q is not a number", value),
					Code:    types.CodeInvalidNumber,
				})
			}
		}

	case types.FieldTypeSKU:
		if op == types.OpOnlyContains && !strings.Contains(value, ";") {
			warns = append(warns, types.ValidationIssue{
				Field:   "value",
				Message: "only_contains with a single SKU matches orders shipping exactly that one SKU; use a semicolon-delimited list to allow more",
				Code:    types.CodeSingleSKUWarning,
			})
		}

	case types.FieldTypeString:
		if (op == types.OpIn || op == types.OpNotIn) && !strings.Contains(value, ";") {
			warns = append(warns, types.ValidationIssue{
				Field:   "value",
				Message: "membership operator with a single value behaves like an equality check; use a semicolon-delimited list",
				Code:    types.CodeSingleValueWarning,
			})
		}
	}

	return errs, warns
}

// ValidateGroup checks a rule group: known logic operator, rule count within
// limits, and every member rule valid. Member issues are prefixed with
// rules[i] so the rule builder can attach them to the right row.
func ValidateGroup(group types.RuleGroup) types.ValidationResult {
	var errs, warns []types.ValidationIssue

	switch group.LogicOperator {
	case types.LogicAnd, types.LogicOr, types.LogicNot,
		types.LogicXor, types.LogicNand, types.LogicNor:
	default:
		errs = append(errs, types.ValidationIssue{
			Field:   "logic_operator",
			Message: fmt.Sprintf("unknown logical operator: %s", group.LogicOperator),
			Code:    types.CodeInvalidLogicOp,
		})
	}

	if len(group.Rules) > types.MaxRulesPerGroup {
		errs = append(errs, types.ValidationIssue{
			Field:   "rules",
			Message: fmt.Sprintf("group has %d rules, maximum is %d", len(group.Rules), types.MaxRulesPerGroup),
			Code:    types.CodeTooManyRules,
		})
	}

	if len(group.Rules) == 0 {
		warns = append(warns, types.ValidationIssue{
			Field:   "rules",
			Message: "group has no rules; it will evaluate by vacuous truth (AND matches every order, OR matches none)",
			Code:    types.CodeEmptyGroupWarning,
		})
	}

	for i, rule := range group.Rules {
		rr := ValidateRule(rule)
		for _, issue := range rr.Errors {
			issue.Field = fmt.Sprintf("rules[%d].%s", i, issue.Field)
			errs = append(errs, issue)
		}
		for _, issue := range rr.Warnings {
			issue.Field = fmt.Sprintf("rules[%d].%s", i, issue.Field)
			warns = append(warns, issue)
		}
	}

	return types.ValidationResult{IsValid: len(errs) == 0, Errors: errs, Warnings: warns}
}
