// internal/rules/evaluate.go
package rules

import (
	"fmt"

	"github.com/parcelforge/ratekeeper/internal/types"
)

/*
 * Rule evaluation orchestration.
 *
 * Evaluates a single rule against an order context and a rule group under
 * one of six logical combinators (AND/OR/NOT/XOR/NAND/NOR).
 *
 * Evaluation flow per rule:
 *   1. Resolve the field's declared type from the catalog
 *   2. Look up the context value (absent field -> no match, not an error)
 *   3. Coerce both sides per the declared type
 *   4. Compare per operator
 *
 * Group semantics: every rule is evaluated, in order, with no
 * short-circuiting - XOR and NOR need the full result list, and the preview
 * UI shows a verdict per rule. Combinators over an empty rule list keep
 * vacuous-truth semantics (AND true, OR false, XOR false); ValidateGroup
 * warns about empty groups at authoring time.
 *
 * Fail-closed boundary: malformed rules evaluate to success=false with a
 * typed ReasonCode. Unknown operators, coercion failures, and any panic in
 * a comparator are all converted to results; nothing propagates out of
 * EvaluateRule or EvaluateGroup.
 */

// EvaluateRule evaluates one rule against an order context.
func EvaluateRule(rule types.Rule, ctx types.Context) (result types.RuleResult) {
	defer func() {
		if r := recover(); r != nil {
			result = types.RuleResult{
				Success: false,
				Reason:  fmt.Sprintf("Evaluation error: %v", r),
				Code:    types.ReasonEvaluationError,
			}
		}
	}()

	ft, err := TypeOf(rule.Field)
	if err != nil {
		return types.RuleResult{
			Success: false,
			Reason:  fmt.Sprintf("Evaluation error: unknown field %s", rule.Field),
			Code:    types.ReasonEvaluationError,
		}
	}

	contextValue, ok := ctx[rule.Field]
	if !ok || contextValue == nil {
		return types.RuleResult{
			Success: false,
			Reason:  fmt.Sprintf("field %s not present in context", rule.Field),
		}
	}

	switch rule.Operator {
	case types.OpEq, types.OpNe:
		return evaluateEquality(rule, ft, contextValue)

	case types.OpGt, types.OpLt, types.OpGe, types.OpLe:
		return evaluateOrdering(rule, contextValue)

	case types.OpContains, types.OpNotContains, types.OpStartsWith, types.OpEndsWith:
		matched := compareStrings(rule.Operator, coerceString(contextValue), rule.Value)
		return matchResult(matched, rule)

	case types.OpIn:
		return matchResult(compareIn(coerceString(contextValue), rule.Value), rule)

	case types.OpNotIn:
		return matchResult(!compareIn(coerceString(contextValue), rule.Value), rule)

	case types.OpOnlyContains:
		matched := compareOnlyContains(coerceTokenSet(contextValue), rule.Value)
		return matchResult(matched, rule)

	default:
		return types.RuleResult{
			Success: false,
			Reason:  fmt.Sprintf("Unknown operator: %s", rule.Operator),
			Code:    types.ReasonUnknownOperator,
		}
	}
}

// evaluateEquality compares per the field's declared type: numeric equality
// for NUMBER fields (25 and "25" are equal), exact string equality otherwise.
func evaluateEquality(rule types.Rule, ft types.FieldType, contextValue any) types.RuleResult {
	var matched bool
	if ft == types.FieldTypeNumber {
		cv, err := coerceNumber(contextValue)
		if err != nil {
			return evaluationError(rule.Field, contextValue)
		}
		rv, err := coerceNumber(rule.Value)
		if err != nil {
			return evaluationError(rule.Field, rule.Value)
		}
		matched = compareNumeric(cv, rv) == 0
	} else {
		matched = coerceString(contextValue) == rule.Value
	}
	if rule.Operator == types.OpNe {
		matched = !matched
	}
	return matchResult(matched, rule)
}

// evaluateOrdering applies gt/lt/ge/le after coercing both sides to numbers.
func evaluateOrdering(rule types.Rule, contextValue any) types.RuleResult {
	cv, err := coerceNumber(contextValue)
	if err != nil {
		return evaluationError(rule.Field, contextValue)
	}
	rv, err := coerceNumber(rule.Value)
	if err != nil {
		return evaluationError(rule.Field, rule.Value)
	}

	cmp := compareNumeric(cv, rv)
	var matched bool
	switch rule.Operator {
	case types.OpGt:
		matched = cmp > 0
	case types.OpLt:
		matched = cmp < 0
	case types.OpGe:
		matched = cmp >= 0
	case types.OpLe:
		matched = cmp <= 0
	}
	return matchResult(matched, rule)
}

// matchResult builds the ordinary match/no-match result for a rule.
func matchResult(matched bool, rule types.Rule) types.RuleResult {
	if matched {
		return types.RuleResult{
			Success: true,
			Reason:  fmt.Sprintf("%s %s %q matched", rule.Field, rule.Operator, rule.Value),
		}
	}
	return types.RuleResult{
		Success: false,
		Reason:  fmt.Sprintf("%s %s %q did not match", rule.Field, rule.Operator, rule.Value),
	}
}

// evaluationError builds the fail-closed result for a coercion failure.
func evaluationError(field string, value any) types.RuleResult {
	return types.RuleResult{
		Success: false,
		Reason:  fmt.Sprintf("Evaluation error: value %v for field %s is not a number", value, field),
		Code:    types.ReasonEvaluationError,
	}
}

// EvaluateGroup evaluates every rule in the group (order preserved, no
// short-circuiting) and combines the results per the group's logic operator.
func EvaluateGroup(group types.RuleGroup, ctx types.Context) (result types.RuleResult) {
	defer func() {
		if r := recover(); r != nil {
			result = types.RuleResult{
				Success: false,
				Reason:  fmt.Sprintf("Group evaluation error: %v", r),
				Code:    types.ReasonGroupEvaluationError,
			}
		}
	}()

	result, _ = evaluateGroupRules(group, ctx)
	return result
}

// EvaluateGroupDetailed returns the group verdict plus the per-rule results
// in rule order. The preview API uses it to show a verdict per builder row.
func EvaluateGroupDetailed(group types.RuleGroup, ctx types.Context) (types.RuleResult, []types.RuleResult) {
	return evaluateGroupRules(group, ctx)
}

func evaluateGroupRules(group types.RuleGroup, ctx types.Context) (types.RuleResult, []types.RuleResult) {
	results := make([]types.RuleResult, len(group.Rules))
	matched := 0
	for i, rule := range group.Rules {
		results[i] = EvaluateRule(rule, ctx)
		if results[i].Success {
			matched++
		}
	}

	total := len(results)
	var success bool
	switch group.LogicOperator {
	case types.LogicAnd:
		success = matched == total
	case types.LogicOr:
		success = matched > 0
	case types.LogicNot, types.LogicNor:
		// NOT and NOR share the "no rule succeeded" predicate; both names
		// are kept because stored groups use either.
		success = matched == 0
	case types.LogicXor:
		success = matched == 1
	case types.LogicNand:
		success = matched != total
	default:
		return types.RuleResult{
			Success: false,
			Reason:  fmt.Sprintf("Unknown logical operator: %s", group.LogicOperator),
			Code:    types.ReasonUnknownLogicOperator,
		}, results
	}

	return types.RuleResult{
		Success: success,
		Reason:  fmt.Sprintf("%d of %d rules matched under %s", matched, total, group.LogicOperator),
	}, results
}
