// internal/rules/operators.go
package rules

import (
	"strings"

	"github.com/parcelforge/ratekeeper/internal/types"
)

/*
 * Operator comparison logic.
 *
 * Implements the 13 comparison operators over already-coerced values.
 * EvaluateRule performs coercion per the catalog field type before reaching
 * these helpers, so each comparator handles exactly one value shape.
 *
 * Why function-based: 13 operators via switch statement is cleaner than 13
 * interface implementations with minimal behavior variation, and the closed
 * switch makes a missing case a reviewable gap instead of a silent fallback.
 */

// compareNumeric performs three-way numeric comparison (-1/0/1).
func compareNumeric(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// compareStrings applies a string-form operator. Returns false for
// operators that are not string comparisons.
func compareStrings(op types.Operator, contextValue, ruleValue string) bool {
	switch op {
	case types.OpEq:
		return contextValue == ruleValue
	case types.OpNe:
		return contextValue != ruleValue
	case types.OpContains:
		return strings.Contains(contextValue, ruleValue)
	case types.OpNotContains:
		return !strings.Contains(contextValue, ruleValue)
	case types.OpStartsWith:
		return strings.HasPrefix(contextValue, ruleValue)
	case types.OpEndsWith:
		return strings.HasSuffix(contextValue, ruleValue)
	default:
		return false
	}
}

// compareIn reports whether contextValue appears in the rule's token list.
func compareIn(contextValue string, ruleValue string) bool {
	for _, tok := range SplitList(ruleValue) {
		if tok == contextValue {
			return true
		}
	}
	return false
}

// compareOnlyContains reports whether every context token appears in the
// rule's token list (subset check). An empty context token set fails: an
// order with no SKUs does not "only contain" anything.
func compareOnlyContains(contextTokens map[string]struct{}, ruleValue string) bool {
	if len(contextTokens) == 0 {
		return false
	}
	allowed := make(map[string]struct{})
	for _, tok := range SplitList(ruleValue) {
		allowed[tok] = struct{}{}
	}
	for tok := range contextTokens {
		if _, ok := allowed[tok]; !ok {
			return false
		}
	}
	return true
}
