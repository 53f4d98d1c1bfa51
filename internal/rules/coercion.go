// internal/rules/coercion.go
package rules

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/parcelforge/ratekeeper/internal/types"
)

/*
 * Type coercion for rule evaluation.
 *
 * Context values arrive as decoded JSON (string, float64, occasionally
 * json.Number) and rule values are always authored strings. Each catalog
 * field type has an explicit coercion instead of implicit runtime
 * conversion:
 *
 *   - NUMBER: strict - strings must parse as float64, booleans rejected
 *   - STRING: lenient - every scalar converts to its string form
 *   - SKU: value is a semicolon-delimited token list; tokens are trimmed
 *     and empty segments dropped
 *
 * Coercion failure is reported as ErrCoercionFailed; the engine converts it
 * into a fail-closed RuleResult rather than letting it escape.
 */

// coerceNumber converts a context or rule value to float64.
// Accepts float64, int, int64, json.Number, and numeric strings.
// Whitespace-only strings and booleans return ErrCoercionFailed.
func coerceNumber(value any) (float64, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, types.ErrCoercionFailed
		}
		return f, nil
	case string:
		v = strings.TrimSpace(v)
		if v == "" {
			return 0, types.ErrCoercionFailed
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, types.ErrCoercionFailed
		}
		return f, nil
	default:
		return 0, types.ErrCoercionFailed
	}
}

// coerceString converts any scalar to its string form for text comparison.
// Numbers format without trailing zeros so 25.0 and "25" compare equal.
func coerceString(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case json.Number:
		return v.String()
	case bool:
		if v {
			return "true"
		}
		return "false"
	default:
		return fmt.Sprintf("%v", v)
	}
}

// SplitList splits a semicolon-delimited value into trimmed tokens,
// dropping empty segments. Used wherever a rule value represents multiple
// tokens (IN/NI lists, SKU lists).
func SplitList(value string) []string {
	parts := strings.Split(value, ";")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}

// coerceTokenSet converts a context value into a SKU token set.
// Strings split on semicolons; JSON arrays contribute one token per element.
func coerceTokenSet(value any) map[string]struct{} {
	set := make(map[string]struct{})
	switch v := value.(type) {
	case string:
		for _, tok := range SplitList(v) {
			set[tok] = struct{}{}
		}
	case []any:
		for _, elem := range v {
			tok := strings.TrimSpace(coerceString(elem))
			if tok != "" {
				set[tok] = struct{}{}
			}
		}
	default:
		tok := strings.TrimSpace(coerceString(v))
		if tok != "" {
			set[tok] = struct{}{}
		}
	}
	return set
}
