package rules

import (
	"testing"

	"github.com/parcelforge/ratekeeper/internal/types"
)

func hasIssue(issues []types.ValidationIssue, code types.IssueCode) bool {
	for _, issue := range issues {
		if issue.Code == code {
			return true
		}
	}
	return false
}

func TestValidateRule_RequiredFields(t *testing.T) {
	tests := []struct {
		name       string
		rule       types.Rule
		wantErrors int
	}{
		{
			name:       "all missing",
			rule:       types.Rule{},
			wantErrors: 3,
		},
		{
			name:       "operator and value missing",
			rule:       types.Rule{Field: "carrier"},
			wantErrors: 2,
		},
		{
			name:       "value missing",
			rule:       types.Rule{Field: "carrier", Operator: types.OpEq},
			wantErrors: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ValidateRule(tt.rule)
			if result.IsValid {
				t.Error("IsValid = true, want false")
			}
			if len(result.Errors) != tt.wantErrors {
				t.Fatalf("got %d errors, want %d: %v", len(result.Errors), tt.wantErrors, result.Errors)
			}
			for _, issue := range result.Errors {
				if issue.Code != types.CodeRequired {
					t.Errorf("error code = %s, want REQUIRED", issue.Code)
				}
			}
		})
	}
}

// "0" is a present value; the required check treats only "" as missing.
func TestValidateRule_ZeroStringIsPresent(t *testing.T) {
	result := ValidateRule(types.Rule{Field: "packages", Operator: types.OpEq, Value: "0"})
	if !result.IsValid {
		t.Fatalf("IsValid = false, want true: %v", result.Errors)
	}
}

// Required-check failures short-circuit: no type-specific errors appear even
// though the value would fail the numeric check.
func TestValidateRule_RequiredShortCircuits(t *testing.T) {
	result := ValidateRule(types.Rule{Field: "", Operator: types.OpGt, Value: "abc"})
	if hasIssue(result.Errors, types.CodeInvalidNumber) {
		t.Error("type-specific check ran despite missing required field")
	}
	if !hasIssue(result.Errors, types.CodeRequired) {
		t.Error("missing REQUIRED error")
	}
}

func TestValidateRule_FieldAndOperatorLegality(t *testing.T) {
	tests := []struct {
		name     string
		rule     types.Rule
		wantCode types.IssueCode
	}{
		{
			name:     "unknown field",
			rule:     types.Rule{Field: "tracking_number", Operator: types.OpEq, Value: "x"},
			wantCode: types.CodeInvalidField,
		},
		{
			name:     "contains on number field",
			rule:     types.Rule{Field: "weight_lb", Operator: types.OpContains, Value: "2"},
			wantCode: types.CodeInvalidOperator,
		},
		{
			name:     "gt on string field",
			rule:     types.Rule{Field: "carrier", Operator: types.OpGt, Value: "UPS"},
			wantCode: types.CodeInvalidOperator,
		},
		{
			name:     "only_contains on string field",
			rule:     types.Rule{Field: "notes", Operator: types.OpOnlyContains, Value: "fragile"},
			wantCode: types.CodeInvalidOperator,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ValidateRule(tt.rule)
			if result.IsValid {
				t.Error("IsValid = true, want false")
			}
			if !hasIssue(result.Errors, tt.wantCode) {
				t.Errorf("errors %v missing code %s", result.Errors, tt.wantCode)
			}
		})
	}
}

func TestValidateRule_NumberValue(t *testing.T) {
	result := ValidateRule(types.Rule{Field: "weight_lb", Operator: types.OpGt, Value: "abc"})
	if result.IsValid {
		t.Error("IsValid = true, want false")
	}
	if !hasIssue(result.Errors, types.CodeInvalidNumber) {
		t.Errorf("errors %v missing INVALID_NUMBER", result.Errors)
	}
}

func TestValidateRule_NumberList(t *testing.T) {
	// in is illegal for NUMBER fields, but the value-format check still runs
	// and reports the bad segment by 1-based position.
	result := ValidateRule(types.Rule{Field: "weight_lb", Operator: types.OpIn, Value: "1;2;x"})
	if result.IsValid {
		t.Error("IsValid = true, want false")
	}
	if !hasIssue(result.Errors, types.CodeInvalidOperator) {
		t.Errorf("errors %v missing INVALID_OPERATOR", result.Errors)
	}

	found := false
	for _, issue := range result.Errors {
		if issue.Code == types.CodeInvalidNumberInList {
			found = true
			if want := `list item 3 ("x") is not a number`; issue.Message != want {
				t.Errorf("message = %q, want %q", issue.Message, want)
			}
		}
	}
	if !found {
		t.Errorf("errors %v missing INVALID_NUMBER_IN_LIST", result.Errors)
	}
}

func TestValidateRule_Warnings(t *testing.T) {
	tests := []struct {
		name     string
		rule     types.Rule
		wantCode types.IssueCode
	}{
		{
			name:     "single sku only_contains",
			rule:     types.Rule{Field: "sku_quantity", Operator: types.OpOnlyContains, Value: "SKU-100"},
			wantCode: types.CodeSingleSKUWarning,
		},
		{
			name:     "single value in list",
			rule:     types.Rule{Field: "carrier", Operator: types.OpIn, Value: "UPS"},
			wantCode: types.CodeSingleValueWarning,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ValidateRule(tt.rule)
			if !result.IsValid {
				t.Errorf("IsValid = false, want true (warnings never block): %v", result.Errors)
			}
			if !hasIssue(result.Warnings, tt.wantCode) {
				t.Errorf("warnings %v missing code %s", result.Warnings, tt.wantCode)
			}
		})
	}
}

func TestValidateRule_NoWarningForMultiTokenLists(t *testing.T) {
	tests := []types.Rule{
		{Field: "sku_quantity", Operator: types.OpOnlyContains, Value: "SKU-100;SKU-200"},
		{Field: "carrier", Operator: types.OpIn, Value: "UPS;FedEx"},
	}
	for _, rule := range tests {
		result := ValidateRule(rule)
		if !result.IsValid || len(result.Warnings) != 0 {
			t.Errorf("ValidateRule(%+v) = %+v, want valid with no warnings", rule, result)
		}
	}
}

func TestValidateRule_AdjustmentAmount(t *testing.T) {
	tests := []struct {
		name    string
		amount  string
		wantOK  bool
	}{
		{"absent", "", true},
		{"integer", "10", true},
		{"decimal", "10.5", true},
		{"negative", "-4.25", true},
		{"garbage", "ten dollars", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ValidateRule(types.Rule{
				Field:            "carrier",
				Operator:         types.OpEq,
				Value:            "UPS",
				AdjustmentAmount: tt.amount,
			})
			if result.IsValid != tt.wantOK {
				t.Errorf("IsValid = %v, want %v: %v", result.IsValid, tt.wantOK, result.Errors)
			}
			if !tt.wantOK && !hasIssue(result.Errors, types.CodeInvalidAdjustment) {
				t.Errorf("errors %v missing INVALID_ADJUSTMENT", result.Errors)
			}
		})
	}
}

func TestValidateGroup(t *testing.T) {
	valid := types.Rule{Field: "carrier", Operator: types.OpEq, Value: "UPS"}

	t.Run("valid group", func(t *testing.T) {
		result := ValidateGroup(types.RuleGroup{
			LogicOperator: types.LogicAnd,
			Rules:         []types.Rule{valid},
		})
		if !result.IsValid {
			t.Fatalf("IsValid = false, want true: %v", result.Errors)
		}
	})

	t.Run("unknown logic operator", func(t *testing.T) {
		result := ValidateGroup(types.RuleGroup{
			LogicOperator: "XAND",
			Rules:         []types.Rule{valid},
		})
		if result.IsValid || !hasIssue(result.Errors, types.CodeInvalidLogicOp) {
			t.Errorf("got %+v, want INVALID_LOGIC_OPERATOR error", result)
		}
	})

	t.Run("empty group warns", func(t *testing.T) {
		result := ValidateGroup(types.RuleGroup{LogicOperator: types.LogicAnd})
		if !result.IsValid {
			t.Errorf("IsValid = false, want true: %v", result.Errors)
		}
		if !hasIssue(result.Warnings, types.CodeEmptyGroupWarning) {
			t.Errorf("warnings %v missing EMPTY_GROUP_WARNING", result.Warnings)
		}
	})

	t.Run("member issues carry rule index", func(t *testing.T) {
		result := ValidateGroup(types.RuleGroup{
			LogicOperator: types.LogicOr,
			Rules: []types.Rule{
				valid,
				{Field: "weight_lb", Operator: types.OpGt, Value: "abc"},
			},
		})
		if result.IsValid {
			t.Fatal("IsValid = true, want false")
		}
		found := false
		for _, issue := range result.Errors {
			if issue.Code == types.CodeInvalidNumber && issue.Field == "rules[1].value" {
				found = true
			}
		}
		if !found {
			t.Errorf("errors %v missing rules[1].value INVALID_NUMBER", result.Errors)
		}
	})

	t.Run("too many rules", func(t *testing.T) {
		rules := make([]types.Rule, types.MaxRulesPerGroup+1)
		for i := range rules {
			rules[i] = valid
		}
		result := ValidateGroup(types.RuleGroup{LogicOperator: types.LogicAnd, Rules: rules})
		if result.IsValid || !hasIssue(result.Errors, types.CodeTooManyRules) {
			t.Errorf("got %+v, want TOO_MANY_RULES error", result)
		}
	})
}
