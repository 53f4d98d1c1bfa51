// internal/types/rules.go
package types

/*
 * Domain types for billing rule evaluation.
 *
 * Provides Rule, RuleGroup, Context, and result structures used by
 * internal/rules for validation and evaluation. These types mirror the JSON
 * shapes exchanged with the admin SPA; conversion to storage rows happens at
 * the store boundary.
 *
 * Key types:
 *   - Rule: single field/operator/value comparison with optional adjustment
 *   - RuleGroup: ordered rules combined by one logical operator
 *   - Context: one order's field values keyed by catalog field name
 *   - RuleResult: pass/fail outcome with reason text and typed reason code
 *   - ValidationResult: structured authoring-time errors and warnings
 */

// FieldType classifies a catalog field and determines legal operators
// and value coercion during evaluation.
type FieldType int

const (
	FieldTypeUnspecified FieldType = iota
	FieldTypeString
	FieldTypeNumber
	FieldTypeSKU
)

// String returns the catalog name of the field type.
func (ft FieldType) String() string {
	switch ft {
	case FieldTypeString:
		return "string"
	case FieldTypeNumber:
		return "number"
	case FieldTypeSKU:
		return "sku"
	default:
		return "unspecified"
	}
}

// Operator is the wire code for a rule comparison operator.
// String-typed so JSON payloads from the rule builder map directly.
type Operator string

const (
	OpEq           Operator = "eq"
	OpNe           Operator = "ne"
	OpGt           Operator = "gt"
	OpLt           Operator = "lt"
	OpGe           Operator = "ge"
	OpLe           Operator = "le"
	OpIn           Operator = "in"
	OpNotIn        Operator = "ni"
	OpContains     Operator = "contains"
	OpNotContains  Operator = "ncontains"
	OpStartsWith   Operator = "startswith"
	OpEndsWith     Operator = "endswith"
	OpOnlyContains Operator = "only_contains"
)

// LogicOperator combines the per-rule results of a group.
type LogicOperator string

const (
	LogicAnd  LogicOperator = "AND"
	LogicOr   LogicOperator = "OR"
	LogicNot  LogicOperator = "NOT"
	LogicXor  LogicOperator = "XOR"
	LogicNand LogicOperator = "NAND"
	LogicNor  LogicOperator = "NOR"
)

// Rule is a single billing condition authored in the rule builder.
// Value holds a scalar or a semicolon-delimited list depending on operator.
// AdjustmentAmount is kept as the authored string; it is parsed lazily when
// the adjustment is applied so a malformed amount degrades to "no adjustment"
// rather than failing evaluation.
type Rule struct {
	RuleID           RuleID   `json:"rule_id,omitempty" db:"rule_id"`
	Field            string   `json:"field" db:"field"`
	Operator         Operator `json:"operator" db:"operator"`
	Value            string   `json:"value" db:"value"`
	AdjustmentAmount string   `json:"adjustment_amount,omitempty" db:"adjustment_amount"`
}

// RuleGroup is an ordered set of rules combined by one logical operator.
type RuleGroup struct {
	GroupID       GroupID       `json:"group_id,omitempty" db:"group_id"`
	Name          string        `json:"name,omitempty" db:"name"`
	LogicOperator LogicOperator `json:"logic_operator" db:"logic_operator"`
	Rules         []Rule        `json:"rules"`
}

// Context holds one order's field values keyed by catalog field name.
// Values arrive as decoded JSON (string, float64, or semicolon-joined SKU
// string). The engine never mutates a context.
type Context map[string]any

// ReasonCode classifies a failed RuleResult so callers can distinguish
// "rule did not match" from "rule was malformed" without parsing reason text.
type ReasonCode string

const (
	// ReasonNone marks an ordinary match/no-match outcome.
	ReasonNone ReasonCode = ""

	// ReasonUnknownOperator marks dispatch on an unrecognized operator.
	ReasonUnknownOperator ReasonCode = "unknown_operator"

	// ReasonUnknownLogicOperator marks an unrecognized group combinator.
	ReasonUnknownLogicOperator ReasonCode = "unknown_logic_operator"

	// ReasonEvaluationError marks a runtime failure during comparison,
	// e.g. a non-numeric value fed to a numeric operator.
	ReasonEvaluationError ReasonCode = "evaluation_error"

	// ReasonGroupEvaluationError marks a failure assembling group input
	// before any rule ran.
	ReasonGroupEvaluationError ReasonCode = "group_evaluation_error"
)

// RuleResult is the outcome of evaluating one rule or one group.
// Evaluation is fail-closed: malformed input produces Success=false with a
// diagnostic code, never an error return or panic.
type RuleResult struct {
	Success bool       `json:"success"`
	Reason  string     `json:"reason"`
	Code    ReasonCode `json:"code,omitempty"`
}

// IssueCode identifies a validation error or warning condition.
type IssueCode string

const (
	CodeRequired            IssueCode = "REQUIRED"
	CodeInvalidField        IssueCode = "INVALID_FIELD"
	CodeInvalidOperator     IssueCode = "INVALID_OPERATOR"
	CodeInvalidNumber       IssueCode = "INVALID_NUMBER"
	CodeInvalidNumberInList IssueCode = "INVALID_NUMBER_IN_LIST"
	CodeInvalidAdjustment   IssueCode = "INVALID_ADJUSTMENT"
	CodeInvalidLogicOp      IssueCode = "INVALID_LOGIC_OPERATOR"
	CodeTooManyRules        IssueCode = "TOO_MANY_RULES"
	CodeSingleSKUWarning    IssueCode = "SINGLE_SKU_WARNING"
	CodeSingleValueWarning  IssueCode = "SINGLE_VALUE_WARNING"
	CodeEmptyGroupWarning   IssueCode = "EMPTY_GROUP_WARNING"
)

// ValidationIssue is one structured error or warning from rule validation.
type ValidationIssue struct {
	Field   string    `json:"field"`
	Message string    `json:"message"`
	Code    IssueCode `json:"code"`
}

// ValidationResult is the authoring-time verdict for a rule or group.
// Warnings never affect validity.
type ValidationResult struct {
	IsValid  bool              `json:"isValid"`
	Errors   []ValidationIssue `json:"errors"`
	Warnings []ValidationIssue `json:"warnings"`
}
