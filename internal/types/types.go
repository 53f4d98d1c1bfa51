// Package types provides domain models shared across RateKeeper components.
//
// Zero-dependency design: rules.go and errors.go use only the standard
// library so the evaluation core stays import-light. ID utilities in ids.go
// import uuid but are isolated for selective inclusion.
package types

// GroupID identifies a persisted rule group.
// String alias enables type safety while maintaining JSON string serialization.
// UUIDv7 time-ordering ensures sequential IDs cluster in B-tree indexes.
type GroupID string

// RuleID identifies a single rule within a group.
// String alias enables type safety while maintaining JSON string serialization.
type RuleID string

// Resource limits enforced at the API and validation boundary to keep
// evaluation total and bounded.
const (
	// MaxRulesPerGroup limits rules per group. Group combinators evaluate
	// every rule (no short-circuit), so the bound caps per-preview work.
	MaxRulesPerGroup = 64

	// MaxValueListItems limits semicolon-delimited tokens in a rule value.
	// 64 values supports enum-style IN/NI checks without quadratic cost.
	MaxValueListItems = 64

	// MaxValueLength caps a single authored rule value.
	// 1KB accommodates long SKU lists without blob-sized inputs.
	MaxValueLength = 1024

	// MaxContextFields caps order context size. The catalog has 14 fields;
	// the headroom tolerates forward-compatible extra keys, which are ignored.
	MaxContextFields = 64

	// MaxPreviewGroups limits ad-hoc groups per preview request.
	MaxPreviewGroups = 128
)
