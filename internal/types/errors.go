package types

import "errors"

// Sentinel errors for RateKeeper operations.
var (
	// ErrUnknownField indicates a field name absent from the catalog.
	ErrUnknownField = errors.New("unknown catalog field")

	// ErrUnknownFieldType indicates a FieldType outside the catalog enum.
	ErrUnknownFieldType = errors.New("unknown field type")

	// ErrGroupNotFound indicates a rule group ID with no stored group.
	ErrGroupNotFound = errors.New("rule group not found")

	// ErrGroupExists indicates an insert with an already-used group ID.
	ErrGroupExists = errors.New("rule group already exists")

	// ErrTooManyRules indicates a group exceeds MaxRulesPerGroup.
	ErrTooManyRules = errors.New("rule group has too many rules")

	// ErrValueTooLong indicates a rule value exceeds MaxValueLength.
	ErrValueTooLong = errors.New("rule value too long")

	// ErrContextTooLarge indicates an order context exceeds MaxContextFields.
	ErrContextTooLarge = errors.New("evaluation context has too many fields")

	// ErrCoercionFailed indicates a context value could not be coerced to
	// the field's declared type.
	ErrCoercionFailed = errors.New("type coercion failed")
)
