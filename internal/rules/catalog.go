// internal/rules/catalog.go
package rules

import (
	"github.com/parcelforge/ratekeeper/internal/types"
)

/*
 * Field/operator catalog.
 *
 * Static registry mapping order field names to a semantic type and each type
 * to its legal comparison operators. The catalog is fixed for process
 * lifetime; lookups are pure and allocation-free apart from defensive copies.
 *
 * Unknown field names surface as ErrUnknownField rather than a silent
 * default so authoring callers can report the miss.
 */

// CatalogEntry describes one order field the rule builder can target.
type CatalogEntry struct {
	Name string          `json:"name"`
	Type types.FieldType `json:"-"`
}

// Catalog order matches the rule builder's dropdown ordering.
var catalog = []CatalogEntry{
	{Name: "reference_number", Type: types.FieldTypeString},
	{Name: "ship_to_name", Type: types.FieldTypeString},
	{Name: "ship_to_company", Type: types.FieldTypeString},
	{Name: "ship_to_city", Type: types.FieldTypeString},
	{Name: "ship_to_state", Type: types.FieldTypeString},
	{Name: "ship_to_country", Type: types.FieldTypeString},
	{Name: "weight_lb", Type: types.FieldTypeNumber},
	{Name: "line_items", Type: types.FieldTypeNumber},
	{Name: "sku_quantity", Type: types.FieldTypeSKU},
	{Name: "total_item_qty", Type: types.FieldTypeNumber},
	{Name: "packages", Type: types.FieldTypeNumber},
	{Name: "notes", Type: types.FieldTypeString},
	{Name: "carrier", Type: types.FieldTypeString},
	{Name: "volume_cuft", Type: types.FieldTypeNumber},
}

var fieldTypes = func() map[string]types.FieldType {
	m := make(map[string]types.FieldType, len(catalog))
	for _, e := range catalog {
		m[e.Name] = e.Type
	}
	return m
}()

// Legal operator sets per field type. Order matches the rule builder's
// operator dropdowns.
var (
	stringOperators = []types.Operator{
		types.OpEq, types.OpNe, types.OpIn, types.OpNotIn,
		types.OpContains, types.OpNotContains,
		types.OpStartsWith, types.OpEndsWith,
	}
	numberOperators = []types.Operator{
		types.OpEq, types.OpNe, types.OpGt, types.OpLt, types.OpGe, types.OpLe,
	}
	skuOperators = []types.Operator{
		types.OpContains, types.OpNotContains, types.OpOnlyContains,
	}
)

// TypeOf returns the declared type of a catalog field.
// Returns ErrUnknownField for names outside the catalog.
func TypeOf(field string) (types.FieldType, error) {
	ft, ok := fieldTypes[field]
	if !ok {
		return types.FieldTypeUnspecified, types.ErrUnknownField
	}
	return ft, nil
}

// LegalOperators returns the ordered operator set legal for a field type.
// The returned slice is a copy; callers may reorder it freely.
func LegalOperators(ft types.FieldType) []types.Operator {
	var ops []types.Operator
	switch ft {
	case types.FieldTypeString:
		ops = stringOperators
	case types.FieldTypeNumber:
		ops = numberOperators
	case types.FieldTypeSKU:
		ops = skuOperators
	default:
		return nil
	}
	out := make([]types.Operator, len(ops))
	copy(out, ops)
	return out
}

// IsLegalOperator reports whether op is legal for the field type.
func IsLegalOperator(ft types.FieldType, op types.Operator) bool {
	var ops []types.Operator
	switch ft {
	case types.FieldTypeString:
		ops = stringOperators
	case types.FieldTypeNumber:
		ops = numberOperators
	case types.FieldTypeSKU:
		ops = skuOperators
	default:
		return false
	}
	for _, legal := range ops {
		if op == legal {
			return true
		}
	}
	return false
}

// Fields returns the full catalog in dropdown order.
// The returned slice is a copy; the catalog itself is immutable.
func Fields() []CatalogEntry {
	out := make([]CatalogEntry, len(catalog))
	copy(out, catalog)
	return out
}
