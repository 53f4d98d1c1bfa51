package rules

import (
	"testing"

	"github.com/parcelforge/ratekeeper/internal/types"
)

func TestApplyAdjustment(t *testing.T) {
	tests := []struct {
		name   string
		amount string
		base   float64
		want   float64
	}{
		{"decimal amount", "10.5", 100, 110.5},
		{"integer amount", "15", 100, 115},
		{"negative amount", "-20", 100, 80},
		{"absent amount", "", 100, 100},
		{"unparseable amount", "bad", 100, 100},
		{"zero amount", "0", 100, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ApplyAdjustment(types.Rule{AdjustmentAmount: tt.amount}, tt.base)
			if got != tt.want {
				t.Errorf("ApplyAdjustment(%q, %v) = %v, want %v", tt.amount, tt.base, got, tt.want)
			}
		})
	}
}

func TestPreviewAdjustments(t *testing.T) {
	ctx := testContext()

	t.Run("matched group applies matched rule adjustments", func(t *testing.T) {
		groups := []types.RuleGroup{
			{
				Name:          "oversize surcharge",
				LogicOperator: types.LogicAnd,
				Rules: []types.Rule{
					{Field: "weight_lb", Operator: types.OpGt, Value: "20", AdjustmentAmount: "12.50"},
				},
			},
		}

		preview := PreviewAdjustments(groups, ctx, 100)
		if preview.AdjustedAmount != 112.5 {
			t.Errorf("AdjustedAmount = %v, want 112.5", preview.AdjustedAmount)
		}
		if preview.Groups[0].AppliedAmount != 12.5 {
			t.Errorf("AppliedAmount = %v, want 12.5", preview.Groups[0].AppliedAmount)
		}
	})

	t.Run("unmatched group contributes nothing", func(t *testing.T) {
		groups := []types.RuleGroup{
			{
				LogicOperator: types.LogicAnd,
				Rules: []types.Rule{
					{Field: "carrier", Operator: types.OpEq, Value: "UPS", AdjustmentAmount: "50"},
				},
			},
		}

		preview := PreviewAdjustments(groups, ctx, 100)
		if preview.AdjustedAmount != 100 {
			t.Errorf("AdjustedAmount = %v, want 100", preview.AdjustedAmount)
		}
		if preview.Groups[0].Result.Success {
			t.Errorf("group result = %+v, want failure", preview.Groups[0].Result)
		}
	})

	t.Run("OR group skips adjustments of unmatched member rules", func(t *testing.T) {
		groups := []types.RuleGroup{
			{
				LogicOperator: types.LogicOr,
				Rules: []types.Rule{
					{Field: "carrier", Operator: types.OpEq, Value: "UPS", AdjustmentAmount: "50"},
					{Field: "carrier", Operator: types.OpEq, Value: "FedEx", AdjustmentAmount: "7.25"},
				},
			},
		}

		preview := PreviewAdjustments(groups, ctx, 100)
		if preview.AdjustedAmount != 107.25 {
			t.Errorf("AdjustedAmount = %v, want 107.25", preview.AdjustedAmount)
		}
	})

	t.Run("multiple groups accumulate", func(t *testing.T) {
		groups := []types.RuleGroup{
			{
				LogicOperator: types.LogicAnd,
				Rules: []types.Rule{
					{Field: "weight_lb", Operator: types.OpGt, Value: "20", AdjustmentAmount: "10"},
				},
			},
			{
				LogicOperator: types.LogicAnd,
				Rules: []types.Rule{
					{Field: "ship_to_country", Operator: types.OpEq, Value: "US", AdjustmentAmount: "5"},
				},
			},
		}

		preview := PreviewAdjustments(groups, ctx, 100)
		if preview.AdjustedAmount != 115 {
			t.Errorf("AdjustedAmount = %v, want 115", preview.AdjustedAmount)
		}
		if len(preview.Groups) != 2 {
			t.Fatalf("got %d group previews, want 2", len(preview.Groups))
		}
	})
}
