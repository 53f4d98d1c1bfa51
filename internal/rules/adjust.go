// internal/rules/adjust.go
package rules

import (
	"strconv"
	"strings"

	"github.com/parcelforge/ratekeeper/internal/types"
)

/*
 * Billing adjustment calculation.
 *
 * ApplyAdjustment adds a rule's flat monetary delta to a running total. It
 * performs no success check itself; callers apply it only to rules whose
 * evaluation succeeded. A blank or unparseable amount leaves the total
 * unchanged so a malformed rule can never corrupt a billing preview.
 *
 * PreviewAdjustments is the billing-report entry point: evaluate each group
 * against one order and fold the adjustments of matched rules in matched
 * groups into the base amount.
 */

// ApplyAdjustment returns base plus the rule's adjustment amount.
// Absent or unparseable amounts return base unchanged.
func ApplyAdjustment(rule types.Rule, base float64) float64 {
	if rule.AdjustmentAmount == "" {
		return base
	}
	amount, err := strconv.ParseFloat(strings.TrimSpace(rule.AdjustmentAmount), 64)
	if err != nil {
		return base
	}
	return base + amount
}

// GroupPreview is one group's contribution to a billing preview.
type GroupPreview struct {
	GroupID       types.GroupID      `json:"group_id,omitempty"`
	Name          string             `json:"name,omitempty"`
	Result        types.RuleResult   `json:"result"`
	RuleResults   []types.RuleResult `json:"rule_results"`
	AppliedAmount float64            `json:"applied_amount"`
}

// PreviewResult is the outcome of previewing rule groups against one order.
type PreviewResult struct {
	BaseAmount     float64        `json:"base_amount"`
	AdjustedAmount float64        `json:"adjusted_amount"`
	Groups         []GroupPreview `json:"groups"`
}

// PreviewAdjustments evaluates each group against the order context and
// applies the adjustments of matched rules within matched groups to base.
// Groups that do not match contribute nothing, but their per-rule results
// are still reported for the preview UI.
func PreviewAdjustments(groups []types.RuleGroup, ctx types.Context, base float64) PreviewResult {
	preview := PreviewResult{
		BaseAmount:     base,
		AdjustedAmount: base,
		Groups:         make([]GroupPreview, 0, len(groups)),
	}

	for _, group := range groups {
		groupResult, ruleResults := EvaluateGroupDetailed(group, ctx)

		gp := GroupPreview{
			GroupID:     group.GroupID,
			Name:        group.Name,
			Result:      groupResult,
			RuleResults: ruleResults,
		}

		if groupResult.Success {
			before := preview.AdjustedAmount
			for i, rule := range group.Rules {
				if ruleResults[i].Success {
					preview.AdjustedAmount = ApplyAdjustment(rule, preview.AdjustedAmount)
				}
			}
			gp.AppliedAmount = preview.AdjustedAmount - before
		}

		preview.Groups = append(preview.Groups, gp)
	}

	return preview
}
