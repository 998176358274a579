package allocation

import (
	"strings"

	"github.com/shopspring/decimal"
)

// selectionRules maps goal phrases to strategies. Exact scheme names
// come first so "switch to 50/30/20 and save more" picks the named
// scheme rather than the aggressive-save fallback.
var selectionRules = []struct {
	strategy Strategy
	phrases  []string
}{
	{StrategyRule503020, []string{"50/30/20"}},
	{StrategyRule702010, []string{"70/20/10"}},
	{StrategyZeroBased, []string{"zero-based", "zero based"}},
	{StrategyEnvelope, []string{"envelope"}},
	{StrategyAggressiveSave, []string{"save", "emergency fund"}},
	{StrategyDebtPayoff, []string{"debt", "pay off"}},
}

// Select picks a strategy from the user's financial goals. Goals are
// scanned in order and the first matching phrase wins. No goals at all
// means the balanced strategy; goals that match nothing fall back to
// 50/30/20.
func Select(goals []string) Strategy {
	if len(goals) == 0 {
		return StrategyBalanced
	}
	for _, goal := range goals {
		g := strings.ToLower(goal)
		for _, rule := range selectionRules {
			for _, phrase := range rule.phrases {
				if strings.Contains(g, phrase) {
					return rule.strategy
				}
			}
		}
	}
	return StrategyRule503020
}

var (
	mult150 = decimal.RequireFromString("1.5")
	mult130 = decimal.RequireFromString("1.3")
	mult070 = decimal.RequireFromString("0.7")
	mult050 = decimal.RequireFromString("0.5")
)

// goalAdjustments lists the per-category multipliers each goal phrase
// triggers, keyed by category name.
var goalAdjustments = []struct {
	phrases []string
	factors map[string]decimal.Decimal
}{
	{
		phrases: []string{"save", "emergency fund"},
		factors: map[string]decimal.Decimal{
			"Savings":       mult150,
			"Entertainment": mult070,
			"Dining Out":    mult070,
		},
	},
	{
		phrases: []string{"debt", "pay off"},
		factors: map[string]decimal.Decimal{
			"Debt Payments": mult150,
			"Entertainment": mult050,
			"Travel":        mult050,
		},
	},
	{
		phrases: []string{"invest"},
		factors: map[string]decimal.Decimal{
			"Savings": mult130,
		},
	},
}

// Multipliers derives per-category-name adjustment factors from the
// user's goals. Factors from multiple goals compose multiplicatively,
// so "save more" plus "invest" boosts Savings by 1.5 * 1.3.
func Multipliers(goals []string) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal)
	for _, goal := range goals {
		g := strings.ToLower(goal)
		for _, adj := range goalAdjustments {
			matched := false
			for _, phrase := range adj.phrases {
				if strings.Contains(g, phrase) {
					matched = true
					break
				}
			}
			if !matched {
				continue
			}
			for name, factor := range adj.factors {
				if existing, ok := out[name]; ok {
					out[name] = existing.Mul(factor)
				} else {
					out[name] = factor
				}
			}
		}
	}
	return out
}

// Apply scales allocations by the multipliers resolved for each
// category name. Categories without a multiplier pass through.
func Apply(allocations map[string]decimal.Decimal, nameByID map[string]string, multipliers map[string]decimal.Decimal) map[string]decimal.Decimal {
	if len(multipliers) == 0 {
		return allocations
	}
	out := make(map[string]decimal.Decimal, len(allocations))
	for id, amount := range allocations {
		if factor, ok := multipliers[nameByID[id]]; ok {
			amount = amount.Mul(factor)
		}
		out[id] = amount
	}
	return out
}
