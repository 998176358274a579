// Package allocation implements the budget allocation strategies. Every
// strategy is a pure function from income, category priorities, and
// spending history to per-category amounts; persistence and goal
// handling live in the budget service.
package allocation

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// Strategy names a budget allocation algorithm.
type Strategy string

const (
	StrategyRule503020     Strategy = "50/30/20"
	StrategyRule702010     Strategy = "70/20/10"
	StrategyAggressiveSave Strategy = "aggressive_save"
	StrategyDebtPayoff     Strategy = "debt_payoff"
	StrategyBalanced       Strategy = "balanced"
	StrategyZeroBased      Strategy = "zero_based"
	StrategyEnvelope       Strategy = "envelope"
)

// Category carries the slice of category data the strategies need.
// Priority is the resolved budgeting priority: the user's custom
// priority when one exists, otherwise the necessity score.
type Category struct {
	ID             string
	Name           string
	NecessityScore int
	Priority       int
	DefaultPercent decimal.Decimal // of income, 0-100
}

// Inputs bundles the arguments shared by all strategies. Monthly limit
// caps and goal multipliers are applied by the caller after the base
// strategy runs.
type Inputs struct {
	Income             decimal.Decimal
	Categories         []Category
	HistoricalAverages map[string]decimal.Decimal // category ID -> avg monthly spend
}

// Categories with necessity at or above this threshold count as needs.
const essentialNecessity = 7

var (
	dZero = decimal.Zero
	d10   = decimal.RequireFromString("0.10")
	d20   = decimal.RequireFromString("0.20")
	d30   = decimal.RequireFromString("0.30")
	d40   = decimal.RequireFromString("0.40")
	d50   = decimal.RequireFromString("0.50")
	d60   = decimal.RequireFromString("0.60")
	d70   = decimal.RequireFromString("0.70")
	d100  = decimal.NewFromInt(100)
	dTwo  = decimal.NewFromInt(2)
)

func isSavingsName(name string) bool {
	n := strings.ToLower(name)
	return strings.Contains(n, "saving") || strings.Contains(n, "investment") || strings.Contains(n, "emergency")
}

func isDebtName(name string) bool {
	n := strings.ToLower(name)
	return strings.Contains(n, "debt") || strings.Contains(n, "loan") || strings.Contains(n, "credit")
}

func defaultShare(income decimal.Decimal, c Category) decimal.Decimal {
	return income.Mul(c.DefaultPercent).Div(d100)
}

// Compute runs the named strategy and returns per-category amounts.
// The returned total may exceed income; callers rebalance afterwards.
func Compute(s Strategy, in Inputs) map[string]decimal.Decimal {
	switch s {
	case StrategyRule702010:
		return rule702010(in)
	case StrategyAggressiveSave:
		return aggressiveSave(in)
	case StrategyDebtPayoff:
		return debtPayoff(in)
	case StrategyBalanced:
		return balanced(in)
	case StrategyZeroBased:
		return zeroBased(in)
	case StrategyEnvelope:
		return envelope(in)
	default:
		return rule503020(in)
	}
}

// rule503020 splits income 50% needs / 30% wants / 20% savings-and-debt.
// Needs are necessity >= 7 and share their bucket proportionally by
// necessity; wants and the savings/debt group split theirs evenly.
func rule503020(in Inputs) map[string]decimal.Decimal {
	needsBudget := in.Income.Mul(d50)
	wantsBudget := in.Income.Mul(d30)
	savingsBudget := in.Income.Mul(d20)

	var needs, wants, savings []Category
	for _, c := range in.Categories {
		switch {
		case isSavingsName(c.Name) || isDebtName(c.Name):
			savings = append(savings, c)
		case c.NecessityScore >= essentialNecessity:
			needs = append(needs, c)
		default:
			wants = append(wants, c)
		}
	}

	out := make(map[string]decimal.Decimal, len(in.Categories))

	totalNecessity := int64(0)
	for _, c := range needs {
		totalNecessity += int64(c.NecessityScore)
	}
	for _, c := range needs {
		if totalNecessity > 0 {
			ratio := decimal.NewFromInt(int64(c.NecessityScore)).Div(decimal.NewFromInt(totalNecessity))
			out[c.ID] = needsBudget.Mul(ratio)
		} else {
			out[c.ID] = dZero
		}
	}
	for _, c := range wants {
		out[c.ID] = wantsBudget.Div(decimal.NewFromInt(int64(len(wants))))
	}
	for _, c := range savings {
		out[c.ID] = savingsBudget.Div(decimal.NewFromInt(int64(len(savings))))
	}
	return out
}

// rule702010 splits income 70% living expenses / 20% savings / 10% debt.
// Savings and debt groups split their buckets evenly; living categories
// draw on the 70% bucket via their default allocation percent.
func rule702010(in Inputs) map[string]decimal.Decimal {
	livingBudget := in.Income.Mul(d70)
	savingsBudget := in.Income.Mul(d20)
	debtBudget := in.Income.Mul(d10)

	var savingsCount, debtCount int64
	for _, c := range in.Categories {
		switch {
		case isDebtName(c.Name):
			debtCount++
		case isSavingsName(c.Name):
			savingsCount++
		}
	}

	out := make(map[string]decimal.Decimal, len(in.Categories))
	for _, c := range in.Categories {
		switch {
		case isDebtName(c.Name):
			out[c.ID] = debtBudget.Div(decimal.NewFromInt(debtCount))
		case isSavingsName(c.Name):
			out[c.ID] = savingsBudget.Div(decimal.NewFromInt(savingsCount))
		default:
			out[c.ID] = livingBudget.Mul(c.DefaultPercent).Div(d100)
		}
	}
	return out
}

// distributeByNecessity splits a budget across categories in proportion
// to their necessity scores.
func distributeByNecessity(out map[string]decimal.Decimal, budget decimal.Decimal, cats []Category) {
	totalNecessity := int64(0)
	for _, c := range cats {
		totalNecessity += int64(c.NecessityScore)
	}
	for _, c := range cats {
		if totalNecessity > 0 {
			ratio := decimal.NewFromInt(int64(c.NecessityScore)).Div(decimal.NewFromInt(totalNecessity))
			out[c.ID] = budget.Mul(ratio)
		} else {
			out[c.ID] = dZero
		}
	}
}

// aggressiveSave pushes the savings rate to 40% of income and splits the
// remaining 60% across the other categories by necessity.
func aggressiveSave(in Inputs) map[string]decimal.Decimal {
	var savings, rest []Category
	for _, c := range in.Categories {
		if isSavingsName(c.Name) {
			savings = append(savings, c)
		} else {
			rest = append(rest, c)
		}
	}

	out := make(map[string]decimal.Decimal, len(in.Categories))
	for _, c := range savings {
		out[c.ID] = in.Income.Mul(d40).Div(decimal.NewFromInt(int64(len(savings))))
	}
	distributeByNecessity(out, in.Income.Mul(d60), rest)
	return out
}

// debtPayoff directs 30% of income at debt categories, 60% at the
// essential categories, and 10% at discretionary ones; each band splits
// its share by necessity.
func debtPayoff(in Inputs) map[string]decimal.Decimal {
	var debt, essential, discretionary []Category
	for _, c := range in.Categories {
		switch {
		case isDebtName(c.Name):
			debt = append(debt, c)
		case c.NecessityScore >= essentialNecessity:
			essential = append(essential, c)
		default:
			discretionary = append(discretionary, c)
		}
	}

	out := make(map[string]decimal.Decimal, len(in.Categories))
	for _, c := range debt {
		out[c.ID] = in.Income.Mul(d30).Div(decimal.NewFromInt(int64(len(debt))))
	}
	distributeByNecessity(out, in.Income.Mul(d60), essential)
	distributeByNecessity(out, in.Income.Mul(d10), discretionary)
	return out
}

// balanced distributes income proportionally to resolved priorities.
// When a historical average exists for a category the share is blended
// with it (plain average) so real spending pulls the plan toward
// observed behavior.
func balanced(in Inputs) map[string]decimal.Decimal {
	totalPriority := int64(0)
	for _, c := range in.Categories {
		totalPriority += int64(c.Priority)
	}

	out := make(map[string]decimal.Decimal, len(in.Categories))
	for _, c := range in.Categories {
		var share decimal.Decimal
		if totalPriority > 0 {
			ratio := decimal.NewFromInt(int64(c.Priority)).Div(decimal.NewFromInt(totalPriority))
			share = in.Income.Mul(ratio)
		}
		if avg, ok := in.HistoricalAverages[c.ID]; ok {
			share = share.Add(avg).Div(dTwo)
		}
		out[c.ID] = share
	}
	return out
}

// zeroBased allocates every dollar. Essential categories are funded at
// their default share in necessity order until income runs out; whatever
// remains is split across the variable categories in proportion to their
// default percents, so no surplus is left unallocated.
func zeroBased(in Inputs) map[string]decimal.Decimal {
	var essential, variable []Category
	for _, c := range in.Categories {
		if c.NecessityScore >= essentialNecessity {
			essential = append(essential, c)
		} else {
			variable = append(variable, c)
		}
	}
	sort.SliceStable(essential, func(i, j int) bool {
		if essential[i].NecessityScore != essential[j].NecessityScore {
			return essential[i].NecessityScore > essential[j].NecessityScore
		}
		return essential[i].Name < essential[j].Name
	})

	out := make(map[string]decimal.Decimal, len(in.Categories))
	remaining := in.Income
	for _, c := range essential {
		allocated := decimal.Min(defaultShare(in.Income, c), remaining)
		out[c.ID] = allocated
		remaining = remaining.Sub(allocated)
	}

	totalPercent := dZero
	for _, c := range variable {
		totalPercent = totalPercent.Add(c.DefaultPercent)
	}
	for _, c := range variable {
		if totalPercent.IsPositive() && remaining.IsPositive() {
			out[c.ID] = remaining.Mul(c.DefaultPercent).Div(totalPercent)
		} else {
			out[c.ID] = dZero
		}
	}
	if len(variable) > 0 || remaining.LessThanOrEqual(dZero) {
		return out
	}

	// Everything was essential and income is left over; park it in
	// savings so the plan stays fully allocated.
	for _, c := range essential {
		if isSavingsName(c.Name) {
			out[c.ID] = out[c.ID].Add(remaining)
			return out
		}
	}
	if len(essential) > 0 {
		last := essential[len(essential)-1]
		out[last.ID] = out[last.ID].Add(remaining)
	}
	return out
}

// envelope gives each category a fixed cap equal to its default share of
// income. There is no redistribution here; overall scaling happens in
// the engine's rebalance step like any other strategy.
func envelope(in Inputs) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(in.Categories))
	for _, c := range in.Categories {
		out[c.ID] = defaultShare(in.Income, c)
	}
	return out
}

// ScaleToIncome proportionally rebalances allocations so their sum
// equals income exactly. A zero total is returned unchanged.
func ScaleToIncome(allocations map[string]decimal.Decimal, income decimal.Decimal) map[string]decimal.Decimal {
	total := dZero
	for _, v := range allocations {
		total = total.Add(v)
	}
	if total.IsZero() {
		return allocations
	}

	ratio := income.Div(total)
	out := make(map[string]decimal.Decimal, len(allocations))
	for id, v := range allocations {
		out[id] = v.Mul(ratio)
	}
	return out
}
