package allocation

import (
	"testing"

	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func testCategories() []Category {
	return []Category{
		{ID: "housing", Name: "Housing", NecessityScore: 10, Priority: 10, DefaultPercent: d("30")},
		{ID: "groceries", Name: "Groceries", NecessityScore: 9, Priority: 9, DefaultPercent: d("12")},
		{ID: "utilities", Name: "Utilities", NecessityScore: 9, Priority: 9, DefaultPercent: d("6")},
		{ID: "savings", Name: "Savings", NecessityScore: 8, Priority: 8, DefaultPercent: d("15")},
		{ID: "debt", Name: "Debt Payments", NecessityScore: 8, Priority: 8, DefaultPercent: d("10")},
		{ID: "dining", Name: "Dining Out", NecessityScore: 4, Priority: 4, DefaultPercent: d("8")},
		{ID: "entertainment", Name: "Entertainment", NecessityScore: 3, Priority: 3, DefaultPercent: d("5")},
	}
}

func total(allocs map[string]decimal.Decimal) decimal.Decimal {
	sum := decimal.Zero
	for _, v := range allocs {
		sum = sum.Add(v)
	}
	return sum
}

func TestRule503020Buckets(t *testing.T) {
	income := d("5000")
	allocs := Compute(StrategyRule503020, Inputs{Income: income, Categories: testCategories()})

	// Savings and debt split the 20% bucket evenly.
	if got, want := allocs["savings"], d("500"); !got.Equal(want) {
		t.Errorf("savings = %s, want %s", got, want)
	}
	if got, want := allocs["debt"], d("500"); !got.Equal(want) {
		t.Errorf("debt = %s, want %s", got, want)
	}

	// Wants split the 30% bucket evenly.
	if got, want := allocs["dining"], d("750"); !got.Equal(want) {
		t.Errorf("dining = %s, want %s", got, want)
	}

	// Needs share the 50% bucket proportionally to necessity: housing
	// gets 10/28 of 2500.
	wantHousing := d("2500").Mul(d("10")).Div(d("28"))
	if got := allocs["housing"]; !got.Sub(wantHousing).Abs().LessThan(d("0.01")) {
		t.Errorf("housing = %s, want ~%s", got, wantHousing)
	}

	if got := total(allocs); !got.Sub(income).Abs().LessThan(d("0.01")) {
		t.Errorf("total = %s, want %s", got, income)
	}
}

func TestRule702010Buckets(t *testing.T) {
	income := d("4000")
	allocs := Compute(StrategyRule702010, Inputs{Income: income, Categories: testCategories()})

	if got, want := allocs["savings"], d("800"); !got.Equal(want) {
		t.Errorf("savings = %s, want %s", got, want)
	}
	if got, want := allocs["debt"], d("400"); !got.Equal(want) {
		t.Errorf("debt = %s, want %s", got, want)
	}
	// Housing draws 30% of the 70% living bucket.
	if got, want := allocs["housing"], d("840"); !got.Equal(want) {
		t.Errorf("housing = %s, want %s", got, want)
	}
}

func TestAggressiveSave(t *testing.T) {
	income := d("5000")
	allocs := Compute(StrategyAggressiveSave, Inputs{Income: income, Categories: testCategories()})

	if got, want := allocs["savings"], d("2000"); !got.Equal(want) {
		t.Errorf("savings = %s, want %s", got, want)
	}
	// Non-savings categories split the remaining 60% by necessity:
	// housing gets 10/43 of 3000.
	wantHousing := d("3000").Mul(d("10")).Div(d("43"))
	if got := allocs["housing"]; !got.Sub(wantHousing).Abs().LessThan(d("0.01")) {
		t.Errorf("housing = %s, want ~%s", got, wantHousing)
	}
	if got := total(allocs); !got.Sub(income).Abs().LessThan(d("0.01")) {
		t.Errorf("total = %s, want %s", got, income)
	}
}

func TestDebtPayoff(t *testing.T) {
	income := d("5000")
	allocs := Compute(StrategyDebtPayoff, Inputs{Income: income, Categories: testCategories()})

	if got, want := allocs["debt"], d("1500"); !got.Equal(want) {
		t.Errorf("debt = %s, want %s", got, want)
	}
	// Essentials split 60% by necessity; savings counts as essential
	// here (necessity 8). Housing gets 10/36 of 3000.
	wantHousing := d("3000").Mul(d("10")).Div(d("36"))
	if got := allocs["housing"]; !got.Sub(wantHousing).Abs().LessThan(d("0.01")) {
		t.Errorf("housing = %s, want ~%s", got, wantHousing)
	}
	// Discretionary categories split 10% by necessity: entertainment
	// gets 3/7 of 500.
	wantEnt := d("500").Mul(d("3")).Div(d("7"))
	if got := allocs["entertainment"]; !got.Sub(wantEnt).Abs().LessThan(d("0.01")) {
		t.Errorf("entertainment = %s, want ~%s", got, wantEnt)
	}
}

func TestBalancedBlendsHistory(t *testing.T) {
	income := d("5100")
	cats := []Category{
		{ID: "a", Name: "Housing", NecessityScore: 10, Priority: 10, DefaultPercent: d("30")},
		{ID: "b", Name: "Dining Out", NecessityScore: 4, Priority: 7, DefaultPercent: d("8")},
	}
	allocs := Compute(StrategyBalanced, Inputs{
		Income:             income,
		Categories:         cats,
		HistoricalAverages: map[string]decimal.Decimal{"b": d("900")},
	})

	// Priority shares: 10/17 and 7/17 of income. Dining blends its share
	// with the historical average.
	wantA := income.Mul(d("10")).Div(d("17"))
	wantB := income.Mul(d("7")).Div(d("17")).Add(d("900")).Div(d("2"))
	if got := allocs["a"]; !got.Sub(wantA).Abs().LessThan(d("0.01")) {
		t.Errorf("a = %s, want ~%s", got, wantA)
	}
	if got := allocs["b"]; !got.Sub(wantB).Abs().LessThan(d("0.01")) {
		t.Errorf("b = %s, want ~%s", got, wantB)
	}
}

func TestZeroBasedExhaustsIncome(t *testing.T) {
	income := d("2000")
	allocs := Compute(StrategyZeroBased, Inputs{Income: income, Categories: testCategories()})

	if got := total(allocs); !got.Equal(income) {
		t.Errorf("total = %s, want %s", got, income)
	}
	for id, v := range allocs {
		if v.IsNegative() {
			t.Errorf("%s allocated negative amount %s", id, v)
		}
	}
}

func TestZeroBasedSurplusGoesToSavings(t *testing.T) {
	// Default percents sum to 40%, leaving a surplus that must land in
	// the savings category.
	income := d("1000")
	cats := []Category{
		{ID: "housing", Name: "Housing", NecessityScore: 10, DefaultPercent: d("25")},
		{ID: "savings", Name: "Savings", NecessityScore: 8, DefaultPercent: d("15")},
	}
	allocs := Compute(StrategyZeroBased, Inputs{Income: income, Categories: cats})

	if got, want := allocs["housing"], d("250"); !got.Equal(want) {
		t.Errorf("housing = %s, want %s", got, want)
	}
	if got, want := allocs["savings"], d("750"); !got.Equal(want) {
		t.Errorf("savings = %s, want %s", got, want)
	}
}

func TestEnvelopeFixedCaps(t *testing.T) {
	income := d("1000")
	cats := []Category{
		{ID: "a", Name: "Housing", NecessityScore: 10, DefaultPercent: d("30")},
		{ID: "b", Name: "Groceries", NecessityScore: 9, DefaultPercent: d("12")},
	}
	allocs := Compute(StrategyEnvelope, Inputs{Income: income, Categories: cats})

	if got, want := allocs["a"], d("300"); !got.Equal(want) {
		t.Errorf("a = %s, want %s", got, want)
	}
	if got, want := allocs["b"], d("120"); !got.Equal(want) {
		t.Errorf("b = %s, want %s", got, want)
	}
}

func TestScaleToIncome(t *testing.T) {
	allocs := map[string]decimal.Decimal{
		"a": d("3000"),
		"b": d("3000"),
	}
	scaled := ScaleToIncome(allocs, d("5000"))

	if got, want := scaled["a"], d("2500"); !got.Equal(want) {
		t.Errorf("a = %s, want %s", got, want)
	}
	if got := total(scaled); !got.Equal(d("5000")) {
		t.Errorf("total = %s, want 5000", got)
	}
}

func TestScaleToIncomeZeroTotal(t *testing.T) {
	allocs := map[string]decimal.Decimal{"a": decimal.Zero}
	scaled := ScaleToIncome(allocs, d("5000"))
	if !scaled["a"].IsZero() {
		t.Errorf("expected zero allocation to stay zero, got %s", scaled["a"])
	}
}

func TestAllStrategiesCoverEveryCategory(t *testing.T) {
	cats := testCategories()
	in := Inputs{Income: d("5000"), Categories: cats}
	strategies := []Strategy{
		StrategyRule503020, StrategyRule702010, StrategyAggressiveSave,
		StrategyDebtPayoff, StrategyBalanced, StrategyZeroBased, StrategyEnvelope,
	}
	for _, s := range strategies {
		allocs := Compute(s, in)
		if len(allocs) != len(cats) {
			t.Errorf("%s produced %d allocations, want %d", s, len(allocs), len(cats))
		}
		for _, c := range cats {
			if _, ok := allocs[c.ID]; !ok {
				t.Errorf("%s missing allocation for %s", s, c.ID)
			}
		}
	}
}
