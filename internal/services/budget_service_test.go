package services

import (
	"strings"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"budgetwise/internal/models"
	"budgetwise/internal/testutil"
)

func setupBudget(t *testing.T) (*gorm.DB, BudgetServicer, CategoryServicer, func()) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	categories := NewCategoryService(db)
	if _, err := categories.Reseed(); err != nil {
		t.Fatalf("failed to seed catalog: %v", err)
	}
	ranking := NewRankingService(db, categories)
	budgets := NewBudgetService(db, categories, ranking)
	return db, budgets, categories, func() { testutil.TeardownTestDB(t, db) }
}

func planTotal(plan *models.BudgetPlan) decimal.Decimal {
	sum := decimal.Zero
	for _, a := range plan.Allocations {
		sum = sum.Add(a.AllocatedAmount)
	}
	return sum
}

func allocationFor(t *testing.T, plan *models.BudgetPlan, categoryID string) *models.CategoryAllocation {
	t.Helper()
	for i := range plan.Allocations {
		if plan.Allocations[i].CategoryID == categoryID {
			return &plan.Allocations[i]
		}
	}
	t.Fatalf("no allocation for %s in plan", categoryID)
	return nil
}

func TestCreateBudgetEmergencyFundScenario(t *testing.T) {
	db, budgets, categories, teardown := setupBudget(t)
	defer teardown()

	income := decimal.RequireFromString("5000")
	epsilon := decimal.RequireFromString("0.15")

	// Per-call goals drive the strategy even when the stored profile
	// goals say otherwise.
	saver := testutil.CreateTestUserWithGoals(t, db, "5000", "just vibes")
	saverPlan, strategy, err := budgets.CreateBudget(saver.ID, "2026-09", income, []string{"Save 20% for emergency fund"}, false)
	testutil.AssertNoError(t, err)
	if strategy != "aggressive_save" {
		t.Errorf("strategy = %q, want aggressive_save", strategy)
	}

	// Without per-call goals the stored profile goals apply.
	defaulter := testutil.CreateTestUserWithGoals(t, db, "5000", "just vibes")
	defaultPlan, strategy, err := budgets.CreateBudget(defaulter.ID, "2026-09", income, nil, false)
	testutil.AssertNoError(t, err)
	if strategy != "50/30/20" {
		t.Errorf("strategy = %q, want 50/30/20", strategy)
	}

	savings, err := categories.GetCategoryByName("Savings")
	testutil.AssertNoError(t, err)

	saverSavings := allocationFor(t, saverPlan, savings.ID).AllocatedAmount
	defaultSavings := allocationFor(t, defaultPlan, savings.ID).AllocatedAmount
	if !saverSavings.GreaterThan(defaultSavings) {
		t.Errorf("emergency-fund Savings %s should exceed 50/30/20 Savings %s", saverSavings, defaultSavings)
	}

	if got := planTotal(saverPlan); got.Sub(income).Abs().GreaterThan(epsilon) {
		t.Errorf("total allocated = %s, want %s", got, income)
	}
}

func TestCreateBudgetNeverExceedsIncome(t *testing.T) {
	db, budgets, _, teardown := setupBudget(t)
	defer teardown()

	income := decimal.RequireFromString("3200")
	user := testutil.CreateTestUserWithGoals(t, db, "3200", "pay off my credit card")

	plan, strategy, err := budgets.CreateBudget(user.ID, "2026-09", income, nil, false)
	testutil.AssertNoError(t, err)
	if strategy != "debt_payoff" {
		t.Errorf("strategy = %q, want debt_payoff", strategy)
	}

	epsilon := decimal.RequireFromString("0.15")
	if got := planTotal(plan); got.GreaterThan(income.Add(epsilon)) {
		t.Errorf("total allocated %s exceeds income %s", got, income)
	}
}

func TestCreateBudgetBalancedWhenNoGoals(t *testing.T) {
	db, budgets, _, teardown := setupBudget(t)
	defer teardown()

	user := testutil.CreateTestUser(t, db)
	_, strategy, err := budgets.CreateBudget(user.ID, "2026-09", decimal.RequireFromString("4000"), nil, false)
	testutil.AssertNoError(t, err)
	if strategy != "balanced" {
		t.Errorf("strategy = %q, want balanced", strategy)
	}
}

func TestCreateBudgetValidation(t *testing.T) {
	db, budgets, _, teardown := setupBudget(t)
	defer teardown()

	user := testutil.CreateTestUser(t, db)

	_, _, err := budgets.CreateBudget(user.ID, "2026-09", decimal.Zero, nil, false)
	testutil.AssertAppError(t, err, "VALIDATION_ERROR")

	_, _, err = budgets.CreateBudget(user.ID, "September", decimal.RequireFromString("5000"), nil, false)
	testutil.AssertAppError(t, err, "VALIDATION_ERROR")

	_, _, err = budgets.CreateBudget("no-such-user", "2026-09", decimal.RequireFromString("5000"), nil, false)
	testutil.AssertAppError(t, err, "USER_NOT_FOUND")
}

func TestCreateBudgetDuplicateMonth(t *testing.T) {
	db, budgets, _, teardown := setupBudget(t)
	defer teardown()

	user := testutil.CreateTestUser(t, db)
	income := decimal.RequireFromString("5000")

	first, _, err := budgets.CreateBudget(user.ID, "2026-09", income, nil, false)
	testutil.AssertNoError(t, err)

	_, _, err = budgets.CreateBudget(user.ID, "2026-09", income, nil, false)
	testutil.AssertAppError(t, err, "DUPLICATE_BUDGET")

	// recreate=true replaces the plan and its allocations.
	replacement, _, err := budgets.CreateBudget(user.ID, "2026-09", decimal.RequireFromString("6000"), nil, true)
	testutil.AssertNoError(t, err)
	if replacement.ID == first.ID {
		t.Error("recreate should produce a new plan")
	}

	var count int64
	db.Model(&models.BudgetPlan{}).Where("user_id = ? AND month = ?", user.ID, "2026-09").Count(&count)
	if count != 1 {
		t.Errorf("expected exactly one plan for the month, got %d", count)
	}
}

func TestCreateBudgetAppliesMonthlyLimits(t *testing.T) {
	db, budgets, categories, teardown := setupBudget(t)
	defer teardown()

	user := testutil.CreateTestUser(t, db)
	dining, err := categories.GetCategoryByName("Dining Out")
	testutil.AssertNoError(t, err)

	limit := "50"
	testutil.CreateTestPreference(t, db, user.ID, dining.ID, nil, &limit)

	plan, _, err := budgets.CreateBudget(user.ID, "2026-09", decimal.RequireFromString("5000"), nil, false)
	testutil.AssertNoError(t, err)

	got := allocationFor(t, plan, dining.ID).AllocatedAmount
	if got.GreaterThan(decimal.RequireFromString("50")) {
		t.Errorf("Dining Out allocation %s exceeds the monthly limit 50", got)
	}
}

func TestCheckPurchaseFits(t *testing.T) {
	db, budgets, _, teardown := setupBudget(t)
	defer teardown()

	user := testutil.CreateTestUser(t, db)
	testutil.CreateTestPlan(t, db, user.ID, "2026-09", "5000", map[string]string{
		"cat_dining":    "400",
		"cat_groceries": "600",
	})

	result, err := budgets.CheckPurchase(user.ID, "2026-09", "cat_dining", decimal.RequireFromString("100"))
	testutil.AssertNoError(t, err)

	if !result.FitsBudget {
		t.Error("purchase should fit")
	}
	if !result.RemainingInCategory.Equal(decimal.RequireFromString("400")) {
		t.Errorf("remaining = %s, want 400", result.RemainingInCategory)
	}
	if result.PercentageOfCategory != 25 {
		t.Errorf("percentage = %f, want 25", result.PercentageOfCategory)
	}
	if result.Warning != "" {
		t.Errorf("unexpected warning: %q", result.Warning)
	}

	// Pure read: a second call without an intervening spend matches.
	again, err := budgets.CheckPurchase(user.ID, "2026-09", "cat_dining", decimal.RequireFromString("100"))
	testutil.AssertNoError(t, err)
	if again.FitsBudget != result.FitsBudget ||
		!again.RemainingInCategory.Equal(result.RemainingInCategory) ||
		again.PercentageOfCategory != result.PercentageOfCategory {
		t.Error("check_purchase should be a pure function of plan state")
	}
}

func TestCheckPurchaseOverage(t *testing.T) {
	db, budgets, _, teardown := setupBudget(t)
	defer teardown()

	user := testutil.CreateTestUser(t, db)
	testutil.CreateTestPlan(t, db, user.ID, "2026-09", "5000", map[string]string{
		"cat_dining":        "100",
		"cat_groceries":     "600",
		"cat_entertainment": "200",
	})

	result, err := budgets.CheckPurchase(user.ID, "2026-09", "cat_dining", decimal.RequireFromString("2000"))
	testutil.AssertNoError(t, err)

	if result.FitsBudget {
		t.Error("purchase should not fit")
	}
	if !strings.Contains(result.Warning, "1900") {
		t.Errorf("warning should state the 1900 overage, got %q", result.Warning)
	}
	if len(result.AlternativeOptions) == 0 {
		t.Fatal("expected alternative options")
	}
	last := result.AlternativeOptions[len(result.AlternativeOptions)-1]
	if last != "wait until next month" {
		t.Errorf("last option = %q, want the wait fallback", last)
	}
}

func TestCheckPurchaseMissingPlan(t *testing.T) {
	_, budgets, _, teardown := setupBudget(t)
	defer teardown()

	_, err := budgets.CheckPurchase("user-1", "2026-09", "cat_dining", decimal.RequireFromString("10"))
	testutil.AssertAppError(t, err, "BUDGET_NOT_FOUND")
}

func TestUpdateSpentAmountAccumulates(t *testing.T) {
	db, budgets, _, teardown := setupBudget(t)
	defer teardown()

	user := testutil.CreateTestUser(t, db)
	testutil.CreateTestPlan(t, db, user.ID, "2026-09", "5000", map[string]string{
		"cat_dining": "400",
	})

	_, err := budgets.UpdateSpentAmount(user.ID, "2026-09", "cat_dining", decimal.RequireFromString("50"))
	testutil.AssertNoError(t, err)
	alloc, err := budgets.UpdateSpentAmount(user.ID, "2026-09", "cat_dining", decimal.RequireFromString("30"))
	testutil.AssertNoError(t, err)

	if !alloc.SpentAmount.Equal(decimal.RequireFromString("80")) {
		t.Errorf("spent = %s, want 80", alloc.SpentAmount)
	}
	if !alloc.RemainingAmount.Equal(decimal.RequireFromString("320")) {
		t.Errorf("remaining = %s, want 320", alloc.RemainingAmount)
	}

	_, err = budgets.UpdateSpentAmount(user.ID, "2026-09", "cat_missing", decimal.RequireFromString("10"))
	testutil.AssertAppError(t, err, "ALLOCATION_NOT_FOUND")

	_, err = budgets.UpdateSpentAmount(user.ID, "2026-09", "cat_dining", decimal.RequireFromString("-5"))
	testutil.AssertAppError(t, err, "VALIDATION_ERROR")
}

func TestUpdateSpentAmountConcurrent(t *testing.T) {
	db, budgets, _, teardown := setupBudget(t)
	defer teardown()

	user := testutil.CreateTestUser(t, db)
	testutil.CreateTestPlan(t, db, user.ID, "2026-09", "5000", map[string]string{
		"cat_dining": "400",
	})

	const workers = 10
	amount := decimal.RequireFromString("10")

	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := budgets.UpdateSpentAmount(user.ID, "2026-09", "cat_dining", amount); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("concurrent update failed: %v", err)
	}

	// Every increment lands: no lost updates.
	var alloc models.CategoryAllocation
	if err := db.Where("category_id = ?", "cat_dining").First(&alloc).Error; err != nil {
		t.Fatalf("failed to read allocation: %v", err)
	}
	if !alloc.SpentAmount.Equal(decimal.RequireFromString("100")) {
		t.Errorf("spent = %s, want 100", alloc.SpentAmount)
	}
}

func TestGetBudgetSummary(t *testing.T) {
	db, budgets, _, teardown := setupBudget(t)
	defer teardown()

	user := testutil.CreateTestUser(t, db)
	testutil.CreateTestPlan(t, db, user.ID, "2026-09", "5000", map[string]string{
		"cat_dining":    "100",
		"cat_groceries": "600",
	})
	_, err := budgets.UpdateSpentAmount(user.ID, "2026-09", "cat_dining", decimal.RequireFromString("150"))
	testutil.AssertNoError(t, err)

	summary, err := budgets.GetBudgetSummary(user.ID, "2026-09")
	testutil.AssertNoError(t, err)

	if !summary.TotalAllocated.Equal(decimal.RequireFromString("700")) {
		t.Errorf("total allocated = %s, want 700", summary.TotalAllocated)
	}
	if !summary.TotalSpent.Equal(decimal.RequireFromString("150")) {
		t.Errorf("total spent = %s, want 150", summary.TotalSpent)
	}
	if len(summary.OverspentCategories) != 1 || summary.OverspentCategories[0] != "Dining Out" {
		t.Errorf("overspent = %v, want [Dining Out]", summary.OverspentCategories)
	}
}

func TestSuggestReallocation(t *testing.T) {
	db, budgets, _, teardown := setupBudget(t)
	defer teardown()

	user := testutil.CreateTestUser(t, db)
	testutil.CreateTestPlan(t, db, user.ID, "2026-09", "5000", map[string]string{
		"cat_dining":    "100",
		"cat_groceries": "600",
	})
	_, err := budgets.UpdateSpentAmount(user.ID, "2026-09", "cat_dining", decimal.RequireFromString("180"))
	testutil.AssertNoError(t, err)

	suggestions, err := budgets.SuggestReallocation(user.ID, "2026-09")
	testutil.AssertNoError(t, err)

	if len(suggestions) != 1 {
		t.Fatalf("expected 1 suggestion, got %d", len(suggestions))
	}
	s := suggestions[0]
	if s.FromCategoryName != "Groceries" || s.ToCategoryName != "Dining Out" {
		t.Errorf("unexpected pairing: %+v", s)
	}
	// Transfer covers the 80 overage out of the 600 surplus.
	if !s.Amount.Equal(decimal.RequireFromString("80")) {
		t.Errorf("amount = %s, want 80", s.Amount)
	}

	// Advisory only: the plan is unchanged.
	summary, err := budgets.GetBudgetSummary(user.ID, "2026-09")
	testutil.AssertNoError(t, err)
	if !summary.TotalAllocated.Equal(decimal.RequireFromString("700")) {
		t.Error("suggestions must not mutate the plan")
	}
}
