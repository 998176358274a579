package services

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"budgetwise/internal/allocation"
	apperrors "budgetwise/internal/errors"
	"budgetwise/internal/models"
)

// History window for per-category spending averages.
const (
	historyMonths  = 3
	historyRecords = 200
)

// Categories whose remaining share exceeds this fraction of their
// allocation count as having surplus worth reallocating.
var surplusThreshold = decimal.RequireFromString("0.5")

// budgetService generates monthly budget plans and validates purchases
// against them.
type budgetService struct {
	db         *gorm.DB
	categories CategoryServicer
	ranking    RankingServicer
}

// NewBudgetService creates a new BudgetServicer.
func NewBudgetService(db *gorm.DB, categories CategoryServicer, ranking RankingServicer) BudgetServicer {
	return &budgetService{db: db, categories: categories, ranking: ranking}
}

func parseMonth(month string) error {
	if _, err := time.Parse("2006-01", month); err != nil {
		return apperrors.WithMessage(apperrors.ErrValidation, "month must be in YYYY-MM format")
	}
	return nil
}

// CreateBudget computes and persists the budget plan for one month. The
// strategy is selected from the goals given for this call, falling back
// to the user's stored financial goals when none are given, adjusted by
// goal multipliers and monthly limit caps, then rebalanced so the total
// never exceeds income. An existing plan for the month is an error
// unless recreate is set, in which case it is replaced atomically.
// Returns the plan and the name of the strategy used.
func (s *budgetService) CreateBudget(userID, month string, income decimal.Decimal, goals []string, recreate bool) (*models.BudgetPlan, string, error) {
	if income.LessThanOrEqual(decimal.Zero) {
		return nil, "", apperrors.WithMessage(apperrors.ErrValidation, "income must be positive")
	}
	if err := parseMonth(month); err != nil {
		return nil, "", err
	}

	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", apperrors.ErrUserNotFound
		}
		return nil, "", apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if len(goals) == 0 {
		goals = user.FinancialGoals
	}

	order, err := s.ranking.GetPriorityOrder(userID)
	if err != nil {
		return nil, "", err
	}
	catalog, err := s.categories.ListCategories()
	if err != nil {
		return nil, "", err
	}
	percents := make(map[string]decimal.Decimal, len(catalog))
	names := make(map[string]string, len(catalog))
	for _, c := range catalog {
		percents[c.ID] = c.DefaultAllocationPercent
		names[c.ID] = c.Name
	}

	cats := make([]allocation.Category, 0, len(order))
	for _, e := range order {
		cats = append(cats, allocation.Category{
			ID:             e.CategoryID,
			Name:           e.CategoryName,
			NecessityScore: e.NecessityScore,
			Priority:       e.Priority,
			DefaultPercent: percents[e.CategoryID],
		})
	}

	history, err := s.historicalAverages(userID)
	if err != nil {
		return nil, "", err
	}

	strategy := allocation.Select(goals)
	amounts := allocation.Compute(strategy, allocation.Inputs{
		Income:             income,
		Categories:         cats,
		HistoricalAverages: history,
	})
	amounts = allocation.Apply(amounts, names, allocation.Multipliers(goals))

	// Monthly limit caps clamp without redistributing the surplus.
	prefs, err := s.categories.GetUserPreferences(userID)
	if err != nil {
		return nil, "", err
	}
	for _, p := range prefs {
		if !p.MonthlyLimit.Valid {
			continue
		}
		if v, ok := amounts[p.CategoryID]; ok && v.GreaterThan(p.MonthlyLimit.Decimal) {
			amounts[p.CategoryID] = p.MonthlyLimit.Decimal
		}
	}

	total := decimal.Zero
	for _, v := range amounts {
		total = total.Add(v)
	}
	if total.GreaterThan(income) {
		amounts = allocation.ScaleToIncome(amounts, income)
	}

	plan := &models.BudgetPlan{
		UserID:      userID,
		Month:       month,
		TotalIncome: income,
	}
	for _, c := range cats {
		plan.Allocations = append(plan.Allocations, models.CategoryAllocation{
			CategoryID:      c.ID,
			AllocatedAmount: amounts[c.ID].Round(2),
			SpentAmount:     decimal.Zero,
		})
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		var existing models.BudgetPlan
		ferr := tx.Where("user_id = ? AND month = ?", userID, month).First(&existing).Error
		switch {
		case ferr == nil:
			if !recreate {
				return apperrors.ErrDuplicateBudget
			}
			if derr := tx.Where("budget_id = ?", existing.ID).Unscoped().Delete(&models.CategoryAllocation{}).Error; derr != nil {
				return derr
			}
			if derr := tx.Unscoped().Delete(&existing).Error; derr != nil {
				return derr
			}
		case !errors.Is(ferr, gorm.ErrRecordNotFound):
			return ferr
		}
		return tx.Create(plan).Error
	})
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			return nil, "", appErr
		}
		return nil, "", apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	for i := range plan.Allocations {
		plan.Allocations[i].RemainingAmount = plan.Allocations[i].AllocatedAmount
	}
	return plan, string(strategy), nil
}

// historicalAverages computes per-category monthly spending averages
// over a bounded window of recent expenses. An empty history is valid.
func (s *budgetService) historicalAverages(userID string) (map[string]decimal.Decimal, error) {
	since := time.Now().AddDate(0, -historyMonths, 0)

	var expenses []models.Expense
	err := s.db.Where("user_id = ? AND date >= ?", userID, since).
		Order("date desc").
		Limit(historyRecords).
		Find(&expenses).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	totals := make(map[string]decimal.Decimal)
	for _, e := range expenses {
		if e.CategoryID == nil {
			continue
		}
		totals[*e.CategoryID] = totals[*e.CategoryID].Add(e.Amount)
	}

	months := decimal.NewFromInt(historyMonths)
	averages := make(map[string]decimal.Decimal, len(totals))
	for id, t := range totals {
		averages[id] = t.Div(months)
	}
	return averages, nil
}

func (s *budgetService) getPlan(userID, month string) (*models.BudgetPlan, error) {
	if err := parseMonth(month); err != nil {
		return nil, err
	}
	var plan models.BudgetPlan
	err := s.db.Preload("Allocations").Where("user_id = ? AND month = ?", userID, month).First(&plan).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrBudgetNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &plan, nil
}

// GetBudget returns the plan for one month with all allocations.
func (s *budgetService) GetBudget(userID, month string) (*models.BudgetPlan, error) {
	return s.getPlan(userID, month)
}

// CheckPurchase answers whether an amount fits the remaining allocation
// for a category this month. It never mutates state; on a non-fit it
// names up to three surplus categories as reallocation candidates.
func (s *budgetService) CheckPurchase(userID, month, categoryID string, amount decimal.Decimal) (*CheckPurchaseResult, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, apperrors.WithMessage(apperrors.ErrValidation, "amount must be positive")
	}

	plan, err := s.getPlan(userID, month)
	if err != nil {
		return nil, err
	}

	var target *models.CategoryAllocation
	for i := range plan.Allocations {
		if plan.Allocations[i].CategoryID == categoryID {
			target = &plan.Allocations[i]
			break
		}
	}
	if target == nil {
		return nil, apperrors.ErrAllocationNotFound
	}

	name := categoryID
	if cat, cerr := s.categories.GetCategory(categoryID); cerr == nil {
		name = cat.Name
	}

	remaining := target.AllocatedAmount.Sub(target.SpentAmount)
	result := &CheckPurchaseResult{
		FitsBudget:          amount.LessThanOrEqual(remaining),
		CategoryID:          categoryID,
		CategoryName:        name,
		RemainingInCategory: remaining,
		AlternativeOptions:  []string{},
	}
	if target.AllocatedAmount.IsPositive() {
		pct, _ := amount.Div(target.AllocatedAmount).Mul(decimal.NewFromInt(100)).Float64()
		result.PercentageOfCategory = pct
	}

	if !result.FitsBudget {
		overage := amount.Sub(remaining)
		result.Warning = fmt.Sprintf("This purchase exceeds your %s budget by $%s", name, overage.Round(2))
		result.AlternativeOptions = append(result.AlternativeOptions, s.surplusCandidates(plan, categoryID)...)
		result.AlternativeOptions = append(result.AlternativeOptions, "wait until next month")
	}
	return result, nil
}

// surplusCandidates names up to three categories in the plan whose
// remaining budget exceeds half their allocation, largest surplus first.
func (s *budgetService) surplusCandidates(plan *models.BudgetPlan, excludeCategoryID string) []string {
	type candidate struct {
		name      string
		remaining decimal.Decimal
	}
	var candidates []candidate
	for _, a := range plan.Allocations {
		if a.CategoryID == excludeCategoryID {
			continue
		}
		remaining := a.AllocatedAmount.Sub(a.SpentAmount)
		if remaining.GreaterThan(a.AllocatedAmount.Mul(surplusThreshold)) {
			name := a.CategoryID
			if cat, err := s.categories.GetCategory(a.CategoryID); err == nil {
				name = cat.Name
			}
			candidates = append(candidates, candidate{name: name, remaining: remaining})
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].remaining.GreaterThan(candidates[j].remaining)
	})

	out := make([]string, 0, 3)
	for _, c := range candidates {
		if len(out) == 3 {
			break
		}
		out = append(out, c.name)
	}
	return out
}

// UpdateSpentAmount adds to a category's spent amount for the month.
// Spend is append-only; corrections are a separate flow. The increment
// is a single atomic UPDATE so concurrent spends never lose writes.
func (s *budgetService) UpdateSpentAmount(userID, month, categoryID string, amount decimal.Decimal) (*models.CategoryAllocation, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, apperrors.WithMessage(apperrors.ErrValidation, "amount must be positive")
	}
	if err := parseMonth(month); err != nil {
		return nil, err
	}

	var updated models.CategoryAllocation
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var plan models.BudgetPlan
		if err := tx.Where("user_id = ? AND month = ?", userID, month).First(&plan).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrBudgetNotFound
			}
			return err
		}

		res := tx.Model(&models.CategoryAllocation{}).
			Where("budget_id = ? AND category_id = ?", plan.ID, categoryID).
			Update("spent_amount", gorm.Expr("spent_amount + ?", amount))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperrors.ErrAllocationNotFound
		}

		return tx.Where("budget_id = ? AND category_id = ?", plan.ID, categoryID).
			First(&updated).Error
	})
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &updated, nil
}

// GetBudgetSummary totals a month's plan and flags overspent categories.
func (s *budgetService) GetBudgetSummary(userID, month string) (*BudgetSummary, error) {
	plan, err := s.getPlan(userID, month)
	if err != nil {
		return nil, err
	}

	summary := &BudgetSummary{
		BudgetID:            plan.ID,
		Month:               plan.Month,
		TotalIncome:         plan.TotalIncome,
		OverspentCategories: []string{},
		Categories:          make([]AllocationStatus, 0, len(plan.Allocations)),
	}
	for _, a := range plan.Allocations {
		name := a.CategoryID
		if cat, cerr := s.categories.GetCategory(a.CategoryID); cerr == nil {
			name = cat.Name
		}
		remaining := a.AllocatedAmount.Sub(a.SpentAmount)
		status := AllocationStatus{
			CategoryID:   a.CategoryID,
			CategoryName: name,
			Allocated:    a.AllocatedAmount,
			Spent:        a.SpentAmount,
			Remaining:    remaining,
			OverBudget:   a.SpentAmount.GreaterThan(a.AllocatedAmount),
		}
		if a.AllocatedAmount.IsPositive() {
			pct, _ := a.SpentAmount.Div(a.AllocatedAmount).Mul(decimal.NewFromInt(100)).Float64()
			status.PercentUsed = pct
		}
		if status.OverBudget {
			summary.OverspentCategories = append(summary.OverspentCategories, name)
		}
		summary.TotalAllocated = summary.TotalAllocated.Add(a.AllocatedAmount)
		summary.TotalSpent = summary.TotalSpent.Add(a.SpentAmount)
		summary.Categories = append(summary.Categories, status)
	}
	summary.TotalRemaining = summary.TotalAllocated.Sub(summary.TotalSpent)
	return summary, nil
}

// SuggestReallocation pairs each overspent category with the plan's
// largest-surplus category. Purely advisory; nothing is mutated.
func (s *budgetService) SuggestReallocation(userID, month string) ([]ReallocationSuggestion, error) {
	plan, err := s.getPlan(userID, month)
	if err != nil {
		return nil, err
	}

	var donorID string
	var donorName string
	donorSurplus := decimal.Zero
	for _, a := range plan.Allocations {
		remaining := a.AllocatedAmount.Sub(a.SpentAmount)
		if remaining.GreaterThan(donorSurplus) {
			donorSurplus = remaining
			donorID = a.CategoryID
			donorName = a.CategoryID
			if cat, cerr := s.categories.GetCategory(a.CategoryID); cerr == nil {
				donorName = cat.Name
			}
		}
	}

	suggestions := []ReallocationSuggestion{}
	if donorID == "" {
		return suggestions, nil
	}

	for _, a := range plan.Allocations {
		if a.CategoryID == donorID || a.SpentAmount.LessThanOrEqual(a.AllocatedAmount) {
			continue
		}
		overage := a.SpentAmount.Sub(a.AllocatedAmount)
		name := a.CategoryID
		if cat, cerr := s.categories.GetCategory(a.CategoryID); cerr == nil {
			name = cat.Name
		}
		suggestions = append(suggestions, ReallocationSuggestion{
			FromCategoryID:   donorID,
			FromCategoryName: donorName,
			ToCategoryID:     a.CategoryID,
			ToCategoryName:   name,
			Amount:           decimal.Min(overage, donorSurplus).Round(2),
			Reason:           fmt.Sprintf("%s is over budget by $%s and %s has surplus", name, overage.Round(2), donorName),
		})
	}
	return suggestions, nil
}
