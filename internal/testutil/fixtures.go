package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"budgetwise/internal/models"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates a user with a hashed password and unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	email := fmt.Sprintf("user%d@test.com", nextID())
	return CreateTestUserWithEmail(t, db, email)
}

// CreateTestUserWithEmail creates a user with the given email.
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:         email,
		Password:      string(hash),
		FullName:      fmt.Sprintf("Test User %d", nextID()),
		RiskTolerance: models.RiskToleranceModerate,
		IsActive:      true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestUserWithGoals creates a user with financial goals and income set.
func CreateTestUserWithGoals(t *testing.T, db *gorm.DB, income string, goals ...string) *models.User {
	t.Helper()

	user := CreateTestUser(t, db)
	user.MonthlyIncome = decimal.NullDecimal{Decimal: decimal.RequireFromString(income), Valid: true}
	user.FinancialGoals = goals
	if err := db.Save(user).Error; err != nil {
		t.Fatalf("failed to set goals on test user: %v", err)
	}
	return user
}

// CreateTestCategory creates a category with the given necessity score
// and default allocation percent.
func CreateTestCategory(t *testing.T, db *gorm.DB, name string, necessity int, defaultPercent string) *models.Category {
	t.Helper()

	category := &models.Category{
		ID:                       fmt.Sprintf("cat_test_%d", nextID()),
		Name:                     name,
		NecessityScore:           necessity,
		DefaultAllocationPercent: decimal.RequireFromString(defaultPercent),
		IsSystem:                 true,
	}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create test category: %v", err)
	}
	return category
}

// CreateTestRule attaches a merchant-pattern rule to a category.
func CreateTestRule(t *testing.T, db *gorm.DB, categoryID string, priority int, patterns ...string) *models.CategoryRule {
	t.Helper()

	rule := &models.CategoryRule{
		CategoryID:       categoryID,
		MerchantPatterns: patterns,
		MatchType:        models.MatchTypeSubstring,
		Priority:         priority,
	}
	if err := db.Create(rule).Error; err != nil {
		t.Fatalf("failed to create test rule: %v", err)
	}
	return rule
}

// CreateTestKeywordRule attaches a keyword rule to a category.
func CreateTestKeywordRule(t *testing.T, db *gorm.DB, categoryID string, priority int, keywords ...string) *models.CategoryRule {
	t.Helper()

	rule := &models.CategoryRule{
		CategoryID: categoryID,
		Keywords:   keywords,
		MatchType:  models.MatchTypeSubstring,
		Priority:   priority,
	}
	if err := db.Create(rule).Error; err != nil {
		t.Fatalf("failed to create test rule: %v", err)
	}
	return rule
}

// CreateTestPlan creates a budget plan with one allocation per given
// (categoryID, allocated) pair.
func CreateTestPlan(t *testing.T, db *gorm.DB, userID, month string, income string, allocations map[string]string) *models.BudgetPlan {
	t.Helper()

	plan := &models.BudgetPlan{
		UserID:      userID,
		Month:       month,
		TotalIncome: decimal.RequireFromString(income),
	}
	for categoryID, amount := range allocations {
		plan.Allocations = append(plan.Allocations, models.CategoryAllocation{
			CategoryID:      categoryID,
			AllocatedAmount: decimal.RequireFromString(amount),
			SpentAmount:     decimal.Zero,
		})
	}
	if err := db.Create(plan).Error; err != nil {
		t.Fatalf("failed to create test budget plan: %v", err)
	}
	return plan
}

// CreateTestExpense creates an expense dated now for the given category.
func CreateTestExpense(t *testing.T, db *gorm.DB, userID, categoryID string, amount string) *models.Expense {
	t.Helper()

	expense := &models.Expense{
		UserID:     userID,
		Amount:     decimal.RequireFromString(amount),
		CategoryID: &categoryID,
		Merchant:   fmt.Sprintf("merchant %d", nextID()),
		Date:       time.Now(),
	}
	if err := db.Create(expense).Error; err != nil {
		t.Fatalf("failed to create test expense: %v", err)
	}
	return expense
}

// CreateTestPreference sets a user's priority/limit overlay for a category.
func CreateTestPreference(t *testing.T, db *gorm.DB, userID, categoryID string, priority *int, limit *string) *models.UserCategoryPreference {
	t.Helper()

	pref := &models.UserCategoryPreference{
		UserID:         userID,
		CategoryID:     categoryID,
		CustomPriority: priority,
	}
	if limit != nil {
		pref.MonthlyLimit = decimal.NullDecimal{Decimal: decimal.RequireFromString(*limit), Valid: true}
	}
	if err := db.Create(pref).Error; err != nil {
		t.Fatalf("failed to create test preference: %v", err)
	}
	return pref
}
