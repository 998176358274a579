package services

import (
	"time"

	"github.com/shopspring/decimal"

	"budgetwise/internal/models"
	"budgetwise/internal/pagination"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(email, password, fullName string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
	AttemptLogin(email, password string) (*models.User, error)
	UpdateProfile(userID string, income *decimal.Decimal, goals []string, risk *models.RiskTolerance) (*models.User, error)
}

// CategoryServicer defines the contract for the shared category catalog
// and per-user preference overlays.
type CategoryServicer interface {
	ListCategories() ([]models.Category, error)
	GetCategory(id string) (*models.Category, error)
	GetCategoryByName(name string) (*models.Category, error)
	UpsertPreference(userID, categoryID string, customPriority *int, monthlyLimit *decimal.Decimal) (*models.UserCategoryPreference, error)
	GetUserPreferences(userID string) ([]models.UserCategoryPreference, error)
	Reseed() (int, error)
}

// CategoryScore is one candidate in a classification result.
type CategoryScore struct {
	CategoryID   string  `json:"category_id"`
	CategoryName string  `json:"category_name"`
	Score        float64 `json:"score"`
}

// RankingResult is the outcome of classifying one expense description.
type RankingResult struct {
	CategoryID   string          `json:"category_id"`
	CategoryName string          `json:"category_name"`
	Confidence   float64         `json:"confidence"`
	Source       string          `json:"source"` // "override", "rules", or "fallback"
	Alternatives []CategoryScore `json:"alternatives,omitempty"`
}

// PriorityEntry pairs a category with its resolved budgeting priority.
type PriorityEntry struct {
	CategoryID     string `json:"category_id"`
	CategoryName   string `json:"category_name"`
	Priority       int    `json:"priority"`
	NecessityScore int    `json:"necessity_score"`
	Customized     bool   `json:"customized"`
}

// RankingServicer defines the contract for expense classification and
// category priority ranking.
type RankingServicer interface {
	Classify(userID, merchant, description string) (*RankingResult, error)
	HandleCorrection(userID, merchant, categoryID string) (*models.UserMerchantOverride, error)
	GetPriorityOrder(userID string) ([]PriorityEntry, error)
}

// CheckPurchaseResult answers "can I afford this?" against the active
// month's allocation for the given category.
type CheckPurchaseResult struct {
	FitsBudget           bool            `json:"fits_budget"`
	CategoryID           string          `json:"category_id"`
	CategoryName         string          `json:"category_name"`
	RemainingInCategory  decimal.Decimal `json:"remaining_in_category"`
	PercentageOfCategory float64         `json:"percentage_of_category"`
	AlternativeOptions   []string        `json:"alternative_options"`
	Warning              string          `json:"warning,omitempty"`
}

// AllocationStatus is one category row in a budget summary.
type AllocationStatus struct {
	CategoryID   string          `json:"category_id"`
	CategoryName string          `json:"category_name"`
	Allocated    decimal.Decimal `json:"allocated"`
	Spent        decimal.Decimal `json:"spent"`
	Remaining    decimal.Decimal `json:"remaining"`
	PercentUsed  float64         `json:"percent_used"`
	OverBudget   bool            `json:"over_budget"`
}

// BudgetSummary aggregates a month's plan with per-category status.
type BudgetSummary struct {
	BudgetID            string             `json:"budget_id"`
	Month               string             `json:"month"`
	TotalIncome         decimal.Decimal    `json:"total_income"`
	TotalAllocated      decimal.Decimal    `json:"total_allocated"`
	TotalSpent          decimal.Decimal    `json:"total_spent"`
	TotalRemaining      decimal.Decimal    `json:"total_remaining"`
	OverspentCategories []string           `json:"overspent_categories"`
	Categories          []AllocationStatus `json:"categories"`
}

// ReallocationSuggestion proposes moving surplus from an underused
// category toward an overspent one.
type ReallocationSuggestion struct {
	FromCategoryID   string          `json:"from_category_id"`
	FromCategoryName string          `json:"from_category_name"`
	ToCategoryID     string          `json:"to_category_id"`
	ToCategoryName   string          `json:"to_category_name"`
	Amount           decimal.Decimal `json:"amount"`
	Reason           string          `json:"reason"`
}

// BudgetServicer defines the contract for budget plan generation and
// purchase validation.
type BudgetServicer interface {
	CreateBudget(userID, month string, income decimal.Decimal, goals []string, recreate bool) (*models.BudgetPlan, string, error)
	GetBudget(userID, month string) (*models.BudgetPlan, error)
	CheckPurchase(userID, month, categoryID string, amount decimal.Decimal) (*CheckPurchaseResult, error)
	UpdateSpentAmount(userID, month, categoryID string, amount decimal.Decimal) (*models.CategoryAllocation, error)
	GetBudgetSummary(userID, month string) (*BudgetSummary, error)
	SuggestReallocation(userID, month string) ([]ReallocationSuggestion, error)
}

// ExpenseFilter holds optional filter parameters for listing expenses.
type ExpenseFilter struct {
	FromDate   *time.Time
	ToDate     *time.Time
	CategoryID *string
	Merchant   *string
}

// ExpenseServicer defines the contract for expense logging and history.
type ExpenseServicer interface {
	LogExpense(userID string, amount decimal.Decimal, merchant, description string, date time.Time, categoryID *string, isRecurring bool) (*models.Expense, *RankingResult, error)
	GetUserExpenses(userID string, page pagination.PageRequest, filter ExpenseFilter) (*pagination.PageResponse[models.Expense], error)
	GetExpenseByID(userID, expenseID string) (*models.Expense, error)
	RecategorizeExpense(userID, expenseID, categoryID string) (*models.Expense, error)
	DeleteExpense(userID, expenseID string) error
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(userID, action, resourceType, resourceID, ipAddress string, changes map[string]any)
}
