package services

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "budgetwise/internal/errors"
	"budgetwise/internal/logger"
	"budgetwise/internal/models"
	"budgetwise/internal/pagination"
)

// expenseService logs expenses, classifying them on the way in and
// feeding the month's budget plan.
type expenseService struct {
	db         *gorm.DB
	categories CategoryServicer
	ranking    RankingServicer
	budgets    BudgetServicer
}

// NewExpenseService creates a new ExpenseServicer.
func NewExpenseService(db *gorm.DB, categories CategoryServicer, ranking RankingServicer, budgets BudgetServicer) ExpenseServicer {
	return &expenseService{db: db, categories: categories, ranking: ranking, budgets: budgets}
}

// LogExpense records an expense. When no category is given the
// classifier assigns one and its confidence is stored with the expense.
// The matching budget allocation's spent amount is incremented when a
// plan exists for the expense's month; an absent plan is not an error.
func (s *expenseService) LogExpense(userID string, amount decimal.Decimal, merchantName, description string, date time.Time, categoryID *string, isRecurring bool) (*models.Expense, *RankingResult, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, nil, apperrors.WithMessage(apperrors.ErrValidation, "amount must be positive")
	}
	if date.IsZero() {
		date = time.Now()
	}

	expense := &models.Expense{
		UserID:      userID,
		Amount:      amount,
		Description: description,
		Merchant:    merchantName,
		Date:        date,
		IsRecurring: isRecurring,
	}

	var ranking *RankingResult
	if categoryID != nil {
		if _, err := s.categories.GetCategory(*categoryID); err != nil {
			return nil, nil, err
		}
		expense.CategoryID = categoryID
		expense.ConfidenceScore = 1.0
	} else {
		result, err := s.ranking.Classify(userID, merchantName, description)
		if err != nil {
			return nil, nil, err
		}
		ranking = result
		expense.CategoryID = &result.CategoryID
		expense.SuggestedCategoryID = &result.CategoryID
		expense.ConfidenceScore = result.Confidence
	}

	if err := s.db.Create(expense).Error; err != nil {
		return nil, nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	// Feed the month's plan. Months without a plan simply accumulate
	// unbudgeted expenses.
	month := date.Format("2006-01")
	if _, err := s.budgets.UpdateSpentAmount(userID, month, *expense.CategoryID, amount); err != nil {
		var appErr *apperrors.AppError
		if !errors.As(err, &appErr) ||
			(appErr.Code != apperrors.ErrBudgetNotFound.Code && appErr.Code != apperrors.ErrAllocationNotFound.Code) {
			logger.Get().Warnw("failed to update spent amount for expense",
				"error", err,
				"user_id", userID,
				"expense_id", expense.ID,
				"month", month,
			)
		}
	}

	return expense, ranking, nil
}

// GetUserExpenses retrieves a paginated, filtered expense history,
// newest first.
func (s *expenseService) GetUserExpenses(userID string, page pagination.PageRequest, filter ExpenseFilter) (*pagination.PageResponse[models.Expense], error) {
	page.Defaults()

	base := s.db.Model(&models.Expense{}).Where("user_id = ?", userID)
	if filter.FromDate != nil {
		base = base.Where("date >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		base = base.Where("date <= ?", *filter.ToDate)
	}
	if filter.CategoryID != nil {
		base = base.Where("category_id = ?", *filter.CategoryID)
	}
	if filter.Merchant != nil {
		base = base.Where("merchant LIKE ?", "%"+*filter.Merchant+"%")
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var expenses []models.Expense
	if err := base.Order("date desc").Scopes(pagination.Paginate(page)).Find(&expenses).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(expenses, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetExpenseByID retrieves one expense for a specific user.
func (s *expenseService) GetExpenseByID(userID, expenseID string) (*models.Expense, error) {
	var expense models.Expense
	if err := s.db.Where("id = ? AND user_id = ?", expenseID, userID).First(&expense).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrExpenseNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &expense, nil
}

// RecategorizeExpense moves an expense to another category and records
// the choice as a merchant override so future expenses from the same
// merchant classify correctly. Spent amounts are not rewritten.
func (s *expenseService) RecategorizeExpense(userID, expenseID, categoryID string) (*models.Expense, error) {
	expense, err := s.GetExpenseByID(userID, expenseID)
	if err != nil {
		return nil, err
	}
	if _, err := s.categories.GetCategory(categoryID); err != nil {
		return nil, err
	}

	if err := s.db.Model(expense).Update("category_id", categoryID).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	expense.CategoryID = &categoryID

	if expense.Merchant != "" {
		if _, err := s.ranking.HandleCorrection(userID, expense.Merchant, categoryID); err != nil {
			logger.Get().Warnw("failed to record merchant override from recategorization",
				"error", err,
				"user_id", userID,
				"expense_id", expenseID,
			)
		}
	}
	return expense, nil
}

// DeleteExpense soft deletes an expense. The month's spent amount stays
// as recorded; spend is append-only.
func (s *expenseService) DeleteExpense(userID, expenseID string) error {
	expense, err := s.GetExpenseByID(userID, expenseID)
	if err != nil {
		return err
	}
	if err := s.db.Delete(expense).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
