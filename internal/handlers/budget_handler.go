package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "budgetwise/internal/errors"
	"budgetwise/internal/services"
)

// BudgetHandler handles budget plan requests.
type BudgetHandler struct {
	budgetService services.BudgetServicer
	auditService  services.AuditServicer
}

// NewBudgetHandler creates a new BudgetHandler.
func NewBudgetHandler(budgetService services.BudgetServicer, auditService services.AuditServicer) *BudgetHandler {
	return &BudgetHandler{budgetService: budgetService, auditService: auditService}
}

// CreateBudgetRequest represents the request payload for creating a
// monthly budget plan. Goals given here drive strategy selection for
// this plan only; when omitted the user's stored goals apply.
type CreateBudgetRequest struct {
	Month    string          `json:"month" binding:"required,budget_month"`
	Income   decimal.Decimal `json:"income" binding:"required"`
	Goals    []string        `json:"goals"`
	Recreate bool            `json:"recreate"`
}

// CheckPurchaseRequest asks whether an amount fits a category's
// remaining allocation.
type CheckPurchaseRequest struct {
	CategoryID string          `json:"category_id" binding:"required"`
	Amount     decimal.Decimal `json:"amount" binding:"required"`
}

// UpdateSpentRequest adds to a category's spent amount.
type UpdateSpentRequest struct {
	CategoryID string          `json:"category_id" binding:"required"`
	Amount     decimal.Decimal `json:"amount" binding:"required"`
}

// CreateBudget generates the plan for a month
// @Summary     Create a budget plan
// @Description Generate and persist the month's allocations from income and goals
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateBudgetRequest true "Month, income, recreate flag"
// @Success     201 {object} models.BudgetPlan "Plan created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     409 {object} ErrorResponse "Plan already exists for month"
// @Router      /budgets [post]
func (h *BudgetHandler) CreateBudget(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrValidation, err.Error()))
		return
	}

	plan, strategy, err := h.budgetService.CreateBudget(userID, req.Month, req.Income, req.Goals, req.Recreate)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_BUDGET", "budget_plan", plan.ID, c.ClientIP(),
		map[string]any{"month": req.Month, "income": req.Income, "goals": req.Goals, "strategy": strategy, "recreate": req.Recreate})
	c.JSON(http.StatusCreated, gin.H{"plan": plan, "strategy": strategy})
}

// GetBudget returns the plan for a month
// @Summary     Get a budget plan
// @Tags        budgets
// @Produce     json
// @Security    BearerAuth
// @Param       month path string true "Month (YYYY-MM)"
// @Success     200 {object} models.BudgetPlan "Plan"
// @Failure     404 {object} ErrorResponse "No plan for month"
// @Router      /budgets/{month} [get]
func (h *BudgetHandler) GetBudget(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	plan, err := h.budgetService.GetBudget(userID, c.Param("month"))
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"plan": plan})
}

// CheckPurchase validates an amount against the month's allocation
// @Summary     Check a purchase
// @Description Ask whether an amount fits the category's remaining budget
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       month   path string               true "Month (YYYY-MM)"
// @Param       request body CheckPurchaseRequest true "Category and amount"
// @Success     200 {object} services.CheckPurchaseResult "Verdict"
// @Failure     404 {object} ErrorResponse "No plan or allocation"
// @Router      /budgets/{month}/check-purchase [post]
func (h *BudgetHandler) CheckPurchase(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CheckPurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrValidation, err.Error()))
		return
	}

	result, err := h.budgetService.CheckPurchase(userID, c.Param("month"), req.CategoryID, req.Amount)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// UpdateSpent adds to a category's spent amount
// @Summary     Record spending
// @Description Add to the spent amount of one allocation (append-only)
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       month   path string             true "Month (YYYY-MM)"
// @Param       request body UpdateSpentRequest true "Category and amount"
// @Success     200 {object} models.CategoryAllocation "Updated allocation"
// @Failure     404 {object} ErrorResponse "No plan or allocation"
// @Router      /budgets/{month}/spent [post]
func (h *BudgetHandler) UpdateSpent(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateSpentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrValidation, err.Error()))
		return
	}

	alloc, err := h.budgetService.UpdateSpentAmount(userID, c.Param("month"), req.CategoryID, req.Amount)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"allocation": alloc})
}

// Summary totals the month's plan
// @Summary     Get budget summary
// @Tags        budgets
// @Produce     json
// @Security    BearerAuth
// @Param       month path string true "Month (YYYY-MM)"
// @Success     200 {object} services.BudgetSummary "Summary"
// @Failure     404 {object} ErrorResponse "No plan for month"
// @Router      /budgets/{month}/summary [get]
func (h *BudgetHandler) Summary(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	summary, err := h.budgetService.GetBudgetSummary(userID, c.Param("month"))
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// Suggestions proposes surplus-to-overspent transfers
// @Summary     Suggest reallocations
// @Description Advisory pairing of overspent categories with surplus ones
// @Tags        budgets
// @Produce     json
// @Security    BearerAuth
// @Param       month path string true "Month (YYYY-MM)"
// @Success     200 {array} services.ReallocationSuggestion "Suggestions"
// @Failure     404 {object} ErrorResponse "No plan for month"
// @Router      /budgets/{month}/suggestions [get]
func (h *BudgetHandler) Suggestions(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	suggestions, err := h.budgetService.SuggestReallocation(userID, c.Param("month"))
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"suggestions": suggestions})
}
