package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "budgetwise/internal/errors"
	"budgetwise/internal/pagination"
	"budgetwise/internal/services"
)

// ExpenseHandler handles expense logging and history requests.
type ExpenseHandler struct {
	expenseService services.ExpenseServicer
	auditService   services.AuditServicer
}

// NewExpenseHandler creates a new ExpenseHandler.
func NewExpenseHandler(expenseService services.ExpenseServicer, auditService services.AuditServicer) *ExpenseHandler {
	return &ExpenseHandler{expenseService: expenseService, auditService: auditService}
}

// LogExpenseRequest represents the payload for logging an expense.
// CategoryID is optional; when omitted the classifier assigns one.
type LogExpenseRequest struct {
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	Merchant    string          `json:"merchant"`
	Description string          `json:"description"`
	Date        *time.Time      `json:"date"`
	CategoryID  *string         `json:"category_id"`
	IsRecurring bool            `json:"is_recurring"`
}

// RecategorizeRequest moves an expense to another category.
type RecategorizeRequest struct {
	CategoryID string `json:"category_id" binding:"required"`
}

// LogExpense records an expense
// @Summary     Log an expense
// @Description Record an expense, classify it if uncategorized, and feed the month's plan
// @Tags        expenses
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body LogExpenseRequest true "Expense fields"
// @Success     201 {object} models.Expense "Expense logged"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /expenses [post]
func (h *ExpenseHandler) LogExpense(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req LogExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrValidation, err.Error()))
		return
	}

	date := time.Now()
	if req.Date != nil {
		date = *req.Date
	}

	expense, ranking, err := h.expenseService.LogExpense(userID, req.Amount, req.Merchant, req.Description, date, req.CategoryID, req.IsRecurring)
	if err != nil {
		respondWithError(c, err)
		return
	}

	resp := gin.H{"expense": expense}
	if ranking != nil {
		resp["classification"] = ranking
	}
	c.JSON(http.StatusCreated, resp)
}

// ListExpenses returns the caller's expense history
// @Summary     List expenses
// @Tags        expenses
// @Produce     json
// @Security    BearerAuth
// @Param       from        query string false "From date (RFC 3339 or YYYY-MM-DD)"
// @Param       to          query string false "To date (RFC 3339 or YYYY-MM-DD)"
// @Param       category_id query string false "Filter by category"
// @Param       merchant    query string false "Filter by merchant substring"
// @Param       page        query int    false "Page number (default 1)"
// @Param       page_size   query int    false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Expense] "Paginated expenses"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /expenses [get]
func (h *ExpenseHandler) ListExpenses(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrValidation, err.Error()))
		return
	}

	var filter services.ExpenseFilter
	if v := c.Query("from"); v != "" {
		t, err := parseDate(v)
		if err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrValidation, "invalid from date"))
			return
		}
		filter.FromDate = &t
	}
	if v := c.Query("to"); v != "" {
		t, err := parseDate(v)
		if err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrValidation, "invalid to date"))
			return
		}
		filter.ToDate = &t
	}
	if v := c.Query("category_id"); v != "" {
		filter.CategoryID = &v
	}
	if v := c.Query("merchant"); v != "" {
		filter.Merchant = &v
	}

	result, err := h.expenseService.GetUserExpenses(userID, page, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}

// GetExpense returns one expense
// @Summary     Get an expense
// @Tags        expenses
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Expense ID"
// @Success     200 {object} models.Expense "Expense"
// @Failure     404 {object} ErrorResponse "Not found"
// @Router      /expenses/{id} [get]
func (h *ExpenseHandler) GetExpense(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	expense, err := h.expenseService.GetExpenseByID(userID, c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"expense": expense})
}

// Recategorize moves an expense to another category
// @Summary     Recategorize an expense
// @Description Move an expense and pin its merchant to the chosen category
// @Tags        expenses
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string              true "Expense ID"
// @Param       request body RecategorizeRequest true "Target category"
// @Success     200 {object} models.Expense "Updated expense"
// @Failure     404 {object} ErrorResponse "Expense or category not found"
// @Router      /expenses/{id}/category [put]
func (h *ExpenseHandler) Recategorize(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req RecategorizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrValidation, err.Error()))
		return
	}

	expense, err := h.expenseService.RecategorizeExpense(userID, c.Param("id"), req.CategoryID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "RECATEGORIZE_EXPENSE", "expense", expense.ID, c.ClientIP(),
		map[string]any{"category_id": req.CategoryID})
	c.JSON(http.StatusOK, gin.H{"expense": expense})
}

// DeleteExpense removes an expense
// @Summary     Delete an expense
// @Description Soft delete an expense; recorded spend is not rewound
// @Tags        expenses
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Expense ID"
// @Success     204 "Deleted"
// @Failure     404 {object} ErrorResponse "Not found"
// @Router      /expenses/{id} [delete]
func (h *ExpenseHandler) DeleteExpense(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.expenseService.DeleteExpense(userID, c.Param("id")); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "DELETE_EXPENSE", "expense", c.Param("id"), c.ClientIP(), nil)
	c.Status(http.StatusNoContent)
}
