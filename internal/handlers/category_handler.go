package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "budgetwise/internal/errors"
	"budgetwise/internal/services"
)

// CategoryHandler serves the shared category catalog and per-user
// preference overlays.
type CategoryHandler struct {
	categoryService services.CategoryServicer
	auditService    services.AuditServicer
}

// NewCategoryHandler creates a new CategoryHandler.
func NewCategoryHandler(categoryService services.CategoryServicer, auditService services.AuditServicer) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService, auditService: auditService}
}

// UpsertPreferenceRequest sets a user's priority and limit overlay for
// one category.
type UpsertPreferenceRequest struct {
	CustomPriority *int             `json:"custom_priority" binding:"omitempty,min=1,max=10"`
	MonthlyLimit   *decimal.Decimal `json:"monthly_limit"`
}

// ListCategories returns the full catalog
// @Summary     List categories
// @Tags        categories
// @Produce     json
// @Success     200 {array} models.Category "Catalog"
// @Failure     404 {object} ErrorResponse "Catalog not seeded"
// @Router      /categories [get]
func (h *CategoryHandler) ListCategories(c *gin.Context) {
	categories, err := h.categoryService.ListCategories()
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// GetCategory returns one category with its rules
// @Summary     Get a category
// @Tags        categories
// @Produce     json
// @Param       id path string true "Category ID"
// @Success     200 {object} models.Category "Category"
// @Failure     404 {object} ErrorResponse "Not found"
// @Router      /categories/{id} [get]
func (h *CategoryHandler) GetCategory(c *gin.Context) {
	category, err := h.categoryService.GetCategory(c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"category": category})
}

// UpsertPreference sets the caller's overlay for a category
// @Summary     Set category preference
// @Description Set a custom priority and/or monthly limit for a category
// @Tags        categories
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string                  true "Category ID"
// @Param       request body UpsertPreferenceRequest true "Overlay fields"
// @Success     200 {object} models.UserCategoryPreference "Stored preference"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Category not found"
// @Router      /categories/{id}/preference [put]
func (h *CategoryHandler) UpsertPreference(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpsertPreferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrValidation, err.Error()))
		return
	}

	pref, err := h.categoryService.UpsertPreference(userID, c.Param("id"), req.CustomPriority, req.MonthlyLimit)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"preference": pref})
}

// GetPreferences lists the caller's category overlays
// @Summary     List category preferences
// @Tags        categories
// @Produce     json
// @Security    BearerAuth
// @Success     200 {array} models.UserCategoryPreference "Preferences"
// @Router      /categories/preferences [get]
func (h *CategoryHandler) GetPreferences(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	prefs, err := h.categoryService.GetUserPreferences(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"preferences": prefs})
}

// Reseed replaces the catalog with the built-in seed data
// @Summary     Reseed the category catalog
// @Description Administrative: drop and re-create all categories and rules
// @Tags        admin
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} map[string]int "Count of categories written"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /admin/reseed [post]
func (h *CategoryHandler) Reseed(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	n, err := h.categoryService.Reseed()
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "RESEED_CATALOG", "category", "", c.ClientIP(),
		map[string]any{"categories": n})
	c.JSON(http.StatusOK, gin.H{"categories": n})
}
