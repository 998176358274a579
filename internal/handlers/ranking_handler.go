package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "budgetwise/internal/errors"
	"budgetwise/internal/services"
)

// RankingHandler handles classification and priority-order requests.
type RankingHandler struct {
	rankingService services.RankingServicer
	auditService   services.AuditServicer
}

// NewRankingHandler creates a new RankingHandler.
func NewRankingHandler(rankingService services.RankingServicer, auditService services.AuditServicer) *RankingHandler {
	return &RankingHandler{rankingService: rankingService, auditService: auditService}
}

// ClassifyRequest represents an expense to classify. Amount is carried
// for parity with the expense log but does not influence scoring.
type ClassifyRequest struct {
	Merchant    string           `json:"merchant"`
	Description string           `json:"description"`
	Amount      *decimal.Decimal `json:"amount"`
}

// CorrectionRequest pins a merchant to a category.
type CorrectionRequest struct {
	Merchant   string `json:"merchant" binding:"required"`
	CategoryID string `json:"category_id" binding:"required"`
}

// Classify ranks categories for an expense
// @Summary     Classify an expense
// @Description Score the merchant and description against category rules
// @Tags        ranking
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body ClassifyRequest true "Expense fields"
// @Success     200 {object} services.RankingResult "Winning category with confidence"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Catalog not seeded"
// @Router      /ranking/classify [post]
func (h *RankingHandler) Classify(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req ClassifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrValidation, err.Error()))
		return
	}
	if req.Merchant == "" && req.Description == "" {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrValidation, "merchant or description is required"))
		return
	}

	result, err := h.rankingService.Classify(userID, req.Merchant, req.Description)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Correct records a merchant-to-category correction
// @Summary     Correct a classification
// @Description Permanently pin a merchant to a category for this user
// @Tags        ranking
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CorrectionRequest true "Correction"
// @Success     200 {object} models.UserMerchantOverride "Stored override"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Category not found"
// @Router      /ranking/corrections [post]
func (h *RankingHandler) Correct(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CorrectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrValidation, err.Error()))
		return
	}

	override, err := h.rankingService.HandleCorrection(userID, req.Merchant, req.CategoryID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CORRECT_CLASSIFICATION", "merchant_override", override.ID, c.ClientIP(),
		map[string]any{"merchant": override.Merchant, "category_id": override.CategoryID})
	c.JSON(http.StatusOK, gin.H{"override": override})
}

// Priorities returns categories in budgeting priority order
// @Summary     Get priority order
// @Description Categories sorted by custom priority, falling back to necessity
// @Tags        ranking
// @Produce     json
// @Security    BearerAuth
// @Success     200 {array} services.PriorityEntry "Priority order"
// @Router      /ranking/priorities [get]
func (h *RankingHandler) Priorities(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	order, err := h.rankingService.GetPriorityOrder(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"priorities": order})
}
