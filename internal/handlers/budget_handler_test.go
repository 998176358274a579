package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "budgetwise/internal/errors"
	"budgetwise/internal/models"
	"budgetwise/internal/services"
	"budgetwise/internal/validator"
)

func init() {
	gin.SetMode(gin.TestMode)
	validator.Register()
}

// --- shared test helpers ---

type mockAuditService struct{}

func (m *mockAuditService) Log(_, _, _, _, _ string, _ map[string]any) {}

var _ services.AuditServicer = (*mockAuditService)(nil)

func injectUserID(uid string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("userID", uid)
		c.Next()
	}
}

func doRequest(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

// --- mock budget service ---

type mockBudgetService struct {
	createBudgetFn  func(userID, month string, income decimal.Decimal, goals []string, recreate bool) (*models.BudgetPlan, string, error)
	checkPurchaseFn func(userID, month, categoryID string, amount decimal.Decimal) (*services.CheckPurchaseResult, error)
	updateSpentFn   func(userID, month, categoryID string, amount decimal.Decimal) (*models.CategoryAllocation, error)
}

func (m *mockBudgetService) CreateBudget(userID, month string, income decimal.Decimal, goals []string, recreate bool) (*models.BudgetPlan, string, error) {
	if m.createBudgetFn != nil {
		return m.createBudgetFn(userID, month, income, goals, recreate)
	}
	return &models.BudgetPlan{}, "50/30/20", nil
}

func (m *mockBudgetService) GetBudget(userID, month string) (*models.BudgetPlan, error) {
	return &models.BudgetPlan{UserID: userID, Month: month}, nil
}

func (m *mockBudgetService) CheckPurchase(userID, month, categoryID string, amount decimal.Decimal) (*services.CheckPurchaseResult, error) {
	if m.checkPurchaseFn != nil {
		return m.checkPurchaseFn(userID, month, categoryID, amount)
	}
	return &services.CheckPurchaseResult{FitsBudget: true}, nil
}

func (m *mockBudgetService) UpdateSpentAmount(userID, month, categoryID string, amount decimal.Decimal) (*models.CategoryAllocation, error) {
	if m.updateSpentFn != nil {
		return m.updateSpentFn(userID, month, categoryID, amount)
	}
	return &models.CategoryAllocation{}, nil
}

func (m *mockBudgetService) GetBudgetSummary(userID, month string) (*services.BudgetSummary, error) {
	return &services.BudgetSummary{Month: month}, nil
}

func (m *mockBudgetService) SuggestReallocation(userID, month string) ([]services.ReallocationSuggestion, error) {
	return []services.ReallocationSuggestion{}, nil
}

var _ services.BudgetServicer = (*mockBudgetService)(nil)

func setupBudgetRouter(handler *BudgetHandler) *gin.Engine {
	r := gin.New()
	auth := r.Group("", injectUserID("user-1"))
	auth.POST("/budgets", handler.CreateBudget)
	auth.GET("/budgets/:month", handler.GetBudget)
	auth.POST("/budgets/:month/check-purchase", handler.CheckPurchase)
	auth.POST("/budgets/:month/spent", handler.UpdateSpent)
	auth.GET("/budgets/:month/summary", handler.Summary)
	auth.GET("/budgets/:month/suggestions", handler.Suggestions)
	return r
}

func TestBudgetHandler_CreateBudget(t *testing.T) {
	t.Run("returns 201 on success", func(t *testing.T) {
		svc := &mockBudgetService{
			createBudgetFn: func(userID, month string, income decimal.Decimal, goals []string, recreate bool) (*models.BudgetPlan, string, error) {
				if userID != "user-1" || month != "2026-09" || recreate {
					t.Errorf("unexpected args: %s %s %v", userID, month, recreate)
				}
				if len(goals) != 1 || goals[0] != "save for a house" {
					t.Errorf("goals = %v, want the request goals", goals)
				}
				return &models.BudgetPlan{UserID: userID, Month: month, TotalIncome: income}, "aggressive_save", nil
			},
		}
		handler := NewBudgetHandler(svc, &mockAuditService{})
		r := setupBudgetRouter(handler)

		rec := doRequest(r, http.MethodPost, "/budgets", `{"month":"2026-09","income":5000,"goals":["save for a house"]}`)
		if rec.Code != http.StatusCreated {
			t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
		}

		var resp struct {
			Strategy string `json:"strategy"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("invalid response: %v", err)
		}
		if resp.Strategy != "aggressive_save" {
			t.Errorf("strategy = %q, want aggressive_save", resp.Strategy)
		}
	})

	t.Run("rejects malformed month", func(t *testing.T) {
		handler := NewBudgetHandler(&mockBudgetService{}, &mockAuditService{})
		r := setupBudgetRouter(handler)

		rec := doRequest(r, http.MethodPost, "/budgets", `{"month":"September","income":5000}`)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("maps duplicate plan to 409", func(t *testing.T) {
		svc := &mockBudgetService{
			createBudgetFn: func(_, _ string, _ decimal.Decimal, _ []string, _ bool) (*models.BudgetPlan, string, error) {
				return nil, "", apperrors.ErrDuplicateBudget
			},
		}
		handler := NewBudgetHandler(svc, &mockAuditService{})
		r := setupBudgetRouter(handler)

		rec := doRequest(r, http.MethodPost, "/budgets", `{"month":"2026-09","income":5000}`)
		if rec.Code != http.StatusConflict {
			t.Errorf("status = %d, want 409", rec.Code)
		}
	})
}

func TestBudgetHandler_CheckPurchase(t *testing.T) {
	t.Run("returns verdict", func(t *testing.T) {
		svc := &mockBudgetService{
			checkPurchaseFn: func(_, month, categoryID string, amount decimal.Decimal) (*services.CheckPurchaseResult, error) {
				if month != "2026-09" || categoryID != "cat_dining" {
					t.Errorf("unexpected args: %s %s", month, categoryID)
				}
				return &services.CheckPurchaseResult{
					FitsBudget:          false,
					RemainingInCategory: decimal.RequireFromString("100"),
					Warning:             "This purchase exceeds your Dining Out budget by $1900",
					AlternativeOptions:  []string{"Groceries", "wait until next month"},
				}, nil
			},
		}
		handler := NewBudgetHandler(svc, &mockAuditService{})
		r := setupBudgetRouter(handler)

		rec := doRequest(r, http.MethodPost, "/budgets/2026-09/check-purchase", `{"category_id":"cat_dining","amount":2000}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
		}

		var resp services.CheckPurchaseResult
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("invalid response: %v", err)
		}
		if resp.FitsBudget || !strings.Contains(resp.Warning, "1900") {
			t.Errorf("unexpected verdict: %+v", resp)
		}
	})

	t.Run("maps missing plan to 404", func(t *testing.T) {
		svc := &mockBudgetService{
			checkPurchaseFn: func(_, _, _ string, _ decimal.Decimal) (*services.CheckPurchaseResult, error) {
				return nil, apperrors.ErrBudgetNotFound
			},
		}
		handler := NewBudgetHandler(svc, &mockAuditService{})
		r := setupBudgetRouter(handler)

		rec := doRequest(r, http.MethodPost, "/budgets/2026-09/check-purchase", `{"category_id":"cat_dining","amount":10}`)
		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", rec.Code)
		}
	})
}

func TestBudgetHandler_UpdateSpent(t *testing.T) {
	svc := &mockBudgetService{
		updateSpentFn: func(_, _, _ string, amount decimal.Decimal) (*models.CategoryAllocation, error) {
			return &models.CategoryAllocation{
				CategoryID:      "cat_dining",
				AllocatedAmount: decimal.RequireFromString("400"),
				SpentAmount:     amount,
				RemainingAmount: decimal.RequireFromString("400").Sub(amount),
			}, nil
		},
	}
	handler := NewBudgetHandler(svc, &mockAuditService{})
	r := setupBudgetRouter(handler)

	rec := doRequest(r, http.MethodPost, "/budgets/2026-09/spent", `{"category_id":"cat_dining","amount":50}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
}

func TestBudgetHandler_RequiresAuth(t *testing.T) {
	handler := NewBudgetHandler(&mockBudgetService{}, &mockAuditService{})
	r := gin.New()
	r.GET("/budgets/:month", handler.GetBudget)

	rec := doRequest(r, http.MethodGet, "/budgets/2026-09", "")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}
