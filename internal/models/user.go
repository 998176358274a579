package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// RiskTolerance is the user's self-reported appetite for financial risk.
type RiskTolerance string

const (
	RiskToleranceConservative RiskTolerance = "conservative"
	RiskToleranceModerate     RiskTolerance = "moderate"
	RiskToleranceAggressive   RiskTolerance = "aggressive"
)

// User represents the user model in the database. FinancialGoals is a
// JSON-encoded list of free-text goal strings ("Save 20% for emergency
// fund") consumed by the budget engine's strategy selection.
type User struct {
	Base
	Email          string              `gorm:"uniqueIndex;not null" json:"email"`
	Password       string              `gorm:"not null" json:"-"`
	FullName       string              `json:"full_name"`
	MonthlyIncome  decimal.NullDecimal `gorm:"type:decimal(12,2)" json:"monthly_income,omitempty"`
	FinancialGoals []string            `gorm:"serializer:json" json:"financial_goals"`
	RiskTolerance  RiskTolerance       `gorm:"default:moderate;check:risk_tolerance IN ('conservative','moderate','aggressive')" json:"risk_tolerance"`
	IsActive       bool                `gorm:"default:true" json:"is_active"`
	LastLoginAt    *time.Time          `json:"last_login_at,omitempty"`

	Budgets     []BudgetPlan             `gorm:"foreignKey:UserID" json:"budgets,omitempty"`
	Expenses    []Expense                `gorm:"foreignKey:UserID" json:"expenses,omitempty"`
	Preferences []UserCategoryPreference `gorm:"foreignKey:UserID" json:"preferences,omitempty"`
	Overrides   []UserMerchantOverride   `gorm:"foreignKey:UserID" json:"overrides,omitempty"`
}
