package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// BudgetPlan is the monthly budget for one user. There is exactly one
// plan per (user, month); the month is stored as "YYYY-MM". The plan
// exclusively owns its allocations (cascade delete).
type BudgetPlan struct {
	Base
	UserID      string          `gorm:"type:uuid;not null;uniqueIndex:idx_user_month" json:"user_id"`
	Month       string          `gorm:"size:7;not null;uniqueIndex:idx_user_month" json:"month"`
	TotalIncome decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total_income"`

	Allocations []CategoryAllocation `gorm:"foreignKey:BudgetID;constraint:OnDelete:CASCADE" json:"allocations"`
}

// CategoryAllocation is the per-category slice of a budget plan.
// RemainingAmount is derived (allocated - spent) and recomputed on read;
// it is never stored.
type CategoryAllocation struct {
	Base
	BudgetID        string          `gorm:"type:uuid;not null;index" json:"-"`
	CategoryID      string          `gorm:"not null;index" json:"category_id"`
	AllocatedAmount decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"allocated_amount"`
	SpentAmount     decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"spent_amount"`
	RemainingAmount decimal.Decimal `gorm:"-" json:"remaining_amount"`

	Category Category `gorm:"foreignKey:CategoryID" json:"-"`
}

// AfterFind keeps the derived remaining amount consistent with storage.
func (a *CategoryAllocation) AfterFind(tx *gorm.DB) error {
	a.RemainingAmount = a.AllocatedAmount.Sub(a.SpentAmount)
	return nil
}
