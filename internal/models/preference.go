package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// UserCategoryPreference overlays a user's custom priority and monthly
// spending limit onto a category. Absence means "use category defaults".
type UserCategoryPreference struct {
	UserID         string               `gorm:"type:uuid;primaryKey" json:"user_id"`
	CategoryID     string               `gorm:"primaryKey" json:"category_id"`
	CustomPriority *int                 `gorm:"check:custom_priority BETWEEN 1 AND 10" json:"custom_priority,omitempty"`
	MonthlyLimit   decimal.NullDecimal  `gorm:"type:decimal(12,2)" json:"monthly_limit,omitempty"`
	CreatedAt      time.Time            `json:"created_at"`
	UpdatedAt      time.Time            `json:"updated_at"`

	Category Category `gorm:"foreignKey:CategoryID" json:"-"`
}

// UserMerchantOverride pins a normalized merchant string to a category
// for one user. Overrides always win over rule-based scoring and persist
// until overwritten by another correction.
type UserMerchantOverride struct {
	Base
	UserID     string `gorm:"type:uuid;not null;uniqueIndex:idx_user_merchant" json:"user_id"`
	Merchant   string `gorm:"not null;uniqueIndex:idx_user_merchant" json:"merchant"`
	CategoryID string `gorm:"not null" json:"category_id"`

	Category Category `gorm:"foreignKey:CategoryID" json:"-"`
}
