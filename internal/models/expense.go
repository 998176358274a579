package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Expense is a single logged expense. The category is assigned by the
// classifier or directly by the user; ConfidenceScore records how sure
// the classifier was at the time of assignment.
type Expense struct {
	Base
	UserID               string          `gorm:"type:uuid;not null;index" json:"user_id"`
	Amount               decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	CategoryID           *string         `gorm:"index" json:"category_id,omitempty"`
	Description          string          `json:"description"`
	Merchant             string          `json:"merchant"`
	Date                 time.Time       `gorm:"not null;index" json:"date"`
	IsRecurring          bool            `gorm:"default:false" json:"is_recurring"`
	SuggestedCategoryID  *string         `json:"suggested_category_id,omitempty"`
	ConfidenceScore      float64         `gorm:"type:decimal(3,2)" json:"confidence_score"`

	Category *Category `gorm:"foreignKey:CategoryID" json:"-"`
}
