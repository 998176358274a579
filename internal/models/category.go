package models

import "github.com/shopspring/decimal"

// MatchType determines how a rule's patterns are compared against text.
type MatchType string

const (
	MatchTypeExact     MatchType = "exact"
	MatchTypeSubstring MatchType = "substring"
	MatchTypeRegex     MatchType = "regex"
)

// Category is shared, read-only reference data describing a spending
// category. Categories use stable slug IDs ("cat_housing") rather than
// UUIDs and change only through administrative reseeding.
type Category struct {
	ID                       string          `gorm:"primaryKey" json:"id"`
	Name                     string          `gorm:"uniqueIndex;not null" json:"name"`
	NecessityScore           int             `gorm:"not null;check:necessity_score BETWEEN 1 AND 10" json:"necessity_score"`
	DefaultAllocationPercent decimal.Decimal `gorm:"type:decimal(5,2)" json:"default_allocation_percent"`
	ParentCategoryID         *string         `json:"parent_category_id,omitempty"`
	IsSystem                 bool            `gorm:"default:true" json:"is_system"`

	// Relationships
	Parent *Category      `gorm:"foreignKey:ParentCategoryID" json:"parent,omitempty"`
	Rules  []CategoryRule `gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE" json:"rules,omitempty"`
}

// CategoryRule holds matching evidence for one category. Many rules per
// category; rules are additive evidence, not exclusive.
type CategoryRule struct {
	Base
	CategoryID       string    `gorm:"not null;index" json:"category_id"`
	Keywords         []string  `gorm:"serializer:json" json:"keywords"`
	MerchantPatterns []string  `gorm:"serializer:json" json:"merchant_patterns"`
	MatchType        MatchType `gorm:"default:substring;check:match_type IN ('exact','substring','regex')" json:"match_type"`
	Priority         int       `gorm:"default:1" json:"priority"`
}
