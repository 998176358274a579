// Package seed holds the built-in category catalog and its matching
// rules. The catalog is applied by the category service's Reseed and by
// the seed command; IDs are stable slugs so reseeding never breaks
// existing allocations or expenses.
package seed

import (
	"github.com/shopspring/decimal"

	"budgetwise/internal/models"
)

func pct(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func merchants(priority int, patterns ...string) models.CategoryRule {
	return models.CategoryRule{
		MerchantPatterns: patterns,
		MatchType:        models.MatchTypeSubstring,
		Priority:         priority,
	}
}

func keywords(priority int, words ...string) models.CategoryRule {
	return models.CategoryRule{
		Keywords:  words,
		MatchType: models.MatchTypeSubstring,
		Priority:  priority,
	}
}

// Catalog returns the full built-in catalog: 20 categories spanning
// essential (9-10), important (6-8), moderate (4-5), and discretionary
// (1-3) necessity bands, with merchant and keyword rules attached.
func Catalog() []models.Category {
	return []models.Category{
		{
			ID: "cat_housing", Name: "Housing", NecessityScore: 10,
			DefaultAllocationPercent: pct("30.0"), IsSystem: true,
			Rules: []models.CategoryRule{
				merchants(10, "rent", "mortgage", "apartment"),
				keywords(8, "rent", "lease", "landlord", "mortgage"),
			},
		},
		{
			ID: "cat_utilities", Name: "Utilities", NecessityScore: 10,
			DefaultAllocationPercent: pct("10.0"), IsSystem: true,
			Rules: []models.CategoryRule{
				merchants(10, "electric", "water", "internet"),
				merchants(10, "comcast", "verizon", "att", "tmobile"),
				keywords(8, "utility", "electricity", "broadband", "phone bill"),
			},
		},
		{
			ID: "cat_groceries", Name: "Groceries", NecessityScore: 9,
			DefaultAllocationPercent: pct("15.0"), IsSystem: true,
			Rules: []models.CategoryRule{
				merchants(10, "walmart", "target", "kroger", "safeway", "publix"),
				merchants(10, "whole foods", "trader joes", "costco", "sams club", "aldi"),
				keywords(8, "grocery", "groceries", "supermarket"),
			},
		},
		{
			ID: "cat_healthcare", Name: "Healthcare", NecessityScore: 9,
			DefaultAllocationPercent: pct("8.0"), IsSystem: true,
			Rules: []models.CategoryRule{
				merchants(10, "pharmacy", "cvs", "walgreens"),
				merchants(9, "doctor", "hospital", "medical"),
				keywords(8, "prescription", "clinic", "dental", "copay"),
			},
		},
		{
			ID: "cat_transportation", Name: "Transportation", NecessityScore: 8,
			DefaultAllocationPercent: pct("10.0"), IsSystem: true,
			Rules: []models.CategoryRule{
				merchants(10, "shell", "chevron", "exxon", "bp"),
				merchants(10, "uber", "lyft", "taxi"),
				merchants(8, "gas", "fuel"),
				keywords(8, "parking", "toll", "transit", "metro"),
			},
		},
		{
			ID: "cat_insurance", Name: "Insurance", NecessityScore: 8,
			DefaultAllocationPercent: pct("5.0"), IsSystem: true,
			Rules: []models.CategoryRule{
				merchants(10, "geico", "allstate", "state farm", "progressive"),
				keywords(9, "insurance", "premium", "policy"),
			},
		},
		{
			ID: "cat_debt", Name: "Debt Payments", NecessityScore: 8,
			DefaultAllocationPercent: pct("10.0"), IsSystem: true,
			Rules: []models.CategoryRule{
				merchants(9, "loan", "credit card payment"),
				keywords(9, "loan payment", "student loan", "credit card", "interest"),
			},
		},
		{
			ID: "cat_savings", Name: "Savings", NecessityScore: 7,
			DefaultAllocationPercent: pct("15.0"), IsSystem: true,
			Rules: []models.CategoryRule{
				keywords(9, "savings", "transfer to savings", "emergency fund"),
			},
		},
		{
			ID: "cat_childcare", Name: "Childcare", NecessityScore: 7,
			DefaultAllocationPercent: pct("8.0"), IsSystem: true,
			Rules: []models.CategoryRule{
				merchants(9, "daycare", "childcare"),
				keywords(8, "babysitter", "nanny", "preschool"),
			},
		},
		{
			ID: "cat_education", Name: "Education", NecessityScore: 6,
			DefaultAllocationPercent: pct("5.0"), IsSystem: true,
			Rules: []models.CategoryRule{
				merchants(9, "udemy", "coursera", "university"),
				keywords(8, "tuition", "textbook", "course", "class"),
			},
		},
		{
			ID: "cat_dining", Name: "Dining Out", NecessityScore: 4,
			DefaultAllocationPercent: pct("8.0"), IsSystem: true,
			Rules: []models.CategoryRule{
				merchants(10, "restaurant", "mcdonalds", "burger king", "starbucks", "subway", "chipotle"),
				merchants(10, "doordash", "grubhub", "uber eats"),
				merchants(8, "pizza", "cafe"),
				merchants(7, "coffee"),
				keywords(7, "lunch", "dinner", "takeout", "delivery"),
			},
		},
		{
			ID: "cat_entertainment", Name: "Entertainment", NecessityScore: 3,
			DefaultAllocationPercent: pct("5.0"), IsSystem: true,
			Rules: []models.CategoryRule{
				merchants(10, "netflix", "spotify", "hulu", "disney", "amc"),
				merchants(10, "steam", "playstation", "xbox"),
				merchants(9, "movie", "theater", "cinema"),
				keywords(7, "concert", "streaming", "game"),
			},
		},
		{
			ID: "cat_shopping", Name: "Shopping", NecessityScore: 3,
			DefaultAllocationPercent: pct("7.0"), IsSystem: true,
			Rules: []models.CategoryRule{
				merchants(10, "amazon", "ebay", "etsy", "bestbuy", "macys", "nordstrom"),
				keywords(7, "clothes", "clothing", "shoes", "electronics"),
			},
		},
		{
			ID: "cat_fitness", Name: "Fitness & Wellness", NecessityScore: 5,
			DefaultAllocationPercent: pct("3.0"), IsSystem: true,
			Rules: []models.CategoryRule{
				merchants(10, "planet fitness", "gym", "yoga"),
				keywords(8, "membership", "workout", "wellness"),
			},
		},
		{
			ID: "cat_subscriptions", Name: "Subscriptions", NecessityScore: 4,
			DefaultAllocationPercent: pct("3.0"), IsSystem: true,
			Rules: []models.CategoryRule{
				merchants(8, "subscription"),
				keywords(8, "monthly subscription", "annual plan", "renewal"),
			},
		},
		{
			ID: "cat_travel", Name: "Travel", NecessityScore: 2,
			DefaultAllocationPercent: pct("5.0"), IsSystem: true,
			Rules: []models.CategoryRule{
				merchants(10, "airbnb", "expedia", "delta", "united", "marriott", "hilton"),
				merchants(9, "airline", "hotel"),
				keywords(8, "flight", "vacation", "trip"),
			},
		},
		{
			ID: "cat_hobbies", Name: "Hobbies", NecessityScore: 2,
			DefaultAllocationPercent: pct("3.0"), IsSystem: true,
			Rules: []models.CategoryRule{
				merchants(8, "hobby", "craft", "michaels"),
				keywords(7, "supplies", "kit"),
			},
		},
		{
			ID: "cat_gifts", Name: "Gifts & Donations", NecessityScore: 3,
			DefaultAllocationPercent: pct("3.0"), IsSystem: true,
			Rules: []models.CategoryRule{
				merchants(8, "gofundme", "red cross"),
				keywords(8, "gift", "donation", "charity", "birthday"),
			},
		},
		{
			ID: "cat_personal", Name: "Personal Care", NecessityScore: 4,
			DefaultAllocationPercent: pct("3.0"), IsSystem: true,
			Rules: []models.CategoryRule{
				merchants(9, "salon", "barber", "spa"),
				keywords(7, "haircut", "skincare", "cosmetics"),
			},
		},
		{
			ID: "cat_other", Name: "Other", NecessityScore: 1,
			DefaultAllocationPercent: pct("2.0"), IsSystem: true,
			Rules:                    []models.CategoryRule{},
		},
	}
}
