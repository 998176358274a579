// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"regexp"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var budgetMonthRegex = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("budget_month", validateBudgetMonth)
		_ = v.RegisterValidation("match_type", validateMatchType)
		_ = v.RegisterValidation("risk_tolerance", validateRiskTolerance)
		_ = v.RegisterValidation("expense_date", validateExpenseDate)
	}
}

// validateBudgetMonth accepts calendar months in YYYY-MM form.
func validateBudgetMonth(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if !budgetMonthRegex.MatchString(s) {
		return false
	}
	_, err := time.Parse("2006-01", s)
	return err == nil
}

func validateMatchType(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "exact", "substring", "regex":
		return true
	}
	return false
}

func validateRiskTolerance(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "conservative", "moderate", "aggressive":
		return true
	}
	return false
}

// validateExpenseDate accepts RFC 3339 dates or bare YYYY-MM-DD dates.
func validateExpenseDate(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if _, err := time.Parse(time.RFC3339, s); err == nil {
		return true
	}
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}
