package services

import (
	"testing"

	"github.com/shopspring/decimal"

	"budgetwise/internal/models"
	"budgetwise/internal/testutil"
)

func TestCreateUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	users := NewUserService(db)

	user, err := users.CreateUser("Jordan@Example.com", "password123", "Jordan Doe")
	testutil.AssertNoError(t, err)

	if user.Email != "jordan@example.com" {
		t.Errorf("email = %q, want lowercased", user.Email)
	}
	if user.Password == "password123" {
		t.Error("password should be hashed")
	}
	if user.RiskTolerance != models.RiskToleranceModerate {
		t.Errorf("risk tolerance = %q, want moderate default", user.RiskTolerance)
	}

	_, err = users.CreateUser("jordan@example.com", "password123", "Jordan Doe")
	testutil.AssertAppError(t, err, "DUPLICATE_EMAIL")

	_, err = users.CreateUser("", "", "")
	testutil.AssertAppError(t, err, "VALIDATION_ERROR")
}

func TestAttemptLogin(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	users := NewUserService(db)

	created, err := users.CreateUser("casey@example.com", "s3cretpass", "Casey")
	testutil.AssertNoError(t, err)

	user, err := users.AttemptLogin("casey@example.com", "s3cretpass")
	testutil.AssertNoError(t, err)
	if user.ID != created.ID {
		t.Error("login returned wrong user")
	}
	if user.LastLoginAt == nil {
		t.Error("login should record last_login_at")
	}

	_, err = users.AttemptLogin("casey@example.com", "wrong")
	testutil.AssertAppError(t, err, "INVALID_CREDENTIALS")

	// Unknown email gets the same error as a wrong password.
	_, err = users.AttemptLogin("nobody@example.com", "s3cretpass")
	testutil.AssertAppError(t, err, "INVALID_CREDENTIALS")
}

func TestUpdateProfile(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	users := NewUserService(db)

	created, err := users.CreateUser("robin@example.com", "password123", "Robin")
	testutil.AssertNoError(t, err)

	income := decimal.RequireFromString("5000")
	risk := models.RiskToleranceAggressive
	user, err := users.UpdateProfile(created.ID, &income, []string{"Save 20% for emergency fund"}, &risk)
	testutil.AssertNoError(t, err)

	if !user.MonthlyIncome.Valid || !user.MonthlyIncome.Decimal.Equal(income) {
		t.Errorf("income = %+v, want 5000", user.MonthlyIncome)
	}
	if len(user.FinancialGoals) != 1 {
		t.Errorf("goals = %v, want one goal", user.FinancialGoals)
	}
	if user.RiskTolerance != models.RiskToleranceAggressive {
		t.Errorf("risk = %q, want aggressive", user.RiskTolerance)
	}

	// Nil fields leave stored values untouched.
	user, err = users.UpdateProfile(created.ID, nil, nil, nil)
	testutil.AssertNoError(t, err)
	if !user.MonthlyIncome.Valid || len(user.FinancialGoals) != 1 {
		t.Error("nil updates must not clear profile fields")
	}

	negative := decimal.RequireFromString("-1")
	_, err = users.UpdateProfile(created.ID, &negative, nil, nil)
	testutil.AssertAppError(t, err, "VALIDATION_ERROR")

	bad := models.RiskTolerance("reckless")
	_, err = users.UpdateProfile(created.ID, nil, nil, &bad)
	testutil.AssertAppError(t, err, "VALIDATION_ERROR")
}
