package services

import (
	"testing"

	"expensematch/internal/testutil"
)

func TestCreateUser(t *testing.T) {
	t.Run("creates_user_with_hashed_password", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)

		user, err := svc.CreateUser("Alice@Example.com", "secret-password", "Alice", "Doe")
		testutil.AssertNoError(t, err)

		if user.ID == 0 {
			t.Fatal("expected non-zero user ID")
		}
		if user.Email != "alice@example.com" {
			t.Errorf("expected lowercased email, got %s", user.Email)
		}
		if user.Password == "secret-password" {
			t.Error("password must be stored hashed")
		}
		if !svc.VerifyPassword(user, "secret-password") {
			t.Error("expected password to verify")
		}
		if svc.VerifyPassword(user, "wrong-password") {
			t.Error("wrong password must not verify")
		}
	})

	t.Run("rejects_duplicate_email", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)

		_, err := svc.CreateUser("bob@example.com", "secret-password", "", "")
		testutil.AssertNoError(t, err)

		_, err = svc.CreateUser("BOB@example.com", "another-password", "", "")
		testutil.AssertAppError(t, err, "DUPLICATE_EMAIL")
	})

	t.Run("requires_email_and_password", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)

		_, err := svc.CreateUser("", "secret-password", "", "")
		testutil.AssertAppError(t, err, "INVALID_INPUT")

		_, err = svc.CreateUser("carol@example.com", "", "", "")
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestSetAutoApproveThreshold(t *testing.T) {
	t.Run("sets_and_clears_override", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)
		user := testutil.CreateTestUser(t, db)

		threshold := 92.5
		updated, err := svc.SetAutoApproveThreshold(user.ID, &threshold)
		testutil.AssertNoError(t, err)
		if updated.AutoApproveThreshold == nil || *updated.AutoApproveThreshold != 92.5 {
			t.Errorf("expected threshold 92.5, got %v", updated.AutoApproveThreshold)
		}

		cleared, err := svc.SetAutoApproveThreshold(user.ID, nil)
		testutil.AssertNoError(t, err)
		if cleared.AutoApproveThreshold != nil {
			t.Errorf("expected override cleared, got %v", cleared.AutoApproveThreshold)
		}
	})

	t.Run("validates_range", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)
		user := testutil.CreateTestUser(t, db)

		bad := 150.0
		_, err := svc.SetAutoApproveThreshold(user.ID, &bad)
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("unknown_user", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)

		threshold := 90.0
		_, err := svc.SetAutoApproveThreshold(99999, &threshold)
		testutil.AssertAppError(t, err, "USER_NOT_FOUND")
	})
}
