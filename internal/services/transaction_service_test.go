package services

import (
	"testing"
	"time"

	"expensematch/internal/models"
	"expensematch/internal/pagination"
	"expensematch/internal/testutil"
)

func TestCreateTransaction(t *testing.T) {
	t.Run("starts_unmatched", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		user := testutil.CreateTestUser(t, db)

		tx, err := svc.CreateTransaction(user.ID, time.Now(), nil, 1250, "STARBUCKS #1234", "STARBUCKS")
		testutil.AssertNoError(t, err)

		if tx.MatchStatus != models.MatchStatusUnmatched {
			t.Errorf("expected unmatched, got %s", tx.MatchStatus)
		}
		if tx.MatchedReceiptID != nil {
			t.Error("expected no matched receipt reference")
		}
	})

	t.Run("accepts_negative_refund_amount", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		user := testutil.CreateTestUser(t, db)

		tx, err := svc.CreateTransaction(user.ID, time.Now(), nil, -1250, "STARBUCKS REFUND", "")
		testutil.AssertNoError(t, err)
		if tx.Amount != -1250 {
			t.Errorf("expected amount -1250, got %d", tx.Amount)
		}
	})

	t.Run("validates_fields", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateTransaction(user.ID, time.Now(), nil, 1250, "", "")
		testutil.AssertAppError(t, err, "INVALID_INPUT")

		_, err = svc.CreateTransaction(user.ID, time.Now(), nil, 0, "STARBUCKS", "")
		testutil.AssertAppError(t, err, "INVALID_INPUT")

		_, err = svc.CreateTransaction(user.ID, time.Time{}, nil, 1250, "STARBUCKS", "")
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestGetUserTransactions(t *testing.T) {
	t.Run("filters_by_match_status", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		user := testutil.CreateTestUser(t, db)

		d := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)
		receipt := testutil.CreateTestReceipt(t, db, user.ID, "Starbucks", 1250, d)
		proposedTx := testutil.CreateTestTransaction(t, db, user.ID, "STARBUCKS #1234", 1250, d)
		testutil.CreateTestProposedMatch(t, db, user.ID, receipt, proposedTx, 95)
		testutil.CreateTestTransaction(t, db, user.ID, "SHELL OIL", 4000, d)

		proposed := models.MatchStatusProposed
		result, err := svc.GetUserTransactions(user.ID, pagination.PageRequest{}, TransactionFilter{MatchStatus: &proposed})
		testutil.AssertNoError(t, err)

		if len(result.Data) != 1 {
			t.Fatalf("expected 1 proposed transaction, got %d", len(result.Data))
		}
		if result.Data[0].ID != proposedTx.ID {
			t.Errorf("expected transaction %d, got %d", proposedTx.ID, result.Data[0].ID)
		}
	})

	t.Run("paginates", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		user := testutil.CreateTestUser(t, db)

		d := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
		for i := 0; i < 5; i++ {
			testutil.CreateTestTransaction(t, db, user.ID, "STARBUCKS", 1000, d.AddDate(0, 0, i))
		}

		result, err := svc.GetUserTransactions(user.ID, pagination.PageRequest{Page: 1, PageSize: 2}, TransactionFilter{})
		testutil.AssertNoError(t, err)

		if len(result.Data) != 2 {
			t.Errorf("expected page of 2, got %d", len(result.Data))
		}
		if result.TotalItems != 5 {
			t.Errorf("expected total 5, got %d", result.TotalItems)
		}
		if result.TotalPages != 3 {
			t.Errorf("expected 3 pages, got %d", result.TotalPages)
		}
	})
}

func TestGetTransactionByID(t *testing.T) {
	t.Run("not_found_for_other_user", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		user := testutil.CreateTestUser(t, db)
		other := testutil.CreateTestUser(t, db)

		d := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)
		tx := testutil.CreateTestTransaction(t, db, user.ID, "STARBUCKS", 1250, d)

		_, err := svc.GetTransactionByID(other.ID, tx.ID)
		testutil.AssertAppError(t, err, "TRANSACTION_NOT_FOUND")
	})
}
