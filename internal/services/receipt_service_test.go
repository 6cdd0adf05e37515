package services

import (
	"testing"
	"time"

	"expensematch/internal/models"
	"expensematch/internal/pagination"
	"expensematch/internal/testutil"
)

func TestCreateReceipt(t *testing.T) {
	t.Run("defaults_to_uploaded", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewReceiptService(db)
		user := testutil.CreateTestUser(t, db)

		receipt, err := svc.CreateReceipt(user.ID, "Starbucks", 1250, time.Now(), "", 0.9)
		testutil.AssertNoError(t, err)

		if receipt.Status != models.ReceiptStatusUploaded {
			t.Errorf("expected status uploaded, got %s", receipt.Status)
		}
	})

	t.Run("accepts_pipeline_status", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewReceiptService(db)
		user := testutil.CreateTestUser(t, db)

		receipt, err := svc.CreateReceipt(user.ID, "Starbucks", 1250, time.Now(), models.ReceiptStatusReady, 0.98)
		testutil.AssertNoError(t, err)
		if receipt.Status != models.ReceiptStatusReady {
			t.Errorf("expected status ready, got %s", receipt.Status)
		}
	})

	t.Run("validates_fields", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewReceiptService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateReceipt(user.ID, "", 1250, time.Now(), "", 0.9)
		testutil.AssertAppError(t, err, "INVALID_INPUT")

		_, err = svc.CreateReceipt(user.ID, "Starbucks", 0, time.Now(), "", 0.9)
		testutil.AssertAppError(t, err, "INVALID_INPUT")

		_, err = svc.CreateReceipt(user.ID, "Starbucks", 1250, time.Time{}, "", 0.9)
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestGetUserReceipts(t *testing.T) {
	t.Run("filters_by_status", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewReceiptService(db)
		user := testutil.CreateTestUser(t, db)

		d := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)
		testutil.CreateTestReceipt(t, db, user.ID, "Starbucks", 1250, d)
		testutil.CreateTestReceiptWithStatus(t, db, user.ID, "Shell", 4000, d, models.ReceiptStatusError)

		ready := models.ReceiptStatusReady
		result, err := svc.GetUserReceipts(user.ID, pagination.PageRequest{}, ReceiptFilter{Status: &ready})
		testutil.AssertNoError(t, err)

		if len(result.Data) != 1 {
			t.Fatalf("expected 1 ready receipt, got %d", len(result.Data))
		}
		if result.Data[0].Vendor != "Starbucks" {
			t.Errorf("expected Starbucks, got %s", result.Data[0].Vendor)
		}
	})

	t.Run("filters_by_date_range", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewReceiptService(db)
		user := testutil.CreateTestUser(t, db)

		testutil.CreateTestReceipt(t, db, user.ID, "January", 1000, time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC))
		testutil.CreateTestReceipt(t, db, user.ID, "March", 2000, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC))

		from := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
		result, err := svc.GetUserReceipts(user.ID, pagination.PageRequest{}, ReceiptFilter{FromDate: &from})
		testutil.AssertNoError(t, err)

		if len(result.Data) != 1 || result.Data[0].Vendor != "March" {
			t.Errorf("expected only the March receipt, got %d items", len(result.Data))
		}
	})

	t.Run("scoped_to_user", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewReceiptService(db)
		user := testutil.CreateTestUser(t, db)
		other := testutil.CreateTestUser(t, db)

		d := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)
		testutil.CreateTestReceipt(t, db, other.ID, "Starbucks", 1250, d)

		result, err := svc.GetUserReceipts(user.ID, pagination.PageRequest{}, ReceiptFilter{})
		testutil.AssertNoError(t, err)
		if len(result.Data) != 0 {
			t.Errorf("expected no receipts for this user, got %d", len(result.Data))
		}
	})
}

func TestGetReceiptByID(t *testing.T) {
	t.Run("not_found_for_other_user", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewReceiptService(db)
		user := testutil.CreateTestUser(t, db)
		other := testutil.CreateTestUser(t, db)

		d := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)
		receipt := testutil.CreateTestReceipt(t, db, user.ID, "Starbucks", 1250, d)

		_, err := svc.GetReceiptByID(other.ID, receipt.ID)
		testutil.AssertAppError(t, err, "RECEIPT_NOT_FOUND")
	})
}
