package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"expensematch/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates a user with a hashed password and unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	email := fmt.Sprintf("user%d@test.com", nextID())
	return CreateTestUserWithEmail(t, db, email)
}

// CreateTestUserWithEmail creates a user with the given email.
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:    email,
		Password: string(hash),
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestReceipt creates a ready receipt for the given vendor, amount
// (in cents), and date.
func CreateTestReceipt(t *testing.T, db *gorm.DB, userID uint, vendor string, amount int64, date time.Time) *models.Receipt {
	t.Helper()
	return CreateTestReceiptWithStatus(t, db, userID, vendor, amount, date, models.ReceiptStatusReady)
}

// CreateTestReceiptWithStatus creates a receipt in the given status.
func CreateTestReceiptWithStatus(t *testing.T, db *gorm.DB, userID uint, vendor string, amount int64, date time.Time, status models.ReceiptStatus) *models.Receipt {
	t.Helper()

	receipt := &models.Receipt{
		UserID:               userID,
		Vendor:               vendor,
		Amount:               amount,
		ReceiptDate:          date,
		Status:               status,
		ExtractionConfidence: 0.95,
	}
	if err := db.Create(receipt).Error; err != nil {
		t.Fatalf("failed to create test receipt: %v", err)
	}
	return receipt
}

// CreateTestTransaction creates an unmatched statement transaction with the
// given description, signed amount (in cents), and date.
func CreateTestTransaction(t *testing.T, db *gorm.DB, userID uint, description string, amount int64, date time.Time) *models.Transaction {
	t.Helper()

	tx := &models.Transaction{
		UserID:          userID,
		TransactionDate: date,
		Amount:          amount,
		Description:     description,
		MatchStatus:     models.MatchStatusUnmatched,
	}
	if err := db.Create(tx).Error; err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}
	return tx
}

// CreateTestProposedMatch creates a proposed match between the given receipt
// and transaction and flips the transaction to proposed, mirroring what
// candidate generation persists.
func CreateTestProposedMatch(t *testing.T, db *gorm.DB, userID uint, receipt *models.Receipt, tx *models.Transaction, score float64) *models.ReceiptTransactionMatch {
	t.Helper()

	match := &models.ReceiptTransactionMatch{
		UserID:        userID,
		ReceiptID:     receipt.ID,
		TransactionID: tx.ID,
		Score:         score,
		AmountScore:   score * 0.40,
		DateScore:     score * 0.35,
		VendorScore:   score * 0.25,
		Method:        models.MatchMethodAuto,
		State:         models.MatchStateProposed,
	}
	if err := db.Create(match).Error; err != nil {
		t.Fatalf("failed to create test match: %v", err)
	}

	if err := db.Model(tx).Update("match_status", models.MatchStatusProposed).Error; err != nil {
		t.Fatalf("failed to mark transaction proposed: %v", err)
	}
	tx.MatchStatus = models.MatchStatusProposed

	return match
}

// CreateTestVendorAlias creates an alias with the given confidence.
func CreateTestVendorAlias(t *testing.T, db *gorm.DB, userID uint, canonical, pattern string, confidence float64) *models.VendorAlias {
	t.Helper()

	now := time.Now()
	alias := &models.VendorAlias{
		UserID:        userID,
		CanonicalName: canonical,
		AliasPattern:  pattern,
		Confidence:    confidence,
		MatchCount:    1,
		LastMatchedAt: &now,
	}
	if err := db.Create(alias).Error; err != nil {
		t.Fatalf("failed to create test vendor alias: %v", err)
	}
	return alias
}
