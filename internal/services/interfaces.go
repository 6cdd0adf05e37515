package services

import (
	"time"

	"gorm.io/gorm"

	"expensematch/internal/models"
	"expensematch/internal/pagination"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(email, password, firstName, lastName string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id uint) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
	SetAutoApproveThreshold(userID uint, threshold *float64) (*models.User, error)
}

// ReceiptFilter holds optional filter parameters for listing receipts.
type ReceiptFilter struct {
	Status   *models.ReceiptStatus
	FromDate *time.Time
	ToDate   *time.Time
}

// ReceiptServicer defines the contract for receipt intake and lookup.
// Receipts are produced by the external ingestion pipeline; the intake API
// stands in for that hand-off.
type ReceiptServicer interface {
	CreateReceipt(userID uint, vendor string, amount int64, receiptDate time.Time, status models.ReceiptStatus, extractionConfidence float64) (*models.Receipt, error)
	GetUserReceipts(userID uint, page pagination.PageRequest, filter ReceiptFilter) (*pagination.PageResponse[models.Receipt], error)
	GetReceiptByID(userID, receiptID uint) (*models.Receipt, error)
}

// TransactionFilter holds optional filter parameters for listing transactions.
type TransactionFilter struct {
	MatchStatus *models.MatchStatus
	FromDate    *time.Time
	ToDate      *time.Time
}

// TransactionServicer defines the contract for statement transaction intake
// and lookup.
type TransactionServicer interface {
	CreateTransaction(userID uint, transactionDate time.Time, postDate *time.Time, amount int64, description, normalizedVendor string) (*models.Transaction, error)
	GetUserTransactions(userID uint, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error)
	GetTransactionByID(userID, transactionID uint) (*models.Transaction, error)
}

// ProposalItem is a pending proposal together with its classification,
// ready for display in the review queue.
type ProposalItem struct {
	models.ReceiptTransactionMatch
	Tier           string `json:"tier"`
	AutoApprovable bool   `json:"auto_approvable"`
}

// BatchItemResult reports the outcome for a single match in a batch approval.
type BatchItemResult struct {
	MatchID uint   `json:"match_id"`
	Status  string `json:"status"` // "approved" or "skipped"
	Reason  string `json:"reason,omitempty"`
}

// BatchApproveResult summarizes a batch approval run. The batch is not
// atomic: partial success is expected and reported per item.
type BatchApproveResult struct {
	Approved int               `json:"approved"`
	Skipped  int               `json:"skipped"`
	Results  []BatchItemResult `json:"results"`
}

// MatchServicer drives the match state machine. Every state transition runs
// in its own short-lived database transaction with compare-and-swap
// preconditions; a failed precondition surfaces as a Conflict error.
type MatchServicer interface {
	GetMatchByID(userID, matchID uint) (*models.ReceiptTransactionMatch, error)
	GetPendingProposals(userID uint, page pagination.PageRequest, sortKey string) (*pagination.PageResponse[ProposalItem], error)
	ConfirmMatch(userID, matchID uint) (*models.ReceiptTransactionMatch, error)
	RejectMatch(userID, matchID uint) (*models.ReceiptTransactionMatch, error)
	CreateManualMatch(userID, receiptID, transactionID uint) (*models.ReceiptTransactionMatch, error)
	Unmatch(userID, matchID uint) (*models.ReceiptTransactionMatch, error)
	BatchApprove(userID uint, matchIDs []uint, minConfidence float64) (*BatchApproveResult, error)
}

// ProposalRunSummary reports one candidate generation run.
type ProposalRunSummary struct {
	ReceiptsProcessed int `json:"receipts_processed"`
	Proposed          int `json:"proposed"`
	Reevaluated       int `json:"reevaluated"`
}

// ProposalServicer generates match proposals. Generation is incremental:
// a run processes at most the configured batch of receipts so large backlogs
// are worked off across runs instead of in one giant unit of work.
type ProposalServicer interface {
	GenerateForReceipt(userID, receiptID uint) (*models.ReceiptTransactionMatch, error)
	GenerateForUser(userID uint) (*ProposalRunSummary, error)
	GenerateSweep() error
}

// AliasServicer maintains the learned vendor alias store. Reinforce and
// Decay close the feedback loop from user decisions and run inside the
// caller's database transaction; DecayStale is the scheduled entrypoint for
// time-based decay of unused aliases. FindAlias is the scorer's read path.
type AliasServicer interface {
	FindAlias(userID uint, canonicalName, aliasPattern string) (*models.VendorAlias, error)
	Reinforce(tx *gorm.DB, userID uint, canonicalName, aliasPattern string) error
	Decay(tx *gorm.DB, userID uint, canonicalName, aliasPattern string) error
	ListAliases(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.VendorAlias], error)
	DecayStale(olderThan time.Time) (int64, error)
}

// EventServicer records activity events for the external feed. Recording is
// fire-and-forget: failures are logged, never propagated.
type EventServicer interface {
	Record(userID uint, eventType, resourceType string, resourceID uint, payload map[string]interface{})
	ListEvents(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.ActivityEvent], error)
}
