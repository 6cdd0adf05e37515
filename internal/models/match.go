package models

import "time"

// MatchMethod distinguishes engine-proposed matches from explicit user pairings.
type MatchMethod string

const (
	MatchMethodAuto   MatchMethod = "auto"
	MatchMethodManual MatchMethod = "manual"
)

// MatchState is the lifecycle state of a match record. Rejected and unmatched
// records are retained as history for audit and the alias feedback loop;
// only proposed and confirmed records are considered active.
type MatchState string

const (
	MatchStateProposed  MatchState = "proposed"
	MatchStateConfirmed MatchState = "confirmed"
	MatchStateRejected  MatchState = "rejected"
	MatchStateUnmatched MatchState = "unmatched"
)

// Active reports whether the match currently binds its receipt and transaction.
func (s MatchState) Active() bool {
	return s == MatchStateProposed || s == MatchStateConfirmed
}

// ReceiptTransactionMatch links a receipt to a statement transaction together
// with the score breakdown that produced the link. Records are never
// hard-deleted; rejection and unmatching only change State.
type ReceiptTransactionMatch struct {
	Base
	UserID        uint        `gorm:"not null;index" json:"user_id"`
	ReceiptID     uint        `gorm:"not null;index" json:"receipt_id"`
	TransactionID uint        `gorm:"not null;index" json:"transaction_id"`
	Score         float64     `gorm:"not null" json:"score"`
	AmountScore   float64     `gorm:"not null" json:"amount_score"`
	DateScore     float64     `gorm:"not null" json:"date_score"`
	VendorScore   float64     `gorm:"not null" json:"vendor_score"`
	Method        MatchMethod `gorm:"not null" json:"method"`
	State         MatchState  `gorm:"not null;default:proposed;index" json:"state"`
	ConfirmedAt   *time.Time  `json:"confirmed_at,omitempty"`
	ConfirmedBy   *uint       `json:"confirmed_by,omitempty"`
	RejectedAt    *time.Time  `json:"rejected_at,omitempty"`

	Receipt     Receipt     `gorm:"foreignKey:ReceiptID" json:"receipt,omitempty"`
	Transaction Transaction `gorm:"foreignKey:TransactionID" json:"transaction,omitempty"`
}
