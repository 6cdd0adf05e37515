package models

import "time"

// MatchStatus represents the match lifecycle state of a transaction.
type MatchStatus string

const (
	MatchStatusUnmatched MatchStatus = "unmatched"
	MatchStatusProposed  MatchStatus = "proposed"
	MatchStatusMatched   MatchStatus = "matched"
)

// Transaction represents an imported bank or card statement line.
// Amount is signed and stored in cents; negative amounts are refunds.
type Transaction struct {
	Base
	UserID           uint        `gorm:"not null;index" json:"user_id"`
	TransactionDate  time.Time   `gorm:"not null;index" json:"transaction_date"`
	PostDate         *time.Time  `json:"post_date,omitempty"`
	Amount           int64       `gorm:"type:bigint;not null" json:"amount"`
	Description      string      `gorm:"not null" json:"description"`
	NormalizedVendor string      `json:"normalized_vendor,omitempty"`
	MatchStatus      MatchStatus `gorm:"not null;default:unmatched;index" json:"match_status"`
	MatchedReceiptID *uint       `json:"matched_receipt_id,omitempty"`
}
