package models

import "time"

// ReceiptStatus represents the processing status of an uploaded receipt.
// The ingestion pipeline owns every transition except Matched, which is set
// by the matching engine's status synchronizer.
type ReceiptStatus string

const (
	ReceiptStatusUploaded       ReceiptStatus = "uploaded"
	ReceiptStatusProcessing     ReceiptStatus = "processing"
	ReceiptStatusReady          ReceiptStatus = "ready"
	ReceiptStatusReviewRequired ReceiptStatus = "review_required"
	ReceiptStatusMatched        ReceiptStatus = "matched"
	ReceiptStatusError          ReceiptStatus = "error"
)

// Matchable reports whether a receipt in this status may enter candidate
// generation or be manually paired.
func (s ReceiptStatus) Matchable() bool {
	return s == ReceiptStatusReady || s == ReceiptStatusReviewRequired
}

// Receipt represents an uploaded expense document with fields extracted by
// the (external) OCR pipeline. Amounts are stored in cents.
type Receipt struct {
	Base
	UserID               uint          `gorm:"not null;index" json:"user_id"`
	Vendor               string        `gorm:"not null" json:"vendor"`
	Amount               int64         `gorm:"type:bigint;not null" json:"amount"`
	ReceiptDate          time.Time     `gorm:"not null;index" json:"receipt_date"`
	Status               ReceiptStatus `gorm:"not null;default:uploaded;index" json:"status"`
	ExtractionConfidence float64       `json:"extraction_confidence"`
}
