package models

import "time"

// User represents the user model in the database
type User struct {
	Base
	Email     string `gorm:"uniqueIndex;not null" json:"email"`
	Password  string `gorm:"not null" json:"-"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	IsActive  bool   `gorm:"default:true" json:"is_active"`

	// AutoApproveThreshold overrides the engine default for batch approval
	// eligibility. Nil means the configured default applies.
	AutoApproveThreshold *float64   `json:"auto_approve_threshold,omitempty"`
	LastLoginAt          *time.Time `json:"last_login_at,omitempty"`

	Receipts     []Receipt     `gorm:"foreignKey:UserID" json:"receipts,omitempty"`
	Transactions []Transaction `gorm:"foreignKey:UserID" json:"transactions,omitempty"`
}
