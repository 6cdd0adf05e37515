package models

// ActivityEvent records a matching lifecycle event (confirmed, rejected,
// manual pairing, unmatch) for the external activity feed. Recording is
// fire-and-forget and never blocks the operation that produced the event.
type ActivityEvent struct {
	Base
	EventID      string `gorm:"type:uuid;uniqueIndex" json:"event_id"`
	UserID       uint   `gorm:"not null;index" json:"user_id"`
	Type         string `gorm:"not null" json:"type"`
	ResourceType string `gorm:"not null" json:"resource_type"`
	ResourceID   uint   `json:"resource_id"`
	Payload      string `json:"payload,omitempty"`
}
