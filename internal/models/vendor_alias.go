package models

import "time"

// VendorAlias is a learned mapping from a raw statement vendor pattern to a
// canonical vendor name, with a confidence weight maintained by the feedback
// loop. Confidence is always within [0,1]: reinforced on confirmed matches,
// decayed on rejections and on long disuse.
type VendorAlias struct {
	Base
	UserID        uint       `gorm:"not null;index" json:"user_id"`
	CanonicalName string     `gorm:"not null;index" json:"canonical_name"`
	AliasPattern  string     `gorm:"not null;index" json:"alias_pattern"`
	Confidence    float64    `gorm:"not null;default:0.5" json:"confidence"`
	MatchCount    int        `gorm:"not null;default:0" json:"match_count"`
	LastMatchedAt *time.Time `json:"last_matched_at,omitempty"`
}
