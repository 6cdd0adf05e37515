package matching

// Tier classifies a total score into an actionable confidence band.
type Tier string

const (
	TierHigh    Tier = "high"     // >= 90
	TierMedium  Tier = "medium"   // 70-89
	TierLow     Tier = "low"      // 50-69
	TierVeryLow Tier = "very-low" // < 50
)

// Classify maps a total score to its tier.
func Classify(score float64) Tier {
	switch {
	case score >= 90:
		return TierHigh
	case score >= 70:
		return TierMedium
	case score >= 50:
		return TierLow
	default:
		return TierVeryLow
	}
}

// Decision is the classifier's verdict on a scored candidate.
type Decision struct {
	Tier Tier

	// Propose indicates the candidate clears the proposal threshold and
	// should be persisted as a proposed match. Below-threshold candidates
	// are discarded to keep the review queue quiet.
	Propose bool

	// AutoApprovable marks the proposal eligible for batch approval. This
	// flag alone never changes state.
	AutoApprovable bool
}

// Decide classifies a score against the configured thresholds. userThreshold,
// when non-nil, overrides the configured auto-approve threshold for this user.
func Decide(score float64, cfg Config, userThreshold *float64) Decision {
	autoApprove := cfg.AutoApproveThreshold
	if userThreshold != nil {
		autoApprove = *userThreshold
	}
	return Decision{
		Tier:           Classify(score),
		Propose:        score >= cfg.ProposalThreshold,
		AutoApprovable: score >= cfg.ProposalThreshold && score >= autoApprove,
	}
}
