// Package matching implements the pure scoring and classification core of the
// receipt-transaction matching engine. Everything in this package is a
// deterministic function of its inputs; persistence and state transitions
// live in the services layer.
package matching

// Config holds the tunable knobs of the matching engine. Values come from the
// application config at wiring time; tests construct them directly.
type Config struct {
	// DateWindowDays bounds candidate generation: transactions dated more
	// than this many days from the receipt date are never candidates.
	DateWindowDays int

	// AmountBandPct is the generous pre-filter band around the receipt
	// amount (0.20 = ±20%). Kept wide so tip/tax variants are not lost;
	// the scorer does the fine discrimination.
	AmountBandPct float64

	// ProposalThreshold is the minimum total score for a candidate to be
	// persisted as a proposed match.
	ProposalThreshold float64

	// AutoApproveThreshold marks proposals eligible for batch approval.
	// Users may override it per account.
	AutoApproveThreshold float64
}

// DefaultConfig returns the engine defaults.
func DefaultConfig() Config {
	return Config{
		DateWindowDays:       7,
		AmountBandPct:        0.20,
		ProposalThreshold:    50,
		AutoApproveThreshold: 85,
	}
}
