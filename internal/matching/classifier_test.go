package matching

import "testing"

func TestClassifyBoundaries(t *testing.T) {
	tests := []struct {
		score    float64
		expected Tier
	}{
		{100, TierHigh},
		{95, TierHigh},
		{90, TierHigh},
		{89.9, TierMedium},
		{80, TierMedium},
		{70, TierMedium},
		{69.9, TierLow},
		{50, TierLow},
		{49.9, TierVeryLow},
		{0, TierVeryLow},
	}

	for _, tt := range tests {
		if got := Classify(tt.score); got != tt.expected {
			t.Errorf("Classify(%g) = %s, expected %s", tt.score, got, tt.expected)
		}
	}
}

func TestDecideProposalThreshold(t *testing.T) {
	cfg := Config{ProposalThreshold: 50, AutoApproveThreshold: 85}

	if d := Decide(49.9, cfg, nil); d.Propose {
		t.Error("score below threshold should not be proposed")
	}
	if d := Decide(50, cfg, nil); !d.Propose {
		t.Error("score at threshold should be proposed")
	}
}

func TestDecideAutoApprove(t *testing.T) {
	cfg := Config{ProposalThreshold: 50, AutoApproveThreshold: 85}

	if d := Decide(84.9, cfg, nil); d.AutoApprovable {
		t.Error("score below auto-approve threshold should not be auto-approvable")
	}
	if d := Decide(85, cfg, nil); !d.AutoApprovable {
		t.Error("score at auto-approve threshold should be auto-approvable")
	}
}

func TestDecideUserThresholdOverride(t *testing.T) {
	cfg := Config{ProposalThreshold: 50, AutoApproveThreshold: 85}

	strict := 95.0
	if d := Decide(90, cfg, &strict); d.AutoApprovable {
		t.Error("user override should raise the auto-approve bar")
	}

	lenient := 60.0
	if d := Decide(65, cfg, &lenient); !d.AutoApprovable {
		t.Error("user override should lower the auto-approve bar")
	}

	// A lenient override never makes sub-threshold candidates approvable.
	low := 10.0
	if d := Decide(40, cfg, &low); d.Propose || d.AutoApprovable {
		t.Error("below-threshold candidate must stay discarded regardless of override")
	}
}
