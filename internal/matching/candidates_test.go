package matching

import (
	"testing"
	"time"
)

func TestDateWindowInclusive(t *testing.T) {
	receiptDate := time.Date(2025, 3, 15, 14, 30, 0, 0, time.UTC)
	from, to := DateWindow(receiptDate, 7)

	expectedFrom := time.Date(2025, 3, 8, 0, 0, 0, 0, time.UTC)
	if !from.Equal(expectedFrom) {
		t.Errorf("expected window start %v, got %v", expectedFrom, from)
	}

	// Transactions anywhere on the final day are inside the window.
	endOfLastDay := time.Date(2025, 3, 22, 23, 59, 59, 0, time.UTC)
	if endOfLastDay.After(to) {
		t.Errorf("end of last day %v should be within window ending %v", endOfLastDay, to)
	}
	nextDay := time.Date(2025, 3, 23, 0, 0, 0, 0, time.UTC)
	if !nextDay.After(to) {
		t.Errorf("day after window %v should be outside window ending %v", nextDay, to)
	}
}

func TestAmountBand(t *testing.T) {
	lo, hi := AmountBand(10000, 0.20)
	if lo != 8000 || hi != 12000 {
		t.Errorf("expected band [8000, 12000], got [%d, %d]", lo, hi)
	}

	// Negative receipt totals band on the absolute value.
	lo, hi = AmountBand(-10000, 0.20)
	if lo != 8000 || hi != 12000 {
		t.Errorf("expected band [8000, 12000] for refund, got [%d, %d]", lo, hi)
	}

	// Band floor never goes negative.
	lo, _ = AmountBand(10, 2.0)
	if lo != 0 {
		t.Errorf("expected floor 0, got %d", lo)
	}
}
