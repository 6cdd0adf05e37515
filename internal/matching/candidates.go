package matching

import "time"

// DateWindow returns the inclusive [from, to] range of transaction dates that
// may be candidates for a receipt dated receiptDate.
func DateWindow(receiptDate time.Time, windowDays int) (time.Time, time.Time) {
	day := time.Date(receiptDate.Year(), receiptDate.Month(), receiptDate.Day(), 0, 0, 0, 0, receiptDate.Location())
	from := day.AddDate(0, 0, -windowDays)
	to := day.AddDate(0, 0, windowDays+1).Add(-time.Nanosecond)
	return from, to
}

// AmountBand returns the inclusive [min, max] absolute-amount band for the
// candidate pre-filter. The band is deliberately generous; fine amount
// discrimination belongs to the scorer.
func AmountBand(amount int64, bandPct float64) (int64, int64) {
	abs := amount
	if abs < 0 {
		abs = -abs
	}
	delta := int64(float64(abs) * bandPct)
	lo := abs - delta
	if lo < 0 {
		lo = 0
	}
	return lo, abs + delta
}
