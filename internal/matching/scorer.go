package matching

import (
	"math"
	"strings"
	"time"

	"github.com/texttheater/golang-levenshtein/levenshtein"

	"expensematch/internal/models"
)

// Component score maxima. The total is the sum of the three components,
// clamped to [0,100].
const (
	MaxAmountScore = 40.0
	MaxDateScore   = 35.0
	MaxVendorScore = 25.0
)

// Similarity bands for the fuzzy vendor comparison.
const (
	vendorExactScore  = 25.0
	vendorCloseScore  = 20.0 // similarity > 0.90
	vendorLooseScore  = 15.0 // similarity > 0.80
	vendorCloseCutoff = 0.90
	vendorLooseCutoff = 0.80
)

// Breakdown is the scored result for one candidate pair.
type Breakdown struct {
	Amount float64
	Date   float64
	Vendor float64
	Total  float64
}

// Score computes the confidence score for a receipt/transaction pair.
// alias is the best known vendor alias for the pair, or nil; its confidence
// weighs the vendor component only and never touches amount or date scoring.
// Score is a pure function: same inputs, same breakdown.
func Score(receipt *models.Receipt, tx *models.Transaction, alias *models.VendorAlias) Breakdown {
	b := Breakdown{
		Amount: amountScore(receipt.Amount, tx.Amount),
		Date:   dateScore(receipt.ReceiptDate, tx.TransactionDate),
		Vendor: vendorScore(receipt.Vendor, txVendorText(tx), alias),
	}
	b.Total = math.Min(100, math.Max(0, b.Amount+b.Date+b.Vendor))
	return b
}

// txVendorText picks the best vendor text available on the transaction side.
func txVendorText(tx *models.Transaction) string {
	if tx.NormalizedVendor != "" {
		return tx.NormalizedVendor
	}
	return tx.Description
}

// amountScore compares amounts by absolute value so refunds (negative
// statement lines) score against positive receipt totals.
//
// exact = 40, within 1% = 35, within 5% = 25, then scaled down toward zero
// proportional to the relative difference.
func amountScore(receiptAmount, txAmount int64) float64 {
	a := math.Abs(float64(receiptAmount))
	b := math.Abs(float64(txAmount))

	if a == b {
		return MaxAmountScore
	}

	base := math.Max(a, 1)
	relDiff := math.Abs(a-b) / base

	switch {
	case relDiff <= 0.01:
		return 35
	case relDiff <= 0.05:
		return 25
	default:
		return math.Max(0, 25*(1-relDiff))
	}
}

// dateScore compares calendar days, ignoring time-of-day. Same day = 35,
// ±1 day = 30, within ±3 days = 20, beyond that = 0.
func dateScore(receiptDate, txDate time.Time) float64 {
	days := calendarDaysApart(receiptDate, txDate)
	switch {
	case days == 0:
		return MaxDateScore
	case days == 1:
		return 30
	case days <= 3:
		return 20
	default:
		return 0
	}
}

func calendarDaysApart(a, b time.Time) int {
	ad := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	bd := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	days := int(math.Abs(ad.Sub(bd).Hours()) / 24)
	return days
}

// vendorScore compares the receipt's extracted vendor with the transaction's
// vendor text. When an alias is known, the alias substitution is scored as
// well, weighted by the alias confidence, and the better of the two results
// wins. A learned alias can only help, never hurt.
func vendorScore(receiptVendor, txVendor string, alias *models.VendorAlias) float64 {
	raw := similarityScore(NormalizeVendor(receiptVendor), NormalizeVendor(txVendor))

	if alias == nil {
		return raw
	}

	aliased := similarityScore(NormalizeVendor(receiptVendor), NormalizeVendor(alias.CanonicalName))
	aliased *= clamp01(alias.Confidence)

	return math.Max(raw, aliased)
}

func similarityScore(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return vendorExactScore
	}

	sim := similarity(a, b)
	switch {
	case sim > vendorCloseCutoff:
		return vendorCloseScore
	case sim > vendorLooseCutoff:
		return vendorLooseScore
	default:
		return 0
	}
}

// similarity returns a normalized measure in [0,1] combining edit distance
// with a containment check, so "STARBUCKS" still scores high against
// "STARBUCKS 1234" where plain edit distance would not.
func similarity(a, b string) float64 {
	dist := levenshtein.DistanceForStrings([]rune(a), []rune(b), levenshtein.DefaultOptions)
	maxLen := math.Max(float64(len([]rune(a))), float64(len([]rune(b))))
	seq := 1 - float64(dist)/maxLen

	shorter, longer := a, b
	if len(shorter) > len(longer) {
		shorter, longer = longer, shorter
	}
	if len(shorter) >= 4 && strings.Contains(longer, shorter) {
		seq = math.Max(seq, 0.91)
	}

	return seq
}

// NormalizeVendor uppercases vendor text and strips punctuation, collapsing
// runs of whitespace. Digits are kept: store numbers are handled by the
// containment check in similarity, not by guessing at what to strip.
func NormalizeVendor(name string) string {
	var sb strings.Builder
	lastSpace := true
	for _, r := range strings.ToUpper(strings.TrimSpace(name)) {
		switch {
		case r >= 'A' && r <= 'Z' || r >= '0' && r <= '9':
			sb.WriteRune(r)
			lastSpace = false
		default:
			if !lastSpace {
				sb.WriteRune(' ')
				lastSpace = true
			}
		}
	}
	return strings.TrimSpace(sb.String())
}

func clamp01(v float64) float64 {
	return math.Min(1, math.Max(0, v))
}
