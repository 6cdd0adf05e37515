package services

import (
	"errors"

	"gorm.io/gorm"

	apperrors "expensematch/internal/errors"
	"expensematch/internal/logger"
	"expensematch/internal/matching"
	"expensematch/internal/models"
)

// proposalService generates match proposals for unmatched receipts. It only
// reads receipts and transactions; the single write it performs is persisting
// a proposed match (and flipping the transaction to proposed) when a
// candidate clears the threshold. Reads are not transactionally consistent
// with concurrent confirms: a candidate generated against a transaction that
// gets matched moments later is caught by the compare-and-swap at persist
// time, not by locking ahead.
type proposalService struct {
	db      *gorm.DB
	cfg     matching.Config
	batch   int
	aliases AliasServicer
	events  EventServicer
}

// NewProposalService creates a new ProposalServicer. batchSize bounds how
// many receipts a single GenerateForUser run processes.
func NewProposalService(db *gorm.DB, cfg matching.Config, batchSize int, aliases AliasServicer, events EventServicer) ProposalServicer {
	if batchSize <= 0 {
		batchSize = 100
	}
	return &proposalService{db: db, cfg: cfg, batch: batchSize, aliases: aliases, events: events}
}

// GenerateForReceipt evaluates candidates for a single receipt and persists
// the best one as a proposed match if it clears the proposal threshold.
// Returns nil without error when no candidate qualifies. Re-running for a
// receipt that already has a proposed match re-scores that pair in place.
func (s *proposalService) GenerateForReceipt(userID, receiptID uint) (*models.ReceiptTransactionMatch, error) {
	var receipt models.Receipt
	if err := s.db.Where("id = ? AND user_id = ?", receiptID, userID).First(&receipt).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrReceiptNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if !receipt.Status.Matchable() {
		return nil, apperrors.ErrReceiptNotReady
	}

	existing, err := s.activeMatchForReceipt(receipt.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if existing.State == models.MatchStateConfirmed {
			return existing, nil
		}
		return s.reevaluate(&receipt, existing)
	}

	return s.propose(&receipt)
}

// GenerateForUser runs candidate generation over a batch of the user's
// matchable receipts. Large backlogs are worked off incrementally: each call
// handles at most the configured batch, oldest receipts first.
func (s *proposalService) GenerateForUser(userID uint) (*ProposalRunSummary, error) {
	var receipts []models.Receipt
	err := s.db.Where("user_id = ? AND status IN ?", userID,
		[]models.ReceiptStatus{models.ReceiptStatusReady, models.ReceiptStatusReviewRequired}).
		Order("id ASC").
		Limit(s.batch).
		Find(&receipts).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	summary := &ProposalRunSummary{}
	for i := range receipts {
		receipt := &receipts[i]
		summary.ReceiptsProcessed++

		existing, err := s.activeMatchForReceipt(receipt.ID)
		if err != nil {
			return nil, err
		}

		switch {
		case existing != nil && existing.State == models.MatchStateConfirmed:
			// Nothing to do; the status synchronizer will have moved the
			// receipt out of this queue already.
		case existing != nil:
			if _, err := s.reevaluate(receipt, existing); err != nil {
				return nil, err
			}
			summary.Reevaluated++
		default:
			match, err := s.propose(receipt)
			if err != nil {
				return nil, err
			}
			if match != nil {
				summary.Proposed++
			}
		}
	}

	logger.Get().Infow("candidate generation run",
		"user_id", userID,
		"receipts", summary.ReceiptsProcessed,
		"proposed", summary.Proposed,
		"reevaluated", summary.Reevaluated,
	)
	return summary, nil
}

// GenerateSweep runs GenerateForUser for every user that currently has
// matchable receipts. Invoked from the background job after imports.
func (s *proposalService) GenerateSweep() error {
	var userIDs []uint
	err := s.db.Model(&models.Receipt{}).
		Where("status IN ?", []models.ReceiptStatus{models.ReceiptStatusReady, models.ReceiptStatusReviewRequired}).
		Distinct("user_id").
		Pluck("user_id", &userIDs).Error
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	for _, userID := range userIDs {
		if _, err := s.GenerateForUser(userID); err != nil {
			// One user's failure must not starve the others.
			logger.Get().Errorw("candidate generation failed", "user_id", userID, "error", err)
		}
	}
	return nil
}

func (s *proposalService) activeMatchForReceipt(receiptID uint) (*models.ReceiptTransactionMatch, error) {
	var match models.ReceiptTransactionMatch
	err := s.db.Where("receipt_id = ? AND state IN ?", receiptID,
		[]models.MatchState{models.MatchStateProposed, models.MatchStateConfirmed}).
		First(&match).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &match, nil
}

// propose scores all candidates in the date/amount window and persists the
// best one if it clears the proposal threshold.
func (s *proposalService) propose(receipt *models.Receipt) (*models.ReceiptTransactionMatch, error) {
	candidates, err := s.candidateTransactions(receipt)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	var best *models.Transaction
	var bestScore matching.Breakdown
	for i := range candidates {
		tx := &candidates[i]
		breakdown, err := s.score(receipt, tx)
		if err != nil {
			return nil, err
		}
		// Highest total wins; ties break toward the lower transaction ID
		// so repeated runs stay deterministic.
		if best == nil || breakdown.Total > bestScore.Total {
			best = tx
			bestScore = breakdown
		}
	}

	decision := matching.Decide(bestScore.Total, s.cfg, nil)
	if !decision.Propose {
		return nil, nil
	}

	match := &models.ReceiptTransactionMatch{
		UserID:        receipt.UserID,
		ReceiptID:     receipt.ID,
		TransactionID: best.ID,
		Score:         bestScore.Total,
		AmountScore:   bestScore.Amount,
		DateScore:     bestScore.Date,
		VendorScore:   bestScore.Vendor,
		Method:        models.MatchMethodAuto,
		State:         models.MatchStateProposed,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		// The transaction may have been claimed since we read it; the CAS
		// detects that and the pair is simply dropped from this run.
		res := tx.Model(&models.Transaction{}).
			Where("id = ? AND match_status = ?", best.ID, models.MatchStatusUnmatched).
			Update("match_status", models.MatchStatusProposed)
		if res.Error != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
		}
		if res.RowsAffected == 0 {
			return apperrors.ErrMatchConflict
		}
		if err := tx.Create(match).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if errors.Is(err, apperrors.ErrMatchConflict) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	s.events.Record(receipt.UserID, EventMatchProposed, "match", match.ID,
		map[string]interface{}{"receipt_id": receipt.ID, "transaction_id": best.ID, "score": match.Score})

	return match, nil
}

// reevaluate re-scores an existing proposed pair with current data (fresher
// alias confidence, corrected receipt fields). Scores are replaced wholesale:
// re-running candidate generation is idempotent, never compounding.
func (s *proposalService) reevaluate(receipt *models.Receipt, match *models.ReceiptTransactionMatch) (*models.ReceiptTransactionMatch, error) {
	if match.Method == models.MatchMethodManual {
		return match, nil
	}

	var transaction models.Transaction
	if err := s.db.First(&transaction, match.TransactionID).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	breakdown, err := s.score(receipt, &transaction)
	if err != nil {
		return nil, err
	}
	if breakdown.Total == match.Score {
		return match, nil
	}

	updates := map[string]interface{}{
		"score":        breakdown.Total,
		"amount_score": breakdown.Amount,
		"date_score":   breakdown.Date,
		"vendor_score": breakdown.Vendor,
	}
	if err := s.db.Model(match).Where("state = ?", models.MatchStateProposed).Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	match.Score = breakdown.Total
	match.AmountScore = breakdown.Amount
	match.DateScore = breakdown.Date
	match.VendorScore = breakdown.Vendor
	return match, nil
}

func (s *proposalService) score(receipt *models.Receipt, tx *models.Transaction) (matching.Breakdown, error) {
	alias, err := s.aliases.FindAlias(receipt.UserID,
		matching.NormalizeVendor(receipt.Vendor),
		matching.NormalizeVendor(transactionVendorText(tx)))
	if err != nil {
		return matching.Breakdown{}, err
	}
	return matching.Score(receipt, tx, alias), nil
}

// candidateTransactions selects this user's unmatched transactions inside
// the date window and the generous amount band, either sign.
func (s *proposalService) candidateTransactions(receipt *models.Receipt) ([]models.Transaction, error) {
	from, to := matching.DateWindow(receipt.ReceiptDate, s.cfg.DateWindowDays)
	lo, hi := matching.AmountBand(receipt.Amount, s.cfg.AmountBandPct)

	var candidates []models.Transaction
	err := s.db.Where("user_id = ? AND match_status = ?", receipt.UserID, models.MatchStatusUnmatched).
		Where("transaction_date BETWEEN ? AND ?", from, to).
		Where("(amount BETWEEN ? AND ?) OR (amount BETWEEN ? AND ?)", lo, hi, -hi, -lo).
		Order("id ASC").
		Find(&candidates).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return candidates, nil
}
