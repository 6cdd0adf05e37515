package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	apperrors "expensematch/internal/errors"
	"expensematch/internal/matching"
	"expensematch/internal/models"
	"expensematch/internal/pagination"
)

// matchService drives the match state machine. Every transition is a single
// short-lived database transaction; preconditions are enforced with
// compare-and-swap updates (expected current state in the WHERE clause)
// rather than locks, so concurrent confirms race safely: exactly one wins,
// the loser gets a Conflict.
type matchService struct {
	db      *gorm.DB
	cfg     matching.Config
	aliases AliasServicer
	events  EventServicer
}

// NewMatchService creates a new MatchServicer.
func NewMatchService(db *gorm.DB, cfg matching.Config, aliases AliasServicer, events EventServicer) MatchServicer {
	return &matchService{db: db, cfg: cfg, aliases: aliases, events: events}
}

// proposalSorts maps API sort keys to ORDER BY clauses for the review queue.
var proposalSorts = map[string]string{
	"score": "score DESC",
	"date":  "created_at DESC",
}

// GetMatchByID retrieves a match by ID for a specific user
func (s *matchService) GetMatchByID(userID, matchID uint) (*models.ReceiptTransactionMatch, error) {
	var match models.ReceiptTransactionMatch
	if err := s.db.Where("id = ? AND user_id = ?", matchID, userID).First(&match).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrMatchNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &match, nil
}

// GetPendingProposals retrieves the user's proposed matches awaiting review,
// classified with tier and batch-approval eligibility.
func (s *matchService) GetPendingProposals(userID uint, page pagination.PageRequest, sortKey string) (*pagination.PageResponse[ProposalItem], error) {
	page.Defaults()

	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	base := s.db.Model(&models.ReceiptTransactionMatch{}).
		Where("user_id = ? AND state = ?", userID, models.MatchStateProposed)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var matches []models.ReceiptTransactionMatch
	if err := base.Preload("Receipt").Preload("Transaction").
		Scopes(pagination.Paginate(page), pagination.Sort(sortKey, proposalSorts, proposalSorts["score"])).
		Find(&matches).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	items := make([]ProposalItem, 0, len(matches))
	for _, m := range matches {
		decision := matching.Decide(m.Score, s.cfg, user.AutoApproveThreshold)
		items = append(items, ProposalItem{
			ReceiptTransactionMatch: m,
			Tier:                    string(decision.Tier),
			AutoApprovable:          decision.AutoApprovable,
		})
	}

	result := pagination.NewPageResponse(items, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// ConfirmMatch confirms a proposed match: the match becomes confirmed, the
// transaction becomes matched with a back-reference to the receipt, the
// receipt status is synchronized, and the alias feedback loop is reinforced,
// all in one transactional unit.
func (s *matchService) ConfirmMatch(userID, matchID uint) (*models.ReceiptTransactionMatch, error) {
	match, err := s.GetMatchByID(userID, matchID)
	if err != nil {
		return nil, err
	}
	if match.State != models.MatchStateProposed {
		return nil, apperrors.WithMessage(apperrors.ErrMatchInvalidState,
			fmt.Sprintf("match is %s, only proposed matches can be confirmed", match.State))
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		return s.confirmWithTx(tx, match, userID, models.MatchStatusProposed)
	})
	if err != nil {
		return nil, err
	}

	s.events.Record(userID, EventMatchConfirmed, "match", match.ID,
		map[string]interface{}{"receipt_id": match.ReceiptID, "transaction_id": match.TransactionID, "score": match.Score})

	return s.GetMatchByID(userID, matchID)
}

// confirmWithTx performs the confirm transition inside tx. expectedTxStatus
// is the transaction-side precondition: proposed for engine proposals,
// unmatched for the manual pairing path where no proposal ever existed.
func (s *matchService) confirmWithTx(tx *gorm.DB, match *models.ReceiptTransactionMatch, actorID uint, expectedTxStatus models.MatchStatus) error {
	now := time.Now()

	var receipt models.Receipt
	if err := tx.First(&receipt, match.ReceiptID).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	// A receipt already matched here belongs to a different pairing that won
	// an earlier race; this confirm loses.
	if receipt.Status == models.ReceiptStatusMatched {
		return apperrors.ErrMatchConflict
	}

	res := tx.Model(&models.ReceiptTransactionMatch{}).
		Where("id = ? AND state = ?", match.ID, match.State).
		Updates(map[string]interface{}{
			"state":        models.MatchStateConfirmed,
			"confirmed_at": now,
			"confirmed_by": actorID,
		})
	if res.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrMatchConflict
	}

	res = tx.Model(&models.Transaction{}).
		Where("id = ? AND match_status = ?", match.TransactionID, expectedTxStatus).
		Updates(map[string]interface{}{
			"match_status":       models.MatchStatusMatched,
			"matched_receipt_id": match.ReceiptID,
		})
	if res.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrMatchConflict
	}

	if err := syncReceiptOnConfirm(tx, match.ReceiptID); err != nil {
		return err
	}

	var transaction models.Transaction
	if err := tx.First(&transaction, match.TransactionID).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return s.aliases.Reinforce(tx, match.UserID,
		matching.NormalizeVendor(receipt.Vendor),
		matching.NormalizeVendor(transactionVendorText(&transaction)))
}

// RejectMatch rejects a proposed match. The transaction returns to unmatched,
// the receipt becomes ready again, and the match record is retained with a
// rejection marker for audit and alias decay.
func (s *matchService) RejectMatch(userID, matchID uint) (*models.ReceiptTransactionMatch, error) {
	match, err := s.GetMatchByID(userID, matchID)
	if err != nil {
		return nil, err
	}
	if match.State != models.MatchStateProposed {
		return nil, apperrors.WithMessage(apperrors.ErrMatchInvalidState,
			fmt.Sprintf("match is %s, only proposed matches can be rejected", match.State))
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		now := time.Now()

		res := tx.Model(&models.ReceiptTransactionMatch{}).
			Where("id = ? AND state = ?", match.ID, models.MatchStateProposed).
			Updates(map[string]interface{}{
				"state":       models.MatchStateRejected,
				"rejected_at": now,
			})
		if res.Error != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
		}
		if res.RowsAffected == 0 {
			return apperrors.ErrMatchConflict
		}

		res = tx.Model(&models.Transaction{}).
			Where("id = ? AND match_status = ?", match.TransactionID, models.MatchStatusProposed).
			Updates(map[string]interface{}{
				"match_status":       models.MatchStatusUnmatched,
				"matched_receipt_id": nil,
			})
		if res.Error != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
		}
		if res.RowsAffected == 0 {
			return apperrors.ErrMatchConflict
		}

		if err := syncReceiptOnRelease(tx, match.ReceiptID); err != nil {
			return err
		}

		var receipt models.Receipt
		if err := tx.First(&receipt, match.ReceiptID).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		var transaction models.Transaction
		if err := tx.First(&transaction, match.TransactionID).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		return s.aliases.Decay(tx, match.UserID,
			matching.NormalizeVendor(receipt.Vendor),
			matching.NormalizeVendor(transactionVendorText(&transaction)))
	})
	if err != nil {
		return nil, err
	}

	s.events.Record(userID, EventMatchRejected, "match", match.ID,
		map[string]interface{}{"receipt_id": match.ReceiptID, "transaction_id": match.TransactionID, "score": match.Score})

	return s.GetMatchByID(userID, matchID)
}

// CreateManualMatch pairs a receipt and a transaction directly. Both sides
// must currently be unmatched; the match is created with method=manual and
// confirmed immediately, with no intermediate proposed state persisted.
func (s *matchService) CreateManualMatch(userID, receiptID, transactionID uint) (*models.ReceiptTransactionMatch, error) {
	var receipt models.Receipt
	if err := s.db.Where("id = ? AND user_id = ?", receiptID, userID).First(&receipt).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrReceiptNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	var transaction models.Transaction
	if err := s.db.Where("id = ? AND user_id = ?", transactionID, userID).First(&transaction).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if receipt.Status == models.ReceiptStatusMatched {
		return nil, apperrors.WithMessage(apperrors.ErrMatchInvalidState, "receipt is already matched")
	}
	if !receipt.Status.Matchable() {
		return nil, apperrors.ErrReceiptNotReady
	}
	if transaction.MatchStatus != models.MatchStatusUnmatched {
		return nil, apperrors.ErrTransactionMatched
	}

	var activeCount int64
	s.db.Model(&models.ReceiptTransactionMatch{}).
		Where("receipt_id = ? AND state IN ?", receiptID,
			[]models.MatchState{models.MatchStateProposed, models.MatchStateConfirmed}).
		Count(&activeCount)
	if activeCount > 0 {
		return nil, apperrors.WithMessage(apperrors.ErrMatchInvalidState, "receipt already has an active match")
	}

	alias, err := s.aliases.FindAlias(userID,
		matching.NormalizeVendor(receipt.Vendor),
		matching.NormalizeVendor(transactionVendorText(&transaction)))
	if err != nil {
		return nil, err
	}
	breakdown := matching.Score(&receipt, &transaction, alias)

	match := &models.ReceiptTransactionMatch{
		UserID:        userID,
		ReceiptID:     receiptID,
		TransactionID: transactionID,
		Score:         breakdown.Total,
		AmountScore:   breakdown.Amount,
		DateScore:     breakdown.Date,
		VendorScore:   breakdown.Vendor,
		Method:        models.MatchMethodManual,
		State:         models.MatchStateProposed,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(match).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		// The manual path confirms against an unmatched transaction; a
		// concurrent confirm or import racing us fails the CAS inside.
		return s.confirmWithTx(tx, match, userID, models.MatchStatusUnmatched)
	})
	if err != nil {
		return nil, err
	}

	s.events.Record(userID, EventManualMatch, "match", match.ID,
		map[string]interface{}{"receipt_id": receiptID, "transaction_id": transactionID, "score": match.Score})

	return s.GetMatchByID(userID, match.ID)
}

// Unmatch reverses a confirmed match: both sides return to unmatched/ready
// and the record is retained as history.
func (s *matchService) Unmatch(userID, matchID uint) (*models.ReceiptTransactionMatch, error) {
	match, err := s.GetMatchByID(userID, matchID)
	if err != nil {
		return nil, err
	}
	if match.State != models.MatchStateConfirmed {
		return nil, apperrors.WithMessage(apperrors.ErrMatchInvalidState,
			fmt.Sprintf("match is %s, only confirmed matches can be unmatched", match.State))
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.ReceiptTransactionMatch{}).
			Where("id = ? AND state = ?", match.ID, models.MatchStateConfirmed).
			Update("state", models.MatchStateUnmatched)
		if res.Error != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
		}
		if res.RowsAffected == 0 {
			return apperrors.ErrMatchConflict
		}

		res = tx.Model(&models.Transaction{}).
			Where("id = ? AND match_status = ?", match.TransactionID, models.MatchStatusMatched).
			Updates(map[string]interface{}{
				"match_status":       models.MatchStatusUnmatched,
				"matched_receipt_id": nil,
			})
		if res.Error != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
		}
		if res.RowsAffected == 0 {
			return apperrors.ErrMatchConflict
		}

		return syncReceiptOnRelease(tx, match.ReceiptID)
	})
	if err != nil {
		return nil, err
	}

	s.events.Record(userID, EventMatchUnmatched, "match", match.ID,
		map[string]interface{}{"receipt_id": match.ReceiptID, "transaction_id": match.TransactionID})

	return s.GetMatchByID(userID, matchID)
}

// BatchApprove confirms every listed match whose score clears minConfidence.
// The batch is not atomic: each item is its own transactional unit, failures
// are collected per item, and a partial result is always returned. Re-running
// with the same ids only touches previously skipped items.
func (s *matchService) BatchApprove(userID uint, matchIDs []uint, minConfidence float64) (*BatchApproveResult, error) {
	if len(matchIDs) == 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "match_ids must not be empty")
	}
	if minConfidence < 0 || minConfidence > 100 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "min_confidence must be between 0 and 100")
	}

	result := &BatchApproveResult{Results: make([]BatchItemResult, 0, len(matchIDs))}

	for _, id := range matchIDs {
		item := BatchItemResult{MatchID: id}

		match, err := s.GetMatchByID(userID, id)
		switch {
		case err != nil:
			item.Status = "skipped"
			item.Reason = reasonFromError(err)
		case match.State != models.MatchStateProposed:
			item.Status = "skipped"
			item.Reason = fmt.Sprintf("match is %s", match.State)
		case match.Score < minConfidence:
			item.Status = "skipped"
			item.Reason = fmt.Sprintf("score %.1f below threshold %.1f", match.Score, minConfidence)
		default:
			if _, err := s.ConfirmMatch(userID, id); err != nil {
				item.Status = "skipped"
				item.Reason = reasonFromError(err)
			} else {
				item.Status = "approved"
			}
		}

		if item.Status == "approved" {
			result.Approved++
		} else {
			result.Skipped++
		}
		result.Results = append(result.Results, item)
	}

	s.events.Record(userID, EventBatchApproved, "batch", 0,
		map[string]interface{}{"approved": result.Approved, "skipped": result.Skipped, "min_confidence": minConfidence})

	return result, nil
}

func reasonFromError(err error) string {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "internal error"
}

func transactionVendorText(tx *models.Transaction) string {
	if tx.NormalizedVendor != "" {
		return tx.NormalizedVendor
	}
	return tx.Description
}
