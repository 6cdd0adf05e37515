package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	apperrors "expensematch/internal/errors"
	"expensematch/internal/models"
	"expensematch/internal/pagination"
)

// transactionService handles statement transaction intake and lookup.
type transactionService struct {
	db *gorm.DB
}

// NewTransactionService creates a new TransactionServicer.
func NewTransactionService(db *gorm.DB) TransactionServicer {
	return &transactionService{db: db}
}

// CreateTransaction stores a statement line handed off by the import
// pipeline. New transactions always start unmatched.
func (s *transactionService) CreateTransaction(userID uint, transactionDate time.Time, postDate *time.Time, amount int64, description, normalizedVendor string) (*models.Transaction, error) {
	if description == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "description is required")
	}
	if amount == 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be non-zero")
	}
	if transactionDate.IsZero() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "transaction date is required")
	}

	transaction := &models.Transaction{
		UserID:           userID,
		TransactionDate:  transactionDate,
		PostDate:         postDate,
		Amount:           amount,
		Description:      description,
		NormalizedVendor: normalizedVendor,
		MatchStatus:      models.MatchStatusUnmatched,
	}

	if err := s.db.Create(transaction).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return transaction, nil
}

// GetUserTransactions retrieves a paginated, filtered list of a user's transactions.
func (s *transactionService) GetUserTransactions(userID uint, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
	page.Defaults()

	base := s.db.Model(&models.Transaction{}).Where("user_id = ?", userID)
	if filter.MatchStatus != nil {
		base = base.Where("match_status = ?", *filter.MatchStatus)
	}
	if filter.FromDate != nil {
		base = base.Where("transaction_date >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		base = base.Where("transaction_date <= ?", *filter.ToDate)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var transactions []models.Transaction
	if err := base.Scopes(pagination.Paginate(page)).
		Order("transaction_date DESC").
		Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(transactions, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetTransactionByID retrieves a transaction by ID for a specific user
func (s *transactionService) GetTransactionByID(userID, transactionID uint) (*models.Transaction, error) {
	var transaction models.Transaction
	if err := s.db.Where("id = ? AND user_id = ?", transactionID, userID).First(&transaction).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &transaction, nil
}
