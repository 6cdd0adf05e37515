package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	apperrors "expensematch/internal/errors"
	"expensematch/internal/models"
	"expensematch/internal/pagination"
)

// receiptService handles receipt intake and lookup.
type receiptService struct {
	db *gorm.DB
}

// NewReceiptService creates a new ReceiptServicer.
func NewReceiptService(db *gorm.DB) ReceiptServicer {
	return &receiptService{db: db}
}

// CreateReceipt stores a receipt handed off by the ingestion pipeline.
func (s *receiptService) CreateReceipt(userID uint, vendor string, amount int64, receiptDate time.Time, status models.ReceiptStatus, extractionConfidence float64) (*models.Receipt, error) {
	if vendor == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "vendor is required")
	}
	if amount == 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be non-zero")
	}
	if receiptDate.IsZero() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "receipt date is required")
	}
	if status == "" {
		status = models.ReceiptStatusUploaded
	}

	receipt := &models.Receipt{
		UserID:               userID,
		Vendor:               vendor,
		Amount:               amount,
		ReceiptDate:          receiptDate,
		Status:               status,
		ExtractionConfidence: extractionConfidence,
	}

	if err := s.db.Create(receipt).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return receipt, nil
}

// GetUserReceipts retrieves a paginated, filtered list of a user's receipts.
func (s *receiptService) GetUserReceipts(userID uint, page pagination.PageRequest, filter ReceiptFilter) (*pagination.PageResponse[models.Receipt], error) {
	page.Defaults()

	base := s.db.Model(&models.Receipt{}).Where("user_id = ?", userID)
	if filter.Status != nil {
		base = base.Where("status = ?", *filter.Status)
	}
	if filter.FromDate != nil {
		base = base.Where("receipt_date >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		base = base.Where("receipt_date <= ?", *filter.ToDate)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var receipts []models.Receipt
	if err := base.Scopes(pagination.Paginate(page)).
		Order("receipt_date DESC").
		Find(&receipts).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(receipts, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetReceiptByID retrieves a receipt by ID for a specific user
func (s *receiptService) GetReceiptByID(userID, receiptID uint) (*models.Receipt, error) {
	var receipt models.Receipt
	if err := s.db.Where("id = ? AND user_id = ?", receiptID, userID).First(&receipt).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrReceiptNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &receipt, nil
}
