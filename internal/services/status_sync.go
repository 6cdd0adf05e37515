package services

import (
	"gorm.io/gorm"

	apperrors "expensematch/internal/errors"
	"expensematch/internal/models"
)

// Receipt status synchronization. Receipts carry a processing status owned
// by the ingestion pipeline; these helpers are the single place the matching
// engine writes it, and they always run inside the transaction of the state
// machine transition that triggered them.

// syncReceiptOnConfirm moves a ready or review_required receipt to matched.
// Any other status is left untouched: in particular an error status takes
// priority and is never silently overwritten.
func syncReceiptOnConfirm(tx *gorm.DB, receiptID uint) error {
	err := tx.Model(&models.Receipt{}).
		Where("id = ? AND status IN ?", receiptID,
			[]models.ReceiptStatus{models.ReceiptStatusReady, models.ReceiptStatusReviewRequired}).
		Update("status", models.ReceiptStatusMatched).Error
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// syncReceiptOnRelease resets a receipt to ready after a reject or unmatch,
// regardless of its prior status: releasing a match always means the receipt
// is reviewable and re-matchable again.
func syncReceiptOnRelease(tx *gorm.DB, receiptID uint) error {
	err := tx.Model(&models.Receipt{}).
		Where("id = ?", receiptID).
		Update("status", models.ReceiptStatusReady).Error
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
