package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "expensematch/internal/errors"
	"expensematch/internal/models"
	"expensematch/internal/pagination"
	"expensematch/internal/services"
)

// ReceiptHandler handles receipt intake and listing requests.
type ReceiptHandler struct {
	receiptService services.ReceiptServicer
}

// NewReceiptHandler creates a new ReceiptHandler.
func NewReceiptHandler(receiptService services.ReceiptServicer) *ReceiptHandler {
	return &ReceiptHandler{receiptService: receiptService}
}

// IngestReceiptRequest is the intake payload posted by the ingestion
// pipeline after OCR extraction. Amounts are in cents.
type IngestReceiptRequest struct {
	UserID               uint    `json:"user_id" binding:"required"`
	Vendor               string  `json:"vendor" binding:"required,max=255"`
	Amount               int64   `json:"amount" binding:"required"`
	ReceiptDate          string  `json:"receipt_date" binding:"required"`
	Status               string  `json:"status" binding:"omitempty,receipt_status"`
	ExtractionConfidence float64 `json:"extraction_confidence" binding:"omitempty,min=0,max=1"`
}

// IngestReceipt stores a receipt handed off by the ingestion pipeline.
// @Summary     Ingest a receipt
// @Description Store an extracted receipt from the OCR pipeline
// @Tags        ingest
// @Accept      json
// @Produce     json
// @Param       request body IngestReceiptRequest true "Extracted receipt"
// @Success     201 {object} map[string]interface{} "Receipt stored"
// @Failure     400 {object} map[string]interface{} "Invalid input"
// @Router      /ingest/receipts [post]
func (h *ReceiptHandler) IngestReceipt(c *gin.Context) {
	var req IngestReceiptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	receiptDate, err := parseFlexibleTime(req.ReceiptDate)
	if err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid receipt_date"))
		return
	}

	receipt, err := h.receiptService.CreateReceipt(
		req.UserID,
		req.Vendor,
		req.Amount,
		receiptDate,
		models.ReceiptStatus(req.Status),
		req.ExtractionConfidence,
	)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"receipt": receipt})
}

// ListReceiptsRequest holds the query parameters for listing receipts.
type ListReceiptsRequest struct {
	pagination.PageRequest
	Status   string `form:"status" binding:"omitempty,receipt_status"`
	FromDate string `form:"from_date"`
	ToDate   string `form:"to_date"`
}

// GetReceipts lists the authenticated user's receipts.
// @Summary     List receipts
// @Tags        receipts
// @Produce     json
// @Security    BearerAuth
// @Param       status query string false "Filter by status"
// @Success     200 {object} map[string]interface{} "Paginated receipts"
// @Router      /receipts [get]
func (h *ReceiptHandler) GetReceipts(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req ListReceiptsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	filter := services.ReceiptFilter{}
	if req.Status != "" {
		status := models.ReceiptStatus(req.Status)
		filter.Status = &status
	}
	if req.FromDate != "" {
		from, parseErr := parseFlexibleTime(req.FromDate)
		if parseErr != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid from_date"))
			return
		}
		filter.FromDate = &from
	}
	if req.ToDate != "" {
		to, parseErr := parseFlexibleTime(req.ToDate)
		if parseErr != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid to_date"))
			return
		}
		// Inclusive end of day for bare dates.
		to = to.Add(24*time.Hour - time.Nanosecond)
		filter.ToDate = &to
	}

	result, err := h.receiptService.GetUserReceipts(userID, req.PageRequest, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetReceiptByID returns a single receipt.
// @Summary     Get receipt
// @Tags        receipts
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Receipt ID"
// @Success     200 {object} map[string]interface{} "Receipt"
// @Failure     404 {object} map[string]interface{} "Not found"
// @Router      /receipts/{id} [get]
func (h *ReceiptHandler) GetReceiptByID(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	receiptID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	receipt, err := h.receiptService.GetReceiptByID(userID, receiptID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"receipt": receipt})
}
