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

// TransactionHandler handles statement transaction intake and listing.
type TransactionHandler struct {
	transactionService services.TransactionServicer
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(transactionService services.TransactionServicer) *TransactionHandler {
	return &TransactionHandler{transactionService: transactionService}
}

// IngestTransactionRequest is the intake payload posted by the statement
// import pipeline. Amounts are signed cents; negative means refund.
type IngestTransactionRequest struct {
	UserID           uint    `json:"user_id" binding:"required"`
	TransactionDate  string  `json:"transaction_date" binding:"required"`
	PostDate         *string `json:"post_date"`
	Amount           int64   `json:"amount" binding:"required"`
	Description      string  `json:"description" binding:"required,max=500"`
	NormalizedVendor string  `json:"normalized_vendor" binding:"max=255"`
}

// IngestTransaction stores a statement line handed off by the import pipeline.
// @Summary     Ingest a transaction
// @Description Store an imported statement line
// @Tags        ingest
// @Accept      json
// @Produce     json
// @Param       request body IngestTransactionRequest true "Imported statement line"
// @Success     201 {object} map[string]interface{} "Transaction stored"
// @Failure     400 {object} map[string]interface{} "Invalid input"
// @Router      /ingest/transactions [post]
func (h *TransactionHandler) IngestTransaction(c *gin.Context) {
	var req IngestTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	transactionDate, err := parseFlexibleTime(req.TransactionDate)
	if err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid transaction_date"))
		return
	}

	var postDate *time.Time
	if req.PostDate != nil && *req.PostDate != "" {
		parsed, parseErr := parseFlexibleTime(*req.PostDate)
		if parseErr != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid post_date"))
			return
		}
		postDate = &parsed
	}

	transaction, err := h.transactionService.CreateTransaction(
		req.UserID,
		transactionDate,
		postDate,
		req.Amount,
		req.Description,
		req.NormalizedVendor,
	)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"transaction": transaction})
}

// ListTransactionsRequest holds the query parameters for listing transactions.
type ListTransactionsRequest struct {
	pagination.PageRequest
	MatchStatus string `form:"match_status" binding:"omitempty,match_status"`
	FromDate    string `form:"from_date"`
	ToDate      string `form:"to_date"`
}

// GetTransactions lists the authenticated user's transactions.
// @Summary     List transactions
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       match_status query string false "Filter by match status"
// @Success     200 {object} map[string]interface{} "Paginated transactions"
// @Router      /transactions [get]
func (h *TransactionHandler) GetTransactions(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req ListTransactionsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	filter := services.TransactionFilter{}
	if req.MatchStatus != "" {
		status := models.MatchStatus(req.MatchStatus)
		filter.MatchStatus = &status
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
		to = to.Add(24*time.Hour - time.Nanosecond)
		filter.ToDate = &to
	}

	result, err := h.transactionService.GetUserTransactions(userID, req.PageRequest, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetTransactionByID returns a single transaction.
// @Summary     Get transaction
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Transaction ID"
// @Success     200 {object} map[string]interface{} "Transaction"
// @Failure     404 {object} map[string]interface{} "Not found"
// @Router      /transactions/{id} [get]
func (h *TransactionHandler) GetTransactionByID(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transactionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	transaction, err := h.transactionService.GetTransactionByID(userID, transactionID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transaction": transaction})
}
