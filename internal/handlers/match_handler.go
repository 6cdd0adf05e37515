package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "expensematch/internal/errors"
	"expensematch/internal/pagination"
	"expensematch/internal/services"
)

// MatchHandler handles match review and state transition requests.
type MatchHandler struct {
	matchService    services.MatchServicer
	proposalService services.ProposalServicer
}

// NewMatchHandler creates a new MatchHandler.
func NewMatchHandler(matchService services.MatchServicer, proposalService services.ProposalServicer) *MatchHandler {
	return &MatchHandler{matchService: matchService, proposalService: proposalService}
}

// ListProposalsRequest holds the query parameters for the review queue.
type ListProposalsRequest struct {
	pagination.PageRequest
	Sort string `form:"sort" binding:"omitempty,proposal_sort"`
}

// ManualMatchRequest links a receipt and a transaction chosen by the user.
type ManualMatchRequest struct {
	ReceiptID     uint `json:"receipt_id" binding:"required"`
	TransactionID uint `json:"transaction_id" binding:"required"`
}

// BatchApproveRequest approves a set of proposals at or above a confidence
// floor in one call.
type BatchApproveRequest struct {
	MatchIDs      []uint  `json:"match_ids" binding:"required,min=1"`
	MinConfidence float64 `json:"min_confidence" binding:"min=0,max=100"`
}

// GetProposals lists the authenticated user's pending proposals with tier
// classification, sorted by score (default) or recency.
// @Summary     List pending proposals
// @Tags        matches
// @Produce     json
// @Security    BearerAuth
// @Param       sort query string false "Sort key: score or date"
// @Success     200 {object} map[string]interface{} "Paginated proposals"
// @Router      /matches/proposals [get]
func (h *MatchHandler) GetProposals(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req ListProposalsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.matchService.GetPendingProposals(userID, req.PageRequest, req.Sort)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetMatchByID returns a single match with its score breakdown.
// @Summary     Get match
// @Tags        matches
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Match ID"
// @Success     200 {object} map[string]interface{} "Match"
// @Failure     404 {object} map[string]interface{} "Not found"
// @Router      /matches/{id} [get]
func (h *MatchHandler) GetMatchByID(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	matchID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	match, err := h.matchService.GetMatchByID(userID, matchID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"match": match})
}

// ConfirmMatch accepts a proposed match.
// @Summary     Confirm a proposal
// @Tags        matches
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Match ID"
// @Success     200 {object} map[string]interface{} "Confirmed match"
// @Failure     409 {object} map[string]interface{} "Conflict or invalid state"
// @Router      /matches/{id}/confirm [post]
func (h *MatchHandler) ConfirmMatch(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	matchID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	match, err := h.matchService.ConfirmMatch(userID, matchID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"match": match})
}

// RejectMatch declines a proposed match, freeing both sides.
// @Summary     Reject a proposal
// @Tags        matches
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Match ID"
// @Success     200 {object} map[string]interface{} "Rejected match"
// @Failure     409 {object} map[string]interface{} "Conflict or invalid state"
// @Router      /matches/{id}/reject [post]
func (h *MatchHandler) RejectMatch(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	matchID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	match, err := h.matchService.RejectMatch(userID, matchID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"match": match})
}

// CreateManualMatch links a receipt and transaction the engine did not pair.
// @Summary     Create a manual match
// @Tags        matches
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body ManualMatchRequest true "Receipt and transaction"
// @Success     201 {object} map[string]interface{} "Created match"
// @Failure     409 {object} map[string]interface{} "Side already matched"
// @Router      /matches/manual [post]
func (h *MatchHandler) CreateManualMatch(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req ManualMatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	match, err := h.matchService.CreateManualMatch(userID, req.ReceiptID, req.TransactionID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"match": match})
}

// Unmatch reverses a confirmed match, returning both sides to the pool.
// @Summary     Unmatch a confirmed match
// @Tags        matches
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Match ID"
// @Success     200 {object} map[string]interface{} "Unmatched match"
// @Failure     409 {object} map[string]interface{} "Conflict or invalid state"
// @Router      /matches/{id}/unmatch [post]
func (h *MatchHandler) Unmatch(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	matchID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	match, err := h.matchService.Unmatch(userID, matchID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"match": match})
}

// BatchApprove confirms every listed proposal whose score meets the floor.
// Partial success is expected; the response reports each item's outcome.
// @Summary     Batch approve proposals
// @Tags        matches
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body BatchApproveRequest true "Match IDs and confidence floor"
// @Success     200 {object} map[string]interface{} "Per-item results"
// @Router      /matches/batch-approve [post]
func (h *MatchHandler) BatchApprove(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req BatchApproveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.matchService.BatchApprove(userID, req.MatchIDs, req.MinConfidence)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GenerateProposals runs candidate generation for the caller's matchable
// receipts. This is the on-demand counterpart of the scheduled sweep.
// @Summary     Generate proposals
// @Tags        matches
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} map[string]interface{} "Run summary"
// @Router      /matches/generate [post]
func (h *MatchHandler) GenerateProposals(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	summary, err := h.proposalService.GenerateForUser(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"summary": summary})
}

// GenerateForReceipt runs candidate generation for one receipt.
// @Summary     Generate a proposal for a receipt
// @Tags        matches
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Receipt ID"
// @Success     200 {object} map[string]interface{} "Best match, if any cleared the threshold"
// @Router      /receipts/{id}/generate [post]
func (h *MatchHandler) GenerateForReceipt(c *gin.Context) {
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

	match, err := h.proposalService.GenerateForReceipt(userID, receiptID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"match": match})
}
