package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "expensematch/internal/errors"
	"expensematch/internal/pagination"
	"expensematch/internal/services"
)

// AliasHandler exposes the learned vendor alias store for review.
type AliasHandler struct {
	aliasService services.AliasServicer
}

// NewAliasHandler creates a new AliasHandler.
func NewAliasHandler(aliasService services.AliasServicer) *AliasHandler {
	return &AliasHandler{aliasService: aliasService}
}

// GetAliases lists the authenticated user's vendor aliases by confidence.
// @Summary     List vendor aliases
// @Tags        aliases
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} map[string]interface{} "Paginated aliases"
// @Router      /aliases [get]
func (h *AliasHandler) GetAliases(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.aliasService.ListAliases(userID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
