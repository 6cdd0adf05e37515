package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "expensematch/internal/errors"
	"expensematch/internal/pagination"
	"expensematch/internal/services"
)

// EventHandler exposes the activity event feed.
type EventHandler struct {
	eventService services.EventServicer
}

// NewEventHandler creates a new EventHandler.
func NewEventHandler(eventService services.EventServicer) *EventHandler {
	return &EventHandler{eventService: eventService}
}

// GetEvents lists the authenticated user's activity events, newest first.
// @Summary     List activity events
// @Tags        events
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} map[string]interface{} "Paginated events"
// @Router      /events [get]
func (h *EventHandler) GetEvents(c *gin.Context) {
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

	result, err := h.eventService.ListEvents(userID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
