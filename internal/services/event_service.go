package services

import (
	"encoding/json"

	"gorm.io/gorm"

	apperrors "expensematch/internal/errors"
	"expensematch/internal/logger"
	"expensematch/internal/models"
	"expensematch/internal/pagination"
	"expensematch/internal/uuid"
)

// Activity event types emitted by the matching engine.
const (
	EventMatchProposed  = "MATCH_PROPOSED"
	EventMatchConfirmed = "MATCH_CONFIRMED"
	EventMatchRejected  = "MATCH_REJECTED"
	EventManualMatch    = "MANUAL_MATCH"
	EventMatchUnmatched = "MATCH_UNMATCHED"
	EventBatchApproved  = "BATCH_APPROVED"
)

// eventService records activity events for the external feed.
type eventService struct {
	db *gorm.DB
}

// NewEventService creates a new EventServicer.
func NewEventService(db *gorm.DB) EventServicer {
	return &eventService{db: db}
}

// Record stores an activity event. Errors are logged but never propagate:
// the feed is informational and must not disturb the operation it describes.
func (s *eventService) Record(userID uint, eventType, resourceType string, resourceID uint, payload map[string]interface{}) {
	var payloadJSON string
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			logger.Get().Errorw("failed to marshal event payload", "error", err, "type", eventType)
			payloadJSON = "{}"
		} else {
			payloadJSON = string(data)
		}
	}

	event := &models.ActivityEvent{
		EventID:      uuid.New(),
		UserID:       userID,
		Type:         eventType,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Payload:      payloadJSON,
	}

	if err := s.db.Create(event).Error; err != nil {
		logger.Get().Errorw("failed to record activity event",
			"error", err,
			"user_id", userID,
			"type", eventType,
			"resource_type", resourceType,
			"resource_id", resourceID,
		)
	}
}

// ListEvents retrieves a paginated list of a user's activity events, newest first.
func (s *eventService) ListEvents(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.ActivityEvent], error) {
	page.Defaults()

	base := s.db.Model(&models.ActivityEvent{}).Where("user_id = ?", userID)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var events []models.ActivityEvent
	if err := base.Scopes(pagination.Paginate(page)).
		Order("created_at DESC").
		Find(&events).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(events, page.Page, page.PageSize, totalItems)
	return &result, nil
}
