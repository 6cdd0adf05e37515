package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	apperrors "expensematch/internal/errors"
	"expensematch/internal/logger"
	"expensematch/internal/models"
	"expensematch/internal/pagination"
)

// Feedback loop steps. Confirmations move confidence toward 1.0,
// rejections and disuse move it toward 0.
const (
	defaultInitialConfidence = 0.5
	maxConfidence            = 1.0
	minConfidence            = 0.0
)

// aliasService maintains the learned vendor alias store.
type aliasService struct {
	db            *gorm.DB
	reinforceStep float64
	decayStep     float64
}

// NewAliasService creates a new AliasServicer with the given feedback steps.
func NewAliasService(db *gorm.DB, reinforceStep, decayStep float64) AliasServicer {
	return &aliasService{db: db, reinforceStep: reinforceStep, decayStep: decayStep}
}

// FindAlias returns the alias for a (canonical, pattern) pair, or nil when
// nothing has been learned for the pair yet.
func (s *aliasService) FindAlias(userID uint, canonicalName, aliasPattern string) (*models.VendorAlias, error) {
	var alias models.VendorAlias
	err := s.db.Where("user_id = ? AND canonical_name = ? AND alias_pattern = ?", userID, canonicalName, aliasPattern).
		First(&alias).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &alias, nil
}

// Reinforce records a confirmed match for the pair: the alias is created if
// absent, its match count incremented, lastMatchedAt stamped, and confidence
// stepped toward 1.0. Runs inside the caller's transaction so the feedback
// commits or rolls back together with the state transition.
func (s *aliasService) Reinforce(tx *gorm.DB, userID uint, canonicalName, aliasPattern string) error {
	if canonicalName == "" || aliasPattern == "" {
		return nil
	}

	now := time.Now()

	var alias models.VendorAlias
	err := tx.Where("user_id = ? AND canonical_name = ? AND alias_pattern = ?", userID, canonicalName, aliasPattern).
		First(&alias).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		alias = models.VendorAlias{
			UserID:        userID,
			CanonicalName: canonicalName,
			AliasPattern:  aliasPattern,
			Confidence:    clampConfidence(defaultInitialConfidence + s.reinforceStep),
			MatchCount:    1,
			LastMatchedAt: &now,
		}
		if createErr := tx.Create(&alias).Error; createErr != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, createErr)
		}
		return nil
	}
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	updates := map[string]interface{}{
		"confidence":      clampConfidence(alias.Confidence + s.reinforceStep),
		"match_count":     alias.MatchCount + 1,
		"last_matched_at": now,
	}
	if err := tx.Model(&alias).Updates(updates).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// Decay records a rejected match for the pair, stepping confidence toward 0.
// Unknown pairs are a no-op: there is nothing to unlearn.
func (s *aliasService) Decay(tx *gorm.DB, userID uint, canonicalName, aliasPattern string) error {
	if canonicalName == "" || aliasPattern == "" {
		return nil
	}

	var alias models.VendorAlias
	err := tx.Where("user_id = ? AND canonical_name = ? AND alias_pattern = ?", userID, canonicalName, aliasPattern).
		First(&alias).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if err := tx.Model(&alias).Update("confidence", clampConfidence(alias.Confidence-s.decayStep)).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// ListAliases retrieves a paginated list of a user's learned aliases.
func (s *aliasService) ListAliases(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.VendorAlias], error) {
	page.Defaults()

	base := s.db.Model(&models.VendorAlias{}).Where("user_id = ?", userID)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var aliases []models.VendorAlias
	if err := base.Scopes(pagination.Paginate(page)).
		Order("confidence DESC").
		Find(&aliases).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(aliases, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// DecayStale steps down confidence for every alias not matched since
// olderThan. Called from the scheduled decay job, independent of explicit
// rejections. Returns the number of aliases touched.
func (s *aliasService) DecayStale(olderThan time.Time) (int64, error) {
	res := s.db.Model(&models.VendorAlias{}).
		Where("(last_matched_at IS NULL AND created_at < ?) OR last_matched_at < ?", olderThan, olderThan).
		Where("confidence > ?", minConfidence).
		Update("confidence", gorm.Expr(
			"CASE WHEN confidence - ? < ? THEN ? ELSE confidence - ? END",
			s.decayStep, minConfidence, minConfidence, s.decayStep,
		))
	if res.Error != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
	}
	if res.RowsAffected > 0 {
		logger.Get().Infow("decayed stale vendor aliases", "count", res.RowsAffected)
	}
	return res.RowsAffected, nil
}

func clampConfidence(v float64) float64 {
	if v > maxConfidence {
		return maxConfidence
	}
	if v < minConfidence {
		return minConfidence
	}
	return v
}
