package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/eatsential/eatsential-backend/internal/logger"
	"github.com/eatsential/eatsential-backend/internal/types"
)

type FeedbackRepo interface {
	Create(ctx context.Context, tx *gorm.DB, feedback *types.RecommendationFeedback) (*types.RecommendationFeedback, error)
	Save(ctx context.Context, tx *gorm.DB, feedback *types.RecommendationFeedback) (*types.RecommendationFeedback, error)
	GetByUserItem(ctx context.Context, tx *gorm.DB, userID uuid.UUID, itemID, itemType string) (*types.RecommendationFeedback, error)
	// ListByUserAndFeedbackType returns all of a user's feedback rows of the
	// given feedback type, optionally narrowed to one item type.
	ListByUserAndFeedbackType(ctx context.Context, tx *gorm.DB, userID uuid.UUID, feedbackType, itemType string) ([]*types.RecommendationFeedback, error)
	ListByUserAndItems(ctx context.Context, tx *gorm.DB, userID uuid.UUID, itemIDs []string, itemType string) ([]*types.RecommendationFeedback, error)
}

type feedbackRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewFeedbackRepo(db *gorm.DB, baseLog *logger.Logger) FeedbackRepo {
	repoLog := baseLog.With("repo", "FeedbackRepo")
	return &feedbackRepo{db: db, log: repoLog}
}

func (fr *feedbackRepo) Create(ctx context.Context, tx *gorm.DB, feedback *types.RecommendationFeedback) (*types.RecommendationFeedback, error) {
	transaction := tx
	if transaction == nil {
		transaction = fr.db
	}

	if err := transaction.WithContext(ctx).Create(feedback).Error; err != nil {
		return nil, err
	}
	return feedback, nil
}

func (fr *feedbackRepo) Save(ctx context.Context, tx *gorm.DB, feedback *types.RecommendationFeedback) (*types.RecommendationFeedback, error) {
	transaction := tx
	if transaction == nil {
		transaction = fr.db
	}

	if err := transaction.WithContext(ctx).Save(feedback).Error; err != nil {
		return nil, err
	}
	return feedback, nil
}

func (fr *feedbackRepo) GetByUserItem(ctx context.Context, tx *gorm.DB, userID uuid.UUID, itemID, itemType string) (*types.RecommendationFeedback, error) {
	transaction := tx
	if transaction == nil {
		transaction = fr.db
	}

	var result types.RecommendationFeedback
	if err := transaction.WithContext(ctx).
		Where("user_id = ? AND item_id = ? AND item_type = ?", userID, itemID, itemType).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (fr *feedbackRepo) ListByUserAndFeedbackType(ctx context.Context, tx *gorm.DB, userID uuid.UUID, feedbackType, itemType string) ([]*types.RecommendationFeedback, error) {
	transaction := tx
	if transaction == nil {
		transaction = fr.db
	}

	query := transaction.WithContext(ctx).
		Where("user_id = ? AND feedback_type = ?", userID, feedbackType)
	if itemType != "" {
		query = query.Where("item_type = ?", itemType)
	}

	var results []*types.RecommendationFeedback
	if err := query.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (fr *feedbackRepo) ListByUserAndItems(ctx context.Context, tx *gorm.DB, userID uuid.UUID, itemIDs []string, itemType string) ([]*types.RecommendationFeedback, error) {
	transaction := tx
	if transaction == nil {
		transaction = fr.db
	}

	var results []*types.RecommendationFeedback
	if len(itemIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("user_id = ? AND item_id IN ? AND item_type = ?", userID, itemIDs, itemType).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
