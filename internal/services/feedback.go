package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/eatsential/eatsential-backend/internal/logger"
	errs "github.com/eatsential/eatsential-backend/internal/pkg/errors"
	"github.com/eatsential/eatsential-backend/internal/repos"
	"github.com/eatsential/eatsential-backend/internal/types"
)

// likedSuffix is appended to the explanation of boosted items.
const likedSuffix = " (You liked this before)"

const likedBoostFactor = 1.10

type FeedbackService interface {
	// Submit records like/dislike feedback with upsert semantics: at most
	// one row per (user, item, item type), resubmission updates in place.
	Submit(ctx context.Context, userID uuid.UUID, req types.FeedbackRequest) (*types.FeedbackResponse, error)
	DislikedItems(ctx context.Context, userID uuid.UUID, itemType string) (map[string]struct{}, error)
	LikedItems(ctx context.Context, userID uuid.UUID, itemType string) (map[string]struct{}, error)
	// FeedbackForItems maps each of the given item ids to the user's stored
	// feedback type, omitting items without feedback.
	FeedbackForItems(ctx context.Context, userID uuid.UUID, itemIDs []string, itemType string) (map[string]string, error)
}

type feedbackService struct {
	db           *gorm.DB
	log          *logger.Logger
	feedbackRepo repos.FeedbackRepo
}

func NewFeedbackService(db *gorm.DB, log *logger.Logger, feedbackRepo repos.FeedbackRepo) FeedbackService {
	serviceLog := log.With("service", "FeedbackService")
	return &feedbackService{db: db, log: serviceLog, feedbackRepo: feedbackRepo}
}

func (fs *feedbackService) Submit(ctx context.Context, userID uuid.UUID, req types.FeedbackRequest) (*types.FeedbackResponse, error) {
	if req.FeedbackType != types.FeedbackTypeLike && req.FeedbackType != types.FeedbackTypeDislike {
		return nil, fmt.Errorf("%w: feedback_type %q", errs.ErrInvalidArgument, req.FeedbackType)
	}
	if req.ItemType != types.FeedbackItemTypeMeal && req.ItemType != types.FeedbackItemTypeRestaurant {
		return nil, fmt.Errorf("%w: item_type %q", errs.ErrInvalidArgument, req.ItemType)
	}

	existing, err := fs.feedbackRepo.GetByUserItem(ctx, nil, userID, req.ItemID, req.ItemType)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if existing != nil {
		existing.FeedbackType = req.FeedbackType
		existing.Notes = req.Notes
		existing.UpdatedAt = time.Now().UTC()
		saved, err := fs.feedbackRepo.Save(ctx, nil, existing)
		if err != nil {
			return nil, err
		}
		return feedbackResponse(saved), nil
	}

	created, err := fs.feedbackRepo.Create(ctx, nil, &types.RecommendationFeedback{
		ID:           uuid.New(),
		UserID:       userID,
		ItemID:       req.ItemID,
		ItemType:     req.ItemType,
		FeedbackType: req.FeedbackType,
		Notes:        req.Notes,
	})
	if err != nil {
		return nil, err
	}
	return feedbackResponse(created), nil
}

func (fs *feedbackService) DislikedItems(ctx context.Context, userID uuid.UUID, itemType string) (map[string]struct{}, error) {
	return fs.itemSet(ctx, userID, types.FeedbackTypeDislike, itemType)
}

func (fs *feedbackService) LikedItems(ctx context.Context, userID uuid.UUID, itemType string) (map[string]struct{}, error) {
	return fs.itemSet(ctx, userID, types.FeedbackTypeLike, itemType)
}

func (fs *feedbackService) itemSet(ctx context.Context, userID uuid.UUID, feedbackType, itemType string) (map[string]struct{}, error) {
	records, err := fs.feedbackRepo.ListByUserAndFeedbackType(ctx, nil, userID, feedbackType, itemType)
	if err != nil {
		return nil, err
	}
	set := make(map[string]struct{}, len(records))
	for _, record := range records {
		set[record.ItemID] = struct{}{}
	}
	return set, nil
}

func (fs *feedbackService) FeedbackForItems(ctx context.Context, userID uuid.UUID, itemIDs []string, itemType string) (map[string]string, error) {
	records, err := fs.feedbackRepo.ListByUserAndItems(ctx, nil, userID, itemIDs, itemType)
	if err != nil {
		return nil, err
	}
	result := make(map[string]string, len(records))
	for _, record := range records {
		result[record.ItemID] = record.FeedbackType
	}
	return result, nil
}

func feedbackResponse(record *types.RecommendationFeedback) *types.FeedbackResponse {
	return &types.FeedbackResponse{
		ID:           record.ID.String(),
		ItemID:       record.ItemID,
		ItemType:     record.ItemType,
		FeedbackType: record.FeedbackType,
		CreatedAt:    record.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// applyFeedbackBoosts lifts the score of previously liked items by 10%
// (capped at 1.0), marks their explanation, then re-sorts and deduplicates
// by item id keeping the highest score. Deduplication matters because
// upstream sources can merge overlapping candidate pools.
func applyFeedbackBoosts(recs []types.RecommendedItem, liked map[string]struct{}) []types.RecommendedItem {
	if len(liked) == 0 {
		return recs
	}

	boosted := make([]types.RecommendedItem, 0, len(recs))
	for _, rec := range recs {
		if _, ok := liked[rec.ItemID]; ok {
			rec.Score = clampScore(rec.Score * likedBoostFactor)
			rec.Explanation = rec.Explanation + likedSuffix
		}
		boosted = append(boosted, rec)
	}

	sortRecommendations(boosted)
	return dedupeByItemID(boosted)
}

// dedupeByItemID keeps the highest-scored instance of each item id,
// preserving the order of first (highest-ranked) occurrence. Input must be
// score-sorted.
func dedupeByItemID(recs []types.RecommendedItem) []types.RecommendedItem {
	seen := make(map[string]struct{}, len(recs))
	deduped := make([]types.RecommendedItem, 0, len(recs))
	for _, rec := range recs {
		if _, ok := seen[rec.ItemID]; ok {
			continue
		}
		seen[rec.ItemID] = struct{}{}
		deduped = append(deduped, rec)
	}
	return deduped
}
