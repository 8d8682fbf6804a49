package types

import (
	"time"

	"github.com/google/uuid"
)

const (
	FeedbackTypeLike    = "like"
	FeedbackTypeDislike = "dislike"

	FeedbackItemTypeMeal       = "meal"
	FeedbackItemTypeRestaurant = "restaurant"
)

// RecommendationFeedback holds at most one row per (user, item, item type);
// resubmissions update the existing row in place.
type RecommendationFeedback struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       uuid.UUID `gorm:"type:uuid;not null;index:idx_recommendation_feedback,unique,priority:1" json:"user_id"`
	ItemID       string    `gorm:"column:item_id;not null;index:idx_recommendation_feedback,unique,priority:2" json:"item_id"`
	ItemType     string    `gorm:"column:item_type;not null;index:idx_recommendation_feedback,unique,priority:3" json:"item_type"` // meal|restaurant
	FeedbackType string    `gorm:"column:feedback_type;not null;index" json:"feedback_type"`                                       // like|dislike
	Notes        *string   `gorm:"column:notes" json:"notes,omitempty"`
	CreatedAt    time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time `gorm:"not null" json:"updated_at"`
}

func (RecommendationFeedback) TableName() string { return "recommendation_feedback" }
