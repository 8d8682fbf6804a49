package types

import (
	"time"

	"github.com/google/uuid"
)

const (
	GoalTypeNutrition = "nutrition"
	GoalTypeWellness  = "wellness"

	GoalStatusActive    = "active"
	GoalStatusCompleted = "completed"
	GoalStatusAbandoned = "abandoned"
)

type Goal struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	GoalType    string    `gorm:"column:goal_type;not null" json:"goal_type"` // nutrition|wellness
	Title       string    `gorm:"column:title;not null" json:"title"`
	TargetType  string    `gorm:"column:target_type;not null" json:"target_type"` // e.g. "daily calories", "protein intake"
	TargetValue float64   `gorm:"column:target_value;not null" json:"target_value"`
	Status      string    `gorm:"column:status;not null;default:'active';index" json:"status"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null" json:"updated_at"`
}

func (Goal) TableName() string { return "goals" }
