package types

import (
	"time"

	"github.com/google/uuid"
)

const (
	PreferenceTypeDiet    = "diet"
	PreferenceTypeCuisine = "cuisine"
)

type HealthProfile struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID        uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	HeightCm      *float64  `gorm:"column:height_cm" json:"height_cm,omitempty"`
	WeightKg      *float64  `gorm:"column:weight_kg" json:"weight_kg,omitempty"`
	ActivityLevel string    `gorm:"column:activity_level" json:"activity_level,omitempty"` // sedentary|light|moderate|active|very_active

	Allergies          []UserAllergy       `gorm:"constraint:OnDelete:CASCADE;foreignKey:HealthProfileID;references:ID" json:"allergies,omitempty"`
	DietaryPreferences []DietaryPreference `gorm:"constraint:OnDelete:CASCADE;foreignKey:HealthProfileID;references:ID" json:"dietary_preferences,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (HealthProfile) TableName() string { return "health_profiles" }

type DietaryPreference struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	HealthProfileID uuid.UUID `gorm:"type:uuid;not null;index" json:"health_profile_id"`
	PreferenceType  string    `gorm:"column:preference_type;not null" json:"preference_type"` // diet|cuisine
	PreferenceName  string    `gorm:"column:preference_name;not null" json:"preference_name"`
	IsStrict        bool      `gorm:"column:is_strict;not null;default:false" json:"is_strict"`
	CreatedAt       time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt       time.Time `gorm:"not null" json:"updated_at"`
}

func (DietaryPreference) TableName() string { return "dietary_preferences" }
