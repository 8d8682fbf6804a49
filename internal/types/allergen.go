package types

import (
	"time"

	"github.com/google/uuid"
)

type Allergen struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string    `gorm:"column:name;uniqueIndex;not null" json:"name"`
	Description string    `gorm:"column:description" json:"description,omitempty"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null" json:"updated_at"`
}

func (Allergen) TableName() string { return "allergen_database" }

type UserAllergy struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	HealthProfileID uuid.UUID `gorm:"type:uuid;not null;index:idx_user_allergy,unique,priority:1" json:"health_profile_id"`
	AllergenID      uuid.UUID `gorm:"type:uuid;not null;index:idx_user_allergy,unique,priority:2" json:"allergen_id"`
	Allergen        *Allergen `gorm:"constraint:OnDelete:CASCADE;foreignKey:AllergenID;references:ID" json:"allergen,omitempty"`
	Severity        string    `gorm:"column:severity;not null;default:'moderate'" json:"severity"` // mild|moderate|severe
	CreatedAt       time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt       time.Time `gorm:"not null" json:"updated_at"`
}

func (UserAllergy) TableName() string { return "user_allergies" }
