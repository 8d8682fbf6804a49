package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email     string    `gorm:"column:email;uniqueIndex;not null" json:"email"`
	Password  string    `gorm:"column:password;not null" json:"-"`
	FirstName string    `gorm:"column:first_name;not null" json:"first_name"`
	LastName  string    `gorm:"column:last_name;not null" json:"last_name"`

	// Coarse location, serialized into LLM prompts for nearby suggestions.
	City      string   `gorm:"column:city" json:"city,omitempty"`
	State     string   `gorm:"column:state" json:"state,omitempty"`
	ZipCode   string   `gorm:"column:zip_code" json:"zip_code,omitempty"`
	Latitude  *float64 `gorm:"column:latitude" json:"latitude,omitempty"`
	Longitude *float64 `gorm:"column:longitude" json:"longitude,omitempty"`

	HealthProfile *HealthProfile `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"health_profile,omitempty"`
	Goals         []Goal         `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"goals,omitempty"`

	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (User) TableName() string { return "users" }
