package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Restaurant rows discovered through place search use the external place id
// as their primary key, so the catalog upsert stays idempotent across
// concurrent requests discovering the same place.
type Restaurant struct {
	ID         string         `gorm:"primaryKey" json:"id"`
	Name       string         `gorm:"column:name;index;not null" json:"name"`
	Address    string         `gorm:"column:address" json:"address,omitempty"`
	Cuisine    string         `gorm:"column:cuisine;index" json:"cuisine,omitempty"`
	WebsiteURL string         `gorm:"column:website_url" json:"website_url,omitempty"`
	IsActive   bool           `gorm:"column:is_active;not null;default:true;index" json:"is_active"`
	PlaceData  datatypes.JSON `gorm:"column:place_data" json:"place_data,omitempty"`

	MenuItems []MenuItem `gorm:"constraint:OnDelete:CASCADE;foreignKey:RestaurantID;references:ID" json:"menu_items,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Restaurant) TableName() string { return "restaurants" }

type MenuItem struct {
	ID           uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	RestaurantID string      `gorm:"not null;index" json:"restaurant_id"`
	Restaurant   *Restaurant `gorm:"foreignKey:RestaurantID;references:ID" json:"restaurant,omitempty"`
	Name         string      `gorm:"column:name;not null" json:"name"`
	Description  string      `gorm:"column:description" json:"description,omitempty"`
	Price        *float64    `gorm:"column:price" json:"price,omitempty"`
	Calories     *float64    `gorm:"column:calories" json:"calories,omitempty"`

	Allergens []Allergen `gorm:"many2many:menu_item_allergens" json:"allergens,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (MenuItem) TableName() string { return "menu_items" }
