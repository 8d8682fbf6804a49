package services

import (
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/eatsential/eatsential-backend/internal/logger"
	"github.com/eatsential/eatsential-backend/internal/types"
)

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("failed to init logger: %v", err)
	}
	t.Cleanup(log.Sync)
	return log
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	// The in-memory database lives on a single connection.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to access sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&types.User{},
		&types.Allergen{},
		&types.HealthProfile{},
		&types.UserAllergy{},
		&types.DietaryPreference{},
		&types.Goal{},
		&types.Restaurant{},
		&types.MenuItem{},
		&types.RecommendationFeedback{},
	); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func seedUser(t *testing.T, db *gorm.DB) *types.User {
	t.Helper()
	user := &types.User{
		ID:        uuid.New(),
		Email:     uuid.NewString() + "@example.com",
		Password:  "hashed",
		FirstName: "Test",
		LastName:  "User",
		City:      "Raleigh",
		State:     "NC",
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	return user
}

func seedRestaurant(t *testing.T, db *gorm.DB, id, name, cuisine string) *types.Restaurant {
	t.Helper()
	restaurant := &types.Restaurant{
		ID:       id,
		Name:     name,
		Address:  "123 Main St",
		Cuisine:  cuisine,
		IsActive: true,
	}
	if err := db.Create(restaurant).Error; err != nil {
		t.Fatalf("failed to seed restaurant %s: %v", name, err)
	}
	return restaurant
}

func seedMenuItem(t *testing.T, db *gorm.DB, restaurantID, name, description string, price, calories *float64) *types.MenuItem {
	t.Helper()
	item := &types.MenuItem{
		ID:           uuid.New(),
		RestaurantID: restaurantID,
		Name:         name,
		Description:  description,
		Price:        price,
		Calories:     calories,
	}
	if err := db.Create(item).Error; err != nil {
		t.Fatalf("failed to seed menu item %s: %v", name, err)
	}
	return item
}

func fptr(v float64) *float64 { return &v }
