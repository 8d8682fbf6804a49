package main

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"

	"github.com/eatsential/eatsential-backend/internal/db"
	"github.com/eatsential/eatsential-backend/internal/logger"
	"github.com/eatsential/eatsential-backend/internal/repos"
	"github.com/eatsential/eatsential-backend/internal/types"
)

// Seeds a small local catalog so the recommendation endpoints have
// candidates before any remote place search has run.

func f(v float64) *float64 { return &v }

func main() {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Fatal("Postgres init failed", "error", err)
	}
	if err = postgresService.AutoMigrateAll(); err != nil {
		log.Fatal("Postgres auto migration failed", "error", err)
	}
	thePG := postgresService.DB()

	restaurantRepo := repos.NewRestaurantRepo(thePG, log)
	menuItemRepo := repos.NewMenuItemRepo(thePG, log)
	ctx := context.Background()

	allergens := map[string]*types.Allergen{}
	for _, name := range []string{"Peanut", "Tree Nut", "Shellfish", "Egg", "Milk", "Soy", "Wheat"} {
		allergen := &types.Allergen{ID: uuid.New(), Name: name}
		if err := thePG.WithContext(ctx).Where(types.Allergen{Name: name}).FirstOrCreate(allergen).Error; err != nil {
			log.Fatal("Failed to seed allergen", "name", name, "error", err)
		}
		allergens[name] = allergen
	}

	restaurants := []struct {
		restaurant types.Restaurant
		items      []types.MenuItem
	}{
		{
			restaurant: types.Restaurant{ID: "seed_thai_basil", Name: "Thai Basil", Address: "5 Oak Ave", Cuisine: "thai", IsActive: true},
			items: []types.MenuItem{
				{Name: "Pad Thai", Description: "rice noodles with tofu and peanut", Price: f(12.50), Calories: f(680), Allergens: []types.Allergen{*allergens["Peanut"], *allergens["Soy"]}},
				{Name: "Green Curry", Description: "coconut curry with vegetables and jasmine rice", Price: f(14.00), Calories: f(720)},
				{Name: "Papaya Salad", Description: "shredded papaya with lime and chili", Price: f(9.00), Calories: f(320)},
			},
		},
		{
			restaurant: types.Restaurant{ID: "seed_la_piazza", Name: "La Piazza", Address: "9 Elm St", Cuisine: "italian", IsActive: true},
			items: []types.MenuItem{
				{Name: "Margherita", Description: "tomato, mozzarella and basil pizza", Price: f(11.00), Calories: f(850), Allergens: []types.Allergen{*allergens["Milk"], *allergens["Wheat"]}},
				{Name: "Carbonara", Description: "pasta with egg, pecorino and guanciale", Price: f(15.50), Allergens: []types.Allergen{*allergens["Egg"], *allergens["Milk"], *allergens["Wheat"]}},
			},
		},
		{
			restaurant: types.Restaurant{ID: "seed_harbor_grill", Name: "Harbor Grill", Address: "12 Pier Rd", Cuisine: "american", IsActive: true},
			items: []types.MenuItem{
				{Name: "Grilled Salmon", Description: "salmon fillet with low sodium herb rub", Price: f(22.00), Calories: f(540)},
				{Name: "Shrimp Basket", Description: "fried shrimp with fries", Price: f(16.00), Calories: f(980), Allergens: []types.Allergen{*allergens["Shellfish"], *allergens["Wheat"]}},
				{Name: "Quinoa Bowl", Description: "quinoa, roasted vegetables and high protein dressing", Price: f(13.00), Calories: f(480)},
			},
		},
	}

	for _, entry := range restaurants {
		restaurant := entry.restaurant
		if _, err := restaurantRepo.Save(ctx, nil, &restaurant); err != nil {
			log.Fatal("Failed to seed restaurant", "name", restaurant.Name, "error", err)
		}

		var count int64
		if err := thePG.WithContext(ctx).Model(&types.MenuItem{}).Where("restaurant_id = ?", restaurant.ID).Count(&count).Error; err != nil {
			log.Fatal("Failed to check menu items", "restaurant", restaurant.Name, "error", err)
		}
		if count > 0 {
			log.Info("Menu already seeded, skipping", "restaurant", restaurant.Name)
			continue
		}

		items := make([]*types.MenuItem, 0, len(entry.items))
		for i := range entry.items {
			item := entry.items[i]
			item.ID = uuid.New()
			item.RestaurantID = restaurant.ID
			items = append(items, &item)
		}
		if _, err := menuItemRepo.Create(ctx, nil, items); err != nil {
			log.Fatal("Failed to seed menu items", "restaurant", restaurant.Name, "error", err)
		}
		log.Info("Seeded restaurant", "name", restaurant.Name, "items", len(items))
	}

	log.Info("Seed complete")
}
