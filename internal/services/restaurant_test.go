package services

import (
	"context"
	"testing"

	"github.com/eatsential/eatsential-backend/internal/clients/places"
	"github.com/eatsential/eatsential-backend/internal/repos"
	"github.com/eatsential/eatsential-backend/internal/types"
)

func TestSaveFromPlaceIdempotent(t *testing.T) {
	db := newTestDB(t)
	log := newTestLogger(t)
	svc := NewRestaurantService(repos.NewRestaurantRepo(db, log), DefaultRules(), log)
	ctx := context.Background()

	place := places.Place{
		PlaceID: "ChIJabc123",
		Name:    "Thai Basil",
		Address: "5 Oak Ave",
		Types:   []string{"thai_restaurant", "restaurant"},
	}

	first, err := svc.SaveFromPlace(ctx, place, "")
	if err != nil {
		t.Fatalf("first save failed: %v", err)
	}
	if first.ID != place.PlaceID {
		t.Fatalf("restaurant id = %q, want place id %q", first.ID, place.PlaceID)
	}
	if first.Cuisine != "thai" {
		t.Fatalf("cuisine = %q, want thai", first.Cuisine)
	}

	second, err := svc.SaveFromPlace(ctx, place, "")
	if err != nil {
		t.Fatalf("second save failed: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("second save returned a different row: %q", second.ID)
	}

	var count int64
	if err := db.Model(&types.Restaurant{}).Count(&count).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 restaurant row, got %d", count)
	}
}

func TestSaveFromPlaceFillsMissingFields(t *testing.T) {
	db := newTestDB(t)
	log := newTestLogger(t)
	svc := NewRestaurantService(repos.NewRestaurantRepo(db, log), DefaultRules(), log)
	ctx := context.Background()

	seedRestaurant(t, db, "ChIJdef456", "La Piazza", "")
	if err := db.Model(&types.Restaurant{}).Where("id = ?", "ChIJdef456").Update("address", "").Error; err != nil {
		t.Fatalf("failed to clear address: %v", err)
	}

	updated, err := svc.SaveFromPlace(ctx, places.Place{
		PlaceID: "ChIJdef456",
		Name:    "La Piazza",
		Address: "9 Elm St",
		Types:   []string{"pizza_restaurant"},
	}, "")
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if updated.Address != "9 Elm St" {
		t.Fatalf("address = %q, want filled from place", updated.Address)
	}
	if updated.Cuisine != "italian" {
		t.Fatalf("cuisine = %q, want italian", updated.Cuisine)
	}
}

func TestSaveFromPlaceSkipsIncomplete(t *testing.T) {
	db := newTestDB(t)
	log := newTestLogger(t)
	svc := NewRestaurantService(repos.NewRestaurantRepo(db, log), DefaultRules(), log)

	saved, err := svc.SaveFromPlace(context.Background(), places.Place{Name: "No ID"}, "")
	if err != nil {
		t.Fatalf("incomplete place must not error: %v", err)
	}
	if saved != nil {
		t.Fatalf("incomplete place must not be saved")
	}
}

func TestExtractCuisine(t *testing.T) {
	db := newTestDB(t)
	log := newTestLogger(t)
	svc := NewRestaurantService(repos.NewRestaurantRepo(db, log), DefaultRules(), log)

	cases := []struct {
		name  string
		types []string
		want  string
	}{
		{name: "sushi", types: []string{"sushi_restaurant"}, want: "japanese"},
		{name: "pizza", types: []string{"meal_takeaway", "pizza_restaurant"}, want: "italian"},
		{name: "taco", types: []string{"taco_stand"}, want: "mexican"},
		{name: "no_match", types: []string{"cafe", "bakery"}, want: ""},
		{name: "empty", types: nil, want: ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := svc.ExtractCuisine(tc.types); got != tc.want {
				t.Fatalf("ExtractCuisine(%v) = %q, want %q", tc.types, got, tc.want)
			}
		})
	}
}
