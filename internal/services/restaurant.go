package services

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strings"

	"gorm.io/gorm"

	"github.com/eatsential/eatsential-backend/internal/clients/places"
	"github.com/eatsential/eatsential-backend/internal/logger"
	"github.com/eatsential/eatsential-backend/internal/repos"
	"github.com/eatsential/eatsential-backend/internal/types"
)

// RestaurantService keeps the local catalog in sync with remotely discovered
// places. Rows are keyed by provider place id so repeated discovery of the
// same restaurant is an update, never a duplicate.
type RestaurantService interface {
	// SaveFromPlace upserts a catalog row for the given place. Places without
	// an id or a name are skipped and return (nil, nil).
	SaveFromPlace(ctx context.Context, place places.Place, cuisineHint string) (*types.Restaurant, error)
	// ExtractCuisine classifies provider place types into a canonical cuisine
	// label, returning "" when none match.
	ExtractCuisine(placeTypes []string) string
}

type restaurantService struct {
	restaurantRepo repos.RestaurantRepo
	rules          *Rules
	log            *logger.Logger
}

func NewRestaurantService(restaurantRepo repos.RestaurantRepo, rules *Rules, baseLog *logger.Logger) RestaurantService {
	return &restaurantService{
		restaurantRepo: restaurantRepo,
		rules:          rules,
		log:            baseLog.With("service", "RestaurantService"),
	}
}

func (rs *restaurantService) SaveFromPlace(ctx context.Context, place places.Place, cuisineHint string) (*types.Restaurant, error) {
	if place.PlaceID == "" || place.Name == "" {
		rs.log.Debug("Skipping place without id or name", "name", place.Name)
		return nil, nil
	}

	cuisine := rs.ExtractCuisine(place.Types)
	if cuisine == "" {
		cuisine = strings.ToLower(strings.TrimSpace(cuisineHint))
	}

	existing, err := rs.restaurantRepo.GetByIDOrName(ctx, nil, place.PlaceID, place.Name)
	if err == nil {
		return rs.updateExisting(ctx, existing, place, cuisine)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	created, err := rs.create(ctx, place, cuisine)
	if err == nil {
		return created, nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// Lost an insert race with a concurrent request. Re-fetch and update.
		existing, fetchErr := rs.restaurantRepo.GetByIDOrName(ctx, nil, place.PlaceID, place.Name)
		if fetchErr != nil {
			return nil, fetchErr
		}
		return rs.updateExisting(ctx, existing, place, cuisine)
	}
	return nil, err
}

func (rs *restaurantService) create(ctx context.Context, place places.Place, cuisine string) (*types.Restaurant, error) {
	restaurant := &types.Restaurant{
		ID:       place.PlaceID,
		Name:     place.Name,
		Address:  place.Address,
		Cuisine:  cuisine,
		IsActive: true,
	}
	if raw, err := json.Marshal(place); err == nil {
		restaurant.PlaceData = raw
	}

	created, err := rs.restaurantRepo.Create(ctx, nil, restaurant)
	if err != nil {
		return nil, err
	}
	rs.log.Info("Saved restaurant from place search", "restaurant_id", created.ID, "name", created.Name)
	return created, nil
}

// updateExisting fills in fields the catalog row is missing; discovered data
// never overwrites curated data.
func (rs *restaurantService) updateExisting(ctx context.Context, existing *types.Restaurant, place places.Place, cuisine string) (*types.Restaurant, error) {
	changed := false
	if existing.Address == "" && place.Address != "" {
		existing.Address = place.Address
		changed = true
	}
	if existing.Cuisine == "" && cuisine != "" {
		existing.Cuisine = cuisine
		changed = true
	}
	if len(existing.PlaceData) == 0 {
		if raw, err := json.Marshal(place); err == nil {
			existing.PlaceData = raw
			changed = true
		}
	}
	if !changed {
		return existing, nil
	}
	return rs.restaurantRepo.Save(ctx, nil, existing)
}

func (rs *restaurantService) ExtractCuisine(placeTypes []string) string {
	cuisines := make([]string, 0, len(rs.rules.CuisineKeywords))
	for cuisine := range rs.rules.CuisineKeywords {
		cuisines = append(cuisines, cuisine)
	}
	sort.Strings(cuisines)

	for _, placeType := range placeTypes {
		t := strings.ToLower(placeType)
		for _, cuisine := range cuisines {
			for _, keyword := range rs.rules.CuisineKeywords[cuisine] {
				if strings.Contains(t, keyword) {
					return cuisine
				}
			}
		}
	}
	return ""
}
