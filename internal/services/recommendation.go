package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/eatsential/eatsential-backend/internal/clients/places"
	"github.com/eatsential/eatsential-backend/internal/logger"
	errs "github.com/eatsential/eatsential-backend/internal/pkg/errors"
	"github.com/eatsential/eatsential-backend/internal/repos"
	"github.com/eatsential/eatsential-backend/internal/types"
)

const (
	defaultMaxResults       = 5
	defaultSearchMaxResults = 20
	// defaultSearchDelay spaces sequential place searches to stay friendly
	// with provider rate limits.
	defaultSearchDelay = 200 * time.Millisecond
)

// RecommendationService runs the full pipeline: load the user's health
// context, source candidates (remote place search first, local catalog as
// fallback), drop anything unsafe or disliked, rank, boost liked items,
// diversify, and truncate.
//
// Degradation policy: remote sourcing, feedback reads, and LLM ranking are
// all best-effort. Their failures are logged and absorbed. Only a missing
// user or invalid client input surfaces as an error.
type RecommendationService interface {
	GetMealRecommendations(ctx context.Context, userID uuid.UUID, req types.RecommendationRequest) (*types.RecommendationResponse, error)
	GetRestaurantRecommendations(ctx context.Context, userID uuid.UUID, req types.RecommendationRequest) (*types.RecommendationResponse, error)
}

type RecommendationOptions struct {
	// MaxResults caps the final response length. Zero means the default of 5.
	MaxResults int
	// SearchMaxResults caps each remote place search. Zero means 20.
	SearchMaxResults int
	// SearchDelay spaces sequential place searches. Zero means 200ms.
	SearchDelay time.Duration
}

type recommendationService struct {
	userRepo       repos.UserRepo
	restaurantRepo repos.RestaurantRepo
	menuItemRepo   repos.MenuItemRepo

	feedbackService   FeedbackService
	restaurantService RestaurantService
	placesClient      places.Client // nil when place search is not configured

	safety   *SafetyFilter
	baseline *BaselineRanker
	llm      *LLMRanker
	rules    *Rules

	log  *logger.Logger
	opts RecommendationOptions

	// sleep is swapped out in tests.
	sleep func(time.Duration)
}

func NewRecommendationService(
	baseLog *logger.Logger,
	userRepo repos.UserRepo,
	restaurantRepo repos.RestaurantRepo,
	menuItemRepo repos.MenuItemRepo,
	feedbackService FeedbackService,
	restaurantService RestaurantService,
	placesClient places.Client,
	safety *SafetyFilter,
	baseline *BaselineRanker,
	llm *LLMRanker,
	rules *Rules,
	opts RecommendationOptions,
) RecommendationService {
	if opts.MaxResults <= 0 {
		opts.MaxResults = defaultMaxResults
	}
	if opts.SearchMaxResults <= 0 {
		opts.SearchMaxResults = defaultSearchMaxResults
	}
	if opts.SearchDelay <= 0 {
		opts.SearchDelay = defaultSearchDelay
	}
	return &recommendationService{
		userRepo:          userRepo,
		restaurantRepo:    restaurantRepo,
		menuItemRepo:      menuItemRepo,
		feedbackService:   feedbackService,
		restaurantService: restaurantService,
		placesClient:      placesClient,
		safety:            safety,
		baseline:          baseline,
		llm:               llm,
		rules:             rules,
		log:               baseLog.With("service", "RecommendationService"),
		opts:              opts,
		sleep:             time.Sleep,
	}
}

func (rs *recommendationService) GetMealRecommendations(ctx context.Context, userID uuid.UUID, req types.RecommendationRequest) (*types.RecommendationResponse, error) {
	uc, err := rs.loadUserContext(ctx, userID)
	if err != nil {
		return nil, err
	}
	filters := requestFilters(req)

	sourcing := rs.sourceCandidates(ctx, uc, filters)

	items, err := rs.loadMenuItems(ctx, sourcing.placeIDs)
	if err != nil {
		return nil, err
	}

	safe := rs.safety.FilterMenuItems(uc, items)
	rs.log.Info("Safety filter applied", "user_id", userID, "candidates", len(items), "safe", len(safe))
	if len(safe) == 0 {
		return &types.RecommendationResponse{Items: []types.RecommendedItem{}}, nil
	}

	disliked, liked := rs.feedbackSets(ctx, userID, types.FeedbackItemTypeMeal)
	safe = filterDislikedMenuItems(safe, disliked)
	if len(safe) == 0 {
		return &types.RecommendationResponse{Items: []types.RecommendedItem{}}, nil
	}

	var ranked []types.RecommendedItem
	if requestMode(req) == types.RecommendationModeLLM {
		ranked, err = rs.llm.RankMeals(ctx, uc, safe, filters, sourcing.remoteIndex)
		if err != nil || len(ranked) == 0 {
			if err != nil {
				rs.log.Warn("LLM ranking failed, falling back to baseline", "user_id", userID, "error", err)
			}
			ranked = rs.baseline.RankMeals(uc, safe, filters)
		}
	} else {
		ranked = rs.baseline.RankMeals(uc, safe, filters)
	}

	return rs.finalize(ranked, liked, sourcing.remoteIndex), nil
}

func (rs *recommendationService) GetRestaurantRecommendations(ctx context.Context, userID uuid.UUID, req types.RecommendationRequest) (*types.RecommendationResponse, error) {
	uc, err := rs.loadUserContext(ctx, userID)
	if err != nil {
		return nil, err
	}
	filters := requestFilters(req)

	sourcing := rs.sourceCandidates(ctx, uc, filters)

	restaurants, err := rs.loadRestaurants(ctx, sourcing.placeIDs)
	if err != nil {
		return nil, err
	}

	safe, menuMap := rs.safety.FilterRestaurants(uc, restaurants)
	rs.log.Info("Safety filter applied", "user_id", userID, "candidates", len(restaurants), "safe", len(safe))
	if len(safe) == 0 {
		return &types.RecommendationResponse{Items: []types.RecommendedItem{}}, nil
	}

	disliked, liked := rs.feedbackSets(ctx, userID, types.FeedbackItemTypeRestaurant)
	safe = filterDislikedRestaurants(safe, disliked)
	if len(safe) == 0 {
		return &types.RecommendationResponse{Items: []types.RecommendedItem{}}, nil
	}

	var ranked []types.RecommendedItem
	if requestMode(req) == types.RecommendationModeLLM {
		ranked, err = rs.llm.RankRestaurants(ctx, uc, safe, menuMap, filters, sourcing.remoteIndex)
		if err != nil || len(ranked) == 0 {
			if err != nil {
				rs.log.Warn("LLM ranking failed, falling back to baseline", "user_id", userID, "error", err)
			}
			ranked = rs.baseline.RankRestaurants(uc, safe, menuMap, filters)
		}
	} else {
		ranked = rs.baseline.RankRestaurants(uc, safe, menuMap, filters)
	}

	return rs.finalize(ranked, liked, sourcing.remoteIndex), nil
}

// finalize applies the shared post-ranking stages in their fixed order:
// liked-item boost, restaurant diversity, remote enrichment, truncation.
func (rs *recommendationService) finalize(ranked []types.RecommendedItem, liked map[string]struct{}, remoteIndex map[string]places.Place) *types.RecommendationResponse {
	items := applyFeedbackBoosts(ranked, liked)
	items = InterleaveByRestaurant(items, defaultMaxSameRestaurant)
	items = enrichFromPlaces(items, remoteIndex)
	if len(items) > rs.opts.MaxResults {
		items = items[:rs.opts.MaxResults]
	}
	if items == nil {
		items = []types.RecommendedItem{}
	}
	return &types.RecommendationResponse{Items: items}
}

func (rs *recommendationService) loadUserContext(ctx context.Context, userID uuid.UUID) (*UserContext, error) {
	user, err := rs.userRepo.GetWithHealthContext(ctx, nil, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user %s", errs.ErrNotFound, userID)
		}
		return nil, err
	}
	return buildUserContext(user), nil
}

// ------------------------------------------------------------------ //
// Candidate sourcing
// ------------------------------------------------------------------ //

type candidateSourcingResult struct {
	// placeIDs restricts the catalog query to remotely discovered
	// restaurants; empty means "use the whole local catalog".
	placeIDs    []string
	remoteIndex map[string]places.Place
}

// sourceCandidates runs one place search per requested or preferred cuisine
// and upserts the results into the catalog. Every failure here degrades to
// the local catalog.
func (rs *recommendationService) sourceCandidates(ctx context.Context, uc *UserContext, filters types.RecommendationFilters) candidateSourcingResult {
	result := candidateSourcingResult{remoteIndex: map[string]places.Place{}}
	if rs.placesClient == nil {
		return result
	}

	cuisines := filters.Cuisine
	if len(cuisines) == 0 {
		cuisines = uc.PreferredCuisines
	}
	queries := make([]searchQuery, 0, len(cuisines))
	for _, cuisine := range cuisines {
		cuisine = strings.ToLower(strings.TrimSpace(cuisine))
		if cuisine == "" {
			continue
		}
		queries = append(queries, searchQuery{text: cuisine + " restaurants", cuisineHint: cuisine})
	}
	if len(queries) == 0 {
		queries = append(queries, searchQuery{text: "restaurants"})
	}

	seen := make(map[string]struct{})
	for i, query := range queries {
		if i > 0 {
			rs.sleep(rs.opts.SearchDelay)
		}

		found, err := rs.placesClient.Search(ctx, query.text, rs.opts.SearchMaxResults)
		if err != nil {
			rs.log.Warn("Place search failed", "query", query.text, "error", err)
			continue
		}

		for _, place := range found {
			if place.PlaceID == "" {
				continue
			}
			if _, dup := seen[place.PlaceID]; dup {
				continue
			}
			if !rs.rules.PriceLevelInRange(place.PriceLevel, filters.PriceRange) {
				continue
			}
			seen[place.PlaceID] = struct{}{}

			saved, err := rs.restaurantService.SaveFromPlace(ctx, place, query.cuisineHint)
			if err != nil {
				rs.log.Warn("Failed to save place", "place_id", place.PlaceID, "error", err)
				continue
			}
			if saved == nil {
				continue
			}
			result.placeIDs = append(result.placeIDs, place.PlaceID)
			result.remoteIndex[place.PlaceID] = place
		}
	}

	rs.log.Info("Candidate sourcing complete", "queries", len(queries), "places", len(result.placeIDs))
	return result
}

type searchQuery struct {
	text        string
	cuisineHint string
}

func (rs *recommendationService) loadMenuItems(ctx context.Context, placeIDs []string) ([]*types.MenuItem, error) {
	if len(placeIDs) > 0 {
		items, err := rs.menuItemRepo.ListByRestaurantIDs(ctx, nil, placeIDs)
		if err != nil {
			return nil, err
		}
		if len(items) > 0 {
			return items, nil
		}
		// Discovered restaurants have no catalog menus yet.
	}
	return rs.menuItemRepo.ListActive(ctx, nil)
}

func (rs *recommendationService) loadRestaurants(ctx context.Context, placeIDs []string) ([]*types.Restaurant, error) {
	if len(placeIDs) > 0 {
		restaurants, err := rs.restaurantRepo.ListByIDsWithMenus(ctx, nil, placeIDs)
		if err != nil {
			return nil, err
		}
		if len(restaurants) > 0 {
			return restaurants, nil
		}
	}
	return rs.restaurantRepo.ListActiveWithMenus(ctx, nil)
}

// feedbackSets reads the user's disliked and liked item sets. Read failures
// log and degrade to empty sets rather than failing the request.
func (rs *recommendationService) feedbackSets(ctx context.Context, userID uuid.UUID, itemType string) (disliked, liked map[string]struct{}) {
	var err error
	disliked, err = rs.feedbackService.DislikedItems(ctx, userID, itemType)
	if err != nil {
		rs.log.Warn("Failed to load disliked items", "user_id", userID, "error", err)
		disliked = map[string]struct{}{}
	}
	liked, err = rs.feedbackService.LikedItems(ctx, userID, itemType)
	if err != nil {
		rs.log.Warn("Failed to load liked items", "user_id", userID, "error", err)
		liked = map[string]struct{}{}
	}
	return disliked, liked
}

func filterDislikedMenuItems(items []*types.MenuItem, disliked map[string]struct{}) []*types.MenuItem {
	if len(disliked) == 0 {
		return items
	}
	kept := make([]*types.MenuItem, 0, len(items))
	for _, item := range items {
		if _, bad := disliked[item.ID.String()]; bad {
			continue
		}
		kept = append(kept, item)
	}
	return kept
}

func filterDislikedRestaurants(restaurants []*types.Restaurant, disliked map[string]struct{}) []*types.Restaurant {
	if len(disliked) == 0 {
		return restaurants
	}
	kept := make([]*types.Restaurant, 0, len(restaurants))
	for _, restaurant := range restaurants {
		if _, bad := disliked[restaurant.ID]; bad {
			continue
		}
		kept = append(kept, restaurant)
	}
	return kept
}

// enrichFromPlaces overlays fresher place-search metadata onto results that
// reference a discovered restaurant.
func enrichFromPlaces(recs []types.RecommendedItem, remoteIndex map[string]places.Place) []types.RecommendedItem {
	if len(remoteIndex) == 0 {
		return recs
	}
	for i := range recs {
		if place, ok := remoteIndex[recs[i].RestaurantPlaceID]; ok {
			recs[i].RestaurantName = place.Name
			recs[i].RestaurantAddress = place.Address
		}
	}
	return recs
}

func requestFilters(req types.RecommendationRequest) types.RecommendationFilters {
	if req.Filters == nil {
		return types.RecommendationFilters{}
	}
	return *req.Filters
}

func requestMode(req types.RecommendationRequest) string {
	if req.Mode == types.RecommendationModeBaseline {
		return types.RecommendationModeBaseline
	}
	return types.RecommendationModeLLM
}
