package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"strconv"
	"strings"

	"github.com/eatsential/eatsential-backend/internal/clients/openai"
	"github.com/eatsential/eatsential-backend/internal/clients/places"
	"github.com/eatsential/eatsential-backend/internal/logger"
	errs "github.com/eatsential/eatsential-backend/internal/pkg/errors"
	"github.com/eatsential/eatsential-backend/internal/types"
)

// maxLLMCandidates caps how many candidates are serialized into one prompt;
// larger pools are randomly subsampled.
const maxLLMCandidates = 100

const llmSystemPrompt = "You are a helpful dining assistant."

const mockMaxItems = 5

// LLMRanker delegates ranking and explanation generation to the LLM
// collaborator. A nil client puts the ranker into deterministic mock mode
// (no credential configured, or the test sentinel), which never touches the
// network. Any failure on the live path is recoverable: the orchestrator
// falls back to baseline ranking.
type LLMRanker struct {
	log         *logger.Logger
	ai          openai.Client
	temperature float64
}

func NewLLMRanker(log *logger.Logger, ai openai.Client, temperature float64) *LLMRanker {
	return &LLMRanker{
		log:         log.With("service", "LLMRanker"),
		ai:          ai,
		temperature: temperature,
	}
}

func (r *LLMRanker) RankMeals(ctx context.Context, uc *UserContext, items []*types.MenuItem, filters types.RecommendationFilters, remoteIndex map[string]places.Place) ([]types.RecommendedItem, error) {
	if r.ai == nil {
		return r.mockRankMeals(items), nil
	}

	items = subsampleMenuItems(items)
	prompt := r.buildPrompt(uc, serializeMenuItems(items), filters)

	raw, err := r.ai.GenerateJSON(ctx, llmSystemPrompt, prompt, r.temperature)
	if err != nil {
		return nil, err
	}
	suggestions, err := parseLLMSuggestions(raw)
	if err != nil {
		return nil, err
	}

	lookup := make(map[string]*types.MenuItem, len(items))
	for _, item := range items {
		lookup[item.ID.String()] = item
	}

	results := make([]types.RecommendedItem, 0, len(suggestions))
	for _, entry := range suggestions {
		itemID := stringField(entry, "item_id")
		if itemID == "" {
			continue
		}
		item, ok := lookup[itemID]
		if !ok {
			// The model can hallucinate ids despite instructions.
			continue
		}

		rec := types.RecommendedItem{
			ItemID:      item.ID.String(),
			Name:        firstNonEmpty(stringField(entry, "name"), item.Name),
			Score:       scoreField(entry),
			Explanation: firstNonEmpty(strings.TrimSpace(stringField(entry, "explanation")), "Selected by LLM ranking"),
			Price:       item.Price,
			Calories:    item.Calories,
		}
		if item.Restaurant != nil {
			// Authoritative restaurant metadata comes from the place-search
			// side table or the catalog, never from the LLM's own text.
			applyRestaurantInfo(&rec, item.Restaurant.ID, item.Restaurant.Name, item.Restaurant.Address, remoteIndex)
		}
		results = append(results, rec)
	}

	sortRecommendations(results)
	return dedupeByItemID(results), nil
}

func (r *LLMRanker) RankRestaurants(ctx context.Context, uc *UserContext, restaurants []*types.Restaurant, menuMap map[string][]*types.MenuItem, filters types.RecommendationFilters, remoteIndex map[string]places.Place) ([]types.RecommendedItem, error) {
	if r.ai == nil {
		return r.mockRankRestaurants(restaurants), nil
	}

	restaurants = subsampleRestaurants(restaurants)
	prompt := r.buildPrompt(uc, serializeRestaurants(restaurants, menuMap), filters)

	raw, err := r.ai.GenerateJSON(ctx, llmSystemPrompt, prompt, r.temperature)
	if err != nil {
		return nil, err
	}
	suggestions, err := parseLLMSuggestions(raw)
	if err != nil {
		return nil, err
	}

	lookup := make(map[string]*types.Restaurant, len(restaurants))
	for _, restaurant := range restaurants {
		lookup[restaurant.ID] = restaurant
	}

	results := make([]types.RecommendedItem, 0, len(suggestions))
	for _, entry := range suggestions {
		itemID := stringField(entry, "item_id")
		if itemID == "" {
			continue
		}
		restaurant, ok := lookup[itemID]
		if !ok {
			continue
		}

		rec := types.RecommendedItem{
			ItemID:      restaurant.ID,
			Name:        firstNonEmpty(stringField(entry, "name"), restaurant.Name),
			Score:       scoreField(entry),
			Explanation: firstNonEmpty(strings.TrimSpace(stringField(entry, "explanation")), "Selected by LLM ranking"),
		}
		applyRestaurantInfo(&rec, restaurant.ID, restaurant.Name, restaurant.Address, remoteIndex)
		results = append(results, rec)
	}

	sortRecommendations(results)
	return dedupeByItemID(results), nil
}

func applyRestaurantInfo(rec *types.RecommendedItem, placeID, catalogName, catalogAddress string, remoteIndex map[string]places.Place) {
	rec.RestaurantPlaceID = placeID
	if place, ok := remoteIndex[placeID]; ok {
		rec.RestaurantName = place.Name
		rec.RestaurantAddress = place.Address
		return
	}
	rec.RestaurantName = catalogName
	rec.RestaurantAddress = catalogAddress
}

// ------------------------------------------------------------------ //
// Mock mode
// ------------------------------------------------------------------ //

// mockRankMeals round-robins up to five items across distinct restaurants
// with scores 0.9, 0.8, ... so offline runs still produce plausible,
// restaurant-diverse output.
func (r *LLMRanker) mockRankMeals(items []*types.MenuItem) []types.RecommendedItem {
	var order []string
	groups := make(map[string][]*types.MenuItem)
	for _, item := range items {
		key := ""
		if item.Restaurant != nil {
			key = item.Restaurant.ID
		}
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], item)
	}

	var results []types.RecommendedItem
	next := make(map[string]int, len(groups))
	score := 0.9
	for len(results) < mockMaxItems {
		addedInRound := false
		for _, key := range order {
			if len(results) >= mockMaxItems {
				break
			}
			if next[key] >= len(groups[key]) {
				continue
			}
			item := groups[key][next[key]]
			next[key]++

			rec := types.RecommendedItem{
				ItemID:      item.ID.String(),
				Name:        item.Name,
				Score:       clampScore(score),
				Explanation: fmt.Sprintf("This %s is a great choice for testing!", item.Name),
				Price:       item.Price,
				Calories:    item.Calories,
			}
			if item.Restaurant != nil {
				rec.RestaurantName = item.Restaurant.Name
				rec.RestaurantAddress = item.Restaurant.Address
				rec.RestaurantPlaceID = item.Restaurant.ID
			}
			results = append(results, rec)
			score -= 0.1
			addedInRound = true
		}
		if !addedInRound {
			break
		}
	}
	return results
}

func (r *LLMRanker) mockRankRestaurants(restaurants []*types.Restaurant) []types.RecommendedItem {
	var results []types.RecommendedItem
	score := 0.9
	for _, restaurant := range restaurants {
		if len(results) >= mockMaxItems {
			break
		}
		results = append(results, types.RecommendedItem{
			ItemID:            restaurant.ID,
			Name:              restaurant.Name,
			Score:             clampScore(score),
			Explanation:       fmt.Sprintf("%s offers excellent %s cuisine for testing!", restaurant.Name, restaurant.Cuisine),
			RestaurantName:    restaurant.Name,
			RestaurantAddress: restaurant.Address,
			RestaurantPlaceID: restaurant.ID,
		})
		score -= 0.1
	}
	return results
}

// ------------------------------------------------------------------ //
// Prompt construction
// ------------------------------------------------------------------ //

func (r *LLMRanker) buildPrompt(uc *UserContext, candidates []map[string]any, filters types.RecommendationFilters) string {
	profile := serializeUserProfile(uc)
	filtersPayload := map[string]any{
		"diet":        emptyIfNil(filters.Diet),
		"cuisine":     emptyIfNil(filters.Cuisine),
		"price_range": filters.PriceRange,
	}

	var sb strings.Builder
	sb.WriteString("User Profile:\n")
	sb.WriteString(mustIndentJSON(profile))
	sb.WriteString("\n\nFilters:\n")
	sb.WriteString(mustIndentJSON(filtersPayload))
	sb.WriteString("\n\nCandidate Restaurants:\n")
	sb.WriteString(mustIndentJSON(candidates))
	sb.WriteString("\n\nTASK:\n")
	sb.WriteString("Select the TOP 5 results ONLY from the candidate list provided.\n")
	sb.WriteString("You MUST NOT invent or modify restaurant names or addresses.\n")
	sb.WriteString("Use ONLY the candidates shown in the list.\n\n")
	sb.WriteString("For each returned result, include:\n")
	sb.WriteString("- item_id\n- name\n- restaurant_name\n- restaurant_address\n- score (0.0-1.0)\n- explanation\n\n")
	sb.WriteString("Output ONLY valid JSON in this format:\n")
	sb.WriteString(`[{"item_id": "...", "name": "...", "restaurant_name": "...", "restaurant_address": "...", "score": 0.9, "explanation": "..."}]`)
	sb.WriteString("\n")
	return sb.String()
}

func serializeUserProfile(uc *UserContext) map[string]any {
	goals := make([]map[string]any, 0, len(uc.HealthGoals))
	for _, goal := range uc.HealthGoals {
		goals = append(goals, map[string]any{
			"id":           goal.ID.String(),
			"type":         goal.GoalType,
			"target_type":  goal.TargetType,
			"target_value": goal.TargetValue,
		})
	}

	profile := map[string]any{
		"user_id":                    uc.User.ID.String(),
		"allergies":                  emptyIfNil(uc.Allergies),
		"strict_dietary_preferences": emptyIfNil(uc.StrictDietaryPreferences),
		"preferred_cuisines":         emptyIfNil(uc.PreferredCuisines),
		"health_goals":               goals,
		"location": map[string]any{
			"city":      uc.User.City,
			"state":     uc.User.State,
			"zip_code":  uc.User.ZipCode,
			"latitude":  uc.User.Latitude,
			"longitude": uc.User.Longitude,
		},
	}

	if hp := uc.User.HealthProfile; hp != nil {
		profile["biometrics"] = map[string]any{
			"height_cm":      hp.HeightCm,
			"weight_kg":      hp.WeightKg,
			"activity_level": hp.ActivityLevel,
		}
	}
	return profile
}

func serializeMenuItems(items []*types.MenuItem) []map[string]any {
	payload := make([]map[string]any, 0, len(items))
	for _, item := range items {
		entry := map[string]any{
			"item_id":     item.ID.String(),
			"name":        item.Name,
			"description": item.Description,
			"calories":    item.Calories,
			"price":       item.Price,
		}
		if item.Restaurant != nil {
			entry["restaurant"] = item.Restaurant.Name
			entry["cuisine"] = item.Restaurant.Cuisine
		}
		payload = append(payload, entry)
	}
	return payload
}

func serializeRestaurants(restaurants []*types.Restaurant, menuMap map[string][]*types.MenuItem) []map[string]any {
	payload := make([]map[string]any, 0, len(restaurants))
	for _, restaurant := range restaurants {
		sample := make([]map[string]any, 0, 10)
		for _, item := range menuMap[restaurant.ID] {
			if len(sample) >= 10 {
				break
			}
			sample = append(sample, map[string]any{
				"item_id":     item.ID.String(),
				"name":        item.Name,
				"description": item.Description,
				"calories":    item.Calories,
				"price":       item.Price,
			})
		}
		payload = append(payload, map[string]any{
			"item_id":           restaurant.ID,
			"name":              restaurant.Name,
			"cuisine":           restaurant.Cuisine,
			"address":           restaurant.Address,
			"sample_menu_items": sample,
		})
	}
	return payload
}

func subsampleMenuItems(items []*types.MenuItem) []*types.MenuItem {
	if len(items) <= maxLLMCandidates {
		return items
	}
	shuffled := make([]*types.MenuItem, len(items))
	copy(shuffled, items)
	rand.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
	return shuffled[:maxLLMCandidates]
}

func subsampleRestaurants(restaurants []*types.Restaurant) []*types.Restaurant {
	if len(restaurants) <= maxLLMCandidates {
		return restaurants
	}
	shuffled := make([]*types.Restaurant, len(restaurants))
	copy(shuffled, restaurants)
	rand.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
	return shuffled[:maxLLMCandidates]
}

// ------------------------------------------------------------------ //
// Response parsing
// ------------------------------------------------------------------ //

// parseLLMSuggestions normalizes whatever shape the model replied with into
// a flat list of suggestion objects. Tolerated shapes: a bare JSON array, an
// object wrapping the list under output/result/candidates/data/items, a
// single suggestion object, and JSON nested inside a string. Anything else
// is a malformed response.
func parseLLMSuggestions(raw string) ([]map[string]any, error) {
	var value any
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &value); err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrMalformedLLMResponse, err)
	}
	return normalizeSuggestions(value, 0)
}

func normalizeSuggestions(value any, depth int) ([]map[string]any, error) {
	if depth > 5 {
		return nil, fmt.Errorf("%w: nesting too deep", errs.ErrMalformedLLMResponse)
	}

	switch v := value.(type) {
	case []any:
		entries := make([]map[string]any, 0, len(v))
		for _, entry := range v {
			m, ok := entry.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("%w: suggestion entry is not an object", errs.ErrMalformedLLMResponse)
			}
			entries = append(entries, m)
		}
		return entries, nil

	case map[string]any:
		for _, key := range []string{"output", "result", "data", "items"} {
			if wrapped, ok := v[key]; ok && wrapped != nil {
				return normalizeSuggestions(wrapped, depth+1)
			}
		}
		if candidates, ok := v["candidates"].([]any); ok {
			// Typed-response shape: text parts nested under candidates.
			for _, candidate := range candidates {
				cm, ok := candidate.(map[string]any)
				if !ok {
					continue
				}
				content, _ := cm["content"].(map[string]any)
				parts, _ := content["parts"].([]any)
				var text strings.Builder
				for _, part := range parts {
					if pm, ok := part.(map[string]any); ok {
						if s, ok := pm["text"].(string); ok {
							text.WriteString(s)
						}
					}
				}
				if text.Len() > 0 {
					return normalizeSuggestions(text.String(), depth+1)
				}
			}
			return nil, fmt.Errorf("%w: candidates without text parts", errs.ErrMalformedLLMResponse)
		}
		return []map[string]any{v}, nil

	case string:
		var nested any
		if err := json.Unmarshal([]byte(strings.TrimSpace(v)), &nested); err != nil {
			return nil, fmt.Errorf("%w: %v", errs.ErrMalformedLLMResponse, err)
		}
		return normalizeSuggestions(nested, depth+1)

	default:
		return nil, fmt.Errorf("%w: unrecognized response shape", errs.ErrMalformedLLMResponse)
	}
}

func stringField(entry map[string]any, key string) string {
	switch v := entry[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

// scoreField clamps to [0,1]; anything unparseable scores 0.0.
func scoreField(entry map[string]any) float64 {
	switch v := entry["score"].(type) {
	case float64:
		return clampScore(v)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0.0
		}
		return clampScore(parsed)
	default:
		return 0.0
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func emptyIfNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

func mustIndentJSON(v any) string {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(raw)
}
