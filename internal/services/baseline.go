package services

import (
	"fmt"
	"sort"
	"strings"

	"github.com/eatsential/eatsential-backend/internal/types"
)

// BaselineRanker is the deterministic, explainable heuristic scorer. It is
// the default engine when LLM ranking is disabled and the fallback when the
// LLM path fails. Identical input always yields identical output; ties are
// broken by ascending item id.
type BaselineRanker struct {
	rules *Rules
}

func NewBaselineRanker(rules *Rules) *BaselineRanker {
	return &BaselineRanker{rules: rules}
}

func (b *BaselineRanker) RankMeals(uc *UserContext, items []*types.MenuItem, filters types.RecommendationFilters) []types.RecommendedItem {
	results := make([]types.RecommendedItem, 0, len(items))
	allowedCuisines := lowerSet(filters.Cuisine)

	for _, item := range items {
		cuisine := ""
		if item.Restaurant != nil {
			cuisine = strings.ToLower(item.Restaurant.Cuisine)
		}
		text := menuItemText(item)

		// Hard filters, not penalties.
		if filters.PriceRange != "" && !b.rules.PriceInRange(item.Price, filters.PriceRange) {
			continue
		}
		if len(allowedCuisines) > 0 && cuisine != "" && !allowedCuisines[cuisine] {
			continue
		}

		score := 0.35
		var explanationBits []string

		if cuisine != "" {
			explanationBits = append(explanationBits, "Cuisine: "+item.Restaurant.Cuisine)
			if uc.prefersCuisine(cuisine) {
				score += 0.20
			}
			if allowedCuisines[cuisine] {
				score += 0.15
			}
		}

		if item.Price != nil {
			explanationBits = append(explanationBits, fmt.Sprintf("Price: $%.2f", *item.Price))
			if filters.PriceRange != "" {
				score += 0.15
			} else {
				score += 0.05
			}
		}

		if matches := dietMatches(filters.Diet, text); len(matches) > 0 {
			score += 0.10
			explanationBits = append(explanationBits, "Matches diet: "+strings.Join(matches, ", "))
		}

		if item.Calories != nil {
			explanationBits = append(explanationBits, fmt.Sprintf("%.0f kcal", *item.Calories))
			if supportsCalorieGoal(uc.HealthGoals, *item.Calories) {
				score += 0.10
			}
		}

		if len(uc.HealthGoals) > 0 && b.mentionsGoalKeywords(text, uc.HealthGoals) {
			score += 0.05
		}

		rec := types.RecommendedItem{
			ItemID:      item.ID.String(),
			Name:        item.Name,
			Score:       clampScore(score),
			Explanation: joinExplanation(explanationBits, "Matches user preferences"),
			Price:       item.Price,
			Calories:    item.Calories,
		}
		if item.Restaurant != nil {
			rec.RestaurantName = item.Restaurant.Name
			rec.RestaurantAddress = item.Restaurant.Address
			rec.RestaurantPlaceID = item.Restaurant.ID
		}
		results = append(results, rec)
	}

	sortRecommendations(results)
	return results
}

func (b *BaselineRanker) RankRestaurants(uc *UserContext, restaurants []*types.Restaurant, menuMap map[string][]*types.MenuItem, filters types.RecommendationFilters) []types.RecommendedItem {
	results := make([]types.RecommendedItem, 0, len(restaurants))
	allowedCuisines := lowerSet(filters.Cuisine)

	for _, restaurant := range restaurants {
		cuisine := strings.ToLower(restaurant.Cuisine)
		if len(allowedCuisines) > 0 && cuisine != "" && !allowedCuisines[cuisine] {
			continue
		}

		menuItems := menuMap[restaurant.ID]
		avgPrice := averagePrice(menuItems)
		if filters.PriceRange != "" && !b.rules.PriceInRange(avgPrice, filters.PriceRange) {
			continue
		}

		var blob strings.Builder
		for _, item := range menuItems {
			blob.WriteString(menuItemText(item))
			blob.WriteString(" ")
		}
		text := blob.String()

		score := 0.40
		var explanationBits []string

		if restaurant.Cuisine != "" {
			explanationBits = append(explanationBits, "Cuisine: "+restaurant.Cuisine)
			if uc.prefersCuisine(cuisine) {
				score += 0.20
			}
			if allowedCuisines[cuisine] {
				score += 0.15
			}
		}

		if avgPrice != nil {
			explanationBits = append(explanationBits, fmt.Sprintf("Avg. price ~$%.2f", *avgPrice))
			if filters.PriceRange != "" {
				score += 0.15
			} else {
				score += 0.05
			}
		}

		if matches := dietMatches(filters.Diet, text); len(matches) > 0 {
			score += 0.10
			explanationBits = append(explanationBits, "Menu mentions "+strings.Join(matches, ", "))
		}

		if len(uc.HealthGoals) > 0 && b.mentionsGoalKeywords(text, uc.HealthGoals) {
			score += 0.05
		}

		results = append(results, types.RecommendedItem{
			ItemID:            restaurant.ID,
			Name:              restaurant.Name,
			Score:             clampScore(score),
			Explanation:       joinExplanation(explanationBits, "Menu aligns with preferences"),
			RestaurantName:    restaurant.Name,
			RestaurantAddress: restaurant.Address,
			RestaurantPlaceID: restaurant.ID,
		})
	}

	sortRecommendations(results)
	return results
}

func (b *BaselineRanker) mentionsGoalKeywords(text string, goals []types.Goal) bool {
	for _, goal := range goals {
		targetType := strings.ToLower(goal.TargetType)
		for fragment, keyword := range b.rules.GoalKeywords {
			if strings.Contains(targetType, fragment) && strings.Contains(text, keyword) {
				return true
			}
		}
	}
	return false
}

func supportsCalorieGoal(goals []types.Goal, calories float64) bool {
	for _, goal := range goals {
		if goal.GoalType != types.GoalTypeNutrition {
			continue
		}
		if strings.Contains(strings.ToLower(goal.TargetType), "calorie") && calories <= goal.TargetValue {
			return true
		}
	}
	return false
}

func averagePrice(items []*types.MenuItem) *float64 {
	var sum float64
	var count int
	for _, item := range items {
		if item.Price != nil {
			sum += *item.Price
			count++
		}
	}
	if count == 0 {
		return nil
	}
	avg := sum / float64(count)
	return &avg
}

func dietMatches(diets []string, text string) []string {
	var matches []string
	for _, diet := range diets {
		if strings.Contains(text, strings.ToLower(diet)) {
			matches = append(matches, diet)
		}
	}
	return matches
}

func lowerSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[strings.ToLower(v)] = true
	}
	return set
}

func clampScore(score float64) float64 {
	if score < 0.0 {
		return 0.0
	}
	if score > 1.0 {
		return 1.0
	}
	return score
}

func joinExplanation(bits []string, fallback string) string {
	if len(bits) == 0 {
		return fallback
	}
	return strings.Join(bits, "; ")
}

func sortRecommendations(recs []types.RecommendedItem) {
	sort.SliceStable(recs, func(i, j int) bool {
		if recs[i].Score != recs[j].Score {
			return recs[i].Score > recs[j].Score
		}
		return recs[i].ItemID < recs[j].ItemID
	})
}
