package services

import (
	"strings"

	"github.com/eatsential/eatsential-backend/internal/types"
)

// SafetyFilter removes candidates that violate a user's allergies or strict
// dietary rules. Rejections are silent; an empty result is a valid outcome.
type SafetyFilter struct {
	rules *Rules
}

func NewSafetyFilter(rules *Rules) *SafetyFilter {
	return &SafetyFilter{rules: rules}
}

// FilterMenuItems applies the two-tier check per item:
//
//  1. Structured allergen tags: any overlap between the item's tags and the
//     user's allergies rejects immediately.
//  2. Free-text fallback: the lowercased name+description blob is scanned
//     for allergy substrings and strict-diet exclusion terms.
//
// When the user has neither allergies nor strict diets the input is returned
// unchanged; the filter is explicitly a no-op rather than relying on
// empty-set matching.
func (f *SafetyFilter) FilterMenuItems(uc *UserContext, items []*types.MenuItem) []*types.MenuItem {
	if len(uc.Allergies) == 0 && len(uc.StrictDietaryPreferences) == 0 {
		return items
	}

	safe := make([]*types.MenuItem, 0, len(items))
	for _, item := range items {
		if len(uc.Allergies) > 0 && len(item.Allergens) > 0 {
			if tagsIntersectAllergies(item.Allergens, uc.Allergies) {
				continue
			}
		}

		text := menuItemText(item)
		if containsAnyTerm(text, uc.Allergies) {
			continue
		}
		if f.rules.ViolatesStrictDiet(text, uc.StrictDietaryPreferences) {
			continue
		}
		safe = append(safe, item)
	}
	return safe
}

// FilterRestaurants keeps a restaurant iff at least one of its menu items
// passes FilterMenuItems, and returns the surviving items per restaurant for
// downstream aggregation (average price, sample menu).
func (f *SafetyFilter) FilterRestaurants(uc *UserContext, restaurants []*types.Restaurant) ([]*types.Restaurant, map[string][]*types.MenuItem) {
	safe := make([]*types.Restaurant, 0, len(restaurants))
	menuMap := make(map[string][]*types.MenuItem)

	for _, restaurant := range restaurants {
		items := make([]*types.MenuItem, 0, len(restaurant.MenuItems))
		for i := range restaurant.MenuItems {
			items = append(items, &restaurant.MenuItems[i])
		}
		compliant := f.FilterMenuItems(uc, items)
		if len(compliant) > 0 {
			safe = append(safe, restaurant)
			menuMap[restaurant.ID] = compliant
		}
	}
	return safe, menuMap
}

func tagsIntersectAllergies(tags []types.Allergen, allergies []string) bool {
	for _, tag := range tags {
		name := strings.ToLower(tag.Name)
		for _, allergy := range allergies {
			if name == allergy {
				return true
			}
		}
	}
	return false
}

func containsAnyTerm(text string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(text, term) {
			return true
		}
	}
	return false
}

func menuItemText(item *types.MenuItem) string {
	return strings.ToLower(item.Name + " " + item.Description)
}
