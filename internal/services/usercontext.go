package services

import (
	"strings"

	"github.com/eatsential/eatsential-backend/internal/types"
)

// UserContext is the per-request snapshot of everything the engine needs to
// know about a user: allergies, strict diets, preferred cuisines, and active
// goals. It is rebuilt on every request and never cached.
type UserContext struct {
	User                     *types.User
	Allergies                []string
	StrictDietaryPreferences []string
	PreferredCuisines        []string
	HealthGoals              []types.Goal
}

// buildUserContext derives the context from a fully preloaded user row.
// Allergen and preference names are lowercased for case-insensitive
// matching. A preference counts as a strict diet only when its type is
// "diet" and the strict flag is set; cuisine preferences count regardless
// of strictness. Only active goals are kept.
func buildUserContext(user *types.User) *UserContext {
	ctx := &UserContext{User: user}

	if user.HealthProfile != nil {
		for _, allergy := range user.HealthProfile.Allergies {
			if allergy.Allergen != nil {
				ctx.Allergies = append(ctx.Allergies, strings.ToLower(allergy.Allergen.Name))
			}
		}
		for _, pref := range user.HealthProfile.DietaryPreferences {
			name := strings.ToLower(pref.PreferenceName)
			if pref.PreferenceType == types.PreferenceTypeDiet && pref.IsStrict {
				ctx.StrictDietaryPreferences = append(ctx.StrictDietaryPreferences, name)
			}
			if pref.PreferenceType == types.PreferenceTypeCuisine {
				ctx.PreferredCuisines = append(ctx.PreferredCuisines, name)
			}
		}
	}

	for _, goal := range user.Goals {
		if goal.Status == types.GoalStatusActive {
			ctx.HealthGoals = append(ctx.HealthGoals, goal)
		}
	}

	return ctx
}

func (uc *UserContext) prefersCuisine(cuisine string) bool {
	for _, preferred := range uc.PreferredCuisines {
		if preferred == cuisine {
			return true
		}
	}
	return false
}
