package services

import "strings"

// Rules carries the fixed lookup tables the filter and ranker components
// consume. They are built once at startup and injected, so tests can swap
// them out.
type Rules struct {
	// PriceBands maps dollar-sign ranges to price bounds in dollars. A nil
	// bound is open-ended.
	PriceBands map[string]PriceBand
	// StrictDietExclusions maps a strict diet label to ingredient terms that
	// disqualify a menu item when present in its text.
	StrictDietExclusions map[string][]string
	// GoalKeywords maps a goal target-type fragment to the menu text keyword
	// that counts as supporting the goal.
	GoalKeywords map[string]string
	// CuisineKeywords maps a canonical cuisine label to place-type keywords
	// used to classify remotely discovered restaurants.
	CuisineKeywords map[string][]string
}

type PriceBand struct {
	Min *float64
	Max *float64
}

func DefaultRules() *Rules {
	return &Rules{
		PriceBands: map[string]PriceBand{
			"$":    {Min: nil, Max: f(10.0)},
			"$$":   {Min: f(10.0), Max: f(25.0)},
			"$$$":  {Min: f(25.0), Max: f(45.0)},
			"$$$$": {Min: f(45.0), Max: nil},
		},
		StrictDietExclusions: map[string][]string{
			"vegan":       {"beef", "pork", "chicken", "fish", "shrimp", "egg", "cheese", "milk", "honey", "butter", "yogurt"},
			"vegetarian":  {"beef", "pork", "chicken", "turkey", "fish", "shrimp", "bacon"},
			"gluten-free": {"wheat", "barley", "rye", "gluten", "bread", "pasta"},
			"keto":        {"sugar", "bread", "pasta", "rice", "noodle", "potato"},
		},
		GoalKeywords: map[string]string{
			"protein": "protein",
			"fiber":   "fiber",
			"sodium":  "low sodium",
		},
		CuisineKeywords: map[string][]string{
			"japanese":      {"japanese", "sushi"},
			"chinese":       {"chinese"},
			"italian":       {"italian", "pizza"},
			"mexican":       {"mexican", "taco"},
			"indian":        {"indian"},
			"thai":          {"thai"},
			"american":      {"american", "burger", "steakhouse"},
			"mediterranean": {"mediterranean", "greek", "middle_eastern"},
			"french":        {"french"},
			"korean":        {"korean"},
			"vietnamese":    {"vietnamese"},
		},
	}
}

func f(v float64) *float64 { return &v }

// PriceInRange reports whether a dollar price falls inside the named band.
// An unknown price or band never excludes.
func (r *Rules) PriceInRange(price *float64, priceRange string) bool {
	if priceRange == "" || price == nil {
		return true
	}
	band, ok := r.PriceBands[priceRange]
	if !ok {
		return true
	}
	if band.Min != nil && *price < *band.Min {
		return false
	}
	if band.Max != nil && *price > *band.Max {
		return false
	}
	return true
}

// PriceLevelInRange maps a provider price level (0-4) onto the dollar bands,
// scaling the band bounds down by a factor of ten. A missing level means
// "unknown, do not exclude".
func (r *Rules) PriceLevelInRange(level *int, priceRange string) bool {
	if priceRange == "" || level == nil {
		return true
	}
	band, ok := r.PriceBands[priceRange]
	if !ok {
		return true
	}
	l := float64(*level)
	if band.Min != nil && l < *band.Min/10 {
		return false
	}
	if band.Max != nil && l > *band.Max/10 {
		return false
	}
	return true
}

// ViolatesStrictDiet reports whether the text contains an exclusion term of
// any of the given strict diets.
func (r *Rules) ViolatesStrictDiet(text string, strictDiets []string) bool {
	for _, diet := range strictDiets {
		for _, term := range r.StrictDietExclusions[diet] {
			if strings.Contains(text, term) {
				return true
			}
		}
	}
	return false
}
