package types

// API payloads for the recommendation and feedback endpoints.

const (
	RecommendationModeLLM      = "llm"
	RecommendationModeBaseline = "baseline"
)

type RecommendationFilters struct {
	Diet       []string `json:"diet,omitempty"`
	Cuisine    []string `json:"cuisine,omitempty"`
	PriceRange string   `json:"price_range,omitempty"` // "$" | "$$" | "$$$" | "$$$$"
}

type RecommendationRequest struct {
	Filters *RecommendationFilters `json:"filters,omitempty"`
	Mode    string                 `json:"mode,omitempty"` // llm|baseline, defaults to llm
}

// RecommendedItem is constructed fresh by every ranking stage; boost,
// diversity, and enrichment return new values rather than mutating earlier
// ones.
type RecommendedItem struct {
	ItemID      string   `json:"item_id"`
	Name        string   `json:"name"`
	Score       float64  `json:"score"`
	Explanation string   `json:"explanation"`
	Price       *float64 `json:"price,omitempty"`
	Calories    *float64 `json:"calories,omitempty"`

	RestaurantName    string `json:"restaurant_name,omitempty"`
	RestaurantAddress string `json:"restaurant_address,omitempty"`
	RestaurantPlaceID string `json:"restaurant_place_id,omitempty"`
}

type RecommendationResponse struct {
	Items []RecommendedItem `json:"items"`
}

type FeedbackRequest struct {
	ItemID       string  `json:"item_id" binding:"required"`
	ItemType     string  `json:"item_type" binding:"required"`
	FeedbackType string  `json:"feedback_type" binding:"required"`
	Notes        *string `json:"notes,omitempty"`
}

type FeedbackResponse struct {
	ID           string `json:"id"`
	ItemID       string `json:"item_id"`
	ItemType     string `json:"item_type"`
	FeedbackType string `json:"feedback_type"`
	CreatedAt    string `json:"created_at"`
}
