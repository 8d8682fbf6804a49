package services

import "github.com/eatsential/eatsential-backend/internal/types"

const defaultMaxSameRestaurant = 2

// InterleaveByRestaurant reorders a score-sorted list so that no restaurant
// contributes more than maxSameRestaurant items, while items from the same
// restaurant keep their relative order. Items without a place id each form
// their own group. Round-robin selection over groups in first-seen order
// yields an A,B,C,A,B,... interleaving for balanced groups; a pass that adds
// nothing terminates the loop once every group is exhausted or capped.
func InterleaveByRestaurant(recs []types.RecommendedItem, maxSameRestaurant int) []types.RecommendedItem {
	if maxSameRestaurant <= 0 {
		maxSameRestaurant = defaultMaxSameRestaurant
	}
	if len(recs) <= 1 {
		return recs
	}

	var order []string
	groups := make(map[string][]types.RecommendedItem)
	for _, rec := range recs {
		key := rec.RestaurantPlaceID
		if key == "" {
			// No place id: treat the item as its own restaurant.
			key = "item:" + rec.ItemID
		}
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], rec)
	}

	if len(groups) == 1 {
		if len(recs) > maxSameRestaurant {
			return recs[:maxSameRestaurant]
		}
		return recs
	}

	diverse := make([]types.RecommendedItem, 0, len(recs))
	next := make(map[string]int, len(groups))
	taken := make(map[string]int, len(groups))

	for len(diverse) < len(recs) {
		addedInRound := false
		for _, key := range order {
			if next[key] >= len(groups[key]) {
				continue
			}
			if taken[key] >= maxSameRestaurant {
				continue
			}
			diverse = append(diverse, groups[key][next[key]])
			next[key]++
			taken[key]++
			addedInRound = true
		}
		if !addedInRound {
			break
		}
	}
	return diverse
}
