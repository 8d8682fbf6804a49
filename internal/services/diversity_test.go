package services

import (
	"reflect"
	"testing"

	"github.com/eatsential/eatsential-backend/internal/types"
)

func rec(itemID, placeID string, score float64) types.RecommendedItem {
	return types.RecommendedItem{ItemID: itemID, Score: score, RestaurantPlaceID: placeID}
}

func recIDs(recs []types.RecommendedItem) []string {
	ids := make([]string, 0, len(recs))
	for _, r := range recs {
		ids = append(ids, r.ItemID)
	}
	return ids
}

func TestInterleaveByRestaurant(t *testing.T) {
	cases := []struct {
		name    string
		input   []types.RecommendedItem
		maxSame int
		want    []string
	}{
		{
			name:    "empty",
			input:   nil,
			maxSame: 2,
			want:    []string{},
		},
		{
			name:    "single_item",
			input:   []types.RecommendedItem{rec("a1", "A", 0.9)},
			maxSame: 2,
			want:    []string{"a1"},
		},
		{
			name: "round_robin_with_cap",
			input: []types.RecommendedItem{
				rec("a1", "A", 0.9), rec("a2", "A", 0.8), rec("a3", "A", 0.7),
				rec("b1", "B", 0.6), rec("b2", "B", 0.5),
				rec("c1", "C", 0.4),
			},
			maxSame: 2,
			want:    []string{"a1", "b1", "c1", "a2", "b2"},
		},
		{
			name: "single_restaurant_truncated",
			input: []types.RecommendedItem{
				rec("a1", "A", 0.9), rec("a2", "A", 0.8), rec("a3", "A", 0.7),
			},
			maxSame: 2,
			want:    []string{"a1", "a2"},
		},
		{
			name: "missing_place_ids_form_own_groups",
			input: []types.RecommendedItem{
				rec("a1", "A", 0.9), rec("a2", "A", 0.8),
				rec("x1", "", 0.7), rec("x2", "", 0.6),
			},
			maxSame: 1,
			want:    []string{"a1", "x1", "x2"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := recIDs(InterleaveByRestaurant(tc.input, tc.maxSame))
			if len(got) == 0 && len(tc.want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("InterleaveByRestaurant = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestInterleaveKeepsWithinGroupOrder(t *testing.T) {
	input := []types.RecommendedItem{
		rec("a1", "A", 0.9), rec("b1", "B", 0.85), rec("a2", "A", 0.8),
		rec("b2", "B", 0.75), rec("a3", "A", 0.7),
	}
	out := InterleaveByRestaurant(input, 3)

	var aOrder []string
	for _, r := range out {
		if r.RestaurantPlaceID == "A" {
			aOrder = append(aOrder, r.ItemID)
		}
	}
	if !reflect.DeepEqual(aOrder, []string{"a1", "a2", "a3"}) {
		t.Fatalf("within-group order changed: %v", aOrder)
	}
}
