package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"

	"github.com/eatsential/eatsential-backend/internal/clients/places"
	errs "github.com/eatsential/eatsential-backend/internal/pkg/errors"
	"github.com/eatsential/eatsential-backend/internal/types"
)

type fakeAI struct {
	resp  string
	err   error
	calls int
}

func (f *fakeAI) GenerateJSON(ctx context.Context, system, user string, temperature float64) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.resp, nil
}

func TestParseLLMSuggestions(t *testing.T) {
	cases := []struct {
		name    string
		raw     string
		want    int
		wantErr bool
	}{
		{
			name: "bare_array",
			raw:  `[{"item_id": "a", "score": 0.9}, {"item_id": "b", "score": 0.8}]`,
			want: 2,
		},
		{
			name: "output_wrapper",
			raw:  `{"output": [{"item_id": "a", "score": 0.9}]}`,
			want: 1,
		},
		{
			name: "result_wrapper_with_nested_json_string",
			raw:  `{"result": "[{\"item_id\": \"a\", \"score\": 0.9}]"}`,
			want: 1,
		},
		{
			name: "items_wrapper",
			raw:  `{"items": [{"item_id": "a"}]}`,
			want: 1,
		},
		{
			name: "single_object",
			raw:  `{"item_id": "a", "score": 0.9}`,
			want: 1,
		},
		{
			name:    "not_json",
			raw:     "sorry, I cannot help with that",
			wantErr: true,
		},
		{
			name:    "array_of_scalars",
			raw:     `[1, 2, 3]`,
			wantErr: true,
		},
		{
			name:    "bare_number",
			raw:     `42`,
			wantErr: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := parseLLMSuggestions(tc.raw)
			if tc.wantErr {
				if !errors.Is(err, errs.ErrMalformedLLMResponse) {
					t.Fatalf("err = %v, want ErrMalformedLLMResponse", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got) != tc.want {
				t.Fatalf("got %d suggestions, want %d", len(got), tc.want)
			}
		})
	}
}

func TestLLMRankMealsResolvesCandidates(t *testing.T) {
	knownID := uuid.MustParse("00000000-0000-0000-0000-00000000000a")
	otherID := uuid.MustParse("00000000-0000-0000-0000-00000000000b")

	items := []*types.MenuItem{
		{
			ID:   knownID,
			Name: "Pad Thai",
			Restaurant: &types.Restaurant{
				ID:      "place_1",
				Name:    "Thai Basil",
				Address: "5 Oak Ave",
			},
		},
		{ID: otherID, Name: "Green Curry"},
	}

	resp := fmt.Sprintf(`[
		{"item_id": %q, "score": 1.7},
		{"item_id": %q, "score": "0.5"},
		{"item_id": "invented-by-the-model", "score": 0.99}
	]`, knownID, otherID)

	ranker := NewLLMRanker(newTestLogger(t), &fakeAI{resp: resp}, 0.2)
	remoteIndex := map[string]places.Place{
		"place_1": {PlaceID: "place_1", Name: "Thai Basil (Downtown)", Address: "5 Oak Ave Suite B"},
	}

	ranked, err := ranker.RankMeals(context.Background(), &UserContext{User: &types.User{ID: uuid.New()}}, items, types.RecommendationFilters{}, remoteIndex)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ranked) != 2 {
		t.Fatalf("got %d results, want 2 (hallucinated id dropped)", len(ranked))
	}
	if ranked[0].ItemID != knownID.String() {
		t.Fatalf("expected clamped top result %s, got %s", knownID, ranked[0].ItemID)
	}
	if ranked[0].Score != 1.0 {
		t.Fatalf("score = %v, want clamped 1.0", ranked[0].Score)
	}
	if ranked[0].RestaurantName != "Thai Basil (Downtown)" {
		t.Fatalf("restaurant name not taken from place index: %q", ranked[0].RestaurantName)
	}
	if ranked[1].Score != 0.5 {
		t.Fatalf("string score not parsed: %v", ranked[1].Score)
	}
	if ranked[1].Explanation == "" {
		t.Fatalf("expected a default explanation")
	}
}

func TestLLMRankMealsMalformedResponse(t *testing.T) {
	ranker := NewLLMRanker(newTestLogger(t), &fakeAI{resp: "I recommend the salad."}, 0.2)
	_, err := ranker.RankMeals(context.Background(), &UserContext{User: &types.User{ID: uuid.New()}}, nil, types.RecommendationFilters{}, nil)
	if !errors.Is(err, errs.ErrMalformedLLMResponse) {
		t.Fatalf("err = %v, want ErrMalformedLLMResponse", err)
	}
}

func TestLLMRankMealsClientError(t *testing.T) {
	wantErr := errors.New("boom")
	ranker := NewLLMRanker(newTestLogger(t), &fakeAI{err: wantErr}, 0.2)
	_, err := ranker.RankMeals(context.Background(), &UserContext{User: &types.User{ID: uuid.New()}}, nil, types.RecommendationFilters{}, nil)
	if !errors.Is(err, wantErr) {
		t.Fatalf("err = %v, want %v", err, wantErr)
	}
}

func TestMockRankMeals(t *testing.T) {
	ranker := NewLLMRanker(newTestLogger(t), nil, 0.2)

	var items []*types.MenuItem
	for r := 0; r < 3; r++ {
		restaurant := &types.Restaurant{ID: fmt.Sprintf("place_%d", r), Name: fmt.Sprintf("Restaurant %d", r)}
		for i := 0; i < 2; i++ {
			items = append(items, &types.MenuItem{
				ID:         uuid.New(),
				Name:       fmt.Sprintf("Dish %d-%d", r, i),
				Restaurant: restaurant,
			})
		}
	}

	ranked, err := ranker.RankMeals(context.Background(), &UserContext{}, items, types.RecommendationFilters{}, nil)
	if err != nil {
		t.Fatalf("mock mode must not error: %v", err)
	}
	if len(ranked) != 5 {
		t.Fatalf("got %d results, want 5", len(ranked))
	}
	for i, want := range []float64{0.9, 0.8, 0.7, 0.6, 0.5} {
		if !approxEqual(ranked[i].Score, want) {
			t.Fatalf("score[%d] = %v, want %v", i, ranked[i].Score, want)
		}
	}
	// First pass covers each restaurant once.
	seen := map[string]bool{}
	for _, r := range ranked[:3] {
		if seen[r.RestaurantPlaceID] {
			t.Fatalf("restaurant %s repeated before all were used", r.RestaurantPlaceID)
		}
		seen[r.RestaurantPlaceID] = true
	}
}

func TestMockRankRestaurants(t *testing.T) {
	ranker := NewLLMRanker(newTestLogger(t), nil, 0.2)

	restaurants := []*types.Restaurant{
		{ID: "place_1", Name: "Thai Basil", Cuisine: "thai"},
		{ID: "place_2", Name: "La Piazza", Cuisine: "italian"},
	}
	ranked, err := ranker.RankRestaurants(context.Background(), &UserContext{}, restaurants, nil, types.RecommendationFilters{}, nil)
	if err != nil {
		t.Fatalf("mock mode must not error: %v", err)
	}
	if len(ranked) != 2 {
		t.Fatalf("got %d results, want 2", len(ranked))
	}
	if !approxEqual(ranked[0].Score, 0.9) || !approxEqual(ranked[1].Score, 0.8) {
		t.Fatalf("scores = %v, %v; want 0.9, 0.8", ranked[0].Score, ranked[1].Score)
	}
}
