package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	errs "github.com/eatsential/eatsential-backend/internal/pkg/errors"
	"github.com/eatsential/eatsential-backend/internal/repos"
	"github.com/eatsential/eatsential-backend/internal/types"
)

func TestSubmitFeedbackUpsert(t *testing.T) {
	db := newTestDB(t)
	log := newTestLogger(t)
	svc := NewFeedbackService(db, log, repos.NewFeedbackRepo(db, log))
	user := seedUser(t, db)
	ctx := context.Background()

	first, err := svc.Submit(ctx, user.ID, types.FeedbackRequest{
		ItemID:       "m_42",
		ItemType:     types.FeedbackItemTypeMeal,
		FeedbackType: types.FeedbackTypeLike,
	})
	if err != nil {
		t.Fatalf("first submit failed: %v", err)
	}

	second, err := svc.Submit(ctx, user.ID, types.FeedbackRequest{
		ItemID:       "m_42",
		ItemType:     types.FeedbackItemTypeMeal,
		FeedbackType: types.FeedbackTypeDislike,
	})
	if err != nil {
		t.Fatalf("resubmit failed: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("resubmission created a new row: %s != %s", second.ID, first.ID)
	}
	if second.FeedbackType != types.FeedbackTypeDislike {
		t.Fatalf("feedback type = %q, want dislike", second.FeedbackType)
	}

	var count int64
	if err := db.Model(&types.RecommendationFeedback{}).Where("user_id = ?", user.ID).Count(&count).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected exactly 1 row, got %d", count)
	}

	disliked, err := svc.DislikedItems(ctx, user.ID, types.FeedbackItemTypeMeal)
	if err != nil {
		t.Fatalf("DislikedItems failed: %v", err)
	}
	if _, ok := disliked["m_42"]; !ok {
		t.Fatalf("m_42 missing from disliked set")
	}
	liked, err := svc.LikedItems(ctx, user.ID, types.FeedbackItemTypeMeal)
	if err != nil {
		t.Fatalf("LikedItems failed: %v", err)
	}
	if len(liked) != 0 {
		t.Fatalf("liked set should be empty after dislike, got %v", liked)
	}
}

func TestSubmitFeedbackValidation(t *testing.T) {
	db := newTestDB(t)
	log := newTestLogger(t)
	svc := NewFeedbackService(db, log, repos.NewFeedbackRepo(db, log))
	user := seedUser(t, db)

	cases := []struct {
		name string
		req  types.FeedbackRequest
	}{
		{
			name: "bad_feedback_type",
			req:  types.FeedbackRequest{ItemID: "m_1", ItemType: types.FeedbackItemTypeMeal, FeedbackType: "love"},
		},
		{
			name: "bad_item_type",
			req:  types.FeedbackRequest{ItemID: "m_1", ItemType: "drink", FeedbackType: types.FeedbackTypeLike},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Submit(context.Background(), user.ID, tc.req)
			if !errors.Is(err, errs.ErrInvalidArgument) {
				t.Fatalf("err = %v, want ErrInvalidArgument", err)
			}
		})
	}
}

func TestFeedbackForItems(t *testing.T) {
	db := newTestDB(t)
	log := newTestLogger(t)
	svc := NewFeedbackService(db, log, repos.NewFeedbackRepo(db, log))
	user := seedUser(t, db)
	ctx := context.Background()

	for _, req := range []types.FeedbackRequest{
		{ItemID: "m_1", ItemType: types.FeedbackItemTypeMeal, FeedbackType: types.FeedbackTypeLike},
		{ItemID: "m_2", ItemType: types.FeedbackItemTypeMeal, FeedbackType: types.FeedbackTypeDislike},
	} {
		if _, err := svc.Submit(ctx, user.ID, req); err != nil {
			t.Fatalf("submit failed: %v", err)
		}
	}

	feedback, err := svc.FeedbackForItems(ctx, user.ID, []string{"m_1", "m_2", "m_3"}, types.FeedbackItemTypeMeal)
	if err != nil {
		t.Fatalf("FeedbackForItems failed: %v", err)
	}
	if feedback["m_1"] != types.FeedbackTypeLike || feedback["m_2"] != types.FeedbackTypeDislike {
		t.Fatalf("unexpected feedback map: %v", feedback)
	}
	if _, ok := feedback["m_3"]; ok {
		t.Fatalf("item without feedback must be omitted")
	}
}

func TestApplyFeedbackBoosts(t *testing.T) {
	recs := []types.RecommendedItem{
		{ItemID: "a", Score: 0.95, Explanation: "top pick"},
		{ItemID: "b", Score: 0.80, Explanation: "good fit"},
		{ItemID: "c", Score: 0.78, Explanation: "solid"},
	}
	liked := map[string]struct{}{"b": {}, "a": {}}

	boosted := applyFeedbackBoosts(recs, liked)
	if len(boosted) != 3 {
		t.Fatalf("got %d results, want 3", len(boosted))
	}
	if !approxEqual(boosted[0].Score, 1.0) {
		t.Fatalf("0.95 boost should clamp to 1.0, got %v", boosted[0].Score)
	}
	var b types.RecommendedItem
	for _, r := range boosted {
		if r.ItemID == "b" {
			b = r
		}
	}
	if !approxEqual(b.Score, 0.88) {
		t.Fatalf("0.80 boost = %v, want 0.88", b.Score)
	}
	if b.Explanation != "good fit"+likedSuffix {
		t.Fatalf("explanation = %q, want liked suffix appended", b.Explanation)
	}
	for _, r := range boosted {
		if r.ItemID == "c" && r.Explanation != "solid" {
			t.Fatalf("unliked item must be untouched, got %q", r.Explanation)
		}
	}
}

func TestApplyFeedbackBoostsDedupes(t *testing.T) {
	id := uuid.NewString()
	recs := []types.RecommendedItem{
		{ItemID: id, Score: 0.70},
		{ItemID: id, Score: 0.60},
	}
	boosted := applyFeedbackBoosts(recs, map[string]struct{}{id: {}})
	if len(boosted) != 1 {
		t.Fatalf("got %d results, want 1 after dedupe", len(boosted))
	}
	if !approxEqual(boosted[0].Score, 0.77) {
		t.Fatalf("kept score = %v, want highest boosted 0.77", boosted[0].Score)
	}
}
