package services

import (
	"math"
	"testing"

	"github.com/tiertok/tiertok-backend/internal/types"
)

func poolWithTier(name string, tier types.VideoTier, weight, fund float64) *types.CategoryPool {
	return &types.CategoryPool{
		Name:        name,
		TierWeights: types.EncodeTierMap(map[types.VideoTier]float64{tier: weight}),
		TierFunds:   types.EncodeTierMap(map[types.VideoTier]float64{tier: fund}),
	}
}

func TestVideoPayout_TwoCategories(t *testing.T) {
	score := 100.0
	contributions := []*types.CategoryContribution{
		{CategoryPoolID: 1, Fraction: 0.6, Tier: types.TierGold},
		{CategoryPoolID: 2, Fraction: 0.4, Tier: types.TierSilver},
	}
	categories := map[int64]*types.CategoryPool{
		1: poolWithTier("music", types.TierGold, 10, 500),
		2: poolWithTier("comedy", types.TierSilver, 20, 300),
	}

	total, breakdown := VideoPayout(score, contributions, categories)

	want1 := math.Log(100*0.6+1) / 10 * 500
	want2 := math.Log(100*0.4+1) / 20 * 300
	if math.Abs(total-(want1+want2)) > 1e-9 {
		t.Fatalf("total payout: got %v, want %v", total, want1+want2)
	}
	if len(breakdown) != 2 {
		t.Fatalf("expected 2 breakdown entries, got %d", len(breakdown))
	}
	if breakdown[0].CategoryName != "music" || math.Abs(breakdown[0].Amount-want1) > 1e-9 {
		t.Fatalf("music entry: %+v, want amount %v", breakdown[0], want1)
	}
	if breakdown[1].CategoryName != "comedy" || math.Abs(breakdown[1].Amount-want2) > 1e-9 {
		t.Fatalf("comedy entry: %+v, want amount %v", breakdown[1], want2)
	}
}

func TestVideoPayout_UnassignedTierPaysZero(t *testing.T) {
	contributions := []*types.CategoryContribution{
		{CategoryPoolID: 1, Fraction: 1, Tier: ""},
	}
	categories := map[int64]*types.CategoryPool{
		1: poolWithTier("music", types.TierGold, 10, 500),
	}

	total, breakdown := VideoPayout(100, contributions, categories)
	if total != 0 {
		t.Fatalf("unassigned tier should pay 0, got %v", total)
	}
	if len(breakdown) != 1 || breakdown[0].Amount != 0 {
		t.Fatalf("breakdown should still list the contribution: %+v", breakdown)
	}
}

func TestVideoPayout_ZeroTierWeightPaysZero(t *testing.T) {
	contributions := []*types.CategoryContribution{
		{CategoryPoolID: 1, Fraction: 1, Tier: types.TierBronze},
	}
	categories := map[int64]*types.CategoryPool{
		1: poolWithTier("music", types.TierBronze, 0, 0),
	}

	if total, _ := VideoPayout(100, contributions, categories); total != 0 {
		t.Fatalf("zero tier weight should pay 0, got %v", total)
	}
}

func TestVideoPayout_UnknownCategoryPaysZero(t *testing.T) {
	contributions := []*types.CategoryContribution{
		{CategoryPoolID: types.UncategorizedPoolID, Fraction: 1, Tier: types.TierGold},
	}

	total, breakdown := VideoPayout(100, contributions, map[int64]*types.CategoryPool{})
	if total != 0 {
		t.Fatalf("uncategorized contribution should pay 0, got %v", total)
	}
	if len(breakdown) != 1 || breakdown[0].CategoryName != "" {
		t.Fatalf("unexpected breakdown: %+v", breakdown)
	}
}

func TestVideoPayout_NoContributions(t *testing.T) {
	total, breakdown := VideoPayout(100, nil, map[int64]*types.CategoryPool{})
	if total != 0 || len(breakdown) != 0 {
		t.Fatalf("expected empty payout, got total %v breakdown %+v", total, breakdown)
	}
}
