package services

import (
	"math"
	"testing"

	"github.com/tiertok/tiertok-backend/internal/types"
)

func TestSplitPoolByWeight_Proportional(t *testing.T) {
	funds := SplitPoolByWeight(1000, map[int64]float64{1: 30, 2: 70})

	if math.Abs(funds[1]-300) > 1e-9 {
		t.Fatalf("category 1: got %v, want 300", funds[1])
	}
	if math.Abs(funds[2]-700) > 1e-9 {
		t.Fatalf("category 2: got %v, want 700", funds[2])
	}
}

func TestSplitPoolByWeight_Conserved(t *testing.T) {
	weights := map[int64]float64{1: 13.7, 2: 0.003, 3: 981.2, 4: 55}
	funds := SplitPoolByWeight(12345.67, weights)

	var sum float64
	for _, f := range funds {
		sum += f
	}
	if math.Abs(sum-12345.67) > 1e-6 {
		t.Fatalf("funds not conserved: sum %v", sum)
	}
}

func TestSplitPoolByWeight_ZeroTotalWeight(t *testing.T) {
	funds := SplitPoolByWeight(1000, map[int64]float64{1: 0, 2: 0})

	for id, f := range funds {
		if f != 0 {
			t.Fatalf("category %d should get 0 with zero weights, got %v", id, f)
		}
	}
}

func TestSplitCategoryByTierWeight_Proportional(t *testing.T) {
	funds := SplitCategoryByTierWeight(400, map[types.VideoTier]float64{
		types.TierPlatinum: 3,
		types.TierGold:     1,
	})

	if math.Abs(funds[types.TierPlatinum]-300) > 1e-9 {
		t.Fatalf("platinum: got %v, want 300", funds[types.TierPlatinum])
	}
	if math.Abs(funds[types.TierGold]-100) > 1e-9 {
		t.Fatalf("gold: got %v, want 100", funds[types.TierGold])
	}
}

func TestSplitCategoryByTierWeight_ZeroWeights(t *testing.T) {
	funds := SplitCategoryByTierWeight(400, map[types.VideoTier]float64{
		types.TierBronze: 0,
	})
	if funds[types.TierBronze] != 0 {
		t.Fatalf("zero-weight tier should get 0, got %v", funds[types.TierBronze])
	}
}
