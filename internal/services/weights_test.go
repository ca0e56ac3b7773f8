package services

import (
	"math"
	"testing"

	"github.com/tiertok/tiertok-backend/internal/types"
)

func TestCategoryWeight_TopHalfOnly(t *testing.T) {
	scores := []float64{100, 80, 60, 40}

	if got := CategoryWeight(scores); got != 180 {
		t.Fatalf("expected top 2 of 4 scores (180), got %v", got)
	}
}

func TestCategoryWeight_OddCountRoundsUp(t *testing.T) {
	scores := []float64{100, 80, 60, 40, 20}

	// ceil(5*0.5) = 3 scores count.
	if got := CategoryWeight(scores); got != 240 {
		t.Fatalf("expected 240, got %v", got)
	}
}

func TestCategoryWeight_Empty(t *testing.T) {
	if got := CategoryWeight(nil); got != 0 {
		t.Fatalf("expected 0 for empty category, got %v", got)
	}
}

func TestContributionWeight_LogDampened(t *testing.T) {
	got := ContributionWeight(100, 0.5)
	want := math.Log(51)
	if math.Abs(got-want) > 1e-12 {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestContributionWeight_ZeroInputs(t *testing.T) {
	if got := ContributionWeight(0, 0.7); got != 0 {
		t.Fatalf("zero score should weigh 0, got %v", got)
	}
	if got := ContributionWeight(100, 0); got != 0 {
		t.Fatalf("zero fraction should weigh 0, got %v", got)
	}
}

func TestAggregateTierWeights(t *testing.T) {
	contributions := []TierContribution{
		{Tier: types.TierPlatinum, EngagementScore: 100, Fraction: 1},
		{Tier: types.TierPlatinum, EngagementScore: 90, Fraction: 0.5},
		{Tier: types.TierGold, EngagementScore: 50, Fraction: 1},
		{Tier: "", EngagementScore: 999, Fraction: 1},
	}

	weights := AggregateTierWeights(contributions)
	wantPlatinum := math.Log(101) + math.Log(46)
	if math.Abs(weights[types.TierPlatinum]-wantPlatinum) > 1e-12 {
		t.Fatalf("platinum weight: got %v, want %v", weights[types.TierPlatinum], wantPlatinum)
	}
	if math.Abs(weights[types.TierGold]-math.Log(51)) > 1e-12 {
		t.Fatalf("gold weight: got %v, want %v", weights[types.TierGold], math.Log(51))
	}
	if _, ok := weights[""]; ok {
		t.Fatalf("unassigned contributions must not aggregate")
	}
}
