package services

import (
	"testing"

	"github.com/tiertok/tiertok-backend/internal/types"
)

func TestComputeTierThresholds_TenVideos(t *testing.T) {
	scores := []float64{100, 90, 80, 70, 60, 50, 40, 30, 20, 10}

	thresholds := ComputeTierThresholds(scores)
	if thresholds[types.TierPlatinum] != 90 {
		t.Fatalf("platinum threshold: got %v, want 90", thresholds[types.TierPlatinum])
	}
	if thresholds[types.TierGold] != 80 {
		t.Fatalf("gold threshold: got %v, want 80", thresholds[types.TierGold])
	}
	if thresholds[types.TierSilver] != 50 {
		t.Fatalf("silver threshold: got %v, want 50", thresholds[types.TierSilver])
	}
	if thresholds[types.TierBronze] != 0 {
		t.Fatalf("bronze threshold: got %v, want 0", thresholds[types.TierBronze])
	}
}

func TestComputeTierThresholds_Ordering(t *testing.T) {
	scores := []float64{500, 400, 300, 250, 200, 150, 100, 80, 60, 40, 30, 20, 10, 5, 1}

	th := ComputeTierThresholds(scores)
	if !(th[types.TierPlatinum] >= th[types.TierGold] &&
		th[types.TierGold] >= th[types.TierSilver] &&
		th[types.TierSilver] >= th[types.TierBronze]) {
		t.Fatalf("thresholds not monotone: %v", th)
	}
}

func TestComputeTierThresholds_SingleVideo(t *testing.T) {
	th := ComputeTierThresholds([]float64{42})
	// All percentile indices clamp to the only score.
	if th[types.TierPlatinum] != 42 || th[types.TierGold] != 42 || th[types.TierSilver] != 42 {
		t.Fatalf("single video should set every threshold to its score: %v", th)
	}
	if TierFor(th, 42) != types.TierPlatinum {
		t.Fatalf("the only video should be platinum")
	}
}

func TestComputeTierThresholds_Empty(t *testing.T) {
	if th := ComputeTierThresholds(nil); th != nil {
		t.Fatalf("expected nil thresholds for empty category, got %v", th)
	}
}

func TestTierFor_InclusiveLadder(t *testing.T) {
	th := TierThresholds{
		types.TierPlatinum: 90,
		types.TierGold:     80,
		types.TierSilver:   50,
		types.TierBronze:   0,
	}
	cases := []struct {
		score float64
		want  types.VideoTier
	}{
		{95, types.TierPlatinum},
		{90, types.TierPlatinum},
		{89.999, types.TierGold},
		{80, types.TierGold},
		{50, types.TierSilver},
		{49, types.TierBronze},
		{0, types.TierBronze},
	}
	for _, c := range cases {
		if got := TierFor(th, c.score); got != c.want {
			t.Fatalf("TierFor(%v) = %s, want %s", c.score, got, c.want)
		}
	}
}

func TestTierFor_NoThresholdsMeansBronze(t *testing.T) {
	if got := TierFor(nil, 1000); got != types.TierBronze {
		t.Fatalf("expected bronze without thresholds, got %s", got)
	}
}

func TestPercentileRank_TiesShareBestPosition(t *testing.T) {
	scores := []float64{100, 80, 80, 80, 60}

	// The three tied videos all rank as "top 20%": one score strictly above.
	if got := PercentileRank(scores, 80); got != 20 {
		t.Fatalf("tied score rank: got %v, want 20", got)
	}
	if got := PercentileRank(scores, 100); got != 0 {
		t.Fatalf("top score rank: got %v, want 0", got)
	}
	if got := PercentileRank(scores, 60); got != 80 {
		t.Fatalf("bottom score rank: got %v, want 80", got)
	}
}

func TestPercentileRank_Empty(t *testing.T) {
	if got := PercentileRank(nil, 50); got != 0 {
		t.Fatalf("expected 0 for empty list, got %v", got)
	}
}

func TestSortScoresDescending(t *testing.T) {
	scores := []float64{10, 50, 30}
	SortScoresDescending(scores)
	if scores[0] != 50 || scores[1] != 30 || scores[2] != 10 {
		t.Fatalf("unexpected order: %v", scores)
	}
}
