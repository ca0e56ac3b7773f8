package services

import (
	"math"
	"sort"

	"github.com/tiertok/tiertok-backend/internal/types"
)

// TierThresholds maps each tier to the minimum score that reaches it within
// one category. BRONZE is always 0. Thresholds are computed once per
// distribution run per category and held immutable for the rest of the run.
type TierThresholds map[types.VideoTier]float64

// ComputeTierThresholds derives the percentile thresholds from a category's
// engagement scores sorted descending. Returns nil when the category has no
// videos; callers then treat every score as BRONZE.
func ComputeTierThresholds(scoresDesc []float64) TierThresholds {
	n := len(scoresDesc)
	if n == 0 {
		return nil
	}
	return TierThresholds{
		types.TierPlatinum: scoresDesc[thresholdIndex(n, 0.05)],
		types.TierGold:     scoresDesc[thresholdIndex(n, 0.20)],
		types.TierSilver:   scoresDesc[thresholdIndex(n, 0.50)],
		types.TierBronze:   0,
	}
}

// thresholdIndex is the 0-indexed rank ceil(n*p) into the descending score
// list, clamped so small categories still yield a valid index.
func thresholdIndex(n int, p float64) int {
	idx := int(math.Ceil(float64(n) * p))
	if idx > n-1 {
		idx = n - 1
	}
	if idx < 0 {
		idx = 0
	}
	return idx
}

// TierFor classifies a per-category contribution score against the
// category's thresholds with an inclusive ">=" ladder. Ties at a threshold
// all land in the higher tier.
func TierFor(thresholds TierThresholds, score float64) types.VideoTier {
	if len(thresholds) == 0 {
		return types.TierBronze
	}
	switch {
	case score >= thresholds[types.TierPlatinum]:
		return types.TierPlatinum
	case score >= thresholds[types.TierGold]:
		return types.TierGold
	case score >= thresholds[types.TierSilver]:
		return types.TierSilver
	default:
		return types.TierBronze
	}
}

// PercentileRank returns 100*position/n where position counts the scores
// strictly greater than target; equal scores resolve to the lowest position
// among them. Lower is better ("top n percent").
func PercentileRank(scoresDesc []float64, target float64) float64 {
	n := len(scoresDesc)
	if n == 0 {
		return 0
	}
	position := sort.Search(n, func(i int) bool { return scoresDesc[i] <= target })
	return float64(position) * 100.0 / float64(n)
}

func SortScoresDescending(scores []float64) {
	sort.Sort(sort.Reverse(sort.Float64Slice(scores)))
}
