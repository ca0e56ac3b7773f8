package services

import "github.com/tiertok/tiertok-backend/internal/types"

// SplitPoolByWeight allocates the platform fund to categories proportionally
// to their weights. When the total weight is 0 every category gets 0; the
// guard keeps a degenerate snapshot from producing NaN funds.
func SplitPoolByWeight(totalFund float64, categoryWeights map[int64]float64) map[int64]float64 {
	funds := make(map[int64]float64, len(categoryWeights))
	var totalWeight float64
	for _, w := range categoryWeights {
		totalWeight += w
	}
	for id, w := range categoryWeights {
		if totalWeight == 0 {
			funds[id] = 0
			continue
		}
		funds[id] = (w / totalWeight) * totalFund
	}
	return funds
}

// SplitCategoryByTierWeight allocates one category's fund to its tiers
// proportionally to the per-tier weights, with the same zero-weight guard.
func SplitCategoryByTierWeight(categoryFund float64, tierWeights map[types.VideoTier]float64) map[types.VideoTier]float64 {
	funds := make(map[types.VideoTier]float64, len(tierWeights))
	var totalWeight float64
	for _, w := range tierWeights {
		totalWeight += w
	}
	for tier, w := range tierWeights {
		if totalWeight == 0 {
			funds[tier] = 0
			continue
		}
		funds[tier] = (w / totalWeight) * categoryFund
	}
	return funds
}
