package services

import (
	"math"

	"github.com/tiertok/tiertok-backend/internal/types"
)

// CategoryWeight is the sum of the top half (by count, ceiling) raw
// engagement scores of a category's videos, descending. Raw scores are used
// on purpose: a category full of strong performers should pull a bigger
// share of the platform pool than its contribution-weighted totals suggest.
func CategoryWeight(scoresDesc []float64) float64 {
	n := len(scoresDesc)
	if n == 0 {
		return 0
	}
	top := int(math.Ceil(float64(n) * 0.5))
	var weight float64
	for _, score := range scoresDesc[:top] {
		weight += score
	}
	if weight < 0 {
		return 0
	}
	return weight
}

// ContributionWeight is the log-dampened weight of one (video, category)
// membership: ln(score*fraction + 1). The dampening keeps a single outlier
// from owning an entire tier fund.
func ContributionWeight(engagementScore, fraction float64) float64 {
	w := math.Log(engagementScore*fraction + 1)
	if math.IsNaN(w) || w < 0 {
		return 0
	}
	return w
}

// TierContribution is one tiered membership inside a category, as seen by
// the weight aggregation stage.
type TierContribution struct {
	Tier            types.VideoTier
	EngagementScore float64
	Fraction        float64
}

// AggregateTierWeights sums the log-dampened contribution weights per tier.
func AggregateTierWeights(contributions []TierContribution) map[types.VideoTier]float64 {
	weights := map[types.VideoTier]float64{}
	for _, c := range contributions {
		if c.Tier == "" {
			continue
		}
		weights[c.Tier] += ContributionWeight(c.EngagementScore, c.Fraction)
	}
	return weights
}
