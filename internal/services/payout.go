package services

import "github.com/tiertok/tiertok-backend/internal/types"

// PayoutBreakdown is one per-category slice of a video's payout.
type PayoutBreakdown struct {
	CategoryPoolID int64           `json:"category_pool_id"`
	CategoryName   string          `json:"category_name"`
	Fraction       float64         `json:"fraction"`
	Tier           types.VideoTier `json:"tier"`
	Amount         float64         `json:"amount"`
}

// VideoPayout computes a video's payout as its weighted share of each tier
// fund it participates in, summed across its category contributions. Pure:
// it only reads the category fund/weight state fixed by the last run.
// Contributions without an assigned tier, against the uncategorized bucket,
// or inside a zero-weight tier pay 0.
func VideoPayout(
	engagementScore float64,
	contributions []*types.CategoryContribution,
	categories map[int64]*types.CategoryPool,
) (float64, []PayoutBreakdown) {
	var total float64
	breakdown := make([]PayoutBreakdown, 0, len(contributions))

	for _, c := range contributions {
		if c == nil {
			continue
		}
		entry := PayoutBreakdown{
			CategoryPoolID: c.CategoryPoolID,
			Fraction:       c.Fraction,
			Tier:           c.Tier,
		}
		category := categories[c.CategoryPoolID]
		if category != nil {
			entry.CategoryName = category.Name
		}
		if category != nil && c.Tier != "" {
			videoWeight := ContributionWeight(engagementScore, c.Fraction)
			tierWeight := category.TierWeightMap()[c.Tier]
			tierFund := category.TierFundMap()[c.Tier]
			if tierWeight > 0 {
				entry.Amount = (videoWeight / tierWeight) * tierFund
			}
		}
		total += entry.Amount
		breakdown = append(breakdown, entry)
	}
	return total, breakdown
}
