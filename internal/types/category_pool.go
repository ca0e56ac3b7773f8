package types

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// CategoryPool is one category's slice of the platform pool. Weight and fund
// fields are derived: the pipeline overwrites them on every run.
type CategoryPool struct {
	ID   int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Name string `gorm:"column:name;not null;uniqueIndex" json:"name"`

	TotalWeight float64 `gorm:"column:total_weight;not null;default:0" json:"total_weight"`
	TotalFund   float64 `gorm:"column:total_fund;not null;default:0" json:"total_fund"`

	TierWeights datatypes.JSON `gorm:"type:jsonb;column:tier_weights" json:"tier_weights"`
	TierFunds   datatypes.JSON `gorm:"type:jsonb;column:tier_funds" json:"tier_funds"`

	ProfitPoolID int64 `gorm:"column:profit_pool_id;not null;index" json:"profit_pool_id"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (CategoryPool) TableName() string { return "category_pool" }

func (c *CategoryPool) TierWeightMap() map[VideoTier]float64 {
	return decodeTierMap(c.TierWeights)
}

func (c *CategoryPool) TierFundMap() map[VideoTier]float64 {
	return decodeTierMap(c.TierFunds)
}

func EncodeTierMap(m map[VideoTier]float64) datatypes.JSON {
	if m == nil {
		m = map[VideoTier]float64{}
	}
	b, _ := json.Marshal(m)
	return datatypes.JSON(b)
}

func decodeTierMap(raw datatypes.JSON) map[VideoTier]float64 {
	out := map[VideoTier]float64{}
	if len(raw) == 0 {
		return out
	}
	_ = json.Unmarshal(raw, &out)
	return out
}
