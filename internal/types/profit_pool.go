package types

import "time"

// ProfitPool is the platform-wide fund being redistributed. Exactly one row
// exists (by convention, id 1); TotalFund is externally configured while
// TotalCategoryWeight is recomputed by every distribution run.
type ProfitPool struct {
	ID                  int64   `gorm:"primaryKey" json:"id"`
	TotalFund           float64 `gorm:"column:total_fund;not null;default:0" json:"total_fund"`
	TotalCategoryWeight float64 `gorm:"column:total_category_weight;not null;default:0" json:"total_category_weight"`

	CategoryPools []*CategoryPool `gorm:"foreignKey:ProfitPoolID" json:"category_pools,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (ProfitPool) TableName() string { return "profit_pool" }
