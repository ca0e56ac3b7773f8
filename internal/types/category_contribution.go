package types

// UncategorizedPoolID is the sentinel bucket for classifier results whose
// category name matches no catalog entry. Contributions against it never
// participate in distribution.
const UncategorizedPoolID int64 = 0

// CategoryContribution is one (video, category) membership supplied by the
// external classifier: a video belongs to up to three categories, each with
// an independent fraction in [0,1]. Fractions are not normalized across a
// video's categories.
type CategoryContribution struct {
	ID             int64   `gorm:"primaryKey;autoIncrement" json:"id"`
	VideoID        string  `gorm:"column:video_id;not null;index" json:"video_id"`
	CategoryPoolID int64   `gorm:"column:category_pool_id;not null;index" json:"category_pool_id"`
	Fraction       float64 `gorm:"column:fraction;not null" json:"fraction"`
	// Empty until the pipeline's tier-assignment stage runs; overwritten,
	// never merged, on every run.
	Tier VideoTier `gorm:"column:tier" json:"tier"`
}

func (CategoryContribution) TableName() string { return "category_contribution" }
