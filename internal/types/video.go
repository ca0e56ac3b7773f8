package types

import (
	"time"

	"github.com/google/uuid"
)

// Video carries the behavioral metrics the engagement scorer reads and the
// cached score the pipeline writes back. The id comes from the upload
// pipeline, not generated here, so it stays a plain string.
type Video struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	CreatorID uuid.UUID `gorm:"type:uuid;not null;index" json:"creator_id"`
	Caption   string    `gorm:"column:caption" json:"caption"`
	VideoURL  string    `gorm:"column:video_url" json:"video_url"`

	Duration  float64 `gorm:"column:duration;not null;default:0" json:"duration"`
	WatchTime float64 `gorm:"column:watch_time;not null;default:0" json:"watch_time"`
	// Total view count from upload until the last monthly cutoff. Recent
	// views are TotalViewCount - PastMonthsViewCount.
	PastMonthsViewCount int64 `gorm:"column:past_months_view_count;not null;default:0" json:"past_months_view_count"`
	TotalViewCount      int64 `gorm:"column:total_view_count;not null;default:0" json:"total_view_count"`
	LikeCount           int64 `gorm:"column:like_count;not null;default:0" json:"like_count"`
	CommentCount        int64 `gorm:"column:comment_count;not null;default:0" json:"comment_count"`

	// Written only by the distribution pipeline.
	EngagementScore float64 `gorm:"column:engagement_score;not null;default:0" json:"engagement_score"`

	Contributions []*CategoryContribution `gorm:"foreignKey:VideoID" json:"contributions,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:now();index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Video) TableName() string { return "video" }
