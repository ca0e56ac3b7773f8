package types

import (
	"time"

	"github.com/google/uuid"
)

type InteractionType string

const (
	InteractionView    InteractionType = "VIEW"
	InteractionLike    InteractionType = "LIKE"
	InteractionComment InteractionType = "COMMENT"
)

func (t InteractionType) Valid() bool {
	switch t {
	case InteractionView, InteractionLike, InteractionComment:
		return true
	}
	return false
}

// InteractionEvent is a raw engagement event kept for a rolling window (the
// bot-detection collaborator samples them); rows older than the retention
// window are pruned by a background worker.
type InteractionEvent struct {
	ID                 int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	VideoID            string          `gorm:"column:video_id;not null;index" json:"video_id"`
	UserID             uuid.UUID       `gorm:"type:uuid;column:user_id;not null;index" json:"user_id"`
	InteractionType    InteractionType `gorm:"column:interaction_type;not null" json:"interaction_type"`
	EngagementDuration float64         `gorm:"column:engagement_duration;not null;default:0" json:"engagement_duration"`
	Timestamp          time.Time       `gorm:"column:timestamp;not null;index" json:"timestamp"`
}

func (InteractionEvent) TableName() string { return "interaction_event" }
