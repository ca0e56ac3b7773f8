package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	RunStatusRunning = "running"
	RunStatusDone    = "done"
	RunStatusFailed  = "failed"
)

const (
	StageCategories = "assigning_categories"
	StageScoring    = "scoring"
	StageThresholds = "computing_thresholds"
	StageTiers      = "assigning_tiers"
	StageWeights    = "aggregating_weights"
	StageFunds      = "distributing_funds"
	StageDone       = "done"
)

// DistributionRun records one invocation of the distribution pipeline: the
// stage it reached, per-item counters and, on success, the resulting
// pool/category/tier fund snapshot.
type DistributionRun struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Status string    `gorm:"column:status;not null;index" json:"status"`
	Stage  string    `gorm:"column:stage;not null" json:"stage"`

	VideosTotal    int `gorm:"column:videos_total;not null;default:0" json:"videos_total"`
	VideosScored   int `gorm:"column:videos_scored;not null;default:0" json:"videos_scored"`
	VideosDegraded int `gorm:"column:videos_degraded;not null;default:0" json:"videos_degraded"`

	Error  string         `gorm:"column:error" json:"error,omitempty"`
	Result datatypes.JSON `gorm:"type:jsonb;column:result" json:"result,omitempty"`

	StartedAt  time.Time  `gorm:"not null;default:now();index" json:"started_at"`
	FinishedAt *time.Time `gorm:"column:finished_at" json:"finished_at,omitempty"`
}

func (DistributionRun) TableName() string { return "distribution_run" }
