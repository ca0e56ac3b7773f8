package services

import (
	"math"
	"time"

	"github.com/tiertok/tiertok-backend/internal/logger"
	"github.com/tiertok/tiertok-backend/internal/types"
	"github.com/tiertok/tiertok-backend/internal/utils"
)

// ScoringConfig holds the tunables of the engagement formula. Zero values
// are replaced with the defaults at load time.
type ScoringConfig struct {
	Alpha  float64 // weight of the decayed view count term
	Beta   float64 // weight of the watch-time ratio term
	Gamma  float64 // weight of the comment ratio term
	Lambda float64 // monthly recency decay constant

	MaxBonus     float64 // ceiling of the quality multiplier bonus
	BoostDamping float64 // score scale at which the bonus fades out
}

func DefaultScoringConfig() ScoringConfig {
	return ScoringConfig{
		Alpha:        0.1,
		Beta:         0.4,
		Gamma:        0.5,
		Lambda:       0.4,
		MaxBonus:     3,
		BoostDamping: 500,
	}
}

func LoadScoringConfig(log *logger.Logger) ScoringConfig {
	d := DefaultScoringConfig()
	return ScoringConfig{
		Alpha:        utils.GetEnvAsFloat("SCORING_ALPHA", d.Alpha, log),
		Beta:         utils.GetEnvAsFloat("SCORING_BETA", d.Beta, log),
		Gamma:        utils.GetEnvAsFloat("SCORING_GAMMA", d.Gamma, log),
		Lambda:       utils.GetEnvAsFloat("SCORING_LAMBDA", d.Lambda, log),
		MaxBonus:     utils.GetEnvAsFloat("SCORING_MAX_BONUS", d.MaxBonus, log),
		BoostDamping: utils.GetEnvAsFloat("SCORING_BOOST_DAMPING", d.BoostDamping, log),
	}
}

// EngagementScorer turns a video's behavioral metrics into a single score.
// Every division site is guarded: a zero denominator contributes 0 instead
// of propagating NaN or Inf, so the output is always finite and >= 0.
type EngagementScorer struct {
	cfg ScoringConfig
	now func() time.Time
}

func NewEngagementScorer(cfg ScoringConfig) *EngagementScorer {
	d := DefaultScoringConfig()
	if cfg.Alpha == 0 && cfg.Beta == 0 && cfg.Gamma == 0 {
		cfg.Alpha, cfg.Beta, cfg.Gamma = d.Alpha, d.Beta, d.Gamma
	}
	if cfg.Lambda <= 0 {
		cfg.Lambda = d.Lambda
	}
	if cfg.MaxBonus <= 0 {
		cfg.MaxBonus = d.MaxBonus
	}
	if cfg.BoostDamping <= 0 {
		cfg.BoostDamping = d.BoostDamping
	}
	return &EngagementScorer{cfg: cfg, now: time.Now}
}

// BaseScore computes the un-boosted engagement score.
func (s *EngagementScorer) BaseScore(video *types.Video) float64 {
	watchTimeRatio := safeDiv(video.WatchTime, float64(video.TotalViewCount)) * video.Duration
	commentRatio := safeDiv(float64(video.CommentCount), float64(video.LikeCount))

	recentViews := float64(video.TotalViewCount - video.PastMonthsViewCount)
	if recentViews < 0 {
		recentViews = 0
	}
	months := monthsBetween(video.CreatedAt, s.now())
	viewCount := float64(video.PastMonthsViewCount)*math.Exp(-s.cfg.Lambda*float64(months)) + recentViews

	score := s.cfg.Alpha*math.Log(viewCount+1) +
		s.cfg.Beta*watchTimeRatio +
		s.cfg.Gamma*commentRatio
	return clampScore(score)
}

// Boost applies the content-quality multiplier to a base score. quality is
// clamped to [0,1]; the bonus fades as the base score grows so quality
// matters most for small creators.
func (s *EngagementScorer) Boost(baseScore, quality float64) float64 {
	if quality < 0 {
		quality = 0
	}
	if quality > 1 {
		quality = 1
	}
	multiplier := 1 + quality*s.cfg.MaxBonus*math.Exp(-baseScore/s.cfg.BoostDamping)
	return clampScore(baseScore * multiplier)
}

func safeDiv(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}

func clampScore(score float64) float64 {
	if math.IsNaN(score) || math.IsInf(score, 0) || score < 0 {
		return 0
	}
	return score
}

// monthsBetween counts whole calendar months from a to b, never negative.
func monthsBetween(a, b time.Time) int {
	if b.Before(a) {
		return 0
	}
	months := (b.Year()-a.Year())*12 + int(b.Month()) - int(a.Month())
	if b.Day() < a.Day() {
		months--
	}
	if months < 0 {
		return 0
	}
	return months
}
