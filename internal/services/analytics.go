package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/tiertok/tiertok-backend/internal/apperr"
	"github.com/tiertok/tiertok-backend/internal/logger"
	"github.com/tiertok/tiertok-backend/internal/repos"
	"github.com/tiertok/tiertok-backend/internal/types"
)

// CategoryStanding is a video's position inside one of its categories.
type CategoryStanding struct {
	CategoryPoolID int64           `json:"category_pool_id"`
	CategoryName   string          `json:"category_name"`
	Fraction       float64         `json:"fraction"`
	Tier           types.VideoTier `json:"tier"`
	PercentileRank float64         `json:"percentile_rank"`
}

// VideoAnalytics is the creator-facing report for one video.
type VideoAnalytics struct {
	VideoID                   string             `json:"video_id"`
	TotalViewCount            int64              `json:"total_view_count"`
	LikeCount                 int64              `json:"like_count"`
	CommentCount              int64              `json:"comment_count"`
	WatchTime                 float64            `json:"watch_time"`
	EngagementScore           float64            `json:"engagement_score"`
	PercentileRank            float64            `json:"percentile_rank"`
	EngagementScoreToNextTier float64            `json:"engagement_score_to_next_tier"`
	EstimatedPayout           float64            `json:"estimated_payout"`
	PayoutBreakdown           []PayoutBreakdown  `json:"payout_breakdown"`
	Categories                []CategoryStanding `json:"categories"`
}

type VideoAnalyticsService interface {
	GetVideoAnalytics(ctx context.Context, tx *gorm.DB, videoID string) (*VideoAnalytics, error)
}

type videoAnalyticsService struct {
	db           *gorm.DB
	log          *logger.Logger
	videoRepo    repos.VideoRepo
	categoryRepo repos.CategoryPoolRepo
}

func NewVideoAnalyticsService(
	db *gorm.DB,
	baseLog *logger.Logger,
	videoRepo repos.VideoRepo,
	categoryRepo repos.CategoryPoolRepo,
) VideoAnalyticsService {
	return &videoAnalyticsService{
		db:           db,
		log:          baseLog.With("service", "VideoAnalyticsService"),
		videoRepo:    videoRepo,
		categoryRepo: categoryRepo,
	}
}

func (vas *videoAnalyticsService) GetVideoAnalytics(ctx context.Context, tx *gorm.DB, videoID string) (*VideoAnalytics, error) {
	video, err := vas.videoRepo.GetByID(ctx, tx, videoID)
	if err != nil {
		return nil, err
	}
	if video == nil {
		return nil, apperr.New(apperr.KindNotFound, "video not found")
	}

	categories, err := vas.loadCategories(ctx, tx)
	if err != nil {
		return nil, err
	}

	report := &VideoAnalytics{
		VideoID:         video.ID,
		TotalViewCount:  video.TotalViewCount,
		LikeCount:       video.LikeCount,
		CommentCount:    video.CommentCount,
		WatchTime:       video.WatchTime,
		EngagementScore: video.EngagementScore,
	}

	// Rank needs every peer score per category; thresholds need the same
	// descending lists, so build them once.
	scoresByCategory, err := vas.categoryScoreLists(ctx, tx, video.Contributions)
	if err != nil {
		return nil, err
	}

	var gapSet bool
	for _, contribution := range video.Contributions {
		category, ok := categories[contribution.CategoryPoolID]
		if !ok {
			continue
		}
		peerScores := scoresByCategory[contribution.CategoryPoolID]
		rank := PercentileRank(peerScores, video.EngagementScore)
		if rank > report.PercentileRank {
			report.PercentileRank = rank
		}
		report.Categories = append(report.Categories, CategoryStanding{
			CategoryPoolID: contribution.CategoryPoolID,
			CategoryName:   category.Name,
			Fraction:       contribution.Fraction,
			Tier:           contribution.Tier,
			PercentileRank: rank,
		})

		// Distance to the next tier is measured on the raw score against the
		// category's threshold ladder; report the smallest climb.
		if next := types.NextTier(contribution.Tier); next != "" {
			thresholds := ComputeTierThresholds(peerScores)
			gap := thresholds[next] - video.EngagementScore
			if gap > 0 && (!gapSet || gap < report.EngagementScoreToNextTier) {
				report.EngagementScoreToNextTier = gap
				gapSet = true
			}
		}
	}

	report.EstimatedPayout, report.PayoutBreakdown = VideoPayout(video.EngagementScore, video.Contributions, categories)
	return report, nil
}

func (vas *videoAnalyticsService) loadCategories(ctx context.Context, tx *gorm.DB) (map[int64]*types.CategoryPool, error) {
	all, err := vas.categoryRepo.GetAll(ctx, tx)
	if err != nil {
		return nil, err
	}
	categories := make(map[int64]*types.CategoryPool, len(all))
	for _, c := range all {
		categories[c.ID] = c
	}
	return categories, nil
}

func (vas *videoAnalyticsService) categoryScoreLists(ctx context.Context, tx *gorm.DB, contributions []*types.CategoryContribution) (map[int64][]float64, error) {
	lists := make(map[int64][]float64, len(contributions))
	for _, contribution := range contributions {
		if contribution.CategoryPoolID == types.UncategorizedPoolID {
			continue
		}
		if _, done := lists[contribution.CategoryPoolID]; done {
			continue
		}
		peers, err := vas.videoRepo.GetByCategoryID(ctx, tx, contribution.CategoryPoolID)
		if err != nil {
			return nil, err
		}
		scores := make([]float64, 0, len(peers))
		for _, peer := range peers {
			scores = append(scores, peer.EngagementScore)
		}
		SortScoresDescending(scores)
		lists[contribution.CategoryPoolID] = scores
	}
	return lists, nil
}
