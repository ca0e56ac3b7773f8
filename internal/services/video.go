package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tiertok/tiertok-backend/internal/apperr"
	"github.com/tiertok/tiertok-backend/internal/clients/aiserver"
	"github.com/tiertok/tiertok-backend/internal/logger"
	"github.com/tiertok/tiertok-backend/internal/repos"
	"github.com/tiertok/tiertok-backend/internal/types"
)

type CreateVideoInput struct {
	ID                  string    `json:"id"`
	CreatorID           uuid.UUID `json:"creator_id"`
	Caption             string    `json:"caption"`
	VideoURL            string    `json:"video_url"`
	Duration            float64   `json:"duration"`
	WatchTime           float64   `json:"watch_time"`
	PastMonthsViewCount int64     `json:"past_months_view_count"`
	TotalViewCount      int64     `json:"total_view_count"`
	LikeCount           int64     `json:"like_count"`
	CommentCount        int64     `json:"comment_count"`
}

type VideoService interface {
	CreateVideo(ctx context.Context, tx *gorm.DB, input CreateVideoInput) (*types.Video, error)
	GetVideoByID(ctx context.Context, tx *gorm.DB, id string) (*types.Video, error)
	// AssignCategories asks the classifier for the video's category split and
	// replaces the stored contribution set. Unknown category names land in
	// the uncategorized sentinel bucket instead of failing the video.
	AssignCategories(ctx context.Context, tx *gorm.DB, videoID string) ([]*types.CategoryContribution, error)
}

type videoService struct {
	db           *gorm.DB
	log          *logger.Logger
	videoRepo    repos.VideoRepo
	categoryRepo repos.CategoryPoolRepo
	ai           aiserver.Client
}

func NewVideoService(
	db *gorm.DB,
	baseLog *logger.Logger,
	videoRepo repos.VideoRepo,
	categoryRepo repos.CategoryPoolRepo,
	ai aiserver.Client,
) VideoService {
	return &videoService{
		db:           db,
		log:          baseLog.With("service", "VideoService"),
		videoRepo:    videoRepo,
		categoryRepo: categoryRepo,
		ai:           ai,
	}
}

func (vs *videoService) CreateVideo(ctx context.Context, tx *gorm.DB, input CreateVideoInput) (*types.Video, error) {
	input.ID = strings.TrimSpace(input.ID)
	if input.ID == "" {
		return nil, apperr.New(apperr.KindValidation, "video id is required")
	}
	if input.CreatorID == uuid.Nil {
		return nil, apperr.New(apperr.KindValidation, "creator id is required")
	}
	if input.Duration < 0 || input.WatchTime < 0 ||
		input.TotalViewCount < 0 || input.PastMonthsViewCount < 0 ||
		input.LikeCount < 0 || input.CommentCount < 0 {
		return nil, apperr.New(apperr.KindValidation, "metrics must be non-negative")
	}

	now := time.Now()
	video := &types.Video{
		ID:                  input.ID,
		CreatorID:           input.CreatorID,
		Caption:             input.Caption,
		VideoURL:            input.VideoURL,
		Duration:            input.Duration,
		WatchTime:           input.WatchTime,
		PastMonthsViewCount: input.PastMonthsViewCount,
		TotalViewCount:      input.TotalViewCount,
		LikeCount:           input.LikeCount,
		CommentCount:        input.CommentCount,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if _, err := vs.videoRepo.Create(ctx, tx, []*types.Video{video}); err != nil {
		vs.log.Error("CreateVideo failed", "error", err, "video_id", input.ID)
		return nil, fmt.Errorf("create video: %w", err)
	}
	return video, nil
}

func (vs *videoService) GetVideoByID(ctx context.Context, tx *gorm.DB, id string) (*types.Video, error) {
	video, err := vs.videoRepo.GetByID(ctx, tx, id)
	if err != nil {
		return nil, fmt.Errorf("load video: %w", err)
	}
	if video == nil {
		return nil, apperr.New(apperr.KindNotFound, "video not found")
	}
	return video, nil
}

func (vs *videoService) AssignCategories(ctx context.Context, tx *gorm.DB, videoID string) ([]*types.CategoryContribution, error) {
	video, err := vs.GetVideoByID(ctx, tx, videoID)
	if err != nil {
		return nil, err
	}

	assignments, err := vs.ai.CategorizeVideo(ctx, video.ID)
	if err != nil {
		return nil, err
	}

	contributions := make([]*types.CategoryContribution, 0, len(assignments))
	for _, a := range assignments {
		poolID := types.UncategorizedPoolID
		category, err := vs.categoryRepo.GetByName(ctx, tx, a.Category)
		if err != nil {
			return nil, fmt.Errorf("resolve category %q: %w", a.Category, err)
		}
		if category != nil {
			poolID = category.ID
		} else {
			vs.log.Warn("Classifier returned unknown category, using uncategorized bucket",
				"video_id", video.ID, "category", a.Category)
		}
		contributions = append(contributions, &types.CategoryContribution{
			VideoID:        video.ID,
			CategoryPoolID: poolID,
			Fraction:       a.Percentage,
		})
	}

	if err := vs.videoRepo.ReplaceContributions(ctx, tx, video.ID, contributions); err != nil {
		return nil, fmt.Errorf("replace contributions: %w", err)
	}
	return contributions, nil
}
