package repos

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/tiertok/tiertok-backend/internal/logger"
	"github.com/tiertok/tiertok-backend/internal/types"
)

type VideoRepo interface {
	Create(ctx context.Context, tx *gorm.DB, videos []*types.Video) ([]*types.Video, error)
	GetByID(ctx context.Context, tx *gorm.DB, id string) (*types.Video, error)
	// GetAll returns every video with its category contributions preloaded.
	GetAll(ctx context.Context, tx *gorm.DB) ([]*types.Video, error)
	GetByCategoryID(ctx context.Context, tx *gorm.DB, categoryPoolID int64) ([]*types.Video, error)
	UpdateFields(ctx context.Context, tx *gorm.DB, id string, updates map[string]interface{}) error
	IncrementCounter(ctx context.Context, tx *gorm.DB, id string, column string, delta int64) error

	// ReplaceContributions drops the video's existing contribution set and
	// writes the classifier's fresh one.
	ReplaceContributions(ctx context.Context, tx *gorm.DB, videoID string, contributions []*types.CategoryContribution) error
	UpdateContributionTier(ctx context.Context, tx *gorm.DB, contributionID int64, tier types.VideoTier) error
}

type videoRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewVideoRepo(db *gorm.DB, baseLog *logger.Logger) VideoRepo {
	return &videoRepo{db: db, log: baseLog.With("repo", "VideoRepo")}
}

func (r *videoRepo) Create(ctx context.Context, tx *gorm.DB, videos []*types.Video) ([]*types.Video, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(videos) == 0 {
		return []*types.Video{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&videos).Error; err != nil {
		return nil, err
	}
	return videos, nil
}

func (r *videoRepo) GetByID(ctx context.Context, tx *gorm.DB, id string) (*types.Video, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var video types.Video
	err := transaction.WithContext(ctx).
		Preload("Contributions").
		Where("id = ?", id).
		First(&video).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &video, nil
}

func (r *videoRepo) GetAll(ctx context.Context, tx *gorm.DB) ([]*types.Video, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var videos []*types.Video
	if err := transaction.WithContext(ctx).
		Preload("Contributions").
		Order("id ASC").
		Find(&videos).Error; err != nil {
		return nil, err
	}
	return videos, nil
}

func (r *videoRepo) GetByCategoryID(ctx context.Context, tx *gorm.DB, categoryPoolID int64) ([]*types.Video, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var videos []*types.Video
	err := transaction.WithContext(ctx).
		Preload("Contributions").
		Joins("JOIN category_contribution ON category_contribution.video_id = video.id").
		Where("category_contribution.category_pool_id = ?", categoryPoolID).
		Order("video.id ASC").
		Find(&videos).Error
	if err != nil {
		return nil, err
	}
	return videos, nil
}

func (r *videoRepo) UpdateFields(ctx context.Context, tx *gorm.DB, id string, updates map[string]interface{}) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if id == "" {
		return nil
	}
	if updates == nil {
		updates = map[string]interface{}{}
	}
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now()
	}
	return transaction.WithContext(ctx).
		Model(&types.Video{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *videoRepo) IncrementCounter(ctx context.Context, tx *gorm.DB, id string, column string, delta int64) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	switch column {
	case "total_view_count", "like_count", "comment_count":
	default:
		return errors.New("increment on non-counter column " + column)
	}
	return transaction.WithContext(ctx).
		Model(&types.Video{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			column:       gorm.Expr(column+" + ?", delta),
			"updated_at": time.Now(),
		}).Error
}

func (r *videoRepo) ReplaceContributions(ctx context.Context, tx *gorm.DB, videoID string, contributions []*types.CategoryContribution) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Transaction(func(txx *gorm.DB) error {
		if err := txx.Where("video_id = ?", videoID).
			Delete(&types.CategoryContribution{}).Error; err != nil {
			return err
		}
		if len(contributions) == 0 {
			return nil
		}
		return txx.Create(&contributions).Error
	})
}

func (r *videoRepo) UpdateContributionTier(ctx context.Context, tx *gorm.DB, contributionID int64, tier types.VideoTier) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Model(&types.CategoryContribution{}).
		Where("id = ?", contributionID).
		Update("tier", tier).Error
}
