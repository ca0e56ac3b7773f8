package repos

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tiertok/tiertok-backend/internal/logger"
	"github.com/tiertok/tiertok-backend/internal/types"
)

type InteractionEventRepo interface {
	Create(ctx context.Context, tx *gorm.DB, events []*types.InteractionEvent) ([]*types.InteractionEvent, error)
	ListByVideo(ctx context.Context, tx *gorm.DB, videoID string, limit int) ([]*types.InteractionEvent, error)
	DeleteOlderThan(ctx context.Context, tx *gorm.DB, cutoff time.Time) (int64, error)
}

type interactionEventRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewInteractionEventRepo(db *gorm.DB, baseLog *logger.Logger) InteractionEventRepo {
	return &interactionEventRepo{db: db, log: baseLog.With("repo", "InteractionEventRepo")}
}

func (r *interactionEventRepo) Create(ctx context.Context, tx *gorm.DB, events []*types.InteractionEvent) ([]*types.InteractionEvent, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(events) == 0 {
		return []*types.InteractionEvent{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

func (r *interactionEventRepo) ListByVideo(ctx context.Context, tx *gorm.DB, videoID string, limit int) ([]*types.InteractionEvent, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if limit <= 0 {
		limit = 100
	}
	var events []*types.InteractionEvent
	err := transaction.WithContext(ctx).
		Where("video_id = ?", videoID).
		Order("timestamp DESC").
		Limit(limit).
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}

func (r *interactionEventRepo) DeleteOlderThan(ctx context.Context, tx *gorm.DB, cutoff time.Time) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(ctx).
		Where("timestamp < ?", cutoff).
		Delete(&types.InteractionEvent{})
	return res.RowsAffected, res.Error
}
