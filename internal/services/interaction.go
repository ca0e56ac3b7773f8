package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tiertok/tiertok-backend/internal/apperr"
	"github.com/tiertok/tiertok-backend/internal/logger"
	"github.com/tiertok/tiertok-backend/internal/repos"
	"github.com/tiertok/tiertok-backend/internal/types"
	"github.com/tiertok/tiertok-backend/internal/utils"
)

type RecordInteractionInput struct {
	VideoID            string                `json:"video_id"`
	UserID             uuid.UUID             `json:"user_id"`
	InteractionType    types.InteractionType `json:"interaction_type"`
	EngagementDuration float64               `json:"engagement_duration"`
}

type InteractionService interface {
	// RecordInteraction appends the raw event and folds it into the video's
	// aggregate counters in one transaction.
	RecordInteraction(ctx context.Context, tx *gorm.DB, input *RecordInteractionInput) (*types.InteractionEvent, error)
	ListByVideo(ctx context.Context, tx *gorm.DB, videoID string, limit int) ([]*types.InteractionEvent, error)
	// StartJanitor prunes events past the retention window on an interval.
	StartJanitor(ctx context.Context)
}

type interactionService struct {
	db        *gorm.DB
	log       *logger.Logger
	eventRepo repos.InteractionEventRepo
	videoRepo repos.VideoRepo
	retention time.Duration
}

func NewInteractionService(
	db *gorm.DB,
	baseLog *logger.Logger,
	eventRepo repos.InteractionEventRepo,
	videoRepo repos.VideoRepo,
) InteractionService {
	log := baseLog.With("service", "InteractionService")
	retentionDays := utils.GetEnvAsInt("INTERACTION_RETENTION_DAYS", 7, log)
	return &interactionService{
		db:        db,
		log:       log,
		eventRepo: eventRepo,
		videoRepo: videoRepo,
		retention: time.Duration(retentionDays) * 24 * time.Hour,
	}
}

func (is *interactionService) RecordInteraction(ctx context.Context, tx *gorm.DB, input *RecordInteractionInput) (*types.InteractionEvent, error) {
	if !input.InteractionType.Valid() {
		return nil, apperr.New(apperr.KindValidation, fmt.Sprintf("unknown interaction type %q", input.InteractionType))
	}
	if input.InteractionType == types.InteractionView && input.EngagementDuration < 0 {
		return nil, apperr.New(apperr.KindValidation, "engagement duration must not be negative")
	}

	var event *types.InteractionEvent
	run := func(transaction *gorm.DB) error {
		video, err := is.videoRepo.GetByID(ctx, transaction, input.VideoID)
		if err != nil {
			return err
		}
		if video == nil {
			return apperr.New(apperr.KindNotFound, "video not found")
		}

		event = &types.InteractionEvent{
			VideoID:            input.VideoID,
			UserID:             input.UserID,
			InteractionType:    input.InteractionType,
			EngagementDuration: input.EngagementDuration,
			Timestamp:          time.Now().UTC(),
		}
		if _, err := is.eventRepo.Create(ctx, transaction, []*types.InteractionEvent{event}); err != nil {
			return err
		}

		var column string
		switch input.InteractionType {
		case types.InteractionView:
			column = "total_view_count"
			if input.EngagementDuration > 0 {
				if err := is.videoRepo.UpdateFields(ctx, transaction, input.VideoID, map[string]interface{}{
					"watch_time": gorm.Expr("watch_time + ?", input.EngagementDuration),
				}); err != nil {
					return err
				}
			}
		case types.InteractionLike:
			column = "like_count"
		case types.InteractionComment:
			column = "comment_count"
		}
		return is.videoRepo.IncrementCounter(ctx, transaction, input.VideoID, column, 1)
	}

	if tx != nil {
		if err := run(tx); err != nil {
			return nil, err
		}
		return event, nil
	}
	if err := is.db.WithContext(ctx).Transaction(run); err != nil {
		return nil, err
	}
	return event, nil
}

func (is *interactionService) ListByVideo(ctx context.Context, tx *gorm.DB, videoID string, limit int) ([]*types.InteractionEvent, error) {
	video, err := is.videoRepo.GetByID(ctx, tx, videoID)
	if err != nil {
		return nil, err
	}
	if video == nil {
		return nil, apperr.New(apperr.KindNotFound, "video not found")
	}
	return is.eventRepo.ListByVideo(ctx, tx, videoID, limit)
}

func (is *interactionService) StartJanitor(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		is.log.Info("Interaction janitor started", "retention", is.retention)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				is.pruneExpired(ctx)
			}
		}
	}()
}

func (is *interactionService) pruneExpired(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-is.retention)
	pruned, err := is.eventRepo.DeleteOlderThan(ctx, nil, cutoff)
	if err != nil {
		is.log.Error("Failed to prune interaction events", "error", err)
		return
	}
	if pruned > 0 {
		is.log.Info("Pruned interaction events", "count", pruned, "cutoff", cutoff)
	}
}
