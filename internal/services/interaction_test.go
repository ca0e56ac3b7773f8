package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tiertok/tiertok-backend/internal/apperr"
	"github.com/tiertok/tiertok-backend/internal/logger"
	"github.com/tiertok/tiertok-backend/internal/types"
)

type fakeInteractionEventRepo struct {
	mu     sync.Mutex
	events []*types.InteractionEvent
}

func (r *fakeInteractionEventRepo) Create(ctx context.Context, tx *gorm.DB, events []*types.InteractionEvent) ([]*types.InteractionEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, events...)
	return events, nil
}

func (r *fakeInteractionEventRepo) ListByVideo(ctx context.Context, tx *gorm.DB, videoID string, limit int) ([]*types.InteractionEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*types.InteractionEvent
	for _, e := range r.events {
		if e.VideoID == videoID {
			out = append(out, e)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeInteractionEventRepo) DeleteOlderThan(ctx context.Context, tx *gorm.DB, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var kept []*types.InteractionEvent
	var pruned int64
	for _, e := range r.events {
		if e.Timestamp.Before(cutoff) {
			pruned++
			continue
		}
		kept = append(kept, e)
	}
	r.events = kept
	return pruned, nil
}

func interactionFixture() (*fakeVideoRepo, *fakeInteractionEventRepo, InteractionService) {
	videoRepo := newFakeVideoRepo(&types.Video{ID: "v1", CreatedAt: time.Now()})
	eventRepo := &fakeInteractionEventRepo{}
	svc := NewInteractionService(nil, logger.NewNop(), eventRepo, videoRepo)
	return videoRepo, eventRepo, svc
}

// The fakes ignore the transaction handle, so passing a placeholder keeps
// the service out of its real-transaction path.
var testTx = &gorm.DB{}

func TestRecordInteraction_View(t *testing.T) {
	videoRepo, eventRepo, svc := interactionFixture()

	event, err := svc.RecordInteraction(context.Background(), testTx, &RecordInteractionInput{
		VideoID:            "v1",
		UserID:             uuid.New(),
		InteractionType:    types.InteractionView,
		EngagementDuration: 12.5,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if event.Timestamp.IsZero() {
		t.Fatalf("event not stamped: %+v", event)
	}
	video := videoRepo.videos["v1"]
	if video.TotalViewCount != 1 {
		t.Fatalf("view count: got %d, want 1", video.TotalViewCount)
	}
	if video.WatchTime != 12.5 {
		t.Fatalf("watch time: got %v, want 12.5", video.WatchTime)
	}
	if len(eventRepo.events) != 1 {
		t.Fatalf("expected 1 stored event, got %d", len(eventRepo.events))
	}
}

func TestRecordInteraction_LikeAndComment(t *testing.T) {
	videoRepo, _, svc := interactionFixture()

	for _, it := range []types.InteractionType{types.InteractionLike, types.InteractionComment} {
		if _, err := svc.RecordInteraction(context.Background(), testTx, &RecordInteractionInput{
			VideoID:         "v1",
			UserID:          uuid.New(),
			InteractionType: it,
		}); err != nil {
			t.Fatalf("%s: unexpected error: %v", it, err)
		}
	}
	video := videoRepo.videos["v1"]
	if video.LikeCount != 1 || video.CommentCount != 1 {
		t.Fatalf("counters: likes=%d comments=%d, want 1/1", video.LikeCount, video.CommentCount)
	}
	if video.TotalViewCount != 0 {
		t.Fatalf("likes must not bump views, got %d", video.TotalViewCount)
	}
}

func TestRecordInteraction_InvalidType(t *testing.T) {
	_, _, svc := interactionFixture()

	_, err := svc.RecordInteraction(context.Background(), testTx, &RecordInteractionInput{
		VideoID:         "v1",
		InteractionType: "SHARE",
	})
	if !apperr.IsKind(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRecordInteraction_NegativeDuration(t *testing.T) {
	_, _, svc := interactionFixture()

	_, err := svc.RecordInteraction(context.Background(), testTx, &RecordInteractionInput{
		VideoID:            "v1",
		InteractionType:    types.InteractionView,
		EngagementDuration: -3,
	})
	if !apperr.IsKind(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRecordInteraction_UnknownVideo(t *testing.T) {
	_, eventRepo, svc := interactionFixture()

	_, err := svc.RecordInteraction(context.Background(), testTx, &RecordInteractionInput{
		VideoID:         "missing",
		InteractionType: types.InteractionLike,
	})
	if !apperr.IsKind(err, apperr.KindNotFound) {
		t.Fatalf("expected not-found, got %v", err)
	}
	if len(eventRepo.events) != 0 {
		t.Fatalf("no event should be stored for an unknown video")
	}
}

func TestListByVideo(t *testing.T) {
	_, _, svc := interactionFixture()

	for i := 0; i < 3; i++ {
		if _, err := svc.RecordInteraction(context.Background(), testTx, &RecordInteractionInput{
			VideoID:         "v1",
			UserID:          uuid.New(),
			InteractionType: types.InteractionLike,
		}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	events, err := svc.ListByVideo(context.Background(), testTx, "v1", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("limit not applied: got %d events", len(events))
	}
}

func TestPruneExpired(t *testing.T) {
	_, eventRepo, svc := interactionFixture()

	now := time.Now().UTC()
	eventRepo.events = []*types.InteractionEvent{
		{VideoID: "v1", InteractionType: types.InteractionView, Timestamp: now.Add(-8 * 24 * time.Hour)},
		{VideoID: "v1", InteractionType: types.InteractionLike, Timestamp: now.Add(-time.Hour)},
	}

	svc.(*interactionService).pruneExpired(context.Background())
	if len(eventRepo.events) != 1 {
		t.Fatalf("expected 1 surviving event, got %d", len(eventRepo.events))
	}
	if eventRepo.events[0].InteractionType != types.InteractionLike {
		t.Fatalf("wrong event pruned: %+v", eventRepo.events[0])
	}
}

func TestListByVideo_UnknownVideo(t *testing.T) {
	_, _, svc := interactionFixture()

	_, err := svc.ListByVideo(context.Background(), testTx, "missing", 10)
	if !apperr.IsKind(err, apperr.KindNotFound) {
		t.Fatalf("expected not-found, got %v", err)
	}
}
