package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/tiertok/tiertok-backend/internal/apperr"
	"github.com/tiertok/tiertok-backend/internal/clients/aiserver"
	"github.com/tiertok/tiertok-backend/internal/logger"
	"github.com/tiertok/tiertok-backend/internal/repos"
	"github.com/tiertok/tiertok-backend/internal/types"
	"github.com/tiertok/tiertok-backend/internal/utils"
)

// RunLock serializes distribution runs. Category and pool aggregates are
// only ever written by the run that holds it.
type RunLock interface {
	// TryLock takes the lease. On success the returned release frees this
	// acquisition only, so a release held past lease expiry cannot free a
	// newer holder's lock.
	TryLock(ctx context.Context) (release func(context.Context) error, ok bool, err error)
}

// LocalRunLock is the in-process fallback when redis is not configured.
type LocalRunLock struct {
	mu     sync.Mutex
	locked bool
}

func NewLocalRunLock() *LocalRunLock { return &LocalRunLock{} }

func (l *LocalRunLock) TryLock(ctx context.Context) (func(context.Context) error, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.locked {
		return nil, false, nil
	}
	l.locked = true
	released := false
	release := func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		if !released {
			released = true
			l.locked = false
		}
		return nil
	}
	return release, true, nil
}

// CategorySnapshot is one category's slice of the run result.
type CategorySnapshot struct {
	ID          int64                       `json:"id"`
	Name        string                      `json:"name"`
	Weight      float64                     `json:"weight"`
	Fund        float64                     `json:"fund"`
	TierWeights map[types.VideoTier]float64 `json:"tier_weights"`
	TierFunds   map[types.VideoTier]float64 `json:"tier_funds"`
}

// PoolSnapshot is the fund state produced by a distribution run.
type PoolSnapshot struct {
	RunID               uuid.UUID          `json:"run_id"`
	PoolID              int64              `json:"pool_id"`
	TotalFund           float64            `json:"total_fund"`
	TotalCategoryWeight float64            `json:"total_category_weight"`
	VideosTotal         int                `json:"videos_total"`
	VideosScored        int                `json:"videos_scored"`
	VideosDegraded      int                `json:"videos_degraded"`
	Categories          []CategorySnapshot `json:"categories"`
}

type DistributionService interface {
	// Run executes the whole pipeline once. A second call while a run is
	// active fails with a ConcurrentRun error; nothing is queued.
	Run(ctx context.Context) (*PoolSnapshot, error)
	GetRun(ctx context.Context, id uuid.UUID) (*types.DistributionRun, error)
	GetLatestRun(ctx context.Context) (*types.DistributionRun, error)
	// StartScheduler triggers Run on a fixed interval until ctx is done.
	StartScheduler(ctx context.Context)
}

type distributionService struct {
	db  *gorm.DB
	log *logger.Logger

	videoRepo    repos.VideoRepo
	categoryRepo repos.CategoryPoolRepo
	poolRepo     repos.ProfitPoolRepo
	runRepo      repos.DistributionRunRepo

	videoService VideoService
	ai           aiserver.Client
	scorer       *EngagementScorer
	lock         RunLock
	tracer       trace.Tracer

	poolID         int64
	maxConcurrency int
	epsilon        float64
	interval       time.Duration
}

func NewDistributionService(
	db *gorm.DB,
	baseLog *logger.Logger,
	videoRepo repos.VideoRepo,
	categoryRepo repos.CategoryPoolRepo,
	poolRepo repos.ProfitPoolRepo,
	runRepo repos.DistributionRunRepo,
	videoService VideoService,
	ai aiserver.Client,
	scorer *EngagementScorer,
	lock RunLock,
) DistributionService {
	log := baseLog.With("service", "DistributionService")
	return &distributionService{
		db:             db,
		log:            log,
		videoRepo:      videoRepo,
		categoryRepo:   categoryRepo,
		poolRepo:       poolRepo,
		runRepo:        runRepo,
		videoService:   videoService,
		ai:             ai,
		scorer:         scorer,
		lock:           lock,
		tracer:         otel.Tracer("distribution"),
		poolID:         int64(utils.GetEnvAsInt("PROFIT_POOL_ID", 1, log)),
		maxConcurrency: utils.GetEnvAsInt("DISTRIBUTION_MAX_CONCURRENCY", 8, log),
		epsilon:        utils.GetEnvAsFloat("DISTRIBUTION_EPSILON", 1e-6, log),
		interval:       time.Duration(utils.GetEnvAsInt("DISTRIBUTION_INTERVAL_SECONDS", 0, log)) * time.Second,
	}
}

// runState is the in-memory working set of one run. It is a snapshot: the
// threshold and weight stages only ever read scores written by the barrier
// before them, never a partially updated set.
type runState struct {
	run        *types.DistributionRun
	pool       *types.ProfitPool
	videos     []*types.Video
	categories map[int64]*types.CategoryPool

	thresholds      map[int64]TierThresholds
	categoryWeights map[int64]float64
	tierWeights     map[int64]map[types.VideoTier]float64
	categoryFunds   map[int64]float64
	tierFunds       map[int64]map[types.VideoTier]float64

	scored   int32
	degraded int32
}

func (ds *distributionService) Run(ctx context.Context) (*PoolSnapshot, error) {
	release, ok, err := ds.lock.TryLock(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire run lock: %w", err)
	}
	if !ok {
		return nil, apperr.New(apperr.KindConcurrentRun, "a distribution run is already active")
	}
	defer func() {
		if err := release(context.WithoutCancel(ctx)); err != nil {
			ds.log.Warn("Failed to release run lock", "error", err)
		}
	}()

	ctx, span := ds.tracer.Start(ctx, "distribution.run")
	defer span.End()

	st, err := ds.beginRun(ctx)
	if err != nil {
		return nil, err
	}
	ds.log.Info("Distribution run started",
		"run_id", st.run.ID, "videos", len(st.videos), "categories", len(st.categories))

	stages := []struct {
		name string
		fn   func(context.Context, *runState) error
	}{
		{types.StageCategories, ds.stageAssignCategories},
		{types.StageScoring, ds.stageScoring},
		{types.StageThresholds, ds.stageThresholds},
		{types.StageTiers, ds.stageAssignTiers},
		{types.StageWeights, ds.stageAggregateWeights},
		{types.StageFunds, ds.stageDistributeFunds},
	}
	for _, stage := range stages {
		if err := ctx.Err(); err != nil {
			return nil, ds.failRun(ctx, st, stage.name, err)
		}
		if err := ds.runStage(ctx, st, stage.name, stage.fn); err != nil {
			return nil, ds.failRun(ctx, st, stage.name, err)
		}
	}

	if err := ds.checkFundConservation(st); err != nil {
		return nil, ds.failRun(ctx, st, types.StageFunds, err)
	}
	return ds.finishRun(ctx, st)
}

func (ds *distributionService) GetRun(ctx context.Context, id uuid.UUID) (*types.DistributionRun, error) {
	run, err := ds.runRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	if run == nil {
		return nil, apperr.New(apperr.KindNotFound, "distribution run not found")
	}
	return run, nil
}

func (ds *distributionService) GetLatestRun(ctx context.Context) (*types.DistributionRun, error) {
	run, err := ds.runRepo.GetLatest(ctx, nil)
	if err != nil {
		return nil, err
	}
	if run == nil {
		return nil, apperr.New(apperr.KindNotFound, "no distribution run yet")
	}
	return run, nil
}

func (ds *distributionService) StartScheduler(ctx context.Context) {
	if ds.interval <= 0 {
		ds.log.Info("Distribution scheduler disabled")
		return
	}
	go func() {
		ticker := time.NewTicker(ds.interval)
		defer ticker.Stop()
		ds.log.Info("Distribution scheduler started", "interval", ds.interval)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := ds.Run(ctx); err != nil {
					if apperr.IsKind(err, apperr.KindConcurrentRun) {
						ds.log.Debug("Scheduled run skipped, another run active")
						continue
					}
					ds.log.Error("Scheduled distribution run failed", "error", err)
				}
			}
		}
	}()
}

// -------------------- run lifecycle --------------------

func (ds *distributionService) beginRun(ctx context.Context) (*runState, error) {
	pool, err := ds.poolRepo.Get(ctx, nil, ds.poolID)
	if err != nil {
		return nil, fmt.Errorf("load profit pool: %w", err)
	}
	if pool == nil {
		return nil, apperr.New(apperr.KindNotFound, fmt.Sprintf("profit pool %d not found", ds.poolID))
	}

	videos, err := ds.videoRepo.GetAll(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("load videos: %w", err)
	}

	categories := make(map[int64]*types.CategoryPool, len(pool.CategoryPools))
	for _, c := range pool.CategoryPools {
		categories[c.ID] = c
	}

	run := &types.DistributionRun{
		ID:          uuid.New(),
		Status:      types.RunStatusRunning,
		Stage:       types.StageCategories,
		VideosTotal: len(videos),
		StartedAt:   time.Now().UTC(),
	}
	if _, err := ds.runRepo.Create(ctx, nil, run); err != nil {
		return nil, fmt.Errorf("create distribution run: %w", err)
	}

	return &runState{
		run:        run,
		pool:       pool,
		videos:     videos,
		categories: categories,
	}, nil
}

func (ds *distributionService) runStage(ctx context.Context, st *runState, name string, fn func(context.Context, *runState) error) error {
	stageCtx, span := ds.tracer.Start(ctx, "distribution.stage."+name)
	defer span.End()

	if err := ds.runRepo.UpdateFields(stageCtx, nil, st.run.ID, map[string]interface{}{
		"stage":           name,
		"videos_scored":   int(atomic.LoadInt32(&st.scored)),
		"videos_degraded": int(atomic.LoadInt32(&st.degraded)),
	}); err != nil {
		return fmt.Errorf("update run stage: %w", err)
	}
	st.run.Stage = name

	start := time.Now()
	if err := fn(stageCtx, st); err != nil {
		return err
	}
	ds.log.Info("Distribution stage complete", "run_id", st.run.ID, "stage", name, "took", time.Since(start))
	return nil
}

func (ds *distributionService) failRun(ctx context.Context, st *runState, stage string, err error) error {
	now := time.Now().UTC()
	updateErr := ds.runRepo.UpdateFields(context.WithoutCancel(ctx), nil, st.run.ID, map[string]interface{}{
		"status":      types.RunStatusFailed,
		"stage":       stage,
		"error":       err.Error(),
		"finished_at": now,
	})
	if updateErr != nil {
		ds.log.Error("Failed to mark run failed", "run_id", st.run.ID, "error", updateErr)
	}
	ds.log.Error("Distribution run failed", "run_id", st.run.ID, "stage", stage, "error", err)
	return err
}

func (ds *distributionService) finishRun(ctx context.Context, st *runState) (*PoolSnapshot, error) {
	snapshot := ds.buildSnapshot(st)
	raw, _ := json.Marshal(snapshot)
	now := time.Now().UTC()
	if err := ds.runRepo.UpdateFields(ctx, nil, st.run.ID, map[string]interface{}{
		"status":          types.RunStatusDone,
		"stage":           types.StageDone,
		"videos_scored":   snapshot.VideosScored,
		"videos_degraded": snapshot.VideosDegraded,
		"result":          datatypes.JSON(raw),
		"finished_at":     now,
	}); err != nil {
		return nil, fmt.Errorf("finalize run: %w", err)
	}
	ds.log.Info("Distribution run done",
		"run_id", st.run.ID,
		"scored", snapshot.VideosScored,
		"degraded", snapshot.VideosDegraded,
		"total_weight", snapshot.TotalCategoryWeight)
	return snapshot, nil
}

func (ds *distributionService) buildSnapshot(st *runState) *PoolSnapshot {
	snapshot := &PoolSnapshot{
		RunID:               st.run.ID,
		PoolID:              st.pool.ID,
		TotalFund:           st.pool.TotalFund,
		TotalCategoryWeight: totalWeight(st.categoryWeights),
		VideosTotal:         len(st.videos),
		VideosScored:        int(atomic.LoadInt32(&st.scored)),
		VideosDegraded:      int(atomic.LoadInt32(&st.degraded)),
	}
	for _, id := range sortedCategoryIDs(st.categories) {
		category := st.categories[id]
		snapshot.Categories = append(snapshot.Categories, CategorySnapshot{
			ID:          id,
			Name:        category.Name,
			Weight:      st.categoryWeights[id],
			Fund:        st.categoryFunds[id],
			TierWeights: st.tierWeights[id],
			TierFunds:   st.tierFunds[id],
		})
	}
	return snapshot
}

// -------------------- stages --------------------

// stageAssignCategories classifies every video that has no contribution set
// yet. Classifier failures degrade: the video stays uncategorized and the
// stage proceeds.
func (ds *distributionService) stageAssignCategories(ctx context.Context, st *runState) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(ds.maxConcurrency)
	var mu sync.Mutex

	for _, video := range st.videos {
		if len(video.Contributions) > 0 {
			continue
		}
		video := video
		g.Go(func() error {
			contributions, err := ds.videoService.AssignCategories(gctx, nil, video.ID)
			if err != nil {
				if apperr.IsKind(err, apperr.KindExternalService) {
					ds.log.Warn("Classifier call failed, leaving video uncategorized",
						"video_id", video.ID, "error", err)
					return nil
				}
				return err
			}
			mu.Lock()
			video.Contributions = contributions
			mu.Unlock()
			return nil
		})
	}
	return g.Wait()
}

// stageScoring recomputes every video's engagement score with bounded
// concurrency. A failed quality call degrades that one video to the
// un-boosted base score; only persistence errors fail the stage.
func (ds *distributionService) stageScoring(ctx context.Context, st *runState) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(ds.maxConcurrency)

	for _, video := range st.videos {
		video := video
		g.Go(func() error {
			base := ds.scorer.BaseScore(video)
			score := base
			quality, err := ds.ai.EvaluateVideo(gctx, video.ID)
			if err != nil {
				atomic.AddInt32(&st.degraded, 1)
				ds.log.Warn("Quality evaluation failed, using base score",
					"video_id", video.ID, "error", err)
			} else {
				score = ds.scorer.Boost(base, quality)
			}
			if err := ds.videoRepo.UpdateFields(gctx, nil, video.ID, map[string]interface{}{
				"engagement_score": score,
			}); err != nil {
				return fmt.Errorf("persist score for video %s: %w", video.ID, err)
			}
			video.EngagementScore = score
			atomic.AddInt32(&st.scored, 1)
			return nil
		})
	}
	return g.Wait()
}

// stageThresholds computes every category's tier thresholds from the score
// snapshot fixed by the scoring barrier. Thresholds stay immutable for the
// rest of the run.
func (ds *distributionService) stageThresholds(ctx context.Context, st *runState) error {
	st.thresholds = make(map[int64]TierThresholds, len(st.categories))
	for id, scores := range ds.categoryScores(st) {
		st.thresholds[id] = ComputeTierThresholds(scores)
	}
	return nil
}

// stageAssignTiers maps every (video, category) contribution score onto the
// category's thresholds, overwriting assignments from previous runs.
func (ds *distributionService) stageAssignTiers(ctx context.Context, st *runState) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(ds.maxConcurrency)

	for _, video := range st.videos {
		video := video
		g.Go(func() error {
			for _, contribution := range video.Contributions {
				if _, ok := st.categories[contribution.CategoryPoolID]; !ok {
					continue
				}
				tierScore := video.EngagementScore * contribution.Fraction
				tier := TierFor(st.thresholds[contribution.CategoryPoolID], tierScore)
				if err := ds.videoRepo.UpdateContributionTier(gctx, nil, contribution.ID, tier); err != nil {
					return fmt.Errorf("persist tier for video %s: %w", video.ID, err)
				}
				contribution.Tier = tier
			}
			return nil
		})
	}
	return g.Wait()
}

// stageAggregateWeights computes each category's pool weight (top half raw
// scores) and its per-tier log-dampened weights.
func (ds *distributionService) stageAggregateWeights(ctx context.Context, st *runState) error {
	st.categoryWeights = make(map[int64]float64, len(st.categories))
	st.tierWeights = make(map[int64]map[types.VideoTier]float64, len(st.categories))

	scores := ds.categoryScores(st)
	for id := range st.categories {
		st.categoryWeights[id] = CategoryWeight(scores[id])
	}

	contributions := map[int64][]TierContribution{}
	for _, video := range st.videos {
		for _, c := range video.Contributions {
			if _, ok := st.categories[c.CategoryPoolID]; !ok {
				continue
			}
			contributions[c.CategoryPoolID] = append(contributions[c.CategoryPoolID], TierContribution{
				Tier:            c.Tier,
				EngagementScore: video.EngagementScore,
				Fraction:        c.Fraction,
			})
		}
	}
	for id := range st.categories {
		st.tierWeights[id] = AggregateTierWeights(contributions[id])
	}
	return nil
}

// stageDistributeFunds runs the two-level proportional split and persists
// the derived pool/category state. Stage 2 consumes the category funds
// computed in stage 1 of the same run, never stale values.
func (ds *distributionService) stageDistributeFunds(ctx context.Context, st *runState) error {
	poolWeight := totalWeight(st.categoryWeights)
	if poolWeight == 0 && st.pool.TotalFund > 0 {
		ds.log.Warn("No category weight to split against, withholding funds",
			"run_id", st.run.ID,
			"error", apperr.New(apperr.KindDivisionByZero, "total category weight is zero"))
	}
	st.categoryFunds = SplitPoolByWeight(st.pool.TotalFund, st.categoryWeights)

	st.tierFunds = make(map[int64]map[types.VideoTier]float64, len(st.categories))
	for id := range st.categories {
		st.tierFunds[id] = SplitCategoryByTierWeight(st.categoryFunds[id], st.tierWeights[id])
	}

	if err := ds.poolRepo.UpdateFields(ctx, nil, st.pool.ID, map[string]interface{}{
		"total_category_weight": poolWeight,
	}); err != nil {
		return fmt.Errorf("persist pool weight: %w", err)
	}
	st.pool.TotalCategoryWeight = poolWeight

	for _, id := range sortedCategoryIDs(st.categories) {
		if err := ds.categoryRepo.UpdateFields(ctx, nil, id, map[string]interface{}{
			"total_weight": st.categoryWeights[id],
			"total_fund":   st.categoryFunds[id],
			"tier_weights": types.EncodeTierMap(st.tierWeights[id]),
			"tier_funds":   types.EncodeTierMap(st.tierFunds[id]),
		}); err != nil {
			return fmt.Errorf("persist category %d: %w", id, err)
		}
		category := st.categories[id]
		category.TotalWeight = st.categoryWeights[id]
		category.TotalFund = st.categoryFunds[id]
		category.TierWeights = types.EncodeTierMap(st.tierWeights[id])
		category.TierFunds = types.EncodeTierMap(st.tierFunds[id])
	}
	return nil
}

// checkFundConservation verifies that no money appeared or vanished beyond
// floating rounding. A violation marks the run failed; the committed
// category state is left untouched for investigation.
func (ds *distributionService) checkFundConservation(st *runState) error {
	if totalWeight(st.categoryWeights) == 0 {
		return nil
	}
	eps := ds.epsilon * math.Max(1, st.pool.TotalFund)

	var categorySum float64
	for _, fund := range st.categoryFunds {
		categorySum += fund
	}
	if math.Abs(categorySum-st.pool.TotalFund) >= eps {
		return apperr.New(apperr.KindInvariantViolation,
			fmt.Sprintf("category funds sum %.9f != pool fund %.9f", categorySum, st.pool.TotalFund))
	}

	for id, fund := range st.categoryFunds {
		weights := st.tierWeights[id]
		if totalTierWeight(weights) == 0 {
			continue
		}
		var tierSum float64
		for _, f := range st.tierFunds[id] {
			tierSum += f
		}
		if math.Abs(tierSum-fund) >= eps {
			return apperr.New(apperr.KindInvariantViolation,
				fmt.Sprintf("tier funds sum %.9f != category %d fund %.9f", tierSum, id, fund))
		}
	}
	return nil
}

// -------------------- helpers --------------------

// categoryScores collects each category's raw engagement scores, sorted
// descending. Only contributions against catalog categories count; the
// uncategorized bucket never participates.
func (ds *distributionService) categoryScores(st *runState) map[int64][]float64 {
	scores := make(map[int64][]float64, len(st.categories))
	for _, video := range st.videos {
		for _, c := range video.Contributions {
			if _, ok := st.categories[c.CategoryPoolID]; !ok {
				continue
			}
			scores[c.CategoryPoolID] = append(scores[c.CategoryPoolID], video.EngagementScore)
		}
	}
	for _, list := range scores {
		SortScoresDescending(list)
	}
	return scores
}

func sortedCategoryIDs(categories map[int64]*types.CategoryPool) []int64 {
	ids := make([]int64, 0, len(categories))
	for id := range categories {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func totalWeight(weights map[int64]float64) float64 {
	var sum float64
	for _, w := range weights {
		sum += w
	}
	return sum
}

func totalTierWeight(weights map[types.VideoTier]float64) float64 {
	var sum float64
	for _, w := range weights {
		sum += w
	}
	return sum
}
