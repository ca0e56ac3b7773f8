package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tiertok/tiertok-backend/internal/logger"
	"github.com/tiertok/tiertok-backend/internal/types"
)

type DistributionRunRepo interface {
	Create(ctx context.Context, tx *gorm.DB, run *types.DistributionRun) (*types.DistributionRun, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.DistributionRun, error)
	GetLatest(ctx context.Context, tx *gorm.DB) (*types.DistributionRun, error)
	UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error
}

type distributionRunRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDistributionRunRepo(db *gorm.DB, baseLog *logger.Logger) DistributionRunRepo {
	return &distributionRunRepo{db: db, log: baseLog.With("repo", "DistributionRunRepo")}
}

func (r *distributionRunRepo) Create(ctx context.Context, tx *gorm.DB, run *types.DistributionRun) (*types.DistributionRun, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if run == nil {
		return nil, nil
	}
	if err := transaction.WithContext(ctx).Create(run).Error; err != nil {
		return nil, err
	}
	return run, nil
}

func (r *distributionRunRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.DistributionRun, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var run types.DistributionRun
	err := transaction.WithContext(ctx).Where("id = ?", id).First(&run).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

func (r *distributionRunRepo) GetLatest(ctx context.Context, tx *gorm.DB) (*types.DistributionRun, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var run types.DistributionRun
	err := transaction.WithContext(ctx).Order("started_at DESC").Limit(1).Find(&run).Error
	if err != nil {
		return nil, err
	}
	if run.ID == uuid.Nil {
		return nil, nil
	}
	return &run, nil
}

func (r *distributionRunRepo) UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil || len(updates) == 0 {
		return nil
	}
	return transaction.WithContext(ctx).
		Model(&types.DistributionRun{}).
		Where("id = ?", id).
		Updates(updates).Error
}
