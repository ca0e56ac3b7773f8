package repos

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/tiertok/tiertok-backend/internal/logger"
	"github.com/tiertok/tiertok-backend/internal/types"
)

type ProfitPoolRepo interface {
	// Get loads the pool with its category list preloaded; nil when absent.
	Get(ctx context.Context, tx *gorm.DB, id int64) (*types.ProfitPool, error)
	UpdateFields(ctx context.Context, tx *gorm.DB, id int64, updates map[string]interface{}) error
}

type profitPoolRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProfitPoolRepo(db *gorm.DB, baseLog *logger.Logger) ProfitPoolRepo {
	return &profitPoolRepo{db: db, log: baseLog.With("repo", "ProfitPoolRepo")}
}

func (r *profitPoolRepo) Get(ctx context.Context, tx *gorm.DB, id int64) (*types.ProfitPool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var pool types.ProfitPool
	err := transaction.WithContext(ctx).
		Preload("CategoryPools", func(db *gorm.DB) *gorm.DB { return db.Order("category_pool.id ASC") }).
		Where("id = ?", id).
		First(&pool).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &pool, nil
}

func (r *profitPoolRepo) UpdateFields(ctx context.Context, tx *gorm.DB, id int64, updates map[string]interface{}) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if updates == nil {
		updates = map[string]interface{}{}
	}
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now()
	}
	return transaction.WithContext(ctx).
		Model(&types.ProfitPool{}).
		Where("id = ?", id).
		Updates(updates).Error
}
