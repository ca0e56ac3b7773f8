package repos

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/tiertok/tiertok-backend/internal/logger"
	"github.com/tiertok/tiertok-backend/internal/types"
)

type CategoryPoolRepo interface {
	GetAll(ctx context.Context, tx *gorm.DB) ([]*types.CategoryPool, error)
	GetByID(ctx context.Context, tx *gorm.DB, id int64) (*types.CategoryPool, error)
	GetByName(ctx context.Context, tx *gorm.DB, name string) (*types.CategoryPool, error)
	UpdateFields(ctx context.Context, tx *gorm.DB, id int64, updates map[string]interface{}) error
}

type categoryPoolRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCategoryPoolRepo(db *gorm.DB, baseLog *logger.Logger) CategoryPoolRepo {
	return &categoryPoolRepo{db: db, log: baseLog.With("repo", "CategoryPoolRepo")}
}

func (r *categoryPoolRepo) GetAll(ctx context.Context, tx *gorm.DB) ([]*types.CategoryPool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var pools []*types.CategoryPool
	if err := transaction.WithContext(ctx).Order("id ASC").Find(&pools).Error; err != nil {
		return nil, err
	}
	return pools, nil
}

func (r *categoryPoolRepo) GetByID(ctx context.Context, tx *gorm.DB, id int64) (*types.CategoryPool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var pool types.CategoryPool
	err := transaction.WithContext(ctx).Where("id = ?", id).First(&pool).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &pool, nil
}

func (r *categoryPoolRepo) GetByName(ctx context.Context, tx *gorm.DB, name string) (*types.CategoryPool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var pool types.CategoryPool
	err := transaction.WithContext(ctx).Where("name = ?", name).First(&pool).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &pool, nil
}

func (r *categoryPoolRepo) UpdateFields(ctx context.Context, tx *gorm.DB, id int64, updates map[string]interface{}) error {
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
		Model(&types.CategoryPool{}).
		Where("id = ?", id).
		Updates(updates).Error
}
