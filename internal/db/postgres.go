package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/tiertok/tiertok-backend/internal/logger"
	"github.com/tiertok/tiertok-backend/internal/types"
	"github.com/tiertok/tiertok-backend/internal/utils"
)

type PostgresService struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPostgresService(log *logger.Logger) (*PostgresService, error) {
	serviceLog := log.With("service", "PostgresService")

	postgresHost := utils.GetEnv("POSTGRES_HOST", "localhost", log)
	postgresPort := utils.GetEnv("POSTGRES_PORT", "5432", log)
	postgresUser := utils.GetEnv("POSTGRES_USER", "postgres", log)
	postgresPassword := utils.GetEnv("POSTGRES_PASSWORD", "", log)
	postgresName := utils.GetEnv("POSTGRES_NAME", "tiertok", log)

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		postgresUser, postgresPassword, postgresHost, postgresPort, postgresName)

	log.Info("Connecting to Postgres...")
	gormDB, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		serviceLog.Error("Failed to connect to Postgres", "error", err)
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	if err := gormDB.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`).Error; err != nil {
		serviceLog.Error("Failed to enable uuid-ossp extension", "error", err)
		return nil, fmt.Errorf("enable uuid-ossp extension: %w", err)
	}

	return &PostgresService{db: gormDB, log: serviceLog}, nil
}

func (s *PostgresService) AutoMigrateAll() error {
	s.log.Info("Auto migrating postgres tables...")
	err := s.db.AutoMigrate(
		&types.User{},
		&types.Video{},
		&types.CategoryContribution{},
		&types.CategoryPool{},
		&types.ProfitPool{},
		&types.DistributionRun{},
		&types.InteractionEvent{},
	)
	if err != nil {
		s.log.Error("Auto migration failed for postgres tables", "error", err)
		return err
	}
	return nil
}

// SeedPool makes sure the singleton profit pool row exists so a fresh
// database can serve a distribution run.
func (s *PostgresService) SeedPool(poolID int64, defaultFund float64) error {
	var pool types.ProfitPool
	err := s.db.Where("id = ?", poolID).Limit(1).Find(&pool).Error
	if err != nil {
		return err
	}
	if pool.ID != 0 {
		return nil
	}
	s.log.Info("Seeding profit pool", "pool_id", poolID, "total_fund", defaultFund)
	return s.db.Create(&types.ProfitPool{ID: poolID, TotalFund: defaultFund}).Error
}

func (s *PostgresService) DB() *gorm.DB {
	return s.db
}
