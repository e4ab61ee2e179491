package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/wavebreaker/wavebreaker/internal/config"
	"github.com/wavebreaker/wavebreaker/internal/logger"
	"github.com/wavebreaker/wavebreaker/internal/types"
)

type DatabaseService struct {
	db  *gorm.DB
	log *logger.Logger
}

// NewDatabaseService opens either Postgres (production) or sqlite
// (dev/test) depending on config.
func NewDatabaseService(cfg config.DatabaseConfig, log *logger.Logger) (*DatabaseService, error) {
	serviceLog := log.With("service", "DatabaseService")

	var dialector gorm.Dialector
	switch cfg.Driver {
	case "sqlite":
		serviceLog.Info("Opening sqlite database", "path", cfg.Path)
		dialector = sqlite.Open(cfg.Path)
	default:
		serviceLog.Info("Connecting to Postgres", "host", cfg.Host, "database", cfg.Name)
		dialector = postgres.Open(cfg.PostgresDSN())
	}

	gdb, err := gorm.Open(dialector, &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		serviceLog.Error("Failed to connect to database", "error", err)
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &DatabaseService{db: gdb, log: serviceLog}, nil
}

func (s *DatabaseService) AutoMigrateAll() error {
	s.log.Info("Auto migrating tables...")
	err := s.db.AutoMigrate(
		&types.Player{},
		&types.Song{},
		&types.ExtraSongInfo{},
		&types.Score{},
		&types.Rivalry{},
		&types.Shout{},
		&types.WebToken{},
	)
	if err != nil {
		s.log.Error("Auto migration failed", "error", err)
		return err
	}
	return nil
}

func (s *DatabaseService) DB() *gorm.DB {
	return s.db
}
