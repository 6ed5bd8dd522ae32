package bootstrap

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	infralogger "github.com/jonesrussell/north-cloud/triage/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/triage/internal/config"
	"github.com/jonesrussell/north-cloud/triage/internal/database"
)

// DatabaseComponents holds the database connection and repository.
type DatabaseComponents struct {
	DB   *sqlx.DB
	Repo *database.Repository
}

// SetupDatabase migrates the schema when auto_migrate is set, then connects.
func SetupDatabase(ctx context.Context, cfg *config.Config, logger infralogger.Logger) (*DatabaseComponents, error) {
	dbCfg := cfg.Database
	dbCfg.SetDefaults()

	if dbCfg.AutoMigrate {
		if err := database.MigrateUp(dbCfg, logger); err != nil {
			return nil, fmt.Errorf("auto-migrate: %w", err)
		}
	}

	logger.Info("Connecting to database",
		infralogger.String("driver", dbCfg.Driver),
		infralogger.String("host", dbCfg.Host),
		infralogger.String("database", dbCfg.Name),
	)

	db, err := database.Connect(ctx, dbCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	logger.Info("Database connected successfully")

	return &DatabaseComponents{
		DB:   db,
		Repo: database.NewRepository(db),
	}, nil
}
