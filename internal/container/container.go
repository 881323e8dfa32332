package container

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	database "github.com/FACorreiaa/go-user-records/app/db"
	"github.com/FACorreiaa/go-user-records/config"
	"github.com/FACorreiaa/go-user-records/internal/api/records"
)

// Container holds all application dependencies
type Container struct {
	Config         *config.Config
	Logger         *slog.Logger
	Pool           *pgxpool.Pool
	Images         *records.DiskImageStore
	RecordsHandler *records.HandlerImpl
}

// NewContainer wires repositories, services and handlers for the configured
// storage driver. With the postgres driver it migrates and pings the database
// before returning.
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	c := &Container{Config: cfg, Logger: logger}

	var repo records.RecordRepo
	switch cfg.Storage.Driver {
	case config.StorageDriverMemory:
		logger.Warn("Using in-memory record store; data is lost on restart")
		repo = records.NewMemoryRecordRepo()
	case config.StorageDriverPostgres:
		dbConfig, err := database.NewDatabaseConfig(cfg, logger)
		if err != nil {
			return nil, err
		}
		if err := database.RunMigrations(dbConfig.ConnectionURL, logger); err != nil {
			return nil, err
		}
		pool, err := database.Init(dbConfig.ConnectionURL, logger)
		if err != nil {
			return nil, err
		}
		c.Pool = pool
		if !database.WaitForDB(ctx, pool, logger) {
			c.Close()
			return nil, fmt.Errorf("database not ready after waiting")
		}
		repo = records.NewPostgresRecordRepo(pool, logger)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}

	images, err := records.NewDiskImageStore(cfg.Uploads.Dir, cfg.Uploads.MaxBytes, logger)
	if err != nil {
		c.Close()
		return nil, err
	}
	c.Images = images

	recordService := records.NewRecordService(repo, images, logger)
	c.RecordsHandler = records.NewHandlerImpl(recordService, logger)

	return c, nil
}

// Close releases all resources held by the container
func (c *Container) Close() {
	if c.Pool != nil {
		c.Pool.Close()
	}
}
