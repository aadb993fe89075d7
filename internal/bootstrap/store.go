package bootstrap

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/Goopi7/crop-connect/internal/agronomy"
	"github.com/Goopi7/crop-connect/internal/config"
	"github.com/Goopi7/crop-connect/internal/crops"
	"github.com/Goopi7/crop-connect/pkg/storage"
)

// Stores holds the repositories selected by the store driver
type Stores struct {
	Driver   string
	Crops    crops.Repository
	Agronomy agronomy.Repository
	closers  []func(context.Context) error
}

// Clearer removes every crop from a persistent store
type Clearer interface {
	DeleteAll(ctx context.Context) (int64, error)
}

// OpenStores connects the configured crop and agronomy stores and prepares
// their schema. Agronomy advice lives in Mongo when Mongo is the driver and in
// memory otherwise.
func OpenStores(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Stores, error) {
	stores := &Stores{Driver: cfg.Store.Driver}

	switch cfg.Store.Driver {
	case config.DriverMemory:
		stores.Crops = crops.NewMemoryRepository()
		stores.Agronomy = agronomy.NewMemoryRepository()

	case config.DriverMongo:
		client, db, err := storage.ConnectMongo(ctx, storage.MongoOptions{
			URI:            cfg.Mongo.URI,
			Database:       cfg.Mongo.Database,
			ConnectTimeout: cfg.Mongo.ConnectTimeout.Std(),
		})
		if err != nil {
			return nil, err
		}
		stores.closers = append(stores.closers, client.Disconnect)

		if err := stores.openMongo(ctx, db); err != nil {
			_ = stores.Close(ctx)
			return nil, err
		}

	case config.DriverPostgres:
		db, err := storage.OpenPostgres(storage.PostgresOptions{
			DSN:          cfg.Database.GetDatabaseURL(),
			MaxOpenConns: cfg.Database.MaxConnections,
			MaxIdleConns: cfg.Database.MaxIdleConns,
			MaxLifetime:  cfg.Database.MaxLifetime.Std(),
		})
		if err != nil {
			return nil, err
		}
		if sqlDB, err := db.DB(); err == nil {
			stores.closers = append(stores.closers, func(context.Context) error { return sqlDB.Close() })
		}

		repo := crops.NewPostgresRepository(db)
		if err := repo.Migrate(ctx); err != nil {
			_ = stores.Close(ctx)
			return nil, fmt.Errorf("failed to migrate crops table: %w", err)
		}
		stores.Crops = repo
		stores.Agronomy = agronomy.NewMemoryRepository()

	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}

	logger.Info("Store opened", zap.String("driver", cfg.Store.Driver))
	return stores, nil
}

func (s *Stores) openMongo(ctx context.Context, db *mongo.Database) error {
	cropRepo := crops.NewMongoRepository(db)
	if err := cropRepo.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("failed to create crop indexes: %w", err)
	}
	adviceRepo := agronomy.NewMongoRepository(db)
	if err := adviceRepo.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("failed to create agronomy indexes: %w", err)
	}
	s.Crops = cropRepo
	s.Agronomy = adviceRepo
	return nil
}

// Clear deletes every crop when the store supports it
func (s *Stores) Clear(ctx context.Context) (int64, error) {
	clearer, ok := s.Crops.(Clearer)
	if !ok {
		return 0, fmt.Errorf("store driver %q cannot be cleared", s.Driver)
	}
	return clearer.DeleteAll(ctx)
}

// Close releases every open connection
func (s *Stores) Close(ctx context.Context) error {
	var firstErr error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	s.closers = nil
	return firstErr
}
