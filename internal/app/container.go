package app

import (
	"context"
	"errors"
	"fmt"

	"jobmatch/internal/config"
	"jobmatch/internal/database/migration"
	"jobmatch/internal/database/mongodb"
	dbpostgres "jobmatch/internal/database/postgres"
	"jobmatch/internal/docstore"
	"jobmatch/internal/docstore/memory"
	docmongo "jobmatch/internal/docstore/mongo"
	docpostgres "jobmatch/internal/docstore/postgres"
	"jobmatch/internal/infrastructure/cache"
	"jobmatch/internal/logger"
	"jobmatch/internal/usecase"
	"jobmatch/internal/ws"

	"go.uber.org/zap"
)

// Container owns the long-lived dependencies of a server process.
type Container struct {
	Config config.Config
	Logger *zap.Logger
	Store  docstore.Store
	Cache  *cache.Redis
	Hub    *ws.Hub

	Jobs            *usecase.Jobs
	Seekers         *usecase.Seekers
	Matches         *usecase.Matches
	Recommendations *usecase.Recommendations

	closers []func(context.Context) error
}

func NewContainer(ctx context.Context, cfg config.Config, log *zap.Logger) (*Container, error) {
	log = logger.OrNop(log)
	c := &Container{Config: cfg, Logger: log}

	store, err := c.openStore(ctx)
	if err != nil {
		_ = c.Close(context.Background())
		return nil, err
	}
	c.Store = store

	c.Cache = cache.NewRedis(ctx, cfg.Redis, log)
	c.closers = append(c.closers, func(context.Context) error { return c.Cache.Close() })

	c.Hub = ws.NewHub(log)

	c.Jobs = usecase.NewJobUsecase(store, c.Cache, cfg.Redis.TTL, log)
	c.Seekers = usecase.NewSeekerUsecase(store, log)
	c.Matches = usecase.NewMatchUsecase(store, log,
		usecase.WithPairLock(c.Cache, cfg.Redis.LockTTL),
		usecase.WithNotifier(ws.NewNotifier(c.Hub)),
	)
	c.Recommendations = usecase.NewRecommendationUsecase(store, log)

	return c, nil
}

func (c *Container) openStore(ctx context.Context) (docstore.Store, error) {
	cfg := c.Config
	switch cfg.Store.Driver {
	case config.StoreMemory, "":
		c.Logger.Info("using in-memory document store")
		return memory.New(), nil

	case config.StorePostgres:
		pool, err := dbpostgres.Connect(ctx, cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		c.closers = append(c.closers, func(context.Context) error { return pool.Close() })

		applied, err := migration.Runner{}.Run(ctx, pool)
		if err != nil {
			return nil, fmt.Errorf("migrate: %w", err)
		}
		for _, a := range applied {
			c.Logger.Info("migration applied", zap.Int64("version", a.Version), zap.String("name", a.Name))
		}
		c.Logger.Info("using postgres document store")
		return docpostgres.New(pool), nil

	case config.StoreMongo:
		db, err := mongodb.Connect(ctx, cfg.Mongo)
		if err != nil {
			return nil, fmt.Errorf("connect mongo: %w", err)
		}
		store := docmongo.New(db)
		c.closers = append(c.closers, store.Close)
		c.Logger.Info("using mongo document store", zap.String("database", cfg.Mongo.Database))
		return store, nil
	}
	return nil, fmt.Errorf("unsupported store driver %q", cfg.Store.Driver)
}

// Close releases resources in reverse order of acquisition.
func (c *Container) Close(ctx context.Context) error {
	if c == nil {
		return nil
	}
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	c.closers = nil
	return errors.Join(errs...)
}
