package app

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"hire-match/internal/config"
	"hire-match/internal/database/postgres"
	"hire-match/internal/delivery/http/handler"
	v1 "hire-match/internal/delivery/http/routes/v1"
	"hire-match/internal/domain/matching"
	"hire-match/internal/guard"
	"hire-match/internal/infrastructure/cache"
	"hire-match/internal/metrics"
	"hire-match/internal/pkg/jwt"
	"hire-match/internal/repository"
	"hire-match/internal/repository/memory"
	"hire-match/internal/usecase"
)

type Container struct {
	Config  config.Config
	Logger  *zap.Logger
	Metrics *metrics.Metrics

	DB    *postgres.Pool
	Redis *cache.Redis

	Profiles  repository.ProfileRepository
	Positions repository.PositionRepository
	Apps      repository.ApplicationRepository
	Guard     guard.Guard
	JWT       jwt.Service

	Lifecycle *usecase.Lifecycle
	Matching  *usecase.Matching
	Catalog   *usecase.Catalog
	Profile   *usecase.Profiles
}

func NewContainer(ctx context.Context, cfg config.Config, logger *zap.Logger) (_ *Container, err error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Container{Config: cfg, Logger: logger, Metrics: metrics.New()}
	defer func() {
		if err != nil {
			_ = c.Close()
		}
	}()

	if err := c.initStorage(ctx); err != nil {
		return nil, err
	}
	if err := c.initGuard(ctx); err != nil {
		return nil, err
	}

	scorer, err := matching.NewScorer(matching.Weights{
		Skill:        cfg.Scoring.SkillWeight,
		Compensation: cfg.Scoring.CompensationWeight,
		Location:     cfg.Scoring.LocationWeight,
	})
	if err != nil {
		return nil, err
	}

	c.JWT = jwt.NewHMACService(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.ExpiresIn)

	opts := []usecase.Option{usecase.WithLogger(logger), usecase.WithMetrics(c.Metrics)}
	c.Lifecycle = usecase.NewLifecycleUsecase(c.Profiles, c.Positions, c.Apps, c.Guard, scorer, opts...)
	c.Matching = usecase.NewMatchingUsecase(c.Profiles, c.Positions, c.Apps, scorer, opts...)
	c.Catalog = usecase.NewCatalogUsecase(c.Profiles, c.Positions, c.Guard, opts...)
	c.Profile = usecase.NewProfileUsecase(c.Profiles, c.Apps, opts...)

	logger.Info("container ready",
		zap.String("storage", cfg.Storage.Driver),
		zap.String("guard", cfg.Guard.Backend),
	)
	return c, nil
}

func (c *Container) initStorage(ctx context.Context) error {
	switch c.Config.Storage.Driver {
	case config.StorageMemory:
		store := memory.NewStore()
		c.Profiles, c.Positions, c.Apps = store, store, store
		return nil
	case config.StoragePostgres:
		pool, err := postgres.Connect(ctx, c.Config.Database)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		c.DB = pool
		c.Profiles = repository.NewPostgresProfileRepository(pool)
		c.Positions = repository.NewPostgresPositionRepository(pool)
		c.Apps = repository.NewPostgresApplicationRepository(pool)
		return nil
	default:
		return fmt.Errorf("unknown storage driver %q", c.Config.Storage.Driver)
	}
}

func (c *Container) initGuard(ctx context.Context) error {
	gcfg := c.Config.Guard
	opts := []guard.Option{guard.WithTimeout(gcfg.LockTimeout), guard.WithObserver(c.Metrics)}

	switch gcfg.Backend {
	case config.GuardLocal:
		if c.Config.Storage.Driver == config.StoragePostgres {
			c.Logger.Warn("local guard with shared postgres storage is only safe for a single instance")
		}
		c.Guard = guard.NewLocal(opts...)
		return nil
	case config.GuardRedis:
		rdb, err := cache.NewRedis(ctx, c.Config.Redis, c.Logger)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		c.Redis = rdb
		c.Guard = guard.NewRedis(rdb, guard.RedisConfig{
			LeaseTTL:      gcfg.LeaseTTL,
			RetryInterval: gcfg.RetryInterval,
		}, opts...)
		return nil
	default:
		return fmt.Errorf("unknown guard backend %q", gcfg.Backend)
	}
}

// RouteDeps is what the v1 API needs from the container.
func (c *Container) RouteDeps() v1.Deps {
	return v1.Deps{
		JWT:       c.JWT,
		Lifecycle: c.Lifecycle,
		Matching:  c.Matching,
		Catalog:   c.Catalog,
		Profiles:  c.Profile,
	}
}

// HealthChecks lists the external dependencies /health pings.
func (c *Container) HealthChecks() map[string]handler.Pinger {
	checks := make(map[string]handler.Pinger, 2)
	if c.DB != nil {
		checks["postgres"] = c.DB
	}
	if c.Redis != nil {
		checks["redis"] = c.Redis
	}
	return checks
}

func (c *Container) Close() error {
	if c == nil {
		return nil
	}
	var errs []error
	if c.Redis != nil {
		errs = append(errs, c.Redis.Close())
	}
	if c.DB != nil {
		errs = append(errs, c.DB.Close())
	}
	return errors.Join(errs...)
}
