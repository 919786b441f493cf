package container

import (
	"context"
	"fmt"

	"mergington-be/internal/config"
	"mergington-be/internal/handler"
	"mergington-be/internal/repository"
	"mergington-be/internal/service"
	"mergington-be/pkg/logger"
	"mergington-be/pkg/redis"
)

// Container holds all application dependencies
type Container struct {
	Config      *config.Config
	Logger      *logger.Logger
	Store       *Store
	RedisClient *redis.Client
	Locker      service.Locker
	Services    *service.Services
}

// New creates a new dependency injection container
func New(ctx context.Context, cfg *config.Config, logger *logger.Logger) (*Container, error) {
	store, err := OpenStore(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", cfg.StoreDriver, err)
	}
	logger.WithField("driver", store.Driver).Info("Activity store opened")

	// Redis is optional; without it signups serialize within this process only
	var (
		redisClient *redis.Client
		locker      service.Locker
	)
	if cfg.RedisURL != "" {
		client, err := redis.NewClient(cfg.RedisURL, cfg.Environment, logger.Logger)
		if err != nil {
			logger.WithError(err).Warn("Failed to initialize Redis client, falling back to in-process signup lock")
		} else {
			redisClient = client
			locker = service.NewRedisLocker(client, cfg.LockTTL, logger.Logger)
			logger.WithField("key_prefix", client.KeyBuilder.GetPrefix()).Info("Redis client initialized successfully")
		}
	} else {
		logger.Info("Redis URL not configured, using in-process signup lock")
	}
	if locker == nil {
		locker = service.NewLocalLocker()
	}

	services := &service.Services{
		Directory:    service.NewDirectoryService(store.Repository, logger.Logger),
		Registration: service.NewRegistrationService(store.Repository, locker, logger.Logger),
	}

	return &Container{
		Config:      cfg,
		Logger:      logger,
		Store:       store,
		RedisClient: redisClient,
		Locker:      locker,
		Services:    services,
	}, nil
}

// GetLogger returns the logger
func (c *Container) GetLogger() *logger.Logger {
	return c.Logger
}

// GetConfig returns the configuration
func (c *Container) GetConfig() *config.Config {
	return c.Config
}

// GetRepository returns the activity repository
func (c *Container) GetRepository() repository.ActivityRepository {
	return c.Store.Repository
}

// HasRedis returns true if Redis client is available
func (c *Container) HasRedis() bool {
	return c.RedisClient != nil
}

// HealthChecks returns the dependency probes served by /health
func (c *Container) HealthChecks() map[string]handler.HealthCheck {
	checks := map[string]handler.HealthCheck{
		"store": c.Store.Health,
	}
	if c.HasRedis() {
		checks["redis"] = c.RedisClient.Health
	}
	return checks
}

// Close releases Redis and then the store
func (c *Container) Close() error {
	var firstErr error
	if c.HasRedis() {
		if err := c.RedisClient.Close(); err != nil {
			firstErr = fmt.Errorf("failed to close Redis: %w", err)
		}
	}
	if err := c.Store.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("failed to close store: %w", err)
	}
	return firstErr
}
