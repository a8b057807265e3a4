package middleware

import (
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/lostfound/found-api/internal/config"
	"github.com/lostfound/found-api/internal/services"
)

// Manager holds all middleware instances
type Manager struct {
	Auth        *AuthMiddleware
	Idempotency *IdempotencyMiddleware
	ErrorLogger *ErrorLoggerMiddleware
	RedisClient redis.UniversalClient // nil when Redis is disabled
	Config      *config.Config
	Logger      *logrus.Logger
}

// NewManager creates a new middleware manager with all middleware initialized
func NewManager(cfg *config.Config, resolver *services.IdentityResolver, logger *logrus.Logger) (*Manager, error) {
	var redisClient redis.UniversalClient
	if cfg.Redis.Enabled {
		client, err := NewRedisUniversalClient(&cfg.Redis, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create Redis client: %w", err)
		}
		redisClient = client
	} else {
		logger.Info("Redis is disabled, idempotency keys will not be replayed")
	}

	return &Manager{
		Auth:        NewAuthMiddleware(resolver, logger),
		Idempotency: NewIdempotencyMiddleware(redisClient, cfg.Redis.IdempotencyTTL, logger),
		ErrorLogger: NewErrorLoggerMiddleware(logger),
		RedisClient: redisClient,
		Config:      cfg,
		Logger:      logger,
	}, nil
}

// Close closes all middleware resources
func (m *Manager) Close() error {
	if m.RedisClient != nil {
		return m.RedisClient.Close()
	}
	return nil
}
