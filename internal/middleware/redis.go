package middleware

import (
	"context"
	"crypto/tls"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/lostfound/found-api/internal/config"
)

// NewRedisUniversalClient connects to Redis and verifies the connection.
// cfg.Password must already be resolved from Secrets Manager when enabled.
// Cluster mode expects the configuration endpoint in cfg.Address.
func NewRedisUniversalClient(cfg *config.RedisConfig, logger *logrus.Logger) (redis.UniversalClient, error) {
	var tlsConfig *tls.Config
	if cfg.TLSEnabled {
		tlsConfig = &tls.Config{
			ServerName: extractHostname(cfg.Address),
		}
		logger.WithField("address", cfg.Address).Info("Redis TLS encryption enabled")
	}

	options := &redis.UniversalOptions{
		Addrs:        []string{cfg.Address},
		Password:     cfg.Password,
		DB:           cfg.Database, // Ignored in cluster mode
		MaxRetries:   cfg.MaxRetries,
		PoolSize:     cfg.PoolSize,
		PoolTimeout:  cfg.PoolTimeout,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		DialTimeout:  5 * time.Second,

		// Connection pool settings
		MinIdleConns:    2,
		ConnMaxIdleTime: 10 * time.Minute,

		// Retry settings
		MinRetryBackoff: 8 * time.Millisecond,
		MaxRetryBackoff: 512 * time.Millisecond,

		TLSConfig: tlsConfig,
	}

	var client redis.UniversalClient
	if cfg.ClusterMode {
		client = redis.NewClusterClient(options.Cluster())
	} else {
		client = redis.NewUniversalClient(options)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	mode := "standalone"
	if cfg.ClusterMode {
		mode = "cluster"
	}

	logger.WithFields(logrus.Fields{
		"address": cfg.Address,
		"mode":    mode,
	}).Info("Connected to Redis via UniversalClient")

	return client, nil
}

// RedisHealthCheck returns a readiness probe for Redis connectivity
func RedisHealthCheck(redisClient redis.UniversalClient, logger *logrus.Logger) func(context.Context) error {
	return func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()

		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.WithError(err).Error("Redis health check failed")
			return fmt.Errorf("redis unavailable: %w", err)
		}

		return nil
	}
}

// extractHostname extracts hostname from address (host:port -> host)
func extractHostname(address string) string {
	if idx := strings.LastIndex(address, ":"); idx != -1 {
		return address[:idx]
	}
	return address
}
