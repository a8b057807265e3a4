package config

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, BackendDynamoDB, cfg.Store.Backend)
	assert.Equal(t, 168*time.Hour, cfg.JWT.TTL)
	assert.Equal(t, "found-users", cfg.DynamoDB.UsersTableName)
	assert.Equal(t, "found-items", cfg.DynamoDB.ItemsTableName)
	assert.False(t, cfg.Redis.Enabled)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("STORE_BACKEND", "mongodb")
	t.Setenv("MONGO_DATABASE", "found_test")
	t.Setenv("JWT_TTL", "1h")
	t.Setenv("S3_BUCKET", "photos")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, BackendMongoDB, cfg.Store.Backend)
	assert.Equal(t, "found_test", cfg.Mongo.Database)
	assert.Equal(t, time.Hour, cfg.JWT.TTL)
	assert.Equal(t, "photos", cfg.S3.Bucket)
}

func TestValidateConfig(t *testing.T) {
	base := func() *Config {
		return &Config{
			Server: ServerConfig{Port: "8000", Environment: "development"},
			Store:  StoreConfig{Backend: BackendMemory},
			JWT:    JWTConfig{Secret: defaultJWTSecret, TTL: time.Hour},
			Mongo:  MongoConfig{URI: "mongodb://localhost"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(*Config) {}, false},
		{"bad port", func(c *Config) { c.Server.Port = "99999" }, true},
		{"bad sample rate", func(c *Config) { c.Observability.SampleRate = 2 }, true},
		{"unknown backend", func(c *Config) { c.Store.Backend = "postgres" }, true},
		{"zero ttl", func(c *Config) { c.JWT.TTL = 0 }, true},
		{"default secret in production", func(c *Config) { c.Server.Environment = "production" }, true},
		{"secret from secrets in production", func(c *Config) {
			c.Server.Environment = "production"
			c.JWT.SecretFromSecrets = true
			c.AWS.SecretName = "found/jwt"
		}, false},
		{"secrets without name", func(c *Config) { c.JWT.SecretFromSecrets = true }, true},
		{"mongo without uri", func(c *Config) {
			c.Store.Backend = BackendMongoDB
			c.Mongo.URI = ""
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := validateConfig(cfg)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestResolveSecrets(t *testing.T) {
	cfg := &Config{
		JWT:   JWTConfig{SecretFromSecrets: true, SecretName: "found/jwt"},
		Redis: RedisConfig{Enabled: true, PasswordFromSecrets: true},
		AWS:   AWSConfig{SecretName: "found/redis"},
	}
	secrets := map[string]string{"found/jwt": "s3cret", "found/redis": "hunter2"}

	err := ResolveSecrets(cfg, func(name string) (string, error) {
		v, ok := secrets[name]
		if !ok {
			return "", errors.New("missing")
		}
		return v, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "s3cret", cfg.JWT.Secret)
	assert.Equal(t, "hunter2", cfg.Redis.Password)
}

func TestResolveSecrets_Failure(t *testing.T) {
	cfg := &Config{JWT: JWTConfig{SecretFromSecrets: true, SecretName: "found/jwt"}}
	err := ResolveSecrets(cfg, func(string) (string, error) { return "", errors.New("denied") })
	assert.Error(t, err)

	cfg = &Config{JWT: JWTConfig{Secret: "plain"}}
	require.NoError(t, ResolveSecrets(cfg, func(string) (string, error) {
		t.Fatal("fetch must not be called")
		return "", nil
	}))
	assert.Equal(t, "plain", cfg.JWT.Secret)
}
