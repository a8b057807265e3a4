package config

import (
	"fmt"
	"strconv"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	BackendDynamoDB = "dynamodb"
	BackendMongoDB  = "mongodb"
	BackendMemory   = "memory"

	defaultJWTSecret = "change-me-in-production"
)

type Config struct {
	Server        ServerConfig        `envconfig:"SERVER"`
	Auth          AuthConfig          `envconfig:"AUTH"`
	JWT           JWTConfig           `envconfig:"JWT"`
	Store         StoreConfig         `envconfig:"STORE"`
	DynamoDB      DynamoDBConfig      `envconfig:"DYNAMODB"`
	Mongo         MongoConfig         `envconfig:"MONGO"`
	S3            S3Config            `envconfig:"S3"`
	Redis         RedisConfig         `envconfig:"REDIS"`
	Observability ObservabilityConfig `envconfig:"OBSERVABILITY"`
	CORS          CORSConfig          `envconfig:"CORS"`
	Log           LogConfig           `envconfig:"LOG"`
	AWS           AWSConfig           `envconfig:"AWS"`
}

type AWSConfig struct {
	Region     string `envconfig:"REGION" default:"us-east-1"`
	Profile    string `envconfig:"PROFILE" default:""`
	SecretName string `envconfig:"SECRET_NAME" default:""`
}

type ServerConfig struct {
	Port         string        `envconfig:"PORT" default:"8000"`
	Environment  string        `envconfig:"ENVIRONMENT" default:"development"`
	ReadTimeout  time.Duration `envconfig:"READ_TIMEOUT" default:"30s"`
	WriteTimeout time.Duration `envconfig:"WRITE_TIMEOUT" default:"30s"`
	IdleTimeout  time.Duration `envconfig:"IDLE_TIMEOUT" default:"120s"`
	BodyLimit    int           `envconfig:"BODY_LIMIT" default:"5242880"` // bytes, bounds image uploads
}

type AuthConfig struct {
	BcryptCost int `envconfig:"BCRYPT_COST" default:"10"`
}

type JWTConfig struct {
	Secret            string        `envconfig:"SECRET" default:"change-me-in-production"`
	TTL               time.Duration `envconfig:"TTL" default:"168h"`
	Issuer            string        `envconfig:"ISSUER" default:"found-api"`
	Audience          string        `envconfig:"AUDIENCE" required:"false"`
	SecretFromSecrets bool          `envconfig:"SECRET_FROM_SECRETS" default:"false"`
	SecretName        string        `envconfig:"SECRET_NAME" default:""` // falls back to AWS_SECRET_NAME
}

type StoreConfig struct {
	Backend string `envconfig:"BACKEND" default:"dynamodb"`
}

type DynamoDBConfig struct {
	UsersTableName string `envconfig:"USERS_TABLE_NAME" default:"found-users"`
	ItemsTableName string `envconfig:"ITEMS_TABLE_NAME" default:"found-items"`
	Region         string `envconfig:"REGION" default:"us-east-1"`
	Endpoint       string `envconfig:"ENDPOINT" default:""` // DynamoDB Local
}

type MongoConfig struct {
	URI      string `envconfig:"URI" default:"mongodb://localhost:27017"`
	Database string `envconfig:"DATABASE" default:"lostfound"`
}

type S3Config struct {
	Bucket          string `envconfig:"BUCKET" default:""` // empty disables uploads
	Region          string `envconfig:"REGION" default:"us-east-1"`
	Endpoint        string `envconfig:"ENDPOINT" default:""`
	PublicBaseURL   string `envconfig:"PUBLIC_BASE_URL" default:""`
	AccessKeyID     string `envconfig:"ACCESS_KEY_ID" default:""`
	SecretAccessKey string `envconfig:"SECRET_ACCESS_KEY" default:""`
	UsePathStyle    bool   `envconfig:"USE_PATH_STYLE" default:"false"`
}

type RedisConfig struct {
	Enabled             bool          `envconfig:"ENABLED" default:"false"`
	Address             string        `envconfig:"ADDRESS" default:"localhost:6379"`
	Password            string        `envconfig:"PASSWORD" default:""`
	Database            int           `envconfig:"DATABASE" default:"0"`
	MaxRetries          int           `envconfig:"MAX_RETRIES" default:"3"`
	PoolSize            int           `envconfig:"POOL_SIZE" default:"50"`
	PoolTimeout         time.Duration `envconfig:"POOL_TIMEOUT" default:"4s"`
	TLSEnabled          bool          `envconfig:"TLS_ENABLED" default:"false"`
	PasswordFromSecrets bool          `envconfig:"PASSWORD_FROM_SECRETS" default:"false"`
	ClusterMode         bool          `envconfig:"CLUSTER_MODE" default:"false"`
	IdempotencyTTL      time.Duration `envconfig:"IDEMPOTENCY_TTL" default:"5m"`
}

type ObservabilityConfig struct {
	MetricsPath    string  `envconfig:"METRICS_PATH" default:"/metrics"`
	OTLPEndpoint   string  `envconfig:"OTLP_ENDPOINT" default:"http://localhost:4318"`
	TracingEnabled bool    `envconfig:"TRACING_ENABLED" default:"false"`
	SampleRate     float64 `envconfig:"SAMPLE_RATE" default:"0.1"`
}

type CORSConfig struct {
	AllowOrigins string `envconfig:"ALLOW_ORIGINS" default:"*"`
}

type LogConfig struct {
	Level  string `envconfig:"LEVEL" default:"info"`
	Format string `envconfig:"FORMAT" default:"json"`
}

// IsProduction reports whether the service runs with production settings.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

func Load() (*Config, error) {
	var cfg Config

	// Load from environment variables
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment config: %w", err)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func validateConfig(cfg *Config) error {
	// Validate port
	if port, err := strconv.Atoi(cfg.Server.Port); err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("invalid server port: %s", cfg.Server.Port)
	}

	// Validate sample rate
	if cfg.Observability.SampleRate < 0 || cfg.Observability.SampleRate > 1 {
		return fmt.Errorf("invalid tracing sample rate: %f", cfg.Observability.SampleRate)
	}

	switch cfg.Store.Backend {
	case BackendDynamoDB, BackendMongoDB, BackendMemory:
	default:
		return fmt.Errorf("unknown store backend: %q", cfg.Store.Backend)
	}

	if cfg.JWT.TTL <= 0 {
		return fmt.Errorf("JWT TTL must be positive: %s", cfg.JWT.TTL)
	}

	// The secret is fetched later from Secrets Manager in that case
	if cfg.IsProduction() && !cfg.JWT.SecretFromSecrets && cfg.JWT.Secret == defaultJWTSecret {
		return fmt.Errorf("JWT_SECRET must be set in production")
	}

	if cfg.JWT.SecretFromSecrets && cfg.JWT.SecretName == "" && cfg.AWS.SecretName == "" {
		return fmt.Errorf("JWT_SECRET_FROM_SECRETS requires JWT_SECRET_NAME or AWS_SECRET_NAME")
	}

	if cfg.Store.Backend == BackendMongoDB && cfg.Mongo.URI == "" {
		return fmt.Errorf("MONGO_URI is required for the mongodb backend")
	}

	return nil
}
