package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/pprof"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	_ "github.com/lostfound/found-api/docs" // Swagger docs
	"github.com/lostfound/found-api/internal/auth"
	"github.com/lostfound/found-api/internal/blob"
	"github.com/lostfound/found-api/internal/config"
	"github.com/lostfound/found-api/internal/logging"
	"github.com/lostfound/found-api/internal/metrics"
	"github.com/lostfound/found-api/internal/middleware"
	"github.com/lostfound/found-api/internal/routes"
	"github.com/lostfound/found-api/internal/services"
	"github.com/lostfound/found-api/internal/store"
	"github.com/lostfound/found-api/internal/store/dynamo"
	"github.com/lostfound/found-api/internal/store/memory"
	"github.com/lostfound/found-api/internal/store/mongo"
	apperrors "github.com/lostfound/found-api/pkg/errors"
)

// @title Found API
// @version 1.0
// @description Lost and found service: accounts, found-item postings and profile management

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:8000
// @BasePath /api/v1

// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger := logging.New(cfg)

	if cfg.JWT.SecretFromSecrets || cfg.Redis.PasswordFromSecrets {
		if err := config.ResolveSecrets(cfg, config.NewSecretsManagerFetcher(&cfg.AWS, logger)); err != nil {
			logger.WithError(err).Fatal("Failed to resolve secrets")
		}
	}

	// Initialize metrics
	if err := metrics.Init(); err != nil {
		logger.WithError(err).Fatal("Failed to initialize metrics")
	}

	// Initialize tracing
	tracingShutdown, err := middleware.InitTracing(cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to setup tracing")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracingShutdown(shutdownCtx); err != nil {
			logger.WithError(err).Error("Failed to shutdown tracing")
		}
	}()

	// Set global text map propagator for distributed tracing
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	ctx := context.Background()

	users, items, closeStore, err := openStores(ctx, cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize document store")
	}
	defer closeStore()

	// Auth primitives and services
	tokens := auth.NewTokenIssuer(cfg.JWT.Secret, cfg.JWT.TTL, cfg.JWT.Issuer, cfg.JWT.Audience)
	resolver := services.NewIdentityResolver(users, tokens, logger)
	authorizer := services.NewAuthorizer(users)

	// Initialize middleware manager
	middlewareManager, err := middleware.NewManager(cfg, resolver, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize middleware manager")
	}
	defer func() {
		if err := middlewareManager.Close(); err != nil {
			logger.WithError(err).Error("Failed to close middleware resources")
		}
	}()

	blobStore, err := openBlobStore(ctx, cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize blob store")
	}

	readiness := []routes.ReadinessCheck{{Name: "store", Check: users.Ping}}
	if middlewareManager.RedisClient != nil {
		readiness = append(readiness, routes.ReadinessCheck{
			Name:  "redis",
			Check: middleware.RedisHealthCheck(middlewareManager.RedisClient, logger),
		})
	}

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Found API",
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		BodyLimit:    cfg.Server.BodyLimit,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var fiberErr *fiber.Error
			if errors.As(err, &fiberErr) {
				code := apperrors.CodeBadRequest
				switch fiberErr.Code {
				case fiber.StatusNotFound:
					code = apperrors.CodeNotFound
				case fiber.StatusInternalServerError:
					code = apperrors.CodeInternalError
				}
				return c.Status(fiberErr.Code).JSON(apperrors.NewAppError(code, fiberErr.Message, nil).ToErrorResponse(middleware.RequestID(c)))
			}

			logger.WithError(err).WithFields(logrus.Fields{
				"method": c.Method(),
				"path":   c.Path(),
			}).Error("Request error")

			return middleware.WriteError(c, err)
		},
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(helmet.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORS.AllowOrigins,
		AllowMethods:     "GET,POST,HEAD,PUT,DELETE,PATCH,OPTIONS",
		AllowHeaders:     "Origin,Content-Type,Accept,Authorization,X-Requested-With,Idempotency-Key",
		AllowCredentials: cfg.CORS.AllowOrigins != "*",
		MaxAge:           86400,
	}))
	// OTEL use
	app.Use(otelfiber.Middleware())

	// pprof for memory profiling (accessible at /debug/pprof/)
	if !cfg.IsProduction() {
		app.Use(pprof.New())
	}

	app.Use(middlewareManager.ErrorLogger.Handle())

	// Setup routes
	routes.Setup(app, routes.Dependencies{
		Config:     cfg,
		Logger:     logger,
		Middleware: middlewareManager,
		Auth:       services.NewAuthService(users, auth.NewPasswordHasher(cfg.Auth.BcryptCost), tokens, resolver, logger),
		Items:      services.NewItemService(items, authorizer, logger),
		Profile:    services.NewProfileService(users, items, authorizer, logger),
		Blob:       blobStore,
		Readiness:  readiness,
	})

	// Graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		logger.Info("Gracefully shutting down...")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			logger.WithError(err).Error("Server shutdown failed")
		}
	}()

	// Start server
	logger.WithFields(logrus.Fields{
		"port":    cfg.Server.Port,
		"backend": cfg.Store.Backend,
	}).Info("Starting Found API server")
	if err := app.Listen(":" + cfg.Server.Port); err != nil {
		logger.WithError(err).Error("Server stopped")
	}
}

// openStores builds the configured document store backend, wrapped with metrics.
func openStores(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*store.InstrumentedUserStore, *store.InstrumentedItemStore, func(), error) {
	var (
		users   store.UserStore
		items   store.ItemStore
		closeFn = func() {}
	)

	switch cfg.Store.Backend {
	case config.BackendDynamoDB:
		client, err := dynamo.NewClient(ctx, cfg, logger)
		if err != nil {
			return nil, nil, nil, err
		}
		users = dynamo.NewUserStore(client, cfg.DynamoDB.UsersTableName)
		items = dynamo.NewItemStore(client, cfg.DynamoDB.ItemsTableName)

	case config.BackendMongoDB:
		db, err := mongo.Connect(ctx, cfg.Mongo.URI, cfg.Mongo.Database, logger)
		if err != nil {
			return nil, nil, nil, err
		}
		users = mongo.NewUserStore(db)
		items = mongo.NewItemStore(db)
		closeFn = func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := db.Client().Disconnect(shutdownCtx); err != nil {
				logger.WithError(err).Error("Failed to disconnect from MongoDB")
			}
		}

	case config.BackendMemory:
		logger.Warn("Using in-memory store; data is lost on restart")
		users = memory.NewUserStore()
		items = memory.NewItemStore()

	default:
		return nil, nil, nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}

	return store.NewInstrumentedUserStore(users), store.NewInstrumentedItemStore(items), closeFn, nil
}

// openBlobStore returns nil when no bucket is configured.
func openBlobStore(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*blob.Store, error) {
	if cfg.S3.Bucket == "" {
		logger.Info("S3 bucket not configured, uploads are disabled")
		return nil, nil
	}

	client, err := blob.NewS3Client(ctx, &cfg.S3, logger)
	if err != nil {
		return nil, err
	}
	return blob.NewStore(client, cfg.S3.Bucket, blob.PublicBaseURL(&cfg.S3), logger), nil
}
