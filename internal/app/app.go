package app

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/shopstream/recommender/internal/config"
	"github.com/shopstream/recommender/internal/handlers"
	"github.com/shopstream/recommender/internal/messaging"
	"github.com/shopstream/recommender/internal/middleware"
	"github.com/shopstream/recommender/internal/services"
	"github.com/shopstream/recommender/internal/store"
)

type App struct {
	config   *config.Config
	logger   *logrus.Logger
	db       *store.Database
	services *services.Services
	handlers *handlers.Handlers
	router   *gin.Engine
	bus      *messaging.MessageBus

	cancelBackground context.CancelFunc
}

func New(cfg *config.Config) (*App, error) {
	app := &App{
		config: cfg,
		logger: setupLogger(cfg),
	}

	db, err := store.New(cfg, app.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	svcs, err := services.New(cfg, app.logger, db)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}
	app.services = svcs

	app.handlers = handlers.New(app.logger, svcs)
	app.setupRouter()

	return app, nil
}

// Start builds the first snapshot and launches the background workers:
// periodic rebuilds and, when configured, the Kafka interaction consumer. A
// failed initial build is not fatal; the service comes up cold and serves
// content-only results until a rebuild succeeds.
func (a *App) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	a.cancelBackground = cancel

	if _, err := a.services.Engine.Rebuild(ctx); err != nil {
		a.logger.WithError(err).Warn("Initial snapshot build failed, serving content-only until rebuild")
	}
	a.services.Engine.Start(ctx, a.config.Recommendation.RebuildInterval)

	if a.config.Kafka.Enabled {
		appender, ok := interactionAppender(a.config, a.logger, a.db)
		if !ok {
			a.logger.Warn("Kafka enabled but interaction source is not writable, consumer disabled")
			return nil
		}

		bus, err := messaging.NewMessageBus(a.config, appender, a.logger)
		if err != nil {
			return fmt.Errorf("failed to initialize message bus: %w", err)
		}
		a.bus = bus

		go func() {
			if err := bus.Consume(ctx); err != nil && ctx.Err() == nil {
				a.logger.WithError(err).Error("Kafka consumer stopped")
			}
		}()
	}

	return nil
}

func interactionAppender(cfg *config.Config, logger *logrus.Logger, db *store.Database) (store.InteractionAppender, bool) {
	if cfg.Interactions.Source != config.SourcePostgres {
		return nil, false
	}
	return store.NewPostgresInteractionStore(db.PG, logger), true
}

func (a *App) Router() *gin.Engine {
	return a.router
}

func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("Shutting down application...")

	if a.cancelBackground != nil {
		a.cancelBackground()
	}

	if a.bus != nil {
		if err := a.bus.Close(); err != nil {
			a.logger.WithError(err).Error("Error closing message bus")
		}
	}

	if err := a.db.Close(); err != nil {
		a.logger.WithError(err).Error("Error closing database connections")
		return err
	}

	return nil
}

func setupLogger(cfg *config.Config) *logrus.Logger {
	logger := logrus.New()

	level, err := logrus.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.Logging.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	return logger
}

func (a *App) setupRouter() {
	if a.config.Server.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(middleware.Logger(a.logger))
	router.Use(middleware.Recovery(a.logger))
	router.Use(middleware.CORS(a.config))

	router.GET("/health", a.handlers.Health.Check)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api/v1")
	{
		recommendations := api.Group("/recommendations")
		{
			recommendations.GET("/similar/:productId", a.handlers.Recommendation.SimilarProducts)
			recommendations.GET("/user/:userId", a.handlers.Recommendation.ForUser)
			recommendations.GET("/trending", a.handlers.Recommendation.Trending)
		}

		admin := api.Group("/admin")
		{
			admin.POST("/rebuild", a.handlers.Admin.Rebuild)
		}
	}

	a.router = router
}
