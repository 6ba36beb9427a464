package services

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/shopstream/recommender/internal/config"
	"github.com/shopstream/recommender/internal/search"
	"github.com/shopstream/recommender/internal/store"
)

type Services struct {
	Health  *HealthService
	Engine  *Engine
	Content *ContentRecommender
	Fusion  *FusionService
	Metrics *Metrics
}

func New(cfg *config.Config, logger *logrus.Logger, db *store.Database) (*Services, error) {
	metrics := NewMetrics(logger)

	interactions, err := interactionStore(cfg, logger, db)
	if err != nil {
		return nil, err
	}

	solr := search.NewClient(cfg.Solr.URL, cfg.Solr.Timeout, logger)
	engine := NewEngine(interactions, logger, metrics)
	content := NewContentRecommender(solr, logger)
	fusion := NewFusionService(content, engine, db.Redis, &cfg.Recommendation, logger, metrics)
	health := NewHealthService(logger, db, solr, engine)

	return &Services{
		Health:  health,
		Engine:  engine,
		Content: content,
		Fusion:  fusion,
		Metrics: metrics,
	}, nil
}

func interactionStore(cfg *config.Config, logger *logrus.Logger, db *store.Database) (store.InteractionStore, error) {
	switch cfg.Interactions.Source {
	case config.SourcePostgres:
		return store.NewPostgresInteractionStore(db.PG, logger), nil
	case config.SourceFile:
		return store.NewFileInteractionStore(cfg.Interactions.Path, logger)
	default:
		return nil, fmt.Errorf("unknown interactions source %q", cfg.Interactions.Source)
	}
}
