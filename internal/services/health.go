package services

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/shopstream/recommender/internal/search"
	"github.com/shopstream/recommender/internal/store"
)

// HealthService probes the external dependencies and reports the active
// snapshot. Postgres is critical only when it backs the interaction log;
// Solr and Redis are non-critical because fusion degrades around them.
type HealthService struct {
	logger *logrus.Logger
	db     *store.Database
	solr   *search.Client
	engine *Engine
}

type HealthStatus struct {
	Status      string                 `json:"status"`
	Timestamp   time.Time              `json:"timestamp"`
	Services    map[string]string      `json:"services"`
	Critical    []string               `json:"critical_failures,omitempty"`
	NonCritical []string               `json:"non_critical_failures,omitempty"`
	Details     map[string]interface{} `json:"details,omitempty"`
}

func NewHealthService(logger *logrus.Logger, db *store.Database, solr *search.Client, engine *Engine) *HealthService {
	return &HealthService{
		logger: logger,
		db:     db,
		solr:   solr,
		engine: engine,
	}
}

func (s *HealthService) CheckHealth(ctx context.Context) *HealthStatus {
	status := &HealthStatus{
		Timestamp: time.Now(),
		Services:  make(map[string]string),
		Details:   make(map[string]interface{}),
	}

	critical := map[string]func(context.Context) error{}
	if s.db != nil && s.db.PG != nil {
		critical["postgresql"] = s.checkPostgreSQL
	}

	nonCritical := map[string]func(context.Context) error{
		"solr": s.checkSolr,
	}
	if s.db != nil && s.db.Redis != nil {
		nonCritical["redis"] = s.checkRedis
	}

	allCriticalHealthy := true
	for name, check := range critical {
		if err := check(ctx); err != nil {
			status.Services[name] = "unhealthy"
			status.Critical = append(status.Critical, name)
			allCriticalHealthy = false
			s.logger.WithError(err).Errorf("Critical service %s is unhealthy", name)
		} else {
			status.Services[name] = "healthy"
		}
	}

	for name, check := range nonCritical {
		if err := check(ctx); err != nil {
			status.Services[name] = "unhealthy"
			status.NonCritical = append(status.NonCritical, name)
			s.logger.WithError(err).Warnf("Non-critical service %s is unhealthy", name)
		} else {
			status.Services[name] = "healthy"
		}
	}

	stats := s.engine.Stats()
	status.Details["snapshot"] = map[string]interface{}{
		"users":        stats.Users,
		"items":        stats.Items,
		"interactions": stats.Interactions,
		"built_at":     stats.BuiltAt,
		"epoch":        s.engine.Epoch(),
	}

	switch {
	case !allCriticalHealthy:
		status.Status = "unhealthy"
	case len(status.NonCritical) > 0:
		status.Status = "degraded"
	default:
		status.Status = "healthy"
	}

	return status
}

func (s *HealthService) checkPostgreSQL(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return s.db.PG.Ping(ctx)
}

func (s *HealthService) checkRedis(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return s.db.Redis.Ping(ctx).Err()
}

func (s *HealthService) checkSolr(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return s.solr.Ping(ctx)
}
