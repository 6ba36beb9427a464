package services

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/shopstream/recommender/internal/cf"
	"github.com/shopstream/recommender/internal/store"
	"github.com/shopstream/recommender/pkg/models"
)

// Engine owns the collaborative-filtering snapshot lifecycle. The active
// model lives behind an atomic pointer: readers always see a complete,
// immutable snapshot, and a rebuild publishes a fresh one in a single swap.
// Concurrent rebuild requests collapse into one build.
type Engine struct {
	store   store.InteractionStore
	logger  *logrus.Logger
	metrics *Metrics

	model    atomic.Pointer[cf.Model]
	epoch    atomic.Int64
	rebuilds singleflight.Group
}

func NewEngine(st store.InteractionStore, logger *logrus.Logger, metrics *Metrics) *Engine {
	return &Engine{
		store:   st,
		logger:  logger,
		metrics: metrics,
	}
}

// Rebuild loads the full interaction log and builds a new snapshot. The
// matrix and similarity are always recomputed from scratch; there is no
// incremental update path.
func (e *Engine) Rebuild(ctx context.Context) (*cf.Model, error) {
	model, err, _ := e.rebuilds.Do("rebuild", func() (interface{}, error) {
		start := time.Now()

		events, err := e.store.ListInteractions(ctx)
		if err != nil {
			e.metrics.CountUpstreamFailure("interaction_store")
			return nil, fmt.Errorf("failed to load interactions: %w", err)
		}

		model, err := cf.NewModel(events)
		if err != nil {
			return nil, fmt.Errorf("failed to build model: %w", err)
		}

		e.model.Store(model)
		epoch := e.epoch.Add(1)

		stats := model.Stats()
		if e.metrics != nil {
			e.metrics.RebuildDuration.Observe(time.Since(start).Seconds())
			e.metrics.SnapshotUsers.Set(float64(stats.Users))
			e.metrics.SnapshotItems.Set(float64(stats.Items))
			e.metrics.SnapshotNNZ.Set(float64(stats.Interactions))
			e.metrics.SnapshotBuiltAt.Set(float64(stats.BuiltAt.Unix()))
		}

		e.logger.WithFields(logrus.Fields{
			"users":        stats.Users,
			"items":        stats.Items,
			"interactions": stats.Interactions,
			"epoch":        epoch,
			"duration":     time.Since(start),
		}).Info("Snapshot rebuilt")

		return model, nil
	})
	if err != nil {
		return nil, err
	}
	return model.(*cf.Model), nil
}

// Start runs periodic rebuilds until the context is cancelled. A zero
// interval disables the ticker.
func (e *Engine) Start(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := e.Rebuild(ctx); err != nil {
					e.logger.WithError(err).Error("Periodic snapshot rebuild failed")
				}
			}
		}
	}()
}

// Model returns the active snapshot, nil before the first successful build.
func (e *Engine) Model() *cf.Model {
	return e.model.Load()
}

// Epoch returns a counter bumped on every snapshot swap. Cache keys fold it
// in so stale entries die with their snapshot.
func (e *Engine) Epoch() int64 {
	return e.epoch.Load()
}

// Stats reports the active snapshot, zero-valued when none is built yet.
func (e *Engine) Stats() cf.Stats {
	if m := e.model.Load(); m != nil {
		return m.Stats()
	}
	return cf.Stats{}
}

// RecommendForUser ranks items for a user against the active snapshot.
// Without a snapshot, or for an unknown user, the result is empty.
func (e *Engine) RecommendForUser(userID string, k int) []models.ScoredCandidate {
	m := e.model.Load()
	if m == nil {
		return nil
	}
	return m.RecommendForUser(userID, k)
}

// SimilarItems ranks collaborative neighbors of a product against the active
// snapshot. Without a snapshot, or for an unknown product, the result is
// empty.
func (e *Engine) SimilarItems(productID string, k int) []models.ScoredCandidate {
	m := e.model.Load()
	if m == nil {
		return nil
	}
	return m.SimilarItems(productID, k)
}
