package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/shopstream/recommender/internal/config"
	"github.com/shopstream/recommender/pkg/models"
)

// ContentSource is the content-similarity side of fusion. Calls may fail;
// fusion degrades around them.
type ContentSource interface {
	SimilarProducts(ctx context.Context, productID string, k int) ([]models.ScoredCandidate, error)
	GetProduct(ctx context.Context, productID string) (*models.Product, error)
}

// CollaborativeSource is the interaction-history side of fusion. Unknown
// entities and an absent snapshot both yield empty candidate lists.
type CollaborativeSource interface {
	SimilarItems(productID string, k int) []models.ScoredCandidate
	RecommendForUser(userID string, k int) []models.ScoredCandidate
	Epoch() int64
}

// resultCache is the cache-aside seam for fused lists. Both methods are
// best-effort; a miss and a cache outage look the same to callers.
type resultCache interface {
	get(ctx context.Context, key string) ([]byte, bool)
	set(ctx context.Context, key string, data []byte, ttl time.Duration)
}

// redisCache backs resultCache with Redis. Failures are logged at debug and
// swallowed; the cache never blocks serving.
type redisCache struct {
	client *redis.Client
	logger *logrus.Logger
}

func (c *redisCache) get(ctx context.Context, key string) ([]byte, bool) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	return data, true
}

func (c *redisCache) set(ctx context.Context, key string, data []byte, ttl time.Duration) {
	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		c.logger.WithError(err).Debug("Failed to cache recommendations")
	}
}

// FusionService merges content-similarity and collaborative candidates, plus
// an optional personalization boost, into one deduplicated ranked list.
type FusionService struct {
	content ContentSource
	collab  CollaborativeSource
	cache   resultCache
	cfg     *config.RecommendationConfig
	logger  *logrus.Logger
	metrics *Metrics
}

func NewFusionService(
	content ContentSource,
	collab CollaborativeSource,
	redisClient *redis.Client,
	cfg *config.RecommendationConfig,
	logger *logrus.Logger,
	metrics *Metrics,
) *FusionService {
	f := &FusionService{
		content: content,
		collab:  collab,
		cfg:     cfg,
		logger:  logger,
		metrics: metrics,
	}
	if redisClient != nil {
		f.cache = &redisCache{client: redisClient, logger: logger}
	}
	return f
}

// scoreAccumulator sums per-product contributions while remembering the
// order products were first seen, which is the tie-break for equal scores.
type scoreAccumulator struct {
	order  []string
	scores map[string]float64
}

func newScoreAccumulator() *scoreAccumulator {
	return &scoreAccumulator{scores: make(map[string]float64)}
}

func (a *scoreAccumulator) add(productID string, delta float64) {
	if _, seen := a.scores[productID]; !seen {
		a.order = append(a.order, productID)
	}
	a.scores[productID] += delta
}

// ranked returns all accumulated products, descending by score, ties in
// first-insertion order.
func (a *scoreAccumulator) ranked() []models.FusedRecommendation {
	out := make([]models.FusedRecommendation, 0, len(a.order))
	for _, id := range a.order {
		out = append(out, models.FusedRecommendation{
			ProductID:     id,
			CombinedScore: a.scores[id],
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CombinedScore > out[j].CombinedScore
	})
	return out
}

// Fuse builds the hybrid list for a seed product. Each source contributes
// its relevance scaled by the configured weight; if a user is given, that
// user's collaborative recommendations add the personalization boost on top.
// A failing source is surfaced to metrics and logs but never aborts fusion:
// the remaining sources still produce a list.
func (f *FusionService) Fuse(ctx context.Context, productID, userID string, k int) ([]models.FusedRecommendation, error) {
	start := time.Now()
	defer f.metrics.ObserveFusion(start)

	cacheKey := fmt.Sprintf("fusion:%d:%s:%s:%d", f.collab.Epoch(), productID, userID, k)
	if cached, ok := f.cachedRecommendations(ctx, cacheKey); ok {
		return cached, nil
	}

	pool := k * f.cfg.PoolMultiplier
	if pool < k {
		pool = k
	}

	var (
		wg          sync.WaitGroup
		contentRecs []models.ScoredCandidate
		contentErr  error
		collabRecs  []models.ScoredCandidate
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		contentRecs, contentErr = f.content.SimilarProducts(ctx, productID, pool)
	}()
	go func() {
		defer wg.Done()
		collabRecs = f.collab.SimilarItems(productID, pool)
	}()
	wg.Wait()

	if contentErr != nil {
		f.metrics.CountUpstreamFailure("content")
		f.logger.WithError(contentErr).WithField("product_id", productID).
			Warn("Content source unavailable, fusing without it")
		contentRecs = nil
	}

	// Accumulation order is fixed (content, collaborative, personalization)
	// so tie-breaking does not depend on goroutine scheduling.
	acc := newScoreAccumulator()
	for _, rec := range contentRecs {
		acc.add(rec.ProductID, f.cfg.ContentWeight*rec.Score)
	}
	for _, rec := range collabRecs {
		acc.add(rec.ProductID, f.cfg.CollabWeight*rec.Score)
	}
	if userID != "" {
		for _, rec := range f.collab.RecommendForUser(userID, pool) {
			acc.add(rec.ProductID, f.cfg.UserBoost*rec.Score)
		}
	}

	ranked := acc.ranked()
	if len(ranked) > k {
		ranked = ranked[:k]
	}

	results := f.resolveDetails(ctx, ranked)
	f.storeRecommendations(ctx, cacheKey, results)
	return results, nil
}

// PersonalizedRecommendations ranks items purely from the user's
// collaborative history, resolved to full product records.
func (f *FusionService) PersonalizedRecommendations(ctx context.Context, userID string, k int) ([]models.FusedRecommendation, error) {
	cacheKey := fmt.Sprintf("user_recs:%d:%s:%d", f.collab.Epoch(), userID, k)
	if cached, ok := f.cachedRecommendations(ctx, cacheKey); ok {
		return cached, nil
	}

	recs := f.collab.RecommendForUser(userID, k)
	fused := make([]models.FusedRecommendation, 0, len(recs))
	for _, rec := range recs {
		fused = append(fused, models.FusedRecommendation{
			ProductID:     rec.ProductID,
			CombinedScore: rec.Score,
		})
	}

	results := f.resolveDetails(ctx, fused)
	f.storeRecommendations(ctx, cacheKey, results)
	return results, nil
}

// resolveDetails attaches full product records to ranked entries. Products
// that no longer resolve are dropped, so the result may be shorter than
// requested; lookup transport failures additionally hit the failure counter.
func (f *FusionService) resolveDetails(ctx context.Context, ranked []models.FusedRecommendation) []models.FusedRecommendation {
	results := make([]models.FusedRecommendation, 0, len(ranked))
	for _, rec := range ranked {
		product, err := f.content.GetProduct(ctx, rec.ProductID)
		if err != nil {
			f.metrics.CountUpstreamFailure("product_detail")
			f.logger.WithError(err).WithField("product_id", rec.ProductID).
				Warn("Product detail lookup failed, dropping candidate")
			continue
		}
		if product == nil {
			continue
		}
		rec.Product = product
		results = append(results, rec)
	}
	return results
}

func (f *FusionService) cachedRecommendations(ctx context.Context, key string) ([]models.FusedRecommendation, bool) {
	if f.cache == nil {
		return nil, false
	}
	data, ok := f.cache.get(ctx, key)
	if !ok {
		return nil, false
	}
	var recs []models.FusedRecommendation
	if err := json.Unmarshal(data, &recs); err != nil {
		return nil, false
	}
	return recs, true
}

func (f *FusionService) storeRecommendations(ctx context.Context, key string, recs []models.FusedRecommendation) {
	if f.cache == nil || f.cfg.CacheTTL <= 0 {
		return
	}
	data, err := json.Marshal(recs)
	if err != nil {
		return
	}
	f.cache.set(ctx, key, data, f.cfg.CacheTTL)
}
