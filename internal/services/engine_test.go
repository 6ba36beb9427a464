package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopstream/recommender/pkg/models"
)

type stubInteractionStore struct {
	events []models.Interaction
	err    error
	calls  int
}

func (s *stubInteractionStore) ListInteractions(ctx context.Context) ([]models.Interaction, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.events, nil
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func sampleEvents() []models.Interaction {
	now := time.Now()
	return []models.Interaction{
		{UserID: "u1", ProductID: "p1", InteractionType: models.InteractionPurchase, Timestamp: now},
		{UserID: "u1", ProductID: "p2", InteractionType: models.InteractionView, Timestamp: now},
		{UserID: "u2", ProductID: "p1", InteractionType: models.InteractionClick, Timestamp: now},
	}
}

func TestEngine_RebuildPublishesSnapshot(t *testing.T) {
	st := &stubInteractionStore{events: sampleEvents()}
	engine := NewEngine(st, quietLogger(), nil)

	assert.Nil(t, engine.Model())
	assert.EqualValues(t, 0, engine.Epoch())

	model, err := engine.Rebuild(context.Background())
	require.NoError(t, err)
	require.NotNil(t, model)
	assert.Same(t, model, engine.Model())
	assert.EqualValues(t, 1, engine.Epoch())

	stats := engine.Stats()
	assert.Equal(t, 2, stats.Users)
	assert.Equal(t, 2, stats.Items)
	assert.Equal(t, 3, stats.Interactions)
}

func TestEngine_RebuildSwapsAtomically(t *testing.T) {
	st := &stubInteractionStore{events: sampleEvents()}
	engine := NewEngine(st, quietLogger(), nil)

	first, err := engine.Rebuild(context.Background())
	require.NoError(t, err)

	st.events = append(st.events, models.Interaction{
		UserID: "u3", ProductID: "p3", InteractionType: models.InteractionView, Timestamp: time.Now(),
	})
	second, err := engine.Rebuild(context.Background())
	require.NoError(t, err)

	assert.NotSame(t, first, second)
	assert.Same(t, second, engine.Model())
	assert.EqualValues(t, 2, engine.Epoch())
	assert.Equal(t, 3, engine.Stats().Users)
}

func TestEngine_RebuildKeepsOldSnapshotOnError(t *testing.T) {
	st := &stubInteractionStore{events: sampleEvents()}
	engine := NewEngine(st, quietLogger(), nil)

	model, err := engine.Rebuild(context.Background())
	require.NoError(t, err)

	st.err = errors.New("connection refused")
	_, err = engine.Rebuild(context.Background())
	require.Error(t, err)

	// The failed rebuild must not disturb serving.
	assert.Same(t, model, engine.Model())
	assert.EqualValues(t, 1, engine.Epoch())
}

func TestEngine_ServesEmptyWithoutSnapshot(t *testing.T) {
	engine := NewEngine(&stubInteractionStore{}, quietLogger(), nil)

	assert.Empty(t, engine.RecommendForUser("u1", 5))
	assert.Empty(t, engine.SimilarItems("p1", 5))
	assert.Equal(t, 0, engine.Stats().Users)
}

func TestEngine_ServesRecommendationsAfterRebuild(t *testing.T) {
	st := &stubInteractionStore{events: sampleEvents()}
	engine := NewEngine(st, quietLogger(), nil)
	_, err := engine.Rebuild(context.Background())
	require.NoError(t, err)

	recs := engine.RecommendForUser("u2", 5)
	require.NotEmpty(t, recs)
	assert.Equal(t, "p2", recs[0].ProductID)

	assert.Empty(t, engine.RecommendForUser("stranger", 5))
	assert.Empty(t, engine.SimilarItems("unknown-product", 5))
}
