package store

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopstream/recommender/internal/config"
)

func TestNew_UnreachableRedisDegrades(t *testing.T) {
	cfg := &config.Config{
		Interactions: config.InteractionsConfig{
			Source: config.SourceFile,
			Path:   "interactions.json",
		},
		Redis: config.RedisConfig{
			URL:        "127.0.0.1:1",
			MaxRetries: -1,
			Timeout:    100 * time.Millisecond,
		},
	}

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	db, err := New(cfg, logger)
	require.NoError(t, err)
	require.NotNil(t, db)

	// No cache and no Postgres, but the service still comes up.
	assert.Nil(t, db.Redis)
	assert.Nil(t, db.PG)
	assert.NoError(t, db.Close())
}
