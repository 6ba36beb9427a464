package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopstream/recommender/pkg/models"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	return logger
}

func TestPostgresInteractionStore_ListInteractions(t *testing.T) {
	mockDB, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockDB.Close()

	occurredAt := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	rows := pgxmock.NewRows([]string{"user_id", "product_id", "interaction_type", "occurred_at", "session_id"}).
		AddRow("USER00001", "PROD00001", models.InteractionView, occurredAt, "SESSION00001").
		AddRow("USER00001", "PROD00002", models.InteractionPurchase, occurredAt, "SESSION00001")

	mockDB.ExpectQuery("SELECT").WillReturnRows(rows)

	s := NewPostgresInteractionStore(mockDB, testLogger())
	events, err := s.ListInteractions(context.Background())

	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "USER00001", events[0].UserID)
	assert.Equal(t, models.InteractionPurchase, events[1].InteractionType)
	assert.Equal(t, occurredAt, events[0].Timestamp)

	require.NoError(t, mockDB.ExpectationsWereMet())
}

func TestPostgresInteractionStore_AppendInteraction(t *testing.T) {
	mockDB, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockDB.Close()

	ev := models.Interaction{
		UserID:          "USER00002",
		ProductID:       "PROD00003",
		InteractionType: models.InteractionClick,
		Timestamp:       time.Now().UTC(),
		SessionID:       "SESSION00042",
	}

	mockDB.ExpectExec("INSERT INTO interactions").
		WithArgs(ev.UserID, ev.ProductID, "click", ev.Timestamp, ev.SessionID).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	s := NewPostgresInteractionStore(mockDB, testLogger())
	require.NoError(t, s.AppendInteraction(context.Background(), ev))
	require.NoError(t, mockDB.ExpectationsWereMet())
}

func TestFileInteractionStore_ListInteractions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "interactions.json")
	data := `[
		{"user_id":"USER00001","product_id":"PROD00001","interaction_type":"view","timestamp":"2026-05-01T12:00:00Z","session_id":"SESSION00001"},
		{"user_id":"USER00002","product_id":"PROD00001","interaction_type":"purchase","timestamp":"2026-05-02T08:30:00Z","session_id":"SESSION00002"}
	]`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	s, err := NewFileInteractionStore(path, testLogger())
	require.NoError(t, err)

	events, err := s.ListInteractions(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, models.InteractionView, events[0].InteractionType)
	assert.Equal(t, "PROD00001", events[1].ProductID)
}

func TestFileInteractionStore_MalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "interactions.json")
	// Missing required product_id on the second record.
	data := `[
		{"user_id":"USER00001","product_id":"PROD00001","interaction_type":"view","timestamp":"2026-05-01T12:00:00Z","session_id":"S1"},
		{"user_id":"USER00002","interaction_type":"view","timestamp":"2026-05-01T12:00:00Z","session_id":"S2"}
	]`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	s, err := NewFileInteractionStore(path, testLogger())
	require.NoError(t, err)

	_, err = s.ListInteractions(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "malformed")
}

func TestFileInteractionStore_MissingFile(t *testing.T) {
	s, err := NewFileInteractionStore(filepath.Join(t.TempDir(), "absent.json"), testLogger())
	require.NoError(t, err)

	_, err = s.ListInteractions(context.Background())
	require.Error(t, err)
}
