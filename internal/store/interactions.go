package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sirupsen/logrus"
	"github.com/xeipuuv/gojsonschema"

	"github.com/shopstream/recommender/pkg/models"
)

// InteractionStore is the bulk-read contract the snapshot builder depends
// on: the full interaction log, no streaming.
type InteractionStore interface {
	ListInteractions(ctx context.Context) ([]models.Interaction, error)
}

// InteractionAppender is implemented by stores that can also absorb new
// events, e.g. from the Kafka consumer. Appends never mutate a built
// snapshot; they only feed the next rebuild.
type InteractionAppender interface {
	AppendInteraction(ctx context.Context, ev models.Interaction) error
}

// DatabaseQuerier is the slice of pgxpool.Pool the Postgres store needs,
// kept narrow so tests can substitute pgxmock.
type DatabaseQuerier interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

// PostgresInteractionStore reads the interaction log from the interactions
// table.
type PostgresInteractionStore struct {
	db     DatabaseQuerier
	logger *logrus.Logger
}

func NewPostgresInteractionStore(db DatabaseQuerier, logger *logrus.Logger) *PostgresInteractionStore {
	return &PostgresInteractionStore{db: db, logger: logger}
}

func (s *PostgresInteractionStore) ListInteractions(ctx context.Context) ([]models.Interaction, error) {
	query := `
		SELECT user_id, product_id, interaction_type, occurred_at, session_id
		FROM interactions
		ORDER BY occurred_at, user_id, product_id`

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query interactions: %w", err)
	}
	defer rows.Close()

	var events []models.Interaction
	for rows.Next() {
		var ev models.Interaction
		if err := rows.Scan(&ev.UserID, &ev.ProductID, &ev.InteractionType, &ev.Timestamp, &ev.SessionID); err != nil {
			return nil, fmt.Errorf("failed to scan interaction: %w", err)
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read interactions: %w", err)
	}

	s.logger.WithField("events", len(events)).Debug("Loaded interactions from PostgreSQL")
	return events, nil
}

// AppendInteraction records one new event for the next rebuild cycle.
func (s *PostgresInteractionStore) AppendInteraction(ctx context.Context, ev models.Interaction) error {
	query := `
		INSERT INTO interactions (user_id, product_id, interaction_type, occurred_at, session_id)
		VALUES ($1, $2, $3, $4, $5)`

	if _, err := s.db.Exec(ctx, query, ev.UserID, ev.ProductID, string(ev.InteractionType), ev.Timestamp, ev.SessionID); err != nil {
		return fmt.Errorf("failed to insert interaction: %w", err)
	}
	return nil
}

// interactionSchema validates the structural shape of a bulk interaction
// file. Interaction-type semantics are deliberately left to the matrix
// builder, which owns the weighting scheme.
const interactionSchema = `{
	"type": "array",
	"items": {
		"type": "object",
		"required": ["user_id", "product_id", "interaction_type", "timestamp", "session_id"],
		"properties": {
			"user_id": {"type": "string", "minLength": 1},
			"product_id": {"type": "string", "minLength": 1},
			"interaction_type": {"type": "string", "minLength": 1},
			"timestamp": {"type": "string"},
			"session_id": {"type": "string"}
		}
	}
}`

// FileInteractionStore reads the interaction log from a JSON file. The file
// is validated against a schema before decoding: a malformed log indicates a
// corrupt data source and fails the load outright.
type FileInteractionStore struct {
	path   string
	schema *gojsonschema.Schema
	logger *logrus.Logger
}

func NewFileInteractionStore(path string, logger *logrus.Logger) (*FileInteractionStore, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(interactionSchema))
	if err != nil {
		return nil, fmt.Errorf("failed to compile interaction schema: %w", err)
	}
	return &FileInteractionStore{path: path, schema: schema, logger: logger}, nil
}

func (s *FileInteractionStore) ListInteractions(ctx context.Context) ([]models.Interaction, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read interaction file: %w", err)
	}

	result, err := s.schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to validate interaction file: %w", err)
	}
	if !result.Valid() {
		first := result.Errors()[0]
		return nil, fmt.Errorf("interaction file %s is malformed: %s (%d problems)",
			s.path, first.String(), len(result.Errors()))
	}

	var events []models.Interaction
	if err := json.Unmarshal(data, &events); err != nil {
		return nil, fmt.Errorf("failed to decode interaction file: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"path":   s.path,
		"events": len(events),
	}).Debug("Loaded interactions from file")
	return events, nil
}
