// Command evaluate measures offline ranking quality: it splits the
// interaction log into train and test sets, builds a snapshot from the
// training half, and reports precision, recall and NDCG on the held-out
// events.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/shopstream/recommender/internal/cf"
	"github.com/shopstream/recommender/internal/config"
	"github.com/shopstream/recommender/internal/eval"
	"github.com/shopstream/recommender/internal/store"
	"github.com/shopstream/recommender/pkg/models"
)

func main() {
	k := flag.Int("k", 10, "ranking cutoff for precision, recall and NDCG")
	file := flag.String("file", "", "interaction log file, overrides the configured source")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *file != "" {
		cfg.Interactions.Source = config.SourceFile
		cfg.Interactions.Path = *file
	}

	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	ctx := context.Background()

	events, err := loadInteractions(ctx, cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to load interactions")
	}

	train, test := eval.Split(events)
	logger.WithFields(logrus.Fields{
		"total": len(events),
		"train": len(train),
		"test":  len(test),
	}).Info("Interaction log split")

	model, err := cf.NewModel(train)
	if err != nil {
		logger.WithError(err).Fatal("Failed to build model from training split")
	}

	report := eval.Evaluate(model, test, *k, logger)

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(report); err != nil {
		logger.WithError(err).Fatal("Failed to write report")
	}
}

func loadInteractions(ctx context.Context, cfg *config.Config, logger *logrus.Logger) ([]models.Interaction, error) {
	switch cfg.Interactions.Source {
	case config.SourceFile:
		st, err := store.NewFileInteractionStore(cfg.Interactions.Path, logger)
		if err != nil {
			return nil, err
		}
		return st.ListInteractions(ctx)
	case config.SourcePostgres:
		db, err := store.New(cfg, logger)
		if err != nil {
			return nil, err
		}
		defer db.Close()
		return store.NewPostgresInteractionStore(db.PG, logger).ListInteractions(ctx)
	default:
		return nil, fmt.Errorf("unknown interactions source %q", cfg.Interactions.Source)
	}
}
