package eval

import (
	"sort"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat"

	"github.com/shopstream/recommender/pkg/models"
)

// Recommender is the ranking function under evaluation.
type Recommender interface {
	RecommendForUser(userID string, k int) []models.ScoredCandidate
}

// Report aggregates ranking metrics over all evaluated users.
type Report struct {
	K             int     `json:"k"`
	Users         int     `json:"users"`
	MeanPrecision float64 `json:"mean_precision"`
	MeanRecall    float64 `json:"mean_recall"`
	MeanNDCG      float64 `json:"mean_ndcg"`
}

// strongSignal marks the event kinds treated as ground-truth relevance.
// Views and clicks are too noisy to hold out.
func strongSignal(t models.InteractionType) bool {
	return t == models.InteractionPurchase || t == models.InteractionAddToCart
}

// Split holds out each user's latest strong-signal event as test data and
// keeps everything else for training. Users without at least two
// strong-signal events on distinct products stay entirely in the training
// set, since holding out their only signal would leave nothing to learn
// from.
func Split(events []models.Interaction) (train []models.Interaction, test []models.Interaction) {
	perUser := make(map[string][]int)
	for i, ev := range events {
		if strongSignal(ev.InteractionType) {
			perUser[ev.UserID] = append(perUser[ev.UserID], i)
		}
	}

	holdOut := make(map[int]bool)
	for _, idxs := range perUser {
		products := make(map[string]bool)
		for _, i := range idxs {
			products[events[i].ProductID] = true
		}
		if len(products) < 2 {
			continue
		}

		latest := idxs[0]
		for _, i := range idxs[1:] {
			if events[i].Timestamp.After(events[latest].Timestamp) {
				latest = i
			}
		}
		holdOut[latest] = true
	}

	train = make([]models.Interaction, 0, len(events)-len(holdOut))
	test = make([]models.Interaction, 0, len(holdOut))
	for i, ev := range events {
		if holdOut[i] {
			test = append(test, ev)
		} else {
			train = append(train, ev)
		}
	}
	return train, test
}

// Evaluate scores a recommender trained on the train split against the
// held-out events. Users are processed in sorted order so runs over the
// same data log identically.
func Evaluate(rec Recommender, test []models.Interaction, k int, logger *logrus.Logger) Report {
	relevantByUser := make(map[string]map[string]bool)
	for _, ev := range test {
		if relevantByUser[ev.UserID] == nil {
			relevantByUser[ev.UserID] = make(map[string]bool)
		}
		relevantByUser[ev.UserID][ev.ProductID] = true
	}

	userIDs := make([]string, 0, len(relevantByUser))
	for userID := range relevantByUser {
		userIDs = append(userIDs, userID)
	}
	sort.Strings(userIDs)

	var precisions, recalls, ndcgs []float64
	for _, userID := range userIDs {
		relevant := relevantByUser[userID]

		recs := rec.RecommendForUser(userID, k)
		recommended := make([]string, 0, len(recs))
		for _, r := range recs {
			recommended = append(recommended, r.ProductID)
		}

		precisions = append(precisions, PrecisionAtK(recommended, relevant, k))
		recalls = append(recalls, RecallAtK(recommended, relevant, k))
		ndcgs = append(ndcgs, NDCGAtK(recommended, relevant, k))
	}

	report := Report{K: k, Users: len(userIDs)}
	if len(userIDs) > 0 {
		report.MeanPrecision = stat.Mean(precisions, nil)
		report.MeanRecall = stat.Mean(recalls, nil)
		report.MeanNDCG = stat.Mean(ndcgs, nil)
	}

	logger.WithFields(logrus.Fields{
		"k":              report.K,
		"users":          report.Users,
		"mean_precision": report.MeanPrecision,
		"mean_recall":    report.MeanRecall,
		"mean_ndcg":      report.MeanNDCG,
	}).Info("Evaluation complete")

	return report
}
