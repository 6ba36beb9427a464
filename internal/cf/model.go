package cf

import (
	"sort"
	"time"

	"github.com/shopstream/recommender/pkg/models"
)

// Model is an immutable snapshot of one build cycle: the interaction matrix,
// the similarity matrix derived from it, and the identifier indexes they
// share. A Model is safe for concurrent readers; rebuilding means
// constructing a fresh Model and swapping the reference, never mutating in
// place.
type Model struct {
	matrix  *Matrix
	sims    *Similarity
	builtAt time.Time
}

// Stats summarizes a snapshot for health reporting and metrics.
type Stats struct {
	Users        int       `json:"users"`
	Items        int       `json:"items"`
	Interactions int       `json:"interactions"`
	BuiltAt      time.Time `json:"built_at"`
}

// NewModel builds the matrix and similarity for one event sequence.
func NewModel(events []models.Interaction) (*Model, error) {
	matrix, err := BuildMatrix(events)
	if err != nil {
		return nil, err
	}
	return &Model{
		matrix:  matrix,
		sims:    ComputeSimilarity(matrix),
		builtAt: time.Now(),
	}, nil
}

// Matrix returns the snapshot's interaction matrix.
func (m *Model) Matrix() *Matrix { return m.matrix }

// Similarity returns the snapshot's item similarity matrix.
func (m *Model) Similarity() *Similarity { return m.sims }

// Stats returns snapshot dimensions.
func (m *Model) Stats() Stats {
	return Stats{
		Users:        m.matrix.NumUsers(),
		Items:        m.matrix.NumItems(),
		Interactions: m.matrix.NNZ(),
		BuiltAt:      m.builtAt,
	}
}

// RecommendForUser ranks every item the user has not interacted with by
// similarity to the user's weighted history: score = similarity^T . history.
// An unknown user yields an empty slice, not an error; no history is a
// legitimate steady state.
func (m *Model) RecommendForUser(userID string, k int) []models.ScoredCandidate {
	u, ok := m.matrix.Users().Lookup(userID)
	if !ok || k <= 0 {
		return nil
	}

	history := m.matrix.UserRow(u)
	scores := make(map[int]float64)
	for j, w := range history {
		for i, sim := range m.sims.Row(j) {
			scores[i] += w * sim
		}
	}

	return m.rank(scores, k, func(i int) bool {
		return history[i] > 0
	})
}

// SimilarItems ranks every other item by similarity to the seed item. An
// unknown item yields an empty slice, not an error.
func (m *Model) SimilarItems(productID string, k int) []models.ScoredCandidate {
	seed, ok := m.matrix.Items().Lookup(productID)
	if !ok || k <= 0 {
		return nil
	}

	row := m.sims.Row(seed)
	scores := make(map[int]float64, len(row))
	for i, sim := range row {
		scores[i] = sim
	}

	return m.rank(scores, k, func(i int) bool {
		return i == seed
	})
}

// rank materializes candidates for every item except the excluded ones and
// returns the top k, descending by score. Candidates start in ascending index
// order and the sort is stable, so ties resolve to first-seen identifier
// order.
func (m *Model) rank(scores map[int]float64, k int, exclude func(int) bool) []models.ScoredCandidate {
	n := m.matrix.NumItems()
	candidates := make([]models.ScoredCandidate, 0, n)
	for i := 0; i < n; i++ {
		if exclude(i) {
			continue
		}
		candidates = append(candidates, models.ScoredCandidate{
			ProductID: m.matrix.Items().ID(i),
			Score:     scores[i],
		})
	}

	sort.SliceStable(candidates, func(a, b int) bool {
		return candidates[a].Score > candidates[b].Score
	})

	if len(candidates) > k {
		candidates = candidates[:k]
	}
	return candidates
}
