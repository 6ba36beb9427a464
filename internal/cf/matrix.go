// Package cf implements the collaborative-filtering core: the sparse
// user-item interaction matrix, the item-item cosine similarity derived from
// it, and the recommenders that rank against an immutable snapshot of both.
package cf

import (
	"github.com/shopstream/recommender/pkg/models"
)

// interactionWeights is the fixed weighting scheme applied when folding
// events into the matrix. Weights accumulate additively across repeated
// events for the same (user, product) pair.
var interactionWeights = map[models.InteractionType]float64{
	models.InteractionView:      1,
	models.InteractionClick:     2,
	models.InteractionAddToCart: 3,
	models.InteractionPurchase:  5,
}

// Matrix is the sparse user x item interaction matrix. Entry (u, i) is the
// sum of interaction weights of every event for that pair. Both orientations
// are kept: user-major rows for history lookups and item-major columns for
// similarity computation. A Matrix is read-only after BuildMatrix returns.
type Matrix struct {
	users *Index
	items *Index
	rows  []map[int]float64 // user -> item -> weight
	cols  []map[int]float64 // item -> user -> weight
	nnz   int
}

// BuildMatrix folds an event sequence into a sparse weighted matrix and the
// user/item identifier indexes. An empty event slice produces a degenerate
// 0x0 matrix. An interaction type outside the fixed weighting scheme fails
// the whole build with an UnknownInteractionTypeError.
func BuildMatrix(events []models.Interaction) (*Matrix, error) {
	m := &Matrix{
		users: newIndex(),
		items: newIndex(),
	}

	for n, ev := range events {
		w, ok := interactionWeights[ev.InteractionType]
		if !ok {
			return nil, &UnknownInteractionTypeError{Type: ev.InteractionType, Position: n}
		}

		u := m.users.add(ev.UserID)
		i := m.items.add(ev.ProductID)

		for len(m.rows) <= u {
			m.rows = append(m.rows, make(map[int]float64))
		}
		for len(m.cols) <= i {
			m.cols = append(m.cols, make(map[int]float64))
		}

		if _, seen := m.rows[u][i]; !seen {
			m.nnz++
		}
		m.rows[u][i] += w
		m.cols[i][u] += w
	}

	return m, nil
}

// Users returns the user identifier index.
func (m *Matrix) Users() *Index { return m.users }

// Items returns the item identifier index.
func (m *Matrix) Items() *Index { return m.items }

// NumUsers returns the number of matrix rows.
func (m *Matrix) NumUsers() int { return m.users.Len() }

// NumItems returns the number of matrix columns.
func (m *Matrix) NumItems() int { return m.items.Len() }

// NNZ returns the number of nonzero entries.
func (m *Matrix) NNZ() int { return m.nnz }

// UserRow returns the sparse history row of user u. The returned map is
// shared; callers must not mutate it.
func (m *Matrix) UserRow(u int) map[int]float64 {
	return m.rows[u]
}

// ItemColumn returns the sparse column vector of item i across all users.
// The returned map is shared; callers must not mutate it.
func (m *Matrix) ItemColumn(i int) map[int]float64 {
	return m.cols[i]
}

// Weight returns the accumulated weight at (u, i), zero when the pair never
// interacted.
func (m *Matrix) Weight(u, i int) float64 {
	return m.rows[u][i]
}
