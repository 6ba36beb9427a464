package cf

import (
	"sort"

	"gonum.org/v1/gonum/floats"
)

// Similarity is the symmetric item x item cosine similarity matrix derived
// from a Matrix. Only nonzero entries are stored; the diagonal is 1 for any
// item with at least one interaction and absent (0) otherwise. A Similarity
// is read-only after ComputeSimilarity returns.
type Similarity struct {
	rows []map[int]float64
}

// ComputeSimilarity computes pairwise cosine similarity between item column
// vectors: sim(i, j) = (v_i . v_j) / (|v_i| |v_j|), with 0/0 defined as 0.
//
// Dot products are accumulated per user over co-occurring item pairs, so the
// cost follows the nonzero structure of the input instead of items^2. This is
// still the dominant cost of the system and is recomputed in full for every
// new matrix.
func ComputeSimilarity(m *Matrix) *Similarity {
	n := m.NumItems()
	s := &Similarity{rows: make([]map[int]float64, n)}
	for i := 0; i < n; i++ {
		s.rows[i] = make(map[int]float64)
	}

	norms := make([]float64, n)
	for i := 0; i < n; i++ {
		col := m.ItemColumn(i)
		if len(col) == 0 {
			continue
		}
		vals := make([]float64, 0, len(col))
		for _, w := range col {
			vals = append(vals, w)
		}
		norms[i] = floats.Norm(vals, 2)
	}

	// Co-occurrence pass: every user contributes w_ui * w_uj to dot(i, j)
	// for each item pair in their row. Iterating pairs in sorted order keeps
	// the accumulation order, and therefore the floating-point result,
	// reproducible across builds.
	dots := make([]map[int]float64, n)
	for i := range dots {
		dots[i] = make(map[int]float64)
	}
	for u := 0; u < m.NumUsers(); u++ {
		row := m.UserRow(u)
		if len(row) < 2 {
			continue
		}
		items := make([]int, 0, len(row))
		for i := range row {
			items = append(items, i)
		}
		sort.Ints(items)
		for a := 0; a < len(items); a++ {
			for b := a + 1; b < len(items); b++ {
				i, j := items[a], items[b]
				dots[i][j] += row[i] * row[j]
			}
		}
	}

	for i := 0; i < n; i++ {
		if norms[i] > 0 {
			s.rows[i][i] = 1
		}
		for j, dot := range dots[i] {
			if norms[i] == 0 || norms[j] == 0 {
				continue
			}
			sim := dot / (norms[i] * norms[j])
			s.rows[i][j] = sim
			s.rows[j][i] = sim
		}
	}

	return s
}

// Len returns the number of items covered by the matrix.
func (s *Similarity) Len() int {
	return len(s.rows)
}

// Row returns the sparse similarity row of item i, including the diagonal
// entry. The returned map is shared; callers must not mutate it.
func (s *Similarity) Row(i int) map[int]float64 {
	return s.rows[i]
}

// At returns sim(i, j), zero when the items share no users.
func (s *Similarity) At(i, j int) float64 {
	return s.rows[i][j]
}
