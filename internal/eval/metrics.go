// Package eval measures offline ranking quality of a recommender against a
// held-out slice of the interaction log.
package eval

import "math"

// PrecisionAtK is the fraction of the top-k recommendations that are
// relevant. An empty recommendation list scores zero.
func PrecisionAtK(recommended []string, relevant map[string]bool, k int) float64 {
	if k <= 0 || len(recommended) == 0 {
		return 0
	}
	if len(recommended) > k {
		recommended = recommended[:k]
	}

	hits := 0
	for _, id := range recommended {
		if relevant[id] {
			hits++
		}
	}
	return float64(hits) / float64(k)
}

// RecallAtK is the fraction of relevant items that appear in the top-k
// recommendations. With no relevant items the metric is undefined and
// reported as zero.
func RecallAtK(recommended []string, relevant map[string]bool, k int) float64 {
	if k <= 0 || len(relevant) == 0 {
		return 0
	}
	if len(recommended) > k {
		recommended = recommended[:k]
	}

	hits := 0
	for _, id := range recommended {
		if relevant[id] {
			hits++
		}
	}
	return float64(hits) / float64(len(relevant))
}

// NDCGAtK is normalized discounted cumulative gain with binary relevance.
// Relevant items near the top of the list score higher than the same items
// further down.
func NDCGAtK(recommended []string, relevant map[string]bool, k int) float64 {
	if k <= 0 || len(relevant) == 0 {
		return 0
	}
	if len(recommended) > k {
		recommended = recommended[:k]
	}

	dcg := 0.0
	for i, id := range recommended {
		if relevant[id] {
			dcg += 1 / math.Log2(float64(i)+2)
		}
	}

	ideal := len(relevant)
	if ideal > k {
		ideal = k
	}
	idcg := 0.0
	for i := 0; i < ideal; i++ {
		idcg += 1 / math.Log2(float64(i)+2)
	}
	if idcg == 0 {
		return 0
	}
	return dcg / idcg
}
