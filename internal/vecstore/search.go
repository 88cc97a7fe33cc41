package vecstore

import (
	"fmt"
	"math"
	"sort"
)

// Result is one scored match from a similarity search.
type Result struct {
	ID    string  `json:"id"`
	Score float32 `json:"score"` // Cosine similarity in [-1, 1]
}

// Search scores the query against every stored vector and returns the k
// highest-scoring (id, score) pairs in strictly descending score order, ties
// broken by ascending article id. The query must have the store's dimension;
// it is normalized before scoring so the dot product equals cosine
// similarity. k > Size() returns all stored vectors ranked.
func (s *Store) Search(query []float32, k int) ([]Result, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidK, k)
	}
	if len(query) != s.dim {
		return nil, fmt.Errorf("%w: query has %d, index has %d",
			ErrDimensionMismatch, len(query), s.dim)
	}

	norm, err := l2Norm("query", query)
	if err != nil {
		return nil, err
	}
	q := query
	if math.Abs(norm-1) > normTolerance {
		q = make([]float32, len(query))
		inv := float32(1 / norm)
		for i, v := range query {
			q[i] = v * inv
		}
	}

	results := make([]Result, len(s.ids))
	for offset, id := range s.ids {
		results[offset] = Result{ID: id, Score: dot(q, s.vectorAt(offset))}
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].ID < results[j].ID
	})

	if k < len(results) {
		results = results[:k]
	}
	return results, nil
}

// Similarity returns the cosine similarity between two indexed articles.
func (s *Store) Similarity(idA, idB string) (float32, error) {
	offA, ok := s.offsets[idA]
	if !ok {
		return 0, fmt.Errorf("article %s not indexed", idA)
	}
	offB, ok := s.offsets[idB]
	if !ok {
		return 0, fmt.Errorf("article %s not indexed", idB)
	}
	return dot(s.vectorAt(offA), s.vectorAt(offB)), nil
}

func dot(a, b []float32) float32 {
	var sum float32
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}
