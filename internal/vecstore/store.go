// Package vecstore implements the exact-search vector index over article
// embeddings.
//
// A Store is an immutable generation: it is fully built, validated, and then
// published through a Handle swap. Queries scan every stored vector; at
// corpus scale (tens of thousands of vectors) the exhaustive scan is
// sub-millisecond and avoids the complexity of approximate indexes.
package vecstore

import (
	"errors"
	"fmt"
	"math"
)

// Errors returned by vector store operations.
var (
	ErrDimensionMismatch  = errors.New("vector dimension mismatch")
	ErrInvalidVector      = errors.New("invalid vector")
	ErrInvalidK           = errors.New("k must be positive")
	ErrDuplicateID        = errors.New("duplicate article id")
	ErrIndexNotFound      = errors.New("vector index not found")
	ErrUnsupportedVersion = errors.New("unsupported index version")
)

// normTolerance is the allowed deviation from unit L2 norm before a vector
// is re-normalized during build.
const normTolerance = 1e-6

// Entry pairs an article id with its embedding vector for building.
type Entry struct {
	ID     string
	Vector []float32
}

// Store holds unit-norm vectors contiguously for cache-friendly scanning,
// plus the bijective mapping between offsets and article ids. A Store is
// immutable after Build.
type Store struct {
	dim     int
	model   string
	ids     []string       // offset -> article id
	offsets map[string]int // article id -> offset
	vectors []float32      // flat row-major storage, len = len(ids)*dim
}

// Build constructs a store from entries. Every vector must have dimension
// dim and contain only finite values; vectors are L2-normalized unless
// already within tolerance of unit norm. Entry order is preserved as offset
// order. The input vectors are not modified.
func Build(model string, dim int, entries []Entry) (*Store, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("%w: dimension %d", ErrInvalidVector, dim)
	}

	s := &Store{
		dim:     dim,
		model:   model,
		ids:     make([]string, 0, len(entries)),
		offsets: make(map[string]int, len(entries)),
		vectors: make([]float32, 0, len(entries)*dim),
	}

	for _, e := range entries {
		if len(e.Vector) != dim {
			return nil, fmt.Errorf("%w: article %s: got %d, want %d",
				ErrDimensionMismatch, e.ID, len(e.Vector), dim)
		}
		if _, exists := s.offsets[e.ID]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateID, e.ID)
		}

		norm, err := l2Norm(e.ID, e.Vector)
		if err != nil {
			return nil, err
		}

		s.offsets[e.ID] = len(s.ids)
		s.ids = append(s.ids, e.ID)

		if math.Abs(norm-1) <= normTolerance {
			s.vectors = append(s.vectors, e.Vector...)
			continue
		}
		inv := float32(1 / norm)
		for _, v := range e.Vector {
			s.vectors = append(s.vectors, v*inv)
		}
	}

	return s, nil
}

// l2Norm computes the Euclidean norm, rejecting non-finite components and
// zero vectors.
func l2Norm(id string, vec []float32) (float64, error) {
	var sum float64
	for _, v := range vec {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, fmt.Errorf("%w: article %s: non-finite component", ErrInvalidVector, id)
		}
		sum += f * f
	}
	norm := math.Sqrt(sum)
	if norm == 0 {
		return 0, fmt.Errorf("%w: article %s: zero vector", ErrInvalidVector, id)
	}
	return norm, nil
}

// Size returns the number of stored vectors.
func (s *Store) Size() int {
	return len(s.ids)
}

// Dimension returns the vector dimension.
func (s *Store) Dimension() int {
	return s.dim
}

// ModelName returns the embedding model the store was built with.
func (s *Store) ModelName() string {
	return s.model
}

// Contains reports whether an article id is indexed.
func (s *Store) Contains(id string) bool {
	_, ok := s.offsets[id]
	return ok
}

// IDs returns the indexed article ids in offset order. The returned slice
// is shared; callers must not modify it.
func (s *Store) IDs() []string {
	return s.ids
}

// vectorAt returns the stored vector for an offset as a shared sub-slice.
func (s *Store) vectorAt(offset int) []float32 {
	return s.vectors[offset*s.dim : (offset+1)*s.dim]
}
