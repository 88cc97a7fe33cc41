package vecstore

import (
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
)

// CurrentIndexVersion is the on-disk format version. Increment on breaking
// changes to indexFile.
const CurrentIndexVersion = 1

// IndexFileName is the name of the vector index file.
const IndexFileName = "vectors.gob"

// indexFile is the GOB-encoded on-disk representation. It reconstructs
// {N, D, vectors, id mapping} exactly.
type indexFile struct {
	Version   int
	ModelName string
	Dimension int
	IDs       []string
	Vectors   []float32 // flat, len = len(IDs)*Dimension
}

// Save persists the store to path using GOB encoding. The file is written
// to a temp file first and renamed so a crash never leaves a torn index.
func (s *Store) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating index directory: %w", err)
	}

	tempPath := path + ".tmp"
	f, err := os.Create(tempPath)
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}

	file := indexFile{
		Version:   CurrentIndexVersion,
		ModelName: s.model,
		Dimension: s.dim,
		IDs:       s.ids,
		Vectors:   s.vectors,
	}

	enc := gob.NewEncoder(f)
	if err := enc.Encode(file); err != nil {
		f.Close()
		os.Remove(tempPath)
		return fmt.Errorf("encoding index: %w", err)
	}

	if err := f.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("closing file: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}

	return nil
}

// Load reads a store from disk. dim is the configured dimension; a stored
// index with any other dimension is rejected before use.
func Load(path string, dim int) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrIndexNotFound
		}
		return nil, fmt.Errorf("opening index file: %w", err)
	}
	defer f.Close()

	var file indexFile
	dec := gob.NewDecoder(f)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("decoding index: %w", err)
	}

	if file.Version != CurrentIndexVersion {
		return nil, fmt.Errorf("%w: got %d, want %d (rebuild the index)",
			ErrUnsupportedVersion, file.Version, CurrentIndexVersion)
	}
	if file.Dimension != dim {
		return nil, fmt.Errorf("%w: index has %d, configured %d",
			ErrDimensionMismatch, file.Dimension, dim)
	}
	if len(file.Vectors) != len(file.IDs)*file.Dimension {
		return nil, fmt.Errorf("corrupt index: %d vectors values for %d ids of dimension %d",
			len(file.Vectors), len(file.IDs), file.Dimension)
	}

	s := &Store{
		dim:     file.Dimension,
		model:   file.ModelName,
		ids:     file.IDs,
		offsets: make(map[string]int, len(file.IDs)),
		vectors: file.Vectors,
	}
	for offset, id := range file.IDs {
		if _, exists := s.offsets[id]; exists {
			return nil, fmt.Errorf("corrupt index: %w: %s", ErrDuplicateID, id)
		}
		s.offsets[id] = offset
	}

	return s, nil
}
