// Package flat provides a persisted flat inner-product vector index.
//
// The index stores unit-normalised vectors as a dense float32 matrix in
// vectors.bin plus a parallel chunk-ID array in mapping.json. Inner
// product over unit vectors equals cosine similarity, and search is an
// exact scan, so results match brute-force retrieval by construction.
// The index is a derived cache: always rebuildable from stored chunks,
// safe to delete at any time.
package flat

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/arkive-labs/arkive-cli/internal/core/domain"
	"github.com/arkive-labs/arkive-cli/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// Persisted artifact names.
const (
	vectorsFile = "vectors.bin"
	mappingFile = "mapping.json"
)

// headerSize is dimension + row count, both uint32 little-endian.
const headerSize = 8

// Index provides exact inner-product nearest-neighbour search over a
// persisted vector matrix.
type Index struct {
	mu        sync.RWMutex
	dir       string
	dim       int
	matrix    []float32 // row-major, len = dim * len(ids), unit rows
	ids       []string
	available bool
}

// New opens the index at dir, loading any persisted structure.
// A missing structure is not an error; the index reports unavailable
// until the first rebuild.
func New(dir string) (*Index, error) {
	if dir == "" {
		return nil, errors.New("flat: dir cannot be empty")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("flat: creating index directory: %w", err)
	}

	idx := &Index{dir: dir}
	if err := idx.load(); err != nil {
		return nil, err
	}
	return idx, nil
}

// Available reports whether a persisted structure exists.
func (idx *Index) Available() bool {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.available
}

// Rebuild fully replaces the persisted structure from the given
// entries. Empty vectors are skipped; of the remainder only the
// majority dimensionality is kept (ties break toward the larger
// dimension). With no eligible entries the persisted artifacts are
// removed and the index becomes unavailable.
func (idx *Index) Rebuild(_ context.Context, entries []driven.VectorEntry) error {
	dim := majorityDimension(entries)
	if dim == 0 {
		return idx.clear()
	}

	ids := make([]string, 0, len(entries))
	matrix := make([]float32, 0, len(entries)*dim)
	for _, e := range entries {
		if len(e.Embedding) != dim {
			continue
		}
		matrix = append(matrix, normalize(e.Embedding)...)
		ids = append(ids, e.ChunkID)
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	if err := idx.persist(dim, matrix, ids); err != nil {
		return err
	}

	idx.dim = dim
	idx.matrix = matrix
	idx.ids = ids
	idx.available = true
	return nil
}

// Search returns the k highest-inner-product rows for the query,
// mapped back to chunk IDs in descending-score order. Returns
// domain.ErrVectorIndexUnavailable when no persisted structure exists.
func (idx *Index) Search(_ context.Context, query []float32, k int) ([]driven.VectorHit, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if !idx.available {
		return nil, domain.ErrVectorIndexUnavailable
	}
	if len(query) != idx.dim {
		return nil, fmt.Errorf("flat: query dimension %d does not match index dimension %d", len(query), idx.dim)
	}
	if k <= 0 {
		return nil, nil
	}

	q := normalize(query)
	hits := make([]driven.VectorHit, 0, len(idx.ids))
	for row, id := range idx.ids {
		var dot float32
		base := row * idx.dim
		for i, v := range q {
			dot += idx.matrix[base+i] * v
		}
		hits = append(hits, driven.VectorHit{ChunkID: id, Similarity: float64(dot)})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Similarity > hits[j].Similarity
	})
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

// Close releases resources.
func (idx *Index) Close() error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.matrix = nil
	idx.ids = nil
	idx.available = false
	return nil
}

// load reads persisted artifacts if both exist.
func (idx *Index) load() error {
	data, err := os.ReadFile(filepath.Join(idx.dir, vectorsFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("flat: reading vectors: %w", err)
	}
	mapping, err := os.ReadFile(filepath.Join(idx.dir, mappingFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("flat: reading mapping: %w", err)
	}

	if len(data) < headerSize {
		return fmt.Errorf("flat: vectors file truncated (%d bytes)", len(data))
	}
	dim := int(binary.LittleEndian.Uint32(data[0:4]))
	count := int(binary.LittleEndian.Uint32(data[4:8]))
	if dim <= 0 || len(data) != headerSize+dim*count*4 {
		return fmt.Errorf("flat: vectors file corrupt (dim %d, count %d, %d bytes)", dim, count, len(data))
	}

	matrix := make([]float32, dim*count)
	for i := range matrix {
		matrix[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[headerSize+i*4:]))
	}

	var ids []string
	if err := json.Unmarshal(mapping, &ids); err != nil {
		return fmt.Errorf("flat: decoding mapping: %w", err)
	}
	if len(ids) != count {
		return fmt.Errorf("flat: mapping has %d ids for %d rows", len(ids), count)
	}

	idx.dim = dim
	idx.matrix = matrix
	idx.ids = ids
	idx.available = true
	return nil
}

// persist writes both artifacts atomically via temp file + rename.
func (idx *Index) persist(dim int, matrix []float32, ids []string) error {
	buf := make([]byte, headerSize+len(matrix)*4)
	binary.LittleEndian.PutUint32(buf[0:4], uint32(dim))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(len(ids)))
	for i, f := range matrix {
		binary.LittleEndian.PutUint32(buf[headerSize+i*4:], math.Float32bits(f))
	}

	mapping, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("flat: encoding mapping: %w", err)
	}

	if err := writeAtomic(filepath.Join(idx.dir, vectorsFile), buf); err != nil {
		return err
	}
	return writeAtomic(filepath.Join(idx.dir, mappingFile), mapping)
}

// clear removes persisted artifacts and marks the index unavailable.
func (idx *Index) clear() error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	for _, name := range []string{vectorsFile, mappingFile} {
		if err := os.Remove(filepath.Join(idx.dir, name)); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("flat: removing %s: %w", name, err)
		}
	}
	idx.dim = 0
	idx.matrix = nil
	idx.ids = nil
	idx.available = false
	return nil
}

func writeAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("flat: writing %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("flat: replacing %s: %w", filepath.Base(path), err)
	}
	return nil
}

// majorityDimension returns the most common non-zero vector length,
// breaking ties toward the larger dimension. Zero when no entry has a
// vector.
func majorityDimension(entries []driven.VectorEntry) int {
	counts := make(map[int]int)
	for _, e := range entries {
		if len(e.Embedding) > 0 {
			counts[len(e.Embedding)]++
		}
	}
	best, bestCount := 0, 0
	for dim, n := range counts {
		if n > bestCount || (n == bestCount && dim > best) {
			best, bestCount = dim, n
		}
	}
	return best
}

// normalize returns a unit-length copy of v. Zero vectors are returned
// as zero-filled copies rather than dividing by zero.
func normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	norm := math.Sqrt(sum)
	out := make([]float32, len(v))
	if norm == 0 {
		return out
	}
	for i, x := range v {
		out[i] = float32(float64(x) / norm)
	}
	return out
}

// Cosine computes cosine similarity between two vectors. Returns 0 for
// empty or dimension-mismatched inputs, which downstream treats as
// "not comparable".
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	denom := math.Sqrt(na) * math.Sqrt(nb)
	if denom == 0 {
		return 0
	}
	return dot / denom
}
