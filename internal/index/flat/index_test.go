package flat

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arkive-labs/arkive-cli/internal/core/domain"
	"github.com/arkive-labs/arkive-cli/internal/core/ports/driven"
)

func testEntries() []driven.VectorEntry {
	return []driven.VectorEntry{
		{ChunkID: "a", Embedding: []float32{1, 0, 0}},
		{ChunkID: "b", Embedding: []float32{0, 1, 0}},
		{ChunkID: "c", Embedding: []float32{0.9, 0.1, 0}},
	}
}

func TestNew_EmptyDir(t *testing.T) {
	idx, err := New(t.TempDir())
	require.NoError(t, err)
	assert.False(t, idx.Available())

	_, err = idx.Search(context.Background(), []float32{1, 0, 0}, 3)
	assert.ErrorIs(t, err, domain.ErrVectorIndexUnavailable)
}

func TestRebuildAndSearch(t *testing.T) {
	idx, err := New(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, idx.Rebuild(context.Background(), testEntries()))
	require.True(t, idx.Available())

	hits, err := idx.Search(context.Background(), []float32{1, 0, 0}, 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "a", hits[0].ChunkID)
	assert.Equal(t, "c", hits[1].ChunkID)
	assert.InDelta(t, 1.0, hits[0].Similarity, 1e-6)
	assert.Greater(t, hits[0].Similarity, hits[1].Similarity)
}

func TestSearch_MatchesBruteForce(t *testing.T) {
	idx, err := New(t.TempDir())
	require.NoError(t, err)

	entries := testEntries()
	require.NoError(t, idx.Rebuild(context.Background(), entries))

	query := []float32{0.5, 0.5, 0}
	hits, err := idx.Search(context.Background(), query, 3)
	require.NoError(t, err)
	require.Len(t, hits, 3)

	for _, hit := range hits {
		for _, e := range entries {
			if e.ChunkID == hit.ChunkID {
				assert.InDelta(t, Cosine(query, e.Embedding), hit.Similarity, 1e-6,
					"index score should equal brute-force cosine for %s", hit.ChunkID)
			}
		}
	}
	for i := 1; i < len(hits); i++ {
		assert.GreaterOrEqual(t, hits[i-1].Similarity, hits[i].Similarity)
	}
}

func TestRebuild_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	idx, err := New(dir)
	require.NoError(t, err)
	require.NoError(t, idx.Rebuild(context.Background(), testEntries()))
	require.NoError(t, idx.Close())

	reopened, err := New(dir)
	require.NoError(t, err)
	require.True(t, reopened.Available())

	hits, err := reopened.Search(context.Background(), []float32{0, 1, 0}, 1)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "b", hits[0].ChunkID)
}

func TestRebuild_SkipsEmptyAndMismatched(t *testing.T) {
	idx, err := New(t.TempDir())
	require.NoError(t, err)

	entries := append(testEntries(),
		driven.VectorEntry{ChunkID: "empty", Embedding: nil},
		driven.VectorEntry{ChunkID: "odd", Embedding: []float32{1, 2}},
	)
	require.NoError(t, idx.Rebuild(context.Background(), entries))

	hits, err := idx.Search(context.Background(), []float32{1, 1, 1}, 10)
	require.NoError(t, err)
	assert.Len(t, hits, 3)
	for _, h := range hits {
		assert.NotContains(t, []string{"empty", "odd"}, h.ChunkID)
	}
}

func TestRebuild_NoEligibleEntriesClears(t *testing.T) {
	dir := t.TempDir()
	idx, err := New(dir)
	require.NoError(t, err)

	require.NoError(t, idx.Rebuild(context.Background(), testEntries()))
	require.True(t, idx.Available())

	require.NoError(t, idx.Rebuild(context.Background(), nil))
	assert.False(t, idx.Available())

	_, err = idx.Search(context.Background(), []float32{1, 0, 0}, 1)
	assert.ErrorIs(t, err, domain.ErrVectorIndexUnavailable)

	reopened, err := New(dir)
	require.NoError(t, err)
	assert.False(t, reopened.Available())
}

func TestSearch_DimensionMismatch(t *testing.T) {
	idx, err := New(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, idx.Rebuild(context.Background(), testEntries()))

	_, err = idx.Search(context.Background(), []float32{1, 0}, 1)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrVectorIndexUnavailable)
}

func TestMajorityDimension(t *testing.T) {
	entries := []driven.VectorEntry{
		{ChunkID: "a", Embedding: []float32{1, 2}},
		{ChunkID: "b", Embedding: []float32{1, 2}},
		{ChunkID: "c", Embedding: []float32{1, 2, 3}},
	}
	assert.Equal(t, 2, majorityDimension(entries))

	// Tie breaks toward the larger dimension.
	entries = entries[1:]
	assert.Equal(t, 3, majorityDimension(entries))

	assert.Equal(t, 0, majorityDimension(nil))
}

func TestCosine(t *testing.T) {
	assert.InDelta(t, 1.0, Cosine([]float32{1, 1}, []float32{2, 2}), 1e-9)
	assert.InDelta(t, 0.0, Cosine([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.InDelta(t, -1.0, Cosine([]float32{1, 0}, []float32{-1, 0}), 1e-9)
	assert.Equal(t, 0.0, Cosine(nil, []float32{1}))
	assert.Equal(t, 0.0, Cosine([]float32{1, 2}, []float32{1}))
}

func TestNormalize_ZeroVector(t *testing.T) {
	out := normalize([]float32{0, 0, 0})
	for _, v := range out {
		assert.False(t, math.IsNaN(float64(v)))
		assert.Equal(t, float32(0), v)
	}
}
