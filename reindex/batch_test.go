package reindex

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/citymuse/wayfinder/core"
	"github.com/citymuse/wayfinder/storage"
	"github.com/citymuse/wayfinder/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockEmbedder for testing
type mockEmbedder struct {
	embedTextFunc  func(ctx context.Context, text string) ([]float32, error)
	embedTextsFunc func(ctx context.Context, texts []string) ([][]float32, error)
}

func (m *mockEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	if m.embedTextFunc != nil {
		return m.embedTextFunc(ctx, text)
	}
	return []float32{0.1, 0.2, 0.3}, nil
}

func (m *mockEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if m.embedTextsFunc != nil {
		return m.embedTextsFunc(ctx, texts)
	}
	// Default: return unnormalized vectors for each text
	result := make([][]float32, len(texts))
	for i := range texts {
		result[i] = []float32{1.0, 2.0, 2.0} // magnitude = 3.0
	}
	return result, nil
}

// setupStores loads a small district snapshot and returns the opened stores.
func setupStores(t *testing.T) (storage.GraphRepository, storage.EmbeddingRepository) {
	t.Helper()

	graphRepo, embedRepo, backend, err := badger.NewMemoryStores()
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })

	nodes := []*core.Node{
		{ID: "book", Kind: core.NodeKindPOI, Name: "Arkadia Bookshop", Lat: 60.1690, Lon: 24.9320,
			Description: "Second-hand bookshop near Kamppi"},
		{ID: "cafe", Kind: core.NodeKindPOI, Name: "Cafe Regatta", Lat: 60.1770, Lon: 24.9120,
			Description: "Waterside cafe with cinnamon buns"},
		{ID: "sauna", Kind: core.NodeKindPOI, Name: "Kotiharju Sauna", Lat: 60.1880, Lon: 24.9590},
	}
	require.NoError(t, backend.LoadSnapshot(context.Background(), nodes, nil, nil))

	return graphRepo, embedRepo
}

func TestBatchProcessor_Process(t *testing.T) {
	graphRepo, embedRepo := setupStores(t)
	ctx := context.Background()

	pois, err := graphRepo.GetPOIs(ctx)
	require.NoError(t, err)
	require.Len(t, pois, 3)

	embedder := &mockEmbedder{}
	processor := NewBatchProcessor(embedRepo, embedder, 3, 10*time.Millisecond)

	err = processor.Process(ctx, pois)
	require.NoError(t, err)

	count, err := embedRepo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count, "every place should get a vector")

	// All mock vectors are identical, so a query along the normalized mock
	// direction should score ~1.0 for each stored vector.
	hits, err := embedRepo.QueryNearest(ctx, core.NormalizeVector([]float32{1.0, 2.0, 2.0}), 3)
	require.NoError(t, err)
	require.Len(t, hits, 3)
	for _, hit := range hits {
		assert.InDelta(t, 1.0, hit.Score, 0.01, "stored vector should be normalized")
	}
}

func TestBatchProcessor_EmptyBatch(t *testing.T) {
	_, embedRepo := setupStores(t)

	embedder := &mockEmbedder{}
	processor := NewBatchProcessor(embedRepo, embedder, 3, 10*time.Millisecond)

	err := processor.Process(context.Background(), nil)
	require.NoError(t, err)

	count, err := embedRepo.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestBatchProcessor_FallsBackToName(t *testing.T) {
	graphRepo, embedRepo := setupStores(t)
	ctx := context.Background()

	var seen []string
	embedder := &mockEmbedder{
		embedTextsFunc: func(ctx context.Context, texts []string) ([][]float32, error) {
			seen = append(seen, texts...)
			result := make([][]float32, len(texts))
			for i := range texts {
				result[i] = []float32{1.0, 0.0, 0.0}
			}
			return result, nil
		},
	}
	processor := NewBatchProcessor(embedRepo, embedder, 3, 10*time.Millisecond)

	pois, err := graphRepo.GetPOIs(ctx)
	require.NoError(t, err)
	require.NoError(t, processor.Process(ctx, pois))

	// The sauna has no description, so its name is embedded instead.
	assert.Contains(t, seen, "Kotiharju Sauna")
	assert.Contains(t, seen, "Second-hand bookshop near Kamppi")
}

func TestBatchProcessor_RetriesOnFailure(t *testing.T) {
	graphRepo, embedRepo := setupStores(t)
	ctx := context.Background()

	attempts := 0
	embedder := &mockEmbedder{
		embedTextsFunc: func(ctx context.Context, texts []string) ([][]float32, error) {
			attempts++
			if attempts < 3 {
				return nil, errors.New("transient API error")
			}
			result := make([][]float32, len(texts))
			for i := range texts {
				result[i] = []float32{1.0, 0.0, 0.0}
			}
			return result, nil
		},
	}
	processor := NewBatchProcessor(embedRepo, embedder, 5, 10*time.Millisecond)

	pois, err := graphRepo.GetPOIs(ctx)
	require.NoError(t, err)
	require.NoError(t, processor.Process(ctx, pois))
	assert.Equal(t, 3, attempts, "should retry until the embedder recovers")
}

func TestBatchProcessor_ExhaustedRetries(t *testing.T) {
	graphRepo, embedRepo := setupStores(t)
	ctx := context.Background()

	embedder := &mockEmbedder{
		embedTextsFunc: func(ctx context.Context, texts []string) ([][]float32, error) {
			return nil, errors.New("API down")
		},
	}
	processor := NewBatchProcessor(embedRepo, embedder, 2, 10*time.Millisecond)

	pois, err := graphRepo.GetPOIs(ctx)
	require.NoError(t, err)

	err = processor.Process(ctx, pois)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to generate embeddings")

	count, err := embedRepo.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count, "no vectors should land when embedding fails")
}

func TestBatchProcessor_CountMismatch(t *testing.T) {
	graphRepo, embedRepo := setupStores(t)
	ctx := context.Background()

	embedder := &mockEmbedder{
		embedTextsFunc: func(ctx context.Context, texts []string) ([][]float32, error) {
			return [][]float32{{1.0, 0.0, 0.0}}, nil // always one vector
		},
	}
	processor := NewBatchProcessor(embedRepo, embedder, 1, 10*time.Millisecond)

	pois, err := graphRepo.GetPOIs(ctx)
	require.NoError(t, err)

	err = processor.Process(ctx, pois)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "embedding count mismatch")
}
