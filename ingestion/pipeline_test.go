package ingestion

import (
	"context"
	"errors"
	"testing"

	"github.com/citymuse/wayfinder/ai/mock"
	"github.com/citymuse/wayfinder/core"
	"github.com/citymuse/wayfinder/storage"
	"github.com/citymuse/wayfinder/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFeed() *GTFSFeed {
	return &GTFSFeed{
		Routes: []*core.Node{
			{ID: "1004", Kind: core.NodeKindRoute, Name: "4", Mode: "TRAM"},
		},
		Stops: []*core.Node{
			{ID: "S1", Kind: core.NodeKindStop, Name: "Kamppi", Lat: 60.1688, Lon: 24.9310},
		},
		Edges: []*core.Edge{
			{Source: core.NodeRef{Kind: core.NodeKindRoute, ID: "1004"},
				Target: core.NodeRef{Kind: core.NodeKindStop, ID: "S1"},
				Kind:   core.RelServes},
		},
	}
}

func TestNewPipeline(t *testing.T) {
	_, _, backend, err := badger.NewMemoryStores()
	require.NoError(t, err)
	defer backend.Close()

	provider := mock.NewMockProvider()

	t.Run("valid configuration", func(t *testing.T) {
		pipeline, err := NewPipeline(backend, provider)
		require.NoError(t, err)
		defer pipeline.Release()
		assert.NotNil(t, pipeline)
	})

	t.Run("with options", func(t *testing.T) {
		pipeline, err := NewPipeline(backend, provider,
			WithPoolSize(2), WithNearLimit(800), WithLogger(nil))
		require.NoError(t, err)
		defer pipeline.Release()
		assert.NotNil(t, pipeline)
	})

	t.Run("invalid near limit", func(t *testing.T) {
		_, err := NewPipeline(backend, provider, WithNearLimit(0))
		assert.Error(t, err)
	})

	t.Run("nil loader", func(t *testing.T) {
		_, err := NewPipeline(nil, provider)
		assert.Equal(t, ErrSnapshotLoaderRequired, err)
	})

	t.Run("nil provider", func(t *testing.T) {
		_, err := NewPipeline(backend, nil)
		assert.Equal(t, ErrAIProviderRequired, err)
	})
}

func TestPipelineLoad(t *testing.T) {
	graphRepo, embedRepo, backend, err := badger.NewMemoryStores()
	require.NoError(t, err)
	defer backend.Close()

	pipeline, err := NewPipeline(backend, mock.NewMockProvider())
	require.NoError(t, err)
	defer pipeline.Release()

	sources := []POISource{
		{ID: "book", Name: "Arkadia Bookshop", Lat: 60.1690, Lon: 24.9320, Type: "bookshop"},
		{ID: "island", Name: "Suomenlinna", Lat: 60.1454, Lon: 24.9881, Type: "fortress"},
	}

	ctx := context.Background()
	require.NoError(t, pipeline.Load(ctx, testFeed(), sources))

	// All node kinds landed
	stop, err := graphRepo.GetNode(ctx, core.NodeKindStop, "S1")
	require.NoError(t, err)
	assert.Equal(t, "Kamppi", stop.Name)

	route, err := graphRepo.GetNode(ctx, core.NodeKindRoute, "1004")
	require.NoError(t, err)
	assert.Equal(t, "TRAM", route.Mode)

	pois, err := graphRepo.GetPOIs(ctx)
	require.NoError(t, err)
	require.Len(t, pois, 2)
	assert.Equal(t, "Arkadia Bookshop (bookshop)", pois[0].Description)

	// One vector per POI
	count, err := embedRepo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	// The bookshop sits within the near limit of Kamppi, the island does not
	neighbors, err := graphRepo.Neighbors(ctx, core.NodeKindPOI, "book", 1, []core.RelKind{core.RelIsNear})
	require.NoError(t, err)
	require.Len(t, neighbors, 1)
	assert.Equal(t, "S1", neighbors[0].Node.ID)

	islandNeighbors, err := graphRepo.Neighbors(ctx, core.NodeKindPOI, "island", 1, []core.RelKind{core.RelIsNear})
	require.NoError(t, err)
	assert.Empty(t, islandNeighbors)
}

func TestPipelineLoad_RejectsInvalidBatch(t *testing.T) {
	graphRepo, embedRepo, backend, err := badger.NewMemoryStores()
	require.NoError(t, err)
	defer backend.Close()

	pipeline, err := NewPipeline(backend, mock.NewMockProvider())
	require.NoError(t, err)
	defer pipeline.Release()

	ctx := context.Background()
	sources := []POISource{
		{ID: "", Name: "Nameless", Lat: 60.17, Lon: 24.93, Type: "mystery"},
	}

	err = pipeline.Load(ctx, testFeed(), sources)
	assert.ErrorIs(t, err, storage.ErrInvalidBatch)

	// Nothing was committed
	pois, err := graphRepo.GetPOIs(ctx)
	require.NoError(t, err)
	assert.Empty(t, pois)
	count, err := embedRepo.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestPipelineLoad_EmbedderFailure(t *testing.T) {
	_, _, backend, err := badger.NewMemoryStores()
	require.NoError(t, err)
	defer backend.Close()

	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return nil, errors.New("model not loaded")
	}
	provider := mock.NewMockProviderWithServices(embedder, mock.NewMockNarrator())

	pipeline, err := NewPipeline(backend, provider)
	require.NoError(t, err)
	defer pipeline.Release()

	err = pipeline.Load(context.Background(), testFeed(), []POISource{
		{ID: "p", Name: "P", Lat: 60.17, Lon: 24.93, Type: "park"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model not loaded")
}

func TestPipelineLoad_EmptySources(t *testing.T) {
	graphRepo, _, backend, err := badger.NewMemoryStores()
	require.NoError(t, err)
	defer backend.Close()

	pipeline, err := NewPipeline(backend, mock.NewMockProvider())
	require.NoError(t, err)
	defer pipeline.Release()

	ctx := context.Background()
	require.NoError(t, pipeline.Load(ctx, testFeed(), nil))

	_, err = graphRepo.GetNode(ctx, core.NodeKindStop, "S1")
	require.NoError(t, err)
	pois, err := graphRepo.GetPOIs(ctx)
	require.NoError(t, err)
	assert.Empty(t, pois)
}
