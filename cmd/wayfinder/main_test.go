package main

import (
	"flag"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/citymuse/wayfinder/core"
	"github.com/citymuse/wayfinder/retrieval"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func TestSetupLogger(t *testing.T) {
	newContext := func(level string) *cli.Context {
		set := flag.NewFlagSet("test", flag.ContinueOnError)
		set.String("log-level", level, "")
		return cli.NewContext(cli.NewApp(), set, nil)
	}

	t.Run("accepts known levels", func(t *testing.T) {
		for _, level := range []string{"debug", "info", "warn", "error", "WARN"} {
			assert.NoError(t, setupLogger(newContext(level)), level)
		}
	})

	t.Run("rejects unknown level", func(t *testing.T) {
		err := setupLogger(newContext("verbose"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid log level")
	})
}

func TestLoadConfigFile(t *testing.T) {
	t.Run("parses ai and retrieval sections", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		content := `ai:
  embedding_host: http://embed.local/v1
  embedding_model: embeddinggemma
  narrator_model: qwen2.5:3b
  temperature: 0.4
retrieval:
  top_k: 5
  alpha: 0.9
  max_context_chars: 1500
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))

		config, err := LoadConfigFile(path)
		require.NoError(t, err)
		assert.Equal(t, "http://embed.local/v1", config.AI.EmbeddingHost)
		assert.Equal(t, "embeddinggemma", config.AI.EmbeddingModel)
		assert.Equal(t, 0.4, config.AI.Temperature)
		assert.Equal(t, 5, config.Retrieval.TopK)
		assert.Equal(t, 0.9, config.Retrieval.Alpha)
		assert.Equal(t, 1500, config.Retrieval.MaxContextChars)
	})

	t.Run("parses relationship kinds and timeouts", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		content := `retrieval:
  relationship_kinds: [IS_NEAR, SERVES]
  graph_timeout: 2s
  narrate_timeout: 90s
  retry_delay: 50ms
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))

		file, err := LoadConfigFile(path)
		require.NoError(t, err)

		config := retrieval.DefaultConfig()
		require.NoError(t, applyFileRetrieval(config, file))
		assert.Equal(t, []core.RelKind{core.RelIsNear, core.RelServes}, config.RelKinds)
		assert.Equal(t, 2*time.Second, config.GraphTimeout)
		assert.Equal(t, 90*time.Second, config.NarrateTimeout)
		assert.Equal(t, 50*time.Millisecond, config.RetryDelay)
		// Untouched fields keep their defaults
		assert.Equal(t, 10*time.Second, config.EncodeTimeout)
	})

	t.Run("rejects unknown relationship kind", func(t *testing.T) {
		file := &FileConfig{}
		file.Retrieval.RelKinds = []string{"TELEPORTS_TO"}

		err := applyFileRetrieval(retrieval.DefaultConfig(), file)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "TELEPORTS_TO")
	})

	t.Run("rejects malformed duration", func(t *testing.T) {
		file := &FileConfig{}
		file.Retrieval.IndexTimeout = "five seconds"

		err := applyFileRetrieval(retrieval.DefaultConfig(), file)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "index_timeout")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadConfigFile(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("ai: ["), 0644))

		_, err := LoadConfigFile(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to parse config YAML")
	})
}

func TestLoadPOIFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pois.yaml")
	content := `- id: book
  name: Arkadia Bookshop
  lat: 60.1690
  lon: 24.9320
  type: bookshop
  tags: [books, antiques]
  description: cozy second-hand bookshop
- id: cafe
  name: Cafe Regatta
  lat: 60.1770
  lon: 24.9120
  type: cafe
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	sources, err := LoadPOIFile(path)
	require.NoError(t, err)
	require.Len(t, sources, 2)

	assert.Equal(t, "book", sources[0].ID)
	assert.Equal(t, []string{"books", "antiques"}, sources[0].Tags)
	assert.Equal(t, "cozy second-hand bookshop", sources[0].Description)

	assert.Equal(t, "cafe", sources[1].ID)
	assert.Empty(t, sources[1].Description, "description stays empty until enrichment defaults it")
}
