// Copyright 2025 Citymuse Contributors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/citymuse/wayfinder"
	"github.com/citymuse/wayfinder/ai"
	"github.com/citymuse/wayfinder/ai/openai"
	"github.com/citymuse/wayfinder/core"
	"github.com/citymuse/wayfinder/ingestion"
	"github.com/citymuse/wayfinder/reindex"
	"github.com/citymuse/wayfinder/retrieval"
	"github.com/citymuse/wayfinder/storage/badger"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "wayfinder",
		Usage: "Hybrid semantic and graph retrieval over city transit and places",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to YAML configuration file",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "load",
				Usage:  "Load a GTFS feed and POI file as a new snapshot",
				Action: loadCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "gtfs",
						Usage:    "Path to directory with GTFS static files",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "pois",
						Usage: "Path to YAML file with points of interest",
					},
					&cli.StringFlag{
						Name:  "feed-prefix",
						Usage: "Agency prefix stripped from GTFS ids",
						Value: "HSL:",
					},
					&cli.Float64Flag{
						Name:  "near-limit",
						Usage: "Maximum IS_NEAR link distance in meters",
						Value: 400,
					},
					&cli.StringFlag{
						Name:  "embedding-host",
						Usage: "Embedding service host URL",
						Value: "http://localhost:11434/v1",
					},
					&cli.StringFlag{
						Name:  "embedding-model",
						Usage: "Embedding model name",
					},
				},
			},
			{
				Name:      "query",
				Usage:     "Ask for places matching a free-text query",
				ArgsUsage: "<query words>",
				Action:    queryCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "embedding-host",
						Usage: "Embedding service host URL",
					},
					&cli.StringFlag{
						Name:  "embedding-model",
						Usage: "Embedding model name",
					},
					&cli.StringFlag{
						Name:  "narrator-host",
						Usage: "Narrator service host URL",
					},
					&cli.StringFlag{
						Name:  "narrator-model",
						Usage: "Narrator model name",
					},
					&cli.IntFlag{
						Name:  "top-k",
						Usage: "Maximum number of ranked places",
					},
					&cli.Float64Flag{
						Name:  "alpha",
						Usage: "Semantic weight in the blended score (0..1)",
					},
					&cli.BoolFlag{
						Name:  "no-narrative",
						Usage: "Print ranked places only, skip narrative generation",
					},
				},
			},
			{
				Name:   "reindex",
				Usage:  "Re-embed all place descriptions with a new embedding model",
				Action: reindexCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "embedding-host",
						Usage: "Embedding service host URL",
						Value: "http://localhost:11434/v1",
					},
					&cli.StringFlag{
						Name:     "embedding-model",
						Usage:    "Embedding model name",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of places to process in each batch",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N places",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for failed operations",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// fileConfig loads the --config file when given, otherwise returns an empty
// config so lookups fall through to flag values and package defaults.
func fileConfig(c *cli.Context) (*FileConfig, error) {
	path := c.String("config")
	if path == "" {
		return &FileConfig{}, nil
	}
	return LoadConfigFile(path)
}

// buildAIConfig merges the config file and flags, flags winning.
func buildAIConfig(c *cli.Context, file *FileConfig) (*ai.Config, error) {
	var opts []ai.ConfigOption
	if file.AI.EmbeddingHost != "" {
		opts = append(opts, ai.WithEmbeddingHost(file.AI.EmbeddingHost))
	}
	if file.AI.NarratorHost != "" {
		opts = append(opts, ai.WithNarratorHost(file.AI.NarratorHost))
	}
	if file.AI.EmbeddingModel != "" {
		opts = append(opts, ai.WithEmbeddingModel(file.AI.EmbeddingModel))
	}
	if file.AI.NarratorModel != "" {
		opts = append(opts, ai.WithNarratorModel(file.AI.NarratorModel))
	}
	if file.AI.Temperature != 0 {
		opts = append(opts, ai.WithTemperature(file.AI.Temperature))
	}
	if c.IsSet("embedding-host") {
		opts = append(opts, ai.WithEmbeddingHost(c.String("embedding-host")))
	}
	if c.IsSet("embedding-model") {
		opts = append(opts, ai.WithEmbeddingModel(c.String("embedding-model")))
	}
	if c.IsSet("narrator-host") {
		opts = append(opts, ai.WithNarratorHost(c.String("narrator-host")))
	}
	if c.IsSet("narrator-model") {
		opts = append(opts, ai.WithNarratorModel(c.String("narrator-model")))
	}

	config := ai.NewConfig(opts...)
	config.Normalize()
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid AI configuration: %w", err)
	}
	return config, nil
}

// applyFileRetrieval folds the config file's retrieval section into config.
// Absent fields keep their defaults.
func applyFileRetrieval(config *retrieval.Config, file *FileConfig) error {
	if file.Retrieval.TopK > 0 {
		config.TopK = file.Retrieval.TopK
	}
	if file.Retrieval.MaxHops > 0 {
		config.MaxHops = file.Retrieval.MaxHops
	}
	if file.Retrieval.Alpha > 0 {
		config.Alpha = file.Retrieval.Alpha
	}
	if file.Retrieval.Oversample > 0 {
		config.Oversample = file.Retrieval.Oversample
	}
	if file.Retrieval.MaxContextChars > 0 {
		config.MaxContextChars = file.Retrieval.MaxContextChars
	}

	if len(file.Retrieval.RelKinds) > 0 {
		kinds := make([]core.RelKind, len(file.Retrieval.RelKinds))
		for i, name := range file.Retrieval.RelKinds {
			kind, err := core.ParseRelKind(name)
			if err != nil {
				return fmt.Errorf("relationship_kinds: %w: %q", err, name)
			}
			kinds[i] = kind
		}
		config.RelKinds = kinds
	}

	durations := []struct {
		value  string
		name   string
		target *time.Duration
	}{
		{file.Retrieval.EncodeTimeout, "encode_timeout", &config.EncodeTimeout},
		{file.Retrieval.IndexTimeout, "index_timeout", &config.IndexTimeout},
		{file.Retrieval.GraphTimeout, "graph_timeout", &config.GraphTimeout},
		{file.Retrieval.NarrateTimeout, "narrate_timeout", &config.NarrateTimeout},
		{file.Retrieval.RetryDelay, "retry_delay", &config.RetryDelay},
	}
	for _, d := range durations {
		if d.value == "" {
			continue
		}
		parsed, err := time.ParseDuration(d.value)
		if err != nil {
			return fmt.Errorf("%s: %w", d.name, err)
		}
		*d.target = parsed
	}

	return nil
}

// buildRetrievalConfig merges the config file and flags, flags winning.
func buildRetrievalConfig(c *cli.Context, file *FileConfig) (*retrieval.Config, error) {
	config := retrieval.DefaultConfig()
	if err := applyFileRetrieval(config, file); err != nil {
		return nil, err
	}
	if c.IsSet("top-k") {
		config.TopK = c.Int("top-k")
	}
	if c.IsSet("alpha") {
		config.Alpha = c.Float64("alpha")
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid retrieval configuration: %w", err)
	}
	return config, nil
}

func loadCommand(c *cli.Context) error {
	ctx := context.Background()

	file, err := fileConfig(c)
	if err != nil {
		return err
	}
	aiConfig, err := buildAIConfig(c, file)
	if err != nil {
		return err
	}

	loader := ingestion.NewGTFSLoader(ingestion.WithFeedPrefix(c.String("feed-prefix")))
	feed, err := loader.Load(c.String("gtfs"))
	if err != nil {
		return fmt.Errorf("failed to load GTFS feed: %w", err)
	}

	var sources []ingestion.POISource
	if poiPath := c.String("pois"); poiPath != "" {
		sources, err = LoadPOIFile(poiPath)
		if err != nil {
			return err
		}
	}

	engine, err := wayfinder.NewEngine(c.String("db"), wayfinder.WithAIConfig(aiConfig))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer engine.Close()

	pipeline, err := engine.NewIngestionPipeline(
		ingestion.WithNearLimit(c.Float64("near-limit")))
	if err != nil {
		return fmt.Errorf("failed to create pipeline: %w", err)
	}
	defer pipeline.Release()

	fmt.Fprintf(os.Stderr, "Loading %d routes, %d stops, %d places into %s\n",
		len(feed.Routes), len(feed.Stops), len(sources), c.String("db"))

	if err := pipeline.Load(ctx, feed, sources); err != nil {
		return fmt.Errorf("snapshot load failed: %w", err)
	}

	fmt.Fprintln(os.Stderr, "Snapshot loaded")
	return nil
}

func queryCommand(c *cli.Context) error {
	ctx := context.Background()

	query := strings.Join(c.Args().Slice(), " ")
	if strings.TrimSpace(query) == "" {
		return fmt.Errorf("query text is required")
	}

	file, err := fileConfig(c)
	if err != nil {
		return err
	}
	aiConfig, err := buildAIConfig(c, file)
	if err != nil {
		return err
	}
	retrievalConfig, err := buildRetrievalConfig(c, file)
	if err != nil {
		return err
	}

	engine, err := wayfinder.NewEngine(c.String("db"),
		wayfinder.WithAIConfig(aiConfig),
		wayfinder.WithRetrievalConfig(retrievalConfig))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer engine.Close()

	if c.Bool("no-narrative") {
		result, err := engine.Retrieve(ctx, query)
		if err != nil {
			return err
		}
		printCandidates(result)
		return nil
	}

	itinerary, err := engine.Itinerary(ctx, query)
	if err != nil {
		// A failed narrator still leaves a usable ranking
		if itinerary != nil {
			printCandidates(itinerary.Retrieval)
		}
		return err
	}

	printCandidates(itinerary.Retrieval)
	fmt.Println()
	fmt.Println(itinerary.Narrative)
	return nil
}

func printCandidates(result *retrieval.Result) {
	if result.Degraded {
		fmt.Println("(graph unavailable, semantic ranking only)")
	}
	fmt.Printf("Found %d places\n", len(result.Candidates))
	for i, candidate := range result.Candidates {
		fmt.Printf("%d: %s (%s)[%0.3f]\n",
			i, candidate.Node.Name, candidate.Node.Kind, candidate.CombinedScore)
	}
}

func reindexCommand(c *cli.Context) error {
	ctx := context.Background()

	// Open database
	backend, err := badger.OpenBackend(c.String("db"), false)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer backend.Close()

	graphRepo, err := badger.NewGraphRepository(backend)
	if err != nil {
		return fmt.Errorf("failed to create graph repository: %w", err)
	}
	defer graphRepo.Close()

	embedRepo, err := badger.NewEmbeddingRepository(backend)
	if err != nil {
		return fmt.Errorf("failed to create embedding repository: %w", err)
	}
	defer embedRepo.Close()

	// Create AI config
	aiConfig := ai.NewConfig(
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
	)
	if err := aiConfig.Validate(); err != nil {
		return fmt.Errorf("invalid AI configuration: %w", err)
	}

	embedder, err := openai.NewEmbedder(aiConfig)
	if err != nil {
		return fmt.Errorf("failed to create embedder: %w", err)
	}

	reindexConfig := &reindex.Config{
		BatchSize:      c.Int("batch-size"),
		ReportInterval: c.Int("report-interval"),
		MaxRetries:     c.Int("max-retries"),
		RetryDelay:     c.Duration("retry-delay"),
	}

	// Validate config
	if reindexConfig.BatchSize <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}
	if reindexConfig.ReportInterval <= 0 {
		return fmt.Errorf("report-interval must be greater than 0")
	}
	if reindexConfig.MaxRetries <= 0 {
		return fmt.Errorf("max-retries must be greater than 0")
	}

	reindexer := reindex.NewReindexer(graphRepo, embedRepo, embedder, reindexConfig, os.Stderr)

	fmt.Fprintf(os.Stderr, "Database: %s\n", c.String("db"))
	fmt.Fprintf(os.Stderr, "Embedding host: %s\n", c.String("embedding-host"))
	fmt.Fprintf(os.Stderr, "Embedding model: %s\n", c.String("embedding-model"))
	fmt.Fprintln(os.Stderr)

	if err := reindexer.Run(ctx); err != nil {
		return fmt.Errorf("reindex failed: %w", err)
	}

	return nil
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
