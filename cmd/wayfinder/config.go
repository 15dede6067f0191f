package main

import (
	"fmt"
	"os"

	"github.com/citymuse/wayfinder/ingestion"
	"gopkg.in/yaml.v3"
)

// FileConfig is the optional YAML configuration file. Every field has a
// matching command-line flag; flags win when both are set.
type FileConfig struct {
	AI struct {
		EmbeddingHost  string  `yaml:"embedding_host"`
		EmbeddingModel string  `yaml:"embedding_model"`
		NarratorHost   string  `yaml:"narrator_host"`
		NarratorModel  string  `yaml:"narrator_model"`
		Temperature    float64 `yaml:"temperature"`
	} `yaml:"ai"`
	Retrieval struct {
		TopK            int      `yaml:"top_k"`
		MaxHops         int      `yaml:"max_hops"`
		Alpha           float64  `yaml:"alpha"`
		Oversample      int      `yaml:"oversample"`
		MaxContextChars int      `yaml:"max_context_chars"`
		RelKinds        []string `yaml:"relationship_kinds"`

		// Durations in Go syntax ("5s", "200ms")
		EncodeTimeout  string `yaml:"encode_timeout"`
		IndexTimeout   string `yaml:"index_timeout"`
		GraphTimeout   string `yaml:"graph_timeout"`
		NarrateTimeout string `yaml:"narrate_timeout"`
		RetryDelay     string `yaml:"retry_delay"`
	} `yaml:"retrieval"`
}

// LoadConfigFile parses a YAML configuration file.
func LoadConfigFile(path string) (*FileConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	var config FileConfig
	dec := yaml.NewDecoder(f)
	if err := dec.Decode(&config); err != nil {
		return nil, fmt.Errorf("failed to parse config YAML: %w", err)
	}
	return &config, nil
}

type poiEntry struct {
	ID          string   `yaml:"id"`
	Name        string   `yaml:"name"`
	Lat         float64  `yaml:"lat"`
	Lon         float64  `yaml:"lon"`
	Type        string   `yaml:"type"`
	Tags        []string `yaml:"tags"`
	Description string   `yaml:"description"`
}

// LoadPOIFile parses a YAML file holding a list of points of interest.
func LoadPOIFile(path string) ([]ingestion.POISource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open POI file: %w", err)
	}
	defer f.Close()

	var entries []poiEntry
	dec := yaml.NewDecoder(f)
	if err := dec.Decode(&entries); err != nil {
		return nil, fmt.Errorf("failed to parse POI YAML: %w", err)
	}

	sources := make([]ingestion.POISource, len(entries))
	for i, e := range entries {
		sources[i] = ingestion.POISource{
			ID:          e.ID,
			Name:        e.Name,
			Lat:         e.Lat,
			Lon:         e.Lon,
			Type:        e.Type,
			Tags:        e.Tags,
			Description: e.Description,
		}
	}
	return sources, nil
}
