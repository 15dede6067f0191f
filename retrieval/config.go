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


package retrieval

import (
	"errors"
	"time"

	"github.com/citymuse/wayfinder/core"
)

// Config holds tuning parameters for hybrid retrieval.
type Config struct {
	// TopK is the number of ranked candidates returned by Retrieve.
	// Default: 10
	TopK int

	// MaxHops bounds graph expansion around each semantic hit.
	// Default: 2
	MaxHops int

	// RelKinds restricts which relationship kinds graph expansion follows.
	// Default: all kinds.
	RelKinds []core.RelKind

	// Alpha weighs semantic similarity against graph proximity in the
	// combined score: Combined = Alpha*Semantic + (1-Alpha)*Graph.
	// Must be between 0 and 1. Default: 0.7
	Alpha float64

	// Oversample multiplies TopK to size the initial semantic candidate
	// pool, so graph-adjacent candidates outside the strict semantic top-K
	// can still surface after blending. Default: 3
	Oversample int

	// MaxContextChars bounds the assembled context block passed to the
	// narrator. Default: 2000
	MaxContextChars int

	// EncodeTimeout bounds a single query embedding call. Default: 10s
	EncodeTimeout time.Duration

	// IndexTimeout bounds a single vector index query. Default: 5s
	IndexTimeout time.Duration

	// GraphTimeout bounds a single graph expansion call. Default: 5s
	GraphTimeout time.Duration

	// NarrateTimeout bounds a single narrative generation call. Default: 60s
	NarrateTimeout time.Duration

	// RetryDelay is the pause before the single retry each external call
	// gets. Default: 200ms
	RetryDelay time.Duration
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithTopK sets the number of results returned.
func WithTopK(k int) ConfigOption {
	return func(c *Config) {
		c.TopK = k
	}
}

// WithMaxHops sets the graph expansion hop bound.
func WithMaxHops(hops int) ConfigOption {
	return func(c *Config) {
		c.MaxHops = hops
	}
}

// WithRelKinds restricts graph expansion to the given relationship kinds.
func WithRelKinds(kinds ...core.RelKind) ConfigOption {
	return func(c *Config) {
		c.RelKinds = kinds
	}
}

// WithAlpha sets the semantic/graph blend weight.
func WithAlpha(alpha float64) ConfigOption {
	return func(c *Config) {
		c.Alpha = alpha
	}
}

// WithOversample sets the semantic oversampling factor.
func WithOversample(factor int) ConfigOption {
	return func(c *Config) {
		c.Oversample = factor
	}
}

// WithMaxContextChars sets the assembled context budget.
func WithMaxContextChars(chars int) ConfigOption {
	return func(c *Config) {
		c.MaxContextChars = chars
	}
}

// WithTimeouts sets the per-dependency call timeouts.
func WithTimeouts(encode, index, graph, narrate time.Duration) ConfigOption {
	return func(c *Config) {
		c.EncodeTimeout = encode
		c.IndexTimeout = index
		c.GraphTimeout = graph
		c.NarrateTimeout = narrate
	}
}

// WithRetryDelay sets the pause before the single retry of an external call.
func WithRetryDelay(delay time.Duration) ConfigOption {
	return func(c *Config) {
		c.RetryDelay = delay
	}
}

// DefaultConfig returns a Config with the default retrieval parameters.
func DefaultConfig() *Config {
	return &Config{
		TopK:            10,
		MaxHops:         2,
		RelKinds:        core.AllRelKinds(),
		Alpha:           0.7,
		Oversample:      3,
		MaxContextChars: 2000,
		EncodeTimeout:   10 * time.Second,
		IndexTimeout:    5 * time.Second,
		GraphTimeout:    5 * time.Second,
		NarrateTimeout:  60 * time.Second,
		RetryDelay:      200 * time.Millisecond,
	}
}

// NewConfig creates a Config with default values and applies the provided options.
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.TopK < 1 {
		return errors.New("retrieval config: TopK must be at least 1")
	}
	if c.MaxHops < 0 {
		return errors.New("retrieval config: MaxHops must not be negative")
	}
	if c.Alpha < 0 || c.Alpha > 1 {
		return errors.New("retrieval config: Alpha must be between 0 and 1")
	}
	if c.Oversample < 1 {
		return errors.New("retrieval config: Oversample must be at least 1")
	}
	if c.MaxContextChars < 0 {
		return errors.New("retrieval config: MaxContextChars must not be negative")
	}
	if c.EncodeTimeout <= 0 || c.IndexTimeout <= 0 || c.GraphTimeout <= 0 || c.NarrateTimeout <= 0 {
		return errors.New("retrieval config: timeouts must be positive")
	}
	if c.RetryDelay < 0 {
		return errors.New("retrieval config: RetryDelay must not be negative")
	}
	return nil
}
