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


package openai

import (
	"context"
	"log/slog"
	"strings"

	"github.com/citymuse/wayfinder/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// Narrator implements ai.Narrator using OpenAI-compatible chat APIs.
type Narrator struct {
	client      llms.Model
	temperature float64
	logger      *slog.Logger
}

// newNarrator is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newNarrator(config *ai.Config) (*Narrator, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	// Create OpenAI client configured for chat/generation
	// Use "none" as token for local OpenAI-compatible services that don't require authentication
	client, err := openai.New(
		openai.WithBaseURL(config.NarratorHost),
		openai.WithToken("none"),
		openai.WithModel(config.NarratorModel),
	)
	if err != nil {
		return nil, err
	}

	return &Narrator{
		client:      client,
		temperature: config.Temperature,
		logger:      slog.Default().With("component", "openai-narrator"),
	}, nil
}

// NewNarrator creates a new narrator using the provided configuration.
//
// Returns ai.Narrator interface to enforce abstraction.
func NewNarrator(config *ai.Config) (ai.Narrator, error) {
	return newNarrator(config)
}

// Narrate generates a guide-style answer to the query grounded in the
// assembled context block.
func (n *Narrator) Narrate(ctx context.Context, query string, contextBlock string) (string, error) {
	query = collapseWhitespace(query)

	content := []llms.MessageContent{
		{
			Role: llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{
				llms.TextPart(narratorSystemPrompt),
			},
		},
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.TextPart(buildUserPrompt(query, contextBlock)),
			},
		},
	}

	response, err := n.client.GenerateContent(ctx, content, llms.WithTemperature(n.temperature))
	if err != nil {
		n.logger.Error("failed to generate narrative", "err", err)
		return "", err
	}

	if len(response.Choices) < 1 {
		n.logger.Debug("no choices returned from model")
		return "", nil
	}

	return strings.TrimSpace(response.Choices[0].Content), nil
}
