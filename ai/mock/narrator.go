package mock

import (
	"context"
	"fmt"
	"strings"
)

// MockNarrator is a test double for ai.Narrator.
// It allows custom behavior injection via a function field.
type MockNarrator struct {
	// NarrateFunc is called by Narrate if set.
	// If nil, uses default deterministic behavior.
	NarrateFunc func(ctx context.Context, query string, contextBlock string) (string, error)

	callCount int
}

// NewMockNarrator creates a mock narrator with default deterministic behavior.
// Note: Returns concrete type to allow test assertions via GetMockNarrator().
func NewMockNarrator() *MockNarrator {
	return &MockNarrator{}
}

// Narrate returns a deterministic answer built from the query and the first
// line of the context block. Tests can inspect the output to verify that
// assembled context actually reached the narrator.
func (m *MockNarrator) Narrate(ctx context.Context, query string, contextBlock string) (string, error) {
	m.callCount++

	if m.NarrateFunc != nil {
		return m.NarrateFunc(ctx, query, contextBlock)
	}

	firstLine := contextBlock
	if idx := strings.IndexByte(contextBlock, '\n'); idx >= 0 {
		firstLine = contextBlock[:idx]
	}
	if firstLine == "" {
		return fmt.Sprintf("I could not find anything in the city data for %q.", query), nil
	}
	return fmt.Sprintf("For %q, start with: %s", query, firstLine), nil
}

// CallCount returns the number of times Narrate was called.
func (m *MockNarrator) CallCount() int {
	return m.callCount
}

// Reset clears the call count and injected behavior.
func (m *MockNarrator) Reset() {
	m.callCount = 0
	m.NarrateFunc = nil
}
