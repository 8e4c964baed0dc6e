package services

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/custodia-labs/askdoc/internal/core/domain"
	"github.com/custodia-labs/askdoc/internal/core/ports/driven"
)

var errPromptNotFound = errors.New("prompt not found")

// mockIndex is an in-memory mock of driven.VectorIndex that counts
// calls and can be primed to fail.
type mockIndex struct {
	mu     sync.Mutex
	chunks map[string]domain.Chunk

	addErr    error
	hasErr    error
	queryErr  error
	countErr  error
	deleteErr error

	// addFailIDs makes Add fail for specific chunk IDs only.
	addFailIDs map[string]error

	queryCalls  int
	countCalls  int
	deleteCalls int
}

func newMockIndex() *mockIndex {
	return &mockIndex{chunks: make(map[string]domain.Chunk)}
}

func (m *mockIndex) Add(_ context.Context, chunk domain.Chunk) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.addErr != nil {
		return m.addErr
	}
	if err, ok := m.addFailIDs[chunk.ID]; ok {
		return err
	}
	if _, ok := m.chunks[chunk.ID]; ok {
		return domain.ErrAlreadyExists
	}
	m.chunks[chunk.ID] = chunk
	return nil
}

func (m *mockIndex) Has(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.hasErr != nil {
		return false, m.hasErr
	}
	_, ok := m.chunks[id]
	return ok, nil
}

func (m *mockIndex) Query(_ context.Context, _ string, k int) ([]domain.Chunk, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queryCalls++
	if m.queryErr != nil {
		return nil, m.queryErr
	}

	ids := make([]string, 0, len(m.chunks))
	for id := range m.chunks {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	if k > len(ids) {
		k = len(ids)
	}

	results := make([]domain.Chunk, 0, k)
	for _, id := range ids[:k] {
		results = append(results, m.chunks[id])
	}
	return results, nil
}

func (m *mockIndex) Count(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.countCalls++
	if m.countErr != nil {
		return 0, m.countErr
	}
	return len(m.chunks), nil
}

func (m *mockIndex) DeleteBySource(_ context.Context, source string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleteCalls++
	if m.deleteErr != nil {
		return m.deleteErr
	}
	for id, chunk := range m.chunks {
		if chunk.Source == source {
			delete(m.chunks, id)
		}
	}
	return nil
}

func (m *mockIndex) Close() error { return nil }

func (m *mockIndex) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.chunks)
}

// mockLLM is a mock of driven.LLMService. It returns a canned response
// and records the last prompt it was given.
type mockLLM struct {
	mu         sync.Mutex
	response   string
	err        error
	model      string
	lastPrompt string
	calls      int
}

func newMockLLM(response string) *mockLLM {
	return &mockLLM{response: response, model: "test-model"}
}

func (m *mockLLM) Generate(_ context.Context, prompt string, _ driven.GenerateOptions) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.lastPrompt = prompt
	if m.err != nil {
		return "", m.err
	}
	return m.response, nil
}

func (m *mockLLM) ModelName() string            { return m.model }
func (m *mockLLM) Ping(_ context.Context) error { return nil }
func (m *mockLLM) Close() error                 { return nil }

func (m *mockLLM) prompt() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastPrompt
}

// mockPromptStore serves fixed templates.
type mockPromptStore struct {
	prompts map[string]string
	err     error
}

func (m *mockPromptStore) Load(name string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	if p, ok := m.prompts[name]; ok {
		return p, nil
	}
	return "", errPromptNotFound
}

func (m *mockPromptStore) Reload() {}
