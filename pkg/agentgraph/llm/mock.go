package llm

import (
	"context"
	"sync"
)

// MockClient is a scripted Client for tests.
// Responses are returned in order, cycling when exhausted.
type MockClient struct {
	mu sync.Mutex

	responses []CompletionResponse
	next      int
	err       error
	fn        func(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)

	// Calls records every request received, in order.
	Calls []CompletionRequest
}

// NewMockClient creates a mock that always returns content.
func NewMockClient(content string) *MockClient {
	return &MockClient{
		responses: []CompletionResponse{{Content: content, FinishReason: "stop"}},
	}
}

// WithResponses replaces the scripted responses with plain-text contents.
func (m *MockClient) WithResponses(contents ...string) *MockClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = m.responses[:0]
	for _, c := range contents {
		m.responses = append(m.responses, CompletionResponse{Content: c, FinishReason: "stop"})
	}
	m.next = 0
	return m
}

// WithScriptedResponses replaces the scripted responses with full responses,
// allowing tool calls to be scripted.
func (m *MockClient) WithScriptedResponses(responses ...CompletionResponse) *MockClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = responses
	m.next = 0
	return m
}

// WithError makes every call fail with err.
func (m *MockClient) WithError(err error) *MockClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
	return m
}

// WithCompleteFunc overrides Complete with a custom function.
func (m *MockClient) WithCompleteFunc(fn func(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)) *MockClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fn = fn
	return m
}

// Complete implements Client.
func (m *MockClient) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, req)

	if m.err != nil {
		return nil, m.err
	}
	if m.fn != nil {
		return m.fn(ctx, req)
	}
	if len(m.responses) == 0 {
		return &CompletionResponse{FinishReason: "stop"}, nil
	}

	resp := m.responses[m.next%len(m.responses)]
	m.next++

	inTokens := 0
	for _, msg := range req.Messages {
		inTokens += approxTokens(msg.Content)
	}
	if inTokens == 0 {
		inTokens = 1
	}
	outTokens := approxTokens(resp.Content)
	if outTokens == 0 {
		outTokens = 1
	}
	resp.Usage = TokenUsage{
		InputTokens:  inTokens,
		OutputTokens: outTokens,
		TotalTokens:  inTokens + outTokens,
	}
	return &resp, nil
}

// CallCount returns the number of Complete calls received.
func (m *MockClient) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// LastCall returns the most recent request, or nil if none.
func (m *MockClient) LastCall() *CompletionRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Calls) == 0 {
		return nil
	}
	return &m.Calls[len(m.Calls)-1]
}

// Reset clears recorded calls and restarts the response script.
func (m *MockClient) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = nil
	m.next = 0
}

// approxTokens estimates tokens as words; good enough for tests.
func approxTokens(s string) int {
	n := 0
	inWord := false
	for _, r := range s {
		if r == ' ' || r == '\n' || r == '\t' {
			inWord = false
			continue
		}
		if !inWord {
			n++
			inWord = true
		}
	}
	return n
}
