package llm

import (
	"context"
	"sync"
)

// FakeClient is a canned-response Client for tests and offline runs. It
// replays Responses in order, then repeats the last one.
type FakeClient struct {
	// Responses are the canned replies, consumed in order.
	Responses []string

	// Err, when set, is returned by every Complete call.
	Err error

	mu       sync.Mutex
	calls    int
	requests []CompletionRequest
}

// A compile-time check that FakeClient satisfies Client.
var _ Client = (*FakeClient)(nil)

// NewFakeClient creates a fake that replays the given responses.
func NewFakeClient(responses ...string) *FakeClient {
	return &FakeClient{Responses: responses}
}

// Name identifies the backing provider.
func (f *FakeClient) Name() string { return "fake" }

// Complete records the request and replays the next canned response.
func (f *FakeClient) Complete(_ context.Context,
	req CompletionRequest) (CompletionResponse, error) {

	f.mu.Lock()
	defer f.mu.Unlock()

	f.requests = append(f.requests, req)

	if f.Err != nil {
		return CompletionResponse{}, f.Err
	}

	if len(f.Responses) == 0 {
		return CompletionResponse{}, nil
	}

	idx := f.calls
	if idx >= len(f.Responses) {
		idx = len(f.Responses) - 1
	}
	f.calls++

	return CompletionResponse{
		Content:    f.Responses[idx],
		TokensUsed: len(f.Responses[idx]),
	}, nil
}

// Requests returns a copy of every request seen so far.
func (f *FakeClient) Requests() []CompletionRequest {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]CompletionRequest, len(f.requests))
	copy(out, f.requests)

	return out
}
