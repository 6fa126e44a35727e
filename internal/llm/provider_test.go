package llm

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
)

func TestMockProvider_ReturnsCannedResponses(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(`{"a":1}`), Usage: Usage{InputTokens: 10, OutputTokens: 5, TotalTokens: 15}},
		MockResponse{Content: json.RawMessage(`{"b":2}`)},
	)

	resp, err := mock.Generate(context.Background(), UserRequest("", "first", nil, 64))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(resp.Content) != `{"a":1}` {
		t.Fatalf("got %s, want {\"a\":1}", resp.Content)
	}
	if resp.Usage.InputTokens != 10 {
		t.Fatalf("expected 10 input tokens, got %d", resp.Usage.InputTokens)
	}

	resp, err = mock.Generate(context.Background(), UserRequest("", "second", nil, 64))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(resp.Content) != `{"b":2}` {
		t.Fatalf("got %s, want {\"b\":2}", resp.Content)
	}

	last, ok := mock.LastCall()
	if !ok || last.Messages[0].Content != "second" {
		t.Fatalf("unexpected last call: %+v", last)
	}
}

func TestMockProvider_EmptyQueueReturnsError(t *testing.T) {
	mock := NewMockProvider()
	_, err := mock.Generate(context.Background(), Request{})

	var unavail *ErrProviderUnavailable
	if !errors.As(err, &unavail) {
		t.Fatalf("expected ErrProviderUnavailable, got %v", err)
	}
	if mock.CallCount() != 1 {
		t.Fatalf("expected 1 call, got %d", mock.CallCount())
	}
}

func TestMockProvider_ValidatesAgainstSchema(t *testing.T) {
	schema := &Schema{
		Name: "mock-test-schema",
		Definition: map[string]any{
			"type":       "object",
			"properties": map[string]any{"hint": map[string]any{"type": "string"}},
			"required":   []string{"hint"},
		},
	}
	mock := NewMockProvider(MockResponse{Content: json.RawMessage(`{"nope":true}`)})

	_, err := mock.Generate(context.Background(), Request{Schema: schema})
	var inv *ErrInvalidResponse
	if !errors.As(err, &inv) {
		t.Fatalf("expected ErrInvalidResponse, got %v", err)
	}
}

func TestPurposeContext(t *testing.T) {
	ctx := context.Background()
	if got := PurposeFrom(ctx); got != "unknown" {
		t.Errorf("PurposeFrom(empty) = %q, want unknown", got)
	}
	ctx = WithPurpose(ctx, PurposeHint)
	if got := PurposeFrom(ctx); got != PurposeHint {
		t.Errorf("PurposeFrom = %q, want %q", got, PurposeHint)
	}
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{&ErrProviderUnavailable{}, "LLM provider unavailable"},
		{&ErrProviderUnavailable{Err: errors.New("dns")}, "LLM provider unavailable: dns"},
		{&ErrMaxTokensExceeded{}, "LLM response truncated: max tokens exceeded"},
		{&ErrInvalidResponse{Err: errors.New("bad")}, "invalid LLM response: bad"},
	}
	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
}
