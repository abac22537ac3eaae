package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/returnaddress/returnaddress-backend/internal/agentspec"
	"github.com/returnaddress/returnaddress-backend/internal/clients/openai"
)

// fakeLLM records the last request and returns a canned completion.
type fakeLLM struct {
	lastParams openai.CompletionParams
	reply      string
	tokens     int
	err        error
	calls      int
}

func (f *fakeLLM) Complete(_ context.Context, p openai.CompletionParams) (*openai.Completion, error) {
	f.calls++
	f.lastParams = p
	if f.err != nil {
		return nil, f.err
	}
	return &openai.Completion{Content: f.reply, TokensUsed: f.tokens}, nil
}

func TestRouterDispatchesOpenAI(t *testing.T) {
	f := newTestFixture(t)
	fake := &fakeLLM{reply: "hi there", tokens: 42}
	router := NewLLMRouter(f.log, fake, nil)

	model := agentspec.Model{
		Provider:    agentspec.ProviderOpenAI,
		ModelID:     "gpt-4.1-mini",
		Temperature: 0.3,
		MaxTokens:   512,
	}
	got, err := router.Complete(context.Background(), model, "system text", "user text")
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if got.Content != "hi there" || got.TokensUsed != 42 {
		t.Fatalf("unexpected completion %+v", got)
	}
	if fake.lastParams.ModelID != "gpt-4.1-mini" || fake.lastParams.MaxTokens != 512 {
		t.Fatalf("model settings not forwarded: %+v", fake.lastParams)
	}
	if fake.lastParams.System != "system text" || fake.lastParams.User != "user text" {
		t.Fatalf("messages not forwarded: %+v", fake.lastParams)
	}
}

func TestRouterRejectsUnknownProvider(t *testing.T) {
	f := newTestFixture(t)
	fake := &fakeLLM{reply: "should not be used"}
	router := NewLLMRouter(f.log, fake, nil)

	model := agentspec.Model{Provider: "anthropic", ModelID: "whatever"}
	_, err := router.Complete(context.Background(), model, "s", "u")
	if err == nil {
		t.Fatalf("expected error for unknown provider")
	}
	if !strings.Contains(err.Error(), `unsupported provider "anthropic"`) {
		t.Fatalf("unexpected error %v", err)
	}
	if fake.calls != 0 {
		t.Fatalf("fallback call happened for unknown provider")
	}
}

func TestRouterDoesNotRetry(t *testing.T) {
	f := newTestFixture(t)
	fake := &fakeLLM{err: errors.New("upstream down")}
	router := NewLLMRouter(f.log, fake, nil)

	model := agentspec.Model{Provider: agentspec.ProviderOpenAI, ModelID: "gpt-4.1-mini"}
	if _, err := router.Complete(context.Background(), model, "s", "u"); err == nil {
		t.Fatalf("expected upstream error to surface")
	}
	if fake.calls != 1 {
		t.Fatalf("expected exactly one attempt, got %d", fake.calls)
	}
}
