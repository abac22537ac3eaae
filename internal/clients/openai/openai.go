// Package openai wraps the hosted chat completion API behind a small
// interface so the invocation pipeline can be tested without network calls.
package openai

import (
	"context"
	"errors"
	"fmt"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/returnaddress/returnaddress-backend/internal/platform/envutil"
	"github.com/returnaddress/returnaddress-backend/internal/platform/logger"
)

type CompletionParams struct {
	ModelID     string
	Temperature float64
	MaxTokens   int
	System      string
	User        string
}

type Completion struct {
	Content    string
	TokensUsed int
}

type Client interface {
	Complete(ctx context.Context, p CompletionParams) (*Completion, error)
}

type client struct {
	api *goopenai.Client
	log *logger.Logger
}

func NewClient(baseLog *logger.Logger) (Client, error) {
	apiKey := envutil.String("OPENAI_API_KEY", "")
	if apiKey == "" {
		return nil, errors.New("OPENAI_API_KEY is not set")
	}
	return &client{
		api: goopenai.NewClient(apiKey),
		log: baseLog.With("client", "OpenAIClient"),
	}, nil
}

func (c *client) Complete(ctx context.Context, p CompletionParams) (*Completion, error) {
	resp, err := c.api.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model:       p.ModelID,
		Temperature: float32(p.Temperature),
		MaxTokens:   p.MaxTokens,
		Messages: []goopenai.ChatCompletionMessage{
			{
				Role:    goopenai.ChatMessageRoleSystem,
				Content: p.System,
			},
			{
				Role:    goopenai.ChatMessageRoleUser,
				Content: p.User,
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("chat completion returned no choices")
	}

	return &Completion{
		Content:    resp.Choices[0].Message.Content,
		TokensUsed: resp.Usage.TotalTokens,
	}, nil
}
