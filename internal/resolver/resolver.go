// Package resolver answers free-text country names with ISO codes using an
// OpenAI chat completion model.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/JonMunkholm/erpimport/internal/core"
)

// DefaultModel is the chat model used when none is configured.
const DefaultModel = openai.GPT4oMini

// ErrNoAPIKey is returned by New without a credential.
var ErrNoAPIKey = errors.New("resolver: no API key")

// Config configures the resolver.
type Config struct {
	APIKey  string
	Model   string
	BaseURL string // Optional, for OpenAI compatible gateways
	Timeout time.Duration
}

// Resolver implements core.CountryResolver.
type Resolver struct {
	client  *openai.Client
	model   string
	timeout time.Duration
}

// New creates a resolver. It fails without an API key so callers can leave
// the core resolver unset, which aborts batches with ErrMissingCredential.
func New(cfg Config) (*Resolver, error) {
	if cfg.APIKey == "" {
		return nil, ErrNoAPIKey
	}
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	return &Resolver{
		client:  openai.NewClientWithConfig(oc),
		model:   model,
		timeout: cfg.Timeout,
	}, nil
}

// ResolveCountry asks the model for the ISO code of name. The raw answer is
// returned untouched; judging it is up to the caller.
func (r *Resolver) ResolveCountry(ctx context.Context, name string) (string, int, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	resp, err := r.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: r.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: core.ResolverPrompt(name)},
		},
		Temperature: 0,
	})
	if err != nil {
		return "", 0, fmt.Errorf("resolver: chat completion: %w", err)
	}

	tokens := resp.Usage.TotalTokens
	if len(resp.Choices) == 0 {
		return "", tokens, nil
	}
	return resp.Choices[0].Message.Content, tokens, nil
}

var _ core.CountryResolver = (*Resolver)(nil)
