// Package llm wraps OpenAI-compatible chat completion APIs behind the
// reasoning-capability contract the predictor consumes: one prompt in, one
// free-text answer out, with retries and prompt truncation handled here.
package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/charmbracelet/log"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/pkoukk/tiktoken-go"
)

const systemPrompt = "You are a helpful assistant who predicts a user's next location."

// Config controls one client instance.
type Config struct {
	Model    string // short alias, see ModelAliases
	Platform Platform

	MaxTokens      int64
	MaxInputTokens int
	Temperature    float64

	// Retry budget: randomized exponential backoff between WaitMin and
	// WaitMax, at most MaxAttempts calls.
	WaitMin     time.Duration
	WaitMax     time.Duration
	MaxAttempts uint64
}

// DefaultConfig mirrors the deterministic low-temperature setup the
// prediction prompts are written for.
func DefaultConfig(model string, platform Platform) Config {
	return Config{
		Model:          model,
		Platform:       platform,
		MaxTokens:      1000,
		MaxInputTokens: 2000,
		Temperature:    0,
		WaitMin:        3 * time.Second,
		WaitMax:        60 * time.Second,
		MaxAttempts:    10,
	}
}

// Client is a reasoning-capability client bound to one model/platform pair.
type Client struct {
	cfg      Config
	apiModel string
	api      *openai.Client
	logger   *log.Logger
	encoder  *tiktoken.Tiktoken
}

// New resolves the platform, builds the underlying API client, and prepares
// the tokenizer used for input truncation.
func New(logger *log.Logger, cfg Config) (*Client, error) {
	platform, err := ResolvePlatform(cfg.Model, cfg.Platform)
	if err != nil {
		return nil, err
	}
	cfg.Platform = platform

	apiModel, ok := ModelAliases[cfg.Model]
	if !ok {
		return nil, fmt.Errorf("no API model name for alias %q", cfg.Model)
	}

	key, err := APIKey(platform)
	if err != nil {
		return nil, err
	}

	opts := []option.RequestOption{option.WithAPIKey(key)}
	if base := BaseURL(platform); base != "" {
		opts = append(opts, option.WithBaseURL(base))
	}
	api := openai.NewClient(opts...)

	c := &Client{
		cfg:      cfg,
		apiModel: apiModel,
		api:      &api,
		logger:   logger,
	}

	// Tokenizer download can fail offline; truncation then falls back to
	// a character estimate.
	if enc, err := tiktoken.GetEncoding("cl100k_base"); err == nil {
		c.encoder = enc
	} else {
		logger.Warn("tokenizer unavailable, using character-based truncation", "error", err)
	}
	return c, nil
}

// Model returns the short model alias this client serves.
func (c *Client) Model() string { return c.cfg.Model }

// PlatformName returns the resolved platform.
func (c *Client) PlatformName() Platform { return c.cfg.Platform }

// Respond sends one prompt and returns the raw completion text. Over-length
// prompts are truncated to a trailing token window first. The call retries
// with randomized exponential backoff until the attempt budget is
// exhausted, then returns the final error.
func (c *Client) Respond(ctx context.Context, promptText string) (string, error) {
	promptText = c.truncate(promptText)

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.cfg.WaitMin
	bo.MaxInterval = c.cfg.WaitMax
	bo.MaxElapsedTime = 0 // bounded by attempt count, not wall clock

	var answer string
	attempt := 0
	op := func() error {
		attempt++
		resp, err := c.api.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
			Model: openai.ChatModel(c.apiModel),
			Messages: []openai.ChatCompletionMessageParamUnion{
				openai.SystemMessage(systemPrompt),
				openai.UserMessage(promptText),
			},
			MaxTokens:   openai.Int(c.cfg.MaxTokens),
			Temperature: openai.Float(c.cfg.Temperature),
		})
		if err != nil {
			c.logger.Warn("completion attempt failed",
				"model", c.cfg.Model, "platform", c.cfg.Platform,
				"attempt", attempt, "error", err)
			return err
		}
		if len(resp.Choices) == 0 {
			return fmt.Errorf("completion returned no choices")
		}
		answer = resp.Choices[0].Message.Content
		return nil
	}

	retries := uint64(0)
	if c.cfg.MaxAttempts > 1 {
		retries = c.cfg.MaxAttempts - 1
	}
	if err := backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(bo, retries), ctx)); err != nil {
		return "", fmt.Errorf("completion failed after %d attempts: %w", attempt, err)
	}
	return answer, nil
}

// truncate keeps the trailing MaxInputTokens tokens of the prompt. The tail
// carries the instructions and the most recent stays, so it is the part
// worth keeping.
func (c *Client) truncate(text string) string {
	if c.cfg.MaxInputTokens <= 0 {
		return text
	}
	if c.encoder == nil {
		maxChars := c.cfg.MaxInputTokens * 3
		if len(text) > maxChars {
			return text[len(text)-maxChars:]
		}
		return text
	}
	tokens := c.encoder.Encode(text, nil, nil)
	if len(tokens) <= c.cfg.MaxInputTokens {
		return text
	}
	return c.encoder.Decode(tokens[len(tokens)-c.cfg.MaxInputTokens:])
}
