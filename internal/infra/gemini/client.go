// Package gemini is the AI gateway: lesson generation, roleplay replies,
// roleplay scoring and puzzle hints on the Gemini API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

var (
	ErrEmptyResponse     = errors.New("model returned no content")
	ErrMalformedResponse = errors.New("model returned malformed content")
)

const (
	opLesson   = "lesson"
	opRoleplay = "roleplay"
	opEvaluate = "evaluate"
	opHint     = "hint"
)

// Models is the subset of *genai.Models the gateway calls.
type Models interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Observer receives the latency and outcome of every call.
type Observer interface {
	ObserveGateway(op string, started time.Time, err error)
}

type Config struct {
	APIKey  string
	Model   string
	Timeout time.Duration
}

// Client issues one request per operation. It never retries.
type Client struct {
	models   Models
	model    string
	timeout  time.Duration
	observer Observer
	logger   *zap.Logger
}

// New connects to the Gemini API.
func New(ctx context.Context, cfg Config, observer Observer, logger *zap.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini api key is empty")
	}

	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return NewWithModels(gc.Models, cfg, observer, logger), nil
}

// NewWithModels builds a client on an existing model service.
func NewWithModels(models Models, cfg Config, observer Observer, logger *zap.Logger) *Client {
	if cfg.Model == "" {
		cfg.Model = "gemini-2.5-flash"
	}
	return &Client{
		models:   models,
		model:    cfg.Model,
		timeout:  cfg.Timeout,
		observer: observer,
		logger:   logger.Named("gemini"),
	}
}

// generate runs a single request and returns the response text.
func (c *Client) generate(ctx context.Context, op string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (text string, err error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	started := time.Now()
	defer func() {
		if c.observer != nil {
			c.observer.ObserveGateway(op, started, err)
		}
		if err != nil {
			c.logger.Warn("gateway call failed",
				zap.String("op", op),
				zap.Duration("elapsed", time.Since(started)),
				zap.Error(err),
			)
		}
	}()

	resp, err := c.models.GenerateContent(ctx, c.model, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("%s: generate content: %w", op, err)
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("%s: %w", op, ErrEmptyResponse)
	}

	text = strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("%s: %w", op, ErrEmptyResponse)
	}
	return text, nil
}

// stripFences removes a markdown code fence some models wrap around JSON.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
