// Package generation asks a chat-completions model for build instructions and
// build guidance constrained to a part selection.
package generation

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Vincent-alt-spec/lego-builder-generator/internal/metrics"
	"github.com/Vincent-alt-spec/lego-builder-generator/internal/models"
	"github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("github.com/Vincent-alt-spec/lego-builder-generator/internal/generation")

// ErrGenerationFailed wraps every generation failure: non-2xx, transport or empty reply
var ErrGenerationFailed = errors.New("generation failed")

const (
	// DefaultModel is used when no model is configured
	DefaultModel = "gpt-4o-mini"
	// DefaultTimeout bounds each generation call
	DefaultTimeout = 60 * time.Second

	buildTemperature    float32 = 0.4
	guidanceTemperature float32 = 0.6
)

// Options configures a Client
type Options struct {
	APIKey     string
	BaseURL    string
	Model      string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client talks to an OpenAI-compatible chat completions endpoint
type Client struct {
	api     *openai.Client
	model   string
	timeout time.Duration
	logger  *zap.Logger
}

// NewClient creates a generation client
func NewClient(opts Options, logger *zap.Logger) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = DefaultModel
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	cfg := openai.DefaultConfig(opts.APIKey)
	if base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/"); base != "" {
		cfg.BaseURL = base
	}
	if opts.HTTPClient != nil {
		cfg.HTTPClient = opts.HTTPClient
	} else {
		cfg.HTTPClient = &http.Client{Timeout: timeout}
	}

	return &Client{
		api:     openai.NewClientWithConfig(cfg),
		model:   model,
		timeout: timeout,
		logger:  logger,
	}
}

// GenerateBuild returns a titled, sectioned build plan for the selected parts
func (c *Client) GenerateBuild(ctx context.Context, theme string, sel *models.Selection, size models.Size) (string, error) {
	return c.complete(ctx, "build", BuildPrompt(theme, sel, size), buildTemperature)
}

// GenerateGuidance returns time, difficulty and stability notes, one line per element
func (c *Client) GenerateGuidance(ctx context.Context, build string, inv *models.Inventory) (models.Guidance, error) {
	text, err := c.complete(ctx, "guidance", GuidancePrompt(build, Summarize(inv)), guidanceTemperature)
	if err != nil {
		return nil, err
	}
	return SplitLines(text), nil
}

func (c *Client) complete(ctx context.Context, kind, prompt string, temperature float32) (string, error) {
	ctx, span := tracer.Start(ctx, "generation."+kind)
	defer span.End()
	span.SetAttributes(attribute.String("model", c.model), attribute.Int("prompt_chars", len(prompt)))

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: temperature,
	})
	metrics.GenerationDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.GenerationRequests.WithLabelValues(kind, "error").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.logger.Error("generation request failed", zap.String("kind", kind), zap.Error(err))
		return "", fmt.Errorf("%w: %s: %v", ErrGenerationFailed, kind, err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		metrics.GenerationRequests.WithLabelValues(kind, "empty").Inc()
		c.logger.Warn("generation returned no content", zap.String("kind", kind))
		return "", fmt.Errorf("%w: %s: empty response", ErrGenerationFailed, kind)
	}

	metrics.GenerationRequests.WithLabelValues(kind, "ok").Inc()
	c.logger.Debug("generation completed",
		zap.String("kind", kind),
		zap.Duration("latency", time.Since(start)),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens),
	)
	return resp.Choices[0].Message.Content, nil
}

// Ping checks that the generation endpoint answers with the configured credentials
func (c *Client) Ping(ctx context.Context) error {
	if _, err := c.api.ListModels(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	return nil
}
