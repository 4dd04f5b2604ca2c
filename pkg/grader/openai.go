package grader

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	gradeDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "examind",
		Subsystem: "grading",
		Name:      "provider_duration_seconds",
		Help:      "Duration of grading provider requests",
	}, []string{"model"})

	gradeFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "examind",
		Subsystem: "grading",
		Name:      "provider_failures_total",
		Help:      "Number of grading provider failures",
	}, []string{"model"})
)

// OpenAIConfig defines configuration options for the OpenAI grading provider.
type OpenAIConfig struct {
	APIKey      string
	Model       string
	BaseURL     string
	Timeout     time.Duration
	MaxRetries  int
	BackoffBase time.Duration
	Logger      zerolog.Logger
}

// OpenAIProvider implements Provider against the OpenAI chat completion API.
type OpenAIProvider struct {
	client *openai.Client
	cfg    OpenAIConfig
	tracer trace.Tracer
	logger zerolog.Logger
}

// NewOpenAIProvider builds a new provider using the provided configuration.
func NewOpenAIProvider(cfg OpenAIConfig) (*OpenAIProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: openai api key is missing", ErrProvider)
	}

	if cfg.Model == "" {
		cfg.Model = "gpt-4o"
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}

	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}

	if cfg.BackoffBase <= 0 {
		cfg.BackoffBase = 800 * time.Millisecond
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	clientConfig.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	logger := cfg.Logger
	if logger.GetLevel() == zerolog.Disabled {
		logger = zerolog.Nop()
	}

	return &OpenAIProvider{
		client: openai.NewClientWithConfig(clientConfig),
		cfg:    cfg,
		tracer: otel.Tracer("github.com/examind/examind-api/pkg/grader/openai"),
		logger: logger.With().Str("component", "openai_provider").Logger(),
	}, nil
}

// Grade sends the grading prompt and returns the provider's parsed JSON object.
// Transport failures, non-2xx statuses and non-JSON bodies are retried with
// linearly increasing backoff until the retry budget is exhausted.
func (p *OpenAIProvider) Grade(parent context.Context, payload Payload) (RawResult, error) {
	ctx, span := p.tracer.Start(parent, "grader.grade", trace.WithAttributes(
		attribute.String("model", p.cfg.Model),
		attribute.Int64("submission_id", int64(payload.Submission.ID)),
	))
	defer span.End()

	request := openai.ChatCompletionRequest{
		Model:       p.cfg.Model,
		Temperature: 0.1,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: systemPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: BuildPrompt(payload),
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject},
	}

	var lastErr error
	attempts := p.cfg.MaxRetries + 1

loop:
	for attempt := 1; attempt <= attempts; attempt++ {
		result, err := p.attempt(ctx, request)
		if err == nil {
			return result, nil
		}

		lastErr = err
		p.logger.Warn().Err(err).Int("attempt", attempt).Msg("grading attempt failed")

		if attempt == attempts {
			break
		}

		select {
		case <-ctx.Done():
			lastErr = ctx.Err()
			break loop
		case <-time.After(p.cfg.BackoffBase * time.Duration(attempt)):
		}
	}

	gradeFailures.WithLabelValues(p.cfg.Model).Inc()
	err := fmt.Errorf("%w: grading failed after %d attempts: %w", ErrProvider, attempts, lastErr)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())

	return nil, err
}

func (p *OpenAIProvider) attempt(ctx context.Context, request openai.ChatCompletionRequest) (RawResult, error) {
	start := time.Now()
	resp, err := p.client.CreateChatCompletion(ctx, request)
	gradeDuration.WithLabelValues(p.cfg.Model).Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no choices returned")
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)

	var result RawResult
	if err := json.Unmarshal([]byte(content), &result); err != nil {
		return nil, fmt.Errorf("non-JSON output: %w", err)
	}

	return result, nil
}
