// Package llm generates reply suggestions with a multimodal chat model
// through langchaingo.
package llm

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/raphaelgruber/flirtassist/internal/config"
	"github.com/raphaelgruber/flirtassist/internal/metrics"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/bedrock"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
)

// Generator wraps a langchaingo model for suggestion generation.
type Generator struct {
	llm       llms.Model
	modelName string
	metrics   *metrics.Collector
	logger    *slog.Logger
}

// Option configures a Generator.
type Option func(*Generator)

// WithMetrics records generation timings and token usage in m.
func WithMetrics(m *metrics.Collector) Option {
	return func(g *Generator) { g.metrics = m }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(g *Generator) { g.logger = l }
}

// NewGenerator creates a generator for the configured provider.
func NewGenerator(ctx context.Context, cfg config.Config, opts ...Option) (*Generator, error) {
	var model llms.Model
	var err error

	switch cfg.LLMProvider {
	case config.ProviderOllama:
		model, err = ollama.New(
			ollama.WithModel(cfg.LLMModel),
			ollama.WithServerURL(cfg.OllamaHost),
		)
		if err != nil {
			return nil, fmt.Errorf("create ollama model: %w", err)
		}

	case config.ProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("OpenAI API key required")
		}
		model, err = openai.New(
			openai.WithToken(cfg.OpenAIAPIKey),
			openai.WithModel(cfg.LLMModel),
		)
		if err != nil {
			return nil, fmt.Errorf("create openai model: %w", err)
		}

	case config.ProviderAnthropic:
		if cfg.AnthropicAPIKey == "" {
			return nil, fmt.Errorf("Anthropic API key required")
		}
		model, err = anthropic.New(
			anthropic.WithToken(cfg.AnthropicAPIKey),
			anthropic.WithModel(cfg.LLMModel),
		)
		if err != nil {
			return nil, fmt.Errorf("create anthropic model: %w", err)
		}

	case config.ProviderBedrock:
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
		if err != nil {
			return nil, fmt.Errorf("load aws config: %w", err)
		}
		model, err = bedrock.New(
			bedrock.WithClient(bedrockruntime.NewFromConfig(awsCfg)),
			bedrock.WithModel(cfg.LLMModel),
		)
		if err != nil {
			return nil, fmt.Errorf("create bedrock model: %w", err)
		}

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.LLMProvider)
	}

	return NewGeneratorWithModel(model, cfg.LLMModel, opts...), nil
}

// NewGeneratorWithModel wraps an already constructed model.
func NewGeneratorWithModel(model llms.Model, modelName string, opts ...Option) *Generator {
	g := &Generator{
		llm:       model,
		modelName: modelName,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Model returns the LLM model name.
func (g *Generator) Model() string {
	return g.modelName
}

// generateContent runs one completion and records its usage.
func (g *Generator) generateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (string, error) {
	start := time.Now()

	response, err := g.llm.GenerateContent(ctx, messages, options...)
	if err != nil {
		g.metrics.RecordFailure(metrics.OpLLMGenerate)
		return "", wrapFatalError(fmt.Errorf("generate: %w", err))
	}
	if len(response.Choices) == 0 {
		g.metrics.RecordFailure(metrics.OpLLMGenerate)
		return "", fmt.Errorf("no response choices")
	}

	choice := response.Choices[0]
	in, out := tokenUsage(choice.GenerationInfo)
	g.metrics.RecordLLMUsage(metrics.OpLLMGenerate, time.Since(start), in, out)
	g.logger.Debug("llm response",
		"model", g.modelName, "duration", time.Since(start), "input_tokens", in, "output_tokens", out)

	return choice.Content, nil
}

// tokenUsage reads token counts from provider specific generation info.
func tokenUsage(info map[string]any) (input, output int64) {
	input = firstInt(info, "PromptTokens", "InputTokens", "input_tokens", "prompt_eval_count")
	output = firstInt(info, "CompletionTokens", "OutputTokens", "output_tokens", "eval_count")
	return input, output
}

func firstInt(info map[string]any, keys ...string) int64 {
	for _, k := range keys {
		switch v := info[k].(type) {
		case int:
			return int64(v)
		case int32:
			return int64(v)
		case int64:
			return v
		case float64:
			return int64(v)
		}
	}
	return 0
}
