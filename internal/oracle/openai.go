package oracle

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"

	"inboxledger/internal/logger"
)

// OpenAIConfig configures the OpenAI-backed oracle.
type OpenAIConfig struct {
	Model       string  // gpt-4o-mini, gpt-4, ...
	Temperature float32 // low values keep field extraction deterministic
	MaxTokens   int
	MaxRetries  int
}

// DefaultOpenAIOracle implements TextOracle on the OpenAI chat API.
type DefaultOpenAIOracle struct {
	client *openai.Client
	config OpenAIConfig
	log    zerolog.Logger
}

// NewOpenAIOracle creates an oracle configured from the environment.
// OPENAI_API_KEY is required; model and tuning knobs have defaults.
func NewOpenAIOracle() (TextOracle, error) {
	const op = "NewOpenAIOracle"

	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("%s: OPENAI_API_KEY environment variable is required", op)
	}

	model := os.Getenv("OPENAI_MODEL")
	if model == "" {
		model = "gpt-4o-mini"
	}

	config := OpenAIConfig{
		Model:       model,
		Temperature: parseFloatEnv("OPENAI_TEMPERATURE", 0.1),
		MaxTokens:   parseIntEnv("OPENAI_MAX_TOKENS", 800),
		MaxRetries:  parseIntEnv("OPENAI_MAX_RETRIES", 3),
	}

	return NewOpenAIOracleWithDeps(openai.NewClient(apiKey), config), nil
}

// NewOpenAIOracleWithDeps creates an oracle with explicit dependencies.
func NewOpenAIOracleWithDeps(client *openai.Client, config OpenAIConfig) TextOracle {
	if config.MaxRetries < 1 {
		config.MaxRetries = 1
	}
	return &DefaultOpenAIOracle{
		client: client,
		config: config,
		log:    logger.WithComponent("oracle"),
	}
}

// Complete sends the prompt and returns the first choice's content.
func (o *DefaultOpenAIOracle) Complete(ctx context.Context, prompt string) (string, error) {
	const op = "Complete"

	o.log.Debug().
		Int("prompt_length", len(prompt)).
		Str("model", o.config.Model).
		Msg("Sending extraction request")

	var lastErr error
	for attempt := 1; attempt <= o.config.MaxRetries; attempt++ {
		resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:       o.config.Model,
			Temperature: o.config.Temperature,
			MaxTokens:   o.config.MaxTokens,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleSystem,
					Content: systemPrompt,
				},
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
		})
		if err != nil {
			lastErr = err
			o.log.Warn().
				Err(err).
				Int("attempt", attempt).
				Int("max_retries", o.config.MaxRetries).
				Msg("Completion request failed, retrying")
			continue
		}
		if len(resp.Choices) == 0 {
			lastErr = fmt.Errorf("no response choices")
			continue
		}

		content := strings.TrimSpace(resp.Choices[0].Message.Content)
		o.log.Debug().Int("response_length", len(content)).Msg("Received completion response")
		return content, nil
	}

	return "", fmt.Errorf("%s: all %d attempts failed: %w", op, o.config.MaxRetries, lastErr)
}

func parseIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func parseFloatEnv(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(parsed)
		}
	}
	return defaultValue
}
