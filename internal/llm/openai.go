package llm

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"traderjournal/internal/config"
)

// OpenAIService is the production CompletionService. Each call gets its own
// timeout so a stuck completion cannot hold a request or cron run hostage.
type OpenAIService struct {
	client          openai.Client
	fastModel       string
	deepModel       string
	timeout         time.Duration
	maxOutputTokens int64
}

func NewOpenAIService(cfg config.LLMConfig, apiKey string) (*OpenAIService, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("llm: missing API key")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 45 * time.Second
	}
	maxTokens := cfg.MaxOutputTokens
	if maxTokens <= 0 {
		maxTokens = 4096
	}
	return &OpenAIService{
		client:          openai.NewClient(option.WithAPIKey(apiKey)),
		fastModel:       cfg.FastModel,
		deepModel:       cfg.DeepModel,
		timeout:         timeout,
		maxOutputTokens: maxTokens,
	}, nil
}

func (s *OpenAIService) Complete(ctx context.Context, req Request) (string, error) {
	if s == nil {
		return "", errors.New("llm: service not configured")
	}
	model := s.fastModel
	if req.Tier == TierDeep {
		model = s.deepModel
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, 2)
	if strings.TrimSpace(req.SystemPrompt) != "" {
		messages = append(messages, openai.SystemMessage(req.SystemPrompt))
	}
	messages = append(messages, openai.UserMessage(req.UserPrompt))

	resp, err := s.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:               openai.ChatModel(model),
		Messages:            messages,
		MaxCompletionTokens: openai.Int(s.maxOutputTokens),
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("llm: empty response")
	}
	return resp.Choices[0].Message.Content, nil
}
