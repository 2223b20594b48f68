package chat

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/leaseline/lease-concierge/pkg/logging"
)

// OpenAIClient calls the OpenAI chat completions API.
type OpenAIClient struct {
	client      openai.Client
	model       string
	maxTokens   int
	temperature float64
	logger      *logging.Logger
}

var _ LLMClient = (*OpenAIClient)(nil)

// NewOpenAIClient builds a client for the given model. apiKey must be set.
func NewOpenAIClient(apiKey, model string, maxTokens int, temperature float64, logger *logging.Logger) *OpenAIClient {
	return &OpenAIClient{
		client:      openai.NewClient(option.WithAPIKey(apiKey)),
		model:       model,
		maxTokens:   maxTokens,
		temperature: temperature,
		logger:      logger,
	}
}

func (c *OpenAIClient) Complete(ctx context.Context, req LLMRequest) (LLMResponse, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages)+1)
	if req.System != "" {
		messages = append(messages, openai.SystemMessage(req.System))
	}
	for _, msg := range req.Messages {
		switch msg.Role {
		case ChatRoleAssistant:
			messages = append(messages, openai.AssistantMessage(msg.Content))
		case ChatRoleSystem:
			messages = append(messages, openai.SystemMessage(msg.Content))
		default:
			messages = append(messages, openai.UserMessage(msg.Content))
		}
	}

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(c.model),
		Messages:    messages,
		MaxTokens:   openai.Int(int64(c.maxTokens)),
		Temperature: openai.Float(c.temperature),
	})
	if err != nil {
		return LLMResponse{}, fmt.Errorf("chat: openai completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return LLMResponse{}, fmt.Errorf("chat: openai completion returned no choices")
	}
	reply := resp.Choices[0].Message.Content
	c.logger.Debug("openai reply generated", "model", c.model, "chars", len(reply))
	return LLMResponse{Text: reply}, nil
}
