package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// openaiVendor also serves OpenAI-compatible APIs through BaseURL.
type openaiVendor struct {
	client *openai.Client
	id     string
}

// NewOpenAIProvider creates a provider backed by the chat completions API.
func NewOpenAIProvider(cfg OpenAIConfig) (Provider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai API key is required")
	}
	cc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		cc.BaseURL = cfg.BaseURL
	}
	return structured{v: &openaiVendor{
		client: openai.NewClientWithConfig(cc),
		id:     resolveModel(cfg.Model),
	}}, nil
}

func (o *openaiVendor) name() string  { return ProviderOpenAI }
func (o *openaiVendor) model() string { return o.id }

func (o *openaiVendor) complete(ctx context.Context, req Request) (*Response, error) {
	chat := openai.ChatCompletionRequest{
		Model:               o.id,
		MaxCompletionTokens: req.MaxTokens,
		Temperature:         float32(req.Temperature),
	}
	if req.System != "" {
		chat.Messages = append(chat.Messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	for _, m := range req.Messages {
		role := openai.ChatMessageRoleUser
		if m.Role == RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		chat.Messages = append(chat.Messages, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}
	if req.Schema != nil {
		def, err := json.Marshal(req.Schema.Definition)
		if err != nil {
			return nil, fmt.Errorf("encode schema %q: %w", req.Schema.Name, err)
		}
		chat.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:        req.Schema.Name,
				Description: req.Schema.Description,
				Schema:      json.RawMessage(def),
				Strict:      true,
			},
		}
	}

	out, err := o.client.CreateChatCompletion(ctx, chat)
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return nil, statusError(ProviderOpenAI, apiErr.HTTPStatusCode, err)
		}
		var reqErr *openai.RequestError
		if errors.As(err, &reqErr) {
			return nil, statusError(ProviderOpenAI, reqErr.HTTPStatusCode, err)
		}
		return nil, statusError(ProviderOpenAI, 0, err)
	}
	if len(out.Choices) == 0 {
		return nil, invalidResponse(ProviderOpenAI, nil, "reply has no choices")
	}

	choice := out.Choices[0]
	resp := &Response{
		Model:      out.Model,
		StopReason: StopEnd,
		Usage: Usage{
			InputTokens:  out.Usage.PromptTokens,
			OutputTokens: out.Usage.CompletionTokens,
		},
	}
	if choice.FinishReason == openai.FinishReasonLength {
		resp.StopReason = StopMaxTokens
	}
	if req.Schema != nil {
		resp.Content = json.RawMessage(choice.Message.Content)
	} else {
		resp.Content = textContent(choice.Message.Content)
	}
	return resp, nil
}
