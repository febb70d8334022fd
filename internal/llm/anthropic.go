package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

type anthropicVendor struct {
	client anthropic.Client
	id     string
}

// NewAnthropicProvider creates a provider backed by the Anthropic Messages
// API. Extra options are appended after the API key.
func NewAnthropicProvider(cfg AnthropicConfig, opts ...option.RequestOption) (Provider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("anthropic API key is required")
	}
	opts = append([]option.RequestOption{option.WithAPIKey(cfg.APIKey)}, opts...)
	return structured{v: &anthropicVendor{
		client: anthropic.NewClient(opts...),
		id:     resolveModel(cfg.Model),
	}}, nil
}

func (a *anthropicVendor) name() string  { return ProviderAnthropic }
func (a *anthropicVendor) model() string { return a.id }

func (a *anthropicVendor) complete(ctx context.Context, req Request) (*Response, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(a.id),
		MaxTokens: int64(req.MaxTokens),
	}
	for _, m := range req.Messages {
		block := anthropic.NewTextBlock(m.Content)
		if m.Role == RoleAssistant {
			params.Messages = append(params.Messages, anthropic.NewAssistantMessage(block))
		} else {
			params.Messages = append(params.Messages, anthropic.NewUserMessage(block))
		}
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}
	if req.Temperature > 0 {
		params.Temperature = anthropic.Float(req.Temperature)
	}
	if req.Schema != nil {
		params.OutputConfig = anthropic.OutputConfigParam{
			Format: anthropic.JSONOutputFormatParam{Schema: req.Schema.Definition},
		}
	}

	msg, err := a.client.Messages.New(ctx, params)
	if err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			le := statusError(ProviderAnthropic, apiErr.StatusCode, err)
			if apiErr.Response != nil {
				le.RetryAfter = retryAfter(apiErr.Response.Header)
			}
			return nil, le
		}
		return nil, statusError(ProviderAnthropic, 0, err)
	}

	var text string
	found := false
	for _, block := range msg.Content {
		if block.Type == "text" {
			text, found = block.Text, true
			break
		}
	}
	if !found {
		return nil, invalidResponse(ProviderAnthropic, nil, "reply has no text block")
	}

	resp := &Response{
		Model:      string(msg.Model),
		StopReason: StopEnd,
		Usage: Usage{
			InputTokens:  int(msg.Usage.InputTokens),
			OutputTokens: int(msg.Usage.OutputTokens),
		},
	}
	if msg.StopReason == "max_tokens" {
		resp.StopReason = StopMaxTokens
	}
	if req.Schema != nil {
		resp.Content = []byte(text)
	} else {
		resp.Content = textContent(text)
	}
	return resp, nil
}
