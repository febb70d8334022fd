// Package llm talks to hosted language models. Vendors are reached through
// Provider; replies requested with a schema are validated before they are
// returned.
package llm

import (
	"context"
	"encoding/json"
)

// Provider generates one reply per request.
type Provider interface {
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID is the vendor model the provider is configured for.
	ModelID() string
}

// Request is one single-turn or multi-turn prompt.
type Request struct {
	System   string
	Messages []Message

	// Schema asks for JSON conforming to it. Nil asks for free text.
	Schema *Schema

	MaxTokens   int
	Temperature float64
}

// Ask builds a single-turn request.
func Ask(system, prompt string) Request {
	return Request{
		System:   system,
		Messages: []Message{{Role: RoleUser, Content: prompt}},
	}
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Role    Role
	Content string
}

// Schema is a named JSON Schema document. Name doubles as the cache key for
// the compiled form, so distinct schemas need distinct names.
type Schema struct {
	Name        string
	Description string
	Definition  map[string]any
}

// StopReason says why the model stopped producing tokens.
type StopReason string

const (
	StopEnd       StopReason = "end"
	StopMaxTokens StopReason = "max_tokens"
)

// Response is a model reply. Content holds the validated JSON object for
// schema requests and a JSON string otherwise.
type Response struct {
	Content    json.RawMessage
	Usage      Usage
	Model      string
	StopReason StopReason
}

// Text returns a free-text reply. Structured replies come back as their raw
// JSON.
func (r *Response) Text() string {
	var s string
	if err := json.Unmarshal(r.Content, &s); err == nil {
		return s
	}
	return string(r.Content)
}

type Usage struct {
	InputTokens  int
	OutputTokens int
}

func (u Usage) Total() int {
	return u.InputTokens + u.OutputTokens
}

// textContent encodes a free-text reply as a JSON string.
func textContent(s string) json.RawMessage {
	raw, _ := json.Marshal(s)
	return raw
}
