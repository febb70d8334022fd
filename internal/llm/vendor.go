package llm

import (
	"context"
	"strings"
)

// vendor is one API binding. It only translates requests and replies;
// validation and error kinds are shared through structured.
type vendor interface {
	name() string
	model() string
	complete(ctx context.Context, req Request) (*Response, error)
}

// structured adapts a vendor to Provider. It rejects truncated or
// non-conforming structured replies.
type structured struct {
	v vendor
}

func (s structured) Generate(ctx context.Context, req Request) (*Response, error) {
	resp, err := s.v.complete(ctx, req)
	if err != nil {
		return nil, err
	}
	if req.Schema == nil {
		return resp, nil
	}
	if resp.StopReason == StopMaxTokens {
		return nil, &Error{Kind: KindTruncated, Provider: s.v.name(), Content: resp.Content}
	}
	if err := conform(s.v.name(), req.Schema, resp.Content); err != nil {
		return nil, err
	}
	return resp, nil
}

func (s structured) ModelID() string {
	return s.v.model()
}

// modelAliases maps short names accepted in config to vendor model IDs.
// Unknown names are passed through as IDs.
var modelAliases = map[string]string{
	"claude-haiku":  "claude-haiku-4-5-20251001",
	"claude-sonnet": "claude-sonnet-4-20250514",
	"gpt-4o-mini":   "gpt-4o-mini",
	"gpt-4o":        "gpt-4o",
	"gemini-flash":  "gemini-2.0-flash",
	"gemini-pro":    "gemini-2.0-pro",
}

func resolveModel(name string) string {
	if id, ok := modelAliases[strings.ToLower(name)]; ok {
		return id
	}
	return name
}
