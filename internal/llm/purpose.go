package llm

import "context"

// Purpose tags a request with the feature that issued it.
type Purpose string

const (
	PurposeExplanation Purpose = "explanation"
	PurposeConnCheck   Purpose = "conn_check"
)

type purposeKey struct{}

// WithPurpose returns a context whose requests are recorded under p.
func WithPurpose(ctx context.Context, p Purpose) context.Context {
	return context.WithValue(ctx, purposeKey{}, p)
}

// PurposeFrom returns the purpose stored in ctx, or "unknown".
func PurposeFrom(ctx context.Context) Purpose {
	if p, ok := ctx.Value(purposeKey{}).(Purpose); ok && p != "" {
		return p
	}
	return "unknown"
}
