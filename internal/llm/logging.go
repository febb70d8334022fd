package llm

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/abhisek/mathdrill/internal/store"
)

// RequestRecorder persists one LLM call.
type RequestRecorder interface {
	AppendLLMRequest(ctx context.Context, data store.LLMRequestEventData) error
}

// LoggingProvider is a decorator that logs every LLM request and records
// it as an event when a recorder is set.
type LoggingProvider struct {
	inner    Provider
	provider string
	recorder RequestRecorder
}

// WithLogging wraps a Provider with request logging. recorder may be nil.
func WithLogging(p Provider, providerName string, recorder RequestRecorder) Provider {
	return &LoggingProvider{inner: p, provider: providerName, recorder: recorder}
}

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	purpose := PurposeFrom(ctx)

	resp, err := l.inner.Generate(ctx, req)

	data := store.LLMRequestEventData{
		Provider:  l.provider,
		Model:     l.inner.ModelID(),
		Purpose:   string(purpose),
		LatencyMs: time.Since(start).Milliseconds(),
		Success:   err == nil,
	}
	if resp != nil {
		data.InputTokens = resp.Usage.InputTokens
		data.OutputTokens = resp.Usage.OutputTokens
		data.Model = resp.Model
	}
	if err != nil {
		data.ErrorMessage = err.Error()
		if kind, ok := KindOf(err); ok {
			data.ErrorKind = kind.String()
		}
	}

	log := logrus.WithFields(logrus.Fields{
		"provider":      data.Provider,
		"model":         data.Model,
		"purpose":       purpose,
		"latency_ms":    data.LatencyMs,
		"input_tokens":  data.InputTokens,
		"output_tokens": data.OutputTokens,
	})
	if data.ErrorKind != "" {
		log = log.WithField("error_kind", data.ErrorKind)
	}
	if err != nil {
		log.WithError(err).Warn("LLM request failed")
	} else {
		log.Debug("LLM request completed")
	}

	// Recording failures never fail the request.
	if l.recorder != nil {
		if recErr := l.recorder.AppendLLMRequest(context.WithoutCancel(ctx), data); recErr != nil {
			logrus.WithError(recErr).Warn("Failed to record LLM request event")
		}
	}

	return resp, err
}

func (l *LoggingProvider) ModelID() string {
	return l.inner.ModelID()
}
