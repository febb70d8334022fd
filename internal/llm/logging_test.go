package llm

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/mathdrill/internal/store"
)

type recordingRecorder struct {
	mu     sync.Mutex
	events []store.LLMRequestEventData
	err    error
}

func (r *recordingRecorder) AppendLLMRequest(_ context.Context, data store.LLMRequestEventData) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, data)
	return r.err
}

func TestLoggingProvider_RecordsSuccess(t *testing.T) {
	fake := NewFake(Reply{
		Content: "Multiply before adding.",
		Usage:   Usage{InputTokens: 12, OutputTokens: 5},
	})
	rec := &recordingRecorder{}
	p := WithLogging(fake, ProviderMock, rec)

	ctx := WithPurpose(context.Background(), PurposeExplanation)
	resp, err := p.Generate(ctx, Request{})
	require.NoError(t, err)
	assert.Equal(t, "Multiply before adding.", resp.Text())

	require.Len(t, rec.events, 1)
	ev := rec.events[0]
	assert.Equal(t, "mock", ev.Provider)
	assert.Equal(t, "explanation", ev.Purpose)
	assert.Equal(t, 12, ev.InputTokens)
	assert.Equal(t, 5, ev.OutputTokens)
	assert.True(t, ev.Success)
}

func TestLoggingProvider_RecordsFailure(t *testing.T) {
	fake := NewFake(Reply{Err: &Error{Kind: KindRateLimited, Err: errors.New("slow down")}})
	rec := &recordingRecorder{}
	p := WithLogging(fake, ProviderMock, rec)

	_, err := p.Generate(context.Background(), Request{})
	require.Error(t, err)

	require.Len(t, rec.events, 1)
	assert.False(t, rec.events[0].Success)
	assert.Contains(t, rec.events[0].ErrorMessage, "slow down")
	assert.Equal(t, "rate-limited", rec.events[0].ErrorKind)
	assert.Equal(t, "unknown", rec.events[0].Purpose)
}

func TestLoggingProvider_RecorderFailureIsIgnored(t *testing.T) {
	fake := NewFake(Reply{Content: "ok"})
	p := WithLogging(fake, ProviderMock, &recordingRecorder{err: errors.New("disk full")})

	_, err := p.Generate(context.Background(), Request{})
	assert.NoError(t, err)
}

func TestLoggingProvider_NilRecorder(t *testing.T) {
	fake := NewFake(Reply{Content: "ok"})
	p := WithLogging(fake, ProviderMock, nil)

	_, err := p.Generate(context.Background(), Request{})
	assert.NoError(t, err)
	assert.Equal(t, "mock", p.ModelID())
}

func TestNewProvider_Mock(t *testing.T) {
	p, err := NewProvider(context.Background(), Config{Provider: ProviderMock}, nil)
	require.NoError(t, err)
	assert.Equal(t, "mock", p.ModelID())

	_, err = NewProvider(context.Background(), Config{Provider: "carrier-pigeon"}, nil)
	assert.Error(t, err)
}
