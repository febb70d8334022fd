package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastRetry() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		InitialWait: time.Millisecond,
		MaxWait:     5 * time.Millisecond,
		Multiplier:  2,
	}
}

func unavailable() error {
	return &Error{Kind: KindUnavailable, Err: errors.New("down")}
}

func TestRetry_TransientThenSuccess(t *testing.T) {
	fake := NewFake(Reply{Err: unavailable()}, Reply{Content: "ok"})
	p := WithRetry(fake, fastRetry())

	resp, err := p.Generate(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Text())
	assert.Len(t, fake.Requests(), 2)
}

func TestRetry_StopsAfterMaxAttempts(t *testing.T) {
	fake := NewFake(Reply{Err: unavailable()}, Reply{Err: unavailable()}, Reply{Err: unavailable()}, Reply{Content: "late"})
	p := WithRetry(fake, fastRetry())

	_, err := p.Generate(context.Background(), Request{})
	kind, ok := KindOf(err)
	require.True(t, ok)
	assert.Equal(t, KindUnavailable, kind)
	assert.Len(t, fake.Requests(), 3)
}

func TestRetry_PermanentKinds(t *testing.T) {
	for _, kind := range []ErrorKind{KindRejected, KindTruncated} {
		t.Run(kind.String(), func(t *testing.T) {
			fake := NewFake(Reply{Err: &Error{Kind: kind}}, Reply{Content: "ok"})
			p := WithRetry(fake, fastRetry())

			_, err := p.Generate(context.Background(), Request{})
			got, _ := KindOf(err)
			assert.Equal(t, kind, got)
			assert.Len(t, fake.Requests(), 1)
		})
	}
}

func TestRetry_UnclassifiedErrorIsPermanent(t *testing.T) {
	fake := NewFake(Reply{Err: errors.New("boom")}, Reply{Content: "ok"})
	p := WithRetry(fake, fastRetry())

	_, err := p.Generate(context.Background(), Request{})
	assert.EqualError(t, err, "boom")
	assert.Len(t, fake.Requests(), 1)
}

func TestRetry_InvalidResponseRetriedOnce(t *testing.T) {
	bad := Reply{Err: &Error{Kind: KindInvalidResponse, Err: errors.New("bad json")}}
	fake := NewFake(bad, bad, Reply{Content: "ok"})
	p := WithRetry(fake, RetryConfig{MaxAttempts: 5, InitialWait: time.Millisecond})

	_, err := p.Generate(context.Background(), Request{})
	kind, _ := KindOf(err)
	assert.Equal(t, KindInvalidResponse, kind)
	assert.Len(t, fake.Requests(), 2)
}

func TestRetry_HonorsRetryAfter(t *testing.T) {
	fake := NewFake(
		Reply{Err: &Error{Kind: KindRateLimited, RetryAfter: 30 * time.Millisecond}},
		Reply{Content: "ok"},
	)
	p := WithRetry(fake, fastRetry())

	start := time.Now()
	_, err := p.Generate(context.Background(), Request{})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
}

func TestRetry_CancelledContext(t *testing.T) {
	fake := NewFake(Reply{Content: "ok"})
	p := WithRetry(fake, fastRetry())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := p.Generate(ctx, Request{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, fake.Requests())
}

func TestRetry_ModelID(t *testing.T) {
	assert.Equal(t, "mock", WithRetry(NewFake(), fastRetry()).ModelID())
}
