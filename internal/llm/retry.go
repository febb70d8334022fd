package llm

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"
)

// retrying retries transient failures on an exponential schedule.
type retrying struct {
	inner Provider
	cfg   RetryConfig
}

// WithRetry wraps p so rate-limited and unavailable calls are retried up to
// cfg.MaxAttempts times in total. An invalid response is retried once.
func WithRetry(p Provider, cfg RetryConfig) Provider {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	return &retrying{inner: p, cfg: cfg}
}

func (r *retrying) Generate(ctx context.Context, req Request) (*Response, error) {
	var (
		resp     *Response
		invalids int
	)
	pause := &hintedBackOff{next: r.schedule()}

	op := func() error {
		var err error
		resp, err = r.inner.Generate(ctx, req)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return backoff.Permanent(err)
		}
		kind, ok := KindOf(err)
		if !ok {
			return backoff.Permanent(err)
		}
		switch kind {
		case KindRejected, KindTruncated:
			return backoff.Permanent(err)
		case KindInvalidResponse:
			invalids++
			if invalids > 1 {
				return backoff.Permanent(err)
			}
		case KindRateLimited:
			var le *Error
			if errors.As(err, &le) {
				pause.hint = le.RetryAfter
			}
		}
		return err
	}
	notify := func(err error, wait time.Duration) {
		logrus.WithError(err).WithField("wait", wait).Debug("Retrying LLM request")
	}

	b := backoff.WithContext(backoff.WithMaxRetries(pause, uint64(r.cfg.MaxAttempts-1)), ctx)
	if err := backoff.RetryNotify(op, b, notify); err != nil {
		return nil, err
	}
	return resp, nil
}

func (r *retrying) ModelID() string {
	return r.inner.ModelID()
}

func (r *retrying) schedule() backoff.BackOff {
	eb := backoff.NewExponentialBackOff()
	if r.cfg.InitialWait > 0 {
		eb.InitialInterval = r.cfg.InitialWait
	}
	if r.cfg.MaxWait > 0 {
		eb.MaxInterval = r.cfg.MaxWait
	}
	if r.cfg.Multiplier > 0 {
		eb.Multiplier = r.cfg.Multiplier
	}
	// Attempts are bounded by count, not elapsed time.
	eb.MaxElapsedTime = 0
	eb.Reset()
	return eb
}

// hintedBackOff waits for a vendor Retry-After hint when one was given,
// capped by nothing but the caller's context.
type hintedBackOff struct {
	next backoff.BackOff
	hint time.Duration
}

func (h *hintedBackOff) NextBackOff() time.Duration {
	d := h.next.NextBackOff()
	if h.hint > 0 {
		if d != backoff.Stop && h.hint > d {
			d = h.hint
		}
		h.hint = 0
	}
	return d
}

func (h *hintedBackOff) Reset() {
	h.next.Reset()
	h.hint = 0
}
