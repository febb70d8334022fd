package llm

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
)

// Reply is one scripted Fake outcome. Content is returned verbatim; a
// string is JSON-encoded first.
type Reply struct {
	Content any
	Err     error
	Usage   Usage
}

// Fake is a scripted Provider for tests and offline runs. Replies are
// consumed in order.
type Fake struct {
	mu       sync.Mutex
	replies  []Reply
	requests []Request
}

// NewFake returns a Fake that will answer with replies.
func NewFake(replies ...Reply) *Fake {
	return &Fake{replies: replies}
}

// Push queues more replies.
func (f *Fake) Push(replies ...Reply) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replies = append(f.replies, replies...)
}

// Requests returns every request seen so far.
func (f *Fake) Requests() []Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Request(nil), f.requests...)
}

func (f *Fake) Generate(ctx context.Context, req Request) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f.mu.Lock()
	f.requests = append(f.requests, req)
	if len(f.replies) == 0 {
		f.mu.Unlock()
		return nil, &Error{Kind: KindUnavailable, Provider: ProviderMock, Err: errors.New("no scripted reply")}
	}
	r := f.replies[0]
	f.replies = f.replies[1:]
	f.mu.Unlock()

	if r.Err != nil {
		return nil, r.Err
	}

	var content json.RawMessage
	switch c := r.Content.(type) {
	case json.RawMessage:
		content = c
	case []byte:
		content = c
	case string:
		content = textContent(c)
	default:
		b, err := json.Marshal(c)
		if err != nil {
			return nil, err
		}
		content = b
	}
	if req.Schema != nil {
		if err := conform(ProviderMock, req.Schema, content); err != nil {
			return nil, err
		}
	}
	return &Response{Content: content, Usage: r.Usage, Model: f.ModelID(), StopReason: StopEnd}, nil
}

func (f *Fake) ModelID() string {
	return "mock"
}
