// Package explain fetches worked explanations for exercises from an LLM in
// the background.
package explain

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/abhisek/mathdrill/internal/llm"
	"github.com/abhisek/mathdrill/internal/problemgen"
	"github.com/abhisek/mathdrill/internal/session"
)

// Service generates explanations asynchronously. Only one request is in
// flight at a time; a new request or Cancel supersedes the previous one and
// its result is dropped.
type Service struct {
	provider llm.Provider
	cfg      Config

	mu         sync.Mutex
	generation uint64
	cancel     context.CancelFunc
	exerciseID string
	text       string
	ready      bool
}

var _ session.Explainer = (*Service)(nil)

// NewService creates an explanation service.
func NewService(provider llm.Provider, cfg Config) *Service {
	return &Service{provider: provider, cfg: cfg}
}

// Request starts generating an explanation for e. When generation fails the
// exercise's built-in explanation is delivered instead.
func (s *Service) Request(ctx context.Context, e *problemgen.Exercise, learnerAnswer string) {
	s.mu.Lock()
	s.stopLocked()
	gen := s.generation
	s.exerciseID = e.ID
	if s.cfg.Timeout > 0 {
		ctx, s.cancel = context.WithTimeout(ctx, s.cfg.Timeout)
	} else {
		ctx, s.cancel = context.WithCancel(ctx)
	}
	cancel := s.cancel
	s.mu.Unlock()

	go func() {
		defer cancel()
		text, err := s.generate(ctx, e, learnerAnswer)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logrus.WithError(err).WithField("exercise_id", e.ID).Warn("Explanation generation failed")
			text = e.Explanation
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		if gen != s.generation || text == "" {
			return
		}
		s.text = text
		s.ready = true
	}()
}

// Consume returns the explanation if one is ready for exerciseID. The slot
// is cleared afterwards.
func (s *Service) Consume(exerciseID string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready || s.exerciseID != exerciseID {
		return "", false
	}
	text := s.text
	s.text = ""
	s.ready = false
	return text, true
}

// Cancel abandons the in-flight request, if any.
func (s *Service) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
	s.exerciseID = ""
}

func (s *Service) stopLocked() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.generation++
	s.text = ""
	s.ready = false
}

type explanationOutput struct {
	Summary string   `json:"summary"`
	Steps   []string `json:"steps"`
	Mistake string   `json:"mistake"`
}

func (s *Service) generate(ctx context.Context, e *problemgen.Exercise, learnerAnswer string) (string, error) {
	ctx = llm.WithPurpose(ctx, llm.PurposeExplanation)

	resp, err := s.provider.Generate(ctx, llm.Request{
		System: systemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildUserMessage(e, learnerAnswer)},
		},
		Schema:      ExplanationSchema,
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: s.cfg.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("explanation generation: %w", err)
	}

	var out explanationOutput
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return "", fmt.Errorf("parse explanation response: %w", err)
	}
	return format(out), nil
}

func format(out explanationOutput) string {
	var b strings.Builder
	b.WriteString(strings.TrimSpace(out.Summary))
	for i, step := range out.Steps {
		fmt.Fprintf(&b, "\n%d. %s", i+1, strings.TrimSpace(step))
	}
	if m := strings.TrimSpace(out.Mistake); m != "" {
		b.WriteString("\n\nWhere it went wrong: ")
		b.WriteString(m)
	}
	return b.String()
}
