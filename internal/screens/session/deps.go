package session

import (
	"context"
	"time"

	"github.com/abhisek/mathdrill/internal/problemgen"
	sess "github.com/abhisek/mathdrill/internal/session"
)

// Keeper is the score keeper a practice screen reports to. It also records
// session start and end for the history screen.
type Keeper interface {
	sess.ScoreKeeper
	RecordStart(ctx context.Context, sessionID string, topics []problemgen.Topic, d problemgen.Difficulty) error
	RecordEnd(ctx context.Context, s *sess.Summary) error
}

// Deps are the collaborators shared by the setup and practice screens.
type Deps struct {
	Keeper    Keeper
	Generator *problemgen.Generator

	// NewExplainer builds a per-session explainer. Nil disables worked
	// explanations.
	NewExplainer   func() sess.Explainer
	ExplainTimeout time.Duration
}

func (d Deps) generator() *problemgen.Generator {
	if d.Generator == nil {
		return problemgen.New(problemgen.DefaultRegistry(), problemgen.DefaultConfig())
	}
	return d.Generator
}

func (d Deps) explainTimeout() time.Duration {
	if d.ExplainTimeout <= 0 {
		return 30 * time.Second
	}
	return d.ExplainTimeout
}
