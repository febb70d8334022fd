package problemgen

import (
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// FallbackTopic and FallbackDifficulty are used when a request names a
// topic or difficulty the registry does not know.
const (
	FallbackTopic      = TopicOrderOfOperations
	FallbackDifficulty = DifficultyEasy
)

// Generator turns (topic, difficulty, source) into validated exercises.
// It holds no per-call state and is safe for concurrent use as long as each
// caller brings its own Source.
type Generator struct {
	registry *Registry
	cfg      Config
	now      func() time.Time
}

// New creates a Generator over the given registry.
func New(registry *Registry, cfg Config) *Generator {
	if cfg.MaxDraws < 1 {
		cfg.MaxDraws = 1
	}
	return &Generator{registry: registry, cfg: cfg, now: time.Now}
}

var defaultGenerator = New(DefaultRegistry(), DefaultConfig())

// Generate draws an exercise from the default registry.
func Generate(topic Topic, d Difficulty, src Source) *Exercise {
	return defaultGenerator.Generate(topic, d, src)
}

// Registry returns the registry this generator draws from.
func (g *Generator) Registry() *Registry {
	return g.registry
}

// Generate draws one exercise. It never returns nil: an unknown topic or
// difficulty falls back to (FallbackTopic, FallbackDifficulty), and a rule
// that keeps failing validation falls back the same way.
func (g *Generator) Generate(topic Topic, d Difficulty, src Source) *Exercise {
	rule, ok := g.registry.Lookup(topic)
	if !ok || !d.Valid() {
		logrus.WithFields(logrus.Fields{
			"topic":      topic,
			"difficulty": d,
		}).Debug("unknown topic or difficulty, using fallback")
		rule, d = g.fallbackRule(), FallbackDifficulty
	}

	for draw := 0; draw < g.cfg.MaxDraws; draw++ {
		e := g.build(rule, d, src)
		verr := ValidateExercise(e, g.cfg.Validators)
		if verr == nil {
			return e
		}
		logrus.WithFields(logrus.Fields{
			"topic":   rule.Topic,
			"variant": e.Variant,
			"draw":    draw + 1,
		}).WithError(verr).Warn("generated exercise failed validation")
		if !verr.Retryable {
			break
		}
	}

	return g.build(g.fallbackRule(), FallbackDifficulty, src)
}

// HintFor returns the static hint for an exercise, or "" if its topic has
// none.
func (g *Generator) HintFor(e *Exercise) string {
	rule, ok := g.registry.Lookup(e.Topic)
	if !ok {
		return ""
	}
	return rule.Hint(e.Variant)
}

func (g *Generator) fallbackRule() *Rule {
	if rule, ok := g.registry.Lookup(FallbackTopic); ok {
		return rule
	}
	return orderOfOperationsRule()
}

func (g *Generator) build(rule *Rule, d Difficulty, src Source) *Exercise {
	v := pick(src, rule.Variants[d])
	draft := rule.Build(v, d, src)
	if draft.Variant == "" {
		draft.Variant = v
	}
	return &Exercise{
		ID:          uuid.NewString(),
		Topic:       rule.Topic,
		Difficulty:  d,
		Variant:     draft.Variant,
		Prompt:      draft.Prompt,
		Format:      draft.Format,
		Options:     draft.Options,
		Answer:      draft.Answer,
		Parts:       draft.Parts,
		Points:      rule.Points[d],
		MaxAttempts: rule.MaxAttempts,
		Explanation: draft.Explanation,
		CreatedAt:   g.now(),
	}
}
