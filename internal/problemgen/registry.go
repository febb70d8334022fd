package problemgen

import (
	"fmt"
	"strings"
	"sync"
)

// Draft is what a rule builds for one draw. The Generator stamps identity,
// difficulty and scoring onto it to produce an Exercise.
type Draft struct {
	Variant     Variant
	Prompt      Prompt
	Format      AnswerFormat
	Options     []string
	Answer      string
	Parts       []Part
	Explanation string
}

// Rule is the generation descriptor for one topic.
type Rule struct {
	Topic Topic
	Title string

	// MaxAttempts caps wrong answers before the exercise is exhausted.
	MaxAttempts int

	// Points awarded for a correct answer, per difficulty.
	Points map[Difficulty]int

	// Variants lists the sub-forms eligible at each difficulty. A draw
	// picks one uniformly.
	Variants map[Difficulty][]Variant

	// Hints are static hint texts. The "" key is the topic-wide hint;
	// variant keys override it.
	Hints map[Variant]string

	// Build draws operands for the variant and returns the finished draft.
	Build func(v Variant, d Difficulty, src Source) Draft
}

// Hint returns the hint for a variant, falling back to the topic hint.
func (r *Rule) Hint(v Variant) string {
	if h, ok := r.Hints[v]; ok {
		return h
	}
	return r.Hints[""]
}

func (r *Rule) validate() error {
	switch {
	case r.Topic == "":
		return fmt.Errorf("rule has no topic")
	case r.Build == nil:
		return fmt.Errorf("rule %q has no Build func", r.Topic)
	case r.MaxAttempts < 1:
		return fmt.Errorf("rule %q: max attempts must be at least 1", r.Topic)
	}
	for _, d := range Difficulties {
		if len(r.Variants[d]) == 0 {
			return fmt.Errorf("rule %q: no variants for %s", r.Topic, d)
		}
		if r.Points[d] <= 0 {
			return fmt.Errorf("rule %q: no points for %s", r.Topic, d)
		}
	}
	return nil
}

// Registry maps topics to their rules. Safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	rules map[Topic]*Rule
	order []Topic
}

// NewRegistry creates a registry holding the given rules. It panics on an
// invalid or duplicate rule, since rule tables are fixed at build time.
func NewRegistry(rules ...*Rule) *Registry {
	r := &Registry{rules: make(map[Topic]*Rule)}
	for _, rule := range rules {
		if err := r.Register(rule); err != nil {
			panic(err)
		}
	}
	return r
}

// DefaultRegistry returns a registry with every built-in topic.
func DefaultRegistry() *Registry {
	return NewRegistry(
		orderOfOperationsRule(),
		distributiveRule(),
		shortMultiplicationRule(),
		isoscelesRule(),
	)
}

// Register adds a rule. Topics must be unique.
func (r *Registry) Register(rule *Rule) error {
	if err := rule.validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.rules[rule.Topic]; dup {
		return fmt.Errorf("topic %q already registered", rule.Topic)
	}
	r.rules[rule.Topic] = rule
	r.order = append(r.order, rule.Topic)
	return nil
}

// Lookup returns the rule for a topic.
func (r *Registry) Lookup(t Topic) (*Rule, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rule, ok := r.rules[t]
	return rule, ok
}

// Topics returns registered topics in registration order.
func (r *Registry) Topics() []Topic {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Topic, len(r.order))
	copy(out, r.order)
	return out
}

// ParseTopic resolves a topic identifier (case-insensitive).
func (r *Registry) ParseTopic(s string) (Topic, bool) {
	t := Topic(strings.ToLower(strings.TrimSpace(s)))
	_, ok := r.Lookup(t)
	return t, ok
}
