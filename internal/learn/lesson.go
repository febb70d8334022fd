// Package learn builds the reference lessons of the learning section: one
// lesson per registered topic, assembled from the topic's rule (title,
// formulas, attempt cap, points) and a worked example drawn from the
// generator with a fixed seed.
package learn

import (
	"github.com/abhisek/mathdrill/internal/problemgen"
)

// exampleSeed keeps worked examples identical between runs.
const exampleSeed = 2024

// Lesson is the reference material for one topic.
type Lesson struct {
	Topic       problemgen.Topic `json:"topic"`
	Title       string           `json:"title"`
	Summary     string           `json:"summary"`
	Steps       []string         `json:"steps"`
	Formulas    []string         `json:"formulas,omitempty"`
	MaxAttempts int              `json:"max_attempts"`
	Points      map[string]int   `json:"points"`
	Example     Example          `json:"example"`
	// AreaModel marks topics that come with the interactive a(b + c) picture.
	AreaModel bool `json:"area_model,omitempty"`
}

// Example is a worked exercise shown with its solution.
type Example struct {
	Prompt      string   `json:"prompt"`
	Figure      string   `json:"figure,omitempty"`
	Options     []string `json:"options,omitempty"`
	Answer      string   `json:"answer"`
	Explanation string   `json:"explanation"`
}

// Catalog hands out lessons for the topics of one generator.
type Catalog struct {
	gen *problemgen.Generator
}

// NewCatalog creates a catalog over gen's registry.
func NewCatalog(gen *problemgen.Generator) *Catalog {
	return &Catalog{gen: gen}
}

// Lessons returns one lesson per topic in registry order.
func (c *Catalog) Lessons() []Lesson {
	topics := c.gen.Registry().Topics()
	out := make([]Lesson, 0, len(topics))
	for _, t := range topics {
		if l, ok := c.Lesson(t); ok {
			out = append(out, l)
		}
	}
	return out
}

// Lesson returns the lesson for topic, or false if it is not registered.
func (c *Catalog) Lesson(topic problemgen.Topic) (Lesson, bool) {
	rule, ok := c.gen.Registry().Lookup(topic)
	if !ok {
		return Lesson{}, false
	}
	n := notes[topic]

	// Keyed by difficulty name so the JSON form reads "easy", not 1.
	points := make(map[string]int, len(rule.Points))
	for d, p := range rule.Points {
		points[d.String()] = p
	}

	e := c.gen.Generate(topic, problemgen.DifficultyMedium, problemgen.NewSource(exampleSeed))
	return Lesson{
		Topic:       topic,
		Title:       rule.Title,
		Summary:     n.summary,
		Steps:       append([]string(nil), n.steps...),
		Formulas:    formulas(rule),
		MaxAttempts: rule.MaxAttempts,
		Points:      points,
		AreaModel:   topic == problemgen.TopicDistributive,
		Example: Example{
			Prompt:      e.Prompt.Text,
			Figure:      problemgen.DescribeFigure(e.Prompt.Figure),
			Options:     append([]string(nil), e.Options...),
			Answer:      e.Answer,
			Explanation: e.Explanation,
		},
	}, true
}

// formulas lists the rule's distinct hints, walking variants from easy to
// hard so the simplest identity comes first.
func formulas(rule *problemgen.Rule) []string {
	seen := make(map[string]bool)
	var out []string
	appendHint := func(h string) {
		if h != "" && !seen[h] {
			seen[h] = true
			out = append(out, h)
		}
	}
	for _, d := range problemgen.Difficulties {
		for _, v := range rule.Variants[d] {
			appendHint(rule.Hint(v))
		}
	}
	return out
}
