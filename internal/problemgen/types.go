package problemgen

import (
	"strings"
	"time"
)

// Topic identifies a family of exercises with its own generation rule.
type Topic string

const (
	TopicOrderOfOperations   Topic = "order-of-operations"
	TopicDistributive        Topic = "distributive-property"
	TopicShortMultiplication Topic = "short-multiplication"
	TopicIsosceles           Topic = "isosceles-triangle"
)

// Difficulty is ordered: easy < medium < hard.
type Difficulty int

const (
	DifficultyEasy Difficulty = iota + 1
	DifficultyMedium
	DifficultyHard
)

// Difficulties lists every difficulty in ascending order.
var Difficulties = []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}

func (d Difficulty) String() string {
	switch d {
	case DifficultyEasy:
		return "easy"
	case DifficultyMedium:
		return "medium"
	case DifficultyHard:
		return "hard"
	default:
		return "unknown"
	}
}

// Valid reports whether d is one of the supported difficulties.
func (d Difficulty) Valid() bool {
	return d >= DifficultyEasy && d <= DifficultyHard
}

// ParseDifficulty parses "easy", "medium" or "hard" (case-insensitive).
func ParseDifficulty(s string) (Difficulty, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "easy":
		return DifficultyEasy, true
	case "medium":
		return DifficultyMedium, true
	case "hard":
		return DifficultyHard, true
	}
	return 0, false
}

// AnswerFormat describes how the learner enters an answer.
type AnswerFormat string

const (
	FormatMultipleChoice AnswerFormat = "multiple_choice"
	FormatFreeText       AnswerFormat = "free_text"
	FormatMultiPart      AnswerFormat = "multi_part"
)

// Variant names the sub-form a rule drew, e.g. "square-of-sum".
type Variant string

// Color tags a prompt segment for presentation.
type Color string

const (
	ColorNone  Color = ""
	ColorPink  Color = "pink"
	ColorCyan  Color = "cyan"
	ColorLime  Color = "lime"
	ColorAmber Color = "amber"
)

// Segment is one annotated run of prompt text.
type Segment struct {
	Text  string `json:"text"`
	Color Color  `json:"color,omitempty"`
}

// SpecialLine is a cevian drawn in a triangle figure.
type SpecialLine string

const (
	LineAltitude SpecialLine = "altitude"
	LineMedian   SpecialLine = "median"
	LineBisector SpecialLine = "angle bisector"
)

// DrawnLine is a special line together with the vertex it starts from.
type DrawnLine struct {
	Kind SpecialLine `json:"kind"`
	From string      `json:"from"`
}

// Figure is the schematic metadata for a triangle ABC with apex A.
type Figure struct {
	Lines           []DrawnLine `json:"lines"`
	EqualSides      bool        `json:"equal_sides,omitempty"`
	EqualBaseAngles bool        `json:"equal_base_angles,omitempty"`
}

// Prompt is what the learner sees. Text is always set; Segments and Figure
// carry structure for renderers that can use it.
type Prompt struct {
	Text     string    `json:"text"`
	Segments []Segment `json:"segments,omitempty"`
	Figure   *Figure   `json:"figure,omitempty"`
}

// Part is one independently entered field of a multi-part answer.
type Part struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Value string `json:"value"`
}

// Multi-part keys for quadratic answers ax² + bx + c.
const (
	PartX2 = "x2"
	PartX  = "x"
	PartC  = "c"
)

// Exercise is an immutable generated problem.
type Exercise struct {
	ID          string       `json:"id"`
	Topic       Topic        `json:"topic"`
	Difficulty  Difficulty   `json:"difficulty"`
	Variant     Variant      `json:"variant"`
	Prompt      Prompt       `json:"prompt"`
	Format      AnswerFormat `json:"format"`
	Options     []string     `json:"options,omitempty"`
	Answer      string       `json:"answer"`
	Parts       []Part       `json:"parts,omitempty"`
	Points      int          `json:"points"`
	MaxAttempts int          `json:"max_attempts"`
	Explanation string       `json:"explanation"`
	CreatedAt   time.Time    `json:"created_at"`
}

// PartMap returns the canonical multi-part answer keyed by part key.
// It returns nil for single-field exercises.
func (e *Exercise) PartMap() map[string]string {
	if len(e.Parts) == 0 {
		return nil
	}
	m := make(map[string]string, len(e.Parts))
	for _, p := range e.Parts {
		m[p.Key] = p.Value
	}
	return m
}

// Answer is a learner's candidate response. Text is used for single-field
// exercises, Parts for multi-part ones.
type Answer struct {
	Text  string
	Parts map[string]string
}

// TextAnswer wraps a single-field response.
func TextAnswer(s string) Answer {
	return Answer{Text: s}
}

// PartsAnswer wraps a multi-part response.
func PartsAnswer(parts map[string]string) Answer {
	return Answer{Parts: parts}
}
