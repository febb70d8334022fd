package problemgen

import (
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_AllTopicsPassValidation(t *testing.T) {
	g := New(DefaultRegistry(), DefaultConfig())
	chain := DefaultConfig().Validators

	for _, topic := range g.Registry().Topics() {
		for _, d := range Difficulties {
			src := NewSource(42)
			for i := 0; i < 50; i++ {
				e := g.Generate(topic, d, src)
				require.NotNil(t, e)
				assert.Equal(t, topic, e.Topic)
				assert.Equal(t, d, e.Difficulty)
				if verr := ValidateExercise(e, chain); verr != nil {
					t.Errorf("%s/%s draw %d: %v (%q)", topic, d, i, verr, e.Prompt.Text)
				}
			}
		}
	}
}

func TestGenerate_MultipleChoiceContainsAnswerOnce(t *testing.T) {
	src := NewSource(7)
	for _, topic := range []Topic{TopicOrderOfOperations, TopicIsosceles} {
		for _, d := range Difficulties {
			for i := 0; i < 30; i++ {
				e := Generate(topic, d, src)
				require.Equal(t, FormatMultipleChoice, e.Format)
				hits := 0
				for _, opt := range e.Options {
					if Normalize(opt) == Normalize(e.Answer) {
						hits++
					}
				}
				assert.Equal(t, 1, hits, "answer %q in %v", e.Answer, e.Options)
			}
		}
	}
}

func TestGenerate_AttemptCaps(t *testing.T) {
	src := NewSource(1)
	tests := []struct {
		topic Topic
		want  int
	}{
		{TopicOrderOfOperations, 3},
		{TopicDistributive, 3},
		{TopicShortMultiplication, 3},
		{TopicIsosceles, 1},
	}
	for _, tt := range tests {
		e := Generate(tt.topic, DifficultyMedium, src)
		if e.MaxAttempts != tt.want {
			t.Errorf("%s MaxAttempts = %d, want %d", tt.topic, e.MaxAttempts, tt.want)
		}
	}
}

func TestGenerate_UnknownTopicFallsBack(t *testing.T) {
	e := Generate(Topic("calculus"), DifficultyHard, NewSource(3))
	assert.Equal(t, TopicOrderOfOperations, e.Topic)
	assert.Equal(t, DifficultyEasy, e.Difficulty)

	e = Generate(TopicDistributive, Difficulty(9), NewSource(3))
	assert.Equal(t, TopicOrderOfOperations, e.Topic)
	assert.Equal(t, DifficultyEasy, e.Difficulty)
}

func TestGenerate_DeterministicForEqualSeeds(t *testing.T) {
	for _, topic := range DefaultRegistry().Topics() {
		a := Generate(topic, DifficultyHard, NewSource(99))
		b := Generate(topic, DifficultyHard, NewSource(99))
		assert.Equal(t, a.Prompt, b.Prompt, topic)
		assert.Equal(t, a.Options, b.Options, topic)
		assert.Equal(t, a.Answer, b.Answer, topic)
		assert.NotEqual(t, a.ID, b.ID, "IDs are unique per exercise")
	}
}

func TestGenerate_Points(t *testing.T) {
	src := NewSource(5)
	e := Generate(TopicDistributive, DifficultyHard, src)
	assert.Equal(t, 25, e.Points)
	e = Generate(TopicShortMultiplication, DifficultyEasy, src)
	assert.Equal(t, 15, e.Points)
}

func TestOrderOfOperations_PrecedenceDistractor(t *testing.T) {
	d := arithmeticDraft(VariantSumProduct, add(lit(4), mul(lit(3), lit(2))), NewSource(1))
	assert.Equal(t, "4 + 3 × 2 = ?", d.Prompt.Text)
	assert.Equal(t, "10", d.Answer)
	assert.Contains(t, d.Options, "14")
	assert.Contains(t, d.Options, "10")
	assert.Len(t, d.Options, orderOfOperationsOptions)
	assert.Contains(t, d.Explanation, "3 × 2 = 6")
}

func TestOrderOfOperations_HardHasNestedGroups(t *testing.T) {
	src := NewSource(11)
	for i := 0; i < 20; i++ {
		e := Generate(TopicOrderOfOperations, DifficultyHard, src)
		assert.GreaterOrEqual(t, strings.Count(e.Prompt.Text, "("), 2, e.Prompt.Text)
	}
}

func TestDistributive_Simple(t *testing.T) {
	d := simpleDistributiveDraft(5, 3, 2)
	assert.Equal(t, "Expand: 5(3x + 2)", d.Prompt.Text)
	assert.Equal(t, "15x + 10", d.Answer)
	assert.Equal(t, FormatFreeText, d.Format)

	e := &Exercise{Format: d.Format, Answer: d.Answer}
	assert.True(t, CheckAnswer(e, TextAnswer("15x+10")))
}

func TestDistributive_Expanded(t *testing.T) {
	d := expandedDraft(2, 3, 3, 2)
	assert.Equal(t, "Expand: (2x + 3)(3x + 2)", d.Prompt.Text)
	assert.Equal(t, FormatMultiPart, d.Format)
	assert.Equal(t, "6x² + 13x + 6", d.Answer)

	e := &Exercise{Format: d.Format, Answer: d.Answer, Parts: d.Parts}
	assert.Equal(t, map[string]string{PartX2: "6", PartX: "13", PartC: "6"}, e.PartMap())
	assert.True(t, CheckAnswer(e, PartsAnswer(map[string]string{PartX2: "6", PartX: "13", PartC: "6"})))
	assert.False(t, CheckAnswer(e, PartsAnswer(map[string]string{PartX2: "6", PartX: "12", PartC: "6"})))
}

func TestShortMultiplication(t *testing.T) {
	tests := []struct {
		v          Variant
		a, b       int
		wantPrompt string
		wantAnswer string
	}{
		{VariantSquareOfSum, 2, 5, "Expand: (2x + 5)²", "4x² + 20x + 25"},
		{VariantSquareOfDifference, 2, 5, "Expand: (2x - 5)²", "4x² - 20x + 25"},
		{VariantDifferenceSquares, 1, 3, "Expand: (x - 3)(x + 3)", "x² - 9"},
	}
	for _, tt := range tests {
		d := shortMultiplicationDraft(tt.v, tt.a, tt.b)
		assert.Equal(t, tt.wantPrompt, d.Prompt.Text)
		assert.Equal(t, tt.wantAnswer, d.Answer)
		e := &Exercise{Format: d.Format, Answer: d.Answer}
		assert.True(t, CheckAnswer(e, TextAnswer(strings.ReplaceAll(tt.wantAnswer, "²", "^2"))))
	}
}

func TestShortMultiplication_EasyOnlySquareOfSum(t *testing.T) {
	src := NewSource(8)
	for i := 0; i < 20; i++ {
		e := Generate(TopicShortMultiplication, DifficultyEasy, src)
		assert.Equal(t, VariantSquareOfSum, e.Variant)
	}
}

func TestIsosceles_MedianFromOtherVertex(t *testing.T) {
	d := buildIsosceles(ScenarioMedianFromOtherVertex, DifficultyHard, nil)
	assert.Equal(t, AnswerNo, d.Answer)
	assert.Equal(t, FormatMultipleChoice, d.Format)
	require.NotNil(t, d.Prompt.Figure)
	assert.Equal(t, "altitude from A, median from B", DescribeFigure(d.Prompt.Figure))
}

func TestIsosceles_EasyIsIdentification(t *testing.T) {
	src := NewSource(4)
	for i := 0; i < 20; i++ {
		e := Generate(TopicIsosceles, DifficultyEasy, src)
		assert.ElementsMatch(t, []string{"altitude", "median", "angle bisector"}, e.Options)
	}
}

func TestIsosceles_ScenarioTableIsolated(t *testing.T) {
	d := buildIsosceles(ScenarioAltitudeIsMedian, DifficultyMedium, nil)
	d.Prompt.Figure.Lines[0].From = "Z"
	d.Options[0] = "maybe"
	again := buildIsosceles(ScenarioAltitudeIsMedian, DifficultyMedium, nil)
	assert.Equal(t, "A", again.Prompt.Figure.Lines[0].From)
	assert.Equal(t, AnswerYes, again.Options[0])
}

func TestHintFor(t *testing.T) {
	g := New(DefaultRegistry(), DefaultConfig())

	e := &Exercise{Topic: TopicShortMultiplication, Variant: VariantSquareOfDifference}
	assert.Equal(t, "(a - b)² = a² - 2ab + b²", g.HintFor(e))

	e = &Exercise{Topic: TopicDistributive, Variant: VariantExpanded}
	assert.NotEmpty(t, g.HintFor(e))

	e = &Exercise{Topic: TopicIsosceles, Variant: ScenarioAltitudeOnly}
	assert.Empty(t, g.HintFor(e))
}

func TestRegistry(t *testing.T) {
	r := DefaultRegistry()
	assert.Equal(t, []Topic{
		TopicOrderOfOperations, TopicDistributive, TopicShortMultiplication, TopicIsosceles,
	}, r.Topics())

	topic, ok := r.ParseTopic(" Short-Multiplication ")
	assert.True(t, ok)
	assert.Equal(t, TopicShortMultiplication, topic)

	_, ok = r.ParseTopic("trigonometry")
	assert.False(t, ok)

	assert.Error(t, r.Register(distributiveRule()), "duplicate topic")
	assert.Error(t, r.Register(&Rule{Topic: "empty"}), "rule without Build")
}

func TestRegistry_CustomRule(t *testing.T) {
	rule := &Rule{
		Topic:       "doubling",
		MaxAttempts: 2,
		Points:      map[Difficulty]int{DifficultyEasy: 1, DifficultyMedium: 2, DifficultyHard: 3},
		Variants: map[Difficulty][]Variant{
			DifficultyEasy: {"x"}, DifficultyMedium: {"x"}, DifficultyHard: {"x"},
		},
		Build: func(_ Variant, _ Difficulty, src Source) Draft {
			n := between(src, 1, 9)
			return Draft{
				Prompt: Prompt{Text: "Double " + strconv.Itoa(n)},
				Format: FormatFreeText,
				Answer: strconv.Itoa(2 * n),
			}
		},
	}
	g := New(NewRegistry(rule), Config{Validators: []Validator{&StructuralValidator{}}, MaxDraws: 1})
	e := g.Generate("doubling", DifficultyHard, NewSource(2))
	assert.Equal(t, Topic("doubling"), e.Topic)
	assert.Equal(t, Variant("x"), e.Variant)
	assert.Equal(t, 3, e.Points)
	assert.Equal(t, 2, e.MaxAttempts)
}

func TestParseDifficulty(t *testing.T) {
	for _, d := range Difficulties {
		got, ok := ParseDifficulty(strings.ToUpper(d.String()))
		assert.True(t, ok)
		assert.Equal(t, d, got)
	}
	_, ok := ParseDifficulty("insane")
	assert.False(t, ok)
}
