package learn

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/mathdrill/internal/problemgen"
)

func newCatalog() *Catalog {
	return NewCatalog(problemgen.New(problemgen.DefaultRegistry(), problemgen.DefaultConfig()))
}

func TestLessonsCoverEveryTopic(t *testing.T) {
	c := newCatalog()
	lessons := c.Lessons()

	topics := problemgen.DefaultRegistry().Topics()
	require.Len(t, lessons, len(topics))
	for i, l := range lessons {
		assert.Equal(t, topics[i], l.Topic)
		assert.NotEmpty(t, l.Title, "topic %s", l.Topic)
		assert.NotEmpty(t, l.Summary, "topic %s", l.Topic)
		assert.NotEmpty(t, l.Steps, "topic %s", l.Topic)
		assert.NotEmpty(t, l.Example.Prompt, "topic %s", l.Topic)
		assert.NotEmpty(t, l.Example.Answer, "topic %s", l.Topic)
		assert.Len(t, l.Points, 3, "topic %s", l.Topic)
	}
}

func TestLessonFollowsRule(t *testing.T) {
	c := newCatalog()

	l, ok := c.Lesson(problemgen.TopicShortMultiplication)
	require.True(t, ok)
	assert.Equal(t, "Short multiplication formulas", l.Title)
	assert.Equal(t, []string{
		"(a + b)² = a² + 2ab + b²",
		"(a - b)² = a² - 2ab + b²",
		"(a - b)(a + b) = a² - b²",
	}, l.Formulas)
	assert.Equal(t, 3, l.MaxAttempts)
	assert.Equal(t, map[string]int{"easy": 15, "medium": 20, "hard": 25}, l.Points)
	assert.False(t, l.AreaModel)

	l, ok = c.Lesson(problemgen.TopicIsosceles)
	require.True(t, ok)
	assert.Equal(t, 1, l.MaxAttempts)
	assert.Empty(t, l.Formulas)
	assert.NotEmpty(t, l.Example.Figure)
	assert.Contains(t, l.Example.Options, l.Example.Answer)

	l, ok = c.Lesson(problemgen.TopicDistributive)
	require.True(t, ok)
	assert.True(t, l.AreaModel)

	_, ok = c.Lesson("calculus")
	assert.False(t, ok)
}

func TestLessonExampleIsStable(t *testing.T) {
	c := newCatalog()
	first, ok := c.Lesson(problemgen.TopicOrderOfOperations)
	require.True(t, ok)
	second, _ := c.Lesson(problemgen.TopicOrderOfOperations)
	assert.Equal(t, first.Example, second.Example)
	assert.Len(t, first.Example.Options, 4)
	assert.Contains(t, first.Example.Options, first.Example.Answer)
}

func TestAreaModelArithmetic(t *testing.T) {
	m := DefaultAreaModel()
	assert.Equal(t, 15, m.Left())
	assert.Equal(t, 6, m.Right())
	assert.Equal(t, 21, m.Total())
	assert.Equal(t, "3(5 + 2) = 15 + 6 = 21", m.Equation())
}

func TestAreaModelClamps(t *testing.T) {
	m := NewAreaModel(0, -4, 500)
	assert.Equal(t, AreaModel{A: 1, B: 1, C: MaxOperand}, m)

	m = m.Adjust(OperandA, -1)
	assert.Equal(t, 1, m.Get(OperandA))
	m = m.Adjust(OperandB, 4)
	assert.Equal(t, 5, m.Get(OperandB))
	m = m.Adjust(OperandC, 1)
	assert.Equal(t, MaxOperand, m.Get(OperandC))
}

func TestAreaModelRender(t *testing.T) {
	m := NewAreaModel(3, 6, 2)
	lines := m.Render(40)
	require.Len(t, lines, 6)

	width := utf8.RuneCountInString(lines[0])
	assert.LessOrEqual(t, width, 40)
	for i, line := range lines {
		assert.Equal(t, width, utf8.RuneCountInString(line), "line %d: %q", i, line)
	}

	middle := lines[3]
	assert.True(t, strings.HasPrefix(middle, "3 │"), middle)
	assert.Contains(t, middle, "18")
	assert.Contains(t, middle, "6")

	// The b part is three times as wide as the c part.
	top := lines[1]
	split := strings.IndexRune(top, '┬')
	end := strings.IndexRune(top, '┐')
	lw := utf8.RuneCountInString(top[:split]) - 3
	rw := utf8.RuneCountInString(top[split:end]) - 1
	assert.Greater(t, lw, 2*rw)
}

func TestAreaModelRenderKeepsLabelsInNarrowSpace(t *testing.T) {
	m := NewAreaModel(99, 1, 99)
	lines := m.Render(10)
	middle := lines[3]
	assert.Contains(t, middle, "99")
	assert.Contains(t, middle, "9801")
	width := utf8.RuneCountInString(lines[0])
	for _, line := range lines {
		assert.Equal(t, width, utf8.RuneCountInString(line))
	}
}
