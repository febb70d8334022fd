package learn

import (
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/mathdrill/internal/learn"
	"github.com/abhisek/mathdrill/internal/problemgen"
	"github.com/abhisek/mathdrill/internal/router"
)

func newScreen() *LearnScreen {
	gen := problemgen.New(problemgen.DefaultRegistry(), problemgen.DefaultConfig())
	return New(learn.NewCatalog(gen))
}

func press(s *LearnScreen, msg tea.KeyPressMsg) tea.Cmd {
	_, cmd := s.Update(msg)
	return cmd
}

func TestLearnListsTopics(t *testing.T) {
	s := newScreen()
	view := s.View(100, 30)
	assert.Contains(t, view, "Order of operations")
	assert.Contains(t, view, "Distributive property")
	assert.Contains(t, view, "Isosceles triangle reasoning")
	assert.Equal(t, "Learn", s.Title())
	assert.False(t, s.CapturesEsc())
}

func TestLearnOpensAndClosesLesson(t *testing.T) {
	s := newScreen()
	press(s, tea.KeyPressMsg{Code: tea.KeyDown})
	press(s, tea.KeyPressMsg{Code: tea.KeyDown})
	press(s, tea.KeyPressMsg{Code: tea.KeyEnter})

	require.True(t, s.open)
	assert.Equal(t, "Learn · Short multiplication formulas", s.Title())
	assert.True(t, s.CapturesEsc())
	view := s.View(100, 60)
	assert.Contains(t, view, "(a - b)(a + b) = a² - b²")
	assert.Contains(t, view, "WORKED EXAMPLE")

	press(s, tea.KeyPressMsg{Code: tea.KeyRight})
	assert.Equal(t, "Learn · Isosceles triangle reasoning", s.Title())

	assert.Nil(t, press(s, tea.KeyPressMsg{Code: tea.KeyEscape}))
	assert.False(t, s.open)

	cmd := press(s, tea.KeyPressMsg{Code: tea.KeyEscape})
	require.NotNil(t, cmd)
	assert.IsType(t, router.PopScreenMsg{}, cmd())
}

func TestLearnAreaModelIsInteractive(t *testing.T) {
	s := newScreen()
	press(s, tea.KeyPressMsg{Code: tea.KeyDown})
	press(s, tea.KeyPressMsg{Code: tea.KeyEnter})
	require.True(t, s.lessons[s.selected].AreaModel)
	assert.Contains(t, s.View(100, 60), "AREA MODEL")

	press(s, tea.KeyPressMsg{Code: '+', Text: "+"})
	assert.Equal(t, learn.AreaModel{A: 4, B: 5, C: 2}, s.area)

	press(s, tea.KeyPressMsg{Code: tea.KeyTab})
	press(s, tea.KeyPressMsg{Code: tea.KeyTab})
	press(s, tea.KeyPressMsg{Code: '-', Text: "-"})
	assert.Equal(t, learn.AreaModel{A: 4, B: 5, C: 1}, s.area)
	assert.Contains(t, s.View(100, 60), "20 + 4 = 24")

	// Other lessons ignore the area keys.
	press(s, tea.KeyPressMsg{Code: tea.KeyLeft})
	press(s, tea.KeyPressMsg{Code: '+', Text: "+"})
	assert.Equal(t, learn.AreaModel{A: 4, B: 5, C: 1}, s.area)
}
