package home

import (
	"context"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/mathdrill/internal/identity"
	"github.com/abhisek/mathdrill/internal/leaderboard"
	"github.com/abhisek/mathdrill/internal/learn"
	"github.com/abhisek/mathdrill/internal/problemgen"
	"github.com/abhisek/mathdrill/internal/router"
	"github.com/abhisek/mathdrill/internal/screen"
	"github.com/abhisek/mathdrill/internal/screens/history"
	lbscreen "github.com/abhisek/mathdrill/internal/screens/leaderboard"
	learnscreen "github.com/abhisek/mathdrill/internal/screens/learn"
	sessionscreen "github.com/abhisek/mathdrill/internal/screens/session"
	"github.com/abhisek/mathdrill/internal/store"
	"github.com/abhisek/mathdrill/internal/ui/components"
	"github.com/abhisek/mathdrill/internal/ui/layout"
)

// Deps are the collaborators the home menu hands to the screens it opens.
type Deps struct {
	Principal identity.Principal
	Session   sessionscreen.Deps
	Events    store.EventRepo
	Board     *leaderboard.Service
}

// HomeScreen is the main menu.
type HomeScreen struct {
	deps     Deps
	menu     components.Menu
	disabled map[int]bool
}

var _ screen.Screen = (*HomeScreen)(nil)
var _ screen.KeyHintProvider = (*HomeScreen)(nil)

// New creates a new HomeScreen.
func New(deps Deps) *HomeScreen {
	h := &HomeScreen{deps: deps, disabled: make(map[int]bool)}

	push := func(build func() screen.Screen) func() tea.Cmd {
		return func() tea.Cmd {
			next := build()
			return func() tea.Msg { return router.PushScreenMsg{Screen: next} }
		}
	}

	items := []components.MenuItem{
		{Label: "PRACTICE", Shortcut: "p", Action: push(func() screen.Screen {
			return sessionscreen.NewSetup(deps.Session)
		})},
		{Label: "LEARN", Shortcut: "e", Action: push(func() screen.Screen {
			gen := deps.Session.Generator
			if gen == nil {
				gen = problemgen.New(problemgen.DefaultRegistry(), problemgen.DefaultConfig())
			}
			return learnscreen.New(learn.NewCatalog(gen))
		})},
		{Label: "LEADERBOARD", Shortcut: "l", Disabled: deps.Board == nil, Action: push(func() screen.Screen {
			topics := problemgen.DefaultRegistry().Topics()
			if deps.Session.Generator != nil {
				topics = deps.Session.Generator.Registry().Topics()
			}
			return lbscreen.New(deps.Board, deps.Principal.UID, topics)
		})},
		{Label: "HISTORY", Shortcut: "h", Disabled: deps.Events == nil, Action: push(func() screen.Screen {
			return history.New(deps.Events, deps.Principal)
		})},
		{Label: "EXIT", Shortcut: "q", Action: func() tea.Cmd { return tea.Quit }},
	}
	for i, item := range items {
		h.disabled[i] = item.Disabled
	}
	h.menu = components.NewMenu(items)
	return h
}

func (h *HomeScreen) Init() tea.Cmd {
	return nil
}

func (h *HomeScreen) Title() string {
	return "Home"
}

func (h *HomeScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Select"},
		{Key: "Q", Description: "Quit"},
	}
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) View(width, height int) string {
	// height is the content area; add back header, footer and frame gaps
	termHeight := height + layout.HeaderHeight + layout.FooterHeight + 2
	compact := layout.IsCompactHeight(termHeight) || layout.IsCompactWidth(width)

	cw := components.ContentWidth(width)

	var score, completed int
	if k := h.deps.Session.Keeper; k != nil {
		t := k.CurrentTotals(context.Background())
		score, completed = t.Score, t.CompletedExercises
	}

	var sections []string
	sections = append(sections, renderTitle(cw, compact))
	if !compact {
		sections = append(sections, renderMascotBox(mascotFor(h.deps.Principal.Guest, score), cw))
	}
	sections = append(sections, renderStatsBar(h.deps.Principal.Username, score, completed, cw, compact))

	if compact {
		sections = append(sections, renderArcadeMenuCompact(h.menu.Labels(), h.menu.Selected, cw, h.disabled))
	} else {
		sections = append(sections, renderArcadeMenu(h.menu.Labels(), h.menu.Selected, cw, h.disabled))
	}

	if h.deps.Session.NewExplainer == nil {
		sections = append(sections, renderLLMBanner(cw))
	}

	return components.CabinetFrame(strings.Join(sections, "\n\n"), width, height)
}
