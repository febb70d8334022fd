// Package tui is the terminal front end: a router of screens under a shared
// header and footer.
package tui

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/sirupsen/logrus"

	"github.com/abhisek/mathdrill/internal/identity"
	"github.com/abhisek/mathdrill/internal/leaderboard"
	"github.com/abhisek/mathdrill/internal/problemgen"
	"github.com/abhisek/mathdrill/internal/router"
	"github.com/abhisek/mathdrill/internal/scoring"
	"github.com/abhisek/mathdrill/internal/screen"
	"github.com/abhisek/mathdrill/internal/screens/home"
	sessionscreen "github.com/abhisek/mathdrill/internal/screens/session"
	"github.com/abhisek/mathdrill/internal/screens/welcome"
	sess "github.com/abhisek/mathdrill/internal/session"
	"github.com/abhisek/mathdrill/internal/store"
	"github.com/abhisek/mathdrill/internal/ui/layout"
)

// Deps wires the front end. Principal may be nil, in which case the player
// signs in on the welcome screen. Any store or service may be nil.
type Deps struct {
	Principal *identity.Principal

	Users     store.UserRepo
	Events    store.EventRepo
	Board     *leaderboard.Service
	Publisher scoring.ScorePublisher

	Generator      *problemgen.Generator
	NewExplainer   func() sess.Explainer
	ExplainTimeout time.Duration
}

// keeperReadyMsg carries the score keeper built after sign-in.
type keeperReadyMsg struct {
	keeper *scoring.Keeper
	err    error
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	ctx    context.Context
	deps   Deps
	router *router.Router
	keeper *scoring.Keeper
	width  int
	height int
}

// newAppModel starts on the home screen when keeper is set and on the
// welcome screen otherwise.
func newAppModel(ctx context.Context, deps Deps, keeper *scoring.Keeper) AppModel {
	m := AppModel{ctx: ctx, deps: deps, keeper: keeper}
	if keeper != nil {
		m.router = router.New(m.homeScreen())
	} else {
		m.router = router.New(welcome.New(m.signIn))
	}
	return m
}

func (m AppModel) signIn(p identity.Principal) tea.Cmd {
	return func() tea.Msg {
		k, err := newKeeper(m.ctx, m.deps, p)
		return keeperReadyMsg{keeper: k, err: err}
	}
}

// newKeeper opens a keeper for p. If the store cannot load the player the
// keeper falls back to an in-memory one so the game stays playable.
func newKeeper(ctx context.Context, deps Deps, p identity.Principal) (*scoring.Keeper, error) {
	k, err := scoring.NewKeeper(ctx, scoring.Config{
		Principal: p,
		Users:     deps.Users,
		Events:    deps.Events,
		Publisher: deps.Publisher,
	})
	if err == nil {
		return k, nil
	}
	logrus.WithError(err).WithField("uid", p.UID).Warn("Score keeper unavailable, scores will not be saved")
	return scoring.NewKeeper(ctx, scoring.Config{Principal: p})
}

func (m AppModel) homeScreen() screen.Screen {
	return home.New(home.Deps{
		Principal: m.keeper.Principal(),
		Session: sessionscreen.Deps{
			Keeper:         m.keeper,
			Generator:      m.deps.Generator,
			NewExplainer:   m.deps.NewExplainer,
			ExplainTimeout: m.deps.ExplainTimeout,
		},
		Events: m.deps.Events,
		Board:  m.deps.Board,
	})
}

func (m AppModel) Init() tea.Cmd {
	return m.router.Active().Init()
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case keeperReadyMsg:
		if msg.err != nil {
			logrus.WithError(msg.err).Error("Sign-in failed")
			return m, tea.Quit
		}
		m.keeper = msg.keeper
		return m, m.router.Replace(m.homeScreen())

	case tea.KeyPressMsg:
		switch msg.String() {
		case "ctrl+c":
			m.router.Close()
			return m, tea.Quit
		case "esc":
			if c, ok := m.router.Active().(screen.EscCapturer); ok && c.CapturesEsc() {
				break
			}
			if m.router.Depth() > 1 {
				return m, func() tea.Msg { return router.PopScreenMsg{} }
			}
			return m, nil
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) status() layout.Status {
	if m.keeper == nil {
		return layout.Status{}
	}
	p := m.keeper.Principal()
	t := m.keeper.CurrentTotals(m.ctx)
	return layout.Status{
		Username:  p.Username,
		Guest:     p.Guest,
		Score:     t.Score,
		Completed: t.CompletedExercises,
	}
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}

	if layout.IsTooSmall(m.width, m.height) {
		v.SetContent(layout.RenderMinSizeMessage(m.width, m.height))
		return v
	}

	active := m.router.Active()
	title := ""
	if active != nil {
		title = active.Title()
	}

	header := layout.RenderHeader(title, m.status(), m.width)

	var footerHints []layout.KeyHint
	if p, ok := active.(screen.KeyHintProvider); ok {
		footerHints = p.KeyHints()
	} else if m.router.Depth() > 1 {
		footerHints = []layout.KeyHint{
			{Key: "Esc", Description: "Back"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	} else {
		footerHints = []layout.KeyHint{
			{Key: "↑↓", Description: "Navigate"},
			{Key: "Enter", Description: "Select"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	}

	footer := layout.RenderFooter(footerHints, m.width)

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := max(m.height-headerHeight-footerHeight, 0)

	content := m.router.View(m.width, contentHeight)
	frame := layout.RenderFrame(header, content, footer, m.width, m.height)

	v.SetContent(frame)
	return v
}

// Run starts the Bubble Tea program and blocks until the player quits.
// Running sessions are recorded and pending scores flushed before it
// returns.
func Run(ctx context.Context, deps Deps) error {
	var keeper *scoring.Keeper
	if deps.Principal != nil {
		k, err := newKeeper(ctx, deps, *deps.Principal)
		if err != nil {
			return fmt.Errorf("sign in: %w", err)
		}
		keeper = k
	}

	m := newAppModel(ctx, deps, keeper)
	p := tea.NewProgram(m, tea.WithContext(ctx))
	final, err := p.Run()

	m.router.Close()
	if fm, ok := final.(AppModel); ok && fm.keeper != nil {
		fm.keeper.Close()
	} else if keeper != nil {
		keeper.Close()
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, "Error running program:", err)
		return err
	}
	return nil
}
