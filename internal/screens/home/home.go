package home

import (
	"context"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/cybersage/internal/catalog"
	"github.com/abhisek/cybersage/internal/notify"
	"github.com/abhisek/cybersage/internal/router"
	"github.com/abhisek/cybersage/internal/screen"
	"github.com/abhisek/cybersage/internal/screens/certificates"
	"github.com/abhisek/cybersage/internal/screens/history"
	"github.com/abhisek/cybersage/internal/screens/modulemap"
	sessionscreen "github.com/abhisek/cybersage/internal/screens/session"
	"github.com/abhisek/cybersage/internal/store"
	"github.com/abhisek/cybersage/internal/training"
	"github.com/abhisek/cybersage/internal/ui/components"
	"github.com/abhisek/cybersage/internal/ui/layout"
)

// Namer provides the learner's display name.
type Namer interface {
	Name() string
}

// unlocksAnnouncedMsg reports modules announced as unlocked on arrival.
type unlocksAnnouncedMsg struct {
	IDs []string
	Err error
}

// HomeScreen is the main home screen of the application.
type HomeScreen struct {
	orch  *training.Orchestrator
	namer Namer

	menu          components.Menu
	menuLabels    []string
	overview      training.Overview
	mascotVariant MascotVariant
}

var _ screen.Screen = (*HomeScreen)(nil)
var _ screen.Resumer = (*HomeScreen)(nil)

// New creates a new HomeScreen. namer and eventRepo may be nil; without an
// event repo there is no history entry.
func New(orch *training.Orchestrator, namer Namer, eventRepo store.EventRepo) *HomeScreen {
	push := func(build func() screen.Screen) func() tea.Cmd {
		return func() tea.Cmd {
			s := build()
			return func() tea.Msg { return router.PushScreenMsg{Screen: s} }
		}
	}

	var labels []string
	var items []components.MenuItem
	add := func(label string, action func() tea.Cmd) {
		labels = append(labels, label)
		items = append(items, components.MenuItem{Label: label, Action: action})
	}

	add("TRAIN", push(func() screen.Screen { return modulemap.New(orch) }))
	add("PRACTICE", push(func() screen.Screen { return sessionscreen.NewPractice(orch, catalog.Easy) }))
	add("CERTIFICATES", push(func() screen.Screen { return certificates.New(orch.Tracker()) }))
	if eventRepo != nil {
		add("HISTORY", push(func() screen.Screen { return history.New(eventRepo, orch.Catalog()) }))
	}
	add("EXIT", func() tea.Cmd { return tea.Quit })

	h := &HomeScreen{
		orch:       orch,
		namer:      namer,
		menu:       components.NewMenu(items),
		menuLabels: labels,
	}
	h.refresh()
	return h
}

func (h *HomeScreen) Init() tea.Cmd {
	return h.announceUnlocks()
}

// Resume refreshes progress after returning from a quiz or another screen.
func (h *HomeScreen) Resume() tea.Cmd {
	h.refresh()
	return h.announceUnlocks()
}

// announceUnlocks announces modules whose prerequisites were met since the
// last visit.
func (h *HomeScreen) announceUnlocks() tea.Cmd {
	orch := h.orch
	return func() tea.Msg {
		ids, err := orch.AnnounceUnlocks(context.Background())
		return unlocksAnnouncedMsg{IDs: ids, Err: err}
	}
}

func (h *HomeScreen) refresh() {
	h.overview = h.orch.Overview()
	h.mascotVariant = mascotFor(h.overview.Completed, h.overview.Total, h.overview.ReadyToUnlock)
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case unlocksAnnouncedMsg:
		h.refresh()
		return h, nil
	case screen.ProgressEventMsg:
		switch msg.Event.Kind {
		case notify.ModuleUnlocked, notify.ModuleCompleted, notify.LevelUp:
			h.refresh()
		}
		return h, nil
	}

	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) View(width, height int) string {
	// height is the content area; estimate full terminal height
	// by adding back header + footer + frame gaps
	termHeight := height + layout.HeaderHeight + layout.FooterHeight + 2
	compact := layout.IsCompactHeight(termHeight) || layout.IsCompactWidth(width)

	// All sections share a uniform content width so they line up.
	cw := components.ContentWidth(width)

	var sections []string

	sections = append(sections, renderTitle(cw, compact))

	if !compact {
		sections = append(sections, renderMascotBox(h.mascotVariant, cw))
		name := ""
		if h.namer != nil {
			name = h.namer.Name()
		}
		sections = append(sections, renderGreeting(name, cw))
	}

	sections = append(sections, renderStatsBar(h.overview, cw, compact))
	sections = append(sections, renderCompletion(h.overview, cw))

	if compact {
		sections = append(sections, renderArcadeMenuCompact(h.menuLabels, h.menu.Selected, cw))
	} else {
		sections = append(sections, renderArcadeMenu(h.menuLabels, h.menu.Selected, cw))
	}

	content := strings.Join(sections, "\n\n")

	return components.CabinetFrame(content, width, height)
}

func (h *HomeScreen) Title() string {
	return "Home"
}
