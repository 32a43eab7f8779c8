package home

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	sess "github.com/abhisek/crispterm/internal/interview"
	"github.com/abhisek/crispterm/internal/remote"
	"github.com/abhisek/crispterm/internal/router"
	"github.com/abhisek/crispterm/internal/screen"
	"github.com/abhisek/crispterm/internal/screens/candidates"
	interviewscreen "github.com/abhisek/crispterm/internal/screens/interview"
	"github.com/abhisek/crispterm/internal/store"
	"github.com/abhisek/crispterm/internal/ui/components"
	"github.com/abhisek/crispterm/internal/ui/theme"
)

// HomeScreen is the main menu of the application.
type HomeScreen struct {
	menu      components.Menu
	role      string
	topic     string
	resumable *sess.Session
	aiReady   bool
}

var _ screen.Screen = (*HomeScreen)(nil)

// New creates a new HomeScreen. cache and remoteStore may be nil.
func New(engine *sess.Engine, cache store.SessionCache, remoteStore remote.Store, role, topic string, aiReady bool) *HomeScreen {
	// An unfinished cached session enables the resume entry.
	var resumable *sess.Session
	if cache != nil {
		if cached, err := cache.Load(context.Background()); err == nil && cached != nil {
			switch cached.Status {
			case sess.StatusCollectingProfile, sess.StatusGeneratingQuestions, sess.StatusInProgress:
				resumable = cached
			}
		}
	}

	items := []components.MenuItem{
		{Label: "START INTERVIEW", Action: func() tea.Cmd {
			return func() tea.Msg {
				return router.PushScreenMsg{Screen: interviewscreen.New(engine, nil)}
			}
		}},
	}
	if resumable != nil {
		items = append(items, components.MenuItem{Label: "RESUME INTERVIEW", Action: func() tea.Cmd {
			return func() tea.Msg {
				return router.PushScreenMsg{Screen: interviewscreen.New(engine, resumable)}
			}
		}})
	}
	if remoteStore != nil {
		items = append(items, components.MenuItem{Label: "BROWSE CANDIDATES", Action: func() tea.Cmd {
			return func() tea.Msg {
				return router.PushScreenMsg{Screen: candidates.New(remoteStore)}
			}
		}})
	}
	items = append(items, components.MenuItem{Label: "EXIT", Action: func() tea.Cmd {
		return tea.Quit
	}})

	return &HomeScreen{
		menu:      components.NewMenu(items),
		role:      role,
		topic:     topic,
		resumable: resumable,
		aiReady:   aiReady,
	}
}

func (h *HomeScreen) Init() tea.Cmd {
	return nil
}

func (h *HomeScreen) Title() string {
	return "Home"
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) View(width, height int) string {
	var b strings.Builder
	b.WriteString("\n\n")
	b.WriteString(theme.Title.Width(width).Render("CrispTerm"))
	b.WriteString("\n")

	subtitle := fmt.Sprintf("Timed %s screening interview", h.role)
	if h.topic != "" {
		subtitle += " · " + h.topic
	}
	b.WriteString(theme.Subtitle.Width(width).Render(subtitle))
	b.WriteString("\n\n")

	if h.resumable != nil {
		note := fmt.Sprintf("Unfinished interview for %s found.", h.resumable.Profile.Name)
		if h.resumable.Profile.Name == "" {
			note = "Unfinished interview found."
		}
		b.WriteString(lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Foreground(theme.Accent).
			Render(note))
		b.WriteString("\n\n")
	}

	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, h.menu.View()))

	if !h.aiReady {
		b.WriteString("\n")
		b.WriteString(theme.Subtitle.Width(width).Render(
			"No LLM credentials found — questions and scoring use the built-in bank."))
	}

	return b.String()
}
