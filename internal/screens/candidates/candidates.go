package candidates

import (
	"context"

	tea "charm.land/bubbletea/v2"

	sess "github.com/abhisek/crispterm/internal/interview"
	"github.com/abhisek/crispterm/internal/remote"
	"github.com/abhisek/crispterm/internal/router"
	"github.com/abhisek/crispterm/internal/screen"
	"github.com/abhisek/crispterm/internal/ui/components"
	"github.com/abhisek/crispterm/internal/ui/layout"
)

// sortOrders is the cycle the "s" key walks through.
var sortOrders = []string{
	remote.SortScoreDesc,
	remote.SortScoreAsc,
	remote.SortCreatedDesc,
	remote.SortCreatedAsc,
}

// candidatesLoadedMsg is sent when the candidate list fetch completes.
type candidatesLoadedMsg struct {
	Candidates []remote.Candidate
	Err        error
}

// detailLoadedMsg is sent when a single interview fetch completes.
type detailLoadedMsg struct {
	Session *sess.Session
	Err     error
}

// CandidatesScreen lists finalized interviews from the remote store and
// drills into a single candidate's full session.
type CandidatesScreen struct {
	store remote.Store

	candidates []remote.Candidate
	selected   int
	sortIdx    int
	search     components.TextInput
	searching  bool
	query      string
	detail     *sess.Session
	loading    bool
	errMsg     string
}

var _ screen.Screen = (*CandidatesScreen)(nil)
var _ screen.KeyHintProvider = (*CandidatesScreen)(nil)

// New creates a CandidatesScreen backed by the given store.
func New(store remote.Store) *CandidatesScreen {
	return &CandidatesScreen{
		store:  store,
		search: components.NewTextInput("name or email...", 60),
	}
}

func (c *CandidatesScreen) Init() tea.Cmd {
	return c.load()
}

func (c *CandidatesScreen) Title() string {
	return "Candidates"
}

func (c *CandidatesScreen) KeyHints() []layout.KeyHint {
	if c.detail != nil {
		return []layout.KeyHint{
			{Key: "Esc", Description: "Back to list"},
		}
	}
	if c.searching {
		return []layout.KeyHint{
			{Key: "Enter", Description: "Search"},
			{Key: "Esc", Description: "Cancel"},
		}
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Select"},
		{Key: "Enter", Description: "Open"},
		{Key: "S", Description: "Sort"},
		{Key: "/", Description: "Search"},
		{Key: "Esc", Description: "Back"},
	}
}

func (c *CandidatesScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case candidatesLoadedMsg:
		c.loading = false
		if msg.Err != nil {
			c.errMsg = msg.Err.Error()
			return c, nil
		}
		c.errMsg = ""
		c.candidates = msg.Candidates
		if c.selected >= len(c.candidates) {
			c.selected = 0
		}
		return c, nil

	case detailLoadedMsg:
		c.loading = false
		if msg.Err != nil {
			c.errMsg = msg.Err.Error()
			return c, nil
		}
		c.errMsg = ""
		c.detail = msg.Session
		return c, nil

	case tea.KeyMsg:
		return c.handleKey(msg)
	}

	if c.searching {
		var cmd tea.Cmd
		c.search, cmd = c.search.Update(msg)
		return c, cmd
	}
	return c, nil
}

func (c *CandidatesScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()

	if c.detail != nil {
		if key == "esc" || key == "q" {
			c.detail = nil
		}
		return c, nil
	}

	if c.searching {
		switch key {
		case "enter":
			c.searching = false
			c.query = c.search.Value()
			return c, c.load()
		case "esc":
			c.searching = false
			c.search.SetValue(c.query)
			return c, nil
		}
		var cmd tea.Cmd
		c.search, cmd = c.search.Update(msg)
		return c, cmd
	}

	switch key {
	case "esc", "q":
		return c, func() tea.Msg { return router.PopScreenMsg{} }
	case "up", "k":
		if c.selected > 0 {
			c.selected--
		}
	case "down", "j":
		if c.selected < len(c.candidates)-1 {
			c.selected++
		}
	case "enter":
		if c.selected >= 0 && c.selected < len(c.candidates) {
			return c, c.open(c.candidates[c.selected].SessionID)
		}
	case "s":
		c.sortIdx = (c.sortIdx + 1) % len(sortOrders)
		return c, c.load()
	case "/":
		c.searching = true
		return c, c.search.Focus()
	case "r":
		return c, c.load()
	}
	return c, nil
}

// load fetches the candidate list with the current query and sort.
func (c *CandidatesScreen) load() tea.Cmd {
	c.loading = true
	store := c.store
	opts := remote.ListOptions{Query: c.query, Sort: sortOrders[c.sortIdx]}
	return func() tea.Msg {
		list, err := store.List(context.Background(), opts)
		return candidatesLoadedMsg{Candidates: list, Err: err}
	}
}

// open fetches one candidate's full interview.
func (c *CandidatesScreen) open(sessionID string) tea.Cmd {
	c.loading = true
	store := c.store
	return func() tea.Msg {
		s, err := store.Get(context.Background(), sessionID)
		return detailLoadedMsg{Session: s, Err: err}
	}
}
