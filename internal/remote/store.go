// Package remote talks to the authoritative interview store. The
// engine pushes one finalized snapshot there on completion; the
// candidates command reads the roster back.
package remote

import (
	"context"
	"sort"
	"strings"

	"github.com/abhisek/crispterm/internal/interview"
)

// Sort orders for candidate listings.
const (
	SortScoreDesc   = "-score"
	SortScoreAsc    = "score"
	SortCreatedDesc = "-created"
	SortCreatedAsc  = "created"
)

// listLimit caps how many candidates a listing returns.
const listLimit = 200

// ListOptions filters and orders a candidate listing.
type ListOptions struct {
	// Query matches case-insensitively against name and email.
	Query string

	// Sort is one of the Sort* constants. Empty means SortScoreDesc.
	Sort string
}

// Candidate is one row of the roster.
type Candidate struct {
	SessionID  string `json:"sessionId"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	FinalScore int    `json:"finalScore"`
	Summary    string `json:"summary"`
	CreatedAt  int64  `json:"createdAt"`
}

// Store is the client view of the remote interview store.
type Store interface {
	// Push uploads one completed session. Implements
	// interview.Publisher.
	Push(ctx context.Context, s interview.Session) error

	// Get fetches a full session by its ID.
	Get(ctx context.Context, sessionID string) (*interview.Session, error)

	// List returns the candidate roster.
	List(ctx context.Context, opts ListOptions) ([]Candidate, error)
}

// matchCandidate reports whether c matches the query.
func matchCandidate(c Candidate, query string) bool {
	if query == "" {
		return true
	}
	q := strings.ToLower(query)
	return strings.Contains(strings.ToLower(c.Name), q) ||
		strings.Contains(strings.ToLower(c.Email), q)
}

// sortCandidates orders the roster in place.
func sortCandidates(list []Candidate, order string) {
	var less func(a, b Candidate) bool
	switch order {
	case SortScoreAsc:
		less = func(a, b Candidate) bool { return a.FinalScore < b.FinalScore }
	case SortCreatedDesc:
		less = func(a, b Candidate) bool { return a.CreatedAt > b.CreatedAt }
	case SortCreatedAsc:
		less = func(a, b Candidate) bool { return a.CreatedAt < b.CreatedAt }
	default: // SortScoreDesc
		less = func(a, b Candidate) bool { return a.FinalScore > b.FinalScore }
	}
	sort.SliceStable(list, func(i, j int) bool { return less(list[i], list[j]) })
}

// candidateOf projects a session onto a roster row.
func candidateOf(s interview.Session) Candidate {
	c := Candidate{
		SessionID: s.SessionID,
		Name:      s.Profile.Name,
		Email:     s.Profile.Email,
		Summary:   s.Summary,
		CreatedAt: s.CreatedAt,
	}
	if s.FinalScore != nil {
		c.FinalScore = *s.FinalScore
	}
	return c
}
