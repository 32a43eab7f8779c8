package candidates

import (
	"fmt"
	"strings"
	"time"

	"charm.land/lipgloss/v2"

	sess "github.com/abhisek/crispterm/internal/interview"
	"github.com/abhisek/crispterm/internal/ui/theme"
)

func (c *CandidatesScreen) View(width, height int) string {
	if c.errMsg != "" {
		return lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Foreground(theme.Error).
			Render(fmt.Sprintf("\n\n\n  %s\n\n  Press Esc to go back, R to retry.", c.errMsg))
	}
	if c.loading {
		return lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Foreground(theme.TextDim).
			Render("\n\n\n  Loading candidates...")
	}
	if c.detail != nil {
		return c.renderDetail(width)
	}
	return c.renderList(width, height)
}

func (c *CandidatesScreen) renderList(width, height int) string {
	var b strings.Builder
	b.WriteString("\n")

	header := fmt.Sprintf("  %-24s %-28s %6s  %s", "Name", "Email", "Score", "Completed")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true).Render(header))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", width-4)))
	b.WriteString("\n")

	sortLine := "sort: " + sortOrders[c.sortIdx]
	if c.query != "" {
		sortLine += "   filter: " + c.query
	}
	if c.searching {
		sortLine = "search: " + c.search.View()
	}
	b.WriteString(theme.Hint.Render("  " + sortLine))
	b.WriteString("\n\n")

	if len(c.candidates) == 0 {
		b.WriteString(lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Foreground(theme.TextDim).
			Render("No finalized interviews yet."))
		return b.String()
	}

	for i, cand := range c.candidates {
		line := fmt.Sprintf("%-24s %-28s %5d%%  %s",
			clip(cand.Name, 24),
			clip(cand.Email, 28),
			cand.FinalScore,
			formatEpochMs(cand.CreatedAt),
		)
		if i == c.selected {
			b.WriteString(theme.Selected.Render("  ▸ " + line))
		} else {
			b.WriteString(theme.Unselected.Render("    " + line))
		}
		b.WriteString("\n")
	}

	return b.String()
}

func (c *CandidatesScreen) renderDetail(width int) string {
	s := c.detail

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(theme.Title.Width(width).Render(s.Profile.Name))
	b.WriteString("\n")
	b.WriteString(theme.Subtitle.Width(width).Render(
		fmt.Sprintf("%s · %s · %s", s.Profile.Email, s.Profile.Phone, s.Role)))
	b.WriteString("\n\n")

	finalScore := 0
	if s.FinalScore != nil {
		finalScore = *s.FinalScore
	}
	scoreStyle := theme.Bad
	if finalScore >= 60 {
		scoreStyle = theme.Good
	}
	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Render(scoreStyle.Render(fmt.Sprintf("Final score: %d/100", finalScore))))
	b.WriteString("\n\n")

	var qs strings.Builder
	for _, q := range s.Questions {
		score := "-"
		if q.Score != nil {
			score = fmt.Sprintf("%d/%d", *q.Score, sess.MaxQuestionScore)
		}
		qs.WriteString(lipgloss.NewStyle().Foreground(theme.Secondary).Render(
			fmt.Sprintf("Q%d [%s] %s", q.Index+1, q.Difficulty, score)))
		qs.WriteString("\n")
		qs.WriteString(lipgloss.NewStyle().Foreground(theme.Text).Render(clip(q.Question, 72)))
		qs.WriteString("\n")
		qs.WriteString(lipgloss.NewStyle().Foreground(theme.TextDim).Render(clip(q.Answer, 72)))
		qs.WriteString("\n\n")
	}
	block := lipgloss.NewStyle().Width(minInt(width-8, 76)).Render(qs.String())
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, block))

	if s.Summary != "" {
		sumStyle := lipgloss.NewStyle().
			Width(minInt(width-8, 70)).
			Foreground(theme.Text)
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, sumStyle.Render(s.Summary)))
		b.WriteString("\n")
	}

	return b.String()
}

func clip(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}

func formatEpochMs(ms int64) string {
	if ms == 0 {
		return "-"
	}
	return time.UnixMilli(ms).Local().Format("2006-01-02 15:04")
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
