package interview

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	sess "github.com/abhisek/crispterm/internal/interview"
	"github.com/abhisek/crispterm/internal/ui/components"
	"github.com/abhisek/crispterm/internal/ui/theme"
)

func (s *InterviewScreen) View(width, height int) string {
	if s.errMsg != "" {
		return renderError(width, s.errMsg)
	}
	if s.confirmQuit {
		return renderQuitConfirm(width)
	}
	switch s.phase {
	case phaseProfile:
		return s.renderProfile(width)
	case phaseParsingResume:
		return centeredDim(width, "\n\n\n  Reading resume...")
	case phaseGenerating:
		return s.renderGenerating(width)
	case phaseQuestion:
		return s.renderQuestion(width)
	case phaseScoring:
		return centeredDim(width, "\n\n\n  Scoring your answer...")
	case phaseFeedback:
		return s.renderFeedback(width)
	case phaseSummary:
		return s.renderSummary(width)
	}
	return centeredDim(width, "\n\n\n  Preparing your interview...")
}

func (s *InterviewScreen) renderProfile(width int) string {
	snap := s.engine.Session()

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(theme.Title.Width(width).Render(fmt.Sprintf("%s Interview", snap.Role)))
	b.WriteString("\n")
	b.WriteString(theme.Subtitle.Width(width).Render("Tell us who you are before we start"))
	b.WriteString("\n\n")

	var form strings.Builder
	for i := 0; i < fieldCount; i++ {
		label := fieldLabels[i]
		if i == s.focused {
			form.WriteString(theme.Selected.Render("▸ " + label))
		} else {
			form.WriteString(theme.Unselected.Render("  " + label))
		}
		form.WriteString("\n  ")
		form.WriteString(s.inputs[i].View())
		form.WriteString("\n\n")
	}
	if s.parsed != nil {
		form.WriteString(theme.Hint.Render("Resume loaded — fields prefilled where found."))
		form.WriteString("\n")
	}
	if s.formErr != "" {
		form.WriteString(lipgloss.NewStyle().Foreground(theme.Error).Render(s.formErr))
		form.WriteString("\n")
	}

	formWidth := min(width-8, 64)
	block := lipgloss.NewStyle().Width(formWidth).Render(form.String())
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, block))

	return b.String()
}

func (s *InterviewScreen) renderGenerating(width int) string {
	snap := s.engine.Session()
	var b strings.Builder
	b.WriteString("\n\n\n")
	b.WriteString(centeredDim(width, fmt.Sprintf("Generating %d interview questions for %s...", len(snap.Questions), snap.Profile.Name)))
	b.WriteString("\n\n")
	b.WriteString(theme.Subtitle.Width(width).Render("This usually takes a few seconds."))
	return b.String()
}

func (s *InterviewScreen) renderQuestion(width int) string {
	snap := s.engine.Session()
	q := snap.Active()
	if q == nil {
		return centeredDim(width, "\n\n  Loading question...")
	}

	var b strings.Builder

	infoLeft := lipgloss.NewStyle().
		Foreground(theme.Secondary).
		Bold(true).
		Render(fmt.Sprintf("  Question %d/%d", q.Index+1, len(snap.Questions)))

	infoRight := lipgloss.NewStyle().
		Foreground(theme.TextDim).
		Render(fmt.Sprintf("%s  score so far %d", q.Difficulty, snap.TotalScore()))

	infoLine := infoLeft
	rightPad := width - lipgloss.Width(infoLeft) - lipgloss.Width(infoRight) - 4
	if rightPad > 0 {
		infoLine += strings.Repeat(" ", rightPad) + infoRight
	}
	b.WriteString(infoLine)
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", width-4)))
	b.WriteString("\n\n")

	// Countdown bar.
	rem := q.AllottedMs
	if q.RemainingMs != nil {
		rem = *q.RemainingMs
	}
	frac := 0.0
	if q.AllottedMs > 0 {
		frac = float64(rem) / float64(q.AllottedMs)
	}
	bar := components.NewTimerBar(formatMs(rem), frac, min(width-8, 60))
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, bar.View()))
	b.WriteString("\n\n")

	text := q.Question
	if text == "" {
		text = "Preparing question..."
	}
	questionStyle := lipgloss.NewStyle().
		Width(min(width-8, 76)).
		Align(lipgloss.Center).
		Foreground(theme.Text).
		Bold(true)
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, questionStyle.Render(text)))
	b.WriteString("\n\n")

	answerLine := lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Render("Answer: " + s.answer.View())
	b.WriteString(answerLine)

	return b.String()
}

func (s *InterviewScreen) renderFeedback(width int) string {
	snap := s.engine.Session()

	var b strings.Builder
	b.WriteString("\n\n")

	if s.lastIndex >= 0 && s.lastIndex < len(snap.Questions) {
		q := snap.Questions[s.lastIndex]
		score := 0
		if q.Score != nil {
			score = *q.Score
		}
		style := theme.Bad
		if score >= 3 {
			style = theme.Good
		}
		b.WriteString(lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Render(style.Render(fmt.Sprintf("Score: %d/%d", score, sess.MaxQuestionScore))))
		b.WriteString("\n\n")
	}

	if fb := s.engine.LastFeedback(); fb != "" {
		fbStyle := lipgloss.NewStyle().
			Width(min(width-8, 70)).
			Foreground(theme.Text)
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, fbStyle.Render(fb)))
		b.WriteString("\n\n")
	}

	b.WriteString(centeredDim(width, "Press any key for the next question..."))
	return b.String()
}

func (s *InterviewScreen) renderSummary(width int) string {
	snap := s.engine.Session()

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(theme.Title.Width(width).Render("Interview Complete"))
	b.WriteString("\n\n")

	finalScore := 0
	if snap.FinalScore != nil {
		finalScore = *snap.FinalScore
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

	var table strings.Builder
	for _, q := range snap.Questions {
		score := "-"
		if q.Score != nil {
			score = fmt.Sprintf("%d/%d", *q.Score, sess.MaxQuestionScore)
		}
		table.WriteString(fmt.Sprintf("Q%d  %-6s  %s\n", q.Index+1, q.Difficulty, score))
	}
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
		lipgloss.NewStyle().Foreground(theme.Text).Render(table.String())))
	b.WriteString("\n")

	if snap.Summary != "" {
		sumStyle := lipgloss.NewStyle().
			Width(min(width-8, 70)).
			Foreground(theme.Text)
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, sumStyle.Render(snap.Summary)))
		b.WriteString("\n\n")
	}

	if warnings := s.engine.Warnings(); len(warnings) > 0 {
		warnStyle := lipgloss.NewStyle().
			Width(min(width-8, 70)).
			Foreground(theme.TextDim)
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			warnStyle.Render(strings.Join(warnings, "\n"))))
		b.WriteString("\n")
	}

	return b.String()
}

// renderQuitConfirm renders the leave confirmation dialog.
func renderQuitConfirm(width int) string {
	var b strings.Builder
	b.WriteString("\n\n\n")

	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Text).
		Bold(true).
		Render("Leave the interview?"))
	b.WriteString("\n")
	b.WriteString(centeredDim(width, "Your progress is saved and can be resumed from the menu."))
	b.WriteString("\n\n")

	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Success).
		Render("[Y] Yes, leave"))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Primary).
		Render("[N] No, keep going"))

	return b.String()
}

// renderError renders an error message.
func renderError(width int, errMsg string) string {
	return lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Error).
		Render(fmt.Sprintf("\n\n\n  Error: %s\n\n  Press any key to go back.", errMsg))
}

func centeredDim(width int, text string) string {
	return lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.TextDim).
		Render(text)
}

// formatMs renders milliseconds as m:ss.
func formatMs(ms int64) string {
	secs := (ms + 999) / 1000
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
