package interview

import (
	"context"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"

	sess "github.com/abhisek/crispterm/internal/interview"
	"github.com/abhisek/crispterm/internal/resume"
	"github.com/abhisek/crispterm/internal/router"
	"github.com/abhisek/crispterm/internal/screen"
	"github.com/abhisek/crispterm/internal/ui/components"
	"github.com/abhisek/crispterm/internal/ui/layout"
)

// phase tracks what the screen is showing. It follows the engine's
// session status but adds transient display states the engine does not
// model (resume parsing, scoring, feedback).
type phase int

const (
	phaseStarting phase = iota
	phaseProfile
	phaseParsingResume
	phaseGenerating
	phaseQuestion
	phaseScoring
	phaseFeedback
	phaseSummary
)

// Profile form field order.
const (
	fieldResume = iota
	fieldName
	fieldEmail
	fieldPhone
	fieldCount
)

var fieldLabels = [fieldCount]string{
	"Resume file (PDF/DOCX, optional)",
	"Name",
	"Email",
	"Phone",
}

// InterviewScreen implements screen.Screen for the interview flow:
// profile collection, question generation, timed questions, feedback,
// and the final summary.
type InterviewScreen struct {
	engine    *sess.Engine
	recovered *sess.Session

	phase       phase
	inputs      [fieldCount]components.TextInput
	focused     int
	formErr     string
	parsed      *resume.Parsed
	answer      components.TextInput
	lastIndex   int
	ticking     bool
	confirmQuit bool
	errMsg      string
}

var _ screen.Screen = (*InterviewScreen)(nil)
var _ screen.KeyHintProvider = (*InterviewScreen)(nil)
var _ screen.StatusProvider = (*InterviewScreen)(nil)

// New creates an InterviewScreen. A non-nil recovered session is
// adopted instead of starting fresh.
func New(engine *sess.Engine, recovered *sess.Session) *InterviewScreen {
	s := &InterviewScreen{
		engine:    engine,
		recovered: recovered,
		phase:     phaseStarting,
		lastIndex: -1,
	}
	placeholders := [fieldCount]string{"~/resume.pdf", "Ada Lovelace", "ada@example.com", "555-000-1234"}
	for i := range s.inputs {
		s.inputs[i] = components.NewTextInput(placeholders[i], 120)
	}
	s.answer = components.NewTextInput("Type your answer...", 0)
	return s
}

func (s *InterviewScreen) Init() tea.Cmd {
	engine := s.engine
	recovered := s.recovered
	return func() tea.Msg {
		ctx := context.Background()
		if recovered != nil {
			return startedMsg{Err: engine.Resume(ctx, recovered)}
		}
		if err := engine.Reset(ctx); err != nil {
			return startedMsg{Err: err}
		}
		return startedMsg{Err: engine.StartProfileCollection(ctx)}
	}
}

func (s *InterviewScreen) Title() string {
	return "Interview"
}

// HeaderStatus shows the countdown while a question is live.
func (s *InterviewScreen) HeaderStatus() string {
	if s.phase != phaseQuestion && s.phase != phaseFeedback {
		return ""
	}
	snap := s.engine.Session()
	q := snap.Active()
	if q == nil || q.RemainingMs == nil {
		return ""
	}
	return "⏱ " + formatMs(*q.RemainingMs)
}

func (s *InterviewScreen) KeyHints() []layout.KeyHint {
	if s.confirmQuit {
		return []layout.KeyHint{
			{Key: "Y", Description: "Leave"},
			{Key: "N", Description: "Keep going"},
		}
	}
	switch s.phase {
	case phaseProfile:
		return []layout.KeyHint{
			{Key: "Enter", Description: "Next field"},
			{Key: "Tab", Description: "Switch field"},
			{Key: "Esc", Description: "Back"},
		}
	case phaseQuestion:
		return []layout.KeyHint{
			{Key: "Enter", Description: "Submit answer"},
			{Key: "Esc", Description: "Leave"},
		}
	case phaseFeedback:
		return []layout.KeyHint{
			{Key: "any key", Description: "Next question"},
		}
	case phaseSummary:
		return []layout.KeyHint{
			{Key: "Enter", Description: "Back to menu"},
		}
	}
	return nil
}

func (s *InterviewScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case startedMsg:
		return s.handleStarted(msg)

	case resumeParsedMsg:
		return s.handleResumeParsed(msg)

	case beginDoneMsg:
		return s.handleBeginDone(msg)

	case timerTickMsg:
		return s.handleTimerTick(msg)

	case answerResolvedMsg:
		return s.handleAnswerResolved()

	case questionEnsuredMsg:
		return s, nil

	case tea.KeyMsg:
		return s.handleKey(msg)
	}

	// Forward non-key messages (cursor blinks) to the focused input.
	switch s.phase {
	case phaseProfile:
		var cmd tea.Cmd
		s.inputs[s.focused], cmd = s.inputs[s.focused].Update(msg)
		return s, cmd
	case phaseQuestion:
		var cmd tea.Cmd
		s.answer, cmd = s.answer.Update(msg)
		return s, cmd
	}

	return s, nil
}

func (s *InterviewScreen) handleStarted(msg startedMsg) (screen.Screen, tea.Cmd) {
	if msg.Err != nil {
		s.errMsg = msg.Err.Error()
		return s, nil
	}
	snap := s.engine.Session()
	switch snap.Status {
	case sess.StatusCollectingProfile:
		s.phase = phaseProfile
		s.inputs[fieldName].SetValue(snap.Profile.Name)
		s.inputs[fieldEmail].SetValue(snap.Profile.Email)
		s.inputs[fieldPhone].SetValue(snap.Profile.Phone)
		s.focused = fieldResume
		return s, s.focusField(fieldResume)
	case sess.StatusInProgress:
		return s.enterQuestion()
	default:
		s.errMsg = "session is not in a runnable state"
		return s, nil
	}
}

func (s *InterviewScreen) handleResumeParsed(msg resumeParsedMsg) (screen.Screen, tea.Cmd) {
	s.phase = phaseProfile
	if msg.Err != nil {
		s.formErr = "could not read resume: " + msg.Err.Error()
		return s, s.focusField(fieldResume)
	}
	s.parsed = msg.Parsed
	s.formErr = ""
	if s.inputs[fieldName].Value() == "" {
		s.inputs[fieldName].SetValue(msg.Parsed.Name)
	}
	if s.inputs[fieldEmail].Value() == "" {
		s.inputs[fieldEmail].SetValue(msg.Parsed.Email)
	}
	if s.inputs[fieldPhone].Value() == "" {
		s.inputs[fieldPhone].SetValue(msg.Parsed.Phone)
	}
	s.focused = fieldName
	return s, s.focusField(fieldName)
}

func (s *InterviewScreen) handleBeginDone(msg beginDoneMsg) (screen.Screen, tea.Cmd) {
	if msg.Err != nil {
		s.phase = phaseProfile
		s.formErr = msg.Err.Error()
		return s, s.focusField(s.focused)
	}
	return s.enterQuestion()
}

func (s *InterviewScreen) handleTimerTick(msg timerTickMsg) (screen.Screen, tea.Cmd) {
	switch s.phase {
	case phaseQuestion, phaseScoring, phaseFeedback:
	default:
		s.ticking = false
		return s, nil
	}

	expired := s.engine.Tick(context.Background(), time.Time(msg))
	cmds := []tea.Cmd{tickCmd()}
	if expired {
		s.phase = phaseScoring
		engine := s.engine
		cmds = append(cmds, func() tea.Msg {
			_ = engine.ResolveExpired(context.Background())
			return answerResolvedMsg{}
		})
	}
	return s, tea.Batch(cmds...)
}

func (s *InterviewScreen) handleAnswerResolved() (screen.Screen, tea.Cmd) {
	snap := s.engine.Session()
	if snap.Status == sess.StatusCompleted {
		s.phase = phaseSummary
		return s, nil
	}
	s.lastIndex = snap.CurrentQuestionIndex - 1
	s.phase = phaseFeedback
	return s, nil
}

func (s *InterviewScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()

	if s.errMsg != "" {
		return s, func() tea.Msg { return router.PopScreenMsg{} }
	}

	if s.confirmQuit {
		switch key {
		case "y", "Y":
			s.confirmQuit = false
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "n", "N", "esc":
			s.confirmQuit = false
		}
		return s, nil
	}

	switch s.phase {
	case phaseProfile:
		return s.handleProfileKey(msg)

	case phaseQuestion:
		switch key {
		case "esc":
			s.confirmQuit = true
			return s, nil
		case "enter":
			return s.submitAnswer()
		}
		var cmd tea.Cmd
		s.answer, cmd = s.answer.Update(msg)
		s.engine.SetDraft(s.answer.Value())
		return s, cmd

	case phaseFeedback:
		if key == "esc" {
			s.confirmQuit = true
			return s, nil
		}
		return s.nextQuestion()

	case phaseSummary:
		switch key {
		case "enter", "esc", "q":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		}
	}

	return s, nil
}

func (s *InterviewScreen) handleProfileKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return s, func() tea.Msg { return router.PopScreenMsg{} }

	case "tab", "down":
		return s.focusNext(1)

	case "shift+tab", "up":
		return s.focusNext(-1)

	case "enter":
		if s.focused == fieldResume && strings.TrimSpace(s.inputs[fieldResume].Value()) != "" && s.parsed == nil {
			return s.parseResume()
		}
		if s.focused == fieldPhone {
			return s.submitProfile()
		}
		return s.focusNext(1)
	}

	var cmd tea.Cmd
	s.inputs[s.focused], cmd = s.inputs[s.focused].Update(msg)
	return s, cmd
}

func (s *InterviewScreen) focusNext(delta int) (screen.Screen, tea.Cmd) {
	next := (s.focused + delta + fieldCount) % fieldCount
	s.inputs[s.focused].Blur()
	s.focused = next
	return s, s.focusField(next)
}

func (s *InterviewScreen) focusField(i int) tea.Cmd {
	return s.inputs[i].Focus()
}

// parseResume reads the resume file off the UI loop.
func (s *InterviewScreen) parseResume() (screen.Screen, tea.Cmd) {
	path := strings.TrimSpace(s.inputs[fieldResume].Value())
	s.phase = phaseParsingResume
	return s, func() tea.Msg {
		parsed, err := resume.ParseFile(path)
		return resumeParsedMsg{Parsed: parsed, Err: err}
	}
}

// submitProfile records the profile and starts question generation.
func (s *InterviewScreen) submitProfile() (screen.Screen, tea.Cmd) {
	name := strings.TrimSpace(s.inputs[fieldName].Value())
	email := strings.TrimSpace(s.inputs[fieldEmail].Value())
	phone := strings.TrimSpace(s.inputs[fieldPhone].Value())
	if name == "" || email == "" || phone == "" {
		s.formErr = "name, email and phone are required"
		return s, nil
	}
	s.formErr = ""
	s.phase = phaseGenerating

	engine := s.engine
	parsed := s.parsed
	return s, func() tea.Msg {
		ctx := context.Background()
		fields := map[sess.ProfileField]string{
			sess.FieldName:  name,
			sess.FieldEmail: email,
			sess.FieldPhone: phone,
		}
		for field, value := range fields {
			if err := engine.SetProfileField(ctx, field, value); err != nil {
				return beginDoneMsg{Err: err}
			}
		}
		if parsed != nil {
			if err := engine.ApplyResume(ctx, parsed.RawText, parsed.Name, parsed.Email, parsed.Phone); err != nil {
				return beginDoneMsg{Err: err}
			}
		}
		return beginDoneMsg{Err: engine.Begin(ctx)}
	}
}

// enterQuestion switches to the active question and starts the clock.
func (s *InterviewScreen) enterQuestion() (screen.Screen, tea.Cmd) {
	s.phase = phaseQuestion
	s.answer = components.NewTextInput("Type your answer...", 0)
	s.engine.SetDraft("")

	engine := s.engine
	ensure := func() tea.Msg {
		engine.EnsureActiveQuestion(context.Background())
		return questionEnsuredMsg{}
	}
	cmds := []tea.Cmd{s.answer.Focus(), ensure}
	if !s.ticking {
		s.ticking = true
		cmds = append(cmds, tickCmd())
	}
	return s, tea.Batch(cmds...)
}

func (s *InterviewScreen) submitAnswer() (screen.Screen, tea.Cmd) {
	answer := s.answer.Value()
	s.phase = phaseScoring
	engine := s.engine
	return s, func() tea.Msg {
		_ = engine.Submit(context.Background(), answer)
		return answerResolvedMsg{}
	}
}

func (s *InterviewScreen) nextQuestion() (screen.Screen, tea.Cmd) {
	return s.enterQuestion()
}

// tickCmd returns a 1-second tick command.
func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return timerTickMsg(t)
	})
}
