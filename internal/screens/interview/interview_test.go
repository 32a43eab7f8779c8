package interview

import (
	"context"
	"fmt"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	sess "github.com/abhisek/crispterm/internal/interview"
	"github.com/abhisek/crispterm/internal/screen"
)

// stubAI implements sess.Orchestrator with deterministic results.
type stubAI struct{}

func (stubAI) GenerateQuestion(_ context.Context, in sess.QuestionInput) sess.QuestionResult {
	return sess.QuestionResult{
		Text:   fmt.Sprintf("Question %d (%s)?", in.Index+1, in.Difficulty),
		Source: sess.SourceLLM,
	}
}

func (stubAI) EvaluateAnswer(_ context.Context, _, _ string) sess.EvalResult {
	return sess.EvalResult{Score: 3, Feedback: "Solid answer.", Source: sess.SourceLLM}
}

func (stubAI) Summarize(_ context.Context, _ []sess.QuestionRecord, _ int) sess.SummaryResult {
	return sess.SummaryResult{Summary: "Good run overall.", Source: sess.SourceLLM}
}

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func specialKey(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

// run executes a command and feeds the resulting message back into the
// screen, following batches.
func run(t *testing.T, s screen.Screen, cmd tea.Cmd) screen.Screen {
	t.Helper()
	if cmd == nil {
		return s
	}
	msg := cmd()
	switch m := msg.(type) {
	case tea.BatchMsg:
		for _, sub := range m {
			s = run(t, s, sub)
		}
		return s
	case nil:
		return s
	default:
		s, cmd = s.Update(msg)
		// Commands produced by message handling (focus, ticks) are not
		// followed; tests drive those explicitly.
		_ = cmd
		return s
	}
}

func testEngine(t *testing.T, now func() time.Time) *sess.Engine {
	t.Helper()
	engine, err := sess.NewEngine(sess.Config{
		Role: "Full Stack Developer",
		AI:   stubAI{},
		Now:  now,
	})
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return engine
}

// testScreen returns an interview screen that has finished Init and
// shows the profile form.
func testScreen(t *testing.T, engine *sess.Engine) *InterviewScreen {
	t.Helper()
	s := New(engine, nil)
	var scr screen.Screen = s
	scr = run(t, scr, s.Init())
	is := scr.(*InterviewScreen)
	if is.phase != phaseProfile {
		t.Fatalf("phase after Init = %d, want profile form", is.phase)
	}
	return is
}

// fillProfile enters the three required fields and submits the form.
func fillProfile(t *testing.T, s *InterviewScreen) *InterviewScreen {
	t.Helper()
	s.inputs[fieldName].SetValue("Jane Doe")
	s.inputs[fieldEmail].SetValue("jane@example.com")
	s.inputs[fieldPhone].SetValue("555-123-4567")
	s.focused = fieldPhone

	var scr screen.Screen = s
	scr, cmd := scr.Update(specialKey(tea.KeyEnter))
	is := scr.(*InterviewScreen)
	if is.phase != phaseGenerating {
		t.Fatalf("phase after form submit = %d, want generating", is.phase)
	}
	scr = run(t, scr, cmd)
	return scr.(*InterviewScreen)
}

func TestProfileForm_RequiresAllFields(t *testing.T) {
	s := testScreen(t, testEngine(t, nil))
	s.focused = fieldPhone

	var scr screen.Screen = s
	scr, _ = scr.Update(specialKey(tea.KeyEnter))
	is := scr.(*InterviewScreen)

	if is.phase != phaseProfile {
		t.Errorf("phase = %d, want profile form to stay", is.phase)
	}
	if is.formErr == "" {
		t.Error("expected a validation error for empty fields")
	}
}

func TestProfileForm_SubmitStartsInterview(t *testing.T) {
	engine := testEngine(t, nil)
	s := fillProfile(t, testScreen(t, engine))

	if s.phase != phaseQuestion {
		t.Fatalf("phase = %d, want question view", s.phase)
	}
	snap := engine.Session()
	if snap.Status != sess.StatusInProgress {
		t.Errorf("engine status = %s, want in-progress", snap.Status)
	}
	if q := snap.Active(); q == nil || q.Question == "" {
		t.Error("expected a generated active question")
	}
}

func TestQuestion_TypingUpdatesDraft(t *testing.T) {
	engine := testEngine(t, nil)
	s := fillProfile(t, testScreen(t, engine))

	var scr screen.Screen = s
	scr, _ = scr.Update(keyPress('h'))
	scr, _ = scr.Update(keyPress('i'))
	_ = scr

	if engine.Draft() != "hi" {
		t.Errorf("draft = %q, want %q", engine.Draft(), "hi")
	}
}

func TestQuestion_SubmitShowsFeedback(t *testing.T) {
	engine := testEngine(t, nil)
	s := fillProfile(t, testScreen(t, engine))

	s.answer.SetValue("Indexes speed up lookups.")
	var scr screen.Screen = s
	scr, cmd := scr.Update(specialKey(tea.KeyEnter))
	is := scr.(*InterviewScreen)
	if is.phase != phaseScoring {
		t.Fatalf("phase = %d, want scoring", is.phase)
	}

	scr = run(t, scr, cmd)
	is = scr.(*InterviewScreen)
	if is.phase != phaseFeedback {
		t.Fatalf("phase = %d, want feedback", is.phase)
	}
	if is.lastIndex != 0 {
		t.Errorf("lastIndex = %d, want 0", is.lastIndex)
	}

	snap := engine.Session()
	if snap.CurrentQuestionIndex != 1 {
		t.Errorf("current index = %d, want 1", snap.CurrentQuestionIndex)
	}
}

func TestFeedback_AnyKeyAdvances(t *testing.T) {
	engine := testEngine(t, nil)
	s := fillProfile(t, testScreen(t, engine))

	s.answer.SetValue("answer")
	var scr screen.Screen = s
	scr, cmd := scr.Update(specialKey(tea.KeyEnter))
	scr = run(t, scr, cmd)

	scr, _ = scr.Update(keyPress(' '))
	is := scr.(*InterviewScreen)
	if is.phase != phaseQuestion {
		t.Errorf("phase = %d, want next question view", is.phase)
	}
}

func TestTimerExpiry_ResolvesWithDraft(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	engine := testEngine(t, clock)
	s := fillProfile(t, testScreen(t, engine))

	var scr screen.Screen = s
	scr, _ = scr.Update(keyPress('x'))

	// Blow through the first question's 20s budget.
	now = now.Add(21 * time.Second)
	scr, cmd := scr.Update(timerTickMsg(now))
	is := scr.(*InterviewScreen)
	if is.phase != phaseScoring {
		t.Fatalf("phase = %d, want scoring after expiry", is.phase)
	}

	scr = run(t, scr, cmd)
	is = scr.(*InterviewScreen)
	if is.phase != phaseFeedback {
		t.Fatalf("phase = %d, want feedback", is.phase)
	}

	snap := engine.Session()
	if snap.Questions[0].Answer != "x" {
		t.Errorf("answer = %q, want typed draft", snap.Questions[0].Answer)
	}
}

func TestCompletion_ShowsSummary(t *testing.T) {
	engine := testEngine(t, nil)
	s := fillProfile(t, testScreen(t, engine))

	var scr screen.Screen = s
	for i := 0; i < 6; i++ {
		is := scr.(*InterviewScreen)
		if is.phase == phaseFeedback {
			scr, _ = scr.Update(keyPress(' '))
			is = scr.(*InterviewScreen)
		}
		is.answer.SetValue(fmt.Sprintf("answer %d", i+1))
		var cmd tea.Cmd
		scr, cmd = scr.Update(specialKey(tea.KeyEnter))
		scr = run(t, scr, cmd)
	}

	is := scr.(*InterviewScreen)
	if is.phase != phaseSummary {
		t.Fatalf("phase = %d, want summary", is.phase)
	}

	snap := engine.Session()
	if snap.Status != sess.StatusCompleted {
		t.Errorf("status = %s, want completed", snap.Status)
	}
	if snap.Summary != "Good run overall." {
		t.Errorf("summary = %q", snap.Summary)
	}
	if snap.FinalScore == nil || *snap.FinalScore != 60 {
		t.Errorf("final score = %v, want 60", snap.FinalScore)
	}

	view := is.View(80, 24)
	if view == "" {
		t.Error("expected non-empty summary view")
	}
}

func TestQuitConfirm(t *testing.T) {
	engine := testEngine(t, nil)
	s := fillProfile(t, testScreen(t, engine))

	var scr screen.Screen = s
	scr, _ = scr.Update(specialKey(tea.KeyEscape))
	is := scr.(*InterviewScreen)
	if !is.confirmQuit {
		t.Fatal("expected quit confirmation")
	}

	scr, _ = scr.Update(keyPress('n'))
	is = scr.(*InterviewScreen)
	if is.confirmQuit {
		t.Error("expected quit confirmation dismissed")
	}

	scr, _ = scr.Update(specialKey(tea.KeyEscape))
	_, cmd := scr.Update(keyPress('y'))
	if cmd == nil {
		t.Error("expected a pop command after confirming")
	}
}

func TestView_NeverEmpty(t *testing.T) {
	engine := testEngine(t, nil)
	s := testScreen(t, engine)

	for _, ph := range []phase{phaseProfile, phaseParsingResume, phaseGenerating, phaseScoring} {
		s.phase = ph
		if s.View(80, 24) == "" {
			t.Errorf("empty view for phase %d", ph)
		}
	}
}

func TestTitle(t *testing.T) {
	s := New(testEngine(t, nil), nil)
	if s.Title() != "Interview" {
		t.Errorf("Title = %q", s.Title())
	}
}
