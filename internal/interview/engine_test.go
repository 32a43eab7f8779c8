package interview

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"
)

// fakeClock is a manually advanced time source.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

// stubAI is a scripted Orchestrator.
type stubAI struct {
	mu        sync.Mutex
	genCalls  int
	evalCalls int

	gen  func(in QuestionInput) QuestionResult
	eval func(question, answer string) EvalResult
	sum  func(questions []QuestionRecord, finalScore int) SummaryResult
}

func (s *stubAI) GenerateQuestion(_ context.Context, in QuestionInput) QuestionResult {
	s.mu.Lock()
	s.genCalls++
	gen := s.gen
	s.mu.Unlock()
	if gen != nil {
		return gen(in)
	}
	return QuestionResult{
		Text:   fmt.Sprintf("Question %d (%s)?", in.Index+1, in.Difficulty),
		Source: SourceMock,
	}
}

func (s *stubAI) EvaluateAnswer(_ context.Context, question, answer string) EvalResult {
	s.mu.Lock()
	s.evalCalls++
	eval := s.eval
	s.mu.Unlock()
	if eval != nil {
		return eval(question, answer)
	}
	if answer == NoAnswer {
		return EvalResult{Score: 0, Feedback: "No answer provided.", Source: SourceHeuristic}
	}
	return EvalResult{Score: 3, Feedback: "ok", Source: SourceMock}
}

func (s *stubAI) Summarize(_ context.Context, questions []QuestionRecord, finalScore int) SummaryResult {
	s.mu.Lock()
	sum := s.sum
	s.mu.Unlock()
	if sum != nil {
		return sum(questions, finalScore)
	}
	return SummaryResult{Summary: fmt.Sprintf("scored %d", finalScore), Source: SourceHeuristic}
}

// fakeCache records every save.
type fakeCache struct {
	mu      sync.Mutex
	saves   int
	last    *Session
	cleared int
	saveErr error
}

func (c *fakeCache) Save(_ context.Context, s *Session) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.saveErr != nil {
		return c.saveErr
	}
	c.saves++
	snap := *s
	c.last = &snap
	return nil
}

func (c *fakeCache) Clear(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cleared++
	return nil
}

// fakePublisher records pushes.
type fakePublisher struct {
	mu      sync.Mutex
	pushes  []Session
	pushErr error
}

func (p *fakePublisher) Push(_ context.Context, s Session) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.pushErr != nil {
		return p.pushErr
	}
	p.pushes = append(p.pushes, s)
	return nil
}

func (p *fakePublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.pushes)
}

type engineFixture struct {
	engine    *Engine
	clock     *fakeClock
	ai        *stubAI
	cache     *fakeCache
	publisher *fakePublisher
}

func newFixture(t *testing.T, mutate func(cfg *Config)) *engineFixture {
	t.Helper()

	f := &engineFixture{
		clock:     newFakeClock(),
		ai:        &stubAI{},
		cache:     &fakeCache{},
		publisher: &fakePublisher{},
	}
	cfg := Config{
		Role:      "Full Stack Developer",
		AI:        f.ai,
		Cache:     f.cache,
		Publisher: f.publisher,
		Now:       f.clock.Now,
	}
	if mutate != nil {
		mutate(&cfg)
	}

	engine, err := NewEngine(cfg)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	f.engine = engine
	return f
}

// startInterview walks the fixture through profile collection into
// in-progress.
func (f *engineFixture) startInterview(t *testing.T) {
	t.Helper()
	ctx := context.Background()

	if err := f.engine.StartProfileCollection(ctx); err != nil {
		t.Fatalf("start profile: %v", err)
	}
	if err := f.engine.SetProfileField(ctx, FieldName, "Jane Doe"); err != nil {
		t.Fatalf("set name: %v", err)
	}
	if err := f.engine.SetProfileField(ctx, FieldEmail, "jane@example.com"); err != nil {
		t.Fatalf("set email: %v", err)
	}
	if err := f.engine.SetProfileField(ctx, FieldPhone, "555-123-4567"); err != nil {
		t.Fatalf("set phone: %v", err)
	}
	if err := f.engine.Begin(ctx); err != nil {
		t.Fatalf("begin: %v", err)
	}

	if got := f.engine.Session().Status; got != StatusInProgress {
		t.Fatalf("expected in-progress, got %s", got)
	}
}

func TestNewEngine_RequiresOrchestrator(t *testing.T) {
	if _, err := NewEngine(Config{}); err == nil {
		t.Fatal("expected error without orchestrator")
	}
}

func TestLifecycle_HappyPath(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	sess := f.engine.Session()
	if sess.Status != StatusIdle || sess.CurrentQuestionIndex != -1 {
		t.Fatalf("unexpected initial state: %+v", sess)
	}

	f.startInterview(t)

	sess = f.engine.Session()
	if sess.SessionID == "" {
		t.Fatal("expected session ID")
	}
	if len(sess.Questions) != 6 {
		t.Fatalf("expected 6 questions, got %d", len(sess.Questions))
	}
	for i, q := range sess.Questions {
		if q.Question == "" {
			t.Fatalf("question %d has no text", i)
		}
		if q.ID == "" {
			t.Fatalf("question %d has no ID", i)
		}
	}
	if sess.Questions[0].StartedAt == 0 {
		t.Fatal("first question not started")
	}

	// Answer all six; the stub scores each 3.
	for i := 0; i < 6; i++ {
		if err := f.engine.Submit(ctx, fmt.Sprintf("answer %d", i)); err != nil {
			t.Fatalf("submit %d: %v", i, err)
		}
	}

	sess = f.engine.Session()
	if sess.Status != StatusCompleted {
		t.Fatalf("expected completed, got %s", sess.Status)
	}
	if sess.FinalScore == nil {
		t.Fatal("expected final score")
	}
	// 6 answers at 3/5 each: 18/30 = 60 percent.
	if *sess.FinalScore != 60 {
		t.Fatalf("expected 60, got %d", *sess.FinalScore)
	}
	if sess.Summary == "" {
		t.Fatal("expected summary")
	}
	if sess.CompletedAt == 0 {
		t.Fatal("expected completion timestamp")
	}
	if f.publisher.count() != 1 {
		t.Fatalf("expected exactly one push, got %d", f.publisher.count())
	}
}

func TestScenarioA_AllEmptyAnswersScoreZero(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	f.startInterview(t)

	for i := 0; i < 6; i++ {
		if err := f.engine.Submit(ctx, ""); err != nil {
			t.Fatalf("submit %d: %v", i, err)
		}
	}

	sess := f.engine.Session()
	if sess.Status != StatusCompleted {
		t.Fatalf("expected completed, got %s", sess.Status)
	}
	if *sess.FinalScore != 0 {
		t.Fatalf("expected 0, got %d", *sess.FinalScore)
	}
	for i, q := range sess.Questions {
		if q.Answer != NoAnswer {
			t.Fatalf("question %d: expected sentinel answer, got %q", i, q.Answer)
		}
		if q.Score == nil || *q.Score != 0 {
			t.Fatalf("question %d: expected score 0, got %v", i, q.Score)
		}
	}
}

func TestScenarioC_ExpiryClampsAndFiresOnce(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	f.startInterview(t)

	// First question is easy: 20s budget. Jump well past it.
	f.clock.Advance(25 * time.Second)

	expired := f.engine.Tick(ctx, f.clock.Now())
	if !expired {
		t.Fatal("expected expiry")
	}

	sess := f.engine.Session()
	q := sess.Questions[0]
	if q.RemainingMs == nil || *q.RemainingMs != 0 {
		t.Fatalf("expected remaining clamped to 0, got %v", q.RemainingMs)
	}

	// Further ticks before resolution must not re-signal.
	for i := 0; i < 3; i++ {
		if f.engine.Tick(ctx, f.clock.Now()) {
			t.Fatalf("tick %d re-signaled expiry", i)
		}
	}

	if err := f.engine.ResolveExpired(ctx); err != nil {
		t.Fatalf("resolve expired: %v", err)
	}

	sess = f.engine.Session()
	if sess.Questions[0].Answer != NoAnswer {
		t.Fatalf("expected sentinel, got %q", sess.Questions[0].Answer)
	}
	if sess.CurrentQuestionIndex != 1 {
		t.Fatalf("expected advance to 1, got %d", sess.CurrentQuestionIndex)
	}
}

func TestExpirySubmitsDraft(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	f.startInterview(t)

	f.engine.SetDraft("half an answer about react")
	f.clock.Advance(30 * time.Second)

	if !f.engine.Tick(ctx, f.clock.Now()) {
		t.Fatal("expected expiry")
	}
	if err := f.engine.ResolveExpired(ctx); err != nil {
		t.Fatalf("resolve expired: %v", err)
	}

	sess := f.engine.Session()
	if sess.Questions[0].Answer != "half an answer about react" {
		t.Fatalf("expected draft submitted, got %q", sess.Questions[0].Answer)
	}
	// Draft is cleared for the next question.
	if f.engine.Draft() != "" {
		t.Fatalf("expected draft cleared, got %q", f.engine.Draft())
	}
}

func TestScenarioD_PartialGenerationDegradesToFallback(t *testing.T) {
	f := newFixture(t, func(cfg *Config) {})
	f.ai.gen = func(in QuestionInput) QuestionResult {
		if in.Index == 3 {
			return QuestionResult{
				Text:   "Fallback question for slot 4.",
				Source: SourceFallback,
				Err:    "provider unavailable: 503",
			}
		}
		return QuestionResult{Text: fmt.Sprintf("Generated %d", in.Index), Source: SourceLLM}
	}

	f.startInterview(t)

	sess := f.engine.Session()
	if sess.Status != StatusInProgress {
		t.Fatalf("expected in-progress, got %s", sess.Status)
	}
	for i, q := range sess.Questions {
		if q.Question == "" {
			t.Fatalf("question %d has no text", i)
		}
	}
	if sess.Questions[3].Question != "Fallback question for slot 4." {
		t.Fatalf("unexpected text: %q", sess.Questions[3].Question)
	}

	// Degradation surfaces as a warning, not a failure.
	found := false
	for _, w := range f.engine.Warnings() {
		if strings.Contains(w, "fallback") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected degradation warning, got %v", f.engine.Warnings())
	}
}

func TestSubmit_Idempotent(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	f.startInterview(t)

	if err := f.engine.Submit(ctx, "first"); err != nil {
		t.Fatalf("submit: %v", err)
	}

	// A stale expiry signal for the already-resolved question must not
	// empty-submit its successor.
	if err := f.engine.ResolveExpired(ctx); err != nil {
		t.Fatalf("stale resolve: %v", err)
	}
	sess := f.engine.Session()
	if sess.CurrentQuestionIndex != 1 {
		t.Fatalf("stale expiry advanced the session: %d", sess.CurrentQuestionIndex)
	}
	if sess.Questions[1].Answer != "" {
		t.Fatalf("successor answered by stale expiry: %q", sess.Questions[1].Answer)
	}
	if sess.Questions[0].Answer != "first" {
		t.Fatalf("answer overwritten: %q", sess.Questions[0].Answer)
	}

	// A genuine expiry followed by a duplicate signal resolves once.
	f.clock.Advance(25 * time.Second)
	if !f.engine.Tick(ctx, f.clock.Now()) {
		t.Fatal("expected expiry on question 2")
	}
	if err := f.engine.ResolveExpired(ctx); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	idx := f.engine.Session().CurrentQuestionIndex
	if err := f.engine.ResolveExpired(ctx); err != nil {
		t.Fatalf("second resolve: %v", err)
	}

	sess = f.engine.Session()
	if sess.CurrentQuestionIndex != idx {
		t.Fatalf("double advance: %d then %d", idx, sess.CurrentQuestionIndex)
	}
	if sess.Questions[1].Answer != NoAnswer {
		t.Fatalf("expected sentinel on expired question, got %q", sess.Questions[1].Answer)
	}
}

func TestSubmit_ScoreWrittenOnce(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	scores := []int{5, 1}
	call := 0
	f.ai.eval = func(question, answer string) EvalResult {
		res := EvalResult{Score: scores[call%len(scores)], Source: SourceLLM}
		call++
		return res
	}

	f.startInterview(t)

	if err := f.engine.Submit(ctx, "good answer"); err != nil {
		t.Fatalf("submit: %v", err)
	}
	// A duplicate submit for question 0 is ignored outright; its score
	// stays at the first written value.
	sess := f.engine.Session()
	if *sess.Questions[0].Score != 5 {
		t.Fatalf("expected 5, got %d", *sess.Questions[0].Score)
	}
}

func TestSubmit_ClampsOrchestratorScore(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	f.ai.eval = func(question, answer string) EvalResult {
		return EvalResult{Score: 11, Source: SourceLLM}
	}
	f.startInterview(t)

	if err := f.engine.Submit(ctx, "answer"); err != nil {
		t.Fatalf("submit: %v", err)
	}
	sess := f.engine.Session()
	if *sess.Questions[0].Score != MaxQuestionScore {
		t.Fatalf("expected clamp to %d, got %d", MaxQuestionScore, *sess.Questions[0].Score)
	}
}

func TestIndexAdvancesMonotonically(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	f.startInterview(t)

	prev := f.engine.Session().CurrentQuestionIndex
	for i := 0; i < 6; i++ {
		if err := f.engine.Submit(ctx, "a"); err != nil {
			t.Fatalf("submit: %v", err)
		}
		cur := f.engine.Session().CurrentQuestionIndex
		if cur < prev {
			t.Fatalf("index moved backwards: %d after %d", cur, prev)
		}
		if cur > prev+1 {
			t.Fatalf("index skipped: %d after %d", cur, prev)
		}
		prev = cur
	}
}

func TestInvalidTransitions(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	if err := f.engine.Submit(ctx, "x"); err == nil {
		t.Fatal("submit in idle should fail")
	}
	if err := f.engine.SetProfileField(ctx, FieldName, "x"); err == nil {
		t.Fatal("set field in idle should fail")
	}
	if err := f.engine.Begin(ctx); err == nil {
		t.Fatal("begin in idle should fail")
	}

	if err := f.engine.StartProfileCollection(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := f.engine.StartProfileCollection(ctx); err == nil {
		t.Fatal("double start should fail")
	}

	// Begin requires a complete profile.
	if err := f.engine.Begin(ctx); err == nil {
		t.Fatal("begin without profile should fail")
	}
}

func TestProfileImmutableAfterBegin(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	f.startInterview(t)

	if err := f.engine.SetProfileField(ctx, FieldName, "Changed"); err == nil {
		t.Fatal("profile edit after begin should fail")
	}
	if got := f.engine.Session().Profile.Name; got != "Jane Doe" {
		t.Fatalf("profile mutated: %q", got)
	}
}

func TestApplyResume_HandEnteredFieldsWin(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	if err := f.engine.StartProfileCollection(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := f.engine.SetProfileField(ctx, FieldName, "Typed Name"); err != nil {
		t.Fatalf("set name: %v", err)
	}
	if err := f.engine.ApplyResume(ctx, "raw resume text", "Parsed Name", "parsed@example.com", "555-000-1111"); err != nil {
		t.Fatalf("apply resume: %v", err)
	}

	sess := f.engine.Session()
	if sess.Profile.Name != "Typed Name" {
		t.Fatalf("typed name lost: %q", sess.Profile.Name)
	}
	if sess.Profile.Email != "parsed@example.com" {
		t.Fatalf("parsed email not applied: %q", sess.Profile.Email)
	}
	if !sess.Profile.ResumeExtracted {
		t.Fatal("resume flag not set")
	}
	if sess.ResumeText != "raw resume text" {
		t.Fatalf("resume text not stored: %q", sess.ResumeText)
	}
}

func TestTick_NoOpOutsideInProgress(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	if f.engine.Tick(ctx, f.clock.Now()) {
		t.Fatal("tick in idle signaled expiry")
	}

	f.startInterview(t)
	for i := 0; i < 6; i++ {
		if err := f.engine.Submit(ctx, "a"); err != nil {
			t.Fatalf("submit: %v", err)
		}
	}
	if f.engine.Tick(ctx, f.clock.Now()) {
		t.Fatal("tick after completion signaled expiry")
	}
}

func TestTick_CountsDown(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	f.startInterview(t)

	f.clock.Advance(5 * time.Second)
	if f.engine.Tick(ctx, f.clock.Now()) {
		t.Fatal("unexpected expiry")
	}

	q := f.engine.Session().Questions[0]
	if q.RemainingMs == nil || *q.RemainingMs != 15000 {
		t.Fatalf("expected 15000ms remaining, got %v", q.RemainingMs)
	}
}

func TestReset_ReturnsToIdleAndClearsCache(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	f.startInterview(t)

	if err := f.engine.Reset(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}

	sess := f.engine.Session()
	if sess.Status != StatusIdle {
		t.Fatalf("expected idle, got %s", sess.Status)
	}
	if sess.SessionID != "" {
		t.Fatalf("expected cleared session ID, got %q", sess.SessionID)
	}
	if f.cache.cleared != 1 {
		t.Fatalf("expected 1 cache clear, got %d", f.cache.cleared)
	}
}

func TestResume_RebasesActiveQuestionTimer(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	rem := int64(5000)
	sess := &Session{
		SessionID:            "recovered",
		Role:                 "Full Stack Developer",
		Status:               StatusInProgress,
		CurrentQuestionIndex: 0,
		Profile:              CandidateProfile{Name: "J", Email: "j@x.com", Phone: "1"},
		Questions: []QuestionRecord{
			{
				ID:          "q1",
				Index:       0,
				Difficulty:  DifficultyEasy,
				Question:    "Q?",
				AllottedMs:  20000,
				RemainingMs: &rem,
				StartedAt:   1, // Stale wall-clock value from before the restart.
			},
		},
	}

	if err := f.engine.Resume(ctx, sess); err != nil {
		t.Fatalf("resume: %v", err)
	}

	// The persisted remaining time is honored, not the wall-clock gap.
	got := f.engine.Session()
	q := &got.Questions[0]
	if r := remainingMs(q, f.clock.Now()); r != 5000 {
		t.Fatalf("expected 5000ms remaining after rebase, got %d", r)
	}

	// The countdown picks up from there.
	f.clock.Advance(5 * time.Second)
	if !f.engine.Tick(ctx, f.clock.Now()) {
		t.Fatal("expected expiry after rebased remainder elapsed")
	}
}

func TestResume_MidGenerationRestartsFromProfile(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	sess := &Session{
		SessionID: "recovered",
		Status:    StatusGeneratingQuestions,
		Profile:   CandidateProfile{Name: "J", Email: "j@x.com", Phone: "1"},
		Questions: []QuestionRecord{{ID: "q1", Index: 0}},
	}

	if err := f.engine.Resume(ctx, sess); err != nil {
		t.Fatalf("resume: %v", err)
	}

	got := f.engine.Session()
	if got.Status != StatusCollectingProfile {
		t.Fatalf("expected collecting-profile, got %s", got.Status)
	}
	if len(got.Questions) != 0 {
		t.Fatalf("expected questions cleared, got %d", len(got.Questions))
	}
}

func TestResume_RejectsCompleted(t *testing.T) {
	f := newFixture(t, nil)
	err := f.engine.Resume(context.Background(), &Session{Status: StatusCompleted})
	if err == nil {
		t.Fatal("expected error for completed session")
	}
}

func TestFinalize_NilPublisherWarns(t *testing.T) {
	f := newFixture(t, func(cfg *Config) {
		cfg.Publisher = nil
	})
	ctx := context.Background()
	f.startInterview(t)

	for i := 0; i < 6; i++ {
		if err := f.engine.Submit(ctx, "a"); err != nil {
			t.Fatalf("submit: %v", err)
		}
	}

	sess := f.engine.Session()
	if sess.Status != StatusCompleted {
		t.Fatalf("expected completed, got %s", sess.Status)
	}
	found := false
	for _, w := range f.engine.Warnings() {
		if strings.Contains(w, "remote store not configured") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected warning, got %v", f.engine.Warnings())
	}
}

func TestFinalize_PushFailureDoesNotRevertCompletion(t *testing.T) {
	f := newFixture(t, nil)
	f.publisher.pushErr = fmt.Errorf("remote down")
	ctx := context.Background()
	f.startInterview(t)

	for i := 0; i < 6; i++ {
		if err := f.engine.Submit(ctx, "a"); err != nil {
			t.Fatalf("submit: %v", err)
		}
	}

	sess := f.engine.Session()
	if sess.Status != StatusCompleted {
		t.Fatalf("expected completed, got %s", sess.Status)
	}
	found := false
	for _, w := range f.engine.Warnings() {
		if strings.Contains(w, "push finalized interview") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected push warning, got %v", f.engine.Warnings())
	}
}

func TestCacheFailureIsNonFatal(t *testing.T) {
	f := newFixture(t, nil)
	f.cache.saveErr = fmt.Errorf("disk full")
	ctx := context.Background()

	if err := f.engine.StartProfileCollection(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}

	if len(f.engine.Warnings()) == 0 {
		t.Fatal("expected cache warning")
	}
	if got := f.engine.Session().Status; got != StatusCollectingProfile {
		t.Fatalf("cache failure changed state: %s", got)
	}
}

func TestSessionSnapshotIsDeepCopy(t *testing.T) {
	f := newFixture(t, nil)
	f.startInterview(t)

	snap := f.engine.Session()
	snap.Questions[0].Question = "tampered"
	if f.engine.Session().Questions[0].Question == "tampered" {
		t.Fatal("snapshot shares storage with the engine")
	}
}
