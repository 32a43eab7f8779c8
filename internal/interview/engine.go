package interview

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// TickInterval is the cadence at which the driver should deliver clock
// ticks to an engine with an active question.
const TickInterval = time.Second

// ErrInvalidTransition is returned when an event arrives in a state
// that has no transition for it. This is a programming-contract
// violation by the caller, not a condition the engine recovers from.
var ErrInvalidTransition = fmt.Errorf("interview: invalid state transition")

// ProfileField names a manually editable profile field.
type ProfileField string

const (
	FieldName  ProfileField = "name"
	FieldEmail ProfileField = "email"
	FieldPhone ProfileField = "phone"
)

// Config wires an Engine's collaborators. AI is required; Cache and
// Publisher may be nil, in which case the corresponding persistence
// tier is skipped with a warning.
type Config struct {
	Role      string
	Topic     string
	Schedule  Schedule
	AI        Orchestrator
	Cache     Cache
	Publisher Publisher

	// Now overrides the time source. Nil means time.Now.
	Now func() time.Time

	// Warn receives non-fatal persistence/summary warnings. Nil means
	// warnings are only retained on the engine.
	Warn func(msg string)
}

// Engine owns one Session and drives its lifecycle:
//
//	idle → collecting-profile → generating-questions → in-progress → completed
//
// All exported methods are safe for concurrent use; the engine is the
// single writer of its session. Generation, evaluation and summary go
// through the Orchestrator, which never fails, so the state machine
// cannot stall on a broken dependency.
type Engine struct {
	mu         sync.Mutex
	cfg        Config
	now        func() time.Time
	sess       *Session
	draft      string
	resolving  bool
	expirySeen map[string]bool // question IDs whose expiry was already signaled
	genFlight  map[int]bool    // indexes with an outstanding single-question generation
	warnings   []string
	feedback   string
}

// NewEngine creates an Engine in StatusIdle.
func NewEngine(cfg Config) (*Engine, error) {
	if cfg.AI == nil {
		return nil, fmt.Errorf("interview: orchestrator is required")
	}
	if len(cfg.Schedule.Sequence) == 0 {
		cfg.Schedule = DefaultSchedule()
	}
	if err := cfg.Schedule.Validate(); err != nil {
		return nil, fmt.Errorf("interview: %w", err)
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	e := &Engine{
		cfg:        cfg,
		now:        now,
		expirySeen: map[string]bool{},
		genFlight:  map[int]bool{},
	}
	e.sess = e.freshSession()
	return e, nil
}

func (e *Engine) freshSession() *Session {
	return &Session{
		Role:                 e.cfg.Role,
		Topic:                e.cfg.Topic,
		Status:               StatusIdle,
		CurrentQuestionIndex: -1,
		Profile:              CandidateProfile{},
	}
}

// Session returns a deep copy of the current aggregate for reads.
func (e *Engine) Session() Session {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

func (e *Engine) snapshotLocked() Session {
	out := *e.sess
	out.Questions = make([]QuestionRecord, len(e.sess.Questions))
	for i, q := range e.sess.Questions {
		if q.Score != nil {
			sc := *q.Score
			q.Score = &sc
		}
		if q.RemainingMs != nil {
			rem := *q.RemainingMs
			q.RemainingMs = &rem
		}
		out.Questions[i] = q
	}
	if e.sess.FinalScore != nil {
		fs := *e.sess.FinalScore
		out.FinalScore = &fs
	}
	return out
}

// StartProfileCollection transitions idle → collecting-profile,
// assigning the session its identity.
func (e *Engine) StartProfileCollection(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.sess.Status != StatusIdle {
		return fmt.Errorf("%w: start profile collection from %s", ErrInvalidTransition, e.sess.Status)
	}
	e.sess.SessionID = uuid.NewString()
	e.sess.CreatedAt = e.nowMs()
	e.sess.Status = StatusCollectingProfile
	e.saveLocked(ctx)
	return nil
}

// SetProfileField records one manually entered profile field.
// Profile fields are immutable once the interview starts.
func (e *Engine) SetProfileField(ctx context.Context, field ProfileField, value string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.sess.Status != StatusCollectingProfile {
		return fmt.Errorf("%w: set profile field in %s", ErrInvalidTransition, e.sess.Status)
	}
	value = strings.TrimSpace(value)
	switch field {
	case FieldName:
		e.sess.Profile.Name = value
	case FieldEmail:
		e.sess.Profile.Email = value
	case FieldPhone:
		e.sess.Profile.Phone = value
	default:
		return fmt.Errorf("interview: unknown profile field %q", field)
	}
	e.saveLocked(ctx)
	return nil
}

// ApplyResume records extracted resume text and pre-fills any profile
// fields the extractor found. Fields already entered by hand win.
func (e *Engine) ApplyResume(ctx context.Context, text, name, email, phone string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.sess.Status != StatusCollectingProfile {
		return fmt.Errorf("%w: apply resume in %s", ErrInvalidTransition, e.sess.Status)
	}
	e.sess.ResumeText = text
	if e.sess.Profile.Name == "" {
		e.sess.Profile.Name = name
	}
	if e.sess.Profile.Email == "" {
		e.sess.Profile.Email = email
	}
	if e.sess.Profile.Phone == "" {
		e.sess.Profile.Phone = phone
	}
	e.sess.Profile.ResumeExtracted = true
	e.saveLocked(ctx)
	return nil
}

// Begin materializes the question set and generates every question
// text, then starts the interview. It blocks until all slots have text;
// the orchestrator is total, so a broken dependency degrades to
// fallback questions rather than stalling here. Per-slot generation
// runs concurrently — slots have no ordering dependency.
func (e *Engine) Begin(ctx context.Context) error {
	e.mu.Lock()
	if e.sess.Status != StatusCollectingProfile {
		e.mu.Unlock()
		return fmt.Errorf("%w: begin from %s", ErrInvalidTransition, e.sess.Status)
	}
	if !e.sess.Profile.Complete() {
		e.mu.Unlock()
		return fmt.Errorf("interview: profile incomplete")
	}

	sched := e.cfg.Schedule
	e.sess.Questions = make([]QuestionRecord, len(sched.Sequence))
	for i, d := range sched.Sequence {
		allotted := sched.Budgets[d].Milliseconds()
		rem := allotted
		e.sess.Questions[i] = QuestionRecord{
			ID:          uuid.NewString(),
			Index:       i,
			Difficulty:  d,
			AllottedMs:  allotted,
			RemainingMs: &rem,
		}
	}
	e.sess.Status = StatusGeneratingQuestions
	e.sess.CurrentQuestionIndex = -1
	e.saveLocked(ctx)

	sessionID := e.sess.SessionID
	inputs := make([]QuestionInput, len(e.sess.Questions))
	ids := make([]string, len(e.sess.Questions))
	for i := range e.sess.Questions {
		inputs[i] = QuestionInput{
			Role:           e.sess.Role,
			Topic:          e.sess.Topic,
			Difficulty:     e.sess.Questions[i].Difficulty,
			Index:          i,
			ProfileContext: e.sess.ResumeText,
		}
		ids[i] = e.sess.Questions[i].ID
	}
	e.mu.Unlock()

	var wg sync.WaitGroup
	for i := range inputs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res := e.cfg.AI.GenerateQuestion(ctx, inputs[i])
			e.applyQuestionText(ctx, sessionID, ids[i], res)
		}(i)
	}
	wg.Wait()

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.sess.SessionID != sessionID || e.sess.Status != StatusGeneratingQuestions {
		// Reset while generating; discard.
		return nil
	}
	e.sess.Status = StatusInProgress
	e.sess.CurrentQuestionIndex = 0
	e.sess.Questions[0].StartedAt = e.nowMs()
	e.draft = ""
	e.saveLocked(ctx)
	return nil
}

// applyQuestionText writes a generated question text back into the
// session, discarding the result if the session moved on.
func (e *Engine) applyQuestionText(ctx context.Context, sessionID, questionID string, res QuestionResult) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.sess.SessionID != sessionID {
		return
	}
	q := e.findQuestionLocked(questionID)
	if q == nil || q.Question != "" {
		return
	}
	text := strings.TrimSpace(res.Text)
	if text == "" {
		// The orchestrator always produces text; guard anyway so an
		// empty slot cannot freeze the session.
		text = "Describe a challenging technical problem you solved recently."
	}
	q.Question = text
	if res.Source == SourceFallback && res.Err != "" {
		e.warnLocked(fmt.Sprintf("question %d degraded to fallback: %s", q.Index+1, res.Err))
	}
	e.saveLocked(ctx)
}

// EnsureActiveQuestion requests generation for the active question if
// its text is still empty. The request is idempotent: a second call for
// the same slot while one is outstanding is suppressed.
func (e *Engine) EnsureActiveQuestion(ctx context.Context) {
	e.mu.Lock()
	q := e.sess.Active()
	if q == nil || q.Question != "" || e.genFlight[q.Index] {
		e.mu.Unlock()
		return
	}
	e.genFlight[q.Index] = true
	in := QuestionInput{
		Role:           e.sess.Role,
		Topic:          e.sess.Topic,
		Difficulty:     q.Difficulty,
		Index:          q.Index,
		ProfileContext: e.sess.ResumeText,
	}
	sessionID := e.sess.SessionID
	questionID := q.ID
	index := q.Index
	e.mu.Unlock()

	res := e.cfg.AI.GenerateQuestion(ctx, in)

	e.applyQuestionText(ctx, sessionID, questionID, res)
	e.mu.Lock()
	delete(e.genFlight, index)
	e.mu.Unlock()
}

// SetDraft stores the candidate's in-progress answer text so that a
// timer expiry submits what was typed so far.
func (e *Engine) SetDraft(text string) {
	e.mu.Lock()
	e.draft = text
	e.mu.Unlock()
}

// Draft returns the stored in-progress answer text.
func (e *Engine) Draft() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.draft
}

// LastFeedback returns the evaluator feedback for the most recently
// resolved question.
func (e *Engine) LastFeedback() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.feedback
}

// Submit resolves the active question with the given answer: records
// it (sentinel when empty), requests evaluation when question text is
// present, and advances. Resolution is idempotent — submitting an
// already-resolved question is a no-op, which makes the race between an
// explicit submit and a timer expiry harmless.
func (e *Engine) Submit(ctx context.Context, answer string) error {
	e.mu.Lock()
	if e.sess.Status != StatusInProgress {
		e.mu.Unlock()
		return fmt.Errorf("%w: submit in %s", ErrInvalidTransition, e.sess.Status)
	}
	q := e.sess.Active()
	if q == nil || q.Resolved() || e.resolving {
		e.mu.Unlock()
		return nil
	}
	e.resolving = true

	now := e.now()
	answer = strings.TrimSpace(answer)
	if answer == "" {
		answer = NoAnswer
	}
	q.Answer = answer
	q.SubmittedAt = timeToMs(now)
	rem := remainingMs(q, now)
	q.RemainingMs = &rem

	sessionID := e.sess.SessionID
	questionID := q.ID
	questionText := q.Question
	e.saveLocked(ctx)
	e.mu.Unlock()

	// Evaluation suspends on an external round trip; everything else in
	// this method is synchronous with respect to session state.
	score := 0
	feedback := ""
	if questionText != "" {
		res := e.cfg.AI.EvaluateAnswer(ctx, questionText, answer)
		score = clampScore(res.Score)
		feedback = res.Feedback
	}

	e.mu.Lock()
	if e.sess.SessionID != sessionID {
		// Session was reset while evaluating; discard the result.
		e.resolving = false
		e.mu.Unlock()
		return nil
	}
	if q := e.findQuestionLocked(questionID); q != nil && q.Score == nil {
		sc := score
		q.Score = &sc
	}
	e.feedback = feedback
	completed := e.advanceLocked()
	e.resolving = false
	e.saveLocked(ctx)
	e.mu.Unlock()

	if completed {
		e.finalize(ctx)
	}
	return nil
}

// ResolveExpired resolves the active question with whatever draft was
// typed, exactly as an explicit submit would. It only acts on a
// question whose budget has actually run out, so a stale expiry signal
// arriving after the question resolved (or after the session advanced)
// is a no-op rather than an empty submit of the next question.
func (e *Engine) ResolveExpired(ctx context.Context) error {
	e.mu.Lock()
	if e.sess.Status != StatusInProgress {
		e.mu.Unlock()
		return nil
	}
	q := e.sess.Active()
	if q == nil || q.Resolved() || e.resolving || remainingMs(q, e.now()) > 0 {
		e.mu.Unlock()
		return nil
	}
	draft := e.draft
	e.mu.Unlock()
	return e.Submit(ctx, draft)
}

// advanceLocked moves to the next question or completes the session.
// Returns true when the session just completed.
func (e *Engine) advanceLocked() bool {
	e.draft = ""
	if e.sess.CurrentQuestionIndex < len(e.sess.Questions)-1 {
		e.sess.CurrentQuestionIndex++
		nq := &e.sess.Questions[e.sess.CurrentQuestionIndex]
		nq.StartedAt = e.nowMs()
		if nq.RemainingMs == nil {
			rem := nq.AllottedMs
			nq.RemainingMs = &rem
		}
		return false
	}
	e.sess.Status = StatusCompleted
	e.sess.CompletedAt = e.nowMs()
	fs := e.sess.PercentScore()
	e.sess.FinalScore = &fs
	return true
}

// finalize requests the summary (once) and pushes the finalized
// snapshot to the remote store. Failures here never revert completion;
// they are reported as warnings.
func (e *Engine) finalize(ctx context.Context) {
	e.mu.Lock()
	if e.sess.Status != StatusCompleted {
		e.mu.Unlock()
		return
	}
	needSummary := e.sess.Summary == ""
	questions := e.snapshotLocked().Questions
	finalScore := 0
	if e.sess.FinalScore != nil {
		finalScore = *e.sess.FinalScore
	}
	sessionID := e.sess.SessionID
	e.mu.Unlock()

	if needSummary {
		res := e.cfg.AI.Summarize(ctx, questions, finalScore)
		e.mu.Lock()
		if e.sess.SessionID == sessionID && e.sess.Summary == "" {
			e.sess.Summary = res.Summary
			e.saveLocked(ctx)
		}
		e.mu.Unlock()
	}

	e.mu.Lock()
	if e.sess.SessionID != sessionID {
		e.mu.Unlock()
		return
	}
	snap := e.snapshotLocked()
	e.mu.Unlock()

	if e.cfg.Publisher == nil {
		e.warnf("remote store not configured; finalized interview kept locally")
		return
	}
	if err := e.cfg.Publisher.Push(ctx, snap); err != nil {
		e.warnf("push finalized interview: %v", err)
	}
}

// Tick recomputes the active question's remaining time from the clock.
// It is the only writer of RemainingMs while a question is active.
// Ticks outside in-progress, or for a resolved question, are no-ops.
// The returned Expired flag is raised exactly once per question; the
// caller reacts by invoking ResolveExpired.
func (e *Engine) Tick(ctx context.Context, now time.Time) (expired bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.sess.Status != StatusInProgress {
		return false
	}
	q := e.sess.Active()
	if q == nil || q.Resolved() || q.StartedAt == 0 {
		return false
	}
	rem := remainingMs(q, now)
	q.RemainingMs = &rem
	e.saveLocked(ctx)
	if rem > 0 || e.resolving || e.expirySeen[q.ID] {
		return false
	}
	e.expirySeen[q.ID] = true
	return true
}

// Reset discards the aggregate and clears the local cache, returning
// the engine to idle. Valid from any state.
func (e *Engine) Reset(ctx context.Context) error {
	e.mu.Lock()
	e.sess = e.freshSession()
	e.draft = ""
	e.feedback = ""
	e.resolving = false
	e.expirySeen = map[string]bool{}
	e.genFlight = map[int]bool{}
	e.mu.Unlock()

	if e.cfg.Cache != nil {
		if err := e.cfg.Cache.Clear(ctx); err != nil {
			e.warnf("clear session cache: %v", err)
		}
	}
	return nil
}

// Resume adopts an unfinished session recovered from the local cache.
// The active question's start time is rebased so the persisted
// remaining time is honored rather than the wall-clock gap.
func (e *Engine) Resume(ctx context.Context, sess *Session) error {
	if sess == nil {
		return fmt.Errorf("interview: nil session")
	}
	switch sess.Status {
	case StatusCollectingProfile, StatusGeneratingQuestions, StatusInProgress:
	default:
		return fmt.Errorf("interview: session %s is not resumable (status %s)", sess.SessionID, sess.Status)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.sess = sess
	e.draft = ""
	e.resolving = false
	e.expirySeen = map[string]bool{}
	e.genFlight = map[int]bool{}

	// A session interrupted mid-generation restarts its generation
	// phase from profile confirmation.
	if sess.Status == StatusGeneratingQuestions {
		sess.Status = StatusCollectingProfile
		sess.Questions = nil
		sess.CurrentQuestionIndex = -1
	}

	if q := sess.Active(); q != nil && !q.Resolved() {
		rem := q.AllottedMs
		if q.RemainingMs != nil {
			rem = *q.RemainingMs
		}
		q.StartedAt = timeToMs(e.now()) - (q.AllottedMs - rem)
	}
	e.saveLocked(ctx)
	return nil
}

// Warnings returns the non-fatal warnings accumulated so far.
func (e *Engine) Warnings() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, len(e.warnings))
	copy(out, e.warnings)
	return out
}

func (e *Engine) findQuestionLocked(id string) *QuestionRecord {
	for i := range e.sess.Questions {
		if e.sess.Questions[i].ID == id {
			return &e.sess.Questions[i]
		}
	}
	return nil
}

// saveLocked mirrors the session into the local cache, best-effort.
// Persistence is a side effect, never a source of truth mid-session.
func (e *Engine) saveLocked(ctx context.Context) {
	if e.cfg.Cache == nil {
		return
	}
	snap := e.snapshotLocked()
	if err := e.cfg.Cache.Save(ctx, &snap); err != nil {
		e.warnLocked(fmt.Sprintf("save session cache: %v", err))
	}
}

func (e *Engine) warnf(format string, args ...any) {
	e.mu.Lock()
	e.warnLocked(fmt.Sprintf(format, args...))
	e.mu.Unlock()
}

func (e *Engine) warnLocked(msg string) {
	e.warnings = append(e.warnings, msg)
	if len(e.warnings) > 20 {
		e.warnings = e.warnings[len(e.warnings)-20:]
	}
	if e.cfg.Warn != nil {
		e.cfg.Warn(msg)
	}
}

func (e *Engine) nowMs() int64 { return timeToMs(e.now()) }

func timeToMs(t time.Time) int64 { return t.UnixMilli() }

// remainingMs computes the active question's remaining budget at now,
// clamped at zero.
func remainingMs(q *QuestionRecord, now time.Time) int64 {
	elapsed := timeToMs(now) - q.StartedAt
	rem := q.AllottedMs - elapsed
	if rem < 0 {
		rem = 0
	}
	return rem
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > MaxQuestionScore {
		return MaxQuestionScore
	}
	return score
}
