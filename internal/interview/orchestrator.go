package interview

import "context"

// Source tags where a generation result came from, so callers can tell
// "dependency never tried" (mock/heuristic) apart from "tried and
// failed" (fallback).
type Source string

const (
	SourceLLM       Source = "llm"
	SourceMock      Source = "mock"
	SourceHeuristic Source = "heuristic"
	SourceFallback  Source = "fallback"
)

// QuestionInput carries the context for generating one question slot.
type QuestionInput struct {
	Role           string
	Topic          string
	Difficulty     Difficulty
	Index          int
	ProfileContext string
}

// QuestionResult is the total (never-failing) outcome of question
// generation. Err is informational only, set when the result degraded.
type QuestionResult struct {
	Text   string
	Source Source
	Err    string
}

// EvalResult is the total outcome of answer evaluation.
type EvalResult struct {
	Score    int
	Feedback string
	Source   Source
	Err      string
}

// SummaryResult is the total outcome of interview summarization.
type SummaryResult struct {
	Summary string
	Source  Source
	Err     string
}

// Orchestrator is the engine's view of the resilient generation layer.
// Every operation is total: the engine never receives a failure from
// generation, evaluation or summarization, only a possibly degraded
// result.
type Orchestrator interface {
	GenerateQuestion(ctx context.Context, in QuestionInput) QuestionResult
	EvaluateAnswer(ctx context.Context, question, answer string) EvalResult
	Summarize(ctx context.Context, questions []QuestionRecord, finalScore int) SummaryResult
}

// Cache is the local durable mirror of the working session. Writes are
// best-effort; the engine reports failures as warnings and carries on.
type Cache interface {
	Save(ctx context.Context, s *Session) error
	Clear(ctx context.Context) error
}

// Publisher receives the single finalized snapshot when a session
// completes. A failed push is reported, never retried indefinitely, and
// does not revert completion.
type Publisher interface {
	Push(ctx context.Context, s Session) error
}
