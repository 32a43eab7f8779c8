// Package ai turns the fallible generation provider into a total
// service: every operation returns a usable result, tagged with where
// it came from. The engine never sees an error from this layer.
package ai

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/abhisek/crispterm/internal/interview"
	"github.com/abhisek/crispterm/internal/llm"
)

const (
	maxQuestionLen = 300
	maxSummaryLen  = 900
)

// Config tunes the generation requests.
type Config struct {
	MaxTokens   int
	Temperature float64
}

// DefaultConfig returns the request defaults.
func DefaultConfig() Config {
	return Config{
		MaxTokens:   1024,
		Temperature: 0.7,
	}
}

// Service implements interview.Orchestrator. With a nil provider it
// runs credential-free on the deterministic bank and heuristic scorer;
// with a provider it tries the model first and degrades per call.
type Service struct {
	provider llm.Provider
	config   Config
}

// New creates a Service. provider may be nil.
func New(provider llm.Provider, cfg Config) *Service {
	return &Service{provider: provider, config: cfg}
}

// questionOutput is the raw model response for question generation.
type questionOutput struct {
	Question string `json:"question"`
}

// evalOutput is the raw model response for answer evaluation.
type evalOutput struct {
	Score    int    `json:"score"`
	Feedback string `json:"feedback"`
}

// GenerateQuestion produces the question text for one slot.
func (s *Service) GenerateQuestion(ctx context.Context, in interview.QuestionInput) interview.QuestionResult {
	if s.provider == nil {
		return interview.QuestionResult{
			Text:   mockQuestion(in.Index, in.Difficulty),
			Source: interview.SourceMock,
		}
	}

	ctx = llm.WithPurpose(ctx, "question-gen")

	req := llm.Request{
		System: questionSystemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildQuestionMessage(in)},
		},
		Schema:      questionSchema,
		MaxTokens:   s.config.MaxTokens,
		Temperature: s.config.Temperature,
	}

	resp, err := s.provider.Generate(ctx, req)
	if err != nil {
		return interview.QuestionResult{
			Text:   mockQuestion(in.Index, in.Difficulty),
			Source: interview.SourceFallback,
			Err:    err.Error(),
		}
	}

	var out questionOutput
	if uerr := json.Unmarshal(resp.Content, &out); uerr != nil {
		return interview.QuestionResult{
			Text:   mockQuestion(in.Index, in.Difficulty),
			Source: interview.SourceFallback,
			Err:    uerr.Error(),
		}
	}

	text := firstLine(out.Question)
	if text == "" {
		return interview.QuestionResult{
			Text:   mockQuestion(in.Index, in.Difficulty),
			Source: interview.SourceFallback,
			Err:    "model returned an empty question",
		}
	}

	return interview.QuestionResult{
		Text:   truncate(text, maxQuestionLen),
		Source: interview.SourceLLM,
	}
}

// EvaluateAnswer grades one answer. Empty answers and the no-answer
// sentinel are scored deterministically without a model call, so
// expiry with nothing typed never burns a request.
func (s *Service) EvaluateAnswer(ctx context.Context, question, answer string) interview.EvalResult {
	if answer == "" || answer == interview.NoAnswer {
		return interview.EvalResult{
			Score:    0,
			Feedback: "No answer provided.",
			Source:   interview.SourceHeuristic,
		}
	}

	if s.provider == nil {
		score, feedback := heuristicScore(answer)
		return interview.EvalResult{
			Score:    score,
			Feedback: feedback,
			Source:   interview.SourceHeuristic,
		}
	}

	ctx = llm.WithPurpose(ctx, "evaluate")

	req := llm.Request{
		System: evalSystemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildEvalMessage(question, answer)},
		},
		Schema:    evalSchema,
		MaxTokens: s.config.MaxTokens,
	}

	resp, err := s.provider.Generate(ctx, req)
	if err != nil {
		score, feedback := heuristicScore(answer)
		return interview.EvalResult{
			Score:    score,
			Feedback: feedback,
			Source:   interview.SourceFallback,
			Err:      err.Error(),
		}
	}

	var out evalOutput
	if uerr := json.Unmarshal(resp.Content, &out); uerr != nil {
		score, feedback := heuristicScore(answer)
		return interview.EvalResult{
			Score:    score,
			Feedback: feedback,
			Source:   interview.SourceFallback,
			Err:      uerr.Error(),
		}
	}

	feedback := out.Feedback
	if feedback == "" {
		feedback = "LLM scored."
	}

	return interview.EvalResult{
		Score:    clampScore(out.Score),
		Feedback: feedback,
		Source:   interview.SourceLLM,
	}
}

// Summarize writes the completion summary from the resolved questions.
func (s *Service) Summarize(ctx context.Context, questions []interview.QuestionRecord, finalScore int) interview.SummaryResult {
	if s.provider == nil {
		return interview.SummaryResult{
			Summary: heuristicSummary(finalScore, "Heuristic"),
			Source:  interview.SourceHeuristic,
		}
	}

	ctx = llm.WithPurpose(ctx, "summary")

	req := llm.Request{
		System: summarySystemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildSummaryMessage(questions, finalScore)},
		},
		MaxTokens: s.config.MaxTokens,
	}

	resp, err := s.provider.Generate(ctx, req)
	if err != nil {
		return interview.SummaryResult{
			Summary: heuristicSummary(finalScore, "Fallback"),
			Source:  interview.SourceFallback,
			Err:     err.Error(),
		}
	}

	text := strings.TrimSpace(string(resp.Content))
	if text == "" {
		return interview.SummaryResult{
			Summary: heuristicSummary(finalScore, "Fallback"),
			Source:  interview.SourceFallback,
			Err:     "model returned an empty summary",
		}
	}

	return interview.SummaryResult{
		Summary: truncate(text, maxSummaryLen),
		Source:  interview.SourceLLM,
	}
}

// firstLine trims the text and keeps only its first line.
func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = strings.TrimSpace(s[:i])
	}
	return s
}

// truncate bounds s to max runes.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

// clampScore bounds a score to the valid range.
func clampScore(n int) int {
	if n < 0 {
		return 0
	}
	if n > interview.MaxQuestionScore {
		return interview.MaxQuestionScore
	}
	return n
}
