package ai

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/abhisek/crispterm/internal/interview"
	"github.com/abhisek/crispterm/internal/llm"
)

func qin(index int, difficulty interview.Difficulty) interview.QuestionInput {
	return interview.QuestionInput{
		Role:       "Full Stack Developer",
		Difficulty: difficulty,
		Index:      index,
	}
}

func TestGenerateQuestion_NoProviderUsesBank(t *testing.T) {
	s := New(nil, DefaultConfig())

	res := s.GenerateQuestion(context.Background(), qin(0, interview.DifficultyEasy))
	if res.Source != interview.SourceMock {
		t.Fatalf("expected mock source, got %q", res.Source)
	}
	if res.Text == "" {
		t.Fatal("expected a question")
	}
	if res.Err != "" {
		t.Fatalf("unexpected err: %q", res.Err)
	}

	// Same slot always serves the same bank question.
	again := s.GenerateQuestion(context.Background(), qin(0, interview.DifficultyEasy))
	if again.Text != res.Text {
		t.Fatalf("bank not deterministic: %q vs %q", again.Text, res.Text)
	}

	// Index wraps around the bank.
	wrapped := s.GenerateQuestion(context.Background(), qin(2, interview.DifficultyEasy))
	if wrapped.Text != res.Text {
		t.Fatalf("expected index to wrap, got %q", wrapped.Text)
	}
}

func TestGenerateQuestion_LLMSuccess(t *testing.T) {
	mock := llm.NewMockProvider(
		llm.MockResponse{Content: json.RawMessage(`{"question":"Explain CORS."}`)},
	)
	s := New(mock, DefaultConfig())

	res := s.GenerateQuestion(context.Background(), qin(0, interview.DifficultyEasy))
	if res.Source != interview.SourceLLM {
		t.Fatalf("expected llm source, got %q", res.Source)
	}
	if res.Text != "Explain CORS." {
		t.Fatalf("unexpected text: %q", res.Text)
	}
}

func TestGenerateQuestion_TruncatesLongText(t *testing.T) {
	long := strings.Repeat("a", 500)
	body, _ := json.Marshal(map[string]string{"question": long})
	mock := llm.NewMockProvider(llm.MockResponse{Content: body})
	s := New(mock, DefaultConfig())

	res := s.GenerateQuestion(context.Background(), qin(0, interview.DifficultyMedium))
	if len(res.Text) != maxQuestionLen {
		t.Fatalf("expected %d chars, got %d", maxQuestionLen, len(res.Text))
	}
}

func TestGenerateQuestion_ProviderDownFallsBack(t *testing.T) {
	mock := llm.NewMockProvider(
		llm.MockResponse{Err: &llm.ErrProviderUnavailable{Err: errors.New("down")}},
	)
	s := New(mock, DefaultConfig())

	res := s.GenerateQuestion(context.Background(), qin(1, interview.DifficultyHard))
	if res.Source != interview.SourceFallback {
		t.Fatalf("expected fallback source, got %q", res.Source)
	}
	if res.Text != mockQuestion(1, interview.DifficultyHard) {
		t.Fatalf("unexpected text: %q", res.Text)
	}
	if res.Err == "" {
		t.Fatal("expected err detail on degraded result")
	}
}

func TestGenerateQuestion_EmptyModelTextFallsBack(t *testing.T) {
	mock := llm.NewMockProvider(
		llm.MockResponse{Content: json.RawMessage(`{"question":"   "}`)},
	)
	s := New(mock, DefaultConfig())

	res := s.GenerateQuestion(context.Background(), qin(0, interview.DifficultyEasy))
	if res.Source != interview.SourceFallback {
		t.Fatalf("expected fallback source, got %q", res.Source)
	}
	if res.Text == "" {
		t.Fatal("expected bank question")
	}
}

func TestEvaluateAnswer_EmptyShortCircuits(t *testing.T) {
	mock := llm.NewMockProvider() // Any call would fail.
	s := New(mock, DefaultConfig())

	for _, answer := range []string{"", interview.NoAnswer} {
		res := s.EvaluateAnswer(context.Background(), "Q?", answer)
		if res.Score != 0 {
			t.Fatalf("expected 0, got %d", res.Score)
		}
		if res.Source != interview.SourceHeuristic {
			t.Fatalf("expected heuristic source, got %q", res.Source)
		}
	}
	if mock.CallCount() != 0 {
		t.Fatalf("expected no provider calls, got %d", mock.CallCount())
	}
}

func TestEvaluateAnswer_HeuristicScoring(t *testing.T) {
	s := New(nil, DefaultConfig())

	// Base point only.
	res := s.EvaluateAnswer(context.Background(), "Q?", "short")
	if res.Score != 1 {
		t.Fatalf("expected 1, got %d", res.Score)
	}
	if res.Source != interview.SourceHeuristic {
		t.Fatalf("expected heuristic source, got %q", res.Source)
	}

	// Long answer with three keyword hits: 1 base + 2 length + 3
	// keywords lands past the cap and clamps at the maximum.
	answer := "We improved performance with async processing on the ingest path. " +
		"Measured before and after, kept the design scalable, and documented the tradeoffs for the team."
	if len(answer) <= 120 {
		t.Fatalf("test answer too short: %d", len(answer))
	}
	res = s.EvaluateAnswer(context.Background(), "Q?", answer)
	if res.Score != 5 {
		t.Fatalf("expected 5, got %d", res.Score)
	}
}

func TestEvaluateAnswer_LLMClampsScore(t *testing.T) {
	mock := llm.NewMockProvider(
		llm.MockResponse{Content: json.RawMessage(`{"score":7,"feedback":"great"}`)},
	)
	s := New(mock, DefaultConfig())

	res := s.EvaluateAnswer(context.Background(), "Q?", "an answer")
	if res.Score != 5 {
		t.Fatalf("expected clamp to 5, got %d", res.Score)
	}
	if res.Source != interview.SourceLLM {
		t.Fatalf("expected llm source, got %q", res.Source)
	}
	if res.Feedback != "great" {
		t.Fatalf("unexpected feedback: %q", res.Feedback)
	}
}

func TestEvaluateAnswer_ProviderDownFallsBack(t *testing.T) {
	mock := llm.NewMockProvider(
		llm.MockResponse{Err: &llm.ErrRateLimit{Err: errors.New("429")}},
	)
	s := New(mock, DefaultConfig())

	res := s.EvaluateAnswer(context.Background(), "Q?", "a short answer about react")
	if res.Source != interview.SourceFallback {
		t.Fatalf("expected fallback source, got %q", res.Source)
	}
	if res.Score < 1 {
		t.Fatalf("expected heuristic score, got %d", res.Score)
	}
	if res.Err == "" {
		t.Fatal("expected err detail")
	}
}

func TestSummarize_Heuristic(t *testing.T) {
	s := New(nil, DefaultConfig())

	res := s.Summarize(context.Background(), nil, 80)
	if res.Source != interview.SourceHeuristic {
		t.Fatalf("expected heuristic source, got %q", res.Source)
	}
	if !strings.Contains(res.Summary, "strong") {
		t.Fatalf("expected strong verdict at 80, got %q", res.Summary)
	}

	res = s.Summarize(context.Background(), nil, 40)
	if !strings.Contains(res.Summary, "developing") {
		t.Fatalf("expected developing verdict at 40, got %q", res.Summary)
	}
}

func TestSummarize_LLMSuccessAndFallback(t *testing.T) {
	mock := llm.NewMockProvider(
		llm.MockResponse{Content: json.RawMessage(`Solid performance across the board.`)},
		llm.MockResponse{Err: &llm.ErrProviderUnavailable{Err: errors.New("down")}},
	)
	s := New(mock, DefaultConfig())

	score := 4
	questions := []interview.QuestionRecord{
		{Index: 0, Difficulty: interview.DifficultyEasy, Question: "Q1", Answer: "A1", Score: &score},
	}

	res := s.Summarize(context.Background(), questions, 80)
	if res.Source != interview.SourceLLM {
		t.Fatalf("expected llm source, got %q", res.Source)
	}
	if res.Summary != "Solid performance across the board." {
		t.Fatalf("unexpected summary: %q", res.Summary)
	}

	res = s.Summarize(context.Background(), questions, 80)
	if res.Source != interview.SourceFallback {
		t.Fatalf("expected fallback source, got %q", res.Source)
	}
	if res.Err == "" {
		t.Fatal("expected err detail")
	}
}

func TestBuildSummaryMessage_SkipsUnanswered(t *testing.T) {
	score := 3
	questions := []interview.QuestionRecord{
		{Index: 0, Difficulty: interview.DifficultyEasy, Answer: "answered", Score: &score},
		{Index: 1, Difficulty: interview.DifficultyMedium}, // Never answered.
	}

	msg := buildSummaryMessage(questions, 30)
	if !strings.Contains(msg, "Q1 (easy)") {
		t.Fatalf("expected Q1 in message: %q", msg)
	}
	if strings.Contains(msg, "Q2") {
		t.Fatalf("unanswered question leaked into message: %q", msg)
	}
}
