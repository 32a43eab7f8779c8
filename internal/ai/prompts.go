package ai

import (
	"fmt"
	"strings"

	"github.com/abhisek/crispterm/internal/interview"
)

const questionSystemPrompt = `You are a technical interviewer preparing questions for a timed interview.

Rules:
- Generate a single concise question appropriate for the given role, topic, and difficulty.
- The question must be answerable in free-form text within the time a candidate has for that difficulty.
- No numbering, no preamble, no extra commentary.`

const evalSystemPrompt = `You evaluate interview answers. Score the answer from 0 (no signal) to 5 (excellent) and give a short helpful phrase of feedback. Judge only what the answer demonstrates; do not reward length alone.`

const summarySystemPrompt = `You summarize interview performance for a hiring reviewer in at most 4 sentences. Avoid restating questions exactly. Mention strengths and gaps.`

// buildQuestionMessage constructs the user message for one question slot.
func buildQuestionMessage(in interview.QuestionInput) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Role: %s\n", in.Role)
	if in.Topic != "" {
		fmt.Fprintf(&b, "Topic: %s\n", in.Topic)
	}
	fmt.Fprintf(&b, "Difficulty: %s\n", in.Difficulty)
	fmt.Fprintf(&b, "Question number: %d\n", in.Index+1)

	if in.ProfileContext != "" {
		b.WriteString("\nCandidate background:\n")
		b.WriteString(in.ProfileContext)
		b.WriteString("\n")
	}

	return b.String()
}

// buildEvalMessage constructs the user message for scoring one answer.
func buildEvalMessage(question, answer string) string {
	var b strings.Builder
	b.WriteString("Question: ")
	b.WriteString(question)
	b.WriteString("\nAnswer: ")
	b.WriteString(answer)
	return b.String()
}

// buildSummaryMessage condenses the resolved questions for the summary
// prompt. Answers are truncated to keep the prompt bounded.
func buildSummaryMessage(questions []interview.QuestionRecord, finalScore int) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Overall percent: %d\n", finalScore)
	b.WriteString("Data:\n")

	for _, q := range questions {
		if q.Answer == "" {
			continue
		}
		score := "-"
		if q.Score != nil {
			score = fmt.Sprintf("%d", *q.Score)
		}
		ans := q.Answer
		if len(ans) > 140 {
			ans = ans[:140]
		}
		fmt.Fprintf(&b, "Q%d (%s) score:%s ans:%s\n", q.Index+1, q.Difficulty, score, ans)
	}

	return b.String()
}
