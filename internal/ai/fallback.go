package ai

import (
	"fmt"
	"strings"

	"github.com/abhisek/crispterm/internal/interview"
)

// mockBank holds canned questions per difficulty, used when no
// credential is configured or the provider fails outright.
var mockBank = map[interview.Difficulty][]string{
	interview.DifficultyEasy: {
		"Explain the difference between var, let, and const in JavaScript.",
		"What is JSX and why is it used in React?",
	},
	interview.DifficultyMedium: {
		"Describe how the event loop works in Node.js.",
		"How would you optimize bundle size in a React/Next.js application?",
	},
	interview.DifficultyHard: {
		"Design a scalable architecture for a real-time collaborative editor (high-level).",
		"Explain how you would implement server-side rendering with streaming and suspense in Next.js for a large app.",
	},
}

// genericQuestion is served when the bank has no entry for the slot.
const genericQuestion = "Describe a challenging full stack problem you solved recently."

// mockQuestion picks a deterministic bank question for the slot.
func mockQuestion(index int, difficulty interview.Difficulty) string {
	list := mockBank[difficulty]
	if len(list) == 0 {
		return genericQuestion
	}
	return list[index%len(list)]
}

// scoreKeywords are the terms the heuristic scorer looks for.
var scoreKeywords = []string{"performance", "scalable", "complexity", "async", "react", "node"}

// heuristicScore grades an answer without a model: 0 for empty, else a
// base point plus length and keyword bonuses, clamped to the maximum.
func heuristicScore(answer string) (int, string) {
	if answer == "" {
		return 0, "No answer provided."
	}

	score := 1
	if len(answer) > 40 {
		score++
	}
	if len(answer) > 120 {
		score++
	}

	lowered := strings.ToLower(answer)
	for _, k := range scoreKeywords {
		if strings.Contains(lowered, k) {
			score++
		}
	}

	if score > interview.MaxQuestionScore {
		score = interview.MaxQuestionScore
	}
	return score, "Heuristic preliminary score (fallback)."
}

// heuristicSummary writes a one-line verdict keyed on the percent
// score. The label distinguishes the never-tried path from the
// tried-and-failed path.
func heuristicSummary(finalScore int, label string) string {
	level := "developing"
	if finalScore >= 70 {
		level = "strong"
	}
	return fmt.Sprintf("Candidate demonstrated %s proficiency across full stack concepts. (%s summary)", level, label)
}
