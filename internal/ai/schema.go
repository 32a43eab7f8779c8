package ai

import "github.com/abhisek/crispterm/internal/llm"

// questionSchema constrains question generation to a single field.
var questionSchema = &llm.Schema{
	Name:        "interview-question",
	Description: "A single interview question",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"question": map[string]any{
				"type":        "string",
				"description": "The question shown to the candidate, one concise sentence or two",
			},
		},
		"required":             []any{"question"},
		"additionalProperties": false,
	},
}

// evalSchema constrains answer evaluation to a score and feedback pair.
var evalSchema = &llm.Schema{
	Name:        "answer-evaluation",
	Description: "A graded interview answer",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"score": map[string]any{
				"type":        "integer",
				"minimum":     0,
				"maximum":     5,
				"description": "Score from 0 (no signal) to 5 (excellent)",
			},
			"feedback": map[string]any{
				"type":        "string",
				"description": "Short helpful phrase about the answer",
			},
		},
		"required":             []any{"score", "feedback"},
		"additionalProperties": false,
	},
}
