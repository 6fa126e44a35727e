package questions

import "github.com/abhisek/cybersage/internal/llm"

// QuestionSetSchema defines the JSON schema for LLM question set responses.
var QuestionSetSchema = &llm.Schema{
	Name:        "question-set",
	Description: "A batch of multiple-choice cybersecurity awareness questions",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"questions": map[string]any{
				"type":     "array",
				"minItems": 1,
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"question": map[string]any{
							"type":        "string",
							"description": "The question prompt shown to the learner",
						},
						"options": map[string]any{
							"type":        "array",
							"items":       map[string]any{"type": "string"},
							"minItems":    4,
							"maxItems":    4,
							"description": "Exactly 4 answer options",
						},
						"correct_answer": map[string]any{
							"type":        "string",
							"description": "The text of the correct option, copied exactly",
						},
						"explanation": map[string]any{
							"type":        "string",
							"description": "One or two sentences explaining why the answer is correct",
						},
						"category": map[string]any{
							"type":        "string",
							"description": "Short topic label, e.g. phishing or passwords",
						},
					},
					"required":             []any{"question", "options", "correct_answer", "explanation", "category"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []any{"questions"},
		"additionalProperties": false,
	},
}

// HintSchema defines the JSON schema for LLM hint responses.
var HintSchema = &llm.Schema{
	Name:        "hint",
	Description: "A short hint that nudges the learner without revealing the answer",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"hint": map[string]any{
				"type":        "string",
				"description": "One sentence hint. Must not state the correct option.",
			},
		},
		"required":             []any{"hint"},
		"additionalProperties": false,
	},
}
