package questions

import (
	"fmt"
	"strings"

	"github.com/abhisek/cybersage/internal/catalog"
)

const systemPrompt = `You are a cybersecurity awareness trainer writing quiz questions for everyday internet users.

Rules:
- Write multiple-choice questions about practical, realistic threats and defences.
- Each question has exactly 4 options and exactly one correct option.
- The correct_answer field must repeat the correct option text exactly.
- Distractors should be plausible mistakes people actually make, not jokes.
- Keep prompts short and self-contained. Plain text only, no markdown.
- The explanation states why the correct option is right in one or two sentences.
- Match the requested difficulty: easy covers recognition of common scams, medium covers judgement in realistic scenarios, hard covers technical details and edge cases.
- Do not repeat questions within the batch.`

const hintSystemPrompt = `You are a cybersecurity tutor. Give the learner a single-sentence hint for the question.
Never name or quote the correct option. Point them toward the principle that decides the answer.`

// buildUserMessage describes the requested batch.
func buildUserMessage(req Request, module *catalog.Module) string {
	var b strings.Builder

	if module != nil {
		fmt.Fprintf(&b, "Module: %s\n", module.Name)
		fmt.Fprintf(&b, "Description: %s\n", module.Description)
	} else {
		b.WriteString("Module: mixed practice across all cybersecurity topics\n")
	}
	fmt.Fprintf(&b, "Difficulty: %s\n", req.Difficulty)
	fmt.Fprintf(&b, "Number of questions: %d\n", req.Count)

	return b.String()
}

// buildHintMessage describes the question the learner is stuck on.
func buildHintMessage(q *Question) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Question: %s\n", q.Prompt)
	b.WriteString("Options:\n")
	for i, opt := range q.Options {
		fmt.Fprintf(&b, "%d. %s\n", i+1, opt)
	}
	if q.Category != "" {
		fmt.Fprintf(&b, "Topic: %s\n", q.Category)
	}
	return b.String()
}
