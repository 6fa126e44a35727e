package questions

import (
	"context"
	"slices"

	"github.com/abhisek/cybersage/internal/catalog"
)

// Question is a single multiple-choice quiz item.
type Question struct {
	ID     string
	Prompt string

	// Options are displayed in order. Correct must equal one of them.
	Options []string
	Correct string

	// Explanation is shown after the learner answers.
	Explanation string

	Category   string
	ModuleID   string
	Difficulty catalog.Difficulty

	// Source names the backend that produced the question
	// ("llm", "http", "static").
	Source string
}

// IsCorrect reports whether option matches the correct answer.
func (q *Question) IsCorrect(option string) bool {
	return option == q.Correct
}

// CorrectIndex returns the position of the correct option, or -1.
func (q *Question) CorrectIndex() int {
	return slices.Index(q.Options, q.Correct)
}

// Request describes a question set to fetch. An empty ModuleID asks for
// cross-module practice questions.
type Request struct {
	ModuleID   string
	Difficulty catalog.Difficulty
	Count      int
}

// Set is an ordered batch of questions for one session.
type Set struct {
	ModuleID   string
	Difficulty catalog.Difficulty
	Questions  []Question

	// Fallback is true when the set came from the local bank after the
	// configured source failed.
	Fallback bool
}

// Len returns the number of questions in the set.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Questions)
}

// Source fetches question sets.
type Source interface {
	// Name identifies the source in logs and errors.
	Name() string

	// Fetch returns up to req.Count questions. Failures are wrapped in
	// ExternalFetchError.
	Fetch(ctx context.Context, req Request) (*Set, error)
}

// DefaultCount is the number of questions per session.
const DefaultCount = 5
