package questions

import (
	"fmt"
	"strings"
)

// Validator checks a fetched question before it reaches a session.
// Implementations should be stateless and safe for concurrent use.
type Validator interface {
	// Name returns a short identifier, e.g. "structural".
	Name() string

	// Validate returns nil if q is usable for req.
	Validate(q *Question, req Request) *ValidationError
}

// ValidationError describes why a question was rejected.
type ValidationError struct {
	Validator string
	Message   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validator %q: %s", e.Validator, e.Message)
}

// DefaultValidators returns the validators applied by every remote source.
func DefaultValidators() []Validator {
	return []Validator{&StructuralValidator{}, &DifficultyValidator{}}
}

// StructuralValidator checks that a question can be rendered and scored.
type StructuralValidator struct{}

func (v *StructuralValidator) Name() string { return "structural" }

func (v *StructuralValidator) Validate(q *Question, _ Request) *ValidationError {
	fail := func(format string, args ...any) *ValidationError {
		return &ValidationError{Validator: v.Name(), Message: fmt.Sprintf(format, args...)}
	}

	if strings.TrimSpace(q.Prompt) == "" {
		return fail("prompt is empty")
	}
	if len(q.Options) < 2 {
		return fail("need at least 2 options, got %d", len(q.Options))
	}

	seen := make(map[string]bool, len(q.Options))
	for i, opt := range q.Options {
		if strings.TrimSpace(opt) == "" {
			return fail("option %d is empty", i+1)
		}
		if seen[opt] {
			return fail("duplicate option %q", opt)
		}
		seen[opt] = true
	}

	if !seen[q.Correct] {
		return fail("correct answer %q is not one of the options", q.Correct)
	}
	return nil
}

// DifficultyValidator rejects questions tagged for a different tier than
// the one requested. Untagged questions inherit the requested tier.
type DifficultyValidator struct{}

func (v *DifficultyValidator) Name() string { return "difficulty" }

func (v *DifficultyValidator) Validate(q *Question, req Request) *ValidationError {
	if q.Difficulty == "" {
		q.Difficulty = req.Difficulty
		return nil
	}
	if q.Difficulty != req.Difficulty {
		return &ValidationError{
			Validator: v.Name(),
			Message:   fmt.Sprintf("difficulty %q, want %q", q.Difficulty, req.Difficulty),
		}
	}
	return nil
}

// filterValid runs validators over qs and keeps the questions that pass.
// Rejections are returned for logging.
func filterValid(qs []Question, req Request, validators []Validator) ([]Question, []*ValidationError) {
	var (
		kept     = make([]Question, 0, len(qs))
		rejected []*ValidationError
	)
outer:
	for i := range qs {
		q := qs[i]
		for _, v := range validators {
			if verr := v.Validate(&q, req); verr != nil {
				rejected = append(rejected, verr)
				continue outer
			}
		}
		kept = append(kept, q)
	}
	return kept, rejected
}
