package questions

import (
	"strings"
	"testing"

	"github.com/abhisek/cybersage/internal/catalog"
)

func validQuestion() *Question {
	return &Question{
		ID:          "q1",
		Prompt:      "What does ransomware do?",
		Options:     []string{"Speeds up your computer", "Encrypts your files and demands payment", "Backs up your data", "Blocks advertisements"},
		Correct:     "Encrypts your files and demands payment",
		Explanation: "Ransomware locks your data and asks for a ransom.",
		Category:    "malware",
		ModuleID:    catalog.CyberAttacks,
		Difficulty:  catalog.Easy,
	}
}

func easyRequest() Request {
	return Request{ModuleID: catalog.CyberAttacks, Difficulty: catalog.Easy, Count: 5}
}

func TestStructural_ValidQuestion(t *testing.T) {
	v := &StructuralValidator{}
	if err := v.Validate(validQuestion(), easyRequest()); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}

func TestStructural_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(q *Question)
		want   string
	}{
		{"empty prompt", func(q *Question) { q.Prompt = "  " }, "prompt is empty"},
		{"one option", func(q *Question) { q.Options = q.Options[:1] }, "at least 2 options"},
		{"blank option", func(q *Question) { q.Options[2] = "" }, "option 3 is empty"},
		{"duplicate option", func(q *Question) { q.Options[0] = q.Options[2] }, "duplicate option"},
		{"answer not in options", func(q *Question) { q.Correct = "Nothing" }, "not one of the options"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := validQuestion()
			tt.mutate(q)
			err := (&StructuralValidator{}).Validate(q, easyRequest())
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Message, tt.want) {
				t.Errorf("message %q does not contain %q", err.Message, tt.want)
			}
			if err.Validator != "structural" {
				t.Errorf("validator = %q, want structural", err.Validator)
			}
		})
	}
}

func TestDifficulty_FillsMissingTier(t *testing.T) {
	q := validQuestion()
	q.Difficulty = ""
	if err := (&DifficultyValidator{}).Validate(q, easyRequest()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Difficulty != catalog.Easy {
		t.Errorf("difficulty = %q, want easy", q.Difficulty)
	}
}

func TestDifficulty_RejectsMismatch(t *testing.T) {
	q := validQuestion()
	q.Difficulty = catalog.Hard
	if err := (&DifficultyValidator{}).Validate(q, easyRequest()); err == nil {
		t.Fatal("expected mismatch to be rejected")
	}
}

func TestFilterValid_KeepsOrder(t *testing.T) {
	a, b, c := *validQuestion(), *validQuestion(), *validQuestion()
	a.ID, b.ID, c.ID = "a", "b", "c"
	b.Correct = "missing"

	kept, rejected := filterValid([]Question{a, b, c}, easyRequest(), DefaultValidators())
	if len(kept) != 2 || kept[0].ID != "a" || kept[1].ID != "c" {
		t.Fatalf("unexpected kept questions: %+v", kept)
	}
	if len(rejected) != 1 {
		t.Errorf("expected 1 rejection, got %d", len(rejected))
	}
}

func TestQuestion_IsCorrect(t *testing.T) {
	q := validQuestion()
	if !q.IsCorrect("Encrypts your files and demands payment") {
		t.Error("expected correct option to match")
	}
	if q.IsCorrect("Backs up your data") {
		t.Error("expected wrong option to not match")
	}
	if q.CorrectIndex() != 1 {
		t.Errorf("CorrectIndex = %d, want 1", q.CorrectIndex())
	}
}
