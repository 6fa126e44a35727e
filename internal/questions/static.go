package questions

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"slices"
	"sync"

	"github.com/abhisek/cybersage/internal/catalog"
)

//go:embed data/bank.json
var bankJSON []byte

type bankQuestion struct {
	ID            string   `json:"id"`
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer"`
	Explanation   string   `json:"explanation"`
	Category      string   `json:"category"`
}

type bankFile struct {
	General []bankQuestion                                  `json:"general"`
	Modules map[string]map[catalog.Difficulty][]bankQuestion `json:"modules"`
}

// StaticBank serves questions from the bank compiled into the binary. It
// is the fallback when a remote source fails and never returns an error
// for a known difficulty.
type StaticBank struct {
	bank bankFile

	mu  sync.Mutex
	rng *rand.Rand
}

// StaticOption configures a StaticBank.
type StaticOption func(*StaticBank)

// WithShuffle randomizes question order using r.
func WithShuffle(r *rand.Rand) StaticOption {
	return func(b *StaticBank) { b.rng = r }
}

// NewStaticBank loads the embedded bank.
func NewStaticBank(opts ...StaticOption) (*StaticBank, error) {
	b := &StaticBank{}
	if err := json.Unmarshal(bankJSON, &b.bank); err != nil {
		return nil, fmt.Errorf("decode question bank: %w", err)
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// MustStaticBank is NewStaticBank for package initialization and tests.
func MustStaticBank(opts ...StaticOption) *StaticBank {
	b, err := NewStaticBank(opts...)
	if err != nil {
		panic(err)
	}
	return b
}

func (b *StaticBank) Name() string { return "static" }

// Fetch returns the module's questions for the tier followed by the general
// questions, capped at req.Count. An empty ModuleID draws from every module.
func (b *StaticBank) Fetch(_ context.Context, req Request) (*Set, error) {
	if !req.Difficulty.Valid() {
		return nil, fmt.Errorf("static bank: unknown difficulty %q", req.Difficulty)
	}

	var qs []Question
	if req.ModuleID != "" {
		qs = b.convert(b.bank.Modules[req.ModuleID][req.Difficulty], req.ModuleID, req.Difficulty)
	} else {
		ids := make([]string, 0, len(b.bank.Modules))
		for id := range b.bank.Modules {
			ids = append(ids, id)
		}
		slices.Sort(ids)
		for _, id := range ids {
			qs = append(qs, b.convert(b.bank.Modules[id][req.Difficulty], id, req.Difficulty)...)
		}
	}
	qs = append(qs, b.general(req)...)

	b.shuffle(qs)

	if req.Count > 0 && len(qs) > req.Count {
		qs = qs[:req.Count]
	}
	return &Set{ModuleID: req.ModuleID, Difficulty: req.Difficulty, Questions: qs}, nil
}

// general returns the catch-all questions, attributed to the requested
// module when there is one.
func (b *StaticBank) general(req Request) []Question {
	qs := make([]Question, 0, len(b.bank.General))
	for _, raw := range b.bank.General {
		moduleID := raw.Category
		if req.ModuleID != "" {
			moduleID = req.ModuleID
		}
		q := toQuestion(raw, moduleID, req.Difficulty)
		q.ID = fmt.Sprintf("%s-%s", raw.ID, req.Difficulty)
		qs = append(qs, q)
	}
	return qs
}

func (b *StaticBank) convert(raw []bankQuestion, moduleID string, d catalog.Difficulty) []Question {
	qs := make([]Question, 0, len(raw))
	for _, r := range raw {
		qs = append(qs, toQuestion(r, moduleID, d))
	}
	return qs
}

func (b *StaticBank) shuffle(qs []Question) {
	if b.rng == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.rng.Shuffle(len(qs), func(i, j int) { qs[i], qs[j] = qs[j], qs[i] })
}

func toQuestion(r bankQuestion, moduleID string, d catalog.Difficulty) Question {
	return Question{
		ID:          r.ID,
		Prompt:      r.Question,
		Options:     slices.Clone(r.Options),
		Correct:     r.CorrectAnswer,
		Explanation: r.Explanation,
		Category:    r.Category,
		ModuleID:    moduleID,
		Difficulty:  d,
		Source:      "static",
	}
}
