package questions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/abhisek/cybersage/internal/catalog"
	"github.com/abhisek/cybersage/internal/llm"
	"github.com/abhisek/cybersage/internal/logger"
)

// LLMConfig controls the LLM question source.
type LLMConfig struct {
	Validators  []Validator
	MaxTokens   int
	Temperature float64
}

// DefaultLLMConfig returns the standard validator chain and token budget.
func DefaultLLMConfig() LLMConfig {
	return LLMConfig{
		Validators:  DefaultValidators(),
		MaxTokens:   2048,
		Temperature: 0.7,
	}
}

// LLMSource generates question sets with an LLM provider.
type LLMSource struct {
	provider llm.Provider
	catalog  *catalog.Catalog
	config   LLMConfig
	log      *logger.Logger
}

// NewLLMSource creates an LLMSource. cat supplies module names and
// descriptions for the prompt and may be nil.
func NewLLMSource(provider llm.Provider, cat *catalog.Catalog, cfg LLMConfig, log *logger.Logger) *LLMSource {
	return &LLMSource{provider: provider, catalog: cat, config: cfg, log: logger.OrNop(log)}
}

func (s *LLMSource) Name() string { return "llm" }

// questionSetOutput is the raw LLM response before validation.
type questionSetOutput struct {
	Questions []struct {
		Question      string   `json:"question"`
		Options       []string `json:"options"`
		CorrectAnswer string   `json:"correct_answer"`
		Explanation   string   `json:"explanation"`
		Category      string   `json:"category"`
	} `json:"questions"`
}

func (s *LLMSource) Fetch(ctx context.Context, req Request) (*Set, error) {
	ctx = llm.WithPurpose(ctx, llm.PurposeQuestions)

	var module *catalog.Module
	if req.ModuleID != "" && s.catalog != nil {
		m, err := s.catalog.Get(req.ModuleID)
		if err != nil {
			return nil, err
		}
		module = &m
	}

	llmReq := llm.UserRequest(systemPrompt, buildUserMessage(req, module), QuestionSetSchema, s.config.MaxTokens)
	llmReq.Temperature = s.config.Temperature

	resp, err := s.provider.Generate(ctx, llmReq)
	if err != nil {
		return nil, fetchErr(s.Name(), fmt.Errorf("LLM generation failed: %w", err))
	}

	var raw questionSetOutput
	if err := json.Unmarshal(resp.Content, &raw); err != nil {
		return nil, fetchErr(s.Name(), fmt.Errorf("failed to parse LLM response: %w", err))
	}

	qs := make([]Question, 0, len(raw.Questions))
	for _, r := range raw.Questions {
		qs = append(qs, Question{
			ID:          uuid.NewString(),
			Prompt:      r.Question,
			Options:     r.Options,
			Correct:     r.CorrectAnswer,
			Explanation: r.Explanation,
			Category:    r.Category,
			ModuleID:    req.ModuleID,
			Difficulty:  req.Difficulty,
			Source:      s.Name(),
		})
	}

	kept, rejected := filterValid(qs, req, s.config.Validators)
	for _, verr := range rejected {
		s.log.Warn("dropped generated question", "module", req.ModuleID, "reason", verr.Error())
	}
	if len(kept) == 0 {
		return nil, fetchErr(s.Name(), errors.New("no valid questions in response"))
	}
	if req.Count > 0 && len(kept) > req.Count {
		kept = kept[:req.Count]
	}

	return &Set{ModuleID: req.ModuleID, Difficulty: req.Difficulty, Questions: kept}, nil
}
