package questions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/abhisek/cybersage/internal/llm"
)

// Hinter produces a hint for a question.
type Hinter interface {
	Hint(ctx context.Context, q *Question) (string, error)
}

// LLMHinter asks an LLM provider for a hint.
type LLMHinter struct {
	provider  llm.Provider
	maxTokens int
}

// NewLLMHinter creates an LLMHinter.
func NewLLMHinter(provider llm.Provider) *LLMHinter {
	return &LLMHinter{provider: provider, maxTokens: 256}
}

func (h *LLMHinter) Hint(ctx context.Context, q *Question) (string, error) {
	ctx = llm.WithPurpose(ctx, llm.PurposeHint)

	resp, err := h.provider.Generate(ctx, llm.UserRequest(hintSystemPrompt, buildHintMessage(q), HintSchema, h.maxTokens))
	if err != nil {
		return "", fetchErr("llm-hint", err)
	}

	var out struct {
		Hint string `json:"hint"`
	}
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return "", fetchErr("llm-hint", fmt.Errorf("failed to parse hint: %w", err))
	}

	hint := strings.TrimSpace(out.Hint)
	if hint == "" {
		return "", fetchErr("llm-hint", errors.New("empty hint"))
	}
	if q.Correct != "" && strings.Contains(strings.ToLower(hint), strings.ToLower(q.Correct)) {
		return "", fetchErr("llm-hint", errors.New("hint reveals the answer"))
	}
	return hint, nil
}

// CannedHinter returns a generic hint keyed by the question's category.
// It never fails.
type CannedHinter struct{}

func (CannedHinter) Hint(_ context.Context, q *Question) (string, error) {
	return CannedHint(q), nil
}

var cannedHints = map[string]string{
	"phishing":      "Check who really sent the message and where the link actually goes.",
	"passwords":     "Think about what happens to your other accounts if one password leaks.",
	"mfa":           "A second factor only helps if an attacker cannot easily intercept or approve it.",
	"privacy":       "Ask yourself what a stranger could do with this information.",
	"impersonation": "Genuine authorities never pressure you to act immediately over a call or chat.",
	"malware":       "Consider how you would recover if your files were locked or destroyed.",
	"network":       "Think about who else can see the traffic on the network you are using.",
	"access":        "Grant only the access that is actually needed, and no more.",
}

// CannedHint returns the offline hint for q.
func CannedHint(q *Question) string {
	if q != nil {
		if h, ok := cannedHints[q.Category]; ok {
			return h
		}
	}
	return "Eliminate the options that rely on trusting an unverified request, then pick the safest remaining choice."
}
