package questions

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/abhisek/cybersage/internal/catalog"
	"github.com/abhisek/cybersage/internal/logger"
)

// DefaultAPIBaseURL is the question backend used when none is configured.
const DefaultAPIBaseURL = "http://localhost:3000/api"

// HTTPConfig configures the REST question backend.
type HTTPConfig struct {
	BaseURL    string
	Token      string // sent as a bearer token when set
	Timeout    time.Duration
	Validators []Validator
}

// HTTPSource fetches question sets from a REST backend:
//
//	GET {base}/questions/{module-path}/{difficulty}?count=N
//	GET {base}/questions/{difficulty}?count=N   (cross-module practice)
type HTTPSource struct {
	client     *resty.Client
	validators []Validator
	log        *logger.Logger
}

// NewHTTPSource creates an HTTPSource.
func NewHTTPSource(cfg HTTPConfig, log *logger.Logger) *HTTPSource {
	base := cfg.BaseURL
	if base == "" {
		base = DefaultAPIBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	validators := cfg.Validators
	if validators == nil {
		validators = DefaultValidators()
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(base, "/")).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
	if cfg.Token != "" {
		client.SetAuthToken(cfg.Token)
	}

	return &HTTPSource{client: client, validators: validators, log: logger.OrNop(log)}
}

func (s *HTTPSource) Name() string { return "http" }

type apiQuestion struct {
	ID            any      `json:"id"`
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"`
	Description   string   `json:"description"`
	Difficulty    string   `json:"difficulty"`
	Category      string   `json:"category"`
	Module        string   `json:"module"`
}

type apiQuestionSet struct {
	Questions       []apiQuestion `json:"questions"`
	DifficultyLevel string        `json:"difficultyLevel"`
	ModuleID        string        `json:"moduleId"`
}

type apiError struct {
	Message string `json:"message"`
}

// ModulePath maps a module ID to its URL segment.
func ModulePath(moduleID string) string {
	return strings.ReplaceAll(moduleID, "_", "-")
}

func (s *HTTPSource) Fetch(ctx context.Context, req Request) (*Set, error) {
	path := "/questions/" + string(req.Difficulty)
	if req.ModuleID != "" {
		path = "/questions/" + ModulePath(req.ModuleID) + "/" + string(req.Difficulty)
	}
	count := req.Count
	if count <= 0 {
		count = DefaultCount
	}

	var (
		body    apiQuestionSet
		failure apiError
	)
	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParam("count", strconv.Itoa(count)).
		SetResult(&body).
		SetError(&failure).
		Get(path)
	if err != nil {
		return nil, fetchErr(s.Name(), err)
	}
	if resp.IsError() {
		msg := failure.Message
		if msg == "" {
			msg = resp.Status()
		}
		return nil, fetchErr(s.Name(), fmt.Errorf("%s: HTTP %d: %s", path, resp.StatusCode(), msg))
	}

	qs := make([]Question, 0, len(body.Questions))
	for i, q := range body.Questions {
		id := fmt.Sprint(q.ID)
		if q.ID == nil || id == "" {
			id = fmt.Sprintf("%s-%s-%d", req.ModuleID, req.Difficulty, i+1)
		}
		moduleID := q.Module
		if req.ModuleID != "" {
			moduleID = req.ModuleID
		}
		qs = append(qs, Question{
			ID:          id,
			Prompt:      q.Question,
			Options:     q.Options,
			Correct:     q.CorrectAnswer,
			Explanation: q.Description,
			Category:    q.Category,
			ModuleID:    moduleID,
			Difficulty:  catalog.Difficulty(q.Difficulty),
			Source:      s.Name(),
		})
	}

	kept, rejected := filterValid(qs, req, s.validators)
	for _, verr := range rejected {
		s.log.Warn("dropped backend question", "path", path, "reason", verr.Error())
	}
	if len(kept) == 0 {
		return nil, fetchErr(s.Name(), errors.New("backend returned no usable questions"))
	}
	if len(kept) > count {
		kept = kept[:count]
	}

	return &Set{ModuleID: req.ModuleID, Difficulty: req.Difficulty, Questions: kept}, nil
}
