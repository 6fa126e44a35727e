package store

import (
	"context"
	"testing"
)

func TestEventRepo_AppendAndQuery(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	appends := []func() error{
		func() error {
			return repo.AppendSessionEvent(ctx, SessionEventData{
				SessionID: "s1", ModuleID: "cyber_attacks", Difficulty: "easy", Action: "start", Questions: 3,
			})
		},
		func() error {
			return repo.AppendAnswerEvent(ctx, AnswerEventData{
				SessionID: "s1", ModuleID: "cyber_attacks", QuestionID: "q1", Selected: "B", Correct: true,
			})
		},
		func() error {
			return repo.AppendHintEvent(ctx, HintEventData{
				SessionID: "s1", ModuleID: "cyber_attacks", QuestionID: "q2", Cost: 5,
			})
		},
		func() error {
			return repo.AppendSessionEvent(ctx, SessionEventData{
				SessionID: "s1", ModuleID: "cyber_attacks", Difficulty: "easy", Action: "end",
				Questions: 3, Correct: 3, Score: 15, Accuracy: 100, Perfect: true,
			})
		},
	}
	for i, fn := range appends {
		if err := fn(); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	sessions, err := repo.QuerySessionEvents(ctx, QueryOpts{})
	if err != nil {
		t.Fatalf("QuerySessionEvents: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("got %d session events, want 2", len(sessions))
	}
	if sessions[0].Action != "end" || sessions[1].Action != "start" {
		t.Errorf("actions = %q, %q; want newest first", sessions[0].Action, sessions[1].Action)
	}
	if !sessions[0].Perfect {
		t.Error("end event should be perfect")
	}
	if sessions[0].Sequence <= sessions[1].Sequence {
		t.Errorf("sequence %d not after %d", sessions[0].Sequence, sessions[1].Sequence)
	}

	answers, err := repo.Query(ctx, KindAnswer, QueryOpts{SessionID: "s1"})
	if err != nil {
		t.Fatalf("Query answers: %v", err)
	}
	if len(answers) != 1 {
		t.Fatalf("got %d answers, want 1", len(answers))
	}
	var ans AnswerEventData
	if err := answers[0].Decode(&ans); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if ans.QuestionID != "q1" || !ans.Correct {
		t.Errorf("answer = %+v, want correct q1", ans)
	}

	// Sequence is global across kinds.
	if !(sessions[0].Sequence > answers[0].Sequence && answers[0].Sequence > sessions[1].Sequence) {
		t.Errorf("answer sequence %d not between %d and %d",
			answers[0].Sequence, sessions[1].Sequence, sessions[0].Sequence)
	}
}

func TestEventRepo_QueryFilters(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	for _, mod := range []string{"digital_arrest", "social_media", "digital_arrest"} {
		if err := repo.AppendModuleEvent(ctx, ModuleEventData{ModuleID: mod, Action: "completed", Score: 80}); err != nil {
			t.Fatalf("AppendModuleEvent: %v", err)
		}
	}

	all, err := repo.Query(ctx, KindModule, QueryOpts{})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("got %d events, want 3", len(all))
	}

	filtered, err := repo.Query(ctx, KindModule, QueryOpts{ModuleID: "digital_arrest"})
	if err != nil {
		t.Fatalf("Query by module: %v", err)
	}
	if len(filtered) != 2 {
		t.Errorf("got %d filtered events, want 2", len(filtered))
	}

	limited, err := repo.Query(ctx, KindModule, QueryOpts{Limit: 1})
	if err != nil {
		t.Fatalf("Query with limit: %v", err)
	}
	if len(limited) != 1 || limited[0].Sequence != all[0].Sequence {
		t.Errorf("limited = %+v, want only the newest event", limited)
	}

	after, err := repo.Query(ctx, KindModule, QueryOpts{After: all[1].Sequence})
	if err != nil {
		t.Fatalf("Query after: %v", err)
	}
	if len(after) != 1 || after[0].Sequence != all[0].Sequence {
		t.Errorf("after = %+v, want only the newest event", after)
	}
}

func TestEventRepo_LLMEventsAndCounts(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	if err := repo.AppendLLMRequest(ctx, LLMRequestEventData{
		Provider: "anthropic", Model: "claude-sonnet-4-5", Purpose: "question-gen",
		InputTokens: 120, OutputTokens: 300, LatencyMs: 850, Success: true,
	}); err != nil {
		t.Fatalf("AppendLLMRequest: %v", err)
	}
	if err := repo.AppendLLMRequest(ctx, LLMRequestEventData{
		Provider: "openai", Model: "gpt-4o-mini", Purpose: "hint", Success: false, ErrorMessage: "rate limited",
	}); err != nil {
		t.Fatalf("AppendLLMRequest: %v", err)
	}
	if err := repo.AppendHintEvent(ctx, HintEventData{SessionID: "s", QuestionID: "q", Cost: 5}); err != nil {
		t.Fatalf("AppendHintEvent: %v", err)
	}

	llm, err := repo.QueryLLMEvents(ctx, QueryOpts{})
	if err != nil {
		t.Fatalf("QueryLLMEvents: %v", err)
	}
	if len(llm) != 2 {
		t.Fatalf("got %d llm events, want 2", len(llm))
	}
	if llm[0].Purpose != "hint" || llm[0].Success || llm[0].ErrorMessage != "rate limited" {
		t.Errorf("newest llm event = %+v, want the failed hint call", llm[0])
	}
	if llm[1].OutputTokens != 300 {
		t.Errorf("OutputTokens = %d, want 300", llm[1].OutputTokens)
	}

	counts, err := repo.CountByKind(ctx)
	if err != nil {
		t.Fatalf("CountByKind: %v", err)
	}
	if counts[KindLLMRequest] != 2 || counts[KindHint] != 1 || counts[KindSession] != 0 {
		t.Errorf("counts = %v", counts)
	}
}
