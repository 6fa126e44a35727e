package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

// eventRepo implements EventRepo on a single append-only events table.
// Every row takes its sequence from the shared counter, so events of
// different kinds stay totally ordered.
type eventRepo struct {
	drv *entsql.Driver
	seq *sequenceCounter
}

func (r *eventRepo) AppendSessionEvent(ctx context.Context, data SessionEventData) error {
	return r.append(ctx, KindSession, data.SessionID, data.ModuleID, data)
}

func (r *eventRepo) AppendAnswerEvent(ctx context.Context, data AnswerEventData) error {
	return r.append(ctx, KindAnswer, data.SessionID, data.ModuleID, data)
}

func (r *eventRepo) AppendHintEvent(ctx context.Context, data HintEventData) error {
	return r.append(ctx, KindHint, data.SessionID, data.ModuleID, data)
}

func (r *eventRepo) AppendModuleEvent(ctx context.Context, data ModuleEventData) error {
	return r.append(ctx, KindModule, "", data.ModuleID, data)
}

func (r *eventRepo) AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error {
	return r.append(ctx, KindLLMRequest, "", "", data)
}

func (r *eventRepo) append(ctx context.Context, kind EventKind, sessionID, moduleID string, payload any) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", kind, err)
	}

	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	query, args := entsql.Dialect(dialect.SQLite).
		Insert(tableEvents).
		Columns("sequence", "kind", "session_id", "module_id", "created_at", "payload").
		Values(seqNum, string(kind), sessionID, moduleID, time.Now().UTC().UnixNano(), string(b)).
		Query()
	if err := r.drv.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("save %s event: %w", kind, err)
	}
	return nil
}

func (r *eventRepo) Query(ctx context.Context, kind EventKind, opts QueryOpts) ([]EventRecord, error) {
	preds := []*entsql.Predicate{entsql.EQ("kind", string(kind))}
	if opts.After > 0 {
		preds = append(preds, entsql.GT("sequence", opts.After))
	}
	if opts.Before > 0 {
		preds = append(preds, entsql.LT("sequence", opts.Before))
	}
	if !opts.From.IsZero() {
		preds = append(preds, entsql.GTE("created_at", opts.From.UnixNano()))
	}
	if !opts.To.IsZero() {
		preds = append(preds, entsql.LTE("created_at", opts.To.UnixNano()))
	}
	if opts.ModuleID != "" {
		preds = append(preds, entsql.EQ("module_id", opts.ModuleID))
	}
	if opts.SessionID != "" {
		preds = append(preds, entsql.EQ("session_id", opts.SessionID))
	}

	d := entsql.Dialect(dialect.SQLite)
	sel := d.Select("id", "sequence", "kind", "session_id", "module_id", "created_at", "payload").
		From(d.Table(tableEvents)).
		Where(entsql.And(preds...)).
		OrderBy(entsql.Desc("sequence"))
	if opts.Limit > 0 {
		sel = sel.Limit(opts.Limit)
	}
	query, args := sel.Query()

	var rows entsql.Rows
	if err := r.drv.Query(ctx, query, args, &rows); err != nil {
		return nil, fmt.Errorf("query %s events: %w", kind, err)
	}
	defer rows.Close()

	var out []EventRecord
	for rows.Next() {
		var (
			e       EventRecord
			k       string
			created int64
			payload string
		)
		if err := rows.Scan(&e.ID, &e.Sequence, &k, &e.SessionID, &e.ModuleID, &created, &payload); err != nil {
			return nil, fmt.Errorf("scan %s event: %w", kind, err)
		}
		e.Kind = EventKind(k)
		e.Timestamp = time.Unix(0, created).UTC()
		e.Payload = json.RawMessage(payload)
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *eventRepo) QuerySessionEvents(ctx context.Context, opts QueryOpts) ([]SessionEventRecord, error) {
	events, err := r.Query(ctx, KindSession, opts)
	if err != nil {
		return nil, err
	}
	out := make([]SessionEventRecord, 0, len(events))
	for _, e := range events {
		rec := SessionEventRecord{Sequence: e.Sequence, Timestamp: e.Timestamp}
		if err := e.Decode(&rec.SessionEventData); err != nil {
			return nil, fmt.Errorf("decode session event %d: %w", e.Sequence, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

func (r *eventRepo) QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMEventRecord, error) {
	events, err := r.Query(ctx, KindLLMRequest, opts)
	if err != nil {
		return nil, err
	}
	out := make([]LLMEventRecord, 0, len(events))
	for _, e := range events {
		rec := LLMEventRecord{ID: e.ID, Sequence: e.Sequence, Timestamp: e.Timestamp}
		if err := e.Decode(&rec.LLMRequestEventData); err != nil {
			return nil, fmt.Errorf("decode llm event %d: %w", e.Sequence, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

func (r *eventRepo) CountByKind(ctx context.Context) (map[EventKind]int, error) {
	d := entsql.Dialect(dialect.SQLite)
	query, args := d.Select("kind", entsql.Count("*")).
		From(d.Table(tableEvents)).
		GroupBy("kind").
		Query()

	var rows entsql.Rows
	if err := r.drv.Query(ctx, query, args, &rows); err != nil {
		return nil, fmt.Errorf("count events: %w", err)
	}
	defer rows.Close()

	counts := make(map[EventKind]int)
	for rows.Next() {
		var (
			kind string
			n    int
		)
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, fmt.Errorf("scan event count: %w", err)
		}
		counts[EventKind(kind)] = n
	}
	return counts, rows.Err()
}
