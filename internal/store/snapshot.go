package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

// snapshotRepo implements SnapshotRepo on the ent SQL builders.
type snapshotRepo struct {
	drv *entsql.Driver
	seq *sequenceCounter
}

func (r *snapshotRepo) Save(ctx context.Context, snap *Snapshot) error {
	b, err := json.Marshal(snap.Data)
	if err != nil {
		return fmt.Errorf("marshal snapshot data: %w", err)
	}
	if snap.Sequence == 0 {
		if snap.Sequence, err = r.seq.Next(ctx); err != nil {
			return err
		}
	}
	if snap.Timestamp.IsZero() {
		snap.Timestamp = time.Now().UTC()
	}

	query, args := entsql.Dialect(dialect.SQLite).
		Insert(tableSnapshots).
		Columns("sequence", "created_at", "data").
		Values(snap.Sequence, snap.Timestamp.UnixNano(), string(b)).
		Query()
	if err := r.drv.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

func (r *snapshotRepo) Latest(ctx context.Context) (*Snapshot, error) {
	d := entsql.Dialect(dialect.SQLite)
	query, args := d.Select("id", "sequence", "created_at", "data").
		From(d.Table(tableSnapshots)).
		OrderBy(entsql.Desc("id")).
		Limit(1).
		Query()

	var rows entsql.Rows
	if err := r.drv.Query(ctx, query, args, &rows); err != nil {
		return nil, fmt.Errorf("query latest snapshot: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	var (
		snap    Snapshot
		created int64
		data    string
	)
	if err := rows.Scan(&snap.ID, &snap.Sequence, &created, &data); err != nil {
		return nil, fmt.Errorf("scan snapshot: %w", err)
	}
	if err := json.Unmarshal([]byte(data), &snap.Data); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot data: %w", err)
	}
	snap.Timestamp = time.Unix(0, created).UTC()
	return &snap, nil
}

func (r *snapshotRepo) Prune(ctx context.Context, keep int) error {
	threshold, found, err := r.pruneThreshold(ctx, keep)
	if err != nil {
		return err
	}
	if !found {
		return nil // fewer than keep snapshots exist
	}

	query, args := entsql.Dialect(dialect.SQLite).
		Delete(tableSnapshots).
		Where(entsql.LTE("id", threshold)).
		Query()
	if err := r.drv.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("prune snapshots: %w", err)
	}
	return nil
}

// pruneThreshold returns the ID of the newest snapshot that falls outside
// the keep window.
func (r *snapshotRepo) pruneThreshold(ctx context.Context, keep int) (int, bool, error) {
	d := entsql.Dialect(dialect.SQLite)
	query, args := d.Select("id").
		From(d.Table(tableSnapshots)).
		OrderBy(entsql.Desc("id")).
		Limit(1).
		Offset(keep).
		Query()

	var rows entsql.Rows
	if err := r.drv.Query(ctx, query, args, &rows); err != nil {
		return 0, false, fmt.Errorf("query snapshots for prune: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return 0, false, rows.Err()
	}
	var id int
	if err := rows.Scan(&id); err != nil {
		return 0, false, fmt.Errorf("scan snapshot id: %w", err)
	}
	return id, true, nil
}
