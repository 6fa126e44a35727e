package progress

import (
	"time"

	"github.com/abhisek/cybersage/internal/catalog"
	"github.com/abhisek/cybersage/internal/store"
)

// SnapshotData exports the progression state for persistence.
func (t *Tracker) SnapshotData() *store.ProgressSnapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshotLocked()
}

func (t *Tracker) snapshotLocked() *store.ProgressSnapshot {
	snap := &store.ProgressSnapshot{
		Modules:   make(map[string]*store.ModuleSnapshot, len(t.modules)),
		Unlocked:  t.orderedLocked(t.unlocked),
		Completed: t.orderedLocked(t.completed),
	}

	for id, ms := range t.modules {
		out := &store.ModuleSnapshot{
			ActiveDifficulty: string(ms.active),
			Records:          make(map[string]*store.RecordSnapshot, len(ms.records)),
		}
		for d, r := range ms.records {
			out.Records[string(d)] = &store.RecordSnapshot{
				Attempts:      r.Attempts,
				Completions:   r.Completions,
				PerfectRuns:   r.PerfectRuns,
				CurrentStreak: r.CurrentStreak,
				BestStreak:    r.BestStreak,
			}
		}
		if ms.hasBest {
			best := ms.bestScore
			out.BestScore = &best
		}
		if ls := ms.lastScore; ls != nil {
			out.LastScore = &store.ScoreSnapshot{
				Score:  ls.Score,
				Passed: ls.Passed,
				Date:   ls.Date.UTC().Format(time.RFC3339Nano),
			}
		}
		if c := ms.certificate; c != nil {
			out.Certificate = &store.CertificateSnapshot{
				ID:           c.ID,
				ModuleName:   c.ModuleName,
				Score:        c.Score,
				IssuedAt:     c.IssuedAt.UTC().Format(time.RFC3339Nano),
				Recipient:    c.Recipient,
				CredentialID: c.CredentialID,
			}
		}
		snap.Modules[id] = out
	}
	return snap
}

// load restores snap over the seed state. Unknown modules, invalid tiers
// and completions without a qualifying best score are dropped.
func (t *Tracker) load(snap *store.ProgressSnapshot) {
	for id, in := range snap.Modules {
		m, err := t.catalog.Get(id)
		if err != nil || in == nil {
			t.log.Warn("dropping progress for unknown module", "module", id)
			continue
		}
		ms := t.modules[id]

		if d := catalog.Difficulty(in.ActiveDifficulty); d.Valid() {
			ms.active = d
		}
		for ds, r := range in.Records {
			d := catalog.Difficulty(ds)
			if !d.Valid() || r == nil {
				continue
			}
			ms.records[d] = &Record{
				Attempts:      r.Attempts,
				Completions:   r.Completions,
				PerfectRuns:   r.PerfectRuns,
				CurrentStreak: r.CurrentStreak,
				BestStreak:    max(r.BestStreak, r.CurrentStreak),
			}
		}
		if in.BestScore != nil {
			ms.bestScore = *in.BestScore
			ms.hasBest = true
		}
		if ls := in.LastScore; ls != nil {
			ms.lastScore = &ScoreRecord{Score: ls.Score, Passed: ls.Passed, Date: parseTime(ls.Date)}
		}
		if c := in.Certificate; c != nil {
			ms.certificate = &Certificate{
				ID:           c.ID,
				ModuleID:     id,
				ModuleName:   m.Name,
				Score:        c.Score,
				IssuedAt:     parseTime(c.IssuedAt),
				Recipient:    c.Recipient,
				CredentialID: c.CredentialID,
			}
		}
	}

	for _, id := range snap.Completed {
		m, err := t.catalog.Get(id)
		if err != nil {
			continue
		}
		if ms := t.modules[id]; !ms.hasBest || ms.bestScore < m.PassThreshold {
			t.log.Warn("dropping completion without a passing score", "module", id)
			continue
		}
		t.completed[id] = true
	}

	for _, id := range snap.Unlocked {
		if ok, err := t.catalog.Satisfied(id, t.completed); err == nil && ok {
			t.unlocked[id] = true
		}
	}
}

func parseTime(s string) time.Time {
	ts, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return ts
}
