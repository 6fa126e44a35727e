package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/abhisek/cybersage/internal/store"
)

const (
	// DefaultStartingPoints is the balance of a new learner.
	DefaultStartingPoints = 10

	// CorrectAnswerPoints is awarded for each correct answer.
	CorrectAnswerPoints = 5

	// DefaultHintCost is the price of one hint.
	DefaultHintCost = 5
)

// ErrInsufficientPoints is returned by Spend when the balance is too low.
var ErrInsufficientPoints = errors.New("insufficient points")

// Persister stores the ledger after every change.
type Persister interface {
	SaveLedger(ctx context.Context, data *store.LedgerSnapshot) error
}

// Stats is a read-only view of the ledger.
type Stats struct {
	Points       int
	TotalCorrect int
	TotalWrong   int
	HintsUsed    int
	Streak       int
	BestStreak   int
}

// Ledger tracks the learner's points balance and lifetime answer counters.
// The balance never goes below zero.
type Ledger struct {
	mu        sync.Mutex
	stats     Stats
	starting  int
	persister Persister
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithPersister saves the ledger through p on every mutation.
func WithPersister(p Persister) Option {
	return func(l *Ledger) { l.persister = p }
}

// WithStartingPoints overrides the balance used for a fresh or reset ledger.
func WithStartingPoints(n int) Option {
	return func(l *Ledger) {
		if n >= 0 {
			l.starting = n
		}
	}
}

// New creates a Ledger from persisted data. A nil snapshot starts a fresh
// ledger at the starting balance.
func New(data *store.LedgerSnapshot, opts ...Option) *Ledger {
	l := &Ledger{starting: DefaultStartingPoints}
	for _, opt := range opts {
		opt(l)
	}
	if data == nil {
		l.stats.Points = l.starting
		return l
	}
	l.stats = Stats{
		Points:       max(data.Points, 0),
		TotalCorrect: data.TotalCorrect,
		TotalWrong:   data.TotalWrong,
		HintsUsed:    data.HintsUsed,
		Streak:       data.Streak,
		BestStreak:   max(data.BestStreak, data.Streak),
	}
	return l
}

// Balance returns the current points balance.
func (l *Ledger) Balance() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.stats.Points
}

// Stats returns a copy of the ledger counters.
func (l *Ledger) Stats() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.stats
}

// AddPoints credits n points for a correct answer and extends the answer
// streak.
func (l *Ledger) AddPoints(ctx context.Context, n int) error {
	if n < 0 {
		return fmt.Errorf("add points: negative amount %d", n)
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	l.stats.Points += n
	l.stats.TotalCorrect++
	l.stats.Streak++
	if l.stats.Streak > l.stats.BestStreak {
		l.stats.BestStreak = l.stats.Streak
	}
	return l.persist(ctx)
}

// DeductPoint removes one point for a wrong answer, flooring at zero, and
// breaks the answer streak.
func (l *Ledger) DeductPoint(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.stats.Points = max(l.stats.Points-1, 0)
	l.stats.TotalWrong++
	l.stats.Streak = 0
	return l.persist(ctx)
}

// CanAfford reports whether the balance covers n points.
func (l *Ledger) CanAfford(n int) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.stats.Points >= n
}

// Spend charges n points for a hint.
func (l *Ledger) Spend(ctx context.Context, n int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.stats.Points < n {
		return fmt.Errorf("spend %d with balance %d: %w", n, l.stats.Points, ErrInsufficientPoints)
	}
	l.stats.Points -= n
	l.stats.HintsUsed++
	return l.persist(ctx)
}

// TrySpend charges n points if the balance allows and reports whether it did.
// The check and the charge happen under one lock.
func (l *Ledger) TrySpend(ctx context.Context, n int) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.stats.Points < n {
		return false, nil
	}
	l.stats.Points -= n
	l.stats.HintsUsed++
	return true, l.persist(ctx)
}

// Refund returns n points from a hint charge that was never delivered and
// takes back the hint from the lifetime count.
func (l *Ledger) Refund(ctx context.Context, n int) error {
	if n < 0 {
		return fmt.Errorf("refund: negative amount %d", n)
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	l.stats.Points += n
	l.stats.HintsUsed = max(l.stats.HintsUsed-1, 0)
	return l.persist(ctx)
}

// Reset restores the starting balance and clears every counter.
func (l *Ledger) Reset(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.stats = Stats{Points: l.starting}
	return l.persist(ctx)
}

// SnapshotData exports the ledger for persistence.
func (l *Ledger) SnapshotData() *store.LedgerSnapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snapshotLocked()
}

func (l *Ledger) snapshotLocked() *store.LedgerSnapshot {
	return &store.LedgerSnapshot{
		Points:       l.stats.Points,
		TotalCorrect: l.stats.TotalCorrect,
		TotalWrong:   l.stats.TotalWrong,
		HintsUsed:    l.stats.HintsUsed,
		Streak:       l.stats.Streak,
		BestStreak:   l.stats.BestStreak,
	}
}

// persist must be called with l.mu held.
func (l *Ledger) persist(ctx context.Context) error {
	if l.persister == nil {
		return nil
	}
	if err := l.persister.SaveLedger(ctx, l.snapshotLocked()); err != nil {
		return fmt.Errorf("persist ledger: %w", err)
	}
	return nil
}
