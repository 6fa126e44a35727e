package ledger

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/abhisek/cybersage/internal/store"
)

type recordingPersister struct {
	saved []*store.LedgerSnapshot
	err   error
}

func (p *recordingPersister) SaveLedger(_ context.Context, data *store.LedgerSnapshot) error {
	p.saved = append(p.saved, data)
	return p.err
}

func mustOK(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNew_Fresh(t *testing.T) {
	if got := New(nil).Balance(); got != DefaultStartingPoints {
		t.Errorf("Balance = %d, want %d", got, DefaultStartingPoints)
	}
	if got := New(nil, WithStartingPoints(50)).Balance(); got != 50 {
		t.Errorf("Balance = %d, want 50", got)
	}
}

func TestNew_FromSnapshot(t *testing.T) {
	l := New(&store.LedgerSnapshot{Points: 42, TotalCorrect: 9, TotalWrong: 2, HintsUsed: 1, Streak: 3, BestStreak: 5})
	want := Stats{Points: 42, TotalCorrect: 9, TotalWrong: 2, HintsUsed: 1, Streak: 3, BestStreak: 5}
	if got := l.Stats(); got != want {
		t.Errorf("Stats = %+v, want %+v", got, want)
	}
}

func TestAddPointsAndDeduct(t *testing.T) {
	ctx := context.Background()
	l := New(nil)

	mustOK(t, l.AddPoints(ctx, CorrectAnswerPoints))
	mustOK(t, l.AddPoints(ctx, CorrectAnswerPoints))
	if l.Balance() != 20 || l.Stats().Streak != 2 {
		t.Errorf("after two correct: %+v", l.Stats())
	}

	mustOK(t, l.DeductPoint(ctx))
	want := Stats{Points: 19, TotalCorrect: 2, TotalWrong: 1, Streak: 0, BestStreak: 2}
	if got := l.Stats(); got != want {
		t.Errorf("Stats = %+v, want %+v", got, want)
	}
}

func TestDeductPoint_FloorsAtZero(t *testing.T) {
	ctx := context.Background()
	l := New(nil, WithStartingPoints(1))

	mustOK(t, l.DeductPoint(ctx))
	mustOK(t, l.DeductPoint(ctx))
	if l.Balance() != 0 {
		t.Errorf("Balance = %d, want 0", l.Balance())
	}
	if l.Stats().TotalWrong != 2 {
		t.Errorf("TotalWrong = %d, want 2", l.Stats().TotalWrong)
	}
}

func TestAddPoints_RejectsNegative(t *testing.T) {
	if err := New(nil).AddPoints(context.Background(), -3); err == nil {
		t.Error("expected an error for a negative award")
	}
}

func TestSpend(t *testing.T) {
	ctx := context.Background()
	l := New(nil)

	if !l.CanAfford(DefaultHintCost) {
		t.Fatal("a fresh ledger should afford a hint")
	}
	mustOK(t, l.Spend(ctx, DefaultHintCost))
	mustOK(t, l.Spend(ctx, DefaultHintCost))
	if l.Balance() != 0 || l.Stats().HintsUsed != 2 {
		t.Errorf("after two hints: %+v", l.Stats())
	}

	if l.CanAfford(DefaultHintCost) {
		t.Error("an empty ledger should not afford a hint")
	}
	if err := l.Spend(ctx, DefaultHintCost); !errors.Is(err, ErrInsufficientPoints) {
		t.Errorf("Spend error = %v, want ErrInsufficientPoints", err)
	}
	if l.Stats().HintsUsed != 2 {
		t.Errorf("HintsUsed = %d after a refused spend, want 2", l.Stats().HintsUsed)
	}
}

func TestTrySpend(t *testing.T) {
	ctx := context.Background()
	l := New(nil, WithStartingPoints(7))

	ok, err := l.TrySpend(ctx, 5)
	mustOK(t, err)
	if !ok {
		t.Fatal("first spend should be granted")
	}

	ok, err = l.TrySpend(ctx, 5)
	mustOK(t, err)
	if ok {
		t.Error("second spend should be refused")
	}
	if l.Balance() != 2 {
		t.Errorf("Balance = %d, want 2", l.Balance())
	}
}

func TestRefund(t *testing.T) {
	ctx := context.Background()
	l := New(nil, WithStartingPoints(7))

	ok, err := l.TrySpend(ctx, 5)
	mustOK(t, err)
	if !ok {
		t.Fatal("spend should be granted")
	}
	mustOK(t, l.Refund(ctx, 5))

	if got, want := l.Stats(), (Stats{Points: 7}); got != want {
		t.Errorf("Stats = %+v, want %+v", got, want)
	}
	if err := l.Refund(ctx, -1); err == nil {
		t.Error("expected an error for a negative refund")
	}
}

func TestTrySpend_Concurrent(t *testing.T) {
	ctx := context.Background()
	l := New(nil, WithStartingPoints(25))

	var wg sync.WaitGroup
	var mu sync.Mutex
	granted := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := l.TrySpend(ctx, 5); ok {
				mu.Lock()
				granted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if granted != 5 {
		t.Errorf("granted = %d, want 5", granted)
	}
	if l.Balance() != 0 {
		t.Errorf("Balance = %d, want 0", l.Balance())
	}
}

func TestPersistOnEveryMutation(t *testing.T) {
	ctx := context.Background()
	p := &recordingPersister{}
	l := New(nil, WithPersister(p))

	mustOK(t, l.AddPoints(ctx, 5))
	mustOK(t, l.DeductPoint(ctx))
	mustOK(t, l.Spend(ctx, 5))
	mustOK(t, l.Reset(ctx))

	if len(p.saved) != 4 {
		t.Fatalf("saved %d snapshots, want 4", len(p.saved))
	}
	for i, want := range []int{15, 14, 9, DefaultStartingPoints} {
		if p.saved[i].Points != want {
			t.Errorf("snapshot %d points = %d, want %d", i, p.saved[i].Points, want)
		}
	}
	if p.saved[3].TotalCorrect != 0 {
		t.Errorf("reset snapshot TotalCorrect = %d, want 0", p.saved[3].TotalCorrect)
	}
}

func TestPersistError(t *testing.T) {
	p := &recordingPersister{err: errors.New("disk full")}
	l := New(nil, WithPersister(p))

	err := l.AddPoints(context.Background(), 5)
	if err == nil || !strings.Contains(err.Error(), "disk full") {
		t.Errorf("AddPoints error = %v, want disk full", err)
	}
}
