// Package progress tracks per-learner module progression: attempt records
// per difficulty tier, the completed and unlocked module sets, best scores
// and certificates.
package progress

import (
	"context"
	"fmt"
	"maps"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/cybersage/internal/catalog"
	"github.com/abhisek/cybersage/internal/logger"
	"github.com/abhisek/cybersage/internal/store"
)

// Persister stores the progression state after every mutation. It is
// called with the tracker lock held and must not call back into the
// tracker.
type Persister interface {
	SaveProgress(ctx context.Context, data *store.ProgressSnapshot) error
}

// Tracker owns the progression state. All mutations are serialized and
// each one is persisted before the next is accepted.
type Tracker struct {
	mu      sync.Mutex
	catalog *catalog.Catalog
	modules map[string]*moduleState

	// completed holds passed modules. unlocked holds modules whose unlock
	// has been announced; the derived lock state comes from completed.
	completed map[string]bool
	unlocked  map[string]bool

	persister Persister
	clock     func() time.Time
	recipient string
	log       *logger.Logger
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithPersister saves the state through p on every mutation.
func WithPersister(p Persister) Option {
	return func(t *Tracker) { t.persister = p }
}

// WithClock overrides time.Now for score dates and certificates.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.clock = now }
}

// WithRecipient sets the name printed on certificates.
func WithRecipient(name string) Option {
	return func(t *Tracker) { t.recipient = name }
}

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) Option {
	return func(t *Tracker) { t.log = l }
}

// NewTracker creates a Tracker over cat, restoring snap when non-nil.
// Entries for modules the catalog does not know are dropped.
func NewTracker(cat *catalog.Catalog, snap *store.ProgressSnapshot, opts ...Option) *Tracker {
	t := &Tracker{
		catalog:   cat,
		modules:   make(map[string]*moduleState),
		completed: make(map[string]bool),
		unlocked:  make(map[string]bool),
		clock:     time.Now,
		recipient: DefaultRecipient,
	}
	for _, opt := range opts {
		opt(t)
	}
	t.log = logger.OrNop(t.log)

	t.resetLocked()
	if snap != nil {
		t.load(snap)
	}
	return t
}

// SetRecipient changes the name used for future certificates.
func (t *Tracker) SetRecipient(name string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if strings.TrimSpace(name) == "" {
		name = DefaultRecipient
	}
	t.recipient = name
}

// Catalog returns the module catalog the tracker was built over.
func (t *Tracker) Catalog() *catalog.Catalog {
	return t.catalog
}

func (t *Tracker) check(id string) error {
	if !t.catalog.Has(id) {
		return &catalog.NotFoundError{ID: id}
	}
	return nil
}

// IsUnlocked reports whether every dependency of id is completed. Seed
// modules are always unlocked.
func (t *Tracker) IsUnlocked(id string) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.catalog.Satisfied(id, t.completed)
}

// IsCompleted reports whether id has been passed.
func (t *Tracker) IsCompleted(id string) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.check(id); err != nil {
		return false, err
	}
	return t.completed[id], nil
}

// Status returns the derived progression view of id.
func (t *Tracker) Status(id string) (Status, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.statusLocked(id)
}

func (t *Tracker) statusLocked(id string) (Status, error) {
	m, err := t.catalog.Get(id)
	if err != nil {
		return Status{}, err
	}
	satisfied, err := t.catalog.Satisfied(id, t.completed)
	if err != nil {
		return Status{}, err
	}

	ms := t.modules[id]
	st := Status{
		ModuleID:         id,
		Unlocked:         satisfied,
		Completed:        t.completed[id],
		CanUnlock:        satisfied && !t.unlocked[id],
		ActiveDifficulty: ms.active,
		PassThreshold:    m.PassThreshold,
		BestScore:        ms.bestScore,
		HasBest:          ms.hasBest,
	}
	if ms.lastScore != nil {
		ls := *ms.lastScore
		st.LastScore = &ls
	}
	if ms.certificate != nil {
		c := *ms.certificate
		st.Certificate = &c
	}
	return st, nil
}

// Statuses returns the status of every module in catalog order.
func (t *Tracker) Statuses() []Status {
	t.mu.Lock()
	defer t.mu.Unlock()

	all := t.catalog.All()
	out := make([]Status, 0, len(all))
	for _, m := range all {
		if st, err := t.statusLocked(m.ID); err == nil {
			out = append(out, st)
		}
	}
	return out
}

// ActiveDifficulty returns the tier the learner currently trains id at.
func (t *Tracker) ActiveDifficulty(id string) (catalog.Difficulty, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.check(id); err != nil {
		return "", err
	}
	return t.modules[id].active, nil
}

// Record returns a copy of the attempt record for id at d.
func (t *Tracker) Record(id string, d catalog.Difficulty) (Record, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.check(id); err != nil {
		return Record{}, err
	}
	if r, ok := t.modules[id].records[d]; ok {
		return *r, nil
	}
	return Record{}, nil
}

// Records returns copies of every tier record for id.
func (t *Tracker) Records(id string) (map[catalog.Difficulty]Record, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.check(id); err != nil {
		return nil, err
	}
	out := make(map[catalog.Difficulty]Record, len(catalog.AllDifficulties()))
	for _, d := range catalog.AllDifficulties() {
		if r, ok := t.modules[id].records[d]; ok {
			out[d] = *r
		} else {
			out[d] = Record{}
		}
	}
	return out, nil
}

// CompletedCount returns the number of passed modules.
func (t *Tracker) CompletedCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.completed)
}

// Completed returns the passed module IDs in topological order.
func (t *Tracker) Completed() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.orderedLocked(t.completed)
}

// Certificates returns every issued certificate in topological order.
func (t *Tracker) Certificates() []Certificate {
	t.mu.Lock()
	defer t.mu.Unlock()

	var out []Certificate
	for _, m := range t.catalog.TopologicalOrder() {
		if c := t.modules[m.ID].certificate; c != nil {
			out = append(out, *c)
		}
	}
	return out
}

// ReadyToUnlock returns modules whose dependencies are satisfied but whose
// unlock has not been acknowledged.
func (t *Tracker) ReadyToUnlock() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.readyLocked()
}

func (t *Tracker) readyLocked() []string {
	var out []string
	for _, m := range t.catalog.TopologicalOrder() {
		if t.unlocked[m.ID] {
			continue
		}
		if ok, _ := t.catalog.Satisfied(m.ID, t.completed); ok {
			out = append(out, m.ID)
		}
	}
	return out
}

// RecordAttempt counts one finished session at id and d. completed means at
// least one correct answer; perfect means no wrong or timed-out answers.
func (t *Tracker) RecordAttempt(ctx context.Context, id string, d catalog.Difficulty, completed, perfect bool) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.check(id); err != nil {
		return err
	}
	if !d.Valid() {
		return fmt.Errorf("record attempt: unknown difficulty %q", d)
	}

	r := t.modules[id].record(d)
	r.Attempts++
	if completed {
		r.Completions++
	}
	if perfect {
		r.PerfectRuns++
		r.CurrentStreak++
	} else {
		r.CurrentStreak = 0
	}
	r.BestStreak = max(r.BestStreak, r.CurrentStreak)

	return t.persist(ctx)
}

// AdvanceDifficultyIfEligible moves the active tier of id past d when the
// latest attempt at d was perfect. It returns the active tier and whether
// it changed. The hardest tier is terminal.
func (t *Tracker) AdvanceDifficultyIfEligible(ctx context.Context, id string, d catalog.Difficulty) (catalog.Difficulty, bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.check(id); err != nil {
		return "", false, err
	}
	ms := t.modules[id]

	r, ok := ms.records[d]
	if !ok || r.CurrentStreak == 0 {
		return ms.active, false, nil
	}
	next, ok := d.Next()
	if !ok || !isHarder(next, ms.active) {
		return ms.active, false, nil
	}

	ms.active = next
	t.log.Info("difficulty advanced", "module", id, "from", d, "to", next)
	return next, true, t.persist(ctx)
}

func isHarder(a, b catalog.Difficulty) bool {
	rank := func(d catalog.Difficulty) int {
		for i, x := range catalog.AllDifficulties() {
			if x == d {
				return i
			}
		}
		return -1
	}
	return rank(a) > rank(b)
}

// MarkModuleCompleted records a finished module attempt with score
// (0-100). A passing score completes the module, issues a certificate and
// unlocks dependents. It returns the newly unlocked module IDs.
func (t *Tracker) MarkModuleCompleted(ctx context.Context, id string, score int) ([]string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	m, err := t.catalog.Get(id)
	if err != nil {
		return nil, err
	}
	if score < 0 || score > 100 {
		return nil, fmt.Errorf("mark %s completed: score %d out of range", id, score)
	}

	now := t.clock()
	ms := t.modules[id]
	passed := score >= m.PassThreshold

	ms.lastScore = &ScoreRecord{Score: score, Passed: passed, Date: now}
	if !ms.hasBest || score > ms.bestScore {
		ms.bestScore = score
		ms.hasBest = true
	}
	if !passed {
		return nil, t.persist(ctx)
	}

	t.completed[id] = true
	if ms.certificate == nil || score >= ms.certificate.Score {
		ms.certificate = &Certificate{
			ID:           uuid.NewString(),
			ModuleID:     id,
			ModuleName:   m.Name,
			Score:        score,
			IssuedAt:     now,
			Recipient:    t.recipient,
			CredentialID: fmt.Sprintf("CS-%s-%d", strings.ToUpper(id), now.UnixMilli()),
		}
	}

	newly := t.readyLocked()
	for _, nid := range newly {
		t.unlocked[nid] = true
	}
	t.log.Info("module completed", "module", id, "score", score, "unlocked", newly)

	return newly, t.persist(ctx)
}

// AcknowledgeUnlocks flags every ready-to-unlock module as unlocked and
// returns them.
func (t *Tracker) AcknowledgeUnlocks(ctx context.Context) ([]string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	ready := t.readyLocked()
	if len(ready) == 0 {
		return nil, nil
	}
	for _, id := range ready {
		t.unlocked[id] = true
	}
	return ready, t.persist(ctx)
}

// ResetAll restores the seed state: only seed modules unlocked and every
// record zeroed.
func (t *Tracker) ResetAll(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.resetLocked()
	t.log.Info("progression reset")
	return t.persist(ctx)
}

func (t *Tracker) resetLocked() {
	t.modules = make(map[string]*moduleState, t.catalog.Len())
	for _, m := range t.catalog.All() {
		t.modules[m.ID] = newModuleState()
	}
	t.completed = make(map[string]bool)
	t.unlocked = make(map[string]bool)
	for _, m := range t.catalog.Roots() {
		t.unlocked[m.ID] = true
	}
}

// Unlocked returns the acknowledged-unlocked module IDs in topological
// order.
func (t *Tracker) Unlocked() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.orderedLocked(t.unlocked)
}

func (t *Tracker) orderedLocked(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for _, m := range t.catalog.TopologicalOrder() {
		if set[m.ID] {
			out = append(out, m.ID)
		}
	}
	return out
}

// CompletedSet returns a copy of the completed set.
func (t *Tracker) CompletedSet() map[string]bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return maps.Clone(t.completed)
}

// persist must be called with t.mu held.
func (t *Tracker) persist(ctx context.Context) error {
	if t.persister == nil {
		return nil
	}
	if err := t.persister.SaveProgress(ctx, t.snapshotLocked()); err != nil {
		return fmt.Errorf("persist progress: %w", err)
	}
	return nil
}
