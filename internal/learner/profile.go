// Package learner loads and saves the learner's persisted state. A Profile
// owns the progression Tracker and points Ledger and writes one combined
// snapshot whenever either changes.
package learner

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/mod/semver"

	"github.com/abhisek/cybersage/internal/catalog"
	"github.com/abhisek/cybersage/internal/ledger"
	"github.com/abhisek/cybersage/internal/logger"
	"github.com/abhisek/cybersage/internal/progress"
	"github.com/abhisek/cybersage/internal/store"
)

// DefaultKeepSnapshots is how many snapshots survive each save.
const DefaultKeepSnapshots = 5

// ErrIncompatibleSnapshot is returned when the stored snapshot uses a newer
// layout than this build understands.
var ErrIncompatibleSnapshot = errors.New("snapshot written by a newer version")

// Options configures Load.
type Options struct {
	AppVersion     string
	StartingPoints int
	Keep           int

	// Fresh ignores the stored snapshot and starts from the seed state.
	Fresh bool

	Logger *logger.Logger
	Clock  func() time.Time
}

// Profile is the learner's persisted state.
type Profile struct {
	repo       store.SnapshotRepo
	appVersion string
	keep       int
	clock      func() time.Time
	log        *logger.Logger

	tracker *progress.Tracker
	ledger  *ledger.Ledger

	mu   sync.Mutex
	data store.SnapshotData
}

// Load reads the latest snapshot from repo and restores the learner over
// cat. A missing snapshot yields a fresh learner.
func Load(ctx context.Context, repo store.SnapshotRepo, cat *catalog.Catalog, opts Options) (*Profile, error) {
	p := &Profile{
		repo:       repo,
		appVersion: opts.AppVersion,
		keep:       opts.Keep,
		clock:      opts.Clock,
		log:        logger.OrNop(opts.Logger),
	}
	if p.keep <= 0 {
		p.keep = DefaultKeepSnapshots
	}
	if p.clock == nil {
		p.clock = time.Now
	}

	var stored *store.SnapshotData
	if !opts.Fresh {
		snap, err := repo.Latest(ctx)
		if err != nil {
			return nil, fmt.Errorf("load snapshot: %w", err)
		}
		if snap != nil {
			if err := p.checkCompatible(&snap.Data); err != nil {
				return nil, err
			}
			stored = &snap.Data
		}
	}

	var (
		progSnap   *store.ProgressSnapshot
		ledgerSnap *store.LedgerSnapshot
	)
	if stored != nil {
		progSnap = stored.Progress
		ledgerSnap = stored.Ledger
		if stored.Profile != nil {
			p.data.Profile = &store.ProfileSnapshot{Name: stored.Profile.Name, CreatedAt: stored.Profile.CreatedAt}
		}
	}
	if p.data.Profile == nil {
		p.data.Profile = &store.ProfileSnapshot{CreatedAt: p.clock().UTC().Format(time.RFC3339Nano)}
	}

	ledgerOpts := []ledger.Option{ledger.WithPersister(p)}
	if opts.StartingPoints > 0 {
		ledgerOpts = append(ledgerOpts, ledger.WithStartingPoints(opts.StartingPoints))
	}

	p.tracker = progress.NewTracker(cat, progSnap,
		progress.WithPersister(p),
		progress.WithClock(p.clock),
		progress.WithRecipient(recipientFor(p.data.Profile.Name)),
		progress.WithLogger(p.log),
	)
	p.ledger = ledger.New(ledgerSnap, ledgerOpts...)

	p.data.Progress = p.tracker.SnapshotData()
	p.data.Ledger = p.ledger.SnapshotData()
	return p, nil
}

// checkCompatible rejects snapshots from a newer layout and warns about
// ones written by a newer release.
func (p *Profile) checkCompatible(data *store.SnapshotData) error {
	if data.Version > store.SnapshotVersion {
		return fmt.Errorf("%w: layout %d, supported %d", ErrIncompatibleSnapshot, data.Version, store.SnapshotVersion)
	}
	stored, current := canonicalVersion(data.AppVersion), canonicalVersion(p.appVersion)
	if stored != "" && current != "" && semver.Compare(stored, current) > 0 {
		p.log.Warn("snapshot was written by a newer release", "stored", data.AppVersion, "running", p.appVersion)
	}
	return nil
}

// canonicalVersion returns v as a valid semver string with a "v" prefix,
// or "" when v is not a release version (e.g. "(devel)").
func canonicalVersion(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return ""
	}
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return ""
	}
	return semver.Canonical(v)
}

func recipientFor(name string) string {
	if strings.TrimSpace(name) == "" {
		return progress.DefaultRecipient
	}
	return name
}

// Tracker returns the progression tracker.
func (p *Profile) Tracker() *progress.Tracker { return p.tracker }

// Ledger returns the points ledger.
func (p *Profile) Ledger() *ledger.Ledger { return p.ledger }

// Name returns the learner's name, or "" if not set.
func (p *Profile) Name() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.data.Profile.Name
}

// CreatedAt returns when the learner profile was first created.
func (p *Profile) CreatedAt() time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	t, _ := time.Parse(time.RFC3339Nano, p.data.Profile.CreatedAt)
	return t
}

// SetName stores the learner's name. Future certificates carry it.
func (p *Profile) SetName(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)

	p.mu.Lock()
	p.data.Profile.Name = name
	err := p.writeLocked(ctx)
	p.mu.Unlock()

	p.tracker.SetRecipient(recipientFor(name))
	return err
}

// Reset restores progression and points to their initial state. The name
// is kept.
func (p *Profile) Reset(ctx context.Context) error {
	if err := p.tracker.ResetAll(ctx); err != nil {
		return err
	}
	return p.ledger.Reset(ctx)
}

// SaveProgress implements progress.Persister.
func (p *Profile) SaveProgress(ctx context.Context, data *store.ProgressSnapshot) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.data.Progress = data
	return p.writeLocked(ctx)
}

// SaveLedger implements ledger.Persister.
func (p *Profile) SaveLedger(ctx context.Context, data *store.LedgerSnapshot) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.data.Ledger = data
	return p.writeLocked(ctx)
}

// writeLocked must be called with p.mu held.
func (p *Profile) writeLocked(ctx context.Context) error {
	data := p.data
	data.Version = store.SnapshotVersion
	data.AppVersion = p.appVersion

	snap := &store.Snapshot{Timestamp: p.clock(), Data: data}
	if err := p.repo.Save(ctx, snap); err != nil {
		p.log.Error("snapshot save failed", "error", err)
		return fmt.Errorf("save snapshot: %w", err)
	}
	if err := p.repo.Prune(ctx, p.keep); err != nil {
		p.log.Warn("snapshot prune failed", "error", err)
	}
	return nil
}
