package progress

import (
	"time"

	"github.com/abhisek/cybersage/internal/catalog"
)

// DefaultRecipient names the certificate holder when no learner name is set.
const DefaultRecipient = "CyberSage Trainee"

// Record counts attempts at one module and difficulty tier.
type Record struct {
	Attempts    int
	Completions int
	PerfectRuns int

	// CurrentStreak counts consecutive perfect runs. BestStreak never
	// decreases.
	CurrentStreak int
	BestStreak    int
}

// ScoreRecord is the latest completion of a module.
type ScoreRecord struct {
	Score  int
	Passed bool
	Date   time.Time
}

// Certificate is issued when a module is passed.
type Certificate struct {
	ID           string    `json:"id"`
	ModuleID     string    `json:"module_id"`
	ModuleName   string    `json:"module_name"`
	Score        int       `json:"score"`
	IssuedAt     time.Time `json:"issued_at"`
	Recipient    string    `json:"recipient"`
	CredentialID string    `json:"credential_id"`
}

// Status is the derived progression view of one module.
type Status struct {
	ModuleID string

	// Unlocked is true when every dependency is completed.
	Unlocked  bool
	Completed bool

	// CanUnlock is true when the dependencies are satisfied but the unlock
	// has not been announced yet.
	CanUnlock bool

	ActiveDifficulty catalog.Difficulty
	PassThreshold    int

	BestScore   int
	HasBest     bool
	LastScore   *ScoreRecord
	Certificate *Certificate
}

type moduleState struct {
	active      catalog.Difficulty
	records     map[catalog.Difficulty]*Record
	bestScore   int
	hasBest     bool
	lastScore   *ScoreRecord
	certificate *Certificate
}

func newModuleState() *moduleState {
	return &moduleState{active: catalog.Easy, records: make(map[catalog.Difficulty]*Record)}
}

func (m *moduleState) record(d catalog.Difficulty) *Record {
	r, ok := m.records[d]
	if !ok {
		r = &Record{}
		m.records[d] = r
	}
	return r
}
