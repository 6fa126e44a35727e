package store

import (
	"context"
	"encoding/json"
	"time"
)

// SnapshotVersion is the current layout of SnapshotData.
const SnapshotVersion = 1

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit     int       // max results (0 = unlimited)
	After     int64     // sequence > After
	Before    int64     // sequence < Before
	From      time.Time // timestamp >= From
	To        time.Time // timestamp <= To
	ModuleID  string    // exact match when set
	SessionID string    // exact match when set
}

// SnapshotData captures the full learner state at a point in time.
type SnapshotData struct {
	Version    int               `json:"version"`
	AppVersion string            `json:"app_version,omitempty"`
	Profile    *ProfileSnapshot  `json:"profile,omitempty"`
	Progress   *ProgressSnapshot `json:"progress,omitempty"`
	Ledger     *LedgerSnapshot   `json:"ledger,omitempty"`
}

// ProfileSnapshot holds learner identity.
type ProfileSnapshot struct {
	Name      string `json:"name"`
	CreatedAt string `json:"created_at,omitempty"` // RFC3339Nano
}

// ProgressSnapshot is the persisted progression state.
type ProgressSnapshot struct {
	Modules   map[string]*ModuleSnapshot `json:"modules"`
	Unlocked  []string                   `json:"unlocked"`
	Completed []string                   `json:"completed"`
}

// ModuleSnapshot is the persisted progression of one module.
type ModuleSnapshot struct {
	ActiveDifficulty string                     `json:"active_difficulty"`
	Records          map[string]*RecordSnapshot `json:"records"`
	BestScore        *int                       `json:"best_score,omitempty"`
	LastScore        *ScoreSnapshot             `json:"last_score,omitempty"`
	Certificate      *CertificateSnapshot       `json:"certificate,omitempty"`
}

// RecordSnapshot is the persisted attempt record for one difficulty tier.
type RecordSnapshot struct {
	Attempts      int `json:"attempts"`
	Completions   int `json:"completions"`
	PerfectRuns   int `json:"perfect_runs"`
	CurrentStreak int `json:"current_streak"`
	BestStreak    int `json:"best_streak"`
}

// ScoreSnapshot is the persisted latest completion of a module.
type ScoreSnapshot struct {
	Score  int    `json:"score"`
	Passed bool   `json:"passed"`
	Date   string `json:"date"` // RFC3339Nano
}

// CertificateSnapshot is a persisted completion certificate.
type CertificateSnapshot struct {
	ID           string `json:"id"`
	ModuleName   string `json:"module_name"`
	Score        int    `json:"score"`
	IssuedAt     string `json:"issued_at"` // RFC3339Nano
	Recipient    string `json:"recipient"`
	CredentialID string `json:"credential_id"`
}

// LedgerSnapshot is the persisted points ledger.
type LedgerSnapshot struct {
	Points       int `json:"points"`
	TotalCorrect int `json:"total_correct"`
	TotalWrong   int `json:"total_wrong"`
	HintsUsed    int `json:"hints_used"`
	Streak       int `json:"streak"`
	BestStreak   int `json:"best_streak"`
}

// Snapshot represents a point-in-time capture of learner state.
type Snapshot struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	Data      SnapshotData
}

// SnapshotRepo manages learner state snapshots.
type SnapshotRepo interface {
	// Save stores a new snapshot. A zero Sequence is assigned from the
	// global sequence.
	Save(ctx context.Context, snap *Snapshot) error

	// Latest returns the most recent snapshot, or nil if none exist.
	Latest(ctx context.Context) (*Snapshot, error)

	// Prune deletes all but the N most recent snapshots.
	Prune(ctx context.Context, keep int) error
}

// EventKind names an event type in the events table.
type EventKind string

const (
	KindSession    EventKind = "session"
	KindAnswer     EventKind = "answer"
	KindHint       EventKind = "hint"
	KindModule     EventKind = "module"
	KindLLMRequest EventKind = "llm_request"
)

// SessionEventData records a session starting or ending.
type SessionEventData struct {
	SessionID    string `json:"session_id"`
	ModuleID     string `json:"module_id,omitempty"`
	Difficulty   string `json:"difficulty"`
	Action       string `json:"action"` // "start" or "end"
	Questions    int    `json:"questions"`
	Correct      int    `json:"correct"`
	Wrong        int    `json:"wrong"`
	TimedOut     int    `json:"timed_out"`
	Score        int    `json:"score"`
	Accuracy     int    `json:"accuracy"`
	Perfect      bool   `json:"perfect"`
	DurationSecs int    `json:"duration_secs"`
}

// AnswerEventData records one logged answer, including timeouts.
type AnswerEventData struct {
	SessionID  string `json:"session_id"`
	ModuleID   string `json:"module_id,omitempty"`
	Difficulty string `json:"difficulty"`
	QuestionID string `json:"question_id"`
	Prompt     string `json:"prompt"`
	Selected   string `json:"selected,omitempty"`
	Correct    bool   `json:"correct"`
	TimedOut   bool   `json:"timed_out"`
	HintUsed   bool   `json:"hint_used"`
	TimeMs     int64  `json:"time_ms"`
}

// HintEventData records a purchased hint.
type HintEventData struct {
	SessionID  string `json:"session_id"`
	ModuleID   string `json:"module_id,omitempty"`
	QuestionID string `json:"question_id"`
	Cost       int    `json:"cost"`
	Fallback   bool   `json:"fallback"`
}

// ModuleEventData records a progression change for a module.
type ModuleEventData struct {
	ModuleID   string `json:"module_id"`
	Action     string `json:"action"` // "completed", "unlocked", "advanced"
	Difficulty string `json:"difficulty,omitempty"`
	Score      int    `json:"score,omitempty"`
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string `json:"provider"`
	Model        string `json:"model"`
	Purpose      string `json:"purpose"`
	InputTokens  int    `json:"input_tokens"`
	OutputTokens int    `json:"output_tokens"`
	LatencyMs    int64  `json:"latency_ms"`
	Success      bool   `json:"success"`
	ErrorMessage string `json:"error_message,omitempty"`
}

// EventRecord is a stored event with its raw payload.
type EventRecord struct {
	ID        int
	Sequence  int64
	Kind      EventKind
	SessionID string
	ModuleID  string
	Timestamp time.Time
	Payload   json.RawMessage
}

// Decode unmarshals the payload into v.
func (e EventRecord) Decode(v any) error {
	return json.Unmarshal(e.Payload, v)
}

// SessionEventRecord is a decoded session event.
type SessionEventRecord struct {
	Sequence  int64
	Timestamp time.Time
	SessionEventData
}

// LLMEventRecord is a decoded LLM request event.
type LLMEventRecord struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	LLMRequestEventData
}

// EventRepo provides append and query access to domain events.
type EventRepo interface {
	AppendSessionEvent(ctx context.Context, data SessionEventData) error
	AppendAnswerEvent(ctx context.Context, data AnswerEventData) error
	AppendHintEvent(ctx context.Context, data HintEventData) error
	AppendModuleEvent(ctx context.Context, data ModuleEventData) error

	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// Query returns events of one kind, newest first.
	Query(ctx context.Context, kind EventKind, opts QueryOpts) ([]EventRecord, error)

	QuerySessionEvents(ctx context.Context, opts QueryOpts) ([]SessionEventRecord, error)
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMEventRecord, error)

	// CountByKind returns the number of stored events per kind.
	CountByKind(ctx context.Context) (map[EventKind]int, error)
}
