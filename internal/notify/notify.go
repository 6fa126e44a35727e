// Package notify carries learner-facing notifications and the discrete
// progress events a presentation layer can react to.
package notify

import (
	"fmt"
	"sync"

	"github.com/abhisek/cybersage/internal/logger"
)

// Severity grades a notification.
type Severity string

const (
	Info    Severity = "info"
	Success Severity = "success"
	Warning Severity = "warning"
	Error   Severity = "error"
)

// Sink displays a notification to the learner.
type Sink interface {
	Notify(message string, severity Severity)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(message string, severity Severity)

func (f SinkFunc) Notify(message string, severity Severity) { f(message, severity) }

// EventKind identifies a progress event.
type EventKind string

const (
	CorrectAnswer   EventKind = "correct"
	WrongAnswer     EventKind = "wrong"
	Timeout         EventKind = "timeout"
	HintUsed        EventKind = "hint-used"
	LevelUp         EventKind = "level-up"
	ModuleUnlocked  EventKind = "module-unlocked"
	ModuleCompleted EventKind = "module-completed"
	PerfectScore    EventKind = "perfect-score"
	FallbackContent EventKind = "fallback-content"
)

// Event is a single progress event. Fields not relevant to Kind are zero.
type Event struct {
	Kind       EventKind
	ModuleID   string
	Difficulty string
	Points     int
	Score      int
	Message    string
	Severity   Severity
}

// Learner-facing messages.
const (
	MsgCorrect     = "+5 points! Correct answer!"
	MsgWrong       = "-1 point. Incorrect answer!"
	MsgTimeout     = "You ran out of time! Question skipped - no points deducted."
	MsgHintUsed    = "Hint used! -5 points"
	MsgNoHintFunds = "Not enough points for a hint."
	MsgHintRefund  = "Hint arrived too late. Points refunded."
	MsgFallback    = "Question service unavailable. Using offline questions."
)

// LevelUpMessage announces a difficulty advance.
func LevelUpMessage(moduleName, difficulty string) string {
	return fmt.Sprintf("Level up! %s is now %s.", moduleName, difficulty)
}

// UnlockedMessage announces a newly unlocked module.
func UnlockedMessage(moduleName string) string {
	return fmt.Sprintf("New module unlocked: %s", moduleName)
}

// CompletedMessage announces a passed module.
func CompletedMessage(moduleName string, score int) string {
	return fmt.Sprintf("Module completed: %s (%d%%). Certificate earned!", moduleName, score)
}

// Bus forwards events to a Sink and to subscribers. A panicking
// subscriber is logged and skipped.
type Bus struct {
	sink Sink
	log  *logger.Logger

	mu     sync.Mutex
	nextID int
	subs   map[int]func(Event)
}

// NewBus creates a Bus. sink may be nil.
func NewBus(sink Sink, log *logger.Logger) *Bus {
	return &Bus{sink: sink, log: logger.OrNop(log), subs: make(map[int]func(Event))}
}

// Subscribe registers fn for every emitted event and returns a function
// that removes it.
func (b *Bus) Subscribe(fn func(Event)) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextID
	b.nextID++
	b.subs[id] = fn
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs, id)
	}
}

// Emit delivers ev. Events with a Message are also shown through the sink.
func (b *Bus) Emit(ev Event) {
	if ev.Message != "" && b.sink != nil {
		sev := ev.Severity
		if sev == "" {
			sev = Info
		}
		b.sink.Notify(ev.Message, sev)
	}

	b.mu.Lock()
	fns := make([]func(Event), 0, len(b.subs))
	for i := 0; i < b.nextID; i++ {
		if fn, ok := b.subs[i]; ok {
			fns = append(fns, fn)
		}
	}
	b.mu.Unlock()

	for _, fn := range fns {
		b.deliver(fn, ev)
	}
}

func (b *Bus) deliver(fn func(Event), ev Event) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error("event subscriber panicked", "kind", ev.Kind, "panic", r)
		}
	}()
	fn(ev)
}

// Notify shows a plain notification with no event attached.
func (b *Bus) Notify(message string, severity Severity) {
	if b.sink != nil {
		b.sink.Notify(message, severity)
	}
}

// LogSink writes notifications to the logger. Used by non-interactive
// commands.
type LogSink struct {
	Log *logger.Logger
}

func (s LogSink) Notify(message string, severity Severity) {
	l := logger.OrNop(s.Log)
	switch severity {
	case Error:
		l.Error(message)
	case Warning:
		l.Warn(message)
	default:
		l.Info(message, "severity", string(severity))
	}
}

// Recorder is a Sink that keeps every notification. Safe for concurrent use.
type Recorder struct {
	mu      sync.Mutex
	entries []Notification
}

// Notification is a recorded sink entry.
type Notification struct {
	Message  string
	Severity Severity
}

func (r *Recorder) Notify(message string, severity Severity) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, Notification{Message: message, Severity: severity})
}

// Drain returns and clears the recorded notifications.
func (r *Recorder) Drain() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.entries
	r.entries = nil
	return out
}

// Last returns the most recent notification.
func (r *Recorder) Last() (Notification, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.entries) == 0 {
		return Notification{}, false
	}
	return r.entries[len(r.entries)-1], true
}
