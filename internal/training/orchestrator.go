// Package training drives quiz attempts. The Orchestrator fetches a
// question set, runs a session with a per-question countdown, settles
// points with the ledger and feeds finished attempts back into the
// progression tracker.
package training

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/abhisek/cybersage/internal/catalog"
	"github.com/abhisek/cybersage/internal/ledger"
	"github.com/abhisek/cybersage/internal/logger"
	"github.com/abhisek/cybersage/internal/notify"
	"github.com/abhisek/cybersage/internal/progress"
	"github.com/abhisek/cybersage/internal/questions"
	"github.com/abhisek/cybersage/internal/session"
	"github.com/abhisek/cybersage/internal/store"
)

// Deps are the collaborators of an Orchestrator. Tracker, Ledger and Source
// are required.
type Deps struct {
	Tracker *progress.Tracker
	Ledger  *ledger.Ledger
	Source  questions.Source

	// Fallback serves questions when Source fails. Defaults to the
	// embedded static bank.
	Fallback questions.Source

	// Hinter defaults to canned hints.
	Hinter questions.Hinter

	Bus    *notify.Bus
	Events store.EventRepo
	Logger *logger.Logger

	// Scheduler drives the question countdown. Defaults to wall time.
	Scheduler session.Scheduler
	Clock     func() time.Time
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithQuestionCount sets how many questions an attempt asks for.
func WithQuestionCount(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.count = n
		}
	}
}

// WithHintCost sets the points charged per hint.
func WithHintCost(n int) Option {
	return func(o *Orchestrator) {
		if n >= 0 {
			o.hintCost = n
		}
	}
}

// Orchestrator runs one attempt at a time.
type Orchestrator struct {
	catalog   *catalog.Catalog
	tracker   *progress.Tracker
	ledger    *ledger.Ledger
	source    questions.Source
	fallback  questions.Source
	hinter    questions.Hinter
	bus       *notify.Bus
	events    store.EventRepo
	log       *logger.Logger
	clock     func() time.Time
	countdown *session.Countdown

	count    int
	hintCost int

	mu       sync.Mutex
	gen      uint64
	sess     *session.Session
	fromBank bool
	bgCtx    context.Context

	// target of the latest attempt, kept for Restart.
	moduleID   string
	difficulty catalog.Difficulty
}

// New creates an Orchestrator.
func New(deps Deps, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		catalog:  deps.Tracker.Catalog(),
		tracker:  deps.Tracker,
		ledger:   deps.Ledger,
		source:   deps.Source,
		fallback: deps.Fallback,
		hinter:   deps.Hinter,
		bus:      deps.Bus,
		events:   deps.Events,
		log:      logger.OrNop(deps.Logger),
		clock:    deps.Clock,
		count:    questions.DefaultCount,
		hintCost: ledger.DefaultHintCost,
		bgCtx:    context.Background(),
	}
	if o.clock == nil {
		o.clock = time.Now
	}
	if o.fallback == nil {
		o.fallback = questions.MustStaticBank()
	}
	if o.hinter == nil {
		o.hinter = questions.CannedHinter{}
	}
	if o.bus == nil {
		o.bus = notify.NewBus(nil, o.log)
	}
	o.countdown = session.NewCountdown(deps.Scheduler, o.clock)
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Bus returns the event bus notifications go through.
func (o *Orchestrator) Bus() *notify.Bus { return o.bus }

// Catalog returns the module catalog.
func (o *Orchestrator) Catalog() *catalog.Catalog { return o.catalog }

// Tracker returns the progression tracker.
func (o *Orchestrator) Tracker() *progress.Tracker { return o.tracker }

// Ledger returns the points ledger.
func (o *Orchestrator) Ledger() *ledger.Ledger { return o.ledger }

// HintCost returns the points charged per hint.
func (o *Orchestrator) HintCost() int { return o.hintCost }

// Start begins an attempt at moduleID on its active difficulty.
func (o *Orchestrator) Start(ctx context.Context, moduleID string) error {
	unlocked, err := o.tracker.IsUnlocked(moduleID)
	if err != nil {
		return err
	}
	if !unlocked {
		return fmt.Errorf("%w: %s", ErrModuleLocked, moduleID)
	}
	d, err := o.tracker.ActiveDifficulty(moduleID)
	if err != nil {
		return err
	}
	return o.begin(ctx, moduleID, d)
}

// StartPractice begins a cross-module practice attempt at d.
func (o *Orchestrator) StartPractice(ctx context.Context, d catalog.Difficulty) error {
	if d == "" {
		d = catalog.Easy
	}
	if !d.Valid() {
		return fmt.Errorf("start practice: unknown difficulty %q", d)
	}
	return o.begin(ctx, "", d)
}

// Restart begins a new attempt at the target of the latest one. Module
// attempts pick up the module's active difficulty, so a level-up carries
// over.
func (o *Orchestrator) Restart(ctx context.Context) error {
	o.mu.Lock()
	moduleID, d := o.moduleID, o.difficulty
	o.mu.Unlock()

	if moduleID == "" && d == "" {
		return ErrNoActiveSession
	}
	if moduleID == "" {
		return o.StartPractice(ctx, d)
	}
	return o.Start(ctx, moduleID)
}

func (o *Orchestrator) begin(ctx context.Context, moduleID string, d catalog.Difficulty) error {
	o.countdown.Stop()
	o.mu.Lock()
	o.gen++
	gen := o.gen
	o.sess = nil
	o.moduleID, o.difficulty = moduleID, d
	o.mu.Unlock()

	set, err := o.fetch(ctx, questions.Request{ModuleID: moduleID, Difficulty: d, Count: o.count})
	if err != nil {
		return err
	}

	s := session.New(session.WithClock(o.clock))
	if err := s.Start(moduleID, d, set.Questions); err != nil {
		return err
	}

	o.mu.Lock()
	if o.gen != gen {
		o.mu.Unlock()
		o.log.Debug("discarding stale question set", "module", moduleID, "difficulty", d)
		return ErrStale
	}
	o.sess = s
	o.fromBank = set.Fallback
	o.bgCtx = context.WithoutCancel(ctx)
	o.mu.Unlock()

	o.log.Info("session started", "session", s.ID(), "module", moduleID, "difficulty", d,
		"questions", s.Len(), "fallback", set.Fallback)
	o.record(ctx, func(ctx context.Context, ev store.EventRepo) error {
		return ev.AppendSessionEvent(ctx, store.SessionEventData{
			SessionID:  s.ID(),
			ModuleID:   moduleID,
			Difficulty: string(d),
			Action:     "start",
			Questions:  s.Len(),
		})
	})

	o.startCountdown(s)
	return nil
}

// fetch asks the configured source for questions and falls back to the
// local bank on any failure or an empty set.
func (o *Orchestrator) fetch(ctx context.Context, req questions.Request) (*questions.Set, error) {
	set, err := o.source.Fetch(ctx, req)
	if err == nil && set.Len() > 0 {
		return set, nil
	}
	if err == nil {
		err = fmt.Errorf("%s returned no questions", o.source.Name())
	}
	o.log.Warn("question fetch failed, using fallback", "source", o.source.Name(),
		"module", req.ModuleID, "difficulty", req.Difficulty, "error", err)

	set, ferr := o.fallback.Fetch(ctx, req)
	if ferr != nil {
		return nil, fmt.Errorf("fallback questions: %w", errors.Join(err, ferr))
	}
	if set.Len() == 0 {
		return nil, fmt.Errorf("fallback questions: %w", session.ErrEmptyQuestionSet)
	}
	set.Fallback = true

	o.bus.Emit(notify.Event{
		Kind:       notify.FallbackContent,
		ModuleID:   req.ModuleID,
		Difficulty: string(req.Difficulty),
		Message:    notify.MsgFallback,
		Severity:   notify.Warning,
	})
	return set, nil
}

func (o *Orchestrator) startCountdown(s *session.Session) {
	o.countdown.Start(s.Difficulty().TimeLimit(), func() { o.onExpire(s) })
}

func (o *Orchestrator) onExpire(s *session.Session) {
	o.mu.Lock()
	ctx := o.bgCtx
	current := o.sess == s
	o.mu.Unlock()
	if !current {
		return
	}
	if err := o.expire(ctx, s); err != nil {
		o.log.Debug("countdown expiry ignored", "session", s.ID(), "error", err)
	}
}

// active returns the running session.
func (o *Orchestrator) active() (*session.Session, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.sess == nil {
		return nil, ErrNoActiveSession
	}
	return o.sess, nil
}

// SelectOption stages an option on the current question.
func (o *Orchestrator) SelectOption(option string) error {
	s, err := o.active()
	if err != nil {
		return err
	}
	s.SelectOption(option)
	return nil
}

// Submit answers the current question with option, or with the staged
// option when option is empty, and settles points.
func (o *Orchestrator) Submit(ctx context.Context, option string) (Feedback, error) {
	s, err := o.active()
	if err != nil {
		return Feedback{}, err
	}
	if option == "" {
		option = s.Selected()
	}
	if option == "" {
		return Feedback{}, ErrNoSelection
	}
	q, _ := s.CurrentQuestion()
	correct, err := s.SubmitAnswer(option)
	if err != nil {
		return Feedback{}, err
	}
	o.countdown.Stop()

	fb := Feedback{
		QuestionID:    q.ID,
		Selected:      option,
		Correct:       correct,
		CorrectOption: q.Correct,
		Explanation:   q.Explanation,
		IsLast:        s.IsLastQuestion(),
	}

	before := o.ledger.Balance()
	if correct {
		err = o.ledger.AddPoints(ctx, ledger.CorrectAnswerPoints)
	} else {
		err = o.ledger.DeductPoint(ctx)
	}
	if err != nil {
		o.log.Error("points not saved", "session", s.ID(), "error", err)
	}
	fb.Balance = o.ledger.Balance()
	fb.PointsDelta = fb.Balance - before

	o.recordAnswer(ctx, s, q)

	ev := notify.Event{ModuleID: s.ModuleID(), Difficulty: string(s.Difficulty()), Points: fb.PointsDelta}
	if correct {
		ev.Kind, ev.Message, ev.Severity = notify.CorrectAnswer, notify.MsgCorrect, notify.Success
	} else {
		ev.Kind, ev.Message, ev.Severity = notify.WrongAnswer, notify.MsgWrong, notify.Error
	}
	o.bus.Emit(ev)
	return fb, nil
}

// TimeExpire skips the current question as timed out. It is called by the
// countdown and may be called directly.
func (o *Orchestrator) TimeExpire(ctx context.Context) error {
	s, err := o.active()
	if err != nil {
		return err
	}
	o.countdown.Stop()
	return o.expire(ctx, s)
}

func (o *Orchestrator) expire(ctx context.Context, s *session.Session) error {
	q, _ := s.CurrentQuestion()
	if err := s.TimeExpire(); err != nil {
		return err
	}
	o.recordAnswer(ctx, s, q)
	o.bus.Emit(notify.Event{
		Kind:       notify.Timeout,
		ModuleID:   s.ModuleID(),
		Difficulty: string(s.Difficulty()),
		Message:    notify.MsgTimeout,
		Severity:   notify.Warning,
	})
	return nil
}

// RequestHint charges for and fetches a hint on the current question.
// Repeat calls for the same question return the same hint without another
// charge. A failing hint source yields a canned hint.
func (o *Orchestrator) RequestHint(ctx context.Context) (Hint, error) {
	s, err := o.active()
	if err != nil {
		return Hint{}, err
	}
	q, _ := s.CurrentQuestion()

	var (
		charged  bool
		spendErr error
	)
	text, ticket, err := s.RequestHint(func() bool {
		charged, spendErr = o.ledger.TrySpend(ctx, o.hintCost)
		return charged
	})
	if spendErr != nil {
		o.log.Error("hint charge not saved", "session", s.ID(), "error", spendErr)
	}
	if errors.Is(err, session.ErrHintNotAffordable) {
		o.bus.Notify(notify.MsgNoHintFunds, notify.Warning)
		return Hint{}, err
	}
	if err != nil {
		return Hint{}, err
	}
	if !charged {
		return Hint{Text: text, Pending: ticket != nil}, nil
	}

	o.record(ctx, func(ctx context.Context, ev store.EventRepo) error {
		return ev.AppendHintEvent(ctx, store.HintEventData{
			SessionID:  s.ID(),
			ModuleID:   s.ModuleID(),
			QuestionID: q.ID,
			Cost:       o.hintCost,
		})
	})
	o.bus.Emit(notify.Event{
		Kind:       notify.HintUsed,
		ModuleID:   s.ModuleID(),
		Difficulty: string(s.Difficulty()),
		Points:     -o.hintCost,
		Message:    hintUsedMessage(o.hintCost),
		Severity:   notify.Info,
	})

	h := Hint{Charged: true}
	h.Text, err = o.hinter.Hint(ctx, &q)
	if err != nil {
		o.log.Warn("hint fetch failed, using canned hint", "question", q.ID, "error", err)
		h.Text = questions.CannedHint(&q)
		h.Fallback = true
	}
	if !s.ResolveHint(ticket, h.Text) {
		if err := o.ledger.Refund(ctx, o.hintCost); err != nil {
			o.log.Error("hint refund not saved", "session", s.ID(), "error", err)
		}
		o.bus.Notify(notify.MsgHintRefund, notify.Info)
		return Hint{}, ErrStale
	}
	return h, nil
}

func hintUsedMessage(cost int) string {
	if cost == ledger.DefaultHintCost {
		return notify.MsgHintUsed
	}
	return fmt.Sprintf("Hint used! -%d points", cost)
}

// Advance moves past the answered question and restarts the countdown.
// When no questions remain the caller must Finish.
func (o *Orchestrator) Advance() error {
	s, err := o.active()
	if err != nil {
		return err
	}
	if err := s.Advance(); err != nil {
		return err
	}
	if s.AtEnd() {
		o.countdown.Stop()
		return nil
	}
	o.startCountdown(s)
	return nil
}

// Finish completes the attempt and applies it to progression. Module
// attempts record the run, complete the module on a passing accuracy and
// advance the tier after a perfect run.
func (o *Orchestrator) Finish(ctx context.Context) (Outcome, error) {
	s, err := o.active()
	if err != nil {
		return Outcome{}, err
	}
	if err := s.Complete(); err != nil {
		return Outcome{}, err
	}
	o.countdown.Stop()

	sum, err := s.Summary()
	if err != nil {
		return Outcome{}, err
	}
	o.mu.Lock()
	out := Outcome{Summary: sum, Practice: sum.ModuleID == "", Fallback: o.fromBank}
	o.mu.Unlock()
	sc := sum.Score

	o.log.Info("session finished", "session", sum.SessionID, "module", sum.ModuleID,
		"difficulty", sum.Difficulty, "correct", sc.Correct, "wrong", sc.Wrong,
		"timed_out", sc.TimedOut, "accuracy", sc.Accuracy, "perfect", sc.IsPerfect)
	o.record(ctx, func(ctx context.Context, ev store.EventRepo) error {
		return ev.AppendSessionEvent(ctx, store.SessionEventData{
			SessionID:    sum.SessionID,
			ModuleID:     sum.ModuleID,
			Difficulty:   string(sum.Difficulty),
			Action:       "end",
			Questions:    sc.Total,
			Correct:      sc.Correct,
			Wrong:        sc.Wrong,
			TimedOut:     sc.TimedOut,
			Score:        sc.Points,
			Accuracy:     sc.Accuracy,
			Perfect:      sc.IsPerfect,
			DurationSecs: int(sum.Duration.Seconds()),
		})
	})

	if sc.IsPerfect {
		o.bus.Emit(notify.Event{
			Kind:       notify.PerfectScore,
			ModuleID:   sum.ModuleID,
			Difficulty: string(sum.Difficulty),
			Score:      sc.Accuracy,
		})
	}

	if !out.Practice {
		if err := o.applyProgress(ctx, sum, &out); err != nil {
			return Outcome{}, err
		}
	}

	out.NextDifficulty = sum.Difficulty
	switch next, ok := sum.Difficulty.Next(); {
	case sc.IsPerfect && ok:
		out.Next = NextAdvanceDifficulty
		out.NextDifficulty = next
	case sc.IsPerfect:
		out.Next = NextMastered
	default:
		out.Next = NextRetry
	}
	if out.Practice {
		o.mu.Lock()
		o.difficulty = out.NextDifficulty
		o.mu.Unlock()
	}

	out.Balance = o.ledger.Balance()
	return out, nil
}

func (o *Orchestrator) applyProgress(ctx context.Context, sum session.Summary, out *Outcome) error {
	sc := sum.Score
	m, err := o.catalog.Get(sum.ModuleID)
	if err != nil {
		return err
	}
	out.PassThreshold = m.PassThreshold

	if err := o.tracker.RecordAttempt(ctx, m.ID, sum.Difficulty, sc.Completed, sc.IsPerfect); err != nil {
		return fmt.Errorf("record attempt: %w", err)
	}

	if sc.Completed {
		newly, err := o.tracker.MarkModuleCompleted(ctx, m.ID, sc.Accuracy)
		if err != nil {
			return fmt.Errorf("mark module completed: %w", err)
		}
		out.NewlyUnlocked = newly
		out.Passed = sc.Accuracy >= m.PassThreshold
		if out.Passed {
			st, err := o.tracker.Status(m.ID)
			if err == nil {
				out.Certificate = st.Certificate
			}
			o.recordModule(ctx, store.ModuleEventData{ModuleID: m.ID, Action: "completed", Difficulty: string(sum.Difficulty), Score: sc.Accuracy})
			o.bus.Emit(notify.Event{
				Kind:       notify.ModuleCompleted,
				ModuleID:   m.ID,
				Difficulty: string(sum.Difficulty),
				Score:      sc.Accuracy,
				Message:    notify.CompletedMessage(m.Name, sc.Accuracy),
				Severity:   notify.Success,
			})
		}
		o.announce(ctx, newly)
	}

	if sc.IsPerfect {
		next, advanced, err := o.tracker.AdvanceDifficultyIfEligible(ctx, m.ID, sum.Difficulty)
		if err != nil {
			return fmt.Errorf("advance difficulty: %w", err)
		}
		if advanced {
			out.Advanced = true
			o.recordModule(ctx, store.ModuleEventData{ModuleID: m.ID, Action: "advanced", Difficulty: string(next)})
			o.bus.Emit(notify.Event{
				Kind:       notify.LevelUp,
				ModuleID:   m.ID,
				Difficulty: string(next),
				Message:    notify.LevelUpMessage(m.Name, next.Label()),
				Severity:   notify.Success,
			})
		}
	}
	return nil
}

// announce emits an unlock event for every id.
func (o *Orchestrator) announce(ctx context.Context, ids []string) {
	for _, id := range ids {
		m, err := o.catalog.Get(id)
		if err != nil {
			continue
		}
		o.recordModule(ctx, store.ModuleEventData{ModuleID: id, Action: "unlocked"})
		o.bus.Emit(notify.Event{
			Kind:     notify.ModuleUnlocked,
			ModuleID: id,
			Message:  notify.UnlockedMessage(m.Name),
			Severity: notify.Success,
		})
	}
}

// AnnounceUnlocks flags modules whose dependencies became satisfied
// without an announcement and notifies about each once.
func (o *Orchestrator) AnnounceUnlocks(ctx context.Context) ([]string, error) {
	ids, err := o.tracker.AcknowledgeUnlocks(ctx)
	if err != nil {
		return nil, err
	}
	o.announce(ctx, ids)
	return ids, nil
}

// Abandon drops the running attempt without recording progression. Any
// in-flight fetch for it is discarded.
func (o *Orchestrator) Abandon(ctx context.Context) {
	o.countdown.Stop()
	o.mu.Lock()
	s := o.sess
	o.sess = nil
	o.gen++
	o.mu.Unlock()

	if s == nil || s.State() != session.InProgress {
		return
	}
	sc := s.Score()
	o.log.Info("session abandoned", "session", s.ID(), "module", s.ModuleID(), "answered", sc.Total)
	o.record(ctx, func(ctx context.Context, ev store.EventRepo) error {
		return ev.AppendSessionEvent(ctx, store.SessionEventData{
			SessionID:    s.ID(),
			ModuleID:     s.ModuleID(),
			Difficulty:   string(s.Difficulty()),
			Action:       "abandon",
			Questions:    s.Len(),
			Correct:      sc.Correct,
			Wrong:        sc.Wrong,
			TimedOut:     sc.TimedOut,
			Score:        sc.Points,
			Accuracy:     sc.Accuracy,
			DurationSecs: int(s.Duration().Seconds()),
		})
	})
}

// View returns a render snapshot of the running attempt.
func (o *Orchestrator) View() View {
	o.mu.Lock()
	s := o.sess
	fromBank := o.fromBank
	o.mu.Unlock()

	v := View{
		Points:        o.ledger.Balance(),
		HintCost:      o.hintCost,
		CanAffordHint: o.ledger.CanAfford(o.hintCost),
		Remaining:     o.countdown.Remaining(),
		Budget:        o.countdown.Budget(),
	}
	if s == nil {
		return v
	}
	v.View = s.View()
	v.Active = true
	v.Fallback = fromBank
	v.Practice = v.ModuleID == ""
	if m, err := o.catalog.Get(v.ModuleID); err == nil {
		v.ModuleName = m.Name
	}
	return v
}

func (o *Orchestrator) recordAnswer(ctx context.Context, s *session.Session, q questions.Question) {
	log := s.Log()
	if len(log) == 0 {
		return
	}
	a := log[len(log)-1]
	o.record(ctx, func(ctx context.Context, ev store.EventRepo) error {
		return ev.AppendAnswerEvent(ctx, store.AnswerEventData{
			SessionID:  s.ID(),
			ModuleID:   s.ModuleID(),
			Difficulty: string(s.Difficulty()),
			QuestionID: q.ID,
			Prompt:     q.Prompt,
			Selected:   a.Selected,
			Correct:    a.Correct,
			TimedOut:   a.TimedOut,
			HintUsed:   a.HintUsed,
			TimeMs:     a.Elapsed.Milliseconds(),
		})
	})
}

func (o *Orchestrator) recordModule(ctx context.Context, data store.ModuleEventData) {
	o.record(ctx, func(ctx context.Context, ev store.EventRepo) error {
		return ev.AppendModuleEvent(ctx, data)
	})
}

// record appends an event when an event repo is configured. Failures are
// logged; the event log never blocks training.
func (o *Orchestrator) record(ctx context.Context, fn func(context.Context, store.EventRepo) error) {
	if o.events == nil {
		return
	}
	if err := fn(ctx, o.events); err != nil {
		o.log.Warn("event append failed", "error", err)
	}
}
