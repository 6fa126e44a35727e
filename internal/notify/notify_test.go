package notify

import (
	"slices"
	"testing"
)

func TestBus_EmitReachesSinkAndSubscribers(t *testing.T) {
	rec := &Recorder{}
	bus := NewBus(rec, nil)

	var got []EventKind
	bus.Subscribe(func(ev Event) { got = append(got, ev.Kind) })

	bus.Emit(Event{Kind: CorrectAnswer, Points: 5, Message: MsgCorrect, Severity: Success})
	bus.Emit(Event{Kind: LevelUp})

	if want := []EventKind{CorrectAnswer, LevelUp}; !slices.Equal(got, want) {
		t.Errorf("subscriber saw %v, want %v", got, want)
	}

	// Events without a message reach subscribers only.
	notes := rec.Drain()
	if len(notes) != 1 {
		t.Fatalf("sink got %d notifications, want 1", len(notes))
	}
	if notes[0].Message != MsgCorrect || notes[0].Severity != Success {
		t.Errorf("notification = %+v", notes[0])
	}
	if n := len(rec.Drain()); n != 0 {
		t.Errorf("Drain left %d entries", n)
	}
}

func TestBus_DefaultSeverity(t *testing.T) {
	rec := &Recorder{}
	NewBus(rec, nil).Emit(Event{Kind: ModuleUnlocked, Message: UnlockedMessage("Cloud Security")})

	last, ok := rec.Last()
	if !ok {
		t.Fatal("no notification recorded")
	}
	if last.Severity != Info {
		t.Errorf("Severity = %v, want Info", last.Severity)
	}
	if want := "New module unlocked: Cloud Security"; last.Message != want {
		t.Errorf("Message = %q, want %q", last.Message, want)
	}
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := NewBus(nil, nil)
	calls := 0
	unsub := bus.Subscribe(func(Event) { calls++ })

	bus.Emit(Event{Kind: HintUsed})
	unsub()
	bus.Emit(Event{Kind: HintUsed})

	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestBus_PanickingSubscriberIsIsolated(t *testing.T) {
	bus := NewBus(nil, nil)
	bus.Subscribe(func(Event) { panic("boom") })

	delivered := false
	bus.Subscribe(func(Event) { delivered = true })

	bus.Emit(Event{Kind: PerfectScore})
	if !delivered {
		t.Error("second subscriber missed the event")
	}
}

func TestBus_SubscriberOrder(t *testing.T) {
	bus := NewBus(nil, nil)
	var order []int
	for i := range 3 {
		bus.Subscribe(func(Event) { order = append(order, i) })
	}
	bus.Emit(Event{Kind: WrongAnswer})
	if want := []int{0, 1, 2}; !slices.Equal(order, want) {
		t.Errorf("order = %v, want %v", order, want)
	}
}

func TestMessages(t *testing.T) {
	tests := []struct {
		got, want string
	}{
		{LevelUpMessage("Digital Arrest", "Medium"), "Level up! Digital Arrest is now Medium."},
		{CompletedMessage("Social Media", 90), "Module completed: Social Media (90%). Certificate earned!"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("message = %q, want %q", tt.got, tt.want)
		}
	}
}

func TestSinkFunc(t *testing.T) {
	var got string
	SinkFunc(func(m string, _ Severity) { got = m }).Notify(MsgTimeout, Warning)
	if got != MsgTimeout {
		t.Errorf("got %q, want %q", got, MsgTimeout)
	}
}

func TestLogSink_NilLogger(t *testing.T) {
	// Must not panic.
	LogSink{}.Notify(MsgWrong, Error)
}
