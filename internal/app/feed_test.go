package app

import (
	"testing"

	"github.com/abhisek/cybersage/internal/notify"
	"github.com/abhisek/cybersage/internal/screen"
)

func TestFeed_NotifyAndEvents(t *testing.T) {
	f := NewFeed(4)
	bus := notify.NewBus(f, nil)
	detach := f.Attach(bus)
	defer detach()

	bus.Emit(notify.Event{Kind: notify.CorrectAnswer, Message: notify.MsgCorrect, Severity: notify.Success})

	msg := f.Wait()()
	n, ok := msg.(screen.NotificationMsg)
	if !ok {
		t.Fatalf("first message = %T, want NotificationMsg", msg)
	}
	if n.Message != notify.MsgCorrect {
		t.Errorf("Message = %q, want %q", n.Message, notify.MsgCorrect)
	}
	if n.Severity != notify.Success {
		t.Errorf("Severity = %v, want %v", n.Severity, notify.Success)
	}

	msg = f.Wait()()
	ev, ok := msg.(screen.ProgressEventMsg)
	if !ok {
		t.Fatalf("second message = %T, want ProgressEventMsg", msg)
	}
	if ev.Event.Kind != notify.CorrectAnswer {
		t.Errorf("Kind = %v, want %v", ev.Event.Kind, notify.CorrectAnswer)
	}
}

func TestFeed_DropsWhenFull(t *testing.T) {
	f := NewFeed(1)
	f.Notify("first", notify.Info)
	f.Notify("second", notify.Info)

	msg := f.Wait()()
	if got := msg.(screen.NotificationMsg).Message; got != "first" {
		t.Errorf("Message = %q, want first", got)
	}
	if len(f.ch) != 0 {
		t.Errorf("queue length = %d, want 0", len(f.ch))
	}
}
