package app

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/cybersage/internal/notify"
	"github.com/abhisek/cybersage/internal/screen"
)

// DefaultFeedSize is the number of undelivered messages a Feed buffers.
const DefaultFeedSize = 32

// Feed moves notifications and progress events from any goroutine into
// the Bubble Tea loop. It is a notify.Sink; Attach also forwards bus
// events. When the buffer is full new messages are dropped.
type Feed struct {
	ch chan tea.Msg
}

var _ notify.Sink = (*Feed)(nil)

// NewFeed creates a Feed buffering up to size messages.
func NewFeed(size int) *Feed {
	if size <= 0 {
		size = DefaultFeedSize
	}
	return &Feed{ch: make(chan tea.Msg, size)}
}

// Notify implements notify.Sink.
func (f *Feed) Notify(message string, severity notify.Severity) {
	f.push(screen.NotificationMsg{Message: message, Severity: severity})
}

// Attach subscribes the feed to bus events.
func (f *Feed) Attach(bus *notify.Bus) (detach func()) {
	return bus.Subscribe(func(ev notify.Event) {
		f.push(screen.ProgressEventMsg{Event: ev})
	})
}

func (f *Feed) push(msg tea.Msg) {
	select {
	case f.ch <- msg:
	default:
	}
}

// Wait returns a command that blocks until the next message. It is nil
// for a nil Feed.
func (f *Feed) Wait() tea.Cmd {
	if f == nil {
		return nil
	}
	return func() tea.Msg {
		return <-f.ch
	}
}
