package out

import (
	"io"
	"sync"

	"nadi/internal/modules/session/domain"
	sessionout "nadi/internal/modules/session/port/out"
)

// Broadcaster fans controller events out to every registered sink.
type Broadcaster struct {
	mu    sync.Mutex
	sinks []sessionout.EventSink
}

func NewBroadcaster(sinks ...sessionout.EventSink) *Broadcaster {
	return &Broadcaster{sinks: sinks}
}

func (b *Broadcaster) Add(sink sessionout.EventSink) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sinks = append(b.sinks, sink)
}

func (b *Broadcaster) Publish(event domain.Event) {
	b.mu.Lock()
	sinks := make([]sessionout.EventSink, len(b.sinks))
	copy(sinks, b.sinks)
	b.mu.Unlock()
	for _, sink := range sinks {
		sink.Publish(event)
	}
}

// ChannelSink buffers events for a consumer that polls, such as the TUI.
// Events are dropped when the buffer is full rather than blocking the
// controller.
type ChannelSink struct {
	events chan domain.Event
}

func NewChannelSink(buffer int) *ChannelSink {
	if buffer <= 0 {
		buffer = 256
	}
	return &ChannelSink{events: make(chan domain.Event, buffer)}
}

func (s *ChannelSink) Publish(event domain.Event) {
	select {
	case s.events <- event:
	default:
	}
}

func (s *ChannelSink) Events() <-chan domain.Event {
	return s.events
}

// BellSink rings the terminal bell on posture and eye alerts. The policy
// gating happens upstream in the controller, so every alert that arrives
// here should sound.
type BellSink struct {
	mu  sync.Mutex
	out io.Writer
}

func NewBellSink(out io.Writer) *BellSink {
	return &BellSink{out: out}
}

func (s *BellSink) Publish(event domain.Event) {
	if event.Kind != domain.EventPostureAlert && event.Kind != domain.EventEyeAlert {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, _ = s.out.Write([]byte("\a"))
}
