package log

import (
	"fmt"
	"io"
	"strings"
	"sync"
)

// EventLogger is the interface for recording match events.
type EventLogger interface {
	Append(event GameEvent) GameEvent
	Events() []GameEvent
}

// --- MemoryLogger: stores events in memory, the default for tests ---

type MemoryLogger struct {
	mu     sync.Mutex
	events []GameEvent
}

func NewMemoryLogger() *MemoryLogger {
	return &MemoryLogger{}
}

// Append assigns the next index and records the event. The indexed event is
// returned so callers can hand it to the submitting player.
func (l *MemoryLogger) Append(event GameEvent) GameEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	event.Index = len(l.events) + 1
	l.events = append(l.events, event)
	return event
}

func (l *MemoryLogger) Events() []GameEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]GameEvent, len(l.events))
	copy(out, l.events)
	return out
}

// EventsSince returns all events with index greater than k, in order.
// Calling it twice with the same k yields the same prefix-extension, which
// is what replication consumers rely on to catch up.
func (l *MemoryLogger) EventsSince(k int) []GameEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	if k < 0 {
		k = 0
	}
	if k >= len(l.events) {
		return nil
	}
	out := make([]GameEvent, len(l.events)-k)
	copy(out, l.events[k:])
	return out
}

// EventsOfKind returns all events matching the given kind.
func (l *MemoryLogger) EventsOfKind(k EventKind) []GameEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []GameEvent
	for _, e := range l.events {
		if e.Kind == k {
			out = append(out, e)
		}
	}
	return out
}

// LastEvent returns the most recent event, or a zero event if none.
func (l *MemoryLogger) LastEvent() GameEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.events) == 0 {
		return GameEvent{}
	}
	return l.events[len(l.events)-1]
}

// --- TextLogger: writes human-readable lines to an io.Writer ---

type TextLogger struct {
	MemoryLogger
	w io.Writer
}

func NewTextLogger(w io.Writer) *TextLogger {
	return &TextLogger{w: w}
}

func (l *TextLogger) Append(event GameEvent) GameEvent {
	event = l.MemoryLogger.Append(event)
	fmt.Fprintln(l.w, FormatEvent(event))
	return event
}

// --- Formatting ---

// FormatEvent formats a single event as a human-readable line.
func FormatEvent(e GameEvent) string {
	kind := e.Kind.String()
	for len(kind) < 16 {
		kind += " "
	}
	detail := e.Note
	if detail == "" {
		detail = fmt.Sprintf("%s: %s", e.ActorName, e.Action)
	}
	return fmt.Sprintf("#%-3d %s| %s", e.Index, kind, detail)
}

// FormatAll formats all events as a multi-line string.
func FormatAll(events []GameEvent) string {
	var sb strings.Builder
	for _, e := range events {
		sb.WriteString(FormatEvent(e))
		sb.WriteByte('\n')
	}
	return sb.String()
}
