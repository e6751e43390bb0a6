package bimrag

// Event is a sealed interface representing a decoded streaming event.
// Events are purely semantic. Transport errors come from Stream.Next()'s
// error return, not from events.
// The unexported marker method prevents external implementations.
type Event interface {
	event()
}

// EventDelta carries a fragment of answer text to append to what was
// received so far.
type EventDelta struct {
	Text string
}

func (EventDelta) event() {}

// EventSources carries the citation list known so far. It replaces any
// previously received list rather than extending it.
type EventSources struct {
	Sources []Source
}

func (EventSources) event() {}

// EventDone is the termination signal. Text is the authoritative full
// answer (may be empty) and Sources the final citation list (may be empty).
// No further events follow it.
type EventDone struct {
	Text    string
	Sources []Source
}

func (EventDone) event() {}

// Interface compliance checks.
var (
	_ Event = EventDelta{}
	_ Event = EventSources{}
	_ Event = EventDone{}
)
