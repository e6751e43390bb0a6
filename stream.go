package bimrag

// Stream uses a pull-based iterator pattern. Cancellation flows through the
// context passed to Streamer.Stream().
//
// Next returns decoded events in arrival order. It returns io.EOF when the
// response body ends cleanly. Transport failures wrap ErrTransport and
// cancellation wraps ErrStreamAborted. After an EventDone, Next returns
// io.EOF without reading further bytes.
//
// Close releases the underlying response body. It is safe to call more than
// once and after Next returned an error.
type Stream interface {
	Next() (Event, error)
	Close() error
}
