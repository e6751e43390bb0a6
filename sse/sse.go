// Package sse decodes the summarization service's server-sent-event stream.
//
// The wire format is a sequence of frames separated by a blank line. A frame
// holds at most one "event: <kind>" line and at most one "data: <payload>"
// line. Frames without an event line carry answer deltas; "sources" frames
// carry the citation list and a "done" frame terminates the stream.
//
// [Decoder] turns appended text into complete [Frame] values, [Interpret]
// maps a frame to a [bimrag.Event], and [Reader] glues both to an
// [io.Reader] with incremental UTF-8 decoding.
package sse

// Kind is the event kind named by a frame's "event:" line.
type Kind string

const (
	KindDefault Kind = ""
	KindSources Kind = "sources"
	KindDone    Kind = "done"
)

const (
	delimiter   = "\n\n"
	eventPrefix = "event:"
	dataPrefix  = "data:"
)

// Frame is one delimited unit of the stream.
type Frame struct {
	Kind    Kind
	Data    string // payload with prefix stripped and whitespace trimmed
	HasData bool   // whether the frame had a data line at all
	Raw     string // frame text as received, without the delimiter
}
