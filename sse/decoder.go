package sse

import "strings"

// Decoder splits an append-only text stream into frames. It emits a frame
// only after its delimiter has been seen, never emits a frame twice, and
// keeps the unterminated tail buffered for the next Feed.
//
// The zero value is ready to use. A Decoder is not safe for concurrent use.
type Decoder struct {
	buf string
	// scan is the offset where the next delimiter search starts. Bytes before
	// it are known not to begin a delimiter.
	scan int
}

// Feed appends text to the buffer and returns every frame completed by it,
// in arrival order.
func (d *Decoder) Feed(text string) []Frame {
	d.buf += text
	var frames []Frame
	for {
		i := strings.Index(d.buf[d.scan:], delimiter)
		if i < 0 {
			// The last byte may be the first half of a delimiter.
			d.scan = max(len(d.buf)-len(delimiter)+1, 0)
			return frames
		}
		end := d.scan + i
		frames = append(frames, ParseFrame(d.buf[:end]))
		d.buf = d.buf[end+len(delimiter):]
		d.scan = 0
	}
}

// Buffered returns the text received after the last complete frame.
func (d *Decoder) Buffered() string {
	return d.buf
}

// Reset discards any buffered text.
func (d *Decoder) Reset() {
	d.buf = ""
	d.scan = 0
}

// ParseFrame parses the text of one frame. The first "event:" line sets the
// kind and the first "data:" line sets the payload; other lines (comments,
// id:, retry:) are ignored. Trailing carriage returns are tolerated.
func ParseFrame(raw string) Frame {
	f := Frame{Raw: raw}
	var sawEvent bool
	for line := range strings.SplitSeq(raw, "\n") {
		line = strings.TrimSuffix(line, "\r")
		switch {
		case !sawEvent && strings.HasPrefix(line, eventPrefix):
			f.Kind = Kind(strings.TrimSpace(line[len(eventPrefix):]))
			sawEvent = true
		case !f.HasData && strings.HasPrefix(line, dataPrefix):
			f.Data = strings.TrimSpace(line[len(dataPrefix):])
			f.HasData = true
		}
	}
	return f
}
