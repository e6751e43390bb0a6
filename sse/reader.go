package sse

import (
	"io"

	"github.com/fwojciec/bimrag"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const readBufferSize = 32 * 1024

// ReaderOption configures a [Reader].
type ReaderOption func(*Reader)

// WithSkipHandler sets a hook called for every frame Interpret rejected.
// Skipped frames never stop the Reader.
func WithSkipHandler(fn func(f Frame, err error)) ReaderOption {
	return func(r *Reader) { r.onSkip = fn }
}

// Reader yields events from a byte stream. Bytes pass through an incremental
// UTF-8 decoder, so a multi-byte character split across reads is reassembled
// before framing; invalid sequences become U+FFFD.
//
// Each underlying read is framed completely before the next read is issued.
// An unterminated frame left at end of input is discarded.
type Reader struct {
	src     io.Reader
	dec     Decoder
	buf     []byte
	pending []Frame
	onSkip  func(Frame, error)
	err     error
}

// NewReader creates a Reader over r.
func NewReader(r io.Reader, opts ...ReaderOption) *Reader {
	rd := &Reader{
		src: transform.NewReader(r, unicode.UTF8.NewDecoder()),
		buf: make([]byte, readBufferSize),
	}
	for _, o := range opts {
		o(rd)
	}
	return rd
}

// Next returns the next event. It returns io.EOF at the clean end of input
// and the underlying read error otherwise. Errors are sticky.
func (r *Reader) Next() (bimrag.Event, error) {
	for {
		for len(r.pending) > 0 {
			f := r.pending[0]
			r.pending = r.pending[1:]
			evt, err := Interpret(f)
			if err != nil {
				if r.onSkip != nil {
					r.onSkip(f, err)
				}
				continue
			}
			if evt != nil {
				return evt, nil
			}
		}
		if r.err != nil {
			return nil, r.err
		}
		n, err := r.src.Read(r.buf)
		if n > 0 {
			r.pending = r.dec.Feed(string(r.buf[:n]))
		}
		if err != nil {
			r.err = err
		}
	}
}

// Buffered returns decoded text not yet terminated by a frame delimiter.
func (r *Reader) Buffered() string {
	return r.dec.Buffered()
}
