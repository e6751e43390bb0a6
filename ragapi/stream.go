package ragapi

import (
	"context"
	"fmt"
	"io"

	"github.com/fwojciec/bimrag"
	"github.com/fwojciec/bimrag/sse"
	"go.uber.org/zap"
)

// stream implements [bimrag.Stream] over a streaming summarization body.
type stream struct {
	ctx    context.Context
	body   io.ReadCloser
	reader *sse.Reader
	logger *zap.Logger

	events  int
	skipped int
	done    bool  // termination signal or clean EOF seen
	closed  bool  // body released
	err     error // terminal error, if any
}

// Interface compliance check.
var _ bimrag.Stream = (*stream)(nil)

func newStream(ctx context.Context, body io.ReadCloser, logger *zap.Logger) *stream {
	s := &stream{
		ctx:    ctx,
		body:   body,
		logger: logger,
	}
	s.reader = sse.NewReader(body, sse.WithSkipHandler(s.onSkip))
	return s
}

// Next returns the next decoded event. After the termination signal it
// returns io.EOF and reads nothing more from the body.
func (s *stream) Next() (bimrag.Event, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.done {
		return nil, io.EOF
	}

	evt, err := s.reader.Next()
	if err == io.EOF {
		s.finish("eof")
		return nil, io.EOF
	}
	if err != nil {
		s.terminate(err)
		return nil, s.err
	}

	s.events++
	if _, ok := evt.(bimrag.EventDone); ok {
		// Bytes after the termination signal are ignored.
		s.finish("done")
		s.release()
	}
	return evt, nil
}

// Close releases the response body.
func (s *stream) Close() error {
	if !s.done && s.err == nil {
		s.logger.Debug("stream closed early", zap.Int("events", s.events))
	}
	return s.release()
}

func (s *stream) release() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.body.Close()
}

func (s *stream) finish(reason string) {
	s.done = true
	s.logger.Debug("stream finished",
		zap.String("reason", reason),
		zap.Int("events", s.events),
		zap.Int("skipped", s.skipped),
	)
}

// terminate records a terminal read error, classifying it as an abort when
// the context was cancelled.
func (s *stream) terminate(err error) {
	if ctxErr := s.ctx.Err(); ctxErr != nil {
		s.err = fmt.Errorf("ragapi: %w: %w", bimrag.ErrStreamAborted, ctxErr)
		s.logger.Debug("stream aborted", zap.Int("events", s.events))
		return
	}
	s.err = fmt.Errorf("ragapi: %w: %w", bimrag.ErrTransport, err)
	s.logger.Warn("stream interrupted", zap.Int("events", s.events), zap.Error(err))
}

func (s *stream) onSkip(f sse.Frame, err error) {
	s.skipped++
	s.logger.Debug("frame skipped",
		zap.String("kind", string(f.Kind)),
		zap.Int("payload_bytes", len(f.Data)),
		zap.Error(err),
	)
}
