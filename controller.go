package bimrag

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// Callbacks receive events from a running stream. Both hooks are optional
// and are invoked synchronously from the goroutine calling Controller.Run.
type Callbacks struct {
	// OnDelta is invoked once per incremental text fragment. It receives only
	// the new fragment; concatenation is the caller's job.
	OnDelta func(delta string)

	// OnSources is invoked when the backend streams a citation list ahead of
	// the termination signal. Each call replaces the previous list.
	OnSources func(sources []Source)
}

// Result is the aggregated outcome of one streaming call.
type Result struct {
	// Text is the authoritative final answer from the termination signal,
	// or empty when the stream ended without one.
	Text string
	// Sources is the final citation list. It is never nil.
	Sources []Source
	// NoContent reports that the backend found nothing relevant.
	NoContent bool
}

// Controller drives one streaming request per Run call and presents it as
// callbacks plus a final Result, hiding framing and chunking details.
// A Controller holds no per-run state and may serve concurrent Runs.
type Controller struct {
	streamer Streamer
}

// NewController creates a Controller that opens streams with streamer.
func NewController(streamer Streamer) *Controller {
	return &Controller{streamer: streamer}
}

// Run issues exactly one streaming request and dispatches its events until
// the termination signal or end of data. Cancelling ctx aborts the request;
// Run then returns an error wrapping ErrStreamAborted and no callback is
// invoked after the cancellation is observed. Run never retries.
func (c *Controller) Run(ctx context.Context, req SummarizeRequest, cb Callbacks) (Result, error) {
	if err := req.Validate(); err != nil {
		return Result{}, err
	}
	if err := ctx.Err(); err != nil {
		return Result{}, aborted(err)
	}

	stream, err := c.streamer.Stream(ctx, req)
	if errors.Is(err, ErrNoContent) {
		return Result{Sources: []Source{}, NoContent: true}, nil
	}
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Result{}, aborted(ctxErr)
		}
		return Result{}, err
	}
	defer stream.Close()

	var sources []Source
	for {
		evt, err := stream.Next()
		// Events decoded from an already-buffered chunk must not reach the
		// caller once the token has fired.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Result{}, aborted(ctxErr)
		}
		if err == io.EOF {
			return Result{Sources: nonNil(sources)}, nil
		}
		if err != nil {
			return Result{}, err
		}

		switch e := evt.(type) {
		case EventDelta:
			if cb.OnDelta != nil {
				cb.OnDelta(e.Text)
			}
		case EventSources:
			sources = e.Sources
			if cb.OnSources != nil {
				cb.OnSources(e.Sources)
			}
		case EventDone:
			if len(e.Sources) > 0 {
				sources = e.Sources
			}
			return Result{Text: e.Text, Sources: nonNil(sources)}, nil
		}
	}
}

func aborted(cause error) error {
	if errors.Is(cause, ErrStreamAborted) {
		return cause
	}
	return fmt.Errorf("%w: %w", ErrStreamAborted, cause)
}

func nonNil(sources []Source) []Source {
	if sources == nil {
		return []Source{}
	}
	return sources
}
