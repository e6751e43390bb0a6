// Package mock provides test doubles for bimrag interfaces using function fields.
package mock

import (
	"context"

	"github.com/fwojciec/bimrag"
)

// Interface compliance checks.
var (
	_ bimrag.Streamer   = (*Streamer)(nil)
	_ bimrag.Searcher   = (*Searcher)(nil)
	_ bimrag.Summarizer = (*Summarizer)(nil)
	_ bimrag.Titler     = (*Titler)(nil)
)

// Streamer is a test double for bimrag.Streamer.
// Set StreamFn before calling Stream.
type Streamer struct {
	StreamFn func(ctx context.Context, req bimrag.SummarizeRequest) (bimrag.Stream, error)
}

// Stream delegates to StreamFn.
func (s *Streamer) Stream(ctx context.Context, req bimrag.SummarizeRequest) (bimrag.Stream, error) {
	return s.StreamFn(ctx, req)
}

// Searcher is a test double for bimrag.Searcher.
// Set SearchFn before calling Search.
type Searcher struct {
	SearchFn func(ctx context.Context, req bimrag.SearchRequest) (bimrag.SearchResponse, error)
}

// Search delegates to SearchFn.
func (s *Searcher) Search(ctx context.Context, req bimrag.SearchRequest) (bimrag.SearchResponse, error) {
	return s.SearchFn(ctx, req)
}

// Summarizer is a test double for bimrag.Summarizer.
// Set SummarizeFn before calling Summarize.
type Summarizer struct {
	SummarizeFn func(ctx context.Context, req bimrag.SummarizeRequest) (bimrag.Summary, error)
}

// Summarize delegates to SummarizeFn.
func (s *Summarizer) Summarize(ctx context.Context, req bimrag.SummarizeRequest) (bimrag.Summary, error) {
	return s.SummarizeFn(ctx, req)
}

// Titler is a test double for bimrag.Titler.
// Set TitleFn before calling Title.
type Titler struct {
	TitleFn func(ctx context.Context, input string) (string, error)
}

// Title delegates to TitleFn.
func (t *Titler) Title(ctx context.Context, input string) (string, error) {
	return t.TitleFn(ctx, input)
}
