package bimrag

import "context"

// Streamer opens a streaming summarization request against the backend.
// It returns ErrNoContent when the backend reports that nothing relevant
// was found.
type Streamer interface {
	Stream(ctx context.Context, req SummarizeRequest) (Stream, error)
}

// Searcher runs a batch retrieval request.
type Searcher interface {
	Search(ctx context.Context, req SearchRequest) (SearchResponse, error)
}

// Summarizer runs a batch (non-streaming) summarization request.
type Summarizer interface {
	Summarize(ctx context.Context, req SummarizeRequest) (Summary, error)
}

// Titler turns a user question into a short conversation title.
type Titler interface {
	Title(ctx context.Context, input string) (string, error)
}

// SearchResponse is the result of a batch retrieval request.
type SearchResponse struct {
	Query      string   `json:"query"`
	Results    []Source `json:"results"`
	TotalCount int      `json:"total_count"`
}

// Summary is the result of a batch summarization request.
type Summary struct {
	Prompt       string
	Text         string
	Images       []Image
	Links        []string
	Sources      []Source
	TotalSources int
}

// Image is a figure the backend attached to a summary.
type Image struct {
	ID       string `json:"id"`
	FilePath string `json:"file_path"`
}
