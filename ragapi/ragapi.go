// Package ragapi implements the bimrag service interfaces over the BIM RAG
// HTTP API.
//
// Streaming summarization posts to /chat/stream and decodes the
// server-sent-event body with package sse into the pull-based
// [bimrag.Stream] interface. Batch search, batch summarization and title
// generation are plain JSON request/response exchanges.
package ragapi

import (
	"encoding/json"

	"github.com/fwojciec/bimrag"
)

const (
	defaultBaseURL = "http://localhost:8000"

	streamPath     = "/chat/stream"
	searchPath     = "/search"
	searchKurePath = "/search-kure"
	summarizePath  = "/summarize"
	titlePath      = "/chat/title"

	// kureModel routes batch search to the KURE embedding index.
	kureModel = "kure"

	// maxErrorBody caps how much of a failed response is read.
	maxErrorBody = 64 << 10
)

// summaryResponse is the JSON body of a batch summarization. Learning
// deployments answer with "summary", framework deployments with "answer".
type summaryResponse struct {
	Prompt       string          `json:"prompt"`
	Summary      *string         `json:"summary"`
	Answer       string          `json:"answer"`
	Images       []bimrag.Image  `json:"images"`
	Links        []string        `json:"links"`
	Sources      []bimrag.Source `json:"sources"`
	TotalSources int             `json:"total_sources"`
}

type titleRequest struct {
	Input string `json:"input"`
}

type titleResponse struct {
	Title string `json:"title"`
}

// apiErrorResponse covers the error bodies the backend and its proxies
// produce: {"error": "..."} and FastAPI's {"detail": ...}.
type apiErrorResponse struct {
	Error  string          `json:"error"`
	Detail json.RawMessage `json:"detail"`
}
