package bimrag

// SummarizeRequest carries the query and the retrieval/generation tuning
// parameters for a summarization call, streaming or batch.
// The backend uses its own defaults when fields are zero/nil.
type SummarizeRequest struct {
	Query       string   `json:"query"`
	Model       string   `json:"model,omitempty"`       // retrieval model key, e.g. "bge-m3", "kure", "full", "json"
	TopK        int      `json:"top_k,omitempty"`       // 0 = backend default
	UseContext  int      `json:"use_context,omitempty"` // documents passed to the generator; 0 = backend default
	MaxTokens   int      `json:"max_tokens,omitempty"`  // 0 = backend default
	Temperature *float64 `json:"temperature,omitempty"` // nil = backend default
	TopP        *float64 `json:"top_p,omitempty"`       // nil = backend default
	Filters     *Filters `json:"filters,omitempty"`
	UseKure     bool     `json:"use_kure,omitempty"`
}

// SearchRequest is a batch retrieval request without generation.
type SearchRequest struct {
	Messages   []Message `json:"messages"`
	TopK       int       `json:"top_k,omitempty"`
	UseContext int       `json:"use_context,omitempty"`
	Filters    *Filters  `json:"filters,omitempty"`

	// Model selects the retrieval index. It is not sent in the body; "kure"
	// routes the request to the KURE endpoint.
	Model string `json:"-"`
}

// Filters narrows retrieval to parts of the document tree.
type Filters struct {
	Categories   *CategoryFilter `json:"categories,omitempty"`
	CategoryPath []string        `json:"category_path,omitempty"`
}

// CategoryFilter selects a top-level and second-level category.
type CategoryFilter struct {
	Top   string `json:"top,omitempty"`
	Upper string `json:"upper,omitempty"`
}

// Float returns a pointer to v, for optional request fields.
func Float(v float64) *float64 { return &v }
