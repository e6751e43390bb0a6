package ragapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/fwojciec/bimrag"
	"go.uber.org/zap"
)

// Interface compliance checks.
var (
	_ bimrag.Streamer   = (*Client)(nil)
	_ bimrag.Searcher   = (*Client)(nil)
	_ bimrag.Summarizer = (*Client)(nil)
	_ bimrag.Titler     = (*Client)(nil)
)

// Client talks to the BIM RAG HTTP API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// Option configures a [Client].
type Option func(*Client)

// WithBaseURL sets the API base URL. Useful for testing with httptest.
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(url, "/") }
}

// WithHTTPClient sets a custom HTTP client. Do not set a client Timeout for
// streaming use; bound calls with the context instead.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the logger for request diagnostics. The default discards
// everything.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a new [Client] with the given options.
func New(opts ...Option) *Client {
	c := &Client{
		baseURL:    defaultBaseURL,
		httpClient: http.DefaultClient,
		logger:     zap.NewNop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Stream posts req to the streaming summarization endpoint and returns a
// [bimrag.Stream] over the response body. A 204 response yields
// [bimrag.ErrNoContent]. The context bounds the whole stream, not just the
// response headers.
func (c *Client) Stream(ctx context.Context, req bimrag.SummarizeRequest) (bimrag.Stream, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("ragapi: %w", err)
	}
	resp, err := c.post(ctx, streamPath, req, "text/event-stream")
	if err != nil {
		return nil, err
	}

	switch {
	case resp.StatusCode == http.StatusNoContent:
		resp.Body.Close()
		c.logger.Debug("stream has no content", zap.String("path", streamPath))
		return nil, bimrag.ErrNoContent
	case !isSuccess(resp.StatusCode):
		defer resp.Body.Close()
		err := parseHTTPError(resp)
		c.logger.Warn("stream request failed", zap.String("path", streamPath), zap.Error(err))
		return nil, err
	}

	c.logger.Debug("stream opened",
		zap.String("path", streamPath),
		zap.String("model", req.Model),
		zap.Int("top_k", req.TopK),
	)
	return newStream(ctx, resp.Body, c.logger), nil
}

// Search runs a batch retrieval request. Model "kure" selects the KURE
// index; any other value uses the default index.
func (c *Client) Search(ctx context.Context, req bimrag.SearchRequest) (bimrag.SearchResponse, error) {
	if err := req.Validate(); err != nil {
		return bimrag.SearchResponse{}, fmt.Errorf("ragapi: %w", err)
	}
	path := searchPath
	if req.Model == kureModel {
		path = searchKurePath
	}

	var out bimrag.SearchResponse
	if err := c.exchange(ctx, path, req, &out); err != nil {
		return bimrag.SearchResponse{}, err
	}
	if out.Results == nil {
		out.Results = []bimrag.Source{}
	}
	return out, nil
}

// Summarize runs a batch summarization request and returns the whole answer
// at once. A 204 response yields [bimrag.ErrNoContent].
func (c *Client) Summarize(ctx context.Context, req bimrag.SummarizeRequest) (bimrag.Summary, error) {
	if err := req.Validate(); err != nil {
		return bimrag.Summary{}, fmt.Errorf("ragapi: %w", err)
	}

	var out summaryResponse
	if err := c.exchange(ctx, summarizePath, req, &out); err != nil {
		return bimrag.Summary{}, err
	}

	text := out.Answer
	if out.Summary != nil {
		text = *out.Summary
	}
	sources := out.Sources
	if sources == nil {
		sources = []bimrag.Source{}
	}
	return bimrag.Summary{
		Prompt:       out.Prompt,
		Text:         text,
		Images:       out.Images,
		Links:        out.Links,
		Sources:      sources,
		TotalSources: out.TotalSources,
	}, nil
}

// Title asks the backend to summarize input as a conversation title.
func (c *Client) Title(ctx context.Context, input string) (string, error) {
	if strings.TrimSpace(input) == "" {
		return "", fmt.Errorf("ragapi: input must not be empty: %w", bimrag.ErrValidation)
	}
	var out titleResponse
	if err := c.exchange(ctx, titlePath, titleRequest{Input: input}, &out); err != nil {
		return "", err
	}
	return strings.TrimSpace(out.Title), nil
}

// exchange posts body as JSON and decodes a JSON response into out.
func (c *Client) exchange(ctx context.Context, path string, body, out any) error {
	resp, err := c.post(ctx, path, body, "application/json")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNoContent:
		return bimrag.ErrNoContent
	case !isSuccess(resp.StatusCode):
		err := parseHTTPError(resp)
		c.logger.Warn("request failed", zap.String("path", path), zap.Error(err))
		return err
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("ragapi: %w: %w", bimrag.ErrStreamAborted, ctxErr)
		}
		return fmt.Errorf("ragapi: decode %s response: %w", path, err)
	}
	c.logger.Debug("request finished", zap.String("path", path), zap.Int("status", resp.StatusCode))
	return nil
}

// post sends body as JSON. Transport failures are classified as aborts when
// the context was cancelled and as ErrTransport otherwise.
func (c *Client) post(ctx context.Context, path string, body any, accept string) (*http.Response, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("ragapi: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("ragapi: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", accept)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("ragapi: %w: %w", bimrag.ErrStreamAborted, ctxErr)
		}
		c.logger.Warn("transport failed", zap.String("path", path), zap.Error(err))
		return nil, fmt.Errorf("ragapi: %w: %w", bimrag.ErrTransport, err)
	}
	return resp, nil
}

func isSuccess(code int) bool {
	return code >= 200 && code < 300
}

// parseHTTPError builds a *bimrag.RequestError from a non-success response,
// using the server's error text when the body carries one.
func parseHTTPError(resp *http.Response) error {
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return fmt.Errorf("ragapi: %w", &bimrag.RequestError{StatusCode: resp.StatusCode})
	}
	return fmt.Errorf("ragapi: %w", &bimrag.RequestError{
		StatusCode: resp.StatusCode,
		Message:    errorMessage(body),
	})
}

func errorMessage(body []byte) string {
	var apiErr apiErrorResponse
	if err := json.Unmarshal(body, &apiErr); err != nil {
		return strings.TrimSpace(string(body))
	}
	if apiErr.Error != "" {
		return apiErr.Error
	}
	if len(apiErr.Detail) > 0 {
		var detail string
		if err := json.Unmarshal(apiErr.Detail, &detail); err == nil {
			return detail
		}
		return string(apiErr.Detail)
	}
	return strings.TrimSpace(string(body))
}
