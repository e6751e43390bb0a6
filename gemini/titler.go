package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fwojciec/bimrag"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

// Interface compliance check.
var _ bimrag.Titler = (*Titler)(nil)

// errEmptyTitle is returned when the model answered without usable text.
var errEmptyTitle = errors.New("empty title")

// Titler implements [bimrag.Titler] for the Google Gemini API.
type Titler struct {
	client  *genai.Client
	model   string
	baseURL string
	logger  *zap.Logger
}

// Option configures a [Titler].
type Option func(*Titler)

// WithModel sets the model ID. Default is gemini-2.5-flash.
func WithModel(model string) Option {
	return func(t *Titler) { t.model = model }
}

// WithBaseURL overrides the API endpoint. Useful for testing with httptest.
func WithBaseURL(url string) Option {
	return func(t *Titler) { t.baseURL = url }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(t *Titler) { t.logger = l }
}

// New creates a new Gemini [Titler] with the given API key and options.
func New(ctx context.Context, apiKey string, opts ...Option) (*Titler, error) {
	t := &Titler{
		model:  defaultModel,
		logger: zap.NewNop(),
	}
	for _, o := range opts {
		o(t)
	}

	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if t.baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: t.baseURL}
	}
	gc, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("gemini: %w", err)
	}
	t.client = gc
	return t, nil
}

// Title asks the model to summarize input as a conversation title.
func (t *Titler) Title(ctx context.Context, input string) (string, error) {
	if strings.TrimSpace(input) == "" {
		return "", fmt.Errorf("gemini: input must not be empty: %w", bimrag.ErrValidation)
	}

	resp, err := t.client.Models.GenerateContent(ctx, t.model, BuildContents(input), BuildConfig())
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", fmt.Errorf("gemini: %w: %w", bimrag.ErrStreamAborted, ctxErr)
		}
		t.logger.Warn("title generation failed", zap.String("model", t.model), zap.Error(err))
		return "", fmt.Errorf("gemini: %w", err)
	}

	title := CleanTitle(ResponseText(resp))
	if title == "" {
		return "", fmt.Errorf("gemini: %w", errEmptyTitle)
	}
	t.logger.Debug("title generated", zap.String("model", t.model), zap.String("title", title))
	return title, nil
}

// BuildContents wraps the question as a single user turn.
// Exported for testing.
func BuildContents(input string) []*genai.Content {
	return []*genai.Content{{
		Role:  "user",
		Parts: []*genai.Part{{Text: strings.TrimSpace(input)}},
	}}
}

// BuildConfig returns the generation config for title requests.
// Exported for testing.
func BuildConfig() *genai.GenerateContentConfig {
	temp := float32(temperature)
	return &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: systemPrompt}},
		},
		Temperature:     &temp,
		MaxOutputTokens: maxOutputTokens,
		CandidateCount:  1,
	}
}

// ResponseText concatenates the non-thought text parts of the first
// candidate.
// Exported for testing.
func ResponseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	c := resp.Candidates[0]
	if c == nil || c.Content == nil {
		return ""
	}
	var b strings.Builder
	for _, p := range c.Content.Parts {
		if p == nil || p.Thought {
			continue
		}
		b.WriteString(p.Text)
	}
	return b.String()
}

// CleanTitle keeps the first non-empty line, strips wrapping quotes and
// trailing punctuation and bounds the length.
// Exported for testing.
func CleanTitle(s string) string {
	var line string
	for l := range strings.SplitSeq(s, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			line = l
			break
		}
	}
	line = strings.TrimPrefix(line, "Title:")
	line = strings.Trim(line, " \t\"'`“”‘’")
	line = strings.TrimRight(line, ".。!?")
	return bimrag.TruncateTitle(line, maxTitleLength)
}
