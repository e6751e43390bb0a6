package bimrag

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rivo/uniseg"
)

// Session is the run-scoped aggregate for one query in one panel: the
// accumulated answer text, the running citation list and the run status.
//
// Session has a single writer. The panel that owns it applies deltas and the
// final Result in order; callbacks never touch it directly. Once Finish is
// called the text is no longer appended to until the next Reset.
type Session struct {
	Query     string
	Sources   []Source
	Running   bool
	NoContent bool
	Err       error

	text     string
	finished bool
}

// Reset clears the session for a new query and marks it running.
func (s *Session) Reset(query string) {
	*s = Session{Query: query, Running: true}
}

// AppendDelta appends an incremental text fragment. It is ignored once the
// session is finished.
func (s *Session) AppendDelta(delta string) {
	if s.finished {
		return
	}
	s.text += delta
}

// SetSources replaces the running citation list.
func (s *Session) SetSources(sources []Source) {
	if s.finished {
		return
	}
	s.Sources = sources
}

// Finish applies the final result of a run. A non-empty final text replaces
// the accumulated deltas; final sources replace the running list when the
// result carries any.
func (s *Session) Finish(r Result) {
	if s.finished {
		return
	}
	if r.Text != "" {
		s.text = r.Text
	}
	if len(r.Sources) > 0 {
		s.Sources = r.Sources
	}
	s.NoContent = r.NoContent
	s.Running = false
	s.finished = true
}

// Fail records a terminal error and stops the run. Partial text is kept.
func (s *Session) Fail(err error) {
	s.Err = err
	s.Running = false
	s.finished = true
}

// Stop marks the run as no longer running without recording an error.
func (s *Session) Stop() {
	s.Running = false
	s.finished = true
}

// Text returns the accumulated answer text.
func (s Session) Text() string {
	return s.text
}

// Conversation is a persisted history entry for one answered query.
type Conversation struct {
	ID        string
	Title     string
	Query     string
	Answer    string
	Sources   []Source
	CreatedAt time.Time
}

// NewConversation creates a history entry from a finished session.
func NewConversation(title string, s *Session) Conversation {
	return Conversation{
		ID:        uuid.NewString(),
		Title:     title,
		Query:     s.Query,
		Answer:    s.Text(),
		Sources:   DedupSources(s.Sources),
		CreatedAt: time.Now(),
	}
}

// TruncateTitle shortens title to at most n user-perceived characters,
// appending an ellipsis when something was cut. Grapheme clusters (Hangul
// syllables, emoji sequences) are never split.
func TruncateTitle(title string, n int) string {
	title = strings.TrimSpace(title)
	if n <= 0 || uniseg.GraphemeClusterCount(title) <= n {
		return title
	}
	var b strings.Builder
	g := uniseg.NewGraphemes(title)
	for i := 0; i < n-1 && g.Next(); i++ {
		b.WriteString(g.Str())
	}
	return strings.TrimRight(b.String(), " ") + "…"
}
