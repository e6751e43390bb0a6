// Package bubbletea provides a Bubble Tea TUI for the BIM RAG assistant.
//
// The root [Model] hosts a set of [Panel]s and drives whichever one is
// active: the chat panel streams a summarized answer with citations, the
// search panel lists batch retrieval hits and the history panel browses
// saved answers.
package bubbletea

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/bimrag"
)

// SaveFunc persists a finished conversation.
type SaveFunc func(bimrag.Conversation) error

// LoadFunc reads saved conversations, newest first.
type LoadFunc func() ([]bimrag.Conversation, error)

// Run creates and runs the Bubble Tea TUI program. It blocks until the program
// exits. The context is used for graceful shutdown; when cancelled, the
// program quits.
func Run(ctx context.Context, m Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen())
	go func() {
		<-ctx.Done()
		p.Quit()
	}()
	_, err := p.Run()
	return err
}

// StreamEventMsg wraps a streaming event for delivery to the chat panel.
// Run identifies the query it belongs to; events of superseded runs are
// dropped.
type StreamEventMsg struct {
	Run   int
	Event bimrag.Event
}

// StreamDoneMsg signals that a streaming run has completed.
type StreamDoneMsg struct {
	Run    int
	Result bimrag.Result
	Err    error
}

// SearchDoneMsg carries the outcome of a batch search run.
type SearchDoneMsg struct {
	Run      int
	Response bimrag.SearchResponse
	Err      error
}

// SummaryDoneMsg carries the outcome of a batch summarization run.
type SummaryDoneMsg struct {
	Run     int
	Summary bimrag.Summary
	Err     error
}

// HistorySavedMsg reports the outcome of saving a finished answer. Run is
// the chat run that produced it.
type HistorySavedMsg struct {
	Run          int
	Conversation bimrag.Conversation
	Err          error
}

// HistoryLoadedMsg carries saved conversations matching a history query.
type HistoryLoadedMsg struct {
	Run           int
	Conversations []bimrag.Conversation
	Err           error
}
