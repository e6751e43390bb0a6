package bubbletea

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/bimrag"
)

var _ Panel = (*SearchPanel)(nil)

// SearchPanel lists the documents a batch retrieval returns for a query,
// without generating an answer.
type SearchPanel struct {
	searcher bimrag.Searcher
	request  bimrag.SearchRequest
	styles   Styles
	spinner  spinner.Model

	query   *QueryBlock
	resp    bimrag.SearchResponse
	err     error
	done    bool
	running bool

	run    int
	cancel context.CancelFunc
}

// NewSearchPanel creates a SearchPanel. The request template supplies TopK,
// Model and Filters; its Messages are replaced by each submitted query.
func NewSearchPanel(searcher bimrag.Searcher, req bimrag.SearchRequest, theme bimrag.Theme) *SearchPanel {
	styles := NewStyles(theme)
	return &SearchPanel{
		searcher: searcher,
		request:  req,
		styles:   styles,
		spinner:  spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(styles.Accent)),
	}
}

func (p *SearchPanel) Name() string { return "Search" }

func (p *SearchPanel) Running() bool { return p.running }

// Results returns the documents of the last finished search.
func (p *SearchPanel) Results() []bimrag.Source { return p.resp.Results }

// Err returns the error of the last search, if any.
func (p *SearchPanel) Err() error { return p.err }

func (p *SearchPanel) Search(query string) tea.Cmd {
	p.Stop()
	p.run++
	p.query = NewQueryBlock(query, p.styles)
	p.resp = bimrag.SearchResponse{}
	p.err = nil
	p.done = false
	p.running = true

	req := p.request
	req.Messages = []bimrag.Message{bimrag.UserMessage(query)}

	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	return tea.Batch(runSearch(ctx, p.searcher, req, p.run), p.spinner.Tick)
}

func (p *SearchPanel) Stop() {
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	p.running = false
}

func (p *SearchPanel) Update(msg tea.Msg) (Panel, tea.Cmd) {
	switch msg := msg.(type) {
	case SearchDoneMsg:
		if msg.Run != p.run || !p.running {
			return p, nil
		}
		p.Stop()
		p.done = true
		switch {
		case errors.Is(msg.Err, bimrag.ErrStreamAborted):
			p.done = false
		case msg.Err != nil:
			p.err = msg.Err
		default:
			p.resp = msg.Response
		}
		return p, nil

	case spinner.TickMsg:
		if !p.running {
			return p, nil
		}
		var cmd tea.Cmd
		p.spinner, cmd = p.spinner.Update(msg)
		return p, cmd
	}
	return p, nil
}

func (p *SearchPanel) View(width int) string {
	if p.query == nil {
		return p.styles.Muted.Render("Search the document index. Matching documents are listed without an answer.")
	}
	parts := []string{p.query.View(width)}
	switch {
	case p.err != nil:
		parts = append(parts, NewErrorBlock(p.err, p.styles).View(width))
	case p.done && len(p.resp.Results) == 0:
		parts = append(parts, p.styles.Muted.Render("No matching documents."))
	case p.done:
		lines := make([]string, 0, len(p.resp.Results))
		for i, s := range bimrag.DedupSources(p.resp.Results) {
			lines = append(lines, renderSource(i+1, s, width, p.styles))
		}
		parts = append(parts, strings.Join(lines, "\n"))
	}
	return strings.Join(parts, "\n\n")
}

func (p *SearchPanel) Status() string {
	switch {
	case p.running:
		return p.spinner.View() + " " + p.styles.Muted.Render("Searching... Esc to stop")
	case p.err != nil:
		return p.styles.Error.Render("Search failed. Enter to retry")
	case p.done:
		return p.styles.Success.Render("Done") +
			p.styles.Muted.Render(fmt.Sprintf(" · %d of %d documents", len(p.resp.Results), p.resp.TotalCount))
	}
	return p.styles.Muted.Render("Enter to search, Tab to switch panel, Ctrl+C to quit")
}

func runSearch(ctx context.Context, searcher bimrag.Searcher, req bimrag.SearchRequest, run int) tea.Cmd {
	return func() tea.Msg {
		resp, err := searcher.Search(ctx, req)
		if err != nil && ctx.Err() != nil {
			err = fmt.Errorf("%w: %w", bimrag.ErrStreamAborted, ctx.Err())
		}
		return SearchDoneMsg{Run: run, Response: resp, Err: err}
	}
}
