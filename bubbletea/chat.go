package bubbletea

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/bimrag"
)

var _ Panel = (*ChatPanel)(nil)

const (
	maxTitleLength = 40
	titleTimeout   = 10 * time.Second
)

// ChatPanel streams a summarized answer for each query through a
// bimrag.Controller and renders it with its citations.
type ChatPanel struct {
	ctrl       *bimrag.Controller
	summarizer bimrag.Summarizer
	request    bimrag.SummarizeRequest
	titler  bimrag.Titler
	save    SaveFunc
	theme   bimrag.Theme
	styles  Styles
	spinner spinner.Model

	session bimrag.Session
	query   *QueryBlock
	answer  *AnswerBlock
	sources *SourcesBlock
	links   *LinksBlock
	saved   string
	saveErr error

	run     int
	cancel  context.CancelFunc
	eventCh chan bimrag.Event
	doneCh  chan StreamDoneMsg
}

// ChatOption configures a ChatPanel.
type ChatOption func(*ChatPanel)

// WithRequest sets the request template. Its Query is replaced by each
// submitted query.
func WithRequest(req bimrag.SummarizeRequest) ChatOption {
	return func(p *ChatPanel) { p.request = req }
}

// WithHistory saves every finished answer with save, titled by titler.
// A nil titler titles conversations with the truncated query.
func WithHistory(titler bimrag.Titler, save SaveFunc) ChatOption {
	return func(p *ChatPanel) {
		p.titler = titler
		p.save = save
	}
}

// WithSummarizer answers each query with one batch request to s instead of
// streaming it. Batch answers also list the links and figures the backend
// attached.
func WithSummarizer(s bimrag.Summarizer) ChatOption {
	return func(p *ChatPanel) { p.summarizer = s }
}

// NewChatPanel creates a ChatPanel that runs queries through ctrl.
func NewChatPanel(ctrl *bimrag.Controller, theme bimrag.Theme, opts ...ChatOption) *ChatPanel {
	styles := NewStyles(theme)
	p := &ChatPanel{
		ctrl:    ctrl,
		theme:   theme,
		styles:  styles,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(styles.Accent)),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *ChatPanel) Name() string { return "Chat" }

// Running reports whether a stream is in flight.
func (p *ChatPanel) Running() bool { return p.session.Running }

// Session returns a copy of the current run's session.
func (p *ChatPanel) Session() bimrag.Session { return p.session }

// Search stops any in-flight run and starts answering query.
func (p *ChatPanel) Search(query string) tea.Cmd {
	p.Stop()
	p.run++
	p.session.Reset(query)
	p.query = NewQueryBlock(query, p.styles)
	p.answer = NewAnswerBlock(p.theme)
	p.sources = NewSourcesBlock(p.styles)
	p.links = NewLinksBlock(p.styles)
	p.saved = ""
	p.saveErr = nil

	req := p.request
	req.Query = query

	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	if p.summarizer != nil {
		return tea.Batch(runSummarize(ctx, p.summarizer, req, p.run), p.spinner.Tick)
	}
	p.eventCh = make(chan bimrag.Event, 256)
	p.doneCh = make(chan StreamDoneMsg, 1)

	return tea.Batch(
		startStream(ctx, p.ctrl, req, p.run, p.eventCh, p.doneCh),
		listenForEvent(p.run, p.eventCh, p.doneCh),
		p.spinner.Tick,
	)
}

// Stop cancels the in-flight run. Text received so far stays on screen.
func (p *ChatPanel) Stop() {
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	if p.session.Running {
		p.session.Stop()
	}
}

func (p *ChatPanel) Update(msg tea.Msg) (Panel, tea.Cmd) {
	switch msg := msg.(type) {
	case StreamEventMsg:
		if msg.Run != p.run {
			return p, nil
		}
		switch e := msg.Event.(type) {
		case bimrag.EventDelta:
			p.session.AppendDelta(e.Text)
			p.answer.Set(p.session.Text())
		case bimrag.EventSources:
			p.session.SetSources(e.Sources)
			p.sources.Set(p.session.Sources)
		}
		return p, listenForEvent(p.run, p.eventCh, p.doneCh)

	case StreamDoneMsg:
		if msg.Run != p.run {
			return p, nil
		}
		if p.cancel != nil {
			p.cancel()
			p.cancel = nil
		}
		if !p.session.Running {
			// Stopped by the user; whatever arrives late is discarded.
			return p, nil
		}
		switch {
		case errors.Is(msg.Err, bimrag.ErrStreamAborted):
			p.session.Stop()
		case msg.Err != nil:
			p.session.Fail(msg.Err)
		default:
			p.session.Finish(msg.Result)
			p.answer.Set(p.session.Text())
			p.sources.Set(p.session.Sources)
			return p, p.saveHistory()
		}
		return p, nil

	case SummaryDoneMsg:
		if msg.Run != p.run {
			return p, nil
		}
		if p.cancel != nil {
			p.cancel()
			p.cancel = nil
		}
		if !p.session.Running {
			return p, nil
		}
		switch {
		case errors.Is(msg.Err, bimrag.ErrNoContent):
			p.session.Finish(bimrag.Result{Sources: []bimrag.Source{}, NoContent: true})
		case errors.Is(msg.Err, bimrag.ErrStreamAborted):
			p.session.Stop()
		case msg.Err != nil:
			p.session.Fail(msg.Err)
		default:
			p.session.Finish(bimrag.Result{Text: msg.Summary.Text, Sources: msg.Summary.Sources})
			p.answer.Set(p.session.Text())
			p.sources.Set(p.session.Sources)
			p.links.Set(msg.Summary.Links, msg.Summary.Images)
			return p, p.saveHistory()
		}
		return p, nil

	case HistorySavedMsg:
		if msg.Run != p.run {
			return p, nil
		}
		p.saved = msg.Conversation.Title
		p.saveErr = msg.Err
		return p, nil

	case ToggleMsg:
		if p.sources != nil {
			p.sources.Update(msg)
		}
		return p, nil

	case spinner.TickMsg:
		if !p.session.Running {
			return p, nil
		}
		var cmd tea.Cmd
		p.spinner, cmd = p.spinner.Update(msg)
		return p, cmd
	}
	return p, nil
}

func (p *ChatPanel) View(width int) string {
	if p.query == nil {
		return p.styles.Muted.Render("Ask a question about BIM. The answer streams here with its sources.")
	}
	parts := []string{p.query.View(width)}
	if p.answer.Text() != "" {
		parts = append(parts, p.answer.View(width))
	}
	if p.session.NoContent {
		parts = append(parts, p.styles.Muted.Render("No relevant documents were found for this question."))
	}
	if p.session.Err != nil {
		parts = append(parts, NewErrorBlock(p.session.Err, p.styles).View(width))
	}
	if p.links.Len() > 0 {
		parts = append(parts, p.links.View(width))
	}
	if p.sources.Len() > 0 {
		parts = append(parts, p.sources.View(width))
	}
	return strings.Join(parts, "\n\n")
}

func (p *ChatPanel) Status() string {
	switch {
	case p.session.Running:
		return p.spinner.View() + " " + p.styles.Muted.Render("Generating answer... Esc to stop")
	case p.session.Err != nil:
		return p.styles.Error.Render("Failed. Enter to ask again")
	case p.query == nil:
		return p.styles.Muted.Render("Enter to ask, Tab to switch panel, Ctrl+C to quit")
	case p.session.NoContent:
		return p.styles.Muted.Render("No answer. Enter to ask again")
	}
	status := p.styles.Success.Render("Done")
	if p.sources.Len() > 0 {
		status += p.styles.Muted.Render(fmt.Sprintf(" · %d sources, Ctrl+O to fold", p.sources.Len()))
	}
	switch {
	case p.saveErr != nil:
		status += " " + p.styles.Error.Render("(history not saved: "+p.saveErr.Error()+")")
	case p.saved != "":
		status += p.styles.Muted.Render(" · saved as " + p.saved)
	}
	return status
}

// saveHistory titles and persists the finished session off the UI loop.
func (p *ChatPanel) saveHistory() tea.Cmd {
	if p.save == nil || p.session.NoContent || strings.TrimSpace(bimrag.Sanitize(p.session.Text())) == "" {
		return nil
	}
	s := p.session
	run, titler, save := p.run, p.titler, p.save
	return func() tea.Msg {
		conv := bimrag.NewConversation(titleFor(titler, s.Query), &s)
		conv.Answer = bimrag.Sanitize(conv.Answer)
		return HistorySavedMsg{Run: run, Conversation: conv, Err: save(conv)}
	}
}

// titleFor asks titler for a title and falls back to the query itself.
func titleFor(titler bimrag.Titler, query string) string {
	if titler != nil {
		ctx, cancel := context.WithTimeout(context.Background(), titleTimeout)
		defer cancel()
		if title, err := titler.Title(ctx, query); err == nil && strings.TrimSpace(title) != "" {
			return bimrag.TruncateTitle(title, maxTitleLength)
		}
	}
	return bimrag.TruncateTitle(query, maxTitleLength)
}

// startStream runs the controller in a goroutine and signals completion.
// Deltas and source lists are forwarded as events; the final result travels
// on doneCh.
func startStream(ctx context.Context, ctrl *bimrag.Controller, req bimrag.SummarizeRequest, run int, eventCh chan<- bimrag.Event, doneCh chan<- StreamDoneMsg) tea.Cmd {
	return func() tea.Msg {
		send := func(e bimrag.Event) {
			select {
			case eventCh <- e:
			case <-ctx.Done():
			}
		}
		result, err := ctrl.Run(ctx, req, bimrag.Callbacks{
			OnDelta:   func(delta string) { send(bimrag.EventDelta{Text: delta}) },
			OnSources: func(sources []bimrag.Source) { send(bimrag.EventSources{Sources: sources}) },
		})
		close(eventCh)
		doneCh <- StreamDoneMsg{Run: run, Result: result, Err: err}
		return nil
	}
}

// runSummarize answers req with a single batch request.
func runSummarize(ctx context.Context, s bimrag.Summarizer, req bimrag.SummarizeRequest, run int) tea.Cmd {
	return func() tea.Msg {
		summary, err := s.Summarize(ctx, req)
		if err != nil && ctx.Err() != nil && !errors.Is(err, bimrag.ErrStreamAborted) {
			err = fmt.Errorf("%w: %w", bimrag.ErrStreamAborted, ctx.Err())
		}
		return SummaryDoneMsg{Run: run, Summary: summary, Err: err}
	}
}

// listenForEvent waits for the next event from the channel.
// When the channel closes, it reads the outcome from doneCh.
func listenForEvent(run int, ch <-chan bimrag.Event, doneCh <-chan StreamDoneMsg) tea.Cmd {
	return func() tea.Msg {
		evt, ok := <-ch
		if !ok {
			return <-doneCh
		}
		return StreamEventMsg{Run: run, Event: evt}
	}
}
