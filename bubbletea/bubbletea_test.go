package bubbletea_test

import (
	"context"
	"testing"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/bimrag"
	bt "github.com/fwojciec/bimrag/bubbletea"
	"github.com/fwojciec/bimrag/mock"
	"github.com/stretchr/testify/require"
)

// maxPumpSteps bounds drain loops so a command that keeps rescheduling
// itself fails the test instead of hanging it.
const maxPumpSteps = 1000

// drain executes cmd and every command produced by delivering its messages,
// until none remain. Batches are flattened; spinner ticks are dropped.
func drain(t *testing.T, cmd tea.Cmd, deliver func(tea.Msg) tea.Cmd) {
	t.Helper()
	queue := []tea.Cmd{cmd}
	for steps := 0; len(queue) > 0; steps++ {
		require.Less(t, steps, maxPumpSteps, "commands did not settle")
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		switch msg := c().(type) {
		case nil, spinner.TickMsg:
		case tea.BatchMsg:
			queue = append(queue, msg...)
		default:
			queue = append(queue, deliver(msg))
		}
	}
}

// pumpPanel runs cmd against p until it settles.
func pumpPanel(t *testing.T, p bt.Panel, cmd tea.Cmd) {
	t.Helper()
	drain(t, cmd, func(msg tea.Msg) tea.Cmd {
		_, next := p.Update(msg)
		return next
	})
}

// pumpModel runs cmd against m until it settles and returns the final model.
func pumpModel(t *testing.T, m bt.Model, cmd tea.Cmd) bt.Model {
	t.Helper()
	drain(t, cmd, func(msg tea.Msg) tea.Cmd {
		var next tea.Cmd
		m, next = updateModel(t, m, msg)
		return next
	})
	return m
}

// updateModel sends a message and returns the updated Model.
func updateModel(t *testing.T, m bt.Model, msg tea.Msg) (bt.Model, tea.Cmd) {
	t.Helper()
	updated, cmd := m.Update(msg)
	model, ok := updated.(bt.Model)
	require.True(t, ok)
	return model, cmd
}

// initModel sends a WindowSizeMsg to initialize the viewport.
func initModel(t *testing.T, panels ...bt.Panel) bt.Model {
	t.Helper()
	m, _ := updateModel(t, bt.New(bimrag.DefaultTheme(), panels...), tea.WindowSizeMsg{Width: 80, Height: 24})
	return m
}

// streamerOf returns a Streamer whose every stream yields events.
func streamerOf(events ...bimrag.Event) *mock.Streamer {
	return &mock.Streamer{
		StreamFn: func(context.Context, bimrag.SummarizeRequest) (bimrag.Stream, error) {
			return mock.Events(events...), nil
		},
	}
}

func chatPanel(streamer bimrag.Streamer, opts ...bt.ChatOption) *bt.ChatPanel {
	return bt.NewChatPanel(bimrag.NewController(streamer), bimrag.DefaultTheme(), opts...)
}

func nopSearcher() *mock.Searcher {
	return &mock.Searcher{
		SearchFn: func(context.Context, bimrag.SearchRequest) (bimrag.SearchResponse, error) {
			return bimrag.SearchResponse{Results: []bimrag.Source{}}, nil
		},
	}
}

func emptyHistory() ([]bimrag.Conversation, error) { return nil, nil }
