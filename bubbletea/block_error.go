package bubbletea

import (
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/bimrag"
)

var _ Block = (*ErrorBlock)(nil)

// ErrorBlock renders a failed run.
type ErrorBlock struct {
	err    error
	styles Styles
}

// NewErrorBlock creates an ErrorBlock.
func NewErrorBlock(err error, styles Styles) *ErrorBlock {
	return &ErrorBlock{err: err, styles: styles}
}

func (b *ErrorBlock) Update(msg tea.Msg) (Block, tea.Cmd) {
	return b, nil
}

func (b *ErrorBlock) View(width int) string {
	content := b.styles.Error.Render("Error: " + describeError(b.err))
	return lipgloss.NewStyle().Width(width).Render(content)
}

// describeError turns the error taxonomy into a short user-facing line.
func describeError(err error) string {
	var reqErr *bimrag.RequestError
	switch {
	case errors.As(err, &reqErr):
		if reqErr.Message != "" {
			return fmt.Sprintf("the server rejected the request (HTTP %d): %s", reqErr.StatusCode, reqErr.Message)
		}
		return fmt.Sprintf("the server rejected the request (HTTP %d)", reqErr.StatusCode)
	case errors.Is(err, bimrag.ErrTransport):
		return "the connection to the server was lost"
	}
	return err.Error()
}
