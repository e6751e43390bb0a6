package main

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/fwojciec/bimrag"
	"github.com/fwojciec/bimrag/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func controllerOf(events ...bimrag.Event) *bimrag.Controller {
	return bimrag.NewController(&mock.Streamer{
		StreamFn: func(context.Context, bimrag.SummarizeRequest) (bimrag.Stream, error) {
			return mock.Events(events...), nil
		},
	})
}

func TestStreamQuery(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		events []bimrag.Event
		want   string
	}{
		{
			name: "deltas then sources",
			events: []bimrag.Event{
				bimrag.EventDelta{Text: "벽 도구를 "},
				bimrag.EventDelta{Text: "사용합니다 [1]"},
				bimrag.EventDone{Sources: []bimrag.Source{
					{DocID: "a", Title: "벽 만들기", VideoURL: "https://v/a", VideoLabel: "02:10"},
					{DocID: "a", Title: "duplicate"},
					{DocID: "b"},
				}},
			},
			want: "벽 도구를 사용합니다 [1]\n\nSources:\n[1] 벽 만들기 (02:10: https://v/a)\n[2] b\n",
		},
		{
			name:   "final text only",
			events: []bimrag.Event{bimrag.EventDone{Text: "answer"}},
			want:   "answer\n",
		},
		{
			name: "final text matching deltas printed once",
			events: []bimrag.Event{
				bimrag.EventDelta{Text: "same"},
				bimrag.EventDone{Text: "same"},
			},
			want: "same\n",
		},
		{
			name: "differing final text appended",
			events: []bimrag.Event{
				bimrag.EventDelta{Text: "draft"},
				bimrag.EventDone{Text: "final"},
			},
			want: "draft\n\nfinal\n",
		},
		{
			name:   "end of data without done",
			events: []bimrag.Event{bimrag.EventDelta{Text: "partial"}},
			want:   "partial\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var buf bytes.Buffer
			err := streamQuery(context.Background(), controllerOf(tt.events...), bimrag.SummarizeRequest{Query: "q"}, &buf)
			require.NoError(t, err)
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestStreamQuery_NoContent(t *testing.T) {
	t.Parallel()

	ctrl := bimrag.NewController(&mock.Streamer{
		StreamFn: func(context.Context, bimrag.SummarizeRequest) (bimrag.Stream, error) {
			return nil, bimrag.ErrNoContent
		},
	})
	var buf bytes.Buffer
	require.NoError(t, streamQuery(context.Background(), ctrl, bimrag.SummarizeRequest{Query: "q"}, &buf))
	assert.Equal(t, "No relevant documents were found for this question.\n", buf.String())
}

func TestStreamQuery_ErrorAfterPartialText(t *testing.T) {
	t.Parallel()

	sent := false
	ctrl := bimrag.NewController(&mock.Streamer{
		StreamFn: func(context.Context, bimrag.SummarizeRequest) (bimrag.Stream, error) {
			return &mock.Stream{NextFn: func() (bimrag.Event, error) {
				if !sent {
					sent = true
					return bimrag.EventDelta{Text: "part"}, nil
				}
				return nil, bimrag.ErrTransport
			}}, nil
		},
	})
	var buf bytes.Buffer
	err := streamQuery(context.Background(), ctrl, bimrag.SummarizeRequest{Query: "q"}, &buf)
	assert.ErrorIs(t, err, bimrag.ErrTransport)
	assert.Equal(t, "part\n", buf.String())
}

func TestRunBatch(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "walls/create.txt", "  벽은 어떻게 만드나요?\n")
	writeFile(t, dir, "walls/nested/types.txt", "벽 타입 편집")
	writeFile(t, dir, "notes.md", "ignored")

	var queries []string
	ctrl := bimrag.NewController(&mock.Streamer{
		StreamFn: func(_ context.Context, req bimrag.SummarizeRequest) (bimrag.Stream, error) {
			queries = append(queries, req.Query)
			return mock.Events(bimrag.EventDone{Text: "A:" + req.Query}), nil
		},
	})

	var buf bytes.Buffer
	cfg := config{TopK: 3}
	err := runBatch(context.Background(), streamWith(ctrl), cfg, filepath.Join(dir, "**", "*.txt"), &buf)
	require.NoError(t, err)

	assert.Equal(t, []string{"벽은 어떻게 만드나요?", "벽 타입 편집"}, queries)
	out := buf.String()
	assert.Contains(t, out, "## "+filepath.Join(dir, "walls", "create.txt")+"\n\nA:벽은 어떻게 만드나요?\n")
	assert.Contains(t, out, "A:벽 타입 편집\n")
	assert.NotContains(t, out, "notes.md")
}

func TestRunBatch_ContinuesAfterFailure(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "first")
	writeFile(t, dir, "b.txt", "second")

	ctrl := bimrag.NewController(&mock.Streamer{
		StreamFn: func(_ context.Context, req bimrag.SummarizeRequest) (bimrag.Stream, error) {
			if req.Query == "first" {
				return nil, &bimrag.RequestError{StatusCode: 500, Message: "boom"}
			}
			return mock.Events(bimrag.EventDone{Text: "ok"}), nil
		},
	})

	var buf bytes.Buffer
	err := runBatch(context.Background(), streamWith(ctrl), config{}, filepath.Join(dir, "*.txt"), &buf)

	var reqErr *bimrag.RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Contains(t, err.Error(), "a.txt")
	assert.Contains(t, buf.String(), "error: HTTP 500: boom")
	assert.Contains(t, buf.String(), "ok\n")
}

func TestRunBatch_StopsOnCancel(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "first")
	writeFile(t, dir, "b.txt", "second")

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	ctrl := bimrag.NewController(&mock.Streamer{
		StreamFn: func(context.Context, bimrag.SummarizeRequest) (bimrag.Stream, error) {
			calls++
			cancel()
			return mock.Events(bimrag.EventDone{Text: "late"}), nil
		},
	})

	err := runBatch(ctx, streamWith(ctrl), config{}, filepath.Join(dir, "*.txt"), &bytes.Buffer{})
	assert.ErrorIs(t, err, bimrag.ErrStreamAborted)
	assert.Equal(t, 1, calls)
}

func TestRunBatch_NoMatches(t *testing.T) {
	t.Parallel()

	err := runBatch(context.Background(), streamWith(controllerOf()), config{}, filepath.Join(t.TempDir(), "*.txt"), &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no files match")
}

func TestRunBatch_BadPattern(t *testing.T) {
	t.Parallel()

	err := runBatch(context.Background(), streamWith(controllerOf()), config{}, "[", &bytes.Buffer{})
	require.Error(t, err)
	assert.False(t, errors.Is(err, bimrag.ErrStreamAborted))
}

func TestStreamQuery_SanitizesOutput(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	err := streamQuery(context.Background(), controllerOf(
		bimrag.EventDelta{Text: "a\x1b[2Jb"},
		bimrag.EventDone{Sources: []bimrag.Source{{DocID: "x", Title: "t\x07"}}},
	), bimrag.SummarizeRequest{Query: "q"}, &buf)
	require.NoError(t, err)
	assert.Equal(t, "ab\n\nSources:\n[1] t\n", buf.String())
}

func TestSummarizeQuery(t *testing.T) {
	t.Parallel()

	var got bimrag.SummarizeRequest
	summarizer := &mock.Summarizer{SummarizeFn: func(_ context.Context, req bimrag.SummarizeRequest) (bimrag.Summary, error) {
		got = req
		return bimrag.Summary{
			Text:    "파일 > 내보내기 > IFC [1]",
			Links:   []string{"https://example.com/ifc", ""},
			Images:  []bimrag.Image{{ID: "i1", FilePath: "/img/export.png"}, {ID: "i2"}},
			Sources: []bimrag.Source{{DocID: "e", Title: "IFC 내보내기"}},
		}, nil
	}}

	var buf bytes.Buffer
	err := summarizeQuery(context.Background(), summarizer, bimrag.SummarizeRequest{Query: "IFC로 내보내려면?"}, &buf)
	require.NoError(t, err)

	assert.Equal(t, "IFC로 내보내려면?", got.Query)
	assert.Equal(t, "파일 > 내보내기 > IFC [1]\n"+
		"\nLinks:\n- https://example.com/ifc\n"+
		"\nFigures:\n- /img/export.png\n- i2\n"+
		"\nSources:\n[1] IFC 내보내기\n", buf.String())
}

func TestSummarizeQuery_NoContent(t *testing.T) {
	t.Parallel()

	summarizer := &mock.Summarizer{SummarizeFn: func(context.Context, bimrag.SummarizeRequest) (bimrag.Summary, error) {
		return bimrag.Summary{}, bimrag.ErrNoContent
	}}
	var buf bytes.Buffer
	require.NoError(t, summarizeQuery(context.Background(), summarizer, bimrag.SummarizeRequest{Query: "q"}, &buf))
	assert.Equal(t, "No relevant documents were found for this question.\n", buf.String())
}

func TestSummarizeQuery_Cancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	summarizer := &mock.Summarizer{SummarizeFn: func(ctx context.Context, _ bimrag.SummarizeRequest) (bimrag.Summary, error) {
		return bimrag.Summary{}, ctx.Err()
	}}
	err := summarizeQuery(ctx, summarizer, bimrag.SummarizeRequest{Query: "q"}, &bytes.Buffer{})
	assert.ErrorIs(t, err, bimrag.ErrStreamAborted)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunBatch_Summarizer(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "첫 질문")
	summarizer := &mock.Summarizer{SummarizeFn: func(_ context.Context, req bimrag.SummarizeRequest) (bimrag.Summary, error) {
		return bimrag.Summary{Text: "A:" + req.Query}, nil
	}}

	var buf bytes.Buffer
	err := runBatch(context.Background(), summarizeWith(summarizer), config{}, filepath.Join(dir, "*.txt"), &buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "A:첫 질문\n")
}
