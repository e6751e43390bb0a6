package ragapi_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fwojciec/bimrag"
	"github.com/fwojciec/bimrag/ragapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sseServer returns a server that writes each chunk as a separate flushed
// write of a 200 text/event-stream response.
func sseServer(t *testing.T, chunks ...string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		flusher := w.(http.Flusher)
		for _, c := range chunks {
			_, _ = w.Write([]byte(c))
			flusher.Flush()
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func openStream(t *testing.T, ctx context.Context, srv *httptest.Server) bimrag.Stream {
	t.Helper()
	client := ragapi.New(ragapi.WithBaseURL(srv.URL))
	s, err := client.Stream(ctx, bimrag.SummarizeRequest{Query: "BIM이란?"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func drain(t *testing.T, s bimrag.Stream) []bimrag.Event {
	t.Helper()
	var events []bimrag.Event
	for {
		evt, err := s.Next()
		if err == io.EOF {
			return events
		}
		require.NoError(t, err)
		events = append(events, evt)
	}
}

func TestStream_Events(t *testing.T) {
	t.Parallel()

	srv := sseServer(t,
		"data: {\"delta\":\"A\"}\n\ndata: {\"delta\":\"B\"}\n\n",
		"event: sources\ndata: {\"sources\":[{\"doc_id\":\"d1\",\"title\":\"개요\"}]}\n\n",
		"data: {\"delta\":\"C\"}\n\nevent: done\ndata: {\"text\":\"ABC\",\"sources\":[]}\n\n",
	)
	s := openStream(t, context.Background(), srv)

	assert.Equal(t, []bimrag.Event{
		bimrag.EventDelta{Text: "A"},
		bimrag.EventDelta{Text: "B"},
		bimrag.EventSources{Sources: []bimrag.Source{{DocID: "d1", Title: "개요"}}},
		bimrag.EventDelta{Text: "C"},
		bimrag.EventDone{Text: "ABC", Sources: []bimrag.Source{}},
	}, drain(t, s))
}

func TestStream_SplitAcrossWrites(t *testing.T) {
	t.Parallel()

	// "모델" is split inside its first character and the delimiter is split
	// between writes.
	payload := "data: {\"delta\":\"모델\"}\n\nevent: done\ndata: {\"text\":\"모델\"}\n\n"
	srv := sseServer(t, payload[:17], payload[17:25], payload[25:26], payload[26:])
	s := openStream(t, context.Background(), srv)

	assert.Equal(t, []bimrag.Event{
		bimrag.EventDelta{Text: "모델"},
		bimrag.EventDone{Text: "모델", Sources: []bimrag.Source{}},
	}, drain(t, s))
}

func TestStream_SkipsMalformedFrames(t *testing.T) {
	t.Parallel()

	srv := sseServer(t,
		"event: sources\ndata: {not json\n\n",
		"data: {\"delta\":\"ok\"}\n\n",
		"event: done\ndata: [1,2]\n\n",
		"data: {\"delta\":\"still\"}\n\n",
	)
	s := openStream(t, context.Background(), srv)

	assert.Equal(t, []bimrag.Event{
		bimrag.EventDelta{Text: "ok"},
		bimrag.EventDelta{Text: "still"},
	}, drain(t, s))
}

func TestStream_DoneStopsReading(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("data: {\"delta\":\"X\"}\n\nevent: done\ndata: {\"text\":\"X\"}\n\n"))
		w.(http.Flusher).Flush()
		// Hold the connection open; a client that kept reading would block.
		select {
		case <-release:
		case <-r.Context().Done():
		}
		_, _ = w.Write([]byte("data: {\"delta\":\"Y\"}\n\n"))
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(release) })

	s := openStream(t, context.Background(), srv)

	evt, err := s.Next()
	require.NoError(t, err)
	assert.Equal(t, bimrag.EventDelta{Text: "X"}, evt)

	evt, err = s.Next()
	require.NoError(t, err)
	assert.Equal(t, bimrag.EventDone{Text: "X", Sources: []bimrag.Source{}}, evt)

	_, err = s.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestStream_EOFWithoutDone(t *testing.T) {
	t.Parallel()

	srv := sseServer(t, "data: {\"delta\":\"A\"}\n\ndata: {\"delta\":\"unterminated\"}")
	s := openStream(t, context.Background(), srv)

	assert.Equal(t, []bimrag.Event{bimrag.EventDelta{Text: "A"}}, drain(t, s))

	// EOF is stable.
	_, err := s.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestStream_NoContent(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(srv.Close)

	client := ragapi.New(ragapi.WithBaseURL(srv.URL))
	s, err := client.Stream(context.Background(), bimrag.SummarizeRequest{Query: "없는 문서"})
	assert.Nil(t, s)
	assert.ErrorIs(t, err, bimrag.ErrNoContent)
}

func TestStream_HTTPError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		status  int
		body    string
		message string
	}{
		{name: "error field", status: http.StatusInternalServerError, body: `{"error":"index unavailable"}`, message: "index unavailable"},
		{name: "detail string", status: http.StatusUnprocessableEntity, body: `{"detail":"query too long"}`, message: "query too long"},
		{name: "detail object", status: http.StatusBadRequest, body: `{"detail":[{"loc":["query"]}]}`, message: `[{"loc":["query"]}]`},
		{name: "plain text", status: http.StatusBadGateway, body: "bad gateway\n", message: "bad gateway"},
		{name: "empty body", status: http.StatusServiceUnavailable, body: "", message: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			t.Cleanup(srv.Close)

			client := ragapi.New(ragapi.WithBaseURL(srv.URL))
			_, err := client.Stream(context.Background(), bimrag.SummarizeRequest{Query: "q"})
			require.Error(t, err)
			assert.ErrorIs(t, err, bimrag.ErrStreamRequestFailed)

			var reqErr *bimrag.RequestError
			require.ErrorAs(t, err, &reqErr)
			assert.Equal(t, tt.status, reqErr.StatusCode)
			assert.Equal(t, tt.message, reqErr.Message)
		})
	}
}

func TestStream_ConnectionRefused(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	client := ragapi.New(ragapi.WithBaseURL(url))
	_, err := client.Stream(context.Background(), bimrag.SummarizeRequest{Query: "q"})
	assert.ErrorIs(t, err, bimrag.ErrTransport)
	assert.ErrorIs(t, err, bimrag.ErrStreamRequestFailed)
	assert.NotErrorIs(t, err, bimrag.ErrStreamAborted)
}

func TestStream_DroppedConnection(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("data: {\"delta\":\"partial\"}\n\n"))
		w.(http.Flusher).Flush()
		panic(http.ErrAbortHandler)
	}))
	t.Cleanup(srv.Close)

	s := openStream(t, context.Background(), srv)

	evt, err := s.Next()
	require.NoError(t, err)
	assert.Equal(t, bimrag.EventDelta{Text: "partial"}, evt)

	_, err = s.Next()
	assert.ErrorIs(t, err, bimrag.ErrTransport)
	assert.NotErrorIs(t, err, bimrag.ErrStreamAborted)

	// Errors are sticky.
	_, err2 := s.Next()
	assert.Equal(t, err, err2)
}

func TestStream_ContextCancellation(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("data: {\"delta\":\"first\"}\n\n"))
		w.(http.Flusher).Flush()
		select {
		case <-r.Context().Done():
		case <-time.After(10 * time.Second):
		}
	}))
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s := openStream(t, ctx, srv)

	evt, err := s.Next()
	require.NoError(t, err)
	assert.Equal(t, bimrag.EventDelta{Text: "first"}, evt)

	cancel()

	_, err = s.Next()
	assert.ErrorIs(t, err, bimrag.ErrStreamAborted)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, bimrag.ErrStreamRequestFailed)
}

func TestStream_CancelledBeforeRequest(t *testing.T) {
	t.Parallel()

	srv := sseServer(t, "data: {\"delta\":\"A\"}\n\n")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := ragapi.New(ragapi.WithBaseURL(srv.URL))
	_, err := client.Stream(ctx, bimrag.SummarizeRequest{Query: "q"})
	assert.ErrorIs(t, err, bimrag.ErrStreamAborted)
	assert.NotErrorIs(t, err, bimrag.ErrTransport)
}

func TestStream_CloseIsIdempotent(t *testing.T) {
	t.Parallel()

	srv := sseServer(t, "data: {\"delta\":\"A\"}\n\nevent: done\ndata: {\"text\":\"A\"}\n\n")
	s := openStream(t, context.Background(), srv)

	drain(t, s)
	assert.NoError(t, s.Close())
	assert.NoError(t, s.Close())
}
