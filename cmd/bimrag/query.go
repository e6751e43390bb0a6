package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fwojciec/bimrag"
)

// answerFunc answers one query, writing the answer to w.
type answerFunc func(ctx context.Context, req bimrag.SummarizeRequest, w io.Writer) error

func streamWith(ctrl *bimrag.Controller) answerFunc {
	return func(ctx context.Context, req bimrag.SummarizeRequest, w io.Writer) error {
		return streamQuery(ctx, ctrl, req, w)
	}
}

func summarizeWith(s bimrag.Summarizer) answerFunc {
	return func(ctx context.Context, req bimrag.SummarizeRequest, w io.Writer) error {
		return summarizeQuery(ctx, s, req, w)
	}
}

// streamQuery runs one query and writes the answer to w as it streams,
// followed by the numbered source list.
func streamQuery(ctx context.Context, ctrl *bimrag.Controller, req bimrag.SummarizeRequest, w io.Writer) error {
	var streamed strings.Builder
	result, err := ctrl.Run(ctx, req, bimrag.Callbacks{
		OnDelta: func(delta string) {
			delta = bimrag.Sanitize(delta)
			streamed.WriteString(delta)
			fmt.Fprint(w, delta)
		},
	})
	if err != nil {
		if streamed.Len() > 0 {
			fmt.Fprintln(w)
		}
		return err
	}
	if result.NoContent {
		fmt.Fprintln(w, "No relevant documents were found for this question.")
		return nil
	}
	// The final text is authoritative; print it when it differs from what
	// was streamed.
	result.Text = bimrag.Sanitize(result.Text)
	switch {
	case streamed.Len() == 0:
		fmt.Fprint(w, result.Text)
	case result.Text != "" && result.Text != streamed.String():
		fmt.Fprint(w, "\n\n"+result.Text)
	}
	fmt.Fprintln(w)
	writeSources(w, result.Sources)
	return nil
}

// summarizeQuery fetches the whole answer in one request and writes it with
// its links, figures and sources.
func summarizeQuery(ctx context.Context, s bimrag.Summarizer, req bimrag.SummarizeRequest, w io.Writer) error {
	summary, err := s.Summarize(ctx, req)
	if errors.Is(err, bimrag.ErrNoContent) {
		fmt.Fprintln(w, "No relevant documents were found for this question.")
		return nil
	}
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(err, bimrag.ErrStreamAborted) {
			return fmt.Errorf("%w: %w", bimrag.ErrStreamAborted, ctxErr)
		}
		return err
	}
	fmt.Fprintln(w, bimrag.Sanitize(summary.Text))
	writeList(w, "Links", summary.Links)
	images := make([]string, 0, len(summary.Images))
	for _, img := range summary.Images {
		name := img.FilePath
		if name == "" {
			name = img.ID
		}
		images = append(images, name)
	}
	writeList(w, "Figures", images)
	writeSources(w, summary.Sources)
	return nil
}

func writeList(w io.Writer, heading string, items []string) {
	var lines []string
	for _, item := range items {
		if item = strings.TrimSpace(bimrag.Sanitize(item)); item != "" {
			lines = append(lines, "- "+item)
		}
	}
	if len(lines) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%s:\n%s\n", heading, strings.Join(lines, "\n"))
}

func writeSources(w io.Writer, sources []bimrag.Source) {
	sources = bimrag.DedupSources(sources)
	if len(sources) == 0 {
		return
	}
	fmt.Fprintln(w, "\nSources:")
	for i, s := range sources {
		title := s.Title
		if title == "" {
			title = s.DocID
		}
		line := bimrag.Sanitize(fmt.Sprintf("[%d] %s", i+1, title))
		if s.VideoURL != "" {
			label := s.VideoLabel
			if label == "" {
				label = "video"
			}
			line += bimrag.Sanitize(fmt.Sprintf(" (%s: %s)", label, s.VideoURL))
		}
		fmt.Fprintln(w, line)
	}
}

// runBatch answers every file matching pattern. Each file
// holds one query. A failed query is reported and the batch continues;
// cancellation stops it.
func runBatch(ctx context.Context, answer answerFunc, cfg config, pattern string, w io.Writer) error {
	paths, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
	if err != nil {
		return fmt.Errorf("queries: %w", err)
	}
	if len(paths) == 0 {
		return fmt.Errorf("queries: no files match %q", pattern)
	}
	slices.Sort(paths)

	var errs []error
	for i, path := range paths {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "## %s\n\n", path)
		data, err := os.ReadFile(path)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", path, err))
			fmt.Fprintf(w, "error: %v\n", err)
			continue
		}
		query := strings.TrimSpace(string(data))
		err = answer(ctx, cfg.summarizeRequest(query), w)
		if errors.Is(err, bimrag.ErrStreamAborted) {
			return err
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", path, err))
			fmt.Fprintf(w, "error: %v\n", err)
		}
	}
	return errors.Join(errs...)
}
