// Command bimrag is a terminal client for the BIM RAG question-answering
// service.
//
// Usage:
//
//	bimrag [flags]                      interactive TUI
//	bimrag -query "IFC로 내보내려면?"     stream one answer to stdout
//	bimrag -queries "questions/**/*.txt" stream an answer per file
//	bimrag -batch -query "IFC로 내보내려면?" fetch the whole answer at once
//
// Flags:
//
//	-config string      Path to TOML defaults file (default: ~/.bimrag/config.toml)
//	-base-url string    API base URL (overrides BIMRAG_BASE_URL and config)
//	-model string       Retrieval model key: bge-m3, kure, full, json
//	-top-k int          Documents retrieved per query
//	-use-context int    Documents passed to the generator
//	-max-tokens int     Answer length limit
//	-batch              Request whole answers instead of streaming them
//	-query string       Run one query and exit
//	-queries string     Glob of files holding one query each ("**" supported)
//	-history string     Path to history file (default: ~/.bimrag/history.json)
//	-log-file string    Write JSON debug logs to this file (rotated)
//
// A .env file in the working directory is loaded before the environment is
// read. GEMINI_API_KEY enables Gemini-generated history titles; without it
// titles come from the service's /chat/title endpoint.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"os/signal"

	"github.com/fwojciec/bimrag"
	bt "github.com/fwojciec/bimrag/bubbletea"
	"github.com/fwojciec/bimrag/cache"
	bimragjson "github.com/fwojciec/bimrag/json"
	"github.com/fwojciec/bimrag/ragapi"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "bimrag: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configPath  = flag.String("config", "", "Path to TOML defaults file (default: ~/.bimrag/config.toml)")
		baseURL     = flag.String("base-url", "", "API base URL")
		model       = flag.String("model", "", "Retrieval model key: bge-m3, kure, full, json")
		topK        = flag.Int("top-k", 0, "Documents retrieved per query")
		useContext  = flag.Int("use-context", 0, "Documents passed to the generator")
		maxTokens   = flag.Int("max-tokens", 0, "Answer length limit")
		batch       = flag.Bool("batch", false, "Request whole answers instead of streaming them")
		query       = flag.String("query", "", "Run one query and exit")
		queries     = flag.String("queries", "", "Glob of files holding one query each")
		historyPath = flag.String("history", "", "Path to history file (default: ~/.bimrag/history.json)")
		logFile     = flag.String("log-file", "", "Write JSON debug logs to this file")
	)
	flag.Parse()

	// A missing .env is normal; anything else is a broken file.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	cfg = cfg.withEnv(os.Getenv("BIMRAG_BASE_URL"))
	cfg = cfg.withFlags(flagOverrides{
		BaseURL:     *baseURL,
		Model:       *model,
		TopK:        *topK,
		UseContext:  *useContext,
		MaxTokens:   *maxTokens,
		Batch:       *batch,
		HistoryPath: *historyPath,
		LogFile:     *logFile,
	})
	if err := cfg.validate(); err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogFile)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	client := ragapi.New(ragapi.WithBaseURL(cfg.BaseURL), ragapi.WithLogger(logger))
	ctrl := bimrag.NewController(client)

	answer := streamWith(ctrl)
	if cfg.Batch {
		answer = summarizeWith(client)
	}
	switch {
	case *query != "":
		return answer(ctx, cfg.summarizeRequest(*query), os.Stdout)
	case *queries != "":
		return runBatch(ctx, answer, cfg, *queries, os.Stdout)
	}

	titler, err := resolveTitler(ctx, os.Getenv("GEMINI_API_KEY"), cfg.GeminiModel, client, logger)
	if err != nil {
		return err
	}

	searcher := cache.NewSearcher(client, cache.WithTTL(cfg.CacheTTL), cache.WithLogger(logger))
	history := cfg.HistoryPath
	save := func(c bimrag.Conversation) error {
		if err := bimragjson.Append(history, c, cfg.HistoryLimit); err != nil {
			logger.Warn("save history", zap.String("path", history), zap.Error(err))
			return err
		}
		return nil
	}
	load := func() ([]bimrag.Conversation, error) {
		return bimragjson.Load(history)
	}

	chatOpts := []bt.ChatOption{
		bt.WithRequest(cfg.summarizeRequest("")),
		bt.WithHistory(titler, save),
	}
	if cfg.Batch {
		chatOpts = append(chatOpts, bt.WithSummarizer(client))
	}

	theme := bimrag.DefaultTheme()
	m := bt.New(theme,
		bt.NewChatPanel(ctrl, theme, chatOpts...),
		bt.NewSearchPanel(searcher, cfg.searchRequest(), theme),
		bt.NewHistoryPanel(load, theme),
	)
	if err := bt.Run(ctx, m); err != nil {
		return fmt.Errorf("TUI: %w", err)
	}
	return nil
}
