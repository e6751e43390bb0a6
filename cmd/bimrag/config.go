package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/fwojciec/bimrag"
)

const (
	defaultBaseURL      = "http://localhost:8000"
	defaultHistoryLimit = 100
	defaultCacheTTL     = 10 * time.Minute
	configDirName       = ".bimrag"
)

// config holds the resolved settings. Precedence, lowest first: built-in
// defaults, the TOML file, the environment, command-line flags.
type config struct {
	BaseURL      string        `toml:"base_url"`
	Model        string        `toml:"model"`
	TopK         int           `toml:"top_k"`
	UseContext   int           `toml:"use_context"`
	MaxTokens    int           `toml:"max_tokens"`
	Temperature  *float64      `toml:"temperature"`
	TopP         *float64      `toml:"top_p"`
	Filters      *filterConfig `toml:"filters"`
	Batch        bool          `toml:"batch"`
	HistoryPath  string        `toml:"history_path"`
	HistoryLimit int           `toml:"history_limit"`
	CacheTTL     time.Duration `toml:"cache_ttl"`
	GeminiModel  string        `toml:"gemini_model"`
	LogFile      string        `toml:"log_file"`
}

type filterConfig struct {
	Top          string   `toml:"top"`
	Upper        string   `toml:"upper"`
	CategoryPath []string `toml:"category_path"`
}

// flagOverrides carries the flags that were given a non-zero value.
type flagOverrides struct {
	BaseURL     string
	Model       string
	TopK        int
	UseContext  int
	MaxTokens   int
	Batch       bool
	HistoryPath string
	LogFile     string
}

func defaultConfig() config {
	return config{
		BaseURL:      defaultBaseURL,
		HistoryPath:  filepath.Join(homeDir(), configDirName, "history.json"),
		HistoryLimit: defaultHistoryLimit,
		CacheTTL:     defaultCacheTTL,
	}
}

// loadConfig reads path over the defaults. An empty path means the default
// location, which may be missing; an explicit path must exist.
func loadConfig(path string) (config, error) {
	cfg := defaultConfig()
	explicit := path != ""
	if !explicit {
		path = filepath.Join(homeDir(), configDirName, "config.toml")
	}
	_, err := toml.DecodeFile(path, &cfg)
	switch {
	case err == nil:
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	default:
		return config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg.HistoryPath = expandHome(cfg.HistoryPath)
	cfg.LogFile = expandHome(cfg.LogFile)
	return cfg, nil
}

func (c config) withEnv(baseURL string) config {
	if baseURL != "" {
		c.BaseURL = baseURL
	}
	return c
}

func (c config) withFlags(f flagOverrides) config {
	if f.BaseURL != "" {
		c.BaseURL = f.BaseURL
	}
	if f.Model != "" {
		c.Model = f.Model
	}
	if f.TopK != 0 {
		c.TopK = f.TopK
	}
	if f.UseContext != 0 {
		c.UseContext = f.UseContext
	}
	if f.MaxTokens != 0 {
		c.MaxTokens = f.MaxTokens
	}
	if f.Batch {
		c.Batch = true
	}
	if f.HistoryPath != "" {
		c.HistoryPath = expandHome(f.HistoryPath)
	}
	if f.LogFile != "" {
		c.LogFile = expandHome(f.LogFile)
	}
	return c
}

// validate checks the settings that the requests share, so a bad config
// file fails at startup rather than on the first query.
func (c config) validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base URL must not be empty: %w", bimrag.ErrValidation)
	}
	if c.HistoryLimit < 0 {
		return fmt.Errorf("history_limit must be non-negative, got %d: %w", c.HistoryLimit, bimrag.ErrValidation)
	}
	if err := c.summarizeRequest("config check").Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

func (c config) filters() *bimrag.Filters {
	if c.Filters == nil {
		return nil
	}
	f := &bimrag.Filters{CategoryPath: c.Filters.CategoryPath}
	if c.Filters.Top != "" || c.Filters.Upper != "" {
		f.Categories = &bimrag.CategoryFilter{Top: c.Filters.Top, Upper: c.Filters.Upper}
	}
	return f
}

func (c config) summarizeRequest(query string) bimrag.SummarizeRequest {
	return bimrag.SummarizeRequest{
		Query:       query,
		Model:       c.Model,
		TopK:        c.TopK,
		UseContext:  c.UseContext,
		MaxTokens:   c.MaxTokens,
		Temperature: c.Temperature,
		TopP:        c.TopP,
		Filters:     c.filters(),
	}
}

func (c config) searchRequest() bimrag.SearchRequest {
	return bimrag.SearchRequest{
		TopK:       c.TopK,
		UseContext: c.UseContext,
		Filters:    c.filters(),
		Model:      c.Model,
	}
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}

func expandHome(path string) string {
	if rest, ok := strings.CutPrefix(path, "~/"); ok {
		return filepath.Join(homeDir(), rest)
	}
	return path
}
