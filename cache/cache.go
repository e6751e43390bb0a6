// Package cache decorates bimrag services with an in-memory TTL cache backed
// by github.com/patrickmn/go-cache.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/fwojciec/bimrag"
	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

const (
	defaultTTL     = 10 * time.Minute
	defaultCleanup = 15 * time.Minute
)

// Interface compliance check.
var _ bimrag.Searcher = (*Searcher)(nil)

// Searcher caches successful Search responses by request. Failed searches
// are never cached. It is safe for concurrent use.
type Searcher struct {
	next    bimrag.Searcher
	cache   *gocache.Cache
	ttl     time.Duration
	cleanup time.Duration
	logger  *zap.Logger
}

// Option configures a [Searcher].
type Option func(*Searcher)

// WithTTL sets how long a response stays cached. Default is ten minutes.
func WithTTL(ttl time.Duration) Option {
	return func(s *Searcher) { s.ttl = ttl }
}

// WithCleanupInterval sets how often expired entries are purged.
func WithCleanupInterval(d time.Duration) Option {
	return func(s *Searcher) { s.cleanup = d }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(s *Searcher) { s.logger = l }
}

// NewSearcher wraps next with a response cache.
func NewSearcher(next bimrag.Searcher, opts ...Option) *Searcher {
	s := &Searcher{
		next:    next,
		ttl:     defaultTTL,
		cleanup: defaultCleanup,
		logger:  zap.NewNop(),
	}
	for _, o := range opts {
		o(s)
	}
	s.cache = gocache.New(s.ttl, s.cleanup)
	return s
}

// Search returns a cached response for an identical request, or delegates
// to the wrapped Searcher and caches its answer.
func (s *Searcher) Search(ctx context.Context, req bimrag.SearchRequest) (bimrag.SearchResponse, error) {
	key, err := Key(req)
	if err != nil {
		return bimrag.SearchResponse{}, err
	}
	if x, found := s.cache.Get(key); found {
		s.logger.Debug("search cache hit", zap.String("model", req.Model))
		return clone(x.(bimrag.SearchResponse)), nil
	}

	resp, err := s.next.Search(ctx, req)
	if err != nil {
		return bimrag.SearchResponse{}, err
	}
	s.cache.Set(key, clone(resp), gocache.DefaultExpiration)
	s.logger.Debug("search cached", zap.String("model", req.Model), zap.Int("results", len(resp.Results)))
	return resp, nil
}

// Len returns the number of cached entries, including expired ones not yet
// purged.
func (s *Searcher) Len() int {
	return s.cache.ItemCount()
}

// Flush drops every cached entry.
func (s *Searcher) Flush() {
	s.cache.Flush()
}

// Key derives the cache key for req. The index selector is not part of the
// request body, so it is included explicitly.
func Key(req bimrag.SearchRequest) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("cache: %w", err)
	}
	return req.Model + "\x00" + string(body), nil
}

func clone(r bimrag.SearchResponse) bimrag.SearchResponse {
	r.Results = slices.Clone(r.Results)
	return r
}
