package search

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/jonwraymond/sitesearch/index"
)

// Source supplies the entries for an index build.
type Source interface {
	Entries(ctx context.Context) ([]index.Entry, error)
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc func(ctx context.Context) ([]index.Entry, error)

// Entries calls f(ctx).
func (f SourceFunc) Entries(ctx context.Context) ([]index.Entry, error) {
	return f(ctx)
}

// Options configures an Engine.
type Options struct {
	// Weights are the per-field ranking weights.
	// Default: index.DefaultWeights
	Weights index.Weights

	// CacheSize is the number of distinct queries kept in the result cache.
	// Zero selects DefaultCacheSize; a negative value disables caching.
	CacheSize int

	// DefaultLimit is used when a query passes limit <= 0.
	// Default: index.DefaultLimit
	DefaultLimit int

	// Logger receives build and rebuild events. If nil, logs are discarded.
	Logger *slog.Logger

	// Registerer receives the engine's Prometheus collectors. If nil, the
	// collectors are kept but not registered anywhere.
	Registerer prometheus.Registerer
}

// Stats describes an installed index build.
type Stats struct {
	Version     uint64        `json:"version"`
	BuildID     string        `json:"buildId"`
	Entries     int           `json:"entries"`
	Terms       int           `json:"terms"`
	Fingerprint string        `json:"fingerprint"`
	Duration    time.Duration `json:"duration"`
	BuiltAt     time.Time     `json:"builtAt"`

	// Changed is false when a rebuild found the content unchanged and kept
	// the existing index.
	Changed bool `json:"changed"`
}

// RebuildListener is called after a new index has been installed.
type RebuildListener func(Stats)

type snapshot struct {
	idx   *index.Index
	stats Stats
}

// Engine owns the process-wide search index. Queries read the current
// snapshot without locking; rebuilds are serialized and swap the snapshot
// atomically, so readers observe either the old or the new index in full.
type Engine struct {
	weights      index.Weights
	defaultLimit int
	logger       *slog.Logger
	metrics      *metrics

	current atomic.Pointer[snapshot]
	version atomic.Uint64
	cache   *resultCache

	// buildMu serializes builds. requested counts Rebuild calls; covered is
	// the highest request number whose content was loaded by a successful
	// build, and lastStats is that build's result. Both are guarded by
	// buildMu.
	buildMu   sync.Mutex
	requested atomic.Uint64
	covered   uint64
	lastStats Stats

	listenerMu     sync.RWMutex
	listeners      map[int]RebuildListener
	nextListenerID int
}

// NewEngine creates an Engine with no index installed. Until the first
// successful Rebuild or Load, every query returns no results.
func NewEngine(opts Options) *Engine {
	weights := opts.Weights
	if weights.IsZero() {
		weights = index.DefaultWeights
	}

	limit := opts.DefaultLimit
	if limit <= 0 {
		limit = index.DefaultLimit
	}

	cacheSize := opts.CacheSize
	if cacheSize == 0 {
		cacheSize = DefaultCacheSize
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Engine{
		weights:      weights,
		defaultLimit: limit,
		logger:       logger.With(slog.String("component", "search")),
		metrics:      newMetrics(opts.Registerer),
		cache:        newResultCache(cacheSize),
		listeners:    make(map[int]RebuildListener),
	}
}

// Rebuild loads entries from src and installs a freshly built index.
//
// Builds are serialized. A call that arrives while a build is running waits
// for it and then triggers at most one more build, which every caller queued
// behind the running build shares. A successful return therefore always
// reflects content loaded after the call was made. If src fails, the error
// wraps ErrRebuildFailed and the previous index stays in service. If the
// loaded content is identical to the installed index, nothing is rebuilt and
// the returned Stats has Changed set to false.
func (e *Engine) Rebuild(ctx context.Context, src Source) (Stats, error) {
	if src == nil {
		return Stats{}, ErrNilSource
	}
	ticket := e.requested.Add(1)

	e.buildMu.Lock()
	defer e.buildMu.Unlock()

	if e.covered >= ticket {
		e.logger.Debug("rebuild satisfied by a build started after the request",
			slog.Uint64("version", e.lastStats.Version),
		)
		return e.lastStats, nil
	}

	// Every request numbered up to here is answered by the load below.
	upTo := e.requested.Load()
	start := time.Now()
	entries, err := src.Entries(ctx)
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		e.metrics.observeRebuild(rebuildError, Stats{})
		e.logger.Error("rebuild failed, keeping previous index",
			slog.String("error", err.Error()),
			slog.Uint64("version", e.Version()),
		)
		return Stats{}, fmt.Errorf("%w: %w", ErrRebuildFailed, err)
	}

	stats := e.install(entries, start)
	e.covered = upTo
	e.lastStats = stats
	return stats, nil
}

// Load builds an index from entries and installs it, bypassing any Source.
// It is serialized with Rebuild.
func (e *Engine) Load(entries []index.Entry) Stats {
	e.buildMu.Lock()
	defer e.buildMu.Unlock()
	return e.install(entries, time.Now())
}

// install must be called with buildMu held.
func (e *Engine) install(entries []index.Entry, start time.Time) Stats {
	fp := computeFingerprint(entries)
	if cur := e.current.Load(); cur != nil && cur.stats.Fingerprint == fp {
		stats := cur.stats
		stats.Changed = false
		stats.Duration = time.Since(start)
		e.metrics.observeRebuild(rebuildUnchanged, stats)
		e.logger.Debug("content unchanged, keeping index",
			slog.Uint64("version", stats.Version),
			slog.String("build_id", stats.BuildID),
		)
		return stats
	}

	idx := index.Build(entries, index.WithWeights(e.weights))
	stats := Stats{
		Version:     e.version.Add(1),
		BuildID:     uuid.NewString(),
		Entries:     idx.Len(),
		Terms:       idx.Terms(),
		Fingerprint: fp,
		Duration:    time.Since(start),
		BuiltAt:     time.Now().UTC(),
		Changed:     true,
	}

	e.current.Store(&snapshot{idx: idx, stats: stats})
	e.cache.purge()

	e.metrics.observeRebuild(rebuildSuccess, stats)
	e.logger.Info("index built",
		slog.Uint64("version", stats.Version),
		slog.String("build_id", stats.BuildID),
		slog.Int("entries", stats.Entries),
		slog.Int("terms", stats.Terms),
		slog.Duration("duration", stats.Duration),
	)

	e.notify(stats)
	return stats
}

// Search returns up to limit results for query from the current index.
// A limit <= 0 selects the engine's default limit. Empty or blank queries
// and queries against an engine with no index return an empty slice.
func (e *Engine) Search(query string, limit int) []index.Result {
	return e.SearchHits(query, limit).Results()
}

// SearchHits is like Search but keeps the score of every result.
func (e *Engine) SearchHits(query string, limit int) index.Hits {
	return e.SearchType(query, limit, "")
}

// SearchType is like SearchHits but only returns entries of type t, ranking
// and limiting within that type. An empty t matches every type.
func (e *Engine) SearchType(query string, limit int, t index.Type) index.Hits {
	if limit <= 0 {
		limit = e.defaultLimit
	}

	normalized := normalizeQuery(query)
	snap := e.current.Load()
	if normalized == "" || snap == nil {
		e.metrics.observeQuery(cacheBypass)
		return index.Hits{}
	}

	key := cacheKey{version: snap.stats.Version, query: normalized, limit: limit, typ: t}
	if hits, ok := e.cache.get(key); ok {
		e.metrics.observeQuery(cacheHit)
		return cloneHits(hits)
	}

	hits := snap.idx.SearchType(normalized, limit, t)
	e.cache.add(key, hits)
	e.metrics.observeQuery(cacheMiss)
	return cloneHits(hits)
}

// normalizeQuery folds case and collapses whitespace. Tokenization already
// does both, so this only widens cache hits.
func normalizeQuery(q string) string {
	return strings.Join(strings.Fields(strings.ToLower(q)), " ")
}

// Index returns the currently installed index, or nil before the first build.
func (e *Engine) Index() *index.Index {
	if snap := e.current.Load(); snap != nil {
		return snap.idx
	}
	return nil
}

// Stats returns the stats of the installed index. The boolean is false
// before the first build.
func (e *Engine) Stats() (Stats, bool) {
	if snap := e.current.Load(); snap != nil {
		return snap.stats, true
	}
	return Stats{}, false
}

// Ready reports whether an index has been installed.
func (e *Engine) Ready() bool {
	return e.current.Load() != nil
}

// Version returns the version of the installed index, or 0 before the first
// build. It increases by one for every build that changes the content.
func (e *Engine) Version() uint64 {
	if snap := e.current.Load(); snap != nil {
		return snap.stats.Version
	}
	return 0
}

// DefaultLimit returns the limit applied when a query passes limit <= 0.
func (e *Engine) DefaultLimit() int {
	return e.defaultLimit
}

// CachedQueries returns the number of queries currently cached.
func (e *Engine) CachedQueries() int {
	return e.cache.len()
}

// OnRebuild registers a listener that runs synchronously after every build
// that installs a new index. Returns an unsubscribe function.
func (e *Engine) OnRebuild(listener RebuildListener) func() {
	if listener == nil {
		return func() {}
	}

	e.listenerMu.Lock()
	id := e.nextListenerID
	e.nextListenerID++
	e.listeners[id] = listener
	e.listenerMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			e.listenerMu.Lock()
			delete(e.listeners, id)
			e.listenerMu.Unlock()
		})
	}
}

func (e *Engine) notify(stats Stats) {
	e.listenerMu.RLock()
	listeners := make([]RebuildListener, 0, len(e.listeners))
	for _, l := range e.listeners {
		listeners = append(listeners, l)
	}
	e.listenerMu.RUnlock()

	for _, l := range listeners {
		l(stats)
	}
}
