package search

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/jonwraymond/sitesearch/index"
)

// ============================================================
// Helpers
// ============================================================

func makeEntry(t index.Type, slug, title string, tags ...string) index.Entry {
	return index.Entry{
		ID:    index.EntryID(t, slug),
		Type:  t,
		Slug:  slug,
		Title: title,
		Tags:  tags,
	}
}

func sampleEntries() []index.Entry {
	return []index.Entry{
		makeEntry(index.TypeBlog, "a", "Shipping fast with Routers", "nextjs"),
		makeEntry(index.TypeProjects, "b", "Routers for Robots", "rust"),
	}
}

func staticSource(entries []index.Entry) Source {
	return SourceFunc(func(context.Context) ([]index.Entry, error) {
		return entries, nil
	})
}

func failingSource(err error) Source {
	return SourceFunc(func(context.Context) ([]index.Entry, error) {
		return nil, err
	})
}

func mustRebuild(t *testing.T, e *Engine, src Source) Stats {
	t.Helper()
	stats, err := e.Rebuild(context.Background(), src)
	if err != nil {
		t.Fatalf("Rebuild failed: %v", err)
	}
	return stats
}

// ============================================================
// Construction and empty state
// ============================================================

func TestEngine_SearchBeforeBuild(t *testing.T) {
	e := NewEngine(Options{})

	results := e.Search("route", 8)
	if results == nil {
		t.Fatal("expected non-nil empty slice")
	}
	if len(results) != 0 {
		t.Errorf("expected no results before build, got %d", len(results))
	}
	if e.Ready() {
		t.Error("engine should not be ready before build")
	}
	if e.Version() != 0 {
		t.Errorf("Version() = %d, want 0", e.Version())
	}
	if e.Index() != nil {
		t.Error("Index() should be nil before build")
	}
	if _, ok := e.Stats(); ok {
		t.Error("Stats() should report no build")
	}
}

func TestEngine_EmptyQuery(t *testing.T) {
	e := NewEngine(Options{})
	e.Load(sampleEntries())

	for _, q := range []string{"", "   ", "\t\n"} {
		if got := e.Search(q, 8); len(got) != 0 {
			t.Errorf("Search(%q) returned %d results, want 0", q, len(got))
		}
	}
	if e.CachedQueries() != 0 {
		t.Error("blank queries should not be cached")
	}
}

// ============================================================
// Load and Rebuild
// ============================================================

func TestEngine_LoadInstallsIndex(t *testing.T) {
	e := NewEngine(Options{})

	stats := e.Load(sampleEntries())
	if !stats.Changed {
		t.Error("first load should report Changed")
	}
	if stats.Version != 1 {
		t.Errorf("Version = %d, want 1", stats.Version)
	}
	if stats.Entries != 2 {
		t.Errorf("Entries = %d, want 2", stats.Entries)
	}
	if stats.Terms == 0 {
		t.Error("Terms should be non-zero")
	}
	if _, err := uuid.Parse(stats.BuildID); err != nil {
		t.Errorf("BuildID %q is not a UUID: %v", stats.BuildID, err)
	}

	got := e.Search("route", 8)
	if len(got) != 2 || got[0].ID != "blog:a" || got[1].ID != "projects:b" {
		t.Errorf("unexpected results: %+v", got)
	}
}

func TestEngine_RebuildUnchangedContentSkipped(t *testing.T) {
	e := NewEngine(Options{})
	first := mustRebuild(t, e, staticSource(sampleEntries()))

	notified := 0
	e.OnRebuild(func(Stats) { notified++ })

	second := mustRebuild(t, e, staticSource(sampleEntries()))
	if second.Changed {
		t.Error("rebuild of identical content should not report Changed")
	}
	if second.Version != first.Version {
		t.Errorf("Version changed from %d to %d", first.Version, second.Version)
	}
	if second.BuildID != first.BuildID {
		t.Error("BuildID should be kept when content is unchanged")
	}
	if notified != 0 {
		t.Errorf("listener called %d times for unchanged content", notified)
	}
}

func TestEngine_RebuildUnchangedReportsOwnDuration(t *testing.T) {
	e := NewEngine(Options{})
	mustRebuild(t, e, staticSource(sampleEntries()))

	slow := SourceFunc(func(context.Context) ([]index.Entry, error) {
		time.Sleep(20 * time.Millisecond)
		return sampleEntries(), nil
	})
	stats := mustRebuild(t, e, slow)
	if stats.Changed {
		t.Fatal("expected unchanged content")
	}
	if stats.Duration < 20*time.Millisecond {
		t.Errorf("Duration = %v, want the time spent by this call", stats.Duration)
	}
}

func TestEngine_TagReorderIsAChange(t *testing.T) {
	e := NewEngine(Options{})
	e.Load([]index.Entry{makeEntry(index.TypeBlog, "a", "Routers", "go", "rust")})

	stats := e.Load([]index.Entry{makeEntry(index.TypeBlog, "a", "Routers", "rust", "go")})
	if !stats.Changed {
		t.Error("reordered tags should install a new index")
	}
	got := e.Search("routers", 8)
	if len(got) != 1 || fmt.Sprint(got[0].Tags) != "[rust go]" {
		t.Errorf("Search returned %v, want tags in their new order", got)
	}
}

func TestEngine_RebuildChangedContentBumpsVersion(t *testing.T) {
	e := NewEngine(Options{})
	mustRebuild(t, e, staticSource(sampleEntries()))

	updated := append(sampleEntries(), makeEntry(index.TypeBlog, "c", "Route handlers"))
	stats := mustRebuild(t, e, staticSource(updated))

	if !stats.Changed {
		t.Error("expected Changed")
	}
	if stats.Version != 2 {
		t.Errorf("Version = %d, want 2", stats.Version)
	}
	if got := e.Search("route", 8); len(got) != 3 {
		t.Errorf("expected 3 results after rebuild, got %d", len(got))
	}
}

func TestEngine_RebuildFailureKeepsPreviousIndex(t *testing.T) {
	e := NewEngine(Options{})
	mustRebuild(t, e, staticSource(sampleEntries()))

	boom := errors.New("disk on fire")
	_, err := e.Rebuild(context.Background(), failingSource(boom))
	if !errors.Is(err, ErrRebuildFailed) {
		t.Errorf("expected ErrRebuildFailed, got %v", err)
	}
	if !errors.Is(err, boom) {
		t.Errorf("expected wrapped source error, got %v", err)
	}

	if e.Version() != 1 {
		t.Errorf("Version = %d, want 1", e.Version())
	}
	if got := e.Search("robots", 8); len(got) != 1 {
		t.Errorf("previous index should still serve, got %d results", len(got))
	}
}

func TestEngine_RebuildFailureBeforeFirstBuild(t *testing.T) {
	e := NewEngine(Options{})

	_, err := e.Rebuild(context.Background(), failingSource(errors.New("nope")))
	if !errors.Is(err, ErrRebuildFailed) {
		t.Errorf("expected ErrRebuildFailed, got %v", err)
	}
	if e.Ready() {
		t.Error("engine should stay unbuilt")
	}
	if got := e.Search("route", 8); len(got) != 0 {
		t.Errorf("expected no results, got %d", len(got))
	}
}

func TestEngine_RebuildNilSource(t *testing.T) {
	e := NewEngine(Options{})

	if _, err := e.Rebuild(context.Background(), nil); !errors.Is(err, ErrNilSource) {
		t.Errorf("expected ErrNilSource, got %v", err)
	}
}

func TestEngine_RebuildCanceledContext(t *testing.T) {
	e := NewEngine(Options{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Rebuild(ctx, staticSource(sampleEntries()))
	if !errors.Is(err, ErrRebuildFailed) || !errors.Is(err, context.Canceled) {
		t.Errorf("expected canceled rebuild failure, got %v", err)
	}
	if e.Ready() {
		t.Error("canceled rebuild should not install an index")
	}
}

func TestEngine_RebuildEmptyContent(t *testing.T) {
	e := NewEngine(Options{})
	mustRebuild(t, e, staticSource(sampleEntries()))

	stats := mustRebuild(t, e, staticSource(nil))
	if stats.Entries != 0 {
		t.Errorf("Entries = %d, want 0", stats.Entries)
	}
	if got := e.Search("route", 8); len(got) != 0 {
		t.Errorf("expected no results from empty index, got %d", len(got))
	}
}

// ============================================================
// Limits and weights
// ============================================================

func TestEngine_DefaultLimit(t *testing.T) {
	entries := make([]index.Entry, 12)
	for i := range entries {
		entries[i] = makeEntry(index.TypeBlog, fmt.Sprintf("p%d", i), "Router notes")
	}
	e := NewEngine(Options{})
	e.Load(entries)

	if got := e.Search("router", 0); len(got) != index.DefaultLimit {
		t.Errorf("limit 0: got %d results, want %d", len(got), index.DefaultLimit)
	}
	if got := e.Search("router", -3); len(got) != index.DefaultLimit {
		t.Errorf("negative limit: got %d results, want %d", len(got), index.DefaultLimit)
	}
	if got := e.Search("router", 3); len(got) != 3 {
		t.Errorf("limit 3: got %d results", len(got))
	}
}

func TestEngine_CustomDefaultLimit(t *testing.T) {
	entries := make([]index.Entry, 5)
	for i := range entries {
		entries[i] = makeEntry(index.TypeBlog, fmt.Sprintf("p%d", i), "Router notes")
	}
	e := NewEngine(Options{DefaultLimit: 2})
	e.Load(entries)

	if got := e.Search("router", 0); len(got) != 2 {
		t.Errorf("got %d results, want 2", len(got))
	}
}

func TestEngine_CustomWeights(t *testing.T) {
	entries := []index.Entry{
		makeEntry(index.TypeBlog, "title", "Gamma"),
		{ID: "blog:body", Type: index.TypeBlog, Slug: "body", Title: "Notes", Content: "gamma"},
	}
	e := NewEngine(Options{Weights: index.Weights{Title: 1, Description: 1, Tags: 1, Content: 5}})
	e.Load(entries)

	got := e.Search("gamma", 8)
	if len(got) != 2 || got[0].ID != "blog:body" {
		t.Errorf("expected content-weighted entry first, got %+v", got)
	}
}

// ============================================================
// Result cache
// ============================================================

func TestEngine_CacheServesRepeatedQueries(t *testing.T) {
	reg := prometheus.NewRegistry()
	e := NewEngine(Options{Registerer: reg})
	e.Load(sampleEntries())

	first := e.Search("route", 8)
	second := e.Search("  ROUTE ", 8)

	if e.CachedQueries() != 1 {
		t.Errorf("CachedQueries = %d, want 1", e.CachedQueries())
	}
	if len(first) != len(second) {
		t.Fatalf("cached result differs: %d vs %d", len(first), len(second))
	}
	if hits := testutil.ToFloat64(e.metrics.queries.WithLabelValues(cacheHit)); hits != 1 {
		t.Errorf("cache hits = %v, want 1", hits)
	}
	if misses := testutil.ToFloat64(e.metrics.queries.WithLabelValues(cacheMiss)); misses != 1 {
		t.Errorf("cache misses = %v, want 1", misses)
	}
}

func TestEngine_CacheKeyedByLimit(t *testing.T) {
	e := NewEngine(Options{})
	e.Load(sampleEntries())

	if got := e.Search("route", 1); len(got) != 1 {
		t.Fatalf("limit 1: got %d", len(got))
	}
	if got := e.Search("route", 8); len(got) != 2 {
		t.Errorf("limit 8 after limit 1: got %d, want 2", len(got))
	}
}

func TestEngine_SearchType(t *testing.T) {
	e := NewEngine(Options{})
	e.Load(sampleEntries())

	all := e.SearchHits("route", 1)
	if len(all) != 1 || all[0].ID != "blog:a" {
		t.Fatalf("SearchHits(route, 1) = %v, want blog:a", all.IDs())
	}

	projects := e.SearchType("route", 1, index.TypeProjects)
	if len(projects) != 1 || projects[0].ID != "projects:b" {
		t.Errorf("SearchType(projects) = %v, want projects:b", projects.IDs())
	}

	// The type is part of the cache key.
	if got := e.SearchType("route", 1, index.TypeProjects); got[0].ID != "projects:b" {
		t.Errorf("cached SearchType = %v, want projects:b", got.IDs())
	}
	if e.CachedQueries() != 2 {
		t.Errorf("CachedQueries = %d, want 2", e.CachedQueries())
	}
}

func TestEngine_CacheClearedOnRebuild(t *testing.T) {
	e := NewEngine(Options{})
	e.Load(sampleEntries())
	e.Search("route", 8)
	e.Search("robots", 8)

	if e.CachedQueries() != 2 {
		t.Fatalf("CachedQueries = %d, want 2", e.CachedQueries())
	}

	e.Load([]index.Entry{makeEntry(index.TypeBlog, "z", "Routing tables")})
	if e.CachedQueries() != 0 {
		t.Errorf("cache should be empty after rebuild, has %d", e.CachedQueries())
	}

	got := e.Search("route", 8)
	if len(got) != 1 || got[0].ID != "blog:z" {
		t.Errorf("stale results after rebuild: %+v", got)
	}
}

func TestEngine_CacheBounded(t *testing.T) {
	e := NewEngine(Options{CacheSize: 3})
	e.Load(sampleEntries())

	for _, q := range []string{"a", "b", "c", "d", "e"} {
		e.Search(q, 8)
	}
	if e.CachedQueries() != 3 {
		t.Errorf("CachedQueries = %d, want 3", e.CachedQueries())
	}
}

func TestEngine_CacheDisabled(t *testing.T) {
	e := NewEngine(Options{CacheSize: -1})
	e.Load(sampleEntries())

	e.Search("route", 8)
	e.Search("route", 8)
	if e.CachedQueries() != 0 {
		t.Errorf("CachedQueries = %d, want 0", e.CachedQueries())
	}
}

func TestEngine_ResultsAreCopies(t *testing.T) {
	e := NewEngine(Options{})
	e.Load(sampleEntries())

	got := e.Search("shipping", 8)
	if len(got) != 1 || len(got[0].Tags) != 1 {
		t.Fatalf("unexpected results: %+v", got)
	}
	got[0].Tags[0] = "mutated"
	got[0].Title = "mutated"

	again := e.Search("shipping", 8)
	if again[0].Tags[0] != "nextjs" || again[0].Title != "Shipping fast with Routers" {
		t.Errorf("cached result was mutated: %+v", again[0])
	}
}

// ============================================================
// Listeners
// ============================================================

func TestEngine_OnRebuild(t *testing.T) {
	e := NewEngine(Options{})

	var got []Stats
	unsub := e.OnRebuild(func(s Stats) { got = append(got, s) })

	e.Load(sampleEntries())
	if len(got) != 1 || got[0].Version != 1 {
		t.Fatalf("expected one notification for version 1, got %+v", got)
	}

	unsub()
	unsub() // idempotent
	e.Load([]index.Entry{makeEntry(index.TypeBlog, "c", "Other")})
	if len(got) != 1 {
		t.Errorf("listener called after unsubscribe: %d calls", len(got))
	}
}

func TestEngine_OnRebuild_NilListener(t *testing.T) {
	e := NewEngine(Options{})

	unsub := e.OnRebuild(nil)
	if unsub == nil {
		t.Fatal("expected non-nil unsubscribe function")
	}
	unsub()
	e.Load(sampleEntries())
}

// ============================================================
// Metrics
// ============================================================

func TestEngine_RebuildMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	e := NewEngine(Options{Registerer: reg})

	mustRebuild(t, e, staticSource(sampleEntries()))
	mustRebuild(t, e, staticSource(sampleEntries()))
	_, _ = e.Rebuild(context.Background(), failingSource(errors.New("x")))

	checks := map[string]float64{
		rebuildSuccess:   1,
		rebuildUnchanged: 1,
		rebuildError:     1,
	}
	for status, want := range checks {
		if got := testutil.ToFloat64(e.metrics.rebuilds.WithLabelValues(status)); got != want {
			t.Errorf("rebuilds{status=%q} = %v, want %v", status, got, want)
		}
	}
	if got := testutil.ToFloat64(e.metrics.entries); got != 2 {
		t.Errorf("index_entries = %v, want 2", got)
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather failed: %v", err)
	}
	if len(families) == 0 {
		t.Error("expected registered metric families")
	}
}

// ============================================================
// Concurrency
// ============================================================

func TestEngine_ConcurrentIdenticalRebuilds(t *testing.T) {
	e := NewEngine(Options{})

	var calls atomic.Int32
	src := SourceFunc(func(context.Context) ([]index.Entry, error) {
		calls.Add(1)
		return sampleEntries(), nil
	})

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := e.Rebuild(context.Background(), src); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("concurrent rebuild failed: %v", err)
	}
	if e.Version() != 1 {
		t.Errorf("Version = %d, want 1 for identical content", e.Version())
	}
	if n := calls.Load(); n < 1 || n > 16 {
		t.Errorf("source called %d times, want between 1 and 16", n)
	}
}

func TestEngine_RebuildDuringBuildSeesNewContent(t *testing.T) {
	e := NewEngine(Options{})

	var mu sync.Mutex
	title := "Alpha"
	loading := make(chan struct{})
	release := make(chan struct{})
	var calls atomic.Int32

	src := SourceFunc(func(context.Context) ([]index.Entry, error) {
		mu.Lock()
		entries := []index.Entry{makeEntry(index.TypeBlog, "a", title)}
		mu.Unlock()
		if calls.Add(1) == 1 {
			close(loading)
			<-release
		}
		return entries, nil
	})

	first := make(chan error, 1)
	go func() {
		_, err := e.Rebuild(context.Background(), src)
		first <- err
	}()
	<-loading

	// Content changes while the first build holds its stale read.
	mu.Lock()
	title = "Beta"
	mu.Unlock()

	second := make(chan error, 1)
	go func() {
		_, err := e.Rebuild(context.Background(), src)
		second <- err
	}()
	for e.requested.Load() < 2 {
		runtime.Gosched()
	}
	close(release)

	if err := <-first; err != nil {
		t.Fatalf("first rebuild failed: %v", err)
	}
	if err := <-second; err != nil {
		t.Fatalf("second rebuild failed: %v", err)
	}

	if got := e.Search("beta", 8); len(got) != 1 || got[0].Title != "Beta" {
		t.Errorf("Search(beta) = %v, want the updated entry", got)
	}
	if got := e.Search("alpha", 8); len(got) != 0 {
		t.Errorf("Search(alpha) = %v, want no stale results", got)
	}
	if n := calls.Load(); n != 2 {
		t.Errorf("source called %d times, want 2", n)
	}
}

func TestEngine_QueuedRebuildsShareOneFollowUp(t *testing.T) {
	e := NewEngine(Options{})

	loading := make(chan struct{})
	release := make(chan struct{})
	var calls atomic.Int32
	src := SourceFunc(func(context.Context) ([]index.Entry, error) {
		if calls.Add(1) == 1 {
			close(loading)
			<-release
		}
		return sampleEntries(), nil
	})

	done := make(chan error, 5)
	go func() {
		_, err := e.Rebuild(context.Background(), src)
		done <- err
	}()
	<-loading

	for range 4 {
		go func() {
			_, err := e.Rebuild(context.Background(), src)
			done <- err
		}()
	}
	for e.requested.Load() < 5 {
		runtime.Gosched()
	}
	close(release)

	for range 5 {
		if err := <-done; err != nil {
			t.Fatalf("rebuild failed: %v", err)
		}
	}
	if n := calls.Load(); n != 2 {
		t.Errorf("source called %d times, want 2 (running build plus one follow-up)", n)
	}
}

func TestEngine_ReadersDuringRebuilds(t *testing.T) {
	oldEntries := sampleEntries()
	newEntries := []index.Entry{makeEntry(index.TypeBlog, "n", "Routers everywhere")}

	e := NewEngine(Options{})
	e.Load(oldEntries)

	valid := map[string]bool{
		"blog:a,projects:b,": true,
		"blog:n,":            true,
	}

	stop := make(chan struct{})
	var wg sync.WaitGroup
	var bad atomic.Int32
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				key := ""
				for _, r := range e.Search("route", 8) {
					key += r.ID + ","
				}
				if !valid[key] {
					bad.Add(1)
				}
			}
		}()
	}

	for i := range 50 {
		if i%2 == 0 {
			e.Load(newEntries)
		} else {
			e.Load(oldEntries)
		}
	}
	close(stop)
	wg.Wait()

	if n := bad.Load(); n != 0 {
		t.Errorf("%d reads observed a partially built index", n)
	}
}
