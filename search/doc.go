// Package search owns the process-wide search index and its result cache.
//
// It exists to:
//   - Keep the index package pure and free of process state
//   - Serialize rebuilds while letting queries run concurrently
//   - Cache repeated queries against the current build
//
// # Usage
//
// The primary type is [Engine]. Populate it from a [Source] and query it:
//
//	eng := search.NewEngine(search.Options{})
//	if _, err := eng.Rebuild(ctx, src); err != nil {
//	    return err
//	}
//	results := eng.Search("route", 0) // 0 selects the default limit of 8
//
// # Configuration
//
// [Options] allows customization of ranking and caching:
//
//	opts := search.Options{
//	    Weights:    index.DefaultWeights, // title 3, description 2, tags 2, content 1
//	    CacheSize:  100,                  // distinct queries kept (negative disables)
//	    Logger:     logger,
//	    Registerer: prometheus.DefaultRegisterer,
//	}
//
// # Thread Safety
//
// Engine is safe for concurrent use. Queries load the current index through
// an atomic pointer and never block on a rebuild. Rebuilds are serialized.
// Calls that arrive during a build share one follow-up build, so a
// successful Rebuild always reflects content read after it was called.
//
// # Behavior
//
// Every build that changes the content bumps [Engine.Version] and clears the
// result cache. A rebuild whose content fingerprint matches the installed
// index is skipped. A failed rebuild leaves the previous index in service.
// Before the first build every query returns an empty result.
package search
