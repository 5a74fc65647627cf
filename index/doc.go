// Package index provides the full-text search index for site content.
//
// An [Index] is built once from a slice of [Entry] values (blog posts and
// project records) and then answers free-text queries with ranked [Result]
// projections. It is immutable after [Build]; to pick up content changes,
// build a new index and swap it in (see the search package).
//
// # Usage
//
//	entries := []index.Entry{
//	    {
//	        ID:          index.EntryID(index.TypeBlog, "routers"),
//	        Type:        index.TypeBlog,
//	        Slug:        "routers",
//	        Title:       "Shipping fast with Routers",
//	        Description: "Notes on the app router",
//	        Tags:        []string{"nextjs"},
//	        Content:     "...",
//	    },
//	}
//	idx := index.Build(entries)
//	results := idx.Search("route", 8)
//
// # Tokenization
//
// Text is split on Unicode word boundaries and lower-cased. Matching is
// forward (prefix) matching: the query token "rou" matches the indexed
// tokens "route", "router" and "routers", which supports as-you-type search.
//
// # Ranking
//
// Four fields are indexed, each with a weight ([DefaultWeights]):
//
//   - Title: 3
//   - Description: 2
//   - Tags: 2
//   - Content: 1
//
// An entry's score sums, over every field, the field weight times the match
// strength of the query tokens in that field. A token's strength is the
// length ratio between it and the indexed token it prefixes, so closer
// matches rank higher. Ties keep the order entries were given to Build.
//
// # Results
//
// Search returns [Result] values: ID, type, slug, title, description and
// tags. Body content is indexed for matching but never stored, so it cannot
// leak into results.
//
// # Thread Safety
//
// An Index is read-only after Build and safe for concurrent use. A nil
// *Index is valid and behaves as an empty index.
package index
