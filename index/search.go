package index

import (
	"cmp"
	"slices"
	"sort"
	"strings"
	"unicode/utf8"
)

// Hit is a search result together with its combined score.
type Hit struct {
	Result
	Score float64 `json:"score"`
}

// Hits is an ordered list of hits, best first.
type Hits []Hit

// IDs returns the entry IDs in rank order.
func (h Hits) IDs() []string {
	ids := make([]string, len(h))
	for i, hit := range h {
		ids[i] = hit.ID
	}
	return ids
}

// Results strips the scores.
func (h Hits) Results() []Result {
	results := make([]Result, len(h))
	for i, hit := range h {
		results[i] = hit.Result
	}
	return results
}

// FilterByType keeps hits of the given content type.
func (h Hits) FilterByType(t Type) Hits {
	filtered := Hits{}
	for _, hit := range h {
		if hit.Type == t {
			filtered = append(filtered, hit)
		}
	}
	return filtered
}

// FilterByMinScore keeps hits scoring at least minScore.
func (h Hits) FilterByMinScore(minScore float64) Hits {
	filtered := Hits{}
	for _, hit := range h {
		if hit.Score >= minScore {
			filtered = append(filtered, hit)
		}
	}
	return filtered
}

// Query searches ix and returns at most limit results. A nil index, an
// empty query, or a query without any word characters yields an empty,
// non-nil slice.
func Query(ix *Index, text string, limit int) []Result {
	return ix.Search(text, limit)
}

// Search returns the best matching results for query. See SearchHits.
func (ix *Index) Search(query string, limit int) []Result {
	return ix.SearchHits(query, limit).Results()
}

// SearchHits ranks entries against query.
//
// Each query token matches every indexed token it is a prefix of. Within a
// field a token contributes its best match quality, the ratio of query token
// length to indexed token length, so "route" scores higher against "router"
// than against "routers". An entry's score is the sum over fields of the
// field weight times the summed token qualities in that field.
//
// Results are ordered by descending score, then by build order. limit <= 0
// means DefaultLimit.
func (ix *Index) SearchHits(query string, limit int) Hits {
	return ix.search(query, limit, "")
}

// SearchType is like SearchHits but only ranks entries of type t. The limit
// applies after filtering. An empty t matches every type.
func (ix *Index) SearchType(query string, limit int, t Type) Hits {
	return ix.search(query, limit, t)
}

func (ix *Index) search(query string, limit int, t Type) Hits {
	if ix == nil || len(ix.docs) == 0 || strings.TrimSpace(query) == "" {
		return Hits{}
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	tokens := queryTokens(query)
	if len(tokens) == 0 {
		return Hits{}
	}

	slots := len(ix.docs) * int(numFields)
	strength := make([]float64, slots)
	best := make([]float64, slots)
	matched := make([]bool, len(ix.docs))
	var touched []int

	for _, q := range tokens {
		qLen := float64(utf8.RuneCountInString(q))
		touched = touched[:0]

		for i := sort.SearchStrings(ix.vocab, q); i < len(ix.vocab); i++ {
			if !strings.HasPrefix(ix.vocab[i], q) {
				break
			}
			quality := qLen / float64(ix.termRunes[i])
			for _, p := range ix.postings[i] {
				slot := int(p.doc)*int(numFields) + int(p.field)
				if best[slot] == 0 {
					touched = append(touched, slot)
				}
				if quality > best[slot] {
					best[slot] = quality
				}
				matched[p.doc] = true
			}
		}

		// Each slot receives at most one addition per token, in token
		// order, which keeps float sums identical across runs.
		for _, slot := range touched {
			strength[slot] += best[slot]
			best[slot] = 0
		}
	}

	hits := make([]scoredDoc, 0)
	for doc, ok := range matched {
		if !ok || (t != "" && ix.docs[doc].Type != t) {
			continue
		}
		base := doc * int(numFields)
		var score float64
		for f := Field(0); f < numFields; f++ {
			score += ix.weights.of(f) * strength[base+int(f)]
		}
		hits = append(hits, scoredDoc{doc: doc, score: score})
	}

	slices.SortFunc(hits, func(a, b scoredDoc) int {
		if c := cmp.Compare(b.score, a.score); c != 0 {
			return c
		}
		return cmp.Compare(a.doc, b.doc)
	})
	if len(hits) > limit {
		hits = hits[:limit]
	}

	out := make(Hits, len(hits))
	for i, h := range hits {
		out[i] = Hit{Result: cloneResult(ix.docs[h.doc]), Score: h.score}
	}
	return out
}

type scoredDoc struct {
	doc   int
	score float64
}
