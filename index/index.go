package index

import (
	"slices"
	"unicode/utf8"
)

// posting records that a token occurs in one field of one entry.
type posting struct {
	doc   int32
	field Field
}

// Index is an immutable inverted index over a fixed set of entries.
//
// The vocabulary is kept sorted so every indexed token sharing a prefix
// sits in one contiguous run; a prefix lookup is a binary search followed
// by a forward scan. An Index is safe for concurrent readers.
type Index struct {
	weights Weights

	docs []Result
	ids  map[string]int32

	vocab     []string
	termRunes []int
	postings  [][]posting
}

// Build constructs an index over entries. Entries keep their order, which
// breaks ties between equally scored results.
//
// Build never rejects an entry and never retains Content.
func Build(entries []Entry, opts ...Option) *Index {
	o := buildOptions{weights: DefaultWeights}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	ix := &Index{
		weights: o.weights,
		docs:    make([]Result, len(entries)),
		ids:     make(map[string]int32, len(entries)),
	}

	byTerm := make(map[string][]posting)
	for i, e := range entries {
		doc := int32(i)
		ix.docs[i] = e.Result()
		if _, dup := ix.ids[e.ID]; !dup {
			ix.ids[e.ID] = doc
		}

		addPostings(byTerm, doc, FieldTitle, Tokenize(e.Title))
		addPostings(byTerm, doc, FieldDescription, Tokenize(e.Description))
		var tagTokens []string
		for _, tag := range e.Tags {
			tagTokens = append(tagTokens, Tokenize(tag)...)
		}
		addPostings(byTerm, doc, FieldTags, tagTokens)
		addPostings(byTerm, doc, FieldContent, Tokenize(e.Content))
	}

	ix.vocab = make([]string, 0, len(byTerm))
	for term := range byTerm {
		ix.vocab = append(ix.vocab, term)
	}
	slices.Sort(ix.vocab)

	ix.termRunes = make([]int, len(ix.vocab))
	ix.postings = make([][]posting, len(ix.vocab))
	for i, term := range ix.vocab {
		ix.termRunes[i] = utf8.RuneCountInString(term)
		ix.postings[i] = slices.Clip(byTerm[term])
	}

	return ix
}

// addPostings appends one posting per distinct token. Entries and fields are
// visited in order, so every posting list stays sorted by (doc, field).
func addPostings(byTerm map[string][]posting, doc int32, field Field, tokens []string) {
	if len(tokens) == 0 {
		return
	}
	seen := make(map[string]struct{}, len(tokens))
	for _, tok := range tokens {
		if _, ok := seen[tok]; ok {
			continue
		}
		seen[tok] = struct{}{}
		byTerm[tok] = append(byTerm[tok], posting{doc: doc, field: field})
	}
}

// Len returns the number of indexed entries.
func (ix *Index) Len() int {
	if ix == nil {
		return 0
	}
	return len(ix.docs)
}

// Terms returns the number of distinct indexed tokens.
func (ix *Index) Terms() int {
	if ix == nil {
		return 0
	}
	return len(ix.vocab)
}

// Weights returns the field weights the index scores with.
func (ix *Index) Weights() Weights {
	if ix == nil {
		return DefaultWeights
	}
	return ix.weights
}

// Get returns the stored projection for an entry ID.
func (ix *Index) Get(id string) (Result, bool) {
	if ix == nil {
		return Result{}, false
	}
	doc, ok := ix.ids[id]
	if !ok {
		return Result{}, false
	}
	return cloneResult(ix.docs[doc]), true
}

func cloneResult(r Result) Result {
	r.Tags = slices.Clone(r.Tags)
	if r.Tags == nil {
		r.Tags = []string{}
	}
	return r
}
