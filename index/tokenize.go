package index

import (
	"github.com/blevesearch/bleve/v2/analysis"
	"github.com/blevesearch/bleve/v2/analysis/token/lowercase"
	"github.com/blevesearch/bleve/v2/analysis/tokenizer/unicode"
)

// Both stages are stateless and safe to share across goroutines.
var (
	wordTokenizer = unicode.NewUnicodeTokenizer()
	lowerFilter   = lowercase.NewLowerCaseFilter()
)

// Tokenize splits text into lower-cased word tokens using Unicode word
// boundaries. Punctuation and whitespace never produce tokens.
//
// Tokens keep their original order and may repeat.
func Tokenize(text string) []string {
	if text == "" {
		return nil
	}
	stream := analyze([]byte(text))
	if len(stream) == 0 {
		return nil
	}
	tokens := make([]string, 0, len(stream))
	for _, tok := range stream {
		if len(tok.Term) == 0 {
			continue
		}
		tokens = append(tokens, string(tok.Term))
	}
	return tokens
}

// queryTokens tokenizes a query and drops repeated tokens so a word typed
// twice does not count twice.
func queryTokens(query string) []string {
	tokens := Tokenize(query)
	if len(tokens) < 2 {
		return tokens
	}
	seen := make(map[string]struct{}, len(tokens))
	out := tokens[:0]
	for _, tok := range tokens {
		if _, dup := seen[tok]; dup {
			continue
		}
		seen[tok] = struct{}{}
		out = append(out, tok)
	}
	return out
}

func analyze(input []byte) analysis.TokenStream {
	return lowerFilter.Filter(wordTokenizer.Tokenize(input))
}
