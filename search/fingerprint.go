package search

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/jonwraymond/sitesearch/index"
)

// computeFingerprint generates a stable hash of the entry slice.
// The fingerprint changes when any indexed field or the entry order
// changes, which lets the engine skip rebuilds of unchanged content.
func computeFingerprint(entries []index.Entry) string {
	h := sha256.New()

	for _, e := range entries {
		h.Write([]byte(e.ID))
		h.Write([]byte{0}) // separator
		h.Write([]byte(e.Type))
		h.Write([]byte{0})
		h.Write([]byte(e.Slug))
		h.Write([]byte{0})
		h.Write([]byte(e.Title))
		h.Write([]byte{0})
		h.Write([]byte(e.Description))
		h.Write([]byte{0})
		h.Write([]byte(e.Content))
		h.Write([]byte{0})

		// Tag order is part of the returned result.
		h.Write([]byte(strings.Join(e.Tags, "\x01")))
		h.Write([]byte{0})
	}

	return hex.EncodeToString(h.Sum(nil))
}
