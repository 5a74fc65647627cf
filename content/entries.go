package content

import (
	"strings"

	"github.com/jonwraymond/sitesearch/index"
)

// BuildEntry normalizes one raw item into an index entry.
//
// Title and description are trimmed, a missing summary becomes "", and
// missing tags become an empty set. The body is passed through untouched.
// ok is false when the item has no slug or no title; such items are not
// indexable and are dropped by BuildEntries.
func BuildEntry(t index.Type, item Item) (index.Entry, bool) {
	slug := strings.TrimSpace(item.Slug)
	title := strings.TrimSpace(item.Frontmatter.Title)
	if slug == "" || title == "" {
		return index.Entry{}, false
	}

	return index.Entry{
		ID:          index.EntryID(t, slug),
		Type:        t,
		Slug:        slug,
		Title:       title,
		Description: strings.TrimSpace(item.Frontmatter.Summary),
		Tags:        normalizeTags(item.Frontmatter.Tags),
		Content:     item.Body,
	}, true
}

// BuildEntries normalizes the items of one type, keeping their order.
// Items without a slug or title are skipped, as are items whose ID repeats
// an earlier one.
func BuildEntries(t index.Type, items []Item) []index.Entry {
	entries := make([]index.Entry, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		e, ok := BuildEntry(t, item)
		if !ok {
			continue
		}
		if _, dup := seen[e.ID]; dup {
			continue
		}
		seen[e.ID] = struct{}{}
		entries = append(entries, e)
	}
	return entries
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			out = append(out, tag)
		}
	}
	return out
}
