package index

import "slices"

// Type partitions entries by the kind of content they came from.
type Type string

const (
	// TypeBlog marks entries built from blog posts.
	TypeBlog Type = "blog"

	// TypeProjects marks entries built from project records.
	TypeProjects Type = "projects"
)

// Types lists the known content types in their canonical order.
var Types = []Type{TypeBlog, TypeProjects}

// Valid reports whether t is one of the known content types.
func (t Type) Valid() bool {
	return slices.Contains(Types, t)
}

// EntryID returns the canonical entry identifier (type:slug).
func EntryID(t Type, slug string) string {
	return string(t) + ":" + slug
}

// Entry is one indexable content record.
//
// Content is matched against but never returned from a search.
type Entry struct {
	ID          string
	Type        Type
	Slug        string
	Title       string
	Description string
	Tags        []string
	Content     string
}

// Result is the public projection of an Entry returned by a search.
// It has no body field.
type Result struct {
	ID          string   `json:"id"`
	Type        Type     `json:"type"`
	Slug        string   `json:"slug"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
}

// Result projects the entry into its searchable summary.
func (e Entry) Result() Result {
	tags := make([]string, len(e.Tags))
	copy(tags, e.Tags)
	return Result{
		ID:          e.ID,
		Type:        e.Type,
		Slug:        e.Slug,
		Title:       e.Title,
		Description: e.Description,
		Tags:        tags,
	}
}
