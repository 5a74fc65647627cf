// Package content loads blog posts and project records and turns them into
// index entries.
//
// A [Loader] lists raw [Item] values per content type. [FSLoader] reads
// files laid out as <root>/<type>/<slug>.mdx with a YAML frontmatter header;
// [StaticLoader] serves items from memory. [BuildEntries] normalizes items
// into index.Entry values, and [Source] wires a Loader into a search.Engine:
//
//	loader := content.NewFSLoader("content", logger)
//	eng := search.NewEngine(search.Options{Logger: logger})
//	if _, err := eng.Rebuild(ctx, content.NewSource(loader, logger)); err != nil {
//	    return err
//	}
//
// [Watcher] watches the content root and calls back after a debounced burst
// of file changes, typically to trigger a rebuild.
package content
