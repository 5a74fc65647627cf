package content

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"slices"
	"strings"

	"github.com/jonwraymond/sitesearch/index"
)

// ErrUnknownType is returned by loaders asked for a content type they do not
// know about.
var ErrUnknownType = errors.New("content: unknown type")

// DefaultExtensions are the file extensions FSLoader reads.
var DefaultExtensions = []string{".mdx"}

// Loader lists the raw content items of one type.
type Loader interface {
	ListEntries(ctx context.Context, t index.Type) ([]Item, error)
}

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc func(ctx context.Context, t index.Type) ([]Item, error)

// ListEntries calls f(ctx, t).
func (f LoaderFunc) ListEntries(ctx context.Context, t index.Type) ([]Item, error) {
	return f(ctx, t)
}

// FSLoader reads content files laid out as <type>/<slug><ext>.
//
// A missing type directory yields no items. A file that cannot be read or
// whose frontmatter cannot be parsed is skipped and logged, so one bad file
// never breaks the whole index.
type FSLoader struct {
	// FS is the content root.
	FS fs.FS

	// Extensions selects which files are content. Default: DefaultExtensions
	Extensions []string

	// Logger receives skipped-file warnings. If nil, logs are discarded.
	Logger *slog.Logger
}

// NewFSLoader returns an FSLoader rooted at the directory root.
func NewFSLoader(root string, logger *slog.Logger) *FSLoader {
	return &FSLoader{FS: os.DirFS(root), Logger: logger}
}

// ListEntries implements Loader. Items are returned in file name order.
func (l *FSLoader) ListEntries(ctx context.Context, t index.Type) ([]Item, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, t)
	}

	dir := string(t)
	dirEntries, err := fs.ReadDir(l.FS, dir)
	if errors.Is(err, fs.ErrNotExist) {
		return []Item{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("content: list %s: %w", t, err)
	}

	logger := l.logger()
	items := make([]Item, 0, len(dirEntries))
	for _, de := range dirEntries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if de.IsDir() {
			continue
		}
		slug, ok := l.slugOf(de.Name())
		if !ok {
			continue
		}

		name := path.Join(dir, de.Name())
		data, err := fs.ReadFile(l.FS, name)
		if err != nil {
			logger.Warn("skipping unreadable content file",
				slog.String("file", name),
				slog.String("error", err.Error()),
			)
			continue
		}
		fm, body, err := ParseFrontmatter(data)
		if err != nil {
			logger.Warn("skipping content file with bad frontmatter",
				slog.String("file", name),
				slog.String("error", err.Error()),
			)
			continue
		}

		items = append(items, Item{Slug: slug, Frontmatter: fm, Body: body})
	}
	return items, nil
}

func (l *FSLoader) slugOf(name string) (string, bool) {
	exts := l.Extensions
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	if strings.HasPrefix(name, ".") {
		return "", false
	}
	ext := path.Ext(name)
	if !slices.Contains(exts, ext) {
		return "", false
	}
	return strings.TrimSuffix(name, ext), true
}

func (l *FSLoader) logger() *slog.Logger {
	if l.Logger != nil {
		return l.Logger
	}
	return slog.New(slog.DiscardHandler)
}

// StaticLoader serves items held in memory, keyed by type.
type StaticLoader map[index.Type][]Item

// ListEntries implements Loader. Unknown types yield no items.
func (s StaticLoader) ListEntries(_ context.Context, t index.Type) ([]Item, error) {
	return slices.Clone(s[t]), nil
}
