package server

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/jonwraymond/toolfoundation/model"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/jonwraymond/sitesearch/index"
)

// ToolHandler executes a tool with the given arguments.
// It receives a context for cancellation and a map of arguments parsed from the MCP request.
// It returns the result as any (typically a struct) and an error if execution fails.
type ToolHandler func(ctx context.Context, args map[string]any) (any, error)

// MaxLimit caps the limit accepted from outer surfaces.
const MaxLimit = 50

// Built-in tool names.
const (
	ToolSearchContent = "search_content"
	ToolIndexStats    = "index_stats"
	ToolReindex       = "reindex"
)

// ToolOption configures tool construction.
type ToolOption func(*toolConfig)

type toolConfig struct {
	namespace   string
	tags        []string
	version     string
	annotations *mcp.ToolAnnotations
}

// WithNamespace sets the namespace for a tool.
func WithNamespace(ns string) ToolOption {
	return func(c *toolConfig) {
		c.namespace = ns
	}
}

// WithTags sets the tags for a tool.
func WithTags(tags ...string) ToolOption {
	return func(c *toolConfig) {
		c.tags = tags
	}
}

// WithVersion sets the version for a tool.
func WithVersion(v string) ToolOption {
	return func(c *toolConfig) {
		c.version = v
	}
}

// WithAnnotations sets the MCP behaviour hints for a tool.
func WithAnnotations(a *mcp.ToolAnnotations) ToolOption {
	return func(c *toolConfig) {
		c.annotations = a
	}
}

// BuildTool assembles a tool definition.
func BuildTool(name, description string, inputSchema map[string]any, opts ...ToolOption) model.Tool {
	cfg := toolConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	return model.Tool{
		Tool: mcp.Tool{
			Name:        name,
			Description: description,
			InputSchema: inputSchema,
			Annotations: cfg.annotations,
		},
		Namespace: cfg.namespace,
		Version:   cfg.version,
		Tags:      model.NormalizeTags(cfg.tags),
	}
}

// SearchResponse is the payload returned by the search tool and endpoint.
type SearchResponse struct {
	Query   string         `json:"query"`
	Type    index.Type     `json:"type,omitempty"`
	Count   int            `json:"count"`
	Results []index.Result `json:"results"`

	// Scores parallels Results when requested.
	Scores []float64 `json:"scores,omitempty"`
}

// NewSearchResponse shapes hits for output.
func NewSearchResponse(query string, t index.Type, hits index.Hits, withScores bool) SearchResponse {
	resp := SearchResponse{
		Query:   query,
		Type:    t,
		Count:   len(hits),
		Results: hits.Results(),
	}
	if withScores {
		resp.Scores = make([]float64, len(hits))
		for i, h := range hits {
			resp.Scores[i] = h.Score
		}
	}
	return resp
}

func (s *Server) registerBuiltins() error {
	readOnly := &mcp.ToolAnnotations{ReadOnlyHint: true, IdempotentHint: true}

	searchTool := BuildTool(ToolSearchContent,
		"Full-text search over blog posts and projects. Matches word prefixes in titles, descriptions, tags and body text and returns ranked summaries without body content.",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"query": map[string]any{
					"type":        "string",
					"description": "Free-text query; words may be prefixes",
				},
				"limit": map[string]any{
					"type":        "integer",
					"description": fmt.Sprintf("Maximum results (default %d, max %d)", s.engine.DefaultLimit(), MaxLimit),
					"minimum":     1,
					"maximum":     MaxLimit,
				},
				"type": map[string]any{
					"type":        "string",
					"description": "Restrict results to one content type",
					"enum":        []string{string(index.TypeBlog), string(index.TypeProjects)},
				},
			},
			"required": []string{"query"},
		},
		WithTags("search", "content"),
		WithAnnotations(readOnly),
	)
	if err := s.RegisterTool(searchTool, s.handleSearch); err != nil {
		return err
	}

	statsTool := BuildTool(ToolIndexStats,
		"Reports the version, size and build time of the active search index.",
		map[string]any{"type": "object", "properties": map[string]any{}},
		WithTags("search", "diagnostics"),
		WithAnnotations(readOnly),
	)
	if err := s.RegisterTool(statsTool, s.handleStats); err != nil {
		return err
	}

	if s.source == nil {
		return nil
	}
	notDestructive := false
	reindexTool := BuildTool(ToolReindex,
		"Reloads content and rebuilds the search index. Unchanged content keeps the current index.",
		map[string]any{"type": "object", "properties": map[string]any{}},
		WithTags("search", "admin"),
		WithAnnotations(&mcp.ToolAnnotations{IdempotentHint: true, DestructiveHint: &notDestructive}),
	)
	return s.RegisterTool(reindexTool, s.handleReindex)
}

func (s *Server) handleSearch(_ context.Context, args map[string]any) (any, error) {
	query, err := stringArg(args, "query")
	if err != nil {
		return nil, err
	}
	limit, err := intArg(args, "limit")
	if err != nil {
		return nil, err
	}
	if limit < 0 {
		return nil, fmt.Errorf("%w: limit must not be negative", ErrInvalidArguments)
	}
	limit = min(limit, MaxLimit)

	rawType, err := stringArg(args, "type")
	if err != nil {
		return nil, err
	}
	t := index.Type(strings.TrimSpace(rawType))
	if t != "" && !t.Valid() {
		return nil, fmt.Errorf("%w: unknown type %q", ErrInvalidArguments, rawType)
	}

	return NewSearchResponse(query, t, s.Search(query, limit, t), false), nil
}

func (s *Server) handleStats(context.Context, map[string]any) (any, error) {
	return s.Stats()
}

func (s *Server) handleReindex(ctx context.Context, _ map[string]any) (any, error) {
	return s.Reindex(ctx)
}

func stringArg(args map[string]any, key string) (string, error) {
	v, ok := args[key]
	if !ok || v == nil {
		return "", nil
	}
	str, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: %s must be a string, got %T", ErrInvalidArguments, key, v)
	}
	return str, nil
}

func intArg(args map[string]any, key string) (int, error) {
	v, ok := args[key]
	if !ok || v == nil {
		return 0, nil
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		if n != math.Trunc(n) || math.IsInf(n, 0) {
			return 0, fmt.Errorf("%w: %s must be an integer", ErrInvalidArguments, key)
		}
		return int(n), nil
	default:
		return 0, fmt.Errorf("%w: %s must be a number, got %T", ErrInvalidArguments, key, v)
	}
}
