package server

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jonwraymond/toolfoundation/model"

	"github.com/jonwraymond/sitesearch/index"
	"github.com/jonwraymond/sitesearch/search"
)

// Config configures a Server.
type Config struct {
	// Engine answers queries. Required.
	Engine *search.Engine

	// Source is used by Reindex. If nil, Reindex returns ErrNoSource.
	Source search.Source

	// ServerInfo is reported in the MCP initialize response.
	ServerInfo ServerInfo

	// Logger receives request and reindex events. If nil, logs are discarded.
	Logger *slog.Logger
}

// ServerInfo describes this MCP server for initialize response.
type ServerInfo struct {
	Name    string
	Version string
}

// DefaultServerInfo is used when Config.ServerInfo is empty.
var DefaultServerInfo = ServerInfo{Name: "sitesearch", Version: "dev"}

type registeredTool struct {
	tool    model.Tool
	handler ToolHandler
}

// Server exposes a search.Engine to outer surfaces: MCP tools over stdio or
// HTTP, and the JSON API in NewHTTPHandler.
type Server struct {
	engine *search.Engine
	source search.Source
	info   ServerInfo
	logger *slog.Logger

	mu    sync.RWMutex
	tools map[string]registeredTool
	order []string
}

// New creates a Server with the built-in content tools registered.
func New(cfg Config) (*Server, error) {
	if cfg.Engine == nil {
		return nil, fmt.Errorf("server: nil engine")
	}
	info := cfg.ServerInfo
	if info.Name == "" {
		info.Name = DefaultServerInfo.Name
	}
	if info.Version == "" {
		info.Version = DefaultServerInfo.Version
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	s := &Server{
		engine: cfg.Engine,
		source: cfg.Source,
		info:   info,
		logger: logger.With(slog.String("component", "server")),
		tools:  make(map[string]registeredTool),
	}
	if err := s.registerBuiltins(); err != nil {
		return nil, err
	}
	return s, nil
}

// RegisterTool adds a tool with its handler. Tools are listed in
// registration order.
func (s *Server) RegisterTool(tool model.Tool, handler ToolHandler) error {
	if err := tool.Validate(); err != nil {
		return fmt.Errorf("invalid tool: %w", err)
	}
	if handler == nil {
		return fmt.Errorf("invalid tool %s: nil handler", tool.Name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tools[tool.Name]; exists {
		return fmt.Errorf("%w: %s", ErrToolExists, tool.Name)
	}
	s.tools[tool.Name] = registeredTool{tool: tool, handler: handler}
	s.order = append(s.order, tool.Name)
	return nil
}

// Tools returns every registered tool.
func (s *Server) Tools() []model.Tool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tools := make([]model.Tool, 0, len(s.order))
	for _, name := range s.order {
		tools = append(tools, s.tools[name].tool)
	}
	return tools
}

// Execute runs a tool by name with the given arguments.
func (s *Server) Execute(ctx context.Context, name string, args map[string]any) (any, error) {
	s.mu.RLock()
	rt, ok := s.tools[name]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrToolNotFound, name)
	}
	return rt.handler(ctx, args)
}

// Search queries the engine. A limit <= 0 selects the engine default. A
// non-empty t restricts results to that content type; the limit applies
// after filtering.
func (s *Server) Search(query string, limit int, t index.Type) index.Hits {
	return s.engine.SearchType(query, limit, t)
}

// Reindex rebuilds the engine from the configured source.
func (s *Server) Reindex(ctx context.Context) (search.Stats, error) {
	if s.source == nil {
		return search.Stats{}, ErrNoSource
	}
	stats, err := s.engine.Rebuild(ctx, s.source)
	if err != nil {
		return search.Stats{}, err
	}
	s.logger.Info("reindexed",
		slog.Uint64("version", stats.Version),
		slog.Bool("changed", stats.Changed),
	)
	return stats, nil
}

// Stats returns the stats of the installed index.
func (s *Server) Stats() (search.Stats, error) {
	stats, ok := s.engine.Stats()
	if !ok {
		return search.Stats{}, ErrNotReady
	}
	return stats, nil
}

// HealthCheck returns nil once an index has been installed.
func (s *Server) HealthCheck(context.Context) error {
	if !s.engine.Ready() {
		return ErrNotReady
	}
	return nil
}

// Info returns the server identity.
func (s *Server) Info() ServerInfo {
	return s.info
}
