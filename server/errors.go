package server

import "errors"

// Sentinel errors for consistent error handling.
var (
	ErrNotReady         = errors.New("search index not built")
	ErrNoSource         = errors.New("no content source configured")
	ErrToolNotFound     = errors.New("tool not found")
	ErrToolExists       = errors.New("tool already registered")
	ErrInvalidArguments = errors.New("invalid arguments")
	ErrExecutionFailed  = errors.New("tool execution failed")
)

// JSON-RPC 2.0 error codes, plus MCP tool codes in the server range.
const (
	ErrCodeParseError     = -32700
	ErrCodeInvalidRequest = -32600
	ErrCodeMethodNotFound = -32601
	ErrCodeInvalidParams  = -32602
	ErrCodeInternal       = -32603
	ErrCodeToolNotFound   = -32001
	ErrCodeToolExecFailed = -32002
)
