// Package server exposes a search.Engine over MCP and HTTP.
//
// A [Server] owns a small tool table validated with toolfoundation's model
// package. The built-in tools are search_content, index_stats and, when a
// content source is configured, reindex.
//
// # MCP
//
// [Server.HandleRequest] implements the JSON-RPC methods initialize, ping,
// tools/list and tools/call. Tool results are returned as MCP
// CallToolResult values carrying both a JSON text block and structured
// content. [ServeStdio] speaks line-delimited JSON-RPC; [MCPHandler] and
// [SSEHandler] serve single requests over HTTP.
//
//	srv, _ := server.New(server.Config{Engine: eng, Source: src})
//	_ = server.ServeStdio(ctx, srv, os.Stdin, os.Stdout)
//
// # HTTP
//
// [NewHTTPHandler] builds an echo router with the JSON search API, health
// and metrics endpoints, and the MCP transports mounted under /mcp.
package server
