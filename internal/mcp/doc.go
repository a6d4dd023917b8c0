// Package mcp implements the Model Context Protocol (MCP) server for domdrift.
//
// The MCP server exposes four tools to AI assistants:
//   - compare_html: compare two HTML documents and optionally store the result
//   - list_comparisons: list stored comparisons, newest first
//   - get_comparison: fetch one stored comparison with its line diffs
//   - get_status: engine, cache and history database statistics
//
// # Protocol Overview
//
// MCP is a JSON-RPC 2.0 protocol over stdio transport:
//
//	Client → Server: {"method": "tools/call", "params": {...}}
//	Server → Client: {"result": {...}}
//
// # Basic Usage
//
// The MCP server is started via the serve command:
//
//	domdrift serve
//
// # Tool: compare_html
//
// Documents are given inline or as absolute file paths:
//
//	Request:
//	{
//	  "name": "compare_html",
//	  "arguments": {
//	    "path_a": "/site/build-41/index.html",
//	    "path_b": "/site/build-42/index.html",
//	    "chunk_size": 4,
//	    "method": "tree",
//	    "line_diff": true,
//	    "save": true
//	  }
//	}
//
//	Response:
//	{
//	  "id": "01906c1e-...",
//	  "version_a": "/site/build-41/index.html",
//	  "version_b": "/site/build-42/index.html",
//	  "difference_percent": 12.5,
//	  "total_chunks_a": 40,
//	  "total_chunks_b": 41,
//	  "common_chunks": 35,
//	  "different_chunks": 5,
//	  "method": "tree",
//	  "line_diffs": [
//	    {"line_range": "L16", "change_type": "modified", "content_preview": "~TEXT:Sale"}
//	  ]
//	}
//
// # Error Handling
//
// Tool errors carry JSON-RPC codes:
//   - -32602: Invalid params (missing/invalid arguments, bad configuration)
//   - -32603: Internal error (database, filesystem)
//   - -32001: Comparison not found
//   - -32002: History storage disabled
//
// # Logging
//
// The server logs to stderr; stdout is reserved for the protocol.
package mcp
