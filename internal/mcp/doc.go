// Package mcp implements the Model Context Protocol (MCP) server for pkgctx.
//
// The MCP server exposes R package APIs to AI coding assistants:
//   - extract_package: Extract a package as YAML records without storing it
//   - index_package: Extract a package and store it for search
//   - search_functions: Keyword search over indexed functions
//   - get_function: Fetch one stored function record as YAML
//   - list_packages: List indexed packages
//   - get_status: Check indexing status and statistics of a package
//
// # Protocol Overview
//
// MCP is a JSON-RPC 2.0 protocol over stdio transport:
//
//	Client → Server: {"method": "tools/call", "params": {...}}
//	Server → Client: {"result": {...}}
//
// The server is started via the serve command:
//
//	pkgctx serve
//
// # Tool: extract_package
//
//	Request:
//	{
//	  "name": "extract_package",
//	  "arguments": {
//	    "package": "github:tidyverse/dplyr",
//	    "compact": true,
//	    "hoist_common_args": true
//	  }
//	}
//
// The result is a single text block holding the YAML record stream, one
// document per record, package record first.
//
// # Tool: search_functions
//
//	Request:
//	{
//	  "name": "search_functions",
//	  "arguments": {
//	    "query": "group rows",
//	    "limit": 5,
//	    "package": "dplyr"
//	  }
//	}
//
//	Response:
//	{
//	  "query": "group rows",
//	  "total_results": 2,
//	  "results": [
//	    {
//	      "rank": 1,
//	      "relevance_score": 0.92,
//	      "package": "dplyr",
//	      "name": "group_by",
//	      "signature": "group_by(.data, ..., .add = FALSE)",
//	      "purpose": "Group by one or more variables"
//	    }
//	  ]
//	}
//
// # MCP Client Configuration
//
//	{
//	  "mcpServers": {
//	    "pkgctx": {
//	      "command": "/usr/local/bin/pkgctx",
//	      "args": ["serve"],
//	      "env": {
//	        "PKGCTX_STORAGE_DB_PATH": "/home/me/.cache/pkgctx/index.db"
//	      }
//	    }
//	  }
//	}
//
// # Error Handling
//
// Handlers return *MCPError values:
//   - -32602: Invalid params (missing arguments, bad specifier, limit out of range)
//   - -32603: Internal error (database, filesystem, etc.)
//   - -32001: Package not found
//   - -32002: Indexing in progress
//   - -32003: Package not indexed
//   - -32004: Empty query
//   - -32005: Function not found
//
// Logs go to stderr; stdout is reserved for the protocol.
package mcp
