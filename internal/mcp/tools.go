package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/b-rodrigues/pkgctx/internal/fetch"
	"github.com/b-rodrigues/pkgctx/internal/indexer"
	"github.com/b-rodrigues/pkgctx/internal/introspect"
	"github.com/b-rodrigues/pkgctx/internal/output"
	"github.com/b-rodrigues/pkgctx/internal/storage"
	"github.com/b-rodrigues/pkgctx/pkg/types"
)

// MCP error codes
const (
	ErrorCodeInvalidParams      = -32602 // Invalid method parameters
	ErrorCodeInternalError      = -32603 // Internal JSON-RPC error
	ErrorCodePackageNotFound    = -32001 // Package source cannot be found or is not an R package
	ErrorCodeIndexingInProgress = -32002 // Another indexing operation is already running
	ErrorCodeNotIndexed         = -32003 // Package not indexed
	ErrorCodeEmptyQuery         = -32004 // Query parameter is empty
	ErrorCodeFunctionNotFound   = -32005 // Package indexed but function unknown
)

// maxReportedErrors caps the file errors included in a response
const maxReportedErrors = 5

// handleExtractPackage handles the extract_package tool invocation
func (s *Server) handleExtractPackage(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	spec, err := requireString(args, "package")
	if err != nil {
		return nil, err
	}

	ext, err := s.indexer.Extract(ctx, spec, extractionConfig(args))
	if err != nil {
		return nil, extractionError("extraction failed", err)
	}

	text, err := output.YAML(ext.Records)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to render records", map[string]interface{}{
			"error": err.Error(),
		})
	}
	return mcp.NewToolResultText(text), nil
}

// handleIndexPackage handles the index_package tool invocation
func (s *Server) handleIndexPackage(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	spec, err := requireString(args, "package")
	if err != nil {
		return nil, err
	}

	stats, err := s.indexer.IndexPackage(ctx, spec, extractionConfig(args))
	if errors.Is(err, indexer.ErrIndexingInProgress) {
		return nil, newMCPError(ErrorCodeIndexingInProgress, "another package is being indexed", nil)
	}
	if err != nil {
		return nil, extractionError("indexing failed", err)
	}

	response := map[string]interface{}{
		"indexed":          true,
		"package":          stats.Package,
		"version":          stats.Version,
		"source":           stats.Source,
		"run_id":           stats.RunID,
		"files_parsed":     stats.FilesParsed,
		"files_failed":     stats.FilesFailed,
		"functions_stored": stats.FunctionsStored,
		"warnings":         stats.Warnings,
		"duration_ms":      stats.Duration.Milliseconds(),
	}

	if n := len(stats.ErrorMessages); n > 0 {
		if n > maxReportedErrors {
			response["errors"] = stats.ErrorMessages[:maxReportedErrors]
			response["error_count"] = n
		} else {
			response["errors"] = stats.ErrorMessages
		}
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleSearchFunctions handles the search_functions tool invocation
func (s *Server) handleSearchFunctions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	query, ok := args["query"].(string)
	if !ok || query == "" {
		return nil, newMCPError(ErrorCodeEmptyQuery, "query parameter is required and cannot be empty", map[string]interface{}{
			"param":  "query",
			"reason": "missing or empty",
		})
	}

	limit := getIntDefault(args, "limit", storage.DefaultSearchLimit)
	if limit < 1 || limit > 100 {
		return nil, newMCPError(ErrorCodeInvalidParams, "limit must be between 1 and 100", map[string]interface{}{
			"param": "limit",
			"value": limit,
		})
	}

	minRelevance := getFloatDefault(args, "min_relevance", 0)
	if minRelevance < 0 || minRelevance > 1 {
		return nil, newMCPError(ErrorCodeInvalidParams, "min_relevance must be between 0 and 1", map[string]interface{}{
			"param": "min_relevance",
			"value": minRelevance,
		})
	}

	filters := &storage.SearchFilters{
		ExportedOnly: getBoolDefault(args, "exported_only", false),
		MinRelevance: minRelevance,
	}
	if pkg := getStringDefault(args, "package", ""); pkg != "" {
		if _, err := s.storage.GetPackage(ctx, pkg); err != nil {
			return nil, storageError(pkg, err)
		}
		filters.Packages = []string{pkg}
	}

	start := time.Now()
	results, err := s.storage.SearchFunctions(ctx, query, limit, filters)
	if errors.Is(err, storage.ErrEmptyQuery) {
		return nil, newMCPError(ErrorCodeEmptyQuery, "query contains no searchable terms", map[string]interface{}{
			"param": "query",
			"value": query,
		})
	}
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "search failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	hits := make([]map[string]interface{}, 0, len(results))
	for _, r := range results {
		hits = append(hits, map[string]interface{}{
			"rank":            r.Rank,
			"relevance_score": r.RelevanceScore,
			"package":         r.Package,
			"version":         r.Version,
			"name":            r.Function.Name,
			"signature":       r.Function.Signature,
			"purpose":         r.Function.Purpose,
			"exported":        r.Function.Exported,
		})
	}

	response := map[string]interface{}{
		"query":         query,
		"total_results": len(hits),
		"results":       hits,
		"duration_ms":   time.Since(start).Milliseconds(),
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleGetFunction handles the get_function tool invocation
func (s *Server) handleGetFunction(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	pkg, err := requireString(args, "package")
	if err != nil {
		return nil, err
	}
	name, err := requireString(args, "name")
	if err != nil {
		return nil, err
	}

	if _, err := s.storage.GetPackage(ctx, pkg); err != nil {
		return nil, storageError(pkg, err)
	}

	fn, err := s.storage.GetFunction(ctx, pkg, name)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, newMCPError(ErrorCodeFunctionNotFound, "function not found", map[string]interface{}{
			"package":  pkg,
			"function": name,
		})
	}
	if err != nil {
		return nil, storageError(pkg, err)
	}

	text, err := output.YAML([]types.Record{types.NewFunctionRecord(fn.ToRecord())})
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to render record", map[string]interface{}{
			"error": err.Error(),
		})
	}
	return mcp.NewToolResultText(text), nil
}

// handleListPackages handles the list_packages tool invocation
func (s *Server) handleListPackages(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	packages, err := s.storage.ListPackages(ctx)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to list packages", map[string]interface{}{
			"error": err.Error(),
		})
	}

	list := make([]map[string]interface{}, 0, len(packages))
	for _, p := range packages {
		list = append(list, map[string]interface{}{
			"name":            p.Name,
			"version":         p.Version,
			"functions_count": p.FunctionCount,
			"last_indexed_at": p.LastIndexedAt.Format(time.RFC3339),
		})
	}

	response := map[string]interface{}{
		"total":    len(list),
		"packages": list,
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleGetStatus handles the get_status tool invocation
func (s *Server) handleGetStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	name, err := requireString(args, "package")
	if err != nil {
		return nil, err
	}

	status, err := s.storage.GetStatus(ctx, name)
	if errors.Is(err, storage.ErrNotFound) {
		response := map[string]interface{}{
			"indexed": false,
			"package": name,
			"message": "Package not indexed. Use index_package tool to index this package.",
		}
		return mcp.NewToolResultText(formatJSON(response)), nil
	}
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to get status", map[string]interface{}{
			"error": err.Error(),
		})
	}

	pkg := status.Package
	response := map[string]interface{}{
		"indexed": true,
		"package": map[string]interface{}{
			"name":            pkg.Name,
			"version":         pkg.Version,
			"language":        pkg.Language,
			"source":          pkg.Source,
			"extraction_id":   pkg.ExtractionID,
			"last_indexed_at": pkg.LastIndexedAt.Format(time.RFC3339),
		},
		"statistics": map[string]interface{}{
			"functions_count":  status.FunctionsCount,
			"exported_count":   status.ExportedCount,
			"arguments_count":  status.ArgumentsCount,
			"examples_count":   status.ExamplesCount,
			"common_arguments": len(pkg.CommonArguments),
			"index_size_mb":    fmt.Sprintf("%.2f", status.IndexSizeMB),
		},
		"health": map[string]interface{}{
			"database_accessible": status.Health.DatabaseAccessible,
			"fts_indexes_built":   status.Health.FTSIndexesBuilt,
		},
	}

	if run := status.LastRun; run != nil {
		response["last_run"] = map[string]interface{}{
			"run_id":          run.RunID,
			"files_parsed":    run.FilesParsed,
			"files_failed":    run.FilesFailed,
			"functions_found": run.FunctionsFound,
			"warnings":        run.Warnings,
			"duration_ms":     run.Duration.Milliseconds(),
		}
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// Helper functions

// newMCPError creates a properly formatted MCP error
func newMCPError(code int, message string, data interface{}) error {
	// MCP errors are returned as regular errors, the framework handles encoding
	return &MCPError{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// MCPError represents an MCP protocol error
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// extractionError maps fetch and extraction failures to MCP error codes
func extractionError(message string, err error) error {
	data := map[string]interface{}{"error": err.Error()}
	switch {
	case errors.Is(err, fetch.ErrInvalidSource):
		return newMCPError(ErrorCodeInvalidParams, "invalid package specifier", data)
	case errors.Is(err, fetch.ErrPackageNotFound), errors.Is(err, fetch.ErrNotRPackage):
		return newMCPError(ErrorCodePackageNotFound, "package not found", data)
	case errors.Is(err, indexer.ErrNoIntrospector), errors.Is(err, introspect.ErrIntrospectFailed):
		return newMCPError(ErrorCodePackageNotFound, "installed package not available", data)
	default:
		return newMCPError(ErrorCodeInternalError, message, data)
	}
}

// storageError maps a storage lookup failure for pkg
func storageError(pkg string, err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return newMCPError(ErrorCodeNotIndexed, "package not indexed", map[string]interface{}{
			"package": pkg,
			"hint":    "use index_package first",
		})
	}
	return newMCPError(ErrorCodeInternalError, "storage lookup failed", map[string]interface{}{
		"error": err.Error(),
	})
}

// extractionConfig reads the shared extraction options
func extractionConfig(args map[string]interface{}) *indexer.Config {
	return &indexer.Config{
		IncludeInternal: getBoolDefault(args, "include_internal", false),
		Compact:         getBoolDefault(args, "compact", false),
		HoistCommonArgs: getBoolDefault(args, "hoist_common_args", false),
		Installed:       getBoolDefault(args, "installed", false),
	}
}

// requireString extracts a required non-empty string parameter
func requireString(args map[string]interface{}, key string) (string, error) {
	val, ok := args[key].(string)
	if !ok || val == "" {
		return "", newMCPError(ErrorCodeInvalidParams, key+" parameter is required", map[string]interface{}{
			"param":  key,
			"reason": "missing or empty",
		})
	}
	return val, nil
}

// formatJSON formats a map as indented JSON
func formatJSON(data map[string]interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}

// getBoolDefault extracts a boolean parameter with a default value
func getBoolDefault(args map[string]interface{}, key string, defaultValue bool) bool {
	if val, ok := args[key].(bool); ok {
		return val
	}
	return defaultValue
}

// getIntDefault extracts an integer parameter with a default value
func getIntDefault(args map[string]interface{}, key string, defaultValue int) int {
	if val, ok := args[key].(float64); ok {
		return int(val)
	}
	if val, ok := args[key].(int); ok {
		return val
	}
	return defaultValue
}

// getFloatDefault extracts a number parameter with a default value
func getFloatDefault(args map[string]interface{}, key string, defaultValue float64) float64 {
	switch val := args[key].(type) {
	case float64:
		return val
	case int:
		return float64(val)
	}
	return defaultValue
}

// getStringDefault extracts a string parameter with a default value
func getStringDefault(args map[string]interface{}, key string, defaultValue string) string {
	if val, ok := args[key].(string); ok {
		return val
	}
	return defaultValue
}
