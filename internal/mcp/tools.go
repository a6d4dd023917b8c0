package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/dshills/domdrift/internal/report"
	"github.com/dshills/domdrift/internal/storage"
	"github.com/dshills/domdrift/pkg/types"
)

// MCP error codes
const (
	ErrorCodeInvalidParams      = -32602 // Invalid method parameters
	ErrorCodeInternalError      = -32603 // Internal JSON-RPC error
	ErrorCodeNotFound           = -32001 // Comparison ID not in history
	ErrorCodeStorageUnavailable = -32002 // History storage is disabled
)

// MaxDocumentBytes caps each document read by compare_html
const MaxDocumentBytes = 16 << 20

// handleCompareHTML handles the compare_html tool invocation
func (s *Server) handleCompareHTML(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	// Extract and validate parameters
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	docA, nameA, err := loadDocument(args, "a")
	if err != nil {
		return nil, err
	}
	docB, nameB, err := loadDocument(args, "b")
	if err != nil {
		return nil, err
	}

	versionA := getStringDefault(args, "version_a", nameA)
	versionB := getStringDefault(args, "version_b", nameB)

	// Per-request options start from the server defaults
	opts := s.engine.Options()
	opts.ChunkSize = getIntDefault(args, "chunk_size", opts.ChunkSize)
	opts.UseCache = getBoolDefault(args, "use_cache", opts.UseCache)

	if name, ok := args["hash_algorithm"].(string); ok {
		algorithm, err := types.ParseAlgorithm(name)
		if err != nil {
			return nil, newMCPError(ErrorCodeInvalidParams, "invalid hash_algorithm", map[string]interface{}{
				"param":   "hash_algorithm",
				"value":   name,
				"allowed": []string{string(types.AlgorithmXXHash), string(types.AlgorithmSHA256)},
			})
		}
		opts.Algorithm = algorithm
	}

	if name, ok := args["method"].(string); ok {
		method, err := types.ParseMethod(name)
		if err != nil {
			return nil, newMCPError(ErrorCodeInvalidParams, "invalid method", map[string]interface{}{
				"param":   "method",
				"value":   name,
				"allowed": []string{string(types.MethodLite), string(types.MethodTree)},
			})
		}
		opts.Method = method
	}

	comparison, err := s.engine.CompareHTML(docA, docB, opts)
	if err != nil {
		if errors.Is(err, types.ErrInvalidConfiguration) {
			return nil, newMCPError(ErrorCodeInvalidParams, "invalid comparison options", map[string]interface{}{
				"error": err.Error(),
			})
		}
		return nil, newMCPError(ErrorCodeInternalError, "comparison failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	var entries []types.LineDiffEntry
	if getBoolDefault(args, "line_diff", s.lineDiff) {
		entries, err = s.engine.LineDiff(comparison)
		if err != nil {
			return nil, newMCPError(ErrorCodeInternalError, "line diff failed", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	r, err := report.New(versionA, versionB, comparison.Result, entries)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to build report", map[string]interface{}{
			"error": err.Error(),
		})
	}

	if getBoolDefault(args, "save", false) {
		if err := s.save(ctx, r, getStringDefault(args, "label", "")); err != nil {
			return nil, err
		}
	}

	s.logger.Debug("compared documents",
		"version_a", versionA,
		"version_b", versionB,
		"method", comparison.Result.Method,
		"difference_percent", comparison.Result.DifferencePercent)

	data, err := r.JSON()
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to encode report", map[string]interface{}{
			"error": err.Error(),
		})
	}

	return mcp.NewToolResultText(string(data)), nil
}

// save stores a report in the comparison history
func (s *Server) save(ctx context.Context, r *report.Report, label string) error {
	if s.storage == nil {
		return newMCPError(ErrorCodeStorageUnavailable, "comparison history is disabled", nil)
	}

	c, err := storage.FromReport(r)
	if err != nil {
		return newMCPError(ErrorCodeInternalError, "failed to convert report", map[string]interface{}{
			"error": err.Error(),
		})
	}
	c.Label = label

	if err := s.storage.SaveComparison(ctx, c); err != nil {
		return newMCPError(ErrorCodeInternalError, "failed to save comparison", map[string]interface{}{
			"error": err.Error(),
		})
	}

	return nil
}

// handleListComparisons handles the list_comparisons tool invocation
func (s *Server) handleListComparisons(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		args = map[string]interface{}{}
	}

	if s.storage == nil {
		return nil, newMCPError(ErrorCodeStorageUnavailable, "comparison history is disabled", nil)
	}

	limit := getIntDefault(args, "limit", storage.DefaultListLimit)
	if limit < 1 || limit > 100 {
		return nil, newMCPError(ErrorCodeInvalidParams, "limit must be between 1 and 100", map[string]interface{}{
			"param": "limit",
			"value": limit,
		})
	}

	comparisons, err := s.storage.ListComparisons(ctx, storage.ListFilter{
		Limit:   limit,
		Version: getStringDefault(args, "version", ""),
		Label:   getStringDefault(args, "label", ""),
	})
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to list comparisons", map[string]interface{}{
			"error": err.Error(),
		})
	}

	items := make([]map[string]interface{}, 0, len(comparisons))
	for _, c := range comparisons {
		items = append(items, map[string]interface{}{
			"id":                 c.ID,
			"label":              c.Label,
			"version_a":          c.VersionA,
			"version_b":          c.VersionB,
			"difference_percent": c.Result.DifferencePercent,
			"method":             c.Result.Method,
			"algorithm":          c.Result.Algorithm,
			"chunk_size":         c.Result.ChunkSize,
			"line_diff_count":    c.LineDiffCount,
			"created_at":         c.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}

	response := map[string]interface{}{
		"comparisons": items,
		"count":       len(items),
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleGetComparison handles the get_comparison tool invocation
func (s *Server) handleGetComparison(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	id, ok := args["id"].(string)
	if !ok || id == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "id parameter is required", map[string]interface{}{
			"param":  "id",
			"reason": "missing or empty",
		})
	}

	if s.storage == nil {
		return nil, newMCPError(ErrorCodeStorageUnavailable, "comparison history is disabled", nil)
	}

	c, err := s.storage.GetComparison(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, newMCPError(ErrorCodeNotFound, "comparison not found", map[string]interface{}{
			"id": id,
		})
	}
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to get comparison", map[string]interface{}{
			"error": err.Error(),
		})
	}

	data, err := json.MarshalIndent(struct {
		Label string `json:"label,omitempty"`
		*report.Report
	}{Label: c.Label, Report: c.Report()}, "", "  ")
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to encode comparison", map[string]interface{}{
			"error": err.Error(),
		})
	}

	return mcp.NewToolResultText(string(data)), nil
}

// handleGetStatus handles the get_status tool invocation
func (s *Server) handleGetStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stats := s.engine.Stats()
	opts := s.engine.Options()

	response := map[string]interface{}{
		"server": map[string]interface{}{
			"name":    ServerName,
			"version": ServerVersion,
		},
		"engine": map[string]interface{}{
			"comparisons":    stats.Comparisons,
			"workers":        stats.Workers,
			"chunk_size":     opts.ChunkSize,
			"hash_algorithm": opts.Algorithm,
			"method":         opts.Method,
			"use_cache":      opts.UseCache,
		},
		"cache": map[string]interface{}{
			"entries":   stats.Cache.Entries,
			"limit":     stats.Cache.Limit,
			"hits":      stats.Cache.Hits,
			"misses":    stats.Cache.Misses,
			"evictions": stats.Cache.Evictions,
			"hit_rate":  fmt.Sprintf("%.2f", stats.Cache.HitRate()),
		},
	}

	if s.storage == nil {
		response["history"] = map[string]interface{}{
			"enabled": false,
		}
		return mcp.NewToolResultText(formatJSON(response)), nil
	}

	status, err := s.storage.GetStatus(ctx)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to get status", map[string]interface{}{
			"error": err.Error(),
		})
	}

	history := map[string]interface{}{
		"enabled":           true,
		"schema_version":    status.SchemaVersion,
		"comparisons_count": status.ComparisonsCount,
		"line_diffs_count":  status.LineDiffsCount,
		"database_size_mb":  fmt.Sprintf("%.2f", status.DatabaseSizeMB),
		"build_mode":        status.BuildMode,
		"driver":            status.DriverName,
		"health": map[string]interface{}{
			"database_accessible": status.Health.DatabaseAccessible,
			"schema_current":      status.Health.SchemaCurrent,
		},
	}
	if !status.LastComparisonAt.IsZero() {
		history["last_comparison_at"] = status.LastComparisonAt.Format("2006-01-02T15:04:05Z07:00")
	}
	response["history"] = history

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

// loadDocument resolves html_<side> or path_<side> to document text and a
// default version name
func loadDocument(args map[string]interface{}, side string) (string, string, error) {
	htmlKey := "html_" + side
	pathKey := "path_" + side

	if doc, ok := args[htmlKey].(string); ok {
		if len(doc) > MaxDocumentBytes {
			return "", "", newMCPError(ErrorCodeInvalidParams, "document too large", map[string]interface{}{
				"param": htmlKey,
				"limit": MaxDocumentBytes,
			})
		}
		return doc, side, nil
	}

	path, ok := args[pathKey].(string)
	if !ok || path == "" {
		return "", "", newMCPError(ErrorCodeInvalidParams, fmt.Sprintf("%s or %s parameter is required", htmlKey, pathKey), map[string]interface{}{
			"param":  pathKey,
			"reason": "missing or empty",
		})
	}

	if err := validatePath(path); err != nil {
		return "", "", newMCPError(ErrorCodeInvalidParams, "invalid path", map[string]interface{}{
			"param":  pathKey,
			"reason": err.Error(),
		})
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", "", newMCPError(ErrorCodeInvalidParams, "invalid path", map[string]interface{}{
			"param":  pathKey,
			"reason": ErrPathNotReadable.Error(),
		})
	}

	return string(data), path, nil
}

// validatePath checks that a path names a readable document of acceptable size
func validatePath(path string) error {
	if path == "" {
		return ErrPathRequired
	}

	// Check if path is absolute
	if !filepath.IsAbs(path) {
		return ErrPathNotAbsolute
	}

	// Check if path exists
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return ErrPathNotFound
	}
	if err != nil {
		return ErrPathNotReadable
	}

	if info.IsDir() {
		return ErrIsDirectory
	}

	if info.Size() > MaxDocumentBytes {
		return ErrFileTooLarge
	}

	return nil
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

// getStringDefault extracts a string parameter with a default value
func getStringDefault(args map[string]interface{}, key string, defaultValue string) string {
	if val, ok := args[key].(string); ok && val != "" {
		return val
	}
	return defaultValue
}

// Validation helpers

var (
	ErrPathRequired    = errors.New("path is required")
	ErrPathNotAbsolute = errors.New("path must be absolute")
	ErrPathNotFound    = errors.New("path does not exist")
	ErrPathNotReadable = errors.New("path is not readable")
	ErrIsDirectory     = errors.New("path is a directory")
	ErrFileTooLarge    = errors.New("file exceeds the document size limit")
)
