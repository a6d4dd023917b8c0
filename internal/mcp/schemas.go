package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// compareHTMLTool returns the tool definition for compare_html
func compareHTMLTool() mcp.Tool {
	return mcp.Tool{
		Name:        "compare_html",
		Description: "Compare two HTML documents and report the percentage of differing content chunks",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"html_a": map[string]any{
					"type":        "string",
					"description": "Inline HTML of the first document (alternative to path_a)",
				},
				"html_b": map[string]any{
					"type":        "string",
					"description": "Inline HTML of the second document (alternative to path_b)",
				},
				"path_a": map[string]any{
					"type":        "string",
					"description": "Absolute path to the first HTML file",
				},
				"path_b": map[string]any{
					"type":        "string",
					"description": "Absolute path to the second HTML file",
				},
				"version_a": map[string]any{
					"type":        "string",
					"description": "Name recorded for the first document (default: path_a or \"a\")",
				},
				"version_b": map[string]any{
					"type":        "string",
					"description": "Name recorded for the second document (default: path_b or \"b\")",
				},
				"chunk_size": map[string]any{
					"type":        "integer",
					"description": "Tokens per chunk",
					"minimum":     1,
				},
				"hash_algorithm": map[string]any{
					"type":        "string",
					"description": "Chunk digest: xxhash (fast) or sha256 (cryptographic)",
					"enum":        []string{"xxhash", "sha256"},
				},
				"method": map[string]any{
					"type":        "string",
					"description": "Comparison method: lite (flat hash sets) or tree (hash trees)",
					"enum":        []string{"lite", "tree"},
				},
				"use_cache": map[string]any{
					"type":        "boolean",
					"description": "Route hashing through the shared in-memory cache",
				},
				"line_diff": map[string]any{
					"type":        "boolean",
					"description": "Include line-level added/removed/modified ranges",
				},
				"save": map[string]any{
					"type":        "boolean",
					"description": "Store the result in the comparison history",
					"default":     false,
				},
				"label": map[string]any{
					"type":        "string",
					"description": "Label stored with the comparison, e.g. a build number",
				},
			},
		},
	}
}

// listComparisonsTool returns the tool definition for list_comparisons
func listComparisonsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "list_comparisons",
		Description: "List stored comparisons, newest first",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"limit": map[string]any{
					"type":        "integer",
					"description": "Maximum number of comparisons to return (1-100)",
					"default":     20,
					"minimum":     1,
					"maximum":     100,
				},
				"version": map[string]any{
					"type":        "string",
					"description": "Only comparisons involving this version name",
				},
				"label": map[string]any{
					"type":        "string",
					"description": "Only comparisons with this label",
				},
			},
		},
	}
}

// getComparisonTool returns the tool definition for get_comparison
func getComparisonTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_comparison",
		Description: "Fetch a stored comparison including its line diffs",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"id": map[string]any{
					"type":        "string",
					"description": "Comparison ID returned by compare_html or list_comparisons",
				},
			},
			Required: []string{"id"},
		},
	}
}

// getStatusTool returns the tool definition for get_status
func getStatusTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_status",
		Description: "Report engine, hash cache and comparison history statistics",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]any{},
		},
	}
}
