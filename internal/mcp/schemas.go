package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// packageProperty describes the package specifier accepted by several tools
func packageProperty() map[string]interface{} {
	return map[string]interface{}{
		"type": "string",
		"description": "Package specifier: a CRAN name (dplyr), github:owner/repo[@ref], " +
			"or a local path to a package source directory",
	}
}

// extractionProperties are the options shared by extract_package and index_package
func extractionProperties() map[string]interface{} {
	return map[string]interface{}{
		"package": packageProperty(),
		"include_internal": map[string]interface{}{
			"type":        "boolean",
			"description": "If true, include dot-prefixed and unexported functions",
			"default":     false,
		},
		"compact": map[string]interface{}{
			"type":        "boolean",
			"description": "If true, keep only first sentences and drop examples",
			"default":     false,
		},
		"hoist_common_args": map[string]interface{}{
			"type":        "boolean",
			"description": "If true, move arguments shared by 3 or more functions to the package record",
			"default":     false,
		},
		"installed": map[string]interface{}{
			"type":        "boolean",
			"description": "If true, introspect the installed package with Rscript instead of reading sources",
			"default":     false,
		},
	}
}

// extractPackageTool returns the tool definition for extract_package
func extractPackageTool() mcp.Tool {
	return mcp.Tool{
		Name:        "extract_package",
		Description: "Extract the API of an R package as compact YAML records without storing it",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: extractionProperties(),
			Required:   []string{"package"},
		},
	}
}

// indexPackageTool returns the tool definition for index_package
func indexPackageTool() mcp.Tool {
	return mcp.Tool{
		Name:        "index_package",
		Description: "Extract an R package and store its functions so they can be searched",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: extractionProperties(),
			Required:   []string{"package"},
		},
	}
}

// searchFunctionsTool returns the tool definition for search_functions
func searchFunctionsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "search_functions",
		Description: "Search indexed R functions by keywords in their name, signature, purpose and return value",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Search keywords",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of results to return (1-100)",
					"default":     10,
					"minimum":     1,
					"maximum":     100,
				},
				"package": map[string]interface{}{
					"type":        "string",
					"description": "Only search this indexed package",
				},
				"exported_only": map[string]interface{}{
					"type":        "boolean",
					"description": "If true, skip internal functions",
					"default":     false,
				},
				"min_relevance": map[string]interface{}{
					"type":        "number",
					"description": "Minimum relevance score threshold (0.0-1.0)",
					"minimum":     0.0,
					"maximum":     1.0,
				},
			},
			Required: []string{"query"},
		},
	}
}

// getFunctionTool returns the tool definition for get_function
func getFunctionTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_function",
		Description: "Return the stored record of one function of an indexed package as YAML",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"package": map[string]interface{}{
					"type":        "string",
					"description": "Name of an indexed package",
				},
				"name": map[string]interface{}{
					"type":        "string",
					"description": "Function name",
				},
			},
			Required: []string{"package", "name"},
		},
	}
}

// listPackagesTool returns the tool definition for list_packages
func listPackagesTool() mcp.Tool {
	return mcp.Tool{
		Name:        "list_packages",
		Description: "List indexed R packages with their versions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}

// getStatusTool returns the tool definition for get_status
func getStatusTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_status",
		Description: "Query indexing status and statistics for an R package",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"package": map[string]interface{}{
					"type":        "string",
					"description": "Name of the package",
				},
			},
			Required: []string{"package"},
		},
	}
}
