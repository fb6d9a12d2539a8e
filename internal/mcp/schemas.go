package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// openArchiveTool returns the tool definition for open_archive
func openArchiveTool() mcp.Tool {
	return mcp.Tool{
		Name:        "open_archive",
		Description: "Open a Z21 archive (.z21/.z21loco) and load its locomotives",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"path": map[string]interface{}{
					"type":        "string",
					"description": "Absolute path to the archive file",
				},
			},
			Required: []string{"path"},
		},
	}
}

// listLocomotivesTool returns the tool definition for list_locomotives
func listLocomotivesTool() mcp.Tool {
	return mcp.Tool{
		Name:        "list_locomotives",
		Description: "List the locomotives of the open archive",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}

// getLocomotiveTool returns the tool definition for get_locomotive
func getLocomotiveTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_locomotive",
		Description: "Return every field of one locomotive, including its functions",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"address": map[string]interface{}{
					"type":        "integer",
					"description": "Locomotive address (first match wins on duplicates)",
				},
			},
			Required: []string{"address"},
		},
	}
}

// updateLocomotiveTool returns the tool definition for update_locomotive
func updateLocomotiveTool() mcp.Tool {
	return mcp.Tool{
		Name:        "update_locomotive",
		Description: "Edit locomotive fields in memory (save_archive persists them)",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"address": map[string]interface{}{
					"type":        "integer",
					"description": "Current locomotive address",
				},
				"name": map[string]interface{}{
					"type": "string",
				},
				"new_address": map[string]interface{}{
					"type":        "integer",
					"description": "New decoder address",
				},
				"full_name": map[string]interface{}{
					"type": "string",
				},
				"railway": map[string]interface{}{
					"type": "string",
				},
				"description": map[string]interface{}{
					"type": "string",
				},
				"max_speed": map[string]interface{}{
					"type": "integer",
				},
				"active": map[string]interface{}{
					"type": "boolean",
				},
				"direction_forward": map[string]interface{}{
					"type": "boolean",
				},
				"in_stock_since": map[string]interface{}{
					"type": "string",
				},
			},
			Required: []string{"address"},
		},
	}
}

// setFunctionTool returns the tool definition for set_function
func setFunctionTool() mcp.Tool {
	return mcp.Tool{
		Name:        "set_function",
		Description: "Add or replace a locomotive function (0-127) in memory",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"address": map[string]interface{}{
					"type":        "integer",
					"description": "Locomotive address",
				},
				"function": map[string]interface{}{
					"type":        "integer",
					"description": "Function number (0-127)",
					"minimum":     0,
					"maximum":     127,
				},
				"image_name": map[string]interface{}{
					"type":        "string",
					"description": "Icon reference name",
				},
				"shortcut": map[string]interface{}{
					"type": "string",
				},
				"position": map[string]interface{}{
					"type":        "integer",
					"description": "Display ordering position",
				},
				"button_type": map[string]interface{}{
					"type":        "integer",
					"description": "0=switch, 1=push-button, 2=time button",
					"enum":        []interface{}{0, 1, 2},
				},
				"time": map[string]interface{}{
					"type":        "string",
					"description": "Timed duration in seconds; only meaningful for time buttons",
				},
			},
			Required: []string{"address", "function"},
		},
	}
}

// removeFunctionTool returns the tool definition for remove_function
func removeFunctionTool() mcp.Tool {
	return mcp.Tool{
		Name:        "remove_function",
		Description: "Remove a locomotive function in memory",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"address": map[string]interface{}{
					"type": "integer",
				},
				"function": map[string]interface{}{
					"type": "integer",
				},
			},
			Required: []string{"address", "function"},
		},
	}
}

// saveArchiveTool returns the tool definition for save_archive
func saveArchiveTool() mcp.Tool {
	return mcp.Tool{
		Name:        "save_archive",
		Description: "Write the open archive back to disk (atomic in-place replace by default)",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"output_path": map[string]interface{}{
					"type":        "string",
					"description": "Optional different output path; default overwrites the source archive",
				},
			},
		},
	}
}

// deleteLocomotiveTool returns the tool definition for delete_locomotive
func deleteLocomotiveTool() mcp.Tool {
	return mcp.Tool{
		Name:        "delete_locomotive",
		Description: "Delete a locomotive's persisted row (and child rows) from the archive",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"address": map[string]interface{}{
					"type": "integer",
				},
			},
			Required: []string{"address"},
		},
	}
}

// exportLocomotiveTool returns the tool definition for export_locomotive
func exportLocomotiveTool() mcp.Tool {
	return mcp.Tool{
		Name:        "export_locomotive",
		Description: "Export one locomotive as a .z21loco sub-archive",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"address": map[string]interface{}{
					"type": "integer",
				},
				"output_path": map[string]interface{}{
					"type":        "string",
					"description": "Path of the .z21loco file to create",
				},
			},
			Required: []string{"address", "output_path"},
		},
	}
}

// scanArchivesTool returns the tool definition for scan_archives
func scanArchivesTool() mcp.Tool {
	return mcp.Tool{
		Name:        "scan_archives",
		Description: "Scan a directory of .z21/.z21loco archives and summarize each",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"dir": map[string]interface{}{
					"type":        "string",
					"description": "Directory to scan (non-recursive)",
				},
				"workers": map[string]interface{}{
					"type":        "integer",
					"description": "Concurrent readers (default: one per CPU)",
				},
			},
			Required: []string{"dir"},
		},
	}
}
