package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/modelrail/z21go/pkg/model"
)

// MCP error codes
const (
	ErrorCodeInvalidParams = -32602 // Invalid method parameters
	ErrorCodeInternalError = -32603 // Internal JSON-RPC error
	ErrorCodeNoArchiveOpen = -32001 // No archive has been opened in this session
	ErrorCodeLocoNotFound  = -32002 // No locomotive with the given address
	ErrorCodeReadOnly      = -32003 // Server is running in read-only mode
)

// handleOpenArchive handles the open_archive tool invocation
func (s *Server) handleOpenArchive(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	path, ok := args["path"].(string)
	if !ok || path == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "path parameter is required", map[string]interface{}{
			"param":  "path",
			"reason": "missing or empty",
		})
	}

	if err := validateArchivePath(path); err != nil {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid path", map[string]interface{}{
			"param":  "path",
			"reason": err.Error(),
		})
	}

	arch, err := s.engine.Open(ctx, path)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to open archive", map[string]interface{}{
			"error": err.Error(),
		})
	}

	s.archivePath = path
	s.archive = arch

	response := map[string]interface{}{
		"opened":         true,
		"path":           path,
		"locomotives":    len(arch.Locomotives),
		"accessories":    len(arch.Accessories),
		"layouts":        len(arch.Layouts),
		"unknown_blocks": len(arch.UnknownBlocks),
	}
	if arch.Version != nil {
		response["version"] = *arch.Version
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleListLocomotives handles the list_locomotives tool invocation
func (s *Server) handleListLocomotives(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.archive == nil {
		return nil, newMCPError(ErrorCodeNoArchiveOpen, "no archive open", nil)
	}

	locos := make([]map[string]interface{}, 0, len(s.archive.Locomotives))
	for _, loco := range s.archive.Locomotives {
		locos = append(locos, map[string]interface{}{
			"address":   loco.Address,
			"name":      loco.Name,
			"max_speed": loco.Speed,
			"active":    loco.Active,
			"functions": len(loco.Functions),
		})
	}

	response := map[string]interface{}{
		"path":        s.archivePath,
		"count":       len(locos),
		"locomotives": locos,
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleGetLocomotive handles the get_locomotive tool invocation
func (s *Server) handleGetLocomotive(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	loco, errResult := s.locoFromArgs(request)
	if errResult != nil {
		return nil, errResult
	}

	functions := make([]map[string]interface{}, 0, len(loco.Functions))
	for _, num := range loco.FunctionNumbers() {
		fn := loco.Functions[num]
		functions = append(functions, map[string]interface{}{
			"function":    fn.Number,
			"image_name":  fn.ImageName,
			"shortcut":    fn.Shortcut,
			"position":    fn.Position,
			"time":        fn.Time,
			"button_type": int(fn.ButtonType),
			"active":      fn.Active,
		})
	}

	response := map[string]interface{}{
		"address":             loco.Address,
		"name":                loco.Name,
		"full_name":           loco.FullName,
		"description":         loco.Description,
		"railway":             loco.Railway,
		"article_number":      loco.ArticleNumber,
		"decoder_type":        loco.DecoderType,
		"build_year":          loco.BuildYear,
		"buffer_length":       loco.BufferLength,
		"model_buffer_length": loco.ModelBufferLength,
		"service_weight":      loco.ServiceWeight,
		"model_weight":        loco.ModelWeight,
		"rmin":                loco.RMin,
		"ip":                  loco.IP,
		"drivers_cab":         loco.DriversCab,
		"active":              loco.Active,
		"max_speed":           loco.Speed,
		"direction_forward":   loco.Direction,
		"speed_display":       int(loco.SpeedDisplay),
		"vehicle_type":        int(loco.VehicleType),
		"regulation_step":     int(loco.RegulationStep),
		"categories":          loco.Categories,
		"crane":               loco.Crane,
		"in_stock_since":      loco.InStockSince,
		"image_name":          loco.ImageName,
		"functions":           functions,
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleUpdateLocomotive handles the update_locomotive tool invocation
func (s *Server) handleUpdateLocomotive(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	loco, errResult := s.locoFromArgs(request)
	if errResult != nil {
		return nil, errResult
	}
	args := request.Params.Arguments.(map[string]interface{})

	changed := []string{}
	if v, ok := args["name"].(string); ok {
		loco.Name = v
		changed = append(changed, "name")
	}
	if v, ok := args["new_address"].(float64); ok {
		loco.Address = int(v)
		changed = append(changed, "address")
	}
	if v, ok := args["full_name"].(string); ok {
		loco.FullName = v
		changed = append(changed, "full_name")
	}
	if v, ok := args["railway"].(string); ok {
		loco.Railway = v
		changed = append(changed, "railway")
	}
	if v, ok := args["description"].(string); ok {
		loco.Description = v
		changed = append(changed, "description")
	}
	if v, ok := args["max_speed"].(float64); ok {
		loco.Speed = int(v)
		changed = append(changed, "max_speed")
	}
	if v, ok := args["active"].(bool); ok {
		loco.Active = v
		changed = append(changed, "active")
	}
	if v, ok := args["direction_forward"].(bool); ok {
		loco.Direction = v
		changed = append(changed, "direction_forward")
	}
	if v, ok := args["in_stock_since"].(string); ok {
		loco.InStockSince = v
		changed = append(changed, "in_stock_since")
	}

	response := map[string]interface{}{
		"updated": true,
		"address": loco.Address,
		"changed": changed,
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleSetFunction handles the set_function tool invocation
func (s *Server) handleSetFunction(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	loco, errResult := s.locoFromArgs(request)
	if errResult != nil {
		return nil, errResult
	}
	args := request.Params.Arguments.(map[string]interface{})

	number, ok := args["function"].(float64)
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "function parameter is required", map[string]interface{}{
			"param":  "function",
			"reason": "missing or not a number",
		})
	}

	fn := model.NewFunctionInfo(int(number))
	if existing, ok := loco.Functions[fn.Number]; ok {
		*fn = *existing
	}
	fn.ImageName = getStringDefault(args, "image_name", fn.ImageName)
	fn.Shortcut = getStringDefault(args, "shortcut", fn.Shortcut)
	fn.Position = getIntDefault(args, "position", fn.Position)
	fn.ButtonType = model.ButtonType(getIntDefault(args, "button_type", int(fn.ButtonType)))
	fn.Time = getStringDefault(args, "time", fn.Time)

	if err := loco.SetFunction(fn); err != nil {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid function", map[string]interface{}{
			"param": "function",
			"value": int(number),
			"error": err.Error(),
		})
	}

	response := map[string]interface{}{
		"set":      true,
		"address":  loco.Address,
		"function": fn.Number,
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleRemoveFunction handles the remove_function tool invocation
func (s *Server) handleRemoveFunction(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	loco, errResult := s.locoFromArgs(request)
	if errResult != nil {
		return nil, errResult
	}
	args := request.Params.Arguments.(map[string]interface{})

	number, ok := args["function"].(float64)
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "function parameter is required", map[string]interface{}{
			"param":  "function",
			"reason": "missing or not a number",
		})
	}

	_, existed := loco.Functions[int(number)]
	loco.RemoveFunction(int(number))

	response := map[string]interface{}{
		"removed":  existed,
		"address":  loco.Address,
		"function": int(number),
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleSaveArchive handles the save_archive tool invocation
func (s *Server) handleSaveArchive(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.archive == nil {
		return nil, newMCPError(ErrorCodeNoArchiveOpen, "no archive open", nil)
	}
	if s.cfg.ReadOnly {
		return nil, newMCPError(ErrorCodeReadOnly, "server is read-only", nil)
	}

	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		args = map[string]interface{}{}
	}
	destPath := getStringDefault(args, "output_path", s.archivePath)

	written, err := s.engine.Write(ctx, s.archive, s.archivePath, destPath)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to save archive", map[string]interface{}{
			"error": err.Error(),
		})
	}

	response := map[string]interface{}{
		"saved":       true,
		"path":        written,
		"locomotives": len(s.archive.Locomotives),
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleDeleteLocomotive handles the delete_locomotive tool invocation
func (s *Server) handleDeleteLocomotive(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	loco, errResult := s.locoFromArgs(request)
	if errResult != nil {
		return nil, errResult
	}
	if s.cfg.ReadOnly {
		return nil, newMCPError(ErrorCodeReadOnly, "server is read-only", nil)
	}
	if loco.PersistedID == 0 {
		return nil, newMCPError(ErrorCodeInvalidParams, "locomotive has no persisted row", map[string]interface{}{
			"address": loco.Address,
			"reason":  "never saved to this archive",
		})
	}

	written, err := s.engine.DeleteLocomotive(ctx, s.archivePath, loco.PersistedID)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to delete locomotive", map[string]interface{}{
			"error": err.Error(),
		})
	}
	s.archive.RemoveLocomotive(loco)

	response := map[string]interface{}{
		"deleted": true,
		"address": loco.Address,
		"path":    written,
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleExportLocomotive handles the export_locomotive tool invocation
func (s *Server) handleExportLocomotive(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	loco, errResult := s.locoFromArgs(request)
	if errResult != nil {
		return nil, errResult
	}
	args := request.Params.Arguments.(map[string]interface{})

	outputPath, ok := args["output_path"].(string)
	if !ok || outputPath == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "output_path parameter is required", map[string]interface{}{
			"param":  "output_path",
			"reason": "missing or empty",
		})
	}

	if err := s.engine.Export(ctx, s.archivePath, loco, outputPath); err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to export locomotive", map[string]interface{}{
			"error": err.Error(),
		})
	}

	response := map[string]interface{}{
		"exported": true,
		"address":  loco.Address,
		"path":     outputPath,
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleScanArchives handles the scan_archives tool invocation
func (s *Server) handleScanArchives(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	dir, ok := args["dir"].(string)
	if !ok || dir == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "dir parameter is required", map[string]interface{}{
			"param":  "dir",
			"reason": "missing or empty",
		})
	}
	if err := validateDirPath(dir); err != nil {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid dir", map[string]interface{}{
			"param":  "dir",
			"reason": err.Error(),
		})
	}
	workers := getIntDefault(args, "workers", 0)

	results, err := s.engine.ScanDir(ctx, dir, workers)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "scan failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	archives := make([]map[string]interface{}, 0, len(results))
	for _, res := range results {
		entry := map[string]interface{}{
			"path":           res.Path,
			"locomotives":    len(res.Archive.Locomotives),
			"accessories":    len(res.Archive.Accessories),
			"unknown_blocks": len(res.Archive.UnknownBlocks),
		}
		if res.Archive.Version != nil {
			entry["version"] = *res.Archive.Version
		}
		archives = append(archives, entry)
	}

	response := map[string]interface{}{
		"dir":      dir,
		"count":    len(archives),
		"archives": archives,
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// Helper functions

// locoFromArgs resolves the locomotive addressed by the request against the
// open archive. The returned error is already an MCPError.
func (s *Server) locoFromArgs(request mcp.CallToolRequest) (*model.Locomotive, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}
	if s.archive == nil {
		return nil, newMCPError(ErrorCodeNoArchiveOpen, "no archive open", nil)
	}

	address, ok := args["address"].(float64)
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "address parameter is required", map[string]interface{}{
			"param":  "address",
			"reason": "missing or not a number",
		})
	}

	loco := s.archive.FindLocomotive(int(address))
	if loco == nil {
		return nil, newMCPError(ErrorCodeLocoNotFound, "locomotive not found", map[string]interface{}{
			"address": int(address),
		})
	}
	return loco, nil
}

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

// validateArchivePath checks that a path points at an existing regular file.
func validateArchivePath(path string) error {
	if path == "" {
		return ErrPathRequired
	}
	if !filepath.IsAbs(path) {
		return ErrPathNotAbsolute
	}
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return ErrPathNotFound
	}
	if err != nil {
		return ErrPathNotReadable
	}
	if info.IsDir() {
		return ErrNotFile
	}
	return nil
}

// validateDirPath checks that a path points at an existing directory.
func validateDirPath(path string) error {
	if path == "" {
		return ErrPathRequired
	}
	if !filepath.IsAbs(path) {
		return ErrPathNotAbsolute
	}
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return ErrPathNotFound
	}
	if err != nil {
		return ErrPathNotReadable
	}
	if !info.IsDir() {
		return ErrNotDirectory
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
	if val, ok := args[key].(string); ok {
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
	ErrNotFile         = errors.New("path is not a regular file")
	ErrNotDirectory    = errors.New("path is not a directory")
)
