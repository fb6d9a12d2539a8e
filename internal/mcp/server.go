package mcp

import (
	"context"
	"fmt"

	"github.com/kelseyhightower/envconfig"
	"github.com/mark3labs/mcp-go/server"

	"github.com/modelrail/z21go/internal/archive"
	"github.com/modelrail/z21go/pkg/model"
)

const (
	// ServerName is the MCP server name
	ServerName = "z21archive"
	// ServerVersion is the current server version
	ServerVersion = "1.0.0"
)

// Config holds the server's environment settings (Z21_ prefix).
type Config struct {
	// ScratchDir is where working copies of embedded databases are
	// extracted. Empty means the OS temp directory.
	ScratchDir string `split_words:"true"`
	// ReadOnly disables the tools that modify archives on disk.
	ReadOnly bool `split_words:"true"`
}

// LoadConfig reads the configuration from the environment.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("z21", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}
	return &cfg, nil
}

// Server wraps the MCP server with the archive engine and the one archive a
// session may hold open.
type Server struct {
	mcp    *server.MCPServer
	engine *archive.Engine
	cfg    *Config

	archivePath string
	archive     *model.Archive
}

// NewServer creates a new MCP server instance.
func NewServer(cfg *Config) (*Server, error) {
	if cfg == nil {
		cfg = &Config{}
	}

	s := &Server{
		mcp:    server.NewMCPServer(ServerName, ServerVersion),
		engine: archive.New(cfg.ScratchDir),
		cfg:    cfg,
	}
	s.registerTools()
	return s, nil
}

// Serve starts the MCP server on stdio and blocks until shutdown.
func (s *Server) Serve(ctx context.Context) error {
	return server.ServeStdio(s.mcp)
}

// registerTools registers all MCP tools.
func (s *Server) registerTools() {
	s.mcp.AddTool(openArchiveTool(), s.handleOpenArchive)
	s.mcp.AddTool(listLocomotivesTool(), s.handleListLocomotives)
	s.mcp.AddTool(getLocomotiveTool(), s.handleGetLocomotive)
	s.mcp.AddTool(updateLocomotiveTool(), s.handleUpdateLocomotive)
	s.mcp.AddTool(setFunctionTool(), s.handleSetFunction)
	s.mcp.AddTool(removeFunctionTool(), s.handleRemoveFunction)
	s.mcp.AddTool(saveArchiveTool(), s.handleSaveArchive)
	s.mcp.AddTool(deleteLocomotiveTool(), s.handleDeleteLocomotive)
	s.mcp.AddTool(exportLocomotiveTool(), s.handleExportLocomotive)
	s.mcp.AddTool(scanArchivesTool(), s.handleScanArchives)
}
