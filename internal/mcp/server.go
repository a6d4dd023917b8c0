package mcp

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mark3labs/mcp-go/server"

	"github.com/dshills/domdrift/internal/config"
	"github.com/dshills/domdrift/internal/engine"
	"github.com/dshills/domdrift/internal/logger"
	"github.com/dshills/domdrift/internal/storage"
)

const (
	// ServerName is the MCP server name
	ServerName = "domdrift"
	// ServerVersion is the current server version
	ServerVersion = "1.0.0"
)

// Server wraps the MCP server with application dependencies
type Server struct {
	mcp     *server.MCPServer
	engine  *engine.Engine
	storage storage.Storage // nil when history is disabled
	logger  logger.Logger

	lineDiff bool // line_diff default for compare_html
}

// NewServer creates a server from configuration, opening the history
// database when storage is enabled
func NewServer(cfg *config.Config, log logger.Logger) (*Server, error) {
	if cfg == nil {
		cfg = config.Default()
	}

	var store storage.Storage
	if cfg.Storage.Enabled {
		dbPath, err := cfg.ResolveDBPath()
		if err != nil {
			return nil, err
		}

		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}

		sqlStore, err := storage.NewSQLiteStorage(dbPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize storage: %w", err)
		}
		store = sqlStore
	}

	s, err := NewServerWithStorage(cfg, log, store)
	if err != nil {
		if store != nil {
			_ = store.Close()
		}
		return nil, err
	}

	return s, nil
}

// NewServerWithStorage creates a server around an existing store; store may be nil
func NewServerWithStorage(cfg *config.Config, log logger.Logger, store storage.Storage) (*Server, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if log == nil {
		log = logger.Discard()
	}

	engCfg, err := cfg.EngineConfig()
	if err != nil {
		return nil, fmt.Errorf("invalid engine configuration: %w", err)
	}

	eng, err := engine.New(engCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}

	mcpServer := server.NewMCPServer(
		ServerName,
		ServerVersion,
		server.WithToolCapabilities(false),
	)

	s := &Server{
		mcp:     mcpServer,
		engine:  eng,
		storage: store,
		logger:  log.With("component", "mcp"),

		lineDiff: cfg.LineDiff.Enabled,
	}

	s.registerTools()

	return s, nil
}

// Serve starts the MCP server on stdio and blocks until the client disconnects
func (s *Server) Serve(ctx context.Context) error {
	defer func() { _ = s.Close() }()

	s.logger.Info("serving on stdio", "tools", 4, "history", s.storage != nil)
	return server.ServeStdio(s.mcp)
}

// Close releases the history database
func (s *Server) Close() error {
	if s.storage == nil {
		return nil
	}
	return s.storage.Close()
}

// registerTools registers all MCP tools
func (s *Server) registerTools() {
	s.mcp.AddTool(compareHTMLTool(), s.handleCompareHTML)
	s.mcp.AddTool(listComparisonsTool(), s.handleListComparisons)
	s.mcp.AddTool(getComparisonTool(), s.handleGetComparison)
	s.mcp.AddTool(getStatusTool(), s.handleGetStatus)
}
