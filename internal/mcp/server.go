package mcp

import (
	"context"
	"errors"
	"os"

	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"

	"github.com/b-rodrigues/pkgctx/internal/indexer"
	"github.com/b-rodrigues/pkgctx/internal/storage"
)

const (
	// ServerName is the MCP server name
	ServerName = "pkgctx"
	// ServerVersion is the current server version
	ServerVersion = "1.1.0"
)

// Server wraps the MCP server with application dependencies
type Server struct {
	mcp     *server.MCPServer
	storage storage.Storage
	indexer *indexer.Indexer
	logger  zerolog.Logger
}

// NewServer creates a new MCP server instance. The caller owns store and
// closes it after Serve returns.
func NewServer(store storage.Storage, idx *indexer.Indexer, logger zerolog.Logger) (*Server, error) {
	if store == nil || idx == nil {
		return nil, errors.New("storage and indexer are required")
	}

	mcpServer := server.NewMCPServer(
		ServerName,
		ServerVersion,
		server.WithToolCapabilities(false),
	)

	s := &Server{
		mcp:     mcpServer,
		storage: store,
		indexer: idx,
		logger:  logger,
	}

	s.registerTools()
	return s, nil
}

// Serve runs the MCP protocol on stdio until ctx is cancelled or stdin closes
func (s *Server) Serve(ctx context.Context) error {
	s.logger.Info().Str("name", ServerName).Str("version", ServerVersion).Msg("serving MCP on stdio")
	err := server.NewStdioServer(s.mcp).Listen(ctx, os.Stdin, os.Stdout)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// registerTools registers all MCP tools
func (s *Server) registerTools() {
	s.mcp.AddTool(extractPackageTool(), s.handleExtractPackage)
	s.mcp.AddTool(indexPackageTool(), s.handleIndexPackage)
	s.mcp.AddTool(searchFunctionsTool(), s.handleSearchFunctions)
	s.mcp.AddTool(getFunctionTool(), s.handleGetFunction)
	s.mcp.AddTool(listPackagesTool(), s.handleListPackages)
	s.mcp.AddTool(getStatusTool(), s.handleGetStatus)
}
