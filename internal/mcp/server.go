package mcp

import (
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/sp-meter/circles/internal/backend"
	"github.com/sp-meter/circles/internal/catalog"
	"github.com/sp-meter/circles/internal/controller"
	"github.com/sp-meter/circles/internal/logger"
)

// Version is set via ldflags at build time.
var Version = "dev"

// sessionID tags history entries written by MCP tool calls.
const sessionID = "mcp"

// Server wraps an MCP server that exposes the conversion pages as tools.
type Server struct {
	catalog     *catalog.Catalog
	apis        map[string]backend.API
	recorder    controller.Recorder
	defaultPage string
	log         *zap.SugaredLogger
	mcp         *server.MCPServer
}

// Options configures optional collaborators of a Server.
type Options struct {
	Logger      *zap.SugaredLogger
	Recorder    controller.Recorder
	DefaultPage string
}

// NewServer creates a new MCP server over the given pages and backends.
func NewServer(cat *catalog.Catalog, apis map[string]backend.API, opts Options) *Server {
	s := &Server{
		catalog:     cat,
		apis:        apis,
		recorder:    opts.Recorder,
		defaultPage: opts.DefaultPage,
		log:         logger.OrNop(opts.Logger),
	}

	s.mcp = server.NewMCPServer(
		"circles",
		Version,
		server.WithToolCapabilities(false),
	)

	s.registerTools()

	return s
}

// registerTools adds all tool definitions and their handlers to the MCP server.
func (s *Server) registerTools() {
	s.mcp.AddTool(listUnitsTool, s.handleListUnits)
	s.mcp.AddTool(unitInfoTool, s.handleUnitInfo)
	s.mcp.AddTool(convertUnitsTool, s.handleConvertUnits)
}

// Serve starts the MCP server on stdio. Stdout is used for MCP protocol
// messages; all logging must go to stderr.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}
