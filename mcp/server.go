package mcp

import (
	"github.com/ka2n/exo/config"
	"github.com/ka2n/exo/log"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Server serves the exo tools over stdio
type Server struct {
	server *server.MCPServer
	cfg    *config.Config
}

// NewServer returns a server whose tools use cfg
func NewServer(cfg *config.Config, version string) *Server {
	s := server.NewMCPServer("exo", version)
	s.AddTools(InitTools(cfg)...)

	return &Server{
		server: s,
		cfg:    cfg,
	}
}

// Run serves until stdin is closed
func (s *Server) Run() error {
	log.Info("Starting MCP server", "render", s.cfg.Render, "timeout", s.cfg.Timeout)
	return server.ServeStdio(s.server)
}

func newServerTool(tool mcp.Tool, handler server.ToolHandlerFunc) server.ServerTool {
	return server.ServerTool{
		Tool:    tool,
		Handler: handler,
	}
}
