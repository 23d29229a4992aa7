// Package mcp exposes the search service as MCP tools over streamable
// HTTP, stdio, or websocket transports.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/outliyr/x-search-mcp/internal/application"
	"github.com/outliyr/x-search-mcp/internal/domain/search"
)

// ServerName is the identity reported to MCP clients during initialize.
const ServerName = "x-search-mcp"

var (
	Version     = "dev"
	BuildCommit = "unknown"
	BuildDate   = "unknown"
)

// Server registers the search tools on an MCP server.
type Server struct {
	mcpServer *server.MCPServer
	svc       *application.SearchService
	now       func() time.Time
}

// NewServer builds the MCP server around the search service.
func NewServer(svc *application.SearchService) *Server {
	s := &Server{
		mcpServer: server.NewMCPServer(
			ServerName,
			Version,
			server.WithToolCapabilities(false),
			server.WithRecovery(),
			server.WithInstructions("Search X/Twitter via Bird CLI or xAI API."),
		),
		svc: svc,
		now: time.Now,
	}
	s.registerTools()
	return s
}

func (s *Server) registerTools() {
	searchTool := mcp.NewTool("search_x",
		mcp.WithDescription("Search X/Twitter for recent posts about a topic"),
		mcp.WithString("topic",
			mcp.Required(),
			mcp.Description("Search topic"),
		),
		mcp.WithString("from_date",
			mcp.Description("Start date YYYY-MM-DD (default: 30 days ago)"),
		),
		mcp.WithString("to_date",
			mcp.Description("End date YYYY-MM-DD (default: today)"),
		),
		mcp.WithString("depth",
			mcp.Description("Search depth: quick, default, or deep"),
		),
	)
	s.mcpServer.AddTool(searchTool, s.handleSearchX)

	checkAuthTool := mcp.NewTool("check_auth",
		mcp.WithDescription("Check if Bird CLI X/Twitter authentication is valid"),
	)
	s.mcpServer.AddTool(checkAuthTool, s.handleCheckAuth)
}

func (s *Server) handleSearchX(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	topic, err := request.RequireString("topic")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	q, err := search.NewQuery(
		topic,
		request.GetString("from_date", ""),
		request.GetString("to_date", ""),
		request.GetString("depth", ""),
		s.now(),
	)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	res, err := s.svc.Search(ctx, q)
	if err != nil {
		// Backend exhaustion is reported as a JSON payload, not a
		// protocol error, so clients can read the reason.
		return jsonResult(map[string]string{"error": err.Error()})
	}
	return jsonResult(res)
}

func (s *Server) handleCheckAuth(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.svc.CheckAuth(ctx))
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode tool result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}

// StreamableHandler returns the /mcp endpoint handler. It is stateless so
// health probes can ping without holding a session.
func (s *Server) StreamableHandler() http.Handler {
	return server.NewStreamableHTTPServer(s.mcpServer,
		server.WithStateLess(true),
	)
}

// ServeStdio runs the server over stdin/stdout until EOF.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// HandleMessage dispatches one raw JSON-RPC message, for transports that
// carry frames themselves. The result is nil for notifications.
func (s *Server) HandleMessage(ctx context.Context, message json.RawMessage) mcp.JSONRPCMessage {
	return s.mcpServer.HandleMessage(ctx, message)
}
