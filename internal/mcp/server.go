// Package mcp exposes the action buffer as agent-callable tools over the
// Model Context Protocol. Tool handlers own all input validation; the
// buffer itself accepts whatever it is handed.
package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/roasbeef/revq/internal/actions"
	"github.com/roasbeef/revq/internal/githubapi"
)

// Server wraps the MCP server with the action buffer and its executor.
type Server struct {
	server   *mcp.Server
	buffer   *actions.Buffer
	executor *actions.Executor
	prNumber int
}

// Config holds configuration for the MCP server.
type Config struct {
	// API is the hosting platform the executor posts through.
	API githubapi.HostingAPI

	// PRNumber is the pull request this session's buffer targets.
	PRNumber int
}

// NewServer creates a new MCP server with all buffer tools registered.
// The buffer is session-scoped: one per server, reset by execution or an
// explicit clear.
func NewServer(cfg Config) *Server {
	mcpServer := mcp.NewServer(&mcp.Implementation{
		Name:    "revq",
		Version: "0.1.0",
	}, nil)

	s := &Server{
		server:   mcpServer,
		buffer:   actions.NewBuffer(),
		executor: actions.NewExecutor(cfg.API),
		prNumber: cfg.PRNumber,
	}

	s.registerTools()

	return s
}

// Buffer returns the session buffer, used by the daemon for telemetry.
func (s *Server) Buffer() *actions.Buffer {
	return s.buffer
}

// Run starts the MCP server on the given transport.
func (s *Server) Run(ctx context.Context, transport mcp.Transport) error {
	log.InfoS(ctx, "MCP server starting", "pr", s.prNumber)

	return s.server.Run(ctx, transport)
}

// registerTools registers all buffer tools.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name: "post_line_comment",
		Description: "Stage a review comment anchored to a " +
			"specific file and line",
	}, s.handlePostLineComment)

	mcp.AddTool(s.server, &mcp.Tool{
		Name: "post_review_comment",
		Description: "Stage a review-level comment not anchored " +
			"to any file",
	}, s.handlePostReviewComment)

	mcp.AddTool(s.server, &mcp.Tool{
		Name: "post_summary",
		Description: "Stage a summary fragment; fragments are " +
			"combined into one PR summary comment",
	}, s.handlePostSummary)

	mcp.AddTool(s.server, &mcp.Tool{
		Name: "set_general_comment",
		Description: "Set the single general comment, replacing " +
			"any previous one",
	}, s.handleSetGeneralComment)

	mcp.AddTool(s.server, &mcp.Tool{
		Name: "approve_pull_request",
		Description: "Mark the pull request for approval on the " +
			"next execution",
	}, s.handleApprove)

	mcp.AddTool(s.server, &mcp.Tool{
		Name: "request_changes",
		Description: "Mark the pull request for a changes " +
			"requested verdict on the next execution",
	}, s.handleRequestChanges)

	mcp.AddTool(s.server, &mcp.Tool{
		Name: "get_buffer_state",
		Description: "Report counts of staged actions without " +
			"their payloads",
	}, s.handleGetBufferState)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "clear_buffer",
		Description: "Discard every staged action",
	}, s.handleClearBuffer)

	mcp.AddTool(s.server, &mcp.Tool{
		Name: "execute_actions",
		Description: "Post every staged action to the pull " +
			"request and reset the buffer",
	}, s.handleExecuteActions)
}
