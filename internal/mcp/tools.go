package mcp

import (
	"context"
	"fmt"

	"github.com/lightningnetwork/lnd/fn/v2"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/roasbeef/revq/internal/actions"
)

// PostLineCommentArgs are the arguments for the post_line_comment tool.
type PostLineCommentArgs struct {
	// FilePath is the file the comment anchors to.
	FilePath string `json:"file_path" jsonschema:"Path of the file the comment anchors to"`

	// Line is the line number in the new version of the file.
	Line int `json:"line" jsonschema:"Line number in the new version of the file"`

	// Body is the comment text.
	Body string `json:"body" jsonschema:"Comment text"`

	// Suggestion is an optional suggested replacement.
	Suggestion string `json:"suggestion,omitempty" jsonschema:"Optional suggested replacement code"`
}

// StagedResult reports the buffer state after a staging tool call.
type StagedResult struct {
	State actions.BufferState `json:"state"`
}

func (s *Server) handlePostLineComment(_ context.Context,
	_ *mcp.CallToolRequest,
	args PostLineCommentArgs) (*mcp.CallToolResult, StagedResult,
	error) {

	// Validation lives here at the tool boundary; the buffer stores
	// whatever it is handed.
	if args.FilePath == "" {
		return nil, StagedResult{}, fmt.Errorf("file_path is " +
			"required")
	}
	if args.Line < 1 {
		return nil, StagedResult{}, fmt.Errorf("line must be "+
			"positive, got %d", args.Line)
	}
	if args.Body == "" {
		return nil, StagedResult{}, fmt.Errorf("body is required")
	}

	s.buffer.AddLineComment(actions.LineComment{
		FilePath:   args.FilePath,
		Line:       args.Line,
		Body:       args.Body,
		Suggestion: args.Suggestion,
	})

	return nil, StagedResult{State: s.buffer.GetState()}, nil
}

// PostReviewCommentArgs are the arguments for the post_review_comment
// tool.
type PostReviewCommentArgs struct {
	// Body is the comment text.
	Body string `json:"body" jsonschema:"Comment text"`
}

func (s *Server) handlePostReviewComment(_ context.Context,
	_ *mcp.CallToolRequest,
	args PostReviewCommentArgs) (*mcp.CallToolResult, StagedResult,
	error) {

	if args.Body == "" {
		return nil, StagedResult{}, fmt.Errorf("body is required")
	}

	s.buffer.AddReviewComment(args.Body)

	return nil, StagedResult{State: s.buffer.GetState()}, nil
}

// PostSummaryArgs are the arguments for the post_summary tool.
type PostSummaryArgs struct {
	// Body is the summary fragment.
	Body string `json:"body" jsonschema:"Summary fragment text"`
}

func (s *Server) handlePostSummary(_ context.Context,
	_ *mcp.CallToolRequest,
	args PostSummaryArgs) (*mcp.CallToolResult, StagedResult, error) {

	if args.Body == "" {
		return nil, StagedResult{}, fmt.Errorf("body is required")
	}

	s.buffer.AddSummary(args.Body)

	return nil, StagedResult{State: s.buffer.GetState()}, nil
}

// SetGeneralCommentArgs are the arguments for the set_general_comment
// tool.
type SetGeneralCommentArgs struct {
	// Body is the comment text.
	Body string `json:"body" jsonschema:"Comment text"`
}

func (s *Server) handleSetGeneralComment(_ context.Context,
	_ *mcp.CallToolRequest,
	args SetGeneralCommentArgs) (*mcp.CallToolResult, StagedResult,
	error) {

	if args.Body == "" {
		return nil, StagedResult{}, fmt.Errorf("body is required")
	}

	s.buffer.SetGeneralComment(args.Body)

	return nil, StagedResult{State: s.buffer.GetState()}, nil
}

// ApproveArgs are the arguments for the approve_pull_request tool.
type ApproveArgs struct {
	// Comment is an optional comment posted with the approval.
	Comment string `json:"comment,omitempty" jsonschema:"Optional comment posted with the approval"`
}

func (s *Server) handleApprove(_ context.Context,
	_ *mcp.CallToolRequest,
	args ApproveArgs) (*mcp.CallToolResult, StagedResult, error) {

	comment := fn.None[string]()
	if args.Comment != "" {
		comment = fn.Some(args.Comment)
	}
	s.buffer.MarkForApproval(comment)

	return nil, StagedResult{State: s.buffer.GetState()}, nil
}

// RequestChangesArgs are the arguments for the request_changes tool.
type RequestChangesArgs struct {
	// Comment is an optional comment explaining the requested
	// changes.
	Comment string `json:"comment,omitempty" jsonschema:"Optional comment explaining the requested changes"`
}

func (s *Server) handleRequestChanges(_ context.Context,
	_ *mcp.CallToolRequest,
	args RequestChangesArgs) (*mcp.CallToolResult, StagedResult,
	error) {

	comment := fn.None[string]()
	if args.Comment != "" {
		comment = fn.Some(args.Comment)
	}
	s.buffer.MarkForChangesRequested(comment)

	return nil, StagedResult{State: s.buffer.GetState()}, nil
}

// GetBufferStateArgs are the arguments for the get_buffer_state tool.
type GetBufferStateArgs struct{}

func (s *Server) handleGetBufferState(_ context.Context,
	_ *mcp.CallToolRequest,
	_ GetBufferStateArgs) (*mcp.CallToolResult, StagedResult, error) {

	return nil, StagedResult{State: s.buffer.GetState()}, nil
}

// ClearBufferArgs are the arguments for the clear_buffer tool.
type ClearBufferArgs struct{}

func (s *Server) handleClearBuffer(ctx context.Context,
	_ *mcp.CallToolRequest,
	_ ClearBufferArgs) (*mcp.CallToolResult, StagedResult, error) {

	s.buffer.Clear()

	log.DebugS(ctx, "Buffer cleared", "pr", s.prNumber)

	return nil, StagedResult{State: s.buffer.GetState()}, nil
}

// ExecuteActionsArgs are the arguments for the execute_actions tool.
type ExecuteActionsArgs struct{}

// ExecuteActionsResult carries the full execution outcome back to the
// agent.
type ExecuteActionsResult struct {
	Result actions.Result `json:"result"`

	// TotalActionsPosted sums every successful category plus the
	// approval action.
	TotalActionsPosted int `json:"total_actions_posted"`
}

func (s *Server) handleExecuteActions(ctx context.Context,
	_ *mcp.CallToolRequest,
	_ ExecuteActionsArgs) (*mcp.CallToolResult, ExecuteActionsResult,
	error) {

	result := s.executor.Execute(ctx, s.prNumber, s.buffer)

	// Posting failures live inside the result; the tool call itself
	// succeeded.
	return nil, ExecuteActionsResult{
		Result:             result,
		TotalActionsPosted: result.TotalActionsPosted(),
	}, nil
}
