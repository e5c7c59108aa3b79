// Package mcpserver exposes a saved run report over the Model Context
// Protocol so an assistant can query results without rerunning any
// check. The server is read-only: it holds one immutable report and
// answers questions about it.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/girste/hardhound/internal/checks"
	"github.com/girste/hardhound/internal/log"
	"github.com/girste/hardhound/internal/report"
)

const instructions = `Read-only access to a hardhound security hardening report.
Use get_summary for the overall status, get_check for a single result
by id (e.g. ssh-root-login) and get_report for the complete run.`

// Server answers MCP tool calls for one run report
type Server struct {
	report *report.RunReport
	mcp    *server.MCPServer
}

// New builds the server and registers its tools
func New(rep *report.RunReport, version string) *Server {
	s := &Server{report: rep}

	srv := server.NewMCPServer(
		"hardhound",
		version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
		server.WithInstructions(instructions),
	)

	srv.AddTool(mcp.NewTool("get_report",
		mcp.WithDescription("Full run report as JSON: every check result plus counts and overall status."),
	), s.handleGetReport)

	srv.AddTool(mcp.NewTool("get_check",
		mcp.WithDescription("One check result looked up by its id."),
		mcp.WithString("check_id",
			mcp.Required(),
			mcp.Description("Check identifier, e.g. ssh-root-login"),
		),
	), s.handleGetCheck)

	srv.AddTool(mcp.NewTool("get_summary",
		mcp.WithDescription("Counts and the overall status of the run."),
	), s.handleGetSummary)

	s.mcp = srv
	return s
}

// Serve blocks on stdio until the client disconnects or the process
// receives SIGINT or SIGTERM.
func (s *Server) Serve(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Infof("serving report %s over mcp stdio", s.report.RunID)
	stdio := server.NewStdioServer(s.mcp)
	if err := stdio.Listen(ctx, os.Stdin, os.Stdout); err != nil && ctx.Err() == nil {
		return fmt.Errorf("mcp stdio: %w", err)
	}
	log.Info("mcp server stopped")
	return nil
}

func (s *Server) handleGetReport(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	out, err := s.report.ToJSON()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(out), nil
}

func (s *Server) handleGetCheck(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("check_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	for _, res := range s.report.Results {
		if res.CheckID != id {
			continue
		}
		data, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(string(data)), nil
	}
	return mcp.NewToolResultError(fmt.Sprintf("no check %q in this report", id)), nil
}

// summaryPayload is the compact answer for get_summary
type summaryPayload struct {
	RunID  string        `json:"run_id"`
	Mode   string        `json:"mode"`
	Status checks.Status `json:"status"`
	Counts report.Counts `json:"counts"`
	Text   string        `json:"text"`
}

func (s *Server) handleGetSummary(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	payload := summaryPayload{
		RunID:  s.report.RunID,
		Mode:   s.report.Mode,
		Status: s.report.Status,
		Counts: s.report.Counts,
		Text:   s.report.ToSummary(),
	}
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
