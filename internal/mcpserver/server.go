// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the case-management tools for LLM integration via stdio
// transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/fieldworks/outreach/internal/caseservice"
)

// Server wraps the MCP server with outreach tools.
type Server struct {
	mcp *server.MCPServer
	svc *caseservice.Service
}

// New creates a new MCP server with all outreach tools registered.
func New(svc *caseservice.Service) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Outreach",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("search_clients",
		mcp.WithDescription("Search the client roster by substring match over name, alias, and description."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchClients)

	s.mcp.AddTool(mcp.NewTool("get_client",
		mcp.WithDescription("Read one client record as a plain-text summary."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Client id")),
	), s.getClient)

	s.mcp.AddTool(mcp.NewTool("list_interactions",
		mcp.WithDescription("List a client's interaction history, newest first."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Client id")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of interactions to return (0 for all)")),
	), s.listInteractions)

	s.mcp.AddTool(mcp.NewTool("log_interaction",
		mcp.WithDescription("Log a new interaction for a client. The type tag MUST come from "+
			"the fixed interaction-type set; read the contract first via the "+
			"get_interaction_contract tool or the outreach://interaction-format resource."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Client id")),
		mcp.WithString("type", mcp.Required(), mcp.Description("Interaction type tag (e.g. contact, service, referral)")),
		mcp.WithString("notes", mcp.Required(), mcp.Description("Free-text interaction notes")),
		mcp.WithString("worker_name", mcp.Description("Attributing worker name (optional)")),
	), s.logInteraction)

	s.mcp.AddTool(mcp.NewTool("get_interaction_contract",
		mcp.WithDescription("Returns the canonical interaction record contract. "+
			"Call this before logging interactions to ensure correct type tags."),
	), s.getInteractionContract)

	// Resource: interaction record contract.
	s.mcp.AddResource(
		mcp.NewResource("outreach://interaction-format", "Interaction Record Contract",
			mcp.WithResourceDescription("Canonical interaction record format and type-tag set."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readInteractionFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) searchClients(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	clients, err := s.svc.SearchClients(ctx, query)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(clients, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) getClient(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	client, err := s.svc.GetClient(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", id)), nil
	}
	return mcp.NewToolResultText(caseservice.ClientSummary(client)), nil
}

func (s *Server) listInteractions(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	limit := 0
	if n, err := req.RequireFloat("limit"); err == nil {
		limit = int(n)
	}
	interactions, err := s.svc.ListInteractions(ctx, id, limit)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(interactions, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) logInteraction(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	typeTag, err := req.RequireString("type")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	notes, err := req.RequireString("notes")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	workerName := ""
	if w, err := req.RequireString("worker_name"); err == nil {
		workerName = w
	}

	interaction, client, err := s.svc.LogInteraction(ctx, id, caseservice.LogInteractionRequest{
		Type:       typeTag,
		Notes:      notes,
		WorkerName: workerName,
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("logged %s interaction %s for %s %s (contacts now %d)",
		interaction.Type, interaction.ID, client.FirstName, client.LastName, client.Contacts)), nil
}

func (s *Server) getInteractionContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(InteractionFormatContract), nil
}

func (s *Server) readInteractionFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "outreach://interaction-format",
			MIMEType: "text/markdown",
			Text:     InteractionFormatContract,
		},
	}, nil
}
