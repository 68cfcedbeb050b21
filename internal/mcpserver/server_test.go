package mcpserver

import (
	"context"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/fieldworks/outreach/internal/caseservice"
	"github.com/fieldworks/outreach/internal/testutil"
)

func testServer(t *testing.T) (*Server, *caseservice.Service) {
	t.Helper()
	svc, _ := testutil.TestService(t)
	return New(svc), svc
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go has no direct "call tool" test helper, so we invoke the
	// handler functions directly.
	var result *mcp.CallToolResult
	var err error

	switch name {
	case "search_clients":
		result, err = srv.searchClients(ctx, req)
	case "get_client":
		result, err = srv.getClient(ctx, req)
	case "list_interactions":
		result, err = srv.listInteractions(ctx, req)
	case "log_interaction":
		result, err = srv.logInteraction(ctx, req)
	case "get_interaction_contract":
		result, err = srv.getInteractionContract(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}

	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func intakeTestClient(t *testing.T, svc *caseservice.Service, first, last string) string {
	t.Helper()
	c, err := svc.Intake(context.Background(), caseservice.IntakeRequest{
		FirstName: first,
		LastName:  last,
	})
	if err != nil {
		t.Fatal(err)
	}
	return c.ID
}

func TestSearchClientsTool(t *testing.T) {
	srv, svc := testServer(t)
	intakeTestClient(t, svc, "Jane", "Doe")
	intakeTestClient(t, svc, "Marcus", "Webb")

	r := callTool(t, srv, "search_clients", map[string]interface{}{"query": "jane"})
	text := resultText(r)
	if !strings.Contains(text, "Jane") || strings.Contains(text, "Marcus") {
		t.Errorf("search result = %q", text)
	}
}

func TestGetClientTool(t *testing.T) {
	srv, svc := testServer(t)
	id := intakeTestClient(t, svc, "Jane", "Doe")

	r := callTool(t, srv, "get_client", map[string]interface{}{"id": id})
	text := resultText(r)
	if !strings.Contains(text, "Client Information:") {
		t.Errorf("summary missing header: %q", text)
	}
	if !strings.Contains(text, "Name: Jane Doe") {
		t.Errorf("summary missing name: %q", text)
	}
}

func TestGetClientToolMissing(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "get_client", map[string]interface{}{"id": "ghost"})
	if !r.IsError {
		t.Error("expected error for missing client")
	}
}

func TestLogInteractionTool(t *testing.T) {
	srv, svc := testServer(t)
	id := intakeTestClient(t, svc, "Jane", "Doe")

	r := callTool(t, srv, "log_interaction", map[string]interface{}{
		"id":    id,
		"type":  "service",
		"notes": "sleeping bag provided",
	})
	text := resultText(r)
	if r.IsError {
		t.Fatalf("log_interaction failed: %q", text)
	}
	if !strings.Contains(text, "contacts now 2") {
		t.Errorf("result = %q, want contact counter", text)
	}
}

func TestLogInteractionToolRejectsBadType(t *testing.T) {
	srv, svc := testServer(t)
	id := intakeTestClient(t, svc, "Jane", "Doe")

	r := callTool(t, srv, "log_interaction", map[string]interface{}{
		"id":    id,
		"type":  "karaoke",
		"notes": "x",
	})
	if !r.IsError {
		t.Error("expected error for unknown type tag")
	}
}

func TestListInteractionsTool(t *testing.T) {
	srv, svc := testServer(t)
	id := intakeTestClient(t, svc, "Jane", "Doe")

	r := callTool(t, srv, "list_interactions", map[string]interface{}{"id": id})
	text := resultText(r)
	if !strings.Contains(text, "Initial Intake") {
		t.Errorf("history missing intake record: %q", text)
	}
}

func TestGetInteractionContractTool(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "get_interaction_contract", map[string]interface{}{})
	text := resultText(r)
	for _, tag := range []string{"contact", "service", "referral", "follow_up"} {
		if !strings.Contains(text, tag) {
			t.Errorf("contract missing type tag %q", tag)
		}
	}
}

func TestReadInteractionFormatResource(t *testing.T) {
	srv, _ := testServer(t)
	contents, err := srv.readInteractionFormatResource(context.Background(), mcp.ReadResourceRequest{})
	if err != nil {
		t.Fatal(err)
	}
	if len(contents) != 1 {
		t.Fatalf("contents len = %d", len(contents))
	}
	tc, ok := contents[0].(mcp.TextResourceContents)
	if !ok {
		t.Fatalf("unexpected contents type %T", contents[0])
	}
	if tc.Text != InteractionFormatContract {
		t.Error("resource text does not match contract")
	}
}
