package mcpserver

import (
	"context"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/berkano/internal/contentservice"
	"github.com/starford/berkano/internal/testutil"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	_, reg := testutil.TestRegistry(t)
	return New(contentservice.NewService(reg))
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go has no direct call-tool test helper, so the handler functions
	// are exercised directly.
	var result *mcp.CallToolResult
	var err error

	switch name {
	case "list_databases":
		result, err = srv.listDatabases(ctx, req)
	case "list_content":
		result, err = srv.listContent(ctx, req)
	case "read_content":
		result, err = srv.readContent(ctx, req)
	case "save_content":
		result, err = srv.saveContent(ctx, req)
	case "copy_content":
		result, err = srv.copyContent(ctx, req)
	case "get_document_format":
		result, err = srv.getDocumentFormat(ctx, req)
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

func TestSaveAndReadContent(t *testing.T) {
	srv := testServer(t)

	doc := "---\ntitle: Test Doc\n---\n\n# Test\n\nHello\n"
	r := callTool(t, srv, "save_content", map[string]interface{}{
		"id":      "c-1",
		"content": doc,
	})
	if r.IsError {
		t.Fatalf("save failed: %s", resultText(r))
	}
	if !strings.HasPrefix(resultText(r), "saved: c-1") {
		t.Errorf("save result = %q", resultText(r))
	}

	r = callTool(t, srv, "read_content", map[string]interface{}{"id": "c-1"})
	if r.IsError {
		t.Fatalf("read failed: %s", resultText(r))
	}
	text := resultText(r)
	if !strings.Contains(text, "title: Test Doc") || !strings.Contains(text, "# Test") {
		t.Errorf("read result = %q", text)
	}
}

func TestReadContentMissing(t *testing.T) {
	srv := testServer(t)
	r := callTool(t, srv, "read_content", map[string]interface{}{"id": "nope"})
	if !r.IsError {
		t.Error("expected error for missing content")
	}
}

func TestListDatabases(t *testing.T) {
	srv := testServer(t)
	if _, err := srv.svc.Registry().Create("extra.db", ""); err != nil {
		t.Fatal(err)
	}

	r := callTool(t, srv, "list_databases", map[string]interface{}{})
	text := resultText(r)
	if !strings.Contains(text, "extra.db") {
		t.Errorf("list = %q", text)
	}
}

func TestListContent(t *testing.T) {
	srv := testServer(t)
	callTool(t, srv, "save_content", map[string]interface{}{
		"id":      "c-1",
		"content": "---\ntitle: One\n---\n\nbody\n",
	})

	r := callTool(t, srv, "list_content", map[string]interface{}{})
	if r.IsError {
		t.Fatalf("list failed: %s", resultText(r))
	}
	if !strings.Contains(resultText(r), "c-1") {
		t.Errorf("list = %q", resultText(r))
	}
}

func TestCopyContentTool(t *testing.T) {
	srv := testServer(t)
	callTool(t, srv, "save_content", map[string]interface{}{
		"id":      "src",
		"content": "---\ntitle: Source\n---\n\nbody\n",
	})

	r := callTool(t, srv, "copy_content", map[string]interface{}{
		"id":     "src",
		"new_id": "dst",
	})
	if r.IsError {
		t.Fatalf("copy failed: %s", resultText(r))
	}

	r = callTool(t, srv, "read_content", map[string]interface{}{"id": "dst"})
	if r.IsError {
		t.Fatalf("read copy failed: %s", resultText(r))
	}
	if !strings.Contains(resultText(r), "title: Source") {
		t.Errorf("copy content = %q", resultText(r))
	}
}

func TestGetDocumentFormat(t *testing.T) {
	srv := testServer(t)
	r := callTool(t, srv, "get_document_format", map[string]interface{}{})
	text := resultText(r)
	if !strings.Contains(text, "Document Format Contract") {
		t.Errorf("contract text = %q...", text[:min(len(text), 80)])
	}
}
