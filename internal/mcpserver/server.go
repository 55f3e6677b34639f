// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes Berkano tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/berkano/internal/contentservice"
	"github.com/starford/berkano/internal/mapper"
)

// Server wraps the MCP server with Berkano tools.
type Server struct {
	mcp *server.MCPServer
	svc *contentservice.Service
}

// New creates a new MCP server with all Berkano tools registered.
func New(svc *contentservice.Service) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Berkano",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_databases",
		mcp.WithDescription("List all content databases; the active one is marked."),
	), s.listDatabases)

	s.mcp.AddTool(mcp.NewTool("list_content",
		mcp.WithDescription("List content entries in insertion order."),
		mcp.WithString("database", mcp.Description("Database file name (empty for the active one)")),
	), s.listContent)

	s.mcp.AddTool(mcp.NewTool("read_content",
		mcp.WithDescription("Read the full Markdown document for a content id."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Content id")),
		mcp.WithString("database", mcp.Description("Database file name (empty for the active one)")),
	), s.readContent)

	s.mcp.AddTool(mcp.NewTool("save_content",
		mcp.WithDescription("Create or update a content entry from a Markdown document. "+
			"The document MUST follow the canonical format (YAML frontmatter with title, "+
			"optional slug/status/category, Markdown body). Read the contract first via "+
			"the get_document_format tool or the berkano://document-format resource."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Content id to create or update")),
		mcp.WithString("content", mcp.Required(), mcp.Description("Markdown document following the format contract")),
		mcp.WithString("database", mcp.Description("Database file name (empty for the active one)")),
	), s.saveContent)

	s.mcp.AddTool(mcp.NewTool("copy_content",
		mcp.WithDescription("Copy a content entry to a new id within the same database."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Source content id")),
		mcp.WithString("new_id", mcp.Required(), mcp.Description("Id for the copy")),
		mcp.WithString("database", mcp.Description("Database file name (empty for the active one)")),
	), s.copyContent)

	s.mcp.AddTool(mcp.NewTool("get_document_format",
		mcp.WithDescription("Returns the canonical Berkano document format contract. "+
			"Call this before creating or updating content to ensure correct structure."),
	), s.getDocumentFormat)

	// Resource: document format contract.
	s.mcp.AddResource(
		mcp.NewResource("berkano://document-format", "Document Format Contract",
			mcp.WithResourceDescription("Canonical Markdown document format that all content must follow."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readDocumentFormatResource,
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

func (s *Server) listDatabases(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	infos, err := s.svc.Registry().List()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	active := s.svc.Registry().ActiveName()

	var lines []string
	for _, info := range infos {
		line := info.Name
		if info.Name == active {
			line += " (active)"
		}
		lines = append(lines, line)
	}
	if len(lines) == 0 {
		return mcp.NewToolResultText("no databases found"), nil
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func (s *Server) listContent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	dbName := ""
	if d, err := req.RequireString("database"); err == nil {
		dbName = d
	}

	items, err := s.svc.ListContent(ctx, dbName)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(items, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) readContent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	dbName := ""
	if d, reqErr := req.RequireString("database"); reqErr == nil {
		dbName = d
	}

	detail, err := s.svc.GetFullContent(ctx, dbName, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", id)), nil
	}
	doc, err := mapper.ComposeDocument(detail.Content)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(doc)), nil
}

func (s *Server) saveContent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	dbName := ""
	if d, reqErr := req.RequireString("database"); reqErr == nil {
		dbName = d
	}

	c := mapper.ParseDocument(id, []byte(content))
	sum, err := s.svc.SaveFullContent(ctx, dbName, c, "")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("saved: %s (checksum %s)", id, sum)), nil
}

func (s *Server) copyContent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	newID, err := req.RequireString("new_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	dbName := ""
	if d, reqErr := req.RequireString("database"); reqErr == nil {
		dbName = d
	}

	if err := s.svc.CopyContent(ctx, dbName, id, newID); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("copied: %s -> %s", id, newID)), nil
}

func (s *Server) getDocumentFormat(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(DocumentFormatContract), nil
}

func (s *Server) readDocumentFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "berkano://document-format",
			MIMEType: "text/markdown",
			Text:     DocumentFormatContract,
		},
	}, nil
}
