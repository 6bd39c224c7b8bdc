// Package mcpserver provides an MCP (Model Context Protocol) server that
// exposes the recipe collection to LLM clients over stdio.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/opskrifter/internal/apperr"
	"github.com/starford/opskrifter/internal/recipes"
)

const formatURI = "opskrifter://recipe-format"

// Server wraps the MCP server with recipe tools.
type Server struct {
	mcp *server.MCPServer
	svc *recipes.Service
}

// New creates a new MCP server with all recipe tools registered.
func New(svc *recipes.Service, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Opskrifter",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_recipes",
		mcp.WithDescription("List all recipes with a title, ordered alphabetically by title. "+
			"Returns a JSON array of recipe summaries."),
	), s.listRecipes)

	s.mcp.AddTool(mcp.NewTool("get_recipe",
		mcp.WithDescription("Get a single recipe including its markdown body."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Recipe slug (file name without .md)")),
	), s.getRecipe)

	s.mcp.AddResource(
		mcp.NewResource(formatURI, "Recipe File Format",
			mcp.WithResourceDescription("Markdown and front-matter format of recipe files."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readFormatResource,
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

func (s *Server) listRecipes(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	items, err := s.svc.List(ctx)
	if err != nil {
		if errors.Is(err, apperr.ErrDirectoryNotFound) {
			return mcp.NewToolResultText("[]"), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(items), nil
}

func (s *Server) getRecipe(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	recipe, err := s.svc.Get(ctx, name)
	if err != nil {
		if errors.Is(err, apperr.ErrDocumentNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("recipe not found: %s", name)), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(recipe), nil
}

// jsonResult renders v as indented JSON text, or as a tool error when it
// cannot be encoded.
func jsonResult(v any) *mcp.CallToolResult {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode result: %v", err))
	}
	return mcp.NewToolResultText(string(out))
}

func (s *Server) readFormatResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      formatURI,
			MIMEType: "text/markdown",
			Text:     RecipeFormat,
		},
	}, nil
}
