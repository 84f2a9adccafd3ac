// Package mcpserver implements an MCP (Model Context Protocol) server
// that exposes the oasresolve engine as an MCP tool over stdio.
package mcpserver

import (
	"context"
	"regexp"

	"github.com/erraggy/oasresolve"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `oasresolve MCP server: inlines entities referenced from other documents into one self-contained Swagger/OpenAPI 2.0 document.

Configuration: defaults are configurable via OASRESOLVE_* environment variables set in your MCP client config.

Key settings:
- OASRESOLVE_ALLOW_HTTP (default: false) allow url input and http/https $refs
- OASRESOLVE_ALLOW_PRIVATE_IPS (default: false) allow remote reads from private and loopback addresses
- OASRESOLVE_MAX_DOCUMENTS (default: 100) documents one resolution may load
- OASRESOLVE_MAX_FILE_SIZE (default: 10485760) bytes per document
- OASRESOLVE_MAX_INLINE_SIZE (default: 10485760) bytes accepted in the content argument
- OASRESOLVE_NAME_ONLY_VISIT (default: false) default for name_only_visit`

// Run starts the MCP server over stdio and blocks until the client disconnects
// or the context is cancelled.
func Run(ctx context.Context) error {
	return newServer().Run(ctx, &mcp.StdioTransport{})
}

func newServer() *mcp.Server {
	server := mcp.NewServer(
		&mcp.Implementation{Name: "oasresolve", Version: oasresolve.Version()},
		&mcp.ServerOptions{
			Instructions: serverInstructions,
		},
	)
	registerAllTools(server)
	return server
}

func registerAllTools(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "resolve",
		Description: "Resolve a Swagger/OpenAPI 2.0 document that references definitions, parameters, responses or security definitions in other documents. Every referenced entity, and every definition that extends one through allOf, is copied into the root document and each cross-document $ref is rewritten to a local one. Provide exactly one of file, url or content. For content, base_path is the directory relative references are resolved from; without it only local references are allowed. Returns the self-contained document and counts of the work done.",
	}, handleResolve)
}

// sanitizeError strips absolute filesystem paths from error messages
// to prevent leaking internal directory structure to MCP clients.
var pathPattern = regexp.MustCompile(`(?:/(?:home|tmp|var|Users|etc|opt|usr|private|root|mnt|srv|run|snap|nix)[a-zA-Z0-9._/-]*)`)

func sanitizeError(err error) string {
	if err == nil {
		return ""
	}
	return pathPattern.ReplaceAllString(err.Error(), "<path>")
}

// errResult creates an MCP error result from an error.
func errResult(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: sanitizeError(err)}},
	}
}
