package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/erraggy/oasresolve/internal/mcpserver"
)

// HandleMCP runs the MCP server over stdio until the client disconnects or
// the process is interrupted.
func HandleMCP(args []string) error {
	if len(args) > 0 && (args[0] == "-h" || args[0] == "--help" || args[0] == "help") {
		Writef(os.Stderr, "Usage: oasresolve mcp\n\n")
		Writef(os.Stderr, "Serve the resolve tool over stdio using the Model Context Protocol.\n")
		Writef(os.Stderr, "Defaults are read from OASRESOLVE_* environment variables.\n")
		return nil
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return mcpserver.Run(ctx)
}
