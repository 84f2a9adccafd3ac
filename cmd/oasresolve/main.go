package main

import (
	"fmt"
	"os"

	"github.com/erraggy/oasresolve"
	"github.com/erraggy/oasresolve/cmd/oasresolve/commands"
)

// commandNames lists every top-level command, used for typo suggestions.
var commandNames = []string{"resolve", "watch", "mcp", "version", "help"}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	var err error

	switch command {
	case "version", "-v", "--version":
		fmt.Printf("oasresolve v%s\n", oasresolve.Version())
		return
	case "help", "-h", "--help":
		printUsage()
		return
	case "resolve":
		err = commands.HandleResolve(os.Args[2:])
	case "watch":
		err = commands.HandleWatch(os.Args[2:])
	case "mcp":
		err = commands.HandleMCP(os.Args[2:])
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		if s := suggestCommand(command); s != "" {
			fmt.Fprintf(os.Stderr, "Did you mean: %s?\n", s)
		}
		fmt.Fprintln(os.Stderr)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Printf(`oasresolve - inline cross-document $refs in Swagger/OpenAPI 2.0 documents

Usage:
  oasresolve <command> [flags] [arguments]

Commands:
  resolve     Resolve one or more documents into self-contained documents
  watch       Resolve a document again whenever it or its references change
  mcp         Serve the resolve tool over stdio (Model Context Protocol)
  version     Show version information
  help        Show this help message

Examples:
  oasresolve resolve swagger.json
  oasresolve resolve -o resolved.yaml --format yaml api/swagger.json
  oasresolve watch -o dist/swagger.json api/swagger.json

Run 'oasresolve <command> --help' for more information on a command.
`)
}

// suggestCommand returns the known command closest to input, or "" when
// none is within an edit distance of 2.
func suggestCommand(input string) string {
	best := ""
	bestDist := 3
	for _, name := range commandNames {
		if d := levenshtein(input, name); d < bestDist {
			best = name
			bestDist = d
		}
	}
	return best
}

func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}
