// Package commands provides CLI command handlers for oasresolve.
package commands

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/erraggy/oasresolve"
	"github.com/erraggy/oasresolve/filesystem"
	"github.com/erraggy/oasresolve/internal/fileutil"
	"github.com/erraggy/oasresolve/internal/pathutil"
	"github.com/erraggy/oasresolve/resolver"
)

// StdinFilePath is the special file path used to indicate reading from stdin.
const StdinFilePath = "-"

// stdinSourceName is the name given to a document read from stdin. Relative
// references in it are rooted at the working directory.
const stdinSourceName = "stdin"

// Writef writes formatted output to the writer.
// If the write fails, it logs to stderr (useful for debugging).
func Writef(w io.Writer, format string, args ...any) {
	if _, err := fmt.Fprintf(w, format, args...); err != nil { //nolint:gosec // G705 - CLI tool, not a web server
		_, _ = fmt.Fprintf(os.Stderr, "write error: %v\n", err)
	}
}

// FormatSpecPath returns a display-friendly path for the specification.
// Returns "<stdin>" if the path is StdinFilePath, otherwise returns the path as-is.
func FormatSpecPath(specPath string) string {
	if specPath == StdinFilePath {
		return "<stdin>"
	}
	return specPath
}

// NewLogger builds the resolver logger used by the CLI. Diagnostics go to w;
// debug enables per-reference tracing and quiet limits output to errors.
func NewLogger(w io.Writer, debug, quiet bool) resolver.Logger {
	level := slog.LevelWarn
	switch {
	case debug:
		level = slog.LevelDebug
	case quiet:
		level = slog.LevelError
	}
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return resolver.NewSlogAdapter(slog.New(handler))
}

// NewFileSystem returns the local file system configured from CLI flags.
func NewFileSystem(resolveHTTPRefs, insecure bool) *filesystem.Local {
	local := filesystem.NewLocal()
	local.AllowHTTP = resolveHTTPRefs
	local.InsecureSkipVerify = insecure
	local.UserAgent = oasresolve.UserAgent()
	return local
}

// ExpandInputs expands glob patterns (including "**") in the input arguments.
// StdinFilePath and URLs are passed through unchanged. Duplicates are dropped
// and a pattern that matches nothing is an error.
func ExpandInputs(args []string) ([]string, error) {
	seen := make(map[string]bool)
	var inputs []string
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			inputs = append(inputs, p)
		}
	}

	for _, arg := range args {
		if arg == StdinFilePath || filesystem.IsURL(arg) || !containsGlob(arg) {
			add(arg)
			continue
		}
		matches, err := doublestar.FilepathGlob(arg, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("invalid glob pattern %q: %w", arg, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("no files match pattern: %s", arg)
		}
		for _, m := range matches {
			add(m)
		}
	}
	return inputs, nil
}

// containsGlob checks if a pattern contains glob characters.
func containsGlob(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[{")
}

// ValidateOutputPath checks that writing outputPath would not overwrite any
// of the documents a resolution read.
func ValidateOutputPath(outputPath string, inputPaths []string) error {
	absOutputPath, err := filepath.Abs(outputPath)
	if err != nil {
		return fmt.Errorf("invalid output path: %w", err)
	}

	for _, inputPath := range inputPaths {
		if filesystem.IsURL(inputPath) || inputPath == stdinSourceName {
			continue
		}
		absInputPath, err := filepath.Abs(strings.TrimPrefix(inputPath, "file://"))
		if err != nil {
			return fmt.Errorf("invalid input path %s: %w", inputPath, err)
		}
		if absOutputPath == absInputPath {
			return fmt.Errorf("output file %s would overwrite input file %s", outputPath, inputPath)
		}
	}
	return nil
}

// WriteOutput writes data to path, or to stdout when path is empty.
// Files are created owner read/write only and symlinks are refused.
func WriteOutput(stdout io.Writer, path string, data []byte) error {
	if path == "" {
		if _, err := stdout.Write(data); err != nil {
			return fmt.Errorf("writing output: %w", err)
		}
		return nil
	}
	cleaned, err := pathutil.SanitizeOutputPath(path)
	if err != nil {
		return err
	}
	if err := os.WriteFile(cleaned, data, fileutil.OwnerReadWrite); err != nil {
		return fmt.Errorf("writing output file: %w", err)
	}
	return nil
}

// WriteSummary prints a one-line account of a resolution to w.
func WriteSummary(w io.Writer, specPath string, res *resolver.Result) {
	Writef(w, "Resolved %s: %d documents loaded, %d refs rewritten, %d entities inlined, %d subtypes inlined (%v)\n",
		FormatSpecPath(specPath),
		res.Stats.DocumentsLoaded,
		res.Stats.RefsRewritten,
		res.Stats.EntitiesInlined,
		res.Stats.SubtypesInlined,
		res.ResolveTime,
	)
}
