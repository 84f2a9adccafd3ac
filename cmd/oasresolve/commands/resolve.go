package commands

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/erraggy/oasresolve/internal/fileutil"
	"github.com/erraggy/oasresolve/internal/pathutil"
	"github.com/erraggy/oasresolve/resolver"
)

// ResolveFlags contains flags for the resolve command
type ResolveFlags struct {
	Output          string
	OutDir          string
	Format          string
	ResolveHTTPRefs bool
	Insecure        bool
	NameOnlyVisit   bool
	Quiet           bool
	Debug           bool
}

// SetupResolveFlags creates and configures a FlagSet for the resolve command.
// Returns the FlagSet and a ResolveFlags struct with bound flag variables.
func SetupResolveFlags() (*flag.FlagSet, *ResolveFlags) {
	fs := flag.NewFlagSet("resolve", flag.ContinueOnError)
	flags := &ResolveFlags{}

	fs.StringVar(&flags.Output, "o", "", "output file path (default: stdout)")
	fs.StringVar(&flags.Output, "output", "", "output file path (default: stdout)")
	fs.StringVar(&flags.OutDir, "out-dir", "", "write each resolved input into this directory")
	fs.StringVar(&flags.Format, "format", "", "output format: json or yaml (default: same as the input)")
	fs.BoolVar(&flags.ResolveHTTPRefs, "resolve-http-refs", false, "resolve HTTP/HTTPS $ref URLs")
	fs.BoolVar(&flags.Insecure, "insecure", false, "disable TLS certificate verification for HTTPS refs")
	fs.BoolVar(&flags.NameOnlyVisit, "name-only-visit", false, "track visited entities by name only, ignoring category")
	fs.BoolVar(&flags.Quiet, "q", false, "quiet mode: only output the document, no diagnostic messages")
	fs.BoolVar(&flags.Quiet, "quiet", false, "quiet mode: only output the document, no diagnostic messages")
	fs.BoolVar(&flags.Debug, "debug", false, "log every file load, rewritten reference and inlined entity")

	fs.Usage = func() {
		output := fs.Output()
		Writef(output, "Usage: oasresolve resolve [flags] <file|glob|url|->...\n\n")
		Writef(output, "Inline every entity referenced from other documents into one self-contained document.\n\n")
		Writef(output, "Flags:\n")
		fs.PrintDefaults()
		Writef(output, "\nExamples:\n")
		Writef(output, "  oasresolve resolve swagger.json\n")
		Writef(output, "  oasresolve resolve -o resolved.yaml --format yaml api/swagger.json\n")
		Writef(output, "  oasresolve resolve --out-dir dist 'specs/**/swagger.json'\n")
		Writef(output, "  oasresolve resolve --resolve-http-refs https://example.com/api/swagger.json\n")
		Writef(output, "  cat swagger.json | oasresolve resolve -q -\n")
		Writef(output, "\nPipelining:\n")
		Writef(output, "  - Use '-' as the file path to read from stdin; relative refs resolve from the working directory\n")
		Writef(output, "  - Use --quiet/-q to suppress diagnostic output for pipelining\n")
		Writef(output, "\nExit Codes:\n")
		Writef(output, "  0    All inputs resolved\n")
		Writef(output, "  1    An input could not be resolved\n")
	}

	return fs, flags
}

// HandleResolve executes the resolve command
func HandleResolve(args []string) error {
	return RunResolve(args, os.Stdin, os.Stdout, os.Stderr)
}

// RunResolve executes the resolve command against the given streams.
func RunResolve(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs, flags := SetupResolveFlags()
	fs.SetOutput(stderr)

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	if fs.NArg() == 0 {
		fs.Usage()
		return fmt.Errorf("resolve command requires at least one file path, glob, URL, or '-' for stdin")
	}
	if flags.Output != "" && flags.OutDir != "" {
		return fmt.Errorf("--output and --out-dir cannot be used together")
	}

	format, err := resolver.ParseSourceFormat(flags.Format)
	if err != nil {
		return err
	}

	inputs, err := ExpandInputs(fs.Args())
	if err != nil {
		return err
	}
	if len(inputs) > 1 && flags.OutDir == "" {
		return fmt.Errorf("%d inputs given: use --out-dir to resolve more than one document", len(inputs))
	}

	r := resolver.New()
	r.FileSystem = NewFileSystem(flags.ResolveHTTPRefs, flags.Insecure)
	r.Logger = NewLogger(stderr, flags.Debug, flags.Quiet)
	r.NameOnlyVisitKeys = flags.NameOnlyVisit
	r.OutputFormat = format

	if flags.OutDir != "" {
		if err := os.MkdirAll(flags.OutDir, fileutil.OutputDir); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}

	written := make(map[string]string)
	for _, input := range inputs {
		res, err := resolveInput(r, input, stdin)
		if err != nil {
			return fmt.Errorf("resolving %s: %w", FormatSpecPath(input), err)
		}

		dest := flags.Output
		if flags.OutDir != "" {
			name := input
			if input == StdinFilePath {
				name = stdinSourceName
			}
			dest = pathutil.OutputPathFor(flags.OutDir, name, res.OutputFormat.Extension())
			if prev, ok := written[dest]; ok {
				return fmt.Errorf("%s and %s would both be written to %s", FormatSpecPath(prev), FormatSpecPath(input), dest)
			}
			written[dest] = input
		}
		if dest != "" {
			if err := ValidateOutputPath(dest, res.Documents); err != nil {
				return err
			}
		}
		if err := WriteOutput(stdout, dest, res.Data); err != nil {
			return err
		}

		if !flags.Quiet {
			WriteSummary(stderr, input, res)
			if dest != "" {
				Writef(stderr, "Output written to: %s\n", dest)
			}
		}
	}
	return nil
}

func resolveInput(r *resolver.Resolver, input string, stdin io.Reader) (*resolver.Result, error) {
	if input != StdinFilePath {
		return r.ResolveFile(input)
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return nil, fmt.Errorf("reading stdin: %w", err)
	}
	return r.ResolveBytes(stdinSourceName, data)
}
