package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/erraggy/oasresolve/filesystem"
	"github.com/erraggy/oasresolve/resolver"
	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
)

// DefaultDebounce is how long the watcher waits for more changes before
// resolving again.
const DefaultDebounce = 200 * time.Millisecond

// WatchFlags contains flags for the watch command
type WatchFlags struct {
	Output        string
	Format        string
	NameOnlyVisit bool
	Debounce      time.Duration
	MetricsAddr   string
	Quiet         bool
	Debug         bool
}

// SetupWatchFlags creates and configures a FlagSet for the watch command.
// Returns the FlagSet and a WatchFlags struct with bound flag variables.
func SetupWatchFlags() (*flag.FlagSet, *WatchFlags) {
	fs := flag.NewFlagSet("watch", flag.ContinueOnError)
	flags := &WatchFlags{}

	fs.StringVar(&flags.Output, "o", "", "output file path (required)")
	fs.StringVar(&flags.Output, "output", "", "output file path (required)")
	fs.StringVar(&flags.Format, "format", "", "output format: json or yaml (default: same as the input)")
	fs.BoolVar(&flags.NameOnlyVisit, "name-only-visit", false, "track visited entities by name only, ignoring category")
	fs.DurationVar(&flags.Debounce, "debounce", DefaultDebounce, "wait this long for further changes before resolving")
	fs.StringVar(&flags.MetricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address (e.g. :9090)")
	fs.BoolVar(&flags.Quiet, "q", false, "quiet mode: only report errors")
	fs.BoolVar(&flags.Quiet, "quiet", false, "quiet mode: only report errors")
	fs.BoolVar(&flags.Debug, "debug", false, "log every file load, rewritten reference and inlined entity")

	fs.Usage = func() {
		output := fs.Output()
		Writef(output, "Usage: oasresolve watch [flags] -o <output> <file>\n\n")
		Writef(output, "Resolve a document, then resolve it again whenever it or any document it references changes.\n\n")
		Writef(output, "Flags:\n")
		fs.PrintDefaults()
		Writef(output, "\nExamples:\n")
		Writef(output, "  oasresolve watch -o dist/swagger.json api/swagger.json\n")
		Writef(output, "  oasresolve watch --format yaml --debounce 1s -o dist/swagger.yaml api/swagger.json\n")
		Writef(output, "  oasresolve watch --metrics-addr :9090 -o dist/swagger.json api/swagger.json\n")
		Writef(output, "\nOnly local files are watched. Press Ctrl+C to stop.\n")
	}

	return fs, flags
}

// HandleWatch executes the watch command until interrupted
func HandleWatch(args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return RunWatch(ctx, args, os.Stderr)
}

// RunWatch executes the watch command until ctx is cancelled.
func RunWatch(ctx context.Context, args []string, stderr io.Writer) error {
	fs, flags := SetupWatchFlags()
	fs.SetOutput(stderr)

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	if fs.NArg() != 1 {
		fs.Usage()
		return fmt.Errorf("watch command requires exactly one local file path")
	}
	if flags.Output == "" {
		return fmt.Errorf("watch command requires an output file (-o)")
	}
	specPath := fs.Arg(0)
	if specPath == StdinFilePath || filesystem.IsURL(specPath) {
		return fmt.Errorf("watch command requires a local file, got %s", FormatSpecPath(specPath))
	}

	format, err := resolver.ParseSourceFormat(flags.Format)
	if err != nil {
		return err
	}

	r := resolver.New()
	r.FileSystem = NewFileSystem(false, false)
	r.Logger = NewLogger(stderr, flags.Debug, flags.Quiet)
	r.NameOnlyVisitKeys = flags.NameOnlyVisit
	r.OutputFormat = format

	level := slog.LevelInfo
	if flags.Debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	resolveOnce := func() (*resolver.Result, error) {
		res, err := r.ResolveFile(specPath)
		if err != nil {
			return nil, err
		}
		if err := ValidateOutputPath(flags.Output, res.Documents); err != nil {
			return nil, err
		}
		if err := WriteOutput(io.Discard, flags.Output, res.Data); err != nil {
			return nil, err
		}
		return res, nil
	}
	var metrics *watchMetrics
	if flags.MetricsAddr != "" {
		reg := prometheus.NewRegistry()
		metrics = newWatchMetrics(reg)
		if _, err := serveMetrics(ctx, flags.MetricsAddr, reg, logger); err != nil {
			return fmt.Errorf("starting metrics server: %w", err)
		}
	}

	report := func(res *resolver.Result, err error) {
		if metrics != nil {
			metrics.observe(res, err)
		}
		if err != nil {
			logger.Error("resolve failed", "path", specPath, "error", err)
			return
		}
		if !flags.Quiet {
			WriteSummary(stderr, specPath, res)
		}
	}

	w, err := NewWatcher(WatcherConfig{
		RootPath: specPath,
		Resolve:  resolveOnce,
		OnResult: report,
		Debounce: flags.Debounce,
		Logger:   logger,
	})
	if err != nil {
		return err
	}
	return w.Run(ctx)
}

// WatcherConfig configures a Watcher
type WatcherConfig struct {
	// RootPath is the document being resolved; it is always watched
	RootPath string

	// Resolve runs one resolution
	Resolve func() (*resolver.Result, error)

	// OnResult receives the outcome of every resolution
	OnResult func(*resolver.Result, error)

	// Debounce is how long to wait for more changes before resolving
	Debounce time.Duration

	// Logger for watcher events
	Logger *slog.Logger
}

// Watcher re-runs a resolution whenever one of the local documents the
// previous runs read is written, created, renamed or removed.
type Watcher struct {
	config  WatcherConfig
	watcher *fsnotify.Watcher
	logger  *slog.Logger

	files map[string]bool // absolute paths of tracked documents
	dirs  map[string]bool // directories registered with fsnotify
}

// NewWatcher creates a new Watcher
func NewWatcher(config WatcherConfig) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if config.Debounce <= 0 {
		config.Debounce = DefaultDebounce
	}

	return &Watcher{
		config:  config,
		watcher: fsw,
		logger:  logger,
		files:   make(map[string]bool),
		dirs:    make(map[string]bool),
	}, nil
}

// Run resolves once, then again after each burst of relevant changes, until
// ctx is cancelled. Resolution errors are reported, not returned, so a
// temporarily broken document does not end the session.
func (w *Watcher) Run(ctx context.Context) error {
	defer func() { _ = w.watcher.Close() }()

	w.track([]string{w.config.RootPath})
	w.cycle()

	var debounce <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if w.relevant(event) {
				w.logger.Debug("document changed", "path", event.Name, "op", event.Op.String())
				debounce = time.After(w.config.Debounce)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", "error", err)

		case <-debounce:
			debounce = nil
			w.cycle()
		}
	}
}

// Watched returns the absolute paths currently tracked.
func (w *Watcher) Watched() []string {
	out := make([]string, 0, len(w.files))
	for p := range w.files {
		out = append(out, p)
	}
	return out
}

func (w *Watcher) cycle() {
	runID := uuid.NewString()
	w.logger.Debug("resolving", "run_id", runID, "path", w.config.RootPath)

	res, err := w.config.Resolve()
	if err != nil {
		w.logger.Debug("resolution failed", "run_id", runID, "error", err)
	} else if res != nil {
		w.logger.Debug("resolution finished", "run_id", runID, "documents", len(res.Documents), "elapsed", res.ResolveTime)
	}
	if w.config.OnResult != nil {
		w.config.OnResult(res, err)
	}
	if err == nil && res != nil {
		w.track(res.Documents)
	}
}

// track adds local documents to the watched set. Directories are watched
// rather than files so editors that replace files on save are still seen.
func (w *Watcher) track(paths []string) {
	for _, p := range paths {
		if filesystem.IsURL(p) {
			continue
		}
		abs, err := filepath.Abs(strings.TrimPrefix(p, "file://"))
		if err != nil {
			continue
		}
		w.files[abs] = true

		dir := filepath.Dir(abs)
		if w.dirs[dir] {
			continue
		}
		if err := w.watcher.Add(dir); err != nil {
			w.logger.Warn("failed to watch directory", "path", dir, "error", err)
			continue
		}
		w.dirs[dir] = true
		w.logger.Debug("watching directory", "path", dir)
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Rename) && !event.Has(fsnotify.Remove) {
		return false
	}
	return w.files[filepath.Clean(event.Name)]
}
