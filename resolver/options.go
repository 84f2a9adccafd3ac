package resolver

import (
	"fmt"
	"io"

	"github.com/erraggy/oasresolve/filesystem"
	"github.com/erraggy/oasresolve/internal/options"
	"github.com/erraggy/oasresolve/oaserrors"
)

// Option is a function that configures a resolve operation
type Option func(*resolveConfig) error

// resolveConfig holds configuration for a resolve operation
type resolveConfig struct {
	// Input source (exactly one must be set)
	filePath *string
	reader   io.Reader
	bytes    []byte

	// Configuration options
	fileSystem      filesystem.FileSystem
	resolveHTTPRefs bool
	logger          Logger
	nameOnlyVisit   bool
	outputFormat    SourceFormat

	// Resource limits (0 means use default)
	maxCachedDocuments int
	maxFileSize        int64

	// Source identification for reader and byte inputs
	sourceName string
}

// ResolveWithOptions resolves a root document using functional options.
//
// Example:
//
//	result, err := resolver.ResolveWithOptions(
//	    resolver.WithFilePath("api/swagger.json"),
//	    resolver.WithOutputFormat(resolver.SourceFormatYAML),
//	)
func ResolveWithOptions(opts ...Option) (*Result, error) {
	cfg, err := applyOptions(opts...)
	if err != nil {
		return nil, fmt.Errorf("resolver: invalid options: %w", err)
	}

	fs := cfg.fileSystem
	if fs == nil {
		local := filesystem.NewLocal()
		local.AllowHTTP = cfg.resolveHTTPRefs
		local.MaxFileSize = cfg.maxFileSize
		fs = local
	}

	r := &Resolver{
		FileSystem:         fs,
		Logger:             cfg.logger,
		NameOnlyVisitKeys:  cfg.nameOnlyVisit,
		MaxCachedDocuments: cfg.maxCachedDocuments,
		MaxFileSize:        cfg.maxFileSize,
		OutputFormat:       cfg.outputFormat,
	}

	switch {
	case cfg.filePath != nil:
		return r.ResolveFile(*cfg.filePath)
	case cfg.reader != nil:
		data, err := io.ReadAll(cfg.reader)
		if err != nil {
			return nil, fmt.Errorf("resolver: reading %s: %w", cfg.sourceName, err)
		}
		return r.ResolveBytes(cfg.sourceName, data)
	default:
		return r.ResolveBytes(cfg.sourceName, cfg.bytes)
	}
}

// applyOptions applies option functions and validates configuration
func applyOptions(opts ...Option) (*resolveConfig, error) {
	cfg := &resolveConfig{
		sourceName: "stdin",
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	if err := options.ValidateSingleInputSource(
		"must specify an input source (use WithFilePath, WithReader, or WithBytes)",
		"must specify exactly one input source",
		cfg.filePath != nil, cfg.reader != nil, cfg.bytes != nil,
	); err != nil {
		return nil, err
	}

	return cfg, nil
}

// WithFilePath specifies a file path or URL as the root document
func WithFilePath(path string) Option {
	return func(cfg *resolveConfig) error {
		cfg.filePath = &path
		return nil
	}
}

// WithReader specifies an io.Reader as the root document
func WithReader(r io.Reader) Option {
	return func(cfg *resolveConfig) error {
		cfg.reader = r
		return nil
	}
}

// WithBytes specifies a byte slice as the root document
func WithBytes(data []byte) Option {
	return func(cfg *resolveConfig) error {
		cfg.bytes = data
		return nil
	}
}

// WithSourceName sets the path reader and byte inputs are treated as having.
// Relative references are rooted against its directory. Default: "stdin",
// which roots them at the working directory.
func WithSourceName(name string) Option {
	return func(cfg *resolveConfig) error {
		cfg.sourceName = name
		return nil
	}
}

// WithFileSystem sets the file system used to load documents.
// When set, WithResolveHTTPRefs has no effect.
func WithFileSystem(fs filesystem.FileSystem) Option {
	return func(cfg *resolveConfig) error {
		cfg.fileSystem = fs
		return nil
	}
}

// WithResolveHTTPRefs enables http and https references on the default
// file system. Disabled by default.
func WithResolveHTTPRefs(enabled bool) Option {
	return func(cfg *resolveConfig) error {
		cfg.resolveHTTPRefs = enabled
		return nil
	}
}

// WithLogger sets the structured logger for debug output
func WithLogger(l Logger) Option {
	return func(cfg *resolveConfig) error {
		cfg.logger = l
		return nil
	}
}

// WithNameOnlyVisitKeys tracks visited entities by name alone
func WithNameOnlyVisitKeys(enabled bool) Option {
	return func(cfg *resolveConfig) error {
		cfg.nameOnlyVisit = enabled
		return nil
	}
}

// WithOutputFormat selects the output format. SourceFormatUnknown keeps the
// root document's format.
func WithOutputFormat(format SourceFormat) Option {
	return func(cfg *resolveConfig) error {
		switch format {
		case "", SourceFormatUnknown, SourceFormatJSON, SourceFormatYAML:
			cfg.outputFormat = format
			return nil
		default:
			return &oaserrors.ConfigError{Option: "output format", Value: string(format), Message: "must be json or yaml"}
		}
	}
}

// WithMaxCachedDocuments sets the maximum number of documents loaded per run
// (0 uses the default of 100)
func WithMaxCachedDocuments(n int) Option {
	return func(cfg *resolveConfig) error {
		if err := options.ValidateNonNegative("max cached documents", int64(n)); err != nil {
			return err
		}
		cfg.maxCachedDocuments = n
		return nil
	}
}

// WithMaxFileSize sets the maximum document size in bytes
// (0 uses the default of 10MB)
func WithMaxFileSize(size int64) Option {
	return func(cfg *resolveConfig) error {
		if err := options.ValidateNonNegative("max file size", size); err != nil {
			return err
		}
		cfg.maxFileSize = size
		return nil
	}
}
