// Package oaserrors provides structured error types for the oasresolve library.
//
// Import path: github.com/erraggy/oasresolve/oaserrors
//
// This package enables programmatic error handling via [errors.Is] and [errors.As],
// allowing callers to distinguish a malformed reference from a missing file or a
// document that is not well-formed.
//
// # Error Types
//
//   - [ParseError]: YAML/JSON parsing failures of the root or an external document
//   - [ReferenceError]: malformed $ref strings and references to missing entities
//   - [FileError]: an external document could not be read
//   - [ResourceLimitError]: file size or cached document count limits
//   - [ConfigError]: invalid options or input
//
// # Sentinel Errors
//
//   - [ErrParse]: Matches any [ParseError]
//   - [ErrReference]: Matches any [ReferenceError]
//   - [ErrMalformedReference]: Matches [ReferenceError] with IsMalformed=true
//   - [ErrMissingTarget]: Matches [ReferenceError] with IsMissing=true
//   - [ErrIO]: Matches any [FileError]
//   - [ErrFileNotFound]: Matches [FileError] with NotFound=true
//   - [ErrResourceLimit]: Matches any [ResourceLimitError]
//   - [ErrConfig]: Matches any [ConfigError]
//
// # Usage Examples
//
//	out, err := resolver.New().Resolve("api.json", text)
//	if errors.Is(err, oaserrors.ErrFileNotFound) {
//	    // An external document referenced by api.json does not exist
//	}
//
//	var refErr *oaserrors.ReferenceError
//	if errors.As(err, &refErr) && refErr.IsMalformed {
//	    fmt.Printf("bad $ref: %s\n", refErr.Ref)
//	}
//
// # Error Chaining
//
// All error types except [ResourceLimitError] support chaining via the Cause
// field and Unwrap(), so the standard library's errors can be matched too:
//
//	if errors.Is(err, fs.ErrNotExist) {
//	    // same condition as ErrFileNotFound for local files
//	}
package oaserrors
