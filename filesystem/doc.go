// Package filesystem provides the file-system collaborator the resolver uses
// to load external documents.
//
// The resolver never touches the disk or the network directly. It asks a
// [FileSystem] four questions: read the text at a path, is a path already
// complete (an absolute URI or a rooted path), what is the parent directory of
// a path, and how does a relative path root against a directory.
//
// Two implementations are provided:
//
//   - [Local] reads from the operating system and, when AllowHTTP is set,
//     from http and https URLs.
//   - [Memory] serves documents from an in-memory map keyed by slash paths.
//     It is useful in tests and for resolving inline content.
//
// Example:
//
//	fsys := filesystem.NewLocal()
//	fsys.AllowHTTP = true
//
//	r := resolver.New(resolver.WithFileSystem(fsys))
package filesystem
