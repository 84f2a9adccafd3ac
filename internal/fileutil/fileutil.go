// Package fileutil holds file permission modes shared by the CLI and MCP server.
package fileutil

import "os"

// OwnerReadWrite is the file permission mode for resolved documents, which
// may contain API descriptions not meant for other users (owner read/write only).
const OwnerReadWrite os.FileMode = 0o600

// OutputDir is the permission mode for directories created to hold
// resolved documents.
const OutputDir os.FileMode = 0o755
