package commands

import (
	"path/filepath"
	"testing"

	"github.com/erraggy/oasresolve/internal/testutil"
)

// testCommonJSON is the document every test root refers to.
const testCommonJSON = testutil.PetStoreCommonJSON

// writeSpecDir writes a root document and the document it references into
// a new temporary directory and returns the root document's path.
func writeSpecDir(t *testing.T, rootName string) string {
	t.Helper()
	return writeSpecs(t, t.TempDir(), rootName)
}

func writeSpecs(t *testing.T, dir, rootName string) string {
	t.Helper()
	testutil.WriteTree(t, dir, testutil.PetStore(rootName))
	return filepath.Join(dir, rootName)
}
