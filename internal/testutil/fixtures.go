// Package testutil provides test utilities and fixtures for unit tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// PetStoreRootJSON is a Swagger 2.0 root document whose only definition
// refers to Pet in common.json.
const PetStoreRootJSON = `{
  "swagger": "2.0",
  "info": {"title": "Pets", "version": "1.0.0"},
  "paths": {
    "/pets": {
      "get": {
        "responses": {
          "200": {"description": "OK", "schema": {"$ref": "#/definitions/PetList"}}
        }
      }
    }
  },
  "definitions": {
    "PetList": {"type": "array", "items": {"$ref": "common.json#/definitions/Pet"}}
  }
}
`

// PetStoreCommonJSON holds Pet, a Dog that extends it through allOf, and a
// definition nothing references.
const PetStoreCommonJSON = `{
  "definitions": {
    "Pet": {"type": "object", "properties": {"name": {"type": "string"}}},
    "Dog": {"allOf": [{"$ref": "#/definitions/Pet"}, {"type": "object"}]},
    "Unused": {"type": "string"}
  }
}
`

// PetStore returns the files of a two-document API keyed by relative path.
// rootName names the root document; the referenced one is always common.json.
func PetStore(rootName string) map[string]string {
	return map[string]string{
		rootName:      PetStoreRootJSON,
		"common.json": PetStoreCommonJSON,
	}
}

// WriteTree writes files (relative path to content) under dir, creating
// directories as needed. An empty dir writes into a new t.TempDir().
// Returns the directory written to.
func WriteTree(t *testing.T, dir string, files map[string]string) string {
	t.Helper()

	if dir == "" {
		dir = t.TempDir()
	}
	for rel, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("Failed to create directory for %s: %v", rel, err)
		}
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatalf("Failed to write %s: %v", rel, err)
		}
	}
	return dir
}
