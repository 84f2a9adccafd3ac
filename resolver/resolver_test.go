package resolver

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/erraggy/oasresolve/filesystem"
	"github.com/erraggy/oasresolve/oaserrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v4"
)

// resolveMemory resolves rootPath from an in-memory file set.
func resolveMemory(t *testing.T, files map[string]string, rootPath string, configure ...func(*Resolver)) (*Result, error) {
	t.Helper()
	fs := filesystem.NewMemory(files)
	r := New()
	r.FileSystem = fs
	for _, fn := range configure {
		fn(r)
	}
	return r.ResolveFile(rootPath)
}

func decodeOutput(t *testing.T, data []byte) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, yaml.Unmarshal(data, &out))
	return out
}

// dig walks nested maps and slices; string keys index maps, ints index slices.
func dig(t *testing.T, v any, path ...any) any {
	t.Helper()
	for _, p := range path {
		switch key := p.(type) {
		case string:
			m, ok := v.(map[string]any)
			require.Truef(t, ok, "expected mapping at %q, got %T", key, v)
			v, ok = m[key]
			require.Truef(t, ok, "missing key %q", key)
		case int:
			s, ok := v.([]any)
			require.Truef(t, ok, "expected sequence at %d, got %T", key, v)
			require.Less(t, key, len(s))
			v = s[key]
		}
	}
	return v
}

// mappingKeys returns the keys of doc[category] in order, duplicates kept.
func mappingKeys(t *testing.T, data []byte, category string) []string {
	t.Helper()
	var node yaml.Node
	require.NoError(t, yaml.Unmarshal(data, &node))
	cat := mappingValue(node.Content[0], category)
	require.NotNil(t, cat, "missing %s", category)
	var keys []string
	for i := 0; i+1 < len(cat.Content); i += 2 {
		keys = append(keys, cat.Content[i].Value)
	}
	return keys
}

func TestResolve_RewriteInPlaceAndPathRooting(t *testing.T) {
	files := map[string]string{
		"/a/b/root.json": `{
  "swagger": "2.0",
  "paths": {
    "/pets": {
      "get": {
        "responses": {
          "default": {
            "description": "unexpected error",
            "schema": {"$ref": "../common.json#/definitions/Error", "x-note": "kept"}
          }
        }
      }
    }
  }
}`,
		"/a/common.json": `{"definitions": {"Error": {"type": "object", "properties": {"code": {"type": "integer"}}}}}`,
	}

	res, err := resolveMemory(t, files, "/a/b/root.json")
	require.NoError(t, err)

	out := decodeOutput(t, res.Data)
	response := dig(t, out, "paths", "/pets", "get", "responses", "default")
	assert.Equal(t, "unexpected error", dig(t, response, "description"))
	assert.Equal(t, map[string]any{"$ref": "#/definitions/Error", "x-note": "kept"}, dig(t, response, "schema"))
	assert.Equal(t, "integer", dig(t, out, "definitions", "Error", "properties", "code", "type"))

	assert.Equal(t, []string{"/a/b/root.json", "/a/common.json"}, res.Documents)
	assert.Equal(t, Stats{DocumentsLoaded: 1, RefsRewritten: 1, EntitiesInlined: 1}, res.Stats)
	assert.Equal(t, SourceFormatJSON, res.SourceFormat)
	assert.Equal(t, SourceFormatJSON, res.OutputFormat)
}

func TestResolve_Idempotent(t *testing.T) {
	in := `{
  "swagger": "2.0",
  "info": {
    "title": "Pets",
    "version": "1.0"
  },
  "paths": {
    "/pets": {
      "get": {
        "responses": {
          "200": {
            "description": "ok",
            "schema": {
              "$ref": "#/definitions/Pet"
            }
          }
        }
      }
    }
  },
  "definitions": {
    "Pet": {
      "type": "object",
      "properties": {
        "owner": {
          "$ref": "#/definitions/Owner"
        }
      }
    },
    "Owner": {
      "type": "object"
    }
  }
}
`
	r := New()
	r.FileSystem = filesystem.NewMemory(nil)

	out, err := r.Resolve("/specs/root.json", in)
	require.NoError(t, err)
	assert.Equal(t, in, out)

	again, err := r.Resolve("/specs/root.json", out)
	require.NoError(t, err)
	assert.Equal(t, out, again)
}

func TestResolve_ClosureAcrossFiles(t *testing.T) {
	const depth = 5
	files := map[string]string{
		"/specs/f0.json": `{"swagger": "2.0", "paths": {"/x": {"get": {"responses": {"200": {"description": "ok", "schema": {"$ref": "f1.json#/definitions/M1"}}}}}}}`,
	}
	for i := 1; i <= depth; i++ {
		model := `{"type": "object"}`
		if i < depth {
			model = fmt.Sprintf(`{"type": "object", "properties": {"next": {"$ref": "f%d.json#/definitions/M%d"}}}`, i+1, i+1)
		}
		files[fmt.Sprintf("/specs/f%d.json", i)] = fmt.Sprintf(`{"definitions": {"M%d": %s}}`, i, model)
	}

	res, err := resolveMemory(t, files, "/specs/f0.json")
	require.NoError(t, err)

	out := decodeOutput(t, res.Data)
	for i := 1; i <= depth; i++ {
		assert.NotNil(t, dig(t, out, "definitions", fmt.Sprintf("M%d", i)))
	}
	for i := 1; i < depth; i++ {
		assert.Equal(t, fmt.Sprintf("#/definitions/M%d", i+1),
			dig(t, out, "definitions", fmt.Sprintf("M%d", i), "properties", "next", "$ref"))
	}
	assert.NotContains(t, string(res.Data), ".json#")
	assert.Equal(t, depth, res.Stats.DocumentsLoaded)
	assert.Equal(t, depth, res.Stats.RefsRewritten)
	assert.Equal(t, depth, res.Stats.EntitiesInlined)
}

func TestResolve_LocalRefsInsideExternalDocument(t *testing.T) {
	files := map[string]string{
		"/specs/root.yaml": `swagger: "2.0"
paths:
  /pets:
    get:
      responses:
        "200":
          description: ok
          schema:
            $ref: models.yaml#/definitions/Pet
`,
		"/specs/models.yaml": `definitions:
  Pet:
    type: object
    properties:
      tag:
        $ref: "#/definitions/Tag"
  Tag:
    type: string
  Unused:
    type: integer
`,
	}

	res, err := resolveMemory(t, files, "/specs/root.yaml")
	require.NoError(t, err)
	assert.Equal(t, SourceFormatYAML, res.OutputFormat)

	out := decodeOutput(t, res.Data)
	assert.Equal(t, "#/definitions/Tag", dig(t, out, "definitions", "Pet", "properties", "tag", "$ref"))
	assert.Equal(t, "string", dig(t, out, "definitions", "Tag", "type"))
	assert.NotContains(t, dig(t, out, "definitions"), "Unused")
	assert.Equal(t, "2.0", out["swagger"])
	assert.Equal(t, 2, res.Stats.EntitiesInlined)
}

func TestResolve_CycleSafety(t *testing.T) {
	tests := []struct {
		name  string
		files map[string]string
	}{
		{
			name: "across files",
			files: map[string]string{
				"/specs/root.json": `{"paths": {"/a": {"get": {"responses": {"200": {"description": "ok", "schema": {"$ref": "a.json#/definitions/A"}}}}}}}`,
				"/specs/a.json":    `{"definitions": {"A": {"properties": {"b": {"$ref": "b.json#/definitions/B"}}}}}`,
				"/specs/b.json":    `{"definitions": {"B": {"properties": {"a": {"$ref": "a.json#/definitions/A"}}}}}`,
			},
		},
		{
			name: "within one file",
			files: map[string]string{
				"/specs/root.json": `{"paths": {"/a": {"get": {"responses": {"200": {"description": "ok", "schema": {"$ref": "a.json#/definitions/A"}}}}}}}`,
				"/specs/a.json":    `{"definitions": {"A": {"properties": {"b": {"$ref": "#/definitions/B"}}}, "B": {"properties": {"a": {"$ref": "#/definitions/A"}}}}}`,
			},
		},
		{
			name: "self reference",
			files: map[string]string{
				"/specs/root.json": `{"paths": {"/a": {"get": {"responses": {"200": {"description": "ok", "schema": {"$ref": "a.json#/definitions/A"}}}}}}}`,
				"/specs/a.json":    `{"definitions": {"A": {"properties": {"self": {"$ref": "#/definitions/A"}}}, "B": {"properties": {"a": {"$ref": "#/definitions/A"}}}}}`,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := resolveMemory(t, tt.files, "/specs/root.json")
			require.NoError(t, err)

			keys := mappingKeys(t, res.Data, "definitions")
			assert.Contains(t, keys, "A")
			assert.Len(t, keys, len(uniqueStrings(keys)), "entities must appear once: %v", keys)
			assert.NotContains(t, string(res.Data), ".json#")
		})
	}
}

func uniqueStrings(in []string) map[string]bool {
	out := make(map[string]bool, len(in))
	for _, s := range in {
		out[s] = true
	}
	return out
}

func TestResolve_CycleAcrossFilesInlinesBoth(t *testing.T) {
	files := map[string]string{
		"/specs/root.json": `{"paths": {"/a": {"get": {"responses": {"200": {"description": "ok", "schema": {"$ref": "a.json#/definitions/A"}}}}}}}`,
		"/specs/a.json":    `{"definitions": {"A": {"properties": {"b": {"$ref": "b.json#/definitions/B"}}}}}`,
		"/specs/b.json":    `{"definitions": {"B": {"properties": {"a": {"$ref": "a.json#/definitions/A"}}}}}`,
	}

	res, err := resolveMemory(t, files, "/specs/root.json")
	require.NoError(t, err)

	// B completes before A because copies happen after recursion
	assert.Equal(t, []string{"B", "A"}, mappingKeys(t, res.Data, "definitions"))
	out := decodeOutput(t, res.Data)
	assert.Equal(t, "#/definitions/B", dig(t, out, "definitions", "A", "properties", "b", "$ref"))
	assert.Equal(t, "#/definitions/A", dig(t, out, "definitions", "B", "properties", "a", "$ref"))
}

func TestResolve_AllOfSubtypeClosure(t *testing.T) {
	files := map[string]string{
		"/specs/root.json": `{
  "swagger": "2.0",
  "paths": {"/animals": {"get": {"responses": {"200": {"description": "ok", "schema": {"$ref": "models.json#/definitions/Animal"}}}}}}
}`,
		"/specs/models.json": `{
  "definitions": {
    "Animal": {"type": "object", "discriminator": "kind", "properties": {"kind": {"type": "string"}}},
    "Dog": {"allOf": [{"$ref": "#/definitions/Animal"}, {"properties": {"bark": {"type": "boolean"}}}]},
    "Cat": {"allOf": [{"$ref": "models.json#/definitions/Animal"}]},
    "Puppy": {"allOf": [{"$ref": "#/definitions/Dog"}]},
    "AnimalList": {"type": "array", "items": {"$ref": "#/definitions/Animal"}},
    "Rock": {"type": "object"}
  }
}`,
	}

	res, err := resolveMemory(t, files, "/specs/root.json")
	require.NoError(t, err)

	keys := mappingKeys(t, res.Data, "definitions")
	assert.ElementsMatch(t, []string{"Animal", "Dog", "Cat", "Puppy"}, keys)

	out := decodeOutput(t, res.Data)
	assert.Equal(t, "#/definitions/Animal", dig(t, out, "definitions", "Dog", "allOf", 0, "$ref"))
	assert.Equal(t, "#/definitions/Animal", dig(t, out, "definitions", "Cat", "allOf", 0, "$ref"))
	assert.Equal(t, "#/definitions/Dog", dig(t, out, "definitions", "Puppy", "allOf", 0, "$ref"))
	assert.Equal(t, 1, res.Stats.EntitiesInlined)
	assert.Equal(t, 3, res.Stats.SubtypesInlined)
}

func TestResolve_SubtypeAlreadyInRootIsKept(t *testing.T) {
	files := map[string]string{
		"/specs/root.json": `{
  "paths": {"/a": {"get": {"responses": {"200": {"description": "ok", "schema": {"$ref": "models.json#/definitions/Animal"}}}}}},
  "definitions": {"Dog": {"description": "root copy"}}
}`,
		"/specs/models.json": `{"definitions": {
  "Animal": {"type": "object"},
  "Dog": {"allOf": [{"$ref": "#/definitions/Animal"}], "description": "external copy"}
}}`,
	}

	res, err := resolveMemory(t, files, "/specs/root.json")
	require.NoError(t, err)

	out := decodeOutput(t, res.Data)
	assert.Equal(t, "root copy", dig(t, out, "definitions", "Dog", "description"))
	assert.Equal(t, 0, res.Stats.SubtypesInlined)
}

func TestResolve_ExampleExclusion(t *testing.T) {
	files := map[string]string{
		"/specs/root.json": `{
  "swagger": "2.0",
  "paths": {
    "/pets": {
      "get": {
        "x-ms-examples": {"GetPets": {"$ref": "./examples/GetPets.json"}},
        "responses": {
          "200": {
            "description": "ok",
            "examples": {"application/json": {"$ref": "missing.json#/definitions/Nope"}},
            "schema": {"type": "object", "example": {"$ref": "also-missing.json#/definitions/Nope"}}
          }
        }
      }
    }
  }
}`,
	}
	fs := &countingFS{Memory: filesystem.NewMemory(files)}
	r := New()
	r.FileSystem = fs

	res, err := r.ResolveFile("/specs/root.json")
	require.NoError(t, err)

	assert.Equal(t, []string{"/specs/root.json"}, fs.reads)
	assert.Equal(t, Stats{}, res.Stats)
	assert.Contains(t, string(res.Data), `"./examples/GetPets.json"`)
	assert.Contains(t, string(res.Data), `"missing.json#/definitions/Nope"`)
}

func TestResolve_ExampleNamedModelFilesAreInlined(t *testing.T) {
	files := map[string]string{
		"/api/root.json": `{
  "swagger": "2.0",
  "paths": {"/a": {"get": {"responses": {
    "default": {"description": "err", "schema": {"$ref": "ExampleTypes.json#/definitions/Err"}},
    "200": {"description": "ok", "schema": {"$ref": "exampleModels/common.json#/definitions/Thing"}}
  }}}}
}`,
		"/api/ExampleTypes.json":         `{"definitions": {"Err": {"type": "object"}}}`,
		"/api/exampleModels/common.json": `{"definitions": {"Thing": {"type": "string"}}}`,
	}

	res, err := resolveMemory(t, files, "/api/root.json")
	require.NoError(t, err)

	assert.NotContains(t, string(res.Data), "ExampleTypes.json")
	assert.NotContains(t, string(res.Data), "exampleModels")
	out := decodeOutput(t, res.Data)
	assert.Equal(t, "object", dig(t, out, "definitions", "Err", "type"))
	assert.Equal(t, "string", dig(t, out, "definitions", "Thing", "type"))
	assert.Equal(t, 2, res.Stats.EntitiesInlined)
}

func TestResolve_BackReferenceToRootUsesLoadedRoot(t *testing.T) {
	rootText := `{
  "definitions": {
    "R": {"type": "object", "description": "in memory"},
    "Holder": {"properties": {"c": {"$ref": "c.json#/definitions/C"}}}
  }
}`
	files := map[string]string{
		"/api/root.json": `{"definitions": {"R": {"description": "stale on disk"}}}`,
		"/api/c.json":    `{"definitions": {"C": {"properties": {"r": {"$ref": "./root.json#/definitions/R"}}}}}`,
	}
	fs := &countingFS{Memory: filesystem.NewMemory(files)}
	r := New()
	r.FileSystem = fs

	res, err := r.ResolveBytes("/api/./root.json", []byte(rootText))
	require.NoError(t, err)

	assert.Equal(t, []string{"/api/c.json"}, fs.reads)
	assert.Equal(t, []string{"/api/root.json", "/api/c.json"}, res.Documents)
	assert.Equal(t, 1, res.Stats.DocumentsLoaded)
	out := decodeOutput(t, res.Data)
	assert.Equal(t, "in memory", dig(t, out, "definitions", "R", "description"))
	assert.Equal(t, "#/definitions/R", dig(t, out, "definitions", "C", "properties", "r", "$ref"))
}

func TestResolve_DeeperSegmentsResolveWholeEntity(t *testing.T) {
	files := map[string]string{
		"/specs/root.json":   `{"definitions": {"Named": {"properties": {"name": {"$ref": "models.json#/definitions/Pet/properties/name"}}}}}`,
		"/specs/models.json": `{"definitions": {"Pet": {"properties": {"name": {"type": "string"}}}}}`,
	}

	res, err := resolveMemory(t, files, "/specs/root.json")
	require.NoError(t, err)

	out := decodeOutput(t, res.Data)
	assert.Equal(t, "#/definitions/Pet/properties/name", dig(t, out, "definitions", "Named", "properties", "name", "$ref"))
	assert.Equal(t, "string", dig(t, out, "definitions", "Pet", "properties", "name", "type"))
}

func TestResolve_EntityAlreadyInRootIsNotReplaced(t *testing.T) {
	files := map[string]string{
		"/specs/root.json": `{
  "paths": {"/a": {"get": {"responses": {"default": {"description": "err", "schema": {"$ref": "common.json#/definitions/Error"}}}}}},
  "definitions": {"Error": {"type": "string"}}
}`,
		"/specs/common.json": `{"definitions": {"Error": {"type": "object"}}}`,
	}

	res, err := resolveMemory(t, files, "/specs/root.json")
	require.NoError(t, err)

	out := decodeOutput(t, res.Data)
	assert.Equal(t, "string", dig(t, out, "definitions", "Error", "type"))
	assert.Equal(t, 1, res.Stats.RefsRewritten)
	assert.Equal(t, 0, res.Stats.EntitiesInlined)
}

func TestResolve_AllCategories(t *testing.T) {
	files := map[string]string{
		"/specs/root.json": `{
  "swagger": "2.0",
  "paths": {
    "/pets": {
      "get": {
        "parameters": [{"$ref": "common.json#/parameters/limit"}],
        "responses": {"default": {"$ref": "common.json#/responses/Error"}},
        "security": [{"key": []}],
        "x-auth": {"$ref": "common.json#/securityDefinitions/key"}
      }
    }
  },
  "definitions": null
}`,
		"/specs/common.json": `{
  "parameters": {"limit": {"name": "limit", "in": "query", "type": "integer"}},
  "responses": {"Error": {"description": "error", "schema": {"$ref": "#/definitions/Error"}}},
  "definitions": {"Error": {"type": "object"}},
  "securityDefinitions": {"key": {"type": "apiKey", "name": "X-Key", "in": "header"}}
}`,
	}

	res, err := resolveMemory(t, files, "/specs/root.json")
	require.NoError(t, err)

	out := decodeOutput(t, res.Data)
	assert.Equal(t, "limit", dig(t, out, "parameters", "limit", "name"))
	assert.Equal(t, "#/definitions/Error", dig(t, out, "responses", "Error", "schema", "$ref"))
	assert.Equal(t, "object", dig(t, out, "definitions", "Error", "type"))
	assert.Equal(t, "apiKey", dig(t, out, "securityDefinitions", "key", "type"))
	assert.Equal(t, 4, res.Stats.EntitiesInlined)
}

func TestResolve_VisitKeys(t *testing.T) {
	files := map[string]string{
		"/specs/root.json": `{
  "paths": {"/a": {"get": {
    "parameters": [{"$ref": "common.json#/parameters/Limit"}],
    "responses": {"200": {"description": "ok", "schema": {"$ref": "common.json#/definitions/Limit"}}}
  }}}
}`,
		"/specs/common.json": `{
  "parameters": {"Limit": {"name": "limit", "in": "query", "type": "integer"}},
  "definitions": {"Limit": {"type": "integer"}}
}`,
	}

	t.Run("composite keys", func(t *testing.T) {
		res, err := resolveMemory(t, files, "/specs/root.json")
		require.NoError(t, err)
		out := decodeOutput(t, res.Data)
		assert.NotNil(t, dig(t, out, "parameters", "Limit"))
		assert.NotNil(t, dig(t, out, "definitions", "Limit"))
	})

	t.Run("name only keys", func(t *testing.T) {
		res, err := resolveMemory(t, files, "/specs/root.json", func(r *Resolver) {
			r.NameOnlyVisitKeys = true
		})
		require.NoError(t, err)
		out := decodeOutput(t, res.Data)
		assert.NotNil(t, dig(t, out, "parameters", "Limit"))
		assert.Empty(t, dig(t, out, "definitions"))
		assert.Equal(t, 1, res.Stats.EntitiesInlined)
	})
}

func TestResolve_OutputFormat(t *testing.T) {
	files := map[string]string{
		"/specs/root.json":   `{"swagger": "2.0", "definitions": {"Pet": {"properties": {"tags": {"$ref": "common.json#/definitions/Tags"}}}}}`,
		"/specs/common.json": `{"definitions": {"Tags": {"type": "array", "items": {"type": "string"}}}}`,
	}

	res, err := resolveMemory(t, files, "/specs/root.json", func(r *Resolver) {
		r.OutputFormat = SourceFormatYAML
	})
	require.NoError(t, err)

	assert.Equal(t, SourceFormatJSON, res.SourceFormat)
	assert.Equal(t, SourceFormatYAML, res.OutputFormat)
	assert.False(t, strings.HasPrefix(string(res.Data), "{"))

	out := decodeOutput(t, res.Data)
	assert.Equal(t, "2.0", out["swagger"])
	assert.Equal(t, "string", dig(t, out, "definitions", "Tags", "items", "type"))
}

func TestResolve_Errors(t *testing.T) {
	tests := []struct {
		name     string
		files    map[string]string
		sentinel error
		check    func(t *testing.T, err error)
	}{
		{
			name: "file not found",
			files: map[string]string{
				"/specs/root.json": `{"definitions": {"A": {"$ref": "nope.json#/definitions/X"}}}`,
			},
			sentinel: oaserrors.ErrFileNotFound,
			check: func(t *testing.T, err error) {
				assert.True(t, errors.Is(err, oaserrors.ErrIO))
				assert.Contains(t, err.Error(), "/specs/nope.json")
			},
		},
		{
			name: "malformed reference",
			files: map[string]string{
				"/specs/root.json":   `{"definitions": {"A": {"$ref": "common.json#/definitions"}}}`,
				"/specs/common.json": `{}`,
			},
			sentinel: oaserrors.ErrMalformedReference,
			check: func(t *testing.T, err error) {
				var refErr *oaserrors.ReferenceError
				require.ErrorAs(t, err, &refErr)
				assert.Equal(t, "/specs/root.json", refErr.Path)
			},
		},
		{
			name: "malformed reference inside external entity",
			files: map[string]string{
				"/specs/root.json":   `{"definitions": {"A": {"$ref": "common.json#/definitions/B"}}}`,
				"/specs/common.json": `{"definitions": {"B": {"properties": {"x": {"$ref": "#/definitions"}}}}}`,
			},
			sentinel: oaserrors.ErrMalformedReference,
			check: func(t *testing.T, err error) {
				var refErr *oaserrors.ReferenceError
				require.ErrorAs(t, err, &refErr)
				assert.Equal(t, "/specs/common.json", refErr.Path)
			},
		},
		{
			name: "missing entity",
			files: map[string]string{
				"/specs/root.json":   `{"definitions": {"A": {"$ref": "common.json#/definitions/Error"}}}`,
				"/specs/common.json": `{"definitions": {"Other": {}}}`,
			},
			sentinel: oaserrors.ErrMissingTarget,
		},
		{
			name: "external document is not a mapping",
			files: map[string]string{
				"/specs/root.json":   `{"definitions": {"A": {"$ref": "common.json#/definitions/Error"}}}`,
				"/specs/common.json": `[1, 2, 3]`,
			},
			sentinel: oaserrors.ErrParse,
		},
		{
			name: "root category is not a mapping",
			files: map[string]string{
				"/specs/root.json":   `{"paths": {"/a": {"$ref": "common.json#/definitions/Error"}}, "definitions": []}`,
				"/specs/common.json": `{"definitions": {"Error": {}}}`,
			},
			sentinel: oaserrors.ErrParse,
		},
		{
			name: "root document is invalid",
			files: map[string]string{
				"/specs/root.json": `{"swagger": `,
			},
			sentinel: oaserrors.ErrParse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := resolveMemory(t, tt.files, "/specs/root.json")
			require.Error(t, err)
			assert.Nil(t, res)
			assert.True(t, errors.Is(err, tt.sentinel), "got %v", err)
			assert.True(t, strings.HasPrefix(err.Error(), "resolver: "), "got %v", err)
			if tt.check != nil {
				tt.check(t, err)
			}
		})
	}
}

func TestResolve_DocumentLimit(t *testing.T) {
	files := map[string]string{
		"/specs/root.json": `{"definitions": {"A": {"$ref": "a.json#/definitions/A"}, "B": {"$ref": "b.json#/definitions/B"}}}`,
		"/specs/a.json":    `{"definitions": {"A": {}}}`,
		"/specs/b.json":    `{"definitions": {"B": {}}}`,
	}

	_, err := resolveMemory(t, files, "/specs/root.json", func(r *Resolver) {
		r.MaxCachedDocuments = 2
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, oaserrors.ErrResourceLimit))
}

func TestResolveFile_LocalFileSystem(t *testing.T) {
	tmpDir := t.TempDir()
	specDir := filepath.Join(tmpDir, "a", "b")
	require.NoError(t, os.MkdirAll(specDir, 0o755))

	rootFile := filepath.Join(specDir, "root.yaml")
	require.NoError(t, os.WriteFile(rootFile, []byte(`swagger: "2.0"
definitions:
  Wrapper:
    properties:
      error:
        $ref: ../common.yaml#/definitions/Error
`), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "a", "common.yaml"), []byte(`definitions:
  Error:
    type: object
`), 0o600))

	res, err := New().ResolveFile(rootFile)
	require.NoError(t, err)

	assert.Equal(t, []string{rootFile, filepath.Join(tmpDir, "a", "common.yaml")}, res.Documents)
	out := decodeOutput(t, res.Data)
	assert.Equal(t, "#/definitions/Error", dig(t, out, "definitions", "Wrapper", "properties", "error", "$ref"))
	assert.Equal(t, "object", dig(t, out, "definitions", "Error", "type"))
}

func TestResolveFile_HTTP(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/specs/root.json", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"swagger": "2.0", "definitions": {"Wrapper": {"properties": {"e": {"$ref": "shared/common.json#/definitions/Error"}}}}}`))
	})
	mux.HandleFunc("/specs/shared/common.json", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"definitions": {"Error": {"properties": {"detail": {"$ref": "detail.json#/definitions/Detail"}}}}}`))
	})
	mux.HandleFunc("/specs/shared/detail.json", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"definitions": {"Detail": {"type": "string"}}}`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	t.Run("enabled", func(t *testing.T) {
		r := New()
		r.FileSystem = &filesystem.Local{AllowHTTP: true}

		res, err := r.ResolveFile(server.URL + "/specs/root.json")
		require.NoError(t, err)

		assert.Equal(t, []string{
			server.URL + "/specs/root.json",
			server.URL + "/specs/shared/common.json",
			server.URL + "/specs/shared/detail.json",
		}, res.Documents)
		out := decodeOutput(t, res.Data)
		assert.Equal(t, "string", dig(t, out, "definitions", "Detail", "type"))
	})

	t.Run("disabled by default", func(t *testing.T) {
		_, err := New().ResolveFile(server.URL + "/specs/root.json")
		require.Error(t, err)
		assert.True(t, errors.Is(err, oaserrors.ErrIO))
	})
}

func TestResolve_Logging(t *testing.T) {
	var buf bytes.Buffer
	logger := NewSlogAdapter(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))

	files := map[string]string{
		"/specs/root.json":   `{"definitions": {"A": {"$ref": "common.json#/definitions/Error"}}}`,
		"/specs/common.json": `{"definitions": {"Error": {}}}`,
	}
	_, err := resolveMemory(t, files, "/specs/root.json", func(r *Resolver) {
		r.Logger = logger
	})
	require.NoError(t, err)

	logs := buf.String()
	assert.Contains(t, logs, "loaded external document")
	assert.Contains(t, logs, "rewrote external reference")
	assert.Contains(t, logs, "inlined entity")
	assert.Contains(t, logs, "resolved external references")
	assert.Contains(t, logs, "entities_inlined=1")
}

func TestResolve_OutputIsValidJSON(t *testing.T) {
	files := map[string]string{
		"/specs/root.json":   `{"definitions": {"A": {"$ref": "common.json#/definitions/B", "description": "<b>&amp;</b>"}}}`,
		"/specs/common.json": `{"definitions": {"B": {"type": "number", "maximum": 1.0e2, "enum": [1.50, -3]}}}`,
	}

	res, err := resolveMemory(t, files, "/specs/root.json")
	require.NoError(t, err)
	assert.True(t, json.Valid(res.Data))
	assert.Contains(t, string(res.Data), `"maximum": 1.0e2`)
	assert.Contains(t, string(res.Data), `"<b>&amp;</b>"`)
}
