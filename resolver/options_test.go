package resolver

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/erraggy/oasresolve/filesystem"
	"github.com/erraggy/oasresolve/oaserrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveWithOptions_InputSources(t *testing.T) {
	tmpDir := t.TempDir()
	rootFile := filepath.Join(tmpDir, "api.json")
	require.NoError(t, os.WriteFile(rootFile, []byte(`{"definitions": {"A": {"$ref": "common.json#/definitions/B"}}}`), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "common.json"), []byte(`{"definitions": {"B": {"type": "string"}}}`), 0o600))

	t.Run("file path", func(t *testing.T) {
		res, err := ResolveWithOptions(WithFilePath(rootFile))
		require.NoError(t, err)
		assert.Equal(t, rootFile, res.SourcePath)
		assert.Equal(t, 1, res.Stats.EntitiesInlined)
	})

	t.Run("reader with source name", func(t *testing.T) {
		text, err := os.ReadFile(rootFile)
		require.NoError(t, err)
		res, err := ResolveWithOptions(
			WithReader(strings.NewReader(string(text))),
			WithSourceName(rootFile),
		)
		require.NoError(t, err)
		assert.Equal(t, rootFile, res.SourcePath)
		assert.Equal(t, 1, res.Stats.EntitiesInlined)
	})

	t.Run("bytes with memory file system", func(t *testing.T) {
		fs := filesystem.NewMemory(map[string]string{
			"/mem/common.json": `{"definitions": {"B": {"type": "integer"}}}`,
		})
		res, err := ResolveWithOptions(
			WithBytes([]byte(`{"definitions": {"A": {"$ref": "common.json#/definitions/B"}}}`)),
			WithSourceName("/mem/api.json"),
			WithFileSystem(fs),
			WithOutputFormat(SourceFormatYAML),
		)
		require.NoError(t, err)
		assert.Equal(t, SourceFormatYAML, res.OutputFormat)
		assert.Contains(t, string(res.Data), "type: integer")
	})
}

func TestResolveWithOptions_Validation(t *testing.T) {
	tests := []struct {
		name string
		opts []Option
	}{
		{name: "no input", opts: nil},
		{name: "two inputs", opts: []Option{WithFilePath("a.json"), WithBytes([]byte("{}"))}},
		{name: "bad output format", opts: []Option{WithBytes([]byte("{}")), WithOutputFormat("xml")}},
		{name: "negative document limit", opts: []Option{WithBytes([]byte("{}")), WithMaxCachedDocuments(-1)}},
		{name: "negative file size", opts: []Option{WithBytes([]byte("{}")), WithMaxFileSize(-1)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ResolveWithOptions(tt.opts...)
			require.Error(t, err)
			assert.True(t, errors.Is(err, oaserrors.ErrConfig), "got %v", err)
			assert.Contains(t, err.Error(), "resolver: invalid options")
		})
	}
}

func TestResolveWithOptions_Limits(t *testing.T) {
	fs := filesystem.NewMemory(map[string]string{
		"/mem/common.json": `{"definitions": {"B": {"description": "` + strings.Repeat("x", 256) + `"}}}`,
	})

	_, err := ResolveWithOptions(
		WithBytes([]byte(`{"definitions": {"A": {"$ref": "common.json#/definitions/B"}}}`)),
		WithSourceName("/mem/api.json"),
		WithFileSystem(fs),
		WithMaxFileSize(128),
	)
	require.Error(t, err)
	assert.True(t, errors.Is(err, oaserrors.ErrResourceLimit))
}

func TestResolveWithOptions_HTTPRefsDisabled(t *testing.T) {
	_, err := ResolveWithOptions(
		WithBytes([]byte(`{"definitions": {"A": {"$ref": "http://127.0.0.1:1/common.json#/definitions/B"}}}`)),
		WithResolveHTTPRefs(false),
	)
	require.Error(t, err)
	assert.True(t, errors.Is(err, oaserrors.ErrIO))
	assert.Contains(t, err.Error(), "HTTP references are disabled")
}
