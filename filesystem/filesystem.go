package filesystem

import (
	"net/url"
	"path"
	"strings"
)

// FileSystem is the collaborator interface used to load external documents.
type FileSystem interface {
	// ReadAllText returns the full text at path.
	ReadAllText(path string) (string, error)

	// IsCompletePath reports whether path is an absolute URI or a rooted path.
	IsCompletePath(path string) bool

	// GetParentDir returns the directory containing path.
	GetParentDir(path string) string

	// MakePathRooted roots relativePath against baseDir.
	MakePathRooted(baseDir, relativePath string) string
}

// IsURL reports whether p is an http or https URL.
func IsURL(p string) bool {
	return strings.HasPrefix(p, "http://") || strings.HasPrefix(p, "https://")
}

// urlParentDir returns the directory of a URL path with a trailing slash, so
// the result can be used as a base for relative resolution.
func urlParentDir(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	u.RawQuery = ""
	u.Fragment = ""
	dir := path.Dir(u.Path)
	if !strings.HasSuffix(dir, "/") {
		dir += "/"
	}
	u.Path = dir
	return u.String()
}

// urlJoin resolves rel against a URL directory.
func urlJoin(baseDir, rel string) string {
	base, err := url.Parse(baseDir)
	if err != nil {
		return baseDir + rel
	}
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}
	ref, err := url.Parse(rel)
	if err != nil {
		return base.String() + rel
	}
	return base.ResolveReference(ref).String()
}
