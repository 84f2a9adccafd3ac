package resolver

import (
	"os"
	"strings"

	"github.com/erraggy/oasresolve/filesystem"
	"github.com/erraggy/oasresolve/oaserrors"
)

const (
	// DefaultMaxCachedDocuments is the maximum number of documents, root
	// included, one run may load
	DefaultMaxCachedDocuments = 100

	// DefaultMaxFileSize is the maximum size (in bytes) of any single document
	DefaultMaxFileSize = 10 * 1024 * 1024 // 10MB
)

// documentCache loads each distinct path at most once per run.
type documentCache struct {
	fs           filesystem.FileSystem
	docs         map[string]*document
	order        []string // load order, for reporting
	maxDocuments int
	maxFileSize  int64
	log          Logger
}

func newDocumentCache(fs filesystem.FileSystem, maxDocuments int, maxFileSize int64, log Logger) *documentCache {
	if maxDocuments <= 0 {
		maxDocuments = DefaultMaxCachedDocuments
	}
	if maxFileSize <= 0 {
		maxFileSize = DefaultMaxFileSize
	}
	return &documentCache{
		fs:           fs,
		docs:         make(map[string]*document),
		maxDocuments: maxDocuments,
		maxFileSize:  maxFileSize,
		log:          log,
	}
}

// put parses data and stores it under path, replacing nothing: the first
// document stored for a path wins.
func (c *documentCache) put(path string, data []byte) (*document, error) {
	if doc, ok := c.docs[path]; ok {
		return doc, nil
	}
	if len(c.docs) >= c.maxDocuments {
		return nil, &oaserrors.ResourceLimitError{
			ResourceType: "cached_documents",
			Limit:        int64(c.maxDocuments),
			Actual:       int64(len(c.docs) + 1),
			Message:      "too many documents referenced while loading " + path,
		}
	}
	if int64(len(data)) > c.maxFileSize {
		return nil, &oaserrors.ResourceLimitError{
			ResourceType: "file_size",
			Limit:        c.maxFileSize,
			Actual:       int64(len(data)),
			Message:      path,
		}
	}
	doc, err := parseDocument(path, data)
	if err != nil {
		return nil, err
	}
	c.docs[path] = doc
	c.order = append(c.order, path)
	return doc, nil
}

func (c *documentCache) get(path string) (*document, bool) {
	doc, ok := c.docs[path]
	return doc, ok
}

// getOrLoad returns the cached document for path, reading it through the
// file system on first use. Read errors are returned unchanged.
func (c *documentCache) getOrLoad(path string) (*document, error) {
	if doc, ok := c.docs[path]; ok {
		return doc, nil
	}
	text, err := c.fs.ReadAllText(path)
	if err != nil {
		return nil, err
	}
	doc, err := c.put(path, []byte(text))
	if err != nil {
		return nil, err
	}
	c.log.Debug("loaded external document", "path", path, "format", string(doc.format), "bytes", len(text))
	return doc, nil
}

// rootPath resolves raw against the directory holding currentFilePath unless
// raw is already an absolute URI or a rooted path.
func (c *documentCache) rootPath(currentFilePath, raw string) string {
	if c.fs.IsCompletePath(raw) {
		return raw
	}
	return c.fs.MakePathRooted(c.fs.GetParentDir(currentFilePath), raw)
}

// canonical spells p the way rootPath spells references to it, so a
// document referring back to the root finds it in the cache.
func (c *documentCache) canonical(p string) string {
	if strings.HasPrefix(p, "file://") {
		return p
	}
	name := p
	seps := "/"
	if os.PathSeparator == '\\' {
		seps += `\`
	}
	if i := strings.LastIndexAny(p, seps); i >= 0 {
		name = p[i+1:]
	}
	if name == "" {
		return p
	}
	return c.fs.MakePathRooted(c.fs.GetParentDir(p), name)
}

// paths returns the cached paths in load order.
func (c *documentCache) paths() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}
