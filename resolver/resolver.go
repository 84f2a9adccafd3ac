package resolver

import (
	"errors"
	"fmt"
	"time"

	"github.com/erraggy/oasresolve/filesystem"
	"github.com/erraggy/oasresolve/internal/pathutil"
	"github.com/erraggy/oasresolve/oaserrors"
	"go.yaml.in/yaml/v4"
)

// entityCategories are the top-level mappings that hold named, referenceable
// entities in a Swagger 2.0 document.
var entityCategories = map[string]bool{
	pathutil.CategoryDefinitions:         true,
	pathutil.CategoryParameters:          true,
	pathutil.CategoryResponses:           true,
	pathutil.CategorySecurityDefinitions: true,
}

// Resolver inlines entities referenced from other documents into a root
// document. A Resolver holds configuration only and may be shared; each
// call runs with its own document cache and visited set.
type Resolver struct {
	// FileSystem loads external documents and roots relative paths.
	// If nil, filesystem.NewLocal() is used (HTTP disabled).
	FileSystem filesystem.FileSystem
	// Logger is the structured logger for debug output
	// If nil, logging is disabled (default)
	Logger Logger
	// NameOnlyVisitKeys keys the visited set by entity name alone instead of
	// (category, name). Two entities sharing a name in different categories
	// then short-circuit each other, matching older tooling.
	NameOnlyVisitKeys bool

	// Resource limits (0 means use default)

	// MaxCachedDocuments is the maximum number of documents loaded per run.
	// Default: 100
	MaxCachedDocuments int
	// MaxFileSize is the maximum size in bytes of any one document.
	// Default: 10MB
	MaxFileSize int64

	// OutputFormat selects the output syntax. SourceFormatUnknown or empty
	// keeps the root document's format.
	OutputFormat SourceFormat
}

// New creates a new Resolver instance with default settings
func New() *Resolver {
	return &Resolver{}
}

// Stats counts the work done by one resolution run.
type Stats struct {
	// DocumentsLoaded is the number of external documents read
	DocumentsLoaded int
	// RefsRewritten is the number of external $refs rewritten to local form
	RefsRewritten int
	// EntitiesInlined is the number of entities copied into the root
	// because something referenced them
	EntitiesInlined int
	// SubtypesInlined is the number of entities copied into the root only
	// because they extend (allOf) an inlined entity
	SubtypesInlined int
}

// Result is the outcome of resolving one root document.
type Result struct {
	// SourcePath is the root document's path or source name
	SourcePath string
	// SourceFormat is the format of the root document
	SourceFormat SourceFormat
	// OutputFormat is the format Data is written in
	OutputFormat SourceFormat
	// Data is the self-contained document
	Data []byte
	// Documents lists every document read during the run, root first
	Documents []string
	// Stats counts the work done
	Stats Stats
	// ResolveTime is the time taken by the run
	ResolveTime time.Duration
}

// Resolve returns rootText with every entity it needs from other documents
// inlined and every cross-document $ref rewritten to a local one.
// rootPath identifies the root document; relative references are rooted
// against its directory.
func (r *Resolver) Resolve(rootPath, rootText string) (string, error) {
	res, err := r.ResolveBytes(rootPath, []byte(rootText))
	if err != nil {
		return "", err
	}
	return string(res.Data), nil
}

// ResolveFile reads the root document through the file system and resolves it.
func (r *Resolver) ResolveFile(path string) (*Result, error) {
	text, err := r.fileSystem().ReadAllText(path)
	if err != nil {
		return nil, fmt.Errorf("resolver: reading %s: %w", path, err)
	}
	return r.ResolveBytes(path, []byte(text))
}

// ResolveBytes resolves the root document held in data.
func (r *Resolver) ResolveBytes(rootPath string, data []byte) (*Result, error) {
	start := time.Now()
	log := r.log()

	cache := newDocumentCache(r.fileSystem(), r.MaxCachedDocuments, r.MaxFileSize, log)
	docPath := cache.canonical(rootPath)
	root, err := cache.put(docPath, data)
	if err != nil {
		return nil, fmt.Errorf("resolver: %w", err)
	}

	rn := &run{
		cache:      cache,
		visited:    make(map[visitKey]bool),
		sourcePath: docPath,
		source:     root,
		nameOnly:   r.NameOnlyVisitKeys,
		log:        log,
	}
	if err := rn.completeEntity(docPath, "", ""); err != nil {
		return nil, fmt.Errorf("resolver: resolving %s: %w", rootPath, err)
	}
	rn.stats.DocumentsLoaded = len(cache.docs) - 1

	outFormat := r.OutputFormat
	if outFormat == "" || outFormat == SourceFormatUnknown {
		outFormat = root.format
	}
	out, err := encodeNode(root.node, outFormat, root.format)
	if err != nil {
		return nil, fmt.Errorf("resolver: writing %s: %w", rootPath, err)
	}

	elapsed := time.Since(start)
	log.Info("resolved external references",
		"path", rootPath,
		"documents_loaded", rn.stats.DocumentsLoaded,
		"refs_rewritten", rn.stats.RefsRewritten,
		"entities_inlined", rn.stats.EntitiesInlined,
		"subtypes_inlined", rn.stats.SubtypesInlined,
		"elapsed", elapsed,
	)

	return &Result{
		SourcePath:   rootPath,
		SourceFormat: root.format,
		OutputFormat: outFormat,
		Data:         out,
		Documents:    cache.paths(),
		Stats:        rn.stats,
		ResolveTime:  elapsed,
	}, nil
}

// log returns the configured logger, or a no-op logger if none is set.
func (r *Resolver) log() Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return NopLogger{}
}

func (r *Resolver) fileSystem() filesystem.FileSystem {
	if r.FileSystem != nil {
		return r.FileSystem
	}
	return filesystem.NewLocal()
}

// visitKey identifies an entity in the visited set. category is blank when
// entities are tracked by name only.
type visitKey struct {
	category string
	name     string
}

// run is the state of one resolution. Entities are always written into
// source, never into an external document.
type run struct {
	cache      *documentCache
	visited    map[visitKey]bool
	sourcePath string
	source     *document
	nameOnly   bool
	stats      Stats
	log        Logger
}

func (rn *run) key(category, name string) visitKey {
	if rn.nameOnly {
		return visitKey{name: name}
	}
	return visitKey{category: category, name: name}
}

// completeEntity makes everything referenced from currentPath present in the
// root. With no entity it follows the document's cross-file references; with
// an entity it follows every reference inside current[category][name] and
// then pulls in the entity's subtypes.
func (rn *run) completeEntity(currentPath, category, name string) error {
	current, ok := rn.cache.get(currentPath)
	if !ok {
		return fmt.Errorf("document %s was not loaded", currentPath)
	}

	var refs []RefLocation
	if name == "" {
		refs = FindRefs(current.root, ScanOptions{ExcludeExamples: true, ExternalOnly: true})
	} else {
		entity := current.entity(category, name)
		if entity == nil {
			return &oaserrors.ReferenceError{
				Ref:       pathutil.EntityRef(category, name),
				Path:      currentPath,
				IsMissing: true,
			}
		}
		refs = FindRefs(entity, ScanOptions{})
	}

	for i := range refs {
		if err := rn.follow(currentPath, &refs[i]); err != nil {
			return err
		}
	}

	if name == "" {
		return nil
	}
	return rn.inlineSubtypes(current, category, name)
}

// follow handles one reference found in currentPath: external references are
// rewritten to local form and their file loaded, then the target entity is
// inlined into the root.
func (rn *run) follow(currentPath string, loc *RefLocation) error {
	ptr, err := ParsePointer(loc.Value)
	if err != nil {
		var refErr *oaserrors.ReferenceError
		if errors.As(err, &refErr) {
			refErr.Path = currentPath
		}
		return err
	}

	targetPath := currentPath
	if ptr.IsExternal() {
		loc.Set(ptr.Local())
		rn.stats.RefsRewritten++
		targetPath = rn.cache.rootPath(currentPath, ptr.FilePath)
		rn.log.Debug("rewrote external reference",
			"ref", ptr.Raw,
			"local", ptr.Local(),
			"document", currentPath,
			"location", loc.PathString(),
			"target", targetPath,
		)
		if _, err := rn.cache.getOrLoad(targetPath); err != nil {
			return fmt.Errorf("loading %s referenced from %s: %w", targetPath, currentPath, err)
		}
	}

	return rn.inline(ptr, targetPath, currentPath)
}

// inline ensures the entity ptr names is present in the root, completing it
// in targetPath first so the copy is already self-contained.
func (rn *run) inline(ptr Pointer, targetPath, fromPath string) error {
	rootCategory, err := rn.ensureCategory(ptr.Category)
	if err != nil {
		return err
	}
	if mappingValue(rootCategory, ptr.Name) != nil {
		return nil
	}
	key := rn.key(ptr.Category, ptr.Name)
	if rn.visited[key] {
		return nil
	}

	target, _ := rn.cache.get(targetPath)
	if target.entity(ptr.Category, ptr.Name) == nil {
		return &oaserrors.ReferenceError{
			Ref:       ptr.Raw,
			RefType:   ptr.refType(),
			Path:      fromPath,
			IsMissing: true,
			Message:   fmt.Sprintf("%s has no entity at %s", targetPath, ptr.EntityRef()),
		}
	}

	rn.visited[key] = true
	if err := rn.completeEntity(targetPath, ptr.Category, ptr.Name); err != nil {
		return err
	}
	copied, err := rn.copyToRoot(targetPath, ptr.Category, ptr.Name)
	if err != nil {
		return err
	}
	if copied {
		rn.stats.EntitiesInlined++
		rn.log.Debug("inlined entity", "category", ptr.Category, "name", ptr.Name, "from", targetPath)
	}
	return nil
}

// inlineSubtypes pulls in every entity of current that lists
// #/category/name in its allOf, even when nothing references the subtype
// directly.
func (rn *run) inlineSubtypes(current *document, category, name string) error {
	for _, loc := range FindAllOfRefs(current.root) {
		ptr, err := ParsePointer(loc.Value)
		if err != nil {
			rn.log.Warn("skipping malformed allOf reference",
				"ref", loc.Value, "document", current.path, "location", loc.PathString())
			continue
		}
		if ptr.Category != category || ptr.Name != name {
			continue
		}
		if ptr.IsExternal() && rn.cache.rootPath(current.path, ptr.FilePath) != current.path {
			continue
		}

		// definitions.<Subtype>.allOf[i].$ref names the subtype
		if loc.Path[0].IsIndex || loc.Path[1].IsIndex {
			continue
		}
		subCategory, subName := loc.Path[0].Key, loc.Path[1].Key
		if !entityCategories[subCategory] || (subCategory == category && subName == name) {
			continue
		}
		key := rn.key(subCategory, subName)
		if rn.visited[key] || rn.source.entity(subCategory, subName) != nil {
			continue
		}

		rn.visited[key] = true
		rn.log.Debug("found subtype", "subtype", pathutil.EntityRef(subCategory, subName),
			"supertype", pathutil.EntityRef(category, name), "document", current.path)
		if err := rn.completeEntity(current.path, subCategory, subName); err != nil {
			return err
		}
		copied, err := rn.copyToRoot(current.path, subCategory, subName)
		if err != nil {
			return err
		}
		if copied {
			rn.stats.SubtypesInlined++
			rn.log.Debug("inlined subtype", "category", subCategory, "name", subName, "from", current.path)
		}
	}
	return nil
}

// copyToRoot deep-copies fromPath's entity into the root unless the root
// already has one by that name. Entities of the root itself are never copied.
func (rn *run) copyToRoot(fromPath, category, name string) (bool, error) {
	if fromPath == rn.sourcePath {
		return false, nil
	}
	doc, ok := rn.cache.get(fromPath)
	if !ok {
		return false, nil
	}
	src := doc.entity(category, name)
	if src == nil {
		return false, nil
	}
	rootCategory, err := rn.ensureCategory(category)
	if err != nil {
		return false, err
	}
	if mappingValue(rootCategory, name) != nil {
		return false, nil
	}
	setMappingValue(rootCategory, name, deepCopyNode(src))
	return true, nil
}

// ensureCategory returns root[category], adding an empty mapping when the
// key is absent or null.
func (rn *run) ensureCategory(category string) (*yaml.Node, error) {
	existing := mappingValue(rn.source.root, category)
	if existing != nil && existing.Kind == yaml.MappingNode {
		return existing, nil
	}
	if existing != nil && !(existing.Kind == yaml.ScalarNode && existing.ShortTag() == "!!null") {
		return nil, &oaserrors.ParseError{
			Path:    rn.sourcePath,
			Line:    existing.Line,
			Column:  existing.Column,
			Message: fmt.Sprintf("%q must be a mapping, got %s", category, kindName(existing.Kind)),
		}
	}
	cat := newMappingNode()
	setMappingValue(rn.source.root, category, cat)
	return cat, nil
}
