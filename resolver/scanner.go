package resolver

import (
	"strings"

	"github.com/erraggy/oasresolve/internal/pathutil"
	"go.yaml.in/yaml/v4"
)

// exampleKeys are mapping keys whose subtrees hold sample payloads rather
// than schema, so any $ref found below them is data.
var exampleKeys = map[string]bool{
	"example":       true,
	"examples":      true,
	"x-ms-examples": true,
}

// PathSegment is one step from the scanned node down to a $ref.
type PathSegment struct {
	Key     string
	Index   int
	IsIndex bool
}

// RefLocation is a $ref found by FindRefs.
type RefLocation struct {
	// Value is the reference string as found
	Value string
	// Node is the scalar holding the reference; Set rewrites it in place
	Node *yaml.Node
	// Path leads from the scanned node to the scalar and ends with "$ref"
	Path []PathSegment
}

// Set rewrites the reference in place.
func (l *RefLocation) Set(value string) {
	l.Node.Value = value
	l.Value = value
}

// PathString renders the location as a JSON path such as
// "$.definitions.Pet.allOf[0].$ref".
func (l *RefLocation) PathString() string {
	b := pathutil.Get()
	defer pathutil.Put(b)
	for _, seg := range l.Path {
		if seg.IsIndex {
			b.PushIndex(seg.Index)
		} else {
			b.Push(seg.Key)
		}
	}
	return b.String()
}

// ScanOptions controls which references FindRefs reports.
type ScanOptions struct {
	// ExcludeExamples skips refs under example keys and refs into example files
	ExcludeExamples bool
	// ExternalOnly skips refs that are already local ("#/...")
	ExternalOnly bool
}

// FindRefs returns every $ref string under node in document order
// (depth-first, mapping keys in source order). Aliases are expanded at most
// once per scan.
func FindRefs(node *yaml.Node, opts ScanOptions) []RefLocation {
	s := &scanner{opts: opts, expanded: make(map[*yaml.Node]bool)}
	s.walk(node)
	return s.found
}

// FindAllOfRefs returns the refs under node that sit directly in an allOf
// list, i.e. whose path ends in allOf/<index>/$ref.
func FindAllOfRefs(node *yaml.Node) []RefLocation {
	var out []RefLocation
	for _, loc := range FindRefs(node, ScanOptions{}) {
		n := len(loc.Path)
		if n < 3 {
			continue
		}
		if !loc.Path[n-2].IsIndex || loc.Path[n-3].IsIndex || loc.Path[n-3].Key != pathutil.AllOfKey {
			continue
		}
		out = append(out, loc)
	}
	return out
}

type scanner struct {
	opts     ScanOptions
	expanded map[*yaml.Node]bool
	path     []PathSegment
	found    []RefLocation
}

func (s *scanner) walk(n *yaml.Node) {
	if n == nil {
		return
	}
	switch n.Kind {
	case yaml.DocumentNode:
		for _, c := range n.Content {
			s.walk(c)
		}
	case yaml.AliasNode:
		if n.Alias == nil || s.expanded[n.Alias] {
			return
		}
		s.expanded[n.Alias] = true
		s.walk(n.Alias)
	case yaml.SequenceNode:
		for i, c := range n.Content {
			s.path = append(s.path, PathSegment{Index: i, IsIndex: true})
			s.walk(c)
			s.path = s.path[:len(s.path)-1]
		}
	case yaml.MappingNode:
		for i := 0; i+1 < len(n.Content); i += 2 {
			key, val := n.Content[i].Value, n.Content[i+1]
			if s.opts.ExcludeExamples && exampleKeys[key] {
				continue
			}
			s.path = append(s.path, PathSegment{Key: key})
			if key == pathutil.RefKey {
				s.visitRef(resolveAlias(val))
			} else {
				s.walk(val)
			}
			s.path = s.path[:len(s.path)-1]
		}
	}
}

func (s *scanner) visitRef(n *yaml.Node) {
	// A "$ref" key whose value is not a string is an ordinary property
	// (e.g. a schema property literally named "$ref").
	if n == nil || n.Kind != yaml.ScalarNode || n.ShortTag() != "!!str" {
		s.walk(n)
		return
	}
	if s.opts.ExternalOnly && strings.HasPrefix(n.Value, pathutil.FragmentMarker) {
		return
	}
	if s.opts.ExcludeExamples && isExampleFileRef(n.Value) {
		return
	}
	path := make([]PathSegment, len(s.path))
	copy(path, s.path)
	s.found = append(s.found, RefLocation{Value: n.Value, Node: n, Path: path})
}

// isExampleFileRef reports whether the file part of ref lives under an
// "example" or "examples" directory (e.g. "./examples/Pet_Get.json"). The
// file name itself is not considered, so "ExampleTypes.json" is schema.
func isExampleFileRef(ref string) bool {
	file, _, _ := strings.Cut(ref, pathutil.FragmentMarker)
	if file == "" {
		return false
	}
	if _, rest, ok := strings.Cut(file, "://"); ok {
		// the host is not a path segment
		_, file, ok = strings.Cut(rest, "/")
		if !ok {
			return false
		}
	}
	segments := strings.FieldsFunc(file, func(r rune) bool { return r == '/' || r == '\\' })
	if len(segments) == 0 {
		return false
	}
	for _, seg := range segments[:len(segments)-1] {
		if seg == "example" || seg == "examples" {
			return true
		}
	}
	return false
}
