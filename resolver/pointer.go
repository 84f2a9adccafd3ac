package resolver

import (
	"strings"

	"github.com/erraggy/oasresolve/internal/pathutil"
	"github.com/erraggy/oasresolve/oaserrors"
)

// Pointer is a parsed $ref value.
//
// Only Category and Name decide which entity a reference resolves to; deeper
// fragment segments address a part of that entity and are kept in Fragment.
type Pointer struct {
	// Raw is the reference exactly as written
	Raw string
	// FilePath is the file part of an external reference, empty for local ones
	FilePath string
	// Fragment is the in-document part, always starting with "#"
	Fragment string
	// Category is the first fragment segment, unescaped (e.g. "definitions")
	Category string
	// Name is the second fragment segment, unescaped (e.g. "Pet")
	Name string
}

// ParsePointer parses a reference of the form "#/category/name[/...]" or
// "file#/category/name[/...]".
func ParsePointer(ref string) (Pointer, error) {
	var parts []string
	for _, p := range strings.Split(ref, pathutil.FragmentMarker) {
		if p != "" {
			parts = append(parts, p)
		}
	}

	ptr := Pointer{Raw: ref}
	switch {
	case len(parts) == 2:
		ptr.FilePath = parts[0]
		ptr.Fragment = pathutil.FragmentMarker + parts[1]
	case len(parts) == 1 && strings.HasPrefix(ref, pathutil.FragmentMarker):
		ptr.Fragment = pathutil.FragmentMarker + parts[0]
	default:
		return Pointer{}, &oaserrors.ReferenceError{
			Ref:         ref,
			IsMalformed: true,
			Message:     "expected \"#/<category>/<name>\" optionally prefixed by a file path",
		}
	}

	segments := pathutil.SplitSegments(ptr.Fragment)
	if len(segments) < 2 {
		return Pointer{}, &oaserrors.ReferenceError{
			Ref:         ref,
			RefType:     ptr.refType(),
			IsMalformed: true,
			Message:     "fragment must name a category and an entity",
		}
	}
	ptr.Category = pathutil.UnescapeToken(segments[0])
	ptr.Name = pathutil.UnescapeToken(segments[1])
	return ptr, nil
}

// IsExternal reports whether the pointer names another file.
func (p Pointer) IsExternal() bool {
	return p.FilePath != ""
}

// Local returns the fragment-only form of the reference.
func (p Pointer) Local() string {
	return p.Fragment
}

// EntityRef returns "#/<category>/<name>" for the entity the pointer resolves to.
func (p Pointer) EntityRef() string {
	return pathutil.EntityRef(p.Category, p.Name)
}

func (p Pointer) refType() string {
	if p.IsExternal() {
		return "file"
	}
	return "local"
}
