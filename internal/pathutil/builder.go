package pathutil

import (
	"strconv"
	"strings"
)

// PathBuilder provides efficient incremental path construction.
// Uses push/pop semantics to avoid allocations during traversal.
// The full string is only materialized when String() is called.
type PathBuilder struct {
	segments []string
	length   int // Pre-calculated length for String() allocation
}

// Push adds a key segment to the path.
// Keys that are not plain identifiers are rendered in bracket notation: ['a.b'].
func (p *PathBuilder) Push(segment string) {
	if needsBrackets(segment) {
		segment = "['" + strings.ReplaceAll(segment, "'", `\'`) + "']"
	}
	p.segments = append(p.segments, segment)
	p.length += len(segment)
	if segment[0] != '[' {
		p.length++ // For dot separator
	}
}

// PushIndex adds an array index segment: "[0]", "[1]", etc.
func (p *PathBuilder) PushIndex(i int) {
	seg := "[" + strconv.Itoa(i) + "]"
	p.segments = append(p.segments, seg)
	p.length += len(seg) // No dot separator for brackets
}

// Pop removes the last segment.
func (p *PathBuilder) Pop() {
	if len(p.segments) == 0 {
		return
	}
	last := p.segments[len(p.segments)-1]
	p.segments = p.segments[:len(p.segments)-1]
	p.length -= len(last)
	if last[0] != '[' {
		p.length--
	}
}

// Reset clears the builder for reuse.
func (p *PathBuilder) Reset() {
	p.segments = p.segments[:0]
	p.length = 0
}

// Len returns the number of segments.
func (p *PathBuilder) Len() int {
	return len(p.segments)
}

// String materializes the full path rooted at "$".
func (p *PathBuilder) String() string {
	var b strings.Builder
	b.Grow(p.length + 1)
	b.WriteByte('$')
	for _, seg := range p.segments {
		if seg[0] != '[' {
			b.WriteByte('.')
		}
		b.WriteString(seg)
	}
	return b.String()
}

// needsBrackets reports whether a key cannot be written in dot notation.
func needsBrackets(key string) bool {
	if key == "" {
		return true
	}
	return strings.ContainsAny(key, ".[]' /~")
}
