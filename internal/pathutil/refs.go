package pathutil

import "strings"

// Fragment and path separators used by $ref strings.
const (
	FragmentMarker   = "#"
	SegmentSeparator = "/"
	RefKey           = "$ref"
	AllOfKey         = "allOf"
)

// OAS 2.0 entity categories.
const (
	CategoryDefinitions         = "definitions"
	CategoryParameters          = "parameters"
	CategoryResponses           = "responses"
	CategorySecurityDefinitions = "securityDefinitions"
)

// EntityRef builds "#/{category}/{name}", escaping both tokens per RFC 6901.
func EntityRef(category, name string) string {
	return FragmentMarker + SegmentSeparator + EscapeToken(category) + SegmentSeparator + EscapeToken(name)
}

// EscapeToken escapes a JSON Pointer token: ~ becomes ~0 and / becomes ~1.
func EscapeToken(token string) string {
	if !strings.ContainsAny(token, "~/") {
		return token
	}
	token = strings.ReplaceAll(token, "~", "~0")
	return strings.ReplaceAll(token, "/", "~1")
}

// UnescapeToken reverses EscapeToken.
// Per RFC 6901, ~1 represents / and ~0 represents ~
func UnescapeToken(token string) string {
	token = strings.ReplaceAll(token, "~1", "/")
	return strings.ReplaceAll(token, "~0", "~")
}

// SplitSegments splits a fragment such as "#/definitions/Pet/properties" into
// its non-empty path segments, without unescaping them.
func SplitSegments(fragment string) []string {
	fragment = strings.TrimPrefix(fragment, FragmentMarker)
	raw := strings.Split(fragment, SegmentSeparator)
	segments := raw[:0]
	for _, s := range raw {
		if s != "" {
			segments = append(segments, s)
		}
	}
	return segments
}
