package resolver

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v4"
)

// SourceFormat represents the format of a document
type SourceFormat string

const (
	// SourceFormatYAML indicates the document is in YAML format
	SourceFormatYAML SourceFormat = "yaml"
	// SourceFormatJSON indicates the document is in JSON format
	SourceFormatJSON SourceFormat = "json"
	// SourceFormatUnknown indicates the format could not be determined
	SourceFormatUnknown SourceFormat = "unknown"
)

// ParseSourceFormat maps a user-supplied format name to a SourceFormat.
// An empty name yields SourceFormatUnknown, which means "same as the source".
func ParseSourceFormat(name string) (SourceFormat, error) {
	switch strings.ToLower(name) {
	case "":
		return SourceFormatUnknown, nil
	case "json":
		return SourceFormatJSON, nil
	case "yaml", "yml":
		return SourceFormatYAML, nil
	default:
		return SourceFormatUnknown, fmt.Errorf("invalid format %q: must be json or yaml", name)
	}
}

// Extension returns the file extension for the format, with a leading dot.
func (f SourceFormat) Extension() string {
	if f == SourceFormatYAML {
		return ".yaml"
	}
	return ".json"
}

// detectFormatFromPath detects the source format from a file path
func detectFormatFromPath(path string) SourceFormat {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return SourceFormatJSON
	case ".yaml", ".yml":
		return SourceFormatYAML
	default:
		return SourceFormatUnknown
	}
}

// detectFormatFromContent attempts to detect the format from the content bytes
// JSON typically starts with '{' or '[', while YAML does not
func detectFormatFromContent(data []byte) SourceFormat {
	trimmed := bytes.TrimLeft(data, " \t\n\r\uFEFF")
	if len(trimmed) == 0 {
		return SourceFormatUnknown
	}
	if trimmed[0] == '{' || trimmed[0] == '[' {
		return SourceFormatJSON
	}
	return SourceFormatYAML
}

// detectFormat prefers the content, falling back to the path extension.
func detectFormat(path string, data []byte) SourceFormat {
	if f := detectFormatFromContent(data); f != SourceFormatUnknown {
		return f
	}
	if f := detectFormatFromPath(path); f != SourceFormatUnknown {
		return f
	}
	return SourceFormatJSON
}

// encodeNode serializes a node tree in the given format.
func encodeNode(node *yaml.Node, format SourceFormat, sourceFormat SourceFormat) ([]byte, error) {
	if format == SourceFormatYAML {
		return encodeYAML(node, sourceFormat == SourceFormatJSON)
	}
	return encodeJSON(node)
}

// encodeJSON writes the node as indented JSON, keeping mapping key order.
func encodeJSON(node *yaml.Node) ([]byte, error) {
	var compact bytes.Buffer
	if err := marshalNodeAsJSON(&compact, node, make(map[*yaml.Node]bool)); err != nil {
		return nil, err
	}
	var out bytes.Buffer
	if err := json.Indent(&out, compact.Bytes(), "", "  "); err != nil {
		return nil, fmt.Errorf("indenting JSON output: %w", err)
	}
	out.WriteByte('\n')
	return out.Bytes(), nil
}

// marshalNodeAsJSON writes a yaml.Node to a buffer as compact JSON.
// active guards against alias cycles.
func marshalNodeAsJSON(buf *bytes.Buffer, node *yaml.Node, active map[*yaml.Node]bool) error {
	if node == nil {
		buf.WriteString("null")
		return nil
	}

	switch node.Kind {
	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			buf.WriteString("null")
			return nil
		}
		return marshalNodeAsJSON(buf, node.Content[0], active)

	case yaml.MappingNode:
		buf.WriteByte('{')
		for i := 0; i+1 < len(node.Content); i += 2 {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSONString(buf, node.Content[i].Value); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := marshalNodeAsJSON(buf, node.Content[i+1], active); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
		return nil

	case yaml.SequenceNode:
		buf.WriteByte('[')
		for i, item := range node.Content {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := marshalNodeAsJSON(buf, item, active); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
		return nil

	case yaml.AliasNode:
		if active[node] {
			return fmt.Errorf("alias cycle at line %d cannot be written as JSON", node.Line)
		}
		active[node] = true
		defer delete(active, node)
		return marshalNodeAsJSON(buf, node.Alias, active)

	default:
		return writeJSONScalar(buf, node)
	}
}

// writeJSONScalar writes a scalar using its resolved YAML tag.
// Numbers that are already valid JSON are copied verbatim so the output keeps
// the source's spelling (1.0 stays 1.0).
func writeJSONScalar(buf *bytes.Buffer, node *yaml.Node) error {
	switch node.ShortTag() {
	case "!!null":
		buf.WriteString("null")
		return nil
	case "!!bool":
		var b bool
		if err := node.Decode(&b); err != nil {
			return fmt.Errorf("decoding boolean at line %d: %w", node.Line, err)
		}
		if b {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
		return nil
	case "!!int", "!!float":
		if isJSONNumber(node.Value) {
			buf.WriteString(node.Value)
			return nil
		}
		var v any
		if err := node.Decode(&v); err != nil {
			return fmt.Errorf("decoding number at line %d: %w", node.Line, err)
		}
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("number %q at line %d has no JSON form: %w", node.Value, node.Line, err)
		}
		buf.Write(data)
		return nil
	default:
		return writeJSONString(buf, node.Value)
	}
}

// writeJSONString writes s as a JSON string without HTML escaping.
func writeJSONString(buf *bytes.Buffer, s string) error {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return err
	}
	buf.Write(bytes.TrimSuffix(tmp.Bytes(), []byte("\n")))
	return nil
}

// isJSONNumber reports whether s is a number literal in JSON syntax.
func isJSONNumber(s string) bool {
	if s == "" {
		return false
	}
	if c := s[0]; c != '-' && (c < '0' || c > '9') {
		return false
	}
	var n json.Number
	return json.Unmarshal([]byte(s), &n) == nil
}

// encodeYAML writes the node as block-style YAML. When the source was JSON,
// flow and quoting styles inherited from the JSON syntax are cleared first.
func encodeYAML(node *yaml.Node, fromJSON bool) ([]byte, error) {
	if fromJSON {
		node = deepCopyNode(node)
		clearStyles(node)
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(node); err != nil {
		return nil, fmt.Errorf("encoding YAML: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encoding YAML: %w", err)
	}
	return buf.Bytes(), nil
}

func clearStyles(node *yaml.Node) {
	if node == nil {
		return
	}
	node.Style = 0
	for _, child := range node.Content {
		clearStyles(child)
	}
}
