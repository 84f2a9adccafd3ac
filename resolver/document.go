package resolver

import (
	"fmt"

	"github.com/erraggy/oasresolve/oaserrors"
	"go.yaml.in/yaml/v4"
)

// document is one parsed file held by the cache. root is always a mapping.
type document struct {
	path   string
	format SourceFormat
	node   *yaml.Node // DocumentNode wrapping root
	root   *yaml.Node
}

// parseDocument parses text into a document. The text must hold a single
// mapping at its top level.
func parseDocument(path string, data []byte) (*document, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, &oaserrors.ParseError{Path: path, Message: "invalid YAML/JSON", Cause: err}
	}
	if node.Kind != yaml.DocumentNode || len(node.Content) == 0 {
		return nil, &oaserrors.ParseError{Path: path, Message: "document is empty"}
	}
	root := resolveAlias(node.Content[0])
	if root.Kind != yaml.MappingNode {
		return nil, &oaserrors.ParseError{
			Path:    path,
			Line:    root.Line,
			Column:  root.Column,
			Message: fmt.Sprintf("top level must be a mapping, got %s", kindName(root.Kind)),
		}
	}
	return &document{
		path:   path,
		format: detectFormat(path, data),
		node:   &node,
		root:   root,
	}, nil
}

// entity returns doc[category][name], or nil when either level is absent.
func (d *document) entity(category, name string) *yaml.Node {
	cat := mappingValue(d.root, category)
	if cat == nil || cat.Kind != yaml.MappingNode {
		return nil
	}
	return mappingValue(cat, name)
}

// mappingValue returns the value for key in a mapping node, following aliases.
func mappingValue(m *yaml.Node, key string) *yaml.Node {
	m = resolveAlias(m)
	if m == nil || m.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return resolveAlias(m.Content[i+1])
		}
	}
	return nil
}

// setMappingValue sets key to value, appending the pair when key is absent.
func setMappingValue(m *yaml.Node, key string, value *yaml.Node) {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			m.Content[i+1] = value
			return
		}
	}
	m.Content = append(m.Content, newStringNode(key), value)
}

func resolveAlias(n *yaml.Node) *yaml.Node {
	for n != nil && n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	return n
}

func newStringNode(v string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v}
}

func newMappingNode() *yaml.Node {
	return &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
}

// deepCopyNode returns an independent copy of n. Aliases are expanded so the
// copy never points back into the source tree; anchors are dropped because
// they would otherwise collide in the destination document.
func deepCopyNode(n *yaml.Node) *yaml.Node {
	return copyNode(n, make(map[*yaml.Node]*yaml.Node))
}

func copyNode(n *yaml.Node, seen map[*yaml.Node]*yaml.Node) *yaml.Node {
	if n == nil {
		return nil
	}
	if n.Kind == yaml.AliasNode && n.Alias != nil {
		return copyNode(n.Alias, seen)
	}
	if c, ok := seen[n]; ok {
		return c
	}
	c := &yaml.Node{
		Kind:        n.Kind,
		Style:       n.Style,
		Tag:         n.Tag,
		Value:       n.Value,
		HeadComment: n.HeadComment,
		LineComment: n.LineComment,
		FootComment: n.FootComment,
		Line:        n.Line,
		Column:      n.Column,
	}
	seen[n] = c
	if len(n.Content) > 0 {
		c.Content = make([]*yaml.Node, len(n.Content))
		for i, child := range n.Content {
			c.Content[i] = copyNode(child, seen)
		}
	}
	return c
}

func kindName(k yaml.Kind) string {
	switch k {
	case yaml.DocumentNode:
		return "document"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.MappingNode:
		return "mapping"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	default:
		return "unknown"
	}
}
