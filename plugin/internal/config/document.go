package config

import (
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// documentOptions controls how a document is parsed and rendered. Values
// are copied per file; use the with* methods for per-file overrides.
type documentOptions struct {
	// header is written as the document head comment. Empty keeps whatever
	// head comment the file already had.
	header string

	// copyDefaults inserts keys that are missing from the document.
	copyDefaults bool

	indent int
}

func defaultDocumentOptions() documentOptions {
	return documentOptions{copyDefaults: true, indent: 2}
}

func (o documentOptions) withHeader(header string) documentOptions {
	o.header = header
	return o
}

// parseDocument reads data into a document node whose root is a mapping.
// Empty input yields an empty mapping.
func parseDocument(data []byte) (*yaml.Node, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		doc = yaml.Node{
			Kind:        yaml.DocumentNode,
			HeadComment: doc.HeadComment,
			Content:     []*yaml.Node{{Kind: yaml.MappingNode, Tag: "!!map"}},
		}
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("parse document: root must be a mapping, line %d", root.Line)
	}
	if len(root.Content) == 0 {
		// "{}" would otherwise keep flow style once keys are added.
		root.Style &^= yaml.FlowStyle
	}
	return &doc, nil
}

// renderDocument encodes doc after applying the header option.
func renderDocument(doc *yaml.Node, opts documentOptions) ([]byte, error) {
	if opts.header != "" {
		doc.HeadComment = commentText(opts.header)
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(opts.indent)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return buf.Bytes(), nil
}

// copyDefaults inserts every key of src that dst lacks, recursing into
// mappings present on both sides. Existing values are never touched and
// unknown keys in dst are kept. comments is keyed by dotted path. It
// returns the number of inserted keys.
func copyDefaults(dst, src *yaml.Node, comments map[string]string, prefix string) int {
	if dst == nil || src == nil || dst.Kind != yaml.MappingNode || src.Kind != yaml.MappingNode {
		return 0
	}
	added := 0
	for i := 0; i+1 < len(src.Content); i += 2 {
		key, val := src.Content[i], src.Content[i+1]
		path := key.Value
		if prefix != "" {
			path = prefix + "." + key.Value
		}

		existing, ok := mappingGet(dst, key.Value)
		if !ok {
			k := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key.Value}
			if c, ok := comments[path]; ok {
				k.HeadComment = commentText(c)
			}
			dst.Content = append(dst.Content, k, val)
			added++
			continue
		}
		if existing.Kind == yaml.MappingNode && val.Kind == yaml.MappingNode {
			added += copyDefaults(existing, val, comments, path)
		}
	}
	return added
}

// fillNulls replaces every null value in dst that has a counterpart in src
// with that default, recursing into mappings present on both sides. A key
// written without a value counts as missing, so it binds and saves as its
// default. The key node keeps its position and comments. Nulls without a
// default are left alone. It returns the number of replaced values.
func fillNulls(dst, src *yaml.Node) int {
	if dst == nil || src == nil || dst.Kind != yaml.MappingNode || src.Kind != yaml.MappingNode {
		return 0
	}
	filled := 0
	for i := 0; i+1 < len(dst.Content); i += 2 {
		key, val := dst.Content[i], dst.Content[i+1]
		def, ok := mappingGet(src, key.Value)
		if !ok {
			continue
		}
		if isNull(val) {
			def.LineComment = val.LineComment
			def.FootComment = val.FootComment
			dst.Content[i+1] = def
			filled++
			continue
		}
		filled += fillNulls(val, def)
	}
	return filled
}

func isNull(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && n.ShortTag() == "!!null"
}

// commentText prefixes every line of s with "# ", the form the parser
// reports comments in.
func commentText(s string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = "# " + l
	}
	return strings.Join(lines, "\n")
}

func mappingGet(m *yaml.Node, key string) (*yaml.Node, bool) {
	if m == nil || m.Kind != yaml.MappingNode {
		return nil, false
	}
	for i := 0; i+1 < len(m.Content); i += 2 {
		k := m.Content[i]
		if k.Kind == yaml.ScalarNode && k.Value == key {
			return m.Content[i+1], true
		}
	}
	return nil, false
}
