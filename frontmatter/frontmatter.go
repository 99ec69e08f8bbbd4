// Package frontmatter reads and writes the YAML front matter block that
// static site generators expect at the top of a page:
//
//	---
//	title: "Inicio"
//	layout: "default.es"
//	---
//	<p>...</p>
//
// Field order is preserved. Fields set through Set are written as
// double-quoted scalars; fields read from a source keep their style.
package frontmatter

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// block matches a front matter block at the very start of the input.
var block = regexp.MustCompile(`(?s)\A---[ \t]*\r?\n(.*?\r?\n)?---[ \t]*(?:\r?\n|\z)`)

type field struct {
	key   string
	value *yaml.Node
}

// Document is a page split into front matter and body.
type Document struct {
	fields []field
	Body   string
}

// New returns a document without front matter.
func New(body string) *Document {
	return &Document{Body: body}
}

// Split separates the front matter from the body. Content without a
// front matter block becomes the body of a document with no fields.
func Split(content string) (*Document, error) {
	m := block.FindStringSubmatchIndex(content)
	if m == nil {
		return New(content), nil
	}

	doc := New(content[m[1]:])
	if m[2] < 0 {
		return doc, nil
	}

	var root yaml.Node
	if err := yaml.Unmarshal([]byte(content[m[2]:m[3]]), &root); err != nil {
		return nil, fmt.Errorf("parsing front matter: %w", err)
	}
	if len(root.Content) == 0 {
		return doc, nil
	}

	mapping := root.Content[0]
	if mapping.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("front matter must be a mapping, got %s", kindName(mapping.Kind))
	}
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		doc.fields = append(doc.fields, field{
			key:   mapping.Content[i].Value,
			value: mapping.Content[i+1],
		})
	}

	return doc, nil
}

// Keys returns the field names in order.
func (d *Document) Keys() []string {
	keys := make([]string, len(d.fields))
	for i, f := range d.fields {
		keys[i] = f.key
	}
	return keys
}

// Len returns the number of fields.
func (d *Document) Len() int {
	return len(d.fields)
}

// Get returns the value of a scalar field.
func (d *Document) Get(key string) (string, bool) {
	for _, f := range d.fields {
		if f.key == key && f.value.Kind == yaml.ScalarNode {
			return f.value.Value, true
		}
	}
	return "", false
}

// Set replaces the value of a field, or appends it.
func (d *Document) Set(key, value string) {
	node := &yaml.Node{
		Kind:  yaml.ScalarNode,
		Tag:   "!!str",
		Style: yaml.DoubleQuotedStyle,
		Value: value,
	}
	for i := range d.fields {
		if d.fields[i].key == key {
			d.fields[i].value = node
			return
		}
	}
	d.fields = append(d.fields, field{key: key, value: node})
}

// Delete removes a field.
func (d *Document) Delete(key string) {
	for i := range d.fields {
		if d.fields[i].key == key {
			d.fields = append(d.fields[:i], d.fields[i+1:]...)
			return
		}
	}
}

// Render writes the front matter block followed by the body. A document
// without fields renders as its body alone.
func (d *Document) Render() (string, error) {
	if len(d.fields) == 0 {
		return d.Body, nil
	}

	mapping := &yaml.Node{Kind: yaml.MappingNode}
	for _, f := range d.fields {
		mapping.Content = append(mapping.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: f.key},
			f.value,
		)
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(mapping); err != nil {
		return "", fmt.Errorf("encoding front matter: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("encoding front matter: %w", err)
	}

	var b strings.Builder
	b.WriteString("---\n")
	b.Write(buf.Bytes())
	b.WriteString("---\n")
	b.WriteString(d.Body)
	return b.String(), nil
}

func kindName(k yaml.Kind) string {
	switch k {
	case yaml.SequenceNode:
		return "sequence"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	default:
		return "document"
	}
}
