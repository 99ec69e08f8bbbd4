package processor

import "strings"

// NodeType identifies the kind of a Node.
type NodeType uint8

const (
	// RootNode is the document or fragment root.
	RootNode NodeType = iota
	// ElementNode is an HTML element.
	ElementNode
	// TextNode is character data. Data holds the decoded text.
	TextNode
	// RawNode is markup emitted verbatim: comments, doctypes, overrides.
	RawNode
)

// OverrideAttrPrefix is followed by a language code to form the attribute
// whose value replaces an element's content for that language.
const OverrideAttrPrefix = "data-translate-override-"

// attrLang is lang as it appears in an attribute name. The tokenizer
// lowercases attribute names, so pt-BR is matched as pt-br.
func attrLang(lang string) string {
	return strings.ToLower(lang)
}

// Attribute is an element attribute with a decoded value.
type Attribute struct {
	Key string
	Val string
}

// Node is one node of a parsed page.
type Node struct {
	Type     NodeType
	Data     string // Tag name, text or raw markup
	Attr     []Attribute
	Children []*Node

	Translate    bool    // Effective translate flag
	Override     *string // Override content for the job language, if any
	ContainsText bool    // A direct text child has non-whitespace content
	SelfClosing  bool    // Written as <tag/>

	parent *Node

	// Set by the walker.
	content *Future[[]*Node]
	attrs   []renderedAttr
}

// Parent returns the enclosing node, or nil for the root.
func (n *Node) Parent() *Node {
	return n.parent
}

// AttrValue returns the value of the first attribute named key.
func (n *Node) AttrValue(key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func (n *Node) appendChild(c *Node) {
	c.parent = n
	n.Children = append(n.Children, c)
}

// IsVoid reports whether the element never has content: HTML void
// elements and elements written in self-closing form.
func (n *Node) IsVoid() bool {
	return n.Type == ElementNode && (n.SelfClosing || voidElements[n.Data])
}

// IsRawText reports whether the element's text is emitted without escaping.
func (n *Node) IsRawText() bool {
	return n.Type == ElementNode && rawTextElements[n.Data]
}

// eligible reports whether the node's content is sent as one span.
func (n *Node) eligible() bool {
	return n.Translate && n.ContainsText && !n.IsRawText()
}

// opaque reports whether the node must be kept out of an ancestor's span.
func (n *Node) opaque() bool {
	if n.Type != ElementNode {
		return true
	}
	return !n.Translate || n.Override != nil || n.IsRawText()
}

// path describes the node for failure reports, e.g. "div > p#intro".
func (n *Node) path() string {
	var parts []string
	for c := n; c != nil && c.Type == ElementNode; c = c.parent {
		label := c.Data
		if id, ok := c.AttrValue("id"); ok && id != "" {
			label += "#" + id
		}
		parts = append(parts, label)
	}
	if len(parts) == 0 {
		return "#document"
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, " > ")
}

var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "command": true,
	"embed": true, "hr": true, "img": true, "input": true, "keygen": true,
	"link": true, "menuitem": true, "meta": true, "param": true,
	"source": true, "track": true, "wbr": true,
}

// rawTextElements hold text the tokenizer does not decode.
var rawTextElements = map[string]bool{
	"iframe": true, "noembed": true, "noframes": true, "noscript": true,
	"plaintext": true, "script": true, "style": true, "xmp": true,
}
