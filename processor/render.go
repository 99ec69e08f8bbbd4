package processor

import "strings"

var (
	textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	attrEscaper = strings.NewReplacer("&", "&amp;", `"`, "&quot;")
)

func escapeText(s string) string { return textEscaper.Replace(s) }
func escapeAttr(s string) string { return attrEscaper.Replace(s) }

// Render serializes a tree. Nodes the walker has scheduled are rendered
// with their translations, blocking until each one is available.
// Text is escaped except inside raw-text elements; attributes without a
// value are written bare. Rendering is pure and may be repeated.
func Render(n *Node) string {
	var b strings.Builder
	render(&b, n, false)
	return b.String()
}

func render(b *strings.Builder, n *Node, raw bool) {
	switch n.Type {
	case RootNode:
		for _, c := range n.children() {
			render(b, c, false)
		}

	case TextNode:
		if raw {
			b.WriteString(n.Data)
		} else {
			b.WriteString(escapeText(n.Data))
		}

	case RawNode:
		b.WriteString(n.Data)

	case ElementNode:
		b.WriteByte('<')
		b.WriteString(n.Data)
		if n.attrs != nil {
			for _, a := range n.attrs {
				a.write(b)
			}
		} else {
			for _, a := range n.Attr {
				writeAttr(b, a.Key, escapeAttr(a.Val))
			}
		}
		if n.SelfClosing {
			b.WriteString("/>")
			return
		}
		b.WriteByte('>')
		if voidElements[n.Data] {
			return
		}
		raw := n.IsRawText()
		for _, c := range n.children() {
			render(b, c, raw)
		}
		b.WriteString("</")
		b.WriteString(n.Data)
		b.WriteByte('>')
	}
}

// children returns the content to render: the walker's replacement when
// one was scheduled, otherwise the parsed children.
func (n *Node) children() []*Node {
	if n.content != nil {
		c, _ := n.content.Await()
		return c
	}
	return n.Children
}
