package processor

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/ZaguanLabs/sitelai"
)

// keepAttr marks a placeholder for a node that stays out of a span. The
// translation service sees an empty span element and must return it.
const keepAttr = "data-sitelai-keep"

// ErrMarkerLost is reported when a translated span does not carry back
// exactly one copy of every placeholder.
var ErrMarkerLost = errors.New("translated markup lost a kept element")

// walker schedules translations for one document.
type walker struct {
	ctx     context.Context
	job     sitelai.Job
	rules   []AttrRule
	docLang bool
	tr      *tracker
}

// walk schedules the root. A root whose flag is on and which has text of
// its own is handled like any eligible element.
func (w *walker) walk(root *Node) {
	if root.eligible() {
		w.translateContent(root)
		return
	}
	w.visitChildren(root.Children)
}

func (w *walker) visitChildren(children []*Node) {
	for _, c := range children {
		if c.Type == ElementNode {
			w.visit(c)
		}
	}
}

// visit handles an element outside any span.
func (w *walker) visit(n *Node) {
	w.rewriteAttrs(n)
	if n.IsVoid() {
		return
	}

	switch {
	case n.Override != nil:
		n.content = Resolved([]*Node{{Type: RawNode, Data: *n.Override, parent: n}})
	case n.eligible():
		w.translateContent(n)
	default:
		w.visitChildren(n.Children)
	}
}

// visitCovered handles elements whose text belongs to an ancestor's span.
// Only their attributes are rewritten; opaque elements were kept out of
// the span and are visited on their own.
func (w *walker) visitCovered(children []*Node) {
	for _, c := range children {
		if c.Type != ElementNode {
			continue
		}
		if c.opaque() {
			w.visit(c)
			continue
		}
		w.rewriteAttrs(c)
		w.visitCovered(c.Children)
	}
}

// translateContent sends the content of n as one markup span and replaces
// the children with the parsed result. On failure the original children
// are kept.
func (w *walker) translateContent(n *Node) {
	src, kept := flatten(n)
	path := n.path()

	n.content = spawn(w.tr, func(seq int64) ([]*Node, error) {
		out, err := w.job.Dispatcher.DispatchHTML(w.ctx, src)
		var children []*Node
		if err == nil {
			children, err = splice(out, n, kept, w.job.TargetLang)
		}
		if err != nil {
			w.tr.fail(seq, path, src, err)
			w.visitCovered(n.Children)
			return n.Children, err
		}
		w.visitCovered(children)
		return children, nil
	})
}

// flatten serializes the children of n, replacing opaque nodes by
// placeholders. It returns the markup and the replaced nodes by index.
func flatten(n *Node) (string, []*Node) {
	var b strings.Builder
	var kept []*Node

	var write func(children []*Node)
	write = func(children []*Node) {
		for _, c := range children {
			switch {
			case c.Type == TextNode:
				b.WriteString(escapeText(c.Data))
			case c.opaque():
				fmt.Fprintf(&b, `<span %s="%d"></span>`, keepAttr, len(kept))
				kept = append(kept, c)
			default:
				b.WriteByte('<')
				b.WriteString(c.Data)
				for _, a := range c.Attr {
					writeAttr(&b, a.Key, escapeAttr(a.Val))
				}
				if c.SelfClosing {
					b.WriteString("/>")
					continue
				}
				b.WriteByte('>')
				if voidElements[c.Data] {
					continue
				}
				write(c.Children)
				b.WriteString("</" + c.Data + ">")
			}
		}
	}
	write(n.Children)

	return b.String(), kept
}

type placeholder struct {
	parent *Node
	index  int
	id     int
}

// splice parses translated markup as children of n and puts the kept
// nodes back in place of their placeholders. Nothing is modified unless
// every placeholder comes back exactly once.
func splice(markup string, n *Node, kept []*Node, lang string) ([]*Node, error) {
	frag := Parse(markup, n.Translate, lang)

	var found []placeholder
	var collect func(parent *Node)
	collect = func(parent *Node) {
		for i, c := range parent.Children {
			if c.Type != ElementNode {
				continue
			}
			if v, ok := c.AttrValue(keepAttr); ok {
				id, err := strconv.Atoi(v)
				if err != nil {
					id = -1
				}
				found = append(found, placeholder{parent: parent, index: i, id: id})
				continue
			}
			collect(c)
		}
	}
	collect(frag)

	seen := make([]bool, len(kept))
	for _, p := range found {
		if p.id < 0 || p.id >= len(kept) || seen[p.id] {
			return nil, ErrMarkerLost
		}
		seen[p.id] = true
	}
	if len(found) != len(kept) {
		return nil, ErrMarkerLost
	}

	for _, p := range found {
		k := kept[p.id]
		k.parent = p.parent
		p.parent.Children[p.index] = k
	}
	for _, c := range frag.Children {
		c.parent = n
	}
	return frag.Children, nil
}

// rewriteAttrs decides how each attribute of n is emitted:
// data-*-<lang> attributes are dropped, data-<name>-<lang> replaces name,
// allow-listed values are translated, everything else is copied.
func (w *walker) rewriteAttrs(n *Node) {
	suffix := "-" + attrLang(w.job.TargetLang)
	out := make([]renderedAttr, 0, len(n.Attr))

	for _, a := range n.Attr {
		if strings.HasPrefix(a.Key, "data-") && strings.HasSuffix(a.Key, suffix) {
			continue
		}
		if v, ok := n.AttrValue("data-" + a.Key + suffix); ok {
			out = append(out, renderedAttr{Key: a.Key, Val: v})
			continue
		}
		if n.Translate && strings.TrimSpace(a.Val) != "" && matchAny(w.rules, n, a.Key) {
			out = append(out, renderedAttr{Key: a.Key, Val: a.Val, translated: w.translateAttr(n, a)})
			continue
		}
		out = append(out, a.rendered())
	}

	if w.docLang && n.Data == "html" {
		out = setAttr(out, "lang", sitelai.ToHTMLLang(w.job.TargetLang))
		out = setAttr(out, "dir", sitelai.GetDirection(w.job.TargetLang))
	}

	n.attrs = out
}

func (w *walker) translateAttr(n *Node, a Attribute) *Future[string] {
	path := n.path() + "[" + a.Key + "]"
	return spawn(w.tr, func(seq int64) (string, error) {
		out, err := w.job.Dispatcher.Dispatch(w.ctx, a.Val)
		if err != nil {
			w.tr.fail(seq, path, a.Val, err)
		}
		return out, err
	})
}

func (a Attribute) rendered() renderedAttr {
	return renderedAttr{Key: a.Key, Val: a.Val}
}

func setAttr(attrs []renderedAttr, key, val string) []renderedAttr {
	for i := range attrs {
		if attrs[i].Key == key {
			attrs[i] = renderedAttr{Key: key, Val: val}
			return attrs
		}
	}
	return append(attrs, renderedAttr{Key: key, Val: val})
}
