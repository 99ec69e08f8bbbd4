package processor

import (
	"strings"

	"golang.org/x/net/html"
)

// Parse builds a tree from HTML without normalizing it: no implied
// html/head/body elements are added and nothing is reordered, so
// rendering the tree reproduces the input up to attribute quoting and
// entity forms.
//
// translate is the flag of the root; each element inherits its parent's
// flag unless it carries a translate attribute (any value other than
// "no" means yes). lang selects the data-translate-override-<lang>
// attribute. End tags close the nearest matching open element; stray
// end tags are dropped and elements left open at EOF are closed. Some
// start tags close the current element first (see impliedEnd), so
// <li>a<li>b renders as <li>a</li><li>b</li>.
func Parse(content string, translate bool, lang string) *Node {
	root := &Node{Type: RootNode, Translate: translate}
	overrideKey := OverrideAttrPrefix + attrLang(lang)
	stack := []*Node{root}

	z := html.NewTokenizer(strings.NewReader(content))
	for {
		tt := z.Next()
		cur := stack[len(stack)-1]

		switch tt {
		case html.ErrorToken:
			// io.EOF or a read error on a strings.Reader, which cannot fail.
			return root

		case html.TextToken:
			text := string(z.Text())
			cur.appendChild(&Node{Type: TextNode, Data: text, Translate: cur.Translate})
			if strings.TrimSpace(text) != "" {
				cur.ContainsText = true
			}

		case html.StartTagToken, html.SelfClosingTagToken:
			el, explicit := newElement(z, overrideKey)
			el.SelfClosing = tt == html.SelfClosingTagToken
			if !el.SelfClosing {
				for len(stack) > 1 && impliedEnd[el.Data][stack[len(stack)-1].Data] {
					stack = stack[:len(stack)-1]
				}
				cur = stack[len(stack)-1]
			}
			if !explicit {
				el.Translate = cur.Translate
			}
			cur.appendChild(el)
			if !el.IsVoid() {
				stack = append(stack, el)
			}

		case html.EndTagToken:
			name, _ := z.TagName()
			for i := len(stack) - 1; i > 0; i-- {
				if stack[i].Data == string(name) {
					stack = stack[:i]
					break
				}
			}

		case html.CommentToken, html.DoctypeToken:
			cur.appendChild(&Node{Type: RawNode, Data: string(z.Raw()), Translate: cur.Translate})
		}
	}
}

// newElement reads the current tag. explicit reports whether it carries
// a translate attribute; otherwise the caller sets the inherited flag.
func newElement(z *html.Tokenizer, overrideKey string) (el *Node, explicit bool) {
	name, hasAttr := z.TagName()
	el = &Node{Type: ElementNode, Data: string(name)}

	for hasAttr {
		var key, val []byte
		key, val, hasAttr = z.TagAttr()
		a := Attribute{Key: string(key), Val: string(val)}
		el.Attr = append(el.Attr, a)

		switch a.Key {
		case "translate":
			el.Translate = !strings.EqualFold(strings.TrimSpace(a.Val), "no")
			explicit = true
		case overrideKey:
			override := a.Val
			el.Override = &override
		}
	}

	return el, explicit
}

// impliedEnd maps a start tag to the open elements it closes when one of
// them is the current element: a new <li> ends the previous <li>, a block
// ends an open <p>, and so on. Self-closing tags close nothing.
var impliedEnd = func() map[string]map[string]bool {
	set := func(tags ...string) map[string]bool {
		m := make(map[string]bool, len(tags))
		for _, t := range tags {
			m[t] = true
		}
		return m
	}
	m := map[string]map[string]bool{
		"li":       set("li"),
		"dt":       set("dt", "dd"),
		"dd":       set("dt", "dd"),
		"option":   set("option"),
		"optgroup": set("optgroup", "option"),
		"tr":       set("tr", "td", "th"),
		"td":       set("td", "th"),
		"th":       set("td", "th"),
		"rt":       set("rt", "rp"),
		"rp":       set("rt", "rp"),
	}
	for _, block := range []string{
		"address", "article", "aside", "blockquote", "details", "div", "dl",
		"fieldset", "figcaption", "figure", "footer", "form", "h1", "h2", "h3",
		"h4", "h5", "h6", "header", "hgroup", "hr", "main", "nav", "ol", "p",
		"pre", "section", "table", "ul",
	} {
		m[block] = set("p")
	}
	return m
}()
