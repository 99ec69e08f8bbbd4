package processor

import "strings"

// AttrRule allows one attribute of one element to be translated. When
// lists other attributes of the element that must be present with the
// given values, compared case-insensitively.
type AttrRule struct {
	Tag  string
	Attr string
	When map[string]string
}

// DefaultAttrRules are the attributes that carry human-readable text.
var DefaultAttrRules = []AttrRule{
	{Tag: "th", Attr: "abbr"},
	{Tag: "area", Attr: "alt"},
	{Tag: "img", Attr: "alt"},
	{Tag: "input", Attr: "alt"},
	{Tag: "a", Attr: "download"},
	{Tag: "area", Attr: "download"},
	{Tag: "optgroup", Attr: "label"},
	{Tag: "option", Attr: "label"},
	{Tag: "track", Attr: "label"},
	{Tag: "input", Attr: "placeholder"},
	{Tag: "textarea", Attr: "placeholder"},
	{Tag: "input", Attr: "value", When: map[string]string{"type": "button"}},
	{Tag: "input", Attr: "value", When: map[string]string{"type": "reset"}},
}

// Matches reports whether the rule allows attr on n.
func (r AttrRule) Matches(n *Node, attr string) bool {
	if n.Data != r.Tag || attr != r.Attr {
		return false
	}
	for key, want := range r.When {
		got, ok := n.AttrValue(key)
		if !ok || !strings.EqualFold(got, want) {
			return false
		}
	}
	return true
}

func matchAny(rules []AttrRule, n *Node, attr string) bool {
	for _, r := range rules {
		if r.Matches(n, attr) {
			return true
		}
	}
	return false
}

// renderedAttr is an attribute as it will be serialized. A value coming
// from the translation service is emitted as returned; on failure the
// original value is used.
type renderedAttr struct {
	Key        string
	Val        string
	translated *Future[string]
}

func (a renderedAttr) write(b *strings.Builder) {
	if a.translated != nil {
		if v, err := a.translated.Await(); err == nil {
			writeAttr(b, a.Key, v)
			return
		}
	}
	writeAttr(b, a.Key, escapeAttr(a.Val))
}

func writeAttr(b *strings.Builder, key, escaped string) {
	b.WriteByte(' ')
	b.WriteString(key)
	if escaped != "" {
		b.WriteString(`="`)
		b.WriteString(escaped)
		b.WriteByte('"')
	}
}
