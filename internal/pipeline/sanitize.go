package pipeline

import (
	"strings"

	nethtml "golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// droppedElements are removed together with everything inside them.
var droppedElements = map[atom.Atom]bool{
	atom.Script:   true,
	atom.Style:    true,
	atom.Iframe:   true,
	atom.Frame:    true,
	atom.Frameset: true,
	atom.Object:   true,
	atom.Embed:    true,
	atom.Applet:   true,
	atom.Form:     true,
	atom.Meta:     true,
	atom.Base:     true,
	atom.Link:     true,
	atom.Noscript: true,
	atom.Template: true,
	atom.Svg:      true,
	atom.Math:     true,
	atom.Textarea: true,
	atom.Select:   true,
	atom.Button:   true,
	atom.Input:    true,
}

// allowedElements are kept as written. Any other element is replaced by
// its children.
var allowedElements = map[atom.Atom]bool{
	atom.A: true, atom.Abbr: true, atom.B: true, atom.Blockquote: true,
	atom.Br: true, atom.Caption: true, atom.Cite: true, atom.Code: true,
	atom.Col: true, atom.Colgroup: true, atom.Dd: true, atom.Del: true,
	atom.Details: true, atom.Div: true, atom.Dl: true, atom.Dt: true,
	atom.Em: true, atom.Figcaption: true, atom.Figure: true, atom.H1: true,
	atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Hr: true, atom.I: true, atom.Img: true, atom.Ins: true, atom.Kbd: true,
	atom.Li: true, atom.Mark: true, atom.Ol: true, atom.P: true, atom.Pre: true,
	atom.Q: true, atom.S: true, atom.Samp: true, atom.Small: true,
	atom.Span: true, atom.Strong: true, atom.Sub: true, atom.Summary: true,
	atom.Sup: true, atom.Table: true, atom.Tbody: true, atom.Td: true,
	atom.Tfoot: true, atom.Th: true, atom.Thead: true, atom.Time: true,
	atom.Tr: true, atom.U: true, atom.Ul: true, atom.Var: true,
}

// globalAttrs are allowed on every kept element.
var globalAttrs = map[string]bool{
	"class": true, "id": true, "title": true, "lang": true, "dir": true, "align": true,
}

// elementAttrs are allowed only on the named element.
var elementAttrs = map[atom.Atom]map[string]bool{
	atom.A:        {"href": true, "name": true, "target": true, "rel": true},
	atom.Img:      {"src": true, "alt": true, "width": true, "height": true},
	atom.Td:       {"colspan": true, "rowspan": true},
	atom.Th:       {"colspan": true, "rowspan": true, "scope": true},
	atom.Table:    {"border": true, "cellpadding": true, "cellspacing": true},
	atom.Ol:       {"start": true, "type": true},
	atom.Col:      {"span": true},
	atom.Colgroup: {"span": true},
	atom.Time:     {"datetime": true},
	atom.Details:  {"open": true},
}

// urlAttrs hold a URL and pass only with a safe scheme.
var urlAttrs = map[string]bool{"href": true, "src": true}

// safeSchemes are the URL schemes links and images may use.
var safeSchemes = map[string]bool{"http": true, "https": true, "mailto": true}

// sanitize rewrites the tree below n so only allowlisted elements and
// attributes remain. It reports whether n itself must be dropped.
func sanitize(n *nethtml.Node) (drop bool) {
	switch n.Type {
	case nethtml.TextNode:
		return false
	case nethtml.ElementNode:
		if n.Namespace != "" || droppedElements[n.DataAtom] {
			return true
		}
		n.Attr = allowedAttrs(n)
	default:
		// Comments and doctypes.
		return true
	}

	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		switch {
		case sanitize(c):
			n.RemoveChild(c)
		case c.Type == nethtml.ElementNode && !allowedElements[c.DataAtom]:
			unwrap(c)
		}
		c = next
	}
	return false
}

// unwrap replaces n with its children.
func unwrap(n *nethtml.Node) {
	parent := n.Parent
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		n.RemoveChild(c)
		parent.InsertBefore(c, n)
		c = next
	}
	parent.RemoveChild(n)
}

func allowedAttrs(n *nethtml.Node) []nethtml.Attribute {
	kept := n.Attr[:0]
	for _, a := range n.Attr {
		key := strings.ToLower(a.Key)
		if a.Namespace != "" || !(globalAttrs[key] || elementAttrs[n.DataAtom][key]) {
			continue
		}
		if urlAttrs[key] && !safeURL(a.Val, n.DataAtom == atom.Img) {
			continue
		}
		kept = append(kept, a)
	}
	return kept
}

// safeURL reports whether u is relative or uses a safe scheme. Browsers
// ignore ASCII whitespace and control characters inside a scheme, so they
// are removed before the check. Images may also use data:image URLs.
func safeURL(u string, image bool) bool {
	clean := strings.Map(func(r rune) rune {
		if r <= ' ' || r == 0x7f {
			return -1
		}
		return r
	}, u)
	clean = strings.ToLower(clean)

	colon := strings.IndexByte(clean, ':')
	if colon < 0 || strings.ContainsAny(clean[:colon], "/?#") {
		return true
	}
	scheme := clean[:colon]
	if safeSchemes[scheme] {
		return true
	}
	return image && scheme == "data" && strings.HasPrefix(clean, "data:image/")
}
