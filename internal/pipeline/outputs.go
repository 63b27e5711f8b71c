package pipeline

import (
	"context"
	"encoding/base64"
	"html"
	"regexp"
	"strings"

	nethtml "golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/alnah/go-nbsite/internal/notebook"
)

// Output MIME types, best first. The first type present in a bundle wins.
const (
	mimeHTML     = "text/html"
	mimeSVG      = "image/svg+xml"
	mimePNG      = "image/png"
	mimeJPEG     = "image/jpeg"
	mimeMarkdown = "text/markdown"
	mimeLaTeX    = "text/latex"
	mimePlain    = "text/plain"
)

var outputMIMEOrder = []string{
	mimeHTML,
	mimeSVG,
	mimePNG,
	mimeJPEG,
	mimeMarkdown,
	mimeLaTeX,
	mimePlain,
}

// ansiEscape matches terminal control sequences found in tracebacks.
var ansiEscape = regexp.MustCompile(`\x1b\[[0-9;?]*[ -/]*[@-~]`)

// stripANSI removes terminal color and cursor sequences.
func stripANSI(s string) string {
	return ansiEscape.ReplaceAllString(s, "")
}

// pickMIME returns the best renderable MIME type in the bundle, or "".
func pickMIME(b notebook.MimeBundle) string {
	for _, mime := range outputMIMEOrder {
		if b.Has(mime) {
			return mime
		}
	}
	return ""
}

// renderOutput renders one code-cell output. Unrenderable outputs yield "".
func (c *NotebookConverter) renderOutput(ctx context.Context, out notebook.Output) (string, error) {
	switch out.OutputType {
	case notebook.OutputStream:
		name := out.Name
		if name == "" {
			name = "stdout"
		}
		return `<pre class="output-stream output-` + html.EscapeString(name) + `">` +
			html.EscapeString(out.Text.String()) + "</pre>", nil

	case notebook.OutputError:
		text := strings.Join(out.Traceback, "\n")
		if text == "" {
			text = out.EName + ": " + out.EValue
		}
		return `<pre class="output-error">` + html.EscapeString(stripANSI(text)) + "</pre>", nil

	default:
		return c.renderBundle(ctx, out.Data)
	}
}

func (c *NotebookConverter) renderBundle(ctx context.Context, data notebook.MimeBundle) (string, error) {
	mime := pickMIME(data)
	if mime == "" {
		return "", nil
	}
	text, ok := data.Text(mime)
	if !ok {
		return "", nil
	}

	switch mime {
	case mimeHTML:
		balanced, err := balanceHTML(text, c.safe)
		if err != nil {
			return `<pre class="output-text">` + html.EscapeString(text) + "</pre>", nil
		}
		return `<div class="output-html">` + balanced + "</div>", nil
	case mimeSVG:
		return dataImage(mimeSVG, encodeBase64(text)), nil
	case mimePNG, mimeJPEG:
		return dataImage(mime, compactBase64(text)), nil
	case mimeMarkdown:
		rendered, err := renderMarkdown(ctx, c.md, []byte(text))
		if err != nil {
			return "", err
		}
		return `<div class="output-markdown">` + rendered + "</div>", nil
	case mimeLaTeX:
		return `<div class="output-latex">` + html.EscapeString(text) + "</div>", nil
	default:
		return `<pre class="output-text">` + html.EscapeString(text) + "</pre>", nil
	}
}

func dataImage(mime, payload string) string {
	return `<img class="output-image" src="data:` + mime + ";base64," + payload + `" alt="output">`
}

func encodeBase64(s string) string {
	return base64.StdEncoding.EncodeToString([]byte(s))
}

// compactBase64 drops the line breaks nbformat allows inside base64 payloads.
func compactBase64(s string) string {
	return strings.Join(strings.Fields(s), "")
}

// balanceHTML parses an HTML fragment and renders it back so unclosed or
// stray tags cannot leak into the surrounding page. When safe is true, the
// fragment is reduced to allowlisted elements and attributes.
func balanceHTML(fragment string, safe bool) (string, error) {
	parent := &nethtml.Node{
		Type:     nethtml.ElementNode,
		DataAtom: atom.Div,
		Data:     "div",
	}
	nodes, err := nethtml.ParseFragment(strings.NewReader(fragment), parent)
	if err != nil {
		return "", err
	}

	if safe {
		for _, n := range nodes {
			parent.AppendChild(n)
		}
		sanitize(parent)
		nodes = nodes[:0]
		for c := parent.FirstChild; c != nil; c = c.NextSibling {
			nodes = append(nodes, c)
		}
	}

	var buf strings.Builder
	for _, n := range nodes {
		if err := nethtml.Render(&buf, n); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}
