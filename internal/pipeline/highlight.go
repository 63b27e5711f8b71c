package pipeline

import (
	"bytes"
	"fmt"
	"html"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// HighlightStyle is the Chroma style used for code blocks and code cells.
const HighlightStyle = "github"

// Highlighter renders source code as class-annotated HTML.
// Colors come from the stylesheet returned by HighlightCSS.
type Highlighter struct {
	formatter *chromahtml.Formatter
	style     *chroma.Style
}

// NewHighlighter creates a Highlighter using HighlightStyle.
func NewHighlighter() *Highlighter {
	return &Highlighter{
		formatter: chromahtml.New(chromahtml.WithClasses(true)),
		style:     styles.Get(HighlightStyle),
	}
}

// Highlight renders source for the named language.
// Unknown languages fall back to plain text.
func (h *Highlighter) Highlight(source, language string) string {
	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	it, err := lexer.Tokenise(nil, source)
	if err != nil {
		return plainCode(source)
	}

	var buf bytes.Buffer
	if err := h.formatter.Format(&buf, h.style, it); err != nil {
		return plainCode(source)
	}
	return buf.String()
}

// HighlightCSS returns the stylesheet for highlighted code.
func HighlightCSS() (string, error) {
	h := NewHighlighter()
	var buf bytes.Buffer
	if err := h.formatter.WriteCSS(&buf, h.style); err != nil {
		return "", fmt.Errorf("writing highlight CSS: %w", err)
	}
	return buf.String(), nil
}

func plainCode(source string) string {
	return `<pre class="chroma"><code>` + html.EscapeString(source) + "</code></pre>"
}
