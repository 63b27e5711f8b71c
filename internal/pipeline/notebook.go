package pipeline

import (
	"context"
	"fmt"
	"sort"
	"strings"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/alnah/go-nbsite/internal/notebook"
)

// attachmentMIMEOrder is the preference when an attachment carries several types.
var attachmentMIMEOrder = []string{mimePNG, mimeJPEG, "image/gif", "image/webp", mimeSVG}

// NotebookConverter converts Jupyter notebooks to HTML fragments.
// Only cell bodies are emitted; execution prompts never appear.
type NotebookConverter struct {
	md          goldmark.Markdown
	highlighter *Highlighter
	safe        bool
}

// NewNotebookConverter creates a NotebookConverter.
// When safe is true, raw HTML in markdown cells is omitted and scripts are
// stripped from HTML outputs.
func NewNotebookConverter(safe bool) *NotebookConverter {
	opts := []goldmark.Option{
		goldmark.WithExtensions(
			extension.GFM,
			highlighting.NewHighlighting(
				highlighting.WithStyle(HighlightStyle),
				highlighting.WithFormatOptions(
					chromahtml.WithClasses(true),
				),
			),
		),
	}
	if !safe {
		opts = append(opts, goldmark.WithRendererOptions(html.WithUnsafe()))
	}
	return &NotebookConverter{
		md:          goldmark.New(opts...),
		highlighter: NewHighlighter(),
		safe:        safe,
	}
}

// Convert reads and renders the notebook at path.
// Decoding failures wrap ErrConversion.
func (c *NotebookConverter) Convert(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	nb, err := notebook.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrConversion, err)
	}
	return c.Render(ctx, nb)
}

// Render renders a decoded notebook cell by cell.
func (c *NotebookConverter) Render(ctx context.Context, nb *notebook.Notebook) (string, error) {
	language := nb.Language()

	var b strings.Builder
	for i, cell := range nb.Cells {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		var (
			out string
			err error
		)
		switch cell.CellType {
		case notebook.CellMarkdown:
			out, err = c.renderMarkdownCell(ctx, cell)
		case notebook.CellCode:
			out, err = c.renderCodeCell(ctx, cell, language)
		case notebook.CellRaw:
			out = c.renderRawCell(cell)
		}
		if err != nil {
			return "", fmt.Errorf("cell %d: %w", i, err)
		}
		b.WriteString(out)
	}
	return b.String(), nil
}

func (c *NotebookConverter) renderMarkdownCell(ctx context.Context, cell notebook.Cell) (string, error) {
	source := inlineAttachments(cell.Source.String(), cell.Attachments)
	rendered, err := renderMarkdown(ctx, c.md, []byte(source))
	if err != nil {
		return "", err
	}
	return `<div class="cell markdown-cell">` + "\n" + rendered + "</div>\n", nil
}

func (c *NotebookConverter) renderCodeCell(ctx context.Context, cell notebook.Cell, language string) (string, error) {
	source := cell.Source.String()
	if strings.TrimSpace(source) == "" && len(cell.Outputs) == 0 {
		return "", nil
	}

	var b strings.Builder
	b.WriteString(`<div class="cell code-cell">` + "\n")
	if strings.TrimSpace(source) != "" {
		b.WriteString(`<div class="input">`)
		b.WriteString(c.highlighter.Highlight(source, language))
		b.WriteString("</div>\n")
	}

	if len(cell.Outputs) > 0 {
		b.WriteString(`<div class="outputs">` + "\n")
		for _, o := range cell.Outputs {
			rendered, err := c.renderOutput(ctx, o)
			if err != nil {
				return "", err
			}
			if rendered == "" {
				continue
			}
			b.WriteString(rendered)
			b.WriteString("\n")
		}
		b.WriteString("</div>\n")
	}
	b.WriteString("</div>\n")
	return b.String(), nil
}

// renderRawCell passes through raw cells meant for HTML. Other raw
// formats (LaTeX, reST) target different exporters and are dropped.
func (c *NotebookConverter) renderRawCell(cell notebook.Cell) string {
	switch strings.ToLower(cell.Metadata.RawFormat()) {
	case mimeHTML, "html":
	default:
		return ""
	}
	balanced, err := balanceHTML(cell.Source.String(), c.safe)
	if err != nil {
		return ""
	}
	return balanced + "\n"
}

// inlineAttachments replaces attachment:NAME references with data URIs.
func inlineAttachments(source string, attachments map[string]notebook.MimeBundle) string {
	if len(attachments) == 0 || !strings.Contains(source, "attachment:") {
		return source
	}

	names := make([]string, 0, len(attachments))
	for name := range attachments {
		names = append(names, name)
	}
	// Longest first so "a.png" never rewrites part of "a.png.png".
	sort.Slice(names, func(i, j int) bool {
		if len(names[i]) != len(names[j]) {
			return len(names[i]) > len(names[j])
		}
		return names[i] < names[j]
	})

	for _, name := range names {
		bundle := attachments[name]
		for _, mime := range attachmentMIMEOrder {
			payload, ok := bundle.Text(mime)
			if !ok {
				continue
			}
			uri := "data:" + mime + ";base64," + compactBase64(payload)
			source = strings.ReplaceAll(source, "attachment:"+name, uri)
			break
		}
	}
	return source
}
