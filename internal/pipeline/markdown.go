package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/renderer/html"
)

// ErrConversion indicates a source document could not be turned into HTML.
var ErrConversion = errors.New("conversion failed")

// utf8BOM is stripped from Markdown sources before parsing.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Converter turns one source document into an HTML fragment.
type Converter interface {
	Convert(ctx context.Context, path string) (string, error)
}

// GoldmarkConverter renders Markdown text with a configured goldmark instance.
type GoldmarkConverter struct {
	md goldmark.Markdown
}

// NewGoldmarkConverter creates a plain CommonMark converter with no extensions.
// Raw HTML in the source passes through unless safe is true.
func NewGoldmarkConverter(safe bool) *GoldmarkConverter {
	var rendererOpts []goldmark.Option
	if !safe {
		rendererOpts = append(rendererOpts, goldmark.WithRendererOptions(html.WithUnsafe()))
	}
	return &GoldmarkConverter{md: goldmark.New(rendererOpts...)}
}

// ToHTML converts Markdown content to an HTML fragment.
// Supports context cancellation via goroutine + select pattern since
// Goldmark doesn't natively support context.
func (c *GoldmarkConverter) ToHTML(ctx context.Context, content []byte) (string, error) {
	return renderMarkdown(ctx, c.md, content)
}

func renderMarkdown(ctx context.Context, md goldmark.Markdown, content []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	type result struct {
		html string
		err  error
	}

	done := make(chan result, 1)

	go func() {
		var buf bytes.Buffer
		if err := md.Convert(content, &buf); err != nil {
			done <- result{err: fmt.Errorf("%w: %v", ErrConversion, err)}
			return
		}
		done <- result{html: buf.String()}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-done:
		return r.html, r.err
	}
}

// MarkdownConverter converts Markdown files to HTML fragments.
type MarkdownConverter struct {
	md *GoldmarkConverter
}

// NewMarkdownConverter creates a MarkdownConverter.
// When safe is true raw HTML in the source is omitted from the output.
func NewMarkdownConverter(safe bool) *MarkdownConverter {
	return &MarkdownConverter{md: NewGoldmarkConverter(safe)}
}

// Convert reads path as UTF-8 Markdown and returns its HTML fragment.
func (c *MarkdownConverter) Convert(ctx context.Context, path string) (string, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path resolved by the site builder
	if err != nil {
		return "", fmt.Errorf("%w: reading %s: %w", ErrConversion, path, err)
	}
	return c.md.ToHTML(ctx, bytes.TrimPrefix(data, utf8BOM))
}
