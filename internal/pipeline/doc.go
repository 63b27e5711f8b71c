// Package pipeline turns source documents into finished HTML pages.
//
// The stages are:
//   - Markdown to HTML fragment conversion via Goldmark
//   - Jupyter notebook to HTML fragment conversion (cells, outputs, attachments)
//   - Syntax highlighting via Chroma, with a matching stylesheet
//   - Page rendering: title, date, authors and tags around a fragment
//   - CSS injection into the rendered page
//
// Source resolution, output naming and file writes belong to the root nbsite
// package. This package only sees paths it is asked to convert.
package pipeline
