// Package notebook decodes Jupyter notebooks (nbformat 4).
//
// Only the fields needed to render a notebook as HTML are modelled. Unknown
// fields are ignored so notebooks written by newer Jupyter releases still load.
package notebook

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

// Sentinel errors for notebook decoding.
var (
	ErrMalformed          = errors.New("malformed notebook")
	ErrUnsupportedVersion = errors.New("unsupported nbformat version")
	ErrUnknownCellType    = errors.New("unknown cell type")
	ErrUnknownOutputType  = errors.New("unknown output type")
)

// MinFormat is the oldest nbformat major version accepted.
const MinFormat = 4

// DefaultLanguage is used when the notebook metadata names no language.
const DefaultLanguage = "python"

// Cell types.
const (
	CellCode     = "code"
	CellMarkdown = "markdown"
	CellRaw      = "raw"
)

// Output types.
const (
	OutputStream        = "stream"
	OutputDisplayData   = "display_data"
	OutputExecuteResult = "execute_result"
	OutputError         = "error"
)

// Notebook is a decoded .ipynb document.
type Notebook struct {
	Metadata      Metadata `json:"metadata"`
	NBFormat      int      `json:"nbformat"`
	NBFormatMinor int      `json:"nbformat_minor"`
	Cells         []Cell   `json:"cells"`
}

// Metadata holds the notebook-level metadata used for rendering.
type Metadata struct {
	KernelSpec   *KernelSpec   `json:"kernelspec,omitempty"`
	LanguageInfo *LanguageInfo `json:"language_info,omitempty"`
	Title        string        `json:"title,omitempty"`
}

// KernelSpec describes the kernel that produced the notebook.
type KernelSpec struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Language    string `json:"language"`
}

// LanguageInfo describes the notebook's programming language.
type LanguageInfo struct {
	Name          string `json:"name"`
	PygmentsLexer string `json:"pygments_lexer"`
}

// Cell is one notebook cell.
type Cell struct {
	CellType       string                `json:"cell_type"`
	Source         MultilineString       `json:"source"`
	Metadata       CellMetadata          `json:"metadata"`
	Outputs        []Output              `json:"outputs,omitempty"`
	ExecutionCount *int                  `json:"execution_count,omitempty"`
	Attachments    map[string]MimeBundle `json:"attachments,omitempty"`
}

// CellMetadata holds per-cell metadata. Format and RawMimetype only matter
// for raw cells; nbformat 4 uses "format", older tooling "raw_mimetype".
type CellMetadata struct {
	Format      string `json:"format,omitempty"`
	RawMimetype string `json:"raw_mimetype,omitempty"`
}

// RawFormat returns the MIME type declared for a raw cell.
func (m CellMetadata) RawFormat() string {
	if m.Format != "" {
		return m.Format
	}
	return m.RawMimetype
}

// Output is one code-cell output.
type Output struct {
	OutputType string          `json:"output_type"`
	Name       string          `json:"name,omitempty"`
	Text       MultilineString `json:"text,omitempty"`
	Data       MimeBundle      `json:"data,omitempty"`
	EName      string          `json:"ename,omitempty"`
	EValue     string          `json:"evalue,omitempty"`
	Traceback  []string        `json:"traceback,omitempty"`
}

// MultilineString is nbformat's text field: a string or a list of lines
// that concatenate without separators.
type MultilineString string

// UnmarshalJSON accepts a JSON string, an array of strings, or null.
func (m *MultilineString) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*m = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*m = MultilineString(s)
		return nil
	}
	var lines []string
	if err := json.Unmarshal(data, &lines); err != nil {
		return fmt.Errorf("expected string or list of strings: %w", err)
	}
	*m = MultilineString(strings.Join(lines, ""))
	return nil
}

// String returns the joined text.
func (m MultilineString) String() string {
	return string(m)
}

// MimeBundle maps MIME types to their payloads. Payloads stay raw because
// JSON MIME types carry objects while text types carry multiline strings.
type MimeBundle map[string]json.RawMessage

// Text returns the payload for mime as text.
// The second result is false when the type is absent or not textual.
func (b MimeBundle) Text(mime string) (string, bool) {
	raw, ok := b[mime]
	if !ok {
		return "", false
	}
	var m MultilineString
	if err := json.Unmarshal(raw, &m); err != nil {
		return "", false
	}
	return m.String(), true
}

// Has reports whether the bundle carries mime.
func (b MimeBundle) Has(mime string) bool {
	_, ok := b[mime]
	return ok
}

// Parse decodes and checks a notebook document.
func Parse(data []byte) (*Notebook, error) {
	var nb Notebook
	if err := json.Unmarshal(data, &nb); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if err := nb.Validate(); err != nil {
		return nil, err
	}
	return &nb, nil
}

// ReadFile reads and parses the notebook at path.
func ReadFile(path string) (*Notebook, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path resolved by the site builder
	if err != nil {
		return nil, fmt.Errorf("reading notebook: %w", err)
	}
	nb, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return nb, nil
}

// Validate checks the format version and every cell and output type.
func (n *Notebook) Validate() error {
	if n.NBFormat < MinFormat {
		return fmt.Errorf("%w: %d (need %d or later)", ErrUnsupportedVersion, n.NBFormat, MinFormat)
	}
	for i, c := range n.Cells {
		switch c.CellType {
		case CellCode, CellMarkdown, CellRaw:
		default:
			return fmt.Errorf("%w: cell %d has type %q", ErrUnknownCellType, i, c.CellType)
		}
		for j, o := range c.Outputs {
			switch o.OutputType {
			case OutputStream, OutputDisplayData, OutputExecuteResult, OutputError:
			default:
				return fmt.Errorf("%w: cell %d output %d has type %q", ErrUnknownOutputType, i, j, o.OutputType)
			}
		}
	}
	return nil
}

// Language returns the notebook language used for syntax highlighting.
// Order: language_info.name, kernelspec.language, DefaultLanguage.
func (n *Notebook) Language() string {
	if n.Metadata.LanguageInfo != nil && n.Metadata.LanguageInfo.Name != "" {
		return strings.ToLower(n.Metadata.LanguageInfo.Name)
	}
	if n.Metadata.KernelSpec != nil && n.Metadata.KernelSpec.Language != "" {
		return strings.ToLower(n.Metadata.KernelSpec.Language)
	}
	return DefaultLanguage
}
