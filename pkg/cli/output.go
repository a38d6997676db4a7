package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// OutputFormat selects how command results are rendered.
type OutputFormat string

const (
	// FormatText is human-readable output (default).
	FormatText OutputFormat = "text"
	// FormatJSON is machine-readable output for scripting and CI.
	FormatJSON OutputFormat = "json"
)

// ParseFormat maps a --format flag value onto an OutputFormat. An empty
// value selects text.
func ParseFormat(s string) (OutputFormat, error) {
	switch OutputFormat(s) {
	case FormatText, "":
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unknown output format %q (expected text or json)", s)
	}
}

// Formatter renders command output. Format returns the rendered bytes,
// FormatTo streams them to a writer.
type Formatter interface {
	Format(data any) ([]byte, error)
	FormatTo(w io.Writer, data any) error
}

// NewFormatter returns the formatter for the given format. Unrecognized
// formats fall back to text, so callers that already ran ParseFormat
// never see a surprise here.
func NewFormatter(format OutputFormat) Formatter {
	if format == FormatJSON {
		return &JSONFormatter{Indent: true}
	}
	return &TextFormatter{}
}

// TextFormatter renders values as plain text lines. Strings and byte
// slices pass through untouched; everything else renders with %v.
type TextFormatter struct{}

func (f *TextFormatter) Format(data any) ([]byte, error) {
	var buf bytes.Buffer
	if err := f.FormatTo(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (f *TextFormatter) FormatTo(w io.Writer, data any) error {
	var err error
	switch v := data.(type) {
	case string:
		_, err = fmt.Fprintln(w, v)
	case []byte:
		_, err = w.Write(append(v, '\n'))
	default:
		_, err = fmt.Fprintf(w, "%v\n", data)
	}
	return err
}

// JSONFormatter renders values as JSON, one document per call.
type JSONFormatter struct {
	// Indent enables two-space indentation.
	Indent bool
}

func (f *JSONFormatter) Format(data any) ([]byte, error) {
	var buf bytes.Buffer
	if err := f.FormatTo(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (f *JSONFormatter) FormatTo(w io.Writer, data any) error {
	enc := json.NewEncoder(w)
	if f.Indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(data)
}
