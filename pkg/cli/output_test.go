package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input   string
		want    OutputFormat
		wantErr bool
	}{
		{input: "text", want: FormatText},
		{input: "json", want: FormatJSON},
		{input: "", want: FormatText},
		{input: "csv", wantErr: true},
		{input: "yaml", wantErr: true},
		{input: "JSON", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseFormat(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseFormat(%q) expected error, got %q", tt.input, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseFormat(%q) error = %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestTextFormatter_PassesStringsThrough(t *testing.T) {
	f := &TextFormatter{}

	out, err := f.Format("helius: circuit closed")
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if string(out) != "helius: circuit closed\n" {
		t.Errorf("Format() = %q", string(out))
	}

	out, err = f.Format([]byte("raw bytes"))
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if string(out) != "raw bytes\n" {
		t.Errorf("Format([]byte) = %q", string(out))
	}
}

func TestTextFormatter_RendersValues(t *testing.T) {
	f := &TextFormatter{}
	buf := &bytes.Buffer{}

	if err := f.FormatTo(buf, 42); err != nil {
		t.Fatalf("FormatTo() error = %v", err)
	}
	if buf.String() != "42\n" {
		t.Errorf("FormatTo(42) = %q", buf.String())
	}
}

func TestJSONFormatter_RoundTrips(t *testing.T) {
	f := &JSONFormatter{Indent: true}
	buf := &bytes.Buffer{}

	report := struct {
		Provider string `json:"provider"`
		Healthy  bool   `json:"healthy"`
	}{Provider: "helius", Healthy: true}

	if err := f.FormatTo(buf, report); err != nil {
		t.Fatalf("FormatTo() error = %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("FormatTo produced invalid JSON: %v", err)
	}
	if decoded["provider"] != "helius" {
		t.Errorf("provider = %v, want helius", decoded["provider"])
	}
	if !strings.Contains(buf.String(), "\n  ") {
		t.Error("expected indented output")
	}
}

func TestJSONFormatter_CompactWithoutIndent(t *testing.T) {
	f := &JSONFormatter{}

	out, err := f.Format(map[string]int{"attempts": 3})
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if strings.Contains(strings.TrimRight(string(out), "\n"), "\n") {
		t.Errorf("expected single-line JSON, got %q", string(out))
	}
}

func TestNewFormatter_Selection(t *testing.T) {
	if _, ok := NewFormatter(FormatJSON).(*JSONFormatter); !ok {
		t.Errorf("NewFormatter(json) = %T, want *JSONFormatter", NewFormatter(FormatJSON))
	}
	if _, ok := NewFormatter(FormatText).(*TextFormatter); !ok {
		t.Errorf("NewFormatter(text) = %T, want *TextFormatter", NewFormatter(FormatText))
	}
	// Unrecognized values fall back to text.
	if _, ok := NewFormatter("xml").(*TextFormatter); !ok {
		t.Errorf("NewFormatter(xml) = %T, want *TextFormatter", NewFormatter("xml"))
	}
}
