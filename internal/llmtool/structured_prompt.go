package llmtool

import (
	"bytes"
	"fmt"
	"strings"
)

// PromptField describes a single output field in a simple schema.
type PromptField struct {
	Name        string
	Type        string
	Required    bool
	Description string
}

// PromptSection is a free-form titled block rendered between BACKGROUND and OUTPUT.
type PromptSection struct {
	Title string
	Body  string
}

// StructuredPromptSpec defines the sections for a structured prompt.
type StructuredPromptSpec struct {
	Purpose      string
	Background   string
	Sections     []PromptSection
	OutputFields []PromptField
	Constraints  []string
	Rules        []string
	OutputFormat string
	Language     string
}

// Validate reports the first structural problem of the spec.
func (s StructuredPromptSpec) Validate() error {
	if strings.TrimSpace(s.Purpose) == "" {
		return fmt.Errorf("llmtool: purpose is empty")
	}
	if len(s.OutputFields) == 0 {
		return fmt.Errorf("llmtool: output fields are empty")
	}
	for _, f := range s.OutputFields {
		if strings.TrimSpace(f.Name) == "" {
			return fmt.Errorf("llmtool: output field without name")
		}
	}
	return nil
}

// RenderStructuredPrompt renders spec as "[TITLE]\nbody\n\n" sections.
// Section bodies are written verbatim; empty sections are skipped.
func RenderStructuredPrompt(spec StructuredPromptSpec) (string, error) {
	if err := spec.Validate(); err != nil {
		return "", err
	}
	var buf bytes.Buffer
	writeSection(&buf, "PURPOSE", spec.Purpose)
	writeSection(&buf, "BACKGROUND", spec.Background)
	for _, sec := range spec.Sections {
		writeSection(&buf, strings.ToUpper(strings.TrimSpace(sec.Title)), sec.Body)
	}
	writeSection(&buf, "OUTPUT", formatFields(spec.OutputFields))
	writeSection(&buf, "CONSTRAINTS", formatList(spec.Constraints))
	writeSection(&buf, "RULES", formatList(spec.Rules))
	writeSection(&buf, "OUTPUT_FORMAT", spec.OutputFormat)
	writeSection(&buf, "LANGUAGE", spec.Language)

	return strings.TrimRight(buf.String(), "\n") + "\n", nil
}

func formatFields(fields []PromptField) string {
	if len(fields) == 0 {
		return ""
	}
	var buf strings.Builder
	for _, f := range fields {
		name := strings.TrimSpace(f.Name)
		if name == "" {
			continue
		}
		req := "optional"
		if f.Required {
			req = "required"
		}
		if f.Description != "" {
			fmt.Fprintf(&buf, "- %s (%s, %s): %s\n", name, f.Type, req, f.Description)
		} else {
			fmt.Fprintf(&buf, "- %s (%s, %s)\n", name, f.Type, req)
		}
	}
	return strings.TrimRight(buf.String(), "\n")
}

func formatList(items []string) string {
	if len(items) == 0 {
		return ""
	}
	var buf strings.Builder
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		fmt.Fprintf(&buf, "- %s\n", item)
	}
	return strings.TrimRight(buf.String(), "\n")
}

func writeSection(buf *bytes.Buffer, title, body string) {
	if title == "" || strings.TrimSpace(body) == "" {
		return
	}
	buf.WriteString("[")
	buf.WriteString(title)
	buf.WriteString("]\n")
	buf.WriteString(body)
	if !strings.HasSuffix(body, "\n") {
		buf.WriteString("\n")
	}
	buf.WriteString("\n")
}
