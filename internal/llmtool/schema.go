package llmtool

import (
	"fmt"
	"strings"

	genai "google.golang.org/genai"
)

// ResponseSchema converts prompt fields into a genai object schema so the
// service enforces the same shape the prompt declares.
func ResponseSchema(fields []PromptField) (*genai.Schema, error) {
	if len(fields) == 0 {
		return nil, fmt.Errorf("llmtool: output fields are empty")
	}
	schema := &genai.Schema{
		Type:       genai.TypeObject,
		Properties: make(map[string]*genai.Schema, len(fields)),
	}
	for _, f := range fields {
		name := strings.TrimSpace(f.Name)
		if name == "" {
			return nil, fmt.Errorf("llmtool: output field without name")
		}
		typ, err := schemaType(f.Type)
		if err != nil {
			return nil, fmt.Errorf("llmtool: field %s: %w", name, err)
		}
		schema.Properties[name] = &genai.Schema{Type: typ, Description: f.Description}
		schema.PropertyOrdering = append(schema.PropertyOrdering, name)
		if f.Required {
			schema.Required = append(schema.Required, name)
		}
	}
	return schema, nil
}

func schemaType(t string) (genai.Type, error) {
	switch strings.ToLower(strings.TrimSpace(t)) {
	case "string":
		return genai.TypeString, nil
	case "number", "float":
		return genai.TypeNumber, nil
	case "integer", "int":
		return genai.TypeInteger, nil
	case "boolean", "bool":
		return genai.TypeBoolean, nil
	default:
		return "", fmt.Errorf("unsupported type %q", t)
	}
}
