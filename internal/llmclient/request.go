package llmclient

import (
	"context"
	"fmt"
	"strings"

	genai "google.golang.org/genai"

	"dualcore/internal/util/jsonutil"
)

// InputMarker separates the instruction text from the JSON input block.
const InputMarker = "[INPUT JSON]"

// RenderRequest builds the exact text sent to a provider: the prompt, a blank
// line, the input marker and the indented JSON input.
func RenderRequest(prompt string, input any) (string, error) {
	in, err := jsonutil.MarshalNoEscapeIndent(input)
	if err != nil {
		return "", fmt.Errorf("llm: encode input: %w", err)
	}
	return prompt + "\n\n" + InputMarker + "\n" + string(in), nil
}

// SplitRequest is the inverse of RenderRequest. The JSON block never contains
// a raw newline followed by the marker, so the last occurrence is the real one.
func SplitRequest(text string) (prompt, inputJSON string, ok bool) {
	sep := "\n\n" + InputMarker + "\n"
	i := strings.LastIndex(text, sep)
	if i < 0 {
		return "", "", false
	}
	return text[:i], text[i+len(sep):], true
}

type ctxKeySchema struct{}

// WithResponseSchema attaches the schema the provider should enforce.
func WithResponseSchema(ctx context.Context, schema *genai.Schema) context.Context {
	if schema == nil {
		return ctx
	}
	return context.WithValue(ctx, ctxKeySchema{}, schema)
}

// ResponseSchemaFrom returns the schema stored in the context, if any.
func ResponseSchemaFrom(ctx context.Context) *genai.Schema {
	if v := ctx.Value(ctxKeySchema{}); v != nil {
		if s, ok := v.(*genai.Schema); ok {
			return s
		}
	}
	return nil
}
