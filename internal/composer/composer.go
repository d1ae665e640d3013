// Package composer builds the instruction payload for one scenario simulation.
// Composition is deterministic: the same scenario, mode, mindset and options
// always produce byte-identical payloads.
package composer

import (
	"encoding/json"
	"fmt"
	"strings"

	genai "google.golang.org/genai"

	"dualcore/internal/catalog"
	llmclient "dualcore/internal/llmclient"
	"dualcore/internal/llmtool"
)

// DefaultLanguage is the output language for monologue and action text.
const DefaultLanguage = "Simplified Chinese"

// Output field names, shared with the response parser.
const (
	FieldInternalMonologue = "internalMonologue"
	FieldAction            = "action"
	FieldEnergyLevel       = "energyLevel"
	FieldStressLevel       = "stressLevel"
)

// Input is the JSON block appended after the instruction text.
type Input struct {
	Scenario string               `json:"scenario"`
	Mode     catalog.ThinkingMode `json:"operatingMode"`
	Mindset  catalog.Mindset      `json:"mindsetFilter"`
}

// Payload is everything the simulation client sends for one request.
type Payload struct {
	Prompt string
	Input  Input
	Fields []llmtool.PromptField
	Schema *genai.Schema
}

// Text renders the payload exactly as a provider receives it.
func (p Payload) Text() string {
	s, err := llmclient.RenderRequest(p.Prompt, p.Input)
	if err != nil {
		// Input holds only strings.
		panic(fmt.Sprintf("composer: render input: %v", err))
	}
	return s
}

// ScenarioFrom recovers the scenario from text produced by Payload.Text.
func ScenarioFrom(text string) (string, bool) {
	_, raw, ok := llmclient.SplitRequest(text)
	if !ok {
		return "", false
	}
	var in Input
	if err := json.Unmarshal([]byte(raw), &in); err != nil {
		return "", false
	}
	return in.Scenario, true
}

type options struct {
	language string
}

// Option customizes composition.
type Option func(*options)

// WithLanguage sets the output language; blank keeps DefaultLanguage.
func WithLanguage(lang string) Option {
	return func(o *options) {
		if l := strings.TrimSpace(lang); l != "" {
			o.language = l
		}
	}
}

// Compose builds the payload for scenario under mode and mindset. The scenario
// is embedded verbatim; callers trim and reject blank text beforehand.
func Compose(scenario string, mode catalog.ThinkingMode, mindset catalog.Mindset, opts ...Option) Payload {
	o := options{language: DefaultLanguage}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	md := catalog.DescribeMode(mode)
	ms := catalog.DescribeMindset(mindset)

	fields := OutputFields(md, o.language)
	spec := llmtool.ApplyPresets(llmtool.StructuredPromptSpec{
		Purpose: "You are a cognitive psychology simulator based on Daniel Kahneman's 'Thinking, Fast and Slow' " +
			"and Carol Dweck's 'Mindset'. Simulate how the person in [SCENARIO] reacts, using only the installed " +
			"operating mode and mindset filter below.",
		Background:   background(md, ms),
		Sections:     []llmtool.PromptSection{{Title: "SCENARIO", Body: scenario}},
		OutputFields: fields,
		Constraints: []string{
			"Base the reaction ONLY on this specific combination of operating mode and mindset filter.",
		},
		Rules: []string{
			"internalMonologue is the inner voice in the first person.",
			"action describes observable behavior only.",
		},
		OutputFormat: "A single JSON object with exactly the fields listed in [OUTPUT].",
		Language:     o.language + " for internalMonologue and action.",
	}, llmtool.PresetStrictJSON(), llmtool.PresetInCharacter())

	prompt, err := llmtool.RenderStructuredPrompt(spec)
	if err != nil {
		panic(fmt.Sprintf("composer: invalid prompt spec: %v", err))
	}
	schema, err := llmtool.ResponseSchema(fields)
	if err != nil {
		panic(fmt.Sprintf("composer: invalid output fields: %v", err))
	}
	return Payload{
		Prompt: prompt,
		Input:  Input{Scenario: scenario, Mode: md.Mode, Mindset: ms.Mindset},
		Fields: fields,
		Schema: schema,
	}
}

// OutputFields declares the four result fields. The energy range is guidance
// for the selected mode only.
func OutputFields(md catalog.ModeDescriptor, language string) []llmtool.PromptField {
	return []llmtool.PromptField{
		{Name: FieldInternalMonologue, Type: "string", Required: true,
			Description: "The actual thoughts (inner voice) in " + language + "."},
		{Name: FieldAction, Type: "string", Required: true,
			Description: "The observable behavior in " + language + "."},
		{Name: FieldEnergyLevel, Type: "number", Required: true,
			Description: "Mental energy consumption (0-100). Expected " + md.EnergyRange + " for this operating mode."},
		{Name: FieldStressLevel, Type: "number", Required: true,
			Description: "Emotional stress/anxiety (0-100)."},
	}
}

func background(md catalog.ModeDescriptor, ms catalog.MindsetDescriptor) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Current installed \"software\":\n")
	fmt.Fprintf(&b, "1. OPERATING MODE: %s (%s)\n", md.Mode, md.Gloss)
	fmt.Fprintf(&b, "   - %s\n", md.Framing)
	fmt.Fprintf(&b, "   - %s\n", md.Role)
	fmt.Fprintf(&b, "2. MINDSET FILTER: %s (%s)\n", ms.Mindset, ms.Gloss)
	fmt.Fprintf(&b, "   - %s\n", ms.Framing)
	fmt.Fprintf(&b, "   - %s", ms.Role)
	return b.String()
}
