package simulation

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"dualcore/internal/composer"
	"dualcore/internal/util/jsonutil"
)

// Result is one simulated reaction. All four fields are always populated.
type Result struct {
	InternalMonologue string `json:"internalMonologue" yaml:"internalMonologue"`
	Action            string `json:"action" yaml:"action"`
	EnergyLevel       int    `json:"energyLevel" yaml:"energyLevel"`
	StressLevel       int    `json:"stressLevel" yaml:"stressLevel"`
}

// Fallback is the fixed "cognitive overload" reaction used for every failure.
func Fallback() Result {
	return Result{
		InternalMonologue: "我现在脑子有点乱，暂时无法处理...",
		Action:            "呆住了，没有任何反应。",
		EnergyLevel:       10,
		StressLevel:       20,
	}
}

// ParseResult validates a model response against the result schema. Keys
// must match exactly; encoding/json's case-insensitive field matching is not
// used. Numeric levels are rounded and clamped to [0,100].
func ParseResult(raw json.RawMessage) (Result, error) {
	var doc map[string]json.RawMessage
	if err := jsonutil.UnmarshalFlex(raw, &doc); err != nil {
		return Result{}, err
	}
	var missing []string
	monologue, ok := textField(doc, composer.FieldInternalMonologue)
	if !ok {
		missing = append(missing, composer.FieldInternalMonologue)
	}
	action, ok := textField(doc, composer.FieldAction)
	if !ok {
		missing = append(missing, composer.FieldAction)
	}
	energy, ok := numberField(doc, composer.FieldEnergyLevel)
	if !ok {
		missing = append(missing, composer.FieldEnergyLevel)
	}
	stress, ok := numberField(doc, composer.FieldStressLevel)
	if !ok {
		missing = append(missing, composer.FieldStressLevel)
	}
	if len(missing) > 0 {
		return Result{}, fmt.Errorf("missing or invalid fields: %s", strings.Join(missing, ", "))
	}
	return Result{
		InternalMonologue: monologue,
		Action:            action,
		EnergyLevel:       level(energy),
		StressLevel:       level(stress),
	}, nil
}

func textField(doc map[string]json.RawMessage, key string) (string, bool) {
	v, ok := doc[key]
	if !ok {
		return "", false
	}
	var s *string
	if err := json.Unmarshal(v, &s); err != nil || s == nil || strings.TrimSpace(*s) == "" {
		return "", false
	}
	return *s, true
}

func numberField(doc map[string]json.RawMessage, key string) (float64, bool) {
	v, ok := doc[key]
	if !ok {
		return 0, false
	}
	var n *float64
	if err := json.Unmarshal(v, &n); err != nil || n == nil {
		return 0, false
	}
	return *n, true
}

func level(v float64) int {
	return int(math.Max(0, math.Min(100, math.Round(v))))
}
