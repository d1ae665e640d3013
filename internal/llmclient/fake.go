package llmclient

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
)

// FakeClient returns deterministic JSON payloads for offline runs and tests.
// Reply and Err take precedence over the built-in canned reactions; Func
// takes precedence over both.
type FakeClient struct {
	Reply json.RawMessage
	Err   error
	Func  func(ctx context.Context, prompt string, input any) (json.RawMessage, error)

	mu         sync.Mutex
	calls      int
	lastPrompt string
	lastInput  any
}

func NewFakeClient() *FakeClient { return &FakeClient{} }

func (f *FakeClient) Name() string { return "FakeLLM" }
func (f *FakeClient) Close() error { return nil }

// Calls returns how many times GenerateJSON reached the fake.
func (f *FakeClient) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// LastRequest returns the most recent prompt and input.
func (f *FakeClient) LastRequest() (string, any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastPrompt, f.lastInput
}

func (f *FakeClient) GenerateJSON(ctx context.Context, prompt string, input any) (json.RawMessage, error) {
	f.mu.Lock()
	f.calls++
	f.lastPrompt = prompt
	f.lastInput = input
	f.mu.Unlock()

	if f.Func != nil {
		return f.Func(ctx, prompt, input)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.Err != nil {
		return nil, f.Err
	}
	if f.Reply != nil {
		return f.Reply, nil
	}
	return cannedReaction(prompt), nil
}

// cannedReaction picks a reply from the installed mode named in the prompt.
func cannedReaction(prompt string) json.RawMessage {
	obj := map[string]any{
		"internalMonologue": "先凭感觉来吧，应该没什么大不了的。",
		"action":            "按照习惯迅速做出反应，没有多想。",
		"energyLevel":       20,
		"stressLevel":       30,
	}
	if strings.Contains(prompt, "OPERATING MODE: SYSTEM_2") {
		obj = map[string]any{
			"internalMonologue": "我需要停下来，把这件事拆开一步一步分析。",
			"action":            "坐下来列出问题的关键点，逐条推敲。",
			"energyLevel":       80,
			"stressLevel":       45,
		}
	}
	b, _ := json.Marshal(obj)
	return json.RawMessage(b)
}
