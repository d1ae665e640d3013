package simulation

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	genai "google.golang.org/genai"

	"dualcore/internal/catalog"
	"dualcore/internal/composer"
	llmclient "dualcore/internal/llmclient"
)

var wantFallback = Result{
	InternalMonologue: "我现在脑子有点乱，暂时无法处理...",
	Action:            "呆住了，没有任何反应。",
	EnergyLevel:       10,
	StressLevel:       20,
}

func newTestClient(fake *llmclient.FakeClient) *Client {
	return New(Config{APIKey: "test-key"}, fake, nil)
}

func TestSimulate_WellFormedResponseUnchanged(t *testing.T) {
	fake := &llmclient.FakeClient{Reply: json.RawMessage(
		`{"internalMonologue":"测试","action":"测试","energyLevel":15,"stressLevel":20}`)}
	got := newTestClient(fake).Simulate(context.Background(), "考试没考好", catalog.ModeFast, catalog.MindsetFixed)

	want := Result{InternalMonologue: "测试", Action: "测试", EnergyLevel: 15, StressLevel: 20}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("result mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 1, fake.Calls())
}

func TestSimulate_MissingFieldFallsBack(t *testing.T) {
	fake := &llmclient.FakeClient{Reply: json.RawMessage(
		`{"internalMonologue":"测试","action":"测试","energyLevel":15}`)}
	res, err := newTestClient(fake).Run(context.Background(), "x", catalog.ModeFast, catalog.MindsetFixed)

	assert.Equal(t, wantFallback, res)
	assert.ErrorIs(t, err, ErrSchemaViolation)
	assert.Contains(t, err.Error(), composer.FieldStressLevel)
	assert.Empty(t, Advisory(err))
}

func TestSimulate_StructurallyInvalidResponses(t *testing.T) {
	cases := map[string]string{
		"empty body":        ``,
		"whitespace body":   "  \n",
		"not json":          `the model rambled`,
		"null":              `null`,
		"array":             `[1,2]`,
		"number as string":  `{"internalMonologue":"a","action":"b","energyLevel":"15","stressLevel":20}`,
		"string as number":  `{"internalMonologue":1,"action":"b","energyLevel":15,"stressLevel":20}`,
		"blank monologue":   `{"internalMonologue":"  ","action":"b","energyLevel":15,"stressLevel":20}`,
		"missing action":    `{"internalMonologue":"a","energyLevel":15,"stressLevel":20}`,
		"null energy level": `{"internalMonologue":"a","action":"b","energyLevel":null,"stressLevel":20}`,
		"wrong-case key":    `{"internalMonologue":"a","action":"b","energyLevel":1,"StressLevel":2}`,
		"all keys upper":    `{"INTERNALMONOLOGUE":"a","ACTION":"b","ENERGYLEVEL":15,"STRESSLEVEL":20}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			fake := &llmclient.FakeClient{Func: func(context.Context, string, any) (json.RawMessage, error) {
				return json.RawMessage(body), nil
			}}
			res, err := newTestClient(fake).Run(context.Background(), "x", catalog.ModeDeliberate, catalog.MindsetGrowth)
			assert.Equal(t, wantFallback, res)
			assert.Equal(t, ClassSchemaViolation, ClassOf(err))
		})
	}
}

func TestSimulate_NetworkErrorFallsBack(t *testing.T) {
	netErr := errors.New("dial tcp: connection refused")
	fake := &llmclient.FakeClient{Err: netErr}
	c := newTestClient(fake)

	assert.Equal(t, wantFallback, c.Simulate(context.Background(), "x", catalog.ModeFast, catalog.MindsetGrowth))

	_, err := c.Run(context.Background(), "x", catalog.ModeFast, catalog.MindsetGrowth)
	assert.ErrorIs(t, err, ErrTransport)
	assert.ErrorIs(t, err, netErr)
	assert.Equal(t, AdvisoryMessage, Advisory(err))
	assert.Equal(t, 2, fake.Calls(), "no retries")
}

func TestSimulate_NoCredentialSkipsNetwork(t *testing.T) {
	fake := llmclient.NewFakeClient()
	c := New(Config{APIKey: "  "}, fake, nil)

	res, err := c.Run(context.Background(), "x", catalog.ModeFast, catalog.MindsetFixed)
	assert.Equal(t, wantFallback, res)
	assert.ErrorIs(t, err, ErrConfigurationMissing)
	assert.Equal(t, AdvisoryMessage, Advisory(err))
	assert.Equal(t, 0, fake.Calls())
	assert.False(t, c.Configured())

	res, err = New(Config{APIKey: "k"}, nil, nil).Run(context.Background(), "x", catalog.ModeFast, catalog.MindsetFixed)
	assert.Equal(t, wantFallback, res)
	assert.ErrorIs(t, err, ErrConfigurationMissing)
}

func TestSimulate_BlankScenarioRejectedDefensively(t *testing.T) {
	fake := llmclient.NewFakeClient()
	c := newTestClient(fake)
	for _, s := range []string{"", "   ", "\n\t"} {
		res, err := c.Run(context.Background(), s, catalog.ModeFast, catalog.MindsetFixed)
		assert.Equal(t, wantFallback, res)
		assert.ErrorIs(t, err, ErrInvalidInput)
		assert.Empty(t, Advisory(err))
	}
	assert.Equal(t, 0, fake.Calls())
}

func TestSimulate_IdempotentWithoutMemoization(t *testing.T) {
	fake := llmclient.NewFakeClient()
	c := newTestClient(fake)

	a := c.Simulate(context.Background(), "同事批评了我", catalog.ModeDeliberate, catalog.MindsetGrowth)
	b := c.Simulate(context.Background(), "同事批评了我", catalog.ModeDeliberate, catalog.MindsetGrowth)
	assert.Equal(t, a, b)
	assert.Equal(t, 2, fake.Calls(), "every call reaches the service")
	assert.Equal(t, 80, a.EnergyLevel)
}

func TestSimulate_SendsComposedPayloadAndSchema(t *testing.T) {
	var gotSchema *genai.Schema
	fake := &llmclient.FakeClient{Func: func(ctx context.Context, _ string, _ any) (json.RawMessage, error) {
		gotSchema = llmclient.ResponseSchemaFrom(ctx)
		return json.RawMessage(`{"internalMonologue":"a","action":"b","energyLevel":1,"stressLevel":2}`), nil
	}}
	c := New(Config{APIKey: "k", Language: "English"}, fake, nil)
	_, err := c.Run(context.Background(), "  padded scenario  ", catalog.ModeFast, catalog.MindsetGrowth)
	require.NoError(t, err)

	prompt, input := fake.LastRequest()
	want := composer.Compose("padded scenario", catalog.ModeFast, catalog.MindsetGrowth, composer.WithLanguage("English"))
	assert.Equal(t, want.Prompt, prompt)
	assert.Equal(t, want.Input, input)
	require.NotNil(t, gotSchema)
	assert.Equal(t, want.Schema.Required, gotSchema.Required)
}

func TestSimulate_ClampsAndRoundsLevels(t *testing.T) {
	fake := &llmclient.FakeClient{Reply: json.RawMessage(
		`{"internalMonologue":"a","action":"b","energyLevel":140.2,"stressLevel":-3}`)}
	res, err := newTestClient(fake).Run(context.Background(), "x", catalog.ModeDeliberate, catalog.MindsetFixed)
	require.NoError(t, err)
	assert.Equal(t, 100, res.EnergyLevel)
	assert.Equal(t, 0, res.StressLevel)

	fake.Reply = json.RawMessage(`{"internalMonologue":"a","action":"b","energyLevel":72.5,"stressLevel":33.4}`)
	res, err = newTestClient(fake).Run(context.Background(), "x", catalog.ModeDeliberate, catalog.MindsetFixed)
	require.NoError(t, err)
	assert.Equal(t, 73, res.EnergyLevel)
	assert.Equal(t, 33, res.StressLevel)
}

func TestSimulate_UnusableProviderResponseIsSchemaViolation(t *testing.T) {
	for _, providerErr := range []error{llmclient.ErrEmptyResponse, llmclient.ErrInvalidJSON} {
		fake := &llmclient.FakeClient{Err: providerErr}
		res, err := newTestClient(fake).Run(context.Background(), "x", catalog.ModeFast, catalog.MindsetFixed)
		assert.Equal(t, wantFallback, res)
		assert.ErrorIs(t, err, ErrSchemaViolation)
		assert.Empty(t, Advisory(err))
	}
}

func TestSimulate_TimeoutIsTransportFailure(t *testing.T) {
	fake := &llmclient.FakeClient{Func: func(ctx context.Context, _ string, _ any) (json.RawMessage, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}}
	c := New(Config{APIKey: "k", Timeout: 20 * time.Millisecond}, fake, nil)
	res, err := c.Run(context.Background(), "x", catalog.ModeFast, catalog.MindsetFixed)
	assert.Equal(t, wantFallback, res)
	assert.ErrorIs(t, err, ErrTransport)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestSimulate_CallerCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	fake := &llmclient.FakeClient{Func: func(ctx context.Context, _ string, _ any) (json.RawMessage, error) {
		cancel()
		<-ctx.Done()
		return nil, ctx.Err()
	}}
	res, err := newTestClient(fake).Run(ctx, "x", catalog.ModeFast, catalog.MindsetFixed)
	assert.Equal(t, wantFallback, res)
	assert.ErrorIs(t, err, ErrCanceled)
	assert.Empty(t, Advisory(err))
}

func TestSimulate_PanicIsContained(t *testing.T) {
	fake := &llmclient.FakeClient{Func: func(context.Context, string, any) (json.RawMessage, error) {
		panic("provider bug")
	}}
	res, err := newTestClient(fake).Run(context.Background(), "x", catalog.ModeFast, catalog.MindsetFixed)
	assert.Equal(t, wantFallback, res)
	assert.ErrorIs(t, err, ErrTransport)
}

func TestSimulate_DiagnosticRecordOmitsScenario(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	fake := &llmclient.FakeClient{Err: errors.New("503 service unavailable")}
	c := New(Config{APIKey: "k"}, fake, zap.New(core))
	c.Simulate(context.Background(), "very private scenario", catalog.ModeFast, catalog.MindsetFixed)

	records := logs.FilterMessage("simulation fell back").All()
	require.Len(t, records, 1)
	assert.Equal(t, string(ClassTransport), records[0].ContextMap()["class"])
	for _, e := range logs.All() {
		assert.NotContains(t, e.Message, "very private scenario")
		for _, v := range e.ContextMap() {
			if s, ok := v.(string); ok {
				assert.False(t, strings.Contains(s, "very private scenario"))
			}
		}
	}
}

func TestSimulate_ConcurrentCallsDoNotInterfere(t *testing.T) {
	fake := llmclient.NewFakeClient()
	c := newTestClient(fake)

	var wg sync.WaitGroup
	results := make([]Result, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			mode := catalog.ModeFast
			if i%2 == 1 {
				mode = catalog.ModeDeliberate
			}
			results[i] = c.Simulate(context.Background(), "x", mode, catalog.MindsetGrowth)
		}(i)
	}
	wg.Wait()
	for i, r := range results {
		if i%2 == 1 {
			assert.Equal(t, 80, r.EnergyLevel)
		} else {
			assert.Equal(t, 20, r.EnergyLevel)
		}
	}
	assert.Equal(t, 16, fake.Calls())
}

func TestErrorClassification(t *testing.T) {
	err := newError(ClassSchemaViolation, errors.New("bad"))
	assert.Equal(t, ClassSchemaViolation, ClassOf(err))
	assert.Contains(t, err.Error(), "bad")
	assert.Equal(t, Class(""), ClassOf(errors.New("plain")))
	assert.Equal(t, Class(""), ClassOf(nil))
	assert.Equal(t, ErrInvalidInput.Error(), newError(ClassInvalidInput, nil).Error())
}

func TestParseResult_ExactKeysOnly(t *testing.T) {
	_, err := ParseResult(json.RawMessage(`{"INTERNALMONOLOGUE":"a","Action":"b","EnergyLevel":15,"STRESSLEVEL":20}`))
	require.Error(t, err)
	for _, key := range []string{composer.FieldInternalMonologue, composer.FieldAction, composer.FieldEnergyLevel, composer.FieldStressLevel} {
		assert.Contains(t, err.Error(), key)
	}

	res, err := ParseResult(json.RawMessage(
		"```json\n{\"internalMonologue\":\"a\",\"action\":\"b\",\"energyLevel\":140.6,\"stressLevel\":-3,\"extra\":true}\n```"))
	require.NoError(t, err)
	assert.Equal(t, Result{InternalMonologue: "a", Action: "b", EnergyLevel: 100, StressLevel: 0}, res)
}
