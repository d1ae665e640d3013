package simulate

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dualcore/internal/catalog"
	llmclient "dualcore/internal/llmclient"
	"dualcore/internal/session"
	"dualcore/internal/simulation"
)

func newService(t *testing.T, fake *llmclient.FakeClient, apiKey string, size int) *Service {
	t.Helper()
	svc, err := New(simulation.New(simulation.Config{APIKey: apiKey}, fake, nil), size, nil)
	require.NoError(t, err)
	t.Cleanup(svc.Close)
	return svc
}

func TestService_Simulate(t *testing.T) {
	fake := &llmclient.FakeClient{Reply: json.RawMessage(`{"internalMonologue":"a","action":"b","energyLevel":12,"stressLevel":34}`)}
	svc := newService(t, fake, "k", 4)

	out, err := svc.Simulate(context.Background(), Request{Scenario: "x", Mode: "system_2", Mindset: "growth"})
	require.NoError(t, err)
	assert.Equal(t, simulation.Result{InternalMonologue: "a", Action: "b", EnergyLevel: 12, StressLevel: 34}, out.Result)
	assert.Empty(t, out.Advisory)

	prompt, _ := fake.LastRequest()
	assert.Contains(t, prompt, "OPERATING MODE: SYSTEM_2")
	assert.Contains(t, prompt, "MINDSET FILTER: GROWTH")
}

func TestService_SimulateDefaultsSelection(t *testing.T) {
	fake := llmclient.NewFakeClient()
	svc := newService(t, fake, "k", 4)

	_, err := svc.Simulate(context.Background(), Request{Scenario: "x"})
	require.NoError(t, err)
	prompt, _ := fake.LastRequest()
	assert.Contains(t, prompt, "OPERATING MODE: SYSTEM_1")
	assert.Contains(t, prompt, "MINDSET FILTER: FIXED")
}

func TestService_SimulateFailureCarriesAdvisory(t *testing.T) {
	fake := &llmclient.FakeClient{Err: errors.New("connection refused")}
	svc := newService(t, fake, "k", 4)

	out, err := svc.Simulate(context.Background(), Request{Scenario: "x"})
	require.NoError(t, err)
	assert.Equal(t, simulation.Fallback(), out.Result)
	assert.Equal(t, simulation.AdvisoryMessage, out.Advisory)
}

func TestService_SimulateRejectsBadRequests(t *testing.T) {
	svc := newService(t, llmclient.NewFakeClient(), "k", 4)

	for name, req := range map[string]Request{
		"blank scenario": {Scenario: "  "},
		"bad mode":       {Scenario: "x", Mode: "SYSTEM_3"},
		"bad mindset":    {Scenario: "x", Mindset: "open"},
	} {
		_, err := svc.Simulate(context.Background(), req)
		assert.ErrorIs(t, err, simulation.ErrInvalidInput, name)
	}
}

func TestService_OpenAndResume(t *testing.T) {
	svc := newService(t, llmclient.NewFakeClient(), "k", 4)

	id, sess, err := svc.Open("")
	require.NoError(t, err)
	require.NotEmpty(t, id)

	again, same, err := svc.Open(id)
	require.NoError(t, err)
	assert.Equal(t, id, again)
	assert.Same(t, sess, same)

	_, _, err = svc.Open("session-missing")
	assert.ErrorIs(t, err, ErrUnknownSession)
}

func TestService_EvictionClosesSession(t *testing.T) {
	svc := newService(t, llmclient.NewFakeClient(), "k", 1)

	_, first, err := svc.Open("")
	require.NoError(t, err)
	_, _, err = svc.Open("")
	require.NoError(t, err)
	assert.Equal(t, 1, svc.Sessions())

	_, err = first.Submit(context.Background(), "x")
	assert.ErrorIs(t, err, session.ErrClosed)
}

func TestService_DropAndClose(t *testing.T) {
	svc := newService(t, llmclient.NewFakeClient(), "k", 4)

	id, sess, err := svc.Open("")
	require.NoError(t, err)
	svc.Drop(id)
	assert.Equal(t, 0, svc.Sessions())
	assert.ErrorIs(t, sess.Reset(), session.ErrClosed)

	_, other, err := svc.Open("")
	require.NoError(t, err)
	svc.Close()
	assert.ErrorIs(t, other.Reset(), session.ErrClosed)
}

func TestService_Catalog(t *testing.T) {
	svc := newService(t, llmclient.NewFakeClient(), "", 4)
	assert.Equal(t, catalog.All(), svc.Catalog())
	assert.False(t, svc.Configured())
}

func TestParseSelection(t *testing.T) {
	mode, mindset, err := ParseSelection("slow", "GROWTH")
	require.NoError(t, err)
	assert.Equal(t, catalog.ModeDeliberate, mode)
	assert.Equal(t, catalog.MindsetGrowth, mindset)
}

func TestResolveSelection_BlankKeepsCurrent(t *testing.T) {
	mode, mindset, err := ResolveSelection(catalog.ModeDeliberate, catalog.MindsetFixed, "", "GROWTH")
	require.NoError(t, err)
	assert.Equal(t, catalog.ModeDeliberate, mode)
	assert.Equal(t, catalog.MindsetGrowth, mindset)

	mode, mindset, err = ResolveSelection(catalog.ModeDeliberate, catalog.MindsetGrowth, "fast", " ")
	require.NoError(t, err)
	assert.Equal(t, catalog.ModeFast, mode)
	assert.Equal(t, catalog.MindsetGrowth, mindset)

	_, _, err = ResolveSelection(catalog.ModeDeliberate, catalog.MindsetGrowth, "", "OPEN")
	assert.ErrorIs(t, err, simulation.ErrInvalidInput)
}
