// Package session holds the state of one interaction surface: the selected
// mode and mindset, the single outstanding simulation and its settled result.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"dualcore/internal/catalog"
	"dualcore/internal/simulation"
)

// State is the lifecycle of the most recent submission.
type State int

const (
	Idle State = iota
	InFlight
	Succeeded
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case InFlight:
		return "in_flight"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *State) UnmarshalText(b []byte) error {
	for _, st := range []State{Idle, InFlight, Succeeded, Failed} {
		if st.String() == string(b) {
			*s = st
			return nil
		}
	}
	return fmt.Errorf("session: unknown state %q", b)
}

var (
	ErrBusy   = errors.New("session: a simulation is already in flight")
	ErrClosed = errors.New("session: closed")
)

// Simulator runs one simulation. *simulation.Client implements it.
type Simulator interface {
	Run(ctx context.Context, scenario string, mode catalog.ThinkingMode, mindset catalog.Mindset) (simulation.Result, error)
}

// Snapshot is an immutable view of a session. Result is nil until a
// submission settles and is cleared again by Submit, Cancel and Reset.
type Snapshot struct {
	State    State                `json:"state"`
	Mode     catalog.ThinkingMode `json:"mode"`
	Mindset  catalog.Mindset      `json:"mindset"`
	Result   *simulation.Result   `json:"result,omitempty"`
	Advisory string               `json:"advisory,omitempty"`
	// InFlight mirrors State == InFlight for consumers that only need the
	// loading indicator.
	InFlight bool `json:"inFlight"`
	// Seq increases on every transition.
	Seq uint64 `json:"seq"`
}

type Option func(*Session)

func WithLogger(l *zap.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.log = l
		}
	}
}

// WithSelection overrides the initial FAST/FIXED selection.
func WithSelection(mode catalog.ThinkingMode, mindset catalog.Mindset) Option {
	return func(s *Session) {
		s.snap.Mode = catalog.DescribeMode(mode).Mode
		s.snap.Mindset = catalog.DescribeMindset(mindset).Mindset
	}
}

const subscriberBuffer = 8

type Session struct {
	sim Simulator
	log *zap.Logger

	mu     sync.Mutex
	snap   Snapshot
	gen    uint64
	cancel context.CancelFunc
	subs   map[chan Snapshot]struct{}
	closed bool
	done   chan struct{}
	wg     sync.WaitGroup
}

func New(sim Simulator, opts ...Option) *Session {
	s := &Session{
		sim: sim,
		log: zap.NewNop(),
		snap: Snapshot{
			State:   Idle,
			Mode:    catalog.ModeFast,
			Mindset: catalog.MindsetFixed,
		},
		subs: make(map[chan Snapshot]struct{}),
		done: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap
}

// Select changes the mode and mindset used by the next submission. An
// outstanding request keeps the values it was submitted with.
func (s *Session) Select(mode catalog.ThinkingMode, mindset catalog.Mindset) error {
	if !mode.Valid() || !mindset.Valid() {
		return simulation.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if s.snap.Mode == mode && s.snap.Mindset == mindset {
		return nil
	}
	s.snap.Mode, s.snap.Mindset = mode, mindset
	s.publishLocked()
	return nil
}

// Submit starts a simulation for scenario with the current selection. The
// returned channel is closed once the request has settled or been discarded.
func (s *Session) Submit(ctx context.Context, scenario string) (<-chan struct{}, error) {
	if strings.TrimSpace(scenario) == "" {
		return nil, simulation.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}
	if s.snap.State == InFlight {
		return nil, ErrBusy
	}

	s.gen++
	gen := s.gen
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	mode, mindset := s.snap.Mode, s.snap.Mindset

	s.snap.State = InFlight
	s.snap.Result = nil
	s.snap.Advisory = ""
	s.publishLocked()

	done := make(chan struct{})
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer close(done)
		defer cancel()
		res, err := s.sim.Run(runCtx, scenario, mode, mindset)
		s.settle(gen, res, err)
	}()
	return done, nil
}

func (s *Session) settle(gen uint64, res simulation.Result, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen || s.snap.State != InFlight {
		s.log.Debug("discarding stale simulation result", zap.Uint64("gen", gen))
		return
	}
	s.cancel = nil
	if simulation.ClassOf(err) == simulation.ClassCanceled {
		s.snap.State = Idle
		s.publishLocked()
		return
	}
	s.snap.Result = &res
	s.snap.Advisory = simulation.Advisory(err)
	if s.snap.Advisory != "" {
		s.snap.State = Failed
	} else {
		s.snap.State = Succeeded
	}
	s.publishLocked()
}

// Cancel abandons the outstanding request. Its result is never delivered.
// It reports whether there was anything to cancel.
func (s *Session) Cancel() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snap.State != InFlight {
		return false
	}
	s.abortLocked()
	s.snap.State = Idle
	s.publishLocked()
	return true
}

// Reset clears a settled result back to Idle.
func (s *Session) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if s.snap.State == InFlight {
		return ErrBusy
	}
	if s.snap.State == Idle && s.snap.Result == nil {
		return nil
	}
	s.snap.State = Idle
	s.snap.Result = nil
	s.snap.Advisory = ""
	s.publishLocked()
	return nil
}

// Subscribe streams snapshots, starting with the current one. Slow readers
// lose intermediate snapshots but always observe the latest. The channel is
// closed when ctx is done or the session is closed.
func (s *Session) Subscribe(ctx context.Context) <-chan Snapshot {
	ch := make(chan Snapshot, subscriberBuffer)
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		close(ch)
		return ch
	}
	ch <- s.snap
	s.subs[ch] = struct{}{}
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		select {
		case <-ctx.Done():
		case <-s.done:
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		if _, ok := s.subs[ch]; ok {
			delete(s.subs, ch)
			close(ch)
		}
	}()
	return ch
}

// Close cancels any outstanding request, closes all subscriptions and waits
// for background goroutines to exit.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	close(s.done)
	s.abortLocked()
	if s.snap.State == InFlight {
		s.snap.State = Idle
		s.snap.InFlight = false
	}
	for ch := range s.subs {
		delete(s.subs, ch)
		close(ch)
	}
	s.mu.Unlock()
	s.wg.Wait()
}

func (s *Session) abortLocked() {
	s.gen++
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

func (s *Session) publishLocked() {
	s.snap.InFlight = s.snap.State == InFlight
	s.snap.Seq++
	for ch := range s.subs {
		push(ch, s.snap)
	}
}

// push never blocks: when the buffer is full the oldest snapshot is dropped.
func push(ch chan Snapshot, snap Snapshot) {
	select {
	case ch <- snap:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- snap:
	default:
	}
}
