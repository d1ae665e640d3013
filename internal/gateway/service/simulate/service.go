package simulate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"dualcore/internal/catalog"
	"dualcore/internal/session"
	"dualcore/internal/simulation"
)

var ErrUnknownSession = errors.New("unknown session")

type Request struct {
	Scenario string `json:"scenario"`
	Mode     string `json:"mode"`
	Mindset  string `json:"mindset"`
}

type Response struct {
	Result   simulation.Result `json:"result"`
	Advisory string            `json:"advisory,omitempty"`
}

// Service backs the gateway handlers. One-shot simulations go straight to
// the client; interactive surfaces get a session.Session held in an LRU.
type Service struct {
	client   *simulation.Client
	log      *zap.Logger
	sessions *lru.Cache[string, *session.Session]
	seq      atomic.Uint64
}

func New(client *simulation.Client, cacheSize int, logger *zap.Logger) (*Service, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{client: client, log: logger}
	cache, err := lru.NewWithEvict[string, *session.Session](cacheSize, func(id string, sess *session.Session) {
		s.log.Debug("session closed", zap.String("session_id", id))
		sess.Close()
	})
	if err != nil {
		return nil, fmt.Errorf("session cache: %w", err)
	}
	s.sessions = cache
	return s, nil
}

func (s *Service) Catalog() catalog.Catalog {
	return catalog.All()
}

func (s *Service) Configured() bool {
	return s.client.Configured()
}

// Simulate runs one stateless request. Only a malformed request is an error;
// every simulation failure is folded into the fallback result and advisory.
func (s *Service) Simulate(ctx context.Context, req Request) (Response, error) {
	mode, mindset, err := ParseSelection(req.Mode, req.Mindset)
	if err != nil {
		return Response{}, err
	}
	if strings.TrimSpace(req.Scenario) == "" {
		return Response{}, fmt.Errorf("%w: scenario is required", simulation.ErrInvalidInput)
	}
	res, runErr := s.client.Run(ctx, req.Scenario, mode, mindset)
	return Response{Result: res, Advisory: simulation.Advisory(runErr)}, nil
}

// Open returns the session registered under id. An empty id creates a new
// session; an id that was evicted or never issued is ErrUnknownSession.
func (s *Service) Open(id string) (string, *session.Session, error) {
	id = strings.TrimSpace(id)
	if id != "" {
		if sess, ok := s.sessions.Get(id); ok {
			return id, sess, nil
		}
		return "", nil, fmt.Errorf("%w: %s", ErrUnknownSession, id)
	}
	id = s.newSessionID()
	sess := session.New(s.client, session.WithLogger(s.log.Named("session").With(zap.String("session_id", id))))
	s.sessions.Add(id, sess)
	return id, sess, nil
}

// Drop closes and forgets one session.
func (s *Service) Drop(id string) {
	s.sessions.Remove(id)
}

func (s *Service) Sessions() int {
	return s.sessions.Len()
}

// Close closes every live session.
func (s *Service) Close() {
	s.sessions.Purge()
}

func (s *Service) newSessionID() string {
	return fmt.Sprintf("session-%d-%d", time.Now().UnixNano(), s.seq.Add(1))
}

// ParseSelection resolves wire or alias spellings; blanks select the defaults.
func ParseSelection(rawMode, rawMindset string) (catalog.ThinkingMode, catalog.Mindset, error) {
	return ResolveSelection(catalog.ModeFast, catalog.MindsetFixed, rawMode, rawMindset)
}

// ResolveSelection is ParseSelection with mode and mindset standing in for
// blank fields.
func ResolveSelection(mode catalog.ThinkingMode, mindset catalog.Mindset, rawMode, rawMindset string) (catalog.ThinkingMode, catalog.Mindset, error) {
	var err error
	if strings.TrimSpace(rawMode) != "" {
		if mode, err = catalog.ParseMode(rawMode); err != nil {
			return "", "", fmt.Errorf("%w: %v", simulation.ErrInvalidInput, err)
		}
	}
	if strings.TrimSpace(rawMindset) != "" {
		if mindset, err = catalog.ParseMindset(rawMindset); err != nil {
			return "", "", fmt.Errorf("%w: %v", simulation.ErrInvalidInput, err)
		}
	}
	return mode, mindset, nil
}
