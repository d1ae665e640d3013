package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	gatewaysimulate "dualcore/internal/gateway/service/simulate"
	"dualcore/internal/session"
	"dualcore/internal/simulation"
)

// SessionHandler binds one websocket connection to one session.Session.
// Several connections may share a session through session_id. A submission
// runs under the submitting connection's context, so closing that connection
// cancels it while other connections leave it alone. An explicit cancel
// message cancels whatever request is outstanding, whoever submitted it.
type SessionHandler struct {
	svc *gatewaysimulate.Service
	log *zap.Logger
}

func NewSessionHandler(svc *gatewaysimulate.Service, logger *zap.Logger) *SessionHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionHandler{svc: svc, log: logger}
}

const (
	sessionWSWriteWait = 10 * time.Second
	sessionWSPongWait  = 60 * time.Second
	sessionWSPingEvery = (sessionWSPongWait * 9) / 10
	sessionWSReadLimit = 64 << 10
)

var sessionWSUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(_ *http.Request) bool {
		return true
	},
}

type sessionWSInbound struct {
	Type     string `json:"type"`
	Mode     string `json:"mode,omitempty"`
	Mindset  string `json:"mindset,omitempty"`
	Scenario string `json:"scenario,omitempty"`
}

type sessionWSOutbound struct {
	Type      string            `json:"type"`
	SessionID string            `json:"sessionId,omitempty"`
	State     *session.Snapshot `json:"state,omitempty"`
	Code      string            `json:"code,omitempty"`
	Message   string            `json:"message,omitempty"`
}

func (h *SessionHandler) HandleSessionWS(w http.ResponseWriter, r *http.Request) {
	requested := strings.TrimSpace(r.URL.Query().Get("session_id"))
	id, sess, err := h.svc.Open(requested)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	conn, err := sessionWSUpgrader.Upgrade(w, r, nil)
	if err != nil {
		if requested == "" {
			h.svc.Drop(id)
		}
		return
	}
	defer conn.Close()
	conn.SetReadLimit(sessionWSReadLimit)

	log := h.log.With(zap.String("session_id", id))
	if err := conn.SetReadDeadline(time.Now().Add(sessionWSPongWait)); err != nil {
		log.Warn("session ws set read deadline failed", zap.Error(err))
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(sessionWSPongWait))
	})

	g, ctx := errgroup.WithContext(r.Context())
	writeCh := make(chan sessionWSOutbound, 32)
	pushSessionWS(writeCh, sessionWSOutbound{Type: "session", SessionID: id})

	g.Go(func() error {
		ticker := time.NewTicker(sessionWSPingEvery)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case out := <-writeCh:
				if err := conn.SetWriteDeadline(time.Now().Add(sessionWSWriteWait)); err != nil {
					return err
				}
				if err := conn.WriteJSON(out); err != nil {
					return err
				}
			case <-ticker.C:
				if err := conn.SetWriteDeadline(time.Now().Add(sessionWSWriteWait)); err != nil {
					return err
				}
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return err
				}
			}
		}
	})

	updates := sess.Subscribe(ctx)
	g.Go(func() error {
		for snap := range updates {
			pushSessionWS(writeCh, sessionWSOutbound{Type: "state", SessionID: id, State: &snap})
		}
		return errSessionClosed
	})

	// ReadJSON does not observe ctx; closing the conn unblocks it.
	g.Go(func() error {
		<-ctx.Done()
		return conn.Close()
	})

	g.Go(func() error {
		for {
			var in sessionWSInbound
			if err := conn.ReadJSON(&in); err != nil {
				return err
			}
			if out, ok := h.dispatch(ctx, sess, in); ok {
				pushSessionWS(writeCh, out)
			}
		}
	})

	err = g.Wait()
	if errors.Is(err, errSessionClosed) {
		log.Debug("session ws closed by session")
	} else if err != nil && !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) && !errors.Is(err, context.Canceled) {
		log.Debug("session ws ended", zap.Error(err))
	}
}

var errSessionClosed = errors.New("session closed")

func (h *SessionHandler) dispatch(ctx context.Context, sess *session.Session, in sessionWSInbound) (sessionWSOutbound, bool) {
	switch strings.ToLower(strings.TrimSpace(in.Type)) {
	case "":
		return wsError("invalid_argument", "type is required"), true
	case "ping":
		return sessionWSOutbound{Type: "pong"}, true
	case "select":
		cur := sess.Snapshot()
		mode, mindset, err := gatewaysimulate.ResolveSelection(cur.Mode, cur.Mindset, in.Mode, in.Mindset)
		if err == nil {
			err = sess.Select(mode, mindset)
		}
		return wsErrorFor(err)
	case "submit":
		_, err := sess.Submit(ctx, in.Scenario)
		return wsErrorFor(err)
	case "cancel":
		sess.Cancel()
		return sessionWSOutbound{}, false
	case "reset":
		return wsErrorFor(sess.Reset())
	default:
		return wsError("invalid_argument", "unsupported type: "+in.Type), true
	}
}

func wsErrorFor(err error) (sessionWSOutbound, bool) {
	switch {
	case err == nil:
		return sessionWSOutbound{}, false
	case errors.Is(err, session.ErrBusy):
		return wsError("busy", err.Error()), true
	case errors.Is(err, simulation.ErrInvalidInput):
		return wsError("invalid_argument", err.Error()), true
	case errors.Is(err, session.ErrClosed):
		return wsError("unavailable", err.Error()), true
	default:
		return wsError("internal", err.Error()), true
	}
}

func wsError(code, msg string) sessionWSOutbound {
	return sessionWSOutbound{Type: "error", Code: code, Message: msg}
}

// pushSessionWS never blocks; the oldest queued message is dropped when full.
func pushSessionWS(writeCh chan sessionWSOutbound, out sessionWSOutbound) {
	select {
	case writeCh <- out:
		return
	default:
	}
	select {
	case <-writeCh:
	default:
	}
	select {
	case writeCh <- out:
	default:
	}
}
