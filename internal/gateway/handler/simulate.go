package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	gatewaysimulate "dualcore/internal/gateway/service/simulate"
	"dualcore/internal/simulation"
	"dualcore/internal/util/jsonutil"
)

const maxRequestBody = 64 << 10

type SimulateHandler struct {
	svc *gatewaysimulate.Service
	log *zap.Logger
}

func NewSimulateHandler(svc *gatewaysimulate.Service, logger *zap.Logger) *SimulateHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SimulateHandler{svc: svc, log: logger}
}

func (h *SimulateHandler) HandleCatalog(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	h.writeJSON(w, http.StatusOK, h.svc.Catalog())
}

func (h *SimulateHandler) HandleSimulate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var in gatewaysimulate.Request
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody)).Decode(&in); err != nil {
		h.writeJSON(w, http.StatusBadRequest, errorBody{Code: "invalid_argument", Message: "invalid json body"})
		return
	}
	out, err := h.svc.Simulate(r.Context(), in)
	if err != nil {
		if errors.Is(err, simulation.ErrInvalidInput) {
			h.writeJSON(w, http.StatusBadRequest, errorBody{Code: "invalid_argument", Message: err.Error()})
			return
		}
		h.log.Error("simulate failed", zap.Error(err))
		h.writeJSON(w, http.StatusInternalServerError, errorBody{Code: "internal", Message: "internal error"})
		return
	}
	h.writeJSON(w, http.StatusOK, out)
}

func (h *SimulateHandler) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]any{
		"ok":         true,
		"configured": h.svc.Configured(),
		"sessions":   h.svc.Sessions(),
	})
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (h *SimulateHandler) writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := jsonutil.MarshalNoEscape(v)
	if err != nil {
		h.log.Error("encode response", zap.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
