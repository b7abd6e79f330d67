// Package ipc provides the HTTP API for the battle engine.
package ipc

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/luofeng-dev/jielong-engine/internal/battle"
	"github.com/luofeng-dev/jielong-engine/internal/domain"
	"github.com/luofeng-dev/jielong-engine/internal/verse"
)

// Handler holds all dependencies for the HTTP handlers.
type Handler struct {
	Engine *battle.Engine
	Chain  *verse.ChainValidator
}

// StartBattleRequest is the body for POST /api/v1/battle.
type StartBattleRequest struct {
	PlayerID string `json:"player_id"`
	Mode     string `json:"mode"`
}

// SubmitRequest is the body for POST /api/v1/battle/{battleID}/answer.
type SubmitRequest struct {
	PlayerID string `json:"player_id"`
	Answer   string `json:"answer"`
}

// AbortRequest is the body for POST /api/v1/battle/{battleID}/abort.
type AbortRequest struct {
	PlayerID string `json:"player_id"`
}

// CheckChainRequest is the body for POST /api/v1/chain/check.
type CheckChainRequest struct {
	Previous  string `json:"previous"`
	Candidate string `json:"candidate"`
}

// APIError is a structured error response.
type APIError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Health handles GET /api/v1/health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// StartBattle handles POST /api/v1/battle.
func (h *Handler) StartBattle(w http.ResponseWriter, r *http.Request) {
	var req StartBattleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, APIError{Code: 400, Message: "invalid request body"})
		return
	}
	if req.PlayerID == "" {
		writeJSON(w, http.StatusBadRequest, APIError{Code: 400, Message: "player_id is required"})
		return
	}

	session, err := h.Engine.Start(r.Context(), req.PlayerID, domain.Mode(req.Mode))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, session)
}

// GetBattle handles GET /api/v1/battle/{battleID}.
func (h *Handler) GetBattle(w http.ResponseWriter, r *http.Request) {
	session, err := h.Engine.Get(r.Context(), r.PathValue("battleID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

// SubmitAnswer handles POST /api/v1/battle/{battleID}/answer.
func (h *Handler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	var req SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, APIError{Code: 400, Message: "invalid request body"})
		return
	}
	if req.Answer == "" {
		writeJSON(w, http.StatusBadRequest, APIError{Code: 400, Message: "answer is required"})
		return
	}

	result, err := h.Engine.Submit(r.Context(), r.PathValue("battleID"), req.PlayerID, req.Answer)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// AbortBattle handles POST /api/v1/battle/{battleID}/abort.
func (h *Handler) AbortBattle(w http.ResponseWriter, r *http.Request) {
	var req AbortRequest
	// An empty body is fine; abort needs no parameters beyond the path.
	_ = json.NewDecoder(r.Body).Decode(&req)

	session, err := h.Engine.Abort(r.Context(), r.PathValue("battleID"), req.PlayerID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

// ListRounds handles GET /api/v1/battle/{battleID}/rounds.
func (h *Handler) ListRounds(w http.ResponseWriter, r *http.Request) {
	rounds, err := h.Engine.Rounds(r.Context(), r.PathValue("battleID"))
	if err != nil {
		writeError(w, err)
		return
	}
	if rounds == nil {
		rounds = []domain.RoundRecord{}
	}
	writeJSON(w, http.StatusOK, rounds)
}

// CheckChain handles POST /api/v1/chain/check, exposing the chain rule
// directly for clients that want to pre-validate input.
func (h *Handler) CheckChain(w http.ResponseWriter, r *http.Request) {
	var req CheckChainRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, APIError{Code: 400, Message: "invalid request body"})
		return
	}

	previous, ok := verse.NewVerse(req.Previous)
	if !ok {
		writeJSON(w, http.StatusBadRequest, APIError{Code: 400, Message: "previous has no usable content"})
		return
	}
	candidate, ok := verse.NewVerse(req.Candidate)
	if !ok {
		writeJSON(w, http.StatusBadRequest, APIError{Code: 400, Message: "candidate has no usable content"})
		return
	}

	judgment, err := h.Chain.Validate(previous, candidate)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, judgment)
}

// Rankings handles GET /api/v1/rankings?limit=N.
func (h *Handler) Rankings(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if s := r.URL.Query().Get("limit"); s != "" {
		parsed, err := strconv.Atoi(s)
		if err == nil && parsed > 0 {
			limit = parsed
		}
	}

	entries, err := h.Engine.Rankings(r.Context(), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	if entries == nil {
		entries = []domain.RankingEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	if engErr, ok := err.(*domain.EngineError); ok {
		status := http.StatusInternalServerError
		switch engErr.Code {
		case domain.ErrBattleNotFound.Code:
			status = http.StatusNotFound
		case domain.ErrBattleTerminal.Code, domain.ErrBattleNotActive.Code:
			status = http.StatusConflict
		case domain.ErrNotSessionOwner.Code:
			status = http.StatusForbidden
		case domain.ErrEmptyAnswer.Code, domain.ErrInvalidMode.Code, domain.ErrInvalidTransition.Code:
			status = http.StatusUnprocessableEntity
		case domain.ErrGeneratorUnavailable.Code, domain.ErrGeneratorGaveUp.Code, domain.ErrNoPoemAvailable.Code:
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, APIError{Code: engErr.Code, Message: engErr.Message})
		return
	}
	writeJSON(w, http.StatusInternalServerError, APIError{Code: -1, Message: err.Error()})
}
