package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/bedside-care/bedside/internal/demo"
	"go.uber.org/zap"
)

type demoSignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// DemoSignupHandler starts a fresh time-boxed trial session
func (api *Api) DemoSignupHandler(w http.ResponseWriter, r *http.Request) {
	var req demoSignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.respondError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if req.Email == "" || req.Password == "" {
		api.respondError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	user, err := api.guard.Signup(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, demo.ErrSessionActive) {
			api.respondError(w, http.StatusConflict, "a demo session is already active")
			return
		}
		api.logger.Error("demo signup failed", zap.Error(err))
		api.respondError(w, http.StatusInternalServerError, "something went wrong")
		return
	}
	api.respondJSON(w, http.StatusCreated, user)
}

// DemoStatusHandler reports the current trial session state. Hitting this
// endpoint also re-evaluates expiry, so an expired session is purged on read.
func (api *Api) DemoStatusHandler(w http.ResponseWriter, r *http.Request) {
	status, err := api.guard.Evaluate(r.Context())
	if err != nil {
		api.logger.Error("demo status evaluation failed", zap.Error(err))
		api.respondError(w, http.StatusInternalServerError, "something went wrong")
		return
	}
	api.respondJSON(w, http.StatusOK, status)
}
