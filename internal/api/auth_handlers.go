package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/bedside-care/bedside/internal/auth"
	"go.uber.org/zap"
)

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
	Email string `json:"email"`
}

// RegisterHandler handles staff registration
func (api *Api) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.respondError(w, http.StatusBadRequest, "invalid request")
		return
	}

	user, err := api.authSvc.Register(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidEmail) || errors.Is(err, auth.ErrWeakPassword) {
			api.respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		api.logger.Error("registration failed", zap.Error(err))
		api.respondError(w, http.StatusBadRequest, "registration failed")
		return
	}
	api.respondJSON(w, http.StatusCreated, user)
}

// LoginHandler handles staff login and returns a session token
func (api *Api) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.respondError(w, http.StatusBadRequest, "invalid request")
		return
	}

	token, user, err := api.authSvc.Login(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			api.respondError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		api.logger.Error("login failed", zap.Error(err))
		api.respondError(w, http.StatusInternalServerError, "something went wrong")
		return
	}
	api.respondJSON(w, http.StatusOK, loginResponse{Token: token, Email: user.Email})
}
