package http

import (
	"net/http"

	"cquiz-service/internal/auth"
	"cquiz-service/internal/domain"
)

type credentialsRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName,omitempty"`
}

type identityResponse struct {
	UID         string `json:"uid"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName,omitempty"`
	Admin       bool   `json:"admin"`
}

type tokenResponse struct {
	Token string           `json:"token"`
	User  identityResponse `json:"user"`
}

func (h *handlers) signUp(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid signup payload")
		return
	}
	who, err := h.auth.SignUp(r.Context(), req.Email, req.Password, req.DisplayName)
	if err != nil {
		h.log.Warn("signup failed", "email", req.Email, "code", auth.CodeOf(err), "err", err)
		writeServiceError(w, err)
		return
	}
	h.log.Info("user signed up", "user", who.Email)
	h.writeToken(w, http.StatusCreated, who)
}

func (h *handlers) signIn(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid login payload")
		return
	}
	who, err := h.auth.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		h.log.Warn("login failed", "email", req.Email, "code", auth.CodeOf(err))
		writeServiceError(w, err)
		return
	}
	h.writeToken(w, http.StatusOK, who)
}

func (h *handlers) me(w http.ResponseWriter, r *http.Request) {
	who, _ := auth.IdentityFromContext(r.Context())
	writeJSON(w, http.StatusOK, h.identity(who))
}

func (h *handlers) writeToken(w http.ResponseWriter, status int, who domain.Identity) {
	token, err := h.auth.IssueToken(who)
	if err != nil {
		h.log.Error("issue token", "user", who.Email, "err", err)
		writeError(w, http.StatusInternalServerError, "request failed")
		return
	}
	writeJSON(w, status, tokenResponse{Token: token, User: h.identity(who)})
}

func (h *handlers) identity(who domain.Identity) identityResponse {
	return identityResponse{
		UID:         who.UID,
		Email:       who.Email,
		DisplayName: who.DisplayName,
		Admin:       h.policy.IsAdmin(who),
	}
}
