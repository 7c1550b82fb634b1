package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"cquiz-service/internal/auth"
	"cquiz-service/internal/domain"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, errorResponse{Error: message})
}

// writeServiceError maps use-case errors onto HTTP statuses. Store failures
// keep their generic "failed to ..." text.
func writeServiceError(w http.ResponseWriter, err error) {
	var authErr *auth.Error
	var storeErr *domain.StoreError
	switch {
	case errors.As(err, &authErr):
		writeJSON(w, authStatus(authErr.Code), errorResponse{Error: authErr.Error(), Code: authErr.Code})
	case errors.Is(err, domain.ErrSessionNotFound), errors.Is(err, domain.ErrResultNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrSessionClosed), errors.Is(err, domain.ErrAlreadySubmitted):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrQuestionNotFound),
		errors.Is(err, domain.ErrOptionNotFound),
		errors.Is(err, domain.ErrInvalidDirection):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &storeErr):
		writeError(w, http.StatusBadGateway, storeErr.Error())
	default:
		writeError(w, http.StatusInternalServerError, "request failed")
	}
}

func authStatus(code string) int {
	switch code {
	case auth.CodeUserNotFound, auth.CodeWrongPassword, auth.CodeInvalidToken:
		return http.StatusUnauthorized
	case auth.CodeEmailInUse:
		return http.StatusConflict
	case auth.CodeUserDisabled:
		return http.StatusForbidden
	case auth.CodeTooManyRequests:
		return http.StatusTooManyRequests
	default:
		return http.StatusBadRequest
	}
}

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func parseBoolParam(r *http.Request, key string) bool {
	value := strings.ToLower(strings.TrimSpace(r.URL.Query().Get(key)))
	return value == "1" || value == "true" || value == "yes"
}
