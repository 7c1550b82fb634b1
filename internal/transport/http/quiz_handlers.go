package http

import (
	"net/http"

	"cquiz-service/internal/app"
	"cquiz-service/internal/auth"
	"cquiz-service/internal/domain"
)

type answerRequest struct {
	QuestionID string `json:"questionId"`
	Option     string `json:"option"`
}

type navigateRequest struct {
	Direction string `json:"direction"`
}

type resultResponse struct {
	Result  domain.QuizResult    `json:"result"`
	Summary domain.ResultSummary `json:"summary"`
}

func (h *handlers) startQuiz(w http.ResponseWriter, r *http.Request) {
	who, _ := auth.IdentityFromContext(r.Context())
	writeJSON(w, http.StatusCreated, h.quiz.Start(r.Context(), who))
}

func (h *handlers) resumeQuiz(w http.ResponseWriter, r *http.Request) {
	who, _ := auth.IdentityFromContext(r.Context())
	view, err := h.quiz.Resume(r.Context(), who)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *handlers) abandonQuiz(w http.ResponseWriter, r *http.Request) {
	who, _ := auth.IdentityFromContext(r.Context())
	if err := h.quiz.Abandon(r.Context(), who); err != nil {
		h.log.Warn("abandon quiz", "user", who.Email, "err", err)
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) selectAnswer(w http.ResponseWriter, r *http.Request) {
	who, _ := auth.IdentityFromContext(r.Context())
	var req answerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid answer payload")
		return
	}
	view, err := h.quiz.SelectAnswer(r.Context(), who, req.QuestionID, req.Option)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *handlers) navigate(w http.ResponseWriter, r *http.Request) {
	who, _ := auth.IdentityFromContext(r.Context())
	var req navigateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid navigate payload")
		return
	}
	dir, err := app.ParseDirection(req.Direction)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	view, err := h.quiz.Navigate(r.Context(), who, dir)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *handlers) checkpoint(w http.ResponseWriter, r *http.Request) {
	who, _ := auth.IdentityFromContext(r.Context())
	if err := h.quiz.Checkpoint(r.Context(), who); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) submitQuiz(w http.ResponseWriter, r *http.Request) {
	who, _ := auth.IdentityFromContext(r.Context())
	result, err := h.quiz.Submit(r.Context(), who)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resultResponse{Result: result, Summary: app.Summarize(result)})
}
