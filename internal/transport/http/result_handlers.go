package http

import (
	"bytes"
	"net/http"
	"strings"

	"cquiz-service/internal/app"
	"cquiz-service/internal/auth"
	"cquiz-service/internal/domain"
	"cquiz-service/internal/export"
	"github.com/go-chi/chi/v5"
)

type resultsResponse struct {
	Results []domain.QuizResult `json:"results"`
}

type deleteResponse struct {
	Deleted int `json:"deleted"`
}

func (h *handlers) listMyResults(w http.ResponseWriter, r *http.Request) {
	who, _ := auth.IdentityFromContext(r.Context())
	results, err := h.results.ListMine(r.Context(), who)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resultsResponse{Results: results})
}

func (h *handlers) getResult(w http.ResponseWriter, r *http.Request) {
	who, _ := auth.IdentityFromContext(r.Context())
	result, err := h.results.Get(r.Context(), who, h.policy.IsAdmin(who), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resultResponse{Result: result, Summary: app.Summarize(result)})
}

func (h *handlers) listAllResults(w http.ResponseWriter, r *http.Request) {
	results, err := h.results.ListAll(r.Context(), resultQuery(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resultsResponse{Results: results})
}

func (h *handlers) exportResults(w http.ResponseWriter, r *http.Request) {
	results, err := h.results.ListAll(r.Context(), resultQuery(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, results); err != nil {
		h.log.Error("export results", "err", err)
		writeError(w, http.StatusInternalServerError, "request failed")
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.FileName(h.now())+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// deleteResults removes one user's results (?email=) or, with ?all=true,
// every result.
func (h *handlers) deleteResults(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.URL.Query().Get("email"))
	var (
		n   int
		err error
	)
	switch {
	case email != "":
		n, err = h.results.DeleteByUser(r.Context(), email)
	case parseBoolParam(r, "all"):
		n, err = h.results.DeleteAll(r.Context())
	default:
		writeError(w, http.StatusBadRequest, "email or all=true is required")
		return
	}
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, deleteResponse{Deleted: n})
}

func resultQuery(r *http.Request) app.ResultQuery {
	q := r.URL.Query()
	return app.ResultQuery{
		Term:      q.Get("q"),
		SortField: q.Get("sort"),
		Ascending: strings.EqualFold(q.Get("order"), "asc"),
	}
}
