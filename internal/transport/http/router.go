package http

import (
	"log/slog"
	"net/http"
	"time"

	"cquiz-service/internal/app"
	"cquiz-service/internal/auth"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Deps are the collaborators the HTTP surface is wired to.
type Deps struct {
	Quiz        *app.QuizService
	Results     *app.ResultService
	Auth        *auth.Service
	Policy      auth.Policy
	Log         *slog.Logger
	CORSOrigins []string
	Now         func() time.Time
}

type handlers struct {
	quiz    *app.QuizService
	results *app.ResultService
	auth    *auth.Service
	policy  auth.Policy
	log     *slog.Logger
	now     func() time.Time
}

// NewRouter mounts the REST API and the websocket endpoint.
func NewRouter(d Deps) http.Handler {
	if d.Log == nil {
		d.Log = slog.Default()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	h := &handlers{
		quiz:    d.Quiz,
		results: d.Results,
		auth:    d.Auth,
		policy:  d.Policy,
		log:     d.Log,
		now:     d.Now,
	}
	ws := NewWSHandler(d.Quiz, d.Log)

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer)
	if len(d.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   d.CORSOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Authorization", "Content-Type"},
			ExposedHeaders:   []string{"Content-Disposition"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Post("/auth/signup", h.signUp)
	r.Post("/auth/login", h.signIn)

	r.Group(func(pr chi.Router) {
		pr.Use(authenticate(d.Auth))

		pr.Get("/auth/me", h.me)

		pr.Route("/quiz", func(qr chi.Router) {
			qr.Post("/start", h.startQuiz)
			qr.Get("/session", h.resumeQuiz)
			qr.Delete("/session", h.abandonQuiz)
			qr.Put("/answers", h.selectAnswer)
			qr.Post("/navigate", h.navigate)
			qr.Post("/checkpoint", h.checkpoint)
			qr.Post("/submit", h.submitQuiz)
		})

		pr.Get("/results", h.listMyResults)
		pr.Get("/results/{id}", h.getResult)

		pr.Route("/admin", func(ar chi.Router) {
			ar.Use(requireAdmin(d.Policy))
			ar.Get("/results", h.listAllResults)
			ar.Get("/results.csv", h.exportResults)
			ar.Delete("/results", h.deleteResults)
		})

		pr.Get("/ws", ws.ServeWS)
	})
	return r
}
