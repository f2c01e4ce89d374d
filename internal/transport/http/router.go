package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"learnhub-quiz-service/internal/app"
)

// Handler serves the REST API.
type Handler struct {
	catalog  *app.CatalogService
	quizzes  *app.QuizService
	progress *app.ProgressService
	auth     *app.AuthService
}

func NewHandler(catalog *app.CatalogService, quizzes *app.QuizService, progress *app.ProgressService, auth *app.AuthService) *Handler {
	return &Handler{catalog: catalog, quizzes: quizzes, progress: progress, auth: auth}
}

// NewRouter mounts health, the websocket endpoint and /api/v1.
func NewRouter(h *Handler, ws *WSHandler) *mux.Router {
	r := mux.NewRouter()
	r.Use(LogRequests)
	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}).Methods(http.MethodGet)
	r.HandleFunc("/ws", ws.ServeWS)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/auth/signup", h.signUp).Methods(http.MethodPost)
	api.HandleFunc("/auth/signin", h.signIn).Methods(http.MethodPost)
	api.HandleFunc("/auth/signout", h.signOut).Methods(http.MethodPost)
	api.HandleFunc("/auth/session", h.autoLogin).Methods(http.MethodGet)

	protected := api.NewRoute().Subrouter()
	protected.Use(RequireAuth(h.auth))

	protected.HandleFunc("/subjects", h.listSubjects).Methods(http.MethodGet)
	protected.HandleFunc("/subjects/{id}", h.getSubject).Methods(http.MethodGet)
	protected.HandleFunc("/subjects/{id}/materials", h.listMaterials).Methods(http.MethodGet)
	protected.HandleFunc("/subjects/{id}/books", h.listBooks).Methods(http.MethodGet)
	protected.HandleFunc("/subjects/{id}/quizzes", h.listQuizzes).Methods(http.MethodGet)
	protected.HandleFunc("/materials/{id}", h.getMaterial).Methods(http.MethodGet)
	protected.HandleFunc("/materials/{id}/complete", h.completeMaterial).Methods(http.MethodPost)
	protected.HandleFunc("/books/{id}", h.getBook).Methods(http.MethodGet)
	protected.HandleFunc("/books/{id}/download", h.downloadBook).Methods(http.MethodPost)
	protected.HandleFunc("/quizzes/{id}", h.getQuiz).Methods(http.MethodGet)
	protected.HandleFunc("/search", h.search).Methods(http.MethodGet)
	protected.HandleFunc("/progress", h.getProgress).Methods(http.MethodGet)
	protected.HandleFunc("/progress", h.clearProgress).Methods(http.MethodDelete)

	protected.HandleFunc("/quizzes/{id}/sessions", h.createSession).Methods(http.MethodPost)
	protected.HandleFunc("/sessions/{id}", h.getSession).Methods(http.MethodGet)
	protected.HandleFunc("/sessions/{id}", h.discardSession).Methods(http.MethodDelete)
	protected.HandleFunc("/sessions/{id}/start", h.startSession).Methods(http.MethodPost)
	protected.HandleFunc("/sessions/{id}/answers", h.submitAnswer).Methods(http.MethodPost)
	return r
}
