package http

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"learnhub-quiz-service/internal/domain"
)

type materialResponse struct {
	domain.Material
	Completed bool `json:"completed"`
}

type bookResponse struct {
	domain.Book
	Downloaded bool `json:"downloaded"`
}

func (h *Handler) listSubjects(w http.ResponseWriter, r *http.Request) {
	subjects, err := h.catalog.Subjects(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, subjects)
}

func (h *Handler) getSubject(w http.ResponseWriter, r *http.Request) {
	subject, err := h.catalog.Subject(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, subject)
}

func (h *Handler) listMaterials(w http.ResponseWriter, r *http.Request) {
	materials, err := h.catalog.Materials(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, materials)
}

func (h *Handler) listBooks(w http.ResponseWriter, r *http.Request) {
	books, err := h.catalog.Books(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, books)
}

func (h *Handler) listQuizzes(w http.ResponseWriter, r *http.Request) {
	quizzes, err := h.catalog.Quizzes(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newQuizViews(quizzes))
}

func (h *Handler) getMaterial(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFrom(r.Context())
	material, err := h.catalog.Material(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	completed, err := h.progress.IsMaterialCompleted(r.Context(), user.ID, material.ID)
	if err != nil {
		log.Warn().Err(err).Str("material_id", material.ID).Msg("read material progress")
	}
	writeJSON(w, http.StatusOK, materialResponse{Material: material, Completed: completed})
}

func (h *Handler) completeMaterial(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFrom(r.Context())
	material, err := h.catalog.Material(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.progress.MarkMaterialCompleted(r.Context(), user.ID, material.ID); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, materialResponse{Material: material, Completed: true})
}

func (h *Handler) getBook(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFrom(r.Context())
	book, err := h.catalog.Book(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	downloaded, err := h.progress.IsBookDownloaded(r.Context(), user.ID, book.ID)
	if err != nil {
		log.Warn().Err(err).Str("book_id", book.ID).Msg("read book progress")
	}
	writeJSON(w, http.StatusOK, bookResponse{Book: book, Downloaded: downloaded})
}

func (h *Handler) downloadBook(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFrom(r.Context())
	book, err := h.catalog.Book(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.progress.MarkBookDownloaded(r.Context(), user.ID, book.ID); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, bookResponse{Book: book, Downloaded: true})
}

func (h *Handler) getQuiz(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFrom(r.Context())
	quiz, err := h.catalog.Quiz(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	view := newQuizView(quiz, true)
	completion, ok, err := h.progress.QuizCompletion(r.Context(), user.ID, quiz.ID)
	if err != nil {
		log.Warn().Err(err).Str("quiz_id", quiz.ID).Msg("read quiz completion")
	}
	if ok {
		view.Completion = &completion
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handler) search(w http.ResponseWriter, r *http.Request) {
	result, err := h.catalog.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) getProgress(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFrom(r.Context())
	stats, err := h.progress.Stats(r.Context(), user.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *Handler) clearProgress(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFrom(r.Context())
	if err := h.progress.Clear(r.Context(), user.ID); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
