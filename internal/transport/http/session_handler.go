package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"learnhub-quiz-service/internal/domain"
)

type answerRequest struct {
	Answer domain.AnswerValue `json:"answer"`
}

// createSession prepares a session; ?start=true also starts the countdown.
func (h *Handler) createSession(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFrom(r.Context())
	quizID := mux.Vars(r)["id"]

	var (
		snapshot domain.SessionSnapshot
		err      error
	)
	if r.URL.Query().Get("start") == "true" {
		snapshot, err = h.quizzes.StartQuiz(r.Context(), user.ID, quizID)
	} else {
		snapshot, err = h.quizzes.Prepare(r.Context(), user.ID, quizID)
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.writeSession(w, r, http.StatusCreated, user.ID, snapshot)
}

func (h *Handler) getSession(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFrom(r.Context())
	snapshot, err := h.quizzes.Snapshot(r.Context(), user.ID, mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.writeSession(w, r, http.StatusOK, user.ID, snapshot)
}

func (h *Handler) startSession(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFrom(r.Context())
	snapshot, err := h.quizzes.Start(r.Context(), user.ID, mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.writeSession(w, r, http.StatusOK, user.ID, snapshot)
}

func (h *Handler) submitAnswer(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFrom(r.Context())
	var req answerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	snapshot, err := h.quizzes.SubmitAnswer(r.Context(), user.ID, mux.Vars(r)["id"], req.Answer)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.writeSession(w, r, http.StatusOK, user.ID, snapshot)
}

func (h *Handler) discardSession(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFrom(r.Context())
	if err := h.quizzes.Discard(r.Context(), user.ID, mux.Vars(r)["id"]); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) writeSession(w http.ResponseWriter, r *http.Request, status int, userID string, snapshot domain.SessionSnapshot) {
	session, err := h.quizzes.Session(userID, snapshot.SessionID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, status, newSessionView(snapshot, session.Quiz()))
}
