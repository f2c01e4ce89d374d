package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"learnhub-quiz-service/internal/app"
	"learnhub-quiz-service/internal/domain"
)

const closeGrace = time.Second

type WSHandler struct {
	service  *app.QuizService
	auth     Authenticator
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.QuizService, auth Authenticator) *WSHandler {
	return &WSHandler{
		service: service,
		auth:    auth,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type outboundMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

func errorMessage(err error) outboundMessage {
	return outboundMessage{Type: "error", Payload: errorPayload{Message: err.Error()}}
}

// ServeWS runs one quiz attempt over a websocket:
//
//	server: ready {session}    client: start
//	server: session {session}  client: answer {"answer": 1}
//	server: result {session}   then the server closes the stream
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	quizID := r.URL.Query().Get("quizId")
	if quizID == "" {
		http.Error(w, "missing quizId", http.StatusBadRequest)
		return
	}
	user, err := h.auth.Authenticate(r.Context(), bearerToken(r))
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("ws upgrade failed")
		return
	}
	defer conn.Close()

	prepared, err := h.service.Prepare(r.Context(), user.ID, quizID)
	if err != nil {
		_ = conn.WriteJSON(errorMessage(err))
		return
	}
	sessionID := prepared.SessionID
	session, err := h.service.Session(user.ID, sessionID)
	if err != nil {
		_ = conn.WriteJSON(errorMessage(err))
		return
	}
	quiz := session.Quiz()
	log.Info().Str("session_id", sessionID).Str("user_id", user.ID).Msg("ws quiz attempt opened")

	updates, cancel, err := h.service.Subscribe(r.Context(), user.ID, sessionID)
	if err != nil {
		_ = conn.WriteJSON(errorMessage(err))
		return
	}
	defer cancel()

	send := make(chan outboundMessage, 16)
	closeSignals := make(chan struct{})
	streamDone := make(chan struct{})
	writerDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for {
			select {
			case msg := <-send:
				if err := conn.WriteJSON(msg); err != nil {
					log.Debug().Err(err).Str("session_id", sessionID).Msg("ws write error")
					return
				}
			case <-streamDone:
				drain(conn, send)
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "quiz completed"),
					time.Now().Add(closeGrace))
				_ = conn.SetReadDeadline(time.Now().Add(closeGrace))
				return
			case <-closeSignals:
				return
			}
		}
	}()

	go func() {
		defer close(streamDone)
		first := true
		var last domain.SessionSnapshot
		for {
			select {
			case update, ok := <-updates:
				if !ok {
					if last.Result != nil {
						select {
						case send <- outboundMessage{Type: "result", Payload: newSessionView(last, quiz)}:
						case <-closeSignals:
						}
					}
					return
				}
				last = update
				msgType := "session"
				if first {
					msgType, first = "ready", false
				}
				select {
				case send <- outboundMessage{Type: msgType, Payload: newSessionView(update, quiz)}:
				case <-closeSignals:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	reply := func(msg outboundMessage) {
		select {
		case send <- msg:
		case <-writerDone:
		}
	}

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "start":
			if _, err := h.service.Start(r.Context(), user.ID, sessionID); err != nil {
				reply(errorMessage(err))
			}
		case "answer":
			var payload answerRequest
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				reply(outboundMessage{Type: "error", Payload: errorPayload{Message: "invalid answer payload"}})
				continue
			}
			if _, err := h.service.SubmitAnswer(r.Context(), user.ID, sessionID, payload.Answer); err != nil {
				reply(errorMessage(err))
			}
		default:
			reply(outboundMessage{Type: "error", Payload: errorPayload{Message: "unsupported message type"}})
		}
	}

	close(closeSignals)
	<-streamDone
	<-writerDone

	// the session lives as long as its stream; an unfinished attempt ends without a result
	if err := h.service.Discard(r.Context(), user.ID, sessionID); err != nil {
		log.Debug().Err(err).Str("session_id", sessionID).Msg("discard ws session")
	}
}

// drain writes whatever is already queued.
func drain(conn *websocket.Conn, send <-chan outboundMessage) {
	for {
		select {
		case msg := <-send:
			if err := conn.WriteJSON(msg); err != nil {
				return
			}
		default:
			return
		}
	}
}
