package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"cquiz-service/internal/app"
	"cquiz-service/internal/auth"
	"github.com/gorilla/websocket"
)

// WSHandler streams session events to the quiz page and accepts the same
// commands as the REST endpoints.
type WSHandler struct {
	service  *app.QuizService
	log      *slog.Logger
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.QuizService, log *slog.Logger) *WSHandler {
	return &WSHandler{
		service: service,
		log:     log,
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

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades an authenticated request and attaches it to the caller's
// live session.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	who, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing bearer token")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("ws upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	view, err := h.service.Resume(r.Context(), who)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}
	events, cancel, err := h.service.Subscribe(r.Context(), who)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}
	defer cancel()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	eventsDone := make(chan struct{})

	// Single writer: gorilla connections allow one concurrent writer.
	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				h.log.Debug("ws write error", "user", who.Email, "err", err)
				return
			}
		}
	}()

	go func() {
		defer close(eventsDone)
		for {
			select {
			case ev, ok := <-events:
				if !ok {
					return
				}
				select {
				case send <- outboundMessage[any]{Type: ev.Type, Payload: ev}:
				case <-closeSignals:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	send <- outboundMessage[any]{Type: "session", Payload: view}

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		reply := h.dispatch(r, inbound)
		select {
		case send <- reply:
		case <-writerDone:
		}
	}

	close(closeSignals)
	<-eventsDone
	close(send)
	<-writerDone
}

func (h *WSHandler) dispatch(r *http.Request, inbound inboundMessage) outboundMessage[any] {
	ctx := r.Context()
	who, _ := auth.IdentityFromContext(ctx)
	fail := func(msg string) outboundMessage[any] {
		return outboundMessage[any]{Type: "error", Payload: errorPayload{Message: msg}}
	}

	switch inbound.Type {
	case "answer":
		var payload answerRequest
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			return fail("invalid answer payload")
		}
		view, err := h.service.SelectAnswer(ctx, who, payload.QuestionID, payload.Option)
		if err != nil {
			return fail(err.Error())
		}
		return outboundMessage[any]{Type: "session", Payload: view}
	case "navigate":
		var payload navigateRequest
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			return fail("invalid navigate payload")
		}
		dir, err := app.ParseDirection(payload.Direction)
		if err != nil {
			return fail(err.Error())
		}
		view, err := h.service.Navigate(ctx, who, dir)
		if err != nil {
			return fail(err.Error())
		}
		return outboundMessage[any]{Type: "session", Payload: view}
	case "checkpoint":
		if err := h.service.Checkpoint(ctx, who); err != nil {
			return fail(err.Error())
		}
		return outboundMessage[any]{Type: "checkpointed", Payload: struct{}{}}
	case "submit":
		result, err := h.service.Submit(ctx, who)
		if err != nil {
			return fail(err.Error())
		}
		return outboundMessage[any]{Type: "result", Payload: resultResponse{Result: result, Summary: app.Summarize(result)}}
	default:
		return fail("unsupported message type")
	}
}
