package http

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"vocab-quiz-service/internal/app"
	"vocab-quiz-service/internal/auth"
)

const writeWait = 10 * time.Second

type WSHandler struct {
	service  *app.QuizService
	provider auth.Provider
	log      logrus.FieldLogger
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.QuizService, provider auth.Provider, log logrus.FieldLogger) *WSHandler {
	return &WSHandler{
		service:  service,
		provider: provider,
		log:      log.WithField("component", "ws"),
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

type selectPayload struct {
	Option *int `json:"option"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

type redirectPayload struct {
	Location string `json:"location"`
}

// ServeWS runs one quiz attempt over a websocket. The gate has already attached the
// caller's session to the request context.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	session, ok := auth.FromContext(r.Context())
	if !ok {
		http.Redirect(w, r, auth.LoginPath, http.StatusFound)
		return
	}
	userID := session.Identity.UserID

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).Warn("ws upgrade failed")
		return
	}
	defer conn.Close()

	// cancelled when the socket closes so an in-flight load stops
	ctx, cancelCtx := context.WithCancel(r.Context())
	defer cancelCtx()

	quiz := h.service.Open(userID)
	log := h.log.WithFields(logrus.Fields{"session_id": quiz.ID(), "user_id": userID})
	defer h.service.Leave(context.Background(), quiz.ID(), userID)

	updates, cancel, err := h.service.Subscribe(ctx, quiz.ID(), userID)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: messageFor(err)}})
		return
	}
	defer cancel()

	signedOut := make(chan struct{})
	var signOutOnce sync.Once
	unsubscribe := h.provider.Subscribe(func(change auth.SessionChange) {
		if !change.SignedIn && change.TokenID == session.TokenID {
			signOutOnce.Do(func() { close(signedOut) })
		}
	})
	defer unsubscribe()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(msg); err != nil {
				log.WithError(err).Debug("ws write error")
				return
			}
			if msg.Type == "redirect" {
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "signed out"))
			}
		}
	}()

	go func() {
		defer close(updatesDone)
		for {
			select {
			case update, ok := <-updates:
				if !ok {
					return
				}
				select {
				case send <- outboundMessage[any]{Type: "session", Payload: update}:
				case <-closeSignals:
					return
				}
			case <-signedOut:
				log.Info("session signed out, closing quiz")
				select {
				case send <- outboundMessage[any]{Type: "redirect", Payload: redirectPayload{Location: auth.LoginPath}}:
				case <-closeSignals:
				}
				// unblock the reader loop
				_ = conn.SetReadDeadline(time.Now())
				return
			case <-closeSignals:
				return
			}
		}
	}()

	if _, err := h.service.Load(ctx, quiz.ID(), userID); err != nil {
		log.WithError(err).Warn("initial load failed")
	}

reader:
	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		var opErr error
		switch inbound.Type {
		case "select":
			var payload selectPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil || payload.Option == nil {
				h.reply(send, closeSignals, errorPayload{Message: "invalid select payload"})
				continue
			}
			_, opErr = h.service.Select(ctx, quiz.ID(), userID, *payload.Option)
		case "next":
			_, opErr = h.service.Next(ctx, quiz.ID(), userID)
		case "retake":
			_, opErr = h.service.Retake(ctx, quiz.ID(), userID)
		case "leave":
			break reader
		default:
			h.reply(send, closeSignals, errorPayload{Message: "unsupported message type"})
			continue
		}
		if opErr != nil {
			log.WithError(opErr).WithField("type", inbound.Type).Debug("quiz action rejected")
			h.reply(send, closeSignals, errorPayload{Message: messageFor(opErr)})
		}
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}

func (h *WSHandler) reply(send chan<- outboundMessage[any], closeSignals <-chan struct{}, payload errorPayload) {
	select {
	case send <- outboundMessage[any]{Type: "error", Payload: payload}:
	case <-closeSignals:
	}
}
