package http

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"

	"english-star-service/internal/app"
	"english-star-service/internal/domain"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// WSHandler exposes the companion use cases over a single WebSocket
// connection: the browser shell sends commands, the handler replies and
// pushes quiz session transitions as they happen.
type WSHandler struct {
	logger   *zap.SugaredLogger
	service  *app.CompanionService
	upgrader websocket.Upgrader
}

func NewWSHandler(logger *zap.SugaredLogger, service *app.CompanionService) *WSHandler {
	return &WSHandler{
		logger:  logger,
		service: service,
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

type registerPayload struct {
	Name string `json:"name"`
}

type selectPayload struct {
	OptionIndex int `json:"optionIndex"`
}

type hintPayload struct {
	Skill string `json:"skill"`
	Topic string `json:"topic"`
}

type chatPayload struct {
	History []domain.ChatMessage `json:"history"`
}

type speakPayload struct {
	Text string `json:"text"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

type hintReply struct {
	Hint string `json:"hint"`
}

type chatReply struct {
	Text string `json:"text"`
}

type speechReply struct {
	Audio string `json:"audio"` // base64-encoded audio bytes
}

type questionView struct {
	ID       int      `json:"id"`
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

// quizStatePayload mirrors app.Snapshot for the wire. The correct answer is
// only exposed through the review, after completion.
type quizStatePayload struct {
	State         string        `json:"state"`
	Reason        string        `json:"reason,omitempty"`
	QuestionIndex int           `json:"questionIndex"`
	QuestionCount int           `json:"questionCount"`
	Question      *questionView `json:"question,omitempty"`
	Selected      int           `json:"selected"`
	Review        *app.Review   `json:"review,omitempty"`
}

func quizStateFrom(snap app.Snapshot) quizStatePayload {
	payload := quizStatePayload{
		State:         snap.State.String(),
		Reason:        snap.Reason,
		QuestionIndex: snap.QuestionIndex,
		QuestionCount: snap.QuestionCount,
		Selected:      snap.Selected,
		Review:        snap.Review,
	}
	if snap.Question != nil {
		payload.Question = &questionView{
			ID:       snap.Question.ID,
			Question: snap.Question.Question,
			Options:  snap.Question.Options,
		}
	}
	return payload
}

// ServeWS upgrades the request and runs the command loop until the client
// disconnects. Adapter-degraded failures are reported inline and never close
// the socket; session-fatal conditions arrive as terminal quizState pushes.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warnw("ws upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	send := make(chan outboundMessage[any], 16)
	writerDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				h.logger.Warnw("ws write error", "error", err)
				return
			}
		}
	}()

	var (
		student     string
		unsubscribe func()
		pumpQuit    chan struct{}
		pumpDone    chan struct{}
	)

	dropSubscription := func() {
		if unsubscribe == nil {
			return
		}
		close(pumpQuit)
		unsubscribe()
		<-pumpDone
		unsubscribe = nil
		pumpQuit = nil
		pumpDone = nil
	}

	subscribe := func(session *app.Session) {
		dropSubscription()
		updates, cancel := session.Subscribe()
		unsubscribe = cancel
		pumpQuit = make(chan struct{})
		pumpDone = make(chan struct{})
		go func(updates <-chan app.Snapshot, quit, pumpDone chan struct{}) {
			defer close(pumpDone)
			for {
				select {
				case snap, ok := <-updates:
					if !ok {
						return
					}
					select {
					case send <- outboundMessage[any]{Type: "quizState", Payload: quizStateFrom(snap)}:
					case <-quit:
						return
					}
				case <-quit:
					return
				}
			}
		}(updates, pumpQuit, pumpDone)
	}

	if user, ok, err := h.service.CurrentUser(r.Context()); err == nil && ok {
		student = user.Name
		send <- outboundMessage[any]{Type: "user", Payload: user}
	}

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}

		switch inbound.Type {
		case "register":
			var payload registerPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				send <- errorMessage("invalid register payload")
				continue
			}
			user, err := h.service.Register(r.Context(), payload.Name)
			if err != nil {
				send <- errorMessage(err.Error())
				continue
			}
			student = user.Name
			send <- outboundMessage[any]{Type: "user", Payload: user}

		case "startQuiz":
			if student == "" {
				send <- errorMessage(domain.ErrUserNotFound.Error())
				continue
			}
			session, err := h.service.StartQuiz(r.Context())
			if err != nil && session == nil {
				send <- errorMessage(err.Error())
				continue
			}
			// Gate denials still produce a session in a terminal Error
			// state; the subscription delivers it as a quizState push.
			subscribe(session)

		case "selectOption":
			var payload selectPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				send <- errorMessage("invalid selectOption payload")
				continue
			}
			if _, err := h.service.SelectOption(student, payload.OptionIndex); err != nil {
				send <- errorMessage(err.Error())
			}

		case "advance":
			if _, err := h.service.Advance(r.Context(), student); err != nil {
				if errors.Is(err, domain.ErrNoAnswerSelected) || errors.Is(err, domain.ErrSessionNotFound) || errors.Is(err, domain.ErrSessionNotActive) {
					send <- errorMessage(err.Error())
					continue
				}
				h.logger.Errorw("quiz completion persistence failed", "student", student, "error", err)
				send <- errorMessage("could not record quiz result")
			}

		case "exitQuiz":
			h.service.ExitQuiz(student)
			dropSubscription()

		case "leaderboard":
			results, err := h.service.Leaderboard(r.Context())
			if err != nil {
				send <- errorMessage(err.Error())
				continue
			}
			send <- outboundMessage[any]{Type: "leaderboard", Payload: results}

		case "hint":
			var payload hintPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				send <- errorMessage("invalid hint payload")
				continue
			}
			hint := h.service.Hint(r.Context(), domain.Skill(payload.Skill), payload.Topic)
			send <- outboundMessage[any]{Type: "hint", Payload: hintReply{Hint: hint}}

		case "chat":
			var payload chatPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				send <- errorMessage("invalid chat payload")
				continue
			}
			reply := h.service.Chat(r.Context(), payload.History)
			send <- outboundMessage[any]{Type: "chatReply", Payload: chatReply{Text: reply}}

		case "speak":
			var payload speakPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				send <- errorMessage("invalid speak payload")
				continue
			}
			audio, err := h.service.Speech(r.Context(), payload.Text)
			if err != nil {
				send <- errorMessage(err.Error())
				continue
			}
			send <- outboundMessage[any]{Type: "speech", Payload: speechReply{
				Audio: base64.StdEncoding.EncodeToString(audio),
			}}

		default:
			send <- errorMessage("unsupported message type")
		}
	}

	dropSubscription()
	close(send)
	<-writerDone
}

func errorMessage(message string) outboundMessage[any] {
	return outboundMessage[any]{Type: "error", Payload: errorPayload{Message: message}}
}
