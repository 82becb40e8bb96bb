package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"english-star-service/internal/app"
	"english-star-service/internal/domain"
	"english-star-service/internal/infra/memory"
	"github.com/gorilla/websocket"
	"go.uber.org/zap/zaptest"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	generator := memory.NewStaticGenerator([]domain.QuizQuestion{
		{
			ID:            1,
			Question:      "What is 2 + 2?",
			Options:       []string{"3", "4", "5", "6"},
			CorrectAnswer: 1,
		},
	})
	service := app.NewCompanionService(
		zaptest.NewLogger(t).Sugar(),
		memory.NewStore(),
		memory.NewSessionRegistry(),
		app.Adapters{Generator: generator},
		"",
	)
	handler := NewWSHandler(zaptest.NewLogger(t).Sugar(), service)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", handler.ServeWS)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func dial(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()
	u := "ws" + server.URL[len("http"):] + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readNext(t *testing.T, conn *websocket.Conn) (string, json.RawMessage) {
	t.Helper()
	var msg struct {
		Type    string          `json:"type"`
		Payload json.RawMessage `json:"payload"`
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read json: %v", err)
	}
	return msg.Type, msg.Payload
}

func waitQuizState(t *testing.T, conn *websocket.Conn, state string) map[string]any {
	t.Helper()
	for i := 0; i < 10; i++ {
		typ, payload := readNext(t, conn)
		if typ != "quizState" {
			continue
		}
		var snap map[string]any
		if err := json.Unmarshal(payload, &snap); err != nil {
			t.Fatalf("unmarshal quizState: %v", err)
		}
		if snap["state"] == state {
			return snap
		}
	}
	t.Fatalf("never saw quizState %q", state)
	return nil
}

func send(t *testing.T, conn *websocket.Conn, msgType string, payload any) {
	t.Helper()
	if err := conn.WriteJSON(map[string]any{"type": msgType, "payload": payload}); err != nil {
		t.Fatalf("write %s: %v", msgType, err)
	}
}

func TestWebSocketQuizFlow(t *testing.T) {
	server := newTestServer(t)
	conn := dial(t, server)

	send(t, conn, "register", map[string]any{"name": "Alice"})
	typ, payload := readNext(t, conn)
	if typ != "user" {
		t.Fatalf("expected user message, got %s %s", typ, payload)
	}

	send(t, conn, "startQuiz", nil)
	snap := waitQuizState(t, conn, "inProgress")

	question, ok := snap["question"].(map[string]any)
	if !ok {
		t.Fatalf("expected a question in %v", snap)
	}
	options, _ := question["options"].([]any)
	if len(options) != 4 {
		t.Fatalf("expected 4 options, got %v", options)
	}
	if _, leaked := question["correctAnswer"]; leaked {
		t.Fatalf("correct answer leaked mid-quiz: %v", question)
	}

	correct := -1
	for i, opt := range options {
		if opt == "4" {
			correct = i
		}
	}
	if correct == -1 {
		t.Fatalf("correct option text missing from %v", options)
	}

	send(t, conn, "selectOption", map[string]any{"optionIndex": correct})
	send(t, conn, "advance", nil)

	snap = waitQuizState(t, conn, "completed")
	review, ok := snap["review"].(map[string]any)
	if !ok {
		t.Fatalf("expected review on completion, got %v", snap)
	}
	if review["score"] != 0.5 {
		t.Fatalf("expected score 0.5, got %v", review["score"])
	}

	send(t, conn, "leaderboard", nil)
	for i := 0; i < 10; i++ {
		typ, payload := readNext(t, conn)
		if typ != "leaderboard" {
			continue
		}
		var results []domain.QuizResult
		if err := json.Unmarshal(payload, &results); err != nil {
			t.Fatalf("unmarshal leaderboard: %v", err)
		}
		if len(results) != 1 || results[0].StudentName != "Alice" || results[0].Score != 0.5 {
			t.Fatalf("unexpected leaderboard %+v", results)
		}
		return
	}
	t.Fatalf("never saw leaderboard message")
}

func TestWebSocketSecondQuizSameDayDenied(t *testing.T) {
	server := newTestServer(t)
	conn := dial(t, server)

	send(t, conn, "register", map[string]any{"name": "Alice"})
	readNext(t, conn) // user

	send(t, conn, "startQuiz", nil)
	snap := waitQuizState(t, conn, "inProgress")
	question := snap["question"].(map[string]any)
	options := question["options"].([]any)
	correct := 0
	for i, opt := range options {
		if opt == "4" {
			correct = i
		}
	}
	send(t, conn, "selectOption", map[string]any{"optionIndex": correct})
	send(t, conn, "advance", nil)
	waitQuizState(t, conn, "completed")

	send(t, conn, "startQuiz", nil)
	snap = waitQuizState(t, conn, "error")
	if reason, _ := snap["reason"].(string); reason == "" {
		t.Fatalf("expected a denial reason, got %v", snap)
	}
}

func TestWebSocketHintFallsBack(t *testing.T) {
	server := newTestServer(t)
	conn := dial(t, server)

	send(t, conn, "register", map[string]any{"name": "Alice"})
	readNext(t, conn) // user

	send(t, conn, "hint", map[string]any{"skill": "Reading", "topic": "Daily Life"})
	typ, payload := readNext(t, conn)
	if typ != "hint" {
		t.Fatalf("expected hint message, got %s", typ)
	}
	var reply struct {
		Hint string `json:"hint"`
	}
	if err := json.Unmarshal(payload, &reply); err != nil {
		t.Fatalf("unmarshal hint: %v", err)
	}
	if reply.Hint != app.DefaultHint {
		t.Fatalf("expected default hint without a provider, got %q", reply.Hint)
	}
}
