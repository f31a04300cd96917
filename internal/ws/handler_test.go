package ws

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"go.uber.org/zap"

	"github.com/pkeller/movie-trivia/internal/hub"
	"github.com/pkeller/movie-trivia/internal/question"
	"github.com/pkeller/movie-trivia/pkg/protocol"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	h := hub.NewHub(ctx, question.NewBank(), zap.NewNop())
	srv := httptest.NewServer(Handler(h, zap.NewNop()))
	t.Cleanup(func() {
		srv.Close()
		h.Inbox() <- hub.ShutdownHub{}
		cancel()
	})
	return srv
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "done") })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, typ protocol.EventType, payload any) {
	t.Helper()
	data, err := protocol.Pack(typ, payload)
	if err != nil {
		t.Fatalf("pack %s: %v", typ, err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := conn.Write(ctx, websocket.MessageText, data); err != nil {
		t.Fatalf("write %s: %v", typ, err)
	}
}

func recv(t *testing.T, conn *websocket.Conn) protocol.Envelope {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, data, err := conn.Read(ctx)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var env protocol.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		t.Fatalf("unmarshal %q: %v", data, err)
	}
	return env
}

func expect(t *testing.T, conn *websocket.Conn, typ protocol.EventType) protocol.Envelope {
	t.Helper()
	env := recv(t, conn)
	if env.Type != typ {
		t.Fatalf("got event %s (payload %s), want %s", env.Type, env.Payload, typ)
	}
	return env
}

func TestCreateGameOverWire(t *testing.T) {
	srv := newTestServer(t)
	conn := dial(t, srv)

	send(t, conn, protocol.EvtCreateGame, protocol.CreateGame{PlayerName: "Alice", Difficulty: "easy"})

	env := expect(t, conn, protocol.EvtGameCreated)
	var created protocol.GameCreated
	if err := env.Bind(&created); err != nil {
		t.Fatalf("bind: %v", err)
	}
	if len(created.GameID) != 6 {
		t.Fatalf("game id %q, want 6 characters", created.GameID)
	}
	if created.PlayerName != "Alice" {
		t.Fatalf("player name %q, want Alice", created.PlayerName)
	}

	env = expect(t, conn, protocol.EvtPlayerListUpdate)
	var roster protocol.PlayerListUpdate
	if err := env.Bind(&roster); err != nil {
		t.Fatalf("bind: %v", err)
	}
	if len(roster.Players) != 1 || !roster.Players[0].IsHost {
		t.Fatalf("roster %+v, want one host", roster.Players)
	}
}

func TestJoinAndPlayRoundOverWire(t *testing.T) {
	srv := newTestServer(t)
	host := dial(t, srv)
	guest := dial(t, srv)

	send(t, host, protocol.EvtCreateGame, protocol.CreateGame{PlayerName: "Alice", Difficulty: "easy"})
	env := expect(t, host, protocol.EvtGameCreated)
	var created protocol.GameCreated
	if err := env.Bind(&created); err != nil {
		t.Fatalf("bind: %v", err)
	}
	expect(t, host, protocol.EvtPlayerListUpdate)

	// Codes are matched case-insensitively.
	send(t, guest, protocol.EvtJoinGame, protocol.JoinGame{GameID: strings.ToLower(created.GameID), PlayerName: "Bob"})
	expect(t, guest, protocol.EvtGameJoined)
	expect(t, guest, protocol.EvtPlayerListUpdate)
	expect(t, host, protocol.EvtPlayerListUpdate)
	expect(t, host, protocol.EvtPlayerJoined)

	send(t, host, protocol.EvtStartGame, nil)
	expect(t, host, protocol.EvtGameStarted)
	expect(t, guest, protocol.EvtGameStarted)

	qEnv := expect(t, host, protocol.EvtNewQuestion)
	expect(t, guest, protocol.EvtNewQuestion)
	var q protocol.NewQuestion
	if err := qEnv.Bind(&q); err != nil {
		t.Fatalf("bind: %v", err)
	}
	if q.QuestionNumber != 1 || len(q.Options) != 4 {
		t.Fatalf("question %+v, want number 1 with 4 options", q)
	}

	send(t, host, protocol.EvtSubmitAnswer, protocol.SubmitAnswer{Answer: q.Options[0]})
	expect(t, host, protocol.EvtAnswerResult)

	send(t, guest, protocol.EvtSubmitAnswer, protocol.SubmitAnswer{Answer: q.Options[1]})
	expect(t, guest, protocol.EvtAnswerResult)
	expect(t, host, protocol.EvtQuestionComplete)
	expect(t, guest, protocol.EvtQuestionComplete)

	send(t, host, protocol.EvtEndGame, nil)
	env = expect(t, host, protocol.EvtGameEnded)
	expect(t, guest, protocol.EvtGameEnded)
	var ended protocol.GameEnded
	if err := env.Bind(&ended); err != nil {
		t.Fatalf("bind: %v", err)
	}
	if ended.TotalQuestions != 1 {
		t.Fatalf("total questions %d, want 1", ended.TotalQuestions)
	}
}

func TestRefusedJoinLeavesConnectionUsable(t *testing.T) {
	srv := newTestServer(t)
	host := dial(t, srv)
	late := dial(t, srv)

	send(t, host, protocol.EvtCreateGame, protocol.CreateGame{PlayerName: "Alice", Difficulty: "easy"})
	env := expect(t, host, protocol.EvtGameCreated)
	var created protocol.GameCreated
	if err := env.Bind(&created); err != nil {
		t.Fatalf("bind: %v", err)
	}
	expect(t, host, protocol.EvtPlayerListUpdate)

	send(t, host, protocol.EvtStartGame, nil)
	expect(t, host, protocol.EvtGameStarted)

	send(t, late, protocol.EvtJoinGame, protocol.JoinGame{GameID: created.GameID, PlayerName: "Carol"})
	env = expect(t, late, protocol.EvtError)
	var e protocol.ErrorEvent
	if err := env.Bind(&e); err != nil {
		t.Fatalf("bind: %v", err)
	}
	if e.Message != "Game already in progress" {
		t.Fatalf("message %q, want %q", e.Message, "Game already in progress")
	}

	// The refusal is terminal for that one action only; the same connection
	// can still create a game of its own.
	send(t, late, protocol.EvtCreateGame, protocol.CreateGame{PlayerName: "Carol", Difficulty: "easy"})
	env = expect(t, late, protocol.EvtGameCreated)
	var second protocol.GameCreated
	if err := env.Bind(&second); err != nil {
		t.Fatalf("bind: %v", err)
	}
	if second.GameID == created.GameID {
		t.Fatalf("new game reused code %q", created.GameID)
	}
}

func TestJoinUnknownCode(t *testing.T) {
	srv := newTestServer(t)
	conn := dial(t, srv)

	send(t, conn, protocol.EvtJoinGame, protocol.JoinGame{GameID: "ZZZZZZ", PlayerName: "Bob"})

	env := expect(t, conn, protocol.EvtError)
	var e protocol.ErrorEvent
	if err := env.Bind(&e); err != nil {
		t.Fatalf("bind: %v", err)
	}
	if e.Message != "Game not found" {
		t.Fatalf("message %q, want %q", e.Message, "Game not found")
	}
}

func TestCommandBeforeJoining(t *testing.T) {
	srv := newTestServer(t)
	conn := dial(t, srv)

	send(t, conn, protocol.EvtStartGame, nil)

	env := expect(t, conn, protocol.EvtError)
	var e protocol.ErrorEvent
	if err := env.Bind(&e); err != nil {
		t.Fatalf("bind: %v", err)
	}
	if e.Message != "Game not found" {
		t.Fatalf("message %q, want %q", e.Message, "Game not found")
	}
}

func TestUnknownEventType(t *testing.T) {
	srv := newTestServer(t)
	conn := dial(t, srv)

	send(t, conn, protocol.EventType("eject_player"), nil)

	expect(t, conn, protocol.EvtError)
}
