package room

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/pkeller/movie-trivia/internal/game"
	"github.com/pkeller/movie-trivia/internal/question"
	"github.com/pkeller/movie-trivia/pkg/protocol"
)

// helper: receive one envelope with a timeout so tests never hang
func recvEnvelope(t *testing.T, ch <-chan []byte, within time.Duration) protocol.Envelope {
	t.Helper()
	select {
	case data, ok := <-ch:
		if !ok {
			t.Fatalf("outbox closed unexpectedly")
		}
		var env protocol.Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			t.Fatalf("bad envelope: %v", err)
		}
		return env
	case <-time.After(within):
		t.Fatalf("timed out waiting for envelope")
		return protocol.Envelope{} // unreachable
	}
}

func expectEvent(t *testing.T, ch <-chan []byte, want protocol.EventType) protocol.Envelope {
	t.Helper()
	env := recvEnvelope(t, ch, 2*time.Second)
	if env.Type != want {
		t.Fatalf("got event %q, want %q", env.Type, want)
	}
	return env
}

func recvNothing(t *testing.T, ch <-chan []byte, within time.Duration) {
	t.Helper()
	select {
	case data, ok := <-ch:
		if !ok {
			return
		}
		t.Fatalf("expected no envelope within %v, but got: %s", within, data)
	case <-time.After(within):
	}
}

func newTestRoom(t *testing.T) (*Room, context.CancelFunc) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	r := New(ctx, "ABCD12", question.DifficultyMedium, question.NewBank(), nil, zap.NewNop())
	return r, cancel
}

func join(t *testing.T, r *Room, id, name string, creator bool) chan []byte {
	t.Helper()
	out := make(chan []byte, 16)
	r.Inbox() <- Join{PlayerID: id, PlayerName: name, Creator: creator, Outbox: out}
	return out
}

func TestRoom_CreatorGetsGameCreatedAndRoster(t *testing.T) {
	r, cancel := newTestRoom(t)
	defer cancel()

	out := join(t, r, "p1", "Alice", true)

	env := expectEvent(t, out, protocol.EvtGameCreated)
	var created protocol.GameCreated
	if err := env.Bind(&created); err != nil {
		t.Fatalf("bind: %v", err)
	}
	if created.GameID != "ABCD12" || created.PlayerID != "p1" || created.PlayerName != "Alice" {
		t.Fatalf("game_created = %+v", created)
	}

	env = expectEvent(t, out, protocol.EvtPlayerListUpdate)
	var roster protocol.PlayerListUpdate
	if err := env.Bind(&roster); err != nil {
		t.Fatalf("bind: %v", err)
	}
	if len(roster.Players) != 1 || !roster.Players[0].IsHost {
		t.Fatalf("roster = %+v", roster.Players)
	}
}

func TestRoom_JoinerNotifiesExistingPlayers(t *testing.T) {
	r, cancel := newTestRoom(t)
	defer cancel()

	host := join(t, r, "p1", "Alice", true)
	expectEvent(t, host, protocol.EvtGameCreated)
	expectEvent(t, host, protocol.EvtPlayerListUpdate)

	guest := join(t, r, "p2", "Bob", false)
	expectEvent(t, guest, protocol.EvtGameJoined)
	expectEvent(t, guest, protocol.EvtPlayerListUpdate)

	// The host sees the fresh roster and a join notification; the joiner
	// does not get notified about themselves.
	expectEvent(t, host, protocol.EvtPlayerListUpdate)
	env := expectEvent(t, host, protocol.EvtPlayerJoined)
	var joined protocol.PlayerJoined
	_ = env.Bind(&joined)
	if joined.PlayerName != "Bob" {
		t.Fatalf("player_joined = %+v", joined)
	}
	recvNothing(t, guest, 100*time.Millisecond)
}

func TestRoom_JoinRefusedOnceStarted(t *testing.T) {
	r, cancel := newTestRoom(t)
	defer cancel()

	host := join(t, r, "p1", "Alice", true)
	expectEvent(t, host, protocol.EvtGameCreated)
	expectEvent(t, host, protocol.EvtPlayerListUpdate)

	r.Inbox() <- FromClient{PlayerID: "p1", Cmd: game.Command{Type: game.CmdStart, PlayerID: "p1"}}
	expectEvent(t, host, protocol.EvtGameStarted)

	late := make(chan []byte, 16)
	reply := make(chan bool, 1)
	r.Inbox() <- Join{PlayerID: "p2", PlayerName: "Carol", Outbox: late, Reply: reply}

	env := expectEvent(t, late, protocol.EvtError)
	var e protocol.ErrorEvent
	_ = env.Bind(&e)
	if e.Message != "Game already in progress" {
		t.Fatalf("error = %q", e.Message)
	}

	select {
	case accepted := <-reply:
		if accepted {
			t.Fatalf("refused join replied accepted")
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for join reply")
	}

	// The refused outbox was never registered; room traffic does not reach it.
	expectEvent(t, host, protocol.EvtNewQuestion)
	recvNothing(t, late, 100*time.Millisecond)
}

func TestRoom_JoinReplyReportsAcceptance(t *testing.T) {
	r, cancel := newTestRoom(t)
	defer cancel()

	out := make(chan []byte, 16)
	reply := make(chan bool, 1)
	r.Inbox() <- Join{PlayerID: "p1", PlayerName: "Alice", Creator: true, Outbox: out, Reply: reply}

	select {
	case accepted := <-reply:
		if !accepted {
			t.Fatalf("join into a waiting room was refused")
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for join reply")
	}
	expectEvent(t, out, protocol.EvtGameCreated)
}

func TestRoom_FullRound(t *testing.T) {
	r, cancel := newTestRoom(t)
	defer cancel()

	host := join(t, r, "p1", "Alice", true)
	expectEvent(t, host, protocol.EvtGameCreated)
	expectEvent(t, host, protocol.EvtPlayerListUpdate)

	guest := join(t, r, "p2", "Bob", false)
	expectEvent(t, guest, protocol.EvtGameJoined)
	expectEvent(t, guest, protocol.EvtPlayerListUpdate)
	expectEvent(t, host, protocol.EvtPlayerListUpdate)
	expectEvent(t, host, protocol.EvtPlayerJoined)

	// Host starts; everybody sees game_started then the first question.
	r.Inbox() <- FromClient{PlayerID: "p1", Cmd: game.Command{Type: game.CmdStart, PlayerID: "p1"}}
	expectEvent(t, host, protocol.EvtGameStarted)
	expectEvent(t, guest, protocol.EvtGameStarted)

	var q protocol.NewQuestion
	env := expectEvent(t, host, protocol.EvtNewQuestion)
	if err := env.Bind(&q); err != nil {
		t.Fatalf("bind: %v", err)
	}
	expectEvent(t, guest, protocol.EvtNewQuestion)
	if q.QuestionNumber != 1 || len(q.Options) != 4 {
		t.Fatalf("new_question = %+v", q)
	}

	// First answer: private result only, no completion yet.
	r.Inbox() <- FromClient{PlayerID: "p1", Cmd: game.Command{
		Type: game.CmdSubmitAnswer, PlayerID: "p1", Answer: q.Options[0], At: time.Now(),
	}}
	expectEvent(t, host, protocol.EvtAnswerResult)
	recvNothing(t, guest, 100*time.Millisecond)

	// Second answer closes the round for everyone.
	r.Inbox() <- FromClient{PlayerID: "p2", Cmd: game.Command{
		Type: game.CmdSubmitAnswer, PlayerID: "p2", Answer: q.Options[1], At: time.Now(),
	}}
	expectEvent(t, guest, protocol.EvtAnswerResult)

	var qc protocol.QuestionComplete
	env = expectEvent(t, host, protocol.EvtQuestionComplete)
	if err := env.Bind(&qc); err != nil {
		t.Fatalf("bind: %v", err)
	}
	expectEvent(t, guest, protocol.EvtQuestionComplete)
	if qc.CorrectAnswer == "" || len(qc.Leaderboard) != 2 {
		t.Fatalf("question_complete = %+v", qc)
	}

	// Host ends the game; final standings go to everyone.
	r.Inbox() <- FromClient{PlayerID: "p1", Cmd: game.Command{Type: game.CmdEnd, PlayerID: "p1"}}
	var ended protocol.GameEnded
	env = expectEvent(t, host, protocol.EvtGameEnded)
	if err := env.Bind(&ended); err != nil {
		t.Fatalf("bind: %v", err)
	}
	expectEvent(t, guest, protocol.EvtGameEnded)
	if ended.TotalQuestions != 1 || len(ended.FinalResults) != 2 {
		t.Fatalf("game_ended = %+v", ended)
	}
}

func TestRoom_GuestCannotStart(t *testing.T) {
	r, cancel := newTestRoom(t)
	defer cancel()

	host := join(t, r, "p1", "Alice", true)
	expectEvent(t, host, protocol.EvtGameCreated)
	expectEvent(t, host, protocol.EvtPlayerListUpdate)

	guest := join(t, r, "p2", "Bob", false)
	expectEvent(t, guest, protocol.EvtGameJoined)
	expectEvent(t, guest, protocol.EvtPlayerListUpdate)

	r.Inbox() <- FromClient{PlayerID: "p2", Cmd: game.Command{Type: game.CmdStart, PlayerID: "p2"}}
	env := expectEvent(t, guest, protocol.EvtError)
	var e protocol.ErrorEvent
	_ = env.Bind(&e)
	if e.Message != "Only the host can do that" {
		t.Fatalf("error = %q", e.Message)
	}
}

func TestRoom_LeaveBroadcastsUpdatedRoster(t *testing.T) {
	r, cancel := newTestRoom(t)
	defer cancel()

	host := join(t, r, "p1", "Alice", true)
	expectEvent(t, host, protocol.EvtGameCreated)
	expectEvent(t, host, protocol.EvtPlayerListUpdate)

	guest := join(t, r, "p2", "Bob", false)
	expectEvent(t, guest, protocol.EvtGameJoined)
	expectEvent(t, guest, protocol.EvtPlayerListUpdate)
	expectEvent(t, host, protocol.EvtPlayerListUpdate)
	expectEvent(t, host, protocol.EvtPlayerJoined)

	r.Inbox() <- Leave{PlayerID: "p2"}

	env := expectEvent(t, host, protocol.EvtPlayerLeft)
	var left protocol.PlayerLeft
	if err := env.Bind(&left); err != nil {
		t.Fatalf("bind: %v", err)
	}
	if left.PlayerName != "Bob" || len(left.Players) != 1 {
		t.Fatalf("player_left = %+v", left)
	}
}

func TestRoom_EmptyRoomCallsOnEmpty(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	emptied := make(chan string, 1)
	r := New(ctx, "ABCD12", question.DifficultyMedium, question.NewBank(),
		func(code string) { emptied <- code }, zap.NewNop())

	out := join(t, r, "p1", "Alice", true)
	expectEvent(t, out, protocol.EvtGameCreated)
	expectEvent(t, out, protocol.EvtPlayerListUpdate)

	r.Inbox() <- Leave{PlayerID: "p1"}

	select {
	case code := <-emptied:
		if code != "ABCD12" {
			t.Fatalf("emptied code = %q", code)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for onEmpty")
	}
}
