// Package room runs one trivia game as an actor: a single goroutine owns the
// game state, consumes typed messages from an inbox, and fans server events
// out to per-player outboxes.
package room

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/pkeller/movie-trivia/internal/game"
	"github.com/pkeller/movie-trivia/internal/question"
	"github.com/pkeller/movie-trivia/pkg/protocol"
)

type Msg interface{ isRoomMsg() }

// Join registers a player and their outbox. Creator marks the connection that
// created the game; it receives game_created instead of game_joined. Reply,
// when set, receives whether the join was accepted; a refused join leaves the
// outbox unregistered. Reply must be buffered.
type Join struct {
	PlayerID   string
	PlayerName string
	Creator    bool
	Outbox     chan []byte
	Reply      chan bool
}

func (Join) isRoomMsg() {}

type Leave struct{ PlayerID string }

func (Leave) isRoomMsg() {}

type FromClient struct {
	PlayerID string
	Cmd      game.Command
}

func (FromClient) isRoomMsg() {}

type Shutdown struct{}

func (Shutdown) isRoomMsg() {}

// GetView reflects internal state without data races; test-only.
type GetView struct {
	Reply chan View
}

func (GetView) isRoomMsg() {}

type View struct {
	Code       string
	NumClients int
	State      game.State
}

// internal: outcome of an off-loop question generation.
type questionReady struct{ q question.Question }

func (questionReady) isRoomMsg() {}

type questionFailed struct{ err error }

func (questionFailed) isRoomMsg() {}

type Room struct {
	code       string
	inbox      chan Msg
	state      game.State
	outboxes   map[string]chan []byte
	gen        question.Generator
	generating bool
	onEmpty    func(code string)
	log        *zap.Logger
	ctx        context.Context
	cancel     context.CancelFunc
}

func New(parent context.Context, code string, d question.Difficulty, gen question.Generator, onEmpty func(string), log *zap.Logger) *Room {
	ctx, cancel := context.WithCancel(parent)
	r := &Room{
		code:     code,
		inbox:    make(chan Msg, 64),
		state:    game.NewState(d),
		outboxes: make(map[string]chan []byte),
		gen:      gen,
		onEmpty:  onEmpty,
		log:      log.With(zap.String("game", code)),
		ctx:      ctx,
		cancel:   cancel,
	}
	go r.loop()
	return r
}

func (r *Room) Inbox() chan<- Msg { return r.inbox }

func (r *Room) Code() string { return r.code }

// Done closes when the room's goroutine has stopped; senders waiting on a
// Join reply must also watch it.
func (r *Room) Done() <-chan struct{} { return r.ctx.Done() }

func (r *Room) loop() {
	for {
		select {
		case <-r.ctx.Done():
			r.shutdown()
			return

		case m := <-r.inbox:
			switch msg := m.(type) {
			case Join:
				r.handleJoin(msg)

			case Leave:
				r.handleLeave(msg.PlayerID)

			case FromClient:
				events, ns, err := game.Apply(r.state, msg.Cmd)
				if err != nil {
					r.sendError(msg.PlayerID, errorMessage(err))
					break
				}
				r.state = ns
				r.dispatch(events)

			case questionReady:
				r.generating = false
				events, ns, err := game.Apply(r.state, game.Command{
					Type:     game.CmdPoseQuestion,
					Question: msg.q,
					At:       time.Now(),
				})
				if err != nil {
					// Game ended or emptied while generating; drop it.
					r.log.Debug("discarding generated question", zap.Error(err))
					break
				}
				r.state = ns
				r.dispatch(events)

			case questionFailed:
				r.generating = false
				r.broadcast(protocol.EvtError, protocol.ErrorEvent{
					Message: "Error generating question: " + msg.err.Error(),
				})

			case GetView:
				msg.Reply <- View{Code: r.code, NumClients: len(r.outboxes), State: r.state}

			case Shutdown:
				r.shutdown()
				return
			}
		}
	}
}

func (r *Room) handleJoin(msg Join) {
	_, ns, err := game.Apply(r.state, game.Command{
		Type:       game.CmdJoin,
		PlayerID:   msg.PlayerID,
		PlayerName: msg.PlayerName,
	})
	if err != nil {
		sendOrDrop(msg.Outbox, mustPack(protocol.EvtError, protocol.ErrorEvent{Message: errorMessage(err)}))
		if msg.Reply != nil {
			msg.Reply <- false
		}
		return
	}
	r.state = ns
	r.outboxes[msg.PlayerID] = msg.Outbox
	if msg.Reply != nil {
		msg.Reply <- true
	}

	if msg.Creator {
		r.sendTo(msg.PlayerID, protocol.EvtGameCreated, protocol.GameCreated{
			GameID:     r.code,
			PlayerID:   msg.PlayerID,
			PlayerName: msg.PlayerName,
		})
	} else {
		r.sendTo(msg.PlayerID, protocol.EvtGameJoined, protocol.GameJoined{
			GameID:     r.code,
			PlayerID:   msg.PlayerID,
			PlayerName: msg.PlayerName,
		})
	}
	r.broadcast(protocol.EvtPlayerListUpdate, protocol.PlayerListUpdate{Players: r.roster()})
	if !msg.Creator {
		r.broadcastExcept(msg.PlayerID, protocol.EvtPlayerJoined, protocol.PlayerJoined{PlayerName: msg.PlayerName})
	}
	r.log.Info("player joined", zap.String("player", msg.PlayerID), zap.Int("players", len(r.outboxes)))
}

func (r *Room) handleLeave(playerID string) {
	if ch, ok := r.outboxes[playerID]; ok {
		close(ch)
		delete(r.outboxes, playerID)
	}

	events, ns, err := game.Apply(r.state, game.Command{Type: game.CmdLeave, PlayerID: playerID})
	if err != nil {
		return
	}
	r.state = ns
	r.dispatch(events)
}

// dispatch turns engine events into wire messages per the protocol's routing
// rules: answer_result goes only to the submitter, everything else to the
// whole room.
func (r *Room) dispatch(events []game.Event) {
	for _, ev := range events {
		switch ev.Type {
		case game.EvtGameStarted:
			r.broadcast(protocol.EvtGameStarted, nil)

		case game.EvtNextRequested:
			r.requestQuestion()

		case game.EvtQuestionPosed:
			q := r.state.Current
			r.broadcast(protocol.EvtNewQuestion, protocol.NewQuestion{
				Question:       q.Text,
				Options:        q.Options,
				QuestionNumber: r.state.QuestionCount,
			})

		case game.EvtAnswerScored:
			r.sendTo(ev.PlayerID, protocol.EvtAnswerResult, protocol.AnswerResult{
				IsCorrect:    ev.IsCorrect,
				PointsEarned: ev.Points,
				YourAnswer:   ev.Answer,
			})

		case game.EvtQuestionCompleted:
			q := r.state.Current
			r.broadcast(protocol.EvtQuestionComplete, protocol.QuestionComplete{
				CorrectAnswer: q.CorrectAnswer,
				Explanation:   q.Explanation,
				Leaderboard:   r.leaderboard(),
			})

		case game.EvtGameEnded:
			r.broadcast(protocol.EvtGameEnded, protocol.GameEnded{
				FinalResults:   r.leaderboard(),
				TotalQuestions: r.state.QuestionCount,
			})

		case game.EvtPlayerLeft:
			r.broadcast(protocol.EvtPlayerLeft, protocol.PlayerLeft{
				PlayerName: ev.PlayerName,
				Players:    r.roster(),
			})

		case game.EvtRoomEmptied:
			r.log.Info("room emptied")
			if r.onEmpty != nil {
				r.onEmpty(r.code)
			}
			r.shutdown()
			return
		}
	}
}

// requestQuestion runs the generator off the room goroutine and delivers the
// outcome back through the inbox. At most one generation is in flight.
func (r *Room) requestQuestion() {
	if r.generating {
		return
	}
	r.generating = true

	d := r.state.Difficulty
	topics := append([]string(nil), r.state.AskedTopics...)

	go func() {
		ctx, cancel := context.WithTimeout(r.ctx, 35*time.Second)
		defer cancel()

		q, err := r.gen.Next(ctx, d, topics)

		var out Msg
		if err != nil {
			out = questionFailed{err: err}
		} else {
			out = questionReady{q: q}
		}
		select {
		case r.inbox <- out:
		case <-r.ctx.Done():
		}
	}()
}

func (r *Room) roster() []protocol.Player {
	players := game.Roster(r.state)
	out := make([]protocol.Player, 0, len(players))
	for _, p := range players {
		out = append(out, protocol.Player{Name: p.Name, Score: p.Score, IsHost: p.IsHost})
	}
	return out
}

func (r *Room) leaderboard() []protocol.LeaderboardEntry {
	rows := game.Leaderboard(r.state)
	out := make([]protocol.LeaderboardEntry, 0, len(rows))
	for _, row := range rows {
		out = append(out, protocol.LeaderboardEntry{Name: row.Name, Score: row.Score})
	}
	return out
}

func (r *Room) sendTo(playerID string, t protocol.EventType, payload any) {
	ch, ok := r.outboxes[playerID]
	if !ok {
		return
	}
	if !sendOrDrop(ch, mustPack(t, payload)) {
		// Slow or gone; drop them.
		close(ch)
		delete(r.outboxes, playerID)
	}
}

func (r *Room) sendError(playerID, message string) {
	r.sendTo(playerID, protocol.EvtError, protocol.ErrorEvent{Message: message})
}

func (r *Room) broadcast(t protocol.EventType, payload any) {
	r.broadcastExcept("", t, payload)
}

func (r *Room) broadcastExcept(skipID string, t protocol.EventType, payload any) {
	data := mustPack(t, payload)
	for id, ch := range r.outboxes {
		if id == skipID {
			continue
		}
		if !sendOrDrop(ch, data) {
			close(ch)
			delete(r.outboxes, id)
		}
	}
}

func (r *Room) shutdown() {
	for id, ch := range r.outboxes {
		close(ch)
		delete(r.outboxes, id)
	}
	r.cancel()
}

func sendOrDrop(ch chan []byte, data []byte) bool {
	select {
	case ch <- data:
		return true
	default:
		return false
	}
}

func mustPack(t protocol.EventType, payload any) []byte {
	data, err := protocol.Pack(t, payload)
	if err != nil {
		// Payload structs are plain data; marshal cannot fail at runtime.
		panic(err)
	}
	return data
}

func errorMessage(err error) string {
	switch {
	case errors.Is(err, game.ErrGameInProgress):
		return "Game already in progress"
	case errors.Is(err, game.ErrGameNotStarted):
		return "Game not started"
	case errors.Is(err, game.ErrGameFinished):
		return "Game already finished"
	case errors.Is(err, game.ErrNotHost):
		return "Only the host can do that"
	case errors.Is(err, game.ErrNotInGame):
		return "Player not in game"
	case errors.Is(err, game.ErrAlreadyAnswered):
		return "Already answered this question"
	case errors.Is(err, game.ErrNoActiveQuestion):
		return "No active question"
	default:
		return err.Error()
	}
}
