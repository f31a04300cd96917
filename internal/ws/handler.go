package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pkeller/movie-trivia/internal/game"
	"github.com/pkeller/movie-trivia/internal/hub"
	"github.com/pkeller/movie-trivia/internal/question"
	"github.com/pkeller/movie-trivia/internal/room"
	"github.com/pkeller/movie-trivia/pkg/protocol"
)

const writeTimeout = 3 * time.Second

// Handler upgrades to a websocket and relays envelopes between one client
// connection and its game room. A connection belongs to at most one room at
// a time; leaving means closing the socket and dialing again.
func Handler(h *hub.Hub, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			// In dev ONLY, you can loosen origin checks:
			// OriginPatterns: []string{"http://localhost:*", "http://127.0.0.1:*"},
		})
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		c := &client{
			id:   uuid.NewString(),
			conn: conn,
			hub:  h,
			out:  make(chan []byte, 16),
			log:  log,
		}
		c.run(r.Context())
	}
}

type client struct {
	id   string
	conn *websocket.Conn
	hub  *hub.Hub
	out  chan []byte
	room *room.Room
	log  *zap.Logger
}

func (c *client) run(ctx context.Context) {
	defer func() {
		if c.room != nil {
			c.room.Inbox() <- room.Leave{PlayerID: c.id}
		}
	}()

	// Writer goroutine
	writeCtx, writeCancel := context.WithCancel(ctx)
	defer writeCancel()
	go func() {
		for data := range c.out {
			wctx, cancel := context.WithTimeout(writeCtx, writeTimeout)
			_ = c.conn.Write(wctx, websocket.MessageText, data)
			cancel()
		}
		// The room closed our outbox; nothing more will come.
		c.conn.Close(websocket.StatusNormalClosure, "room closed")
	}()

	// Reader loop
	for {
		_, data, err := c.conn.Read(ctx)
		if err != nil {
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				return
			}
			return
		}

		var env protocol.Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			c.sendError(ctx, "bad json")
			continue
		}
		c.handle(ctx, env)
	}
}

func (c *client) handle(ctx context.Context, env protocol.Envelope) {
	switch env.Type {
	case protocol.EvtCreateGame:
		var p protocol.CreateGame
		if err := env.Bind(&p); err != nil {
			c.sendError(ctx, "bad payload")
			return
		}
		if c.room != nil {
			c.sendError(ctx, "Already in a game")
			return
		}
		name := strings.TrimSpace(p.PlayerName)
		if name == "" {
			name = "Player"
		}
		reply := make(chan *room.Room, 1)
		c.hub.Inbox() <- hub.CreateRoom{Difficulty: question.ParseDifficulty(p.Difficulty), Reply: reply}
		r := <-reply
		if r == nil {
			c.sendError(ctx, "Failed to create game")
			return
		}
		c.join(ctx, r, room.Join{PlayerID: c.id, PlayerName: name, Creator: true, Outbox: c.out})

	case protocol.EvtJoinGame:
		var p protocol.JoinGame
		if err := env.Bind(&p); err != nil {
			c.sendError(ctx, "bad payload")
			return
		}
		if c.room != nil {
			c.sendError(ctx, "Already in a game")
			return
		}
		code := strings.ToUpper(strings.TrimSpace(p.GameID))
		name := strings.TrimSpace(p.PlayerName)
		if name == "" {
			name = "Player"
		}
		reply := make(chan *room.Room, 1)
		c.hub.Inbox() <- hub.GetRoom{Code: code, Reply: reply}
		r := <-reply
		if r == nil {
			c.sendError(ctx, "Game not found")
			return
		}
		c.join(ctx, r, room.Join{PlayerID: c.id, PlayerName: name, Outbox: c.out})

	case protocol.EvtStartGame:
		c.forward(ctx, game.Command{Type: game.CmdStart, PlayerID: c.id})

	case protocol.EvtSubmitAnswer:
		var p protocol.SubmitAnswer
		if err := env.Bind(&p); err != nil {
			c.sendError(ctx, "bad payload")
			return
		}
		c.forward(ctx, game.Command{
			Type:     game.CmdSubmitAnswer,
			PlayerID: c.id,
			Answer:   p.Answer,
			At:       time.Now(),
		})

	case protocol.EvtNextQuestion:
		c.forward(ctx, game.Command{Type: game.CmdNextQuestion, PlayerID: c.id})

	case protocol.EvtEndGame:
		c.forward(ctx, game.Command{Type: game.CmdEnd, PlayerID: c.id})

	default:
		c.sendError(ctx, "unknown type")
	}
}

// join asks the room to admit this connection and attaches only on
// acceptance. A refused join (game already running) leaves the connection
// free to create or join another game.
func (c *client) join(ctx context.Context, r *room.Room, msg room.Join) {
	msg.Reply = make(chan bool, 1)
	select {
	case r.Inbox() <- msg:
	case <-r.Done():
		c.sendError(ctx, "Game not found")
		return
	}
	select {
	case accepted := <-msg.Reply:
		if accepted {
			c.room = r
		}
	case <-r.Done():
	case <-ctx.Done():
	}
}

func (c *client) forward(ctx context.Context, cmd game.Command) {
	if c.room == nil {
		c.sendError(ctx, "Game not found")
		return
	}
	c.room.Inbox() <- room.FromClient{PlayerID: c.id, Cmd: cmd}
}

// sendError writes an error envelope directly, bypassing the outbox; used
// before the connection is attached to a room.
func (c *client) sendError(ctx context.Context, message string) {
	data, err := protocol.Pack(protocol.EvtError, protocol.ErrorEvent{Message: message})
	if err != nil {
		return
	}
	wctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	if err := c.conn.Write(wctx, websocket.MessageText, data); err != nil {
		c.log.Debug("write error event", zap.Error(err))
	}
}
